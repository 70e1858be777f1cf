package models

import "github.com/meliosu/onyx-core-builders/pkg/optional"

// Client orders sites.
type Client struct {
	ID                 int64  `db:"id"`
	Name               string `db:"name"`
	INN                int64  `db:"inn"`
	Address            string `db:"address"`
	ContactPersonEmail string `db:"contact_person_email"`
	ContactPersonName  string `db:"contact_person_name"`
	IsVIP              bool   `db:"is_vip"`
	SiteCount          int    `db:"site_count"`
}

// ClientListItem is a client list row.
type ClientListItem struct {
	ID        int64  `db:"id"`
	Name      string `db:"name"`
	INN       int64  `db:"inn"`
	IsVIP     bool   `db:"is_vip"`
	SiteCount int    `db:"site_count"`
}

// ClientFilter narrows the client list.
type ClientFilter struct {
	Name  optional.Value[string] `form:"name"`
	INN   optional.Value[int64]  `form:"inn"`
	IsVIP optional.Value[bool]   `form:"is_vip"`
}

var ClientTabs = []Tab{
	{Key: "sites", Label: "Sites"},
}
