package models

import (
	"fmt"
	"strings"
)

// SiteType discriminates the site satellite tables.
type SiteType string

const (
	SiteTypePowerPlant SiteType = "power_plant"
	SiteTypeRoad       SiteType = "road"
	SiteTypeHousing    SiteType = "housing"
	SiteTypeBridge     SiteType = "bridge"
	SiteTypePark       SiteType = "park"
)

// SiteTypes lists every site type in display order.
func SiteTypes() []SiteType {
	return []SiteType{SiteTypePowerPlant, SiteTypeRoad, SiteTypeHousing, SiteTypeBridge, SiteTypePark}
}

func (t SiteType) Label() string {
	switch t {
	case SiteTypePowerPlant:
		return "Power Plant"
	case SiteTypeRoad:
		return "Road"
	case SiteTypeHousing:
		return "Housing"
	case SiteTypeBridge:
		return "Bridge"
	case SiteTypePark:
		return "Park"
	}
	return string(t)
}

func (t *SiteType) UnmarshalText(text []byte) error {
	return parseEnum(t, string(text), SiteTypes(), "site type")
}

func (t *SiteType) UnmarshalParam(raw string) error { return t.UnmarshalText([]byte(raw)) }

// RiskLevel grades a site.
type RiskLevel string

const (
	RiskLevelLow    RiskLevel = "low"
	RiskLevelMedium RiskLevel = "medium"
	RiskLevelHigh   RiskLevel = "high"
)

func RiskLevels() []RiskLevel {
	return []RiskLevel{RiskLevelLow, RiskLevelMedium, RiskLevelHigh}
}

func (r RiskLevel) Label() string { return titleCase(string(r)) }

func (r *RiskLevel) UnmarshalText(text []byte) error {
	return parseEnum(r, string(text), RiskLevels(), "risk level")
}

func (r *RiskLevel) UnmarshalParam(raw string) error { return r.UnmarshalText([]byte(raw)) }

// Gender of an employee.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

func Genders() []Gender {
	return []Gender{GenderMale, GenderFemale}
}

func (g Gender) Label() string { return titleCase(string(g)) }

func (g *Gender) UnmarshalText(text []byte) error {
	return parseEnum(g, string(text), Genders(), "gender")
}

func (g *Gender) UnmarshalParam(raw string) error { return g.UnmarshalText([]byte(raw)) }

// Profession discriminates the worker satellite tables.
type Profession string

const (
	ProfessionElectrician Profession = "electrician"
	ProfessionPlumber     Profession = "plumber"
	ProfessionWelder      Profession = "welder"
	ProfessionDriver      Profession = "driver"
	ProfessionMason       Profession = "mason"
)

func Professions() []Profession {
	return []Profession{ProfessionElectrician, ProfessionPlumber, ProfessionWelder, ProfessionDriver, ProfessionMason}
}

func (p Profession) Label() string { return titleCase(string(p)) }

func (p *Profession) UnmarshalText(text []byte) error {
	return parseEnum(p, string(text), Professions(), "profession")
}

func (p *Profession) UnmarshalParam(raw string) error { return p.UnmarshalText([]byte(raw)) }

// Qualification discriminates the technical personnel satellite tables.
type Qualification string

const (
	QualificationTechnician   Qualification = "technician"
	QualificationTechnologist Qualification = "technologist"
	QualificationEngineer     Qualification = "engineer"
)

func Qualifications() []Qualification {
	return []Qualification{QualificationTechnician, QualificationTechnologist, QualificationEngineer}
}

func (q Qualification) Label() string { return titleCase(string(q)) }

func (q *Qualification) UnmarshalText(text []byte) error {
	return parseEnum(q, string(text), Qualifications(), "qualification")
}

func (q *Qualification) UnmarshalParam(raw string) error { return q.UnmarshalText([]byte(raw)) }

// Position of technical personnel on a site.
type Position string

const (
	PositionMaster  Position = "master"
	PositionForeman Position = "foreman"
)

func Positions() []Position {
	return []Position{PositionMaster, PositionForeman}
}

func (p Position) Label() string { return titleCase(string(p)) }

func (p *Position) UnmarshalText(text []byte) error {
	return parseEnum(p, string(text), Positions(), "position")
}

func (p *Position) UnmarshalParam(raw string) error { return p.UnmarshalText([]byte(raw)) }

// FuelType of a piece of equipment.
type FuelType string

const (
	FuelTypeGasoline FuelType = "gasoline"
	FuelTypeDiesel   FuelType = "diesel"
	FuelTypeElectric FuelType = "electric"
	FuelTypeHybrid   FuelType = "hybrid"
)

func FuelTypes() []FuelType {
	return []FuelType{FuelTypeGasoline, FuelTypeDiesel, FuelTypeElectric, FuelTypeHybrid}
}

func (f FuelType) Label() string { return titleCase(string(f)) }

func (f *FuelType) UnmarshalText(text []byte) error {
	return parseEnum(f, string(text), FuelTypes(), "fuel type")
}

func (f *FuelType) UnmarshalParam(raw string) error { return f.UnmarshalText([]byte(raw)) }

// Status is derived from task dates; sites aggregate it over their tasks.
type Status string

const (
	StatusPlanned    Status = "planned"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

func Statuses() []Status {
	return []Status{StatusPlanned, StatusInProgress, StatusCompleted}
}

func (s Status) Label() string { return titleCase(string(s)) }

func (s *Status) UnmarshalText(text []byte) error {
	return parseEnum(s, string(text), Statuses(), "status")
}

func (s *Status) UnmarshalParam(raw string) error { return s.UnmarshalText([]byte(raw)) }

// SortDirection of a list query.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

func (d *SortDirection) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "desc", "descending":
		*d = SortDesc
	default:
		*d = SortAsc
	}
	return nil
}

func (d *SortDirection) UnmarshalParam(raw string) error { return d.UnmarshalText([]byte(raw)) }

// SQL returns the keyword; anything unknown sorts ascending.
func (d SortDirection) SQL() string {
	if d == SortDesc {
		return "DESC"
	}
	return "ASC"
}

func parseEnum[T ~string](dst *T, raw string, allowed []T, name string) error {
	raw = strings.ToLower(strings.TrimSpace(raw))
	for _, v := range allowed {
		if string(v) == raw {
			*dst = v
			return nil
		}
	}
	return fmt.Errorf("unknown %s %q", name, raw)
}

func titleCase(s string) string {
	words := strings.Split(s, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	if len(words) > 1 {
		return words[0] + " " + strings.ToLower(strings.Join(words[1:], " "))
	}
	return strings.Join(words, " ")
}
