// Package web embeds the HTML templates and static assets.
package web

import (
	"embed"
	"html/template"
	"io/fs"

	"github.com/meliosu/onyx-core-builders/pkg/response"
)

//go:embed templates/*.html static/*
var files embed.FS

// Templates parses every page and fragment template.
func Templates() (*template.Template, error) {
	return response.Parse(files, "templates/*.html")
}

// Static returns the assets served under /static.
func Static() fs.FS {
	sub, err := fs.Sub(files, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
