package html

import (
	"embed"
	"io/fs"
)

// StylesheetName is the file name of the bundled stylesheet inside AssetsFS.
const StylesheetName = "formdoc.css"

//go:embed templates/*.tmpl assets/*
var bundle embed.FS

// TemplatesFS returns the bundled templates rooted so that the form template
// lives at templates/form.tmpl.
func TemplatesFS() fs.FS {
	return bundle
}

// AssetsFS returns the static files served next to rendered pages.
func AssetsFS() fs.FS {
	assets, _ := fs.Sub(bundle, "assets")
	return assets
}

func defaultStylesheet() string {
	css, _ := fs.ReadFile(bundle, "assets/"+StylesheetName)
	return string(css)
}
