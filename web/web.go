// Package web holds the HTML templates of the sign-up sheet and the admin pages.
package web

import "embed"

//go:embed templates/*.html
var Templates embed.FS

const TemplatesDir = "templates"
