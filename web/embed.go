// Package web ships the dashboard templates and stylesheet inside the binary.
package web

import "embed"

// Templates holds layouts, partials and pages under templates/.
//
//go:embed templates/layouts/*.html templates/partials/*.html templates/pages/*.html
var Templates embed.FS

// Static holds the assets served under /static/.
//
//go:embed static/css
var Static embed.FS
