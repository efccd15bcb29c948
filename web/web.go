// Package web embeds the page templates and static assets served by the
// HTTP server.
package web

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.html
var templates embed.FS

//go:embed static
var static embed.FS

// Templates returns the page templates. base.html holds the shared layout;
// every other file defines the "content" block of one page.
func Templates() fs.FS { return templates }

// Static returns the assets served under /static.
func Static() fs.FS {
	sub, err := fs.Sub(static, "static")
	if err != nil {
		panic(err) // the directory is embedded above
	}
	return sub
}
