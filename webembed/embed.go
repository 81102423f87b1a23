// Package webembed carries the browser page served at /.
package webembed

import (
	"embed"
	"io/fs"
)

//go:embed static
var static embed.FS

// Static is rooted at the page directory, so index.html is at its top.
var Static fs.FS = mustSub(static, "static")

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}
