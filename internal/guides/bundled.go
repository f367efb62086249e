package guides

import (
	"embed"
	"io/fs"
)

//go:embed bundled/*.md
var bundledFS embed.FS

// Bundled returns the default guides compiled into the binary.
func Bundled() fs.FS {
	sub, err := fs.Sub(bundledFS, "bundled")
	if err != nil {
		panic(err)
	}
	return sub
}
