// Package web serves the browser client: the application shell
// (index.html), its script and stylesheet, embedded into the binary.
package web

import (
	"embed"
	"io/fs"
	"net/http"
	"path"
	"strings"
)

//go:embed static
var static embed.FS

// Assets is the client file tree rooted at static/.
func Assets() fs.FS {
	sub, err := fs.Sub(static, "static")
	if err != nil {
		// The directory is embedded at build time; Sub cannot fail.
		panic(err)
	}
	return sub
}

// Handler serves files from assets. Any path that is not a file falls
// through to index.html, the application shell.
func Handler(assets fs.FS) http.Handler {
	files := http.FileServerFS(assets)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(path.Clean(r.URL.Path), "/")

		if name != "" && name != "index.html" {
			if info, err := fs.Stat(assets, name); err == nil && !info.IsDir() {
				files.ServeHTTP(w, r)
				return
			}
		}

		http.ServeFileFS(w, r, assets, "index.html")
	})
}
