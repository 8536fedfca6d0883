// Package web provides the embedded browser UI.
package web

import (
	_ "embed"
)

//go:embed index.html
var indexHTML []byte

// IndexHTML returns the single-page UI served at the root path.
func IndexHTML() []byte {
	return indexHTML
}
