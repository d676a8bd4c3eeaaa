package web

import "embed"

// Content holds the embedded API documentation page served at /.
//
//go:embed index.html
var Content embed.FS
