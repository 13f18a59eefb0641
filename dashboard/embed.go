// Package dashboard provides the embedded status page for livecheck.
//
// The page is compiled into the binary with Go's embed directive, so the
// status server needs no external files. It is served by the server package
// at the root path ("/") and keeps itself current over the SSE stream.
package dashboard

import "embed"

// Assets is an embedded filesystem containing the status page.
//
// The filesystem structure is:
//
//	assets/
//	  index.html    - Status page with inline CSS and JavaScript
//
//go:embed assets/*
var Assets embed.FS
