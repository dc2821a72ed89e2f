package quiver

import _ "embed"

// Version is the release of the quiver module.
//
//go:embed VERSION
var Version string
