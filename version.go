package hbnb

import (
	_ "embed"
)

// Version is the release version of hbnb.
//
//go:embed VERSION
var Version string
