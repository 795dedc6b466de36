package premortem

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var versionFile string

// Version is the current version of the premortem library/application.
var Version = strings.TrimSpace(versionFile)
