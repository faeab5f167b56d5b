package version

import "github.com/fatih/color"

// Version information for the minic CLI.
// These variables can be overridden at build time via -ldflags.

// Number is the plain semantic version, matched against [package].minic.
const Number = "0.1.0"

var (
	versionMajorColor = color.New(color.FgYellow, color.Bold)
	versionMinorColor = color.New(color.FgGreen, color.Bold)
	versionPatchColor = color.New(color.FgBlue, color.Bold)

	// Version is the colored form of Number shown by "minic version".
	Version = versionMajorColor.Sprint("0") + "." + versionMinorColor.Sprint("1") + "." + versionPatchColor.Sprint("0")

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)
