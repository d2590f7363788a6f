// Package version holds build metadata, set with -ldflags at release time.
package version

// Version is the released version of streamrelay.
var Version = "dev"
