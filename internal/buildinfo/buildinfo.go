// Package buildinfo holds release metadata set at link time, for example:
//
//	go build -ldflags "-X github.com/aidanlsb/metafold/internal/buildinfo.Version=v0.3.0"
//
// The values are empty in development builds.
package buildinfo

var (
	Version = ""
	Commit  = ""
	Date    = ""
)
