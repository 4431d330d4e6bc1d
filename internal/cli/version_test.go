package cli

import (
	"runtime/debug"
	"strings"
	"testing"

	"github.com/aidanlsb/metafold/internal/buildinfo"
)

func TestCurrentVersionInfo(t *testing.T) {
	prevRead := readBuildInfo
	prevVersion, prevCommit := buildinfo.Version, buildinfo.Commit
	t.Cleanup(func() {
		readBuildInfo = prevRead
		buildinfo.Version, buildinfo.Commit = prevVersion, prevCommit
	})

	t.Run("module build info", func(t *testing.T) {
		readBuildInfo = func() (*debug.BuildInfo, bool) {
			return &debug.BuildInfo{
				GoVersion: "go1.24.1",
				Main:      debug.Module{Path: "github.com/aidanlsb/metafold", Version: "v0.3.0"},
				Settings: []debug.BuildSetting{
					{Key: "vcs.revision", Value: "abc123"},
					{Key: "vcs.modified", Value: "true"},
				},
			}, true
		}
		info := currentVersionInfo()
		if info.Version != "v0.3.0" || info.Commit != "abc123" || !info.Modified || info.GoVersion != "go1.24.1" {
			t.Errorf("info = %+v", info)
		}
	})

	t.Run("ldflags fallback", func(t *testing.T) {
		readBuildInfo = func() (*debug.BuildInfo, bool) { return nil, false }
		buildinfo.Version = "v0.2.0"
		buildinfo.Commit = "def456"

		info := currentVersionInfo()
		if info.Version != "v0.2.0" || info.Commit != "def456" || info.ModulePath != defaultModulePath {
			t.Errorf("info = %+v", info)
		}
	})

	t.Run("devel build", func(t *testing.T) {
		readBuildInfo = func() (*debug.BuildInfo, bool) {
			return &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}}, true
		}
		buildinfo.Version = ""
		if info := currentVersionInfo(); info.Version != "devel" {
			t.Errorf("Version = %q, want devel", info.Version)
		}
	})
}

func TestVersionText(t *testing.T) {
	out := withCLIState(t, false, func() {
		if err := versionCmd.RunE(versionCmd, nil); err != nil {
			t.Fatal(err)
		}
	})
	if !strings.HasPrefix(out, "mfold ") || !strings.Contains(out, "platform") {
		t.Errorf("unexpected version output:\n%s", out)
	}
}
