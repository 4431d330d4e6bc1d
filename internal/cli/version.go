package cli

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/metafold/internal/buildinfo"
	"github.com/aidanlsb/metafold/internal/ui"
)

const defaultModulePath = "github.com/aidanlsb/metafold"

type versionInfo struct {
	Version    string `json:"version"`
	ModulePath string `json:"module_path"`
	Commit     string `json:"commit,omitempty"`
	CommitTime string `json:"commit_time,omitempty"`
	Modified   bool   `json:"modified"`
	GoVersion  string `json:"go_version"`
	GOOS       string `json:"goos"`
	GOARCH     string `json:"goarch"`
}

var readBuildInfo = debug.ReadBuildInfo

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show mfold version and build information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		info := currentVersionInfo()

		if isJSONOutput() {
			outputSuccess(info, nil)
			return nil
		}

		fmt.Fprintf(stdout, "mfold %s\n", info.Version)
		tbl := ui.NewTable(2)
		tbl.AddRow("module", info.ModulePath)
		if info.Commit != "" {
			tbl.AddRow("commit", info.Commit)
		}
		if info.CommitTime != "" {
			tbl.AddRow("built", info.CommitTime)
		}
		tbl.AddRow("go", info.GoVersion)
		tbl.AddRow("platform", info.GOOS+"/"+info.GOARCH)
		if info.Modified {
			tbl.AddRow("modified", "true")
		}
		fmt.Fprint(stdout, ui.Hint(strings.TrimRight(tbl.String(), "\n"))+"\n")

		return nil
	},
}

// currentVersionInfo prefers module build info and fills gaps from the
// ldflags-injected buildinfo values.
func currentVersionInfo() versionInfo {
	info := versionInfo{
		Version:    "devel",
		ModulePath: defaultModulePath,
		GoVersion:  runtime.Version(),
		GOOS:       runtime.GOOS,
		GOARCH:     runtime.GOARCH,
	}

	if bi, ok := readBuildInfo(); ok && bi != nil {
		settings := make(map[string]string, len(bi.Settings))
		for _, s := range bi.Settings {
			settings[s.Key] = s.Value
		}

		if bi.Main.Path != "" {
			info.ModulePath = bi.Main.Path
		}
		info.Version = normalizeVersion(bi.Main.Version)
		if bi.GoVersion != "" {
			info.GoVersion = bi.GoVersion
		}
		if v := settings["GOOS"]; v != "" {
			info.GOOS = v
		}
		if v := settings["GOARCH"]; v != "" {
			info.GOARCH = v
		}
		info.Commit = settings["vcs.revision"]
		info.CommitTime = settings["vcs.time"]
		info.Modified = strings.EqualFold(settings["vcs.modified"], "true")
	}

	if info.Version == "devel" && buildinfo.Version != "" {
		info.Version = normalizeVersion(buildinfo.Version)
	}
	if info.Commit == "" {
		info.Commit = buildinfo.Commit
	}
	if info.CommitTime == "" {
		info.CommitTime = buildinfo.Date
	}
	return info
}

func normalizeVersion(version string) string {
	if version == "" || version == "(devel)" {
		return "devel"
	}
	return version
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
