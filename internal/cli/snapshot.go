package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/metafold/internal/snapshot"
	"github.com/aidanlsb/metafold/internal/ui"
)

var (
	snapshotDBFlag   string
	snapshotSavePath string
	snapshotDiffFile string
	snapshotDiffPath string
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Save and compare normalized metafield snapshots",
	Long: `Snapshots store the normalized fields of a document in a local SQLite
database (snapshot.path in config) so that content edits can be compared
later. Names are slugified: "Spring Launch" is stored as spring-launch.`,
}

func openSnapshotStore() (*snapshot.Store, error) {
	path := strings.TrimSpace(snapshotDBFlag)
	if path == "" {
		path = getConfig().SnapshotPath()
	}
	logger.Debugw("opening snapshot store", "path", path)
	return snapshot.Open(path)
}

func snapshotError(err error) error {
	return handleError(errorCode(err, ErrDatabaseError), err, "")
}

var snapshotSaveCmd = &cobra.Command{
	Use:   "save <name> <file|->",
	Short: "Normalize a document and save it as a snapshot",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := loadFields(args[1], snapshotSavePath)
		if err != nil {
			return loadError(err)
		}

		store, err := openSnapshotStore()
		if err != nil {
			return snapshotError(err)
		}
		defer store.Close()

		snap, err := store.Save(args[0], loaded.Source, loaded.Fields)
		if err != nil {
			return snapshotError(err)
		}
		logger.Infow("snapshot saved", "name", snap.Name, "fields", snap.FieldCount)

		if isJSONOutput() {
			outputSuccessWithWarnings(snap, loaded.Warnings, &Meta{Count: snap.FieldCount, Source: loaded.Source, Path: loaded.Path})
			return nil
		}
		printWarnings(loaded.Warnings)
		fmt.Fprintln(stdout, ui.Successf("Saved snapshot %s %s", ui.FieldKey(snap.Name), ui.Count(snap.FieldCount, "field", "fields")))
		return nil
	},
}

var snapshotListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved snapshots, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openSnapshotStore()
		if err != nil {
			return snapshotError(err)
		}
		defer store.Close()

		snaps, err := store.List()
		if err != nil {
			return snapshotError(err)
		}

		if isJSONOutput() {
			if snaps == nil {
				snaps = []snapshot.Snapshot{}
			}
			outputSuccess(map[string]any{"snapshots": snaps}, &Meta{Count: len(snaps)})
			return nil
		}

		if len(snaps) == 0 {
			fmt.Fprintln(stdout, ui.Hint("No snapshots. Run 'mfold snapshot save <name> <file>' to create one."))
			return nil
		}
		tbl := ui.NewTable(4)
		for _, s := range snaps {
			tbl.AddRow(
				ui.FieldKey(s.Name),
				s.CreatedAt.Local().Format(time.DateTime),
				ui.Count(s.FieldCount, "field", "fields"),
				ui.Hint(s.Source),
			)
		}
		fmt.Fprint(stdout, tbl.String())
		return nil
	},
}

var snapshotShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show the fields stored in a snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openSnapshotStore()
		if err != nil {
			return snapshotError(err)
		}
		defer store.Close()

		snap, entries, err := store.Get(args[0])
		if err != nil {
			return snapshotError(err)
		}

		if isJSONOutput() {
			outputSuccess(map[string]any{"snapshot": snap, "entries": entries}, &Meta{Count: len(entries)})
			return nil
		}

		fmt.Fprintf(stdout, "%s %s\n", ui.Header(snap.Name), ui.Hint(snap.CreatedAt.Local().Format(time.DateTime)))
		if snap.Source != "" {
			fmt.Fprintln(stdout, ui.Hint(snap.Source))
		}
		fmt.Fprintln(stdout)
		tbl := ui.NewTable(3)
		tbl.SetMaxWidth(ui.NewDisplayContext().TermWidth)
		for _, e := range entries {
			tbl.AddRow(ui.FieldKey(e.QualifiedKey()), ui.Hint(e.RawType), displayText(e.Display))
		}
		fmt.Fprint(stdout, tbl.String())
		return nil
	},
}

var snapshotDiffCmd = &cobra.Command{
	Use:   "diff <a> [b]",
	Short: "Compare two snapshots, or a snapshot with a document",
	Long: `Compares snapshot a with snapshot b, or with the current content of a
document given by --file. Fields are matched by namespace.key.

Examples:
  mfold snapshot diff spring-launch summer-launch
  mfold snapshot diff spring-launch --file product.json`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runSnapshotDiff,
}

func runSnapshotDiff(cmd *cobra.Command, args []string) error {
	if (len(args) == 2) == (snapshotDiffFile != "") {
		return handleErrorMsg(ErrInvalidInput, "give either a second snapshot name or --file", "")
	}

	store, err := openSnapshotStore()
	if err != nil {
		return snapshotError(err)
	}
	defer store.Close()

	_, before, err := store.Get(args[0])
	if err != nil {
		return snapshotError(err)
	}

	var after []snapshot.Entry
	var against string
	if len(args) == 2 {
		var snap snapshot.Snapshot
		snap, after, err = store.Get(args[1])
		if err != nil {
			return snapshotError(err)
		}
		against = snap.Name
	} else {
		loaded, err := loadFields(snapshotDiffFile, snapshotDiffPath)
		if err != nil {
			return loadError(err)
		}
		after, err = snapshot.EntriesFromFields(loaded.Fields)
		if err != nil {
			return handleError(ErrInternal, err, "")
		}
		against = loaded.Source
	}

	changes := snapshot.Diff(before, after)

	if isJSONOutput() {
		if changes == nil {
			changes = []snapshot.Change{}
		}
		outputSuccess(map[string]any{"changes": changes, "against": against}, &Meta{Count: len(changes)})
		return nil
	}

	if len(changes) == 0 {
		fmt.Fprintln(stdout, ui.Success("No changes"))
		return nil
	}
	tbl := ui.NewTable(3)
	for _, c := range changes {
		tbl.AddRow(changeSymbol(c.Type), ui.FieldKey(c.Key), changeSummary(c))
	}
	fmt.Fprint(stdout, tbl.String())
	return nil
}

func changeSymbol(t snapshot.ChangeType) string {
	switch t {
	case snapshot.Added:
		return "+"
	case snapshot.Removed:
		return "-"
	default:
		return "~"
	}
}

func changeSummary(c snapshot.Change) string {
	switch c.Type {
	case snapshot.Added:
		return displayText(c.After.Display)
	case snapshot.Removed:
		return ui.Hint(displayText(c.Before.Display))
	}
	if c.Before.RawType != c.After.RawType {
		return fmt.Sprintf("%s → %s", c.Before.RawType, c.After.RawType)
	}
	return fmt.Sprintf("%s → %s", displayText(c.Before.Display), displayText(c.After.Display))
}

var snapshotDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openSnapshotStore()
		if err != nil {
			return snapshotError(err)
		}
		defer store.Close()

		if err := store.Delete(args[0]); err != nil {
			return snapshotError(err)
		}
		name, _ := snapshot.NormalizeName(args[0])

		if isJSONOutput() {
			outputSuccess(map[string]any{"deleted": name}, nil)
			return nil
		}
		fmt.Fprintln(stdout, ui.Successf("Deleted snapshot %s", ui.FieldKey(name)))
		return nil
	},
}

func init() {
	snapshotCmd.PersistentFlags().StringVar(&snapshotDBFlag, "db", "", "Snapshot database path (overrides snapshot.path in config)")
	snapshotSaveCmd.Flags().StringVar(&snapshotSavePath, "path", "", "gjson path of the metafield container (default: auto-detect)")
	snapshotDiffCmd.Flags().StringVar(&snapshotDiffFile, "file", "", "Compare against this document instead of a second snapshot")
	snapshotDiffCmd.Flags().StringVar(&snapshotDiffPath, "path", "", "gjson path of the metafield container in --file")

	snapshotCmd.AddCommand(snapshotSaveCmd, snapshotListCmd, snapshotShowCmd, snapshotDiffCmd, snapshotDeleteCmd)
	rootCmd.AddCommand(snapshotCmd)
}
