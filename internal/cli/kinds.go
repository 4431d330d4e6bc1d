package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/metafold/internal/metafield"
	"github.com/aidanlsb/metafold/internal/ui"
)

type kindInfo struct {
	Kind     metafield.Kind     `json:"kind"`
	Strategy metafield.Strategy `json:"strategy"`
	List     string             `json:"list"`
}

var kindsCmd = &cobra.Command{
	Use:   "kinds",
	Short: "List the metafield types with dedicated handling",
	Long: `Lists every metafield type mfold understands and how it is normalized.
Each type is also accepted with the list. prefix. Any other type is shown
as text.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		kinds := make([]kindInfo, 0, len(metafield.KnownKinds))
		for _, k := range metafield.KnownKinds {
			kinds = append(kinds, kindInfo{
				Kind:     k,
				Strategy: k.Strategy(),
				List:     metafield.ListPrefix + string(k),
			})
		}

		if isJSONOutput() {
			outputSuccess(map[string]any{"kinds": kinds}, &Meta{Count: len(kinds)})
			return nil
		}

		tbl := ui.NewTable(2)
		for _, k := range kinds {
			tbl.AddRow(ui.FieldKey(string(k.Kind)), ui.Hint(string(k.Strategy)))
		}
		fmt.Fprint(stdout, tbl.String())
		fmt.Fprintln(stdout, ui.Hint("Other types are shown as text."))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(kindsCmd)
}
