package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/metafold/internal/metafield"
)

var getPath string

var getCmd = &cobra.Command{
	Use:   "get <file|-> <key>",
	Short: "Print the display value of one metafield",
	Long: `Looks up one metafield by key and prints its display value. List fields
print one item per line.

The key may be bare ("wood") or qualified with its namespace ("custom.wood").
When several fields share a key, normalize.duplicate_keys in config decides
which one is used.

Examples:
  mfold get product.json wood
  mfold get product.json custom.materials --json`,
	Args: cobra.ExactArgs(2),
	RunE: runGet,
}

func runGet(cmd *cobra.Command, args []string) error {
	loaded, err := loadFields(args[0], getPath)
	if err != nil {
		return loadError(err)
	}

	policy, err := getConfig().DuplicatePolicy()
	if err != nil {
		return handleError(ErrConfigInvalid, err, "")
	}

	field, ok, err := lookupField(loaded.Fields, strings.TrimSpace(args[1]), policy)
	if err != nil {
		return handleError(errorCode(err, ErrInternal), err, "")
	}
	if !ok {
		return handleErrorWithDetails(ErrFieldNotFound,
			fmt.Sprintf("metafield %q not found", args[1]),
			"Run 'mfold normalize' to list the available keys",
			map[string]any{"available": fieldKeys(loaded.Fields)})
	}

	if isJSONOutput() {
		outputSuccessWithWarnings(field, loaded.Warnings, &Meta{Source: loaded.Source, Path: loaded.Path})
		return nil
	}

	printWarnings(loaded.Warnings)
	for _, line := range field.Display.Strings() {
		fmt.Fprintln(stdout, line)
	}
	return nil
}

// lookupField resolves key through the keyed map, then tries it as a
// namespace-qualified key.
func lookupField(fields []metafield.NormalizedField, key string, policy metafield.DuplicatePolicy) (metafield.NormalizedField, bool, error) {
	byKey, err := metafield.ByKey(fields, policy)
	if err != nil {
		return metafield.NormalizedField{}, false, err
	}
	if f, ok := byKey[key]; ok {
		return f, true, nil
	}

	var match *metafield.NormalizedField
	for i := range fields {
		if fields[i].QualifiedKey() != key {
			continue
		}
		if match == nil || policy != metafield.DuplicateFirst {
			match = &fields[i]
		}
	}
	if match == nil {
		return metafield.NormalizedField{}, false, nil
	}
	return *match, true, nil
}

func fieldKeys(fields []metafield.NormalizedField) []string {
	keys := make([]string, 0, len(fields))
	for _, f := range fields {
		keys = append(keys, f.QualifiedKey())
	}
	return keys
}

func init() {
	getCmd.Flags().StringVar(&getPath, "path", "", "gjson path of the metafield container (default: auto-detect)")
	rootCmd.AddCommand(getCmd)
}
