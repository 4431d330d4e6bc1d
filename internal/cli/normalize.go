package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/metafold/internal/atomicfile"
	"github.com/aidanlsb/metafold/internal/metafield"
	"github.com/aidanlsb/metafold/internal/ui"
)

var (
	normalizeFormat string
	normalizePath   string
	normalizeOut    string
	normalizeStrict bool
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize <file|->",
	Short: "Normalize the metafields of a response document",
	Long: `Reads a storefront query response (JSON or YAML) and prints its metafields
in normalized form.

The metafield container is found automatically (data.<field>.metafields,
data.<field>.metafield, or a top-level metafields list) unless --path gives
a gjson path to it.

Examples:
  mfold normalize product.json
  mfold normalize product.json --format markdown
  curl ... | mfold normalize - --path data.collection.metafields --json
  mfold normalize product.json --format json --out fields.json`,
	Args: cobra.ExactArgs(1),
	RunE: runNormalize,
}

func runNormalize(cmd *cobra.Command, args []string) error {
	format, err := parseFormat(normalizeFormat)
	if err != nil {
		return handleError(ErrInvalidInput, err, "")
	}

	loaded, err := loadFields(args[0], normalizePath)
	if err != nil {
		return loadError(err)
	}

	policy, err := getConfig().DuplicatePolicy()
	if err != nil {
		return handleError(ErrConfigInvalid, err, "")
	}
	if normalizeStrict {
		policy = metafield.DuplicateReject
	}
	if policy == metafield.DuplicateReject {
		if _, err := metafield.ByKey(loaded.Fields, policy); err != nil {
			return handleError(ErrDuplicateKey, err, "Remove the duplicate or drop --strict")
		}
	}
	warnings := append(loaded.Warnings, duplicateWarnings(loaded.Fields)...)

	if normalizeOut != "" {
		if err := writeNormalized(normalizeOut, format, loaded); err != nil {
			return handleError(ErrFileWriteError, err, "")
		}
		if isJSONOutput() {
			outputSuccessWithWarnings(map[string]any{
				"out":    normalizeOut,
				"format": format,
				"count":  len(loaded.Fields),
			}, warnings, &Meta{Count: len(loaded.Fields), Source: loaded.Source, Path: loaded.Path})
			return nil
		}
		printWarnings(warnings)
		fmt.Fprintln(stdout, ui.Successf("Wrote %d fields to %s", len(loaded.Fields), normalizeOut))
		return nil
	}

	if isJSONOutput() {
		outputSuccessWithWarnings(map[string]any{
			"fields": loaded.Fields,
		}, warnings, &Meta{Count: len(loaded.Fields), Source: loaded.Source, Path: loaded.Path})
		return nil
	}

	printWarnings(warnings)
	display := ui.NewDisplayContext()
	switch format {
	case formatJSON:
		out, err := renderJSON(loaded.Fields)
		if err != nil {
			return handleError(ErrInternal, err, "")
		}
		fmt.Fprint(stdout, out)
	case formatMarkdown:
		md, err := renderMarkdown(documentTitle(loaded), loaded.Fields)
		if err != nil {
			return handleError(ErrInternal, err, "")
		}
		if display.IsTTY {
			rendered, err := ui.RenderMarkdown(md, display.AvailableWidth(ui.MarkdownRenderMargin))
			if err == nil {
				md = rendered
			} else {
				logger.Warnw("markdown rendering failed", "error", err)
			}
		}
		fmt.Fprint(stdout, md)
	default:
		if len(loaded.Fields) == 0 {
			fmt.Fprintln(stdout, ui.Hint("No metafields."))
			return nil
		}
		fmt.Fprint(stdout, renderTable(loaded.Fields, display, display.IsTTY))
	}
	return nil
}

// writeNormalized writes the chosen rendering to path atomically. Tables are
// written unstyled.
func writeNormalized(path, format string, loaded *loadedFields) error {
	if format == formatJSON {
		return atomicfile.WriteJSON(path, loaded.Fields, 0)
	}
	return atomicfile.Write(path, 0, func(w io.Writer) error {
		var out string
		var err error
		if format == formatMarkdown {
			out, err = renderMarkdown(documentTitle(loaded), loaded.Fields)
		} else {
			out = renderTable(loaded.Fields, nil, false)
		}
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, out)
		return err
	})
}

func documentTitle(loaded *loadedFields) string {
	name := loaded.Source
	if name == "-" || strings.TrimSpace(name) == "" {
		name = "stdin"
	}
	if loaded.Path != "" {
		return name + " · " + loaded.Path
	}
	return name
}

// printWarnings writes warnings to stderr in text mode.
func printWarnings(warnings []Warning) {
	for _, w := range warnings {
		msg := w.Message
		if w.Key != "" {
			msg = w.Key + ": " + msg
		}
		fmt.Fprintln(os.Stderr, ui.Warning(msg))
	}
}

func init() {
	normalizeCmd.Flags().StringVarP(&normalizeFormat, "format", "f", formatTable, "Output format: table, json or markdown")
	normalizeCmd.Flags().StringVar(&normalizePath, "path", "", "gjson path of the metafield container (default: auto-detect)")
	normalizeCmd.Flags().StringVarP(&normalizeOut, "out", "o", "", "Write output to this file instead of stdout")
	normalizeCmd.Flags().BoolVar(&normalizeStrict, "strict", false, "Fail when two metafields share a key")
	rootCmd.AddCommand(normalizeCmd)
}
