package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aidanlsb/metafold/internal/metafield"
	"github.com/aidanlsb/metafold/internal/ui"
)

const (
	formatTable    = "table"
	formatJSON     = "json"
	formatMarkdown = "markdown"
)

func parseFormat(raw string) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(raw)); f {
	case "", formatTable:
		return formatTable, nil
	case formatJSON, formatMarkdown:
		return f, nil
	case "md":
		return formatMarkdown, nil
	default:
		return "", fmt.Errorf("unknown format %q (expected table, json or markdown)", raw)
	}
}

// renderTable lays out one row per field: key, kind, display.
func renderTable(fields []metafield.NormalizedField, display *ui.DisplayContext, styled bool) string {
	tbl := ui.NewTable(3)
	if display != nil {
		tbl.SetMaxWidth(display.TermWidth)
	}
	for _, f := range fields {
		key := f.QualifiedKey()
		kind := kindLabel(f)
		if styled {
			key = ui.FieldKey(key)
			kind = ui.Hint(kind)
		}
		tbl.AddRow(key, kind, displayText(f.Display))
	}
	return tbl.String()
}

func kindLabel(f metafield.NormalizedField) string {
	kind := string(f.Kind)
	if kind == "" {
		kind = "(untyped)"
	}
	if f.IsList() {
		return "list." + kind
	}
	return kind
}

func displayText(d metafield.Display) string {
	if d.IsEmpty() {
		return ui.EmptyDisplay
	}
	if d.IsList() {
		return "[" + d.String() + "]"
	}
	// Multi-line text stays on one table row.
	return strings.ReplaceAll(d.String(), "\n", " ⏎ ")
}

// renderMarkdown builds a markdown report: a heading per field with its
// display values, and resolved references as a JSON block.
func renderMarkdown(title string, fields []metafield.NormalizedField) (string, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", title)
	if len(fields) == 0 {
		sb.WriteString("_No metafields._\n")
		return sb.String(), nil
	}

	for _, f := range fields {
		fmt.Fprintf(&sb, "## %s\n\n", f.QualifiedKey())
		fmt.Fprintf(&sb, "`%s`\n\n", kindLabel(f))

		switch {
		case f.Display.IsEmpty():
			sb.WriteString("_empty_\n\n")
		case f.Display.IsList():
			for _, item := range f.Display.Strings() {
				fmt.Fprintf(&sb, "- %s\n", item)
			}
			sb.WriteString("\n")
		default:
			sb.WriteString(f.Display.String())
			sb.WriteString("\n\n")
		}

		if len(f.Refs) > 0 {
			data, err := json.MarshalIndent(f.Refs, "", "  ")
			if err != nil {
				return "", fmt.Errorf("encode references for %s: %w", f.QualifiedKey(), err)
			}
			fmt.Fprintf(&sb, "```json\n%s\n```\n\n", data)
		}
	}
	return strings.TrimRight(sb.String(), "\n") + "\n", nil
}

// renderJSON encodes fields as an indented JSON array.
func renderJSON(fields []metafield.NormalizedField) (string, error) {
	data, err := json.MarshalIndent(fields, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data) + "\n", nil
}
