package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

const productFixture = `{
  "data": {
    "product": {
      "handle": "dining-table",
      "metafields": [
        {"key": "wood", "namespace": "custom", "type": "single_line_text_field", "value": "Oak"},
        {"key": "sizes", "namespace": "custom", "type": "list.number_integer", "value": "[180, 220, \"x\"]"},
        {"key": "finish", "namespace": "custom", "type": "metaobject_reference",
         "reference": {"__typename": "Metaobject", "handle": "brass-01",
                       "fields": [{"key": "name", "value": "Brushed brass"}]}},
        {"key": "rating", "namespace": "reviews", "type": "rating", "value": "{\"value\":\"4.5\"}"},
        null
      ]
    }
  }
}`

// withCLIState runs fn with fresh global CLI state and returns what it wrote
// to stdout.
func withCLIState(t *testing.T, jsonMode bool, fn func()) string {
	t.Helper()

	prevStdout, prevJSON, prevConfigPath, prevCfg := stdout, jsonOutput, configPath, cfg
	t.Cleanup(func() {
		stdout, jsonOutput, configPath, cfg = prevStdout, prevJSON, prevConfigPath, prevCfg
		jsonErrorWritten = false
	})

	var buf bytes.Buffer
	stdout = &buf
	jsonOutput = jsonMode
	jsonErrorWritten = false
	configPath = filepath.Join(t.TempDir(), "config.toml")
	cfg = nil

	fn()
	return buf.String()
}

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func decodeResponse(t *testing.T, out string) Response {
	t.Helper()
	var resp Response
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("output is not a JSON envelope: %v\n%s", err, out)
	}
	return resp
}

func dataMap(t *testing.T, resp Response) map[string]any {
	t.Helper()
	m, ok := resp.Data.(map[string]any)
	if !ok {
		t.Fatalf("data is %T, want object", resp.Data)
	}
	return m
}

func warningCodes(resp Response) map[string]bool {
	codes := make(map[string]bool, len(resp.Warnings))
	for _, w := range resp.Warnings {
		codes[w.Code] = true
	}
	return codes
}
