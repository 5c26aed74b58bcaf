package cli_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/weeklydigest/pkg/cli"
)

const payload = `{
  "run_metadata": {"week_ending": "2025-01-10", "mode": "cli"},
  "submissions": [
    {"project_key": "catalogue", "status": "Green", "delta": "Launch of new taxonomy"},
    {"project_key": "d365", "status": "Amber", "risks": "Vendor licences delayed"},
    "not a record"
  ]
}`

func TestRenderWritesSummaries(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "payload.json")
	gt.NoError(t, os.WriteFile(input, []byte(payload), 0o600)).Required()

	out := filepath.Join(dir, "out")
	err := cli.Run(context.Background(), []string{"weeklydigest", "--log-level", "error", "render", "-i", input, "-o", out})
	gt.NoError(t, err).Required()

	md, err := os.ReadFile(filepath.Join(out, "summaries", "2025-01-10.md"))
	gt.NoError(t, err).Required()
	gt.S(t, string(md)).Contains("**Executive Summary — 2025-01-10**")
	gt.S(t, string(md)).Contains("[Flag: missing 4/6: fulfilment, shopify_eu, shopify_us, zendesk]")

	_, err = os.Stat(filepath.Join(out, "summaries", "2025-01-10.json"))
	gt.NoError(t, err)
}

func TestRenderRejectsMalformedPayload(t *testing.T) {
	input := filepath.Join(t.TempDir(), "payload.json")
	gt.NoError(t, os.WriteFile(input, []byte(`[1,2,3]`), 0o600)).Required()

	err := cli.Run(context.Background(), []string{"weeklydigest", "--log-level", "error", "render", "-i", input, "--raw"})
	gt.Error(t, err)
}

func TestRenderWithoutWeekCannotWriteFiles(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "payload.json")
	gt.NoError(t, os.WriteFile(input, []byte(`{"submissions": []}`), 0o600)).Required()

	err := cli.Run(context.Background(), []string{"weeklydigest", "--log-level", "error", "render", "-i", input, "-o", filepath.Join(dir, "out")})
	gt.Error(t, err)
}
