package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/weeklydigest/pkg/cli/config"
	"github.com/secmon-lab/weeklydigest/pkg/domain/types"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "projects.yaml")
	gt.NoError(t, os.WriteFile(path, []byte(content), 0o600)).Required()
	return path
}

func TestLoadProjectsFromFile(t *testing.T) {
	t.Run("valid file with pair", func(t *testing.T) {
		path := writeFile(t, `
projects:
  - key: catalogue
    label: Catalogue
  - key: shopify_eu
    label: Shopify EU
  - key: shopify_us
    label: Shopify US
pairs:
  - label: Shopify
    members: [shopify_eu, shopify_us]
`)
		cfg, err := config.LoadProjectsFromFile(path)
		gt.NoError(t, err).Required()
		gt.Equal(t, cfg.Required(), []types.ProjectKey{"catalogue", "shopify_eu", "shopify_us"})
		gt.Equal(t, cfg.Labels()["shopify_us"], "Shopify US")
		gt.NotNil(t, cfg.PairOf("shopify_eu"))
		gt.Equal(t, cfg.PairOf("shopify_eu").Label, "Shopify")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := config.LoadProjectsFromFile(filepath.Join(t.TempDir(), "none.yaml"))
		gt.Error(t, err)
	})

	t.Run("empty path", func(t *testing.T) {
		_, err := config.LoadProjectsFromFile("")
		gt.Error(t, err)
	})

	t.Run("broken yaml", func(t *testing.T) {
		_, err := config.LoadProjectsFromFile(writeFile(t, "projects: [key: {"))
		gt.Error(t, err)
	})

	t.Run("pair member outside required set", func(t *testing.T) {
		path := writeFile(t, `
projects:
  - key: catalogue
pairs:
  - label: Shopify
    members: [catalogue, shopify_us]
`)
		_, err := config.LoadProjectsFromFile(path)
		gt.Error(t, err)
	})

	t.Run("duplicate key", func(t *testing.T) {
		path := writeFile(t, `
projects:
  - key: d365
  - key: d365
`)
		_, err := config.LoadProjectsFromFile(path)
		gt.Error(t, err)
	})
}

func TestProjectsConfigureDefault(t *testing.T) {
	var p config.Projects
	cfg, err := p.Configure(context.Background())
	gt.NoError(t, err).Required()
	gt.Equal(t, len(cfg.Required()), 6)
}
