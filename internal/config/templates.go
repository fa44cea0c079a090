package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# dividend-screener configuration

[screening]
min_yield = 0.0
days_ahead = 14
exclude_foreign = true
exclude_adr = true
exclude_distressed = true
strict_filtering = true

[cache]
# result_file = "/path/to/dividend_cache.csv"
# ignore_file = "/path/to/ignore_cache.csv"

[database]
# path = "/path/to/screener.db"

[logging]
level = "info"
file = true
`

const credentialsTemplate = `# dividend-screener credentials
# Values here can be overridden by POLYGON_API_KEY, BROKER_USERNAME and
# BROKER_PASSWORD environment variables.

[polygon]
api_key = ""

[broker]
username = ""
password = ""
`

func createTemplateConfig(configDir string) error {
	return writeTemplate(configDir, "config.toml", configTemplate, 0644)
}

func createTemplateCredentials(configDir string) error {
	return writeTemplate(configDir, "credentials.toml", credentialsTemplate, 0600)
}

func writeTemplate(configDir, name, content string, mode os.FileMode) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, name)
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	if err := os.WriteFile(path, []byte(content), mode); err != nil {
		return fmt.Errorf("writing %s template: %w", name, err)
	}
	return nil
}
