package config

import (
	"errors"
	"fmt"
	"os"
)

const exampleConfig = `# staticbuilder configuration
project_root: .
output_dir: static
base_url: relative
content_dir: content
templates_dir: templates
site_title: My Site

languages:
  - code: en
    default: true
  - code: de

assets:
  - assets
  - from: assets/robots.txt
    to: robots.txt

extension: /index.html
keep_extensions: [js, json, css, txt, svg, xml, atom, rss]
ugly_urls: false

with_files:
  enabled: true
  patterns: ["*.jpg", "*.png", "*.pdf"]

filter:
  module_prefix: module.
  exclude_uris:
    - pattern: "drafts/**"
      reason: draft

catch_errors: true
report_dir: .staticbuilder/reports

history:
  enabled: true
  path: .staticbuilder/history.db

notify:
  enabled: false
  nats_url: ${NATS_URL}
  subject: staticbuilder.runs

metrics:
  listen: ":9464"

schedule:
  interval: 1h
`

// Init writes an example configuration to configPath.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to stat config file: %w", err)
	}
	if err := os.WriteFile(configPath, []byte(exampleConfig), 0o644); err != nil { //nolint:gosec // config is not secret
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
