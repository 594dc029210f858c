package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"github.com/yamori/gleaner/pkg/domain/model"
)

// Feeds holds the feed configuration file location
type Feeds struct {
	Path string
}

// Flags returns CLI flags for feed configuration
func (c *Feeds) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to feed configuration JSON file",
			Required:    true,
			Destination: &c.Path,
			Sources:     cli.EnvVars("GLEANER_CONFIG"),
		},
	}
}

// Load reads and validates the feed configuration. A relative log_file
// entry is resolved against the parent of the configuration directory.
func (c *Feeds) Load() (*model.FeedConfig, error) {
	data, err := os.ReadFile(c.Path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read feed configuration", goerr.V("path", c.Path))
	}

	var cfg model.FeedConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, goerr.Wrap(err, "failed to decode feed configuration", goerr.V("path", c.Path))
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid feed configuration", goerr.V("path", c.Path))
	}

	if cfg.LogFile != "" && !filepath.IsAbs(cfg.LogFile) {
		abs, err := filepath.Abs(filepath.Join(filepath.Dir(c.Path), "..", cfg.LogFile))
		if err != nil {
			return nil, goerr.Wrap(err, "failed to resolve log file path", goerr.V("log_file", cfg.LogFile))
		}
		cfg.LogFile = abs
	}

	return &cfg, nil
}
