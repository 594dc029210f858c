package config

import (
	"time"

	"github.com/urfave/cli/v3"
	"github.com/yamori/gleaner/pkg/domain/types"
)

// Collector holds feed fetching configuration
type Collector struct {
	UserAgent string
	Timeout   time.Duration
}

// Flags returns CLI flags for collector configuration
func (c *Collector) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "user-agent",
			Usage:       "User-Agent header sent to feed servers",
			Value:       "gleaner/" + types.Version,
			Destination: &c.UserAgent,
			Sources:     cli.EnvVars("GLEANER_USER_AGENT"),
		},
		&cli.DurationFlag{
			Name:        "fetch-timeout",
			Usage:       "Timeout per feed request",
			Value:       30 * time.Second,
			Destination: &c.Timeout,
			Sources:     cli.EnvVars("GLEANER_FETCH_TIMEOUT"),
		},
	}
}
