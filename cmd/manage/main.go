// Command manage runs operational tasks against the shop backend: schema
// migrations, staff account creation and bucket provisioning.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"
	"github.com/velux/backend/internal/infrastructure/config"
	"github.com/velux/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// env carries what every command shares. Configuration is loaded lazily
// because create and list work without a database.
type env struct {
	out io.Writer
	log *zap.Logger
	cfg *config.Config
}

func (e *env) config() (*config.Config, error) {
	if e.cfg != nil {
		return e.cfg, nil
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	e.cfg = cfg
	return cfg, nil
}

func newApp(out io.Writer) *cli.App {
	e := &env{out: out, log: zap.NewNop()}

	return &cli.App{
		Name:      "manage",
		Usage:     "Velux backend management commands",
		Writer:    out,
		ErrWriter: out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-level",
				Value: "info",
				Usage: "log level (debug, info, warn, error)",
			},
		},
		Before: func(c *cli.Context) error {
			e.log = logger.New(logger.Config{
				Level:      c.String("log-level"),
				Format:     "console",
				Output:     "stderr",
				TimeFormat: "2006-01-02 15:04:05",
			})
			return nil
		},
		After: func(*cli.Context) error {
			_ = e.log.Sync()
			return nil
		},
		Commands: []*cli.Command{
			migrateCommand(e),
			createAdminCommand(e),
			ensureBucketCommand(e),
		},
	}
}
