package main

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	_ "github.com/lib/pq"
	"github.com/urfave/cli/v2"
	"github.com/velux/backend/internal/infrastructure/migration"
	"github.com/velux/backend/internal/infrastructure/persistence"
	"github.com/velux/backend/migrations"
	"go.uber.org/zap"
)

const defaultMigrationsDir = "migrations"

var errSQLiteMigrations = errors.New("SQL migrations target PostgreSQL; sqlite schemas are created by the server on start")

func migrateCommand(e *env) *cli.Command {
	dirFlag := &cli.StringFlag{
		Name:  "dir",
		Usage: "read migrations from this directory instead of the embedded set",
	}

	return &cli.Command{
		Name:  "migrate",
		Usage: "manage the PostgreSQL schema",
		Flags: []cli.Flag{dirFlag},
		Subcommands: []*cli.Command{
			{
				Name:  "up",
				Usage: "apply all pending migrations",
				Action: func(c *cli.Context) error {
					return e.withMigrator(c, (*migration.Migrator).Up)
				},
			},
			{
				Name:  "down",
				Usage: "roll back every migration",
				Flags: []cli.Flag{&cli.BoolFlag{Name: "yes", Usage: "confirm dropping the schema"}},
				Action: func(c *cli.Context) error {
					if !c.Bool("yes") {
						return errors.New("refusing to roll back everything without --yes")
					}
					return e.withMigrator(c, (*migration.Migrator).Down)
				},
			},
			{
				Name:      "steps",
				Usage:     "apply N migrations, or roll back with a negative N",
				ArgsUsage: "N",
				Action: func(c *cli.Context) error {
					n, err := strconv.Atoi(c.Args().First())
					if err != nil || n == 0 {
						return fmt.Errorf("steps needs a non-zero integer, got %q", c.Args().First())
					}
					return e.withMigrator(c, func(m *migration.Migrator) error { return m.Steps(n) })
				},
			},
			{
				Name:      "goto",
				Usage:     "migrate up or down to VERSION",
				ArgsUsage: "VERSION",
				Action: func(c *cli.Context) error {
					v, err := strconv.ParseUint(c.Args().First(), 10, 64)
					if err != nil {
						return fmt.Errorf("invalid version %q", c.Args().First())
					}
					return e.withMigrator(c, func(m *migration.Migrator) error { return m.GoTo(uint(v)) })
				},
			},
			{
				Name:  "version",
				Usage: "print the applied schema version",
				Action: func(c *cli.Context) error {
					return e.withMigrator(c, func(m *migration.Migrator) error {
						status, err := m.Status()
						if err != nil {
							return err
						}
						if !status.Applied {
							fmt.Fprintln(e.out, "no migrations applied")
							return nil
						}
						fmt.Fprintf(e.out, "version %d (dirty: %t)\n", status.Version, status.Dirty)
						return nil
					})
				},
			},
			{
				Name:      "force",
				Usage:     "record VERSION without running it, to clear a dirty state",
				ArgsUsage: "VERSION",
				Action: func(c *cli.Context) error {
					v, err := strconv.Atoi(c.Args().First())
					if err != nil {
						return fmt.Errorf("invalid version %q", c.Args().First())
					}
					return e.withMigrator(c, func(m *migration.Migrator) error { return m.Force(v) })
				},
			},
			{
				Name:      "create",
				Usage:     "scaffold an empty up/down pair",
				ArgsUsage: "NAME",
				Action: func(c *cli.Context) error {
					if c.NArg() == 0 {
						return errors.New("migration name required")
					}
					dir := c.String("dir")
					if dir == "" {
						dir = defaultMigrationsDir
					}
					created, err := migration.CreateMigration(dir, c.Args().First())
					if err != nil {
						return err
					}
					e.log.Info("Migration created",
						zap.Uint("version", created.Version),
						zap.String("up_file", created.UpPath),
						zap.String("down_file", created.DownPath),
					)
					fmt.Fprintln(e.out, created.UpPath)
					fmt.Fprintln(e.out, created.DownPath)
					return nil
				},
			},
			{
				Name:  "list",
				Usage: "list available migrations",
				Action: func(c *cli.Context) error {
					entries, err := migration.ListMigrations(migrationSource(c))
					if err != nil {
						return err
					}
					if len(entries) == 0 {
						fmt.Fprintln(e.out, "no migrations found")
						return nil
					}
					for _, entry := range entries {
						suffix := ""
						if !entry.HasDown {
							suffix = " (no down)"
						}
						fmt.Fprintf(e.out, "%s%s\n", entry.BaseName(), suffix)
					}
					return nil
				},
			},
		},
	}
}

// migrationSource returns the --dir directory when given, else the
// migrations compiled into the binary
func migrationSource(c *cli.Context) fs.FS {
	if dir := c.String("dir"); dir != "" {
		return os.DirFS(dir)
	}
	return migrations.FS
}

func (e *env) withMigrator(c *cli.Context, run func(*migration.Migrator) error) error {
	cfg, err := e.config()
	if err != nil {
		return err
	}
	if cfg.Database.Driver == persistence.DialectSQLite {
		return errSQLiteMigrations
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()
	if err := db.PingContext(c.Context); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	var m *migration.Migrator
	if dir := c.String("dir"); dir != "" {
		m, err = migration.NewFromDir(db, dir, e.log)
	} else {
		m, err = migration.NewFromFS(db, migrations.FS, e.log)
	}
	if err != nil {
		return err
	}
	defer func() {
		if err := m.Close(); err != nil {
			e.log.Warn("Error closing migrator", zap.Error(err))
		}
	}()

	return run(m)
}
