package main

import (
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"
	identityapp "github.com/velux/backend/internal/application/identity"
	"github.com/velux/backend/internal/infrastructure/auth"
	"github.com/velux/backend/internal/infrastructure/persistence"
	"github.com/velux/backend/internal/infrastructure/storage"
	"go.uber.org/zap"
)

func createAdminCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:  "create-admin",
		Usage: "create a staff account",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "username", Required: true},
			&cli.StringFlag{Name: "email", Required: true},
			&cli.StringFlag{
				Name:     "password",
				Usage:    "initial password; prefer the environment variable over the flag",
				EnvVars:  []string{"VELUX_ADMIN_PASSWORD"},
				Required: true,
			},
		},
		Action: func(c *cli.Context) error {
			cfg, err := e.config()
			if err != nil {
				return err
			}

			db, err := persistence.NewDatabase(&cfg.Database, e.log, "warn")
			if err != nil {
				return err
			}
			defer func() {
				if err := db.Close(); err != nil {
					e.log.Warn("Error closing database", zap.Error(err))
				}
			}()

			// no tokens are issued here, so neither a blacklist nor Google
			// sign-in is wired
			svc := identityapp.NewAuthService(
				persistence.NewGormUserRepository(db.DB),
				auth.NewJWTService(cfg.JWT),
				nil,
				nil,
				identityapp.DefaultAuthServiceConfig(),
				e.log,
			)
			user, err := svc.CreateStaffUser(c.Context, c.String("username"), c.String("email"), c.String("password"))
			if err != nil {
				return err
			}
			fmt.Fprintf(e.out, "created staff user %s (%s)\n", user.Username, user.ID)
			return nil
		},
	}
}

func ensureBucketCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:  "ensure-bucket",
		Usage: "create the product image bucket when it does not exist",
		Action: func(c *cli.Context) error {
			cfg, err := e.config()
			if err != nil {
				return err
			}
			if !cfg.Storage.Enabled {
				return errors.New("object storage is disabled in configuration")
			}

			s3, err := storage.NewS3ObjectStorage(&cfg.Storage, storage.WithLogger(e.log))
			if err != nil {
				return err
			}
			if err := s3.EnsureBucket(c.Context); err != nil {
				return err
			}
			fmt.Fprintf(e.out, "bucket %s ready\n", s3.GetBucket())
			return nil
		},
	}
}
