package main

// go run ./cmd/dbmis/migrate --seed-admin --admin-password <password>

import (
	"context"
	"fmt"
	"os"

	"dbmis/internal/app/ds"
	"dbmis/internal/app/dsn"
	"dbmis/internal/app/repository"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type options struct {
	driver        string
	sqlitePath    string
	seedAdmin     bool
	adminUsername string
	adminPassword string
}

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("no .env file, using process environment")
	}
	if err := newMigrateCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newMigrateCmd() *cobra.Command {
	opts := options{}
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the DBMIS tables",
		Long: `Runs gorm AutoMigrate for every table.

With --seed-admin an administrator account is created when no user
with --admin-username exists yet.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.driver, "driver", envOr("DB_DRIVER", repository.DriverPostgres), "database driver: postgres or sqlite")
	flags.StringVar(&opts.sqlitePath, "sqlite-path", envOr("SQLITE_PATH", "dbmis.db"), "sqlite database file")
	flags.BoolVar(&opts.seedAdmin, "seed-admin", false, "create the admin user if it is missing")
	flags.StringVar(&opts.adminUsername, "admin-username", envOr("ADMIN_USERNAME", "admin"), "admin username")
	flags.StringVar(&opts.adminPassword, "admin-password", os.Getenv("ADMIN_PASSWORD"), "admin password")
	return cmd
}

func run(ctx context.Context, opts options) error {
	target := dsn.FromEnv()
	if opts.driver == repository.DriverSQLite {
		target = opts.sqlitePath
	}
	db, err := repository.Open(opts.driver, target)
	if err != nil {
		return fmt.Errorf("error connecting to database: %w", err)
	}
	rep := repository.New(db)
	defer rep.Close()

	// Порядок важен: users, затем категории и элементы, затем бизнес-справочники
	for _, model := range ds.All() {
		if err := rep.Migrate(model); err != nil {
			return fmt.Errorf("error migrating %T: %w", model, err)
		}
	}
	logrus.Info("Database migration completed")

	if !opts.seedAdmin {
		return nil
	}
	created, err := rep.EnsureAdmin(ctx, opts.adminUsername, opts.adminPassword)
	if err != nil {
		return fmt.Errorf("error seeding admin: %w", err)
	}
	if created {
		logrus.Infof("admin user %q created", opts.adminUsername)
	} else {
		logrus.Infof("admin user %q already exists", opts.adminUsername)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
