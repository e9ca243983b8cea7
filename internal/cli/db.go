package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/ncmlookup/internal/auth"
	"github.com/JonMunkholm/ncmlookup/internal/core"
	"github.com/JonMunkholm/ncmlookup/internal/database"
)

var errNoDatabaseURL = errors.New("database URL is required (set DATABASE_URL or --database-url)")

// openPool connects and pings. The caller closes the pool.
func (o *options) openPool(ctx context.Context) (*pgxpool.Pool, error) {
	if o.databaseURL == "" {
		return nil, errNoDatabaseURL
	}
	pool, err := pgxpool.New(ctx, o.databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return pool, nil
}

func newMigrateCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or inspect the embedded schema migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply every pending migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pool, err := opts.openPool(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := database.Migrate(cmd.Context(), pool); err != nil {
				return err
			}
			current, _, err := database.MigrationStatus(cmd.Context(), pool)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "schema at version %d\n", current)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "List migrations and whether each has been applied",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pool, err := opts.openPool(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			current, states, err := database.MigrationStatus(cmd.Context(), pool)
			if err != nil {
				return err
			}
			if opts.format == FormatJSON {
				return renderJSON(cmd.OutOrStdout(), struct {
					Version    int64                     `json:"version"`
					Migrations []database.MigrationState `json:"migrations"`
				}{current, states})
			}
			return renderMigrations(cmd.OutOrStdout(), current, states)
		},
	})

	return cmd
}

func newSessionsCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Manage user login sessions",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Clear every user's session flag so all accounts can log in again",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pool, err := opts.openPool(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			// Only the store is needed; no tokens are issued or checked.
			svc := core.NewService(core.NewPgStore(pool), auth.Hasher{}, nil)
			n, err := svc.ResetSessions(cmd.Context())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "reset %d session(s)\n", n)
			return nil
		},
	})

	return cmd
}
