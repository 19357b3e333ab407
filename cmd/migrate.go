package cmd

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/talasbekov/rental-project-sub000/internal/config"
	"github.com/talasbekov/rental-project-sub000/migrations"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPool(cmd.Context(), func(ctx context.Context, cfg config.Config, pool *pgxpool.Pool) error {
				if err := migrations.Apply(ctx, pool); err != nil {
					return err
				}
				log.Printf("migrations applied")
				return nil
			})
		},
	}
}
