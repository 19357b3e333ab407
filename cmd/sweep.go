package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/talasbekov/rental-project-sub000/internal/app"
	"github.com/talasbekov/rental-project-sub000/internal/clock"
	"github.com/talasbekov/rental-project-sub000/internal/config"
	"github.com/talasbekov/rental-project-sub000/internal/domain"
	"github.com/talasbekov/rental-project-sub000/internal/storage/postgres"
)

func newSweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run a single maintenance pass and exit",
	}
	cmd.AddCommand(newSweepExpiryCmd())
	cmd.AddCommand(newSweepLifecycleCmd())
	cmd.AddCommand(newSweepCalendarCmd())
	return cmd
}

func newSweepExpiryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "expiry",
		Short: "Cancel held reservations whose hold TTL has lapsed",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPool(cmd.Context(), func(ctx context.Context, cfg config.Config, pool *pgxpool.Pool) error {
				logger := log.Default()
				clk := clock.NewSystem()
				repo := postgres.NewReservationRepository(pool)
				svc := app.NewReservationService(repo, clk, app.WithLogger(logger))
				n, err := app.NewExpirySweeper(repo, svc, clk, logger).RunOnce(ctx)
				if err != nil {
					return err
				}
				logger.Printf("expiry sweep done, expired %d", n)
				return nil
			})
		},
	}
}

func newSweepLifecycleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lifecycle",
		Short: "Complete finished stays and mark in-stay days occupied",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPool(cmd.Context(), func(ctx context.Context, cfg config.Config, pool *pgxpool.Pool) error {
				logger := log.Default()
				clk := clock.NewSystem()
				repo := postgres.NewReservationRepository(pool)
				sweeper := app.NewLifecycleSweeper(repo, clk,
					app.WithCleaningBufferDays(cfg.CleaningBufferDays),
					app.WithLifecycleLogger(logger),
				)
				n, err := sweeper.RunOnce(ctx)
				if err != nil {
					return err
				}
				logger.Printf("lifecycle sweep done, updated %d", n)
				return nil
			})
		},
	}
}

func newSweepCalendarCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "calendar",
		Short: "Seed the forward calendar window and drop days past retention",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPool(cmd.Context(), func(ctx context.Context, cfg config.Config, pool *pgxpool.Pool) error {
				logger := log.Default()
				clk := clock.NewSystem()
				calendarSvc := app.NewCalendarService(postgres.NewCalendarRepository(pool), clk)
				resourceSvc := app.NewResourceService(postgres.NewResourceRepository(pool), clk)

				resources, err := resourceSvc.List(ctx)
				if err != nil {
					return err
				}
				targets := seedTargets(resources)
				for _, res := range targets {
					if err := calendarSvc.Seed(ctx, res.ID, cfg.CalendarSeedDays); err != nil {
						return fmt.Errorf("seed resource %s: %w", res.ID, err)
					}
				}

				n, err := calendarSvc.CleanupOld(ctx, cfg.CalendarRetentionDays)
				if err != nil {
					return err
				}
				logger.Printf("calendar sweep done, seeded %d resources, deleted %d old days", len(targets), n)
				return nil
			})
		},
	}
}

// seedTargets keeps only resources open for new bookings; anything reserved,
// occupied or in maintenance is skipped.
func seedTargets(resources []domain.Resource) []domain.Resource {
	targets := make([]domain.Resource, 0, len(resources))
	for _, res := range resources {
		if res.Status == domain.ResourceStatusAvailable {
			targets = append(targets, res)
		}
	}
	return targets
}

func withPool(ctx context.Context, fn func(context.Context, config.Config, *pgxpool.Pool) error) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}

	connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(connectCtx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect to db: %w", err)
	}
	defer pool.Close()

	if err := pool.Ping(connectCtx); err != nil {
		return fmt.Errorf("db ping: %w", err)
	}
	return fn(ctx, cfg, pool)
}
