package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/talasbekov/rental-project-sub000/internal/app"
	"github.com/talasbekov/rental-project-sub000/internal/clock"
	"github.com/talasbekov/rental-project-sub000/internal/config"
	"github.com/talasbekov/rental-project-sub000/internal/storage/postgres"
	"github.com/talasbekov/rental-project-sub000/internal/sweep"
	transporthttp "github.com/talasbekov/rental-project-sub000/internal/transport/http"
	"github.com/talasbekov/rental-project-sub000/migrations"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	var migrateUp bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and background sweepers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}

			logger := log.Default()

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			startupCtx, startupCancel := context.WithTimeout(ctx, 5*time.Second)
			defer startupCancel()

			pool, err := pgxpool.New(startupCtx, cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("connect to db: %w", err)
			}
			defer pool.Close()

			if err := pool.Ping(startupCtx); err != nil {
				return fmt.Errorf("db ping: %w", err)
			}
			if migrateUp {
				if err := migrations.Apply(startupCtx, pool); err != nil {
					return fmt.Errorf("apply migrations: %w", err)
				}
			}

			clk := clock.NewSystem()
			notifier := app.NewLogNotifier(logger)
			timers := sweep.NewExpiryTimers(ctx, clk, notifier, logger)

			reservationRepo := postgres.NewReservationRepository(pool)
			resourceRepo := postgres.NewResourceRepository(pool)
			calendarRepo := postgres.NewCalendarRepository(pool)

			reservationSvc := app.NewReservationService(reservationRepo, clk,
				app.WithHoldTTL(cfg.HoldTTL),
				app.WithNotifier(timers),
				app.WithLogger(logger),
			)
			timers.Bind(reservationSvc)
			availabilitySvc := app.NewAvailabilityService(reservationRepo)
			calendarSvc := app.NewCalendarService(calendarRepo, clk)
			resourceSvc := app.NewResourceService(resourceRepo, clk)

			expirySweeper := app.NewExpirySweeper(reservationRepo, reservationSvc, clk, logger)
			lifecycleSweeper := app.NewLifecycleSweeper(reservationRepo, clk,
				app.WithCleaningBufferDays(cfg.CleaningBufferDays),
				app.WithLifecycleNotifier(notifier),
				app.WithLifecycleLogger(logger),
			)

			go func() {
				_ = sweep.NewRunner("expiry", expirySweeper, cfg.ExpirySweepInterval, logger).Run(ctx)
			}()
			go func() {
				_ = sweep.NewRunner("lifecycle", lifecycleSweeper, cfg.LifecycleSweepInterval, logger).Run(ctx)
			}()

			mux := http.NewServeMux()
			mux.HandleFunc("/health", transporthttp.HealthHandler)
			mux.Handle("/reservations", transporthttp.HandleCreateReservation(reservationSvc))
			mux.Handle("/reservations/", transporthttp.HandleReservationActions(reservationSvc))
			mux.Handle("/resources", transporthttp.HandleResources(resourceSvc))
			mux.Handle("/resources/", transporthttp.ResourceSubHandlers{
				Resources:    resourceSvc,
				Availability: availabilitySvc,
				Calendar:     calendarSvc,
			}.Handler())
			mux.Handle("/", transporthttp.NotFoundHandler())

			handler := transporthttp.RequestLogger(transporthttp.CORS(cfg.CORSOrigins, mux), logger)

			server := &http.Server{
				Addr:    cfg.HTTPAddr,
				Handler: handler,
			}

			logger.Printf("api listening on %s", cfg.HTTPAddr)

			srvErr := make(chan error, 1)
			go func() {
				srvErr <- server.ListenAndServe()
			}()

			select {
			case err := <-srvErr:
				if err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
			case <-ctx.Done():
				logger.Printf("shutdown signal received, stopping server")
			}

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer shutdownCancel()
			if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Printf("server shutdown error: %v", err)
			}
			logger.Printf("server stopped")
			return nil
		},
	}

	cmd.Flags().BoolVar(&migrateUp, "migrate", true, "run database migrations on startup")
	cmd.Flags().Lookup("migrate").NoOptDefVal = "true"
	return cmd
}
