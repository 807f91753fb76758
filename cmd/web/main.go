package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/AdamBeresnev/tournament-bracket/internal/config"
	"github.com/AdamBeresnev/tournament-bracket/internal/db"
	"github.com/AdamBeresnev/tournament-bracket/internal/live"
	"github.com/AdamBeresnev/tournament-bracket/internal/seed"
	"github.com/AdamBeresnev/tournament-bracket/internal/service"
	"github.com/AdamBeresnev/tournament-bracket/internal/store"
	"github.com/AdamBeresnev/tournament-bracket/internal/worker"
	"github.com/jmoiron/sqlx"
)

type application struct {
	cfg         config.Config
	tournaments *service.TournamentService
	teams       *service.TeamService
	matches     *service.MatchService
	standings   *service.StandingsService
	pipeline    *service.Pipeline
	hub         *live.Hub
}

func newApplication(cfg config.Config, database *sqlx.DB, hub *live.Hub) *application {
	tournamentStore := store.NewTournamentStore(database)
	standings := service.NewStandingsService(database, tournamentStore)

	pipeline := service.NewPipeline(
		tournamentStore,
		service.NewMatchGenerator(database, tournamentStore, cfg.SeedingRule),
		service.NewFinalsGenerator(database, tournamentStore, cfg.FinalsAdvance),
		standings,
		service.NewStatusManager(database, tournamentStore),
		hub,
	)

	return &application{
		cfg:         cfg,
		tournaments: service.NewTournamentService(database, tournamentStore),
		teams:       service.NewTeamService(database, tournamentStore),
		matches:     service.NewMatchService(database, tournamentStore),
		standings:   standings,
		pipeline:    pipeline,
		hub:         hub,
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Invalid configuration:", err)
	}

	database := db.InitDB(cfg.DatabasePath)
	defer database.Close()

	if err := db.RunMigrations(database.DB); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hub := live.NewHub(cfg.AllowedOrigins)
	go hub.Run(ctx)

	app := newApplication(cfg, database, hub)

	if cfg.SeedData {
		if _, err := seed.Load(ctx, app.tournaments, app.teams, app.pipeline); err != nil {
			log.Fatal("Failed to seed data:", err)
		}
	}

	reconciler, err := worker.StartReconciler(ctx, app.pipeline, cfg.ReconcileInterval)
	if err != nil {
		log.Fatal("Failed to start reconciler:", err)
	}
	defer reconciler.Stop()

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           app.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Println("Server shutdown:", err)
		}
	}()

	log.Printf("Server starting on http://localhost%s", cfg.Addr())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}
