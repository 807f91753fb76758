package main

import (
	"net/http"

	"github.com/AdamBeresnev/tournament-bracket/internal/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func (app *application) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   app.cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", middleware.TriggerSecretHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Trigger surface, called by whatever watches the documents
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireTriggerSecret(app.cfg.TriggerSecret))

		r.Post("/events/team-created", app.handleTeamCreatedEvent)
		r.Post("/events/match-updated", app.handleMatchUpdatedEvent)
	})

	r.Route("/tournaments", func(r chi.Router) {
		r.Get("/", app.handleListTournaments)
		r.Post("/", app.handleCreateTournament)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", app.handleGetTournament)
			r.Get("/teams", app.handleListTeams)
			r.Post("/teams", app.handleRegisterTeam)
			r.Get("/bracket", app.handleBracket)
			r.Get("/bracket.svg", app.handleBracketSVG)
			r.Get("/standings", app.handleStandings)
		})
	})

	r.Get("/matches/{id}", app.handleGetMatch)
	r.Post("/matches/{id}/result", app.handleRecordResult)

	r.Get("/ws/tournaments/{id}", app.handleLive)

	return r
}
