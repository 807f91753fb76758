package main

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/AdamBeresnev/tournament-bracket/internal/bracket"
	"github.com/AdamBeresnev/tournament-bracket/internal/httputil"
	"github.com/AdamBeresnev/tournament-bracket/internal/service"
	"github.com/AdamBeresnev/tournament-bracket/views"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func urlID(w http.ResponseWriter, r *http.Request, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.BadRequest(w, "Invalid "+what+" ID", err)
		return uuid.Nil, false
	}
	return id, true
}

func (app *application) handleTeamCreatedEvent(w http.ResponseWriter, r *http.Request) {
	var event service.TeamCreatedEvent
	if err := httputil.DecodeJSON(r, &event); err != nil {
		httputil.BadRequest(w, "Invalid event payload", err)
		return
	}
	if err := app.pipeline.OnTeamCreated(r.Context(), event); err != nil {
		httputil.ServiceError(w, "Failed to handle team created event", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (app *application) handleMatchUpdatedEvent(w http.ResponseWriter, r *http.Request) {
	var event service.MatchUpdatedEvent
	if err := httputil.DecodeJSON(r, &event); err != nil {
		httputil.BadRequest(w, "Invalid event payload", err)
		return
	}
	if err := app.pipeline.OnMatchUpdated(r.Context(), event); err != nil {
		httputil.ServiceError(w, "Failed to handle match updated event", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (app *application) handleListTournaments(w http.ResponseWriter, r *http.Request) {
	tournaments, err := app.tournaments.ListTournaments(r.Context())
	if err != nil {
		httputil.InternalServerError(w, "Failed to list tournaments", err)
		return
	}
	if tournaments == nil {
		tournaments = []bracket.Tournament{}
	}
	httputil.JSON(w, http.StatusOK, tournaments)
}

type createTournamentRequest struct {
	ID         *uuid.UUID `json:"id"`
	Name       string     `json:"name"`
	Sport      string     `json:"sport"`
	Location   string     `json:"location"`
	Date       time.Time  `json:"date"`
	PriceCents int64      `json:"price_cents"`
	TeamsMax   int        `json:"teams_max"`
}

func (app *application) handleCreateTournament(w http.ResponseWriter, r *http.Request) {
	var req createTournamentRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.BadRequest(w, "Invalid tournament payload", err)
		return
	}

	tournament, err := app.tournaments.CreateTournament(r.Context(), service.TournamentInput{
		ID:         req.ID,
		Name:       req.Name,
		Sport:      req.Sport,
		Location:   req.Location,
		EventDate:  req.Date,
		PriceCents: req.PriceCents,
		TeamsMax:   req.TeamsMax,
	})
	if err != nil {
		httputil.ServiceError(w, "Failed to create tournament", err)
		return
	}
	httputil.JSON(w, http.StatusCreated, tournament)
}

func (app *application) handleGetTournament(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "tournament")
	if !ok {
		return
	}

	data, err := app.tournaments.GetTournamentData(r.Context(), id)
	if err != nil {
		httputil.ServiceError(w, "Failed to get tournament", err)
		return
	}
	teams := data.Teams
	if teams == nil {
		teams = []bracket.Team{}
	}
	httputil.JSON(w, http.StatusOK, map[string]any{
		"tournament": data.Tournament,
		"teams":      teams,
	})
}

func (app *application) handleListTeams(w http.ResponseWriter, r *http.Request) {
	tournamentID, ok := urlID(w, r, "tournament")
	if !ok {
		return
	}

	teams, err := app.teams.GetTeams(r.Context(), tournamentID)
	if err != nil {
		httputil.ServiceError(w, "Failed to list teams", err)
		return
	}
	if teams == nil {
		teams = []bracket.Team{}
	}
	httputil.JSON(w, http.StatusOK, teams)
}

type registerTeamRequest struct {
	ID   *uuid.UUID `json:"id"`
	Name string     `json:"name"`
}

func (app *application) handleRegisterTeam(w http.ResponseWriter, r *http.Request) {
	tournamentID, ok := urlID(w, r, "tournament")
	if !ok {
		return
	}

	var req registerTeamRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.BadRequest(w, "Invalid team payload", err)
		return
	}

	team, created, err := app.teams.RegisterTeam(r.Context(), tournamentID, service.TeamInput{ID: req.ID, Name: req.Name})
	if err != nil {
		httputil.ServiceError(w, "Failed to register team", err)
		return
	}

	// The registration is stored either way; the reconciler retries a failed event
	event := service.TeamCreatedEvent{TournamentID: tournamentID, TeamID: team.ID}
	if err := app.pipeline.OnTeamCreated(r.Context(), event); err != nil {
		slog.Error("team created event failed", "tournament_id", tournamentID, "team_id", team.ID, "error", err)
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	httputil.JSON(w, status, team)
}

func (app *application) handleGetMatch(w http.ResponseWriter, r *http.Request) {
	matchID, ok := urlID(w, r, "match")
	if !ok {
		return
	}

	match, err := app.matches.GetMatch(r.Context(), matchID)
	if err != nil {
		httputil.ServiceError(w, "Failed to get match", err)
		return
	}
	httputil.JSON(w, http.StatusOK, match)
}

type recordResultRequest struct {
	Score1 *int `json:"score_1"`
	Score2 *int `json:"score_2"`
}

func (app *application) handleRecordResult(w http.ResponseWriter, r *http.Request) {
	matchID, ok := urlID(w, r, "match")
	if !ok {
		return
	}

	var req recordResultRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.BadRequest(w, "Invalid result payload", err)
		return
	}
	if req.Score1 == nil || req.Score2 == nil {
		httputil.BadRequest(w, "score_1 and score_2 are required", nil)
		return
	}

	match, changed, err := app.matches.RecordResult(r.Context(), matchID, *req.Score1, *req.Score2)
	if err != nil {
		httputil.ServiceError(w, "Failed to record result", err)
		return
	}

	// A replayed result still runs the pipeline, in case the first run failed
	event := service.MatchUpdatedEvent{TournamentID: match.TournamentID, MatchID: match.ID}
	if err := app.pipeline.OnMatchUpdated(r.Context(), event); err != nil {
		slog.Error("match updated event failed", "tournament_id", match.TournamentID, "match_id", match.ID, "changed", changed, "error", err)
	}
	httputil.JSON(w, http.StatusOK, match)
}

func (app *application) bracketData(w http.ResponseWriter, r *http.Request) (*service.TournamentData, views.BracketData, bool) {
	id, ok := urlID(w, r, "tournament")
	if !ok {
		return nil, views.BracketData{}, false
	}

	data, err := app.tournaments.GetTournamentData(r.Context(), id)
	if err != nil {
		httputil.ServiceError(w, "Failed to get tournament", err)
		return nil, views.BracketData{}, false
	}
	return data, views.PrepareBracketData(data.Teams, data.Matches, data.Standings), true
}

func (app *application) handleBracket(w http.ResponseWriter, r *http.Request) {
	data, bracketData, ok := app.bracketData(w, r)
	if !ok {
		return
	}
	httputil.JSON(w, http.StatusOK, bracketData.Payload(data.Tournament))
}

func (app *application) handleBracketSVG(w http.ResponseWriter, r *http.Request) {
	_, bracketData, ok := app.bracketData(w, r)
	if !ok {
		return
	}
	if err := views.RenderSVG(w, r, views.BracketSVG(bracketData)); err != nil {
		slog.Error("failed to render bracket svg", "error", err)
	}
}

func (app *application) handleStandings(w http.ResponseWriter, r *http.Request) {
	_, bracketData, ok := app.bracketData(w, r)
	if !ok {
		return
	}
	httputil.JSON(w, http.StatusOK, bracketData.Payload(nil).Standings)
}

func (app *application) handleLive(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "tournament")
	if !ok {
		return
	}
	if _, err := app.tournaments.GetTournament(r.Context(), id); err != nil {
		httputil.ServiceError(w, "Failed to get tournament", err)
		return
	}
	app.hub.ServeWS(w, r, id)
}
