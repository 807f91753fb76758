package service

import (
	"errors"

	"github.com/AdamBeresnev/tournament-bracket/internal/bracket"
)

var (
	ErrValidation = errors.New("validation failed")

	ErrTournamentNotFound = errors.New("tournament not found")
	ErrTeamNotFound       = errors.New("team not found")
	ErrMatchNotFound      = errors.New("match not found")

	// Registration
	ErrTournamentFull = errors.New("tournament registration is full")
	ErrTeamNameTaken  = errors.New("team name is already registered for this tournament")

	// Bracket generation
	ErrOddTeamCount      = bracket.ErrOddTeamCount
	ErrTeamCountMismatch = errors.New("registered teams do not match tournament capacity")
	ErrFinalsNotReady    = errors.New("qualifying matches are not all complete")

	// Results
	ErrMatchNotSeeded = errors.New("match does not have two teams yet")
	ErrResultConflict = errors.New("match already has a different result")
	ErrDrawInFinals   = errors.New("a finals match needs a winner")
)
