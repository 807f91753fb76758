package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/AdamBeresnev/tournament-bracket/internal/bracket"
	"github.com/joho/godotenv"
)

type Config struct {
	DatabasePath      string
	ServerPort        int
	SeedingRule       bracket.SeedingRule
	FinalsAdvance     int
	ReconcileInterval time.Duration
	TriggerSecret     string
	AllowedOrigins    []string
	SeedData          bool
}

func defaults() Config {
	return Config{
		DatabasePath:      "tournaments.db",
		ServerPort:        8080,
		SeedingRule:       bracket.SequentialSeeding,
		FinalsAdvance:     2,
		ReconcileInterval: time.Minute,
		AllowedOrigins:    []string{"*"},
	}
}

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv builds a Config from a lookup function so tests need not touch the
// real environment.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	cfg := defaults()
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	if v, ok := get("DATABASE_PATH"); ok {
		cfg.DatabasePath = v
	}

	if v, ok := get("SERVER_PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil || port < 1 || port > 65535 {
			return Config{}, fmt.Errorf("invalid SERVER_PORT %q", v)
		}
		cfg.ServerPort = port
	}

	if v, ok := get("SEEDING_RULE"); ok {
		rule, err := bracket.ParseSeedingRule(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SEEDING_RULE: %w", err)
		}
		cfg.SeedingRule = rule
	}

	if v, ok := get("FINALS_ADVANCE"); ok {
		advance, err := strconv.Atoi(v)
		if err != nil || advance < 2 || advance%2 != 0 {
			return Config{}, fmt.Errorf("invalid FINALS_ADVANCE %q: must be an even number of at least 2", v)
		}
		cfg.FinalsAdvance = advance
	}

	if v, ok := get("RECONCILE_INTERVAL"); ok {
		interval, err := time.ParseDuration(v)
		if err != nil || interval <= 0 {
			return Config{}, fmt.Errorf("invalid RECONCILE_INTERVAL %q", v)
		}
		cfg.ReconcileInterval = interval
	}

	if v, ok := get("TRIGGER_SECRET"); ok {
		cfg.TriggerSecret = v
	}

	if v, ok := get("ALLOWED_ORIGINS"); ok {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.AllowedOrigins = origins
	}

	if v, ok := get("SEED_DATA"); ok {
		seed, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SEED_DATA %q", v)
		}
		cfg.SeedData = seed
	}

	return cfg, nil
}

func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.ServerPort)
}
