package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreMemory   = "memory"
	StoreMongo    = "mongo"
	StorePostgres = "postgres"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName string
	HTTPPort    string

	VoteStore      string
	MongoURI       string
	MongoDatabase  string
	MongoObjectIDs bool
	PostgresDSN    string

	DefaultVotingField string
	UpWeight           float64
	DownWeight         float64
	VoteeKinds         []VoteeKind

	EnableRatioRefresh   bool
	RatioRefreshInterval time.Duration
}

// VoteeKind is one entry of VOTEE_KINDS:
// name[:collection][@relation][#field|field...]
type VoteeKind struct {
	Name       string
	Collection string
	Relation   string
	Fields     []string
}

// Load reads the environment, after merging an optional .env file from the
// working directory. Variables already set win over the file.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	service := os.Getenv("SERVICE_NAME")
	if service == "" {
		service = "votable"
	}

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}

	store := strings.ToLower(strings.TrimSpace(os.Getenv("VOTE_STORE")))
	if store == "" {
		store = StoreMemory
	}
	if store != StoreMemory && store != StoreMongo && store != StorePostgres {
		return Config{}, fmt.Errorf("VOTE_STORE %q is not one of memory, mongo, postgres", store)
	}

	database := os.Getenv("MONGO_DATABASE")
	if database == "" {
		database = "votable"
	}

	field := strings.TrimSpace(os.Getenv("VOTE_DEFAULT_FIELD"))
	if field == "" {
		field = "votes"
	}

	upWeight, err := envFloat("VOTE_UP_WEIGHT", 1)
	if err != nil {
		return Config{}, err
	}
	downWeight, err := envFloat("VOTE_DOWN_WEIGHT", -1)
	if err != nil {
		return Config{}, err
	}

	kinds, err := parseVoteeKinds(os.Getenv("VOTEE_KINDS"), field)
	if err != nil {
		return Config{}, err
	}

	interval := 5 * time.Second
	if raw := strings.TrimSpace(os.Getenv("RATIO_REFRESH_INTERVAL")); raw != "" {
		interval, err = time.ParseDuration(raw)
		if err != nil || interval <= 0 {
			return Config{}, fmt.Errorf("RATIO_REFRESH_INTERVAL %q is not a positive duration", raw)
		}
	}

	return Config{
		ServiceName: service,
		HTTPPort:    port,

		VoteStore:      store,
		MongoURI:       os.Getenv("MONGO_URI"),
		MongoDatabase:  database,
		MongoObjectIDs: envBool("MONGO_OBJECT_IDS", false),
		PostgresDSN:    os.Getenv("POSTGRES_DSN"),

		DefaultVotingField: field,
		UpWeight:           upWeight,
		DownWeight:         downWeight,
		VoteeKinds:         kinds,

		EnableRatioRefresh:   envBool("ENABLE_RATIO_REFRESH", false),
		RatioRefreshInterval: interval,
	}, nil
}

func parseVoteeKinds(raw string, defaultField string) ([]VoteeKind, error) {
	if strings.TrimSpace(raw) == "" {
		raw = "posts"
	}
	var kinds []VoteeKind
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		kind := VoteeKind{Fields: []string{defaultField}}
		if head, fields, ok := strings.Cut(entry, "#"); ok {
			entry = head
			kind.Fields = nil
			for _, field := range strings.Split(fields, "|") {
				if field = strings.TrimSpace(field); field != "" {
					kind.Fields = append(kind.Fields, field)
				}
			}
		}
		if head, relation, ok := strings.Cut(entry, "@"); ok {
			entry = head
			kind.Relation = strings.TrimSpace(relation)
		}
		name, collection, _ := strings.Cut(entry, ":")
		kind.Name = strings.TrimSpace(name)
		kind.Collection = strings.TrimSpace(collection)
		if kind.Collection == "" {
			kind.Collection = kind.Name
		}
		if kind.Name == "" || len(kind.Fields) == 0 {
			return nil, fmt.Errorf("VOTEE_KINDS entry %q is malformed", entry)
		}
		kinds = append(kinds, kind)
	}
	return kinds, nil
}

func envFloat(name string, fallback float64) (float64, error) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s %q is not a number", name, raw)
	}
	return value, nil
}

func envBool(name string, fallback bool) bool {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return fallback
	}
}
