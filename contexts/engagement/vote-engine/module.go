package voteengine

import (
	"log/slog"

	httpadapter "votable/contexts/engagement/vote-engine/adapters/http"
	"votable/contexts/engagement/vote-engine/adapters/memory"
	"votable/contexts/engagement/vote-engine/application/commands"
	"votable/contexts/engagement/vote-engine/application/queries"
	"votable/contexts/engagement/vote-engine/application/workers"
	"votable/contexts/engagement/vote-engine/domain/services"
	"votable/contexts/engagement/vote-engine/ports"
)

type Module struct {
	Handler        httpadapter.Handler
	RatioRefresher workers.RatioRefresher
	Kinds          *services.Registry
	Store          *memory.Store
}

type Dependencies struct {
	Kinds  *services.Registry
	Store  ports.DocumentStore
	IDGen  ports.IDGenerator
	Ratios ports.RefreshQueue
	Logger *slog.Logger
}

func NewModule(deps Dependencies) Module {
	voteUseCase := commands.VoteUseCase{
		Kinds:  deps.Kinds,
		Store:  deps.Store,
		Ratios: deps.Ratios,
		Logger: deps.Logger,
	}
	voteeUseCase := commands.VoteeUseCase{
		Kinds:  deps.Kinds,
		Store:  deps.Store,
		IDGen:  deps.IDGen,
		Logger: deps.Logger,
	}
	tallyUseCase := queries.TallyUseCase{
		Kinds: deps.Kinds,
		Store: deps.Store,
	}
	module := Module{
		Handler: httpadapter.Handler{
			Votes:   voteUseCase,
			Votees:  voteeUseCase,
			Tallies: tallyUseCase,
			Logger:  deps.Logger,
		},
		Kinds: deps.Kinds,
	}
	if deps.Ratios != nil {
		module.RatioRefresher = workers.RatioRefresher{
			Kinds:  deps.Kinds,
			Store:  deps.Store,
			Queue:  deps.Ratios,
			Logger: deps.Logger,
		}
	}
	return module
}

// NewInMemoryModule wires every port to one memory store, including the
// ratio refresh queue.
func NewInMemoryModule(kinds *services.Registry, logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Kinds:  kinds,
		Store:  store,
		IDGen:  store,
		Ratios: store,
		Logger: logger,
	})
	module.Store = store
	return module
}
