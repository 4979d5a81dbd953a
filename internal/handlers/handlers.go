package handlers

import (
	"localfeed/internal/derivative"
	"localfeed/internal/index"
	"localfeed/internal/pathguard"
	"localfeed/internal/startup"
	"localfeed/internal/store"
)

// Handlers carries the shared dependencies for all HTTP endpoints.
type Handlers struct {
	config      *store.ConfigStore
	favorites   *store.ListStore
	trash       *store.ListStore
	index       *index.Cache
	derivatives *derivative.Store
	guard       *pathguard.Guard
}

// New wires the handler set against the application components.
func New(cfg *startup.Config, configStore *store.ConfigStore, idx *index.Cache, derivatives *derivative.Store) *Handlers {
	return &Handlers{
		config:      configStore,
		favorites:   store.NewListStore(cfg.FavoritesPath, "favorites"),
		trash:       store.NewListStore(cfg.TrashPath, "trash"),
		index:       idx,
		derivatives: derivatives,
		guard:       pathguard.New(configStore.Folders),
	}
}
