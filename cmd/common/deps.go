// Package common provides shared dependency construction for commands.
package common

import (
	"fmt"

	"github.com/standingshq/leaguecrawl/internal/config"
	"github.com/standingshq/leaguecrawl/internal/logger"
	"github.com/standingshq/leaguecrawl/internal/storage"
)

// Deps holds the dependencies every command needs.
type Deps struct {
	Config config.Config
	Logger logger.Interface
}

// NewDeps loads configuration and builds the logger.
func NewDeps() (Deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return Deps{}, err
	}

	log := logger.New(cfg.Log)
	return Deps{Config: cfg, Logger: log}, nil
}

// NewStorage connects to Elasticsearch and wraps it in the standings store.
func NewStorage(deps Deps) (*storage.Storage, error) {
	client, err := storage.NewClient(deps.Config.Elasticsearch, deps.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to elasticsearch: %w", err)
	}
	return storage.New(client, deps.Config.Elasticsearch, deps.Logger), nil
}
