// Package storage persists team records and crawl activity to Elasticsearch.
package storage

import (
	"errors"
	"fmt"

	es "github.com/elastic/go-elasticsearch/v8"

	"github.com/standingshq/leaguecrawl/internal/config"
	"github.com/standingshq/leaguecrawl/internal/logger"
)

// ErrNotInitialized indicates the Elasticsearch client is missing.
var ErrNotInitialized = errors.New("elasticsearch client is not initialized")

// NewClient creates an Elasticsearch client and verifies connectivity.
func NewClient(cfg config.ElasticsearchConfig, log logger.Interface) (*es.Client, error) {
	log.Debug("connecting to elasticsearch", "addresses", cfg.Addresses)

	client, err := es.NewClient(es.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
		APIKey:    cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}

	res, err := client.Ping()
	if err != nil {
		return nil, fmt.Errorf("failed to ping elasticsearch: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("error pinging elasticsearch: %s", res.String())
	}

	return client, nil
}
