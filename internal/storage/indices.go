package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// standingsMapping types the standings index so rank sorting and league
// term filters behave predictably.
const standingsMapping = `{
	"mappings": {
		"properties": {
			"id":            {"type": "keyword"},
			"name":          {"type": "text", "fields": {"keyword": {"type": "keyword"}}},
			"league_id":     {"type": "keyword"},
			"rank":          {"type": "integer"},
			"points":        {"type": "integer"},
			"played":        {"type": "integer"},
			"wins":          {"type": "integer"},
			"draws":         {"type": "integer"},
			"losses":        {"type": "integer"},
			"goals_for":     {"type": "integer"},
			"goals_against": {"type": "integer"},
			"goal_diff":     {"type": "integer"},
			"crawled_at":    {"type": "date"}
		}
	}
}`

const activityMapping = `{
	"mappings": {
		"properties": {
			"league_id": {"type": "keyword"},
			"channel":   {"type": "keyword"},
			"status":    {"type": "keyword"},
			"count":     {"type": "integer"},
			"error":     {"type": "text"},
			"timestamp": {"type": "date"}
		}
	}
}`

// IndexInfo describes one index for listing.
type IndexInfo struct {
	Name   string `json:"index"`
	Health string `json:"health"`
	Docs   string `json:"docs.count"`
	Size   string `json:"store.size"`
}

// EnsureIndices creates the standings and activity indices when missing.
func (s *Storage) EnsureIndices(ctx context.Context) error {
	indices := map[string]string{
		s.cfg.StandingsIndex: standingsMapping,
		s.cfg.ActivityIndex:  activityMapping,
	}

	for name, mapping := range indices {
		exists, err := s.IndexExists(ctx, name)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		if createErr := s.CreateIndex(ctx, name, mapping); createErr != nil {
			return createErr
		}
	}

	return nil
}

// IndexExists reports whether an index is present.
func (s *Storage) IndexExists(ctx context.Context, name string) (bool, error) {
	if s.client == nil {
		return false, ErrNotInitialized
	}

	res, err := s.client.Indices.Exists(
		[]string{name},
		s.client.Indices.Exists.WithContext(ctx),
	)
	if err != nil {
		return false, fmt.Errorf("check index %s: %w", name, err)
	}
	defer res.Body.Close()

	return !res.IsError(), nil
}

// CreateIndex creates an index with the given mapping body.
func (s *Storage) CreateIndex(ctx context.Context, name, mapping string) error {
	if s.client == nil {
		return ErrNotInitialized
	}

	res, err := s.client.Indices.Create(
		name,
		s.client.Indices.Create.WithContext(ctx),
		s.client.Indices.Create.WithBody(strings.NewReader(mapping)),
	)
	if err != nil {
		return fmt.Errorf("create index %s: %w", name, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("create index %s: %s", name, res.String())
	}

	s.logger.Info("index created", "index", name)
	return nil
}

// DeleteIndex removes an index.
func (s *Storage) DeleteIndex(ctx context.Context, name string) error {
	if s.client == nil {
		return ErrNotInitialized
	}

	res, err := s.client.Indices.Delete(
		[]string{name},
		s.client.Indices.Delete.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("delete index %s: %w", name, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("delete index %s: %s", name, res.String())
	}

	s.logger.Info("index deleted", "index", name)
	return nil
}

// ListIndices returns non-system indices with health and size details.
func (s *Storage) ListIndices(ctx context.Context) ([]IndexInfo, error) {
	if s.client == nil {
		return nil, ErrNotInitialized
	}

	res, err := s.client.Cat.Indices(
		s.client.Cat.Indices.WithContext(ctx),
		s.client.Cat.Indices.WithFormat("json"),
	)
	if err != nil {
		return nil, fmt.Errorf("list indices: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("list indices: %s", res.String())
	}

	var all []IndexInfo
	if decodeErr := json.NewDecoder(res.Body).Decode(&all); decodeErr != nil {
		return nil, fmt.Errorf("decode indices response: %w", decodeErr)
	}

	indices := make([]IndexInfo, 0, len(all))
	for _, info := range all {
		if strings.HasPrefix(info.Name, ".") {
			continue
		}
		indices = append(indices, info)
	}

	return indices, nil
}
