package storage

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	es "github.com/elastic/go-elasticsearch/v8"
	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"

	"github.com/standingshq/leaguecrawl/internal/config"
	"github.com/standingshq/leaguecrawl/internal/logger"
	"github.com/standingshq/leaguecrawl/internal/standings"
)

// DefaultOpTimeout bounds individual document operations.
const DefaultOpTimeout = 30 * time.Second

// ActivityEntry records one crawl attempt for audit purposes.
type ActivityEntry struct {
	LeagueID  string    `json:"league_id"`
	Channel   string    `json:"channel,omitempty"`
	Status    string    `json:"status"`
	Count     int       `json:"count"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// SaveResult reports how an upsert batch landed.
type SaveResult struct {
	Created int
	Updated int
}

// Storage wraps the Elasticsearch client with standings-specific operations.
type Storage struct {
	client *es.Client
	cfg    config.ElasticsearchConfig
	logger logger.Interface
}

// New creates a Storage.
func New(client *es.Client, cfg config.ElasticsearchConfig, log logger.Interface) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
		logger: log.WithComponent("storage"),
	}
}

// SaveStandings upserts records by their (name, league) identity. A later
// record with the same identity overwrites an earlier one.
func (s *Storage) SaveStandings(ctx context.Context, records []standings.TeamRecord) (SaveResult, error) {
	if s.client == nil {
		return SaveResult{}, ErrNotInitialized
	}

	var result SaveResult
	for _, rec := range records {
		outcome, err := s.indexDocument(ctx, s.cfg.StandingsIndex, recordDocID(rec), rec)
		if err != nil {
			return result, fmt.Errorf("save standings for %q: %w", rec.Name, err)
		}
		switch outcome {
		case "created":
			result.Created++
		case "updated":
			result.Updated++
		}
	}

	s.logger.Info("standings saved",
		"index", s.cfg.StandingsIndex,
		"created", result.Created,
		"updated", result.Updated)
	return result, nil
}

// LogActivity appends a crawl activity entry.
func (s *Storage) LogActivity(ctx context.Context, entry ActivityEntry) error {
	if s.client == nil {
		return ErrNotInitialized
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	_, err := s.indexDocument(ctx, s.cfg.ActivityIndex, uuid.NewString(), entry)
	if err != nil {
		return fmt.Errorf("log activity: %w", err)
	}
	return nil
}

// GetStandings returns the persisted records for a league, ordered by rank.
func (s *Storage) GetStandings(ctx context.Context, leagueID string) ([]standings.TeamRecord, error) {
	if s.client == nil {
		return nil, ErrNotInitialized
	}

	ctx, cancel := context.WithTimeout(ctx, DefaultOpTimeout)
	defer cancel()

	query := fmt.Sprintf(`{
		"query": {"term": {"league_id": %q}},
		"sort": [{"rank": "asc"}],
		"size": 100
	}`, leagueID)

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(s.cfg.StandingsIndex),
		s.client.Search.WithBody(strings.NewReader(query)),
	)
	if err != nil {
		return nil, fmt.Errorf("search standings: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search standings: %s", res.String())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if decodeErr := json.NewDecoder(res.Body).Decode(&parsed); decodeErr != nil {
		return nil, fmt.Errorf("decode search response: %w", decodeErr)
	}

	records := make([]standings.TeamRecord, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		var rec standings.TeamRecord
		if decodeErr := decodeRecord(hit.Source, &rec); decodeErr != nil {
			s.logger.Warn("skipping undecodable standings document", "error", decodeErr)
			continue
		}
		records = append(records, rec)
	}

	return records, nil
}

// indexDocument writes one document and returns Elasticsearch's reported
// outcome ("created" or "updated").
func (s *Storage) indexDocument(ctx context.Context, index, id string, document any) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultOpTimeout)
	defer cancel()

	body, err := json.Marshal(document)
	if err != nil {
		return "", fmt.Errorf("failed to marshal document: %w", err)
	}

	res, err := s.client.Index(
		index,
		bytes.NewReader(body),
		s.client.Index.WithContext(ctx),
		s.client.Index.WithDocumentID(id),
	)
	if err != nil {
		return "", fmt.Errorf("failed to index document: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		s.logger.Error("elasticsearch returned error response",
			"error", res.String(), "index", index, "doc_id", id)
		return "", fmt.Errorf("elasticsearch error: %s", res.String())
	}

	var parsed struct {
		Result string `json:"result"`
	}
	if decodeErr := json.NewDecoder(res.Body).Decode(&parsed); decodeErr != nil {
		return "", fmt.Errorf("failed to decode index response: %w", decodeErr)
	}

	return parsed.Result, nil
}

// recordDocID derives a deterministic document ID from a record's identity
// so repeated crawls upsert instead of duplicating.
func recordDocID(rec standings.TeamRecord) string {
	sum := sha256.Sum256([]byte(rec.Name + "|" + rec.LeagueID))
	return hex.EncodeToString(sum[:])
}

func decodeRecord(source map[string]any, out *standings.TeamRecord) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:     out,
		TagName:    "json",
		DecodeHook: mapstructure.StringToTimeHookFunc(time.RFC3339),
	})
	if err != nil {
		return err
	}
	return decoder.Decode(source)
}
