package catalog

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/meghashyamc/localsearch/db/kvdb"
	"github.com/meghashyamc/localsearch/db/searchdb"
	"github.com/meghashyamc/localsearch/logger"
)

const catalogStateKey = "state"

type Indexer interface {
	BuildIndex(documents []searchdb.Document) error
	DeleteDocuments(documentIDs []string) error
	Search(queryString string, limit int) (*searchdb.Response, error)
	GetDocCount() (uint64, error)
}

type Store interface {
	SetMany(bucket string, values map[string]string) error
	Set(bucket string, key string, value string) error
	Get(bucket string, key string) (string, error)
	Delete(bucket string, key string) error
	GetAllKeys(bucket string) ([]string, error)
}

// Match is a posting with the relevance score the index gave it.
type Match struct {
	Posting
	Score float64
}

type Service struct {
	logger  logger.Logger
	indexer Indexer
	store   Store
}

func New(logger logger.Logger, indexer Indexer, store Store) *Service {
	return &Service{
		logger:  logger,
		indexer: indexer,
		store:   store,
	}
}

// Load makes the stored postings and the index reflect the catalog file at path. An unchanged
// catalog (same path and content) is not reloaded.
func (s *Service) Load(ctx context.Context, path string) (*kvdb.CatalogState, error) {
	fingerprint, err := fingerprintFile(path)
	if err != nil {
		s.logger.Error("failed to read catalog", "path", path, "err", err.Error())
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	current, err := s.getState()
	if err == nil && current.Path == path && current.Fingerprint == fingerprint {
		s.logger.Info("catalog unchanged, skipping load", "path", path, "postings", current.Postings)
		return current, nil
	}
	if err != nil && !errors.Is(err, kvdb.ErrNotFound) {
		return nil, err
	}

	postings, err := parseFile(path)
	if err != nil {
		s.logger.Error("failed to parse catalog", "path", path, "err", err.Error())
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	s.logger.Info("parsed catalog", "path", path, "postings", len(postings))

	// No catalog state is saved while postings are being replaced.
	if err := s.store.Delete(kvdb.CatalogBucket, catalogStateKey); err != nil {
		s.logger.Error("failed to reset catalog state", "err", err.Error())
		return nil, fmt.Errorf("failed to reset catalog state: %w", err)
	}

	if err := s.clear(); err != nil {
		return nil, err
	}

	for start := 0; start < len(postings); start += searchdb.IndexingBatchSize {
		if err := ctx.Err(); err != nil {
			s.logger.Warn("catalog load cancelled", "path", path, "err", err.Error())
			return nil, err
		}

		end := min(start+searchdb.IndexingBatchSize, len(postings))
		if err := s.storeBatch(postings[start:end]); err != nil {
			return nil, err
		}
	}

	state := &kvdb.CatalogState{
		Path:        path,
		Fingerprint: fingerprint,
		Postings:    len(postings),
		LoadedAt:    time.Now().UTC(),
	}
	if err := s.setState(state); err != nil {
		return nil, err
	}

	s.logger.Info("finished loading catalog", "path", path, "postings", len(postings))
	return state, nil
}

// Search returns up to limit postings in relevance order. Postings missing from the store are skipped.
func (s *Service) Search(query string, limit int) ([]Match, error) {
	response, err := s.indexer.Search(query, limit)
	if err != nil {
		return nil, err
	}

	matches := make([]Match, 0, len(response.Hits))
	for _, hit := range response.Hits {
		posting, err := s.getPosting(hit.ID)
		if err != nil {
			s.logger.Warn("indexed posting missing from store", "id", hit.ID, "err", err.Error())
			continue
		}
		matches = append(matches, Match{Posting: *posting, Score: hit.Score})
	}

	s.logger.Debug("catalog search", "query", query, "total", response.Total, "returned", len(matches), "took", response.SearchTime)
	return matches, nil
}

func (s *Service) storeBatch(postings []Posting) error {
	values := make(map[string]string, len(postings))
	documents := make([]searchdb.Document, 0, len(postings))

	for i := range postings {
		postings[i].ID = uuid.New().String()

		data, err := json.Marshal(postings[i])
		if err != nil {
			return fmt.Errorf("failed to marshal posting: %w", err)
		}
		values[postings[i].ID] = string(data)
		documents = append(documents, searchdb.Document{
			ID:           postings[i].ID,
			Title:        postings[i].Title,
			Description:  postings[i].Description,
			Requirements: postings[i].Requirements,
		})
	}

	if err := s.store.SetMany(kvdb.PostingsBucket, values); err != nil {
		s.logger.Error("failed to store postings", "err", err.Error())
		return fmt.Errorf("failed to store postings: %w", err)
	}

	if err := s.indexer.BuildIndex(documents); err != nil {
		s.logger.Error("failed to index postings", "err", err.Error())
		return fmt.Errorf("failed to index postings: %w", err)
	}

	return nil
}

// clear removes every posting loaded from a previous catalog.
func (s *Service) clear() error {
	ids, err := s.store.GetAllKeys(kvdb.PostingsBucket)
	if err != nil {
		return fmt.Errorf("failed to list stored postings: %w", err)
	}
	if len(ids) == 0 {
		return nil
	}

	s.logger.Info("removing postings of previous catalog", "postings", len(ids))
	if err := s.indexer.DeleteDocuments(ids); err != nil {
		s.logger.Error("failed to delete postings from search index", "err", err.Error())
		return fmt.Errorf("failed to delete postings from search index: %w", err)
	}

	for _, id := range ids {
		if err := s.store.Delete(kvdb.PostingsBucket, id); err != nil {
			s.logger.Error("failed to delete posting", "id", id, "err", err.Error())
		}
	}

	return nil
}

func (s *Service) getPosting(id string) (*Posting, error) {
	value, err := s.store.Get(kvdb.PostingsBucket, id)
	if err != nil {
		return nil, err
	}

	var posting Posting
	if err := json.Unmarshal([]byte(value), &posting); err != nil {
		return nil, fmt.Errorf("failed to unmarshal posting %s: %w", id, err)
	}

	return &posting, nil
}

func (s *Service) getState() (*kvdb.CatalogState, error) {
	value, err := s.store.Get(kvdb.CatalogBucket, catalogStateKey)
	if err != nil {
		return nil, err
	}

	var state kvdb.CatalogState
	if err := json.Unmarshal([]byte(value), &state); err != nil {
		s.logger.Error("failed to unmarshal catalog state", "err", err.Error())
		return nil, fmt.Errorf("failed to unmarshal catalog state: %w", err)
	}

	return &state, nil
}

func (s *Service) setState(state *kvdb.CatalogState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal catalog state: %w", err)
	}

	if err := s.store.Set(kvdb.CatalogBucket, catalogStateKey, string(data)); err != nil {
		s.logger.Error("failed to save catalog state", "err", err.Error())
		return err
	}

	return nil
}

func fingerprintFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}

	return hex.EncodeToString(hash.Sum(nil)), nil
}

// Count reports how many postings the index holds.
func (s *Service) Count() (uint64, error) {
	return s.indexer.GetDocCount()
}
