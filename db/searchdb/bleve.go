package searchdb

import (
	"fmt"
	"strings"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"
	"github.com/meghashyamc/localsearch/logger"
)

const IndexingBatchSize = 100

const (
	indexFieldTitle        = "title"
	indexFieldDescription  = "description"
	indexFieldRequirements = "requirements"
)

var _ DB = (*BleveDB)(nil)

type BleveDB struct {
	indexPath string
	logger    logger.Logger
	index     bleve.Index
}

func New(logger logger.Logger, indexPath string) (*BleveDB, error) {
	mapping := createIndexMapping()
	index, err := bleve.New(indexPath, mapping)
	if err != nil {
		index, err = bleve.Open(indexPath)
		if err != nil {
			logger.Error("could not open index", "path", indexPath, "err", err.Error())
			return nil, err
		}
	}
	return &BleveDB{indexPath: indexPath, logger: logger, index: index}, nil
}

func (b *BleveDB) BuildIndex(documents []Document) error {

	batch := b.index.NewBatch()

	for i, doc := range documents {

		err := batch.Index(doc.ID, doc)
		if err != nil {
			b.logger.Error("could not index document", "id", doc.ID, "err", err.Error())
			return err
		}

		if (i+1)%IndexingBatchSize == 0 {
			err = b.index.Batch(batch)
			if err != nil {
				return err
			}
			batch = b.index.NewBatch()
		}
	}

	if batch.Size() > 0 {
		if err := b.index.Batch(batch); err != nil {
			b.logger.Error("could not index document", "err", err.Error())
			return err
		}
	}

	return nil
}

func createIndexMapping() mapping.IndexMapping {

	indexMapping := bleve.NewIndexMapping()
	docMapping := bleve.NewDocumentMapping()

	for _, field := range []string{indexFieldTitle, indexFieldDescription, indexFieldRequirements} {
		fieldMapping := bleve.NewTextFieldMapping()
		fieldMapping.Analyzer = standard.Name
		fieldMapping.Store = false
		fieldMapping.IncludeTermVectors = true
		docMapping.AddFieldMappingsAt(field, fieldMapping)
	}

	idFieldMapping := bleve.NewTextFieldMapping()
	idFieldMapping.Index = false
	docMapping.AddFieldMappingsAt("id", idFieldMapping)

	indexMapping.AddDocumentMapping("_default", docMapping)

	return indexMapping
}

func (b *BleveDB) Search(queryString string, limit int) (*Response, error) {
	start := time.Now()

	searchQuery := buildSearchQuery(queryString)

	searchRequest := bleve.NewSearchRequestOptions(searchQuery, limit, 0, false)

	searchResult, err := b.index.Search(searchRequest)
	if err != nil {
		b.logger.Error("search failed", "err", err.Error())
		return nil, fmt.Errorf("search failed: %w", err)
	}

	hits := make([]Hit, len(searchResult.Hits))
	for i, hit := range searchResult.Hits {
		hits[i] = Hit{
			ID:    hit.ID,
			Score: hit.Score,
		}
	}

	response := &Response{
		Hits:       hits,
		Total:      searchResult.Total,
		MaxScore:   searchResult.MaxScore,
		SearchTime: time.Since(start).String(),
	}

	return response, nil
}

func buildSearchQuery(queryString string) query.Query {

	const (
		boostForTitle        = 3.0
		boostForRequirements = 2.0
		boostForDescription  = 1.5
		boostForPhraseMatch  = 4.0
		boostForPartialMatch = 1.5
	)

	queryString = strings.ToLower(strings.TrimSpace(queryString))

	if queryString == "" {
		return bleve.NewMatchAllQuery()
	}

	disjunctQuery := bleve.NewDisjunctionQuery()

	titleQuery := bleve.NewMatchQuery(queryString)
	titleQuery.SetField(indexFieldTitle)
	titleQuery.SetBoost(boostForTitle)
	disjunctQuery.AddQuery(titleQuery)

	requirementsQuery := bleve.NewMatchQuery(queryString)
	requirementsQuery.SetField(indexFieldRequirements)
	requirementsQuery.SetBoost(boostForRequirements)
	disjunctQuery.AddQuery(requirementsQuery)

	descriptionQuery := bleve.NewMatchQuery(queryString)
	descriptionQuery.SetField(indexFieldDescription)
	descriptionQuery.SetBoost(boostForDescription)
	disjunctQuery.AddQuery(descriptionQuery)

	phraseQuery := bleve.NewMatchPhraseQuery(queryString)
	phraseQuery.SetField(indexFieldDescription)
	phraseQuery.SetBoost(boostForPhraseMatch)
	disjunctQuery.AddQuery(phraseQuery)

	// Prefix matching on the word being typed, e.g. "kube" finds "kubernetes".
	terms := strings.Fields(queryString)
	if lastTerm := terms[len(terms)-1]; len(lastTerm) > 2 {
		for _, field := range []string{indexFieldTitle, indexFieldRequirements} {
			prefixQuery := bleve.NewPrefixQuery(lastTerm)
			prefixQuery.SetField(field)
			prefixQuery.SetBoost(boostForPartialMatch)
			disjunctQuery.AddQuery(prefixQuery)
		}
	}

	return disjunctQuery
}

func (b *BleveDB) DeleteDocuments(documentIDs []string) error {
	batch := b.index.NewBatch()

	for i, docID := range documentIDs {
		batch.Delete(docID)

		if (i+1)%IndexingBatchSize == 0 {
			err := b.index.Batch(batch)
			if err != nil {
				return err
			}
			batch = b.index.NewBatch()
		}
	}

	if batch.Size() > 0 {
		if err := b.index.Batch(batch); err != nil {
			b.logger.Error("could not delete documents", "err", err.Error())
			return err
		}
	}

	return nil
}

func (b *BleveDB) GetDocCount() (uint64, error) {
	return b.index.DocCount()
}

func (b *BleveDB) Close() error {

	if b.index != nil {
		if err := b.index.Close(); err != nil {
			b.logger.Error("could not close search index", "err", err.Error())
			return err
		}
	}
	return nil
}
