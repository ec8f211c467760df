package searchdb

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/blevesearch/bleve/v2/search/query"
	"github.com/meghashyamc/localsearch/logger"
	"github.com/stretchr/testify/require"
)

func newTestLogger() logger.Logger {
	opts := &slog.HandlerOptions{
		Level:     slog.LevelDebug,
		AddSource: true,
	}
	handler := slog.NewJSONHandler(os.Stderr, opts)
	return slog.New(handler)
}

var testDocuments = []Document{
	{ID: "go", Title: "Backend Engineer", Description: "Build HTTP services", Requirements: "Go, PostgreSQL"},
	{ID: "sre", Title: "Site Reliability Engineer", Description: "Keep clusters healthy", Requirements: "Kubernetes, Prometheus"},
	{ID: "fe", Title: "Frontend Developer", Description: "Ship user interfaces", Requirements: "React, TypeScript"},
}

func newTestIndex(t *testing.T) *BleveDB {
	db, err := New(newTestLogger(), filepath.Join(t.TempDir(), "test.bleve"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.BuildIndex(testDocuments))
	return db
}

var searchTestCases = []struct {
	name        string
	query       string
	expectedIDs []string
}{
	{name: "TitleMatch", query: "frontend", expectedIDs: []string{"fe"}},
	{name: "RequirementsMatch", query: "postgresql", expectedIDs: []string{"go"}},
	{name: "DescriptionMatch", query: "clusters", expectedIDs: []string{"sre"}},
	{name: "PrefixOfLastTerm", query: "kube", expectedIDs: []string{"sre"}},
	{name: "CaseInsensitive", query: "REACT", expectedIDs: []string{"fe"}},
	{name: "NoMatch", query: "cobol", expectedIDs: []string{}},
}

func TestSearch(t *testing.T) {
	db := newTestIndex(t)

	for _, testCase := range searchTestCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert := require.New(t)
			response, err := db.Search(testCase.query, 10)
			assert.NoError(err)

			ids := []string{}
			for _, hit := range response.Hits {
				ids = append(ids, hit.ID)
				assert.Greater(hit.Score, 0.0)
			}
			assert.Equal(testCase.expectedIDs, ids)
		})
	}
}

func TestSearchRanksTitleAboveDescription(t *testing.T) {
	assert := require.New(t)
	db := newTestIndex(t)

	response, err := db.Search("engineer", 10)
	assert.NoError(err)
	assert.Len(response.Hits, 2)
	assert.GreaterOrEqual(response.Hits[0].Score, response.Hits[1].Score)
}

func TestEmptyQueryMatchesAll(t *testing.T) {
	assert := require.New(t)
	db := newTestIndex(t)

	response, err := db.Search("   ", 10)
	assert.NoError(err)
	assert.Equal(uint64(len(testDocuments)), response.Total)

	response, err = db.Search("", 2)
	assert.NoError(err)
	assert.Len(response.Hits, 2, "limit applies")
}

func TestDeleteDocuments(t *testing.T) {
	assert := require.New(t)
	db := newTestIndex(t)

	assert.NoError(db.DeleteDocuments([]string{"go", "fe"}))
	count, err := db.GetDocCount()
	assert.NoError(err)
	assert.Equal(uint64(1), count)
}

func TestReopenExistingIndex(t *testing.T) {
	assert := require.New(t)
	indexPath := filepath.Join(t.TempDir(), "reopen.bleve")

	db, err := New(newTestLogger(), indexPath)
	assert.NoError(err)
	assert.NoError(db.BuildIndex(testDocuments))
	assert.NoError(db.Close())

	reopened, err := New(newTestLogger(), indexPath)
	assert.NoError(err)
	defer reopened.Close()

	count, err := reopened.GetDocCount()
	assert.NoError(err)
	assert.Equal(uint64(len(testDocuments)), count)
}

func TestBuildSearchQuery(t *testing.T) {
	assert := require.New(t)

	_, isMatchAll := buildSearchQuery("  ").(*query.MatchAllQuery)
	assert.True(isMatchAll)

	disjunction, ok := buildSearchQuery("go engineer").(*query.DisjunctionQuery)
	assert.True(ok)
	assert.Len(disjunction.Disjuncts, 6, "four field queries and two prefix queries on the last term")

	disjunction, ok = buildSearchQuery("go").(*query.DisjunctionQuery)
	assert.True(ok)
	assert.Len(disjunction.Disjuncts, 4, "short last terms get no prefix queries")
}
