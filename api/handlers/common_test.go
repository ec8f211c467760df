// Common test helpers
package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/localsearch/db/kvdb"
	"github.com/meghashyamc/localsearch/db/searchdb"
	"github.com/meghashyamc/localsearch/logger"
	"github.com/meghashyamc/localsearch/services/catalog"
	"github.com/meghashyamc/localsearch/services/controller"
	"github.com/meghashyamc/localsearch/services/search"
	"github.com/meghashyamc/localsearch/services/session"
	"github.com/meghashyamc/localsearch/ui"
	"github.com/meghashyamc/localsearch/validation"
	"github.com/stretchr/testify/require"
)

const testMaxResults = 10

const testCatalog = `title,company,description,requirements
Backend Engineer,Acme,Build HTTP services in Go,Go and PostgreSQL
Frontend Developer,Globex,Ship user interfaces,React and TypeScript
Data Analyst,Initech,Turn spreadsheets into insight,SQL
`

type testCase struct {
	name           string
	queryParams    url.Values
	expectedStatus int
	expectedTitles []string
	expectedErrors []string
}

func newTestLogger() logger.Logger {

	opts := &slog.HandlerOptions{
		Level:     slog.LevelDebug,
		AddSource: true,
	}
	handler := slog.NewJSONHandler(os.Stderr, opts)
	return slog.New(handler)
}

func setupBackendTestServer(t *testing.T, assert *require.Assertions) *gin.Engine {
	dir := t.TempDir()
	testLogger := newTestLogger()

	catalogPath := filepath.Join(dir, "postings.csv")
	err := os.WriteFile(catalogPath, []byte(testCatalog), 0644)
	assert.NoError(err, "could not write test catalog")

	searchDB, err := searchdb.New(testLogger, filepath.Join(dir, "index.bleve"))
	assert.NoError(err, "could not create search database")
	t.Cleanup(func() { searchDB.Close() })

	kvDB, err := kvdb.New(testLogger, filepath.Join(dir, "kv.db"))
	assert.NoError(err, "could not create kv database")
	t.Cleanup(func() { kvDB.Close() })

	service := catalog.New(testLogger, searchDB, kvDB)
	_, err = service.Load(context.Background(), catalogPath)
	assert.NoError(err, "could not load test catalog")

	validator, err := validation.New(testLogger)
	assert.NoError(err, "could not create validator")

	gin.SetMode(gin.TestMode)
	router := gin.New()
	SetupSearch(router, testLogger, service, validator, testMaxResults)

	return router
}

func setupFrontendTestServer(t *testing.T, assert *require.Assertions, backendURL string) (*gin.Engine, *session.Store) {
	testLogger := newTestLogger()

	client, err := search.New(testLogger, backendURL, 0)
	assert.NoError(err, "could not create search client")

	renderer, err := ui.NewRenderer()
	assert.NoError(err, "could not parse templates")

	ctx, cancel := context.WithCancel(context.Background())
	sessions := session.New(ctx, testLogger, func(ctx context.Context) *controller.Controller {
		return controller.New(ctx, testLogger, client)
	}, time.Minute)
	t.Cleanup(func() {
		sessions.Close()
		cancel()
	})

	gin.SetMode(gin.TestMode)
	router := gin.New()
	SetupPages(router, testLogger, sessions, renderer)

	return router, sessions
}

func makeTestHTTPRequest(router *gin.Engine, assert *require.Assertions, method string, endpoint string, queryParams url.Values, form url.Values, cookies []*http.Cookie) *httptest.ResponseRecorder {

	w := httptest.NewRecorder()

	if len(queryParams) > 0 {
		endpoint = endpoint + "?" + queryParams.Encode()
	}

	var req *http.Request
	var err error
	if form != nil {
		req, err = http.NewRequest(method, endpoint, strings.NewReader(form.Encode()))
		assert.NoError(err)
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req, err = http.NewRequest(method, endpoint, nil)
		assert.NoError(err)
	}

	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}

	slog.Info("Making test request", "method", method, "endpoint", endpoint)
	router.ServeHTTP(w, req)

	return w
}
