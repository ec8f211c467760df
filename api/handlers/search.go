package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/localsearch/logger"
	"github.com/meghashyamc/localsearch/services/catalog"
	"github.com/meghashyamc/localsearch/validation"
)

const welcomeMessage = "Welcome to the Local Search API"

type SearchRequest struct {
	Query string `form:"query" json:"query" validate:"valid_query,max=1000"`
}

type SearchResult struct {
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	Requirements string  `json:"requirements"`
	Score        float64 `json:"score"`
}

type SearchResponse struct {
	Query   string         `json:"query"`
	Results []SearchResult `json:"results"`
}

// SetupSearch serves the development backend: the catalog behind GET /search.
func SetupSearch(router *gin.Engine, logger logger.Logger, service *catalog.Service, validator *validation.Validator, maxResults int) {
	router.GET("/", handleWelcome(service, logger))
	router.GET("/search", handleSearch(service, logger, validator, maxResults))
}

func handleWelcome(service *catalog.Service, logger logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		count, err := service.Count()
		if err != nil {
			logger.Error("could not count postings", "err", err.Error())
		}
		c.JSON(http.StatusOK, gin.H{"message": welcomeMessage, "postings": count})
	}
}

func handleSearch(service *catalog.Service, logger logger.Logger, validator *validation.Validator, maxResults int) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := c.GetQuery("query"); !ok {
			logger.Warn("search request has no query parameter")
			c.Abort()
			writeResponse(c, nil, http.StatusUnprocessableEntity, []string{"missing required query parameter 'query'"})
			return
		}

		request := SearchRequest{}
		if err := c.ShouldBindQuery(&request); err != nil {
			logger.Warn("could not extract expected params from search request", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusUnprocessableEntity, []string{"failed to extract request parameters"})
			return
		}

		if err := validator.Validate(request); err != nil {
			logger.Warn("could not validate search request", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusNotAcceptable, []string{err.Error()})
			return
		}

		matches, err := service.Search(request.Query, maxResults)
		if err != nil {
			logger.Error("search failed", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusInternalServerError, []string{err.Error()})
			return
		}

		results := make([]SearchResult, len(matches))
		for i, match := range matches {
			results[i] = SearchResult{
				Title:        match.Title,
				Description:  match.Description,
				Requirements: match.Requirements,
				Score:        match.Score,
			}
		}

		c.JSON(http.StatusOK, SearchResponse{Query: request.Query, Results: results})
	}
}
