package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/localsearch/api/handlers"
	"github.com/meghashyamc/localsearch/logger"
	"github.com/meghashyamc/localsearch/services/catalog"
	"github.com/meghashyamc/localsearch/services/session"
	"github.com/meghashyamc/localsearch/ui"
	"github.com/meghashyamc/localsearch/validation"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func setupRoutes(router *gin.Engine, logger logger.Logger, sessions *session.Store, renderer *ui.Renderer) error {
	router.GET("/health", health())
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	staticFiles, err := ui.StaticFiles()
	if err != nil {
		return err
	}
	router.StaticFS("/static", http.FS(staticFiles))

	handlers.SetupPages(router, logger, sessions, renderer)

	return nil
}

func setupBackendRoutes(router *gin.Engine, logger logger.Logger, catalogService *catalog.Service, validator *validation.Validator, maxResults int) {
	router.GET("/health", health())

	handlers.SetupSearch(router, logger, catalogService, validator, maxResults)
}

func health() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	}
}

func newRouter() *gin.Engine {
	router := gin.New()
	router.UseRawPath = true
	router.Use(gin.Recovery())

	return router
}
