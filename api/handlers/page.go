package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/localsearch/logger"
	"github.com/meghashyamc/localsearch/services/controller"
	"github.com/meghashyamc/localsearch/services/session"
	"github.com/meghashyamc/localsearch/ui"
)

const sessionCookieName = "session_id"

const templatePage = "page"

// SetupPages serves the search front end. Each browser session owns one controller, created on
// its first search.
func SetupPages(router *gin.Engine, logger logger.Logger, sessions *session.Store, renderer *ui.Renderer) {
	router.SetHTMLTemplate(renderer.Templates())
	router.GET("/", handlePage(sessions))
	router.POST("/search", handleTriggerSearch(sessions, logger))
	router.GET("/state", handleState(sessions))
}

func handlePage(sessions *session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")
		c.HTML(http.StatusOK, templatePage, ui.NewPage(sessionSnapshot(c, sessions)))
	}
}

// handleTriggerSearch submits the form query as is, including an empty one.
func handleTriggerSearch(sessions *session.Store, logger logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		searchController := sessionController(c, sessions)
		query := c.PostForm("query")

		searchController.SetQuery(query)
		searchController.TriggerSearch()
		logger.Debug("search submitted", "query", query)

		c.Redirect(http.StatusSeeOther, "/")
	}
}

func handleState(sessions *session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")
		c.JSON(http.StatusOK, sessionSnapshot(c, sessions))
	}
}

// sessionSnapshot reads the caller's session without creating one. Callers without a live session
// see the idle state until they submit a search.
func sessionSnapshot(c *gin.Context, sessions *session.Store) controller.Snapshot {
	sessionID, err := c.Cookie(sessionCookieName)
	if err != nil {
		return controller.IdleSnapshot()
	}

	searchController, ok := sessions.Lookup(sessionID)
	if !ok {
		return controller.IdleSnapshot()
	}

	return searchController.Snapshot()
}

// sessionController returns the caller's controller, starting a session if needed.
func sessionController(c *gin.Context, sessions *session.Store) *controller.Controller {
	sessionID, _ := c.Cookie(sessionCookieName)
	sessionID, searchController := sessions.Get(sessionID)

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookieName, sessionID, 0, "/", "", false, true)

	return searchController
}
