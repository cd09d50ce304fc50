package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/ribgsilva/note-sync/app/api/handlers/v1/changes"
	"github.com/ribgsilva/note-sync/app/api/handlers/v1/healthcheck"
	"github.com/ribgsilva/note-sync/app/api/handlers/v1/notes"
	"github.com/ribgsilva/note-sync/platform/web/handler"
)

func MapDefaults(r *gin.Engine) {
	r.GET("/v1/healthcheck", handler.Wrapper(healthcheck.Get))
}

func MapApi(r *gin.Engine, ch changes.Handlers) {
	r.GET("/notes", handler.Wrapper(notes.List))
	r.POST("/notes", handler.Wrapper(notes.Create))
	r.GET("/notes/sync", ch.Stream)
	r.POST("/notes/sync", handler.Wrapper(ch.Publish))
	r.GET("/notes/:id", handler.Wrapper(notes.Get))
	r.PUT("/notes/:id", handler.Wrapper(notes.Update))
	r.DELETE("/notes/:id", handler.Wrapper(notes.Delete))
}
