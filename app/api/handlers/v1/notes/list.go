package notes

import (
	"github.com/gin-gonic/gin"
	"github.com/ribgsilva/note-sync/business/v1/note"
	"github.com/ribgsilva/note-sync/platform/web/handler"
	"net/http"
)

// List godoc
// @Summary List notes
// @Description Every note the server holds, most recently updated first
// @Tags Note
// @Produce json
// @Success 200 {array} note.Note
// @Router /notes [get]
func List(ctx *gin.Context) handler.Result {
	notes, err := note.List(ctx)
	if err != nil {
		return failure(err)
	}
	return handler.Result{
		Status: http.StatusOK,
		Body:   notes,
	}
}
