package notes

import (
	"github.com/gin-gonic/gin"
	"github.com/ribgsilva/note-sync/business/v1/note"
	"github.com/ribgsilva/note-sync/platform/web/handler"
	"net/http"
)

// Delete godoc
// @Summary Delete a note
// @Tags Note
// @Produce json
// @Param id path int true "Note id"
// @Success 200 {object} handler.Success
// @Failure 404 {object} handler.Error
// @Router /notes/{id} [delete]
func Delete(ctx *gin.Context) handler.Result {
	id, ok := pathId(ctx)
	if !ok {
		return badRequest("invalid id")
	}

	if err := note.Delete(ctx, id); err != nil {
		return failure(err)
	}
	return handler.Result{
		Status: http.StatusOK,
		Body:   handler.Success{Success: true},
	}
}
