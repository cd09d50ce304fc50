package notes

import (
	"github.com/gin-gonic/gin"
	"github.com/ribgsilva/note-sync/business/v1/note"
	"github.com/ribgsilva/note-sync/platform/web/handler"
	"net/http"
)

// Update godoc
// @Summary Update a note
// @Description Merges the given fields into the note; an unknown id is created
// @Tags Note
// @Accept json
// @Produce json
// @Param id path int true "Note id"
// @Param note body note.Patch true "Fields to change"
// @Success 200 {object} note.Note
// @Failure 400 {object} handler.Error
// @Router /notes/{id} [put]
func Update(ctx *gin.Context) handler.Result {
	id, ok := pathId(ctx)
	if !ok {
		return badRequest("invalid id")
	}

	var p note.Patch
	if err := ctx.ShouldBindJSON(&p); err != nil {
		return badRequest(err.Error())
	}

	updated, err := note.Update(ctx, id, p)
	if err != nil {
		return failure(err)
	}
	return handler.Result{
		Status: http.StatusOK,
		Body:   updated,
	}
}
