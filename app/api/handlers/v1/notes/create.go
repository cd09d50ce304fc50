package notes

import (
	"github.com/gin-gonic/gin"
	"github.com/ribgsilva/note-sync/business/v1/note"
	"github.com/ribgsilva/note-sync/platform/web/handler"
	"net/http"
)

// Create godoc
// @Summary Create a note
// @Description Stores a note and assigns its id and timestamps
// @Tags Note
// @Accept json
// @Produce json
// @Param note body note.NewNote true "Note"
// @Success 200 {object} note.Note
// @Failure 400 {object} handler.Error
// @Router /notes [post]
func Create(ctx *gin.Context) handler.Result {
	var in note.NewNote
	if err := ctx.ShouldBindJSON(&in); err != nil {
		return badRequest(err.Error())
	}

	created, err := note.Create(ctx, in)
	if err != nil {
		return failure(err)
	}
	return handler.Result{
		Status: http.StatusOK,
		Body:   created,
	}
}
