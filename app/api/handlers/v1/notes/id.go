package notes

import (
	"errors"
	"github.com/gin-gonic/gin"
	"github.com/ribgsilva/note-sync/business/v1/note"
	"github.com/ribgsilva/note-sync/platform/web/handler"
	"net/http"
	"strconv"
)

var notFound = handler.Result{
	Status: http.StatusNotFound,
	Body:   handler.Error{Message: "Note not found"},
}

func pathId(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func badRequest(msg string) handler.Result {
	return handler.Result{
		Status: http.StatusBadRequest,
		Body:   handler.Error{Message: msg},
	}
}

func failure(err error) handler.Result {
	switch {
	case errors.Is(err, note.ErrNotFound):
		return notFound
	case errors.Is(err, note.ErrInvalid):
		return badRequest(err.Error())
	default:
		return handler.Result{
			Status: http.StatusInternalServerError,
			Body:   handler.Error{Message: err.Error()},
		}
	}
}
