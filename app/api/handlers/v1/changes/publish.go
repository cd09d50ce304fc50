package changes

import (
	"encoding/json"
	"github.com/gin-gonic/gin"
	"github.com/ribgsilva/note-sync/business/v1/broker"
	"github.com/ribgsilva/note-sync/platform/web/handler"
	"net/http"
)

// Publish godoc
// @Summary Publish a change hint
// @Description Fans a json array of note descriptors out to every connected change stream
// @Tags Sync
// @Accept json
// @Produce json
// @Param descriptors body []note.Descriptor true "Changed or deleted notes"
// @Success 200 {object} handler.Success
// @Failure 400 {object} handler.Error
// @Router /notes/sync [post]
func (h Handlers) Publish(ctx *gin.Context) handler.Result {
	var descriptors []json.RawMessage
	if err := ctx.ShouldBindJSON(&descriptors); err != nil || descriptors == nil {
		return handler.Result{
			Status: http.StatusBadRequest,
			Body:   handler.Error{Message: "body must be a json array"},
		}
	}

	data, err := json.Marshal(descriptors)
	if err != nil {
		return handler.Result{
			Status: http.StatusBadRequest,
			Body:   handler.Error{Message: err.Error()},
		}
	}

	delivered := h.Broker.Publish(broker.NotesUpdated, data)
	h.Log.Debugw("publish", "descriptors", len(descriptors), "delivered", delivered)

	if h.Relay != nil {
		if err := h.Relay.Forward(ctx, broker.NotesUpdated, data); err != nil {
			h.Log.Errorw("publish", "status", "relay failed", "ERROR", err)
		}
	}

	return handler.Result{
		Status: http.StatusOK,
		Body:   handler.Success{Success: true},
	}
}
