package changes

import (
	"fmt"
	"github.com/gin-gonic/gin"
	"github.com/ribgsilva/note-sync/business/v1/broker"
	"github.com/ribgsilva/note-sync/platform/web/handler"
	"io"
	"net/http"
	"sync"
)

// Stream godoc
// @Summary Change stream
// @Description Server-sent events; the first event is "connected", then one event per published hint
// @Tags Sync
// @Produce text/event-stream
// @Success 200 {string} string "data: connected"
// @Failure 503 {object} handler.Error
// @Router /notes/sync [get]
func (h Handlers) Stream(ctx *gin.Context) {
	events := make(chan []byte, h.buffer())
	overflow := make(chan struct{})
	var once sync.Once

	unsubscribe, err := h.Broker.Subscribe(broker.NotesUpdated, func(m broker.Message) error {
		select {
		case events <- m.Data:
			return nil
		default:
			once.Do(func() { close(overflow) })
			return errSlowConsumer
		}
	})
	if err != nil {
		ctx.JSON(http.StatusServiceUnavailable, handler.Error{Message: err.Error()})
		return
	}
	defer unsubscribe()

	h.Log.Infow("stream", "status", "opened", "remote", ctx.ClientIP(), "streams", h.Broker.Count())
	defer h.Log.Infow("stream", "status", "closed", "remote", ctx.ClientIP())

	header := ctx.Writer.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	ctx.Status(http.StatusOK)

	if _, err := fmt.Fprintf(ctx.Writer, "data: %s\n\n", Connected); err != nil {
		return
	}
	ctx.Writer.Flush()

	done := h.Broker.Done()
	gone := ctx.Request.Context().Done()
	ctx.Stream(func(w io.Writer) bool {
		select {
		case data := <-events:
			_, err := fmt.Fprintf(w, "data: %s\n\n", data)
			return err == nil
		case <-overflow:
			h.Log.Infow("stream", "status", "dropped", "remote", ctx.ClientIP(), "ERROR", errSlowConsumer)
			return false
		case <-done:
			return false
		case <-gone:
			return false
		}
	})
}
