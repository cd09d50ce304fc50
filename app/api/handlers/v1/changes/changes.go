// Package changes serves the change channel: a server-sent event stream of
// hints, and the endpoint clients post hints to.
package changes

import (
	"errors"
	"github.com/ribgsilva/note-sync/business/v1/broker"
	"go.uber.org/zap"
)

// Connected is the first event of every stream.
const Connected = "connected"

const defaultBuffer = 16

var errSlowConsumer = errors.New("stream buffer full")

// Handlers holds what the change channel endpoints need; Relay may be nil.
type Handlers struct {
	Log    *zap.SugaredLogger
	Broker *broker.Broker
	Relay  *broker.Relay
	Buffer int
}

func (h Handlers) buffer() int {
	if h.Buffer <= 0 {
		return defaultBuffer
	}
	return h.Buffer
}
