package engine

import (
	"context"
	"encoding/json"
	"github.com/ribgsilva/note-sync/client/v1/remote"
	"time"
)

// connected is the first event of every change stream
const connected = "connected"

// listen keeps a change stream open while ctx lives. A failed connect is
// retried ReconnectAttempts times with exponential backoff before giving up.
func (e *Engine) listen(ctx context.Context, gen int) {
	defer e.wg.Done()
	defer func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		// a newer listener may already run after an offline/online flip
		if e.listenGen == gen {
			e.stopListenerLocked()
		}
	}()

	failures := 0
	connects := 0
	for {
		stream, err := e.remote.Subscribe(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			failures++
			cerr := &ChannelError{Attempt: failures, Err: err}
			if failures > e.cfg.ReconnectAttempts {
				e.log.Errorw("channel", "status", "giving up until next online", "ERROR", cerr)
				return
			}
			delay := e.cfg.ReconnectBase << (failures - 1)
			e.log.Infow("channel", "status", "reconnecting", "in", delay, "ERROR", cerr)
			if !wait(ctx, delay) {
				return
			}
			continue
		}

		failures = 0
		connects++
		if connects > 1 {
			// hints sent while disconnected are lost
			e.Trigger()
		}

		err = e.consume(ctx, stream)
		if ctx.Err() != nil {
			return
		}
		e.log.Infow("channel", "status", "dropped", "ERROR", &ChannelError{Attempt: 0, Err: err})
		if !wait(ctx, e.cfg.ReconnectBase) {
			return
		}
	}
}

func (e *Engine) consume(ctx context.Context, stream *remote.Stream) error {
	stop := context.AfterFunc(ctx, func() {
		_ = stream.Close()
	})
	defer stop()
	defer stream.Close()

	for {
		data, err := stream.Next()
		if err != nil {
			return err
		}
		if data == connected {
			continue
		}
		if e.echo(data) {
			e.log.Debugw("channel", "status", "own hint ignored", "hint", data)
			continue
		}
		e.Trigger()
	}
}

// remember records a hint this engine publishes so its echo can be skipped
func (e *Engine) remember(hint []remote.Descriptor) {
	key, err := hintKey(hint)
	if err != nil {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	t := e.now()
	for k, sent := range e.echoes {
		if live := e.liveLocked(sent, t); len(live) > 0 {
			e.echoes[k] = live
		} else {
			delete(e.echoes, k)
		}
	}
	e.echoes[key] = append(e.echoes[key], t)
}

// echo reports whether data is a hint this engine published within the echo
// window. Each published hint matches once, so the same hint sent by another
// client afterwards still counts. Unreadable hints are never echoes.
func (e *Engine) echo(data string) bool {
	var hint []remote.Descriptor
	if err := json.Unmarshal([]byte(data), &hint); err != nil || len(hint) == 0 {
		return false
	}
	key, err := hintKey(hint)
	if err != nil {
		return false
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	sent := e.liveLocked(e.echoes[key], e.now())
	if len(sent) == 0 {
		delete(e.echoes, key)
		return false
	}
	if len(sent) == 1 {
		delete(e.echoes, key)
	} else {
		e.echoes[key] = sent[1:]
	}
	return true
}

// liveLocked drops send times older than the echo window; sent is in send order
func (e *Engine) liveLocked(sent []time.Time, t time.Time) []time.Time {
	for len(sent) > 0 && t.Sub(sent[0]) > e.cfg.EchoWindow {
		sent = sent[1:]
	}
	return sent
}

func hintKey(hint []remote.Descriptor) (string, error) {
	b, err := json.Marshal(hint)
	return string(b), err
}

func wait(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
