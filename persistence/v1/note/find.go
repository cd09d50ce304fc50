package note

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/go-redis/redis/v8"
	"github.com/ribgsilva/note-sync/sys"
)

// Find reads a note through the cache, returning ErrNotFound when the id is unknown
func Find(ctx context.Context, id int64) (Note, error) {
	logger := sys.R.Log
	cache := sys.R.Cache

	key := fmt.Sprintf(noteKey, id)

	tcCtx, tcCancel := context.WithTimeout(ctx, sys.Configs.Cache.OperationTimeout)
	defer tcCancel()
	get, err := cache.Get(tcCtx, key).Result()
	if err != nil && err != redis.Nil {
		logger.Errorw("cache get", "id", id, "ERROR", err)
	}
	if get != "" {
		var c cached
		if err := json.Unmarshal([]byte(get), &c); err != nil {
			logger.Errorw("cache decode", "key", key, "ERROR", err)
		} else {
			return c.note(), nil
		}
	}

	note, err := FindNoCache(ctx, id)
	if err != nil {
		return Note{}, err
	}

	if data, err := json.Marshal(toCached(note)); err != nil {
		logger.Errorw("cache encode", "key", key, "ERROR", err)
	} else {
		tcCtx, tcCancel := context.WithTimeout(ctx, sys.Configs.Cache.OperationTimeout)
		defer tcCancel()

		if err := cache.Set(tcCtx, key, string(data), sys.Configs.Cache.CacheTTL).Err(); err != nil {
			logger.Errorw("cache set", "id", id, "ERROR", err)
		}
	}

	return note, nil
}

// FindNoCache reads a note straight from the database
func FindNoCache(ctx context.Context, id int64) (Note, error) {
	db := sys.R.Database

	dbCtx, dbCancel := context.WithTimeout(ctx, sys.Configs.Database.OperationTimeout)
	defer dbCancel()
	stmt, err := db.PrepareContext(dbCtx, "SELECT "+columns+" FROM notes WHERE id = ?")
	if err != nil {
		return Note{}, fmt.Errorf("failed to prepare find stmt: %w", err)
	}
	defer stmt.Close()

	note, err := scan(stmt.QueryRowContext(dbCtx, id))
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return Note{}, ErrNotFound
	case err != nil:
		return Note{}, fmt.Errorf("failed to query find stmt: %w", err)
	default:
		return note, nil
	}
}
