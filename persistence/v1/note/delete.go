package note

import (
	"context"
	"fmt"
	"github.com/ribgsilva/note-sync/sys"
)

// Delete removes the row and its cache entry
func Delete(ctx context.Context, id int64) error {
	db := sys.R.Database

	dbCtx, dbCancel := context.WithTimeout(ctx, sys.Configs.Database.OperationTimeout)
	defer dbCancel()
	stmt, err := db.PrepareContext(dbCtx, "DELETE FROM notes WHERE id = ?")
	if err != nil {
		return fmt.Errorf("failed to prepare delete stmt: %w", err)
	}
	defer stmt.Close()
	if _, err := stmt.ExecContext(dbCtx, id); err != nil {
		return fmt.Errorf("failed to exec delete stmt: %w", err)
	}

	evict(ctx, id)
	return nil
}

func evict(ctx context.Context, id int64) {
	tcCtx, tcCancel := context.WithTimeout(ctx, sys.Configs.Cache.OperationTimeout)
	defer tcCancel()
	if err := sys.R.Cache.Del(tcCtx, fmt.Sprintf(noteKey, id)).Err(); err != nil {
		sys.R.Log.Errorw("cache evict", "id", id, "ERROR", err)
	}
}
