package note

import (
	"context"
	"fmt"
	"github.com/ribgsilva/note-sync/sys"
)

// Update rewrites the mutable columns of an existing row and drops it from the cache
func Update(ctx context.Context, n Note) error {
	db := sys.R.Database

	images, err := encodeImages(n.Images)
	if err != nil {
		return err
	}

	dbCtx, dbCancel := context.WithTimeout(ctx, sys.Configs.Database.OperationTimeout)
	defer dbCancel()
	stmt, err := db.PrepareContext(dbCtx, "UPDATE notes SET title = ?, content = ?, images = ?, updatedAt = ? WHERE id = ?")
	if err != nil {
		return fmt.Errorf("failed to prepare update stmt: %w", err)
	}
	defer stmt.Close()
	if _, err := stmt.ExecContext(dbCtx, n.Title, n.Content, images, n.UpdatedAt.UnixMilli(), n.Id); err != nil {
		return fmt.Errorf("failed to exec update stmt: %w", err)
	}

	evict(ctx, n.Id)
	return nil
}
