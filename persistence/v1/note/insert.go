package note

import (
	"context"
	"fmt"
	"github.com/ribgsilva/note-sync/sys"
)

// Insert stores a new row; the caller owns id and timestamps
func Insert(ctx context.Context, n Note) error {
	db := sys.R.Database

	images, err := encodeImages(n.Images)
	if err != nil {
		return err
	}

	dbCtx, dbCancel := context.WithTimeout(ctx, sys.Configs.Database.OperationTimeout)
	defer dbCancel()
	stmt, err := db.PrepareContext(dbCtx, "INSERT INTO notes ("+columns+") VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare insert stmt: %w", err)
	}
	defer stmt.Close()
	_, err = stmt.ExecContext(dbCtx, n.Id, n.Title, n.Content, images, n.UpdatedAt.UnixMilli(), n.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to exec insert stmt: %w", err)
	}
	return nil
}
