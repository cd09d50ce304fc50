package schema

import (
	"context"
	"fmt"
	"github.com/ribgsilva/note-sync/sys"
)

// Create creates the notes table
func Create(ctx context.Context) error {
	return exec(ctx, "create schema", schema)
}

func exec(ctx context.Context, op, stmt string) error {
	db := sys.R.Database

	dbCtx, dbCancel := context.WithTimeout(ctx, sys.Configs.Database.OperationTimeout)
	defer dbCancel()
	if _, err := db.ExecContext(dbCtx, stmt); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
