package schema

import (
	"context"
)

// Drop removes the notes table and everything in it
func Drop(ctx context.Context) error {
	return exec(ctx, "drop schema", dropSchema)
}
