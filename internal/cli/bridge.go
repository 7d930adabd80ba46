package cli

import (
	"context"
	"io"

	"github.com/aretw0/mln/pkg/adapters/memory"
	"github.com/aretw0/mln/pkg/adapters/process"
)

// ServeBridge answers one bridge request from r on w using the in-memory
// engine. It lets the process adapter be exercised without pracmln.
func ServeBridge(ctx context.Context, r io.Reader, w io.Writer) error {
	return process.Serve(ctx, memory.New(), r, w)
}
