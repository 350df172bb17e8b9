// blobdiff compares golden result blobs with candidate results and prints a
// diff table for every test that disagrees.
// Exit code 0 = all tests pass. Exit code 1 = divergence detected. Exit code 2 = error.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := NewRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}
