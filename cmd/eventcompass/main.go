// Command eventcompass serves the EventCompass backend and manages its
// database.
//
//	eventcompass serve                 listen on the configured address
//	eventcompass routes --format yaml  print the route table
//	eventcompass seed                  insert sample members and materials
//	eventcompass reset                 delete all data
//
// Settings come from eventcompass.yaml (or --config) and EVENTCOMPASS_*
// environment variables.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
