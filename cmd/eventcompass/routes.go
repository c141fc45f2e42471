package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bjaus/dispatch/internal/backend"
)

func newRoutesCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "Print the route table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Describing routes never dispatches, so no store is needed.
			app := backend.New(nil)
			switch format {
			case "json":
				return app.WriteRoutes(cmd.OutOrStdout())
			case "yaml":
				return app.WriteRoutesYAML(cmd.OutOrStdout())
			default:
				return fmt.Errorf("unknown format %q (want json or yaml)", format)
			}
		},
	}
	cmd.Flags().StringVar(&format, "format", "json", "output format: json or yaml")
	return cmd
}
