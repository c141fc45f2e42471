package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/bjaus/dispatch"
	"github.com/bjaus/dispatch/internal/backend"
)

var sampleMembers = []map[string]any{
	{"name": "Aoi Sato", "part": "Stage", "position": "Lead", "contact": map[string]any{"phone": "090-0000-0001"}},
	{"name": "Ren Ito", "part": "Logistics", "position": "Staff"},
	{"name": "Mei Kato", "part": "Course", "position": "Marshal", "contact": map[string]any{"email": "mei@example.com"}},
}

var sampleMaterials = []map[string]any{
	{"name": "Traffic cones", "part": "Course", "quantity": 40},
	{"name": "Extension cable", "part": "Stage", "quantity": 6},
	{"name": "Folding tables", "part": "Logistics", "quantity": 12},
}

func newSeedCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert sample members and materials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, st, logger, err := opts.openStore(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			app := backend.New(st, dispatch.WithLogger(logger))
			ctx := cmd.Context()
			if err := post(ctx, app, "/members", sampleMembers); err != nil {
				return err
			}
			if err := post(ctx, app, "/materials", sampleMaterials); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d members and %d materials\n", len(sampleMembers), len(sampleMaterials))
			return nil
		},
	}
}

// post creates each record through the app, as a client would.
func post(ctx context.Context, app *dispatch.App, path string, records []map[string]any) error {
	for _, rec := range records {
		resp, err := app.Dispatch(ctx, dispatch.Request{Method: http.MethodPost, Path: path, Body: rec})
		if err != nil {
			return err
		}
		if resp.Status != http.StatusCreated {
			return fmt.Errorf("POST %s: status %d: %v", path, resp.Status, resp.Body)
		}
	}
	return nil
}

func newResetCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Delete all data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, st, _, err := opts.openStore(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			if err := st.Reset(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "database reset")
			return nil
		},
	}
}
