package cli

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"
	contractx "github.com/tanpawarit/agent-coordination-engine/agent/contract"
	statex "github.com/tanpawarit/agent-coordination-engine/agent/state"
)

func newCoordinateCmd() *cobra.Command {
	var (
		req     contractx.CoordinationRequest
		pattern string
	)

	cmd := &cobra.Command{
		Use:   "coordinate",
		Short: "Run one coordination request and print the response as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := buildApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			req.CoordinationPattern = statex.Pattern(pattern)
			resp, err := a.coordinator.Coordinate(ctx, req)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}

	cmd.Flags().StringVar(&req.Task, "task", "", "task to coordinate")
	cmd.Flags().StringVar(&req.UserID, "user", "", "requesting user id")
	cmd.Flags().StringVar(&req.SessionID, "session-id", "", "conversation session id")
	cmd.Flags().StringSliceVar(&req.RequiredSpecializations, "spec", nil, "required specialization (repeatable)")
	cmd.Flags().StringVar(&pattern, "pattern", string(statex.PatternSequential), "sequential | parallel | hierarchical")
	_ = cmd.MarkFlagRequired("task")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("spec")

	return cmd
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
