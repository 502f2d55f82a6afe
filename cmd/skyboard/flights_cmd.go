package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"infinite-experiment/skyboard/internal/apiclient"
	"infinite-experiment/skyboard/internal/dashboard"
	"infinite-experiment/skyboard/internal/models/dtos"
)

func newFlightsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "flights",
		Short: "Flight record actions",
	}
	cmd.AddCommand(newFlightsDeleteCmd(opts))
	return cmd
}

type deleteOutput struct {
	RecordID string        `json:"record_id"`
	Deleted  bool          `json:"deleted"`
	Notices  []dtos.Notice `json:"notices"`
}

func newFlightsDeleteCmd(opts *rootOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one flight after confirmation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			loc, err := cfg.Location()
			if err != nil {
				return err
			}

			notices := &dashboard.NoticeLog{}
			view := &dashboard.View{
				Table:    dashboard.NewTableAnchor("flightsTable"),
				Notifier: notices,
				Location: loc,
			}
			page := dashboard.NewPage(view, apiclient.NewClient(cfg.APIBaseURL, nil), nil, nil)
			defer page.Close()

			confirm := dashboard.Confirmed
			if !yes {
				in := bufio.NewReader(cmd.InOrStdin())
				confirm = dashboard.ConfirmFunc(func(ctx context.Context, prompt string) bool {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s [y/N] ", prompt)
					answer, _ := in.ReadString('\n')
					answer = strings.ToLower(strings.TrimSpace(answer))
					return answer == "y" || answer == "yes"
				})
			}

			id := args[0]
			_, err = page.Form.Delete(cmd.Context(), id, confirm)
			out := deleteOutput{RecordID: id, Deleted: err == nil, Notices: notices.Notices()}
			if werr := writeJSON(cmd.OutOrStdout(), out); werr != nil {
				return werr
			}
			if errors.Is(err, dashboard.ErrDeclined) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}
