package admin

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// SummarizeCmd returns the summarize command
func SummarizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summarize [contact]",
		Short: "Summarize a lead conversation",
		Long: `Prints a short summary of the conversation with a contact. With --save the
summary is also stored on the contact's card for --channel. With --stale every
card whose conversation moved since its last summary is refreshed instead.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stale, _ := cmd.Flags().GetBool("stale")
			save, _ := cmd.Flags().GetBool("save")
			if !stale && len(args) == 0 {
				return fmt.Errorf("a contact is required unless --stale is set")
			}

			return withApp(cmd, func(ctx context.Context, a *app, channelID int64) error {
				out := cmd.OutOrStdout()
				if stale {
					limit, _ := cmd.Flags().GetInt("limit")
					n, err := a.summaries.RefreshStale(ctx, limit)
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "Refreshed %d summaries\n", n)
					return nil
				}

				contactID := args[0]
				summary, ok, err := a.summaries.Summarize(ctx, contactID)
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(out, "No summary available.")
					return nil
				}
				fmt.Fprintln(out, summary)

				if save {
					if err := a.summaries.Save(ctx, contactID, channelID, summary); err != nil {
						return err
					}
					fmt.Fprintln(out, "Saved.")
				}
				return nil
			})
		},
	}

	cmd.Flags().Int64P("channel", "c", 0, "Channel ID of the card (defaults to LEADBOT_DEFAULT_CHANNEL_ID)")
	cmd.Flags().Bool("save", false, "Store the summary on the conversation card")
	cmd.Flags().Bool("stale", false, "Refresh every stale card instead of one contact")
	cmd.Flags().Int("limit", 20, "Maximum cards refreshed with --stale")

	return cmd
}
