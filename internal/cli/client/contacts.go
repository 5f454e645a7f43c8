package client

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

// ContactCmd creates the contact command group.
func ContactCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contact",
		Short: "Control the assistant for single leads",
	}

	cmd.AddCommand(contactToggleCmd("ai-on", true, "Let the assistant answer a contact"))
	cmd.AddCommand(contactToggleCmd("ai-off", false, "Hand a contact over to the sales team"))

	return cmd
}

func contactToggleCmd(use string, active bool, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <wa_id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp struct {
				WAID     string `json:"wa_id"`
				AIActive bool   `json:"ai_active"`
			}
			path := "/api/ai/contacts/" + url.PathEscape(args[0]) + "/toggle"
			if err := NewAPIClientWithCmd(cmd).Patch(path, map[string]bool{"ai_active": active}, &resp); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ai_active=%t\n", resp.WAID, resp.AIActive)
			return nil
		},
	}
}
