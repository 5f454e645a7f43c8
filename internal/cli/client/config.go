package client

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// AIConfig mirrors the channel configuration returned by the API.
type AIConfig struct {
	ChannelID    int64  `json:"channel_id"`
	IsEnabled    bool   `json:"is_enabled"`
	SystemPrompt string `json:"system_prompt"`
	Model        string `json:"model"`
	Temperature  string `json:"temperature"`
	MaxTokens    int    `json:"max_tokens"`
}

// ConfigCmd creates the channel configuration command group.
func ConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change a channel's assistant settings",
	}

	cmd.AddCommand(configGetCmd())
	cmd.AddCommand(configSetCmd())

	return cmd
}

func configGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <channel>",
		Short: "Show the assistant settings of a channel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			channelID, err := parseChannel(args[0])
			if err != nil {
				return err
			}

			var cfg AIConfig
			if err := NewAPIClientWithCmd(cmd).Get("/api/ai/config/"+channelPath(channelID), &cfg); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if outputJSON(cmd) {
				return printJSON(out, cfg)
			}
			fmt.Fprintf(out, "Channel:     %d\n", cfg.ChannelID)
			fmt.Fprintf(out, "Enabled:     %t\n", cfg.IsEnabled)
			fmt.Fprintf(out, "Model:       %s\n", cfg.Model)
			fmt.Fprintf(out, "Temperature: %s\n", cfg.Temperature)
			fmt.Fprintf(out, "Max tokens:  %d\n", cfg.MaxTokens)
			if cfg.SystemPrompt != "" {
				fmt.Fprintf(out, "Prompt:\n%s\n", cfg.SystemPrompt)
			}
			return nil
		},
	}
}

func configSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <channel>",
		Short: "Change the assistant settings of a channel",
		Long:  "Only the flags that are given are changed.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			channelID, err := parseChannel(args[0])
			if err != nil {
				return err
			}

			patch := map[string]any{}
			flags := cmd.Flags()
			if flags.Changed("enabled") {
				v, _ := flags.GetBool("enabled")
				patch["is_enabled"] = v
			}
			if flags.Changed("prompt") {
				v, _ := flags.GetString("prompt")
				patch["system_prompt"] = v
			}
			if flags.Changed("model") {
				v, _ := flags.GetString("model")
				patch["model"] = v
			}
			if flags.Changed("temperature") {
				v, _ := flags.GetString("temperature")
				patch["temperature"] = v
			}
			if flags.Changed("max-tokens") {
				v, _ := flags.GetInt("max-tokens")
				patch["max_tokens"] = v
			}
			if len(patch) == 0 {
				return fmt.Errorf("nothing to change")
			}

			if err := NewAPIClientWithCmd(cmd).Put("/api/ai/config/"+channelPath(channelID), patch, nil); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Updated.")
			return nil
		},
	}

	cmd.Flags().Bool("enabled", false, "Turn the assistant on or off")
	cmd.Flags().String("prompt", "", "System prompt")
	cmd.Flags().String("model", "", "Chat model")
	cmd.Flags().String("temperature", "", "Sampling temperature between 0 and 2")
	cmd.Flags().Int("max-tokens", 0, "Reply token budget")

	return cmd
}

func parseChannel(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid channel %q", s)
	}
	return id, nil
}
