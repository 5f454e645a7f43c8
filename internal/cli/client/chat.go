package client

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

// Turn is one message of a simulated conversation.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// TestChatRequest is the payload of the simulation endpoint.
type TestChatRequest struct {
	Message             string `json:"message"`
	ChannelID           int64  `json:"channel_id,omitempty"`
	ConversationHistory []Turn `json:"conversation_history"`
	LeadName            string `json:"lead_name,omitempty"`
	LeadCourse          string `json:"lead_course,omitempty"`
}

// TestChatResponse is the simulated reply.
type TestChatResponse struct {
	Response string `json:"response"`
	Model    string `json:"model"`
	RAGDocs  int    `json:"rag_docs"`
	Outcome  string `json:"outcome"`
}

// ChatCmd starts an interactive simulated conversation with the assistant.
// Nothing is stored and no call is booked.
func ChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Talk to the assistant as a lead would",
		Long:  "Reads lead messages from stdin, one per line, and prints the replies. Empty line or EOF ends the session.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			channelID, _ := cmd.Flags().GetInt64("channel")
			name, _ := cmd.Flags().GetString("name")
			course, _ := cmd.Flags().GetString("course")
			return runChat(NewAPIClientWithCmd(cmd), cmd.InOrStdin(), cmd.OutOrStdout(), TestChatRequest{
				ChannelID:  channelID,
				LeadName:   name,
				LeadCourse: course,
			})
		},
	}

	cmd.Flags().Int64P("channel", "c", 0, "Channel ID (server default when omitted)")
	cmd.Flags().String("name", "", "Lead name")
	cmd.Flags().String("course", "", "Course the lead is interested in")

	return cmd
}

func runChat(c *APIClient, in io.Reader, out io.Writer, base TestChatRequest) error {
	scanner := bufio.NewScanner(in)
	var history []Turn

	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		message := strings.TrimSpace(scanner.Text())
		if message == "" {
			return nil
		}

		req := base
		req.Message = message
		req.ConversationHistory = history

		var resp TestChatResponse
		if err := c.Post("/api/ai/test-chat", req, &resp); err != nil {
			return err
		}

		if resp.Response == "" {
			fmt.Fprintf(out, "[%s] (no reply)\n", resp.Outcome)
			continue
		}
		fmt.Fprintf(out, "%s\n", resp.Response)
		history = append(history,
			Turn{Role: "user", Content: message},
			Turn{Role: "assistant", Content: resp.Response},
		)
	}
}
