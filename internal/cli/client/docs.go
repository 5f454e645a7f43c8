package client

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// Document is one entry of a channel's knowledge base.
type Document struct {
	Title       string  `json:"title"`
	Chunks      int     `json:"chunks"`
	TotalTokens int     `json:"total_tokens"`
	CreatedAt   *string `json:"created_at"`
}

// UploadResult reports a stored document.
type UploadResult struct {
	Title          string `json:"title"`
	ChunksSaved    int    `json:"chunks_saved"`
	TotalTokens    int    `json:"total_tokens"`
	ChunksReplaced int64  `json:"chunks_replaced,omitempty"`
	ArchiveKey     string `json:"archive_key,omitempty"`
}

// DocsCmd creates the knowledge document command group.
func DocsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "docs",
		Aliases: []string{"documents"},
		Short:   "Manage a channel's knowledge documents",
	}

	cmd.AddCommand(docsListCmd())
	cmd.AddCommand(docsUploadCmd())
	cmd.AddCommand(docsDeleteCmd())

	return cmd
}

func docsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <channel>",
		Short: "List documents, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			channelID, err := parseChannel(args[0])
			if err != nil {
				return err
			}

			var docs []Document
			if err := NewAPIClientWithCmd(cmd).Get("/api/ai/documents/"+channelPath(channelID), &docs); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if outputJSON(cmd) {
				return printJSON(out, docs)
			}
			if len(docs) == 0 {
				fmt.Fprintln(out, "No documents.")
				return nil
			}
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TITLE\tCHUNKS\tTOKENS\tCREATED")
			for _, d := range docs {
				created := "-"
				if d.CreatedAt != nil {
					created = *d.CreatedAt
				}
				fmt.Fprintf(w, "%s\t%d\t%d\t%s\n", d.Title, d.Chunks, d.TotalTokens, created)
			}
			return w.Flush()
		},
	}
}

func docsUploadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upload <channel> <file>",
		Short: "Upload a text document",
		Long:  "Uploads a .txt, .md or .csv file. A document with the same title is replaced.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			channelID, err := parseChannel(args[0])
			if err != nil {
				return err
			}
			path := args[1]

			title, _ := cmd.Flags().GetString("title")
			if title == "" {
				title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			}

			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", path, err)
			}
			defer f.Close()

			var result UploadResult
			err = NewAPIClientWithCmd(cmd).Upload("/api/ai/documents/"+channelPath(channelID),
				map[string]string{"title": title}, filepath.Base(path), f, &result)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if outputJSON(cmd) {
				return printJSON(out, result)
			}
			fmt.Fprintf(out, "Stored %q: %d chunks, %d tokens\n", result.Title, result.ChunksSaved, result.TotalTokens)
			return nil
		},
	}

	cmd.Flags().StringP("title", "t", "", "Document title (defaults to the file name)")

	return cmd
}

func docsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <channel> <title>",
		Short: "Delete a document by title",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			channelID, err := parseChannel(args[0])
			if err != nil {
				return err
			}

			var resp struct {
				ChunksRemoved int64 `json:"chunks_removed"`
			}
			path := "/api/ai/documents/" + channelPath(channelID) + "/" + url.PathEscape(args[1])
			if err := NewAPIClientWithCmd(cmd).Delete(path, &resp); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %q (%d chunks)\n", args[1], resp.ChunksRemoved)
			return nil
		},
	}
}
