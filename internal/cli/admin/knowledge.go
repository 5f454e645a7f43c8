package admin

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/linsalefe/pos-plataform/internal/config"
	"github.com/linsalefe/pos-plataform/internal/logging"
	"github.com/linsalefe/pos-plataform/internal/service"
	"github.com/spf13/cobra"
)

// KnowledgeCmd returns the knowledge command group
func KnowledgeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "knowledge",
		Short: "Manage channel knowledge bases",
	}

	cmd.PersistentFlags().Int64P("channel", "c", 0, "Channel ID (defaults to LEADBOT_DEFAULT_CHANNEL_ID)")

	cmd.AddCommand(knowledgeIngestCmd())
	cmd.AddCommand(knowledgeListCmd())
	cmd.AddCommand(knowledgeDeleteCmd())

	return cmd
}

func knowledgeIngestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest <file>",
		Short: "Chunk, embed and store a text document",
		Long:  "Replaces any document with the same title on the channel.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app, channelID int64) error {
				path := args[0]
				content, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("failed to read %s: %w", path, err)
				}
				title, _ := cmd.Flags().GetString("title")
				if title == "" {
					title = titleFromPath(path)
				}

				result, err := a.knowledge.Upload(ctx, service.UploadDocumentInput{
					ChannelID:   channelID,
					Title:       title,
					Filename:    filepath.Base(path),
					ContentType: mime.TypeByExtension(filepath.Ext(path)),
					Content:     content,
				})
				if err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Stored %q: %d chunks, %d tokens", result.Title, result.ChunksSaved, result.TotalTokens)
				if result.ChunksReplaced > 0 {
					fmt.Fprintf(cmd.OutOrStdout(), " (replaced %d chunks)", result.ChunksReplaced)
				}
				fmt.Fprintln(cmd.OutOrStdout())
				return nil
			})
		},
	}

	cmd.Flags().StringP("title", "t", "", "Document title (defaults to the file name)")

	return cmd
}

func knowledgeListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the documents of a channel",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app, channelID int64) error {
				docs, err := a.knowledge.List(ctx, channelID)
				if err != nil {
					return err
				}
				if len(docs) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No documents.")
					return nil
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "TITLE\tCHUNKS\tTOKENS\tCREATED")
				for _, d := range docs {
					created := "-"
					if d.CreatedAt != nil {
						created = d.CreatedAt.Local().Format(time.DateTime)
					}
					fmt.Fprintf(w, "%s\t%d\t%d\t%s\n", d.Title, d.Chunks, d.TotalTokens, created)
				}
				return w.Flush()
			})
		},
	}
}

func knowledgeDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <title>",
		Short: "Delete every chunk of a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app, channelID int64) error {
				removed, err := a.knowledge.Delete(ctx, channelID, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %q (%d chunks)\n", args[0], removed)
				return nil
			})
		},
	}
}

// withApp loads the configuration, builds the services and runs fn with the
// channel selected by the --channel flag.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app, channelID int64) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	defer logging.Setup(logging.Config{Path: cfg.LogPath, Level: "warn"}).Close()

	a, err := newApp(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	channelID, _ := cmd.Flags().GetInt64("channel")
	if channelID <= 0 {
		channelID = cfg.DefaultChannelID
	}
	return fn(ctx, a, channelID)
}

func titleFromPath(path string) string {
	base := filepath.Base(path)
	return base[:len(base)-len(filepath.Ext(base))]
}
