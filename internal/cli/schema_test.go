package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTree() *cobra.Command {
	root := &cobra.Command{Use: "leadbot", Short: "Lead assistant client"}
	root.PersistentFlags().String("api-url", "http://localhost:8080", "Server URL")
	AddHelpJSONFlag(root)

	docs := &cobra.Command{Use: "docs", Aliases: []string{"documents"}, Short: "Manage documents"}
	upload := &cobra.Command{Use: "upload <channel> <file>", Short: "Upload a document", Run: func(*cobra.Command, []string) {}}
	upload.Flags().String("title", "", "Document title")
	_ = upload.MarkFlagRequired("title")
	docs.AddCommand(upload)

	hidden := &cobra.Command{Use: "debug", Hidden: true, Run: func(*cobra.Command, []string) {}}
	root.AddCommand(docs, hidden)
	return root
}

func TestGenerateSchema(t *testing.T) {
	schema := GenerateSchema(testTree())

	assert.Equal(t, "leadbot", schema.Name)
	require.Len(t, schema.Subcommands, 1)

	docs := schema.Subcommands[0]
	assert.Equal(t, []string{"documents"}, docs.Aliases)
	require.Len(t, docs.Subcommands, 1)

	upload := docs.Subcommands[0]
	require.Len(t, upload.Flags, 2)
	assert.Equal(t, "title", upload.Flags[0].Name)
	assert.True(t, upload.Flags[0].Required)
	assert.False(t, upload.Flags[0].Inherited)
	assert.Equal(t, "api-url", upload.Flags[1].Name)
	assert.True(t, upload.Flags[1].Inherited)
}

func TestWriteSchema(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSchema(&buf, testTree()))

	var decoded CommandSchema
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "Lead assistant client", decoded.Description)
	for _, f := range decoded.Flags {
		assert.NotEqual(t, helpJSONFlag, f.Name)
	}
}

func TestFindTargetCommand(t *testing.T) {
	root := testTree()

	assert.Equal(t, "upload", findTargetCommand(root, []string{"documents", "upload"}).Name())
	assert.Equal(t, "docs", findTargetCommand(root, []string{"docs", "unknown"}).Name())
	assert.Equal(t, "leadbot", findTargetCommand(root, nil).Name())
}
