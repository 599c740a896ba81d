package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ivlev/scrollsite/internal/cms"
	"github.com/ivlev/scrollsite/internal/system"
)

var (
	pubID       string
	pubTitle    string
	pubAuthor   string
	pubCategory string
	pubContent  string
	pubCover    string
)

var publishCmd = &cobra.Command{
	Use:   "publish [content.html]",
	Short: "Create or update a blog post through the API",
	Long: `Publishes a post to the configured API. A cover given with --cover is
uploaded first and the post then references the returned URL. --cover may
name a directory, in which case its newest image or PDF is used.

With --id the existing post is loaded, the given flags override its fields
and it is updated in place.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPublish,
}

func init() {
	f := publishCmd.Flags()
	f.StringVar(&pubID, "id", "", "Update this post instead of creating one")
	f.StringVar(&pubTitle, "title", "", "Post title")
	f.StringVar(&pubAuthor, "author", "", "Author")
	f.StringVar(&pubCategory, "category", "", "Category")
	f.StringVar(&pubContent, "content", "", "Inline HTML body (instead of a file)")
	f.StringVar(&pubCover, "cover", "", "Cover image or PDF, or a directory of covers")
}

func runPublish(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	client := cms.NewClient(cfg.API.BaseURL, cfg.GetAPITimeout(), logger)
	pub := cms.NewPublisher(client, logger)

	draft := &cms.Draft{}
	if pubID != "" {
		d, err := pub.Edit(ctx, pubID)
		if err != nil {
			return err
		}
		draft = d
	}

	if pubTitle != "" {
		draft.Title = pubTitle
	}
	if pubAuthor != "" {
		draft.Author = pubAuthor
	}
	if pubCategory != "" {
		draft.Category = pubCategory
	}
	switch {
	case len(args) == 1:
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read content: %w", err)
		}
		draft.Content = string(data)
	case pubContent != "":
		draft.Content = pubContent
	}
	if pubCover != "" {
		path, err := system.FindLatestCover(pubCover)
		if err != nil {
			return fmt.Errorf("[-] cover: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "[*] Cover: %s\n", path)
		draft.CoverPath = path
	}

	post, err := pub.Publish(ctx, draft)
	if errors.Is(err, cms.ErrUnconfirmed) {
		fmt.Fprintf(cmd.OutOrStdout(), "[!] %q was saved without an id; check the list before publishing again\n", draft.Title)
	}
	if err != nil {
		return err
	}
	logger.Debug("publish done", zap.String("id", draft.ID))
	fmt.Fprintf(cmd.OutOrStdout(), "[+++] %s: %s\n", post.ID, post.Title)
	if post.Image != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "      cover %s\n", post.Image)
	}
	return nil
}
