package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/memovault/memovault/client"
	"github.com/memovault/memovault/internal/model"
)

func printJSON(out io.Writer, v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(b))
	return err
}

func newCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new memo",
		RunE: func(cmd *cobra.Command, args []string) error {
			content, _ := cmd.Flags().GetString("content")
			tags, _ := cmd.Flags().GetStringSlice("tags")
			related, _ := cmd.Flags().GetStringSlice("related")

			req := model.CreateMemoRequest{Content: content, Tags: tags, RelatedTo: related}
			if cmd.Flags().Changed("importance") {
				v, _ := cmd.Flags().GetInt("importance")
				req.Importance = &v
			}
			if cmd.Flags().Changed("emotion") {
				v, _ := cmd.Flags().GetString("emotion")
				req.Emotion = &v
			}
			if cmd.Flags().Changed("context") {
				v, _ := cmd.Flags().GetString("context")
				req.Context = &v
			}

			memo, err := client.New(apiFlag).CreateMemo(context.Background(), req)
			if err != nil {
				return err
			}
			return printJSON(os.Stdout, memo)
		},
	}
	cmd.Flags().StringP("content", "c", "", "Memo text (required)")
	cmd.Flags().StringSliceP("tags", "t", nil, "Tags for the memo")
	cmd.Flags().IntP("importance", "i", model.DefaultImportance, "Importance 1-5")
	cmd.Flags().StringP("emotion", "e", "", "Emotion label")
	cmd.Flags().StringP("context", "x", "", "Context note")
	cmd.Flags().StringSliceP("related", "r", nil, "Related memo ids")
	_ = cmd.MarkFlagRequired("content")
	return cmd
}

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <memo-id>",
		Short: "Get a memo by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			memo, err := client.New(apiFlag).GetMemo(context.Background(), args[0])
			if err != nil {
				return err
			}
			return printJSON(os.Stdout, memo)
		},
	}
}

func filterFromFlags(cmd *cobra.Command) (model.MemoFilter, error) {
	var f model.MemoFilter
	f.Tags, _ = cmd.Flags().GetStringSlice("tags")
	if cmd.Flags().Changed("min-importance") {
		v, _ := cmd.Flags().GetInt("min-importance")
		f.MinImportance = &v
	}
	if cmd.Flags().Changed("emotion") {
		v, _ := cmd.Flags().GetString("emotion")
		f.Emotion = &v
	}
	if cmd.Flags().Changed("created-after") {
		raw, _ := cmd.Flags().GetString("created-after")
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return f, fmt.Errorf("invalid --created-after: %w", err)
		}
		f.CreatedAfter = &t
	}
	if cmd.Flags().Changed("created-before") {
		raw, _ := cmd.Flags().GetString("created-before")
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return f, fmt.Errorf("invalid --created-before: %w", err)
		}
		f.CreatedBefore = &t
	}
	f.OrderBy, _ = cmd.Flags().GetString("order-by")
	f.Limit, _ = cmd.Flags().GetInt("limit")
	return f, nil
}

func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().StringSliceP("tags", "t", nil, "Match memos carrying at least one of these tags")
	cmd.Flags().Int("min-importance", 0, "Inclusive importance lower bound (1-5)")
	cmd.Flags().StringP("emotion", "e", "", "Exact emotion match")
	cmd.Flags().String("created-after", "", "Inclusive RFC3339 lower bound on created_at")
	cmd.Flags().String("created-before", "", "Inclusive RFC3339 upper bound on created_at")
	cmd.Flags().String("order-by", "", "created_at (default) or importance")
	cmd.Flags().IntP("limit", "l", 0, "Max memos to return")
}

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List memos with optional filters",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := filterFromFlags(cmd)
			if err != nil {
				return err
			}
			memos, err := client.New(apiFlag).ListMemos(context.Background(), f)
			if err != nil {
				return err
			}
			return printJSON(os.Stdout, memos)
		},
	}
	addFilterFlags(cmd)
	return cmd
}

func newUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <memo-id>",
		Short: "Update fields of an existing memo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var req model.UpdateMemoRequest
			if cmd.Flags().Changed("content") {
				v, _ := cmd.Flags().GetString("content")
				req.Content = &v
			}
			if cmd.Flags().Changed("tags") {
				v, _ := cmd.Flags().GetStringSlice("tags")
				req.Tags = &v
			}
			if cmd.Flags().Changed("importance") {
				v, _ := cmd.Flags().GetInt("importance")
				req.Importance = &v
			}
			if cmd.Flags().Changed("emotion") {
				v, _ := cmd.Flags().GetString("emotion")
				req.Emotion = &v
			}
			if cmd.Flags().Changed("context") {
				v, _ := cmd.Flags().GetString("context")
				req.Context = &v
			}
			if cmd.Flags().Changed("related") {
				v, _ := cmd.Flags().GetStringSlice("related")
				req.RelatedTo = &v
			}

			memo, err := client.New(apiFlag).UpdateMemo(context.Background(), args[0], req)
			if err != nil {
				return err
			}
			return printJSON(os.Stdout, memo)
		},
	}
	cmd.Flags().StringP("content", "c", "", "New memo text")
	cmd.Flags().StringSliceP("tags", "t", nil, "Replacement tag set")
	cmd.Flags().IntP("importance", "i", 0, "New importance 1-5")
	cmd.Flags().StringP("emotion", "e", "", "New emotion label")
	cmd.Flags().StringP("context", "x", "", "New context note")
	cmd.Flags().StringSliceP("related", "r", nil, "Replacement set of related memo ids")
	return cmd
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <memo-id>",
		Short: "Delete a memo permanently",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.New(apiFlag).DeleteMemo(context.Background(), args[0]); err != nil {
				return err
			}
			fmt.Printf("deleted memo %s\n", args[0])
			return nil
		},
	}
}

func newSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Keyword search over memos",
		RunE: func(cmd *cobra.Command, args []string) error {
			query, _ := cmd.Flags().GetString("query")
			f, err := filterFromFlags(cmd)
			if err != nil {
				return err
			}
			memos, err := client.New(apiFlag).SearchMemos(context.Background(), query, f)
			if err != nil {
				return err
			}
			return printJSON(os.Stdout, memos)
		},
	}
	cmd.Flags().StringP("query", "q", "", "Search query text (required)")
	_ = cmd.MarkFlagRequired("query")
	addFilterFlags(cmd)
	return cmd
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show collection statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := client.New(apiFlag).Stats(context.Background())
			if err != nil {
				return err
			}
			return printJSON(os.Stdout, stats)
		},
	}
}
