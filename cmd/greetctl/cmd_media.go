package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"greetcards/internal/mediatype"
	"greetcards/internal/models"
	"greetcards/internal/probe"
	"greetcards/internal/retry"
)

func newResolveCmd() *cobra.Command {
	var opts mediatype.Options
	cmd := &cobra.Command{
		Use:   "resolve <url>",
		Short: "Classify a media URL and print its embed URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res := mediatype.Resolve(args[0], opts)
			logger.Debug("resolved media url", zap.String("url", args[0]), zap.String("kind", string(res.Kind)))
			return printJSON(cmd, res)
		},
	}
	cmd.Flags().BoolVar(&opts.Muted, "muted", false, "Request a muted embed")
	cmd.Flags().BoolVar(&opts.Autoplay, "autoplay", false, "Request autoplay")
	cmd.Flags().StringVar(&opts.Parent, "parent", "localhost", "Host that frames Twitch embeds")
	return cmd
}

func newCheckCmd() *cobra.Command {
	var concurrency int
	cmd := &cobra.Command{
		Use:   "check <url>...",
		Short: "Probe media URLs the way the editor loads them, with retries",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			items := make([]models.MediaItem, len(args))
			for i, u := range args {
				items[i] = models.MediaItem{ID: strconv.Itoa(i + 1), URL: u}
			}
			results := probe.New(nil).WithConcurrency(concurrency).Check(ctx, items)

			failed := 0
			for _, r := range results {
				if r.State.Status != retry.StatusLoaded {
					failed++
					logger.Warn("media not loadable", zap.String("url", r.URL), zap.String("error", r.State.LastError))
				}
			}
			if err := printJSON(cmd, results); err != nil {
				return err
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d urls failed", failed, len(results))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&concurrency, "concurrency", probe.DefaultConcurrency, "Parallel probes")
	return cmd
}

func newMediaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "media",
		Short: "Inspect upload records (PostgreSQL)",
	}

	var limit, offset int
	list := &cobra.Command{
		Use:   "list",
		Short: "List recent uploads",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			items, err := mediaStore(db).List(ctx, limit, offset)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, m := range items {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", m.ID, m.Kind, m.HumanSize(), m.CreatedAt.Format("2006-01-02 15:04"), m.URL)
			}
			return nil
		},
	}
	list.Flags().IntVar(&limit, "limit", 50, "Maximum rows")
	list.Flags().IntVar(&offset, "offset", 0, "Rows to skip")

	count := &cobra.Command{
		Use:   "count",
		Short: "Print the number of uploads",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			n, err := mediaStore(db).Count(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), n)
			return nil
		},
	}

	cmd.AddCommand(list, count)
	return cmd
}

// printJSON writes v indented to the command's output.
func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// readInput reads a file, or stdin when path is "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}
