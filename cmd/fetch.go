package main

import (
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/ffindustry/internal/fetcher"
)

var (
	fetchSchemes []int
	fetchDir     string
	fetchBaseURL string
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download Siccodes definition files from the Ken French data library",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if fetchDir != "" {
			cfg.Fetch.Dir = fetchDir
		}
		if fetchBaseURL != "" {
			cfg.Fetch.BaseURL = fetchBaseURL
		}
		if err := cfg.Validate("fetch"); err != nil {
			return err
		}

		f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
			UserAgent:  cfg.Fetch.UserAgent,
			Timeout:    time.Duration(cfg.Fetch.TimeoutSecs) * time.Second,
			MaxRetries: cfg.Fetch.MaxRetries,
		})

		paths := make([]string, len(fetchSchemes))
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(cfg.Fetch.Concurrency)
		for i, scheme := range fetchSchemes {
			g.Go(func() error {
				p, err := fetcher.FetchScheme(gctx, f, cfg.Fetch.BaseURL, scheme, cfg.Fetch.Dir)
				if err != nil {
					return err
				}
				paths[i] = p
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		zap.L().Info("fetch complete",
			zap.Ints("schemes", fetchSchemes),
			zap.Strings("files", paths),
		)
		return nil
	},
}

func init() {
	fetchCmd.Flags().IntSliceVar(&fetchSchemes, "scheme", []int{49}, "industry scheme to download (repeatable): 5, 10, 12, 17, 30, 38, 48 or 49")
	fetchCmd.Flags().StringVar(&fetchDir, "dir", "", "destination directory (overrides fetch.dir)")
	fetchCmd.Flags().StringVar(&fetchBaseURL, "base-url", "", "library base URL (overrides fetch.base_url)")
	rootCmd.AddCommand(fetchCmd)
}
