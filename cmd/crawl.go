package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	crawlMaxPages int
	crawlKeywords []string
)

var crawlCmd = &cobra.Command{
	Use:   "crawl <site url>",
	Short: "Priority-crawl a website for company intelligence",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		maxPages := crawlMaxPages
		if maxPages == 0 {
			maxPages = cfg.Crawl.MaxPages
		}

		result, err := env.Crawler.Crawl(ctx, args[0], maxPages, crawlKeywords)
		if err != nil {
			return eris.Wrap(err, "crawl")
		}

		zap.L().Info("crawl complete",
			zap.String("site", result.SiteURL),
			zap.Int("pages", result.TotalPages),
			zap.Int("content_size", result.ContentSize),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	crawlCmd.Flags().IntVar(&crawlMaxPages, "max-pages", 0, "page budget (default from config)")
	crawlCmd.Flags().StringSliceVar(&crawlKeywords, "keyword", nil, "extra scoring keyword (repeatable)")
	rootCmd.AddCommand(crawlCmd)
}
