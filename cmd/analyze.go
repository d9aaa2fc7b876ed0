package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-scout/internal/research"
)

var analyzeMaxPages int

var analyzeCmd = &cobra.Command{
	Use:   "analyze <company name>",
	Short: "Discover a company and crawl its website in one pass",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		maxPages := analyzeMaxPages
		if maxPages == 0 {
			maxPages = cfg.Crawl.MaxPages
		}

		analysis, err := env.Research.Analyze(ctx, buildDiscoveryRequest(args[0]), research.AnalyzeOptions{
			MaxPages: maxPages,
		})
		if err != nil {
			return eris.Wrap(err, "analyze")
		}

		fields := []zap.Field{
			zap.String("company", analysis.CompanyName),
			zap.String("website", analysis.Discovery.WebsiteURL()),
			zap.Duration("duration", analysis.Duration),
		}
		if analysis.Crawl != nil {
			fields = append(fields, zap.Int("pages", analysis.Crawl.TotalPages))
		}
		zap.L().Info("analysis complete", fields...)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(analysis)
	},
}

func init() {
	analyzeCmd.Flags().IntVar(&analyzeMaxPages, "max-pages", 0, "crawl page budget (default from config)")
	rootCmd.AddCommand(analyzeCmd)
}
