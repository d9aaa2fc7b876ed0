package main

import (
	"encoding/json"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-scout/internal/domains"
	"github.com/sells-group/prospect-scout/internal/model"
)

var (
	discoverIndustry string
	discoverLocation string
	discoverType     string
	discoverTimeout  time.Duration
	discoverNoCache  bool
)

var discoverCmd = &cobra.Command{
	Use:   "discover <company name>",
	Short: "Resolve a company name to its website and enrichment data",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		req := buildDiscoveryRequest(args[0])

		if discoverNoCache {
			if err := env.Store.DeleteDiscovery(ctx, domains.NormalizeName(req.CompanyName)); err != nil {
				zap.L().Warn("cache invalidation failed", zap.Error(err))
			}
		}

		result, err := env.Orchestrator.Discover(ctx, req)
		if err != nil {
			return eris.Wrap(err, "discover")
		}

		zap.L().Info("discovery complete",
			zap.String("company", req.CompanyName),
			zap.String("website", result.WebsiteURL()),
			zap.Float64("cross_score", result.CrossScore),
			zap.Bool("cache_hit", result.Metadata.CacheHit),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

// buildDiscoveryRequest merges CLI flags and config defaults into a request.
func buildDiscoveryRequest(companyName string) model.DiscoveryRequest {
	req := model.NewDiscoveryRequest(companyName)
	req.IndustryHint = discoverIndustry
	req.LocationHint = discoverLocation
	req.CompanyTypeHint = discoverType

	if discoverTimeout > 0 {
		req.Timeout = discoverTimeout
	} else if cfg.Discovery.Timeout() > 0 {
		req.Timeout = cfg.Discovery.Timeout()
	}
	if len(cfg.Discovery.RequiredSources) > 0 {
		req.RequiredSources = cfg.Discovery.RequiredSources
	}
	if len(cfg.Discovery.OptionalSources) > 0 {
		req.OptionalSources = cfg.Discovery.OptionalSources
	}
	return req
}

func init() {
	discoverCmd.Flags().StringVar(&discoverIndustry, "industry", "", "industry hint")
	discoverCmd.Flags().StringVar(&discoverLocation, "location", "", "location hint")
	discoverCmd.Flags().StringVar(&discoverType, "type", "", "company type hint (software, saas, ...)")
	discoverCmd.Flags().DurationVar(&discoverTimeout, "timeout", 0, "discovery deadline (default from config)")
	discoverCmd.Flags().BoolVar(&discoverNoCache, "no-cache", false, "ignore and invalidate the cached result")
	rootCmd.AddCommand(discoverCmd)
}
