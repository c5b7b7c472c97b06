package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/Gunvolt24/movies/config"
	"github.com/Gunvolt24/movies/internal/app"
	"github.com/Gunvolt24/movies/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// CLI для разовых запросов к кэшу фильмов (тот же сервис, что и у HTTP API).
func main() {
	_ = godotenv.Load(".env.local")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "movie-lookup: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "movie-lookup",
		Short: "Look up TMDB movies through the read-through cache",
		Long: "movie-lookup reads upcoming movies and single movies through the configured cache backend.\n" +
			"Configuration comes from MOVIES_* environment variables (and .env.local).",
	}
	root.SilenceErrors = true
	root.SilenceUsage = true

	root.AddCommand(
		newUpcomingCmd(),
		newMovieCmd(),
		newWarmUpCmd(),
	)
	return root
}

func newUpcomingCmd() *cobra.Command {
	var region string
	cmd := &cobra.Command{
		Use:     "upcoming",
		Short:   "Print upcoming movies for a region, sorted by release date",
		Example: "  movie-lookup upcoming --region FR",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMovies(cmd, func(ctx context.Context, m *app.Movies, cfg *config.Config) error {
				if region == "" {
					region = cfg.HTTP.DefaultRegion
				}
				movies, err := m.Service.UpcomingMovies(ctx, region)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), movies)
			})
		},
	}
	cmd.Flags().StringVarP(&region, "region", "r", "", "region code (default MOVIES_HTTP_DEFAULT_REGION)")
	return cmd
}

func newMovieCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "movie <id>",
		Short:   "Print a single movie by its TMDB id",
		Example: "  movie-lookup movie 807172",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMovies(cmd, func(ctx context.Context, m *app.Movies, _ *config.Config) error {
				movie, ok := m.Service.Movie(ctx, args[0])
				if !ok {
					return fmt.Errorf("movie %s not found", args[0])
				}
				return printJSON(cmd.OutOrStdout(), movie)
			})
		},
	}
}

func newWarmUpCmd() *cobra.Command {
	var regions []string
	cmd := &cobra.Command{
		Use:     "warm-up",
		Short:   "Fill the cache with upcoming movies for the given regions",
		Example: "  movie-lookup warm-up --region US --region FR",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMovies(cmd, func(ctx context.Context, m *app.Movies, cfg *config.Config) error {
				if len(regions) == 0 {
					regions = cfg.Cache.WarmUpRegions
				}
				if len(regions) == 0 {
					return fmt.Errorf("no regions: pass --region or set MOVIES_CACHE_WARMUP_REGIONS")
				}
				return m.Service.WarmUp(ctx, regions)
			})
		},
	}
	cmd.Flags().StringSliceVarP(&regions, "region", "r", nil, "region codes to warm up (repeatable or comma-separated)")
	return cmd
}

// withMovies — конфиг, логгер и сервис на время одной команды.
func withMovies(cmd *cobra.Command, fn func(ctx context.Context, m *app.Movies, cfg *config.Config) error) error {
	ctx := cmd.Context()

	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logg, cleanup, err := logger.NewZapLogger(cfg.Logger.IsProd)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = cleanup() }()

	m, err := app.NewMovies(ctx, &cfg, logg)
	if err != nil {
		return err
	}
	defer func() {
		if err := m.Close(); err != nil {
			logg.Warnf(ctx, "close movie service: %v", err)
		}
	}()

	return fn(ctx, m, &cfg)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
