// Command moviestats prints a user's statistics views straight from the database.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Clark-Hu/movie-journal/internal/config"
	"github.com/Clark-Hu/movie-journal/internal/logging"
	"github.com/Clark-Hu/movie-journal/internal/repository"
	"github.com/Clark-Hu/movie-journal/internal/stats"
	"github.com/Clark-Hu/movie-journal/internal/store"
)

var errInvalidUser = errors.New("--user must be a positive integer")

type viewFunc func(e *stats.Engine, ctx context.Context, userID int64) ([]stats.Statistic, error)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var userID int64

	root := &cobra.Command{
		Use:          "moviestats",
		Short:        "Print viewing statistics for a journal user",
		SilenceUsage: true,
	}
	root.PersistentFlags().Int64Var(&userID, "user", 0, "user id to report on")
	_ = root.MarkPersistentFlagRequired("user")

	root.AddCommand(
		viewCmd("overview", "Statistics over the watch history", &userID, (*stats.Engine).Overview),
		viewCmd("wishlist", "Statistics over the wishlist", &userID, (*stats.Engine).WishlistOverview),
		statCmd(&userID),
	)
	return root
}

func viewCmd(use, short string, userID *int64, view viewFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if *userID <= 0 {
				return errInvalidUser
			}
			return withEngine(cmd.Context(), func(ctx context.Context, engine *stats.Engine) error {
				results, err := view(engine, ctx, *userID)
				if err != nil {
					return err
				}
				render(cmd.OutOrStdout(), results)
				return nil
			})
		},
	}
}

func statCmd(userID *int64) *cobra.Command {
	return &cobra.Command{
		Use:       "stat NAME",
		Short:     "Compute a single statistic by name",
		Args:      cobra.ExactArgs(1),
		ValidArgs: stats.Names(),
		RunE: func(cmd *cobra.Command, args []string) error {
			if *userID <= 0 {
				return errInvalidUser
			}
			return withEngine(cmd.Context(), func(ctx context.Context, engine *stats.Engine) error {
				stat, err := engine.Statistic(ctx, *userID, args[0])
				if errors.Is(err, stats.ErrUnknownStatistic) {
					return fmt.Errorf("unknown statistic %q (known: %s)", args[0], strings.Join(stats.Names(), ", "))
				}
				if err != nil {
					return err
				}
				render(cmd.OutOrStdout(), []stats.Statistic{stat})
				return nil
			})
		},
	}
}

func withEngine(ctx context.Context, fn func(context.Context, *stats.Engine) error) error {
	cfg, err := config.LoadStore()
	if err != nil {
		return err
	}
	logger := logging.New(logging.Config{Level: cfg.LogLevel, Format: "console", Output: os.Stderr})

	dbCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	st, err := store.New(dbCtx, cfg.DBURL, store.OptionsFromConfig(cfg, logger))
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer st.Close()

	statsCtx, cancelStats := context.WithTimeout(ctx, time.Duration(cfg.StatsTimeoutSecs)*time.Second)
	defer cancelStats()
	return fn(statsCtx, stats.New(repository.New(st)))
}

// render writes one "Title: value, value" line per statistic.
func render(w io.Writer, results []stats.Statistic) {
	for _, s := range results {
		line := s.Result.Message
		if s.Result.Kind == stats.Found {
			line = strings.Join(s.Result.Values, ", ")
		}
		fmt.Fprintf(w, "%s: %s\n", s.Title, line)
	}
}
