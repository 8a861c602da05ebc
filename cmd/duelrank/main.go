// Package main provides the CLI entrypoint for duelrank.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/duelrank/internal/adapters/discovery"
	api "github.com/okian/duelrank/internal/adapters/http/api"
	"github.com/okian/duelrank/internal/adapters/statefile"
	app "github.com/okian/duelrank/internal/app"
	"github.com/okian/duelrank/internal/config"
	"github.com/okian/duelrank/internal/domain/types"
	"github.com/okian/duelrank/internal/sim"
	"github.com/okian/duelrank/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
)

var (
	judgeAddr  string
	judgeLimit int

	rankLimit int

	simItems    int
	simMaxPairs int
	simSeed     int64
	simDrawProb float64
	simSpread   float64
	simTopN     int
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "duelrank",
		Short:         "Rank images by pairwise human judgments with ELO scoring",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.AddCommand(newJudgeCmd())
	rootCmd.AddCommand(newRankCmd())
	rootCmd.AddCommand(newSimulateCmd())

	return rootCmd
}

func newJudgeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "judge DIR",
		Short: "Run an interactive judging session over the images in DIR",
		Args:  cobra.ExactArgs(1),
		RunE:  runJudgeCmd,
	}
	cmd.Flags().StringVar(&judgeAddr, "addr", "", "listen address for the read-only diagnostics server (empty disables)")
	cmd.Flags().IntVar(&judgeLimit, "limit", 20, "rows in the final ranking table")
	return cmd
}

func newRankCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rank DIR",
		Short: "Print the current ranking table from the state file in DIR",
		Args:  cobra.ExactArgs(1),
		RunE:  runRankCmd,
	}
	cmd.Flags().IntVar(&rankLimit, "limit", 0, "rows to print (0 = all)")
	return cmd
}

func newSimulateCmd() *cobra.Command {
	defaults := sim.DefaultConfig()
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Drive a synthetic judging session and report convergence",
		RunE:  runSimulateCmd,
	}
	cmd.Flags().IntVar(&simItems, "items", defaults.Items, "number of synthetic items")
	cmd.Flags().IntVar(&simMaxPairs, "max-pairs", defaults.MaxPairs, "pair budget before giving up")
	cmd.Flags().Int64Var(&simSeed, "seed", defaults.Seed, "random seed")
	cmd.Flags().Float64Var(&simDrawProb, "draw-prob", defaults.DrawProbability, "probability a pair is judged a draw")
	cmd.Flags().Float64Var(&simSpread, "spread", defaults.StrengthSpread, "hidden strength spread")
	cmd.Flags().IntVar(&simTopN, "top", defaults.TopN, "rows in the final ranking table")
	return cmd
}

// setup loads config, applies the log level, and returns a signal-aware
// context shared by all commands.
func setup() (context.Context, context.CancelFunc, *config.Config, error) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	cfg, err := config.Load(ctx)
	if err != nil {
		stop()
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(ctx, "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	return ctx, stop, cfg, nil
}

// newSession builds a Session from config, optionally bound to a state file
// inside dir.
func newSession(cfg *config.Config, dir string, extra ...app.Option) *app.Session {
	opts := []app.Option{
		app.WithKFactor(cfg.KFactor),
		app.WithInitialRating(cfg.InitialRating),
		app.WithSnapshotEvery(cfg.SnapshotEvery),
		app.WithHistoryLimit(cfg.HistoryLimit),
		app.WithDeltaCriterion(cfg.DeltaThreshold, cfg.DeltaWindow),
		app.WithRankCriterion(cfg.RankThreshold, cfg.RankWindow),
		app.WithJudgmentLogLimit(cfg.JudgmentLogLimit),
		app.WithLogger(logger.Get()),
	}
	if dir != "" {
		repo := statefile.NewFileRepository(filepath.Join(dir, cfg.StateFile))
		opts = append(opts, app.WithStateRepository(repo))
	}
	opts = append(opts, extra...)
	return app.New(opts...)
}

func runJudgeCmd(cmd *cobra.Command, args []string) error {
	ctx, stop, cfg, err := setup()
	if err != nil {
		return err
	}
	defer stop()

	dir := args[0]
	session := newSession(cfg, dir)

	scanner := discovery.NewScanner(discovery.WithExtensions(cfg.ImageExtensions))
	items, err := scanner.Scan(ctx, dir)
	if err != nil {
		return err
	}
	if len(items) < 2 {
		return fmt.Errorf("need at least two images in %s to judge", dir)
	}

	if err := session.RestoreState(ctx); err != nil && !errors.Is(err, statefile.ErrNotFound) {
		return err
	}
	session.RegisterItems(ctx, items)

	addr := judgeAddr
	if addr == "" {
		addr = cfg.Addr
	}
	if addr != "" {
		srv := startDiagnostics(ctx, addr, session, cfg.MaxRankingsLimit)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	if err := judgeLoop(ctx, session); err != nil {
		return err
	}

	if err := session.SaveState(ctx, dir); err != nil {
		return err
	}
	printRankings(session.Rankings(ctx, judgeLimit))
	printDiagnostics(session.Diagnostics(ctx))
	return nil
}

// judgeLoop reads one judgment per line from stdin. All engine mutations
// funnel through this single goroutine; the diagnostics server only reads.
func judgeLoop(ctx context.Context, session *app.Session) error {
	in := bufio.NewScanner(os.Stdin)
	fmt.Println("Judging session. Answer with 1 (left wins), 2 (right wins), d (draw), s (skip), q (quit).")

	for {
		if err := ctx.Err(); err != nil {
			return nil // interrupted; caller saves state
		}
		if session.Converged(ctx) {
			fmt.Println("Ranking looks converged; keep judging or press q to finish.")
		}

		a, b, err := session.NextPair(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("\n[1] %s (%.1f, %d comparisons)\n[2] %s (%.1f, %d comparisons)\n> ",
			filepath.Base(a), session.Rating(ctx, a), session.ComparisonCount(ctx, a),
			filepath.Base(b), session.Rating(ctx, b), session.ComparisonCount(ctx, b),
		)

		if !in.Scan() {
			return nil // EOF ends the session
		}
		switch strings.TrimSpace(strings.ToLower(in.Text())) {
		case "1":
			session.JudgeWin(ctx, a, b)
		case "2":
			session.JudgeWin(ctx, b, a)
		case "d":
			session.JudgeDraw(ctx, a, b)
		case "s", "":
			continue
		case "q":
			return nil
		default:
			fmt.Println("unrecognized input; use 1, 2, d, s, or q")
		}
	}
}

func runRankCmd(cmd *cobra.Command, args []string) error {
	ctx, stop, cfg, err := setup()
	if err != nil {
		return err
	}
	defer stop()

	session := newSession(cfg, args[0])
	if err := session.RestoreState(ctx); err != nil {
		return err
	}
	printRankings(session.Rankings(ctx, rankLimit))
	return nil
}

func runSimulateCmd(cmd *cobra.Command, args []string) error {
	ctx, stop, cfg, err := setup()
	if err != nil {
		return err
	}
	defer stop()

	session := newSession(cfg, "", app.WithPairSeed(simSeed))
	result, err := sim.Run(ctx, session, sim.Config{
		Items:           simItems,
		MaxPairs:        simMaxPairs,
		Seed:            simSeed,
		DrawProbability: simDrawProb,
		StrengthSpread:  simSpread,
		TopN:            simTopN,
	})
	if err != nil {
		return err
	}

	fmt.Printf("judged %d pairs, converged=%v\n", result.Pairs, result.Converged)
	printRankings(result.Top)
	printDiagnostics(result.Diagnostics)
	return nil
}

// startDiagnostics serves the read-only API alongside the judging loop.
func startDiagnostics(ctx context.Context, addr string, session *app.Session, maxLimit int) *http.Server {
	mux := http.NewServeMux()
	api.NewServer(session, session, maxLimit).Register(ctx, mux)

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	go func() {
		logger.Get().Info(ctx, "starting diagnostics server", logger.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Get().Error(ctx, "diagnostics server failed", logger.Error(err))
		}
	}()
	return srv
}

func printRankings(entries []types.Entry) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tITEM\tRATING\tCOMPARISONS")
	for _, e := range entries {
		fmt.Fprintf(w, "%d\t%s\t%.1f\t%d\n", e.Rank, filepath.Base(e.Item), e.Rating, e.Comparisons)
	}
	_ = w.Flush()
}

func printDiagnostics(d types.Diagnostics) {
	fmt.Printf("items=%d comparisons=%d snapshots=%d", d.Items, d.TotalComparisons, d.Snapshots)
	if d.MaxDelta != nil {
		fmt.Printf(" maxDelta=%.2f avgDelta=%.2f", *d.MaxDelta, *d.AvgDelta)
	}
	if d.RankStability != nil {
		fmt.Printf(" rankStability=%.4f", *d.RankStability)
	}
	fmt.Printf(" convergedByDelta=%v convergedByRank=%v\n", d.ConvergedByDelta, d.ConvergedByRank)
}
