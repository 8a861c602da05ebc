package sim

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/okian/duelrank/internal/app"
	"github.com/okian/duelrank/internal/domain/types"
	"github.com/okian/duelrank/pkg/logger"
)

// Result summarizes a simulation run.
type Result struct {
	Pairs       int
	Converged   bool
	Diagnostics types.Diagnostics
	Top         []types.Entry
}

// Run plays synthetic judgments through the session until a stopping
// criterion fires or the pair budget is exhausted. Outcomes are sampled from
// the logistic model over hidden strengths, so the session is judging a
// world whose true ranking is known.
func Run(ctx context.Context, session *app.Session, cfg Config) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, fmt.Errorf("sim config: %w", err)
	}

	log := logger.Named("sim")
	rng := rand.New(rand.NewSource(cfg.Seed)) //nolint:gosec // reproducible simulation

	// Rating of an unknown key is the session's initial rating, which centers
	// the hidden strengths on the scale the store actually uses.
	items := generateItems(rng, cfg.Items, session.Rating(ctx, ""), cfg.StrengthSpread)
	strengths := make(map[string]float64, len(items))
	keys := make([]string, len(items))
	for i, it := range items {
		strengths[it.Key] = it.Strength
		keys[i] = it.Key
	}
	session.RegisterItems(ctx, keys)

	log.Info(ctx, "simulation started",
		logger.Int("items", cfg.Items),
		logger.Int("maxPairs", cfg.MaxPairs),
	)

	result := Result{}
	for result.Pairs < cfg.MaxPairs {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("simulation interrupted: %w", err)
		}

		a, b, err := session.NextPair(ctx)
		if err != nil {
			return result, fmt.Errorf("simulation pair: %w", err)
		}

		switch {
		case rng.Float64() < cfg.DrawProbability:
			session.JudgeDraw(ctx, a, b)
		case rng.Float64() < winProbability(strengths[a], strengths[b]):
			session.JudgeWin(ctx, a, b)
		default:
			session.JudgeWin(ctx, b, a)
		}
		result.Pairs++

		if session.Converged(ctx) {
			result.Converged = true
			break
		}
	}

	result.Diagnostics = session.Diagnostics(ctx)
	result.Top = session.Rankings(ctx, cfg.TopN)

	log.Info(ctx, "simulation finished",
		logger.Int("pairs", result.Pairs),
		logger.Bool("converged", result.Converged),
		logger.Int("snapshots", result.Diagnostics.Snapshots),
	)
	return result, nil
}

// winProbability is the logistic chance that strength sa beats sb.
func winProbability(sa, sb float64) float64 {
	return 1.0 / (1.0 + math.Pow(10, (sb-sa)/400.0))
}
