package commands

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/evalboard/evalboard/internal/api"
	"github.com/evalboard/evalboard/internal/cli/config"
	"github.com/evalboard/evalboard/internal/store"
)

// SeedOptions holds options for the seed command.
type SeedOptions struct {
	Count int
	State string
	Reset bool
}

// NewSeedCommand creates the seed command.
func NewSeedCommand() *cobra.Command {
	opts := &SeedOptions{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill the fixture database with sample experiments",
		Long: `Generate sample experiments with metrics and annotation scores in
the fixture database used by the serve command.`,
		Example: `  # Seed 250 experiments
  evalboard seed

  # Seed 1000 experiments into a custom database
  evalboard seed --count 1000 --state ./fixtures.db`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSeed(cmd, opts)
		},
	}

	cmd.Flags().IntVar(&opts.Count, "count", 250, "Number of experiments to generate")
	cmd.Flags().StringVar(&opts.State, "state", "", "Path to the experiments database")
	cmd.Flags().BoolVar(&opts.Reset, "reset", false, "Delete existing experiments first")

	return cmd
}

func runSeed(cmd *cobra.Command, opts *SeedOptions) error {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())

	statePath := cfg.Serve.StatePath
	if opts.State != "" {
		statePath = opts.State
	}
	if err := ensureStateDir(statePath); err != nil {
		return err
	}

	st := store.NewSQLiteStore()
	if err := st.Open(statePath); err != nil {
		return fmt.Errorf("failed to open state database: %w", err)
	}
	defer func() { _ = st.Close() }()

	if err := st.Migrate(); err != nil {
		return fmt.Errorf("failed to migrate state database: %w", err)
	}

	ctx := cmd.Context()
	if opts.Reset {
		if err := resetExperiments(ctx, st, cfg.PageSize); err != nil {
			return err
		}
	}

	if err := seedExperiments(ctx, st, opts.Count); err != nil {
		return err
	}

	total, err := st.CountExperiments(ctx)
	if err != nil {
		return err
	}
	logger.Debug("seeded database", "path", statePath, "total", total)
	fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d experiments (%d total) in %s\n", opts.Count, total, statePath)
	return nil
}

// resetExperiments deletes all stored experiments page by page.
func resetExperiments(ctx context.Context, st *store.SQLiteStore, pageSize int) error {
	for {
		page, err := st.ListExperiments(ctx, nil, pageSize, store.Sort{Column: "createdAt"})
		if err != nil {
			return err
		}
		if len(page.Experiments) == 0 {
			return nil
		}

		ids := make([]string, len(page.Experiments))
		for i, exp := range page.Experiments {
			ids[i] = exp.ID
		}
		if _, err := st.DeleteExperiments(ctx, ids); err != nil {
			return err
		}
	}
}

var (
	seedPrefixes    = []string{"baseline", "prompt-v2", "rag-rerank", "few-shot", "distilled", "guardrails", "agentic", "cot"}
	seedModels      = []string{"gpt-4o", "sonnet", "haiku", "llama-70b", "mistral-large"}
	seedAnnotations = []string{"correctness", "helpfulness", "conciseness", "hallucination"}
)

// seedExperiments inserts generated fixtures. Generation is seeded so
// repeated runs on a fresh database produce the same dataset.
func seedExperiments(ctx context.Context, st *store.SQLiteStore, count int) error {
	rng := rand.New(rand.NewSource(42))
	now := time.Now().UTC()

	for i := 0; i < count; i++ {
		projectID := uuid.NewSHA1(uuid.NameSpaceOID, []byte(seedModels[i%len(seedModels)])).String()
		runCount := 5 + rng.Intn(200)

		exp := &store.Experiment{
			Name:        fmt.Sprintf("%s-%s-%03d", seedPrefixes[i%len(seedPrefixes)], seedModels[i%len(seedModels)], i),
			Description: fmt.Sprintf("Evaluation run over %d test cases", runCount),
			ProjectID:   &projectID,
			RunCount:    runCount,
			CreatedAt:   now.Add(-time.Duration(count-i) * 37 * time.Minute),
			Annotations: make(map[string]api.AnnotationSummary),
		}

		// A slice of experiments has no metrics yet
		if rng.Float64() > 0.1 {
			errorRate := rng.Float64() * 0.3
			latency := 200 + rng.Float64()*4800
			cost := rng.Float64() * 25
			tokens := float64(rng.Intn(2_000_000))
			exp.ErrorRate = &errorRate
			exp.AvgLatencyMS = &latency
			exp.TotalCost = &cost
			exp.TotalTokens = &tokens
		}

		for _, name := range seedAnnotations {
			if rng.Float64() > 0.7 {
				continue
			}
			// Annotated counts below runCount exercise the missing
			// indicator in the grid.
			annotated := rng.Intn(runCount + 1)
			summary := api.AnnotationSummary{
				Count:      annotated,
				ErrorCount: rng.Intn(annotated/4 + 1),
			}
			if rng.Float64() > 0.05 {
				score := rng.Float64()
				summary.MeanScore = &score
			}
			exp.Annotations[name] = summary
		}

		if err := st.InsertExperiment(ctx, exp); err != nil {
			return fmt.Errorf("failed to seed experiment %d: %w", i, err)
		}
	}
	return nil
}
