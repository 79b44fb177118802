package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tbeckett/grammarsmith/internal/config"
	"github.com/tbeckett/grammarsmith/internal/engine"
	"github.com/tbeckett/grammarsmith/internal/grammar"
	"github.com/tbeckett/grammarsmith/internal/render"
	"github.com/tbeckett/grammarsmith/internal/scaffold"
	"github.com/tbeckett/grammarsmith/internal/state"
	"github.com/tbeckett/grammarsmith/internal/tui"
	"github.com/tbeckett/grammarsmith/pkg/models"
)

var (
	generateOut     string
	generatePool    int
	generateTimeout time.Duration
	generateNoTUI   bool
	generateGC      bool
	generateNoSave  bool
	generatePerf    bool
)

var generateCmd = &cobra.Command{
	Use:   "generate <manifest>",
	Short: "Generate an editor extension from a grammar manifest",
	Long: `Generate renders every extension artifact from the given grammar
manifest and writes them under the output directory.

Examples:
  grammarsmith generate zealot.yaml
  grammarsmith generate zealot.yaml --out dist/zealot --pool 2
  grammarsmith generate zealot.yaml --no-tui --perf`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&generateOut, "out", "o", "", "Output directory (default from config)")
	generateCmd.Flags().IntVar(&generatePool, "pool", 0, "Worker pool size (default: CPU count, capped)")
	generateCmd.Flags().DurationVar(&generateTimeout, "timeout", 0, "Per-task timeout (default from config)")
	generateCmd.Flags().BoolVar(&generateNoTUI, "no-tui", false, "Plain output instead of the progress view")
	generateCmd.Flags().BoolVar(&generateGC, "gc-between-waves", false, "Hint a garbage collection between waves")
	generateCmd.Flags().BoolVar(&generateNoSave, "no-history", false, "Skip recording the run in the history ledger")
	generateCmd.Flags().BoolVar(&generatePerf, "perf", false, "Print per-operation timing after the run")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyGenerateFlags(cmd, cfg)

	_, err = generateOnce(cmd.Context(), args[0], cfg)
	return err
}

// applyGenerateFlags folds explicit flag values over the loaded config.
func applyGenerateFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("out") {
		cfg.Output.Dir = generateOut
	}
	if cmd.Flags().Changed("pool") {
		cfg.Engine.PoolSize = generatePool
	}
	if cmd.Flags().Changed("timeout") {
		cfg.Engine.DefaultTimeout = generateTimeout
	}
	if cmd.Flags().Changed("gc-between-waves") {
		cfg.Engine.GCBetweenWaves = generateGC
	}
	if cmd.Flags().Changed("no-tui") {
		cfg.TUI.Enabled = !generateNoTUI
	}
}

// generateOnce runs one full generation: plan, execute, write, record.
// It returns the batch result so watch mode can summarize without
// re-deriving it.
func generateOnce(ctx context.Context, manifestPath string, cfg *config.Config) (*engine.BatchResult, error) {
	m, err := grammar.Load(manifestPath)
	if err != nil {
		return nil, err
	}

	tasks := scaffold.Plan(m)
	poolSize := cfg.Engine.EffectivePoolSize()

	var monitor engine.Monitor = engine.NopMonitor{}
	var perf *engine.PerformanceMonitor
	if generatePerf {
		perf = engine.NewPerformanceMonitor()
		monitor = perf
	}

	eng, err := engine.New(engine.Config{
		PoolSize:       poolSize,
		DefaultTimeout: cfg.Engine.DefaultTimeout,
		GCBetweenWaves: cfg.Engine.GCBetweenWaves,
		Monitor:        monitor,
		Logger:         engine.NewDebugLoggerForProject("."),
		Runner:         render.New().Runner(),
	})
	if err != nil {
		return nil, err
	}
	defer eng.Cleanup()

	started := time.Now()

	var batch *engine.BatchResult
	if cfg.TUI.Enabled {
		done := make(chan struct{})
		go func() {
			batch = eng.Process(ctx, tasks)
			close(done)
		}()
		title := fmt.Sprintf("Generating %s extension", m.Language.Name)
		if _, err := tui.Run(title, len(tasks), eng.Events()); err != nil {
			fmt.Fprintf(os.Stderr, "progress view error: %v\n", err)
		}
		<-done
	} else {
		go drainEvents(eng.Events())
		batch = eng.Process(ctx, tasks)
	}
	elapsed := time.Since(started)

	writer := scaffold.NewWriter(cfg.Output.Dir)
	resultPtrs := make([]*models.TaskResult, len(batch.Results))
	for i := range batch.Results {
		resultPtrs[i] = &batch.Results[i]
	}
	paths, err := writer.WriteAll(resultPtrs)
	if err != nil {
		return batch, fmt.Errorf("write artifacts: %w", err)
	}

	if !generateNoSave {
		if err := recordRun(manifestPath, m, poolSize, batch, started, elapsed, resultPtrs); err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not record run: %v\n", err)
		}
	}

	printSummary(batch, paths, elapsed)
	if perf != nil {
		printPerf(perf)
	}
	if dropped := eng.DroppedEventCount(); dropped > 0 {
		fmt.Fprintf(os.Stderr, "note: %d progress events dropped under load\n", dropped)
	}

	if failed := batch.Failed(); len(failed) > 0 {
		return batch, fmt.Errorf("%d of %d tasks failed", len(failed), len(batch.Results))
	}
	return batch, nil
}

// drainEvents discards engine events when no progress view is attached,
// so the emitter never backs up.
func drainEvents(events <-chan engine.Event) {
	for range events {
	}
}

// recordRun persists the batch outcome in the project ledger.
func recordRun(manifestPath string, m *grammar.Manifest, poolSize int, batch *engine.BatchResult, started time.Time, elapsed time.Duration, results []*models.TaskResult) error {
	db, err := state.OpenProject(".")
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		return err
	}

	absPath, err := filepath.Abs(manifestPath)
	if err != nil {
		absPath = manifestPath
	}

	run := &state.Run{
		ID:           state.NewRunID(),
		ManifestPath: absPath,
		LanguageID:   m.Language.ID,
		PoolSize:     poolSize,
		Waves:        batch.Waves,
		TasksTotal:   len(batch.Results),
		TasksFailed:  len(batch.Failed()),
		StartedAt:    started,
		Duration:     elapsed,
	}
	return db.RecordRun(run, results)
}

// printSummary prints the per-task outcome and written paths.
func printSummary(batch *engine.BatchResult, paths []string, elapsed time.Duration) {
	for _, res := range batch.Results {
		if res.OK() {
			fmt.Printf("%s %s (%s)\n", color.GreenString("✓"), res.TaskID, res.Duration.Round(time.Millisecond))
		} else {
			fmt.Printf("%s %s: %v\n", color.RedString("✗"), res.TaskID, res.Err)
		}
	}

	ok := len(batch.Successful())
	fmt.Printf("\n%d/%d artifacts in %d wave(s), %s\n",
		ok, len(batch.Results), batch.Waves, elapsed.Round(time.Millisecond))
	for _, p := range paths {
		fmt.Printf("  %s\n", p)
	}
}

// printPerf prints the performance monitor's per-operation summary.
func printPerf(perf *engine.PerformanceMonitor) {
	fmt.Println("\nTiming:")
	for _, op := range perf.Summary() {
		fmt.Printf("  %-20s count=%d total=%s max=%s\n",
			op.Name, op.Count, op.Total.Round(time.Microsecond), op.Max.Round(time.Microsecond))
	}
}
