package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/mahdiidarabi/tzpass-recovery/internal/config"
	"github.com/mahdiidarabi/tzpass-recovery/pkg/tzrecovery"
)

type searchCommand struct {
	root *rootFlags

	workers      int
	signalRate   int
	startIndex   uint64
	resultFile   string
	withVariable bool
	noProgress   bool

	cmd *cobra.Command
}

func newSearchCommand(rf *rootFlags) *cobra.Command {
	cc := &searchCommand{root: rf}
	cc.cmd = &cobra.Command{
		Use:   "search",
		Short: "Run the passphrase search",
		Long: `Builds the candidate plan, then derives and scores every candidate
until the target address is found or the plan is exhausted.

Matches are appended to the result file. Interrupting the search prints the
index to pass as --start-index to continue where it stopped.`,
		Example: `tzrecover search --config recovery.yml
tzrecover search --config recovery.yml --workers 6 --start-index 1250000`,
		Args: cobra.NoArgs,
		RunE: cc.Execute,
	}
	f := cc.cmd.Flags()
	f.IntVar(&cc.workers, "workers", 0, "Number of parallel workers (0 = all CPUs but one)")
	f.IntVar(&cc.signalRate, "signal-rate", 0, "Progress updates per second, 1..60 (default 15)")
	f.Uint64Var(&cc.startIndex, "start-index", 0, "Resume the plan at this candidate index")
	f.StringVar(&cc.resultFile, "result-file", "", "File matches are appended to (default password.lst)")
	f.BoolVar(&cc.withVariable, "with-variable", false, "Let the variable salt move among the components")
	f.BoolVar(&cc.noProgress, "no-progress", false, "Disable the progress bar")
	return cc.cmd
}

func (c *searchCommand) Execute(cmd *cobra.Command, _ []string) error {
	cfg, err := c.root.load(cmd)
	if err != nil {
		return err
	}
	cfg = config.Merge(cfg, config.Config{Search: config.Search{
		Workers:    c.workers,
		SignalRate: c.signalRate,
		StartIndex: c.startIndex,
		ResultFile: c.resultFile,
	}})
	if cmd.Flags().Changed("with-variable") {
		cfg.Generation.WithVariable = c.withVariable
	}

	plan, err := cfg.Plan()
	if err != nil {
		return err
	}

	colorTitle.Println("Tezos passphrase search")
	colorInfo.Printf("  Target:     %s\n", cfg.Address)
	colorInfo.Printf("  Candidates: %s tuples over %d templates\n", plan.Space().String(), len(plan.Templates()))
	colorInfo.Printf("  Results:    %s\n", cfg.Search.ResultFile)
	if cfg.Search.StartIndex > 0 {
		colorInfo.Printf("  Resuming at index %d\n", cfg.Search.StartIndex)
	}

	sc := cfg.SearchConfig()
	var bar *progressbar.ProgressBar
	if !c.noProgress {
		start := min(cfg.Search.StartIndex, plan.Len())
		bar = newProgressBar(plan.Len() - start)
		sc.Progress = func(st tzrecovery.Stats) {
			_ = bar.Set64(int64(max(st.Position, start) - start))
			bar.Describe(fmt.Sprintf("best %.4f", st.BestDistance))
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := tzrecovery.NewClient().
		WithSink(tzrecovery.NewFileSink(cfg.Search.ResultFile)).
		WithStrategy(tzrecovery.NewParallelSearch().WithConfig(sc))

	result, err := client.Recover(ctx, cfg.Params(), plan)
	if bar != nil {
		_ = bar.Finish()
		fmt.Println()
	}
	if result != nil {
		printSearchResult(result, plan, cfg)
	}
	if errors.Is(err, tzrecovery.ErrNotFound) {
		return nil
	}
	return err
}

func newProgressBar(total uint64) *progressbar.ProgressBar {
	return progressbar.NewOptions64(
		int64(total),
		progressbar.OptionSetDescription("searching"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("tuples/s"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionFullWidth(),
	)
}

func printSearchResult(result *tzrecovery.SearchResult, plan *tzrecovery.Plan, cfg config.Config) {
	st := result.Stats
	fmt.Printf("Tested %d candidates in %s (%.1f/s)\n",
		st.TotalAttempts, st.Elapsed.Round(time.Millisecond), st.AttemptsPerSecond)

	if result.Found {
		colorFound.Printf("✅ Passphrase found: %s\n", result.Password)
		fmt.Printf("   Recorded in %s\n", cfg.Search.ResultFile)
		return
	}

	colorWarn.Println("Passphrase not found")
	if st.BestPassword != "" {
		fmt.Printf("   Closest candidate: %q (distance %.4f)\n", st.BestPassword, st.BestDistance)
	}
	if result.NextIndex < plan.Len() {
		colorWarn.Printf("   Search stopped early; continue with --start-index %d\n", result.NextIndex)
	}
}
