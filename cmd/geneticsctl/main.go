package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"genetics/internal/report"
	"genetics/internal/storage"
	"genetics/pkg/genetics"
)

const (
	defaultArtifactsDir = "runs"
	defaultDBPath       = "genetics.db"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "run":
		return runRun(ctx, args[1:])
	case "runs":
		return runRuns(ctx, args[1:])
	case "history":
		return runHistory(ctx, args[1:])
	case "plot":
		return runPlot(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

// clientFlags are shared by every command that opens a client.
type clientFlags struct {
	storeKind    *string
	dbPath       *string
	artifactsDir *string
	logLevel     *string
}

func registerClientFlags(fs *flag.FlagSet) clientFlags {
	return clientFlags{
		storeKind:    fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite"),
		dbPath:       fs.String("db-path", defaultDBPath, "sqlite database path"),
		artifactsDir: fs.String("artifacts-dir", defaultArtifactsDir, "directory for run artifacts and the run index"),
		logLevel:     fs.String("log-level", "info", "log level: debug|info|warn|error"),
	}
}

func (f clientFlags) open() (*genetics.Client, error) {
	logger, err := newLogger(os.Stderr, *f.logLevel)
	if err != nil {
		return nil, err
	}
	return genetics.New(genetics.Options{
		StoreKind:    *f.storeKind,
		DBPath:       *f.dbPath,
		ArtifactsDir: *f.artifactsDir,
		Logger:       logger,
	})
}

func runRun(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	common := registerClientFlags(fs)
	name := fs.String("name", "", "read NAME.in and write the report to NAME.out")
	inPath := fs.String("in", "", "scalar input stream path ('-' for stdin)")
	outPath := fs.String("out", "", "report output path ('-' for stdout)")
	configPath := fs.String("config", "", "YAML or JSON run config file")
	runID := fs.String("run-id", "", "run id (generated when empty)")
	population := fs.Int("population", 0, "population size")
	left := fs.Float64("left", 0, "interval left bound")
	right := fs.Float64("right", 0, "interval right bound")
	a := fs.Float64("a", 0, "quadratic coefficient a")
	b := fs.Float64("b", 0, "linear coefficient b")
	c := fs.Float64("c", 0, "constant term c")
	precision := fs.Int("precision", 0, "decimal digits resolved over the interval")
	crossover := fs.Float64("crossover", 0, "crossover probability")
	mutation := fs.Float64("mutation", 0, "per-gene mutation probability")
	steps := fs.Int("steps", 0, "number of generations")
	seed := fs.Int64("seed", 0, "random seed (0 derives one from the clock)")
	elite := fs.String("elite", "", "elite identity: value|index")
	search := fs.String("search", "", "interval search: compat|bucket")
	trace := fs.String("trace", "", "detailed trace: first|all|none")
	if err := fs.Parse(args); err != nil {
		return err
	}
	setFlags := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		setFlags[f.Name] = true
	})
	if *name != "" && (setFlags["in"] || setFlags["out"]) {
		return errors.New("use either -name or -in/-out")
	}

	input, output := *inPath, *outPath
	if *name != "" {
		input, output = *name+".in", *name+".out"
	}
	// The scalar stream is optional only when a config file supplies the run.
	if input == "" && *configPath == "" {
		input = "-"
	}

	settings, err := loadRunSettings(input, *configPath, os.Stdin)
	if err != nil {
		return err
	}
	settings.applyFlags(setFlags, flagValues{
		runID:      *runID,
		population: *population,
		left:       *left,
		right:      *right,
		a:          *a,
		b:          *b,
		c:          *c,
		precision:  *precision,
		crossover:  *crossover,
		mutation:   *mutation,
		steps:      *steps,
		seed:       *seed,
		elite:      *elite,
		search:     *search,
		trace:      *trace,
	})
	traceMode, err := report.ParseTraceMode(settings.Trace)
	if err != nil {
		return err
	}

	w, closeOut, err := openOutput(output)
	if err != nil {
		return err
	}
	defer closeOut()

	client, err := common.open()
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	_, err = client.Run(ctx, genetics.RunRequest{
		RunID:  settings.RunID,
		Name:   *name,
		Config: settings.Config,
		Trace:  traceMode,
		Report: w,
	})
	return err
}

func runRuns(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	common := registerClientFlags(fs)
	limit := fs.Int("limit", 20, "max runs to list")
	jsonOut := fs.Bool("json", false, "emit runs list as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *limit <= 0 {
		return errors.New("limit must be > 0")
	}

	client, err := common.open()
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	items, err := client.Runs(ctx, genetics.RunsRequest{Limit: *limit})
	if err != nil {
		return err
	}
	if *jsonOut {
		type runsItem struct {
			RunID          string  `json:"run_id"`
			Name           string  `json:"name,omitempty"`
			CreatedAtUTC   string  `json:"created_at_utc"`
			Seed           int64   `json:"seed"`
			PopulationSize int     `json:"population_size"`
			Steps          int     `json:"steps"`
			Generations    int     `json:"generations"`
			Status         string  `json:"status"`
			FinalX         float64 `json:"final_x"`
			FinalMax       float64 `json:"final_max"`
		}
		out := make([]runsItem, 0, len(items))
		for _, item := range items {
			out = append(out, runsItem(item))
		}
		return writeJSON(os.Stdout, out)
	}
	if len(items) == 0 {
		fmt.Println("no runs found")
		return nil
	}
	now := time.Now()
	for _, item := range items {
		fmt.Printf("run_id=%s created=%s status=%s seed=%d population=%s generations=%d/%d x=%g max=%g\n",
			item.RunID,
			createdAgo(item.CreatedAtUTC, now),
			item.Status,
			item.Seed,
			humanize.Comma(int64(item.PopulationSize)),
			item.Generations,
			item.Steps,
			item.FinalX,
			item.FinalMax,
		)
	}
	return nil
}

func runHistory(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	common := registerClientFlags(fs)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "use the most recent run")
	limit := fs.Int("limit", 0, "max generations to show (0 = all)")
	jsonOut := fs.Bool("json", false, "emit history as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := common.open()
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	history, err := client.History(ctx, genetics.HistoryRequest{RunID: *runID, Latest: *latest, Limit: *limit})
	if err != nil {
		return err
	}
	if *jsonOut {
		return writeJSON(os.Stdout, history)
	}
	for _, s := range history {
		fmt.Printf("generation=%d elite=%s x=%g max=%g avg=%g min=%g std=%g\n",
			s.Generation, s.Elite, s.X, s.Max, s.Avg, s.Min, s.StdDev)
	}
	return nil
}

func runPlot(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("plot", flag.ContinueOnError)
	common := registerClientFlags(fs)
	runIDs := fs.String("run-id", "", "run id, or a comma-separated list of run ids")
	latest := fs.Bool("latest", false, "plot the most recent run")
	mean := fs.Bool("mean", false, "plot the generation-wise mean of several runs")
	out := fs.String("out", "", "image path; the extension selects the format (png, svg, pdf)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := common.open()
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summary, err := client.Plot(ctx, genetics.PlotRequest{
		RunIDs: splitList(*runIDs),
		Latest: *latest,
		Mean:   *mean,
		Out:    *out,
	})
	if err != nil {
		return err
	}
	fmt.Printf("plot written path=%s runs=%s\n", summary.Path, strings.Join(summary.RunIDs, ","))
	return nil
}

// openOutput resolves the report destination; "" and "-" mean stdout.
func openOutput(path string) (io.Writer, func(), error) {
	if path == "" || path == "-" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { _ = f.Close() }, nil
}

func createdAgo(createdAtUTC string, now time.Time) string {
	for _, layout := range []string{"2006-01-02T15:04:05.000000000Z", time.RFC3339Nano} {
		if t, err := time.Parse(layout, createdAtUTC); err == nil {
			return strings.ReplaceAll(humanize.RelTime(t, now, "ago", "from now"), " ", "_")
		}
	}
	return createdAtUTC
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func writeJSON(w io.Writer, value any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: geneticsctl <run|runs|history|plot> [flags]", msg)
}
