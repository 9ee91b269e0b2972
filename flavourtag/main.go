package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"go-hep.org/x/hep/lcio"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/decibelcooper/lcfiplot"
)

var (
	cfgFile     string
	outputDir   string
	format      string
	summaryFile string
	tupleFile   string
	logLevel    string
	workers     int
	doProfile   bool

	tagColls   lcfiplot.StringListFlags
	inputColls lcfiplot.StringListFlags
	zoomedVars lcfiplot.StringListFlags
)

var rootCmd = &cobra.Command{
	Use:   "flavourtag [options] <lcio-input-file>...",
	Short: "Flavour-tag validation plots from LCFI jet collections",
	Long: `flavourtag reads LCIO files holding flavour-tagged jets and writes the
tag efficiency, purity and leakage curves, the tag-input distributions,
the vertex-charge performance and the vertex plots, one image per plot.`,
	Args: cobra.MinimumNArgs(1),
	RunE: run,
}

func init() {
	fs := rootCmd.Flags()
	fs.StringVar(&cfgFile, "config", "", "steering file (yaml, toml or json)")
	fs.StringVarP(&outputDir, "output", "o", "plots", "output directory")
	fs.StringVar(&format, "format", "png", "image format of histograms and curves (png, svg, pdf, eps)")
	fs.StringVar(&summaryFile, "summary", "summary.yaml", "summary file, empty for none")
	fs.StringVar(&tupleFile, "tuple", "tuple.csv", "tuple file written when make-tuple is set")
	fs.StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	fs.IntVar(&workers, "workers", 4, "number of plots rendered concurrently")
	fs.BoolVar(&doProfile, "profile", false, "write a CPU profile")

	// these bind to the steering keys of the same name
	fs.Var(&tagColls, "flavour-tag-collections", "flavour tag collection, repeatable")
	fs.Var(&inputColls, "tag-inputs-collections", "flavour tag inputs collection, repeatable")
	fs.Var(&zoomedVars, "zoomed-variables", "tag input plotted with a zoomed range, repeatable")
	fs.String("jet-collection", "", "jet collection")
	fs.String("vertex-collection", "", "vertex collection")
	fs.String("true-jet-flavour-collection", "", "true jet flavour collection")
	fs.Float64("b-tag-nn-cut", 0, "b-tag cut for the vertex charge plots")
	fs.Float64("c-tag-nn-cut", 0, "c-tag cut for the vertex charge plots")
	fs.Float64("cos-theta-jet-min", 0, "minimum jet cos(theta)")
	fs.Float64("cos-theta-jet-max", 0, "maximum jet cos(theta)")
	fs.Float64("p-jet-min", 0, "minimum jet momentum")
	fs.Float64("p-jet-max", 0, "maximum jet momentum")
	fs.Int("number-of-points", 0, "number of bins of the tag plots")
	fs.Bool("make-tuple", false, "write the tag inputs of every jet")
	fs.Bool("make-additional-plots", false, "make the decay length and vertex finding plots")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	config := zap.NewProductionConfig()
	if lvl == zapcore.DebugLevel {
		config = zap.NewDevelopmentConfig()
	}
	config.Level = zap.NewAtomicLevelAt(lvl)
	return config.Build()
}

func run(cmd *cobra.Command, args []string) error {
	if doProfile {
		defer profile.Start().Stop()
	}

	logger, err := newLogger(logLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	cfg, err := lcfiplot.LoadConfig(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	backend := lcfiplot.NewHbookBackend()
	proc, err := lcfiplot.NewProcessor(*cfg, lcfiplot.WithLogger(logger), lcfiplot.WithBackend(backend))
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	for _, filename := range args {
		if err := processFile(ctx, proc, cfg, filename, logger); err != nil {
			return err
		}
	}

	res, err := proc.Finalize()
	if err != nil {
		return err
	}

	renderer := lcfiplot.NewRenderer(outputDir)
	renderer.Format = format
	renderer.Workers = workers
	renderer.Log = logger
	if err := renderer.Render(ctx, backend); err != nil {
		return err
	}

	summary := lcfiplot.NewSummary(cfg, res, backend)
	if summaryFile != "" {
		if err := writeFile(filepath.Join(outputDir, summaryFile), summary.WriteYAML); err != nil {
			return err
		}
	}
	if res.Tuple != nil && tupleFile != "" {
		if err := writeFile(filepath.Join(outputDir, tupleFile), res.Tuple.WriteCSV); err != nil {
			return err
		}
	}

	printSummary(summary)
	return nil
}

func processFile(ctx context.Context, proc *lcfiplot.Processor, cfg *lcfiplot.Config, filename string, logger *zap.Logger) error {
	reader, err := lcio.Open(filename)
	if err != nil {
		return err
	}
	defer reader.Close()

	logger.Info("reading", zap.String("file", filename))
	newFile := true
	lastRun := int32(0)
	for reader.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}
		event := reader.Event()

		rh := reader.RunHeader()
		if newFile || rh.RunNumber != lastRun {
			newFile = false
			lastRun = rh.RunNumber
			if err := proc.ProcessRunHeader(lcfiplot.RunHeaderFromLCIO(&rh, &event, cfg)); err != nil {
				return err
			}
		}

		evt, err := lcfiplot.EventFromLCIO(&event, cfg)
		if err != nil {
			return err
		}
		if err := proc.ProcessEvent(evt); err != nil {
			return err
		}
	}
	return reader.Err()
}

func writeFile(name string, write func(w io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(name), 0755); err != nil {
		return err
	}
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func printSummary(s *lcfiplot.Summary) {
	header := color.New(color.FgCyan, color.Bold)
	good := color.New(color.FgGreen)
	bad := color.New(color.FgRed)

	header.Printf("%d events, %d passing the jet cuts\n", s.Events, s.EventsPassingCuts)

	header.Println("\nworking points")
	for _, wp := range s.WorkingPoints {
		fmt.Printf("  %-24s %-6s cut %.2f  ", wp.Collection, wp.Tag, wp.Cut)
		good.Printf("eff %.3f ± %.3f  ", wp.Efficiency, wp.EfficiencyErr)
		good.Printf("pur %.3f ± %.3f\n", wp.Purity, wp.PurityErr)
	}

	header.Println("\nvertex charge")
	for _, vc := range s.VertexCharge {
		fmt.Printf("  %s\n", vc.Hypothesis)
		fmt.Printf("    %-12s", "")
		for sg := lcfiplot.Sign(0); sg < lcfiplot.NumSigns; sg++ {
			fmt.Printf(" %10s", sg)
		}
		fmt.Println()
		for t := lcfiplot.ChargeBucket(0); t < lcfiplot.NumChargeBuckets; t++ {
			row := vc.Counts[t.String()]
			fmt.Printf("    %-12s", t)
			for sg := lcfiplot.Sign(0); sg < lcfiplot.NumSigns; sg++ {
				fmt.Printf(" %10d", row[sg.String()])
			}
			fmt.Println()
		}
		bad.Printf("    leakage %.3f ± %.3f\n", vc.Leakage, vc.LeakageErr)
	}
}
