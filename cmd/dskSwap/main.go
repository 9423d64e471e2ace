package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jdefrancesco/dskSwap/internal/config"
	"github.com/jdefrancesco/dskSwap/internal/dmatch"
	"github.com/jdefrancesco/dskSwap/internal/dreport"
	"github.com/jdefrancesco/dskSwap/internal/dsklog"
	"github.com/jdefrancesco/dskSwap/internal/dwalk"
	"github.com/jdefrancesco/dskSwap/internal/ui"
	"github.com/jdefrancesco/dskSwap/pkg/utils"

	"github.com/pterm/pterm"
	"github.com/pterm/pterm/putils"
	"github.com/sirupsen/logrus"
)

// Version
const ver = "0.1.0"

// cliOptions are flags that only affect the front end.
type cliOptions struct {
	noBanner    bool
	showVersion bool
	configPath  string
}

// parseArgs builds the effective config: defaults, then the config file (if
// any), then flags that were explicitly set, then the PATH argument.
func parseArgs(args []string, stderr io.Writer) (*config.Config, cliOptions, error) {
	var (
		opts    cliOptions
		fl      = config.DefaultConfig()
		ext     string
		repl    string
		exclude string
	)

	fs := flag.NewFlagSet("dskSwap", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: dskSwap [options] PATH\n\n")
		fs.PrintDefaults()
	}

	fs.BoolVar(&opts.noBanner, "no-banner", false, "Do not show the dskSwap banner.")
	fs.BoolVar(&opts.showVersion, "version", false, "Display version")
	fs.StringVar(&opts.configPath, "config", "", "YAML config file. Flags override its values.")

	fs.StringVar(&ext, "ext", config.DefaultExtension, "Comma separated file endings, e.g. \".csv,.tsv\".")
	fs.BoolVar(&fl.Recursive, "r", false, "Search subdirectories recursively.")
	fs.BoolVar(&fl.SkipHidden, "skip-hidden", false, "Skip hidden files and directories.")
	fs.StringVar(&fl.MaxFileSize, "max-file-size", "", "Ignore files larger than this, e.g. 10M.")
	fs.StringVar(&fl.Search, "search", "", "Regular expression to search for (required).")
	fs.StringVar(&repl, "replace", "", "Replacement text. Setting it, even empty, enables replace mode.")
	fs.BoolVar(&fl.MatchCase, "match-case", false, "Match case exactly.")
	fs.BoolVar(&fl.Duplicate, "duplicate", false, "Write <name>_REPLACED<ext> instead of overwriting.")
	fs.BoolVar(&fl.RenameFilenames, "rename", fl.RenameFilenames, "Also replace matches in file names. Use -rename=false to keep names.")
	fs.BoolVar(&fl.AssumeYes, "yes", false, "Do not ask for confirmation before overwriting files.")
	fs.StringVar(&fl.JSONReport, "json", "", "Write the final report as JSON to this file.")
	fs.StringVar(&fl.CSVReport, "csv", "", "Write the final report as CSV to this file.")
	fs.StringVar(&fl.LogFile, "log", fl.LogFile, "Log file.")
	fs.StringVar(&fl.LogLevel, "log-level", fl.LogLevel, "Log level (debug, info, warn, error).")
	fs.StringVar(&exclude, "exclude", "", "Comma separated globs of paths to skip, e.g. \"vendor/**,*.min.csv\".")

	if err := fs.Parse(args); err != nil {
		return nil, opts, err
	}

	cfg := config.DefaultConfig()
	if opts.configPath != "" {
		loaded, err := config.Load(opts.configPath)
		if err != nil {
			return nil, opts, err
		}
		cfg = loaded
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "ext":
			cfg.SetExtensions(ext)
		case "r":
			cfg.Recursive = fl.Recursive
		case "skip-hidden":
			cfg.SkipHidden = fl.SkipHidden
		case "max-file-size":
			cfg.MaxFileSize = fl.MaxFileSize
		case "search":
			cfg.Search = fl.Search
		case "replace":
			cfg.Replacement = &repl
		case "match-case":
			cfg.MatchCase = fl.MatchCase
		case "duplicate":
			cfg.Duplicate = fl.Duplicate
		case "rename":
			cfg.RenameFilenames = fl.RenameFilenames
		case "yes":
			cfg.AssumeYes = fl.AssumeYes
		case "json":
			cfg.JSONReport = fl.JSONReport
		case "csv":
			cfg.CSVReport = fl.CSVReport
		case "log":
			cfg.LogFile = fl.LogFile
		case "log-level":
			cfg.LogLevel = fl.LogLevel
		case "exclude":
			cfg.Exclude = splitList(exclude)
		}
	})

	switch fs.NArg() {
	case 0:
	case 1:
		cfg.Path = fs.Arg(0)
	default:
		return nil, opts, fmt.Errorf("expected one PATH argument, got %d", fs.NArg())
	}

	return cfg, opts, nil
}

func main() {
	cfg, opts, err := parseArgs(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		pterm.Error.Println(err)
		os.Exit(2)
	}

	if !opts.noBanner {
		showHeader()
	}

	if opts.showVersion {
		showVersion()
		return
	}

	// Initialize logger
	dsklog.InitializeDlogger(cfg.LogFile)
	if err := dsklog.SetLevel(cfg.LogLevel); err != nil {
		pterm.Warning.Println(err)
	}
	dsklog.Dlogger.Info("Logger initialized")

	// Create a context.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup signal handler
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go signalHandler(sigChan, cancel)

	if err := run(ctx, cfg); err != nil {
		dsklog.Dlogger.Errorf("dskSwap failed: %v", err)
		pterm.Error.Println(describe(err))
		os.Exit(1)
	}
}

// signalHandler cancels the running job on SIGINT/SIGTERM. The engine
// stops before the next file, so no file is left half written.
func signalHandler(sigChan <-chan os.Signal, cancel context.CancelFunc) {
	for sig := range sigChan {
		dsklog.Dlogger.Infof("Signal received: %v", sig)
		fmt.Fprintf(os.Stderr, "\r[!] %v! Stopping after the current file...\n", sig)
		cancel()
	}
}

// run drives one search, followed by a replace when one was requested.
func run(ctx context.Context, cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := dwalk.CheckRoot(cfg.Path); err != nil {
		return err
	}

	sink := dmatch.MultiSink{consoleSink{}, dsklog.Sink{Fields: logrus.Fields{"root": cfg.Path}}}

	spinner, _ := pterm.DefaultSpinner.Start("Locating files...")
	files, err := dwalk.Locate(ctx, cfg.Path, cfg.LocateOptions())
	if spinner != nil {
		spinner.Stop()
	}
	if err != nil {
		return err
	}
	announce(sink, cfg.Path, cfg.Recursive, files)

	report, err := dmatch.Search(ctx, cfg.MatchJob(files), sink)
	if err != nil {
		return err
	}

	if !cfg.ReplaceMode() {
		return export(cfg, report)
	}

	if len(files) == 0 {
		pterm.Warning.Println("Nothing to replace.")
		return export(cfg, report)
	}

	if !cfg.Duplicate && !cfg.AssumeYes {
		ok, err := ui.Confirm(cfg.Search, *cfg.Replacement, files)
		if err != nil {
			return err
		}
		if !ok {
			pterm.Warning.Println("Operation canceled")
			return export(cfg, report)
		}
	}

	report, err = dmatch.Replace(ctx, cfg.ReplaceJob(files), sink)
	if err != nil {
		return err
	}

	showCollisions(report)
	pterm.Success.Printf("Rewrote %d files in %v\n", len(report.Modified()), report.Duration())
	return export(cfg, report)
}

// announce lists the located files, one line each.
func announce(sink dmatch.LogSink, root string, recursive bool, files []string) {
	if recursive {
		sink.Append(fmt.Sprintf("Searching in %s recursively", root))
	} else {
		sink.Append(fmt.Sprintf("Searching in %s", root))
	}
	for _, f := range files {
		sink.Append("Found: " + f)
	}
	sink.Append(fmt.Sprintf("Found %d files.", len(files)))
}

// consoleSink prints report lines to the terminal.
type consoleSink struct{}

func (consoleSink) Append(line string) {
	pterm.Println(line)
}

func showCollisions(report *dreport.Report) {
	if len(report.Collisions) == 0 {
		return
	}

	width := pterm.GetTerminalWidth()/2 - 4
	data := pterm.TableData{{"Not renamed", "Name already taken"}}
	for _, c := range report.Collisions {
		data = append(data, []string{utils.TruncatePath(c.From, width), utils.TruncatePath(c.Existing, width)})
	}
	pterm.Warning.Printf("%d files could not be renamed\n", len(report.Collisions))
	if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
		dsklog.Dlogger.Debugf("Rendering collision table failed: %v", err)
	}
}

// export writes the requested report files.
func export(cfg *config.Config, report *dreport.Report) error {
	if cfg.JSONReport != "" {
		if err := report.WriteJSON(cfg.JSONReport); err != nil {
			return err
		}
		pterm.Info.Printf("JSON report written to %s\n", cfg.JSONReport)
	}
	if cfg.CSVReport != "" {
		if err := report.WriteCSV(cfg.CSVReport); err != nil {
			return err
		}
		pterm.Info.Printf("CSV report written to %s\n", cfg.CSVReport)
	}
	return nil
}

// describe adds a hint for the error kinds a user can act on.
func describe(err error) string {
	var (
		pathErr    *dwalk.InvalidPathError
		patternErr *dmatch.PatternError
		replErr    *dmatch.ReplacementError
		accessErr  *dmatch.FileAccessError
	)
	switch {
	case errors.As(err, &pathErr):
		return fmt.Sprintf("Path does not exist or is not a directory: %s", pathErr.Path)
	case errors.As(err, &patternErr):
		return fmt.Sprintf("%v (nothing was modified)", patternErr)
	case errors.As(err, &replErr):
		return fmt.Sprintf("%v (nothing was modified)", replErr)
	case errors.As(err, &accessErr):
		return fmt.Sprintf("%v (job aborted, see log for files already modified)", accessErr)
	case errors.Is(err, context.Canceled):
		return "Operation canceled"
	default:
		return err.Error()
	}
}

// splitList splits a comma separated flag value, dropping blank entries.
func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// showHeader prints colorful dskSwap banner.
func showHeader() {

	fmt.Println("")

	pterm.DefaultBigText.WithLetters(
		putils.LettersFromStringWithStyle("dsk", pterm.NewStyle(pterm.FgLightGreen)),
		putils.LettersFromStringWithStyle("Swap", pterm.NewStyle(pterm.FgLightWhite))).
		Render()
}

func showVersion() {
	fmt.Printf("Version: %s\n\n", ver)
}
