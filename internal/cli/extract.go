package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"github.com/poutila/tokenwarehouse/internal/configloader"
	"github.com/poutila/tokenwarehouse/internal/logging"
	"github.com/poutila/tokenwarehouse/internal/ui/pretty"
	"github.com/poutila/tokenwarehouse/pkg/collectors"
	"github.com/poutila/tokenwarehouse/pkg/config"
	goldmarkparser "github.com/poutila/tokenwarehouse/pkg/parser/goldmark"
	"github.com/poutila/tokenwarehouse/pkg/warehouse"
)

type extractFlags struct {
	format       string
	flavor       string
	strict       bool
	collectors   []string
	allowRawHTML bool
	maxTokens    int
	timeout      time.Duration
}

func newExtractCommand() *cobra.Command {
	flags := &extractFlags{}

	cmd := &cobra.Command{
		Use:   "extract [files...]",
		Short: "Extract structured content from Markdown files",
		Long:  extractLongDescription,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd, args, flags)
		},
	}

	addExtractFlags(cmd, flags)

	return cmd
}

const extractLongDescription = `Extract structured content from Markdown files.

Each file is parsed once into a canonical token stream, checked against the
resource budgets, and dispatched to the configured collectors. The result is
one report per file: links and images with URL policy verdicts, the heading
outline with section boundaries, table shapes, flagged raw HTML and code
blocks with detected languages.

Examples:
  tokenwarehouse extract README.md              # Extract a single file
  tokenwarehouse extract docs/*.md              # Extract several files
  tokenwarehouse extract --format json doc.md   # JSON report for pipelines
  tokenwarehouse extract --collectors links doc.md
  tokenwarehouse extract --strict doc.md        # Fail on first collector error`

// fileReport is the per-file extraction output.
type fileReport struct {
	Path     string                      `json:"path"`
	Flavor   string                      `json:"flavor"`
	Tokens   int                         `json:"tokens"`
	Sections []warehouse.Section         `json:"sections"`
	Results  map[string]warehouse.Result `json:"results"`
	Errors   []string                    `json:"errors,omitempty"`
}

func runExtract(cmd *cobra.Command, args []string, flags *extractFlags) error {
	logger := logging.Default()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = logging.WithLogger(ctx, logger)

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return fmt.Errorf("get config flag: %w", err)
	}

	loadResult, err := configloader.Load(ctx, configloader.LoadOptions{
		ExplicitPath: configPath,
	})
	if err != nil {
		return errors.Join(errors.New("failed to load configuration"), err)
	}
	cfg := loadResult.Config

	for _, warning := range loadResult.Warnings {
		logger.Warn(warning)
	}
	if len(loadResult.LoadedFrom) > 0 {
		logger.Debug("loaded configuration from", "files", loadResult.LoadedFrom)
	}

	// Flags override every other configuration source.
	if cmd.Flags().Changed("flavor") {
		cfg.Flavor = config.Flavor(flags.flavor)
		if !cfg.Flavor.Valid() {
			return fmt.Errorf("invalid flavor %q; must be one of: commonmark, gfm", flags.flavor)
		}
	}
	if cmd.Flags().Changed("collectors") {
		cfg.Collectors = flags.collectors
	}
	if cmd.Flags().Changed("allow-raw-html") {
		cfg.Limits.AllowRawHTML = flags.allowRawHTML
	}
	if cmd.Flags().Changed("max-tokens") {
		if flags.maxTokens <= 0 {
			return fmt.Errorf("invalid max-tokens %d; must be positive", flags.maxTokens)
		}
		cfg.Limits.MaxTokens = flags.maxTokens
	}
	if cmd.Flags().Changed("timeout") {
		if flags.timeout < 0 {
			return fmt.Errorf("invalid timeout %s; must not be negative", flags.timeout)
		}
		cfg.Limits.CollectorTimeout = flags.timeout
	}
	cfg.Format = config.OutputFormat(flags.format)
	if !cfg.Format.Valid() {
		return fmt.Errorf("invalid format %q; must be one of: text, json", flags.format)
	}
	cfg.Strict = flags.strict
	cfg.Limits.StrictCollectorErrors = flags.strict

	logger.Debug("configuration loaded",
		logging.FieldFlavor, cfg.Flavor,
		logging.FieldTokens, cfg.Limits.MaxTokens,
		logging.FieldBytes, cfg.Limits.MaxBytes,
		logging.FieldTimeout, cfg.Limits.CollectorTimeout,
	)

	parser := goldmarkparser.New(string(cfg.Flavor))

	reports := make([]fileReport, 0, len(args))
	issues := false
	for _, path := range args {
		report, err := extractFile(ctx, parser, cfg, path)
		if err != nil {
			return err
		}
		if len(report.Errors) > 0 {
			issues = true
		}
		reports = append(reports, *report)
	}

	if err := writeReports(cmd, cfg, reports); err != nil {
		return err
	}

	if issues {
		return ErrExtractionIssues
	}
	return nil
}

// extractFile runs the full pipeline for one file: parse, guard, dispatch,
// drain.
func extractFile(
	ctx context.Context,
	parser *goldmarkparser.Parser,
	cfg *config.Config,
	path string,
) (*fileReport, error) {
	logger := logging.FromContext(ctx)

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	nodes, err := parser.Parse(ctx, content)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	w, err := warehouse.New(nodes,
		warehouse.WithLimits(cfg.Limits),
		warehouse.WithPolicy(cfg.URL),
		warehouse.WithSource(content),
		warehouse.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	for _, c := range selectCollectors(cfg) {
		if err := w.Register(c); err != nil {
			return nil, fmt.Errorf("register %s: %w", c.Name(), err)
		}
	}

	logger.Debug("dispatching",
		logging.FieldPath, path,
		logging.FieldTokens, w.Len(),
		logging.FieldSections, len(w.Sections()),
	)

	if err := w.DispatchAll(ctx); err != nil {
		var cerr *warehouse.CollectorError
		if errors.As(err, &cerr) {
			// Strict mode failed the dispatch on a collector error.
			return nil, errors.Join(ErrExtractionIssues, err)
		}
		return nil, fmt.Errorf("dispatch %s: %w", path, err)
	}

	errLog := w.ErrorLog()

	// FinalizeAll releases the token stream, so take the count first.
	tokens := w.Len()
	sections := w.Sections()

	results, err := w.FinalizeAll()
	if err != nil {
		return nil, fmt.Errorf("finalize %s: %w", path, err)
	}

	report := &fileReport{
		Path:     path,
		Flavor:   parser.Flavor(),
		Tokens:   tokens,
		Sections: sections,
		Results:  results,
	}
	for _, cerr := range errLog {
		report.Errors = append(report.Errors, cerr.Error())
	}

	return report, nil
}

// selectCollectors returns the configured subset of the reference
// collectors, or all of them when none are named.
func selectCollectors(cfg *config.Config) []warehouse.Collector {
	all := collectors.Defaults(cfg.URL, cfg.Limits)
	if len(cfg.Collectors) == 0 {
		return all
	}

	wanted := make(map[string]bool, len(cfg.Collectors))
	for _, name := range cfg.Collectors {
		wanted[name] = true
	}

	selected := make([]warehouse.Collector, 0, len(all))
	for _, c := range all {
		if wanted[c.Name()] {
			selected = append(selected, c)
		}
	}
	return selected
}

// writeReports renders all file reports in the configured format.
func writeReports(cmd *cobra.Command, cfg *config.Config, reports []fileReport) error {
	out := cmd.OutOrStdout()

	if cfg.Format == config.FormatJSON {
		data, err := sonic.MarshalIndent(reports, "", "  ")
		if err != nil {
			return fmt.Errorf("encode reports: %w", err)
		}
		if _, err := out.Write(append(data, '\n')); err != nil {
			return fmt.Errorf("write reports: %w", err)
		}
		return nil
	}

	colorMode, err := cmd.Flags().GetString("color")
	if err != nil {
		colorMode = "auto"
	}
	styles := pretty.NewStyles(pretty.IsColorEnabled(colorMode, out))

	for i, report := range reports {
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintln(out, styles.Bold.Render(report.Path))
		fmt.Fprint(out, styles.FormatResults(report.Results))
		fmt.Fprint(out, styles.FormatSummaryOneLine(report.Results))
		for _, msg := range report.Errors {
			fmt.Fprintln(out, styles.Dim.Render("  "+msg))
		}
	}

	return nil
}

func addExtractFlags(cmd *cobra.Command, flags *extractFlags) {
	cmd.Flags().StringVar(&flags.format, "format", "text", "output format: text, json")
	cmd.Flags().StringVar(&flags.flavor, "flavor", "gfm", "Markdown flavor: commonmark, gfm")
	cmd.Flags().BoolVar(&flags.strict, "strict", false, "fail on the first collector error")
	cmd.Flags().StringSliceVar(&flags.collectors, "collectors", nil,
		"collectors to run (default: all)")
	cmd.Flags().BoolVar(&flags.allowRawHTML, "allow-raw-html", false,
		"do not flag raw HTML snippets")
	cmd.Flags().IntVar(&flags.maxTokens, "max-tokens", 0,
		"override the token budget")
	cmd.Flags().DurationVar(&flags.timeout, "timeout", 0,
		"override the per-collector call timeout (0 disables the watchdog)")
}
