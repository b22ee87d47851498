package main

import (
	"fmt"
	"os"

	"github.com/csvquery/csvquery/internal/csv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// pinnedDialect mirrors the subset of DialectOptions a user can pin ahead
// of time in a sidecar YAML file, so detection on a known data source only
// tries the pinned values.
type pinnedDialect struct {
	Delimiter string `yaml:"delimiter"`
	Quote     string `yaml:"quote"`
	Escape    string `yaml:"escape"`
	SkipRows  int    `yaml:"skip_rows"`
}

func (p *pinnedDialect) apply(opts *csv.DialectOptions) error {
	if p.Delimiter != "" {
		if len(p.Delimiter) != 1 {
			return fmt.Errorf("delimiter must be a single byte, got %q", p.Delimiter)
		}
		opts.Delimiter = p.Delimiter[0]
		opts.HasDelimiter = true
	}
	if p.Quote != "" {
		if len(p.Quote) != 1 {
			return fmt.Errorf("quote must be a single byte, got %q", p.Quote)
		}
		opts.Quote = p.Quote[0]
		opts.HasQuote = true
	}
	if p.Escape != "" {
		if len(p.Escape) != 1 {
			return fmt.Errorf("escape must be a single byte, got %q", p.Escape)
		}
		opts.Escape = p.Escape[0]
		opts.HasEscape = true
	}
	if p.SkipRows > 0 {
		opts.SkipRows = p.SkipRows
		opts.SkipRowsSet = true
	}
	return nil
}

func loadPinned(path string) (pinnedDialect, error) {
	var p pinnedDialect
	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("reading config %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("parsing config %q: %w", path, err)
	}
	return p, nil
}

var (
	configPath string
	verbose    bool

	rootCmd = &cobra.Command{
		Use:          "sniff <file>",
		Short:        "sniff",
		SilenceUsage: true,
		Long:         `sniff detects the dialect (delimiter, quote, escape, header row) of a CSV file.`,
		Args:         cobra.ExactArgs(1),
		RunE:         runSniff,
	}
)

func runSniff(cmd *cobra.Command, args []string) error {
	filePath := args[0]

	logger := logrus.New()
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.WarnLevel)
	}

	opts := csv.DialectOptions{FilePath: filePath}
	if configPath != "" {
		pinned, err := loadPinned(configPath)
		if err != nil {
			return err
		}
		if err := pinned.apply(&opts); err != nil {
			return fmt.Errorf("applying pinned dialect from %q: %w", configPath, err)
		}
	}

	bm, err := csv.OpenFile(filePath)
	if err != nil {
		return fmt.Errorf("opening %q: %w", filePath, err)
	}
	defer func() { _ = bm.Close() }()

	result, err := csv.DetectDialect(bm, opts, logger)
	if err != nil {
		return err
	}

	fmt.Printf("delimiter: %q\n", string(result.Delimiter))
	fmt.Printf("quote:     %q\n", string(result.Quote))
	fmt.Printf("escape:    %q\n", string(result.Escape))
	fmt.Printf("start_row: %d\n", result.StartRow)
	fmt.Printf("num_cols:  %d\n", result.NumCols)
	return nil
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "sidecar YAML file pinning some or all dialect fields")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log each rejected candidate, not just the winner")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
