// Command rscactions is a thin demonstration harness around
// pkg/transform.Run. It is not the pass itself: parsing, printing, and
// bundling are this module's explicit Non-goals, so the harness reads
// a JSON AST fixture instead of source text and prints the resulting
// diagnostics and action catalogue instead of rewritten source.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/go-rsc/server-actions/internal/comments"
	"github.com/go-rsc/server-actions/internal/diagnostics"
	"github.com/go-rsc/server-actions/internal/fixture"
	"github.com/go-rsc/server-actions/internal/jsast"
	"github.com/go-rsc/server-actions/pkg/config"
	"github.com/go-rsc/server-actions/pkg/output"
	"github.com/go-rsc/server-actions/pkg/transform"
)

var version = "dev"

// CLI flags
var (
	flagLayer    string
	flagDisabled bool
	flagSalt     string
	flagOutput   string
	flagNoColor  bool
	flagDebug    bool
	flagDumpAST  bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "rscactions",
	Short:   "Server Actions / Cache Functions compilation pass",
	Long:    "rscactions runs the Server Actions / Cache Functions source-to-source transform over a JSON AST fixture and reports its diagnostics and action catalogue.",
	Version: version,
}

var transformCmd = &cobra.Command{
	Use:   "transform <fixture.json>",
	Short: "Run the pass over a JSON AST fixture",
	Args:  cobra.ExactArgs(1),
	RunE:  runTransform,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration commands",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE:  runConfigShow,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration",
	RunE:  runConfigValidate,
}

func init() {
	transformCmd.Flags().StringVarP(&flagLayer, "layer", "l", "server", "compilation layer: server or client")
	transformCmd.Flags().BoolVar(&flagDisabled, "disabled", false, "run with Server Actions/Cache Functions disabled")
	transformCmd.Flags().StringVar(&flagSalt, "salt", "", "hash salt mixed into every action id")
	transformCmd.Flags().StringVarP(&flagOutput, "output", "o", "console", "output format (console, summary)")
	transformCmd.Flags().BoolVar(&flagNoColor, "no-color", false, "disable colored output")
	transformCmd.Flags().BoolVar(&flagDebug, "debug", false, "enable debug trace logging")
	transformCmd.Flags().BoolVar(&flagDumpAST, "dump-ast", false, "dump the rewritten AST as JSON after the report")

	rootCmd.AddCommand(transformCmd)
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
}

func newLogger(debug bool) (*zap.SugaredLogger, error) {
	if !debug {
		return zap.NewNop().Sugar(), nil
	}
	l, err := zap.NewDevelopment()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return l.Sugar(), nil
}

func runTransform(cmd *cobra.Command, args []string) error {
	startTime := time.Now()
	path := args[0]

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read fixture: %w", err)
	}

	program, err := fixture.Decode(data)
	if err != nil {
		return fmt.Errorf("failed to decode fixture: %w", err)
	}

	cfg, err := loadEffectiveConfig()
	if err != nil {
		return err
	}
	switch flagLayer {
	case "server":
		cfg.IsReactServerLayer = true
	case "client":
		cfg.IsReactServerLayer = false
	default:
		return fmt.Errorf("unknown layer %q (want server or client)", flagLayer)
	}
	if flagDisabled {
		cfg.Enabled = false
	}
	if flagSalt != "" {
		cfg.HashSalt = flagSalt
	}

	logger, err := newLogger(flagDebug)
	if err != nil {
		return err
	}

	var diagCollector diagnostics.Collector
	var commentCollector comments.Collector

	rewritten := transform.Run(program, cfg, path, &commentCollector, &diagCollector, logger)

	catalogue := extractCatalogue(commentCollector)
	actionCount, cacheCount := countHoisted(rewritten)

	stats := output.Stats{
		Filename:    path,
		ActionCount: actionCount,
		CacheCount:  cacheCount,
		Duration:    time.Since(startTime).Seconds(),
	}

	if err := writeReport(flagOutput, diagCollector.Diagnostics, catalogue, stats); err != nil {
		return err
	}

	if flagDumpAST {
		encoded, err := json.MarshalIndent(rewritten, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to dump rewritten AST: %w", err)
		}
		fmt.Println(string(encoded))
	}

	return nil
}

// countHoisted counts the hoisted action and cache function
// definitions the pass appended/prepended at module scope, for the
// report header. Hoisted names only ever appear at module top level.
func countHoisted(program *jsast.Program) (actionCount, cacheCount int) {
	for _, item := range program.Body {
		named, ok := item.(*jsast.ExportNamedDecl)
		if !ok {
			continue
		}
		switch decl := named.Declaration.(type) {
		case *jsast.FunctionDecl:
			if decl.Name != nil && strings.HasPrefix(decl.Name.Name(), "$$RSC_SERVER_ACTION_") {
				actionCount++
			}
		case *jsast.VariableDecl:
			for _, d := range decl.Declarations {
				if id, ok := d.Id.(*jsast.Ident); ok && strings.HasPrefix(id.Name(), "$$RSC_SERVER_CACHE_") {
					cacheCount++
				}
			}
		}
	}
	return
}

func writeReport(format string, diags []diagnostics.Diagnostic, catalogue map[string]string, stats output.Stats) error {
	switch format {
	case "summary":
		return output.NewSummaryOutput().WithWriter(os.Stdout).Write(diags, catalogue, stats)
	default:
		return output.NewConsoleOutput().WithWriter(os.Stdout).WithNoColor(flagNoColor).Write(diags, catalogue, stats)
	}
}

// extractCatalogue reads the magic comment text the pass attached
// (when it attached one) back out into an id->name map, the same
// shape a downstream bundler would parse from the printed source.
func extractCatalogue(c comments.Collector) map[string]string {
	if len(c.Leading) == 0 {
		return nil
	}
	var catalogue map[string]string
	for _, cm := range c.Leading {
		var m map[string]string
		// The attached text is " __next_internal_action_entry_do_not_use__ {json} ";
		// extract the {...} body.
		start := strings.IndexByte(cm.Text, '{')
		end := strings.LastIndexByte(cm.Text, '}')
		if start < 0 || end < 0 || end <= start {
			continue
		}
		if err := json.Unmarshal([]byte(cm.Text[start:end+1]), &m); err != nil {
			continue
		}
		catalogue = m
	}
	return catalogue
}

func loadEffectiveConfig() (*config.Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	cfg, err := config.LoadConfigWithDefaults(cwd)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadEffectiveConfig()
	if err != nil {
		return err
	}

	fmt.Println("Effective configuration:")
	fmt.Println()
	fmt.Printf("React server layer: %t\n", cfg.IsReactServerLayer)
	fmt.Printf("Enabled: %t\n", cfg.Enabled)
	fmt.Printf("Hash salt: %q\n", cfg.HashSalt)

	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}

	configPath, err := config.FindConfig(cwd)
	if err != nil {
		return err
	}

	if configPath == "" {
		fmt.Println("No configuration file found; defaults apply.")
		return nil
	}

	if _, err := config.LoadConfig(configPath); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	fmt.Printf("Configuration valid: %s\n", configPath)
	return nil
}
