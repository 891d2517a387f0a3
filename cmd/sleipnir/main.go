// Package main provides the Sleipnir CLI entry point.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/orneryd/sleipnir/pkg/config"
	"github.com/orneryd/sleipnir/pkg/match"
	"github.com/orneryd/sleipnir/pkg/storage"
)

var (
	version   = "0.1.0"
	commit    = "dev"
	buildTime = "unknown" // Set via ldflags: -X main.buildTime=$(date +%Y%m%d-%H%M%S)
)

// Settings resolved through flags > SLEIPNIR_* env > --config file > defaults.
var (
	maxDepthSetting = config.NewSetting("walk.max.depth", config.Integer, "8", config.Min(1))
	maxPathsSetting = config.NewSetting("walk.max.paths", config.Integer, "100", config.Min(1))
	logLevelSetting = config.NewSetting("log.level", config.String, "info",
		config.Matches("debug|info|warn|error"))
)

// walkFlagSettings maps setting names onto the walk command's flags, so an
// explicitly set flag outranks every other source.
var walkFlagSettings = map[string]string{
	"walk.max.depth": "max-depth",
	"walk.max.paths": "max-paths",
	"log.level":      "log-level",
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "sleipnir",
		Short: "Sleipnir - Graph Pattern Expansion Engine",
		Long: `Sleipnir is a property-graph pattern expansion engine written in Go.

Features:
  • Lazy relationship expansion with pull-based iteration
  • Single and variable-length hop steps
  • Property predicates over relationships and endpoint nodes
  • YAML graph fixtures and typed settings`,
	}

	// Version command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("Sleipnir v%s (%s) built %s\n", version, commit, buildTime)
		},
	})

	// Walk command
	walkCmd := &cobra.Command{
		Use:   "walk",
		Short: "Walk a hop chain over a graph fixture",
		Long: `Walk expands a chain of hops from a start node and prints every
complete path. Hops are given in order with repeated --hop flags:

  out:KNOWS        one outgoing KNOWS hop
  in:WROTE|OWNS    one incoming hop of either type
  both:            one hop in either direction, any type
  out:KNOWS*1..3   one to three outgoing KNOWS hops
  out:NEXT*2..     two or more outgoing NEXT hops (bounded by --max-depth)`,
		RunE: runWalk,
	}
	walkCmd.Flags().String("graph", getEnvStr("SLEIPNIR_GRAPH", ""), "Graph fixture file (YAML)")
	walkCmd.Flags().String("start", getEnvStr("SLEIPNIR_START", ""), "Start node ID")
	walkCmd.Flags().StringArray("hop", nil, "Hop spec: direction:TYPE|TYPE with optional *min..max (repeatable)")
	walkCmd.Flags().String("config", getEnvStr("SLEIPNIR_CONFIG", ""), "Settings file (YAML)")
	walkCmd.Flags().Int("max-depth", 8, "Maximum relationships per path (walk.max.depth)")
	walkCmd.Flags().Int("max-paths", 100, "Maximum paths to print (walk.max.paths)")
	walkCmd.Flags().String("log-level", "info", "Log level: debug, info, warn, error (log.level)")
	rootCmd.AddCommand(walkCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runWalk(cmd *cobra.Command, args []string) error {
	graphPath, _ := cmd.Flags().GetString("graph")
	startID, _ := cmd.Flags().GetString("start")
	hops, _ := cmd.Flags().GetStringArray("hop")
	configPath, _ := cmd.Flags().GetString("config")

	if graphPath == "" {
		return fmt.Errorf("--graph is required")
	}
	if startID == "" {
		return fmt.Errorf("--start is required")
	}

	vals, err := walkValues(cmd, configPath)
	if err != nil {
		return err
	}
	maxDepth, err := maxDepthSetting.Apply(vals)
	if err != nil {
		return err
	}
	maxPaths, err := maxPathsSetting.Apply(vals)
	if err != nil {
		return err
	}
	logLevel, err := logLevelSetting.Apply(vals)
	if err != nil {
		return err
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(logLevel),
	})))

	engine := storage.NewMemoryEngine()
	defer engine.Close()

	if err := storage.LoadGraphFile(engine, graphPath); err != nil {
		return err
	}
	nodeCount, _ := engine.NodeCount()
	edgeCount, _ := engine.EdgeCount()
	slog.Info("graph loaded", "file", graphPath, "nodes", nodeCount, "relationships", edgeCount)

	if _, err := engine.GetNode(storage.NodeID(startID)); err != nil {
		return fmt.Errorf("start node %q: %w", startID, err)
	}

	chain, err := buildChain(hops)
	if err != nil {
		return err
	}

	w := &walker{
		state:    match.NewQueryState(engine, nil),
		maxDepth: maxDepth,
		maxPaths: maxPaths,
		out:      cmd.OutOrStdout(),
	}
	if err := w.run(storage.NodeID(startID), chain); err != nil {
		return err
	}

	slog.Info("walk finished", "paths", w.emitted, "truncated", w.truncated)
	return nil
}

// walkValues layers the walk command's sources: changed flags, then
// SLEIPNIR_* environment variables, then the optional settings file.
func walkValues(cmd *cobra.Command, configPath string) (config.Values, error) {
	sources := []config.Values{flagValues(cmd, walkFlagSettings), config.EnvValues("SLEIPNIR_")}
	if configPath != "" {
		fileVals, err := config.FileValues(configPath)
		if err != nil {
			return nil, err
		}
		sources = append(sources, fileVals)
	}
	return config.Chain(sources...), nil
}

// flagValues exposes explicitly set flags as a settings source.
func flagValues(cmd *cobra.Command, names map[string]string) config.Values {
	return func(name string) (string, bool) {
		flagName, ok := names[name]
		if !ok {
			return "", false
		}
		f := cmd.Flags().Lookup(flagName)
		if f == nil || !f.Changed {
			return "", false
		}
		return f.Value.String(), true
	}
}

func parseLogLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// buildChain compiles hop specs into a step chain, last hop innermost.
func buildChain(specs []string) (match.Step, error) {
	var next match.Step
	for i := len(specs) - 1; i >= 0; i-- {
		step, err := parseHop(i, specs[i], next)
		if err != nil {
			return nil, err
		}
		next = step
	}
	return next, nil
}

// parseHop parses one hop spec of the form direction:TYPE|TYPE with an
// optional *min..max length range.
func parseHop(id int, spec string, next match.Step) (match.Step, error) {
	dirPart, rest, ok := strings.Cut(spec, ":")
	if !ok {
		return nil, fmt.Errorf("hop %q: expected direction:TYPES", spec)
	}

	var dir storage.Direction
	switch dirPart {
	case "out":
		dir = storage.DirectionOutgoing
	case "in":
		dir = storage.DirectionIncoming
	case "both":
		dir = storage.DirectionBoth
	default:
		return nil, fmt.Errorf("hop %q: unknown direction %q", spec, dirPart)
	}

	typesPart := rest
	spanPart := ""
	varLength := false
	if idx := strings.Index(rest, "*"); idx >= 0 {
		typesPart = rest[:idx]
		spanPart = rest[idx+1:]
		varLength = true
	}

	var types []string
	for _, t := range strings.Split(typesPart, "|") {
		t = strings.TrimSpace(t)
		if t != "" {
			types = append(types, t)
		}
	}

	if !varLength {
		return match.NewSingleStep(id, types, dir, next, nil, nil), nil
	}

	min, max, err := parseSpan(spanPart)
	if err != nil {
		return nil, fmt.Errorf("hop %q: %w", spec, err)
	}
	return match.NewVarLengthStep(id, types, dir, min, max, next, nil, nil), nil
}

// parseSpan parses the length range after '*'. Cypher defaults apply: a
// missing minimum is 1, a missing maximum is unbounded, a single number
// is an exact length.
func parseSpan(s string) (int, int, error) {
	if s == "" {
		return 1, match.Unlimited, nil
	}

	lo, hi, ranged := strings.Cut(s, "..")
	if !ranged {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return 0, 0, fmt.Errorf("bad length range %q", s)
		}
		return n, n, nil
	}

	min := 1
	if lo != "" {
		n, err := strconv.Atoi(lo)
		if err != nil || n < 0 {
			return 0, 0, fmt.Errorf("bad length range %q", s)
		}
		min = n
	}
	max := match.Unlimited
	if hi != "" {
		n, err := strconv.Atoi(hi)
		if err != nil || n < min {
			return 0, 0, fmt.Errorf("bad length range %q", s)
		}
		max = n
	}
	return min, max, nil
}

// getEnvStr returns environment variable value or default
func getEnvStr(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
