package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v3"

	"github.com/starford/srtbspeeds/internal"
	"github.com/starford/srtbspeeds/internal/apperr"
	"github.com/starford/srtbspeeds/internal/chartservice"
	"github.com/starford/srtbspeeds/internal/difficulty"
	"github.com/starford/srtbspeeds/internal/storage"
	pkgconfig "github.com/starford/srtbspeeds/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// stderrLogger logs to stderr, switching to the text format when stderr is a
// terminal.
func stderrLogger(cfg *internal.Config) *slog.Logger {
	appCfg := cfg.App
	if fd := os.Stderr.Fd(); isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) {
		appCfg.LogFormat = internal.LogFormatText
	}
	return internal.NewLogger(appCfg, os.Stderr)
}

// oneShot prepares the stderr logger and parsed difficulty shared by the
// integrate, extract and remove commands.
func oneShot(cmd *cli.Command) (*slog.Logger, difficulty.Difficulty, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, 0, err
	}
	logger := stderrLogger(cfg)
	d, err := difficulty.Parse(cmd.String("difficulty"))
	if err != nil {
		return nil, 0, err
	}
	return logger, d, nil
}

// outputPath returns --out, or fallback when it is unset.
func outputPath(cmd *cli.Command, fallback string) string {
	if out := cmd.String("out"); out != "" {
		return out
	}
	return fallback
}

func runIntegrate(_ context.Context, cmd *cli.Command) error {
	logger, d, err := oneShot(cmd)
	if err != nil {
		return err
	}
	chartPath := cmd.String("chart")
	n, err := integrateFile(chartPath, cmd.String("speeds"), outputPath(cmd, chartPath), d)
	if err != nil {
		return err
	}
	logger.Info("speeds integrated",
		slog.String("chart", chartPath),
		slog.String("key", d.Key()),
		slog.Int("triggers", n))
	return nil
}

func runExtract(_ context.Context, cmd *cli.Command) error {
	logger, d, err := oneShot(cmd)
	if err != nil {
		return err
	}
	out := cmd.String("out")
	if out == "" || out == "-" {
		err = extractTo(os.Stdout, cmd.String("chart"), d)
	} else {
		err = extractFile(cmd.String("chart"), out, d)
	}
	if errors.Is(err, apperr.ErrNotFound) {
		fmt.Fprintf(os.Stderr, "%v for %s\n", err, d.Label())
		return nil
	}
	if err != nil {
		return err
	}
	logger.Debug("speeds extracted", slog.String("chart", cmd.String("chart")), slog.String("key", d.Key()))
	return nil
}

func runRemove(_ context.Context, cmd *cli.Command) error {
	logger, d, err := oneShot(cmd)
	if err != nil {
		return err
	}
	chartPath := cmd.String("chart")
	err = removeFile(chartPath, outputPath(cmd, chartPath), d)
	if errors.Is(err, apperr.ErrNotFound) {
		fmt.Fprintf(os.Stderr, "%v for %s\n", err, d.Label())
		return nil
	}
	if err != nil {
		return err
	}
	logger.Info("speeds removed", slog.String("chart", chartPath), slog.String("key", d.Key()))
	return nil
}

// integrateFile embeds the speeds file into the chart and writes the result
// to out. Nothing is written on failure.
func integrateFile(chartPath, speedsPath, out string, d difficulty.Difficulty) (int, error) {
	chart, err := storage.ReadFile(chartPath)
	if err != nil {
		return 0, err
	}
	text, err := storage.ReadFile(speedsPath)
	if err != nil {
		return 0, err
	}
	updated, n, err := chartservice.IntegrateSpeeds(chart, string(text), d.Key())
	if err != nil {
		return 0, err
	}
	return n, storage.WriteFileAtomic(out, updated)
}

func extractTo(w io.Writer, chartPath string, d difficulty.Difficulty) error {
	chart, err := storage.ReadFile(chartPath)
	if err != nil {
		return err
	}
	text, _, err := chartservice.ExtractSpeeds(chart, d.Key())
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, text)
	return err
}

func extractFile(chartPath, out string, d difficulty.Difficulty) error {
	chart, err := storage.ReadFile(chartPath)
	if err != nil {
		return err
	}
	text, _, err := chartservice.ExtractSpeeds(chart, d.Key())
	if err != nil {
		return err
	}
	return storage.WriteFileAtomic(out, []byte(text))
}

// removeFile deletes d's triggers and writes the chart to out. A chart
// without them is left untouched and apperr.ErrNotFound is returned.
func removeFile(chartPath, out string, d difficulty.Difficulty) error {
	chart, err := storage.ReadFile(chartPath)
	if err != nil {
		return err
	}
	updated, err := chartservice.RemoveSpeeds(chart, d.Key())
	if err != nil {
		return err
	}
	return storage.WriteFileAtomic(out, updated)
}

func runList(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	charts, err := internal.Catalog(ctx, internal.WithConfig(cfg), internal.WithLogOutput(os.Stderr))
	if err != nil {
		return fmt.Errorf("list charts: %w", err)
	}
	if cmd.Bool("json") {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(charts)
	}
	if len(charts) == 0 {
		fmt.Fprintf(os.Stderr, "no charts found in %s\n", cfg.Library.Path)
		return nil
	}
	fmt.Println(renderChartTable(charts))
	return nil
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func runMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.RunMCP(ctx, internal.WithConfig(cfg), internal.WithLogOutput(os.Stderr))
}

func chartFlags(withSpeeds bool) []cli.Flag {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:     "chart",
			Usage:    "Path to the .srtb chart",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "difficulty",
			Aliases:  []string{"d"},
			Usage:    "easy, normal, hard, expert, xd, remixd, all, or 1-7",
			Required: true,
		},
		&cli.StringFlag{
			Name:    "out",
			Aliases: []string{"o"},
			Usage:   "Output path",
		},
	}
	if withSpeeds {
		flags = append(flags, &cli.StringFlag{
			Name:     "speeds",
			Usage:    "Path to the .speeds text file",
			Required: true,
		})
	}
	return flags
}

func main() {
	cmd := &cli.Command{
		Name:  "srtbspeeds",
		Usage: "Embed, extract, and remove speed triggers in Spin Rhythm charts",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "integrate",
				Usage:  "Embed a speeds file into a chart (overwrites the chart unless --out is set)",
				Flags:  chartFlags(true),
				Action: runIntegrate,
			},
			{
				Name:   "extract",
				Usage:  "Write the speed triggers of one difficulty as speeds text (stdout unless --out is set)",
				Flags:  chartFlags(false),
				Action: runExtract,
			},
			{
				Name:   "remove",
				Usage:  "Delete the speed triggers of one difficulty from a chart",
				Flags:  chartFlags(false),
				Action: runRemove,
			},
			{
				Name:  "list",
				Usage: "Catalog the chart library and list the speed triggers each chart holds",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "Print JSON instead of a table"},
				},
				Action: runList,
			},
			{
				Name:   "serve",
				Usage:  "Run the HTTP API and library watcher",
				Action: runServe,
			},
			{
				Name:   "mcp",
				Usage:  "Serve MCP tools over stdio",
				Action: runMCP,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
