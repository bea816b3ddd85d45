package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/akan-lang/twi/config"
	"github.com/akan-lang/twi/engine"
	"github.com/akan-lang/twi/validator"
)

// Execute runs the twi CLI with the given version string.
func Execute(version string) {
	if err := newRootCommand(version).Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand(version string) *cli.Command {
	return &cli.Command{
		Name:                   "twi",
		Usage:                  "Translate Twi DSL to Python and run it in a sandbox",
		Version:                version,
		UseShortOptionHandling: true,
		Flags:                  []cli.Flag{configFlag()},
		// Allow `twi script.twi` as shorthand for `twi run script.twi`
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() > 0 && strings.HasSuffix(cmd.Args().First(), ".twi") {
				return runFile(ctx, cmd, cmd.Args().First(), 0)
			}
			return cli.DefaultShowRootCommandHelp(cmd)
		},
		Commands: []*cli.Command{
			{
				Name:      "run",
				Usage:     "Translate and execute a .twi file; a .py file is executed as-is",
				ArgsUsage: "<file.twi | file.py>",
				Flags: []cli.Flag{
					configFlag(),
					&cli.DurationFlag{
						Name:    "timeout",
						Aliases: []string{"t"},
						Usage:   "Wall-clock execution limit (overrides config)",
					},
				},
				Action: runAction,
			},
			{
				Name:      "emit",
				Usage:     "Output the generated Python source code",
				ArgsUsage: "<file.twi>",
				Flags:     []cli.Flag{configFlag()},
				Action:    emitAction,
			},
			{
				Name:      "check",
				Usage:     "Translate, validate, and gate .twi files without running them",
				ArgsUsage: "[file.twi | directory]...",
				Flags: []cli.Flag{
					configFlag(),
					&cli.IntFlag{
						Name:    "jobs",
						Aliases: []string{"j"},
						Usage:   "Parallel checks",
						Value:   4,
					},
				},
				Action: checkAction,
			},
		},
	}
}

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Config file (default: twi.yaml)",
	}
}

// newEngine builds an engine from the --config flag and a stderr logger.
func newEngine(cmd *cli.Command) (*engine.Engine, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, err
	}
	level := slog.LevelWarn
	if os.Getenv("TWI_DEBUG") != "" {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	return engine.New(cfg, logger), nil
}

func runAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() < 1 {
		return fmt.Errorf("usage: twi run [-t timeout] <file.twi>")
	}
	return runFile(ctx, cmd, cmd.Args().First(), cmd.Duration("timeout"))
}

func runFile(ctx context.Context, cmd *cli.Command, path string, timeout time.Duration) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	eng, err := newEngine(cmd)
	if err != nil {
		return err
	}

	resp, err := eng.Execute(ctx, engine.ExecRequest{
		Source:        string(src),
		Pretranslated: strings.HasSuffix(path, ".py"),
		Timeout:       timeout,
	})
	if err != nil {
		var synErr *validator.SyntaxError
		if errors.As(err, &synErr) && resp.Translation != nil && resp.Translation.Code != "" {
			fmt.Fprintf(os.Stderr, "--- partial translation ---\n%s\n---\n", resp.Translation.Code)
		}
		return err
	}

	run := resp.Run
	os.Stdout.Write(run.Stdout)
	os.Stderr.Write(run.Stderr)
	if run.TimedOut {
		fmt.Fprintf(os.Stderr, "%skilled: wall-clock limit exceeded%s\n", colorFail(), colorReset())
		os.Exit(1)
	}
	if run.ExitCode != 0 {
		os.Exit(run.ExitCode)
	}
	return nil
}

func emitAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() < 1 {
		return fmt.Errorf("usage: twi emit <file.twi>")
	}
	path := cmd.Args().First()
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	eng, err := newEngine(cmd)
	if err != nil {
		return err
	}
	res, err := eng.Translate(string(src))
	if err != nil {
		// Still print the partial translation so the bad line can be found.
		fmt.Print(res.Code)
		if !strings.HasSuffix(res.Code, "\n") {
			fmt.Println()
		}
		return err
	}
	fmt.Print(res.Code)
	if !strings.HasSuffix(res.Code, "\n") {
		fmt.Println()
	}
	return nil
}

func checkAction(ctx context.Context, cmd *cli.Command) error {
	files, err := collectFiles(cmd.Args().Slice())
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no .twi files found")
	}

	eng, err := newEngine(cmd)
	if err != nil {
		return err
	}

	jobs := cmd.Int("jobs")
	if jobs < 1 {
		jobs = 1
	}

	var mu sync.Mutex
	failures := map[string]error{}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(int(jobs))
	for _, f := range files {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			if err := checkFile(eng, f); err != nil {
				mu.Lock()
				failures[f] = err
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, f := range files {
		if fErr, ok := failures[f]; ok {
			fmt.Fprintf(os.Stderr, "%sFAIL%s %s: %v\n", colorFail(), colorReset(), f, fErr)
		} else {
			fmt.Fprintf(os.Stderr, "%s ok %s %s\n", colorOK(), colorReset(), f)
		}
	}
	if len(failures) > 0 {
		return fmt.Errorf("%d of %d files failed", len(failures), len(files))
	}
	return nil
}

// checkFile runs translation, validation, and the gate on one file.
func checkFile(eng *engine.Engine, path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return eng.Check(string(src))
}

// collectFiles expands file and directory arguments into a sorted list of
// .twi files. No arguments means the current directory.
func collectFiles(targets []string) ([]string, error) {
	if len(targets) == 0 {
		targets = []string{"."}
	}
	var files []string
	for _, target := range targets {
		info, err := os.Stat(target)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", target, err)
		}
		if info.IsDir() {
			entries, err := os.ReadDir(target)
			if err != nil {
				return nil, fmt.Errorf("reading directory %s: %w", target, err)
			}
			for _, e := range entries {
				if !e.IsDir() && strings.HasSuffix(e.Name(), ".twi") {
					files = append(files, filepath.Join(target, e.Name()))
				}
			}
		} else {
			files = append(files, target)
		}
	}
	sort.Strings(files)
	return files, nil
}

// colorsEnabled honors NO_COLOR and requires a terminal on stderr.
func colorsEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return term.IsTerminal(int(os.Stderr.Fd()))
}

func colorOK() string {
	if colorsEnabled() {
		return "\033[32m"
	}
	return ""
}

func colorFail() string {
	if colorsEnabled() {
		return "\033[31m"
	}
	return ""
}

func colorReset() string {
	if colorsEnabled() {
		return "\033[0m"
	}
	return ""
}
