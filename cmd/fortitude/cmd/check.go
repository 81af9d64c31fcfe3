package cmd

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"

	"github.com/fortitude-sh/fortitude/internal/analyzer"
	"github.com/fortitude-sh/fortitude/internal/config"
	"github.com/fortitude-sh/fortitude/internal/discovery"
	"github.com/fortitude-sh/fortitude/internal/driver"
	"github.com/fortitude-sh/fortitude/internal/fix"
	"github.com/fortitude-sh/fortitude/internal/log"
	"github.com/fortitude-sh/fortitude/internal/reporter"
	"github.com/fortitude-sh/fortitude/internal/rules"
)

func checkCommand() *cli.Command {
	return &cli.Command{
		Name:      "check",
		Usage:     "Check Fortran source for issues",
		ArgsUsage: "[FILE|DIR...]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "Path to config file (default: auto-discover)"},
			&cli.StringSliceFlag{Name: "select", Usage: "Enable rules (ALL, category, prefix, code, or name)"},
			&cli.StringSliceFlag{Name: "extend-select", Usage: "Enable additional rules on top of the base selection"},
			&cli.StringSliceFlag{Name: "ignore", Usage: "Disable rules (ALL, category, prefix, code, or name)"},
			&cli.StringSliceFlag{Name: "exclude", Usage: "Glob pattern to exclude files (can be repeated)"},
			&cli.IntFlag{Name: "line-length", Usage: "Maximum source line length (0 disables the check)"},
			&cli.StringFlag{Name: "target-standard", Usage: "Target Fortran standard, e.g. f2018"},
			&cli.BoolFlag{Name: "preview", Usage: "Enable preview-group rules"},
			&cli.BoolFlag{Name: "fix", Usage: "Apply fixes to files on disk"},
			&cli.BoolFlag{Name: "fix-only", Usage: "Apply fixes and suppress the diagnostic report"},
			&cli.BoolFlag{Name: "unsafe-fixes", Usage: "Also apply unsafe fixes when fixing"},
			&cli.BoolFlag{Name: "diff", Usage: "Print a unified diff of the fixes that would be applied"},
			&cli.BoolFlag{Name: "exit-zero", Usage: "Always exit 0, even with diagnostics"},
			&cli.BoolFlag{Name: "exit-non-zero-on-fix", Usage: "Exit non-zero if any fix was applied"},
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "Output format (text, concise, json, json-lines, sarif, github-actions, gitlab, azure, pylint, rdjson, junit, markdown)"},
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Output destination: stdout, stderr, or a file path"},
			&cli.BoolFlag{Name: "no-color", Usage: "Disable colored output", Sources: cli.EnvVars("NO_COLOR")},
			&cli.BoolFlag{Name: "show-source", Usage: "Show source snippets (text format only)", Value: true},
			&cli.BoolFlag{Name: "hide-source", Usage: "Hide source snippets"},
			&cli.BoolFlag{Name: "show-settings", Usage: "Print the fully resolved settings as TOML and exit"},
			&cli.StringFlag{Name: "stdin-filename", Usage: "Treat stdin as a file with this name"},
			&cli.IntFlag{Name: "jobs", Aliases: []string{"j"}, Usage: "Parallel worker count (0 = number of CPUs)"},
		},
		Action: runCheck,
	}
}

func runCheck(ctx context.Context, cmd *cli.Command) error {
	args := cmd.Args().Slice()
	stdinName := cmd.String("stdin-filename")
	useStdin := stdinName != "" || (len(args) == 1 && args[0] == "-")
	if useStdin && stdinName == "" {
		stdinName = "-"
	}

	targetPath := "."
	if len(args) > 0 && !useStdin {
		targetPath = args[0]
	}

	overrides := buildOverrides(cmd)
	cfg, err := config.Load(targetPath, overrides)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fortitude: %v\n", err)
		return cli.Exit("", ExitConfigError)
	}
	log.Configure(cfg.Logging.Level, cfg.Logging.Format)

	reg := registry()
	settings, warnings, err := config.Resolve(cfg, reg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fortitude: %v\n", err)
		return cli.Exit("", ExitConfigError)
	}
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "fortitude: warning: %s\n", w.Message)
	}

	if cmd.Bool("show-settings") {
		enc, encErr := toml.Marshal(cfg)
		if encErr != nil {
			return cli.Exit(encErr.Error(), ExitConfigError)
		}
		os.Stdout.Write(enc)
		return nil
	}

	parser, err := newFortranParser()
	if err != nil {
		fmt.Fprintf(os.Stderr, "fortitude: %v\n", err)
		return cli.Exit("", ExitConfigError)
	}
	defer parser.Close()

	a := analyzer.New(reg, settings.RuleTable(), settings, parser)

	mode := fix.ModeGenerate
	switch {
	case cmd.Bool("diff"):
		mode = fix.ModeDiff
	case cmd.Bool("fix") || cmd.Bool("fix-only") || settings.Fix():
		mode = fix.ModeApply
	}
	unsafeAllowed := cmd.Bool("unsafe-fixes") || settings.FixUnsafe()
	quiet := cmd.Bool("fix-only")

	var (
		mu         sync.Mutex
		sources    = map[string][]byte{}
		anyFixed   bool
		diffOutput strings.Builder
	)

	analyzeOne := func(path string, content []byte, readErr error) driver.FileResult {
		res := a.File(path, content, readErr)
		result := driver.FileResult{Path: path, Diagnostics: res.Diagnostics, Skipped: res.Skipped}

		if readErr == nil {
			mu.Lock()
			sources[path] = content
			mu.Unlock()
		}

		if mode == fix.ModeGenerate || readErr != nil || res.Skipped {
			return result
		}

		reanalyze := func(c []byte) []rules.Diagnostic {
			return a.File(path, c, nil).Diagnostics
		}
		fr := fix.Run(content, res.Diagnostics, mode, unsafeAllowed, reanalyze)
		if fr.CappedWarning {
			log.L().Warnf("fortitude: %s: fix engine reached the %d-pass cap", path, fix.MaxPasses)
		}
		result.Diagnostics = fr.Residual

		switch mode {
		case fix.ModeApply:
			if len(fr.Applied) > 0 {
				anyFixed = true
				if writeErr := os.WriteFile(path, fr.TransformedText, 0o644); writeErr != nil {
					log.L().WithError(writeErr).Errorf("fortitude: writing fixed file %s", path)
				}
				mu.Lock()
				sources[path] = fr.TransformedText
				mu.Unlock()
			}
		case fix.ModeDiff:
			if d := unifiedDiff(path, content, fr.TransformedText); d != "" {
				anyFixed = true
				mu.Lock()
				diffOutput.WriteString(d)
				mu.Unlock()
			}
		}
		return result
	}

	var checkResult driver.CheckResult
	if useStdin {
		fr, rerr := driver.RunStdin(stdinName, os.Stdin, func(path string, content []byte) driver.FileResult {
			return analyzeOne(path, content, nil)
		})
		if rerr != nil {
			fmt.Fprintf(os.Stderr, "fortitude: reading stdin: %v\n", rerr)
			return cli.Exit("", ExitConfigError)
		}
		checkResult.Diagnostics = rules.SortDiagnostics(fr.Diagnostics)
		checkResult.FilesChecked = 1
		if fr.Skipped {
			checkResult.FilesSkipped = 1
		}
	} else {
		inputs := args
		if len(inputs) == 0 {
			inputs = []string{"."}
		}
		files, derr := discovery.Discover(inputs, discovery.Options{
			Exclude:          settings.Exclude(),
			RespectGitignore: settings.RespectGitignore(),
		})
		if derr != nil {
			fmt.Fprintf(os.Stderr, "fortitude: %v\n", derr)
			return cli.Exit("", ExitConfigError)
		}
		if len(files) == 0 {
			fmt.Fprintln(os.Stderr, "fortitude: no Fortran files found")
			return cli.Exit("", ExitNoFiles)
		}

		concurrency := int(cmd.Int("jobs"))
		if concurrency <= 0 {
			concurrency = runtime.NumCPU()
		}
		result, runErr := driver.Run(ctx, files, concurrency, func(path string) driver.FileResult {
			content, readErr := driver.ReadFile(path)
			return analyzeOne(path, content, readErr)
		})
		if runErr != nil && ctx.Err() == nil {
			fmt.Fprintf(os.Stderr, "fortitude: %v\n", runErr)
		}
		checkResult = result
	}

	if mode == fix.ModeDiff && diffOutput.Len() > 0 {
		fmt.Print(diffOutput.String())
	}

	if !quiet {
		rep, rerr := buildReporter(cmd, settings)
		if rerr != nil {
			return cli.Exit(rerr.Error(), ExitConfigError)
		}
		metadata := reporter.ReportMetadata{FilesScanned: checkResult.FilesChecked, RulesEnabled: len(settings.EnabledRules())}
		if err := rep.Report(checkResult.Diagnostics, sources, metadata); err != nil {
			return cli.Exit(err.Error(), ExitConfigError)
		}
	}

	return cli.Exit("", determineExitCode(cmd, checkResult, anyFixed))
}

func determineExitCode(cmd *cli.Command, result driver.CheckResult, anyFixed bool) int {
	if cmd.Bool("exit-zero") {
		return ExitSuccess
	}
	if cmd.Bool("exit-non-zero-on-fix") && anyFixed {
		return ExitViolations
	}
	if len(result.Diagnostics) > 0 {
		return ExitViolations
	}
	return ExitSuccess
}

func buildOverrides(cmd *cli.Command) config.Overrides {
	ov := config.Overrides{
		Select:       cmd.StringSlice("select"),
		ExtendSelect: cmd.StringSlice("extend-select"),
		Ignore:       cmd.StringSlice("ignore"),
		ConfigPath:   cmd.String("config"),
		OutputFormat: cmd.String("format"),
	}
	if cmd.IsSet("line-length") {
		v := int(cmd.Int("line-length"))
		ov.LineLength = &v
	}
	if cmd.IsSet("target-standard") {
		ov.TargetStandard = cmd.String("target-standard")
	}
	if cmd.IsSet("preview") {
		v := cmd.Bool("preview")
		ov.Preview = &v
	}
	if cmd.IsSet("fix") || cmd.IsSet("fix-only") {
		v := cmd.Bool("fix") || cmd.Bool("fix-only")
		ov.Fix = &v
	}
	if cmd.IsSet("unsafe-fixes") {
		v := cmd.Bool("unsafe-fixes")
		ov.FixUnsafe = &v
	}
	return ov
}

func buildReporter(cmd *cli.Command, settings *config.Settings) (reporter.Reporter, error) {
	formatName := cmd.String("format")
	if formatName == "" {
		formatName = settings.OutputFormat()
		// Without a --format flag, a configured format of "concise" (the
		// built-in default, or the same value set in config) gives way to
		// the current CI system's native annotation format.
		if formatName == "concise" {
			if ciFormat, ok := reporter.DetectCIFormat(); ok {
				formatName = string(ciFormat)
			}
		}
	}
	format, err := reporter.ParseFormat(formatName)
	if err != nil {
		return nil, err
	}

	outputPath := cmd.String("output")
	if outputPath == "" {
		outputPath = settings.OutputPath()
	}
	writer, _, err := reporter.GetWriter(outputPath)
	if err != nil {
		return nil, err
	}

	showSource := settings.ShowSource()
	if cmd.IsSet("show-source") {
		showSource = cmd.Bool("show-source")
	}
	if cmd.Bool("hide-source") {
		showSource = false
	}

	var color *bool
	if cmd.Bool("no-color") {
		v := false
		color = &v
	}

	return reporter.New(reporter.Options{
		Format:      format,
		Writer:      writer,
		Color:       color,
		ShowSource:  showSource,
		ToolVersion: "",
	})
}
