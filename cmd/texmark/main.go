package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/goliatone/go-command/dispatcher"

	"github.com/goliatone/go-texmark"
	"github.com/goliatone/go-texmark/commands"
)

const usage = `usage: texmark <command> [flags] [args]

commands:
  render   render one formula to stdout (reads stdin when no markup is given)
  convert  render math inside the HTML files of a directory
  file     render math inside a single HTML file
  page     render a Markdown page into an HTML file`

// moduleOptions carries the flags shared by every subcommand.
type moduleOptions struct {
	ConfigPath string
	BasePath   string
	LogLevel   string
	Mutate     func(*texmark.Config)
}

var moduleBuilder = buildModule

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdin, os.Stdout); err != nil {
		log.Fatalf("texmark: %v", err)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	if len(args) == 0 {
		return errors.New(usage)
	}
	switch args[0] {
	case "render":
		return runRender(ctx, args[1:], stdin, stdout)
	case "convert":
		return runConvert(ctx, args[1:], stdout)
	case "file":
		return runFile(ctx, args[1:], stdout)
	case "page":
		return runPage(ctx, args[1:], stdout)
	case "-h", "-help", "--help", "help":
		fmt.Fprintln(stdout, usage)
		return nil
	default:
		return fmt.Errorf("unknown command %q\n%s", args[0], usage)
	}
}

func buildModule(opts moduleOptions) (*texmark.Module, error) {
	cfg := texmark.DefaultConfig()
	if path := strings.TrimSpace(opts.ConfigPath); path != "" {
		loaded, err := texmark.LoadConfig(path)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}
	if level := strings.TrimSpace(opts.LogLevel); level != "" {
		cfg.Logging.Level = level
	}
	if opts.Mutate != nil {
		opts.Mutate(&cfg)
	}

	var moduleOpts []texmark.ModuleOption
	if base := strings.TrimSpace(opts.BasePath); base != "" {
		moduleOpts = append(moduleOpts, texmark.WithMarkdownBasePath(base))
	}
	return texmark.NewModule(cfg, moduleOpts...)
}

func newFlagSet(name string) (*flag.FlagSet, *moduleOptions) {
	fs := flag.NewFlagSet("texmark "+name, flag.ContinueOnError)
	opts := &moduleOptions{}
	fs.StringVar(&opts.ConfigPath, "config", "", "Path to a YAML configuration file")
	fs.StringVar(&opts.LogLevel, "log-level", "", "Override the configured log level")
	return fs, opts
}

// dispatch registers the module handlers with the go-command dispatcher, sends
// msg and tears the subscriptions down again.
func dispatch(ctx context.Context, opts moduleOptions, msg any) error {
	module, err := moduleBuilder(opts)
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}
	result, err := commands.RegisterModuleCommands(module, commands.RegistrationOptions{
		Dispatcher: commands.Dispatcher{},
	})
	if err != nil {
		return fmt.Errorf("register commands: %w", err)
	}
	defer result.Close()

	switch m := msg.(type) {
	case texmark.RenderFormulaCommand:
		err = dispatcher.Dispatch(ctx, m)
	case texmark.ConvertFileCommand:
		err = dispatcher.Dispatch(ctx, m)
	case texmark.ConvertDirectoryCommand:
		err = dispatcher.Dispatch(ctx, m)
	case texmark.RenderPageCommand:
		err = dispatcher.Dispatch(ctx, m)
	default:
		err = fmt.Errorf("unsupported command %T", msg)
	}
	return err
}

func runRender(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	fs, opts := newFlagSet("render")
	display := fs.Bool("display", false, "Render in display mode")
	if err := fs.Parse(args); err != nil {
		return err
	}

	markup := strings.Join(fs.Args(), " ")
	if strings.TrimSpace(markup) == "" {
		if stdin == nil {
			return errors.New("render: markup is required when stdin is unavailable")
		}
		data, err := io.ReadAll(stdin)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		markup = strings.TrimRight(string(data), "\r\n")
	}

	return dispatch(ctx, *opts, texmark.RenderFormulaCommand{
		Markup:  markup,
		Display: *display,
		ResultCallback: func(env texmark.ResultEnvelope) {
			fmt.Fprintln(stdout, env.HTML)
		},
	})
}

func runConvert(ctx context.Context, args []string, stdout io.Writer) error {
	fs, opts := newFlagSet("convert")
	pattern := fs.String("pattern", "", "Glob applied to file names (defaults to config)")
	recursive := fs.Bool("recursive", true, "Descend into subdirectories")
	suffix := fs.String("suffix", "", "Suffix inserted before the extension of output files")
	inPlace := fs.Bool("in-place", false, "Overwrite input files")
	dryRun := fs.Bool("dry-run", false, "Report changes without writing files")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("convert: exactly one directory is required")
	}

	setFlags := visited(fs)
	opts.Mutate = func(cfg *texmark.Config) {
		if *suffix != "" {
			cfg.Convert.OutputSuffix = *suffix
		}
		if setFlags["in-place"] {
			cfg.Convert.InPlace = *inPlace
		}
	}

	msg := texmark.ConvertDirectoryCommand{
		Directory: fs.Arg(0),
		Pattern:   *pattern,
		DryRun:    *dryRun,
	}
	if setFlags["recursive"] {
		msg.Recursive = recursive
	}

	var report *texmark.ConvertReport
	msg.ResultCallback = func(env texmark.ResultEnvelope) { report = env.Report }
	if err := dispatch(ctx, *opts, msg); err != nil {
		return err
	}
	if report == nil {
		return nil
	}

	for _, file := range report.Files {
		switch {
		case file.Err != nil:
			fmt.Fprintf(stdout, "failed     %s: %v\n", file.Path, file.Err)
		case file.Changed:
			fmt.Fprintf(stdout, "converted  %s -> %s\n", file.Path, file.Output)
		}
	}
	fmt.Fprintf(stdout, "%d converted, %d unchanged, %d failed in %s\n",
		report.Converted, report.Unchanged, report.Failed, report.Duration)
	return errors.Join(report.Errors()...)
}

func runFile(ctx context.Context, args []string, stdout io.Writer) error {
	fs, opts := newFlagSet("file")
	suffix := fs.String("suffix", "", "Suffix inserted before the extension of the output file")
	inPlace := fs.Bool("in-place", false, "Overwrite the input file")
	dryRun := fs.Bool("dry-run", false, "Report changes without writing the file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("file: exactly one path is required")
	}

	opts.Mutate = func(cfg *texmark.Config) {
		if *suffix != "" {
			cfg.Convert.OutputSuffix = *suffix
		}
		if *inPlace {
			cfg.Convert.InPlace = true
		}
	}

	return dispatch(ctx, *opts, texmark.ConvertFileCommand{
		Path:   fs.Arg(0),
		DryRun: *dryRun,
		ResultCallback: func(env texmark.ResultEnvelope) {
			if env.File == nil {
				return
			}
			if env.File.Changed {
				fmt.Fprintf(stdout, "converted  %s -> %s\n", env.File.Path, env.File.Output)
				return
			}
			fmt.Fprintf(stdout, "unchanged  %s\n", env.File.Path)
		},
	})
}

func runPage(ctx context.Context, args []string, stdout io.Writer) error {
	fs, opts := newFlagSet("page")
	fs.StringVar(&opts.BasePath, "base", ".", "Markdown content root")
	outputDir := fs.String("out", "public", "Directory receiving the rendered page")
	noMath := fs.Bool("no-math", false, "Disable math rendering regardless of front matter")
	dryRun := fs.Bool("dry-run", false, "Print the page instead of writing it")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("page: exactly one markdown path is required")
	}

	msg := texmark.RenderPageCommand{
		Path:      fs.Arg(0),
		OutputDir: *outputDir,
		DryRun:    *dryRun,
		ResultCallback: func(env texmark.ResultEnvelope) {
			if env.Output == "" {
				fmt.Fprint(stdout, env.HTML)
				return
			}
			fmt.Fprintf(stdout, "rendered   %s -> %s\n", env.Document.FilePath, env.Output)
		},
	}
	if *noMath {
		disabled := false
		msg.Math = &disabled
	}
	return dispatch(ctx, *opts, msg)
}

func visited(fs *flag.FlagSet) map[string]bool {
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}
