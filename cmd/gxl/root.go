package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/ktr0731/go-fuzzyfinder"
	"github.com/spf13/cobra"
	"github.com/viant/gxl"
	"github.com/viant/gxl/internal/logger"
	"github.com/viant/gxl/model/ast"
	"github.com/viant/gxl/model/types"
	"github.com/viant/gxl/tracing"
)

// Version is set at build time.
var Version = "dev"

const exitFailure = 255

type options struct {
	envs   []string
	conf   string
	debug  int
	log    string
	dryRun bool
	quiet  bool
	list   bool
	trace  string
}

var (
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	locationStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

// Execute runs the CLI with args and returns the process exit code.
func Execute(args []string) int {
	cmd := newRootCommand(args, os.Stdout, os.Stderr)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		printError(os.Stderr, err)
		return exitFailure
	}
	return 0
}

func newRootCommand(rawArgs []string, stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:           "gxl [flags] <flow>...",
		Short:         "Runs WFL workflows",
		Long:          "gxl loads a WFL entry file, merges the selected envs and runs the given flows in dependency order.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts, rawArgs, args, stdout)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	flags := cmd.Flags()
	flags.StringArrayVarP(&opts.envs, "env", "e", nil, "env to apply, repeatable")
	flags.StringVarP(&opts.conf, "conf", "f", gxl.DefaultConf, "entry WFL file")
	flags.IntVarP(&opts.debug, "debug", "d", logger.DefaultConfig().Debug, "verbosity 0..3")
	flags.StringVar(&opts.log, "log", "", "log rules: level or name=level,...")
	flags.BoolVar(&opts.dryRun, "dryrun", false, "run @dryrun substitutes and reject other side effects")
	flags.BoolVarP(&opts.quiet, "quiet", "q", false, "do not echo child process output")
	flags.BoolVar(&opts.list, "list", false, "list flows and exit")
	flags.StringVar(&opts.trace, "trace", "", "write trace spans to file")
	return cmd
}

func run(ctx context.Context, opts *options, rawArgs, flows []string, stdout io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log, err := logger.New(logger.Config{Debug: opts.debug, Rules: opts.log, Format: "human"})
	if err != nil {
		return types.NewArgsError("%v", err)
	}
	defer func() { _ = log.Sync() }()
	config, err := gxl.LoadConfig("")
	if err != nil {
		return types.NewArgsError("%v", err)
	}
	srvOptions := []gxl.Option{gxl.WithConfig(config), gxl.WithLogger(log), gxl.WithStdout(stdout)}
	if opts.trace != "" {
		srvOptions = append(srvOptions, gxl.WithTracing("gxl", Version, opts.trace))
		defer func() { _ = tracing.Shutdown(context.Background()) }()
	}
	srv, err := gxl.New(srvOptions...)
	if err != nil {
		return err
	}
	workDir, _ := os.Getwd()
	conf := opts.conf
	if !filepath.IsAbs(conf) {
		conf = filepath.Join(workDir, conf)
	}
	if opts.list || len(flows) == 0 {
		available, err := srv.Flows(ctx, conf)
		if err != nil {
			return err
		}
		if opts.list || !interactive() {
			listFlows(stdout, available)
			return nil
		}
		picked, err := pickFlow(available)
		if err != nil {
			return err
		}
		flows = []string{picked}
	}
	_, err = srv.Run(ctx, &gxl.Request{
		Conf:    conf,
		Envs:    opts.envs,
		Flows:   flows,
		WorkDir: workDir,
		DryRun:  opts.dryRun,
		Quiet:   opts.quiet,
		Args:    rawArgs,
	})
	return err
}

func interactive() bool {
	info, err := os.Stdin.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}

func pickFlow(flows []*ast.Flow) (string, error) {
	if len(flows) == 0 {
		return "", types.NewArgsError("no flows declared")
	}
	idx, err := fuzzyfinder.Find(flows, func(i int) string {
		desp, _, _ := flows[i].Usage()
		return strings.TrimSpace(flows[i].Path() + "  " + desp)
	}, fuzzyfinder.WithPromptString("Select flow: "))
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return "", types.NewCancelledError(err)
		}
		return "", err
	}
	return flows[idx].Path(), nil
}

var usageColors = map[string]color.Attribute{
	"black":   color.FgBlack,
	"red":     color.FgRed,
	"green":   color.FgGreen,
	"yellow":  color.FgYellow,
	"blue":    color.FgBlue,
	"magenta": color.FgMagenta,
	"cyan":    color.FgCyan,
	"white":   color.FgWhite,
}

// listFlows prints flows carrying @usage, sorted by path; without any, every flow is listed.
func listFlows(w io.Writer, flows []*ast.Flow) {
	var listed []*ast.Flow
	for _, flow := range flows {
		if _, _, ok := flow.Usage(); ok {
			listed = append(listed, flow)
		}
	}
	if len(listed) == 0 {
		listed = flows
	}
	sort.SliceStable(listed, func(i, j int) bool { return listed[i].Path() < listed[j].Path() })
	width := 0
	for _, flow := range listed {
		if len(flow.Path()) > width {
			width = len(flow.Path())
		}
	}
	for _, flow := range listed {
		desp, colorName, _ := flow.Usage()
		name := fmt.Sprintf("%-*s", width, flow.Path())
		if attr, ok := usageColors[strings.ToLower(colorName)]; ok {
			name = color.New(attr, color.Bold).Sprint(name)
		}
		fmt.Fprintf(w, "  %s  %s\n", name, desp)
	}
}

// formatError renders `error: <kind>: <message>` and the failing location when known.
func formatError(err error) string {
	ret := errorStyle.Render("error: " + err.Error())
	var typed *types.Error
	if errors.As(err, &typed) && typed.Path != "" {
		location := typed.Path
		if typed.Action != "" {
			location += "/" + typed.Action
		}
		ret += "\n" + locationStyle.Render("  at "+location)
	}
	return ret
}

func printError(w io.Writer, err error) {
	fmt.Fprintln(w, formatError(err))
}
