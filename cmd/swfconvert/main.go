// Command swfconvert converts the frames of movie tag dumps to JSON frame
// trees, PDF documents or SVG images.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/benoitkugler/swfconvert/convert"
	"github.com/benoitkugler/swfconvert/internal/config"
	"github.com/benoitkugler/swfconvert/ir"
	"github.com/benoitkugler/swfconvert/render"
	"github.com/benoitkugler/swfconvert/render/irjson"
	"github.com/benoitkugler/swfconvert/render/pdf"
	"github.com/benoitkugler/swfconvert/render/svg"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	defaults, err := config.Load("")
	if err != nil {
		fmt.Fprintln(os.Stderr, "swfconvert:", err)
		os.Exit(1)
	}
	if err := newRootCommand(defaults, os.Stderr).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "swfconvert:", err)
		stop()
		os.Exit(1)
	}
}

// app is the state shared by the commands.
type app struct {
	// defaults are bound to the flags, for the help messages
	defaults   *config.Config
	configFile string
	params     []string
	yDirection string
	stderr     io.Writer
}

func newRootCommand(defaults *config.Config, stderr io.Writer) *cobra.Command {
	a := &app{defaults: defaults, stderr: stderr, yDirection: "down"}
	root := &cobra.Command{
		Use:           "swfconvert",
		Short:         "Convert movie tag dumps to JSON, PDF or SVG",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	bindGlobal(pf, defaults)
	pf.StringVar(&a.configFile, "config", "", "TOML configuration file")
	pf.StringArrayVarP(&a.params, "define", "D", nil, "additional key=value parameter")

	irCmd := a.formatCommand(render.FormatIR, "Write the frames as JSON frame trees", bindIR)
	irCmd.Flags().StringVar(&a.yDirection, "y-direction", a.yDirection, "direction of the Y axis: up or down")
	root.AddCommand(
		irCmd,
		a.formatCommand(render.FormatPDF, "Write the frames of each input as a PDF document", bindPDF),
		a.formatCommand(render.FormatSVG, "Write each frame as an SVG image", bindSVG),
	)
	return root
}

func (a *app) formatCommand(format render.Format, short string, bind binder) *cobra.Command {
	cmd := &cobra.Command{
		Use:   string(format) + " [flags] inputs...",
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.config(cmd, format, args, bind)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg, format, a.stderr)
		},
	}
	bind(cmd.Flags(), a.defaults)
	return cmd
}

// config merges the environment, the configuration file, the flags
// and the parameters, in increasing priority.
func (a *app) config(cmd *cobra.Command, format render.Format, args []string, bind binder) (*config.Config, error) {
	cfg, err := config.Load(a.configFile)
	if err != nil {
		return nil, render.ConfigErrorf("%s", err)
	}
	if err := replayFlags(cmd.Flags(), cfg, bindGlobal, bind); err != nil {
		return nil, render.ConfigErrorf("%s", err)
	}
	for _, param := range a.params {
		key, value, err := config.ParseParam(param)
		if err != nil {
			return nil, render.ConfigErrorf("%s", err)
		}
		if err := cfg.SetParam(key, value); err != nil {
			return nil, render.ConfigErrorf("%s", err)
		}
	}

	if cfg.Inputs, err = inputFiles(args); err != nil {
		return nil, err
	}
	if cfg.Outputs, err = outputFiles(cfg.Inputs, cfg.Outputs); err != nil {
		return nil, err
	}
	if cfg.Convert.TempDir == "" {
		cfg.Convert.TempDir = filepath.Dir(cfg.Inputs[0])
	}

	cfg.Convert.YDirection = ir.YDown
	if format == render.FormatIR {
		switch strings.ToLower(a.yDirection) {
		case "up":
			cfg.Convert.YDirection = ir.YUp
		case "down":
		default:
			return nil, render.ConfigErrorf("invalid Y direction %q (expected up or down)", a.yDirection)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, render.ConfigErrorf("%s", err)
	}
	return cfg, nil
}

// newLogger maps the levels from 0 (none) to 5 (all).
func newLogger(level int, w io.Writer) *slog.Logger {
	var l slog.Level
	switch {
	case level <= 0:
		return slog.New(slog.DiscardHandler)
	case level <= 2:
		l = slog.LevelError
	case level == 3:
		l = slog.LevelWarn
	case level == 4:
		l = slog.LevelInfo
	default:
		l = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: l}))
}

func registry(logger *slog.Logger, progress *render.Progress) render.Registry[*config.Config] {
	return render.Registry[*config.Config]{
		render.FormatIR: func(cfg *config.Config) (render.FramesRenderer, error) {
			r, err := irjson.NewRenderer(cfg, logger, progress)
			if err != nil {
				return nil, err
			}
			return r, nil
		},
		render.FormatPDF: func(cfg *config.Config) (render.FramesRenderer, error) {
			r, err := pdf.NewRenderer(cfg, logger, progress)
			if err != nil {
				return nil, err
			}
			return r, nil
		},
		render.FormatSVG: func(cfg *config.Config) (render.FramesRenderer, error) {
			r, err := svg.NewRenderer(cfg, logger, progress)
			if err != nil {
				return nil, err
			}
			return r, nil
		},
	}
}

// run converts the inputs of cfg and renders them with the backend of format.
func run(ctx context.Context, cfg *config.Config, format render.Format, stderr io.Writer) error {
	logger := newLogger(cfg.LogLevel, stderr)
	var progress *render.Progress
	if !cfg.Silent {
		progress = render.NewProgress(newProgressPrinter(stderr))
	}

	renderer, err := registry(logger, progress).New(format, cfg)
	if err != nil {
		return err
	}
	converter, err := convert.NewConverter(&cfg.Convert, logger, progress)
	if err != nil {
		return err
	}

	progress.BeginStep("Decoding input files")
	files, err := convert.DecodeFiles(ctx, cfg.Inputs, cfg.Convert.ParallelSwfDecoding)
	progress.EndStep()
	if err != nil {
		return err
	}

	defer converter.Cleanup()
	frames, err := converter.ConvertCollection(ctx, files, cfg.Inputs)
	if err != nil {
		return err
	}
	logger.Info("rendering frames", "format", format, "files", len(frames))
	return renderer.RenderFrames(ctx, frames)
}
