// Command breastcrop crops a compressed breast phantom to its tissue region
// plus an air gap, optionally resizing it to exact voxel dimensions.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"

	"breastcrop/internal/models"
	"breastcrop/pkg/config"
	"breastcrop/pkg/logging"
	"breastcrop/pkg/pipeline"
)

// CLI defines the command-line interface for breastcrop.
type CLI struct {
	Seed  int     `name:"seed" short:"s" required:"" help:"input seed"`
	Dir   string  `name:"dir" short:"d" default:"." help:"work directory" type:"path"`
	Gap   float64 `name:"gap" short:"g" required:"" help:"air gap (mm)"`
	XSize int     `name:"xsize" short:"x" required:"" help:"x voxels"`
	YSize int     `name:"ysize" short:"y" required:"" help:"y voxels"`
	ZSize int     `name:"zsize" short:"z" required:"" help:"z voxels"`

	Config      string          `name:"config" short:"c" help:"YAML configuration file" type:"path"`
	WriteConfig writeConfigFlag `name:"write-config" help:"write the default configuration to this file and exit" placeholder:"FILE"`
	Strict      bool            `name:"strict" help:"fail on incomplete compressed data instead of warning"`
	Verbose     bool            `name:"verbose" short:"v" help:"log every boundary search"`
}

// errConfigWritten ends parsing after --write-config has done its work
var errConfigWritten = errors.New("configuration written")

// writeConfigFlag writes the default configuration before the crop options
// are checked, so it needs none of them.
type writeConfigFlag string

func (w writeConfigFlag) BeforeReset(ctx *kong.Context, trace *kong.Path) error {
	path, _ := ctx.FlagValue(trace.Flag).(writeConfigFlag)
	if path == "" {
		return fmt.Errorf("%w: --write-config needs a file name", pipeline.ErrConfig)
	}
	if err := config.CreateDefaultConfigFile(string(path)); err != nil {
		return fmt.Errorf("%w: %w", pipeline.ErrConfig, err)
	}
	fmt.Fprintf(ctx.Stdout, "Default configuration written to %s\n", path)
	return errConfigWritten
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr, os.Exit))
}

// run parses args and crops one phantom, returning the process exit status.
// exit is called by the help flag.
func run(args []string, stdout, stderr io.Writer, exit func(int)) int {
	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("breastcrop"),
		kong.Description("breastCrop - cropping compressed breast phantoms"),
		kong.Writers(stdout, stderr),
		// help exits with status 1
		kong.Exit(func(int) { exit(1) }),
	)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}

	if _, err := parser.Parse(args); err != nil {
		switch {
		case errors.Is(err, errConfigWritten):
			return 0
		case errors.Is(err, pipeline.ErrConfig):
			fmt.Fprintf(stderr, "%v\n", err)
			return 1
		}
		fmt.Fprintf(stderr, "Command line options missing: %v\n", err)
		var parseErr *kong.ParseError
		if errors.As(err, &parseErr) && parseErr.Context != nil {
			parseErr.Context.PrintUsage(false)
		}
		return 1
	}

	cfg := config.DefaultConfig()
	if cli.Config != "" {
		if cfg, err = config.LoadConfig(cli.Config); err != nil {
			fmt.Fprintf(stderr, "%v: %v\n", pipeline.ErrConfig, err)
			return 1
		}
	}

	mode, err := logging.ParseMode(cfg.Logging.Level)
	if err != nil {
		fmt.Fprintf(stderr, "%v: %v\n", pipeline.ErrConfig, err)
		return 1
	}
	if cli.Verbose || cfg.Output.Verbose {
		mode = logging.DebugMode
	}
	logging.SetLogMode(mode)
	cfg.LogConfig().SetLogger()
	defer logging.Shutdown()

	params := &pipeline.Params{
		WorkDir:             cli.Dir,
		Seed:                cli.Seed,
		AirGap:              cli.Gap,
		Target:              models.TargetDimensions{cli.XSize, cli.YSize, cli.ZSize},
		Labels:              cfg.TissueLabels(),
		StrictDecompression: cli.Strict || cfg.Crop.StrictDecompression,
		CompressionLevel:    cfg.Crop.CompressionLevel,
		Summarize:           cfg.Output.Summary,
	}

	cropper := pipeline.NewCropper(params)
	if err := cropper.Process(); err != nil {
		logging.Errorf("%v\n", err)
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	report := cropper.Report()
	fmt.Fprintf(stdout, "Crop extent: %v\n", report.Extent)
	fmt.Fprintf(stdout, "Output dimensions: %d %d %d\n", report.Dim[0], report.Dim[1], report.Dim[2])
	fmt.Fprintf(stdout, "Output offset: %6.4f %6.4f %6.4f\n", report.Origin[0], report.Origin[1], report.Origin[2])
	fmt.Fprintf(stdout, "Saved: %s\n", report.Output.Header)

	if report.After != nil {
		fmt.Fprintf(stdout, "\nCropped volume materials:\n")
		for _, m := range report.After.Materials(params.Labels) {
			fmt.Fprintf(stdout, "  %-10s %3d %10d  %6.2f%%\n", m.Name, m.Label, m.Count, 100*m.Fraction)
		}
		fmt.Fprintf(stdout, "Tissue fraction: %.4f (input %.4f)\n", report.After.TissueFraction, report.Before.TissueFraction)
		fmt.Fprintf(stdout, "Label entropy: %.4f (input %.4f)\n", report.After.Entropy, report.Before.Entropy)
		fmt.Fprintf(stdout, "BLAKE3: %s\n", report.After.Digest)
	}
	return 0
}
