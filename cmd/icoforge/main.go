package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/esimov/icoforge"
	"github.com/esimov/icoforge/palette"
	"github.com/esimov/icoforge/utils"
)

const helpBanner = `
┬┌─┐┌─┐┌─┐┌─┐┬─┐┌─┐┌─┐
││  │ │├┤ │ │├┬┘│ ┬├┤
┴└─┘└─┘└  └─┘┴└─└─┘└─┘

Icon rendering and sprite slicing tool.
    Version: %s

`

// pipeName is the file name that indicates stdin/stdout is being used.
const pipeName = "-"

// Version indicates the current build version.
var Version string

var (
	// Flags
	source       = flag.String("in", pipeName, "Source image, directory or URL")
	destination  = flag.String("out", pipeName, "Destination file or directory")
	size         = flag.Int("size", 256, "Output icon size")
	format       = flag.String("format", "", "Output format: png, jpg, gif, bmp, ico (defaults to the destination extension)")
	preset       = flag.String("preset", "", "Effect preset file (.json, .yaml)")
	isolate      = flag.Bool("isolate", false, "Remove the background and recentre the subject")
	tolerance    = flag.Float64("tolerance", 100, "Background colour distance tolerance")
	fill         = flag.Float64("fill", 0.9, "Share of the canvas covered by an isolated subject")
	pixelArt     = flag.Bool("pixel", false, "Keep hard pixel edges")
	outline      = flag.Float64("outline", 0, "Outline width")
	outlineColor = flag.String("outline-color", "", "Outline colour")
	outlineStyle = flag.String("outline-style", "", "Outline style: solid, dotted, wavy, pixel")
	glow         = flag.Float64("glow", 0, "Glow blur")
	sticker      = flag.Bool("sticker", false, "Sticker mode")
	glass        = flag.Float64("glass", 0, "Frosted glass wash opacity (0-1)")
	finish       = flag.String("finish", "", "Finish: gold, silver, foil, holo")
	seed         = flag.Int64("seed", 0, "Seed for the randomised effects")
	paletteSize  = flag.Int("palette", 0, "Print the given number of representative colours and exit")
	paletteAlgo  = flag.String("palette-method", "dominant", "Palette extraction method: dominant, kmeans")
	grid         = flag.String("slice", "", "Slice the source into a ROWSxCOLS grid")
	labels       = flag.String("labels", "", "Comma separated cell labels used when slicing")
	pad          = flag.Float64("pad", 0, "Padding trimmed from every sliced cell")
	workers      = flag.Int("conc", runtime.NumCPU(), "Number of files to process concurrently")
)

func main() {
	log.SetFlags(0)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, helpBanner, Version)
		flag.PrintDefaults()
	}
	flag.Parse()

	proc, err := newProcessor()
	if err != nil {
		fatal(err)
	}

	if *paletteSize > 0 {
		if err := printPalette(proc); err != nil {
			fatal(err)
		}
		return
	}

	op := &icoforge.Ops{
		Src:      *source,
		Dst:      *destination,
		PipeName: pipeName,
		Workers:  *workers,
	}
	if *grid != "" {
		rows, cols, err := parseGrid(*grid)
		if err != nil {
			fatal(err)
		}
		op.Slice = &icoforge.SliceRequest{
			Rows:       rows,
			Cols:       cols,
			OutputSize: *size,
			Pad:        *pad,
			Isolate:    *isolate,
			Extract:    proc.Extract,
		}
		if *labels != "" {
			op.Slice.Labels = strings.Split(*labels, ",")
		}
	}

	if err := proc.Execute(op); err != nil {
		fatal(err)
	}
}

// newProcessor builds the processor from the preset file and the command line flags.
// Flags set explicitly take precedence over the preset.
func newProcessor() (*icoforge.Processor, error) {
	proc := icoforge.NewProcessor(*size)
	if *preset != "" {
		fx, err := icoforge.LoadEffects(*preset)
		if err != nil {
			return nil, err
		}
		proc.Effects = fx
	}

	if *format != "" {
		f, err := icoforge.ParseFormat(*format)
		if err != nil {
			return nil, err
		}
		proc.Format = f
	} else if *destination != pipeName {
		if f, err := icoforge.FormatFromPath(*destination); err == nil {
			proc.Format = f
		}
	}

	proc.Isolate = *isolate && *grid == ""
	proc.Extract.Tolerance = *tolerance
	proc.Extract.Fill = *fill

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "pixel":
			proc.Effects.PixelArt = *pixelArt
		case "outline":
			proc.Effects.OutlineWidth = *outline
		case "outline-color":
			proc.Effects.OutlineColor = *outlineColor
		case "outline-style":
			proc.Effects.OutlineStyle = icoforge.OutlineStyle(*outlineStyle)
		case "glow":
			proc.Effects.GlowBlur = *glow
		case "sticker":
			proc.Effects.StickerMode = *sticker
		case "glass":
			proc.Effects.GlassOpacity = *glass
		case "finish":
			proc.Effects.FinishType = icoforge.Finish(*finish)
		case "seed":
			proc.Effects.Seed = *seed
		}
	})
	if err := proc.Effects.Validate(); err != nil {
		return nil, err
	}
	return proc, nil
}

// printPalette writes the representative colours of the source as hex codes.
func printPalette(proc *icoforge.Processor) error {
	method, err := palette.ParseMethod(*paletteAlgo)
	if err != nil {
		return err
	}
	op := &icoforge.Ops{PipeName: pipeName}
	src, err := op.Open(*source)
	if err != nil {
		return err
	}
	if c, ok := src.(io.Closer); ok && src != os.Stdin {
		defer c.Close()
	}

	cols, err := proc.Palette(src, *paletteSize, method)
	if err != nil {
		return err
	}
	for _, c := range cols {
		fmt.Println(palette.Hex(c))
	}
	return nil
}

// parseGrid parses a ROWSxCOLS grid description.
func parseGrid(s string) (int, int, error) {
	parts := strings.Split(strings.ToLower(s), "x")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid grid %q, expected ROWSxCOLS", s)
	}
	rows, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid grid rows: %w", err)
	}
	cols, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid grid columns: %w", err)
	}
	return rows, cols, nil
}

func fatal(err error) {
	log.Fatalf("%s%s",
		utils.DecorateText(fmt.Sprintf("\nError: %v", err), utils.ErrorMessage),
		utils.DefaultColor,
	)
}
