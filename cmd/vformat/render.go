package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/benoitkugler/vformat/backend/raster"
	pa "github.com/benoitkugler/vformat/css/parser"
	"github.com/benoitkugler/vformat/html/document"
	"github.com/benoitkugler/vformat/html/dom"
	"github.com/benoitkugler/vformat/html/tree"
	"github.com/benoitkugler/vformat/images"
	"github.com/benoitkugler/vformat/logger"
	"github.com/benoitkugler/vformat/text"
)

type renderOptions struct {
	css       []string
	png       string
	dump      bool
	fixedFont bool
}

func newRenderCmd(a *app) *cobra.Command {
	var opts renderOptions
	cmd := &cobra.Command{
		Use:   "render page.html",
		Short: "Lay out a document and output its display list",
		Long: `Render resolves the styles of the document, lays it out for the configured
viewport, and builds its display list. The list (and the fragment tree) may
be printed with --dump, or rasterized to a PNG file with --png.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return a.render(ctx, cmd.OutOrStdout(), args[0], opts)
		},
	}

	flags := cmd.Flags()
	flags.StringSliceVar(&opts.css, "css", nil, "additional author stylesheet (repeatable)")
	flags.StringVar(&opts.png, "png", "", "write the pages, stacked, to this PNG file")
	flags.BoolVar(&opts.dump, "dump", false, "print the display list and the fragment tree")
	flags.BoolVar(&opts.fixedFont, "fixed-font", false, "measure text with square glyphs instead of the Go fonts")
	flags.Float64("width", 800, "viewport width, in CSS pixels")
	flags.Float64("height", 600, "viewport height, in CSS pixels")
	flags.Bool("paginate", false, "split the document into pages")
	flags.Duration("budget", 0, "maximum layout duration (0 for the configured value)")
	_ = a.v.BindPFlag("viewport.width", flags.Lookup("width"))
	_ = a.v.BindPFlag("viewport.height", flags.Lookup("height"))
	_ = a.v.BindPFlag("layout.paginate", flags.Lookup("paginate"))
	cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		if budget, _ := cmd.Flags().GetDuration("budget"); budget > 0 {
			a.cfg.Layout.Budget = budget
		}
		return nil
	}
	return cmd
}

func (a *app) render(ctx context.Context, out io.Writer, path string, opts renderOptions) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	doc, err := dom.Parse(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	var sheets []*tree.Sheet
	for _, file := range opts.css {
		data, err := os.ReadFile(file)
		if err != nil {
			return err
		}
		ss := pa.ParseStylesheet(data, pa.Author)
		if err := ss.Err(); err != nil {
			logger.WarningLogger.Log("invalid declarations ignored", zap.String("file", file), zap.Error(err))
		}
		sheets = append(sheets, tree.NewSheet(ss))
	}

	var measurer text.Measurer = text.FixedMeasurer{}
	if !opts.fixedFont {
		if measurer, err = text.NewGoFontMeasurer(); err != nil {
			return err
		}
	}

	p := document.NewPipeline(doc, sheets, a.cfg, document.Options{
		Measurer: measurer,
		Images:   images.NewLoader(images.FileFetcher(filepath.Dir(path))),
	})
	defer p.Close()

	frame, err := p.Render(ctx)
	if err != nil {
		return err
	}

	if opts.dump {
		if err := frame.List.Dump(out); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(out, "\nfragments:\n%s", frame.Fragments.Dump(frame.Fragments.Root)); err != nil {
			return err
		}
	}

	if opts.png != "" {
		if err := writePNG(frame, opts.png, a.cfg.Viewport.DevicePixelRatio); err != nil {
			return err
		}
	}
	return nil
}

func writePNG(frame *document.Frame, path string, scale float64) (err error) {
	output, err := raster.NewOutput(raster.Fl(scale))
	if err != nil {
		return err
	}
	frame.List.Replay(output)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return output.WritePNG(f)
}
