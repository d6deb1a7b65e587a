// Command idmark stamps a tiled, warped and rotated text watermark onto an image file.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atwam/idmark/internal/fonts"
	"github.com/atwam/idmark/internal/imageproc"
	"github.com/wb-go/wbf/zlog"
)

const (
	defaultInput  = "tests/passport.jpg"
	defaultOutput = "buf.jpg"
	defaultText   = "Tenancy application - 12/12/2022"
)

type options struct {
	input    string
	output   string
	text     string
	profile  string
	mode     string
	family   string
	style    string
	fontSize float64
	rotation float64
	maxW     int
	maxH     int
	logLevel string
	fontDirs string
	setFlags map[string]bool
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("idmark", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&o.input, "in", defaultInput, "input image path")
	fs.StringVar(&o.output, "out", defaultOutput, "output image path, format follows the extension")
	fs.StringVar(&o.text, "text", defaultText, "watermark text")
	fs.StringVar(&o.profile, "profile", "", "YAML watermark profile")
	fs.StringVar(&o.mode, "mode", "", "blend mode: darken or lighten-darken (overrides the profile)")
	fs.StringVar(&o.family, "font", fonts.DefaultFamily, "font family, falls back to the embedded Go font")
	fs.StringVar(&o.style, "style", fonts.DefaultStyle.String(), "font style: regular, bold, italic, mono or a comma list")
	fs.Float64Var(&o.fontSize, "font-size", 0, "font size in pixels (overrides the profile)")
	fs.Float64Var(&o.rotation, "rotation", 0, "rotation in degrees (overrides the profile)")
	fs.IntVar(&o.maxW, "max-w", 0, "downscale to this width before marking, 0 keeps it")
	fs.IntVar(&o.maxH, "max-h", 0, "downscale to this height before marking, 0 keeps it")
	fs.StringVar(&o.logLevel, "log-level", "info", "log level")
	fs.StringVar(&o.fontDirs, "font-dirs", "", "colon separated font directories, system directories when empty")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if fs.NArg() > 0 {
		return options{}, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	o.setFlags = make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { o.setFlags[f.Name] = true })
	return o, nil
}

// config merges the profile with the flags that were given explicitly.
func (o options) config() (imageproc.Config, error) {
	cfg := imageproc.DefaultConfig("")
	if o.profile != "" {
		p, err := imageproc.LoadConfig(o.profile)
		if err != nil {
			return imageproc.Config{}, err
		}
		cfg = p
	}

	if o.setFlags["text"] || cfg.Text == "" {
		cfg.Text = o.text
	}
	if o.setFlags["mode"] {
		mode, err := imageproc.ParseBlendMode(o.mode)
		if err != nil {
			return imageproc.Config{}, err
		}
		cfg.Blend = mode
	}
	if o.setFlags["font-size"] {
		cfg.FontSize = o.fontSize
	}
	if o.setFlags["rotation"] {
		cfg.Rotation = o.rotation
	}
	return cfg, cfg.Validate()
}

func (o options) provider() fonts.Provider {
	dirs := fonts.SystemDirs()
	if o.fontDirs != "" {
		dirs = strings.Split(o.fontDirs, string(os.PathListSeparator))
	}
	return fonts.Chain{fonts.DirProvider{Dirs: dirs}, fonts.Fallback(fonts.GoFonts{}, "Go")}
}

func run(o options) error {
	cfg, err := o.config()
	if err != nil {
		return err
	}
	style, err := fonts.ParseStyle(o.style)
	if err != nil {
		return fmt.Errorf("%w: %w", imageproc.ErrConfiguration, err)
	}

	loader, err := fonts.NewLoader(o.provider(), 1)
	if err != nil {
		return err
	}
	face, err := loader.Face(o.family, style, cfg.FontSize)
	if err != nil {
		return err
	}
	defer face.Close()

	wm, err := imageproc.New(face, cfg)
	if err != nil {
		return err
	}

	img, err := imageproc.Open(o.input)
	if err != nil {
		return err
	}
	b := img.Bounds()
	zlog.Logger.Info().Int("w", b.Dx()).Int("h", b.Dy()).Str("path", o.input).Msg("found image")

	out, err := wm.Apply(imageproc.Fit(img, o.maxW, o.maxH))
	if err != nil {
		return err
	}
	if err := imageproc.Save(out, o.output); err != nil {
		return err
	}

	zlog.Logger.Info().Str("path", o.output).Str("blend", cfg.Blend.String()).Msg("watermark written")
	return nil
}

func main() {
	zlog.InitConsole()

	o, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		os.Exit(2)
	}
	if err := zlog.SetLevel(o.logLevel); err != nil {
		zlog.Logger.Fatal().Err(err).Msg("invalid log level")
	}

	if err := run(o); err != nil {
		zlog.Logger.Fatal().Err(err).Msg("watermarking failed")
	}
}
