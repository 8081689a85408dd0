package hexdump

import "github.com/Moonlight-Companies/gologger/coloransi"

// Palette selects the colors of a dump.
type Palette struct {
	Offset       coloransi.ColorCode
	Hex          coloransi.ColorCode
	Zero         coloransi.ColorCode
	NonPrintable coloransi.ColorCode
	Pointer      coloransi.ColorCode

	// marked bytes are drawn Highlight on HighlightBackground
	Highlight           coloransi.ColorCode
	HighlightBackground coloransi.ColorCode
}

// DefaultPalette is used when Options.Palette is left empty.
var DefaultPalette = Palette{
	Offset:              coloransi.Cyan,
	Hex:                 coloransi.Green,
	Zero:                coloransi.BrightBlack,
	NonPrintable:        coloransi.Red,
	Pointer:             coloransi.Yellow,
	Highlight:           coloransi.Black,
	HighlightBackground: coloransi.Yellow,
}

// painter applies a palette, or nothing when color is off.
type painter struct {
	on bool
	Palette
}

func newPainter(opts Options) painter {
	p := painter{on: opts.Color, Palette: opts.Palette}
	if p.Palette == (Palette{}) {
		p.Palette = DefaultPalette
	}
	return p
}

func (p painter) fg(c coloransi.ColorCode, s string) string {
	if !p.on {
		return s
	}
	return coloransi.Foreground(c, s)
}

func (p painter) mark(s string) string {
	if !p.on {
		return s
	}
	return coloransi.Color(p.Highlight, p.HighlightBackground, s)
}
