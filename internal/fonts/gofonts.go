package fonts

import (
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/gofont/gosmallcaps"
	"golang.org/x/image/font/gofont/gosmallcapsitalic"
)

// GoFonts serves the Go font family embedded in golang.org/x/image.
// Families: "Go", "Go Mono" and "Go Smallcaps".
type GoFonts struct{}

func (GoFonts) Load(family string, style Style) ([]byte, int, error) {
	switch fam := normalizeFamily(family); {
	case fam == "gomono" || (fam == "go" && style&Mono != 0):
		switch style &^ Mono {
		case Regular:
			return gomono.TTF, 0, nil
		case Bold:
			return gomonobold.TTF, 0, nil
		case Italic:
			return gomonoitalic.TTF, 0, nil
		default:
			return gomonobolditalic.TTF, 0, nil
		}

	case fam == "gosmallcaps" && style&(Bold|Mono) == 0:
		if style&Italic != 0 {
			return gosmallcapsitalic.TTF, 0, nil
		}
		return gosmallcaps.TTF, 0, nil

	case fam == "go" || fam == "":
		switch style {
		case Regular:
			return goregular.TTF, 0, nil
		case Bold:
			return gobold.TTF, 0, nil
		case Italic:
			return goitalic.TTF, 0, nil
		case Bold | Italic:
			return gobolditalic.TTF, 0, nil
		}
	}
	return nil, 0, notFound(family, style)
}
