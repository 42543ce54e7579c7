package properties

import "math"

var (
	ZeroPixels = Dimension{Unit: Px}

	// How many CSS pixels is one <unit>?
	// http://www.w3.org/TR/CSS21/syndata.html#length-units
	LengthsToPixels = map[Unit]Fl{
		Px: 1,
		Pt: 1. / 0.75,
		Pc: 16.,             // LengthsToPixels["pt"] * 12
		In: 96.,             // LengthsToPixels["pt"] * 72
		Cm: 96. / 2.54,      // LengthsToPixels["in"] / 2.54
		Mm: 96. / 25.4,      // LengthsToPixels["in"] / 25.4
		Q:  96. / 25.4 / 4., // LengthsToPixels[Mm] / 4
	}

	// Value in radians of one <unit>.
	AnglesToRadians = map[Unit]Fl{
		Rad:  1,
		Turn: 2 * math.Pi,
		Deg:  math.Pi / 180,
		Grad: math.Pi / 200,
	}

	// Value in pixels of font-size for <absolute-size> keywords: 12pt (16px) for
	// medium, and scaling factors given in CSS3 for others:
	// http://www.w3.org/TR/css3-fonts/#font-size-prop
	FontSizeKeywords = map[string]Fl{ // medium is 16px, others are a ratio of medium
		"xx-small": 16 * 3 / 5.,
		"x-small":  16 * 3 / 4.,
		"small":    16 * 8 / 9.,
		"medium":   16 * 1 / 1.,
		"large":    16 * 6 / 5.,
		"x-large":  16 * 3 / 2.,
		"xx-large": 16 * 2 / 1.,
	}
	FontSizeKeywordsOrder = []string{"xx-small", "x-small", "small", "medium", "large", "x-large", "xx-large"}

	// http://www.w3.org/TR/css3-background/#border-width
	BorderWidthKeywords = map[string]Fl{
		"thin":   1,
		"medium": 3,
		"thick":  5,
	}

	// http://www.w3.org/TR/css3-page/#size
	PageSizes = map[string]Point{
		"a5":     {Dimension{Value: 148, Unit: Mm}, Dimension{Value: 210, Unit: Mm}},
		"a4":     {Dimension{Value: 210, Unit: Mm}, Dimension{Value: 297, Unit: Mm}},
		"a3":     {Dimension{Value: 297, Unit: Mm}, Dimension{Value: 420, Unit: Mm}},
		"letter": {Dimension{Value: 8.5, Unit: In}, Dimension{Value: 11, Unit: In}},
		"legal":  {Dimension{Value: 8.5, Unit: In}, Dimension{Value: 14, Unit: In}},
	}
)
