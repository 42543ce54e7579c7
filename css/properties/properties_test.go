package properties

import (
	"testing"

	kw "github.com/benoitkugler/vformat/css/properties/keywords"
	"github.com/stretchr/testify/assert"
)

func TestInitialValues(t *testing.T) {
	for p := KnownProp(1); p < NbProps; p++ {
		v, ok := InitialValues[p]
		assert.True(t, ok, "missing initial value for %s", p)
		assert.NotNil(t, v)
		assert.Equal(t, p, PropsFromNames[p.String()])
	}
	assert.Len(t, PropsFromNames, int(NbProps)-1)
}

func TestSides(t *testing.T) {
	assert.Equal(t, PMarginTop, Margin(STop))
	assert.Equal(t, PPaddingLeft, Padding(SLeft))
	assert.Equal(t, PBorderBottomWidth, BorderWidth(SBottom))
	assert.Equal(t, PBorderRightColor, BorderColor(SRight))
	assert.Equal(t, PBorderLeftStyle, BorderStyle(SLeft))
}

func TestBlockify(t *testing.T) {
	for _, test := range []struct {
		in, out Display
	}{
		{Display{Outer: "inline", Inner: "flow"}, Display{Outer: "block", Inner: "flow"}},
		{Display{Outer: "inline", Inner: "flex"}, Display{Outer: "block", Inner: "flex"}},
		{Display{Outer: "inline", Inner: "flow-root"}, Display{Outer: "block", Inner: "flow-root"}},
		{Display{Inner: "table-cell"}, Display{Outer: "block", Inner: "flow"}},
		{Display{Inner: "none"}, Display{Inner: "none"}},
		{Display{Outer: "block", Inner: "flow", ListItem: true}, Display{Outer: "block", Inner: "flow", ListItem: true}},
	} {
		assert.Equal(t, test.out, test.in.Blockify())
	}
}

func TestStyleFingerprint(t *testing.T) {
	s1, s2 := NewInitialStyle(), NewInitialStyle()
	assert.Equal(t, s1.Fingerprint(), s2.Fingerprint())
	assert.True(t, s1.Equal(s2))

	s2.SetWidth(FToV(10))
	assert.NotEqual(t, s1.Fingerprint(), s2.Fingerprint())
	assert.False(t, s1.Equal(s2))

	s1.SetColor(NewColor(1, 0, 0, 1))
	s1.SetPosition(kw.Absolute)
	child := InheritFrom(s1)
	assert.Equal(t, s1.GetColor(), child.GetColor())
	assert.Equal(t, kw.Static, child.GetPosition())
}

func TestUnits(t *testing.T) {
	assert.Equal(t, Px, NewUnit("px"))
	assert.Equal(t, Vmin, NewUnit("vmin"))
	assert.Equal(t, Unit(0), NewUnit(""))
	assert.True(t, Rem.IsFontRelative())
	assert.True(t, Cm.IsAbsolute())
	assert.False(t, Perc.IsLength())
	assert.Equal(t, "12.5px", Dimension{12.5, Px}.String())
	assert.Equal(t, "auto", SToV("auto").String())
}
