package imop

import "github.com/esimov/icoforge/utils"

// Mode is a separable blend mode applied to the source colour before composition.
type Mode string

const (
	Normal   Mode = "normal"
	Darken   Mode = "darken"
	Lighten  Mode = "lighten"
	Multiply Mode = "multiply"
	Screen   Mode = "screen"
	Overlay  Mode = "overlay"
)

var modes = []Mode{Normal, Darken, Lighten, Multiply, Screen, Overlay}

// Valid reports whether m is one of the supported blend modes.
func (m Mode) Valid() bool {
	for _, v := range modes {
		if v == m {
			return true
		}
	}
	return false
}

// blendChannel mixes a backdrop channel cb with a source channel cs, both in [0, 1].
func blendChannel(mode Mode, cb, cs float64) float64 {
	switch mode {
	case Darken:
		return utils.Min(cb, cs)
	case Lighten:
		return utils.Max(cb, cs)
	case Multiply:
		return cb * cs
	case Screen:
		return cb + cs - cb*cs
	case Overlay:
		// Overlay is hard light with the layers swapped.
		if cb <= 0.5 {
			return 2 * cb * cs
		}
		return 1 - 2*(1-cb)*(1-cs)
	default:
		return cs
	}
}
