package convert

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultToneCurve maps CK2 topology gray levels onto the CK3 heightmap
// range. Pairs of input and output levels, both in 0..1.
const DefaultToneCurve = "0 0 0.11609779916158537 0 0.16708812351795393 0 " +
	"0.24117917936991867 0 0.32469172187931633 0.0047780102825537574 " +
	"0.35372965142045404 0.048227133620360574 0.36996233015322161 0.056717994885567058 " +
	"0.3800659077336252 0.088662127213393171 0.48523363988043861 0.18455742111106588 " +
	"0.6546260264696997 0.32451771881620761 0.87591033429730669 0.46060741678210571 " +
	"0.97367036352794567 0.62462249086090704 0.99824867145155827 1"

// CurvePoint maps input level X to output level Y, both in 0..255.
type CurvePoint struct {
	X, Y int
}

// ToneCurve is a piecewise linear gray-level mapping.
type ToneCurve []CurvePoint

// ParseToneCurve parses space-separated input/output pairs in 0..1. Points
// are scaled to 0..255 and sorted; (0,0) and (255,255) are added when no
// point has that input, and of several points with one input the lowest
// output is kept.
func ParseToneCurve(s string) (ToneCurve, error) {
	fields := strings.Fields(s)
	if len(fields)%2 != 0 {
		return nil, fmt.Errorf("tone curve: odd number of values (%d)", len(fields))
	}

	curve := make(ToneCurve, 0, len(fields)/2+2)
	for i := 0; i < len(fields); i += 2 {
		x, err := level(fields[i])
		if err != nil {
			return nil, err
		}
		y, err := level(fields[i+1])
		if err != nil {
			return nil, err
		}
		curve = append(curve, CurvePoint{X: x, Y: y})
	}
	sort.Slice(curve, func(i, j int) bool {
		if curve[i].X != curve[j].X {
			return curve[i].X < curve[j].X
		}
		return curve[i].Y < curve[j].Y
	})

	if len(curve) == 0 || curve[0].X != 0 {
		curve = append(ToneCurve{{0, 0}}, curve...)
	}
	if curve[len(curve)-1].X != 255 {
		curve = append(curve, CurvePoint{255, 255})
	}

	out := curve[:1]
	for _, p := range curve[1:] {
		if p.X != out[len(out)-1].X {
			out = append(out, p)
		}
	}
	return out, nil
}

func mustParseToneCurve(s string) ToneCurve {
	c, err := ParseToneCurve(s)
	if err != nil {
		panic(err)
	}
	return c
}

func level(s string) (int, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("tone curve: %w", err)
	}
	if f < 0 || f > 1 {
		return 0, fmt.Errorf("tone curve: level %s outside 0..1", s)
	}
	return int(f * 255), nil
}

// LUT returns the 256-entry lookup table of the curve, interpolating
// linearly between points. Inputs outside the points take the nearest
// endpoint's output. An empty curve is the identity.
func (c ToneCurve) LUT() [256]uint8 {
	var lut [256]uint8
	if len(c) == 0 {
		for i := range lut {
			lut[i] = uint8(i)
		}
		return lut
	}

	j := 0
	for x := 0; x < 256; x++ {
		for j < len(c)-1 && c[j+1].X <= x {
			j++
		}
		var y float64
		switch {
		case x <= c[0].X:
			y = float64(c[0].Y)
		case j == len(c)-1:
			y = float64(c[j].Y)
		default:
			p, q := c[j], c[j+1]
			y = float64(p.Y) + float64(q.Y-p.Y)*float64(x-p.X)/float64(q.X-p.X)
		}
		lut[x] = uint8(min(max(int(y), 0), 255))
	}
	return lut
}

// UnmarshalYAML reads a curve written as a string of pairs.
func (c *ToneCurve) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	curve, err := ParseToneCurve(s)
	if err != nil {
		return err
	}
	*c = curve
	return nil
}
