package domain

import (
	"fmt"
	"strconv"
	"strings"
)

type Color struct {
	R uint8
	G uint8
	B uint8
}

var (
	Black = Color{}
	Red   = Color{R: 255}
	Blue  = Color{B: 255}
)

const colorRefPrefix = "color_"

// FrameRef is the string form used in package documents, e.g. "color_255_0_0".
func (c Color) FrameRef() string {
	return fmt.Sprintf("%s%d_%d_%d", colorRefPrefix, c.R, c.G, c.B)
}

func (c Color) Fields() map[string]any {
	return map[string]any{
		"r": int64(c.R),
		"g": int64(c.G),
		"b": int64(c.B),
	}
}

func ParseColorRef(ref string) (Color, error) {
	rest, ok := strings.CutPrefix(ref, colorRefPrefix)
	if !ok {
		return Color{}, fmt.Errorf("%w: color ref %q", ErrMalformedDocument, ref)
	}

	parts := strings.Split(rest, "_")
	if len(parts) != 3 {
		return Color{}, fmt.Errorf("%w: color ref %q", ErrMalformedDocument, ref)
	}

	var ch [3]uint8
	for i, p := range parts {
		n, err := strconv.ParseUint(p, 10, 8)
		if err != nil {
			return Color{}, fmt.Errorf("%w: color ref %q: %v", ErrMalformedDocument, ref, err)
		}
		ch[i] = uint8(n)
	}

	return Color{R: ch[0], G: ch[1], B: ch[2]}, nil
}

// ColorFromFields decodes a {r, g, b} map as written by Fields. Integral
// float64 channels are accepted since JSON-backed stores return numbers that way.
func ColorFromFields(v any) (Color, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return Color{}, fmt.Errorf("%w: color is %T, want map", ErrMalformedDocument, v)
	}

	var ch [3]uint8
	for i, key := range []string{"r", "g", "b"} {
		n, err := channel(m[key])
		if err != nil {
			return Color{}, fmt.Errorf("%w: channel %s: %v", ErrMalformedDocument, key, err)
		}
		ch[i] = n
	}

	return Color{R: ch[0], G: ch[1], B: ch[2]}, nil
}

func channel(v any) (uint8, error) {
	n, ok := AsInt64(v)
	if !ok {
		return 0, fmt.Errorf("not an integer: %v", v)
	}

	if n < 0 || n > 255 {
		return 0, fmt.Errorf("out of range: %d", n)
	}

	return uint8(n), nil
}

// AsInt64 converts the numeric representations document stores hand back.
func AsInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case float64:
		if n != float64(int64(n)) {
			return 0, false
		}
		return int64(n), true
	default:
		return 0, false
	}
}

// AsFloat64 converts any numeric field value to float64.
func AsFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}
