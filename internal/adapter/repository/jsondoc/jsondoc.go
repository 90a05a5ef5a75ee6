// Package jsondoc serialises document payloads for the JSON-backed stores
// (Postgres JSONB and Redis strings) without losing the integer/float split.
package jsondoc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/srgjo27/seat_animation/internal/core/domain"
)

func Encode(fields domain.Fields) ([]byte, error) {
	if fields == nil {
		fields = domain.Fields{}
	}

	raw, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}

	return raw, nil
}

// Decode restores integral numbers as int64 and the rest as float64.
func Decode(raw []byte) (domain.Fields, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}

	out := make(domain.Fields, len(m))
	for k, v := range m {
		out[k] = normalise(v)
	}

	return out, nil
}

func normalise(v any) any {
	switch t := v.(type) {
	case json.Number:
		s := t.String()
		if !strings.ContainsAny(s, ".eE") {
			if n, err := t.Int64(); err == nil {
				return n
			}
		}
		f, _ := t.Float64()
		return f
	case map[string]any:
		for k, inner := range t {
			t[k] = normalise(inner)
		}
		return t
	case []any:
		for i, inner := range t {
			t[i] = normalise(inner)
		}
		return t
	default:
		return v
	}
}
