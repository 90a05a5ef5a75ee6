package firestore

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/srgjo27/seat_animation/internal/core/domain"
)

// encodeFields converts a document payload into Firestore's typed value map.
func encodeFields(fields domain.Fields) (map[string]any, error) {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		enc, err := encodeValue(v)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", k, err)
		}
		out[k] = enc
	}

	return out, nil
}

func encodeValue(v any) (map[string]any, error) {
	switch t := v.(type) {
	case nil:
		return map[string]any{"nullValue": nil}, nil
	case string:
		return map[string]any{"stringValue": t}, nil
	case bool:
		return map[string]any{"booleanValue": t}, nil
	case int:
		return map[string]any{"integerValue": strconv.FormatInt(int64(t), 10)}, nil
	case int32:
		return map[string]any{"integerValue": strconv.FormatInt(int64(t), 10)}, nil
	case int64:
		return map[string]any{"integerValue": strconv.FormatInt(t, 10)}, nil
	case uint8:
		return map[string]any{"integerValue": strconv.FormatInt(int64(t), 10)}, nil
	case float64:
		return map[string]any{"doubleValue": t}, nil
	case time.Time:
		return map[string]any{"timestampValue": t.UTC().Format(time.RFC3339Nano)}, nil
	case []string:
		values := make([]any, len(t))
		for i, s := range t {
			values[i] = map[string]any{"stringValue": s}
		}
		return map[string]any{"arrayValue": map[string]any{"values": values}}, nil
	case []any:
		values := make([]any, len(t))
		for i, item := range t {
			enc, err := encodeValue(item)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			values[i] = enc
		}
		return map[string]any{"arrayValue": map[string]any{"values": values}}, nil
	case map[string]any:
		fields, err := encodeFields(t)
		if err != nil {
			return nil, err
		}
		return map[string]any{"mapValue": map[string]any{"fields": fields}}, nil
	case domain.Fields:
		fields, err := encodeFields(t)
		if err != nil {
			return nil, err
		}
		return map[string]any{"mapValue": map[string]any{"fields": fields}}, nil
	}

	return nil, fmt.Errorf("unsupported value type %T", v)
}

type wireValue struct {
	StringValue    *string         `json:"stringValue"`
	IntegerValue   *string         `json:"integerValue"`
	DoubleValue    *float64        `json:"doubleValue"`
	BooleanValue   *bool           `json:"booleanValue"`
	TimestampValue *string         `json:"timestampValue"`
	ArrayValue     *wireArray      `json:"arrayValue"`
	MapValue       *wireMap        `json:"mapValue"`
	NullValue      json.RawMessage `json:"nullValue"`
}

type wireArray struct {
	Values []wireValue `json:"values"`
}

type wireMap struct {
	Fields map[string]wireValue `json:"fields"`
}

func decodeFields(fields map[string]wireValue) (domain.Fields, error) {
	out := make(domain.Fields, len(fields))
	for k, v := range fields {
		dec, err := decodeValue(v)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", k, err)
		}
		out[k] = dec
	}

	return out, nil
}

func decodeValue(v wireValue) (any, error) {
	switch {
	case v.StringValue != nil:
		return *v.StringValue, nil
	case v.IntegerValue != nil:
		n, err := strconv.ParseInt(*v.IntegerValue, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("integer value %q: %w", *v.IntegerValue, err)
		}
		return n, nil
	case v.DoubleValue != nil:
		return *v.DoubleValue, nil
	case v.BooleanValue != nil:
		return *v.BooleanValue, nil
	case v.TimestampValue != nil:
		return *v.TimestampValue, nil
	case v.ArrayValue != nil:
		out := make([]any, len(v.ArrayValue.Values))
		for i, item := range v.ArrayValue.Values {
			dec, err := decodeValue(item)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			out[i] = dec
		}
		return out, nil
	case v.MapValue != nil:
		m := make(map[string]any, len(v.MapValue.Fields))
		for k, item := range v.MapValue.Fields {
			dec, err := decodeValue(item)
			if err != nil {
				return nil, fmt.Errorf("key %s: %w", k, err)
			}
			m[k] = dec
		}
		return m, nil
	case v.NullValue != nil:
		return nil, nil
	}

	return nil, fmt.Errorf("unrecognised firestore value")
}
