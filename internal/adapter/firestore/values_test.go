package firestore

import (
	"encoding/json"
	"testing"

	"github.com/srgjo27/seat_animation/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeFields(t *testing.T) {
	in := domain.Fields{
		"animationId": "checkboard_flash",
		"frameCount":  int64(20),
		"frameRate":   2.5,
		"isActive":    true,
		"missing":     nil,
		"colors":      []any{domain.Red.Fields(), domain.Black.Fields()},
		"animationData": map[string]any{
			"type": "color_animation",
		},
	}

	enc, err := encodeFields(in)
	require.NoError(t, err)

	raw, err := json.Marshal(enc)
	require.NoError(t, err)

	var wire map[string]wireValue
	require.NoError(t, json.Unmarshal(raw, &wire))

	out, err := decodeFields(wire)
	require.NoError(t, err)

	assert.Equal(t, in, out)
}

func TestEncodeValue_Unsupported(t *testing.T) {
	_, err := encodeFields(domain.Fields{"ch": make(chan int)})
	assert.ErrorContains(t, err, "field ch")
}

func TestDecodeValue_BadInteger(t *testing.T) {
	s := "twenty"
	_, err := decodeValue(wireValue{IntegerValue: &s})
	assert.Error(t, err)
}
