package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSeatID(t *testing.T) {
	c, err := ParseSeatID("user_4_12")
	require.NoError(t, err)
	assert.Equal(t, SeatCoordinate{Row: 4, Seat: 12}, c)
	assert.Equal(t, "user_4_12", c.ID())

	for _, id := range []string{"", "seat_1_1", "user_1", "user_1_2_3", "user_0_1", "user_1_-1", "user_01_2", "user_a_b", "user_+1_2", "user_1_+2", "user_1_2 "} {
		_, err := ParseSeatID(id)
		assert.ErrorIs(t, err, ErrInvalidCoordinate, id)
	}
}

func TestSeatGrid(t *testing.T) {
	g := SeatGrid{Rows: 2, Seats: 3}
	require.NoError(t, g.Validate())
	assert.Equal(t, 6, g.Size())

	coords := g.Coordinates()
	require.Len(t, coords, 6)
	assert.Equal(t, SeatCoordinate{Row: 1, Seat: 1}, coords[0])
	assert.Equal(t, SeatCoordinate{Row: 1, Seat: 2}, coords[1])
	assert.Equal(t, SeatCoordinate{Row: 2, Seat: 3}, coords[5])

	assert.True(t, g.Contains(SeatCoordinate{Row: 2, Seat: 3}))
	assert.False(t, g.Contains(SeatCoordinate{Row: 3, Seat: 1}))

	assert.ErrorIs(t, SeatGrid{Rows: 0, Seats: 5}.Validate(), ErrInvalidCoordinate)
	assert.Zero(t, SeatGrid{Rows: -1, Seats: 5}.Size())
}

func TestTimestamps(t *testing.T) {
	ts := time.Date(2025, 1, 1, 0, 0, 10, 0, time.FixedZone("WIB", 7*3600))
	assert.Equal(t, "2024-12-31T17:00:10Z", FormatTimestamp(ts))

	for _, s := range []string{"2025-01-01T00:00:10Z", "2025-01-01T00:00:10", "2025-01-01T07:00:10+07:00", "2025-01-01T00:00:10.000000"} {
		got, err := ParseTimestamp(s)
		require.NoError(t, err, s)
		assert.True(t, got.Equal(time.Date(2025, 1, 1, 0, 0, 10, 0, time.UTC)), s)
		assert.Equal(t, time.UTC, got.Location())
	}

	_, err := ParseTimestamp("tomorrow")
	assert.ErrorIs(t, err, ErrMalformedDocument)
}

func TestPlayback(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(10 * time.Second)

	assert.Equal(t, PlaybackScheduled, Playback(start.Add(-time.Second), start, end))
	assert.Equal(t, PlaybackPlaying, Playback(start, start, end))
	assert.Equal(t, PlaybackFinished, Playback(end, start, end))
}

func TestParseStoredRef(t *testing.T) {
	f, err := ParseStoredRef("color_255_0_0")
	require.NoError(t, err)
	assert.Equal(t, Red, f.Color)
	assert.False(t, f.IsRef())

	f, err = ParseStoredRef("frame_007")
	require.NoError(t, err)
	assert.Equal(t, "frame_007", f.StoredRef())
	assert.Equal(t, "frame_007", FrameRefFor(7))

	for _, ref := range []string{"color_256_0_0", "color_1_2", "frame_07", "frame_abc", "sparkle"} {
		_, err := ParseStoredRef(ref)
		assert.ErrorIs(t, err, ErrMalformedDocument, ref)
	}
}

func TestColorFromFields(t *testing.T) {
	c, err := ColorFromFields(map[string]any{"r": 10.0, "g": int64(20), "b": 30})
	require.NoError(t, err)
	assert.Equal(t, Color{R: 10, G: 20, B: 30}, c)

	bad := []any{
		"red",
		map[string]any{"r": 1.5, "g": 0, "b": 0},
		map[string]any{"r": 300, "g": 0, "b": 0},
		map[string]any{"r": 0, "g": 0},
	}
	for _, v := range bad {
		_, err := ColorFromFields(v)
		assert.ErrorIs(t, err, ErrMalformedDocument)
	}
}

func TestDecodeSeatFields_Errors(t *testing.T) {
	coord := SeatCoordinate{Row: 1, Seat: 1}

	tests := map[string]map[string]any{
		"empty":            {},
		"colors not list":  {"colors": "red"},
		"frames not list":  {"frames": 3},
		"frame not string": {"frames": []any{1}},
		"bad color":        {"colors": []any{map[string]any{"r": -1, "g": 0, "b": 0}}},
	}

	for name, fields := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeSeatFields(coord, fields)
			assert.ErrorIs(t, err, ErrMalformedDocument)
		})
	}
}

func TestDecodeFlatMap_Errors(t *testing.T) {
	_, err := DecodeFlatMap(Fields{})
	assert.ErrorIs(t, err, ErrMalformedDocument)

	_, err = DecodeFlatMap(Fields{"users": map[string]any{"row1": map[string]any{"frames": []any{}}}})
	assert.ErrorIs(t, err, ErrInvalidCoordinate)

	_, err = DecodeFlatMap(Fields{"users": map[string]any{
		"user_1_2":  map[string]any{"frames": []any{"frame_000"}},
		"user_+1_2": map[string]any{"frames": []any{"frame_000"}},
	}})
	assert.ErrorIs(t, err, ErrInvalidCoordinate)

	seqs, err := DecodeFlatMap(Fields{"users": map[string]any{
		"user_2_1": map[string]any{"frames": []any{"frame_000"}},
		"user_1_2": map[string]any{"frames": []any{"frame_000"}},
	}})
	require.NoError(t, err)
	require.Len(t, seqs, 2)
	assert.Equal(t, SeatCoordinate{Row: 1, Seat: 2}, seqs[0].Coord)
}

func TestPreset(t *testing.T) {
	spec, err := Preset(PresetCheckerboardFlash)
	require.NoError(t, err)
	assert.Equal(t, KindCheckerboard, spec.Kind)
	assert.Equal(t, 10*time.Second, spec.Duration())
	assert.Equal(t, "color_animation", spec.DocumentType())

	spec, err = Preset("wave")
	require.NoError(t, err)
	assert.Equal(t, "wave_animation", spec.ID)
	assert.Equal(t, "frame_animation", spec.DocumentType())
	assert.Equal(t, "wave_horizontal", spec.PatternName())

	_, err = Preset("confetti")
	assert.ErrorIs(t, err, ErrInvalidSpec)

	assert.Equal(t, []string{"checkboard_flash", "blue_black_flash", "fireworks", "pulse", "rainbow", "wave"}, PresetNames())
}

func TestAnimationSpec_Validate(t *testing.T) {
	assert.ErrorIs(t, AnimationSpec{Kind: "spiral", FrameCount: 1, FrameRateHz: 1}.Validate(), ErrInvalidSpec)
	assert.ErrorIs(t, UniformFlashSpec("x", Blue, 0, 1).Validate(), ErrInvalidSpec)
	assert.ErrorIs(t, UniformFlashSpec("x", Blue, 1, 0).Validate(), ErrInvalidSpec)
	assert.ErrorIs(t, UniformFlashSpec("", Blue, 1, 1).ValidateForDeployment(), ErrInvalidSpec)
	assert.NoError(t, UniformFlashSpec("", Blue, 1, 1).Validate())
}

func TestAnimationConfigFromDocument(t *testing.T) {
	data := map[string]any{
		"animationId": "checkboard_flash",
		"frameRate":   int64(2),
		"frameCount":  int64(20),
	}
	c := AnimationConfigFromDocument(Document{ID: "cfg", Fields: Fields{
		"animationType":      "checkboard_flash",
		"status":             "active",
		"animationStartTime": "2025-01-01T00:00:00",
		"animationData":      data,
	}})

	assert.True(t, c.IsActive())
	assert.Equal(t, "checkboard_flash", c.AnimationType)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 10, 0, time.UTC), c.EndTime())
}

func TestSubcollectionFromFlatMap(t *testing.T) {
	users := map[string]any{
		"user_1_2": map[string]any{"frames": []any{"frame_000", "frame_001"}},
		"user_1_1": map[string]any{"frames": []any{"frame_001", "frame_000"}},
	}
	parent := Fields{
		"animationId": "wave_animation",
		"type":        "frame_animation",
		"frameCount":  int64(2),
		"frameRate":   10.0,
		"startTime":   "2025-01-01T00:00:00Z",
		"users":       users,
	}

	ws, err := SubcollectionFromFlatMap("wave_animation", parent)
	require.NoError(t, err)
	assert.NotContains(t, ws.Parent.Fields, "users")
	assert.Equal(t, "frame_animation", ws.Parent.Fields["type"])
	assert.Contains(t, parent, "users")
	require.Len(t, ws.Children, 2)
	assert.Equal(t, "user_1_1", ws.Children[0].ID)
	assert.Equal(t, SeatCollection("wave_animation"), ws.Children[0].Collection)

	delete(parent, "startTime")
	_, err = SubcollectionFromFlatMap("wave_animation", parent)
	assert.ErrorIs(t, err, ErrMalformedDocument)

	_, err = SubcollectionFromFlatMap("wave_animation", Fields{"startTime": "2025-01-01T00:00:00Z"})
	assert.ErrorIs(t, err, ErrMalformedDocument)
}
