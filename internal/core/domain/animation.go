package domain

import (
	"fmt"
	"sort"
	"time"
)

type AnimationKind string

const (
	KindCheckerboard AnimationKind = "checkerboard"
	KindUniformFlash AnimationKind = "uniform-flash"
	KindProcedural   AnimationKind = "procedural"
)

const (
	DefaultEventType = "football_stadium"

	colorAnimationType = "color_animation"
	frameAnimationType = "frame_animation"
)

// AnimationSpec describes how a seat's frame sequence is derived. Primary and
// Secondary apply to checkerboard, Flash to uniform-flash, Pattern to procedural.
type AnimationSpec struct {
	ID          string
	Kind        AnimationKind
	FrameCount  int
	FrameRateHz float64
	EventType   string
	Primary     Color
	Secondary   Color
	Flash       Color
	Pattern     string
}

func (s AnimationSpec) Validate() error {
	switch s.Kind {
	case KindCheckerboard, KindUniformFlash, KindProcedural:
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidSpec, s.Kind)
	}

	if s.FrameCount <= 0 {
		return fmt.Errorf("%w: frame count %d for %q", ErrInvalidSpec, s.FrameCount, s.ID)
	}

	if s.FrameRateHz <= 0 {
		return fmt.Errorf("%w: frame rate %v for %q", ErrInvalidSpec, s.FrameRateHz, s.ID)
	}

	return nil
}

// ValidateForDeployment additionally requires an animation id, which names
// the stored documents.
func (s AnimationSpec) ValidateForDeployment() error {
	if err := s.Validate(); err != nil {
		return err
	}

	if s.ID == "" {
		return fmt.Errorf("%w: missing animation id", ErrInvalidSpec)
	}

	return nil
}

// Duration is FrameCount / FrameRateHz.
func (s AnimationSpec) Duration() time.Duration {
	if s.FrameRateHz <= 0 {
		return 0
	}

	return time.Duration(float64(s.FrameCount) / s.FrameRateHz * float64(time.Second))
}

// DocumentType is the "type" field stored on animation documents.
func (s AnimationSpec) DocumentType() string {
	if s.Kind == KindProcedural {
		return frameAnimationType
	}

	return colorAnimationType
}

// PatternName is the "pattern" field stored on seat packages.
func (s AnimationSpec) PatternName() string {
	if s.Pattern != "" {
		return s.Pattern
	}

	return s.ID
}

// EventTypeOrDefault falls back to DefaultEventType.
func (s AnimationSpec) EventTypeOrDefault() string {
	if s.EventType != "" {
		return s.EventType
	}

	return DefaultEventType
}

func CheckerboardSpec(id string, primary, secondary Color, frameCount int, frameRateHz float64) AnimationSpec {
	return AnimationSpec{
		ID:          id,
		Kind:        KindCheckerboard,
		FrameCount:  frameCount,
		FrameRateHz: frameRateHz,
		Primary:     primary,
		Secondary:   secondary,
	}
}

func UniformFlashSpec(id string, flash Color, frameCount int, frameRateHz float64) AnimationSpec {
	return AnimationSpec{
		ID:          id,
		Kind:        KindUniformFlash,
		FrameCount:  frameCount,
		FrameRateHz: frameRateHz,
		Flash:       flash,
	}
}

type proceduralPattern struct {
	frameCount int
	frameRate  float64
	pattern    string
}

var proceduralPatterns = map[string]proceduralPattern{
	"wave":      {frameCount: 80, frameRate: 15, pattern: "wave_horizontal"},
	"rainbow":   {frameCount: 60, frameRate: 12, pattern: "rainbow_cascade"},
	"pulse":     {frameCount: 40, frameRate: 8, pattern: "pulse_radial"},
	"fireworks": {frameCount: 120, frameRate: 18, pattern: "fireworks_burst"},
}

// ProceduralSpec returns the spec for a built-in procedural animation
// (wave, rainbow, pulse, fireworks).
func ProceduralSpec(name string) (AnimationSpec, error) {
	p, ok := proceduralPatterns[name]
	if !ok {
		return AnimationSpec{}, fmt.Errorf("%w: unknown procedural animation %q", ErrInvalidSpec, name)
	}

	return AnimationSpec{
		ID:          name + "_animation",
		Kind:        KindProcedural,
		FrameCount:  p.frameCount,
		FrameRateHz: p.frameRate,
		Pattern:     p.pattern,
	}, nil
}

func ProceduralNames() []string {
	names := make([]string, 0, len(proceduralPatterns))
	for name := range proceduralPatterns {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

const (
	PresetCheckerboardFlash = "checkboard_flash"
	PresetBlueBlackFlash    = "blue_black_flash"
)

// Preset resolves a named animation: the two shipped flash animations or any
// procedural name.
func Preset(name string) (AnimationSpec, error) {
	switch name {
	case PresetCheckerboardFlash:
		spec := CheckerboardSpec(name, Red, Blue, 20, 2)
		spec.Pattern = name
		return spec, nil
	case PresetBlueBlackFlash:
		spec := UniformFlashSpec(name, Blue, 20, 2)
		spec.Pattern = name
		return spec, nil
	}

	return ProceduralSpec(name)
}

func PresetNames() []string {
	return append([]string{PresetCheckerboardFlash, PresetBlueBlackFlash}, ProceduralNames()...)
}
