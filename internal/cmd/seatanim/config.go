package seatanim

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/srgjo27/seat_animation/internal/core/domain"
)

const (
	CmdDeploy  = "deploy"
	CmdVerify  = "verify"
	CmdStatus  = "status"
	CmdCleanup = "cleanup"
	CmdPreview = "preview"
	CmdLookup  = "lookup"
	CmdExpire  = "expire"
	CmdMigrate = "migrate"
)

// Config holds one parsed seatanim invocation.
type Config struct {
	Command string

	Animation string
	Frames    int
	FPS       float64
	Primary   string
	Secondary string
	Flash     string
	EventType string

	Rows  int
	Seats int
	Shape string

	StartIn time.Duration
	StartAt string
	DryRun  bool

	Row  int
	Seat int

	Keep             string
	Packages         bool
	PackageAnimation string
	InactiveConfigs  bool
}

// NeedsStore reports whether the command talks to the document store.
func (c Config) NeedsStore() bool {
	return c.Command != CmdPreview && !(c.Command == CmdDeploy && c.DryRun)
}

func Usage(w io.Writer) {
	fmt.Fprintln(w, "usage: seatanim <command> [flags]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "commands:")
	fmt.Fprintln(w, "  deploy   build and write an animation for a seat grid")
	fmt.Fprintln(w, "  verify   read a deployment back and check every seat")
	fmt.Fprintln(w, "  status   show configs, animations and playback state")
	fmt.Fprintln(w, "  cleanup  delete animations, seat packages and inactive configs")
	fmt.Fprintln(w, "  preview  print one seat's frames without touching the store")
	fmt.Fprintln(w, "  lookup   show one seat's package")
	fmt.Fprintln(w, "  expire   mark finished seat packages expired")
	fmt.Fprintln(w, "  migrate  move a flat-map animation into per-seat subcollection documents")
	fmt.Fprintf(w, "\nanimations: %s\n", strings.Join(domain.PresetNames(), ", "))
}

// ParseConfig parses the subcommand and its flags.
func ParseConfig(args []string, errOut io.Writer) (Config, error) {
	if len(args) == 0 {
		return Config{}, errors.New("missing command")
	}

	cfg := Config{Command: args[0]}
	fs := flag.NewFlagSet("seatanim "+cfg.Command, flag.ContinueOnError)
	fs.SetOutput(errOut)

	switch cfg.Command {
	case CmdDeploy, CmdVerify, CmdPreview:
		fs.StringVar(&cfg.Animation, "animation", domain.PresetCheckerboardFlash, "animation name")
		fs.IntVar(&cfg.Frames, "frames", 0, "override frame count (0 = animation default)")
		fs.Float64Var(&cfg.FPS, "fps", 0, "override frame rate in Hz (0 = animation default)")
		fs.StringVar(&cfg.Primary, "primary", "", "checkerboard odd-seat color (name or r,g,b)")
		fs.StringVar(&cfg.Secondary, "secondary", "", "checkerboard even-seat color (name or r,g,b)")
		fs.StringVar(&cfg.Flash, "flash", "", "uniform flash color (name or r,g,b)")
		fs.StringVar(&cfg.EventType, "event-type", "", "event type stored with the deployment")
	case CmdStatus, CmdCleanup, CmdLookup, CmdExpire:
	case CmdMigrate:
		fs.StringVar(&cfg.Animation, "animation", domain.PresetCheckerboardFlash, "animation id to migrate")
		fs.BoolVar(&cfg.DryRun, "dry-run", false, "report the seats that would move")
	default:
		return Config{}, fmt.Errorf("unknown command %q", cfg.Command)
	}

	switch cfg.Command {
	case CmdDeploy, CmdVerify:
		fs.IntVar(&cfg.Rows, "rows", 10, "number of rows")
		fs.IntVar(&cfg.Seats, "seats", 10, "seats per row")
		fs.StringVar(&cfg.Shape, "shape", string(domain.ShapePackagePerSeat), "persistence shape (flat-map, subcollection, package-per-seat)")
	}

	switch cfg.Command {
	case CmdDeploy:
		fs.DurationVar(&cfg.StartIn, "start-in", 2*time.Minute, "start the animation this long from now")
		fs.StringVar(&cfg.StartAt, "start-at", "", "absolute start time (RFC 3339), overrides -start-in")
		fs.BoolVar(&cfg.DryRun, "dry-run", false, "build the documents without writing them")
	case CmdPreview, CmdLookup:
		fs.IntVar(&cfg.Row, "row", 1, "seat row")
		fs.IntVar(&cfg.Seat, "seat", 1, "seat number")
	case CmdCleanup:
		fs.StringVar(&cfg.Keep, "keep", "", "comma-separated animation ids to keep")
		fs.BoolVar(&cfg.Packages, "packages", false, "also delete seat packages")
		fs.StringVar(&cfg.PackageAnimation, "package-animation", "", "only delete packages of this animation")
		fs.BoolVar(&cfg.InactiveConfigs, "configs", false, "also delete inactive animation configs")
		fs.BoolVar(&cfg.DryRun, "dry-run", false, "report what would be deleted")
	}

	if err := fs.Parse(args[1:]); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Spec resolves the animation and applies flag overrides.
func (c Config) Spec(defaultEventType string) (domain.AnimationSpec, error) {
	spec, err := domain.Preset(c.Animation)
	if err != nil {
		return domain.AnimationSpec{}, err
	}

	if c.Frames != 0 {
		spec.FrameCount = c.Frames
	}

	if c.FPS != 0 {
		spec.FrameRateHz = c.FPS
	}

	for _, o := range []struct {
		raw string
		dst *domain.Color
	}{
		{c.Primary, &spec.Primary},
		{c.Secondary, &spec.Secondary},
		{c.Flash, &spec.Flash},
	} {
		if o.raw == "" {
			continue
		}

		col, err := ParseColor(o.raw)
		if err != nil {
			return domain.AnimationSpec{}, err
		}
		*o.dst = col
	}

	spec.EventType = defaultEventType
	if c.EventType != "" {
		spec.EventType = c.EventType
	}

	return spec, spec.Validate()
}

func (c Config) Grid() domain.SeatGrid {
	return domain.SeatGrid{Rows: c.Rows, Seats: c.Seats}
}

// StartTime resolves -start-at, falling back to now + -start-in.
func (c Config) StartTime(now time.Time) (time.Time, error) {
	if c.StartAt != "" {
		t, err := domain.ParseTimestamp(c.StartAt)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid -start-at: %w", err)
		}
		return t, nil
	}

	return now.Add(c.StartIn).UTC().Truncate(time.Second), nil
}

func (c Config) KeepList() []string {
	var out []string
	for _, id := range strings.Split(c.Keep, ",") {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, id)
		}
	}

	return out
}

var namedColors = map[string]domain.Color{
	"black": domain.Black,
	"red":   domain.Red,
	"blue":  domain.Blue,
	"green": {G: 255},
	"white": {R: 255, G: 255, B: 255},
}

// ParseColor accepts a color name or "r,g,b".
func ParseColor(s string) (domain.Color, error) {
	if c, ok := namedColors[strings.ToLower(strings.TrimSpace(s))]; ok {
		return c, nil
	}

	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return domain.Color{}, fmt.Errorf("invalid color %q: want a name or r,g,b", s)
	}

	var ch [3]uint8
	for i, p := range parts {
		n, err := strconv.ParseUint(strings.TrimSpace(p), 10, 8)
		if err != nil {
			return domain.Color{}, fmt.Errorf("invalid color %q: %w", s, err)
		}
		ch[i] = uint8(n)
	}

	return domain.Color{R: ch[0], G: ch[1], B: ch[2]}, nil
}
