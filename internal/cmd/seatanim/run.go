// Package seatanim implements the operator CLI: deploying animations to a
// seat grid, checking them and cleaning up afterwards.
package seatanim

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/srgjo27/seat_animation/internal/core/domain"
	"github.com/srgjo27/seat_animation/internal/core/services"
)

// Runner executes parsed commands. The services may be nil for commands that
// do not touch the store.
type Runner struct {
	Deployer  *services.DeploymentService
	Verifier  *services.VerificationService
	Cleaner   *services.CleanupService
	Expiry    *services.ExpiryService
	Migrator  *services.MigrationService
	EventType string
	Now       func() time.Time
	Out       io.Writer
}

func (r *Runner) Run(ctx context.Context, cfg Config) error {
	if r.Now == nil {
		r.Now = time.Now
	}

	switch cfg.Command {
	case CmdDeploy:
		return r.deploy(ctx, cfg)
	case CmdVerify:
		return r.verify(ctx, cfg)
	case CmdStatus:
		return r.status(ctx)
	case CmdCleanup:
		return r.cleanup(ctx, cfg)
	case CmdPreview:
		return r.preview(cfg)
	case CmdLookup:
		return r.lookup(ctx, cfg)
	case CmdExpire:
		n, err := r.Expiry.SweepExpired(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(r.Out, "Expired %d seat packages\n", n)
		return nil
	case CmdMigrate:
		return r.migrate(ctx, cfg)
	}

	return fmt.Errorf("unknown command %q", cfg.Command)
}

func (r *Runner) deploy(ctx context.Context, cfg Config) error {
	spec, err := cfg.Spec(r.EventType)
	if err != nil {
		return err
	}

	shape, err := domain.ParsePersistenceShape(cfg.Shape)
	if err != nil {
		return err
	}

	start, err := cfg.StartTime(r.Now())
	if err != nil {
		return err
	}

	if cfg.DryRun {
		ws, err := services.BuildDeployment(spec, cfg.Grid(), shape, start)
		if err != nil {
			return err
		}

		fmt.Fprintf(r.Out, "Dry run: %s (%s) for %d seats\n", spec.ID, shape, len(ws.Sequences()))
		fmt.Fprintf(r.Out, "Start: %s  End: %s\n", domain.FormatTimestamp(start), domain.FormatTimestamp(domain.EndTime(spec, start)))
		for _, w := range ws.Writes() {
			fmt.Fprintln(r.Out, "  would write", w.Path())
		}
		return nil
	}

	result, err := r.Deployer.Deploy(ctx, services.DeployRequest{
		Spec:      spec,
		Grid:      cfg.Grid(),
		Shape:     shape,
		StartTime: start,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(r.Out, "Deployed %s (%s)\n", spec.ID, shape)
	fmt.Fprintf(r.Out, "  seats:        %d\n", len(result.WriteSet.Sequences()))
	fmt.Fprintf(r.Out, "  documents:    %d\n", result.Written)
	fmt.Fprintf(r.Out, "  frames:       %d @ %g Hz (%s)\n", spec.FrameCount, spec.FrameRateHz, spec.Duration())
	fmt.Fprintf(r.Out, "  start:        %s\n", result.StartTime)
	fmt.Fprintf(r.Out, "  end:          %s\n", result.EndTime)
	fmt.Fprintf(r.Out, "  config:       %s\n", result.ConfigID)
	if len(result.Deactivated) > 0 {
		fmt.Fprintf(r.Out, "  deactivated:  %s\n", strings.Join(result.Deactivated, ", "))
	}
	if result.Cleared > 0 {
		fmt.Fprintf(r.Out, "  cleared:      %d old packages\n", result.Cleared)
	}

	return nil
}

func (r *Runner) verify(ctx context.Context, cfg Config) error {
	spec, err := cfg.Spec(r.EventType)
	if err != nil {
		return err
	}

	shape, err := domain.ParsePersistenceShape(cfg.Shape)
	if err != nil {
		return err
	}

	report, err := r.Verifier.Verify(ctx, spec, cfg.Grid(), shape)
	if err != nil {
		return err
	}

	fmt.Fprintf(r.Out, "Verifying %s (%s), %d seats expected\n", report.AnimationID, report.Shape, report.Expected)
	if shape != domain.ShapePackagePerSeat && !report.ParentFound {
		fmt.Fprintf(r.Out, "Parent document animations/%s not found\n", report.AnimationID)
	}

	printGrid(r.Out, cfg.Grid(), report)

	fmt.Fprintf(r.Out, "present: %d  missing: %d  mismatched: %d  unexpected: %d\n",
		len(report.Present), len(report.Missing), len(report.Mismatched), len(report.Unexpected))

	for _, id := range report.Mismatched {
		fmt.Fprintln(r.Out, "  mismatched", id)
	}
	for _, id := range report.Unexpected {
		fmt.Fprintln(r.Out, "  unexpected", id)
	}

	if !report.Complete() {
		return fmt.Errorf("deployment %s is incomplete", report.AnimationID)
	}

	fmt.Fprintln(r.Out, "All seats verified")
	return nil
}

// printGrid draws one character per seat: # present, . missing, ~ mismatched.
func printGrid(w io.Writer, grid domain.SeatGrid, report *services.VerificationReport) {
	marks := make(map[string]byte, report.Expected)
	for _, id := range report.Present {
		marks[id] = '#'
	}
	for _, id := range report.Mismatched {
		marks[id] = '~'
	}

	var b strings.Builder
	for row := 1; row <= grid.Rows; row++ {
		fmt.Fprintf(&b, "%4d ", row)
		for seat := 1; seat <= grid.Seats; seat++ {
			m, ok := marks[domain.SeatCoordinate{Row: row, Seat: seat}.ID()]
			if !ok {
				m = '.'
			}
			b.WriteByte(m)
		}
		b.WriteByte('\n')
	}

	io.WriteString(w, b.String())
}

func (r *Runner) status(ctx context.Context) error {
	report, err := r.Verifier.Status(ctx, r.Now())
	if err != nil {
		return err
	}

	fmt.Fprintf(r.Out, "Now: %s\n\n", domain.FormatTimestamp(report.Now))

	tw := tabwriter.NewWriter(r.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CONFIG\tANIMATION\tSHAPE\tSTATUS\tSTART\tSTATE")
	for _, c := range report.Configs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			c.Config.ID, c.Config.AnimationID, c.Config.Shape, c.Config.Status,
			domain.FormatTimestamp(c.Config.StartTime), c.State)
	}
	tw.Flush()

	fmt.Fprintln(r.Out)
	tw = tabwriter.NewWriter(r.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ANIMATION\tFRAMES\tRATE\tSEATS\tSTART\tSTATE")
	for _, a := range report.Animations {
		fmt.Fprintf(tw, "%s\t%d\t%g\t%d\t%s\t%s\n",
			a.ID, a.FrameCount, a.FrameRate, a.Seats, domain.FormatTimestamp(a.StartTime), a.State)
	}
	tw.Flush()

	fmt.Fprintf(r.Out, "\nSeat packages: %d\n", report.Packages)
	if report.Active != nil {
		fmt.Fprintf(r.Out, "Active: %s (config %s)\n", report.Active.AnimationID, report.Active.ID)
	} else {
		fmt.Fprintln(r.Out, "Active: none")
	}

	return nil
}

func (r *Runner) cleanup(ctx context.Context, cfg Config) error {
	result, err := r.Cleaner.Cleanup(ctx, services.CleanupRequest{
		KeepAnimations:     cfg.KeepList(),
		Packages:           cfg.Packages,
		PackageAnimationID: cfg.PackageAnimation,
		Configs:            cfg.InactiveConfigs,
		DryRun:             cfg.DryRun,
	})
	if err != nil {
		return err
	}

	verb := "Deleted"
	if cfg.DryRun {
		verb = "Would delete"
	}

	fmt.Fprintf(r.Out, "%s %d animations (%d seat documents), %d packages, %d configs\n",
		verb, len(result.Animations), result.SeatDocs, result.Packages, result.Configs)
	for _, id := range result.Animations {
		fmt.Fprintln(r.Out, "  ", id)
	}

	return nil
}

func (r *Runner) migrate(ctx context.Context, cfg Config) error {
	result, err := r.Migrator.FlatMapToSubcollection(ctx, cfg.Animation, cfg.DryRun)
	if err != nil {
		return err
	}

	target := domain.SeatCollection(cfg.Animation)
	if result.DryRun {
		fmt.Fprintf(r.Out, "Would move %d seats of %s to %s\n", len(result.WriteSet.Children), cfg.Animation, target)
		return nil
	}

	fmt.Fprintf(r.Out, "Moved %d seats of %s to %s\n", result.Written, cfg.Animation, target)
	if result.Cleared > 0 {
		fmt.Fprintf(r.Out, "  replaced %d existing seat documents\n", result.Cleared)
	}

	return nil
}

func (r *Runner) preview(cfg Config) error {
	spec, err := cfg.Spec(r.EventType)
	if err != nil {
		return err
	}

	coord := domain.SeatCoordinate{Row: cfg.Row, Seat: cfg.Seat}
	seq, err := services.GenerateFrames(spec, coord)
	if err != nil {
		return err
	}

	fmt.Fprintf(r.Out, "%s seat %s: %d frames @ %g Hz\n", spec.ID, coord, seq.Len(), spec.FrameRateHz)
	for i, f := range seq.Frames {
		if f.IsRef() {
			fmt.Fprintf(r.Out, "%4d  %s\n", i, f.Ref)
			continue
		}
		fmt.Fprintf(r.Out, "%4d  rgb(%d, %d, %d)\n", i, f.Color.R, f.Color.G, f.Color.B)
	}

	return nil
}

func (r *Runner) lookup(ctx context.Context, cfg Config) error {
	coord := domain.SeatCoordinate{Row: cfg.Row, Seat: cfg.Seat}
	doc, found, err := r.Verifier.LookupSeat(ctx, coord)
	if err != nil {
		return err
	}

	if !found {
		fmt.Fprintf(r.Out, "No package for %s\n", coord.ID())
		return nil
	}

	fmt.Fprintf(r.Out, "Package %s\n", doc.ID)
	for _, key := range []string{"animationId", "animationType", "eventType", "startTime", "endTime", "frameRate", "frameCount", "duration", "isActive"} {
		if v, ok := doc.Fields[key]; ok {
			fmt.Fprintf(r.Out, "  %-14s %v\n", key+":", v)
		}
	}

	seq, err := domain.DecodeSeatFields(coord, doc.Fields)
	if err != nil {
		return err
	}

	fmt.Fprintf(r.Out, "  %-14s %d\n", "frames:", seq.Len())
	return nil
}
