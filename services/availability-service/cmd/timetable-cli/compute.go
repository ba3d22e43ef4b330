package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/md-rashed-zaman/apptslots/libs/grpcx"
	"github.com/md-rashed-zaman/apptslots/libs/runtime"
	"github.com/md-rashed-zaman/apptslots/services/availability-service/internal/availability"
	"github.com/md-rashed-zaman/apptslots/services/availability-service/internal/grpcserver"
	"github.com/md-rashed-zaman/apptslots/services/availability-service/internal/storage"
	"github.com/md-rashed-zaman/apptslots/services/availability-service/internal/timezone"
	"github.com/spf13/cobra"
)

type computeOptions struct {
	eventsFile     string
	workhoursFile  string
	start          string
	tz             string
	duration       int64
	days           int
	interval       int64
	ignoreSchedule bool
	ignoreWorkhour bool
	referenceDate  string
	human          bool
	remote         string
	logLevel       string
}

func newComputeCmd() *cobra.Command {
	opts := &computeOptions{}
	cmd := &cobra.Command{
		Use:   "compute",
		Short: "Print the timetables for a day range",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := runtime.SignalContext(cmd.Context())
			defer cancel()
			return runCompute(ctx, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.eventsFile, "events", "data/events.json", "Events file (.json, .yaml, .yml)")
	f.StringVar(&opts.workhoursFile, "workhours", "data/workhours.json", "Work hours file (.json, .yaml, .yml)")
	f.StringVar(&opts.start, "start", "", "First day as YYYYMMDD (required)")
	f.StringVar(&opts.tz, "tz", "", "IANA timezone (required)")
	f.Int64Var(&opts.duration, "duration", 0, "Service duration in seconds (required)")
	f.IntVar(&opts.days, "days", availability.DefaultDays, "Number of days")
	f.Int64Var(&opts.interval, "interval", availability.DefaultTimeslotInterval, "Seconds between slot starts")
	f.BoolVar(&opts.ignoreSchedule, "ignore-schedule", false, "Ignore existing events")
	f.BoolVar(&opts.ignoreWorkhour, "ignore-workhour", false, "Ignore work hours")
	f.StringVar(&opts.referenceDate, "reference-date", "", "Treat this YYYYMMDD as today (local runs only)")
	f.BoolVar(&opts.human, "human", false, "Print dates and times in the zone instead of JSON")
	f.StringVar(&opts.remote, "remote", "", "Query a running service over gRPC at host:port")
	f.StringVar(&opts.logLevel, "log-level", "warn", "Log level for diagnostics on stderr")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("tz")
	_ = cmd.MarkFlagRequired("duration")
	return cmd
}

func runCompute(ctx context.Context, opts *computeOptions, stdout, stderr io.Writer) error {
	logger := runtime.NewLoggerWithWriter(stderr, "timetable-cli", opts.logLevel)
	req := availability.Request{
		StartDayIdentifier: opts.start,
		TimezoneIdentifier: opts.tz,
		ServiceDuration:    opts.duration,
		Days:               opts.days,
		TimeslotInterval:   opts.interval,
		IgnoreSchedule:     opts.ignoreSchedule,
		IgnoreWorkhour:     opts.ignoreWorkhour,
	}

	var (
		days []availability.DayTimetable
		err  error
	)
	if opts.remote != "" {
		days, err = computeRemote(ctx, opts.remote, req)
	} else {
		days, err = computeLocal(ctx, logger, opts, req)
	}
	if err != nil {
		return err
	}

	if opts.human {
		return renderHuman(stdout, timezone.NewFormatter(logger), opts.tz, days)
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(days)
}

func computeLocal(ctx context.Context, logger *slog.Logger, opts *computeOptions, req availability.Request) ([]availability.DayTimetable, error) {
	svc, err := availability.NewService(storage.NewFileSource(opts.eventsFile, opts.workhoursFile), logger, availability.Options{
		ReferenceDate: opts.referenceDate,
	})
	if err != nil {
		return nil, err
	}
	return svc.Timetables(ctx, req)
}

func computeRemote(ctx context.Context, addr string, req availability.Request) ([]availability.DayTimetable, error) {
	conn, err := grpcx.Dial(addr, grpcx.DialOptions{})
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return grpcserver.NewClient(conn).Timetables(ctx, req)
}

// renderHuman prints one line per day followed by its slots in the zone's wall clock.
func renderHuman(w io.Writer, f *timezone.Formatter, tz string, days []availability.DayTimetable) error {
	for _, d := range days {
		header := fmt.Sprintf("%s (%+d)", f.FormatDate(time.Unix(d.StartOfDay, 0), tz), d.DayModifier)
		switch {
		case d.IsDayOff:
			header += " day off"
		case len(d.Timeslots) == 0:
			header += " fully booked"
		}
		if _, err := fmt.Fprintln(w, header); err != nil {
			return err
		}
		if len(d.Timeslots) == 0 {
			continue
		}
		slots := make([]string, 0, len(d.Timeslots))
		for _, s := range d.Timeslots {
			slots = append(slots, f.FormatTime(time.Unix(s.BeginAt, 0), tz)+"-"+f.FormatTime(time.Unix(s.EndAt, 0), tz))
		}
		if _, err := fmt.Fprintln(w, "  "+strings.Join(slots, " ")); err != nil {
			return err
		}
	}
	return nil
}
