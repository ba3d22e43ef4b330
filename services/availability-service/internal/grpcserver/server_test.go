package grpcserver

import (
	"context"
	"net"
	"reflect"
	"testing"
	"time"

	"github.com/md-rashed-zaman/apptslots/libs/grpcx"
	"github.com/md-rashed-zaman/apptslots/services/availability-service/internal/availability"
	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

type emptySource struct{}

func (emptySource) LoadEvents(context.Context) ([]availability.Event, error) {
	return nil, nil
}

func (emptySource) LoadWorkhours(context.Context) ([]availability.WorkhourRule, error) {
	return nil, nil
}

func startServer(t *testing.T) *Client {
	t.Helper()
	svc, err := availability.NewService(emptySource{}, nil, availability.Options{ReferenceDate: "20230930"})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	srv := grpcx.NewServer(nil)
	Register(srv, svc, nil)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpcx.Dial(lis.Addr().String(), grpcx.DialOptions{})
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return NewClient(conn)
}

func TestGetTimetables_RoundTrip(t *testing.T) {
	client := startServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	days, err := client.Timetables(ctx, availability.Request{
		StartDayIdentifier: "20231001",
		TimezoneIdentifier: "UTC",
		ServiceDuration:    3600,
		Days:               2,
		TimeslotInterval:   1800,
	})
	if err != nil {
		t.Fatalf("Timetables: %v", err)
	}
	if len(days) != 2 || days[0].StartOfDay != 1696118400 || days[0].DayModifier != 1 {
		t.Fatalf("unexpected days %+v", days)
	}
	if days[0].Timeslots[0] != (availability.TimeInterval{BeginAt: 1696118400, EndAt: 1696122000}) {
		t.Fatalf("unexpected first slot %+v", days[0].Timeslots[0])
	}
}

func TestGetTimetables_InvalidArgument(t *testing.T) {
	client := startServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := client.Timetables(ctx, availability.Request{
		StartDayIdentifier: "20231001",
		TimezoneIdentifier: "Nowhere/Land",
		ServiceDuration:    3600,
		Days:               1,
		TimeslotInterval:   1800,
	})
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("expected InvalidArgument, got %v", err)
	}
}

func TestHealthServing(t *testing.T) {
	client := startServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := healthpb.NewHealthClient(client.cc).Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
	if err != nil {
		t.Fatalf("health check: %v", err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		t.Fatalf("unexpected status %v", resp.GetStatus())
	}
}

func TestRequestFromStruct_Defaults(t *testing.T) {
	in, err := structpb.NewStruct(map[string]any{
		"timezone_identifier":  "UTC",
		"start_day_identifier": "20231001",
		"service_duration":     600,
	})
	if err != nil {
		t.Fatalf("NewStruct: %v", err)
	}
	req, err := RequestFromStruct(in)
	if err != nil {
		t.Fatalf("RequestFromStruct: %v", err)
	}
	if req.Days != availability.DefaultDays || req.TimeslotInterval != availability.DefaultTimeslotInterval {
		t.Fatalf("defaults not applied: %+v", req)
	}
}

func TestRequestFromStruct_Rejects(t *testing.T) {
	cases := map[string]map[string]any{
		"missing timezone": {"start_day_identifier": "20231001", "service_duration": 60},
		"fractional":       {"timezone_identifier": "UTC", "start_day_identifier": "20231001", "service_duration": 60.5},
		"wrong type":       {"timezone_identifier": "UTC", "start_day_identifier": 20231001, "service_duration": 60},
		"bad flag":         {"timezone_identifier": "UTC", "start_day_identifier": "20231001", "service_duration": 60, "is_ignore_workhour": "yes"},
	}
	for name, fields := range cases {
		in, err := structpb.NewStruct(fields)
		if err != nil {
			t.Fatalf("%s: NewStruct: %v", name, err)
		}
		if _, err := RequestFromStruct(in); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestTimetablesStructRoundTrip(t *testing.T) {
	days := []availability.DayTimetable{
		{StartOfDay: 1696118400, DayModifier: -2, IsDayOff: true, Timeslots: []availability.TimeInterval{}},
		{StartOfDay: 1696204800, DayModifier: -1, Timeslots: []availability.TimeInterval{{BeginAt: 1696240800, EndAt: 1696244400}}},
	}
	encoded, err := TimetablesToStruct(days)
	if err != nil {
		t.Fatalf("TimetablesToStruct: %v", err)
	}
	decoded, err := TimetablesFromStruct(encoded)
	if err != nil {
		t.Fatalf("TimetablesFromStruct: %v", err)
	}
	if !reflect.DeepEqual(days, decoded) {
		t.Fatalf("round trip mismatch:\n%+v\n%+v", days, decoded)
	}
}
