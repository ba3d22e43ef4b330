package grpcserver

import (
	"context"
	"log/slog"

	"github.com/md-rashed-zaman/apptslots/libs/grpcx"
	"github.com/md-rashed-zaman/apptslots/services/availability-service/internal/availability"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// Timetabler is the operation served over gRPC.
type Timetabler interface {
	Timetables(ctx context.Context, req availability.Request) ([]availability.DayTimetable, error)
}

type server struct {
	svc    Timetabler
	logger *slog.Logger
}

// Register installs the availability and health services and returns the health
// server so the caller can flip it to NOT_SERVING on shutdown.
func Register(grpcServer *grpc.Server, svc Timetabler, logger *slog.Logger) *health.Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	RegisterAvailabilityServer(grpcServer, &server{svc: svc, logger: logger})

	hs := health.NewServer()
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(grpcServer, hs)
	return hs
}

func (s *server) GetTimetables(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req, err := RequestFromStruct(in)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	logger := s.logger
	if id := grpcx.RequestIDFromContext(ctx); id != "" {
		logger = logger.With("request_id", id)
	}
	days, err := s.svc.Timetables(availability.ContextWithLogger(ctx, logger), req)
	if err != nil {
		if availability.IsValidationError(err) {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}
		logger.Error("timetable computation failed", "err", err)
		return nil, status.Error(codes.Internal, "failed to compute timetables")
	}

	out, err := TimetablesToStruct(days)
	if err != nil {
		return nil, status.Error(codes.Internal, "failed to encode timetables")
	}
	return out, nil
}
