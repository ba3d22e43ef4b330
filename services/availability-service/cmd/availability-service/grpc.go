package main

import (
	"context"
	"log/slog"
	"net"

	"github.com/md-rashed-zaman/apptslots/libs/config"
	"github.com/md-rashed-zaman/apptslots/libs/grpcx"
	"github.com/md-rashed-zaman/apptslots/services/availability-service/internal/availability"
	"github.com/md-rashed-zaman/apptslots/services/availability-service/internal/grpcserver"
)

func startGrpcServer(ctx context.Context, logger *slog.Logger, svc *availability.Service) error {
	port, err := config.Port("GRPC_PORT", "9094")
	if err != nil {
		return err
	}
	lis, err := net.Listen("tcp", ":"+port)
	if err != nil {
		return err
	}

	srv := grpcx.NewServer(logger)
	health := grpcserver.Register(srv, svc, logger)

	go func() {
		logger.Info("grpc server starting", "addr", lis.Addr().String())
		if err := srv.Serve(lis); err != nil {
			logger.Error("grpc server error", "err", err)
		}
	}()

	go func() {
		<-ctx.Done()
		health.Shutdown()
		srv.GracefulStop()
	}()

	return nil
}
