package main

import (
	"context"
	"net/http"
	"time"

	"github.com/md-rashed-zaman/apptslots/libs/config"
	"github.com/md-rashed-zaman/apptslots/libs/httpx"
	"github.com/md-rashed-zaman/apptslots/libs/metrics"
	otelx "github.com/md-rashed-zaman/apptslots/libs/otel"
	"github.com/md-rashed-zaman/apptslots/libs/runtime"
	"github.com/md-rashed-zaman/apptslots/services/availability-service/internal/availability"
	"github.com/md-rashed-zaman/apptslots/services/availability-service/internal/consumer"
	"github.com/md-rashed-zaman/apptslots/services/availability-service/internal/handlers"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	if err := config.LoadDotenv(); err != nil {
		panic(err)
	}
	service := config.String("SERVICE_NAME", "availability-service")
	port, err := config.Port("PORT", "8084")
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(service)

	ctx, stop := runtime.SignalContext(context.Background())
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	var sink metrics.Sink = metrics.NewNoopSink()
	registry := prometheus.NewRegistry()
	metricsEnabled := config.Bool("METRICS_ENABLED", true)
	if metricsEnabled {
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		sink = metrics.NewPrometheusSink(registry, logger)
	}

	var rdb *redis.Client
	if addr := config.String("REDIS_ADDR", ""); addr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: addr})
		defer func() { _ = rdb.Close() }()
	}

	src, err := openSource(ctx, logger, rdb, sink)
	if err != nil {
		logger.Error("data source setup failed", "err", err)
		panic(err)
	}
	defer src.close()

	svc, err := availability.NewService(src.source, logger, availability.Options{
		ReferenceDate: config.String("REFERENCE_DATE", ""),
		Metrics:       sink,
	})
	if err != nil {
		panic(err)
	}

	brokers := config.List("KAFKA_BROKERS", "")
	if len(brokers) > 0 && src.cache != nil {
		feed := consumer.New(logger, src.cache, sink, consumer.Config{
			Brokers: brokers,
			GroupID: config.String("KAFKA_GROUP_ID", "availability-service"),
			Topics:  config.List("KAFKA_CONSUME_TOPICS", "booking.appointment.booked.v1,booking.appointment.cancelled.v1"),
		})
		go feed.Run(ctx)
	}

	httpHandler := handlers.New(svc, logger)
	mux := runtime.NewBaseMuxWithReady(readyChecks(src, rdb, brokers)...)
	mux.HandleFunc("/api/v1/availability/timetables", httpHandler.Timetables)
	if metricsEnabled {
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	limit, err := config.Int("RATE_LIMIT_PER_MINUTE", 120)
	if err != nil {
		panic(err)
	}
	var limiter httpx.Middleware
	if rdb != nil {
		limiter = httpx.NewRedisRateLimiter(rdb, limit, time.Minute, "rl:availability").Middleware(logger, true)
	} else {
		limiter = httpx.NewRateLimiter(limit, time.Minute).Middleware()
	}

	handler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithRecover(logger),
		httpx.WithAccessLog(logger),
		limiter,
		httpx.WithBodyLimit(64<<10),
		httpx.WithTimeout(10*time.Second),
	)
	handler = otelhttp.NewHandler(handler, "availability")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "err", err)
		}
	}()

	if config.Bool("GRPC_ENABLED", true) {
		if err := startGrpcServer(ctx, logger, svc); err != nil {
			logger.Error("grpc server failed to start", "err", err)
		}
	}

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}
	logger.Info("http server stopped")
}
