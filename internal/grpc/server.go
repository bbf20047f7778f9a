package grpc

import (
	"context"
	"net"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"gorm.io/gorm"
)

// ServiceName is the name reported to health checks besides the overall "".
const ServiceName = "investment-service"

// HealthReporter keeps the gRPC health status in line with database
// reachability.
type HealthReporter struct {
	DB     *gorm.DB
	Health *health.Server
	Log    *zap.Logger
}

func NewHealthReporter(db *gorm.DB, log *zap.Logger) *HealthReporter {
	return &HealthReporter{DB: db, Health: health.NewServer(), Log: log}
}

// Check pings the database once and publishes the result.
func (h *HealthReporter) Check(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	status := healthpb.HealthCheckResponse_SERVING
	sqlDB, err := h.DB.DB()
	if err == nil {
		ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err = sqlDB.PingContext(ctx)
		cancel()
	}
	if err != nil {
		status = healthpb.HealthCheckResponse_NOT_SERVING
		h.Log.Warn("Database health check failed", zap.Error(err))
	}
	h.Health.SetServingStatus("", status)
	h.Health.SetServingStatus(ServiceName, status)
	return status
}

// Run re-checks every interval until ctx is done.
func (h *HealthReporter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		h.Check(ctx)
		select {
		case <-ctx.Done():
			h.Health.Shutdown()
			return
		case <-ticker.C:
		}
	}
}

func NewServer(h *HealthReporter) *grpc.Server {
	s := grpc.NewServer()
	healthpb.RegisterHealthServer(s, h.Health)
	reflection.Register(s)
	return s
}

// StartGRPCServer serves the health service on port until ctx is done.
func StartGRPCServer(ctx context.Context, port string, h *HealthReporter) error {
	lis, err := net.Listen("tcp", ":"+port)
	if err != nil {
		return err
	}
	s := NewServer(h)
	go h.Run(ctx, 15*time.Second)
	go func() {
		<-ctx.Done()
		s.GracefulStop()
	}()

	h.Log.Info("gRPC server listening", zap.String("addr", lis.Addr().String()))
	return s.Serve(lis)
}
