// Package grpc exposes the claim service as trazo.verification.v1.VerificationService.
package grpc

import (
	"context"
	"net"

	"google.golang.org/grpc"

	"github.com/dmitrijs2005/trazo/internal/api"
	"github.com/dmitrijs2005/trazo/internal/logging"
	"github.com/dmitrijs2005/trazo/internal/server/models"
	"github.com/dmitrijs2005/trazo/internal/verification"
)

// ClaimService is the part of services.ClaimService the transport calls.
type ClaimService interface {
	Submit(ctx context.Context, userID string, p api.ClaimPayload) (*models.Claim, *verification.Result, error)
	Evaluate(ctx context.Context, userID string, p api.ClaimPayload) (*verification.Result, error)
	Reaudit(ctx context.Context, actorID, claimID string) (*models.Claim, *verification.Result, error)
	AuditLog(ctx context.Context, requesterID string, admin bool, claimID string) ([]*models.AuditEntry, error)
}

type GRPCServer struct {
	address     string
	claims      ClaimService
	logger      logging.Logger
	jwtSecret   []byte
	environment string
}

var _ api.VerificationServer = (*GRPCServer)(nil)

func NewGRPCServer(a string, l logging.Logger, cs ClaimService, secretKey, environment string) *GRPCServer {
	return &GRPCServer{
		address:     a,
		logger:      l.With("module", "grpc_server"),
		claims:      cs,
		jwtSecret:   []byte(secretKey),
		environment: environment,
	}
}

// Serve registers the service on a new grpc.Server and serves lis until ctx
// is cancelled.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	// creates gRPC-server
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.accessTokenInterceptor))

	// registers service
	api.RegisterVerificationServer(srv, s)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String(), "environment", s.environment)

	// starts accepting incoming connections
	if err := srv.Serve(lis); err != nil {
		return err
	}

	return nil
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.Serve(ctx, listen)
}
