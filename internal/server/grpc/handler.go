package grpc

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dmitrijs2005/trazo/internal/api"
	"github.com/dmitrijs2005/trazo/internal/common"
	"github.com/dmitrijs2005/trazo/internal/server/models"
)

func (s *GRPCServer) SubmitClaim(ctx context.Context, req *api.SubmitClaimRequest) (*api.SubmitClaimResponse, error) {
	p, _ := principalFrom(ctx)

	claim, res, err := s.claims.Submit(ctx, p.UserID, req.Claim)
	if err != nil {
		return nil, s.toStatus(ctx, "SubmitClaim", err)
	}

	return &api.SubmitClaimResponse{ClaimID: claim.ID, Status: string(claim.Status), Result: res}, nil
}

func (s *GRPCServer) EvaluateClaim(ctx context.Context, req *api.EvaluateClaimRequest) (*api.EvaluateClaimResponse, error) {
	p, _ := principalFrom(ctx)

	res, err := s.claims.Evaluate(ctx, p.UserID, req.Claim)
	if err != nil {
		return nil, s.toStatus(ctx, "EvaluateClaim", err)
	}

	return &api.EvaluateClaimResponse{Result: res}, nil
}

func (s *GRPCServer) ReauditClaim(ctx context.Context, req *api.ReauditClaimRequest) (*api.ReauditClaimResponse, error) {
	if req.ClaimID == "" {
		return nil, status.Error(codes.InvalidArgument, "claim_id is required")
	}
	p, _ := principalFrom(ctx)

	claim, res, err := s.claims.Reaudit(ctx, p.UserID, req.ClaimID)
	if err != nil {
		return nil, s.toStatus(ctx, "ReauditClaim", err)
	}

	return &api.ReauditClaimResponse{ClaimID: claim.ID, Status: string(claim.Status), Result: res}, nil
}

func (s *GRPCServer) GetAuditLog(ctx context.Context, req *api.GetAuditLogRequest) (*api.GetAuditLogResponse, error) {
	if req.ClaimID == "" {
		return nil, status.Error(codes.InvalidArgument, "claim_id is required")
	}
	p, _ := principalFrom(ctx)

	entries, err := s.claims.AuditLog(ctx, p.UserID, p.Admin, req.ClaimID)
	if err != nil {
		return nil, s.toStatus(ctx, "GetAuditLog", err)
	}

	out := make([]api.AuditEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, auditEntryToAPI(e))
	}
	return &api.GetAuditLogResponse{Entries: out}, nil
}

func (s *GRPCServer) Ping(ctx context.Context, req *api.PingRequest) (*api.PingResponse, error) {

	return &api.PingResponse{Status: "OK"}, nil

}

func auditEntryToAPI(e *models.AuditEntry) api.AuditEntry {
	return api.AuditEntry{
		ID:              e.ID,
		ClaimID:         e.ClaimID,
		UserID:          e.UserID,
		Action:          string(e.Action),
		Approved:        e.Approved,
		TrustScore:      e.TrustScore,
		EffectiveAmount: e.EffectiveAmount,
		AuditRequired:   e.AuditRequired,
		Violations:      e.Violations,
		CreatedAt:       e.CreatedAt,
	}
}

// toStatus maps service errors to gRPC status codes. Unexpected errors are
// logged and reported as Internal without detail.
func (s *GRPCServer) toStatus(ctx context.Context, method string, err error) error {
	var (
		ie *common.InputError
		sv *common.SecurityViolationError
	)
	switch {
	case errors.As(err, &ie):
		return status.Error(codes.InvalidArgument, ie.Error())
	case errors.As(err, &sv):
		return status.Error(codes.PermissionDenied, sv.Error())
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, "not found")
	case errors.Is(err, common.ErrForbidden):
		return status.Error(codes.PermissionDenied, "forbidden")
	case errors.Is(err, common.ErrorUnauthorized), errors.Is(err, common.ErrInvalidToken):
		return status.Error(codes.Unauthenticated, "unauthorized")
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "canceled")
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "deadline exceeded")
	}
	s.logger.Error(ctx, "request failed", "method", method, "error", err)
	return status.Error(codes.Internal, "internal error")
}
