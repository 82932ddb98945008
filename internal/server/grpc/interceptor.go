package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/dmitrijs2005/trazo/internal/api"
	"github.com/dmitrijs2005/trazo/internal/common"
	"github.com/dmitrijs2005/trazo/internal/server/auth"
)

type ctxKey string

const principalKey ctxKey = "principal"

// principal is the authenticated caller.
type principal struct {
	UserID string
	Admin  bool
}

func principalFrom(ctx context.Context) (principal, bool) {
	p, ok := ctx.Value(principalKey).(principal)
	return p, ok
}

// accessTokenInterceptor authenticates every call except Ping.
//
// A valid access_token always wins. Outside production a bare user_id
// metadata value is accepted for local tooling. ReauditClaim requires the
// admin role.
func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if info.FullMethod == api.MethodPing {
		return handler(ctx, req)
	}

	p, err := s.authenticate(ctx, info.FullMethod)
	if err != nil {
		return nil, err
	}

	if info.FullMethod == api.MethodReauditClaim && !p.Admin {
		s.logger.Warn(ctx, "non-admin reaudit attempt", "user_id", p.UserID)
		return nil, status.Error(codes.PermissionDenied, "admin role required")
	}

	return handler(context.WithValue(ctx, principalKey, p), req)
}

func (s *GRPCServer) authenticate(ctx context.Context, method string) (principal, error) {
	md, _ := metadata.FromIncomingContext(ctx)

	if token := firstValue(md, common.AccessTokenHeaderName); token != "" {
		claims, err := auth.ParseToken(token, s.jwtSecret)
		if err != nil {
			s.logger.Warn(ctx, "rejected access token", "method", method, "error", err)
			return principal{}, status.Error(codes.Unauthenticated, "invalid token")
		}
		return principal{UserID: claims.UserID, Admin: claims.IsAdmin()}, nil
	}

	if s.environment == common.EnvironmentProduction {
		sv := &common.SecurityViolationError{
			ViolationType: "missing-session",
			Severity:      "high",
			Message:       "access token required",
		}
		s.logger.Warn(ctx, "security violation", "method", method, "violation", sv.ViolationType)
		return principal{}, status.Error(codes.Unauthenticated, sv.Error())
	}

	if userID := firstValue(md, common.UserIDHeaderName); userID != "" {
		return principal{UserID: userID}, nil
	}
	return principal{}, status.Error(codes.Unauthenticated, "missing token")
}

func firstValue(md metadata.MD, key string) string {
	if values := md.Get(key); len(values) > 0 {
		return values[0]
	}
	return ""
}
