package api

import (
	"context"

	"google.golang.org/grpc"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "trazo.verification.v1.VerificationService"

// Full method names, as seen by interceptors.
const (
	MethodSubmitClaim   = "/" + ServiceName + "/SubmitClaim"
	MethodEvaluateClaim = "/" + ServiceName + "/EvaluateClaim"
	MethodReauditClaim  = "/" + ServiceName + "/ReauditClaim"
	MethodGetAuditLog   = "/" + ServiceName + "/GetAuditLog"
	MethodPing          = "/" + ServiceName + "/Ping"
)

// VerificationServer is implemented by the gRPC transport.
type VerificationServer interface {
	SubmitClaim(context.Context, *SubmitClaimRequest) (*SubmitClaimResponse, error)
	EvaluateClaim(context.Context, *EvaluateClaimRequest) (*EvaluateClaimResponse, error)
	ReauditClaim(context.Context, *ReauditClaimRequest) (*ReauditClaimResponse, error)
	GetAuditLog(context.Context, *GetAuditLogRequest) (*GetAuditLogResponse, error)
	Ping(context.Context, *PingRequest) (*PingResponse, error)
}

// RegisterVerificationServer registers srv on s.
func RegisterVerificationServer(s grpc.ServiceRegistrar, srv VerificationServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func unary[Req any, Resp any](fullMethod string, call func(VerificationServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(VerificationServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(VerificationServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// ServiceDesc describes VerificationService for grpc.Server.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*VerificationServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "SubmitClaim", Handler: unary(MethodSubmitClaim, VerificationServer.SubmitClaim)},
		{MethodName: "EvaluateClaim", Handler: unary(MethodEvaluateClaim, VerificationServer.EvaluateClaim)},
		{MethodName: "ReauditClaim", Handler: unary(MethodReauditClaim, VerificationServer.ReauditClaim)},
		{MethodName: "GetAuditLog", Handler: unary(MethodGetAuditLog, VerificationServer.GetAuditLog)},
		{MethodName: "Ping", Handler: unary(MethodPing, VerificationServer.Ping)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "trazo/verification/v1/verification.json",
}

// Client calls VerificationService using the JSON codec.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) SubmitClaim(ctx context.Context, in *SubmitClaimRequest, opts ...grpc.CallOption) (*SubmitClaimResponse, error) {
	return invoke[SubmitClaimResponse](ctx, c.cc, MethodSubmitClaim, in, opts)
}

func (c *Client) EvaluateClaim(ctx context.Context, in *EvaluateClaimRequest, opts ...grpc.CallOption) (*EvaluateClaimResponse, error) {
	return invoke[EvaluateClaimResponse](ctx, c.cc, MethodEvaluateClaim, in, opts)
}

func (c *Client) ReauditClaim(ctx context.Context, in *ReauditClaimRequest, opts ...grpc.CallOption) (*ReauditClaimResponse, error) {
	return invoke[ReauditClaimResponse](ctx, c.cc, MethodReauditClaim, in, opts)
}

func (c *Client) GetAuditLog(ctx context.Context, in *GetAuditLogRequest, opts ...grpc.CallOption) (*GetAuditLogResponse, error) {
	return invoke[GetAuditLogResponse](ctx, c.cc, MethodGetAuditLog, in, opts)
}

func (c *Client) Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error) {
	return invoke[PingResponse](ctx, c.cc, MethodPing, in, opts)
}
