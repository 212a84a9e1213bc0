package jwtauth

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// Metadata keys are the lower-cased header names gRPC uses
const (
	authorizationMetadataKey = "authorization"
	requestIDMetadataKey     = "x-request-id"
)

// UnaryServerInterceptor returns a gRPC unary server interceptor that
// admits calls the authorizer accepts
func UnaryServerInterceptor[T any](a *Authorizer[T]) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		ctx, err := authorizeIncoming(ctx, a)
		if err != nil {
			return nil, err
		}
		return handler(ctx, req)
	}
}

// StreamServerInterceptor returns a gRPC stream server interceptor that
// admits streams the authorizer accepts
func StreamServerInterceptor[T any](a *Authorizer[T]) grpc.StreamServerInterceptor {
	return func(
		srv interface{},
		ss grpc.ServerStream,
		info *grpc.StreamServerInfo,
		handler grpc.StreamHandler,
	) error {
		ctx, err := authorizeIncoming(ss.Context(), a)
		if err != nil {
			return err
		}
		return handler(srv, &authorizedStream{ServerStream: ss, ctx: ctx})
	}
}

func authorizeIncoming[T any](ctx context.Context, a *Authorizer[T]) (context.Context, error) {
	// Missing metadata falls through as a missing header
	md, _ := metadata.FromIncomingContext(ctx)

	var requestID string
	if ids := md.Get(requestIDMetadataKey); len(ids) > 0 {
		requestID = ids[0]
	}
	ctx = WithRequestID(ctx, requestIDFrom(requestID))

	value, err := a.AuthorizeValues(ctx, md.Get(authorizationMetadataKey))
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, "unauthorized")
	}
	return WithPrivilege(ctx, value), nil
}

// authorizedStream overrides the context of a server stream
type authorizedStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s *authorizedStream) Context() context.Context {
	return s.ctx
}
