package grpc

import (
	"context"
	"errors"
	"strings"

	"github.com/vibast-solutions/ms-go-idmatch/app/service"

	"github.com/sirupsen/logrus"
	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

func APIKeyUnaryInterceptor(verifier service.APIKeyVerifier) gogrpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, _ *gogrpc.UnaryServerInfo, handler gogrpc.UnaryHandler) (any, error) {
		if err := validateIncomingAPIKey(ctx, verifier); err != nil {
			return nil, err
		}
		return handler(ctx, req)
	}
}

func APIKeyStreamInterceptor(verifier service.APIKeyVerifier) gogrpc.StreamServerInterceptor {
	return func(srv any, ss gogrpc.ServerStream, _ *gogrpc.StreamServerInfo, handler gogrpc.StreamHandler) error {
		if err := validateIncomingAPIKey(ss.Context(), verifier); err != nil {
			return err
		}
		return handler(srv, ss)
	}
}

func validateIncomingAPIKey(ctx context.Context, verifier service.APIKeyVerifier) error {
	apiKey := incomingAPIKeyFromMetadata(ctx)
	if apiKey == "" {
		return status.Error(codes.Unauthenticated, "unauthorized")
	}

	if err := verifier.Verify(apiKey); err != nil {
		if errors.Is(err, service.ErrInvalidAPIKey) {
			return status.Error(codes.Unauthenticated, "unauthorized")
		}
		logrus.WithError(err).Error("API key validation failed (grpc)")
		return status.Error(codes.Internal, "internal server error")
	}

	return nil
}

func incomingAPIKeyFromMetadata(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	values := md.Get("x-api-key")
	if len(values) == 0 {
		return ""
	}
	return strings.TrimSpace(values[0])
}
