package grpc

import (
	"context"
	"errors"
	"strings"

	"github.com/vibast-solutions/ms-go-idmatch/app/entity"
	"github.com/vibast-solutions/ms-go-idmatch/app/service"
	"github.com/vibast-solutions/ms-go-idmatch/app/types"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type IdentityServer struct {
	types.UnimplementedIdentityServiceServer
	lookup service.IdentityLookup
}

func NewIdentityServer(lookup service.IdentityLookup) *IdentityServer {
	return &IdentityServer{lookup: lookup}
}

func (s *IdentityServer) LookupByEmail(_ context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	email := strings.TrimSpace(req.GetValue())
	if email == "" {
		logrus.Debug("Lookup by email validation failed (grpc)")
		return nil, status.Error(codes.InvalidArgument, "email is required")
	}

	found, err := s.lookup.LookupByEmail(email)
	if err != nil {
		return nil, lookupStatus(err, "Lookup by email failed (grpc)")
	}
	return types.IdentitiesToStruct(found), nil
}

func (s *IdentityServer) LookupByName(_ context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	name := strings.TrimSpace(req.GetValue())
	if name == "" {
		logrus.Debug("Lookup by name validation failed (grpc)")
		return nil, status.Error(codes.InvalidArgument, "name is required")
	}

	found, err := s.lookup.LookupByName(name)
	if err != nil {
		return nil, lookupStatus(err, "Lookup by name failed (grpc)")
	}
	return types.IdentitiesToStruct(found), nil
}

func (s *IdentityServer) GetIdentity(_ context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error) {
	if req.GetValue() < 0 {
		return nil, status.Error(codes.InvalidArgument, "invalid identity id")
	}

	identity, err := s.lookup.Get(int(req.GetValue()))
	if err != nil {
		return nil, lookupStatus(err, "Get identity failed (grpc)")
	}
	return types.IdentitiesToStruct([]*entity.Identity{identity}), nil
}

func (s *IdentityServer) GetReport(_ context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	report, err := s.lookup.Report()
	if err != nil {
		return nil, lookupStatus(err, "Get report failed (grpc)")
	}
	return types.ReportToStruct(report), nil
}

func lookupStatus(err error, msg string) error {
	switch {
	case errors.Is(err, service.ErrIdentityNotFound):
		return status.Error(codes.NotFound, "identity not found")
	case errors.Is(err, service.ErrReportUnavailable):
		return status.Error(codes.NotFound, "evaluation report unavailable")
	case errors.Is(err, service.ErrIndexNotReady):
		return status.Error(codes.Unavailable, "identities not loaded")
	}
	logrus.WithError(err).Error(msg)
	return status.Error(codes.Internal, "internal server error")
}
