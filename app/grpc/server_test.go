package grpc_test

import (
	"context"
	"testing"

	"github.com/vibast-solutions/ms-go-idmatch/app/entity"
	idmatchgrpc "github.com/vibast-solutions/ms-go-idmatch/app/grpc"
	"github.com/vibast-solutions/ms-go-idmatch/app/normalize"
	"github.com/vibast-solutions/ms-go-idmatch/app/service"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

func newIdentityServer(report *entity.Report) *idmatchgrpc.IdentityServer {
	identities := entity.NewIdentities()
	alice := identities.GetOrInsert(0)
	alice.Names.Add("alice")
	alice.Emails.Add("a@x.com")
	bob := identities.GetOrInsert(1)
	bob.Names.Add("bob")
	bob.Emails.Add("b@y.com")

	index := service.NewIdentityIndex(normalize.Normalizer{LowerNames: true, LowerEmails: true})
	index.Replace("run-1", identities, report)
	return idmatchgrpc.NewIdentityServer(index)
}

func identityIDs(t *testing.T, s *structpb.Struct) []float64 {
	t.Helper()

	var ids []float64
	for _, v := range s.GetFields()["identities"].GetListValue().GetValues() {
		ids = append(ids, v.GetStructValue().GetFields()["id"].GetNumberValue())
	}
	return ids
}

func TestLookupByEmail(t *testing.T) {
	server := newIdentityServer(nil)

	res, err := server.LookupByEmail(context.Background(), wrapperspb.String(" B@Y.com"))
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	ids := identityIDs(t, res)
	if len(ids) != 1 || ids[0] != 1 {
		t.Fatalf("expected identity 1, got %v", ids)
	}

	_, err = server.LookupByEmail(context.Background(), wrapperspb.String(""))
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("expected invalid argument, got %v", err)
	}

	_, err = server.LookupByEmail(context.Background(), wrapperspb.String("nobody@x.com"))
	if status.Code(err) != codes.NotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestLookupByName(t *testing.T) {
	server := newIdentityServer(nil)

	res, err := server.LookupByName(context.Background(), wrapperspb.String("Alice"))
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if ids := identityIDs(t, res); len(ids) != 1 || ids[0] != 0 {
		t.Fatalf("expected identity 0, got %v", ids)
	}

	_, err = server.LookupByName(context.Background(), nil)
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("expected invalid argument, got %v", err)
	}
}

func TestGetIdentity(t *testing.T) {
	server := newIdentityServer(nil)

	res, err := server.GetIdentity(context.Background(), wrapperspb.Int64(1))
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if ids := identityIDs(t, res); len(ids) != 1 || ids[0] != 1 {
		t.Fatalf("expected identity 1, got %v", ids)
	}

	if _, err = server.GetIdentity(context.Background(), wrapperspb.Int64(-1)); status.Code(err) != codes.InvalidArgument {
		t.Fatalf("expected invalid argument, got %v", err)
	}
	if _, err = server.GetIdentity(context.Background(), wrapperspb.Int64(7)); status.Code(err) != codes.NotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestGetReport(t *testing.T) {
	_, err := newIdentityServer(nil).GetReport(context.Background(), &emptypb.Empty{})
	if status.Code(err) != codes.NotFound {
		t.Fatalf("expected not found, got %v", err)
	}

	res, err := newIdentityServer(&entity.Report{F1: 0.75, Samples: 3}).GetReport(context.Background(), &emptypb.Empty{})
	if err != nil {
		t.Fatalf("report failed: %v", err)
	}
	if res.GetFields()["f1"].GetNumberValue() != 0.75 || res.GetFields()["samples"].GetNumberValue() != 3 {
		t.Fatalf("unexpected report %v", res)
	}
}

func TestIndexNotReady(t *testing.T) {
	server := idmatchgrpc.NewIdentityServer(service.NewIdentityIndex(normalize.Normalizer{}))
	_, err := server.LookupByEmail(context.Background(), wrapperspb.String("a@x.com"))
	if status.Code(err) != codes.Unavailable {
		t.Fatalf("expected unavailable, got %v", err)
	}
}
