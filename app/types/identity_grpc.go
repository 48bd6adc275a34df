package types

import (
	"context"

	"github.com/vibast-solutions/ms-go-idmatch/app/entity"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	IdentityService_LookupByEmail_FullMethodName = "/idmatch.v1.IdentityService/LookupByEmail"
	IdentityService_LookupByName_FullMethodName  = "/idmatch.v1.IdentityService/LookupByName"
	IdentityService_GetIdentity_FullMethodName   = "/idmatch.v1.IdentityService/GetIdentity"
	IdentityService_GetReport_FullMethodName     = "/idmatch.v1.IdentityService/GetReport"
)

// IdentityServiceServer speaks well-known protobuf messages only. Lookups take a
// string or an id, results are structs shaped like the HTTP responses.
type IdentityServiceServer interface {
	LookupByEmail(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	LookupByName(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	GetIdentity(context.Context, *wrapperspb.Int64Value) (*structpb.Struct, error)
	GetReport(context.Context, *emptypb.Empty) (*structpb.Struct, error)
}

type UnimplementedIdentityServiceServer struct{}

func (UnimplementedIdentityServiceServer) LookupByEmail(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method LookupByEmail not implemented")
}

func (UnimplementedIdentityServiceServer) LookupByName(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method LookupByName not implemented")
}

func (UnimplementedIdentityServiceServer) GetIdentity(context.Context, *wrapperspb.Int64Value) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method GetIdentity not implemented")
}

func (UnimplementedIdentityServiceServer) GetReport(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method GetReport not implemented")
}

func RegisterIdentityServiceServer(s grpc.ServiceRegistrar, srv IdentityServiceServer) {
	s.RegisterService(&IdentityService_ServiceDesc, srv)
}

func _IdentityService_LookupByEmail_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(IdentityServiceServer).LookupByEmail(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: IdentityService_LookupByEmail_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(IdentityServiceServer).LookupByEmail(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func _IdentityService_LookupByName_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(IdentityServiceServer).LookupByName(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: IdentityService_LookupByName_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(IdentityServiceServer).LookupByName(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func _IdentityService_GetIdentity_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.Int64Value)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(IdentityServiceServer).GetIdentity(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: IdentityService_GetIdentity_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(IdentityServiceServer).GetIdentity(ctx, req.(*wrapperspb.Int64Value))
	}
	return interceptor(ctx, in, info, handler)
}

func _IdentityService_GetReport_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(IdentityServiceServer).GetReport(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: IdentityService_GetReport_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(IdentityServiceServer).GetReport(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

var IdentityService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "idmatch.v1.IdentityService",
	HandlerType: (*IdentityServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "LookupByEmail", Handler: _IdentityService_LookupByEmail_Handler},
		{MethodName: "LookupByName", Handler: _IdentityService_LookupByName_Handler},
		{MethodName: "GetIdentity", Handler: _IdentityService_GetIdentity_Handler},
		{MethodName: "GetReport", Handler: _IdentityService_GetReport_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "idmatch/v1/identity.proto",
}

type IdentityServiceClient interface {
	LookupByEmail(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error)
	LookupByName(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error)
	GetIdentity(ctx context.Context, in *wrapperspb.Int64Value, opts ...grpc.CallOption) (*structpb.Struct, error)
	GetReport(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type identityServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewIdentityServiceClient(cc grpc.ClientConnInterface) IdentityServiceClient {
	return &identityServiceClient{cc: cc}
}

func (c *identityServiceClient) LookupByEmail(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, IdentityService_LookupByEmail_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *identityServiceClient) LookupByName(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, IdentityService_LookupByName_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *identityServiceClient) GetIdentity(ctx context.Context, in *wrapperspb.Int64Value, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, IdentityService_GetIdentity_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *identityServiceClient) GetReport(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, IdentityService_GetReport_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func IdentityToValue(identity *entity.Identity) *structpb.Value {
	return structpb.NewStructValue(&structpb.Struct{Fields: map[string]*structpb.Value{
		"id":     structpb.NewNumberValue(float64(identity.ID)),
		"names":  stringList(identity.Names.Sorted()),
		"emails": stringList(identity.Emails.Sorted()),
	}})
}

func IdentitiesToStruct(identities []*entity.Identity) *structpb.Struct {
	values := make([]*structpb.Value, 0, len(identities))
	for _, identity := range identities {
		values = append(values, IdentityToValue(identity))
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"identities": structpb.NewListValue(&structpb.ListValue{Values: values}),
	}}
}

func ReportToStruct(report *entity.Report) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"precision":          structpb.NewNumberValue(report.Precision),
		"recall":             structpb.NewNumberValue(report.Recall),
		"f1":                 structpb.NewNumberValue(report.F1),
		"weighted_precision": structpb.NewNumberValue(report.WeightedPrecision),
		"weighted_recall":    structpb.NewNumberValue(report.WeightedRecall),
		"weighted_f1":        structpb.NewNumberValue(report.WeightedF1),
		"samples":            structpb.NewNumberValue(float64(report.Samples)),
	}}
}

func stringList(values []string) *structpb.Value {
	list := make([]*structpb.Value, 0, len(values))
	for _, v := range values {
		list = append(list, structpb.NewStringValue(v))
	}
	return structpb.NewListValue(&structpb.ListValue{Values: list})
}
