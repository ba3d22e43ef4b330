package grpcserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	ServiceName          = "availability.v1.AvailabilityService"
	GetTimetablesMethod  = "/" + ServiceName + "/GetTimetables"
	serviceDescMetadata  = "availability/v1/availability.proto"
	getTimetablesRPCName = "GetTimetables"
)

// AvailabilityServer is the server API. Payloads are google.protobuf.Struct
// values carrying the same snake_case fields as the HTTP API.
type AvailabilityServer interface {
	GetTimetables(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
}

func RegisterAvailabilityServer(s grpc.ServiceRegistrar, srv AvailabilityServer) {
	s.RegisterService(&availabilityServiceDesc, srv)
}

func getTimetablesHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AvailabilityServer).GetTimetables(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: GetTimetablesMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(AvailabilityServer).GetTimetables(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

var availabilityServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AvailabilityServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: getTimetablesRPCName,
			Handler:    getTimetablesHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: serviceDescMetadata,
}
