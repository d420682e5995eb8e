package control

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "scripturealarm.v1.ControlService"

const (
	methodDismiss   = "/" + ServiceName + "/Dismiss"
	methodSnooze    = "/" + ServiceName + "/Snooze"
	methodReadAgain = "/" + ServiceName + "/ReadAgain"
	methodStatus    = "/" + ServiceName + "/Status"
	methodReload    = "/" + ServiceName + "/Reload"
)

// ControlServer is the server side of the control API.
type ControlServer interface {
	// Dismiss ends alerts and replies with how many were ended.
	Dismiss(ctx context.Context, req *wrapperspb.Int64Value) (*wrapperspb.Int64Value, error)
	// Snooze ends alerts and replies with their re-fire instants.
	Snooze(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error)
	// ReadAgain replays the verse and replies with how many alerts replayed it.
	ReadAgain(ctx context.Context, req *wrapperspb.Int64Value) (*wrapperspb.Int64Value, error)
	// Status describes active alerts and pending timers.
	Status(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error)
	// Reload re-reads the alarm store and reconciles the timers.
	Reload(ctx context.Context, req *emptypb.Empty) (*emptypb.Empty, error)
}

// RegisterControlServer registers srv on the gRPC server.
func RegisterControlServer(registrar grpc.ServiceRegistrar, srv ControlServer) {
	registrar.RegisterService(&serviceDesc, srv)
}

//nolint:gochecknoglobals // gRPC service descriptors are package level by convention.
var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ControlServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Dismiss", Handler: dismissHandler},
		{MethodName: "Snooze", Handler: snoozeHandler},
		{MethodName: "ReadAgain", Handler: readAgainHandler},
		{MethodName: "Status", Handler: statusHandler},
		{MethodName: "Reload", Handler: reloadHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "scripturealarm/v1/control.proto",
}

// unary decodes the request into a fresh In and routes the call through the
// interceptor when one is installed.
func unary[In any, Out any](
	method string,
	call func(ControlServer, context.Context, *In) (*Out, error),
) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(In)
		if err := dec(in); err != nil {
			return nil, err
		}

		server, _ := srv.(ControlServer)
		if interceptor == nil {
			return call(server, ctx, in)
		}

		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: method,
		}

		handler := func(ctx context.Context, req any) (any, error) {
			typed, _ := req.(*In)

			return call(server, ctx, typed)
		}

		return interceptor(ctx, in, info, handler)
	}
}

//nolint:gochecknoglobals // Method handlers referenced by serviceDesc.
var (
	dismissHandler = unary(methodDismiss,
		func(s ControlServer, ctx context.Context, in *wrapperspb.Int64Value) (*wrapperspb.Int64Value, error) {
			return s.Dismiss(ctx, in)
		})
	snoozeHandler = unary(methodSnooze,
		func(s ControlServer, ctx context.Context, in *wrapperspb.Int64Value) (*structpb.Struct, error) {
			return s.Snooze(ctx, in)
		})
	readAgainHandler = unary(methodReadAgain,
		func(s ControlServer, ctx context.Context, in *wrapperspb.Int64Value) (*wrapperspb.Int64Value, error) {
			return s.ReadAgain(ctx, in)
		})
	statusHandler = unary(methodStatus,
		func(s ControlServer, ctx context.Context, in *emptypb.Empty) (*structpb.Struct, error) {
			return s.Status(ctx, in)
		})
	reloadHandler = unary(methodReload,
		func(s ControlServer, ctx context.Context, in *emptypb.Empty) (*emptypb.Empty, error) {
			return s.Reload(ctx, in)
		})
)
