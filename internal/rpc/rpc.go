// Package rpc declares the clipview.v1.History gRPC service: its messages,
// its service descriptor and a typed client. Messages travel as JSON through
// a codec registered under the "json" content subtype.
package rpc

import (
	"context"

	"google.golang.org/grpc"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "clipview.v1.History"

// FullMethod returns the gRPC path of method.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// HistoryServer is the server API of the History service.
type HistoryServer interface {
	EntryIDs(context.Context, *Empty) (*IDList, error)
	Entry(context.Context, *IDRequest) (*Entry, error)
	ConfigValue(context.Context, *ConfigRequest) (*ConfigValue, error)
	ResizeWindow(context.Context, *Empty) (*Empty, error)
	PushToClipboard(context.Context, *IDRequest) (*Empty, error)
	DeleteItem(context.Context, *IDRequest) (*Empty, error)
	DeleteAll(context.Context, *Empty) (*Empty, error)
	TogglePin(context.Context, *PinRequest) (*BoolReply, error)
	ForceLanguage(context.Context, *LanguageRequest) (*Empty, error)
	UnpinAll(context.Context, *Empty) (*BoolReply, error)
	OpenSettings(context.Context, *Empty) (*Empty, error)
	OpenURL(context.Context, *URLRequest) (*Empty, error)
	// Emit publishes an event to every Events subscriber.
	Emit(context.Context, *Event) (*Empty, error)
	// Events streams pushed events until the client goes away.
	Events(*Empty, grpc.ServerStreamingServer[Event]) error
}

// ServiceDesc describes the History service for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*HistoryServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("EntryIDs", HistoryServer.EntryIDs),
		unary("Entry", HistoryServer.Entry),
		unary("ConfigValue", HistoryServer.ConfigValue),
		unary("ResizeWindow", HistoryServer.ResizeWindow),
		unary("PushToClipboard", HistoryServer.PushToClipboard),
		unary("DeleteItem", HistoryServer.DeleteItem),
		unary("DeleteAll", HistoryServer.DeleteAll),
		unary("TogglePin", HistoryServer.TogglePin),
		unary("ForceLanguage", HistoryServer.ForceLanguage),
		unary("UnpinAll", HistoryServer.UnpinAll),
		unary("OpenSettings", HistoryServer.OpenSettings),
		unary("OpenURL", HistoryServer.OpenURL),
		unary("Emit", HistoryServer.Emit),
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Events",
			Handler:       eventsHandler,
			ServerStreams: true,
		},
	},
	Metadata: "clipview/v1/history",
}

// RegisterHistoryServer registers srv on s.
func RegisterHistoryServer(s grpc.ServiceRegistrar, srv HistoryServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func unary[Req, Resp any](name string, call func(HistoryServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(HistoryServer), ctx, req.(*Req))
			}
			if interceptor == nil {
				return handler(ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(name)}
			return interceptor(ctx, in, info, handler)
		},
	}
}

func eventsHandler(srv any, stream grpc.ServerStream) error {
	in := new(Empty)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(HistoryServer).Events(in, &grpc.GenericServerStream[Empty, Event]{ServerStream: stream})
}

// HistoryClient is the client API of the History service.
type HistoryClient struct {
	cc grpc.ClientConnInterface
}

// NewHistoryClient returns a client over cc.
func NewHistoryClient(cc grpc.ClientConnInterface) *HistoryClient {
	return &HistoryClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HistoryClient) EntryIDs(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*IDList, error) {
	return invoke[IDList](ctx, c.cc, "EntryIDs", in, opts)
}

func (c *HistoryClient) Entry(ctx context.Context, in *IDRequest, opts ...grpc.CallOption) (*Entry, error) {
	return invoke[Entry](ctx, c.cc, "Entry", in, opts)
}

func (c *HistoryClient) ConfigValue(ctx context.Context, in *ConfigRequest, opts ...grpc.CallOption) (*ConfigValue, error) {
	return invoke[ConfigValue](ctx, c.cc, "ConfigValue", in, opts)
}

func (c *HistoryClient) ResizeWindow(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, "ResizeWindow", in, opts)
}

func (c *HistoryClient) PushToClipboard(ctx context.Context, in *IDRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, "PushToClipboard", in, opts)
}

func (c *HistoryClient) DeleteItem(ctx context.Context, in *IDRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, "DeleteItem", in, opts)
}

func (c *HistoryClient) DeleteAll(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, "DeleteAll", in, opts)
}

func (c *HistoryClient) TogglePin(ctx context.Context, in *PinRequest, opts ...grpc.CallOption) (*BoolReply, error) {
	return invoke[BoolReply](ctx, c.cc, "TogglePin", in, opts)
}

func (c *HistoryClient) ForceLanguage(ctx context.Context, in *LanguageRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, "ForceLanguage", in, opts)
}

func (c *HistoryClient) UnpinAll(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*BoolReply, error) {
	return invoke[BoolReply](ctx, c.cc, "UnpinAll", in, opts)
}

func (c *HistoryClient) OpenSettings(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, "OpenSettings", in, opts)
}

func (c *HistoryClient) OpenURL(ctx context.Context, in *URLRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, "OpenURL", in, opts)
}

func (c *HistoryClient) Emit(ctx context.Context, in *Event, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, "Emit", in, opts)
}

// Events opens the pushed-event stream.
func (c *HistoryClient) Events(ctx context.Context, in *Empty, opts ...grpc.CallOption) (grpc.ServerStreamingClient[Event], error) {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	stream, err := c.cc.NewStream(ctx, &ServiceDesc.Streams[0], FullMethod("Events"), opts...)
	if err != nil {
		return nil, err
	}
	x := &grpc.GenericClientStream[Empty, Event]{ClientStream: stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}
