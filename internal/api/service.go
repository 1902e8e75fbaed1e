package api

import (
	"context"

	"google.golang.org/grpc"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "portal.gateway.v1.Gateway"

// Method names.
const (
	MethodPing                        = "Ping"
	MethodSignUp                      = "SignUp"
	MethodSignIn                      = "SignIn"
	MethodRefreshToken                = "RefreshToken"
	MethodGetUser                     = "GetUser"
	MethodListUsers                   = "ListUsers"
	MethodDeleteUser                  = "DeleteUser"
	MethodListCollections             = "ListCollections"
	MethodCreateCollection            = "CreateCollection"
	MethodSetCollectionPin            = "SetCollectionPin"
	MethodVerifyCollectionPin         = "VerifyCollectionPin"
	MethodListImages                  = "ListImages"
	MethodListGallery                 = "ListGallery"
	MethodUploadImage                 = "UploadImage"
	MethodDeleteImage                 = "DeleteImage"
	MethodCreateSignedURL             = "CreateSignedURL"
	MethodGetDownloadPin              = "GetDownloadPin"
	MethodSetDownloadPin              = "SetDownloadPin"
	MethodCreatePurchaseRequest       = "CreatePurchaseRequest"
	MethodListPurchaseRequests        = "ListPurchaseRequests"
	MethodUpdatePurchaseRequestStatus = "UpdatePurchaseRequestStatus"
	MethodSubscribe                   = "Subscribe"
)

// FullMethod returns "/<service>/<method>" as seen by interceptors.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// GatewayServer is implemented by the gateway's gRPC handler.
type GatewayServer interface {
	Ping(context.Context, *PingRequest) (*PingResponse, error)
	SignUp(context.Context, *SignUpRequest) (*Session, error)
	SignIn(context.Context, *SignInRequest) (*Session, error)
	RefreshToken(context.Context, *RefreshTokenRequest) (*Session, error)
	GetUser(context.Context, *GetUserRequest) (*User, error)
	ListUsers(context.Context, *ListUsersRequest) (*ListUsersResponse, error)
	DeleteUser(context.Context, *DeleteUserRequest) (*Empty, error)
	ListCollections(context.Context, *ListCollectionsRequest) (*ListCollectionsResponse, error)
	CreateCollection(context.Context, *CreateCollectionRequest) (*Collection, error)
	SetCollectionPin(context.Context, *SetCollectionPinRequest) (*Empty, error)
	VerifyCollectionPin(context.Context, *VerifyCollectionPinRequest) (*VerifyCollectionPinResponse, error)
	ListImages(context.Context, *ListImagesRequest) (*ListImagesResponse, error)
	ListGallery(context.Context, *ListGalleryRequest) (*ListImagesResponse, error)
	UploadImage(context.Context, *UploadImageRequest) (*Image, error)
	DeleteImage(context.Context, *DeleteImageRequest) (*Empty, error)
	CreateSignedURL(context.Context, *CreateSignedURLRequest) (*CreateSignedURLResponse, error)
	GetDownloadPin(context.Context, *GetDownloadPinRequest) (*DownloadPinResponse, error)
	SetDownloadPin(context.Context, *SetDownloadPinRequest) (*Empty, error)
	CreatePurchaseRequest(context.Context, *CreatePurchaseRequestRequest) (*PurchaseRequest, error)
	ListPurchaseRequests(context.Context, *ListPurchaseRequestsRequest) (*ListPurchaseRequestsResponse, error)
	UpdatePurchaseRequestStatus(context.Context, *UpdatePurchaseRequestStatusRequest) (*PurchaseRequest, error)
	Subscribe(*SubscribeRequest, Gateway_SubscribeServer) error
}

// Gateway_SubscribeServer is the server side of the realtime stream.
type Gateway_SubscribeServer interface {
	Send(*ChangeEvent) error
	grpc.ServerStream
}

type gatewaySubscribeServer struct {
	grpc.ServerStream
}

func (x *gatewaySubscribeServer) Send(m *ChangeEvent) error {
	return x.ServerStream.SendMsg(m)
}

// unary builds a MethodDesc that decodes Req, runs it through the server
// interceptor chain and dispatches to call.
func unary[Req any, Resp any](name string, call func(GatewayServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(GatewayServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(name)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(GatewayServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

func subscribeHandler(srv any, stream grpc.ServerStream) error {
	in := new(SubscribeRequest)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(GatewayServer).Subscribe(in, &gatewaySubscribeServer{stream})
}

// ServiceDesc describes the gateway service for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*GatewayServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(MethodPing, GatewayServer.Ping),
		unary(MethodSignUp, GatewayServer.SignUp),
		unary(MethodSignIn, GatewayServer.SignIn),
		unary(MethodRefreshToken, GatewayServer.RefreshToken),
		unary(MethodGetUser, GatewayServer.GetUser),
		unary(MethodListUsers, GatewayServer.ListUsers),
		unary(MethodDeleteUser, GatewayServer.DeleteUser),
		unary(MethodListCollections, GatewayServer.ListCollections),
		unary(MethodCreateCollection, GatewayServer.CreateCollection),
		unary(MethodSetCollectionPin, GatewayServer.SetCollectionPin),
		unary(MethodVerifyCollectionPin, GatewayServer.VerifyCollectionPin),
		unary(MethodListImages, GatewayServer.ListImages),
		unary(MethodListGallery, GatewayServer.ListGallery),
		unary(MethodUploadImage, GatewayServer.UploadImage),
		unary(MethodDeleteImage, GatewayServer.DeleteImage),
		unary(MethodCreateSignedURL, GatewayServer.CreateSignedURL),
		unary(MethodGetDownloadPin, GatewayServer.GetDownloadPin),
		unary(MethodSetDownloadPin, GatewayServer.SetDownloadPin),
		unary(MethodCreatePurchaseRequest, GatewayServer.CreatePurchaseRequest),
		unary(MethodListPurchaseRequests, GatewayServer.ListPurchaseRequests),
		unary(MethodUpdatePurchaseRequestStatus, GatewayServer.UpdatePurchaseRequestStatus),
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    MethodSubscribe,
			Handler:       subscribeHandler,
			ServerStreams: true,
		},
	},
	Metadata: "gateway.json",
}

// RegisterGatewayServer registers srv on s.
func RegisterGatewayServer(s grpc.ServiceRegistrar, srv GatewayServer) {
	s.RegisterService(&ServiceDesc, srv)
}
