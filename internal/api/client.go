package api

import (
	"context"
	"errors"
	"io"

	"google.golang.org/grpc"
)

// GatewayClient is the client API for the gateway service.
type GatewayClient interface {
	Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error)
	SignUp(ctx context.Context, in *SignUpRequest, opts ...grpc.CallOption) (*Session, error)
	SignIn(ctx context.Context, in *SignInRequest, opts ...grpc.CallOption) (*Session, error)
	RefreshToken(ctx context.Context, in *RefreshTokenRequest, opts ...grpc.CallOption) (*Session, error)
	GetUser(ctx context.Context, in *GetUserRequest, opts ...grpc.CallOption) (*User, error)
	ListUsers(ctx context.Context, in *ListUsersRequest, opts ...grpc.CallOption) (*ListUsersResponse, error)
	DeleteUser(ctx context.Context, in *DeleteUserRequest, opts ...grpc.CallOption) (*Empty, error)
	ListCollections(ctx context.Context, in *ListCollectionsRequest, opts ...grpc.CallOption) (*ListCollectionsResponse, error)
	CreateCollection(ctx context.Context, in *CreateCollectionRequest, opts ...grpc.CallOption) (*Collection, error)
	SetCollectionPin(ctx context.Context, in *SetCollectionPinRequest, opts ...grpc.CallOption) (*Empty, error)
	VerifyCollectionPin(ctx context.Context, in *VerifyCollectionPinRequest, opts ...grpc.CallOption) (*VerifyCollectionPinResponse, error)
	ListImages(ctx context.Context, in *ListImagesRequest, opts ...grpc.CallOption) (*ListImagesResponse, error)
	ListGallery(ctx context.Context, in *ListGalleryRequest, opts ...grpc.CallOption) (*ListImagesResponse, error)
	UploadImage(ctx context.Context, in *UploadImageRequest, opts ...grpc.CallOption) (*Image, error)
	DeleteImage(ctx context.Context, in *DeleteImageRequest, opts ...grpc.CallOption) (*Empty, error)
	CreateSignedURL(ctx context.Context, in *CreateSignedURLRequest, opts ...grpc.CallOption) (*CreateSignedURLResponse, error)
	GetDownloadPin(ctx context.Context, in *GetDownloadPinRequest, opts ...grpc.CallOption) (*DownloadPinResponse, error)
	SetDownloadPin(ctx context.Context, in *SetDownloadPinRequest, opts ...grpc.CallOption) (*Empty, error)
	CreatePurchaseRequest(ctx context.Context, in *CreatePurchaseRequestRequest, opts ...grpc.CallOption) (*PurchaseRequest, error)
	ListPurchaseRequests(ctx context.Context, in *ListPurchaseRequestsRequest, opts ...grpc.CallOption) (*ListPurchaseRequestsResponse, error)
	UpdatePurchaseRequestStatus(ctx context.Context, in *UpdatePurchaseRequestStatusRequest, opts ...grpc.CallOption) (*PurchaseRequest, error)
	Subscribe(ctx context.Context, in *SubscribeRequest, opts ...grpc.CallOption) (Gateway_SubscribeClient, error)
}

// Gateway_SubscribeClient receives realtime change events.
type Gateway_SubscribeClient interface {
	Recv() (*ChangeEvent, error)
	grpc.ClientStream
}

type gatewayClient struct {
	cc grpc.ClientConnInterface
}

// NewGatewayClient returns a stub that speaks the JSON codec over cc.
func NewGatewayClient(cc grpc.ClientConnInterface) GatewayClient {
	return &gatewayClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *gatewayClient) Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error) {
	return invoke[PingResponse](ctx, c.cc, MethodPing, in, opts)
}

func (c *gatewayClient) SignUp(ctx context.Context, in *SignUpRequest, opts ...grpc.CallOption) (*Session, error) {
	return invoke[Session](ctx, c.cc, MethodSignUp, in, opts)
}

func (c *gatewayClient) SignIn(ctx context.Context, in *SignInRequest, opts ...grpc.CallOption) (*Session, error) {
	return invoke[Session](ctx, c.cc, MethodSignIn, in, opts)
}

func (c *gatewayClient) RefreshToken(ctx context.Context, in *RefreshTokenRequest, opts ...grpc.CallOption) (*Session, error) {
	return invoke[Session](ctx, c.cc, MethodRefreshToken, in, opts)
}

func (c *gatewayClient) GetUser(ctx context.Context, in *GetUserRequest, opts ...grpc.CallOption) (*User, error) {
	return invoke[User](ctx, c.cc, MethodGetUser, in, opts)
}

func (c *gatewayClient) ListUsers(ctx context.Context, in *ListUsersRequest, opts ...grpc.CallOption) (*ListUsersResponse, error) {
	return invoke[ListUsersResponse](ctx, c.cc, MethodListUsers, in, opts)
}

func (c *gatewayClient) DeleteUser(ctx context.Context, in *DeleteUserRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, MethodDeleteUser, in, opts)
}

func (c *gatewayClient) ListCollections(ctx context.Context, in *ListCollectionsRequest, opts ...grpc.CallOption) (*ListCollectionsResponse, error) {
	return invoke[ListCollectionsResponse](ctx, c.cc, MethodListCollections, in, opts)
}

func (c *gatewayClient) CreateCollection(ctx context.Context, in *CreateCollectionRequest, opts ...grpc.CallOption) (*Collection, error) {
	return invoke[Collection](ctx, c.cc, MethodCreateCollection, in, opts)
}

func (c *gatewayClient) SetCollectionPin(ctx context.Context, in *SetCollectionPinRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, MethodSetCollectionPin, in, opts)
}

func (c *gatewayClient) VerifyCollectionPin(ctx context.Context, in *VerifyCollectionPinRequest, opts ...grpc.CallOption) (*VerifyCollectionPinResponse, error) {
	return invoke[VerifyCollectionPinResponse](ctx, c.cc, MethodVerifyCollectionPin, in, opts)
}

func (c *gatewayClient) ListImages(ctx context.Context, in *ListImagesRequest, opts ...grpc.CallOption) (*ListImagesResponse, error) {
	return invoke[ListImagesResponse](ctx, c.cc, MethodListImages, in, opts)
}

func (c *gatewayClient) ListGallery(ctx context.Context, in *ListGalleryRequest, opts ...grpc.CallOption) (*ListImagesResponse, error) {
	return invoke[ListImagesResponse](ctx, c.cc, MethodListGallery, in, opts)
}

func (c *gatewayClient) UploadImage(ctx context.Context, in *UploadImageRequest, opts ...grpc.CallOption) (*Image, error) {
	return invoke[Image](ctx, c.cc, MethodUploadImage, in, opts)
}

func (c *gatewayClient) DeleteImage(ctx context.Context, in *DeleteImageRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, MethodDeleteImage, in, opts)
}

func (c *gatewayClient) CreateSignedURL(ctx context.Context, in *CreateSignedURLRequest, opts ...grpc.CallOption) (*CreateSignedURLResponse, error) {
	return invoke[CreateSignedURLResponse](ctx, c.cc, MethodCreateSignedURL, in, opts)
}

func (c *gatewayClient) GetDownloadPin(ctx context.Context, in *GetDownloadPinRequest, opts ...grpc.CallOption) (*DownloadPinResponse, error) {
	return invoke[DownloadPinResponse](ctx, c.cc, MethodGetDownloadPin, in, opts)
}

func (c *gatewayClient) SetDownloadPin(ctx context.Context, in *SetDownloadPinRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, MethodSetDownloadPin, in, opts)
}

func (c *gatewayClient) CreatePurchaseRequest(ctx context.Context, in *CreatePurchaseRequestRequest, opts ...grpc.CallOption) (*PurchaseRequest, error) {
	return invoke[PurchaseRequest](ctx, c.cc, MethodCreatePurchaseRequest, in, opts)
}

func (c *gatewayClient) ListPurchaseRequests(ctx context.Context, in *ListPurchaseRequestsRequest, opts ...grpc.CallOption) (*ListPurchaseRequestsResponse, error) {
	return invoke[ListPurchaseRequestsResponse](ctx, c.cc, MethodListPurchaseRequests, in, opts)
}

func (c *gatewayClient) UpdatePurchaseRequestStatus(ctx context.Context, in *UpdatePurchaseRequestStatusRequest, opts ...grpc.CallOption) (*PurchaseRequest, error) {
	return invoke[PurchaseRequest](ctx, c.cc, MethodUpdatePurchaseRequestStatus, in, opts)
}

func (c *gatewayClient) Subscribe(ctx context.Context, in *SubscribeRequest, opts ...grpc.CallOption) (Gateway_SubscribeClient, error) {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	stream, err := c.cc.NewStream(ctx, &ServiceDesc.Streams[0], FullMethod(MethodSubscribe), opts...)
	if err != nil {
		return nil, err
	}
	x := &gatewaySubscribeClient{stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		// io.EOF means the server already ended the stream; Recv reports why.
		if errors.Is(err, io.EOF) {
			return x, nil
		}
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

type gatewaySubscribeClient struct {
	grpc.ClientStream
}

func (x *gatewaySubscribeClient) Recv() (*ChangeEvent, error) {
	m := new(ChangeEvent)
	if err := x.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}
