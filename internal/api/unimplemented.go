package api

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// UnimplementedGatewayServer answers every method with codes.Unimplemented.
// Embed it to implement only part of the service.
type UnimplementedGatewayServer struct{}

func unimplemented(method string) error {
	return status.Errorf(codes.Unimplemented, "method %s not implemented", method)
}

func (UnimplementedGatewayServer) Ping(context.Context, *PingRequest) (*PingResponse, error) {
	return nil, unimplemented(MethodPing)
}
func (UnimplementedGatewayServer) SignUp(context.Context, *SignUpRequest) (*Session, error) {
	return nil, unimplemented(MethodSignUp)
}
func (UnimplementedGatewayServer) SignIn(context.Context, *SignInRequest) (*Session, error) {
	return nil, unimplemented(MethodSignIn)
}
func (UnimplementedGatewayServer) RefreshToken(context.Context, *RefreshTokenRequest) (*Session, error) {
	return nil, unimplemented(MethodRefreshToken)
}
func (UnimplementedGatewayServer) GetUser(context.Context, *GetUserRequest) (*User, error) {
	return nil, unimplemented(MethodGetUser)
}
func (UnimplementedGatewayServer) ListUsers(context.Context, *ListUsersRequest) (*ListUsersResponse, error) {
	return nil, unimplemented(MethodListUsers)
}
func (UnimplementedGatewayServer) DeleteUser(context.Context, *DeleteUserRequest) (*Empty, error) {
	return nil, unimplemented(MethodDeleteUser)
}
func (UnimplementedGatewayServer) ListCollections(context.Context, *ListCollectionsRequest) (*ListCollectionsResponse, error) {
	return nil, unimplemented(MethodListCollections)
}
func (UnimplementedGatewayServer) CreateCollection(context.Context, *CreateCollectionRequest) (*Collection, error) {
	return nil, unimplemented(MethodCreateCollection)
}
func (UnimplementedGatewayServer) SetCollectionPin(context.Context, *SetCollectionPinRequest) (*Empty, error) {
	return nil, unimplemented(MethodSetCollectionPin)
}
func (UnimplementedGatewayServer) VerifyCollectionPin(context.Context, *VerifyCollectionPinRequest) (*VerifyCollectionPinResponse, error) {
	return nil, unimplemented(MethodVerifyCollectionPin)
}
func (UnimplementedGatewayServer) ListImages(context.Context, *ListImagesRequest) (*ListImagesResponse, error) {
	return nil, unimplemented(MethodListImages)
}
func (UnimplementedGatewayServer) ListGallery(context.Context, *ListGalleryRequest) (*ListImagesResponse, error) {
	return nil, unimplemented(MethodListGallery)
}
func (UnimplementedGatewayServer) UploadImage(context.Context, *UploadImageRequest) (*Image, error) {
	return nil, unimplemented(MethodUploadImage)
}
func (UnimplementedGatewayServer) DeleteImage(context.Context, *DeleteImageRequest) (*Empty, error) {
	return nil, unimplemented(MethodDeleteImage)
}
func (UnimplementedGatewayServer) CreateSignedURL(context.Context, *CreateSignedURLRequest) (*CreateSignedURLResponse, error) {
	return nil, unimplemented(MethodCreateSignedURL)
}
func (UnimplementedGatewayServer) GetDownloadPin(context.Context, *GetDownloadPinRequest) (*DownloadPinResponse, error) {
	return nil, unimplemented(MethodGetDownloadPin)
}
func (UnimplementedGatewayServer) SetDownloadPin(context.Context, *SetDownloadPinRequest) (*Empty, error) {
	return nil, unimplemented(MethodSetDownloadPin)
}
func (UnimplementedGatewayServer) CreatePurchaseRequest(context.Context, *CreatePurchaseRequestRequest) (*PurchaseRequest, error) {
	return nil, unimplemented(MethodCreatePurchaseRequest)
}
func (UnimplementedGatewayServer) ListPurchaseRequests(context.Context, *ListPurchaseRequestsRequest) (*ListPurchaseRequestsResponse, error) {
	return nil, unimplemented(MethodListPurchaseRequests)
}
func (UnimplementedGatewayServer) UpdatePurchaseRequestStatus(context.Context, *UpdatePurchaseRequestStatusRequest) (*PurchaseRequest, error) {
	return nil, unimplemented(MethodUpdatePurchaseRequestStatus)
}
func (UnimplementedGatewayServer) Subscribe(*SubscribeRequest, Gateway_SubscribeServer) error {
	return unimplemented(MethodSubscribe)
}
