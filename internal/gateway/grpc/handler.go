package grpc

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/photoportal/internal/api"
	"github.com/dmitrijs2005/photoportal/internal/common"
	"github.com/dmitrijs2005/photoportal/internal/gateway/auth"
	"github.com/dmitrijs2005/photoportal/internal/gateway/models"
	"github.com/dmitrijs2005/photoportal/internal/gateway/realtime"
	"github.com/dmitrijs2005/photoportal/internal/gateway/services"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// toStatus converts service errors to gRPC statuses. Unknown errors are
// logged and reported as Internal without detail.
func (s *GRPCServer) toStatus(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, common.ErrorAlreadyExists):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, common.ErrRefreshTokenExpired):
		return status.Error(codes.Unauthenticated, common.ErrRefreshTokenExpired.Error())
	case errors.Is(err, common.ErrorUnauthorized):
		return status.Error(codes.Unauthenticated, "unauthorized")
	case errors.Is(err, common.ErrorForbidden):
		return status.Error(codes.PermissionDenied, err.Error())
	case errors.Is(err, common.ErrorValidation), errors.Is(err, common.ErrEmptyPin), errors.Is(err, common.ErrInvalidStatus):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrStatusTransition):
		return status.Error(codes.FailedPrecondition, err.Error())
	}
	s.logger.Error(ctx, "Request failed", "error", err)
	return status.Error(codes.Internal, "internal error")
}

func (s *GRPCServer) caller(ctx context.Context) (auth.Identity, error) {
	id, ok := IdentityFromContext(ctx)
	if !ok {
		return auth.Identity{}, status.Error(codes.Internal, "identity missing from context")
	}
	return id, nil
}

func toAPIUser(u *models.User) *api.User {
	return &api.User{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role, CreatedAt: u.CreatedAt}
}

func toAPISession(r *services.AuthResult) *api.Session {
	return &api.Session{
		AccessToken:  r.Tokens.AccessToken,
		RefreshToken: r.Tokens.RefreshToken,
		User:         toAPIUser(r.User),
	}
}

func toAPICollection(c *models.Collection) *api.Collection {
	return &api.Collection{ID: c.ID, Title: c.Title, Description: c.Description, CreatedAt: c.CreatedAt}
}

func toAPIImage(img *models.Image) *api.Image {
	return &api.Image{
		ID:           img.ID,
		CollectionID: img.CollectionID,
		Title:        img.Title,
		StoragePath:  img.StorageKey,
		URL:          img.URL,
		CreatedAt:    img.CreatedAt,
	}
}

func toAPIImages(imgs []*models.Image) *api.ListImagesResponse {
	out := &api.ListImagesResponse{Images: make([]*api.Image, 0, len(imgs))}
	for _, img := range imgs {
		out.Images = append(out.Images, toAPIImage(img))
	}
	return out
}

func toAPIPurchase(pr *models.PurchaseRequest) *api.PurchaseRequest {
	return &api.PurchaseRequest{ID: pr.ID, UserID: pr.UserID, ImageID: pr.ImageID, Status: pr.Status, CreatedAt: pr.CreatedAt}
}

func (s *GRPCServer) Ping(ctx context.Context, req *api.PingRequest) (*api.PingResponse, error) {
	return &api.PingResponse{Status: "OK"}, nil
}

func (s *GRPCServer) SignUp(ctx context.Context, req *api.SignUpRequest) (*api.Session, error) {
	s.logger.Info(ctx, "Registration request")

	res, err := s.users.SignUp(ctx, req.Email, req.Password, req.Name)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	s.logger.Info(ctx, "Registered", "user_id", res.User.ID)
	return toAPISession(res), nil
}

func (s *GRPCServer) SignIn(ctx context.Context, req *api.SignInRequest) (*api.Session, error) {
	res, err := s.users.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return toAPISession(res), nil
}

func (s *GRPCServer) RefreshToken(ctx context.Context, req *api.RefreshTokenRequest) (*api.Session, error) {
	res, err := s.users.RefreshToken(ctx, req.RefreshToken)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return toAPISession(res), nil
}

func (s *GRPCServer) GetUser(ctx context.Context, req *api.GetUserRequest) (*api.User, error) {
	id, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	u, err := s.users.GetUser(ctx, id.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// the token outlived its account
			return nil, status.Error(codes.Unauthenticated, "unauthorized")
		}
		return nil, s.toStatus(ctx, err)
	}
	return toAPIUser(u), nil
}

func (s *GRPCServer) ListUsers(ctx context.Context, req *api.ListUsersRequest) (*api.ListUsersResponse, error) {
	us, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	out := &api.ListUsersResponse{Users: make([]*api.User, 0, len(us))}
	for _, u := range us {
		out.Users = append(out.Users, toAPIUser(u))
	}
	return out, nil
}

func (s *GRPCServer) DeleteUser(ctx context.Context, req *api.DeleteUserRequest) (*api.Empty, error) {
	if err := s.users.DeleteUser(ctx, req.ID); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	s.logger.Info(ctx, "User deleted", "user_id", req.ID)
	return &api.Empty{}, nil
}

func (s *GRPCServer) ListCollections(ctx context.Context, req *api.ListCollectionsRequest) (*api.ListCollectionsResponse, error) {
	cs, err := s.catalog.ListCollections(ctx)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	out := &api.ListCollectionsResponse{Collections: make([]*api.Collection, 0, len(cs))}
	for _, c := range cs {
		out.Collections = append(out.Collections, toAPICollection(c))
	}
	return out, nil
}

func (s *GRPCServer) CreateCollection(ctx context.Context, req *api.CreateCollectionRequest) (*api.Collection, error) {
	c, err := s.catalog.CreateCollection(ctx, req.Title, req.Description, req.Pin)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return toAPICollection(c), nil
}

func (s *GRPCServer) SetCollectionPin(ctx context.Context, req *api.SetCollectionPinRequest) (*api.Empty, error) {
	if err := s.catalog.SetCollectionPin(ctx, req.CollectionID, req.Pin); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &api.Empty{}, nil
}

func (s *GRPCServer) VerifyCollectionPin(ctx context.Context, req *api.VerifyCollectionPinRequest) (*api.VerifyCollectionPinResponse, error) {
	ok, err := s.catalog.VerifyCollectionPin(ctx, req.CollectionID, req.Pin)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &api.VerifyCollectionPinResponse{Valid: ok}, nil
}

func (s *GRPCServer) ListImages(ctx context.Context, req *api.ListImagesRequest) (*api.ListImagesResponse, error) {
	imgs, err := s.catalog.ListImages(ctx, req.CollectionID)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return toAPIImages(imgs), nil
}

func (s *GRPCServer) ListGallery(ctx context.Context, req *api.ListGalleryRequest) (*api.ListImagesResponse, error) {
	imgs, err := s.catalog.ListGallery(ctx, req.Limit)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return toAPIImages(imgs), nil
}

func (s *GRPCServer) UploadImage(ctx context.Context, req *api.UploadImageRequest) (*api.Image, error) {
	img, err := s.catalog.UploadImage(ctx, req.CollectionID, req.Title, req.FileName, req.ContentType, req.Content)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	s.logger.Info(ctx, "Image uploaded", "image_id", img.ID, "collection_id", img.CollectionID, "size", len(req.Content))
	return toAPIImage(img), nil
}

func (s *GRPCServer) DeleteImage(ctx context.Context, req *api.DeleteImageRequest) (*api.Empty, error) {
	if err := s.catalog.DeleteImage(ctx, req.ID); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &api.Empty{}, nil
}

func (s *GRPCServer) CreateSignedURL(ctx context.Context, req *api.CreateSignedURLRequest) (*api.CreateSignedURLResponse, error) {
	url, expires, err := s.catalog.SignedURL(ctx, req.Path, time.Duration(req.TTLSeconds)*time.Second)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &api.CreateSignedURLResponse{URL: url, ExpiresAt: expires}, nil
}

func (s *GRPCServer) GetDownloadPin(ctx context.Context, req *api.GetDownloadPinRequest) (*api.DownloadPinResponse, error) {
	pin, err := s.settings.GetDownloadPin(ctx)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &api.DownloadPinResponse{Pin: pin}, nil
}

func (s *GRPCServer) SetDownloadPin(ctx context.Context, req *api.SetDownloadPinRequest) (*api.Empty, error) {
	if err := s.settings.SetDownloadPin(ctx, req.Pin); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &api.Empty{}, nil
}

func (s *GRPCServer) CreatePurchaseRequest(ctx context.Context, req *api.CreatePurchaseRequestRequest) (*api.PurchaseRequest, error) {
	id, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	pr, err := s.purchases.Create(ctx, id.UserID, req.ImageID)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return toAPIPurchase(pr), nil
}

// ListPurchaseRequests lists the caller's requests, or everyone's for an
// admin asking for All.
func (s *GRPCServer) ListPurchaseRequests(ctx context.Context, req *api.ListPurchaseRequestsRequest) (*api.ListPurchaseRequestsResponse, error) {
	id, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}

	var prs []*models.PurchaseRequest
	if req.All {
		if id.Role != api.RoleAdmin {
			return nil, status.Error(codes.PermissionDenied, "admin role required")
		}
		prs, err = s.purchases.ListAll(ctx)
	} else {
		prs, err = s.purchases.ListForUser(ctx, id.UserID)
	}
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	out := &api.ListPurchaseRequestsResponse{Requests: make([]*api.PurchaseRequest, 0, len(prs))}
	for _, pr := range prs {
		out.Requests = append(out.Requests, toAPIPurchase(pr))
	}
	return out, nil
}

func (s *GRPCServer) UpdatePurchaseRequestStatus(ctx context.Context, req *api.UpdatePurchaseRequestStatusRequest) (*api.PurchaseRequest, error) {
	pr, err := s.purchases.UpdateStatus(ctx, req.ID, req.Status)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	s.logger.Info(ctx, "Purchase request resolved", "id", pr.ID, "status", pr.Status)
	return toAPIPurchase(pr), nil
}

// Subscribe streams change events matching the request until the client
// goes away. Non-admins may only watch their own users row.
func (s *GRPCServer) Subscribe(req *api.SubscribeRequest, stream api.Gateway_SubscribeServer) error {
	ctx := stream.Context()
	id, err := s.caller(ctx)
	if err != nil {
		return err
	}
	if req.Table == common.TableUsers && id.Role != api.RoleAdmin && req.MatchID != id.UserID {
		return status.Error(codes.PermissionDenied, "cannot watch other users")
	}

	events, cancel := s.events.Subscribe(realtime.Filter{Table: req.Table, RowID: req.MatchID})
	defer cancel()

	s.logger.Debug(ctx, "Subscriber attached", "table", req.Table, "match_id", req.MatchID)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if err := stream.Send(&ev); err != nil {
				return err
			}
		}
	}
}
