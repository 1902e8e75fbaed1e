package grpc

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/photoportal/internal/api"
	"github.com/dmitrijs2005/photoportal/internal/common"
	"github.com/dmitrijs2005/photoportal/internal/gateway/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const identityKey ctxKey = "identity"

// anonymousMethods need only the public api key.
var anonymousMethods = map[string]bool{
	api.FullMethod(api.MethodPing):            true,
	api.FullMethod(api.MethodSignUp):          true,
	api.FullMethod(api.MethodSignIn):          true,
	api.FullMethod(api.MethodRefreshToken):    true,
	api.FullMethod(api.MethodListCollections): true,
	api.FullMethod(api.MethodListGallery):     true,
	api.FullMethod(api.MethodCreateSignedURL): true,
}

// adminMethods additionally require the admin role.
var adminMethods = map[string]bool{
	api.FullMethod(api.MethodListUsers):                   true,
	api.FullMethod(api.MethodDeleteUser):                  true,
	api.FullMethod(api.MethodCreateCollection):            true,
	api.FullMethod(api.MethodSetCollectionPin):            true,
	api.FullMethod(api.MethodUploadImage):                 true,
	api.FullMethod(api.MethodDeleteImage):                 true,
	api.FullMethod(api.MethodSetDownloadPin):              true,
	api.FullMethod(api.MethodUpdatePurchaseRequestStatus): true,
}

// IdentityFromContext returns the caller set by the access interceptor.
func IdentityFromContext(ctx context.Context) (auth.Identity, bool) {
	id, ok := ctx.Value(identityKey).(auth.Identity)
	return id, ok
}

func firstValue(md metadata.MD, key string) string {
	if values := md.Get(key); len(values) > 0 {
		return values[0]
	}
	return ""
}

// authorize checks the api key and, unless method is anonymous, the access
// token and role. The returned context carries the caller identity.
func (s *GRPCServer) authorize(ctx context.Context, method string) (context.Context, error) {
	md, _ := metadata.FromIncomingContext(ctx)

	if firstValue(md, common.APIKeyHeaderName) != s.apiKey {
		return nil, status.Error(codes.Unauthenticated, "invalid api key")
	}
	if anonymousMethods[method] {
		return ctx, nil
	}

	accessToken := firstValue(md, common.AccessTokenHeaderName)
	if accessToken == "" {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	id, err := auth.ParseToken(accessToken, s.jwtSecret)
	if err != nil {
		if errors.Is(err, common.ErrTokenExpired) {
			return nil, status.Error(codes.Unauthenticated, common.ErrTokenExpired.Error())
		}
		return nil, status.Error(codes.Unauthenticated, "invalid token")
	}

	if adminMethods[method] && id.Role != api.RoleAdmin {
		return nil, status.Error(codes.PermissionDenied, "admin role required")
	}

	return context.WithValue(ctx, identityKey, id), nil
}

func (s *GRPCServer) accessInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	ctx, err := s.authorize(ctx, info.FullMethod)
	if err != nil {
		return nil, err
	}
	return handler(ctx, req)
}

type identityStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (w *identityStream) Context() context.Context { return w.ctx }

func (s *GRPCServer) streamAccessInterceptor(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
	ctx, err := s.authorize(ss.Context(), info.FullMethod)
	if err != nil {
		return err
	}
	return handler(srv, &identityStream{ServerStream: ss, ctx: ctx})
}

func (s *GRPCServer) loggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	s.logger.Debug(ctx, "Handled call", "method", info.FullMethod, "code", status.Code(err).String(), "duration", time.Since(start))
	return resp, err
}
