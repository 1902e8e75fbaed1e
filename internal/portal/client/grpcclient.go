package client

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/photoportal/internal/api"
	"github.com/dmitrijs2005/photoportal/internal/common"
	"github.com/dmitrijs2005/photoportal/internal/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

var _ Gateway = (*GRPCClient)(nil)

type GRPCClient struct {
	conn   *grpc.ClientConn
	client api.GatewayClient
	apiKey string
	logger logging.Logger

	mu           sync.Mutex
	accessToken  string
	refreshToken string
	listeners    map[int]func(AuthEvent)
	nextListener int
}

// NewGRPCClient connects to the gateway at endpoint. Extra dial options are
// appended after the defaults.
func NewGRPCClient(endpoint, apiKey string, l logging.Logger, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{
		apiKey:    apiKey,
		logger:    l.With("module", "gateway_client"),
		listeners: make(map[int]func(AuthEvent)),
	}

	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithChainUnaryInterceptor(c.accessTokenInterceptor),
		grpc.WithChainStreamInterceptor(c.streamInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(endpoint, dialOpts...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	c.client = api.NewGatewayClient(conn)
	return c, nil
}

func (c *GRPCClient) Close() error {
	return c.conn.Close()
}

func (c *GRPCClient) tokens() (string, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessToken, c.refreshToken
}

func (c *GRPCClient) setTokens(access, refresh string) {
	c.mu.Lock()
	c.accessToken, c.refreshToken = access, refresh
	c.mu.Unlock()
}

// withCredentials replaces the apikey and access_token metadata on ctx.
func (c *GRPCClient) withCredentials(ctx context.Context) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.APIKeyHeaderName, c.apiKey)
	md.Delete(common.AccessTokenHeaderName)
	if access, _ := c.tokens(); access != "" {
		md.Set(common.AccessTokenHeaderName, access)
	}
	return metadata.NewOutgoingContext(ctx, md)
}

// accessTokenInterceptor attaches credentials and, when the access token
// has expired, refreshes the pair once and retries the call.
func (c *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	err := invoker(c.withCredentials(ctx), method, req, reply, cc, opts...)
	if err == nil {
		return nil
	}

	st, ok := status.FromError(err)
	if !ok || st.Code() != codes.Unauthenticated || st.Message() != common.ErrTokenExpired.Error() {
		return err
	}

	_, refresh := c.tokens()
	if refresh == "" {
		return err
	}

	sess, rerr := c.client.RefreshToken(ctx, &api.RefreshTokenRequest{RefreshToken: refresh})
	if rerr != nil {
		c.logger.Warn(ctx, "Token refresh failed, signing out", "error", rerr)
		c.clearSession()
		return rerr
	}
	c.setTokens(sess.AccessToken, sess.RefreshToken)
	c.emit(AuthEvent{Type: AuthTokenRefreshed, Identity: toIdentity(sess.User)})

	return invoker(c.withCredentials(ctx), method, req, reply, cc, opts...)
}

func (c *GRPCClient) streamInterceptor(
	ctx context.Context,
	desc *grpc.StreamDesc,
	cc *grpc.ClientConn,
	method string,
	streamer grpc.Streamer,
	opts ...grpc.CallOption,
) (grpc.ClientStream, error) {
	return streamer(c.withCredentials(ctx), desc, cc, method, opts...)
}

func toIdentity(u *api.User) *Identity {
	if u == nil {
		return nil
	}
	return &Identity{UserID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}
}

// OnAuthStateChange registers fn for sign-in, sign-out and refresh events.
func (c *GRPCClient) OnAuthStateChange(fn func(AuthEvent)) func() {
	c.mu.Lock()
	id := c.nextListener
	c.nextListener++
	c.listeners[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

func (c *GRPCClient) emit(ev AuthEvent) {
	c.mu.Lock()
	fns := make([]func(AuthEvent), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

func (c *GRPCClient) clearSession() {
	access, refresh := c.tokens()
	if access == "" && refresh == "" {
		return
	}
	c.setTokens("", "")
	c.emit(AuthEvent{Type: AuthSignedOut})
}

func (c *GRPCClient) startSession(sess *api.Session) *Identity {
	c.setTokens(sess.AccessToken, sess.RefreshToken)
	id := toIdentity(sess.User)
	c.emit(AuthEvent{Type: AuthSignedIn, Identity: id})
	return id
}

func (c *GRPCClient) Ping(ctx context.Context) error {
	resp, err := c.client.Ping(ctx, &api.PingRequest{})
	if err != nil {
		return mapError(err)
	}
	if resp.Status != "OK" {
		return ErrUnavailable
	}
	return nil
}

// GetSession returns the current identity, or nil when signed out. A
// session whose account is gone is dropped.
func (c *GRPCClient) GetSession(ctx context.Context) (*Identity, error) {
	if access, _ := c.tokens(); access == "" {
		return nil, nil
	}
	u, err := c.client.GetUser(ctx, &api.GetUserRequest{})
	if err != nil {
		if status.Code(err) == codes.Unauthenticated {
			c.setTokens("", "")
			return nil, nil
		}
		return nil, mapError(err)
	}
	return toIdentity(u), nil
}

func (c *GRPCClient) SignUp(ctx context.Context, email, password, name string) (*Identity, error) {
	sess, err := c.client.SignUp(ctx, &api.SignUpRequest{Email: email, Password: password, Name: name})
	if err != nil {
		return nil, mapError(err)
	}
	return c.startSession(sess), nil
}

func (c *GRPCClient) SignIn(ctx context.Context, email, password string) (*Identity, error) {
	sess, err := c.client.SignIn(ctx, &api.SignInRequest{Email: email, Password: password})
	if err != nil {
		return nil, mapError(err)
	}
	return c.startSession(sess), nil
}

// SignOut forgets the tokens locally.
func (c *GRPCClient) SignOut(context.Context) error {
	c.clearSession()
	return nil
}

// OnRowDeleted calls fn with the row id of every DELETE on table matching
// matchID, until unsubscribe is called. fn runs on a separate goroutine.
func (c *GRPCClient) OnRowDeleted(ctx context.Context, table, matchID string, fn func(rowID string)) (func(), error) {
	ctx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	stream, err := c.client.Subscribe(ctx, &api.SubscribeRequest{Table: table, MatchID: matchID})
	if err != nil {
		cancel()
		return nil, mapError(err)
	}

	go func() {
		for {
			ev, err := stream.Recv()
			if err != nil {
				if ctx.Err() == nil {
					c.logger.Warn(ctx, "Realtime subscription ended", "table", table, "error", mapError(err))
				}
				return
			}
			if ev.Type == api.EventDelete {
				fn(ev.RowID)
			}
		}
	}()

	return cancel, nil
}

func (c *GRPCClient) ListCollections(ctx context.Context) ([]*api.Collection, error) {
	resp, err := c.client.ListCollections(ctx, &api.ListCollectionsRequest{})
	if err != nil {
		return nil, mapError(err)
	}
	return resp.Collections, nil
}

func (c *GRPCClient) ListImages(ctx context.Context, collectionID string) ([]*api.Image, error) {
	resp, err := c.client.ListImages(ctx, &api.ListImagesRequest{CollectionID: collectionID})
	if err != nil {
		return nil, mapError(err)
	}
	return resp.Images, nil
}

func (c *GRPCClient) ListGallery(ctx context.Context, limit int) ([]*api.Image, error) {
	resp, err := c.client.ListGallery(ctx, &api.ListGalleryRequest{Limit: limit})
	if err != nil {
		return nil, mapError(err)
	}
	return resp.Images, nil
}

// VerifyCollectionPin asks the gateway to compare candidate with the stored
// hash. The hash itself never reaches the portal.
func (c *GRPCClient) VerifyCollectionPin(ctx context.Context, collectionID, candidate string) (bool, error) {
	resp, err := c.client.VerifyCollectionPin(ctx, &api.VerifyCollectionPinRequest{CollectionID: collectionID, Pin: candidate})
	if err != nil {
		return false, mapError(err)
	}
	return resp.Valid, nil
}

func (c *GRPCClient) GetDownloadPin(ctx context.Context) (string, error) {
	resp, err := c.client.GetDownloadPin(ctx, &api.GetDownloadPinRequest{})
	if err != nil {
		return "", mapError(err)
	}
	return resp.Pin, nil
}

func (c *GRPCClient) ListPurchaseRequests(ctx context.Context, all bool) ([]*api.PurchaseRequest, error) {
	resp, err := c.client.ListPurchaseRequests(ctx, &api.ListPurchaseRequestsRequest{All: all})
	if err != nil {
		return nil, mapError(err)
	}
	return resp.Requests, nil
}

func (c *GRPCClient) CreatePurchaseRequest(ctx context.Context, imageID string) (*api.PurchaseRequest, error) {
	pr, err := c.client.CreatePurchaseRequest(ctx, &api.CreatePurchaseRequestRequest{ImageID: imageID})
	if err != nil {
		return nil, mapError(err)
	}
	return pr, nil
}

func (c *GRPCClient) CreateSignedURL(ctx context.Context, path string, ttl time.Duration) (string, error) {
	resp, err := c.client.CreateSignedURL(ctx, &api.CreateSignedURLRequest{Path: path, TTLSeconds: int64(ttl / time.Second)})
	if err != nil {
		return "", mapError(err)
	}
	return resp.URL, nil
}

func (c *GRPCClient) CreateCollection(ctx context.Context, title, description, pin string) (*api.Collection, error) {
	col, err := c.client.CreateCollection(ctx, &api.CreateCollectionRequest{Title: title, Description: description, Pin: pin})
	if err != nil {
		return nil, mapError(err)
	}
	return col, nil
}

func (c *GRPCClient) SetCollectionPin(ctx context.Context, collectionID, pin string) error {
	_, err := c.client.SetCollectionPin(ctx, &api.SetCollectionPinRequest{CollectionID: collectionID, Pin: pin})
	return mapError(err)
}

func (c *GRPCClient) UploadImage(ctx context.Context, collectionID, title, fileName, contentType string, content []byte) (*api.Image, error) {
	img, err := c.client.UploadImage(ctx, &api.UploadImageRequest{
		CollectionID: collectionID,
		Title:        title,
		FileName:     fileName,
		ContentType:  contentType,
		Content:      content,
	})
	if err != nil {
		return nil, mapError(err)
	}
	return img, nil
}

func (c *GRPCClient) DeleteImage(ctx context.Context, id string) error {
	_, err := c.client.DeleteImage(ctx, &api.DeleteImageRequest{ID: id})
	return mapError(err)
}

func (c *GRPCClient) SetDownloadPin(ctx context.Context, pin string) error {
	_, err := c.client.SetDownloadPin(ctx, &api.SetDownloadPinRequest{Pin: pin})
	return mapError(err)
}

func (c *GRPCClient) UpdatePurchaseRequestStatus(ctx context.Context, id, newStatus string) (*api.PurchaseRequest, error) {
	pr, err := c.client.UpdatePurchaseRequestStatus(ctx, &api.UpdatePurchaseRequestStatusRequest{ID: id, Status: newStatus})
	if err != nil {
		return nil, mapError(err)
	}
	return pr, nil
}

func (c *GRPCClient) ListUsers(ctx context.Context) ([]*api.User, error) {
	resp, err := c.client.ListUsers(ctx, &api.ListUsersRequest{})
	if err != nil {
		return nil, mapError(err)
	}
	return resp.Users, nil
}

func (c *GRPCClient) DeleteUser(ctx context.Context, id string) error {
	_, err := c.client.DeleteUser(ctx, &api.DeleteUserRequest{ID: id})
	return mapError(err)
}
