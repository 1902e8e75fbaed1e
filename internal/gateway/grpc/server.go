package grpc

import (
	"context"
	"net"
	"time"

	"github.com/dmitrijs2005/photoportal/internal/api"
	"github.com/dmitrijs2005/photoportal/internal/gateway/models"
	"github.com/dmitrijs2005/photoportal/internal/gateway/realtime"
	"github.com/dmitrijs2005/photoportal/internal/gateway/services"
	"github.com/dmitrijs2005/photoportal/internal/logging"
	"google.golang.org/grpc"
)

// shutdownTimeout bounds GracefulStop; open realtime streams are cut after it.
var shutdownTimeout = 5 * time.Second

type userSvc interface {
	SignUp(ctx context.Context, email, password, name string) (*services.AuthResult, error)
	SignIn(ctx context.Context, email, password string) (*services.AuthResult, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.AuthResult, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
	DeleteUser(ctx context.Context, id string) error
}

type catalogSvc interface {
	ListCollections(ctx context.Context) ([]*models.Collection, error)
	CreateCollection(ctx context.Context, title, description, pin string) (*models.Collection, error)
	SetCollectionPin(ctx context.Context, collectionID, pin string) error
	VerifyCollectionPin(ctx context.Context, collectionID, candidate string) (bool, error)
	ListImages(ctx context.Context, collectionID string) ([]*models.Image, error)
	ListGallery(ctx context.Context, limit int) ([]*models.Image, error)
	UploadImage(ctx context.Context, collectionID, title, fileName, contentType string, content []byte) (*models.Image, error)
	DeleteImage(ctx context.Context, id string) error
	SignedURL(ctx context.Context, path string, ttl time.Duration) (string, time.Time, error)
}

type purchaseSvc interface {
	Create(ctx context.Context, userID, imageID string) (*models.PurchaseRequest, error)
	ListForUser(ctx context.Context, userID string) ([]*models.PurchaseRequest, error)
	ListAll(ctx context.Context) ([]*models.PurchaseRequest, error)
	UpdateStatus(ctx context.Context, id, status string) (*models.PurchaseRequest, error)
}

type settingsSvc interface {
	GetDownloadPin(ctx context.Context) (string, error)
	SetDownloadPin(ctx context.Context, pin string) error
}

type eventSource interface {
	Subscribe(f realtime.Filter) (<-chan api.ChangeEvent, func())
}

// Services groups the business services exposed over gRPC.
type Services struct {
	Users     userSvc
	Catalog   catalogSvc
	Purchases purchaseSvc
	Settings  settingsSvc
	Events    eventSource
}

type GRPCServer struct {
	api.UnimplementedGatewayServer
	address   string
	users     userSvc
	catalog   catalogSvc
	purchases purchaseSvc
	settings  settingsSvc
	events    eventSource
	logger    logging.Logger
	jwtSecret []byte
	apiKey    string
}

func NewGRPCServer(a string, l logging.Logger, svc Services, secretKey, apiKey string) *GRPCServer {
	return &GRPCServer{
		address:   a,
		logger:    l.With("module", "grpc_server"),
		users:     svc.Users,
		catalog:   svc.Catalog,
		purchases: svc.Purchases,
		settings:  svc.Settings,
		events:    svc.Events,
		jwtSecret: []byte(secretKey),
		apiKey:    apiKey,
	}
}

// Run listens on the configured address and serves until ctx is done.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve serves on lis until ctx is done.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.accessInterceptor),
		grpc.ChainStreamInterceptor(s.streamAccessInterceptor),
	)
	api.RegisterGatewayServer(srv, s)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")

		stopped := make(chan struct{})
		go func() {
			srv.GracefulStop()
			close(stopped)
		}()

		select {
		case <-stopped:
		case <-time.After(shutdownTimeout):
			srv.Stop()
		}
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil {
		return err
	}
	return nil
}
