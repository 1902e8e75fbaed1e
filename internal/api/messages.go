package api

import "time"

// Roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Purchase request statuses.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusDenied   = "denied"
)

// Change event types.
const (
	EventInsert = "INSERT"
	EventUpdate = "UPDATE"
	EventDelete = "DELETE"
)

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	User         *User  `json:"user"`
}

// Collection never carries the PIN hash.
type Collection struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

type Image struct {
	ID           string    `json:"id"`
	CollectionID string    `json:"collection_id"`
	Title        string    `json:"title"`
	StoragePath  string    `json:"storage_path"`
	URL          string    `json:"url"`
	CreatedAt    time.Time `json:"created_at"`
}

type PurchaseRequest struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ImageID   string    `json:"image_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// ChangeEvent is pushed on the realtime channel.
type ChangeEvent struct {
	Table string    `json:"table"`
	Type  string    `json:"type"`
	RowID string    `json:"row_id"`
	At    time.Time `json:"at"`
}

type Empty struct{}

type PingRequest struct{}

type PingResponse struct {
	Status string `json:"status"`
}

type SignUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type GetUserRequest struct{}

type ListUsersRequest struct{}

type ListUsersResponse struct {
	Users []*User `json:"users"`
}

type DeleteUserRequest struct {
	ID string `json:"id"`
}

type ListCollectionsRequest struct{}

type ListCollectionsResponse struct {
	Collections []*Collection `json:"collections"`
}

type CreateCollectionRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Pin         string `json:"pin"`
}

type SetCollectionPinRequest struct {
	CollectionID string `json:"collection_id"`
	Pin          string `json:"pin"`
}

type VerifyCollectionPinRequest struct {
	CollectionID string `json:"collection_id"`
	Pin          string `json:"pin"`
}

type VerifyCollectionPinResponse struct {
	Valid bool `json:"valid"`
}

type ListImagesRequest struct {
	CollectionID string `json:"collection_id"`
}

type ListGalleryRequest struct {
	Limit int `json:"limit"`
}

type ListImagesResponse struct {
	Images []*Image `json:"images"`
}

type UploadImageRequest struct {
	CollectionID string `json:"collection_id"`
	Title        string `json:"title"`
	FileName     string `json:"file_name"`
	ContentType  string `json:"content_type"`
	Content      []byte `json:"content"`
}

type DeleteImageRequest struct {
	ID string `json:"id"`
}

type CreateSignedURLRequest struct {
	Path       string `json:"path"`
	TTLSeconds int64  `json:"ttl_seconds"`
}

type CreateSignedURLResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

type GetDownloadPinRequest struct{}

type DownloadPinResponse struct {
	Pin string `json:"pin"`
}

type SetDownloadPinRequest struct {
	Pin string `json:"pin"`
}

type CreatePurchaseRequestRequest struct {
	ImageID string `json:"image_id"`
}

type ListPurchaseRequestsRequest struct {
	// All lists every user's requests; admin only.
	All bool `json:"all"`
}

type ListPurchaseRequestsResponse struct {
	Requests []*PurchaseRequest `json:"requests"`
}

type UpdatePurchaseRequestStatusRequest struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type SubscribeRequest struct {
	Table   string `json:"table"`
	MatchID string `json:"match_id"`
}
