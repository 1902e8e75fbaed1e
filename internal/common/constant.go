// Package common contains shared constants and sentinel errors used across
// the gateway and the portal.
package common

import "time"

// Metadata keys carried on every gateway call.
const (
	// APIKeyHeaderName carries the gateway public key.
	APIKeyHeaderName = "apikey"
	// AccessTokenHeaderName carries the caller's access token, when signed in.
	AccessTokenHeaderName = "access_token"
)

// Table names used by realtime change events.
const (
	TableUsers            = "users"
	TableCollections      = "collections"
	TableImages           = "images"
	TablePurchaseRequests = "purchase_requests"
	TableDownloadPin      = "download_pin"
)

// DefaultDownloadPin is returned by the gateway when no global download PIN
// has been set by an administrator.
const DefaultDownloadPin = "1234"

// DefaultSignedURLTTL is the lifetime of links minted for anonymous downloads.
const DefaultSignedURLTTL = 60 * time.Second
