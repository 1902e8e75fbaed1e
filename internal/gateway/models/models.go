// Package models defines gateway rows persisted in PostgreSQL.
package models

import "time"

type User struct {
	ID           string
	Email        string
	Name         string
	Role         string
	PasswordHash []byte
	CreatedAt    time.Time
}

// Collection is a PIN-gated group of images. PinHash is an argon2id
// encoded hash and never leaves the gateway.
type Collection struct {
	ID          string
	Title       string
	Description string
	PinHash     string
	CreatedAt   time.Time
}

// Image belongs to exactly one collection. StorageKey is the object key in
// the bucket; URL is the long-lived public URL derived from it.
type Image struct {
	ID           string
	CollectionID string
	Title        string
	StorageKey   string
	URL          string
	CreatedAt    time.Time
}

type PurchaseRequest struct {
	ID        string
	UserID    string
	ImageID   string
	Status    string
	CreatedAt time.Time
}

type RefreshToken struct {
	ID        string
	UserID    string
	Token     string
	Expires   time.Time
	CreatedAt time.Time
}
