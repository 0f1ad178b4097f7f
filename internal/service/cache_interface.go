package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/cypherlabdev/odds-scanner-service/internal/models"
)

//go:generate mockgen -source=cache_interface.go -destination=../mocks/mock_cache.go -package=mocks

// Cache is an interface that abstracts feed result and snapshot cache operations
// This allows for easier testing and mocking
type Cache interface {
	SetFeed(ctx context.Context, result *models.FeedResult) error
	GetFeed(ctx context.Context, feedName, sport string) (*models.FeedResult, error)
	SetSnapshot(ctx context.Context, snapshot *models.Snapshot) error
	GetSnapshot(ctx context.Context, id uuid.UUID) (*models.Snapshot, error)
	Ping(ctx context.Context) error
	Close() error
}
