package service

import (
	"context"

	"github.com/cypherlabdev/odds-scanner-service/internal/models"
)

//go:generate mockgen -source=feed_interface.go -destination=../mocks/mock_feed.go -package=mocks

// SportsbookFeed is the primary quote source. Its failures are reported to callers.
type SportsbookFeed interface {
	FetchEvents(ctx context.Context, sport string) ([]models.Event, error)
}

// PredictionFeed is the secondary quote source. Its failures degrade to no data.
type PredictionFeed interface {
	FetchEvents(ctx context.Context) ([]models.Event, error)
}
