package service

import (
	"context"
	"errors"

	"github.com/cypherlabdev/odds-scanner-service/internal/models"
)

//go:generate mockgen -source=processor_interface.go -destination=../mocks/mock_processor.go -package=mocks

// ErrInvalidBatch marks a pushed batch that can never be processed
var ErrInvalidBatch = errors.New("invalid quote batch")

// QuoteProcessor takes a pushed batch of normalized events into the current cycle
type QuoteProcessor interface {
	ProcessQuotes(ctx context.Context, msg *models.KafkaQuoteSnapshotMessage) error
}
