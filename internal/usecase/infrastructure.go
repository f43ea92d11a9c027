package usecase

import (
	"context"
	"time"

	"github.com/DRSN-tech/beauty-backend/internal/domain"
)

type ImageDecoder interface {
	Decode(img *domain.CapturedImage) (*domain.DecodedImage, error)
}

type FeatureExtractor interface {
	Extract(ctx context.Context, img *domain.DecodedImage) (*domain.Embedding, error)
}

type AttributeClassifier interface {
	Attribute() domain.Attribute
	Classify(vector domain.FeatureVector) (domain.Label, error)
}

type EventPublisher interface {
	PublishPrediction(ctx context.Context, event *PredictionEvent) error
}

// StageObserver собирает метрики по стадиям конвейера.
type StageObserver interface {
	ObserveStage(stage Stage, d time.Duration)
	ObserveOutcome(outcome string)
	ObserveEmptyRecommendation(category domain.Category)
}
