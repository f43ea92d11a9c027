package usecase

import (
	"context"

	"github.com/DRSN-tech/beauty-backend/internal/domain"
)

type CatalogRepository interface {
	Recommend(ctx context.Context, q *RecommendQuery) ([]domain.Product, error)
}

// ArtifactRepository — хранилище артефактов моделей (бакет S3/MinIO).
type ArtifactRepository interface {
	List(ctx context.Context, prefix string) ([]string, error)
	Download(ctx context.Context, key, path string) error
}

// RateLimiter считает запросы клиента в текущем окне.
type RateLimiter interface {
	Allow(ctx context.Context, clientKey string) (*RateDecision, error)
}

// ProductRepository — персистентный каталог (PostgreSQL). Запись идёт только внутри транзакции.
type ProductRepository interface {
	ListAll(ctx context.Context) ([]domain.Product, error)
	Upsert(ctx context.Context, product *domain.Product) (*UpsertProductRes, error)
	DeleteExcept(ctx context.Context, category domain.Category, keep []domain.Product) (int64, error)
}
