package usecase

import (
	"time"

	"github.com/DRSN-tech/beauty-backend/internal/domain"
)

// PREDICT USECASE

// PredictReq — запрос на распознавание атрибутов и подбор продуктов по одному кадру.
type PredictReq struct {
	RequestID string
	Image     *domain.CapturedImage
	Season    string // переопределяет сезон по умолчанию для всех категорий
	SkinType  string // переопределяет тип кожи по умолчанию для всех категорий
}

// PredictRes — результат полного прохода конвейера.
type PredictRes struct {
	RequestID       string
	Labels          map[domain.Attribute]domain.Label
	Recommendations map[domain.Category][]domain.Product
	ModelVersion    string
}

// CATALOG IMPORT USECASE

// ImportCatalogReq — загрузка продуктов в PostgreSQL одной транзакцией.
type ImportCatalogReq struct {
	Products []domain.Product
	Prune    bool        // удалить из категорий продукты, которых нет во входных данных
	Progress func(n int) // вызывается после каждого обработанного продукта, может быть nil
}

type ImportCatalogRes struct {
	Inserted  int
	Updated   int
	Unchanged int
	Deleted   int64
}

// REPOSITORIES

// UpsertProductRes — результат идемпотентной записи продукта.
type UpsertProductRes struct {
	Product   *domain.Product
	Inserted  bool
	NoChanges bool
}

// RecommendQuery — параметры выборки из каталога.
type RecommendQuery struct {
	Category domain.Category
	Buckets  []string
	Season   string
	SkinType string
	Limit    int
}

// RateDecision — решение лимитера по одному запросу.
type RateDecision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// INFRASTRUCTURE

// PredictionEvent — событие об успешном распознавании. Изображение в событие не попадает.
type PredictionEvent struct {
	EventID         string
	RequestID       string
	Labels          map[domain.Attribute]domain.Label
	Recommendations map[domain.Category]int
	ModelVersion    string
	CreatedAt       time.Time
}

// MAPPERS
func NewPredictReq(requestID string, image *domain.CapturedImage, season, skinType string) *PredictReq {
	return &PredictReq{
		RequestID: requestID,
		Image:     image,
		Season:    season,
		SkinType:  skinType,
	}
}

func NewPredictRes(requestID string, labels map[domain.Attribute]domain.Label,
	recs map[domain.Category][]domain.Product, modelVersion string) *PredictRes {
	return &PredictRes{
		RequestID:       requestID,
		Labels:          labels,
		Recommendations: recs,
		ModelVersion:    modelVersion,
	}
}

func NewImportCatalogReq(products []domain.Product, prune bool, progress func(n int)) *ImportCatalogReq {
	return &ImportCatalogReq{
		Products: products,
		Prune:    prune,
		Progress: progress,
	}
}

func NewUpsertProductRes(product *domain.Product, inserted, noChanges bool) *UpsertProductRes {
	return &UpsertProductRes{
		Product:   product,
		Inserted:  inserted,
		NoChanges: noChanges,
	}
}

func NewRecommendQuery(category domain.Category, buckets []string, season, skinType string, limit int) *RecommendQuery {
	return &RecommendQuery{
		Category: category,
		Buckets:  buckets,
		Season:   season,
		SkinType: skinType,
		Limit:    limit,
	}
}

func NewPredictionEvent(eventID string, res *PredictRes, createdAt time.Time) *PredictionEvent {
	counts := make(map[domain.Category]int, len(res.Recommendations))
	for cat, products := range res.Recommendations {
		counts[cat] = len(products)
	}

	return &PredictionEvent{
		EventID:         eventID,
		RequestID:       res.RequestID,
		Labels:          res.Labels,
		Recommendations: counts,
		ModelVersion:    res.ModelVersion,
		CreatedAt:       createdAt,
	}
}
