package converter

import (
	"fmt"

	"github.com/DRSN-tech/beauty-backend/internal/domain"
	"github.com/DRSN-tech/beauty-backend/pkg/e"
	"github.com/shopspring/decimal"
)

// ProductConverter преобразует Product между domain и моделью PostgreSQL.
type ProductConverter interface {
	ToModel(entity *domain.Product) *ProductModel
	ToEntity(model *ProductModel) (*domain.Product, error)
}

type ProductConverterImpl struct{}

func NewProductConverterImpl() *ProductConverterImpl {
	return &ProductConverterImpl{}
}

func (ProductConverterImpl) ToModel(entity *domain.Product) *ProductModel {
	if entity == nil {
		return nil
	}

	return &ProductModel{
		Category:  string(entity.Category),
		Brand:     entity.Brand,
		Name:      entity.Name,
		Price:     entity.Price.String(),
		Rating:    entity.Rating,
		Seasons:   entity.Seasons,
		SkinTypes: entity.SkinTypes,
		Shades:    append([]string{}, entity.Tags...),
	}
}

func (ProductConverterImpl) ToEntity(model *ProductModel) (*domain.Product, error) {
	if model == nil {
		return nil, nil
	}

	category, err := domain.ParseCategory(model.Category)
	if err != nil {
		return nil, fmt.Errorf("%w: product %d: %w", e.ErrCatalogLoad, model.ID, err)
	}
	price, err := decimal.NewFromString(model.Price)
	if err != nil {
		return nil, fmt.Errorf("%w: product %d price %q: %w", e.ErrCatalogLoad, model.ID, model.Price, err)
	}

	return domain.NewProduct(model.Brand, model.Name, price, model.Rating, category,
		model.Shades, model.Seasons, model.SkinTypes), nil
}
