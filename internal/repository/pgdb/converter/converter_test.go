package converter

import (
	"errors"
	"testing"

	"github.com/DRSN-tech/beauty-backend/internal/domain"
	"github.com/DRSN-tech/beauty-backend/pkg/e"
	"github.com/shopspring/decimal"
)

func TestProductConverter(t *testing.T) {
	conv := NewProductConverterImpl()
	p := domain.NewProduct("MAC", "Ruby Woo", decimal.RequireFromString("19.00"), 4.8,
		domain.Lipstick, []string{"Red", "berry"}, "all seasons", "Dry")

	m := conv.ToModel(p)
	if m.Category != "lipstick" || m.Price != "19" || len(m.Shades) != 2 || m.Shades[0] != "red" {
		t.Fatalf("unexpected model: %+v", m)
	}

	back, err := conv.ToEntity(m)
	if err != nil {
		t.Fatalf("ToEntity: %v", err)
	}
	if back.Name != p.Name || !back.Price.Equal(p.Price) || back.Category != domain.Lipstick || !back.HasAnyTag([]string{"berry"}) {
		t.Errorf("unexpected entity: %+v", back)
	}
}

func TestProductConverterRejectsBadRows(t *testing.T) {
	conv := NewProductConverterImpl()
	for _, m := range []*ProductModel{
		{ID: 1, Category: "mascara", Price: "1"},
		{ID: 2, Category: "foundation", Price: "free"},
	} {
		if _, err := conv.ToEntity(m); !errors.Is(err, e.ErrCatalogLoad) {
			t.Errorf("row %d: want ErrCatalogLoad, got %v", m.ID, err)
		}
	}
}
