package xlsx

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/DRSN-tech/beauty-backend/internal/domain"
	"github.com/DRSN-tech/beauty-backend/pkg/e"
	"github.com/DRSN-tech/beauty-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

func sampleProducts() []domain.Product {
	return []domain.Product{
		*domain.NewProduct("Maybelline", "Fit Me Matte", decimal.RequireFromString("8.99"), 4.5,
			domain.Foundation, []string{"medium", "tan"}, "all seasons, Summer", "Oily, Combination"),
		*domain.NewProduct("L'Oreal", "True Match", decimal.RequireFromString("12.99"), 4.7,
			domain.Foundation, []string{"fair", "light"}, "all seasons", "Normal, Dry"),
		*domain.NewProduct("MAC", "Ruby Woo", decimal.RequireFromString("19.00"), 4.8,
			domain.Lipstick, []string{"red"}, "all seasons, Winter", "Dry, Normal"),
	}
}

func TestWriteThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.xlsx")
	if err := Write(path, sampleProducts()); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := NewReader(logger.Nop{}).Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d products, want 3", len(got))
	}

	fit := got[0]
	if fit.Brand != "Maybelline" || fit.Name != "Fit Me Matte" || fit.Category != domain.Foundation {
		t.Errorf("unexpected first product: %+v", fit)
	}
	if !fit.Price.Equal(decimal.RequireFromString("8.99")) || fit.Rating != 4.5 {
		t.Errorf("price/rating: %s %v", fit.Price, fit.Rating)
	}
	if !fit.HasAnyTag([]string{"tan"}) || !fit.SuitsSeason("Summer") || !fit.SuitsSkinType("oily") {
		t.Errorf("tags/filters lost: %+v", fit)
	}
	if got[2].Category != domain.Lipstick {
		t.Errorf("lipstick sheet not read: %+v", got[2])
	}
}

func writeRaw(t *testing.T, sheets map[string][][]any) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	for name, rows := range sheets {
		if _, err := f.NewSheet(name); err != nil {
			t.Fatal(err)
		}
		for i, row := range rows {
			cell, _ := excelize.CoordinatesToCellName(1, i+1)
			if err := f.SetSheetRow(name, cell, &row); err != nil {
				t.Fatal(err)
			}
		}
	}

	path := filepath.Join(t.TempDir(), "raw.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadHeadersCaseInsensitiveAndReordered(t *testing.T) {
	header := []any{"shade", "RATINGS", " Price ", "product name", "brand name",
		"use for which skin type", "Suitable For Which Weather"}
	path := writeRaw(t, map[string][][]any{
		"Foundation": {header, {"Fair, Porcelain", 4.4, "$10.50", "Skin Tint", "Glossier", "Dry", "Summer"}, {}},
		"Lipstick":   {header},
	})

	got, err := NewReader(logger.Nop{}).Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d products, want 1", len(got))
	}
	p := got[0]
	if p.Brand != "Glossier" || !p.Price.Equal(decimal.RequireFromString("10.5")) || p.Rating != 4.4 {
		t.Errorf("unexpected product: %+v", p)
	}
	if !p.HasAnyTag([]string{"porcelain"}) {
		t.Errorf("tags: %v", p.Tags)
	}
}

func TestLoadErrors(t *testing.T) {
	full := []any{"Brand Name", "Product Name", "Price", "Ratings",
		"Suitable for which weather", "Use for which Skin Type", "Shade"}
	noShade := full[:6]

	cases := []struct {
		name   string
		sheets map[string][][]any
	}{
		{"missing lipstick sheet", map[string][][]any{"Foundation": {full}}},
		{"missing shade column", map[string][][]any{"Foundation": {noShade}, "Lipstick": {full}}},
		{"bad price", map[string][][]any{
			"Foundation": {full, {"A", "B", "cheap", 4.5, "", "", "fair"}},
			"Lipstick":   {full},
		}},
		{"bad rating", map[string][][]any{
			"Foundation": {full},
			"Lipstick":   {full, {"A", "B", 5, "n/a", "", "", "red"}},
		}},
		{"empty sheet", map[string][][]any{"Foundation": {}, "Lipstick": {full}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeRaw(t, tc.sheets)
			_, err := NewReader(logger.Nop{}).Load(path)
			if !errors.Is(err, e.ErrCatalogLoad) {
				t.Fatalf("want ErrCatalogLoad, got %v", err)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := NewReader(logger.Nop{}).Load(filepath.Join(t.TempDir(), "nope.xlsx"))
	if !errors.Is(err, e.ErrCatalogLoad) {
		t.Fatalf("want ErrCatalogLoad, got %v", err)
	}
}

func TestWriteRejectsUnknownCategory(t *testing.T) {
	p := *domain.NewProduct("A", "B", decimal.NewFromInt(1), 4, domain.Category("mascara"), nil, "", "")
	err := Write(filepath.Join(t.TempDir(), "x.xlsx"), []domain.Product{p})
	if !errors.Is(err, e.ErrUnknownCategory) {
		t.Fatalf("want ErrUnknownCategory, got %v", err)
	}
}

func TestParsePrice(t *testing.T) {
	for in, want := range map[string]string{"8.99": "8.99", "$12": "12", "1,299.00": "1299"} {
		got, err := parsePrice(in)
		if err != nil || !got.Equal(decimal.RequireFromString(want)) {
			t.Errorf("parsePrice(%q) = %s, %v", in, got, err)
		}
	}
	if _, err := parsePrice("-1"); err == nil {
		t.Error("negative price accepted")
	}
}
