package main

import (
	"github.com/DRSN-tech/beauty-backend/internal/domain"
	"github.com/shopspring/decimal"
)

type sampleRow struct {
	brand, name, price string
	rating             float64
	seasons, skinTypes string
	shades             string
}

// Демонстрационный каталог. Оттенки подобраны так, чтобы при фильтрах по умолчанию
// каждая метка цвета кожи давала хотя бы одну рекомендацию в обеих категориях.
var (
	sampleFoundations = []sampleRow{
		{"Maybelline", "Fit Me Matte + Poreless Foundation", "8.99", 4.5, "all seasons, Summer, Winter", "Oily, Combination", "light, medium, tan"},
		{"L'Oreal", "True Match Super-Blendable Foundation", "10.99", 4.6, "all seasons, Spring, Fall", "Normal, Dry", "fair, light, medium"},
		{"MAC", "Studio Fix Fluid SPF 15", "35.00", 4.7, "all seasons, Summer", "Oily, Normal", "medium, tan, dark"},
		{"Fenty Beauty", "Pro Filt'r Soft Matte Foundation", "40.00", 4.8, "all seasons, Summer, Spring", "Oily, Combination, Normal", "fair, light, medium, tan, dark, deep"},
		{"NARS", "Natural Radiant Longwear Foundation", "49.00", 4.6, "all seasons, Winter", "Dry, Normal", "light, medium"},
		{"Estee Lauder", "Double Wear Stay-in-Place Foundation", "48.00", 4.9, "all seasons, Summer, Winter", "Oily, Combination", "fair, light, medium, tan, dark"},
		{"IT Cosmetics", "CC+ Cream with SPF 50+", "44.00", 4.5, "all seasons, Summer", "Dry, Normal, Sensitive", "fair, light, medium"},
		{"Covergirl", "Clean Fresh Skin Milk Foundation", "13.99", 4.3, "all seasons, Spring, Fall", "Normal, Combination", "porcelain, fair, light"},
		{"NYX", "Born To Glow! Naturally Radiant Foundation", "11.00", 4.4, "all seasons, Fall, Winter", "Dry, Normal", "medium, tan, deep"},
		{"Rare Beauty", "Liquid Touch Weightless Foundation", "29.00", 4.7, "all seasons, Summer, Spring", "All, Normal, Oily, Dry", "fair, light, medium, dark"},
		{"Charlotte Tilbury", "Airbrush Flawless Foundation", "46.00", 4.8, "all seasons, Winter, Fall", "Normal, Dry, Combination", "light, medium, tan"},
		{"Clinique", "Even Better Clinical Serum Foundation", "36.00", 4.5, "all seasons", "Normal, Oily, Combination", "porcelain, fair, dark, deep"},
	}

	sampleLipsticks = []sampleRow{
		{"MAC", "Matte Lipstick - Ruby Woo", "21.00", 4.7, "all seasons, Winter", "All, Dry, Normal", "red"},
		{"Maybelline", "SuperStay Matte Ink", "9.49", 4.6, "all seasons, Summer, Spring", "All, Oily, Normal", "red, pink"},
		{"Charlotte Tilbury", "Matte Revolution Lipstick - Pillow Talk", "34.00", 4.8, "all seasons, Fall, Winter", "Dry, Normal", "nude, pink"},
		{"Fenty Beauty", "Gloss Bomb Universal Lip Luminizer", "21.00", 4.5, "all seasons, Summer", "All, Normal", "nude, coral"},
		{"NARS", "Audacious Lipstick - Anita", "34.00", 4.6, "all seasons, Spring, Fall", "Normal, Dry", "brown, berry"},
		{"NYX", "Soft Matte Lip Cream", "6.50", 4.4, "all seasons, Summer, Spring", "All, Oily, Normal", "coral, pink"},
		{"Rare Beauty", "Soft Pinch Liquid Blush", "23.00", 4.7, "all seasons", "All", "pink, coral"},
		{"L'Oreal", "Colour Riche Ultra Matte Lipstick", "10.99", 4.3, "all seasons, Winter, Fall", "Dry, Normal, Combination", "berry, red"},
		{"Dior", "Addict Lip Glow", "38.00", 4.8, "all seasons, Summer, Spring", "All, Dry", "pink"},
		{"Too Faced", "Lip Injection Maximum Plump", "29.00", 4.4, "all seasons, Winter", "Dry, Normal", "nude"},
		{"Clinique", "Pop Lip Colour + Primer", "22.00", 4.5, "all seasons, Fall, Spring", "Normal, Combination, Dry", "berry, coral"},
		{"Revlon", "Super Lustrous Lipstick", "8.49", 4.2, "all seasons, Summer, Winter", "All, Oily, Normal, Dry", "red, brown"},
	}
)

func sampleProducts() []domain.Product {
	products := make([]domain.Product, 0, len(sampleFoundations)+len(sampleLipsticks))
	add := func(cat domain.Category, rows []sampleRow) {
		for _, r := range rows {
			products = append(products, *domain.NewProduct(r.brand, r.name, decimal.RequireFromString(r.price),
				r.rating, cat, domain.SplitTags(r.shades), r.seasons, r.skinTypes))
		}
	}
	add(domain.Foundation, sampleFoundations)
	add(domain.Lipstick, sampleLipsticks)

	return products
}
