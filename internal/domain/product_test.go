package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestProductSeasonAndSkinTypeMatching(t *testing.T) {
	p := NewProduct("Maybelline", "Fit Me", decimal.RequireFromString("8.99"), 4.5, Foundation,
		[]string{"Fair", "light"}, "all seasons, Summer, Winter", "Oily, Combination")

	cases := []struct {
		name string
		got  bool
		want bool
	}{
		{"season case insensitive", p.SuitsSeason("summer"), true},
		{"season phrase", p.SuitsSeason("all seasons"), true},
		{"season missing", p.SuitsSeason("Fall"), false},
		{"skin type", p.SuitsSkinType("Oily"), true},
		{"skin type partial word", p.SuitsSkinType("Oil"), false},
		{"skin type empty filter", p.SuitsSkinType(""), true},
		{"tag match", p.HasAnyTag([]string{"medium", " FAIR"}), true},
		{"tag miss", p.HasAnyTag([]string{"dark"}), false},
	}
	for _, tc := range cases {
		if tc.got != tc.want {
			t.Errorf("%s: got %v, want %v", tc.name, tc.got, tc.want)
		}
	}
}

func TestSplitTags(t *testing.T) {
	got := SplitTags(" Nude, pink ,, PINK,  deep   red ")
	want := []string{"nude", "pink", "deep red"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestCategorySheetName(t *testing.T) {
	if Foundation.SheetName() != "Foundation" || Lipstick.SheetName() != "Lipstick" {
		t.Fatalf("unexpected sheet names %q %q", Foundation.SheetName(), Lipstick.SheetName())
	}
}

func TestWordMatcherReusedAcrossProducts(t *testing.T) {
	season, skinType := NewWordMatcher(" Summer "), NewWordMatcher("dry")

	products := []*Product{
		NewProduct("A", "one", decimal.NewFromInt(1), 4, Lipstick, nil, "all seasons, Summer", "All, Dry"),
		NewProduct("B", "two", decimal.NewFromInt(1), 4, Lipstick, nil, "Summertime", "Dry"),
		NewProduct("C", "three", decimal.NewFromInt(1), 4, Lipstick, nil, "summer", "Oily"),
		NewProduct("D", "four", decimal.NewFromInt(1), 4, Lipstick, nil, "Summer", "Dry-ish, Normal"),
	}
	want := []bool{true, false, false, true}

	for i, p := range products {
		got := p.Suits(season, skinType)
		if got != want[i] {
			t.Errorf("%s: Suits = %v, want %v", p.Name, got, want[i])
		}
		if single := p.SuitsSeason("Summer") && p.SuitsSkinType("dry"); single != got {
			t.Errorf("%s: Suits = %v, per-call matching = %v", p.Name, got, single)
		}
	}
}

func TestWordMatcherEmptyAndSpecialTerms(t *testing.T) {
	if !NewWordMatcher("  ").Match("anything") {
		t.Error("empty term must match")
	}
	var nilMatcher *WordMatcher
	if !nilMatcher.Match("anything") {
		t.Error("nil matcher must match")
	}
	if NewWordMatcher("a+b").Match("aab") || !NewWordMatcher("a+b").Match("x a+b y") {
		t.Error("term must be matched literally")
	}
}
