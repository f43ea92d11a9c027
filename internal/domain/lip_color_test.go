package domain

import (
	"math"
	"strings"
	"testing"
)

func mustHex(t *testing.T, s string) RGB {
	t.Helper()

	c, err := ParseHex(s)
	if err != nil {
		t.Fatalf("ParseHex(%q): %v", s, err)
	}
	return c
}

func TestParseHex(t *testing.T) {
	c := mustHex(t, "#963246")
	if c != (RGB{R: 150, G: 50, B: 70}) || c.Hex() != "#963246" {
		t.Fatalf("got %+v (%s)", c, c.Hex())
	}
	if got := mustHex(t, " 7B2044 "); got != (RGB{R: 123, G: 32, B: 68}) {
		t.Fatalf("without hash: %+v", got)
	}
	for _, bad := range []string{"", "#fff", "#12345g", "#1234567"} {
		if _, err := ParseHex(bad); err == nil {
			t.Errorf("ParseHex(%q) should fail", bad)
		}
	}
}

func TestBrightnessAndDarken(t *testing.T) {
	if got := (RGB{R: 255, G: 255, B: 255}).Brightness(); math.Abs(got-255) > 1e-9 {
		t.Errorf("white brightness = %v", got)
	}
	if got := (RGB{G: 100}).Brightness(); math.Abs(got-58.7) > 1e-9 {
		t.Errorf("green brightness = %v", got)
	}
	if got := (RGB{R: 150, G: 50, B: 1}).Darken(0.9); got != (RGB{R: 135, G: 45, B: 0}) {
		t.Errorf("Darken = %+v", got)
	}
	if got := Distance(RGB{}, RGB{R: 3, G: 4}); got != 5 {
		t.Errorf("Distance = %v", got)
	}
}

func lipSwatches(t *testing.T) map[string]RGB {
	return map[string]RGB{
		"pink":  mustHex(t, "#d9748f"),
		"nude":  mustHex(t, "#c48a7a"),
		"coral": mustHex(t, "#e5674f"),
		"red":   mustHex(t, "#b3122e"),
		"berry": mustHex(t, "#7b2044"),
		"brown": mustHex(t, "#6b3a2e"),
	}
}

func TestLipRuleDeriveNearestWithoutDarkening(t *testing.T) {
	rule := &LipRule{LipTone: mustHex(t, "#d98a8f"), DarkenFactor: 0.9, Count: 3}

	got, err := rule.Derive("fair", mustHex(t, "#f3d9c6"), lipSwatches(t))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(got, ",") != "pink,nude,coral" {
		t.Fatalf("got %v", got)
	}
}

func TestLipRuleDeriveDarkensUntilBelowFoundation(t *testing.T) {
	// ближайший к тону губ nude светлее основы, после затемнения темнее основы остаётся только berry
	swatches := map[string]RGB{
		"nude":  mustHex(t, "#c48a7a"),
		"pink":  mustHex(t, "#d9748f"),
		"berry": mustHex(t, "#7b2044"),
	}
	base := mustHex(t, "#5a3824")
	rule := &LipRule{LipTone: mustHex(t, "#c48a7a"), DarkenFactor: 0.9, Count: 3}

	got, err := rule.Derive("dark", base, swatches)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != "berry" {
		t.Fatalf("got %v, want [berry]", got)
	}
	if swatches["berry"].Brightness() >= base.Brightness() {
		t.Fatal("derived lipstick must be darker than the foundation")
	}
}

func TestLipRuleDeriveNothingDarkerFallsBackToNearest(t *testing.T) {
	swatches := map[string]RGB{"nude": mustHex(t, "#c48a7a"), "pink": mustHex(t, "#d9748f")}
	rule := &LipRule{LipTone: mustHex(t, "#c48a7a"), DarkenFactor: 0.9, Count: 3}

	got, err := rule.Derive("dark", mustHex(t, "#404040"), swatches)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != "nude" {
		t.Fatalf("got %v, want [nude]", got)
	}

	if _, err := rule.Derive("dark", RGB{}, swatches); err == nil {
		t.Fatal("black base swatch must be rejected")
	}
}

func TestLipRuleUsesPerLabelTone(t *testing.T) {
	rule := &LipRule{
		LipTone:      DefaultLipTone,
		LipTones:     map[Label]RGB{"dark": mustHex(t, "#7a3b3f")},
		DarkenFactor: 0.9,
		Count:        2,
	}

	got, err := rule.Derive("dark", mustHex(t, "#7d4f35"), lipSwatches(t))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(got, ",") != "brown,berry" {
		t.Fatalf("got %v", got)
	}
}

func foundationWithSwatches(t *testing.T) CategoryScheme {
	return CategoryScheme{
		Category:  Foundation,
		Attribute: SkinTone,
		Limit:     3,
		Buckets: map[Label][]string{
			"fair": {"fair"}, "light": {"light"}, "medium": {"medium"}, "dark": {"dark"},
		},
		Swatches: map[string]RGB{
			"fair": mustHex(t, "#f3d9c6"), "light": mustHex(t, "#e8c4a6"),
			"medium": mustHex(t, "#c68e6a"), "dark": mustHex(t, "#7d4f35"),
		},
	}
}

func lipstickWithRule(t *testing.T) CategoryScheme {
	return CategoryScheme{
		Category:  Lipstick,
		Attribute: SkinTone,
		Limit:     3,
		Swatches:  lipSwatches(t),
		LipRule:   &LipRule{Base: Foundation, LipTone: DefaultLipTone},
	}
}

func TestNewColorSchemeDerivesLipBuckets(t *testing.T) {
	cs, err := NewColorScheme(DefaultVocabularies(), []CategoryScheme{foundationWithSwatches(t), lipstickWithRule(t)})
	if err != nil {
		t.Fatalf("NewColorScheme: %v", err)
	}

	s, _ := cs.Scheme(Lipstick)
	if s.LipRule.DarkenFactor != DefaultDarkenFactor || s.LipRule.Count != 3 {
		t.Errorf("rule defaults not applied: %+v", s.LipRule)
	}

	for _, label := range DefaultVocabularies()[SkinTone].Labels() {
		buckets, err := cs.Buckets(Lipstick, label)
		if err != nil {
			t.Fatalf("%s: %v", label, err)
		}
		if len(buckets) == 0 {
			t.Fatalf("%s: no lipstick buckets", label)
		}
		fb, _ := cs.Buckets(Foundation, label)
		base, _ := cs.Scheme(Foundation)
		for _, b := range buckets {
			if s.Swatches[b].Brightness() >= base.Swatches[fb[0]].Brightness() {
				t.Errorf("%s: lipstick %s is not darker than foundation %s", label, b, fb[0])
			}
		}
	}
}

func TestNewColorSchemeLipRuleValidation(t *testing.T) {
	vocabs := DefaultVocabularies()

	// база объявлена после помады
	if _, err := NewColorScheme(vocabs, []CategoryScheme{lipstickWithRule(t), foundationWithSwatches(t)}); err == nil {
		t.Error("expected error when base is declared later")
	}

	both := lipstickWithRule(t)
	both.Buckets = map[Label][]string{"fair": {"pink"}}
	if _, err := NewColorScheme(vocabs, []CategoryScheme{foundationWithSwatches(t), both}); err == nil {
		t.Error("expected error for buckets together with lip rule")
	}

	noSwatch := foundationWithSwatches(t)
	delete(noSwatch.Swatches, "medium")
	if _, err := NewColorScheme(vocabs, []CategoryScheme{noSwatch, lipstickWithRule(t)}); err == nil {
		t.Error("expected error for base bucket without swatch")
	}

	badTone := lipstickWithRule(t)
	badTone.LipRule.LipTones = map[Label]RGB{"olive": DefaultLipTone}
	if _, err := NewColorScheme(vocabs, []CategoryScheme{foundationWithSwatches(t), badTone}); err == nil {
		t.Error("expected error for lip tone label outside vocabulary")
	}
}
