package domain

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// DefaultLipTone — тон губ, от которого начинается подбор, если для метки свой не задан.
var DefaultLipTone = RGB{R: 150, G: 50, B: 70}

const (
	DefaultDarkenFactor = 0.9
	defaultLipCount     = 3
	maxDarkenSteps      = 64
)

// RGB — цвет образца оттенка.
type RGB struct {
	R, G, B uint8
}

// ParseHex разбирает "#rrggbb" (решётка необязательна).
func ParseHex(s string) (RGB, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) != 6 {
		return RGB{}, fmt.Errorf("invalid hex color %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("invalid hex color %q", s)
	}

	return RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Brightness — воспринимаемая яркость 0.299R + 0.587G + 0.114B.
func (c RGB) Brightness() float64 {
	return 0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)
}

// Darken умножает каналы на factor с отсечением вниз.
func (c RGB) Darken(factor float64) RGB {
	scale := func(v uint8) uint8 { return uint8(max(0, math.Floor(float64(v)*factor))) }
	return RGB{R: scale(c.R), G: scale(c.G), B: scale(c.B)}
}

// Distance — евклидово расстояние в RGB.
func Distance(a, b RGB) float64 {
	dr := float64(a.R) - float64(b.R)
	dg := float64(a.G) - float64(b.G)
	db := float64(a.B) - float64(b.B)
	return math.Sqrt(dr*dr + dg*dg + db*db)
}

// LipRule выводит группы помады из оттенка тонального средства: помада должна быть темнее.
// Base — категория, чья основная группа для метки задаёт порог яркости.
type LipRule struct {
	Base         Category
	LipTone      RGB           // тон губ по умолчанию
	LipTones     map[Label]RGB // тон губ для отдельных меток
	DarkenFactor float64
	Count        int // сколько групп помады отдавать
}

// Derive возвращает группы помады для метки. base — образец тонального средства.
// Ближайший к тону губ образец затемняется, пока не станет темнее base; затем берутся
// Count групп, которые темнее base, в порядке близости к полученному цвету.
func (r *LipRule) Derive(label Label, base RGB, swatches map[string]RGB) ([]string, error) {
	if len(swatches) == 0 {
		return nil, fmt.Errorf("no lipstick swatches")
	}
	threshold := base.Brightness()
	if threshold <= 0 {
		return nil, fmt.Errorf("base swatch %s is black, no lipstick can be darker", base.Hex())
	}

	tone := r.LipTone
	if t, ok := r.LipTones[label]; ok {
		tone = t
	}

	tags := make([]string, 0, len(swatches))
	for tag := range swatches {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	nearest := nearestTag(tags, swatches, tone)
	target := swatches[nearest]
	for i := 0; target.Brightness() >= threshold; i++ {
		if i == maxDarkenSteps {
			return nil, fmt.Errorf("lipstick %s cannot be darkened below %s", nearest, base.Hex())
		}
		target = target.Darken(r.DarkenFactor)
	}

	darker := make([]string, 0, len(tags))
	for _, tag := range tags {
		if swatches[tag].Brightness() < threshold {
			darker = append(darker, tag)
		}
	}
	if len(darker) == 0 {
		return []string{nearestTag(tags, swatches, target)}, nil
	}

	sort.SliceStable(darker, func(i, j int) bool {
		return Distance(swatches[darker[i]], target) < Distance(swatches[darker[j]], target)
	})

	return darker[:min(len(darker), r.Count)], nil
}

func (r *LipRule) normalize() {
	if r.DarkenFactor <= 0 || r.DarkenFactor >= 1 {
		r.DarkenFactor = DefaultDarkenFactor
	}
	if r.Count <= 0 {
		r.Count = defaultLipCount
	}
}

// nearestTag — тег с ближайшим образцом; tags отсортированы, ничья решается по имени.
func nearestTag(tags []string, swatches map[string]RGB, c RGB) string {
	best, bestDist := "", math.Inf(1)
	for _, tag := range tags {
		if d := Distance(swatches[tag], c); d < bestDist {
			best, bestDist = tag, d
		}
	}

	return best
}
