package domain

import (
	"fmt"
	"strings"
)

// Category — категория косметического продукта в каталоге.
type Category string

const (
	Foundation Category = "foundation"
	Lipstick   Category = "lipstick"
)

// Categories — категории, для которых формируются рекомендации, в порядке ответа.
var Categories = []Category{Foundation, Lipstick}

func ParseCategory(s string) (Category, error) {
	c := Category(strings.TrimSpace(strings.ToLower(s)))
	for _, known := range Categories {
		if c == known {
			return c, nil
		}
	}

	return "", fmt.Errorf("unknown category %q", s)
}

// SheetName возвращает имя листа каталога для категории ("Foundation", "Lipstick").
func (c Category) SheetName() string {
	if c == "" {
		return ""
	}

	return strings.ToUpper(string(c[:1])) + string(c[1:])
}
