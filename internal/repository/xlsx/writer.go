package xlsx

import (
	"fmt"
	"strings"

	"github.com/DRSN-tech/beauty-backend/internal/domain"
	"github.com/DRSN-tech/beauty-backend/pkg/e"
	"github.com/xuri/excelize/v2"
)

const defaultSheet = "Sheet1"

// Write сохраняет продукты в книгу той же структуры, что читает Reader.
// Лист создаётся для каждой известной категории, даже пустой.
func Write(path string, products []domain.Product) error {
	const op = "xlsx.Write"

	f := excelize.NewFile()
	defer f.Close()

	byCategory := make(map[domain.Category][]domain.Product)
	for _, p := range products {
		byCategory[p.Category] = append(byCategory[p.Category], p)
	}
	for cat := range byCategory {
		if _, err := domain.ParseCategory(string(cat)); err != nil {
			return e.Wrap(op, fmt.Errorf("%w: %q", e.ErrUnknownCategory, cat))
		}
	}

	for i, cat := range domain.Categories {
		sheet := cat.SheetName()
		idx, err := f.NewSheet(sheet)
		if err != nil {
			return e.Wrap(op, err)
		}
		if i == 0 {
			f.SetActiveSheet(idx)
		}

		if err := writeSheet(f, sheet, byCategory[cat]); err != nil {
			return e.Wrap(op, err)
		}
	}

	if err := f.DeleteSheet(defaultSheet); err != nil {
		return e.Wrap(op, err)
	}

	if err := f.SaveAs(path); err != nil {
		return e.Wrap(op, err)
	}

	return nil
}

func writeSheet(f *excelize.File, sheet string, products []domain.Product) error {
	header := make([]any, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	for i, p := range products {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}

		row := []any{
			p.Brand,
			p.Name,
			p.Price.InexactFloat64(),
			p.Rating,
			p.Seasons,
			p.SkinTypes,
			strings.Join(p.Tags, ", "),
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}

	return f.SetColWidth(sheet, "A", "G", 24)
}
