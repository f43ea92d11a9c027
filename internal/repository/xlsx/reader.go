package xlsx

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/DRSN-tech/beauty-backend/internal/domain"
	"github.com/DRSN-tech/beauty-backend/pkg/e"
	"github.com/DRSN-tech/beauty-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Заголовки колонок каталога. Сравниваются без учёта регистра и крайних пробелов.
const (
	ColBrand    = "Brand Name"
	ColProduct  = "Product Name"
	ColPrice    = "Price"
	ColRating   = "Ratings"
	ColWeather  = "Suitable for which weather"
	ColSkinType = "Use for which Skin Type"
	ColShade    = "Shade"
)

// Columns — порядок колонок, в котором пишет Writer.
var Columns = []string{ColBrand, ColProduct, ColPrice, ColRating, ColWeather, ColSkinType, ColShade}

// Reader читает каталог из книги Excel: по листу на категорию.
type Reader struct {
	categories []domain.Category
	logger     logger.Logger
}

func NewReader(logger logger.Logger) *Reader {
	return &Reader{categories: domain.Categories, logger: logger}
}

// Load открывает книгу по пути и возвращает все продукты всех категорий.
func (r *Reader) Load(path string) ([]domain.Product, error) {
	const op = "Reader.Load"

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, e.Wrap(op, fmt.Errorf("%w: %w", e.ErrCatalogLoad, err))
	}
	defer f.Close()

	products, err := r.read(f)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	r.logger.Infof("catalog loaded from %s: %d products", path, len(products))
	return products, nil
}

// Read делает то же, что Load, но из потока.
func (r *Reader) Read(src io.Reader) ([]domain.Product, error) {
	const op = "Reader.Read"

	f, err := excelize.OpenReader(src)
	if err != nil {
		return nil, e.Wrap(op, fmt.Errorf("%w: %w", e.ErrCatalogLoad, err))
	}
	defer f.Close()

	products, err := r.read(f)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return products, nil
}

func (r *Reader) read(f *excelize.File) ([]domain.Product, error) {
	var products []domain.Product
	for _, cat := range r.categories {
		sheet := cat.SheetName()
		if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
			return nil, fmt.Errorf("%w: sheet %q not found", e.ErrCatalogLoad, sheet)
		}

		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("%w: sheet %q: %w", e.ErrCatalogLoad, sheet, err)
		}

		ps, err := r.parseSheet(cat, rows)
		if err != nil {
			return nil, err
		}
		if len(ps) == 0 {
			r.logger.Warnf("catalog sheet %q has no products", sheet)
		}
		products = append(products, ps...)
	}

	return products, nil
}

func (r *Reader) parseSheet(cat domain.Category, rows [][]string) ([]domain.Product, error) {
	sheet := cat.SheetName()
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: sheet %q has no header row", e.ErrCatalogLoad, sheet)
	}

	idx, err := headerIndex(rows[0])
	if err != nil {
		return nil, fmt.Errorf("%w: sheet %q: %w", e.ErrCatalogLoad, sheet, err)
	}

	products := make([]domain.Product, 0, len(rows)-1)
	for i, row := range rows[1:] {
		rowNum := i + 2 // нумерация строк Excel, с учётом заголовка
		cell := func(col string) string {
			j := idx[col]
			if j >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[j])
		}

		if isBlank(row) {
			continue
		}

		price, err := parsePrice(cell(ColPrice))
		if err != nil {
			return nil, fmt.Errorf("%w: sheet %q row %d: price: %w", e.ErrCatalogLoad, sheet, rowNum, err)
		}
		rating, err := strconv.ParseFloat(cell(ColRating), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: sheet %q row %d: rating: %w", e.ErrCatalogLoad, sheet, rowNum, err)
		}

		p := domain.NewProduct(cell(ColBrand), cell(ColProduct), price, rating, cat,
			domain.SplitTags(cell(ColShade)), cell(ColWeather), cell(ColSkinType))
		if len(p.Tags) == 0 {
			r.logger.Warnf("sheet %q row %d (%s) has no shade tags and will never be recommended", sheet, rowNum, p.Name)
		}
		products = append(products, *p)
	}

	return products, nil
}

// headerIndex сопоставляет обязательные колонки с их позициями в строке заголовка.
func headerIndex(header []string) (map[string]int, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		if _, dup := pos[key]; !dup && key != "" {
			pos[key] = i
		}
	}

	idx := make(map[string]int, len(Columns))
	var missing []string
	for _, col := range Columns {
		i, ok := pos[strings.ToLower(col)]
		if !ok {
			missing = append(missing, col)
			continue
		}
		idx[col] = i
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing columns: %s", strings.Join(missing, ", "))
	}

	return idx, nil
}

// parsePrice принимает "8.99", "$8.99" и "1,299.00".
func parsePrice(s string) (decimal.Decimal, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "$")
	s = strings.ReplaceAll(s, ",", "")
	p, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if p.IsNegative() {
		return decimal.Decimal{}, fmt.Errorf("negative price %s", p)
	}

	return p, nil
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}

	return true
}
