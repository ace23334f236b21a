package certscore

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
)

// FarmSizeCategory maps a size range in hectares to a score multiplier.
// MaxSize is +Inf for open-ended ranges.
type FarmSizeCategory struct {
	Name       string
	MinSize    float64
	MaxSize    float64
	Multiplier float64
}

// defaultFarmSizeCategories is the fallback used when the external table is
// unavailable. The multipliers favor smaller farms.
var defaultFarmSizeCategories = []FarmSizeCategory{
	{Name: "Marginal", MinSize: 0, MaxSize: 1, Multiplier: 1.1},
	{Name: "Small", MinSize: 1, MaxSize: 2, Multiplier: 1.05},
	{Name: "SemiMedium", MinSize: 2, MaxSize: 4, Multiplier: 1.0},
	{Name: "Medium", MinSize: 4, MaxSize: 10, Multiplier: 0.95},
	{Name: "Large", MinSize: 10, MaxSize: math.Inf(1), Multiplier: 0.9},
}

// LoadFarmSizeCategories reads the category table from a CSV file with a
// header row and rows of the form "category,min-max,multiplier" (max may be
// "+" for open-ended). On any error it returns the default table along with
// the error so the caller can log the fallback.
func LoadFarmSizeCategories(path string) ([]FarmSizeCategory, error) {
	f, err := os.Open(path)
	if err != nil {
		return defaultFarmSizeCategories, fmt.Errorf("open farm size categories: %w", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return defaultFarmSizeCategories, fmt.Errorf("read farm size categories: %w", err)
	}
	if len(rows) < 2 {
		return defaultFarmSizeCategories, fmt.Errorf("farm size categories file %s has no data rows", path)
	}

	categories := make([]FarmSizeCategory, 0, len(rows)-1)
	for _, row := range rows[1:] { // skip header
		if len(row) < 3 {
			return defaultFarmSizeCategories, fmt.Errorf("farm size categories row %q is malformed", strings.Join(row, ","))
		}
		cat, err := parseFarmSizeRow(row[0], row[1], row[2])
		if err != nil {
			return defaultFarmSizeCategories, err
		}
		categories = append(categories, cat)
	}
	return categories, nil
}

func parseFarmSizeRow(name, sizeRange, multiplier string) (FarmSizeCategory, error) {
	cat := FarmSizeCategory{Name: strings.TrimSpace(name)}

	lo, hi, ok := strings.Cut(strings.TrimSpace(sizeRange), "-")
	var err error
	if cat.MinSize, err = strconv.ParseFloat(strings.TrimSpace(lo), 64); err != nil {
		return cat, fmt.Errorf("farm size category %s: bad min size %q", cat.Name, lo)
	}
	if !ok || strings.TrimSpace(hi) == "+" {
		cat.MaxSize = math.Inf(1)
	} else if cat.MaxSize, err = strconv.ParseFloat(strings.TrimSpace(hi), 64); err != nil {
		return cat, fmt.Errorf("farm size category %s: bad max size %q", cat.Name, hi)
	}

	if cat.Multiplier, err = strconv.ParseFloat(strings.TrimSpace(multiplier), 64); err != nil {
		return cat, fmt.Errorf("farm size category %s: bad multiplier %q", cat.Name, multiplier)
	}
	return cat, nil
}

// hectares converts a farm size to hectares. Conversions for bigha and katha
// are approximate; both vary by region.
func hectares(size float64, unit string) float64 {
	switch unit {
	case "acre":
		return size * 0.404686
	case "bigha":
		return size * 0.16
	case "katha":
		return size * 0.01
	default:
		return size
	}
}

// categoryFor returns the category name for a size in hectares. Sizes at or
// below zero are Unknown; sizes beyond every range fall back to Large.
func categoryFor(categories []FarmSizeCategory, sizeInHectares float64) string {
	if sizeInHectares <= 0 {
		return "Unknown"
	}
	for _, cat := range categories {
		if sizeInHectares >= cat.MinSize && sizeInHectares < cat.MaxSize {
			return cat.Name
		}
	}
	return "Large"
}

// multiplierFor returns the category's multiplier, defaulting to 1.0 when the
// category is not in the table.
func multiplierFor(categories []FarmSizeCategory, name string) float64 {
	for _, cat := range categories {
		if cat.Name == name {
			return cat.Multiplier
		}
	}
	return 1.0
}
