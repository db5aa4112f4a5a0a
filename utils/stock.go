package utils

import (
	"strconv"
	"strings"

	"consumable-app/models"
)

// CoerceInt converts a loosely typed value to int, treating anything
// non-numeric as 0. Request bodies and CSV-era rows carry stock counts as
// strings or floats, so the classifier must never panic on them.
func CoerceInt(value interface{}) int {
	switch v := value.(type) {
	case nil:
		return 0
	case bool:
		if v {
			return 1
		}
		return 0
	case int:
		return v
	case int64:
		return int(v)
	case uint:
		return int(v)
	case float64:
		return int(v)
	case float32:
		return int(v)
	case string:
		text := strings.TrimSpace(v)
		if text == "" {
			return 0
		}
		if f, err := strconv.ParseFloat(text, 64); err == nil {
			return int(f)
		}
		return 0
	default:
		return 0
	}
}

// CalculateShortageStatus derives the three-way stock health indicator:
// stock <= 0 is 欠品, stock <= safety is 要注意, otherwise 在庫あり.
// Must be re-invoked after every mutation of stock_quantity or safety_stock.
func CalculateShortageStatus(stockQuantity, safetyStock int) models.ShortageStatus {
	if stockQuantity <= 0 {
		return models.ShortageOut
	}
	if stockQuantity <= safetyStock {
		return models.ShortageLow
	}
	return models.ShortageOK
}
