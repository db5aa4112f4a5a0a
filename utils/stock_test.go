package utils

import (
	"testing"

	"consumable-app/models"

	"github.com/stretchr/testify/assert"
)

func TestCalculateShortageStatus(t *testing.T) {
	tests := []struct {
		name   string
		stock  int
		safety int
		want   models.ShortageStatus
	}{
		{"zero stock", 0, 5, models.ShortageOut},
		{"negative stock", -3, 5, models.ShortageOut},
		{"zero stock zero safety", 0, 0, models.ShortageOut},
		{"at safety line", 5, 5, models.ShortageLow},
		{"below safety line", 3, 5, models.ShortageLow},
		{"one above safety", 6, 5, models.ShortageOK},
		{"plenty", 100, 5, models.ShortageOK},
		{"positive stock zero safety", 1, 0, models.ShortageOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CalculateShortageStatus(tt.stock, tt.safety))
		})
	}
}

// Every input maps to one of the three labels; there is no unset state.
func TestCalculateShortageStatusTotal(t *testing.T) {
	for stock := -5; stock <= 20; stock++ {
		for safety := -5; safety <= 20; safety++ {
			got := CalculateShortageStatus(stock, safety)
			switch got {
			case models.ShortageOut, models.ShortageLow, models.ShortageOK:
			default:
				t.Fatalf("unexpected status %q for stock=%d safety=%d", got, stock, safety)
			}
		}
	}
}

func TestCoerceInt(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  int
	}{
		{"nil", nil, 0},
		{"int", 42, 42},
		{"int64", int64(7), 7},
		{"float64", 3.9, 3},
		{"float32", float32(2.5), 2},
		{"numeric string", "15", 15},
		{"float string", "15.8", 15},
		{"padded string", "  8 ", 8},
		{"empty string", "", 0},
		{"garbage string", "abc", 0},
		{"bool true", true, 1},
		{"bool false", false, 0},
		{"unsupported type", []int{1}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CoerceInt(tt.value))
		})
	}
}
