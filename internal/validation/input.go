// Package validation содержит функции валидации входных данных.
package validation

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/mmeshcher/supplyhub/internal/model"
)

const (
	maxSKULength = 64
	defaultLimit = 20
	maxLimit     = 100
)

// IsValidSKU проверяет артикул: от 1 до 64 символов, буквы, цифры, '-', '_' и '.'.
func IsValidSKU(sku string) bool {
	if sku == "" || len(sku) > maxSKULength {
		return false
	}

	for _, ch := range sku {
		if unicode.IsLetter(ch) || unicode.IsDigit(ch) {
			continue
		}
		switch ch {
		case '-', '_', '.':
			continue
		}
		return false
	}

	return true
}

// ParsePrice разбирает цену в тенге: неотрицательное число не более чем с двумя знаками после запятой.
func ParsePrice(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: price %q is not a number", model.ErrValidation, s)
	}
	if d.IsNegative() {
		return decimal.Decimal{}, fmt.Errorf("%w: price must not be negative", model.ErrValidation)
	}
	if !d.Equal(d.Round(2)) {
		return decimal.Decimal{}, fmt.Errorf("%w: price must have at most 2 decimal places", model.ErrValidation)
	}
	return d.Round(2), nil
}

// NormalizeWindow приводит limit и offset к допустимым значениям.
func NormalizeWindow(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
