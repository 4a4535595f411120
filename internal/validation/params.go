package validation

import (
	"fmt"
	"strconv"
	"time"
)

// dateLayouts перечисляет принимаемые форматы дат в query параметрах
// Сначала пробуем чистую дату, затем полный RFC3339 timestamp
var dateLayouts = []string{"2006-01-02", time.RFC3339}

// ParseDateParam разбирает опциональный параметр-дату.
// Пустая строка означает отсутствие параметра и возвращает nil без ошибки.
func ParseDateParam(field, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return &t, nil
		}
	}

	return nil, fmt.Errorf("%s must be a date in YYYY-MM-DD or RFC3339 format", field)
}

// ParsePriceParam разбирает опциональный неотрицательный параметр-цену.
// Ноль — легитимное значение, поэтому присутствие параметра определяется
// по непустой строке, а не по значению.
func ParsePriceParam(field, value string) (*float64, error) {
	if value == "" {
		return nil, nil
	}

	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("%s must be a number", field)
	}
	if f < 0 {
		return nil, fmt.Errorf("%s must not be negative", field)
	}

	return &f, nil
}

// ParsePageParam разбирает параметр пагинации (skip или limit).
// Пустая строка возвращает значение по умолчанию.
func ParsePageParam(field, value string, def int) (int, error) {
	if value == "" {
		return def, nil
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", field)
	}
	if n < 0 {
		return 0, fmt.Errorf("%s must not be negative", field)
	}

	return n, nil
}

// ParseIDParam разбирает path параметр id записи
func ParseIDParam(value string) (int64, error) {
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("id must be an integer")
	}
	if id <= 0 {
		return 0, fmt.Errorf("id must be positive")
	}

	return id, nil
}
