package cache

import (
	"fmt"
	"strconv"
	"time"

	"github.com/iudanet/retailapi/internal/server/storage"
)

// absentSentinel подставляется в ключ вместо незаданного параметра.
// Отсутствующий и заданный параметр обязаны давать разные ключи, иначе
// семантически разные запросы делят одну запись в кеше.
const absentSentinel = "-"

// PageKey returns the canonical cache key for a page query
func PageKey(skip, limit int) string {
	return fmt.Sprintf("data:%d:%d", skip, limit)
}

// RecordKey returns the canonical cache key for a single-record query
func RecordKey(id int64) string {
	return fmt.Sprintf("data_id:%d", id)
}

// FilterKey returns the canonical cache key for a filter query.
// Every parameter position is always present in the key; absent optional
// filters are rendered as the sentinel, never omitted.
func FilterKey(filter storage.RecordFilter, skip, limit int) string {
	return fmt.Sprintf("filter:%s:%s:%s:%s:%s:%d:%d",
		dateKeyPart(filter.StartDate),
		dateKeyPart(filter.EndDate),
		stringKeyPart(filter.Country),
		priceKeyPart(filter.MinPrice),
		priceKeyPart(filter.MaxPrice),
		skip,
		limit,
	)
}

// dateKeyPart нормализует дату в RFC3339, чтобы "2010-12-01" и
// "2010-12-01T00:00:00Z" давали один и тот же ключ
func dateKeyPart(t *time.Time) string {
	if t == nil {
		return absentSentinel
	}
	return t.UTC().Format(time.RFC3339)
}

func stringKeyPart(s *string) string {
	if s == nil {
		return absentSentinel
	}
	return *s
}

func priceKeyPart(f *float64) string {
	if f == nil {
		return absentSentinel
	}
	return strconv.FormatFloat(*f, 'g', -1, 64)
}
