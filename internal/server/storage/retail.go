package storage

import (
	"context"
	"time"

	"github.com/iudanet/retailapi/internal/models"
)

// RecordFilter описывает опциональные условия выборки транзакций.
// Указатели отличают "параметр не передан" (nil) от легитимного нулевого
// значения: min_price=0 должен попасть в предикат, а не отброситься.
type RecordFilter struct {
	StartDate *time.Time // invoice_date >= StartDate
	EndDate   *time.Time // invoice_date <= EndDate
	Country   *string    // country = Country
	MinPrice  *float64   // unit_price >= MinPrice
	MaxPrice  *float64   // unit_price <= MaxPrice
}

// IsEmpty сообщает, задано ли хотя бы одно условие
func (f RecordFilter) IsEmpty() bool {
	return f.StartDate == nil && f.EndDate == nil && f.Country == nil &&
		f.MinPrice == nil && f.MaxPrice == nil
}

// RetailStorage defines interface for read-only access to transaction records
type RetailStorage interface {
	// ListRecords returns a page of records ordered by id
	ListRecords(ctx context.Context, skip, limit int) ([]*models.TransactionRecord, error)

	// GetRecordByID retrieves a single record
	// Returns ErrRecordNotFound if record doesn't exist
	GetRecordByID(ctx context.Context, id int64) (*models.TransactionRecord, error)

	// FilterRecords returns a page of records matching the conjunction of
	// all present filter conditions, ordered by id
	FilterRecords(ctx context.Context, filter RecordFilter, skip, limit int) ([]*models.TransactionRecord, error)
}
