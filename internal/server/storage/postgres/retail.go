package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/iudanet/retailapi/internal/models"
	"github.com/iudanet/retailapi/internal/server/storage"
)

const recordColumns = `id, invoice_no, stock_code, description, quantity, unit_price, customer_id, country, invoice_date`

// ListRecords returns a page of records ordered by id
func (s *Storage) ListRecords(ctx context.Context, skip, limit int) ([]*models.TransactionRecord, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM retail_data
		ORDER BY id
		OFFSET $1 LIMIT $2
	`

	rows, err := s.db.QueryContext(ctx, query, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// GetRecordByID retrieves a single record by id
func (s *Storage) GetRecordByID(ctx context.Context, id int64) (*models.TransactionRecord, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM retail_data
		WHERE id = $1
	`

	record, err := scanRecord(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get record: %w", err)
	}

	return record, nil
}

// FilterRecords returns a page of records matching all present filter conditions
func (s *Storage) FilterRecords(ctx context.Context, filter storage.RecordFilter, skip, limit int) ([]*models.TransactionRecord, error) {
	// Собираем предикат как конъюнкцию заданных условий.
	// Присутствие условия определяется по nil, а не по нулевому значению,
	// поэтому min_price=0 честно попадает в WHERE.
	var conditions []string
	var args []interface{}

	addCondition := func(expr string, value interface{}) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(expr, len(args)))
	}

	if filter.StartDate != nil {
		addCondition("invoice_date >= $%d", *filter.StartDate)
	}
	if filter.EndDate != nil {
		addCondition("invoice_date <= $%d", *filter.EndDate)
	}
	if filter.Country != nil {
		addCondition("country = $%d", *filter.Country)
	}
	if filter.MinPrice != nil {
		addCondition("unit_price >= $%d", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		addCondition("unit_price <= $%d", *filter.MaxPrice)
	}

	query := `SELECT ` + recordColumns + ` FROM retail_data`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	args = append(args, skip)
	query += fmt.Sprintf(` ORDER BY id OFFSET $%d`, len(args))
	args = append(args, limit)
	query += fmt.Sprintf(` LIMIT $%d`, len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to filter records: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// rowScanner покрывает *sql.Row и *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanRecord читает одну запись из строки результата
func scanRecord(row rowScanner) (*models.TransactionRecord, error) {
	record := &models.TransactionRecord{}
	var customerID sql.NullInt64

	err := row.Scan(
		&record.ID,
		&record.InvoiceNo,
		&record.StockCode,
		&record.Description,
		&record.Quantity,
		&record.UnitPrice,
		&customerID,
		&record.Country,
		&record.InvoiceDate,
	)
	if err != nil {
		return nil, err
	}

	if customerID.Valid {
		record.CustomerID = &customerID.Int64
	}

	return record, nil
}

// scanRecords читает все записи из результата запроса
func scanRecords(rows *sql.Rows) ([]*models.TransactionRecord, error) {
	// Пустая страница сериализуется как [], а не null
	records := []*models.TransactionRecord{}

	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read records: %w", err)
	}

	return records, nil
}
