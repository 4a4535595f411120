package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/iudanet/retailapi/internal/server/storage"
)

func recordRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "invoice_no", "stock_code", "description", "quantity",
		"unit_price", "customer_id", "country", "invoice_date",
	})
}

func TestListRecords(t *testing.T) {
	s, mock, db := newStorageWithMock(t)
	defer db.Close()

	date := time.Date(2010, 12, 1, 0, 0, 0, 0, time.UTC)
	rows := recordRows().
		AddRow(1, "536365", "85123A", "WHITE HANGING HEART T-LIGHT HOLDER", 6, 2.55, 17850, "United Kingdom", date).
		AddRow(2, "536366", "22633", "HAND WARMER UNION JACK", 6, 1.85, nil, "United Kingdom", date)

	mock.ExpectQuery(`(?s)SELECT id, invoice_no, .+ FROM retail_data\s+ORDER BY id\s+OFFSET \$1 LIMIT \$2`).
		WithArgs(0, 100).
		WillReturnRows(rows)

	records, err := s.ListRecords(context.Background(), 0, 100)
	if err != nil {
		t.Fatalf("ListRecords error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].CustomerID == nil || *records[0].CustomerID != 17850 {
		t.Fatalf("unexpected customer id: %+v", records[0].CustomerID)
	}
	// NULL customer_id из БД остается nil
	if records[1].CustomerID != nil {
		t.Fatalf("expected nil customer id, got %v", *records[1].CustomerID)
	}
}

func TestListRecords_EmptyPage(t *testing.T) {
	s, mock, db := newStorageWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)FROM retail_data`).
		WithArgs(100000, 100).
		WillReturnRows(recordRows())

	records, err := s.ListRecords(context.Background(), 100000, 100)
	if err != nil {
		t.Fatalf("ListRecords error: %v", err)
	}
	if records == nil || len(records) != 0 {
		t.Fatalf("expected empty non-nil slice, got %v", records)
	}
}

func TestGetRecordByID_NotFound(t *testing.T) {
	s, mock, db := newStorageWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)FROM retail_data\s+WHERE id = \$1`).
		WithArgs(int64(404)).
		WillReturnError(sql.ErrNoRows)

	_, err := s.GetRecordByID(context.Background(), 404)
	if !errors.Is(err, storage.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestFilterRecords_AllConditions(t *testing.T) {
	s, mock, db := newStorageWithMock(t)
	defer db.Close()

	start := time.Date(2010, 12, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2011, 12, 9, 0, 0, 0, 0, time.UTC)
	country := "France"
	minPrice := 1.5
	maxPrice := 10.0

	filter := storage.RecordFilter{
		StartDate: &start,
		EndDate:   &end,
		Country:   &country,
		MinPrice:  &minPrice,
		MaxPrice:  &maxPrice,
	}

	// Все пять условий входят в предикат конъюнкцией в фиксированном порядке
	q := `(?s)FROM retail_data WHERE invoice_date >= \$1 AND invoice_date <= \$2 AND country = \$3 AND unit_price >= \$4 AND unit_price <= \$5 ORDER BY id OFFSET \$6 LIMIT \$7`
	mock.ExpectQuery(q).
		WithArgs(start, end, country, minPrice, maxPrice, 0, 100).
		WillReturnRows(recordRows())

	_, err := s.FilterRecords(context.Background(), filter, 0, 100)
	if err != nil {
		t.Fatalf("FilterRecords error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestFilterRecords_NoConditions(t *testing.T) {
	s, mock, db := newStorageWithMock(t)
	defer db.Close()

	// Пустой фильтр не генерирует WHERE
	q := `(?s)FROM retail_data ORDER BY id OFFSET \$1 LIMIT \$2`
	mock.ExpectQuery(q).
		WithArgs(0, 100).
		WillReturnRows(recordRows())

	_, err := s.FilterRecords(context.Background(), storage.RecordFilter{}, 0, 100)
	if err != nil {
		t.Fatalf("FilterRecords error: %v", err)
	}
}

func TestFilterRecords_ZeroMinPriceInPredicate(t *testing.T) {
	s, mock, db := newStorageWithMock(t)
	defer db.Close()

	// min_price=0 задан, поэтому условие обязано попасть в WHERE
	zero := 0.0
	filter := storage.RecordFilter{MinPrice: &zero}

	q := `(?s)FROM retail_data WHERE unit_price >= \$1 ORDER BY id OFFSET \$2 LIMIT \$3`
	mock.ExpectQuery(q).
		WithArgs(0.0, 0, 100).
		WillReturnRows(recordRows())

	_, err := s.FilterRecords(context.Background(), filter, 0, 100)
	if err != nil {
		t.Fatalf("FilterRecords error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestFilterRecords_DBError(t *testing.T) {
	s, mock, db := newStorageWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)FROM retail_data`).
		WillReturnError(errors.New("db down"))

	_, err := s.FilterRecords(context.Background(), storage.RecordFilter{}, 0, 100)
	if err == nil {
		t.Fatal("expected error")
	}
}
