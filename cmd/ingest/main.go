// Command ingest performs the one-time bulk load of the Online Retail II
// dataset (exported as CSV) into PostgreSQL. Existing rows are replaced.
//
// Expected CSV header:
//
//	Invoice,StockCode,Description,Quantity,InvoiceDate,Price,Customer ID,Country
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/iudanet/retailapi/internal/server/storage/postgres"
)

// dateLayouts перечисляет форматы даты, встречающиеся в выгрузках датасета
var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"01/02/2006 15:04",
	"2006-01-02",
}

func main() {
	dsn := flag.String("database-dsn", os.Getenv("RETAIL_DATABASE_DSN"), "PostgreSQL connection string")
	path := flag.String("csv", "", "path to the dataset CSV file")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	if *dsn == "" || *path == "" {
		fmt.Fprintln(os.Stderr, "usage: ingest -database-dsn <dsn> -csv <file>")
		os.Exit(2)
	}

	if err := run(context.Background(), logger, *dsn, *path); err != nil {
		logger.Error("ingest failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, dsn, path string) error {
	// Открываем через общий storage, чтобы прогнать миграции
	store, err := postgres.New(ctx, dsn)
	if err != nil {
		return fmt.Errorf("failed to init storage: %w", err)
	}

	// Перезагрузка датасета: старые строки убираем целиком
	if _, err := store.DB().ExecContext(ctx, `TRUNCATE retail_data RESTART IDENTITY`); err != nil {
		store.Close()
		return fmt.Errorf("failed to truncate: %w", err)
	}
	store.Close()

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open csv: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = 8

	// Пропускаем заголовок
	if _, err := reader.Read(); err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}

	// CopyFrom стримит строки в COPY протокол без буферизации всего файла
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer conn.Close(ctx)

	source := &csvCopySource{reader: reader, logger: logger}

	start := time.Now()
	copied, err := conn.CopyFrom(ctx,
		pgx.Identifier{"retail_data"},
		[]string{"invoice_no", "stock_code", "description", "quantity", "unit_price", "customer_id", "country", "invoice_date"},
		source,
	)
	if err != nil {
		return fmt.Errorf("copy failed: %w", err)
	}

	logger.Info("dataset loaded",
		slog.Int64("rows", copied),
		slog.Int("skipped", source.skipped),
		slog.Duration("took", time.Since(start)))

	return nil
}

// csvCopySource реализует pgx.CopyFromSource поверх csv.Reader.
// Строки с нечитаемыми полями пропускаются с предупреждением, а не валят
// всю загрузку.
type csvCopySource struct {
	reader  *csv.Reader
	logger  *slog.Logger
	values  []interface{}
	err     error
	line    int
	skipped int
}

// Next advances to the next parseable CSV row
func (s *csvCopySource) Next() bool {
	for {
		record, err := s.reader.Read()
		if err == io.EOF {
			return false
		}
		if err != nil {
			s.err = fmt.Errorf("csv read error at line %d: %w", s.line+2, err)
			return false
		}
		s.line++

		values, err := parseRow(record)
		if err != nil {
			s.skipped++
			s.logger.Warn("skipping row", slog.Int("line", s.line+1), slog.Any("error", err))
			continue
		}

		s.values = values
		return true
	}
}

// Values returns the current row in column order
func (s *csvCopySource) Values() ([]interface{}, error) {
	return s.values, nil
}

// Err returns the terminal read error, if any
func (s *csvCopySource) Err() error {
	return s.err
}

// parseRow превращает CSV строку в значения колонок retail_data
func parseRow(record []string) ([]interface{}, error) {
	quantity, err := strconv.Atoi(strings.TrimSpace(record[3]))
	if err != nil {
		return nil, fmt.Errorf("bad quantity %q", record[3])
	}

	unitPrice, err := strconv.ParseFloat(strings.TrimSpace(record[5]), 64)
	if err != nil || unitPrice < 0 {
		return nil, fmt.Errorf("bad price %q", record[5])
	}

	invoiceDate, err := parseDate(strings.TrimSpace(record[4]))
	if err != nil {
		return nil, err
	}

	// Customer ID пустой для анонимных покупок, в БД уходит NULL
	var customerID interface{}
	if raw := strings.TrimSpace(record[6]); raw != "" {
		id, err := strconv.ParseFloat(raw, 64) // выгрузки содержат "17850.0"
		if err != nil {
			return nil, fmt.Errorf("bad customer id %q", raw)
		}
		customerID = int64(id)
	}

	return []interface{}{
		strings.TrimSpace(record[0]), // invoice_no
		strings.TrimSpace(record[1]), // stock_code
		strings.TrimSpace(record[2]), // description
		quantity,
		unitPrice,
		customerID,
		strings.TrimSpace(record[7]), // country
		invoiceDate,
	}, nil
}

func parseDate(value string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("bad invoice date %q", value)
}
