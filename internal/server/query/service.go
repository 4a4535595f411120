// Package query implements the read path over the retail dataset: it turns
// untrusted request parameters into a bounded store query and enforces the
// cache-aside protocol in front of it.
package query

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/iudanet/retailapi/internal/models"
	"github.com/iudanet/retailapi/internal/server/cache"
	"github.com/iudanet/retailapi/internal/server/storage"
)

const (
	// DefaultLimit размер страницы по умолчанию
	DefaultLimit = 100
	// MaxLimit жесткий потолок размера страницы
	MaxLimit = 1000
)

// ErrStoreUnavailable indicates that the record store query failed.
// Callers should treat it as retryable; such results are never cached.
var ErrStoreUnavailable = errors.New("record store unavailable")

// Service orchestrates cache-then-store lookups over transaction records.
// All dependencies are injected at construction time, there are no
// process-wide defaults.
type Service struct {
	logger *slog.Logger
	store  storage.RetailStorage
	cache  cache.Cache
	ttl    time.Duration
}

// NewService creates a query service.
// ttl bounds how stale a cached result may be; there is no invalidation on
// underlying data changes, the dataset is read-only after ingestion.
func NewService(logger *slog.Logger, store storage.RetailStorage, c cache.Cache, ttl time.Duration) *Service {
	return &Service{
		logger: logger,
		store:  store,
		cache:  c,
		ttl:    ttl,
	}
}

// GetPage returns a page of records: кеш, при промахе store с последующим
// заполнением кеша
func (s *Service) GetPage(ctx context.Context, skip, limit int) ([]*models.TransactionRecord, error) {
	skip, limit = clampPage(skip, limit)
	key := cache.PageKey(skip, limit)

	if records, ok := s.cachedRecords(ctx, key); ok {
		return records, nil
	}

	records, err := s.store.ListRecords(ctx, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	// Заполняем кеш строго после завершения чтения из store,
	// чтобы не закешировать частичный результат
	s.storeRecords(ctx, key, records)

	return records, nil
}

// GetByID returns a single record.
// Returns storage.ErrRecordNotFound if the record doesn't exist; misses are
// not cached.
func (s *Service) GetByID(ctx context.Context, id int64) (*models.TransactionRecord, error) {
	key := cache.RecordKey(id)

	if data, err := s.cache.Get(ctx, key); err == nil {
		record, decodeErr := cache.DecodeRecord(data)
		if decodeErr == nil {
			return record, nil
		}
		// Битую запись считаем промахом и перечитываем из store
		s.logger.WarnContext(ctx, "failed to decode cached record", slog.String("key", key), slog.Any("error", decodeErr))
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		// Недоступность кеша деградирует до прямого чтения из store
		s.logger.WarnContext(ctx, "cache unavailable, falling back to store", slog.String("key", key), slog.Any("error", err))
	}

	record, err := s.store.GetRecordByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if data, err := cache.EncodeRecord(record); err == nil {
		if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
			s.logger.WarnContext(ctx, "failed to populate cache", slog.String("key", key), slog.Any("error", err))
		}
	}

	return record, nil
}

// Filter returns a page of records matching the conjunction of all present
// filter conditions
func (s *Service) Filter(ctx context.Context, filter storage.RecordFilter, skip, limit int) ([]*models.TransactionRecord, error) {
	skip, limit = clampPage(skip, limit)
	key := cache.FilterKey(filter, skip, limit)

	if records, ok := s.cachedRecords(ctx, key); ok {
		return records, nil
	}

	records, err := s.store.FilterRecords(ctx, filter, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	s.storeRecords(ctx, key, records)

	return records, nil
}

// cachedRecords пытается достать и декодировать результат из кеша.
// Любой сбой кеша трактуется как промах: запрос обслуживается из store.
func (s *Service) cachedRecords(ctx context.Context, key string) ([]*models.TransactionRecord, bool) {
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.WarnContext(ctx, "cache unavailable, falling back to store", slog.String("key", key), slog.Any("error", err))
		}
		return nil, false
	}

	records, err := cache.DecodeRecords(data)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to decode cached records", slog.String("key", key), slog.Any("error", err))
		return nil, false
	}

	return records, true
}

// storeRecords кладет результат в кеш с фиксированным TTL.
// Сбой записи не фатален: следующий запрос просто снова пойдет в store.
func (s *Service) storeRecords(ctx context.Context, key string, records []*models.TransactionRecord) {
	data, err := cache.EncodeRecords(records)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to encode records for cache", slog.String("key", key), slog.Any("error", err))
		return
	}

	if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
		s.logger.WarnContext(ctx, "failed to populate cache", slog.String("key", key), slog.Any("error", err))
	}
}

// clampPage нормализует пагинацию: skip не меньше 0, limit в (0, MaxLimit]
func clampPage(skip, limit int) (int, int) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return skip, limit
}
