package cache

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/iudanet/retailapi/internal/models"
)

// Кешируемые значения кодируются msgpack: типизированный декодер со схемой
// из Go-структуры, никакого исполнения сохраненного текста.

// EncodeRecords serializes a result set for caching
func EncodeRecords(records []*models.TransactionRecord) ([]byte, error) {
	data, err := msgpack.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("failed to encode records: %w", err)
	}
	return data, nil
}

// DecodeRecords deserializes a cached result set
func DecodeRecords(data []byte) ([]*models.TransactionRecord, error) {
	var records []*models.TransactionRecord
	if err := msgpack.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to decode records: %w", err)
	}
	if records == nil {
		records = []*models.TransactionRecord{}
	}
	return records, nil
}

// EncodeRecord serializes a single record for caching
func EncodeRecord(record *models.TransactionRecord) ([]byte, error) {
	data, err := msgpack.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("failed to encode record: %w", err)
	}
	return data, nil
}

// DecodeRecord deserializes a cached record
func DecodeRecord(data []byte) (*models.TransactionRecord, error) {
	record := &models.TransactionRecord{}
	if err := msgpack.Unmarshal(data, record); err != nil {
		return nil, fmt.Errorf("failed to decode record: %w", err)
	}
	return record, nil
}
