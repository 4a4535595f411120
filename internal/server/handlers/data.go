package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/iudanet/retailapi/internal/models"
	"github.com/iudanet/retailapi/internal/server/query"
	"github.com/iudanet/retailapi/internal/server/storage"
	"github.com/iudanet/retailapi/internal/validation"
	"github.com/iudanet/retailapi/pkg/api"
)

// QueryService определяет интерфейс сервиса запросов к датасету
type QueryService interface {
	GetPage(ctx context.Context, skip, limit int) ([]*models.TransactionRecord, error)
	GetByID(ctx context.Context, id int64) (*models.TransactionRecord, error)
	Filter(ctx context.Context, filter storage.RecordFilter, skip, limit int) ([]*models.TransactionRecord, error)
}

// DataHandler обрабатывает запросы к данным транзакций
type DataHandler struct {
	logger  *slog.Logger
	queries QueryService
}

// NewDataHandler создает новый handler для данных
func NewDataHandler(logger *slog.Logger, queries QueryService) *DataHandler {
	return &DataHandler{
		logger:  logger,
		queries: queries,
	}
}

// GetData обрабатывает GET /data?skip=&limit=
// Страница записей датасета
func (h *DataHandler) GetData(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	skip, err := validation.ParsePageParam("skip", r.URL.Query().Get("skip"), 0)
	if err != nil {
		h.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}
	limit, err := validation.ParsePageParam("limit", r.URL.Query().Get("limit"), query.DefaultLimit)
	if err != nil {
		h.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	records, err := h.queries.GetPage(ctx, skip, limit)
	if err != nil {
		h.sendQueryError(ctx, w, err)
		return
	}

	h.sendJSON(w, records, http.StatusOK)
}

// GetDataByID обрабатывает GET /data/{id}
// Одна запись по id, 404 если такой нет
func (h *DataHandler) GetDataByID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Извлекаем id из path parameter (Go 1.22+)
	id, err := validation.ParseIDParam(r.PathValue("id"))
	if err != nil {
		h.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	record, err := h.queries.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrRecordNotFound) {
			h.sendError(w, "record not found", http.StatusNotFound)
			return
		}
		h.sendQueryError(ctx, w, err)
		return
	}

	h.sendJSON(w, record, http.StatusOK)
}

// FilterData обрабатывает GET /data/filter
// Конъюнкция заданных фильтров; пустой результат — пустой список, не ошибка
func (h *DataHandler) FilterData(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	params := r.URL.Query()

	filter, err := parseFilter(params.Get("start_date"), params.Get("end_date"),
		params.Get("country"), params.Get("min_price"), params.Get("max_price"))
	if err != nil {
		h.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	skip, err := validation.ParsePageParam("skip", params.Get("skip"), 0)
	if err != nil {
		h.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}
	limit, err := validation.ParsePageParam("limit", params.Get("limit"), query.DefaultLimit)
	if err != nil {
		h.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	records, err := h.queries.Filter(ctx, filter, skip, limit)
	if err != nil {
		h.sendQueryError(ctx, w, err)
		return
	}

	h.sendJSON(w, records, http.StatusOK)
}

// parseFilter собирает RecordFilter из query параметров.
// Пустой параметр означает "не задан" и остается nil в фильтре.
func parseFilter(startDate, endDate, country, minPrice, maxPrice string) (storage.RecordFilter, error) {
	var filter storage.RecordFilter
	var err error

	if filter.StartDate, err = validation.ParseDateParam("start_date", startDate); err != nil {
		return filter, err
	}
	if filter.EndDate, err = validation.ParseDateParam("end_date", endDate); err != nil {
		return filter, err
	}
	if country != "" {
		filter.Country = &country
	}
	if filter.MinPrice, err = validation.ParsePriceParam("min_price", minPrice); err != nil {
		return filter, err
	}
	if filter.MaxPrice, err = validation.ParsePriceParam("max_price", maxPrice); err != nil {
		return filter, err
	}

	return filter, nil
}

// sendQueryError превращает ошибку сервиса запросов в HTTP ответ.
// Недоступность store отдается как retryable 503 без внутренних деталей.
func (h *DataHandler) sendQueryError(ctx context.Context, w http.ResponseWriter, err error) {
	if errors.Is(err, query.ErrStoreUnavailable) {
		h.logger.ErrorContext(ctx, "record store unavailable", slog.Any("error", err))
		h.sendError(w, "service temporarily unavailable, please retry", http.StatusServiceUnavailable)
		return
	}

	h.logger.ErrorContext(ctx, "query failed", slog.Any("error", err))
	h.sendError(w, "internal server error", http.StatusInternalServerError)
}

// sendJSON отправляет JSON ответ
func (h *DataHandler) sendJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON response", slog.Any("error", err))
	}
}

// sendError отправляет JSON ответ с ошибкой
func (h *DataHandler) sendError(w http.ResponseWriter, message string, statusCode int) {
	resp := api.ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
	}
	h.sendJSON(w, resp, statusCode)
}
