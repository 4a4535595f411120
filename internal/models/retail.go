package models

import "time"

// TransactionRecord представляет одну строку датасета Online Retail II.
// Записи иммутабельны: после загрузки датасета сервис их только читает.
type TransactionRecord struct {
	ID          int64     `json:"id" msgpack:"id"`
	InvoiceNo   string    `json:"invoice_no" msgpack:"invoice_no"`
	StockCode   string    `json:"stock_code" msgpack:"stock_code"`
	Description string    `json:"description" msgpack:"description"`
	Quantity    int       `json:"quantity" msgpack:"quantity"`         // отрицательное значение = возврат
	UnitPrice   float64   `json:"unit_price" msgpack:"unit_price"`     // всегда >= 0
	CustomerID  *int64    `json:"customer_id" msgpack:"customer_id"`   // nil для анонимных покупок
	Country     string    `json:"country" msgpack:"country"`
	InvoiceDate time.Time `json:"invoice_date" msgpack:"invoice_date"`
}
