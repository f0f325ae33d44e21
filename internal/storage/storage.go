package storage

import "tickrange/internal/model"

// Storage defines a sink for tick range records.
type Storage interface {
	PutTickRanges(records []model.TickRangeRecord) error
}
