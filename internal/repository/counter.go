package repository

import (
	"fmt"

	"gorm.io/gorm"
)

// nextCounter atomically increments and returns the yearly counter for the
// given scope ("order:2026", "invoice:2026"). Must run inside the caller's
// transaction so a failed document never consumes a number visible to others.
func nextCounter(tx *gorm.DB, scope string) (int64, error) {
	var value int64
	err := tx.Raw(`
		INSERT INTO document_counters (scope, value) VALUES (?, 1)
		ON CONFLICT (scope) DO UPDATE SET value = document_counters.value + 1
		RETURNING value`, scope).Scan(&value).Error
	return value, err
}

// FormatDocumentNumber renders numbers like CMD-2026-0042.
func FormatDocumentNumber(prefix string, year int, seq int64) string {
	return fmt.Sprintf("%s-%d-%04d", prefix, year, seq)
}

func counterScope(kind string, year int) string {
	return fmt.Sprintf("%s:%d", kind, year)
}
