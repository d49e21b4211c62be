package util

import "github.com/oklog/ulid/v2"

// NewID returns a ULID for audit rows. IDs sort lexically by creation time,
// which keeps the ClickHouse (created_at, id) ordering stable within one
// millisecond.
func NewID() string {
	return ulid.Make().String()
}
