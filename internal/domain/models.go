// Package domain contains the core domain models for the lead-harvester
// snapshot lifecycle.
package domain

import (
	"encoding/json"
	"time"
)

// Snapshot is one unit of submitted work: a batch of search queries accepted
// by the collection service under an opaque identifier. A snapshot is never
// deleted; Processed flips to true only once its response payload is durably
// stored (or was already stored by an earlier run).
type Snapshot struct {
	SnapshotID string    `db:"snapshot_id" json:"snapshot_id"`
	Queries    []string  `db:"-"           json:"queries"`
	Processed  bool      `db:"processed"   json:"processed"`
	CreatedAt  time.Time `db:"created_at"  json:"created_at"`
}

// Response is the raw payload retrieved for one snapshot, persisted exactly
// once. Extracted flips to true only after the extraction engine has scanned
// the payload for email addresses.
type Response struct {
	SnapshotID string          `db:"snapshot_id" json:"snapshot_id"`
	Payload    json.RawMessage `db:"payload"     json:"payload"`
	Extracted  bool            `db:"extracted"   json:"extracted"`
	CreatedAt  time.Time       `db:"created_at"  json:"created_at"`
}

// ExtractedEmail is a single harvested email address. Identity is the
// address string itself; rows are never updated or deleted.
type ExtractedEmail struct {
	Email     string    `db:"email"      json:"email"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
