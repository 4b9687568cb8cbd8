package models

// KVEntry backs the opaque string-keyed blob store. Settings and the session
// list are each persisted as one JSON value under a fixed key.
type KVEntry struct {
	Key   string `gorm:"primaryKey;size:255"`
	Value string `gorm:"type:text"`
}
