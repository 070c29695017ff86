package entity

import "time"

// UploadEvent is a single normalized storage-upload notification.
// One queue message may carry several of them.
type UploadEvent struct {
	Bucket    string    `json:"bucket"`
	Key       string    `json:"key"`
	SizeBytes uint64    `json:"size_bytes"`
	EventTime time.Time `json:"event_time"`
}
