package notification

import (
	"encoding/json"
	"net/url"
	"time"

	"image_thumbnailer/entity"
)

// Encode renders events in the wire format Decode accepts. The ingest API
// uses it to publish notifications shaped exactly like the ones a storage
// platform emits natively.
func Encode(events []entity.UploadEvent) ([]byte, error) {
	payload := storageEvent{Records: make([]storageRecord, 0, len(events))}

	for _, e := range events {
		var record storageRecord
		record.EventTime = e.EventTime.UTC().Format(time.RFC3339)
		record.S3.Bucket.Name = e.Bucket
		record.S3.Object.Key = url.QueryEscape(e.Key)
		record.S3.Object.Size = e.SizeBytes
		payload.Records = append(payload.Records, record)
	}

	return json.Marshal(payload)
}
