package notification

import (
	"encoding/json"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"

	"image_thumbnailer/entity"
)

// storageEvent mirrors the S3-style event notification payload.
// http://docs.aws.amazon.com/AmazonS3/latest/dev/notification-content-structure.html
type storageEvent struct {
	Records []storageRecord `json:"Records"`
}

type storageRecord struct {
	EventTime string `json:"eventTime"`
	S3        struct {
		Bucket struct {
			Name string `json:"name"`
		} `json:"bucket"`
		Object struct {
			Key  string `json:"key"`
			Size uint64 `json:"size"`
		} `json:"object"`
	} `json:"s3"`
}

// Decoder turns raw queue message bodies into normalized upload events.
type Decoder struct {
	sourcePrefix      string
	destinationPrefix string
}

func NewDecoder(sourcePrefix, destinationPrefix string) *Decoder {
	return &Decoder{
		sourcePrefix:      sourcePrefix,
		destinationPrefix: destinationPrefix,
	}
}

// Decode parses one message body into its upload events, in record order.
// Events outside the source prefix, or already under the destination prefix,
// are dropped silently so generated thumbnails never re-trigger processing.
// A malformed body fails with entity.ErrDecode.
func (d *Decoder) Decode(body []byte) ([]entity.UploadEvent, error) {
	var event storageEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, errors.Wrap(entity.ErrDecode, err.Error())
	}

	if event.Records == nil {
		return nil, errors.Wrap(entity.ErrDecode, "payload has no Records field")
	}

	events := make([]entity.UploadEvent, 0, len(event.Records))

	for _, record := range event.Records {
		if record.S3.Bucket.Name == "" {
			return nil, errors.Wrap(entity.ErrDecode, "record has no bucket name")
		}
		if record.S3.Object.Key == "" {
			return nil, errors.Wrap(entity.ErrDecode, "record has no object key")
		}

		// Object keys arrive URL-encoded, with spaces as '+'.
		key, err := url.QueryUnescape(record.S3.Object.Key)
		if err != nil {
			return nil, errors.Wrap(entity.ErrDecode, err.Error())
		}

		if !d.wanted(key) {
			continue
		}

		events = append(events, entity.UploadEvent{
			Bucket:    record.S3.Bucket.Name,
			Key:       key,
			SizeBytes: record.S3.Object.Size,
			EventTime: parseEventTime(record.EventTime),
		})
	}

	return events, nil
}

func (d *Decoder) wanted(key string) bool {
	if !strings.HasPrefix(key, d.sourcePrefix) {
		return false
	}
	if d.destinationPrefix != "" && strings.HasPrefix(key, d.destinationPrefix) {
		return false
	}
	return true
}

// parseEventTime is lenient: the pipeline only records the timestamp, it
// never branches on it.
func parseEventTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
