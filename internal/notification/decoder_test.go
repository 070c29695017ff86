package notification

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"image_thumbnailer/entity"
)

func newTestDecoder() *Decoder {
	return NewDecoder("images/", "thumbnails/")
}

func TestDecode_SingleRecord(t *testing.T) {
	body := []byte(`{
		"Records": [{
			"eventTime": "2023-04-01T12:30:00Z",
			"s3": {
				"bucket": {"name": "media"},
				"object": {"key": "images/cat.jpg", "size": 52100}
			}
		}]
	}`)

	events, err := newTestDecoder().Decode(body)
	require.NoError(t, err)
	require.Len(t, events, 1)

	assert.Equal(t, "media", events[0].Bucket)
	assert.Equal(t, "images/cat.jpg", events[0].Key)
	assert.Equal(t, uint64(52100), events[0].SizeBytes)
	assert.Equal(t, time.Date(2023, 4, 1, 12, 30, 0, 0, time.UTC), events[0].EventTime)
}

func TestDecode_MultipleRecordsKeepOrder(t *testing.T) {
	body := []byte(`{
		"Records": [
			{"s3": {"bucket": {"name": "media"}, "object": {"key": "images/a.jpg", "size": 1}}},
			{"s3": {"bucket": {"name": "media"}, "object": {"key": "images/b.jpg", "size": 2}}},
			{"s3": {"bucket": {"name": "media"}, "object": {"key": "images/c.jpg", "size": 3}}}
		]
	}`)

	events, err := newTestDecoder().Decode(body)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "images/a.jpg", events[0].Key)
	assert.Equal(t, "images/b.jpg", events[1].Key)
	assert.Equal(t, "images/c.jpg", events[2].Key)
}

func TestDecode_URLEncodedKey(t *testing.T) {
	body := []byte(`{
		"Records": [{
			"s3": {"bucket": {"name": "media"}, "object": {"key": "images/my+holiday%2Bphoto.jpg", "size": 9}}
		}]
	}`)

	events, err := newTestDecoder().Decode(body)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "images/my holiday+photo.jpg", events[0].Key)
}

func TestDecode_FiltersForeignPrefixes(t *testing.T) {
	body := []byte(`{
		"Records": [
			{"s3": {"bucket": {"name": "media"}, "object": {"key": "documents/report.pdf", "size": 1}}},
			{"s3": {"bucket": {"name": "media"}, "object": {"key": "thumbnails/cat.jpg", "size": 2}}},
			{"s3": {"bucket": {"name": "media"}, "object": {"key": "images/dog.png", "size": 3}}}
		]
	}`)

	events, err := newTestDecoder().Decode(body)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "images/dog.png", events[0].Key)
}

func TestDecode_MalformedPayload(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"not json", `{{{`},
		{"no records field", `{"Message": "hello"}`},
		{"record without bucket", `{"Records": [{"s3": {"object": {"key": "images/a.jpg"}}}]}`},
		{"record without key", `{"Records": [{"s3": {"bucket": {"name": "media"}}}]}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := newTestDecoder().Decode([]byte(tc.body))
			require.Error(t, err)
			assert.ErrorIs(t, err, entity.ErrDecode)
			assert.False(t, entity.Retryable(err))
		})
	}
}

func TestDecode_EmptyRecords(t *testing.T) {
	events, err := newTestDecoder().Decode([]byte(`{"Records": []}`))
	require.NoError(t, err)
	assert.Empty(t, events)
}
