package notification

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"image_thumbnailer/entity"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	in := []entity.UploadEvent{
		{
			Bucket:    "media",
			Key:       "images/summer trip/beach.jpg",
			SizeBytes: 1234,
			EventTime: time.Date(2023, 6, 15, 9, 0, 0, 0, time.UTC),
		},
		{
			Bucket:    "media",
			Key:       "images/dog.png",
			SizeBytes: 42,
			EventTime: time.Date(2023, 6, 15, 9, 1, 0, 0, time.UTC),
		},
	}

	body, err := Encode(in)
	require.NoError(t, err)

	out, err := NewDecoder("images/", "thumbnails/").Decode(body)
	require.NoError(t, err)

	assert.Equal(t, in, out)
}
