package utils

import (
	"mime/multipart"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewULIDFromTimestampIsOrdered(t *testing.T) {
	u := New()
	now := time.Now()

	first, err := u.NewULIDFromTimestamp(now)
	require.NoError(t, err)
	second, err := u.NewULIDFromTimestamp(now)
	require.NoError(t, err)

	assert.Len(t, first, 26)
	assert.Less(t, first, second)
}

func TestValidateAudioFile(t *testing.T) {
	u := New()

	tests := []struct {
		name string
		file *multipart.FileHeader
		want error
	}{
		{name: "missing", file: nil, want: ErrNoFile},
		{name: "too large", file: &multipart.FileHeader{Filename: "a.mp3", Size: 11 * 1024 * 1024}, want: ErrFileTooLarge},
		{name: "wrong extension", file: &multipart.FileHeader{Filename: "a.png", Size: 10}, want: ErrUnsupportedFile},
		{name: "upper case extension", file: &multipart.FileHeader{Filename: "a.WAV", Size: 10}, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := u.ValidateAudioFile(tt.file)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
