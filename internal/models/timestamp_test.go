package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestamp_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want time.Time
	}{
		{
			name: "rfc3339 with zone",
			in:   `"2024-10-05T10:20:30+03:00"`,
			want: time.Date(2024, 10, 5, 7, 20, 30, 0, time.UTC),
		},
		{
			name: "naive with microseconds",
			in:   `"2024-10-05T10:20:30.123456"`,
			want: time.Date(2024, 10, 5, 10, 20, 30, 123456000, time.UTC),
		},
		{
			name: "naive with space separator",
			in:   `"2024-10-05 10:20:30"`,
			want: time.Date(2024, 10, 5, 10, 20, 30, 0, time.UTC),
		},
		{
			name: "null",
			in:   `null`,
			want: time.Time{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ts Timestamp
			require.NoError(t, json.Unmarshal([]byte(tt.in), &ts))
			assert.True(t, tt.want.Equal(ts.Time), "got %v, want %v", ts.Time, tt.want)
		})
	}
}

func TestTimestamp_UnmarshalJSON_Invalid(t *testing.T) {
	var ts Timestamp
	assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &ts))
}

func TestCandidate_DecodesBackendCard(t *testing.T) {
	payload := `{
		"id": "5f0c1a6e-1111-4c4b-9a55-2b0f7a4b9e10",
		"video_link": "https://cdn.example/video.mp4",
		"resume_link": "https://cdn.example/cv.pdf",
		"transcription": "hello",
		"motivation_letter": "hire me",
		"personality_models": [
			{"id": "a", "model": "OCEAN", "parameter": "Openness", "confidence": 0.8,
			 "created_at": "2024-10-05T10:20:30.5", "updated_at": "2024-10-05T10:20:30.5"}
		],
		"created_at": "2024-10-05T10:20:30",
		"updated_at": "2024-10-05T10:20:30"
	}`

	var c Candidate
	require.NoError(t, json.Unmarshal([]byte(payload), &c))

	require.Len(t, c.PersonalityModels, 1)
	assert.Equal(t, ModelOCEAN, c.PersonalityModels[0].Model)
	assert.Equal(t, 0.8, c.PersonalityModels[0].Confidence)
	assert.Equal(t, "hire me", c.MotivationLetter)
	assert.Equal(t, 2024, c.CreatedAt.Year())
}

func TestIsValidModel(t *testing.T) {
	for _, m := range ModelOptions() {
		assert.True(t, IsValidModel(m), m)
	}
	assert.False(t, IsValidModel("ocean"))
	assert.False(t, IsValidModel(""))
}
