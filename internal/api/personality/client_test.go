package personality

import (
	"context"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"personality-bot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const cardJSON = `{
	"id": "0b7f2a6e-0d44-4c4e-9d0a-6a2f1f3f6a10",
	"personality_models": [
		{"id": "m1", "model": "OCEAN", "parameter": "Openness", "confidence": 0.8,
		 "created_at": "2024-05-01T10:00:00", "updated_at": "2024-05-01T10:00:00"}
	],
	"video_link": "v.mp4",
	"resume_link": "r.pdf",
	"motivation_letter": "hi",
	"created_at": "2024-05-01T10:00:00.123456",
	"updated_at": "2024-05-01T10:00:00.123456"
}`

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c := New(srv.URL+"/api/v1/", 2*time.Second, zap.NewNop())
	c.retryBackoff = time.Millisecond
	return c
}

func TestLogin_SendsFormAndReturnsToken(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/auth/token", r.URL.Path)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		assert.Empty(t, r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "hr", r.PostForm.Get("username"))
		assert.Equal(t, "secret", r.PostForm.Get("password"))

		_, _ = io.WriteString(w, `{"access_token":"tok","token_type":"bearer"}`)
	})

	token, err := c.Login(context.Background(), "hr", "secret")
	require.NoError(t, err)
	assert.Equal(t, "tok", token.AccessToken)
	assert.Equal(t, "bearer", token.TokenType)
}

func TestLogin_Unauthorized(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"detail":"Incorrect username or password"}`)
	})

	_, err := c.Login(context.Background(), "hr", "bad")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "Incorrect username or password", apiErr.Detail)
}

func TestRegister_AcceptsAccountWithoutToken(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/auth/register", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id":"u1","username":"hr"}`)
	})

	reg, err := c.Register(context.Background(), "hr", "secret")
	require.NoError(t, err)
	assert.Empty(t, reg.AccessToken)
	assert.Equal(t, "hr", reg.Username)
}

func TestListCards_SendsBearerAndPaging(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v1/card/", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		assert.Equal(t, "0", r.URL.Query().Get("offset"))
		_, _ = io.WriteString(w, "["+cardJSON+"]")
	})

	cards, err := c.ListCards(context.Background(), "tok", 10, 0)
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, "0b7f2a6e-0d44-4c4e-9d0a-6a2f1f3f6a10", cards[0].ID)
	require.Len(t, cards[0].PersonalityModels, 1)
	assert.Equal(t, models.ModelOCEAN, cards[0].PersonalityModels[0].Model)
	assert.InDelta(t, 0.8, cards[0].PersonalityModels[0].Confidence, 1e-9)
}

func TestGet_RetriesServerErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = io.WriteString(w, `[]`)
	})

	vacancies, err := c.ListVacancies(context.Background(), "tok", 100, 0)
	require.NoError(t, err)
	assert.Empty(t, vacancies)
	assert.Equal(t, int32(3), calls.Load())
}

func TestGet_GivesUpAfterMaxAttempts(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := c.ListVacancies(context.Background(), "tok", 100, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, int32(defaultMaxAttempts), calls.Load())
}

func TestPost_IsNotRetried(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.CreateVacancy(context.Background(), "tok", models.NewVacancy{Title: "Go dev"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, int32(1), calls.Load())
}

func TestErrorMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		body   string
		want   error
		detail string
	}{
		{"forbidden", http.StatusForbidden, `{"detail":"nope"}`, ErrUnauthorized, "nope"},
		{"not found", http.StatusNotFound, `{"detail":"Card not found"}`, ErrNotFound, "Card not found"},
		{
			"validation", http.StatusUnprocessableEntity,
			`{"detail":[{"loc":["body","title"],"msg":"field required"},{"loc":["body","salary"],"msg":"not an int"}]}`,
			ErrBadRequest, "field required; not an int",
		},
		{"plain text", http.StatusBadRequest, "broken", ErrBadRequest, "broken"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			_, err := c.CreateVacancy(context.Background(), "tok", models.NewVacancy{})
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.detail, apiErr.Detail)
		})
	}
}

func TestCreateCard_SendsTypedMultipart(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/card/", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		mediaType, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		require.NoError(t, err)
		assert.Equal(t, "multipart/form-data", mediaType)

		parts := map[string]string{}
		types := map[string]string{}
		mr := multipart.NewReader(r.Body, params["boundary"])
		for {
			p, err := mr.NextPart()
			if err == io.EOF {
				break
			}
			require.NoError(t, err)
			data, err := io.ReadAll(p)
			require.NoError(t, err)
			parts[p.FormName()] = string(data)
			types[p.FormName()] = p.Header.Get("Content-Type")
		}

		assert.Equal(t, "%PDF", parts["pdf_file"])
		assert.Equal(t, ContentTypePDF, types["pdf_file"])
		assert.Equal(t, "mp4", parts["video_file"])
		assert.Equal(t, ContentTypeMP4, types["video_file"])
		assert.Equal(t, "hire me", parts["motivation_letter"])

		_, _ = io.WriteString(w, cardJSON)
	})

	card, err := c.CreateCard(context.Background(), "tok", models.CandidateUpload{
		ResumeName:       "cv.pdf",
		Resume:           []byte("%PDF"),
		Video:            []byte("mp4"),
		MotivationLetter: "hire me",
	})
	require.NoError(t, err)
	assert.Equal(t, "hi", card.MotivationLetter)
	assert.Equal(t, 2024, card.CreatedAt.Year())
}

func TestGetCard_RejectsMalformedID(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	_, err := c.GetCard(context.Background(), "tok", "../vacancy")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBadRequest)
}

func TestAdvice(t *testing.T) {
	t.Parallel()

	const id = "0b7f2a6e-0d44-4c4e-9d0a-6a2f1f3f6a10"
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v1/cardadvice/"+id, r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, `" Работайте в команде. "`)
	})

	advice, err := c.Advice(context.Background(), "tok", id)
	require.NoError(t, err)
	assert.Equal(t, "Работайте в команде.", advice)
}

func TestAdvice_TooFewScores(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"detail": "there is less than 6 parameters"}`)
	})

	_, err := c.Advice(context.Background(), "tok", "0b7f2a6e-0d44-4c4e-9d0a-6a2f1f3f6a10")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBadRequest)
}

func TestStatus(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/metric/status", r.URL.Path)
		_, _ = io.WriteString(w, `"UP"`)
	})

	status, err := c.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "UP", status)
}

func TestDoRequest_ContextCancelStopsRetries(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	c.retryBackoff = time.Hour

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.ListCards(ctx, "tok", 10, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
