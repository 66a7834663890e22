package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"personality-bot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

type sentMessage struct {
	to   tele.Recipient
	text string
}

type fakeSender struct {
	sent []sentMessage
	err  error
}

func (f *fakeSender) Send(to tele.Recipient, what interface{}, _ ...interface{}) (*tele.Message, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, sentMessage{to: to, text: what.(string)})
	return &tele.Message{}, nil
}

type fakeStore struct {
	sessions  []models.Session
	seen      map[int64]map[string]time.Time
	lastCheck map[int64]bool
}

func newFakeStore(sessions ...models.Session) *fakeStore {
	return &fakeStore{
		sessions:  sessions,
		seen:      map[int64]map[string]time.Time{},
		lastCheck: map[int64]bool{},
	}
}

func (f *fakeStore) hasSeen(userID int64, id string) bool {
	_, ok := f.seen[userID][id]
	return ok
}

// seenAt backdates recorded vacancies as if they were marked at the given time.
func (f *fakeStore) seenAt(userID int64, at time.Time, ids ...string) {
	if f.seen[userID] == nil {
		f.seen[userID] = map[string]time.Time{}
	}
	for _, id := range ids {
		f.seen[userID][id] = at
	}
}

func (f *fakeStore) GetSessionsToNotify(context.Context) ([]models.Session, error) {
	return f.sessions, nil
}

func (f *fakeStore) HasSeenVacancies(_ context.Context, userID int64) (bool, error) {
	return len(f.seen[userID]) > 0, nil
}

func (f *fakeStore) GetUnseenVacancies(_ context.Context, userID int64, ids []string) ([]string, error) {
	var out []string
	for _, id := range ids {
		if !f.hasSeen(userID, id) {
			out = append(out, id)
		}
	}
	return out, nil
}

func (f *fakeStore) MarkVacanciesAsSeen(_ context.Context, userID int64, ids []string) error {
	f.seenAt(userID, time.Now(), ids...)
	return nil
}

func (f *fakeStore) UpdateLastCheck(_ context.Context, userID int64) error {
	f.lastCheck[userID] = true
	return nil
}

func (f *fakeStore) CleanOldSeenVacancies(_ context.Context, daysOld int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -daysOld)
	var removed int64
	for _, ids := range f.seen {
		for id, at := range ids {
			if at.Before(cutoff) {
				delete(ids, id)
				removed++
			}
		}
	}
	return removed, nil
}

type fakeAPI struct {
	statusErr error
	vacancies []models.Vacancy
	tokens    []string
}

func (f *fakeAPI) Status(context.Context) (string, error) {
	if f.statusErr != nil {
		return "", f.statusErr
	}
	return "UP", nil
}

func (f *fakeAPI) ListVacancies(_ context.Context, token string, _, _ int) ([]models.Vacancy, error) {
	f.tokens = append(f.tokens, token)
	return f.vacancies, nil
}

func newChecker(sender *fakeSender, store *fakeStore, api *fakeAPI) *VacancyChecker {
	vc := New(sender, store, api, "@every 1m", 100, zap.NewNop())
	vc.pause = 0
	return vc
}

func TestCheckAll_FirstRunRecordsBaseline(t *testing.T) {
	sender := &fakeSender{}
	store := newFakeStore(models.Session{UserID: 1, AccessToken: "tok"})
	api := &fakeAPI{vacancies: []models.Vacancy{{ID: "v1", Title: "Go"}, {ID: "v2", Title: "QA"}}}

	newChecker(sender, store, api).CheckAll(context.Background())

	assert.Empty(t, sender.sent)
	assert.Len(t, store.seen[1], 2)
	assert.True(t, store.lastCheck[1])
	assert.Equal(t, []string{"tok"}, api.tokens)
}

func TestCheckAll_NotifiesAboutNewVacancies(t *testing.T) {
	sender := &fakeSender{}
	store := newFakeStore(models.Session{UserID: 1, AccessToken: "tok"})
	require.NoError(t, store.MarkVacanciesAsSeen(context.Background(), 1, []string{"v1"}))

	api := &fakeAPI{vacancies: []models.Vacancy{
		{ID: "v1", Title: "Go"},
		{ID: "v2", Title: "Data scientist", Salary: 200000},
	}}

	vc := newChecker(sender, store, api)
	vc.CheckAll(context.Background())

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "1", sender.sent[0].to.Recipient())
	assert.Contains(t, sender.sent[0].text, "Data scientist")
	assert.NotContains(t, sender.sent[0].text, "*Go*")
	assert.True(t, store.hasSeen(1, "v2"))

	// nothing new on the next run
	vc.CheckAll(context.Background())
	assert.Len(t, sender.sent, 1)
}

func TestCheckAll_BackendDown(t *testing.T) {
	sender := &fakeSender{}
	store := newFakeStore(models.Session{UserID: 1, AccessToken: "tok"})
	api := &fakeAPI{statusErr: errors.New("connection refused")}

	newChecker(sender, store, api).CheckAll(context.Background())

	assert.Empty(t, api.tokens)
	assert.False(t, store.lastCheck[1])
}

func TestCheckAll_SendFailureKeepsVacanciesUnseen(t *testing.T) {
	sender := &fakeSender{err: errors.New("bot was blocked by the user")}
	store := newFakeStore(models.Session{UserID: 1, AccessToken: "tok"})
	require.NoError(t, store.MarkVacanciesAsSeen(context.Background(), 1, []string{"v1"}))
	api := &fakeAPI{vacancies: []models.Vacancy{{ID: "v1"}, {ID: "v2"}}}

	newChecker(sender, store, api).CheckAll(context.Background())

	assert.False(t, store.hasSeen(1, "v2"))
	assert.False(t, store.lastCheck[1])
}

func TestCheckAll_StillListedVacanciesSurviveCleanup(t *testing.T) {
	sender := &fakeSender{}
	store := newFakeStore(models.Session{UserID: 1, AccessToken: "tok"})
	store.seenAt(1, time.Now().AddDate(0, 0, -seenRetentionDays-1), "v1", "v2")

	api := &fakeAPI{vacancies: []models.Vacancy{{ID: "v1", Title: "OldGo"}, {ID: "v2", Title: "OldQA"}}}
	vc := newChecker(sender, store, api)

	vc.CheckAll(context.Background())
	assert.Empty(t, sender.sent)

	vc.cleanup(context.Background())
	assert.True(t, store.hasSeen(1, "v1"))
	assert.True(t, store.hasSeen(1, "v2"))

	vc.CheckAll(context.Background())
	assert.Empty(t, sender.sent)

	api.vacancies = append(api.vacancies, models.Vacancy{ID: "v3", Title: "NewGo"})
	vc.CheckAll(context.Background())
	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0].text, "NewGo")
	assert.NotContains(t, sender.sent[0].text, "OldGo")
}

func TestCheckAll_DelistedVacanciesAgeOut(t *testing.T) {
	sender := &fakeSender{}
	store := newFakeStore(models.Session{UserID: 1, AccessToken: "tok"})
	store.seenAt(1, time.Now().AddDate(0, 0, -seenRetentionDays-1), "gone")

	api := &fakeAPI{vacancies: []models.Vacancy{{ID: "v1", Title: "Go"}}}
	vc := newChecker(sender, store, api)
	store.seenAt(1, time.Now(), "v1")

	vc.CheckAll(context.Background())
	vc.cleanup(context.Background())

	assert.False(t, store.hasSeen(1, "gone"))
	assert.True(t, store.hasSeen(1, "v1"))
	assert.Empty(t, sender.sent)
}

func TestPickVacancies(t *testing.T) {
	list := []models.Vacancy{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	got := pickVacancies(list, []string{"c", "a"})
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "c", got[1].ID)
}

func TestStart_InvalidSchedule(t *testing.T) {
	vc := New(&fakeSender{}, newFakeStore(), &fakeAPI{}, "not a schedule", 10, zap.NewNop())
	assert.Error(t, vc.Start(context.Background()))
}

func TestStart_StopsWithContext(t *testing.T) {
	vc := newChecker(&fakeSender{}, newFakeStore(), &fakeAPI{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- vc.Start(ctx) }()

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("checker did not stop")
	}
}
