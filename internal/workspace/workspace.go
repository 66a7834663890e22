// Package workspace runs the user-facing operations against the backend: it
// resolves the caller's session, calls the API client and reports every
// outcome as a Result instead of swallowing failures.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"personality-bot/internal/api/personality"
	"personality-bot/internal/board"
	"personality-bot/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrInvalidInput     = errors.New("invalid input")
)

type API interface {
	Login(ctx context.Context, username, password string) (*personality.Token, error)
	Register(ctx context.Context, username, password string) (*personality.Registration, error)
	Me(ctx context.Context, token string) (*personality.Account, error)
	CreateCard(ctx context.Context, token string, upload models.CandidateUpload) (*models.Candidate, error)
	ListCards(ctx context.Context, token string, limit, offset int) ([]models.Candidate, error)
	GetCard(ctx context.Context, token, cardID string) (*models.Candidate, error)
	Advice(ctx context.Context, token, cardID string) (string, error)
	CreateVacancy(ctx context.Context, token string, vacancy models.NewVacancy) (*models.Vacancy, error)
	ListVacancies(ctx context.Context, token string, limit, offset int) ([]models.Vacancy, error)
	Status(ctx context.Context) (string, error)
}

// SessionStore is the durable token storage.
type SessionStore interface {
	SaveSession(ctx context.Context, session *models.Session) error
	GetSession(ctx context.Context, userID int64) (*models.Session, error)
	DeleteSession(ctx context.Context, userID int64) error
}

// SessionCache sits in front of SessionStore. Misses return nil, nil.
type SessionCache interface {
	SetSession(ctx context.Context, session *models.Session) error
	GetSession(ctx context.Context, userID int64) (*models.Session, error)
	DeleteSession(ctx context.Context, userID int64) error
}

type Options struct {
	CandidatesLimit int
	VacanciesLimit  int
}

type Service struct {
	api             API
	store           SessionStore
	cache           SessionCache
	logger          *zap.Logger
	candidatesLimit int
	vacanciesLimit  int
}

func New(api API, store SessionStore, cache SessionCache, logger *zap.Logger, opts Options) *Service {
	if opts.CandidatesLimit <= 0 {
		opts.CandidatesLimit = 10
	}
	if opts.VacanciesLimit <= 0 {
		opts.VacanciesLimit = 100
	}

	return &Service{
		api:             api,
		store:           store,
		cache:           cache,
		logger:          logger,
		candidatesLimit: opts.CandidatesLimit,
		vacanciesLimit:  opts.VacanciesLimit,
	}
}

// Identity is what the bot knows about a logged-in user.
type Identity struct {
	Username  string
	AccountID string
	ExpiresAt *time.Time
	Account   *personality.Account
}

func (s *Service) Login(ctx context.Context, userID int64, username, password string) Result[*models.Session] {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return failed[*models.Session](fmt.Errorf("%w: username and password are required", ErrInvalidInput))
	}

	token, err := s.api.Login(ctx, username, password)
	if err != nil {
		s.logger.Warn("login failed", zap.Int64("user_id", userID), zap.Error(err))
		return failed[*models.Session](err)
	}

	session, err := s.storeSession(ctx, userID, username, token.AccessToken)
	if err != nil {
		return failed[*models.Session](err)
	}

	return ok(session)
}

// Register creates the account. When the backend answers with a token the
// user is logged in right away; otherwise the result is Empty and the user
// has to log in.
func (s *Service) Register(ctx context.Context, userID int64, username, password string) Result[*models.Session] {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return failed[*models.Session](fmt.Errorf("%w: username and password are required", ErrInvalidInput))
	}

	reg, err := s.api.Register(ctx, username, password)
	if err != nil {
		s.logger.Warn("registration failed", zap.Int64("user_id", userID), zap.Error(err))
		return failed[*models.Session](err)
	}

	if reg.AccessToken == "" {
		return empty[*models.Session](nil)
	}

	session, err := s.storeSession(ctx, userID, username, reg.AccessToken)
	if err != nil {
		return failed[*models.Session](err)
	}

	return ok(session)
}

// Logout forgets the session. The value reports whether one existed.
func (s *Service) Logout(ctx context.Context, userID int64) Result[bool] {
	session, err := s.session(ctx, userID)
	if err != nil {
		return failed[bool](err)
	}
	if session == nil {
		return empty(false)
	}

	if err := s.store.DeleteSession(ctx, userID); err != nil {
		return failed[bool](err)
	}
	if err := s.cache.DeleteSession(ctx, userID); err != nil {
		s.logger.Warn("failed to drop cached session", zap.Int64("user_id", userID), zap.Error(err))
	}

	s.logger.Info("user logged out", zap.Int64("user_id", userID))
	return ok(true)
}

func (s *Service) IsAuthenticated(ctx context.Context, userID int64) bool {
	session, err := s.session(ctx, userID)
	return err == nil && session != nil
}

// Whoami decodes the stored token locally and asks the backend for the
// account. The signature is not checked here; the backend does that.
func (s *Service) Whoami(ctx context.Context, userID int64) Result[Identity] {
	session, err := s.requireSession(ctx, userID)
	if err != nil {
		return failed[Identity](err)
	}

	identity := Identity{Username: session.Username}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(session.AccessToken, claims); err != nil {
		s.logger.Debug("token is not a readable JWT", zap.Int64("user_id", userID), zap.Error(err))
	} else {
		identity.AccountID = accountID(claims)
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			t := exp.Time
			identity.ExpiresAt = &t
		}
	}

	account, err := s.api.Me(ctx, session.AccessToken)
	switch {
	case errors.Is(err, personality.ErrUnauthorized):
		return failed[Identity](err)
	case err != nil:
		s.logger.Warn("failed to fetch account", zap.Int64("user_id", userID), zap.Error(err))
	default:
		identity.Account = account
	}

	return ok(identity)
}

// UploadCandidate does not require a session; the token is sent when present.
func (s *Service) UploadCandidate(ctx context.Context, userID int64, upload models.CandidateUpload) Result[*models.Candidate] {
	if len(upload.Resume) == 0 || len(upload.Video) == 0 {
		return failed[*models.Candidate](fmt.Errorf("%w: resume and video are required", ErrInvalidInput))
	}

	session, err := s.session(ctx, userID)
	if err != nil {
		return failed[*models.Candidate](err)
	}

	card, err := s.api.CreateCard(ctx, tokenOf(session), upload)
	if err != nil {
		s.logger.Error("candidate upload failed", zap.Int64("user_id", userID), zap.Error(err))
		return failed[*models.Candidate](err)
	}

	return ok(card)
}

func (s *Service) ListCandidates(ctx context.Context, userID int64, limit, offset int) Result[[]models.Candidate] {
	session, err := s.requireSession(ctx, userID)
	if err != nil {
		return failed[[]models.Candidate](err)
	}

	cards, err := s.api.ListCards(ctx, session.AccessToken, limit, offset)
	if err != nil {
		s.logger.Error("failed to list candidates", zap.Int64("user_id", userID), zap.Error(err))
		return failed[[]models.Candidate](err)
	}

	return list(cards)
}

func (s *Service) GetCandidate(ctx context.Context, userID int64, cardID string) Result[*models.Candidate] {
	session, err := s.session(ctx, userID)
	if err != nil {
		return failed[*models.Candidate](err)
	}

	card, err := s.api.GetCard(ctx, tokenOf(session), cardID)
	if errors.Is(err, personality.ErrNotFound) {
		return empty[*models.Candidate](nil)
	}
	if err != nil {
		s.logger.Error("failed to get candidate",
			zap.Int64("user_id", userID),
			zap.String("card_id", cardID),
			zap.Error(err),
		)
		return failed[*models.Candidate](err)
	}

	return ok(card)
}

// MinAdviceScores is how many scores the backend needs to write advice.
const MinAdviceScores = 6

// Advice returns Empty without asking the backend when the card has too few
// scores, and when the backend has nothing to say.
func (s *Service) Advice(ctx context.Context, userID int64, card *models.Candidate) Result[string] {
	if card == nil || len(card.PersonalityModels) < MinAdviceScores {
		return empty[string]("")
	}

	session, err := s.session(ctx, userID)
	if err != nil {
		return failed[string](err)
	}

	advice, err := s.api.Advice(ctx, tokenOf(session), card.ID)
	switch {
	case errors.Is(err, personality.ErrBadRequest), errors.Is(err, personality.ErrNotFound):
		return empty[string]("")
	case err != nil:
		s.logger.Warn("failed to get advice",
			zap.Int64("user_id", userID),
			zap.String("card_id", card.ID),
			zap.Error(err),
		)
		return failed[string](err)
	case advice == "":
		return empty[string]("")
	}

	return ok(advice)
}

// CreateVacancy does not touch any loaded board; the vacancy shows up after a reload.
func (s *Service) CreateVacancy(ctx context.Context, userID int64, vacancy models.NewVacancy) Result[*models.Vacancy] {
	vacancy.Title = strings.TrimSpace(vacancy.Title)
	if vacancy.Title == "" {
		return failed[*models.Vacancy](fmt.Errorf("%w: title is required", ErrInvalidInput))
	}
	if vacancy.Salary < 0 {
		return failed[*models.Vacancy](fmt.Errorf("%w: salary must not be negative", ErrInvalidInput))
	}

	session, err := s.requireSession(ctx, userID)
	if err != nil {
		return failed[*models.Vacancy](err)
	}

	created, err := s.api.CreateVacancy(ctx, session.AccessToken, vacancy)
	if err != nil {
		s.logger.Error("failed to create vacancy", zap.Int64("user_id", userID), zap.Error(err))
		return failed[*models.Vacancy](err)
	}

	return ok(created)
}

func (s *Service) ListVacancies(ctx context.Context, userID int64, limit, offset int) Result[[]models.Vacancy] {
	session, err := s.requireSession(ctx, userID)
	if err != nil {
		return failed[[]models.Vacancy](err)
	}

	vacancies, err := s.api.ListVacancies(ctx, session.AccessToken, limit, offset)
	if err != nil {
		s.logger.Error("failed to list vacancies", zap.Int64("user_id", userID), zap.Error(err))
		return failed[[]models.Vacancy](err)
	}

	return list(vacancies)
}

// LoadBoard fetches candidates and vacancies concurrently and fails if either
// call fails. An Empty result still carries a loaded board.
func (s *Service) LoadBoard(ctx context.Context, userID int64) Result[board.State] {
	session, err := s.requireSession(ctx, userID)
	if err != nil {
		return failed[board.State](err)
	}

	var (
		cards     []models.Candidate
		vacancies []models.Vacancy
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		cards, err = s.api.ListCards(gctx, session.AccessToken, s.candidatesLimit, 0)
		return err
	})
	g.Go(func() error {
		var err error
		vacancies, err = s.api.ListVacancies(gctx, session.AccessToken, s.vacanciesLimit, 0)
		return err
	})

	if err := g.Wait(); err != nil {
		s.logger.Error("failed to load board", zap.Int64("user_id", userID), zap.Error(err))
		return failed[board.State](err)
	}

	state := board.Loaded(cards, vacancies)

	s.logger.Debug("board loaded",
		zap.Int64("user_id", userID),
		zap.Int("candidates", len(cards)),
		zap.Int("vacancies", len(vacancies)),
	)

	if len(cards) == 0 && len(vacancies) == 0 {
		return empty(state)
	}
	return ok(state)
}

func (s *Service) Health(ctx context.Context) Result[string] {
	status, err := s.api.Status(ctx)
	if err != nil {
		s.logger.Warn("backend health check failed", zap.Error(err))
		return failed[string](err)
	}
	return ok(status)
}

// Session returns the user's session, or nil when logged out.
func (s *Service) Session(ctx context.Context, userID int64) (*models.Session, error) {
	return s.session(ctx, userID)
}

func (s *Service) session(ctx context.Context, userID int64) (*models.Session, error) {
	cached, err := s.cache.GetSession(ctx, userID)
	if err != nil {
		s.logger.Warn("session cache unavailable", zap.Int64("user_id", userID), zap.Error(err))
	}
	if cached != nil {
		return cached, nil
	}

	session, err := s.store.GetSession(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if session == nil {
		return nil, nil
	}

	if err := s.cache.SetSession(ctx, session); err != nil {
		s.logger.Warn("failed to cache session", zap.Int64("user_id", userID), zap.Error(err))
	}

	return session, nil
}

func (s *Service) requireSession(ctx context.Context, userID int64) (*models.Session, error) {
	session, err := s.session(ctx, userID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrNotAuthenticated
	}
	return session, nil
}

func (s *Service) storeSession(ctx context.Context, userID int64, username, token string) (*models.Session, error) {
	session := &models.Session{
		UserID:      userID,
		AccessToken: token,
		Username:    username,
		CreatedAt:   time.Now(),
	}

	if err := s.store.SaveSession(ctx, session); err != nil {
		s.logger.Error("failed to save session", zap.Int64("user_id", userID), zap.Error(err))
		return nil, err
	}
	if err := s.cache.SetSession(ctx, session); err != nil {
		s.logger.Warn("failed to cache session", zap.Int64("user_id", userID), zap.Error(err))
	}

	s.logger.Info("user logged in",
		zap.Int64("user_id", userID),
		zap.String("username", username),
	)

	return session, nil
}

// accountID reads the id the backend puts under the "user" claim, falling back
// to the standard subject.
func accountID(claims jwt.MapClaims) string {
	if user, ok := claims["user"].(map[string]interface{}); ok {
		switch id := user["id"].(type) {
		case string:
			return id
		case float64:
			return strconv.FormatFloat(id, 'f', -1, 64)
		}
	}
	sub, _ := claims.GetSubject()
	return sub
}

func tokenOf(session *models.Session) string {
	if session == nil {
		return ""
	}
	return session.AccessToken
}
