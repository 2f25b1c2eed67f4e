package session

import (
	"context"
	"fmt"

	"SentinelConsole/internal/domain/models"
	domrepo "SentinelConsole/internal/domain/repository"
	"SentinelConsole/internal/service/adminapi"
	applogger "SentinelConsole/pkg/logger"

	"github.com/benbjohnson/clock"
)

// Demo credentials grant a session without contacting the backend.
const (
	DemoUsername    = "admin@sentinel.com"
	DemoPassword    = "admin123"
	DemoAdminID     = "demo-admin"
	DemoTokenPrefix = "demo-token-"
)

// Poster is the slice of the backend client the store needs.
type Poster interface {
	Post(ctx context.Context, path string, body, dest interface{}) error
}

type loginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
	User  *struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	} `json:"user"`
}

// Store is the session store of the console. It implements domain.repository.SessionStore.
type Store struct {
	storage *Storage
	api     Poster
	clock   clock.Clock
	metrics domrepo.Metrics
	log     *applogger.Logger
}

func NewStore(storage *Storage, api Poster, clk clock.Clock, metrics domrepo.Metrics, log *applogger.Logger) *Store {
	if clk == nil {
		clk = clock.New()
	}
	if log == nil {
		log = applogger.Nop()
	}
	return &Store{storage: storage, api: api, clock: clk, metrics: metrics, log: log}
}

// Login signs in with the demo pair locally, or through the backend otherwise.
// It never returns an error; failures are logged and reported as false.
func (s *Store) Login(ctx context.Context, username, password string) bool {
	if username == DemoUsername && password == DemoPassword {
		sess := models.AdminSession{
			Username: DemoUsername,
			AdminID:  DemoAdminID,
			Token:    fmt.Sprintf("%s%d", DemoTokenPrefix, s.clock.Now().UnixMilli()),
		}
		s.save(ctx, sess)
		s.record("login_demo")
		s.log.Info("session: demo login", applogger.String("username", sess.Username))
		return true
	}

	var resp loginResponse
	if err := s.api.Post(ctx, adminapi.PathLogin, loginBody{Email: username, Password: password}, &resp); err != nil {
		s.record("login_failed")
		s.log.Warn("session: login failed", applogger.String("username", username), applogger.Error(err))
		return false
	}
	if resp.Token == "" {
		s.record("login_failed")
		s.log.Warn("session: login response carried no token", applogger.String("username", username))
		return false
	}

	identity := username
	if resp.User != nil && resp.User.Email != "" {
		identity = resp.User.Email
	}
	sess := models.AdminSession{
		Username: identity,
		AdminID:  identity,
		Token:    resp.Token,
	}
	s.save(ctx, sess)
	s.record("login")
	s.log.Info("session: login", applogger.String("username", identity))
	return true
}

// Logout notifies the backend on a best-effort basis and always clears local state.
func (s *Store) Logout(ctx context.Context) {
	if err := s.api.Post(ctx, adminapi.PathLogout, nil, nil); err != nil {
		s.log.Warn("session: logout notification failed", applogger.Error(err))
	}
	s.storage.Clear()
	s.record("logout")
}

// Restore loads a session persisted by an earlier run within the same scope.
func (s *Store) Restore(ctx context.Context) *models.AdminSession {
	sess, err := s.storage.Load(ctx)
	if err != nil {
		s.log.Warn("session: dropped unreadable persisted session", applogger.Error(err))
		return nil
	}
	if sess != nil {
		s.record("restore")
		s.log.Info("session: restored", applogger.String("username", sess.Username))
	}
	return sess
}

func (s *Store) Current() *models.AdminSession { return s.storage.Current() }

func (s *Store) Token() string { return s.storage.Token() }

// Clear drops the session without notifying the backend.
func (s *Store) Clear() {
	s.storage.Clear()
	s.record("cleared")
}

func (s *Store) save(ctx context.Context, sess models.AdminSession) {
	if err := s.storage.Save(ctx, sess); err != nil {
		// The in-memory session stays usable for this process.
		s.log.Warn("session: persist failed", applogger.Error(err))
	}
}

func (s *Store) record(event string) {
	if s.metrics != nil {
		s.metrics.RecordSessionEvent(event)
	}
}
