// Package auth holds the process-wide session: who is logged in, and the
// cookies that prove it to the backend.
package auth

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"canchapp/internal/common/errors"
	apihttp "canchapp/internal/common/http"
	"canchapp/internal/common/logger"
	"canchapp/internal/common/metrics"
	"canchapp/internal/common/validation"
	"canchapp/internal/models"
)

// CookieJar is the part of the API client that holds session cookies.
type CookieJar interface {
	Cookies() []*http.Cookie
	SetCookies(cookies []*http.Cookie)
	ClearCookies()
}

type SessionDependencies struct {
	API    apihttp.API
	Jar    CookieJar
	Store  CookieStore
	Logger logger.Logger
}

// Session is safe for concurrent use. Until Bootstrap finishes, Loading
// reports true and Wait blocks.
type Session struct {
	api    apihttp.API
	jar    CookieJar
	store  CookieStore
	logger logger.Logger

	mu      sync.RWMutex
	user    *models.User
	loading bool
	ready   chan struct{}
	once    sync.Once
}

func NewSession(deps SessionDependencies) *Session {
	store := deps.Store
	if store == nil {
		store = NewMemoryCookieStore()
	}
	return &Session{
		api:     deps.API,
		jar:     deps.Jar,
		store:   store,
		logger:  logger.OrNop(deps.Logger),
		loading: true,
		ready:   make(chan struct{}),
	}
}

// Bootstrap restores persisted cookies and asks the backend who the current
// user is. Any failure leaves the session logged out; the error is returned
// for diagnostics only.
func (s *Session) Bootstrap(ctx context.Context) error {
	defer s.markReady()

	if s.jar != nil {
		cookies, err := s.store.Load(ctx)
		if err != nil {
			s.logger.Warn("Failed to restore session cookies", map[string]interface{}{"error": err.Error()})
		} else if len(cookies) > 0 {
			s.jar.SetCookies(cookies)
		}
	}

	var user models.User
	if err := s.api.Get(ctx, "/profile", &user); err != nil {
		s.setUser(nil)
		s.logger.Debug("No active session", map[string]interface{}{"reason": errors.UserMessage(err)})
		return err
	}

	s.setUser(&user)
	s.logger.Info("Session restored", map[string]interface{}{"email": user.Email})
	return nil
}

func (s *Session) markReady() {
	s.once.Do(func() {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
		close(s.ready)
	})
}

// Loading reports whether Bootstrap is still resolving.
func (s *Session) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Wait blocks until Bootstrap has resolved or ctx is done.
func (s *Session) Wait(ctx context.Context) error {
	select {
	case <-s.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Login authenticates with email and password and stores the returned user.
func (s *Session) Login(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, errors.NewValidationError("email", "email and password are required")
	}

	var resp models.LoginResponse
	if err := s.api.Post(ctx, "/login", models.LoginRequest{Email: email, Password: password}, &resp); err != nil {
		s.logger.Warn("Login failed", map[string]interface{}{"email": email, "error": errors.UserMessage(err)})
		return nil, err
	}
	if resp.User == nil {
		return nil, errors.NewResponseDecodeError("POST", "/login", errMissingUser)
	}

	s.SetUser(&resp)
	s.persistCookies(ctx)

	s.logger.Info("User logged in", map[string]interface{}{"email": resp.User.Email})
	return s.User(), nil
}

// SetUser stores an already-authenticated user object, as returned by /login.
func (s *Session) SetUser(resp *models.LoginResponse) {
	if resp == nil {
		s.setUser(nil)
		return
	}
	s.setUser(resp.User)
}

// Logout tells the backend to end the session. Local state is cleared no
// matter what the backend answers; its error is returned only for reporting.
func (s *Session) Logout(ctx context.Context) error {
	err := s.api.Post(ctx, "/logout", struct{}{}, nil)
	if err != nil {
		s.logger.Warn("Backend logout failed, clearing local session anyway", map[string]interface{}{
			"error": errors.UserMessage(err),
		})
	}

	s.setUser(nil)
	if s.jar != nil {
		s.jar.ClearCookies()
	}
	if clearErr := s.store.Clear(ctx); clearErr != nil {
		s.logger.Warn("Failed to clear persisted cookies", map[string]interface{}{"error": clearErr.Error()})
	}

	s.logger.Info("User logged out", nil)
	return err
}

// RefreshUser re-reads /profile. Used after actions that change the user's
// role or data server-side. On failure the session is cleared.
func (s *Session) RefreshUser(ctx context.Context) error {
	var user models.User
	if err := s.api.Get(ctx, "/profile", &user); err != nil {
		s.setUser(nil)
		return err
	}
	s.setUser(&user)
	s.persistCookies(ctx)
	return nil
}

// User returns a copy of the current user, or nil.
func (s *Session) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

// RequireUser returns the current user or NOT_AUTHENTICATED.
func (s *Session) RequireUser() (*models.User, error) {
	u := s.User()
	if u == nil {
		return nil, errors.NewNotAuthenticatedError("no user in session")
	}
	return u, nil
}

// RequireAdmin returns the current user if it is an administrator.
func (s *Session) RequireAdmin() (*models.User, error) {
	u, err := s.RequireUser()
	if err != nil {
		return nil, err
	}
	if !u.IsAdmin() {
		return nil, errors.NewForbiddenError("admin")
	}
	return u, nil
}

// Register creates an account. The backend then emails a verification code.
func (s *Session) Register(ctx context.Context, name, email, password, confirm string) (string, error) {
	req := models.RegisterRequest{
		Name:     strings.TrimSpace(name),
		Email:    strings.TrimSpace(email),
		Password: password,
	}
	if password != confirm {
		return "", errors.NewValidationError("password", "passwords do not match")
	}
	if err := validation.RegisterSchema.Check(req); err != nil {
		return "", err
	}

	var resp models.MessageResponse
	if err := s.api.Post(ctx, "/register", req, &resp); err != nil {
		return "", err
	}
	s.logger.Info("Account registered", map[string]interface{}{"email": req.Email})
	return resp.Message, nil
}

// VerifyEmail confirms the 6-digit code sent after registration.
func (s *Session) VerifyEmail(ctx context.Context, email, code string) (string, error) {
	req := models.VerifyEmailRequest{Email: strings.TrimSpace(email), Code: strings.TrimSpace(code)}
	if err := validation.VerifyEmailSchema.Check(req); err != nil {
		return "", err
	}

	var resp models.MessageResponse
	if err := s.api.Post(ctx, "/verify-email", req, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

func (s *Session) setUser(u *models.User) {
	s.mu.Lock()
	if u == nil {
		s.user = nil
	} else {
		cp := *u
		s.user = &cp
	}
	s.mu.Unlock()
	metrics.SetAuthenticated(u != nil)
}

func (s *Session) persistCookies(ctx context.Context) {
	if s.jar == nil {
		return
	}
	if err := s.store.Save(ctx, s.jar.Cookies()); err != nil {
		s.logger.Warn("Failed to persist session cookies", map[string]interface{}{"error": err.Error()})
	}
}

type sessionError string

func (e sessionError) Error() string { return string(e) }

const errMissingUser = sessionError("login response has no user")
