// Package profile covers the logged-in user's own data: favorites, reviews,
// reservations and personal details. Each operation reads or writes its own
// slice of backend state; nothing is cached across operations except the
// favorite set.
package profile

import (
	"context"
	"time"

	apihttp "canchapp/internal/common/http"
	"canchapp/internal/common/logger"
	"canchapp/internal/models"
)

// SessionRefresher re-reads the current user after a change to it.
type SessionRefresher interface {
	RefreshUser(ctx context.Context) error
}

type Service struct {
	api     apihttp.API
	session SessionRefresher
	logger  logger.Logger
	now     func() time.Time
}

type Option func(*Service)

// WithClock overrides time.Now for past-date checks.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(api apihttp.API, session SessionRefresher, log logger.Logger, opts ...Option) *Service {
	s := &Service{
		api:     api,
		session: session,
		logger:  logger.OrNop(log).WithFields(map[string]interface{}{"component": "profile"}),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetPersonalData reads the profile.
func (s *Service) GetPersonalData(ctx context.Context) (*models.User, error) {
	var u models.User
	if err := s.api.Get(ctx, "/profile", &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdatePersonalData saves the editable profile fields and refreshes the
// session so the new name shows everywhere. A failed refresh is logged only.
func (s *Service) UpdatePersonalData(ctx context.Context, data models.PersonalData) (string, error) {
	var resp models.MessageResponse
	if err := s.api.Put(ctx, "/profile", data, &resp); err != nil {
		return "", err
	}
	if s.session != nil {
		if err := s.session.RefreshUser(ctx); err != nil {
			s.logger.Warn("Session refresh after profile update failed", map[string]interface{}{"error": err.Error()})
		}
	}
	return resp.Message, nil
}
