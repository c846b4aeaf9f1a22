// internal/business/service.go
package business

import (
	"context"
	"strings"

	"canchapp/internal/common/errors"
	apihttp "canchapp/internal/common/http"
	"canchapp/internal/common/logger"
	"canchapp/internal/common/validation"
	"canchapp/internal/models"
)

// SessionRefresher re-reads the current user after a role change.
type SessionRefresher interface {
	RefreshUser(ctx context.Context) error
}

// Service manages a business account: the registration request, company
// data, venues and courts.
type Service struct {
	api     apihttp.API
	session SessionRefresher
	logger  logger.Logger
}

func NewService(api apihttp.API, session SessionRefresher, log logger.Logger) *Service {
	return &Service{
		api:     api,
		session: session,
		logger:  logger.OrNop(log).WithFields(map[string]interface{}{"component": "business"}),
	}
}

// ==========================
// Registration request
// ==========================

// SubmitRequest applies for a business account.
func (s *Service) SubmitRequest(ctx context.Context, req models.CompanyRequest) (string, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.RUC = strings.TrimSpace(req.RUC)
	req.Description = strings.TrimSpace(req.Description)
	if err := validation.CompanyRequestSchema.Check(req); err != nil {
		return "", err
	}

	var resp models.MessageResponse
	if err := s.api.Post(ctx, "/empresas/solicitar-registro", req, &resp); err != nil {
		return "", err
	}
	s.logger.Info("Business request submitted", map[string]interface{}{"ruc": req.RUC})
	return resp.Message, nil
}

// MyRequest returns the current user's application and its status.
func (s *Service) MyRequest(ctx context.Context) (*models.Company, error) {
	var c models.Company
	if err := s.api.Get(ctx, "/empresa/mi-solicitud", &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// WithdrawRequest deletes the application, typically a rejected one, so a new
// one can be submitted.
func (s *Service) WithdrawRequest(ctx context.Context) error {
	if err := s.api.Delete(ctx, "/empresa/mi-solicitud", nil); err != nil {
		return err
	}
	s.logger.Info("Business request withdrawn", nil)
	return nil
}

// ==========================
// Company data
// ==========================

func (s *Service) Company(ctx context.Context) (*models.Company, error) {
	var c models.Company
	if err := s.api.Get(ctx, "/empresa/mi-empresa", &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// UpdateCompany saves the editable fields. The RUC cannot be changed here.
func (s *Service) UpdateCompany(ctx context.Context, name, description string) (string, error) {
	req := models.CompanyUpdate{Name: strings.TrimSpace(name), Description: strings.TrimSpace(description)}
	if err := validation.CompanyUpdateSchema.Check(req); err != nil {
		return "", err
	}
	var resp models.MessageResponse
	if err := s.api.Put(ctx, "/empresa/mi-empresa", req, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// ==========================
// Business deletion
// ==========================

// CheckDeletion asks whether the business can be deleted. A refusal from the
// backend is not an error: it comes back as CanDelete false with the
// backend's explanation.
func (s *Service) CheckDeletion(ctx context.Context) (*models.DeletionCheck, error) {
	var check models.DeletionCheck
	err := s.api.Get(ctx, "/empresa/delete-check", &check)
	if err == nil {
		check.CanDelete = true
		return &check, nil
	}
	if errors.IsCode(err, errors.ErrCodeRequestFailed) {
		return &models.DeletionCheck{CanDelete: false, Message: errors.UserMessage(err)}, nil
	}
	return nil, err
}

// ConfirmDeletion deletes the business after re-entering the password. The
// user goes back to being a plain player, so the session is refreshed.
func (s *Service) ConfirmDeletion(ctx context.Context, password string) (string, error) {
	if password == "" {
		return "", errors.NewValidationError("password", "enter your password")
	}

	var resp models.MessageResponse
	if err := s.api.Post(ctx, "/empresa/delete-confirm", models.DeletionConfirm{Password: password}, &resp); err != nil {
		return "", err
	}
	s.logger.Info("Business deleted", nil)

	if s.session != nil {
		if err := s.session.RefreshUser(ctx); err != nil {
			s.logger.Warn("Session refresh after business deletion failed", map[string]interface{}{"error": err.Error()})
		}
	}
	return resp.Message, nil
}
