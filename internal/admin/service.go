// internal/admin/service.go
package admin

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"canchapp/internal/common/errors"
	apihttp "canchapp/internal/common/http"
	"canchapp/internal/common/logger"
	"canchapp/internal/common/validation"
	"canchapp/internal/models"
)

// Session is the part of the user session the admin screens need.
type Session interface {
	RequireAdmin() (*models.User, error)
	RefreshUser(ctx context.Context) error
}

// Service reviews business applications and manages companies. Every call
// requires an administrator in session.
type Service struct {
	api     apihttp.API
	session Session
	logger  logger.Logger
}

func NewService(api apihttp.API, session Session, log logger.Logger) *Service {
	return &Service{
		api:     api,
		session: session,
		logger:  logger.OrNop(log).WithFields(map[string]interface{}{"component": "admin"}),
	}
}

// ListCompanies lists companies with the given status, pending ones when
// status is empty.
func (s *Service) ListCompanies(ctx context.Context, status models.CompanyStatus) ([]models.Company, error) {
	if _, err := s.session.RequireAdmin(); err != nil {
		return nil, err
	}
	if status == "" {
		status = models.CompanyPending
	}

	var companies []models.Company
	path := apihttp.WithQuery("/admin/empresas", url.Values{"estado": []string{string(status)}})
	if err := s.api.Get(ctx, path, &companies); err != nil {
		return nil, err
	}
	return companies, nil
}

// Approve accepts a pending application.
func (s *Service) Approve(ctx context.Context, companyID int) error {
	return s.decide(ctx, companyID, models.ApplicationDecision{Action: models.ActionApprove})
}

// Reject refuses a pending application. A reason is required.
func (s *Service) Reject(ctx context.Context, companyID int, reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return errors.NewValidationError("motivo", "the rejection reason cannot be empty")
	}
	return s.decide(ctx, companyID, models.ApplicationDecision{Action: models.ActionReject, Reason: reason})
}

func (s *Service) decide(ctx context.Context, companyID int, decision models.ApplicationDecision) error {
	if _, err := s.session.RequireAdmin(); err != nil {
		return err
	}
	if err := s.api.Put(ctx, fmt.Sprintf("/admin/solicitudes/%d", companyID), decision, nil); err != nil {
		return err
	}
	s.logger.Info("Application decided", map[string]interface{}{
		"company_id": companyID,
		"action":     decision.Action,
	})

	// roles may have changed server-side
	if err := s.session.RefreshUser(ctx); err != nil {
		s.logger.Warn("Session refresh after decision failed", map[string]interface{}{"error": err.Error()})
	}
	return nil
}

// UpdateCompany corrects a company's name and RUC.
func (s *Service) UpdateCompany(ctx context.Context, companyID int, name, ruc string) error {
	if _, err := s.session.RequireAdmin(); err != nil {
		return err
	}
	req := models.AdminCompanyUpdate{Name: strings.TrimSpace(name), RUC: strings.TrimSpace(ruc)}
	if err := validation.AdminCompanySchema.Check(req); err != nil {
		return err
	}
	return s.api.Put(ctx, fmt.Sprintf("/admin/empresas/%d", companyID), req, nil)
}

// SetStatus activates or deactivates a company.
func (s *Service) SetStatus(ctx context.Context, companyID int, status models.CompanyStatus) error {
	if _, err := s.session.RequireAdmin(); err != nil {
		return err
	}
	if status != models.CompanyActive && status != models.CompanyInactive {
		return errors.NewValidationError("estado", "status must be activa or inactiva")
	}
	if err := s.api.Put(ctx, fmt.Sprintf("/admin/empresas/%d/estado", companyID), models.CompanyStatusUpdate{Status: status}, nil); err != nil {
		return err
	}
	s.logger.Info("Company status changed", map[string]interface{}{"company_id": companyID, "status": status})
	return nil
}
