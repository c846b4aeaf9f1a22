package business

import (
	"context"
	"fmt"
	"strings"

	apihttp "canchapp/internal/common/http"
	"canchapp/internal/common/validation"
	"canchapp/internal/models"

	"golang.org/x/sync/errgroup"
)

// FormCatalogs holds the options of the court form.
type FormCatalogs struct {
	Venues       []models.Venue       `json:"venues"`
	SportTypes   []models.SportType   `json:"sport_types"`
	SurfaceTypes []models.SurfaceType `json:"surface_types"`
}

// LoadFormCatalogs fetches venues, sport types and surface types in
// parallel. Any failure fails the form.
func (s *Service) LoadFormCatalogs(ctx context.Context) (*FormCatalogs, error) {
	out := &FormCatalogs{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		venues, err := s.Venues(gctx)
		out.Venues = venues
		return err
	})
	g.Go(func() error {
		return s.api.Get(gctx, "/catalogos/tipos-deporte", &out.SportTypes)
	})
	g.Go(func() error {
		return s.api.Get(gctx, "/catalogos/tipos-superficie", &out.SurfaceTypes)
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) Courts(ctx context.Context, filter models.ManagedCourtFilter) ([]models.ManagedCourt, error) {
	var courts []models.ManagedCourt
	if err := s.api.Get(ctx, apihttp.WithQuery("/empresa/canchas", filter.Query()), &courts); err != nil {
		return nil, err
	}
	return courts, nil
}

// SaveCourt creates c when it has no id and updates it otherwise.
func (s *Service) SaveCourt(ctx context.Context, c models.ManagedCourt) error {
	c.Name = strings.TrimSpace(c.Name)
	c.Description = strings.TrimSpace(c.Description)
	c.PhotoURL1 = strings.TrimSpace(c.PhotoURL1)
	if err := validation.ManagedCourtSchema.Check(c); err != nil {
		return err
	}

	var err error
	if c.ID == 0 {
		err = s.api.Post(ctx, "/empresa/canchas", c, nil)
	} else {
		err = s.api.Put(ctx, fmt.Sprintf("/empresa/canchas/%d", c.ID), c, nil)
	}
	if err != nil {
		return err
	}
	s.logger.Info("Court saved", map[string]interface{}{"court_id": c.ID, "name": c.Name})
	return nil
}

func (s *Service) DeleteCourt(ctx context.Context, id int) error {
	return s.api.Delete(ctx, fmt.Sprintf("/empresa/canchas/%d", id), nil)
}

// SetCourtActive opens a court for booking or puts it under maintenance.
func (s *Service) SetCourtActive(ctx context.Context, id int, active bool) error {
	if err := s.api.Put(ctx, fmt.Sprintf("/empresa/canchas/%d/estado", id), models.CourtStatusUpdate{Active: active}, nil); err != nil {
		return err
	}
	s.logger.Info("Court status changed", map[string]interface{}{"court_id": id, "active": active})
	return nil
}
