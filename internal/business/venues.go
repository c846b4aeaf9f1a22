package business

import (
	"context"
	"fmt"
	"strings"

	"canchapp/internal/common/validation"
	"canchapp/internal/models"
)

func (s *Service) Venues(ctx context.Context) ([]models.Venue, error) {
	var venues []models.Venue
	if err := s.api.Get(ctx, "/empresa/sedes", &venues); err != nil {
		return nil, err
	}
	return venues, nil
}

// SaveVenue creates v when it has no id and updates it otherwise. The saved
// venue, as returned by the backend, is returned.
func (s *Service) SaveVenue(ctx context.Context, v models.Venue) (*models.Venue, error) {
	v.Name = strings.TrimSpace(v.Name)
	v.Address = strings.TrimSpace(v.Address)
	if err := validation.VenueSchema.Check(v); err != nil {
		return nil, err
	}

	saved := v
	var err error
	if v.ID == 0 {
		err = s.api.Post(ctx, "/empresa/sedes", v, &saved)
	} else {
		err = s.api.Put(ctx, fmt.Sprintf("/empresa/sedes/%d", v.ID), v, &saved)
	}
	if err != nil {
		return nil, err
	}
	s.logger.Info("Venue saved", map[string]interface{}{"venue_id": saved.ID, "name": saved.Name})
	return &saved, nil
}

func (s *Service) DeleteVenue(ctx context.Context, id int) error {
	return s.api.Delete(ctx, fmt.Sprintf("/empresa/sedes/%d", id), nil)
}
