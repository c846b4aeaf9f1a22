// internal/catalog/service.go
package catalog

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"canchapp/internal/common/errors"
	apihttp "canchapp/internal/common/http"
	"canchapp/internal/common/logger"
	"canchapp/internal/common/validation"
	"canchapp/internal/models"

	"golang.org/x/sync/errgroup"
)

// kmPerDegree turns a coordinate delta into an approximate distance.
const kmPerDegree = 111.0

type Service struct {
	api    apihttp.API
	logger logger.Logger
}

func NewService(api apihttp.API, log logger.Logger) *Service {
	return &Service{
		api:    api,
		logger: logger.OrNop(log).WithFields(map[string]interface{}{"component": "catalog"}),
	}
}

// Home is the data behind the landing page.
type Home struct {
	SportTypes []models.SportType `json:"sport_types"`
	Courts     []models.Court     `json:"courts"`
}

func (s *Service) ListCourts(ctx context.Context, filter models.CourtFilter) ([]models.Court, error) {
	var courts []models.Court
	if err := s.api.Get(ctx, apihttp.WithQuery("/canchas", filter.Query()), &courts); err != nil {
		return nil, err
	}
	return courts, nil
}

func (s *Service) GetCourt(ctx context.Context, id int) (*models.Court, error) {
	var court models.Court
	if err := s.api.Get(ctx, fmt.Sprintf("/canchas/%d", id), &court); err != nil {
		return nil, err
	}
	return &court, nil
}

func (s *Service) SportTypes(ctx context.Context) ([]models.SportType, error) {
	var types []models.SportType
	if err := s.api.Get(ctx, "/catalogos/tipos-deporte", &types); err != nil {
		return nil, err
	}
	return types, nil
}

func (s *Service) SurfaceTypes(ctx context.Context) ([]models.SurfaceType, error) {
	var types []models.SurfaceType
	if err := s.api.Get(ctx, "/catalogos/tipos-superficie", &types); err != nil {
		return nil, err
	}
	return types, nil
}

// LoadHome fetches the sport filter options and the court list in parallel.
// A failed sport-type fetch only leaves the filter empty; a failed court
// fetch fails the page.
func (s *Service) LoadHome(ctx context.Context, filter models.CourtFilter) (*Home, error) {
	home := &Home{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		types, err := s.SportTypes(gctx)
		if err != nil {
			s.logger.Warn("Failed to load sport types", map[string]interface{}{"error": errors.UserMessage(err)})
			return nil
		}
		home.SportTypes = types
		return nil
	})
	g.Go(func() error {
		courts, err := s.ListCourts(gctx, filter)
		if err != nil {
			return err
		}
		home.Courts = courts
		return nil
	})

	if err := g.Wait(); err != nil {
		s.logger.Error("Failed to load courts", map[string]interface{}{"error": errors.UserMessage(err)})
		return nil, err
	}
	return home, nil
}

// SortByDistance sets each court's Distance from (lat, lng) and orders the
// list nearest first. Courts without coordinates go last, in their original
// order.
func SortByDistance(courts []models.Court, lat, lng float64) []models.Court {
	out := make([]models.Court, len(courts))
	copy(out, courts)

	for i := range out {
		out[i].Distance = nil
		if out[i].Lat == nil || out[i].Lng == nil {
			continue
		}
		dx := lat - *out[i].Lat
		dy := lng - *out[i].Lng
		d := math.Round(math.Sqrt(dx*dx+dy*dy)*kmPerDegree*10) / 10
		out[i].Distance = &d
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Distance, out[j].Distance
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		}
		return *a < *b
	})
	return out
}

// SubmitReview posts a review for a completed reservation.
func (s *Service) SubmitReview(ctx context.Context, form models.CreateReviewRequest) (string, error) {
	form.Comment = strings.TrimSpace(form.Comment)
	if err := validation.ReviewSchema.Check(form); err != nil {
		return "", err
	}

	var resp models.MessageResponse
	if err := s.api.Post(ctx, "/resenas", form, &resp); err != nil {
		return "", err
	}
	s.logger.Info("Review submitted", map[string]interface{}{
		"reservation_id": form.ReservationID,
		"rating":         form.Rating,
	})
	return resp.Message, nil
}
