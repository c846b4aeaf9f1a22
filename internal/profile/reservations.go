package profile

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"canchapp/internal/booking"
	"canchapp/internal/common/errors"
	apihttp "canchapp/internal/common/http"
	"canchapp/internal/models"
)

// Action is something the user can do with a reservation.
type Action string

const (
	ActionModify Action = "modify"
	ActionCancel Action = "cancel"
	ActionShare  Action = "share"
	ActionReview Action = "review"
)

const (
	dayLayout       = "2006-01-02"
	shareDateLayout = "Monday, 2 January"
)

func (s *Service) ListReservations(ctx context.Context) ([]models.Reservation, error) {
	var reservations []models.Reservation
	if err := s.api.Get(ctx, "/reservas", &reservations); err != nil {
		return nil, err
	}
	return reservations, nil
}

func (s *Service) CancelReservation(ctx context.Context, id int) (string, error) {
	var resp models.MessageResponse
	if err := s.api.Put(ctx, fmt.Sprintf("/reservas/%d/cancelar", id), struct{}{}, &resp); err != nil {
		return "", err
	}
	s.logger.Info("Reservation cancelled", map[string]interface{}{"reservation_id": id})
	return resp.Message, nil
}

// Actions lists what the user may do with r: confirmed reservations can be
// moved, cancelled or shared, completed ones reviewed.
func Actions(r models.Reservation) []Action {
	switch r.Status {
	case models.ReservationConfirmed:
		return []Action{ActionModify, ActionCancel, ActionShare}
	case models.ReservationCompleted:
		return []Action{ActionReview}
	}
	return nil
}

func allows(r models.Reservation, a Action) bool {
	for _, x := range Actions(r) {
		if x == a {
			return true
		}
	}
	return false
}

// ModifyReservation moves r to a one-hour block starting at slot on day.
// The new block is checked against that day's availability with the same
// rules as the booking grid. The price is kept.
func (s *Service) ModifyReservation(ctx context.Context, r models.Reservation, day time.Time, slot string) (string, error) {
	if !allows(r, ActionModify) {
		return "", errors.NewValidationError("estado", "only confirmed reservations can be modified")
	}

	now := s.now()
	loc := now.Location()
	day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	if day.Before(today) {
		return "", errors.NewValidationError("date", "date not available, choose another")
	}

	av := models.Availability{}
	path := apihttp.WithQuery(fmt.Sprintf("/canchas/%d/disponibilidad", r.CourtID),
		url.Values{"fecha": []string{day.Format(dayLayout)}})
	if err := s.api.Get(ctx, path, &av); err != nil {
		return "", err
	}

	sel, err := booking.PickHour(av, slot)
	if err != nil {
		return "", err
	}

	d := day.Format(dayLayout)
	req := models.ModifyReservationRequest{
		StartsAt:   d + " " + sel.Start + ":00",
		EndsAt:     d + " " + sel.End + ":00",
		TotalPrice: r.TotalPrice,
	}
	var resp models.MessageResponse
	if err := s.api.Put(ctx, fmt.Sprintf("/reservas/%d", r.ID), req, &resp); err != nil {
		return "", err
	}

	s.logger.Info("Reservation modified", map[string]interface{}{
		"reservation_id": r.ID,
		"start":          req.StartsAt,
	})
	return resp.Message, nil
}

// ShareText builds the invitation for a reservation, linking to the court
// page under siteURL.
func ShareText(r models.Reservation, siteURL string) string {
	day, hour := r.StartsAt, ""
	if start, err := r.Start(); err == nil {
		day = start.Format(shareDateLayout)
		hour = start.Format("15:04")
	}
	link := fmt.Sprintf("%s/cancha/%d", strings.TrimRight(siteURL, "/"), r.CourtID)

	var b strings.Builder
	b.WriteString("You're invited to play!\n\n")
	fmt.Fprintf(&b, "Court: %s\n", r.CourtName)
	fmt.Fprintf(&b, "Day: %s\n", day)
	fmt.Fprintf(&b, "Time: %s\n\n", hour)
	fmt.Fprintf(&b, "See the court here: %s", link)
	return b.String()
}
