package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReservationStatus values used by the backend.
type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pendiente"
	ReservationConfirmed ReservationStatus = "confirmada"
	ReservationCompleted ReservationStatus = "completada"
	ReservationCancelled ReservationStatus = "cancelada"
)

// WireTimeLayout is the "YYYY-MM-DD HH:MM:SS" layout the backend exchanges.
const WireTimeLayout = "2006-01-02 15:04:05"

// Reservation is an entry of GET /reservas.
type Reservation struct {
	ID         int               `json:"id_reserva"`
	CourtID    int               `json:"id_cancha"`
	CourtName  string            `json:"cancha_nombre"`
	VenueName  string            `json:"nombre_sede,omitempty"`
	Address    string            `json:"ubicacion_texto,omitempty"`
	StartsAt   string            `json:"fecha_hora_inicio"`
	EndsAt     string            `json:"fecha_hora_fin"`
	TotalPrice decimal.Decimal   `json:"precio_total"`
	Status     ReservationStatus `json:"estado"`
}

// Start parses StartsAt, accepting both the wire layout and RFC 3339.
func (r *Reservation) Start() (time.Time, error) {
	return ParseWireTime(r.StartsAt)
}

// End parses EndsAt.
func (r *Reservation) End() (time.Time, error) {
	return ParseWireTime(r.EndsAt)
}

// ParseWireTime parses a backend timestamp in local time.
func ParseWireTime(s string) (time.Time, error) {
	if t, err := time.ParseInLocation(WireTimeLayout, s, time.Local); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// CreateReservationRequest is the body of POST /reservas.
type CreateReservationRequest struct {
	CourtID    int             `json:"id_cancha"`
	StartsAt   string          `json:"fecha_hora_inicio"`
	EndsAt     string          `json:"fecha_hora_fin"`
	TotalPrice decimal.Decimal `json:"precio_total"`
}

// CreateReservationResponse carries the new reservation id.
type CreateReservationResponse struct {
	ID      int    `json:"id_reserva"`
	Message string `json:"mensaje,omitempty"`
}

// ModifyReservationRequest is the body of PUT /reservas/{id}.
type ModifyReservationRequest struct {
	StartsAt   string          `json:"fecha_hora_inicio"`
	EndsAt     string          `json:"fecha_hora_fin"`
	TotalPrice decimal.Decimal `json:"precio_total"`
}

// PaymentRequest is the body of POST /pagos.
type PaymentRequest struct {
	ReservationID int             `json:"id_reserva"`
	Amount        decimal.Decimal `json:"monto"`
	Method        string          `json:"metodo_pago"`
}

// Receipt is the server-issued payment confirmation. Court and time labels
// are filled in by the booking wizard from its own state.
type Receipt struct {
	ReservationID int             `json:"id_reserva"`
	Amount        decimal.Decimal `json:"monto"`
	Operation     string          `json:"operacion,omitempty"`
	Method        string          `json:"metodo,omitempty"`
	Status        string          `json:"estado,omitempty"`
	PaidAt        string          `json:"fecha_pago,omitempty"`
	Message       string          `json:"mensaje,omitempty"`

	CourtName string `json:"-"`
	DateLabel string `json:"-"`
	HourLabel string `json:"-"`
}
