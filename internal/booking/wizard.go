// Package booking implements the court booking wizard: pick a day, pick a
// block of hours, create the pending reservation, pay, and show the receipt.
//
// The wizard is a single owned state object. It is not safe for concurrent
// use; persist it with a Store between steps instead of sharing it.
package booking

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"canchapp/internal/common/errors"
	apihttp "canchapp/internal/common/http"
	"canchapp/internal/common/logger"
	"canchapp/internal/common/metrics"
	"canchapp/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type State string

const (
	StateSelectingDate      State = "SelectingDate"
	StateSelectingSlot      State = "SelectingSlot"
	StateReservationCreated State = "ReservationCreated"
	StateAwaitingPayment    State = "AwaitingPayment"
	StatePaymentConfirmed   State = "PaymentConfirmed"
	StateReceiptShown       State = "ReceiptShown"
)

func (s State) valid() bool {
	switch s {
	case StateSelectingDate, StateSelectingSlot, StateReservationCreated,
		StateAwaitingPayment, StatePaymentConfirmed, StateReceiptShown:
		return true
	}
	return false
}

// StatusPendingPayment is the status shown for a created, unpaid reservation.
const StatusPendingPayment = "PENDING PAYMENT"

const (
	dayLayout       = "2006-01-02"
	dateLabelLayout = "Monday, 2 January 2006"

	msgDateNotAvailable = "date not available, choose another"
	msgInMaintenance    = "this court is under maintenance"
	msgSelectBlock      = "select a block of at least 1 hour"
)

type Option func(*Wizard)

// WithClock overrides time.Now, e.g. to pin "today" in tests.
func WithClock(now func() time.Time) Option {
	return func(w *Wizard) { w.now = now }
}

func WithLogger(l logger.Logger) Option {
	return func(w *Wizard) { w.logger = logger.OrNop(l) }
}

// WithID sets the wizard id instead of generating one.
func WithID(id string) Option {
	return func(w *Wizard) { w.id = id }
}

// Summary is what the user sees after the reservation is created.
type Summary struct {
	Code      string          `json:"code"`
	CourtName string          `json:"court_name"`
	DateLabel string          `json:"date_label"`
	HourLabel string          `json:"hour_label"`
	Amount    decimal.Decimal `json:"amount"`
	Status    string          `json:"status"`
}

type Wizard struct {
	id     string
	api    apihttp.API
	logger logger.Logger
	now    func() time.Time

	state         State
	courtID       int
	courtName     string
	price         decimal.Decimal
	day           time.Time
	availability  models.Availability
	selection     Selection
	message       string
	reservationID int
	total         decimal.Decimal
	receipt       *models.Receipt
}

func NewWizard(api apihttp.API, courtID int, opts ...Option) *Wizard {
	w := &Wizard{
		api:     api,
		logger:  logger.NewNoOpLogger(),
		now:     time.Now,
		state:   StateSelectingDate,
		courtID: courtID,
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.id == "" {
		w.id = uuid.New().String()
	}
	w.logger = w.logger.With(map[string]interface{}{"wizard_id": w.id, "court_id": courtID})
	return w
}

func (w *Wizard) ID() string { return w.id }

func (w *Wizard) State() State { return w.state }

func (w *Wizard) CourtID() int { return w.courtID }

func (w *Wizard) CourtName() string { return w.courtName }

// Message is the last user-facing message (rejections, load failures).
func (w *Wizard) Message() string { return w.message }

// Day is the chosen day, or the zero time before SelectDate.
func (w *Wizard) Day() time.Time { return w.day }

func (w *Wizard) Selection() Selection { return w.selection }

// ReservationID is set once Confirm succeeds.
func (w *Wizard) ReservationID() int { return w.reservationID }

// Total is price × selected hours while selecting, and the confirmed amount
// afterwards.
func (w *Wizard) Total() decimal.Decimal {
	if w.reservationID != 0 {
		return w.total
	}
	return w.price.Mul(decimal.NewFromInt(int64(w.selection.Hours())))
}

func (w *Wizard) Slots() []SlotView {
	return Views(w.availability, w.selection)
}

func (w *Wizard) FreeSlotCount() int {
	return FreeSlotCount(w.availability)
}

// SelectDate loads the court and its availability for day. Picking another
// day while selecting slots resets the selection.
func (w *Wizard) SelectDate(ctx context.Context, day time.Time) error {
	if err := w.expect("SelectDate", StateSelectingDate, StateSelectingSlot); err != nil {
		return err
	}

	now := w.now()
	loc := now.Location()
	day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	if day.Before(today) {
		return w.reject(errors.NewValidationError("date", msgDateNotAvailable))
	}

	var court models.Court
	if err := w.api.Get(ctx, fmt.Sprintf("/canchas/%d", w.courtID), &court); err != nil {
		return w.fail("Failed to load court", err)
	}
	if court.InMaintenance() {
		return w.reject(errors.NewValidationError("court", msgInMaintenance))
	}

	av := models.Availability{}
	path := apihttp.WithQuery(fmt.Sprintf("/canchas/%d/disponibilidad", w.courtID),
		url.Values{"fecha": []string{day.Format(dayLayout)}})
	if err := w.api.Get(ctx, path, &av); err != nil {
		return w.fail("Failed to load availability", err)
	}

	w.courtName = court.Name
	w.price = court.Price
	w.day = day
	w.availability = av
	w.selection = Selection{}
	w.message = ""
	w.transition(StateSelectingSlot)

	w.logger.Info("Availability loaded", map[string]interface{}{
		"date": day.Format(dayLayout),
		"free": w.FreeSlotCount(),
	})
	return nil
}

// ClickSlot applies one click on the slot grid. No network call is made.
func (w *Wizard) ClickSlot(slot string) error {
	if err := w.expect("ClickSlot", StateSelectingSlot); err != nil {
		return err
	}
	sel, err := Click(w.availability, w.selection, slot)
	w.selection = sel
	if err != nil {
		return w.reject(err)
	}
	w.message = ""
	return nil
}

// Confirm creates the pending reservation for the selected block.
func (w *Wizard) Confirm(ctx context.Context) (*Summary, error) {
	if err := w.expect("Confirm", StateSelectingSlot); err != nil {
		return nil, err
	}
	hours := w.selection.Hours()
	if hours < 1 {
		return nil, w.reject(errors.NewValidationError("slot", msgSelectBlock))
	}

	total := w.price.Mul(decimal.NewFromInt(int64(hours)))
	req := models.CreateReservationRequest{
		CourtID:    w.courtID,
		StartsAt:   w.wireTime(w.selection.Start),
		EndsAt:     w.wireTime(w.selection.End),
		TotalPrice: total,
	}

	var resp models.CreateReservationResponse
	if err := w.api.Post(ctx, "/reservas", req, &resp); err != nil {
		return nil, w.fail("Failed to create reservation", err)
	}
	if resp.ID == 0 {
		return nil, w.fail("Reservation response has no id",
			errors.NewResponseDecodeError("POST", "/reservas", errMissingReservationID))
	}

	w.reservationID = resp.ID
	w.total = total
	w.message = ""
	w.transition(StateReservationCreated)

	w.logger.Info("Reservation created", map[string]interface{}{
		"reservation_id": resp.ID,
		"start":          req.StartsAt,
		"end":            req.EndsAt,
		"total":          total.String(),
	})
	return w.Summary()
}

// Summary describes the created reservation.
func (w *Wizard) Summary() (*Summary, error) {
	if err := w.expect("Summary", StateReservationCreated, StateAwaitingPayment,
		StatePaymentConfirmed, StateReceiptShown); err != nil {
		return nil, err
	}
	return &Summary{
		Code:      fmt.Sprintf("R-%d", w.reservationID),
		CourtName: w.courtName,
		DateLabel: w.DateLabel(),
		HourLabel: w.HourLabel(),
		Amount:    w.total,
		Status:    StatusPendingPayment,
	}, nil
}

// DateLabel is the chosen day in long form, e.g. "Monday, 20 October 2026".
func (w *Wizard) DateLabel() string {
	if w.day.IsZero() {
		return ""
	}
	return w.day.Format(dateLabelLayout)
}

// HourLabel is the selected block, e.g. "18:00 - 20:00".
func (w *Wizard) HourLabel() string {
	if w.selection.Empty() {
		return ""
	}
	return w.selection.Start + " - " + w.selection.End
}

func (w *Wizard) ProceedToPayment() error {
	if err := w.expect("ProceedToPayment", StateReservationCreated); err != nil {
		return err
	}
	w.transition(StateAwaitingPayment)
	return nil
}

// Pay validates the card form and pays the reservation.
func (w *Wizard) Pay(ctx context.Context, form CardForm) (*models.Receipt, error) {
	if err := w.expect("Pay", StateAwaitingPayment); err != nil {
		return nil, err
	}
	form = form.Sanitized()
	if err := form.Validate(); err != nil {
		return nil, w.reject(err)
	}

	req := models.PaymentRequest{
		ReservationID: w.reservationID,
		Amount:        w.total,
		Method:        form.PaymentMethod(),
	}
	var receipt models.Receipt
	if err := w.api.Post(ctx, "/pagos", req, &receipt); err != nil {
		return nil, w.fail("Payment failed", err)
	}
	if receipt.ReservationID == 0 {
		receipt.ReservationID = w.reservationID
	}
	if receipt.Amount.IsZero() {
		receipt.Amount = w.total
	}
	if receipt.Method == "" {
		receipt.Method = req.Method
	}

	w.receipt = &receipt
	w.message = ""
	w.transition(StatePaymentConfirmed)

	w.logger.Info("Payment confirmed", map[string]interface{}{
		"reservation_id": w.reservationID,
		"operation":      receipt.Operation,
		"amount":         receipt.Amount.String(),
	})
	return w.labelledReceipt(), nil
}

// ShowReceipt moves to the receipt view and returns the receipt. Calling it
// again once shown returns the same receipt.
func (w *Wizard) ShowReceipt() (*models.Receipt, error) {
	if err := w.expect("ShowReceipt", StatePaymentConfirmed, StateReceiptShown); err != nil {
		return nil, err
	}
	if w.state == StatePaymentConfirmed {
		w.transition(StateReceiptShown)
	}
	return w.labelledReceipt(), nil
}

// ReceiptPDFURL is the backend link to the printable receipt.
func (w *Wizard) ReceiptPDFURL() (string, error) {
	if err := w.expect("ReceiptPDFURL", StateReceiptShown); err != nil {
		return "", err
	}
	return w.api.URL(fmt.Sprintf("/reservas/%d/comprobante-pdf", w.reservationID)), nil
}

// ResendReceipt asks the backend to email the receipt again.
func (w *Wizard) ResendReceipt(ctx context.Context) (string, error) {
	if err := w.expect("ResendReceipt", StateReceiptShown); err != nil {
		return "", err
	}
	var resp models.MessageResponse
	path := fmt.Sprintf("/reservas/%d/enviar-comprobante", w.reservationID)
	if err := w.api.Post(ctx, path, struct{}{}, &resp); err != nil {
		return "", w.fail("Failed to resend receipt", err)
	}
	w.message = resp.Message
	return resp.Message, nil
}

// Back returns to the previous step where that is allowed.
func (w *Wizard) Back() error {
	switch w.state {
	case StateSelectingSlot:
		w.selection = Selection{}
		w.message = ""
		w.transition(StateSelectingDate)
		return nil
	case StateAwaitingPayment:
		w.transition(StateReservationCreated)
		return nil
	}
	return w.reject(errors.NewWizardStateError("Back", string(w.state)))
}

func (w *Wizard) labelledReceipt() *models.Receipt {
	if w.receipt == nil {
		return nil
	}
	r := *w.receipt
	r.CourtName = w.courtName
	r.DateLabel = w.DateLabel()
	r.HourLabel = w.HourLabel()
	return &r
}

func (w *Wizard) wireTime(slot string) string {
	return w.day.Format(dayLayout) + " " + slot + ":00"
}

func (w *Wizard) expect(step string, allowed ...State) error {
	for _, s := range allowed {
		if w.state == s {
			return nil
		}
	}
	return w.reject(errors.NewWizardStateError(step, string(w.state)))
}

func (w *Wizard) transition(to State) {
	from := w.state
	w.state = to
	metrics.ObserveTransition(string(from), string(to))
	w.logger.Debug("Wizard transition", map[string]interface{}{"from": from, "to": to})
}

// reject records a local rejection. The state does not change.
func (w *Wizard) reject(err error) error {
	code := "UNKNOWN"
	if se, ok := errors.As(err); ok {
		code = string(se.Code)
	}
	w.message = errors.UserMessage(err)
	metrics.ObserveRejection(string(w.state), code)
	return err
}

// fail records a backend failure. The state does not change and the
// backend's message is surfaced as is.
func (w *Wizard) fail(msg string, err error) error {
	w.logger.Warn(msg, map[string]interface{}{
		"state": w.state,
		"error": errors.UserMessage(err),
	})
	return w.reject(err)
}

type wizardError string

func (e wizardError) Error() string { return string(e) }

const errMissingReservationID = wizardError("reservation response has no id")
