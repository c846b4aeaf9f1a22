package booking

import (
	"context"
	"fmt"
	"sync"
	"time"

	"canchapp/internal/common/database"
	"canchapp/internal/common/errors"
	apihttp "canchapp/internal/common/http"
	"canchapp/internal/models"

	"github.com/shopspring/decimal"
)

// Snapshot is the persisted form of a wizard.
type Snapshot struct {
	ID            string              `json:"id"`
	CourtID       int                 `json:"court_id"`
	State         State               `json:"state"`
	CourtName     string              `json:"court_name,omitempty"`
	Price         decimal.Decimal     `json:"price"`
	Day           string              `json:"day,omitempty"`
	Availability  models.Availability `json:"availability,omitempty"`
	Selection     Selection           `json:"selection"`
	Message       string              `json:"message,omitempty"`
	ReservationID int                 `json:"reservation_id,omitempty"`
	Total         decimal.Decimal     `json:"total"`
	Receipt       *models.Receipt     `json:"receipt,omitempty"`
}

// Snapshot captures the wizard state.
func (w *Wizard) Snapshot() Snapshot {
	s := Snapshot{
		ID:            w.id,
		CourtID:       w.courtID,
		State:         w.state,
		CourtName:     w.courtName,
		Price:         w.price,
		Availability:  w.availability,
		Selection:     w.selection,
		Message:       w.message,
		ReservationID: w.reservationID,
		Total:         w.total,
		Receipt:       w.receipt,
	}
	if !w.day.IsZero() {
		s.Day = w.day.Format(dayLayout)
	}
	return s
}

// Restore rebuilds a wizard from a snapshot. The snapshot must be coherent
// with its state: a day from SelectingSlot on, a reservation from
// ReservationCreated on and a receipt from PaymentConfirmed on.
func Restore(api apihttp.API, snap Snapshot, opts ...Option) (*Wizard, error) {
	if !snap.State.valid() {
		return nil, errors.NewWizardStateError("Restore", string(snap.State))
	}
	w := NewWizard(api, snap.CourtID, append(opts, WithID(snap.ID))...)

	if snap.Day != "" {
		day, err := time.ParseInLocation(dayLayout, snap.Day, w.now().Location())
		if err != nil {
			return nil, errors.NewStoreError("restore wizard", err)
		}
		w.day = day
	}

	needsDay := snap.State != StateSelectingDate
	needsReservation := needsDay && snap.State != StateSelectingSlot
	needsReceipt := snap.State == StatePaymentConfirmed || snap.State == StateReceiptShown
	if (needsDay && w.day.IsZero()) ||
		(needsReservation && snap.ReservationID == 0) ||
		(needsReceipt && snap.Receipt == nil) {
		return nil, errors.NewWizardStateError("Restore", string(snap.State))
	}

	w.state = snap.State
	w.courtName = snap.CourtName
	w.price = snap.Price
	w.availability = snap.Availability
	w.selection = snap.Selection
	w.message = snap.Message
	w.reservationID = snap.ReservationID
	w.total = snap.Total
	w.receipt = snap.Receipt
	return w, nil
}

// Store persists wizard snapshots between steps.
type Store interface {
	Save(ctx context.Context, snap Snapshot) error
	Load(ctx context.Context, id string) (Snapshot, bool, error)
	Delete(ctx context.Context, id string) error
}

// MemoryStore keeps snapshots for the lifetime of the process.
type MemoryStore struct {
	mu    sync.RWMutex
	snaps map[string]Snapshot
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snaps: make(map[string]Snapshot)}
}

func (m *MemoryStore) Save(_ context.Context, snap Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snaps[snap.ID] = snap
	return nil
}

func (m *MemoryStore) Load(_ context.Context, id string) (Snapshot, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.snaps[id]
	return s, ok, nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.snaps, id)
	return nil
}

// RedisStore keeps snapshots under <prefix>:wizard:<id>.
type RedisStore struct {
	redis  *database.RedisClient
	prefix string
	ttl    time.Duration
}

func NewRedisStore(rc *database.RedisClient, prefix string, ttl time.Duration) *RedisStore {
	return &RedisStore{redis: rc, prefix: prefix, ttl: ttl}
}

func (r *RedisStore) key(id string) string {
	return fmt.Sprintf("%s:wizard:%s", r.prefix, id)
}

func (r *RedisStore) Save(ctx context.Context, snap Snapshot) error {
	if err := r.redis.SetJSON(ctx, r.key(snap.ID), snap, r.ttl); err != nil {
		return errors.NewStoreError("save wizard", err)
	}
	return nil
}

func (r *RedisStore) Load(ctx context.Context, id string) (Snapshot, bool, error) {
	var snap Snapshot
	found, err := r.redis.GetJSON(ctx, r.key(id), &snap)
	if err != nil {
		return Snapshot{}, false, errors.NewStoreError("load wizard", err)
	}
	return snap, found, nil
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	if err := r.redis.Del(ctx, r.key(id)); err != nil {
		return errors.NewStoreError("delete wizard", err)
	}
	return nil
}
