// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"canchapp/internal/booking"
	"canchapp/internal/catalog"
	"canchapp/internal/common/auth"
	"canchapp/internal/common/config"
	"canchapp/internal/common/database"
	apihttp "canchapp/internal/common/http"
	"canchapp/internal/common/logger"
	"canchapp/internal/models"
	"canchapp/internal/profile"
)

// ==========================
// 1. Fake backend
// ==========================

// fakeBackend serves the subset of the CanchApp API one booking touches. It
// keeps the reservation it creates so later listings reflect payment.
type fakeBackend struct {
	*httptest.Server

	mu          sync.Mutex
	reservation *models.Reservation
	paid        bool
	resent      int
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newFakeBackend(t *testing.T) *fakeBackend {
	f := &fakeBackend{}
	user := models.User{ID: 5, RoleID: models.RolePlayer, FirstName: "Ana", LastName: "Torres", Email: "ana@mail.pe"}

	authed := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			c, err := r.Cookie("canchapp_session")
			if err != nil || c.Value != "tok-42" {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "No autenticado"})
				return
			}
			next(w, r)
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /login", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "canchapp_session", Value: "tok-42", Path: "/", HttpOnly: true})
		writeJSON(w, http.StatusOK, models.LoginResponse{User: &user})
	})
	mux.HandleFunc("POST /logout", authed(func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "canchapp_session", Value: "", Path: "/", MaxAge: -1})
		writeJSON(w, http.StatusOK, models.MessageResponse{Message: "Sesión cerrada"})
	}))
	mux.HandleFunc("GET /profile", authed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, user)
	}))
	mux.HandleFunc("GET /canchas", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []map[string]interface{}{
			{"id": 7, "nombre": "Cancha Miraflores", "ubicacion": "Miraflores", "precio": 80.50, "lat": -12.12, "lng": -77.03},
			{"id": 8, "nombre": "Cancha Surco", "ubicacion": "Surco", "precio": 60, "lat": -12.15, "lng": -76.99},
		})
	})
	mux.HandleFunc("GET /catalogos/tipos-deporte", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []models.SportType{{ID: 1, Name: "Fútbol"}})
	})
	mux.HandleFunc("GET /canchas/7", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"id": 7, "nombre": "Cancha Miraflores", "ubicacion": "Miraflores", "precio": 80.50, "estado": true,
		})
	})
	mux.HandleFunc("GET /canchas/7/disponibilidad", func(w http.ResponseWriter, r *http.Request) {
		av := models.Availability{}
		for _, s := range booking.SlotTimes[:len(booking.SlotTimes)-1] {
			av[s] = models.SlotAvailable
		}
		av["20:00"] = models.SlotOccupied
		writeJSON(w, http.StatusOK, av)
	})
	mux.HandleFunc("POST /reservas", authed(func(w http.ResponseWriter, r *http.Request) {
		var req models.CreateReservationRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.mu.Lock()
		f.reservation = &models.Reservation{
			ID: 345, CourtID: req.CourtID, CourtName: "Cancha Miraflores",
			StartsAt: req.StartsAt, EndsAt: req.EndsAt, TotalPrice: req.TotalPrice,
			Status: models.ReservationPending,
		}
		f.mu.Unlock()
		writeJSON(w, http.StatusCreated, models.CreateReservationResponse{ID: 345})
	}))
	mux.HandleFunc("POST /pagos", authed(func(w http.ResponseWriter, r *http.Request) {
		var req models.PaymentRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.reservation == nil || req.ReservationID != f.reservation.ID || !req.Amount.Equal(f.reservation.TotalPrice) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Pago inválido"})
			return
		}
		f.paid = true
		f.reservation.Status = models.ReservationConfirmed
		writeJSON(w, http.StatusOK, models.Receipt{
			ReservationID: req.ReservationID, Amount: req.Amount, Operation: "OP-20261020", Method: req.Method,
		})
	}))
	mux.HandleFunc("POST /reservas/345/enviar-comprobante", authed(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.resent++
		f.mu.Unlock()
		writeJSON(w, http.StatusOK, models.MessageResponse{Message: "Comprobante enviado"})
	}))
	mux.HandleFunc("GET /reservas", authed(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		list := []models.Reservation{}
		if f.reservation != nil {
			list = append(list, *f.reservation)
		}
		writeJSON(w, http.StatusOK, list)
	}))

	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)
	return f
}

// ==========================
// 2. One CLI invocation
// ==========================

// invocation is what a single process run has: a fresh API client and
// session, sharing only Redis with earlier runs.
type invocation struct {
	api     *apihttp.Client
	session *auth.Session
	wizards *booking.RedisStore
	log     logger.Logger
}

func newInvocation(t *testing.T, baseURL string, rc *database.RedisClient) *invocation {
	log := logger.NewTestLogger(t)
	api, err := apihttp.NewClient(apihttp.Config{BaseURL: baseURL, Timeout: 5 * time.Second}, apihttp.WithLogger(log))
	require.NoError(t, err)

	sess := auth.NewSession(auth.SessionDependencies{
		API:    api,
		Jar:    api,
		Store:  auth.NewRedisCookieStore(rc, "e2e", time.Hour),
		Logger: log,
	})
	_ = sess.Bootstrap(context.Background())

	return &invocation{
		api:     api,
		session: sess,
		wizards: booking.NewRedisStore(rc, "e2e", time.Hour),
		log:     log,
	}
}

func (inv *invocation) wizard(t *testing.T, id string) *booking.Wizard {
	snap, found, err := inv.wizards.Load(context.Background(), id)
	require.NoError(t, err)
	require.True(t, found, "wizard %s not persisted", id)
	w, err := booking.Restore(inv.api, snap, booking.WithLogger(inv.log))
	require.NoError(t, err)
	return w
}

func (inv *invocation) save(t *testing.T, w *booking.Wizard) {
	require.NoError(t, inv.wizards.Save(context.Background(), w.Snapshot()))
}

// ==========================
// 3. Full booking journey
// ==========================

func TestFullE2E(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	mr := miniredis.RunT(t)
	rc := database.NewRedis(config.RedisConfig{Address: mr.Addr()})
	t.Cleanup(func() { _ = rc.Close() })
	require.NoError(t, rc.Ping(ctx))

	backend := newFakeBackend(t)
	tomorrow := time.Now().AddDate(0, 0, 1)
	day := tomorrow.Format("2006-01-02")

	t.Log("Step 1: login")
	inv := newInvocation(t, backend.URL, rc)
	require.False(t, inv.session.IsAuthenticated())
	u, err := inv.session.Login(ctx, "ana@mail.pe", "clave123")
	require.NoError(t, err)
	assert.Equal(t, "Ana", u.DisplayName())

	t.Log("Step 2: browse courts near Miraflores")
	inv = newInvocation(t, backend.URL, rc)
	require.True(t, inv.session.IsAuthenticated(), "cookies should survive across invocations")
	home, err := catalog.NewService(inv.api, inv.log).LoadHome(ctx, models.CourtFilter{})
	require.NoError(t, err)
	require.Len(t, home.SportTypes, 1)
	sorted := catalog.SortByDistance(home.Courts, -12.12, -77.03)
	require.Len(t, sorted, 2)
	assert.Equal(t, 7, sorted[0].ID)

	t.Log("Step 3: pick a day")
	w := booking.NewWizard(inv.api, sorted[0].ID, booking.WithLogger(inv.log))
	require.NoError(t, w.SelectDate(ctx, tomorrow))
	assert.Equal(t, 13, w.FreeSlotCount())
	inv.save(t, w)
	id := w.ID()

	t.Log("Step 4: pick 18:00-20:00 and confirm")
	inv = newInvocation(t, backend.URL, rc)
	w = inv.wizard(t, id)
	require.Equal(t, booking.StateSelectingSlot, w.State())
	require.NoError(t, w.ClickSlot("18:00"))
	require.NoError(t, w.ClickSlot("19:00"))
	assert.Error(t, w.ClickSlot("21:00"), "range through 20:00 crosses an occupied slot")
	assert.True(t, w.Selection().Empty())
	require.NoError(t, w.ClickSlot("18:00"))
	require.NoError(t, w.ClickSlot("19:00"))
	summary, err := w.Confirm(ctx)
	require.NoError(t, err)
	assert.Equal(t, "R-345", summary.Code)
	assert.Equal(t, "18:00 - 20:00", summary.HourLabel)
	assert.True(t, summary.Amount.Equal(decimal.NewFromInt(161)))
	inv.save(t, w)

	t.Log("Step 5: pay")
	inv = newInvocation(t, backend.URL, rc)
	w = inv.wizard(t, id)
	require.NoError(t, w.ProceedToPayment())
	receipt, err := w.Pay(ctx, booking.CardForm{
		Number: "4111 1111 1111 1111", Expiry: "12/30", CVV: "123",
		HolderName: "Ana Torres", Document: "12345678",
		Email: "ana@mail.pe", Phone: "987654321",
	})
	require.NoError(t, err)
	assert.Equal(t, "OP-20261020", receipt.Operation)
	assert.Equal(t, "Cancha Miraflores", receipt.CourtName)
	_, err = w.ShowReceipt()
	require.NoError(t, err)
	pdf, err := w.ReceiptPDFURL()
	require.NoError(t, err)
	assert.Equal(t, backend.URL+"/reservas/345/comprobante-pdf", pdf)
	msg, err := w.ResendReceipt(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Comprobante enviado", msg)
	inv.save(t, w)
	assert.True(t, backend.paid)
	assert.Equal(t, 1, backend.resent)

	t.Log("Step 6: the reservation shows up confirmed in the profile")
	inv = newInvocation(t, backend.URL, rc)
	prof := profile.NewService(inv.api, inv.session, inv.log)
	list, err := prof.ListReservations(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.ReservationConfirmed, list[0].Status)
	assert.Equal(t, day+" 18:00:00", list[0].StartsAt)
	assert.ElementsMatch(t, []profile.Action{profile.ActionModify, profile.ActionCancel, profile.ActionShare}, profile.Actions(list[0]))
	share := profile.ShareText(list[0], "https://canchapp.pe")
	assert.True(t, strings.HasSuffix(share, fmt.Sprintf("https://canchapp.pe/cancha/%d", 7)))

	t.Log("Step 7: logout ends the session for later runs")
	require.NoError(t, inv.session.Logout(ctx))
	inv = newInvocation(t, backend.URL, rc)
	assert.False(t, inv.session.IsAuthenticated())

	t.Log("✅ Full booking journey passed")
}
