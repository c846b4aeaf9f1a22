package profile

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"canchapp/internal/common/errors"
	"canchapp/internal/common/logger"
	"canchapp/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mock Implementations
// ==========================

type MockAPI struct {
	mock.Mock
}

func (m *MockAPI) Get(ctx context.Context, path string, out interface{}) error {
	args := m.Called(path)
	if fill, ok := args.Get(0).(func(interface{})); ok && fill != nil {
		fill(out)
	}
	return args.Error(1)
}

func (m *MockAPI) Post(ctx context.Context, path string, body, out interface{}) error {
	args := m.Called(path, body)
	if fill, ok := args.Get(0).(func(interface{})); ok && fill != nil {
		fill(out)
	}
	return args.Error(1)
}

func (m *MockAPI) Put(ctx context.Context, path string, body, out interface{}) error {
	args := m.Called(path, body)
	if fill, ok := args.Get(0).(func(interface{})); ok && fill != nil {
		fill(out)
	}
	return args.Error(1)
}

func (m *MockAPI) Delete(ctx context.Context, path string, out interface{}) error {
	args := m.Called(path)
	return args.Error(0)
}

func (m *MockAPI) URL(path string) string { return "http://test" + path }

type MockSession struct {
	mock.Mock
}

func (m *MockSession) RefreshUser(ctx context.Context) error {
	return m.Called().Error(0)
}

func fillMessage(msg string) func(interface{}) {
	return func(out interface{}) { out.(*models.MessageResponse).Message = msg }
}

var now = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, api *MockAPI, sess SessionRefresher) *Service {
	return NewService(api, sess, logger.NewTestLogger(t), WithClock(func() time.Time { return now }))
}

// ==========================
// Favorites
// ==========================

func favoriteSet(t *testing.T, api *MockAPI) *FavoriteSet {
	api.On("Get", "/favoritos").Return(func(out interface{}) {
		*out.(*[]models.Court) = []models.Court{{ID: 1, Name: "Cancha 1"}, {ID: 2, Name: "Cancha 2"}}
	}, nil).Once()
	f, err := newTestService(t, api, nil).Favorites(context.Background())
	require.NoError(t, err)
	return f
}

func TestFavoriteSet_ToggleAddsAndRemoves(t *testing.T) {
	api := new(MockAPI)
	f := favoriteSet(t, api)
	api.On("Post", "/favoritos", models.AddFavoriteRequest{CourtID: 5}).Return(nil, nil)
	api.On("Delete", "/favoritos/1").Return(nil)

	on, err := f.Toggle(context.Background(), 5)
	require.NoError(t, err)
	assert.True(t, on)
	assert.True(t, f.Contains(5))

	on, err = f.Toggle(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, on)
	assert.False(t, f.Contains(1))
	assert.Len(t, f.Courts(), 1)
	assert.Equal(t, 2, f.Courts()[0].ID)
}

func TestFavoriteSet_ToggleRevertsOnFailure(t *testing.T) {
	api := new(MockAPI)
	f := favoriteSet(t, api)
	api.On("Post", "/favoritos", mock.Anything).
		Return(nil, errors.NewBackendUnreachableError("POST", "/favoritos", context.DeadlineExceeded))
	api.On("Delete", "/favoritos/2").
		Return(errors.NewRequestFailedError("DELETE", "/favoritos/2", 500, "No se pudo quitar"))

	on, err := f.Toggle(context.Background(), 7)
	assert.Error(t, err)
	assert.False(t, on)
	assert.False(t, f.Contains(7))

	on, err = f.Toggle(context.Background(), 2)
	assert.EqualError(t, err, "No se pudo quitar")
	assert.True(t, on)
	assert.True(t, f.Contains(2))
	assert.Len(t, f.Courts(), 2)
}

func TestFavoriteSet_OptimisticStateVisibleDuringCall(t *testing.T) {
	api := new(MockAPI)
	f := favoriteSet(t, api)

	inFlight := make(chan struct{})
	release := make(chan struct{})
	api.On("Post", "/favoritos", mock.Anything).Run(func(mock.Arguments) {
		close(inFlight)
		<-release
	}).Return(nil, errors.NewRequestFailedError("POST", "/favoritos", 500, "fail"))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = f.Toggle(context.Background(), 9)
	}()

	<-inFlight
	assert.True(t, f.Contains(9))
	close(release)
	wg.Wait()
	assert.False(t, f.Contains(9))
}

func TestFavoriteSet_Remove(t *testing.T) {
	api := new(MockAPI)
	f := favoriteSet(t, api)
	api.On("Delete", "/favoritos/1").Return(nil)

	require.NoError(t, f.Remove(context.Background(), 1))
	assert.False(t, f.Contains(1))
	assert.Len(t, f.Courts(), 1)
	api.AssertNumberOfCalls(t, "Get", 1)
}

// ==========================
// Reviews
// ==========================

func TestReviews(t *testing.T) {
	api := new(MockAPI)
	api.On("Get", "/resenas/mis-resenas").Return(func(out interface{}) {
		*out.(*[]models.Review) = []models.Review{{ID: 4, Rating: 5, CourtName: "El Camp Nou de Surco"}}
	}, nil)
	api.On("Put", "/resenas/4", models.UpdateReviewRequest{Rating: 4, Comment: "Buen grass"}).
		Return(fillMessage("Reseña actualizada"), nil)
	api.On("Delete", "/resenas/4").Return(nil)
	s := newTestService(t, api, nil)
	ctx := context.Background()

	reviews, err := s.MyReviews(ctx)
	require.NoError(t, err)
	assert.Equal(t, "El Camp Nou de Surco", reviews[0].CourtName)

	msg, err := s.UpdateReview(ctx, 4, 4, " Buen grass ")
	require.NoError(t, err)
	assert.Equal(t, "Reseña actualizada", msg)

	_, err = s.UpdateReview(ctx, 4, 0, "ok")
	assert.EqualError(t, err, "rating must be between 1 and 5")
	_, err = s.UpdateReview(ctx, 4, 3, "")
	assert.EqualError(t, err, "comment is required")

	require.NoError(t, s.DeleteReview(ctx, 4))
}

// ==========================
// Reservations
// ==========================

func confirmedReservation() models.Reservation {
	return models.Reservation{
		ID:         31,
		CourtID:    2,
		CourtName:  "El Camp Nou de Surco",
		StartsAt:   "2026-10-22 18:00:00",
		EndsAt:     "2026-10-22 19:00:00",
		TotalPrice: decimal.RequireFromString("120.00"),
		Status:     models.ReservationConfirmed,
	}
}

func TestActions(t *testing.T) {
	r := confirmedReservation()
	assert.Equal(t, []Action{ActionModify, ActionCancel, ActionShare}, Actions(r))

	r.Status = models.ReservationCompleted
	assert.Equal(t, []Action{ActionReview}, Actions(r))

	r.Status = models.ReservationCancelled
	assert.Empty(t, Actions(r))
	r.Status = models.ReservationPending
	assert.Empty(t, Actions(r))
}

func TestListAndCancelReservations(t *testing.T) {
	api := new(MockAPI)
	api.On("Get", "/reservas").Return(func(out interface{}) {
		*out.(*[]models.Reservation) = []models.Reservation{confirmedReservation()}
	}, nil)
	api.On("Put", "/reservas/31/cancelar", struct{}{}).Return(fillMessage("Reserva cancelada"), nil)
	s := newTestService(t, api, nil)

	list, err := s.ListReservations(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 1)

	msg, err := s.CancelReservation(context.Background(), 31)
	require.NoError(t, err)
	assert.Equal(t, "Reserva cancelada", msg)
}

func TestModifyReservation(t *testing.T) {
	api := new(MockAPI)
	api.On("Get", "/canchas/2/disponibilidad?fecha=2026-10-23").Return(func(out interface{}) {
		*out.(*models.Availability) = models.Availability{"19:00": models.SlotAvailable, "20:00": models.SlotOccupied}
	}, nil)
	api.On("Put", "/reservas/31", mock.MatchedBy(func(req models.ModifyReservationRequest) bool {
		return req.StartsAt == "2026-10-23 19:00:00" &&
			req.EndsAt == "2026-10-23 20:00:00" &&
			req.TotalPrice.Equal(decimal.NewFromInt(120))
	})).Return(fillMessage("Reserva modificada"), nil)
	s := newTestService(t, api, nil)
	day := time.Date(2026, 10, 23, 0, 0, 0, 0, time.UTC)

	msg, err := s.ModifyReservation(context.Background(), confirmedReservation(), day, "19:00")
	require.NoError(t, err)
	assert.Equal(t, "Reserva modificada", msg)

	_, err = s.ModifyReservation(context.Background(), confirmedReservation(), day, "20:00")
	assert.True(t, errors.IsCode(err, errors.ErrCodeSlotSelectionRejected))
	api.AssertNumberOfCalls(t, "Put", 1)
}

func TestModifyReservation_Rejections(t *testing.T) {
	api := new(MockAPI)
	s := newTestService(t, api, nil)
	ctx := context.Background()

	_, err := s.ModifyReservation(ctx, confirmedReservation(), now.AddDate(0, 0, -1), "10:00")
	assert.EqualError(t, err, "date not available, choose another")

	done := confirmedReservation()
	done.Status = models.ReservationCompleted
	_, err = s.ModifyReservation(ctx, done, now, "10:00")
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidationFailed))

	api.AssertNotCalled(t, "Get", mock.Anything)
}

func TestShareText(t *testing.T) {
	text := ShareText(confirmedReservation(), "https://canchapp.pe/")

	assert.True(t, strings.HasPrefix(text, "You're invited to play!"))
	assert.Contains(t, text, "Court: El Camp Nou de Surco")
	assert.Contains(t, text, "Day: Thursday, 22 October")
	assert.Contains(t, text, "Time: 18:00")
	assert.True(t, strings.HasSuffix(text, "See the court here: https://canchapp.pe/cancha/2"))
}

// ==========================
// Personal data
// ==========================

func TestPersonalData(t *testing.T) {
	api := new(MockAPI)
	sess := new(MockSession)
	data := models.PersonalData{FirstName: "Lucía", LastName: "Pérez", Document: "45678912", Phone: "987654321", ReceiveNotifications: true}
	api.On("Get", "/profile").Return(func(out interface{}) {
		*out.(*models.User) = models.User{ID: 10, FirstName: "Lucia", Email: "lucia@mail.pe"}
	}, nil)
	api.On("Put", "/profile", data).Return(fillMessage("Perfil actualizado"), nil)
	sess.On("RefreshUser").Return(nil).Once()
	s := newTestService(t, api, sess)

	u, err := s.GetPersonalData(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "lucia@mail.pe", u.Email)

	msg, err := s.UpdatePersonalData(context.Background(), data)
	require.NoError(t, err)
	assert.Equal(t, "Perfil actualizado", msg)
	sess.AssertExpectations(t)
}

func TestUpdatePersonalData_RefreshFailureIsNotAnError(t *testing.T) {
	api := new(MockAPI)
	sess := new(MockSession)
	api.On("Put", "/profile", mock.Anything).Return(fillMessage("ok"), nil)
	sess.On("RefreshUser").Return(errors.NewNotAuthenticatedError("expired"))
	s := newTestService(t, api, sess)

	_, err := s.UpdatePersonalData(context.Background(), models.PersonalData{FirstName: "Ana"})
	assert.NoError(t, err)
}

func TestUpdatePersonalData_FailureSkipsRefresh(t *testing.T) {
	api := new(MockAPI)
	sess := new(MockSession)
	api.On("Put", "/profile", mock.Anything).Return(nil, errors.NewRequestFailedError("PUT", "/profile", 400, "Documento inválido"))
	s := newTestService(t, api, sess)

	_, err := s.UpdatePersonalData(context.Background(), models.PersonalData{})
	assert.EqualError(t, err, "Documento inválido")
	sess.AssertNotCalled(t, "RefreshUser")
}
