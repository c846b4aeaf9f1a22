package catalog

import (
	"context"
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
// Mock API Implementation
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
	return args.Error(1)
}

func (m *MockAPI) Delete(ctx context.Context, path string, out interface{}) error {
	args := m.Called(path)
	return args.Error(1)
}

func (m *MockAPI) URL(path string) string { return "http://test" + path }

func fillCourts(courts ...models.Court) func(interface{}) {
	return func(out interface{}) { *out.(*[]models.Court) = courts }
}

func fillSports(types ...models.SportType) func(interface{}) {
	return func(out interface{}) { *out.(*[]models.SportType) = types }
}

func ptr(f float64) *float64 { return &f }

func newTestService(t *testing.T, api *MockAPI) *Service {
	return NewService(api, logger.NewTestLogger(t))
}

// ==========================
// Listing
// ==========================

func TestListCourts_Filter(t *testing.T) {
	api := new(MockAPI)
	api.On("Get", "/canchas?deporte=Futbol&ubicacion=Surco").
		Return(fillCourts(models.Court{ID: 2, Name: "El Camp Nou de Surco", Price: decimal.NewFromInt(120)}), nil)
	api.On("Get", "/canchas").Return(fillCourts(), nil)
	s := newTestService(t, api)

	courts, err := s.ListCourts(context.Background(), models.CourtFilter{District: "Surco", Sport: "Futbol"})
	require.NoError(t, err)
	require.Len(t, courts, 1)
	assert.Equal(t, "El Camp Nou de Surco", courts[0].Name)

	courts, err = s.ListCourts(context.Background(), models.CourtFilter{})
	require.NoError(t, err)
	assert.Empty(t, courts)
}

func TestGetCourt(t *testing.T) {
	api := new(MockAPI)
	api.On("Get", "/canchas/2").Return(func(out interface{}) {
		*out.(*models.Court) = models.Court{ID: 2, Name: "El Camp Nou de Surco", IsFavorite: true}
	}, nil)
	api.On("Get", "/canchas/99").Return(nil, errors.NewRequestFailedError("GET", "/canchas/99", 404, "Cancha no encontrada"))
	s := newTestService(t, api)

	c, err := s.GetCourt(context.Background(), 2)
	require.NoError(t, err)
	assert.True(t, c.IsFavorite)

	_, err = s.GetCourt(context.Background(), 99)
	assert.EqualError(t, err, "Cancha no encontrada")
}

func TestCatalogs(t *testing.T) {
	api := new(MockAPI)
	api.On("Get", "/catalogos/tipos-deporte").Return(fillSports(models.SportType{ID: 1, Name: "Fútbol"}), nil)
	api.On("Get", "/catalogos/tipos-superficie").Return(func(out interface{}) {
		*out.(*[]models.SurfaceType) = []models.SurfaceType{{ID: 3, Name: "Grass sintético"}}
	}, nil)
	s := newTestService(t, api)

	sports, err := s.SportTypes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Fútbol", sports[0].Name)

	surfaces, err := s.SurfaceTypes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, surfaces[0].ID)
}

// ==========================
// Home page
// ==========================

func TestLoadHome_FetchesInParallel(t *testing.T) {
	api := new(MockAPI)
	courtsStarted := make(chan struct{})
	api.On("Get", "/catalogos/tipos-deporte").Run(func(mock.Arguments) {
		select {
		case <-courtsStarted:
		case <-time.After(2 * time.Second):
			t.Error("sport types were not fetched alongside courts")
		}
	}).Return(fillSports(models.SportType{ID: 1, Name: "Fútbol"}), nil)
	api.On("Get", "/canchas").Run(func(mock.Arguments) {
		close(courtsStarted)
	}).Return(fillCourts(models.Court{ID: 1}, models.Court{ID: 2}), nil)
	s := newTestService(t, api)

	home, err := s.LoadHome(context.Background(), models.CourtFilter{})
	require.NoError(t, err)
	assert.Len(t, home.SportTypes, 1)
	assert.Len(t, home.Courts, 2)
}

func TestLoadHome_SportTypeFailureTolerated(t *testing.T) {
	api := new(MockAPI)
	api.On("Get", "/catalogos/tipos-deporte").Return(nil, errors.NewBackendUnreachableError("GET", "/catalogos/tipos-deporte", context.DeadlineExceeded))
	api.On("Get", "/canchas").Return(fillCourts(models.Court{ID: 1}), nil)
	s := newTestService(t, api)

	home, err := s.LoadHome(context.Background(), models.CourtFilter{})
	require.NoError(t, err)
	assert.Empty(t, home.SportTypes)
	assert.Len(t, home.Courts, 1)
}

func TestLoadHome_CourtFailureFails(t *testing.T) {
	api := new(MockAPI)
	api.On("Get", "/catalogos/tipos-deporte").Return(fillSports(), nil)
	api.On("Get", "/canchas").Return(nil, errors.NewRequestFailedError("GET", "/canchas", 500, "Error del servidor"))
	s := newTestService(t, api)

	_, err := s.LoadHome(context.Background(), models.CourtFilter{})
	assert.EqualError(t, err, "Error del servidor")
}

// ==========================
// Distance sorting
// ==========================

func TestSortByDistance(t *testing.T) {
	courts := []models.Court{
		{ID: 1, Name: "no coords"},
		{ID: 2, Name: "far", Lat: ptr(-12.20), Lng: ptr(-77.00)},
		{ID: 3, Name: "near", Lat: ptr(-12.11), Lng: ptr(-77.03)},
		{ID: 4, Name: "lng only", Lng: ptr(-77.00)},
	}

	sorted := SortByDistance(courts, -12.10, -77.03)

	ids := make([]int, 0, len(sorted))
	for _, c := range sorted {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []int{3, 2, 1, 4}, ids)
	require.NotNil(t, sorted[0].Distance)
	assert.Equal(t, 1.1, *sorted[0].Distance)
	assert.Equal(t, 11.6, *sorted[1].Distance)
	assert.Nil(t, sorted[2].Distance)

	// the input is left untouched
	assert.Nil(t, courts[1].Distance)
	assert.Equal(t, 1, courts[0].ID)
}

// ==========================
// Reviews
// ==========================

func TestSubmitReview(t *testing.T) {
	api := new(MockAPI)
	api.On("Post", "/resenas", models.CreateReviewRequest{ReservationID: 2, Rating: 5, Comment: "Excelente grass"}).
		Return(func(out interface{}) { out.(*models.MessageResponse).Message = "Reseña creada" }, nil)
	s := newTestService(t, api)

	msg, err := s.SubmitReview(context.Background(), models.CreateReviewRequest{ReservationID: 2, Rating: 5, Comment: "  Excelente grass "})
	require.NoError(t, err)
	assert.Equal(t, "Reseña creada", msg)
}

func TestSubmitReview_Validation(t *testing.T) {
	tests := []struct {
		name    string
		form    models.CreateReviewRequest
		wantErr string
	}{
		{"no rating", models.CreateReviewRequest{ReservationID: 2, Comment: "ok"}, "rating must be between 1 and 5"},
		{"rating too high", models.CreateReviewRequest{ReservationID: 2, Rating: 6, Comment: "ok"}, "rating must be between 1 and 5"},
		{"blank comment", models.CreateReviewRequest{ReservationID: 2, Rating: 4, Comment: "   "}, "comment is required"},
		{"no reservation", models.CreateReviewRequest{Rating: 4, Comment: "ok"}, "reservation is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := new(MockAPI)
			s := newTestService(t, api)

			_, err := s.SubmitReview(context.Background(), tt.form)
			assert.EqualError(t, err, tt.wantErr)
			api.AssertNotCalled(t, "Post", mock.Anything, mock.Anything)
		})
	}
}
