package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequests.WithLabelValues("GET", "/canchas/{id}", "200"))
	beforeErr := testutil.ToFloat64(APIRequests.WithLabelValues("GET", "/canchas/{id}", "error"))

	ObserveAPIRequest("GET", "/canchas/{id}", 200, 15*time.Millisecond)
	ObserveAPIRequest("GET", "/canchas/{id}", 0, time.Second)

	assert.Equal(t, before+1, testutil.ToFloat64(APIRequests.WithLabelValues("GET", "/canchas/{id}", "200")))
	assert.Equal(t, beforeErr+1, testutil.ToFloat64(APIRequests.WithLabelValues("GET", "/canchas/{id}", "error")))
}

func TestWizardCounters(t *testing.T) {
	before := testutil.ToFloat64(WizardTransitions.WithLabelValues("SelectingDate", "SelectingSlot"))
	ObserveTransition("SelectingDate", "SelectingSlot")
	assert.Equal(t, before+1, testutil.ToFloat64(WizardTransitions.WithLabelValues("SelectingDate", "SelectingSlot")))

	beforeRej := testutil.ToFloat64(WizardRejections.WithLabelValues("SelectingSlot", "SLOT_SELECTION_REJECTED"))
	ObserveRejection("SelectingSlot", "SLOT_SELECTION_REJECTED")
	assert.Equal(t, beforeRej+1, testutil.ToFloat64(WizardRejections.WithLabelValues("SelectingSlot", "SLOT_SELECTION_REJECTED")))
}

func TestSetAuthenticated(t *testing.T) {
	SetAuthenticated(true)
	assert.Equal(t, float64(1), testutil.ToFloat64(SessionsActive))
	SetAuthenticated(false)
	assert.Equal(t, float64(0), testutil.ToFloat64(SessionsActive))
}

func TestHandler_ServesMetrics(t *testing.T) {
	ObserveTransition("AwaitingPayment", "PaymentConfirmed")

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, string(body), "canchapp_wizard_transitions_total")
}
