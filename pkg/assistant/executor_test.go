package assistant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleAction() *PendingAction {
	return &PendingAction{
		ID:          "act-test01",
		Type:        ActionTypeTransaction,
		Description: "Pay the electric bill",
		Payload: TransactionPayload{
			FromAccount: "checking",
			Payee:       "City Power",
			AmountCents: 8250,
			Currency:    "USD",
		},
		Status:    ActionStatusApproved,
		RiskLevel: RiskHigh,
	}
}

func TestServiceExecutorPostsAction(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody actionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	e := NewServiceExecutor(server.URL, "secret-token")
	require.NoError(t, e.Execute(context.Background(), sampleAction()))

	assert.Equal(t, "/v1/actions/transaction", gotPath)
	assert.Equal(t, "Bearer secret-token", gotAuth)
	assert.Equal(t, "act-test01", gotBody.ID)
	assert.Equal(t, ActionTypeTransaction, gotBody.Type)
	assert.Equal(t, RiskHigh, gotBody.RiskLevel)
}

func TestServiceExecutorNoAuthHeaderWithoutKey(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	e := NewServiceExecutor(server.URL, "")
	require.NoError(t, e.Execute(context.Background(), sampleAction()))
	assert.Empty(t, gotAuth)
}

func TestServiceExecutorSurfacesServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(actionResponse{Error: "insufficient funds"})
	}))
	defer server.Close()

	e := NewServiceExecutor(server.URL, "")
	err := e.Execute(context.Background(), sampleAction())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insufficient funds")
}

func TestServiceExecutorStatusOnlyFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	e := NewServiceExecutor(server.URL, "")
	err := e.Execute(context.Background(), sampleAction())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestExecutorRegistryDispatch(t *testing.T) {
	calendar := &stubExecutor{}
	fallback := &stubExecutor{}
	r := NewExecutorRegistry(fallback)
	r.Register(ActionTypeCalendar, calendar)

	got, err := r.Get(ActionTypeCalendar)
	require.NoError(t, err)
	assert.Same(t, Executor(calendar), got)

	got, err = r.Get(ActionTypeEmail)
	require.NoError(t, err)
	assert.Same(t, Executor(fallback), got)
}

func TestExecutorRegistryNoFallback(t *testing.T) {
	r := NewExecutorRegistry(nil)
	_, err := r.Get(ActionTypeEmail)
	require.Error(t, err)
}
