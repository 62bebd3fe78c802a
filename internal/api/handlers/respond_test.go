package handlers

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wonny/magicformula/internal/contracts"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("budget: %w", contracts.ErrInvalidArgument), http.StatusBadRequest},
		{fmt.Errorf("%q: %w", "Crypto", contracts.ErrUnknownSector), http.StatusBadRequest},
		{contracts.ErrHoldingNotFound, http.StatusNotFound},
		{contracts.ErrDuplicateHolding, http.StatusConflict},
		{fmt.Errorf("quote: %w", contracts.ErrUpstreamUnavailable), http.StatusBadGateway},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}

func TestRespondErr_HidesInternalErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	respondErr(rec, errors.New("pq: password authentication failed"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestRespondJSON_UnencodableValue(t *testing.T) {
	rec := httptest.NewRecorder()
	respondJSON(rec, http.StatusOK, map[string]float64{"earningsYield": math.Inf(1)})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, rec.Body.String())
}

func TestScreenRequestFromQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/ws/screener?sector=Energy&limit=5&investmentAmount=2500&concentrationLimit=0.1", nil)

	got, err := screenRequestFromQuery(req)
	assert.NoError(t, err)
	assert.Equal(t, "Energy", got.Sector)
	assert.Equal(t, 5, got.Limit)
	assert.Equal(t, 2500.0, got.InvestmentAmount)
	assert.Equal(t, 0.1, *got.ConcentrationLimit)

	req = httptest.NewRequest(http.MethodGet, "/ws/screener?limit=5", nil)
	_, err = screenRequestFromQuery(req)
	assert.ErrorIs(t, err, contracts.ErrInvalidArgument)
}
