package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondErrorMapsSentinels(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		typ    string
		detail string
	}{
		{"not found", fmt.Errorf("%w: comparison %q", ErrNotFound, "x"), http.StatusNotFound, "/problems/not-found", `resource not found: comparison "x"`},
		{"validation", fmt.Errorf("locale: %w", ErrValidation), http.StatusBadRequest, "/problems/validation", "locale: validation failed"},
		{"unavailable", ErrUnavailable, http.StatusServiceUnavailable, "/problems/unavailable", "dependency unavailable"},
		{"internal", errors.New("boom"), http.StatusInternalServerError, "/problems/internal", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			RespondError(rr, tc.err)

			require.Equal(t, tc.status, rr.Code)
			assert.Equal(t, "application/problem+json", rr.Header().Get("Content-Type"))
			var body ProblemDetail
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.Equal(t, tc.status, body.Status)
			assert.Equal(t, tc.typ, body.Type)
			assert.Equal(t, tc.detail, body.Detail)
			assert.Equal(t, tc.status, StatusOf(tc.err))
		})
	}
}

func TestJSON(t *testing.T) {
	rr := httptest.NewRecorder()
	JSON(rr, http.StatusAccepted, map[string]int{"version": 2})

	assert.Equal(t, http.StatusAccepted, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	assert.JSONEq(t, `{"version":2}`, rr.Body.String())
}
