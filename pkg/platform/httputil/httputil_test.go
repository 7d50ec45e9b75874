package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "usersearch/pkg/domain-errors"
)

func decode(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var body ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		status   int
		wantCode string
		wantDesc string
	}{
		{
			name:     "validation keeps its message",
			err:      dErrors.New(dErrors.CodeValidation, "searchBy must be one of username, fullname, nickname, ip, uid"),
			status:   http.StatusBadRequest,
			wantCode: "validation_error",
			wantDesc: "searchBy must be one of username, fullname, nickname, ip, uid",
		},
		{
			name:     "wrapped domain error is found",
			err:      fmt.Errorf("search: %w", dErrors.New(dErrors.CodeForbidden, "ip search requires privileges")),
			status:   http.StatusForbidden,
			wantCode: "forbidden",
			wantDesc: "ip search requires privileges",
		},
		{
			name:     "unavailable backend",
			err:      dErrors.Wrap(errors.New("dial tcp: refused"), dErrors.CodeUnavailable, "index unavailable"),
			status:   http.StatusServiceUnavailable,
			wantCode: "service_unavailable",
			wantDesc: "index unavailable",
		},
		{
			name:     "internal hides its description",
			err:      dErrors.New(dErrors.CodeInternal, "pq: relation users does not exist"),
			status:   http.StatusInternalServerError,
			wantCode: "internal_error",
		},
		{
			name:     "plain errors are internal",
			err:      errors.New("boom"),
			status:   http.StatusInternalServerError,
			wantCode: "internal_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteError(w, tt.err)

			assert.Equal(t, tt.status, w.Code)
			body := decode(t, w)
			assert.Equal(t, tt.wantCode, body.Error)
			assert.Equal(t, tt.wantDesc, body.ErrorDescription)
		})
	}
}

func TestWriteJSON(t *testing.T) {
	w := httptest.NewRecorder()
	WriteJSON(w, http.StatusOK, map[string]int{"matchCount": 2})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"matchCount":2}`, w.Body.String())
}
