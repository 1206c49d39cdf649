package test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"github/chapool/go-relayer/internal/api"
)

// PerformRequest runs one request through the server's echo instance and
// returns the recorded response.
func PerformRequest(t *testing.T, s *api.Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)

	return rec
}

// ParseResponse decodes the recorded JSON body into target.
func ParseResponse(t *testing.T, rec *httptest.ResponseRecorder, target interface{}) {
	t.Helper()

	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), target))
}
