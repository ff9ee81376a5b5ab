package httputil

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/platinummonkey/proto2openrpc/pkg/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSON(t *testing.T) {
	w := httptest.NewRecorder()

	err := WriteJSON(w, http.StatusOK, map[string]string{"message": "success"})

	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"message":"success"}`, w.Body.String())
}

func TestWriteBytes(t *testing.T) {
	w := httptest.NewRecorder()

	require.NoError(t, WriteBytes(w, http.StatusOK, "application/yaml", []byte("a: 1\n")))

	assert.Equal(t, "application/yaml", w.Header().Get("Content-Type"))
	assert.Equal(t, "a: 1\n", w.Body.String())
}

func TestWriteErrors(t *testing.T) {
	tests := []struct {
		name       string
		write      func(w http.ResponseWriter)
		wantStatus int
		wantError  string
	}{
		{
			name:       "error",
			write:      func(w http.ResponseWriter) { WriteError(w, http.StatusConflict, errors.New("test error")) },
			wantStatus: http.StatusConflict,
			wantError:  "test error",
		},
		{
			name:       "bad request",
			write:      func(w http.ResponseWriter) { WriteBadRequest(w, "invalid input") },
			wantStatus: http.StatusBadRequest,
			wantError:  "invalid input",
		},
		{
			name:       "too large",
			write:      func(w http.ResponseWriter) { WriteRequestTooLarge(w, "too big") },
			wantStatus: http.StatusRequestEntityTooLarge,
			wantError:  "too big",
		},
		{
			name:       "internal",
			write:      func(w http.ResponseWriter) { WriteInternalError(w, errors.New("boom")) },
			wantStatus: http.StatusInternalServerError,
			wantError:  "boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.write(w)

			assert.Equal(t, tt.wantStatus, w.Code)
			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantError, resp.Error)
		})
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = observability.GetRequestID(r.Context())
		WriteBadRequest(w, "nope")
	}))

	t.Run("generates uuid", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		id := w.Header().Get(RequestIDHeader)
		_, err := uuid.Parse(id)
		assert.NoError(t, err)
		assert.Equal(t, id, seen)

		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, id, resp.RequestID)
	})

	t.Run("keeps incoming id", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set(RequestIDHeader, "abc-123")
		handler.ServeHTTP(w, r)

		assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
		assert.Equal(t, "abc-123", seen)
	})
}

func TestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := observability.NewLogger("info", observability.JSONFormat, &buf)

	handler := Chain(RequestIDMiddleware, LoggingMiddleware(logger))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		observability.LoggerFromContext(r.Context()).Info("inside")
		w.WriteHeader(http.StatusAccepted)
	}))

	r := httptest.NewRequest(http.MethodPost, "/v1/convert", nil)
	r.Header.Set(RequestIDHeader, "req-9")
	handler.ServeHTTP(httptest.NewRecorder(), r)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var inside, done map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &inside))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &done))

	assert.Equal(t, "inside", inside["msg"])
	assert.Equal(t, "req-9", inside["request_id"])
	assert.Equal(t, "/v1/convert", inside["path"])

	assert.Equal(t, "Request handled", done["msg"])
	assert.Equal(t, float64(http.StatusAccepted), done["status"])
	assert.Equal(t, "POST", done["method"])
}

func TestRecoveryMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := observability.NewLogger("info", observability.JSONFormat, &buf)

	handler := RecoveryMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("kaboom")
	}))

	w := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, buf.String(), "kaboom")
}

func TestMaxBytesMiddleware_ReadBody(t *testing.T) {
	var readErr error
	var body []byte
	handler := MaxBytesMiddleware(8)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, readErr = ReadBody(r)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", strings.NewReader("small")))
	require.NoError(t, readErr)
	assert.Equal(t, "small", string(body))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", strings.NewReader("definitely too large")))
	require.Error(t, readErr)
	assert.ErrorIs(t, readErr, ErrBodyTooLarge)
}

func TestChainOrder(t *testing.T) {
	var order []string
	mw := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	Chain(mw("a"), mw("b"), mw("c"))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	})).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, []string{"a", "b", "c", "handler"}, order)
}

func TestParseQuery(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?title=Hello&pretty=true&bad=maybe", nil)

	assert.Equal(t, "Hello", ParseQueryString(r, "title", "x"))
	assert.Equal(t, "x", ParseQueryString(r, "missing", "x"))

	pretty, err := ParseQueryBool(r, "pretty", false)
	require.NoError(t, err)
	assert.True(t, pretty)

	def, err := ParseQueryBool(r, "missing", true)
	require.NoError(t, err)
	assert.True(t, def)

	_, err = ParseQueryBool(r, "bad", false)
	assert.Error(t, err)
}
