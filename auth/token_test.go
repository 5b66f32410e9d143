package auth

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test_secret_for_unit_tests_only")

func TestToken_RoundTrip(t *testing.T) {
	req := require.New(t)

	token, err := GenerateToken("ops", testSecret, time.Hour)
	req.NoError(err)

	claims, err := VerifyToken(token, testSecret)
	req.NoError(err)
	req.Equal("ops", claims.Subject)
}

func TestToken_RejectsExpiredAndForeign(t *testing.T) {
	req := require.New(t)

	expired, err := GenerateToken("ops", testSecret, -time.Minute)
	req.NoError(err)
	_, err = VerifyToken(expired, testSecret)
	req.Error(err)

	foreign, err := GenerateToken("ops", []byte("another_secret_entirely_here"), time.Hour)
	req.NoError(err)
	_, err = VerifyToken(foreign, testSecret)
	req.Error(err)
}

func TestMiddleware(t *testing.T) {
	req := require.New(t)
	handler := Middleware(testSecret, slog.Default())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	// No token.
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/chat/sensitive", nil))
	req.Equal(http.StatusUnauthorized, recorder.Code)

	// Valid token.
	token, err := GenerateToken("ops", testSecret, time.Hour)
	req.NoError(err)
	request := httptest.NewRequest(http.MethodGet, "/api/chat/sensitive", nil)
	request.Header.Set("Authorization", "Bearer "+token)
	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	req.Equal(http.StatusNoContent, recorder.Code)
}
