package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/remitkit/remitroute/internal/assignment"
	pkgAuth "github.com/remitkit/remitroute/pkg/auth"
	"github.com/remitkit/remitroute/pkg/config"
	"github.com/remitkit/remitroute/pkg/enums"
	pkgerrors "github.com/remitkit/remitroute/pkg/errors"
	"github.com/remitkit/remitroute/pkg/logger"
	"github.com/remitkit/remitroute/pkg/remit"
)

type noopService struct{}

func (noopService) AvailableVendors(context.Context, uuid.UUID, uuid.UUID) (*assignment.AvailabilityDTO, error) {
	return &assignment.AvailabilityDTO{}, nil
}

func (noopService) RequestQuote(context.Context, uuid.UUID, uuid.UUID) (*remit.QuoteResult, error) {
	return &remit.QuoteResult{}, nil
}

func (noopService) ProcessOrder(context.Context, uuid.UUID, uuid.UUID, uuid.UUID) (*assignment.DispatchDTO, error) {
	return &assignment.DispatchDTO{}, nil
}

func (noopService) OrderStatus(context.Context, uuid.UUID) (*remit.StatusResult, error) {
	return &remit.StatusResult{}, nil
}

func (noopService) CancelOrder(context.Context, uuid.UUID, uuid.UUID, string) (*remit.Result, error) {
	return &remit.Result{}, nil
}

func (noopService) AmendOrder(context.Context, uuid.UUID, uuid.UUID, remit.Amendment) (*remit.Result, error) {
	return nil, pkgerrors.New(pkgerrors.CodeValidation, "amendment carries no changes")
}

func (noopService) ReleaseOrder(context.Context, uuid.UUID) error { return nil }

func testRouterConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "8080"},
		JWT: config.JWTConfig{
			Secret:            "router-test-secret",
			Issuer:            "remitroute-test",
			ExpirationMinutes: 15,
		},
	}
}

func testRouter() http.Handler {
	logg := logger.New(logger.Options{ServiceName: "router-test", Level: zerolog.Disabled, Output: io.Discard})
	return NewRouter(testRouterConfig(), logg, nil, nil, noopService{}, nil)
}

func mintToken(t *testing.T, role enums.ActorRole) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(testRouterConfig().JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   role,
	})
	require.NoError(t, err)
	return token
}

func TestHealthLiveUnauthenticated(t *testing.T) {
	rec := httptest.NewRecorder()
	testRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "test", rec.Header().Get("X-RemitRoute-Env"))
}

func TestRemitRoutesRequireAuth(t *testing.T) {
	paths := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/v1/remit/orders/" + uuid.NewString() + "/assign"},
		{http.MethodGet, "/api/v1/remit/orders/" + uuid.NewString() + "/status"},
		{http.MethodPost, "/api/v1/remit/orders/" + uuid.NewString() + "/release"},
	}
	for _, tc := range paths {
		rec := httptest.NewRecorder()
		testRouter().ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, tc.path)
	}
}

func TestRemitRouteWithToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/remit/orders/"+uuid.NewString()+"/status", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, enums.ActorRoleAgent))
	rec := httptest.NewRecorder()
	testRouter().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReleaseRequiresSupervisor(t *testing.T) {
	path := "/api/v1/remit/orders/" + uuid.NewString() + "/release"

	req := httptest.NewRequest(http.MethodPost, path, nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, enums.ActorRoleAgent))
	rec := httptest.NewRecorder()
	testRouter().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodPost, path, nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, enums.ActorRoleSupervisor))
	rec = httptest.NewRecorder()
	testRouter().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
