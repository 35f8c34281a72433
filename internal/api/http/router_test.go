package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/incident-service/internal/api/http"
	"github.com/spec-kit/incident-service/internal/api/http/handlers"
	"github.com/spec-kit/incident-service/internal/api/validation"
	"github.com/spec-kit/incident-service/internal/auth"
	"github.com/spec-kit/incident-service/internal/classifier"
	"github.com/spec-kit/incident-service/internal/config"
	"github.com/spec-kit/incident-service/internal/domain"
	"github.com/spec-kit/incident-service/internal/observability"
	"github.com/spec-kit/incident-service/internal/repository"
	"github.com/spec-kit/incident-service/internal/service"
)

type predictorFunc func(ctx context.Context, description string) (classifier.Prediction, error)

func (f predictorFunc) Predict(ctx context.Context, description string) (classifier.Prediction, error) {
	return f(ctx, description)
}

type testServer struct {
	app    *fiber.App
	store  *repository.Store
	tokens *auth.TokenManager
}

type serverOptions struct {
	predictor   classifier.Predictor
	enforceAuth bool
	legacy      bool
}

func newTestServer(t *testing.T, opts serverOptions) *testServer {
	t.Helper()
	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	store := repository.NewMemoryStore()
	cfg := config.Config{Auth: config.AuthConfig{JWTSecret: "test-secret", AccessTokenTTLMinutes: 5}}

	resolver := service.NewReferenceResolver(store.Users, logger)
	incidentService := service.NewIncidentService(service.IncidentDependencies{
		IncidentRepo: store.Incidents,
		Resolver:     resolver,
		Classifier:   classifier.NewGateway(opts.predictor, logger, metrics),
	})
	assignmentService := service.NewAssignmentService(service.AssignmentDependencies{
		IncidentRepo:     store.Incidents,
		UserRepo:         store.Users,
		Logger:           logger,
		StrictTakeCharge: !opts.legacy,
	})
	authService := service.NewAuthService(cfg, service.AuthDependencies{UserRepo: store.Users})
	userService := service.NewUserService(service.UserDependencies{UserRepo: store.Users, Hasher: authService.Hasher()})
	validate := validation.New()

	routes := httptransport.RouteConfig{
		Health:      handlers.NewHealthHandler("incident-service", "test", "memory", store, nil),
		Incidents:   handlers.NewIncidentsHandler(incidentService, assignmentService, validate),
		Users:       handlers.NewUsersHandler(userService, authService, validate),
		Technicians: handlers.NewTechniciansHandler(service.NewTechnicianService(store.Users)),
	}
	if opts.enforceAuth {
		routes.AuthMiddleware = auth.NewAuthMiddleware(authService.TokenManager(), store.Users)
	}

	app := httptransport.NewServer(httptransport.ServerConfig{
		AppName: "incident-service",
		Logger:  logger,
		Metrics: metrics,
		Routes:  routes,
	})
	return &testServer{app: app, store: store, tokens: authService.TokenManager()}
}

func (s *testServer) do(t *testing.T, method, target string, body any, headers ...string) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	payload, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, payload
}

func (s *testServer) createUser(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	resp, payload := s.do(t, http.MethodPost, "/api/users", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(payload))
	return decodeObject(t, payload)
}

func decodeObject(t *testing.T, payload []byte) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(payload, &out), string(payload))
	return out
}

func decodeList(t *testing.T, payload []byte) []map[string]any {
	t.Helper()
	var out []map[string]any
	require.NoError(t, json.Unmarshal(payload, &out), string(payload))
	return out
}

func errorCode(t *testing.T, payload []byte) string {
	t.Helper()
	body := decodeObject(t, payload)
	envelope, ok := body["error"].(map[string]any)
	require.True(t, ok, string(payload))
	return envelope["code"].(string)
}

func TestIncidentLifecycle(t *testing.T) {
	srv := newTestServer(t, serverOptions{predictor: predictorFunc(func(_ context.Context, description string) (classifier.Prediction, error) {
		return classifier.Prediction{Category: "HARDWARE", Priority: 3}, nil
	})})
	reporter := srv.createUser(t, map[string]any{"username": "rita", "password": "pw", "email": "rita@example.com"})

	resp, payload := srv.do(t, http.MethodPost, "/api/incidents", map[string]any{
		"title":       "Printer",
		"description": "printer jammed",
		"reporter":    map[string]any{"id": reporter["id"]},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(payload))
	created := decodeObject(t, payload)
	assert.Equal(t, "HARDWARE", created["category"])
	assert.EqualValues(t, 3, created["priority"])
	assert.Equal(t, "Open", created["status"])
	assert.NotEmpty(t, created["creationDate"])
	assert.Equal(t, "rita", created["reporter"].(map[string]any)["username"])
	assert.NotContains(t, created["reporter"], "password")
	assert.Nil(t, created["assignedTechnician"])

	id := created["id"].(string)

	resp, payload = srv.do(t, http.MethodGet, "/api/incidents/"+id, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "rita", decodeObject(t, payload)["reporter"].(map[string]any)["username"])

	resp, payload = srv.do(t, http.MethodPut, "/api/incidents/"+id, map[string]any{
		"title":    "Printer",
		"status":   "in_progress",
		"priority": 1,
		"category": "hardware",
		"reporter": map[string]any{"id": "ghost"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(payload))
	updated := decodeObject(t, payload)
	assert.Equal(t, "In Progress", updated["status"])
	assert.Equal(t, created["creationDate"], updated["creationDate"])
	assert.Equal(t, map[string]any{"id": "ghost"}, updated["reporter"])

	resp, payload = srv.do(t, http.MethodGet, "/api/incidents/status/IN%20PROGRESS", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decodeList(t, payload), 1)

	resp, payload = srv.do(t, http.MethodGet, "/api/incidents/priority/1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decodeList(t, payload), 1)

	resp, payload = srv.do(t, http.MethodGet, "/api/incidents/category/Hardware", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decodeList(t, payload), 1)

	resp, payload = srv.do(t, http.MethodGet, "/api/incidents/reporter/ghost", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decodeList(t, payload), 1)

	resp, _ = srv.do(t, http.MethodDelete, "/api/incidents/"+id, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = srv.do(t, http.MethodDelete, "/api/incidents/"+id, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, payload = srv.do(t, http.MethodGet, "/api/incidents/"+id, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", errorCode(t, payload))

	resp, payload = srv.do(t, http.MethodGet, "/api/incidents", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decodeList(t, payload))
}

func TestCreateIncidentClassifierDown(t *testing.T) {
	srv := newTestServer(t, serverOptions{})

	resp, payload := srv.do(t, http.MethodPost, "/api/incidents", map[string]any{"title": "?", "description": "odd"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(payload))
	created := decodeObject(t, payload)
	assert.Equal(t, "GENERAL", created["category"])
	assert.EqualValues(t, 2, created["priority"])
}

func TestUpdatedRecordsStayReachable(t *testing.T) {
	srv := newTestServer(t, serverOptions{})
	ctx := context.Background()

	resp, payload := srv.do(t, http.MethodPost, "/api/incidents", map[string]any{"title": "VPN", "priority": 2})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(payload))
	id := decodeObject(t, payload)["id"].(string)

	resp, payload = srv.do(t, http.MethodPut, "/api/incidents/"+id, map[string]any{"title": "VPN", "priority": 1, "status": "in_progress"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(payload))

	resp, payload = srv.do(t, http.MethodGet, "/api/incidents/priority/1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decodeList(t, payload), 1)

	resp, payload = srv.do(t, http.MethodGet, "/api/incidents/status/In%20Progress", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decodeList(t, payload), 1)

	priority := 1
	stored, err := srv.store.Incidents.List(ctx, repository.IncidentFilter{Priority: &priority})
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, id, stored[0].ID)

	user := srv.createUser(t, map[string]any{"username": "rita", "password": "pw", "email": "rita@example.com"})
	userID := user["id"].(string)
	resp, payload = srv.do(t, http.MethodPut, "/api/users/"+userID, map[string]any{"email": "rita@corp.example"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(payload))

	srv.do(t, http.MethodGet, "/api/incidents/category/NETWORK", nil)

	users, err := srv.store.Users.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, userID, users[0].ID)
	assert.Equal(t, "rita@corp.example", users[0].Email)
}

func TestIncidentValidation(t *testing.T) {
	srv := newTestServer(t, serverOptions{})

	resp, payload := srv.do(t, http.MethodGet, "/api/incidents/priority/high", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(t, payload))

	resp, payload = srv.do(t, http.MethodPut, "/api/incidents/absent", map[string]any{"title": "x"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", errorCode(t, payload))

	resp, _ = srv.do(t, http.MethodPost, "/api/incidents", map[string]any{"priority": -1})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	req := httptest.NewRequest(http.MethodPost, "/api/incidents", strings.NewReader("{"))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	rawResp, err := srv.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, rawResp.StatusCode)

	resp, payload = srv.do(t, http.MethodGet, "/api/nowhere", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", errorCode(t, payload))
}

func TestBySpecialization(t *testing.T) {
	srv := newTestServer(t, serverOptions{})
	ctx := context.Background()
	for _, category := range []string{"software", "network", "SECURITY"} {
		require.NoError(t, srv.store.Incidents.Create(ctx, &domain.Incident{Title: category, Category: domain.Category(category)}))
	}

	resp, payload := srv.do(t, http.MethodPost, "/api/incidents/by-specialization", map[string]any{"specializations": []string{"software", "security"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	routed := decodeList(t, payload)
	require.Len(t, routed, 2)
	assert.Equal(t, "software", routed[0]["title"])
	assert.Equal(t, "SECURITY", routed[1]["title"])
}

func TestTakeCharge(t *testing.T) {
	srv := newTestServer(t, serverOptions{})
	tech := srv.createUser(t, map[string]any{"username": "tom", "password": "pw", "role": "technician", "specializations": []string{"NETWORK"}})
	srv.createUser(t, map[string]any{"username": "rita", "password": "pw"})

	resp, payload := srv.do(t, http.MethodPost, "/api/incidents", map[string]any{"title": "vpn"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id := decodeObject(t, payload)["id"].(string)

	resp, _ = srv.do(t, http.MethodPut, "/api/incidents/"+id+"/take-charge", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = srv.do(t, http.MethodPut, "/api/incidents/absent/take-charge?username=tom", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = srv.do(t, http.MethodPut, "/api/incidents/"+id+"/take-charge?username=rita", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = srv.do(t, http.MethodPut, "/api/incidents/"+id+"/take-charge?username=tom", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, payload = srv.do(t, http.MethodGet, "/api/incidents/technician/"+tech["id"].(string), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assigned := decodeList(t, payload)
	require.Len(t, assigned, 1)
	technician := assigned[0]["assignedTechnician"].(map[string]any)
	assert.Equal(t, "tom", technician["username"])
	assert.Equal(t, []any{"network"}, technician["specializations"])
}

func TestTakeChargeLegacy(t *testing.T) {
	srv := newTestServer(t, serverOptions{legacy: true})

	resp, _ := srv.do(t, http.MethodPut, "/api/incidents/absent/take-charge?username=nobody", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestUsersAndLogin(t *testing.T) {
	srv := newTestServer(t, serverOptions{})
	tech := srv.createUser(t, map[string]any{"username": "tom", "password": "s3cret", "email": "tom@example.com", "role": "technician", "specializations": []string{"Network", "database"}})
	assert.Equal(t, []any{"network", "database"}, tech["specializations"])
	assert.NotContains(t, tech, "password")
	id := tech["id"].(string)

	resp, payload := srv.do(t, http.MethodPost, "/api/users", map[string]any{"username": "tom", "password": "x"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "CONFLICT", errorCode(t, payload))

	resp, payload = srv.do(t, http.MethodPost, "/api/users", map[string]any{"username": "x", "password": "x", "role": "technician", "specializations": []string{"plumbing"}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(t, payload))

	resp, _ = srv.do(t, http.MethodPost, "/api/users", map[string]any{"username": "x", "password": "x", "role": "admin"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, payload = srv.do(t, http.MethodGet, "/api/technicians/tom/specializations", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `["network","database"]`, string(payload))

	resp, _ = srv.do(t, http.MethodGet, "/api/technicians/ghost/specializations", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, payload = srv.do(t, http.MethodPut, "/api/users/"+id, map[string]any{"email": "tom@corp.example"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(payload))
	updated := decodeObject(t, payload)
	assert.Equal(t, "tom@corp.example", updated["email"])
	assert.Equal(t, "tom", updated["username"])

	resp, payload = srv.do(t, http.MethodPost, "/api/users/login", map[string]any{"username": "tom", "password": "s3cret"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	login := decodeObject(t, payload)
	assert.Equal(t, "Login successful", login["message"])
	assert.Equal(t, "technician", login["role"])
	assert.Equal(t, "tom", login["username"])
	assert.NotEmpty(t, login["token"])

	resp, payload = srv.do(t, http.MethodPost, "/api/users/login", map[string]any{"username": "tom", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.NotContains(t, string(payload), "token")

	resp, _ = srv.do(t, http.MethodPost, "/api/users/login", map[string]any{"username": "ghost", "password": "x"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, payload = srv.do(t, http.MethodGet, "/api/users", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decodeList(t, payload), 1)

	resp, payload = srv.do(t, http.MethodDelete, "/api/users/"+id, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"message":"User deleted successfully"}`, string(payload))

	resp, _ = srv.do(t, http.MethodDelete, "/api/users/"+id, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp, _ = srv.do(t, http.MethodGet, "/api/users/"+id, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAuthEnforcement(t *testing.T) {
	srv := newTestServer(t, serverOptions{enforceAuth: true})
	srv.createUser(t, map[string]any{"username": "rita", "password": "pw"})
	srv.createUser(t, map[string]any{"username": "tom", "password": "pw", "role": "technician"})

	resp, _ := srv.do(t, http.MethodGet, "/api/incidents", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	login := func(username string) string {
		_, payload := srv.do(t, http.MethodPost, "/api/users/login", map[string]any{"username": username, "password": "pw"})
		return decodeObject(t, payload)["token"].(string)
	}
	rita := "Bearer " + login("rita")
	tom := "Bearer " + login("tom")

	resp, _ = srv.do(t, http.MethodGet, "/api/incidents", nil, fiber.HeaderAuthorization, rita)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, payload := srv.do(t, http.MethodPost, "/api/incidents", map[string]any{"title": "x"}, fiber.HeaderAuthorization, rita)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id := decodeObject(t, payload)["id"].(string)

	resp, _ = srv.do(t, http.MethodPut, "/api/incidents/"+id+"/take-charge?username=tom", nil, fiber.HeaderAuthorization, rita)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = srv.do(t, http.MethodPut, "/api/incidents/"+id+"/take-charge?username=tom", nil, fiber.HeaderAuthorization, tom)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = srv.do(t, http.MethodGet, "/api/technicians/tom/specializations", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHealthAndMetrics(t *testing.T) {
	srv := newTestServer(t, serverOptions{})

	resp, payload := srv.do(t, http.MethodGet, "/health/live", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "alive", decodeObject(t, payload)["status"])

	resp, payload = srv.do(t, http.MethodGet, "/health/ready", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", decodeObject(t, payload)["dependencies"].(map[string]any)["memory"])

	srv.do(t, http.MethodPost, "/api/incidents", map[string]any{"title": "x"})

	resp, payload = srv.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(payload), "http_requests_total")
	assert.Contains(t, string(payload), `classifier_fallbacks_total{reason="disabled"} 1`)
}
