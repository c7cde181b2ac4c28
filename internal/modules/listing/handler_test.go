package listing

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travelbooking/internal/database"
	"travelbooking/internal/domain"
	"travelbooking/internal/middleware"
	"travelbooking/internal/pkg/jwt"
	"travelbooking/internal/pkg/validator"
	"travelbooking/internal/repository"
)

type testEnv struct {
	router   *gin.Engine
	tokens   *jwt.Service
	operator *domain.User
	other    *domain.User
}

func setupTestRouter(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validator.RegisterBindings()

	log, _ := logtest.NewNullLogger()
	db, err := database.Connect(":memory:", log)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	users := repository.NewUserRepository(db)
	operator := &domain.User{Email: "op@example.com", Username: "op", PasswordHash: "x"}
	other := &domain.User{Email: "other@example.com", Username: "other", PasswordHash: "x"}
	require.NoError(t, users.Create(t.Context(), operator))
	require.NoError(t, users.Create(t.Context(), other))

	listings := repository.NewListingRepository(db)
	tokens := jwt.New("test-secret", time.Hour)

	r := gin.New()
	v1 := r.Group("/api/v1", middleware.ReadOnlyOrAuth(tokens))
	NewHandler(NewService(listings, log)).
		RegisterRoutes(v1, middleware.NewOwnershipChecker(listings).CheckListingOwnership())

	return &testEnv{router: r, tokens: tokens, operator: operator, other: other}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, user *domain.User) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if user != nil {
		token, err := e.tokens.GenerateToken(user.ID, user.Email)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	return env
}

func validListing() map[string]any {
	return map[string]any{
		"transport_type":  "train",
		"name":            "Kano Sleeper",
		"description":     "Overnight train",
		"origin":          "NG-KN",
		"destination":     "NG-LA",
		"departure_time":  time.Now().Add(72 * time.Hour).UTC().Format(time.RFC3339),
		"price":           15000,
		"available_seats": 20,
		"total_seats":     20,
	}
}

func TestListingEndpoints_Lifecycle(t *testing.T) {
	env := setupTestRouter(t)

	rr := env.do(t, http.MethodPost, "/api/v1/listing/", validListing(), nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = env.do(t, http.MethodPost, "/api/v1/listing/", validListing(), env.operator)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var created struct {
		ID       uuid.UUID `json:"listing_id"`
		Operator struct {
			Username string `json:"username"`
		} `json:"operator"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rr).Data, &created))
	assert.Equal(t, "op", created.Operator.Username)
	path := "/api/v1/listing/" + created.ID.String() + "/"

	rr = env.do(t, http.MethodGet, "/api/v1/listing/?transport_type=train", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var items []map[string]any
	require.NoError(t, json.Unmarshal(decode(t, rr).Data, &items))
	assert.Len(t, items, 1)

	rr = env.do(t, http.MethodPatch, path, map[string]any{"name": "Hijack"}, env.other)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = env.do(t, http.MethodPatch, path, map[string]any{"name": "Kano Express"}, env.operator)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Body.String(), "Kano Express")

	rr = env.do(t, http.MethodDelete, path, nil, env.operator)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = env.do(t, http.MethodGet, path, nil, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestListingEndpoints_Validation(t *testing.T) {
	env := setupTestRouter(t)

	body := validListing()
	body["origin"] = "US-CA"
	body["transport_type"] = "rocket"
	rr := env.do(t, http.MethodPost, "/api/v1/listing/", body, env.operator)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	e := decode(t, rr)
	assert.Equal(t, "VALIDATION_ERROR", e.Error.Code)
	assert.Equal(t, "region", e.Error.Details["origin"])
	assert.Equal(t, "transport", e.Error.Details["transport_type"])

	body = validListing()
	body["available_seats"] = 30
	rr = env.do(t, http.MethodPost, "/api/v1/listing/", body, env.operator)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, decode(t, rr).Error.Details, "available_seats")
}
