package api

import (
	"alcyxob/coach-app/internal/cache"
	"alcyxob/coach-app/internal/domain"
	"alcyxob/coach-app/internal/llm"
	"alcyxob/coach-app/internal/logger"
	"alcyxob/coach-app/internal/metrics"
	"alcyxob/coach-app/internal/repository"
	"alcyxob/coach-app/internal/repository/memory"
	"alcyxob/coach-app/internal/service"
	"alcyxob/coach-app/internal/storage"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret        = "test-secret"
	testWebhookSecret = "hook-secret"
)

type cannedGenerator struct {
	responses map[string]string
}

func (g *cannedGenerator) Complete(_ context.Context, req llm.Request) (string, error) {
	return g.responses[req.Kind], nil
}

type testServer struct {
	t       *testing.T
	router  *gin.Engine
	store   *repository.Store
	gen     *cannedGenerator
	user    *domain.User
	token   string
	metrics *metrics.Manager
}

func newTestServer(t *testing.T, limit int) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := logger.NewNop()
	store := memory.NewStore()
	gen := &cannedGenerator{responses: map[string]string{}}

	profiles := service.NewProfileService(store, log)
	tracking := service.NewTrackingService(store, storage.NewMemoryStorage(), service.TrackingOptions{}, log)
	meals := service.NewMealService(store, log)
	planner := service.NewDailyPlanService(store, gen, log)
	auth := service.NewAuthService(profiles, testSecret, "")
	svc := Services{
		Auth:         auth,
		Profiles:     profiles,
		Strategy:     service.NewStrategyService(store, profiles, gen, cache.NewMemoryDraftStore(cache.DraftTTL), log),
		Materializer: service.NewMaterializer(store, planner, nil, service.Limits{}, log),
		Tracking:     tracking,
		Projection:   service.NewProjectionService(store, nil),
		Meals:        meals,
		Chat:         service.NewChatService(store, gen, tracking, meals, log),
		Exercises:    service.NewExerciseService(store, storage.NewMemoryStorage(), meals, 0, log),
	}
	m := metrics.NewTestManager()
	router := gin.New()
	SetupRoutes(router, svc, RouterOptions{
		WebhookSecret: testWebhookSecret,
		Limiter:       cache.NewMemoryLimiter(time.Minute, limit),
		Metrics:       m,
	}, log)

	user, err := profiles.ResolveUser(context.Background(), "user_1")
	require.NoError(t, err)
	token, err := auth.IssueToken("user_1", time.Hour)
	require.NoError(t, err)
	return &testServer{t: t, router: router, store: store, gen: gen, user: user, token: token, metrics: m}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func (s *testServer) do(method, path string, body interface{}, headers ...string) (int, envelope) {
	s.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 && strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w.Code, env
}

func (s *testServer) authed(method, path string, body interface{}) (int, envelope) {
	s.t.Helper()
	return s.do(method, path, body, "Authorization", "Bearer "+s.token)
}

func TestPingAndAuth(t *testing.T) {
	s := newTestServer(t, 10)

	code, _ := s.do(http.MethodGet, "/ping", nil)
	assert.Equal(t, http.StatusOK, code)

	code, env := s.do(http.MethodGet, "/api/v1/me", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.False(t, env.Success)
	assert.Equal(t, "Authorization header is missing", env.Error)

	code, env = s.do(http.MethodGet, "/api/v1/me", nil, "Authorization", "Bearer nope")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.False(t, env.Success)

	code, env = s.authed(http.MethodGet, "/api/v1/me", nil)
	require.Equal(t, http.StatusOK, code)
	assert.True(t, env.Success)
	var me domain.User
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, s.user.ID, me.ID)
}

func TestIdentityWebhook(t *testing.T) {
	s := newTestServer(t, 10)
	payload := map[string]any{
		"type": "user.created",
		"data": map[string]any{
			"id":              "user_42",
			"first_name":      "Ada",
			"last_name":       "Lovelace",
			"email_addresses": []map[string]any{{"email_address": "Ada@Example.com"}},
		},
	}

	code, _ := s.do(http.MethodPost, "/api/v1/clerk-webhook", payload, WebhookSecretHeader, "wrong")
	assert.Equal(t, http.StatusUnauthorized, code)

	code, env := s.do(http.MethodPost, "/api/v1/clerk-webhook", payload, WebhookSecretHeader, testWebhookSecret)
	require.Equal(t, http.StatusOK, code)
	require.True(t, env.Success)
	var user domain.User
	require.NoError(t, json.Unmarshal(env.Data, &user))
	assert.Equal(t, "user_42", user.ExternalID)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.Equal(t, "Ada Lovelace", user.Name)

	payload["type"] = "user.deleted"
	code, env = s.do(http.MethodPost, "/api/v1/clerk-webhook", payload, WebhookSecretHeader, testWebhookSecret)
	require.Equal(t, http.StatusOK, code)
	assert.True(t, env.Success)
	assert.Equal(t, "null", string(env.Data))
}

func TestImportMealsPartialSuccess(t *testing.T) {
	s := newTestServer(t, 10)
	body := map[string]any{"meals": []any{
		map[string]any{"name": "Overnight Oats", "foods": []string{"oats", "milk"}, "calories": 400, "instructions": []string{"soak"}},
		map[string]any{"name": "Bad Calories", "foods": []string{"x"}, "calories": "lots", "instructions": []string{}},
		map[string]any{"name": "No Instructions", "foods": []string{"x"}, "calories": 100},
		"just a string",
		42,
	}}

	code, env := s.authed(http.MethodPost, "/api/v1/import-meals", body)
	require.Equal(t, http.StatusOK, code)
	require.True(t, env.Success)
	var result service.ImportResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	require.Len(t, result.Imported, 1)
	assert.Equal(t, "Overnight Oats", result.Imported[0].Name)
	require.Len(t, result.Failed, 4)
	assert.Equal(t, 1, result.Failed[0].Index)
	assert.Equal(t, "calories must be a number", result.Failed[0].Error)
	assert.Equal(t, "instructions must be an array", result.Failed[1].Error)
	assert.Equal(t, 3, result.Failed[2].Index)
	assert.Equal(t, "meal must be an object", result.Failed[2].Error)
	assert.Equal(t, 4, result.Failed[3].Index)

	code, env = s.authed(http.MethodPost, "/api/v1/import-meals", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.False(t, env.Success)
}

func TestMealEditingRequiresPlan(t *testing.T) {
	s := newTestServer(t, 10)
	meal := map[string]any{"name": "Snack", "foods": []string{"apple"}}

	code, env := s.authed(http.MethodPost, "/api/v1/add-meal", map[string]any{"meal": meal})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.False(t, env.Success)

	code, env = s.authed(http.MethodPost, "/api/v1/add-meal", map[string]any{"plan_id": "not-hex", "meal": meal})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.False(t, env.Success)

	// Unknown plan is a domain outcome, not a transport error.
	code, env = s.authed(http.MethodPost, "/api/v1/add-meal", map[string]any{"plan_id": "65f000000000000000000001", "meal": meal})
	assert.Equal(t, http.StatusOK, code)
	assert.False(t, env.Success)
	assert.Contains(t, env.Error, service.ErrPlanNotFound.Error())

	plan := &domain.TrainingPlan{UserID: s.user.ID, IsActive: true, Diet: domain.DietPlan{DailyCalories: 2000, Meals: []domain.DietMeal{{Name: "Lunch", Calories: 2000}}}}
	_, err := s.store.Plans.Create(context.Background(), plan)
	require.NoError(t, err)

	code, env = s.authed(http.MethodPost, "/api/v1/add-meal", map[string]any{"plan_id": plan.ID.Hex(), "meal": meal})
	require.Equal(t, http.StatusOK, code)
	require.True(t, env.Success)
	var diet domain.DietPlan
	require.NoError(t, json.Unmarshal(env.Data, &diet))
	require.Len(t, diet.Meals, 2)
	assert.Equal(t, 1000, diet.Meals[0].Calories)
	assert.Equal(t, 1000, diet.Meals[1].Calories)
}

func TestGenerateProgramFailureIs500(t *testing.T) {
	s := newTestServer(t, 10)
	s.gen.responses[llm.KindStrategy] = "this is not json"

	code, env := s.authed(http.MethodPost, "/api/v1/generate-program", map[string]any{"goal": "bench 100kg"})
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.False(t, env.Success)
	assert.Contains(t, env.Error, service.ErrGeneration.Error())

	code, _ = s.authed(http.MethodPost, "/api/v1/generate-program", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestMoveSessionToOccupiedDate(t *testing.T) {
	s := newTestServer(t, 10)
	ctx := context.Background()
	a := &domain.WorkoutSession{UserID: s.user.ID, Date: "2024-05-06", WorkoutType: domain.WorkoutStrength}
	b := &domain.WorkoutSession{UserID: s.user.ID, Date: "2024-05-08", WorkoutType: domain.WorkoutStrength}
	_, err := s.store.Sessions.Create(ctx, a)
	require.NoError(t, err)
	_, err = s.store.Sessions.Create(ctx, b)
	require.NoError(t, err)

	code, env := s.authed(http.MethodPost, "/api/v1/sessions/"+a.ID.Hex()+"/move", map[string]any{"date": "2024-05-08"})
	require.Equal(t, http.StatusOK, code)
	assert.False(t, env.Success)
	assert.Contains(t, env.Error, "2024-05-08")

	stored, err := s.store.Sessions.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "2024-05-06", stored.Date)

	code, env = s.authed(http.MethodPost, "/api/v1/sessions/"+a.ID.Hex()+"/move", map[string]any{"date": "2024-05-07"})
	require.Equal(t, http.StatusOK, code)
	assert.True(t, env.Success)

	code, _ = s.authed(http.MethodPost, "/api/v1/sessions/xyz/move", map[string]any{"date": "2024-05-07"})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestTodayWithoutSessionIsNull(t *testing.T) {
	s := newTestServer(t, 10)
	code, env := s.authed(http.MethodGet, "/api/v1/workouts/today?date=2024-05-06", nil)
	require.Equal(t, http.StatusOK, code)
	assert.True(t, env.Success)
	assert.Equal(t, "null", string(env.Data))
}

func TestChatIsRateLimited(t *testing.T) {
	s := newTestServer(t, 1)
	s.gen.responses[llm.KindChat] = `{"intent": "answer_question", "reply": "Rest well."}`
	body := map[string]any{"message": "how long should I rest?", "date": "2024-05-06"}

	code, env := s.authed(http.MethodPost, "/api/v1/chat", body)
	require.Equal(t, http.StatusOK, code)
	require.True(t, env.Success)
	var result service.ChatResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, "Rest well.", result.Reply)
	assert.Empty(t, result.Changes)

	code, env = s.authed(http.MethodPost, "/api/v1/chat", body)
	assert.Equal(t, http.StatusTooManyRequests, code)
	assert.False(t, env.Success)

	// Cheap routes are not limited.
	code, _ = s.authed(http.MethodGet, "/api/v1/blocked", nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, 10)
	s.do(http.MethodGet, "/ping", nil)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `coach_test_request{method="GET",route="/ping",status="200"} 1`)
}

func TestRequestIDIsEchoed(t *testing.T) {
	s := newTestServer(t, 10)
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}
