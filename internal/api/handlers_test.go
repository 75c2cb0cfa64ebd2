package api

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"edusense-backend/internal/config"
	"edusense-backend/internal/core"
	"edusense-backend/internal/logger"
	"edusense-backend/internal/store"
)

func newTestRouter() http.Handler {
	st := store.NewMemoryStore()
	log := logger.NewNop()
	chatService := core.NewChatService(st, nil, log)
	handler := NewAPIHandler(st, chatService, config.Config{DatabaseName: "edusense"}, log)
	return NewRouter(handler, log)
}

func doJSON(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func registerUser(t *testing.T, router http.Handler, name, email, password string) string {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/auth/register", map[string]string{
		"name": name, "email": email, "password": password,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("register returned %d: %s", rec.Code, rec.Body.String())
	}
	userID, _ := decodeBody(t, rec)["user_id"].(string)
	if userID == "" {
		t.Fatal("register returned empty user_id")
	}
	return userID
}

func TestRegisterAndLoginRoundTrip(t *testing.T) {
	router := newTestRouter()

	userID := registerUser(t, router, "Ana", "ana@x.com", "pw1")

	rec := doJSON(t, router, http.MethodPost, "/auth/login", map[string]string{
		"email": "ana@x.com", "password": "pw1",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login returned %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["user_id"] != userID || body["name"] != "Ana" || body["email"] != "ana@x.com" {
		t.Fatalf("unexpected login response: %v", body)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	router := newTestRouter()
	registerUser(t, router, "Ana", "ana@x.com", "pw1")

	rec := doJSON(t, router, http.MethodPost, "/auth/register", map[string]string{
		"name": "Other Name", "email": "ana@x.com", "password": "different",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("duplicate email returned %d, want 400", rec.Code)
	}
}

func TestRegisterValidation(t *testing.T) {
	router := newTestRouter()

	rec := doJSON(t, router, http.MethodPost, "/auth/register", map[string]string{
		"name": "Ana", "email": "ana@x.com",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing password returned %d, want 400", rec.Code)
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	router := newTestRouter()
	registerUser(t, router, "Ana", "ana@x.com", "pw1")

	wrongPassword := doJSON(t, router, http.MethodPost, "/auth/login", map[string]string{
		"email": "ana@x.com", "password": "wrong",
	})
	unknownEmail := doJSON(t, router, http.MethodPost, "/auth/login", map[string]string{
		"email": "nobody@x.com", "password": "pw1",
	})

	if wrongPassword.Code != http.StatusUnauthorized || unknownEmail.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401/401, got %d/%d", wrongPassword.Code, unknownEmail.Code)
	}
	if wrongPassword.Body.String() != unknownEmail.Body.String() {
		t.Fatalf("login failure bodies differ: %q vs %q", wrongPassword.Body.String(), unknownEmail.Body.String())
	}
}

func TestMaterialsCreateAndList(t *testing.T) {
	router := newTestRouter()

	rec := doJSON(t, router, http.MethodPost, "/materials", map[string]string{
		"user_id": "u1", "title": "Algebra", "subject": "math", "content": "x+1=2",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("create material returned %d: %s", rec.Code, rec.Body.String())
	}
	materialID, _ := decodeBody(t, rec)["material_id"].(string)
	if materialID == "" {
		t.Fatal("create material returned empty material_id")
	}

	listRec := doJSON(t, router, http.MethodGet, "/materials/u1", nil)
	if listRec.Code != http.StatusOK {
		t.Fatalf("list materials returned %d", listRec.Code)
	}
	var materials []map[string]interface{}
	if err := json.Unmarshal(listRec.Body.Bytes(), &materials); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(materials) != 1 {
		t.Fatalf("got %d materials, want 1", len(materials))
	}
	if materials[0]["id"] != materialID {
		t.Fatalf("material id = %v, want %s", materials[0]["id"], materialID)
	}
	if materials[0]["difficulty"] != "normal" {
		t.Fatalf("difficulty = %v, want normal", materials[0]["difficulty"])
	}

	emptyRec := doJSON(t, router, http.MethodGet, "/materials/u2", nil)
	if strings.TrimSpace(emptyRec.Body.String()) != "[]" {
		t.Fatalf("empty list should be [], got %q", emptyRec.Body.String())
	}
}

func TestVideosCreateAndList(t *testing.T) {
	router := newTestRouter()

	rec := doJSON(t, router, http.MethodPost, "/videos", map[string]string{
		"user_id": "u1", "title": "Fractions", "url": "https://youtu.be/abc",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("create video returned %d: %s", rec.Code, rec.Body.String())
	}
	if id, _ := decodeBody(t, rec)["video_id"].(string); id == "" {
		t.Fatal("create video returned empty video_id")
	}

	listRec := doJSON(t, router, http.MethodGet, "/videos/u1", nil)
	var videos []map[string]interface{}
	if err := json.Unmarshal(listRec.Body.Bytes(), &videos); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(videos) != 1 || videos[0]["url"] != "https://youtu.be/abc" {
		t.Fatalf("unexpected videos: %v", videos)
	}
}

func TestEmotionSummaryScenario(t *testing.T) {
	router := newTestRouter()

	for i := 0; i < 3; i++ {
		rec := doJSON(t, router, http.MethodPost, "/emotions", map[string]string{
			"user_id": "u1", "emotion": "happy",
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("log emotion returned %d", rec.Code)
		}
	}
	doJSON(t, router, http.MethodPost, "/emotions", map[string]string{"user_id": "u1", "emotion": "sad"})

	rec := doJSON(t, router, http.MethodGet, "/emotions/summary/u1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("summary returned %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["total"].(float64) != 4 {
		t.Fatalf("total = %v, want 4", body["total"])
	}
	frequency := body["frequency"].(map[string]interface{})
	if frequency["happy"].(float64) != 3 || frequency["sad"].(float64) != 1 {
		t.Fatalf("unexpected frequency: %v", frequency)
	}
	distribution := body["distribution"].(map[string]interface{})
	if math.Abs(distribution["happy"].(float64)-0.75) > 1e-9 || math.Abs(distribution["sad"].(float64)-0.25) > 1e-9 {
		t.Fatalf("unexpected distribution: %v", distribution)
	}
}

func TestAdaptUnknownEmotionMatchesNeutral(t *testing.T) {
	router := newTestRouter()

	unknown := doJSON(t, router, http.MethodPost, "/adapt", map[string]string{
		"user_id": "u1", "latest_emotion": "bored",
	})
	neutral := doJSON(t, router, http.MethodPost, "/adapt", map[string]string{
		"user_id": "u1", "latest_emotion": "neutral",
	})
	if unknown.Body.String() != neutral.Body.String() {
		t.Fatalf("unknown emotion response differs from neutral: %q vs %q", unknown.Body.String(), neutral.Body.String())
	}
}

func TestAdaptWithoutMaterial(t *testing.T) {
	router := newTestRouter()

	rec := doJSON(t, router, http.MethodPost, "/adapt", map[string]string{
		"user_id": "u1", "latest_emotion": "confused",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("adapt returned %d", rec.Code)
	}
	body := decodeBody(t, rec)
	policy := body["policy"].(map[string]interface{})
	if policy["strategy"] != "Simplify & add examples" || policy["difficulty"] != "easy" {
		t.Fatalf("unexpected policy: %v", policy)
	}
	if body["material"] != nil {
		t.Fatalf("material should be null, got %v", body["material"])
	}
	if _, present := body["suggested_intro"]; present {
		t.Fatal("suggested_intro should be omitted without a material")
	}
}

func TestAdaptUnresolvableMaterialIsAbsent(t *testing.T) {
	router := newTestRouter()

	rec := doJSON(t, router, http.MethodPost, "/adapt", map[string]string{
		"user_id": "u1", "material_id": "definitely-not-an-id", "latest_emotion": "happy",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("adapt returned %d, want 200 despite bad material id", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["material"] != nil {
		t.Fatalf("material should be null, got %v", body["material"])
	}
	if _, present := body["suggested_intro"]; present {
		t.Fatal("suggested_intro should be omitted for an unresolvable material")
	}
}

func TestAdaptWithMaterialPicksIntroByPolicyDifficulty(t *testing.T) {
	router := newTestRouter()

	createRec := doJSON(t, router, http.MethodPost, "/materials", map[string]string{
		"user_id": "u1", "title": "Algebra", "content": "x+1=2",
	})
	materialID := decodeBody(t, createRec)["material_id"].(string)

	cases := map[string]string{
		"confused": "Step-by-step explanation: ", // easy policy
		"happy":    "Advanced challenge: ",       // hard policy
		"sad":      "Interactive mode: ",         // normal policy with activities
		"neutral":  "Focus mode: ",               // normal policy, no activities
	}
	for emotion, wantIntro := range cases {
		rec := doJSON(t, router, http.MethodPost, "/adapt", map[string]string{
			"user_id": "u1", "material_id": materialID, "latest_emotion": emotion,
		})
		body := decodeBody(t, rec)
		if body["material"] == nil {
			t.Fatalf("emotion %q: material should be present", emotion)
		}
		if body["suggested_intro"] != wantIntro {
			t.Fatalf("emotion %q: suggested_intro = %v, want %q", emotion, body["suggested_intro"], wantIntro)
		}
	}
}

func TestChatEndpointAlwaysReplies(t *testing.T) {
	router := newTestRouter()

	rec := doJSON(t, router, http.MethodPost, "/chat", map[string]string{
		"user_id": "u1", "message": "teach me fractions", "emotion_hint": "confused",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("chat returned %d: %s", rec.Code, rec.Body.String())
	}
	reply, _ := decodeBody(t, rec)["reply"].(string)
	if reply == "" {
		t.Fatal("chat returned empty reply")
	}
	want := "In a clear and step-by-step tone: I hear you said: 'teach me fractions'. Let's work through this together."
	if reply != want {
		t.Fatalf("reply = %q, want %q", reply, want)
	}
}

func TestRootLiveness(t *testing.T) {
	router := newTestRouter()

	rec := doJSON(t, router, http.MethodGet, "/", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("root returned %d", rec.Code)
	}
	if decodeBody(t, rec)["message"] != "EduSense backend running" {
		t.Fatalf("unexpected liveness body: %s", rec.Body.String())
	}
}

func TestDiagnosticEndpoint(t *testing.T) {
	router := newTestRouter()

	// Seed one document so a collection shows up.
	doJSON(t, router, http.MethodPost, "/emotions", map[string]string{"user_id": "u1", "emotion": "happy"})

	rec := doJSON(t, router, http.MethodGet, "/test", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("diagnostic returned %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["backend"] != "running" {
		t.Fatalf("backend = %v", body["backend"])
	}
	if body["connection_status"] != "connected" {
		t.Fatalf("connection_status = %v", body["connection_status"])
	}
	collections := body["collections"].([]interface{})
	if len(collections) != 1 || collections[0] != "emotionlog" {
		t.Fatalf("collections = %v", collections)
	}
}
