package http

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/modlrn/go-backend/internal/biometric"
	"github.com/modlrn/go-backend/internal/domain"
	"github.com/modlrn/go-backend/internal/usecase"
	"github.com/modlrn/go-backend/pkg/e"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doRequest(t *testing.T, h http.Handler, method, path string, body any, userID string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("Authorization", "Bearer "+tokenFor(userID))
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func descriptor(v float64) []float64 {
	out := make([]float64, biometric.DescriptorSize)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestRoot(t *testing.T) {
	rec := doRequest(t, newTestDeps().router(), http.MethodGet, "/", nil, "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "modLRN API is running", decodeBody(t, rec)["message"])
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name     string
		status   string
		wantCode int
	}{
		{name: "all dependencies up", status: usecase.StatusOK, wantCode: http.StatusOK},
		{name: "cache down", status: usecase.StatusDegraded, wantCode: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps := newTestDeps()
			deps.health.status = tt.status

			rec := doRequest(t, deps.router(), http.MethodGet, "/api/health", nil, "")

			assert.Equal(t, tt.wantCode, rec.Code)
			body := decodeBody(t, rec)
			assert.Equal(t, tt.status, body["status"])
			assert.Equal(t, usecase.DependencyConnected, body["database"])
		})
	}
}

func TestAuth_RegisterAndLogin(t *testing.T) {
	deps := newTestDeps()
	router := deps.router()

	rec := doRequest(t, router, http.MethodPost, "/auth/register",
		map[string]any{"email": "user@example.com", "password": "secret1"}, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "bearer", body["token_type"])
	assert.Equal(t, tokenFor(testUserID), body["access_token"])

	rec = doRequest(t, router, http.MethodPost, "/db/users/login",
		map[string]any{"email": "user@example.com", "password": "wrong"}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, e.ErrInvalidCredentials.Error(), decodeBody(t, rec)["message"])
}

func TestAuth_RegisterDuplicate(t *testing.T) {
	deps := newTestDeps()
	deps.auth.registerErr = e.Wrap("UserRepo.Create", e.ErrUserAlreadyExists)

	rec := doRequest(t, deps.router(), http.MethodPost, "/auth/register",
		map[string]any{"email": "user@example.com", "password": "secret1"}, "")

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAuth_InvalidBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()

	newTestDeps().router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, e.ErrInvalidRequestBody.Error(), decodeBody(t, rec)["message"])
}

func TestAuth_FaceLogin(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{name: "match", wantCode: http.StatusOK},
		{name: "invalid probe", err: e.Wrap("Matcher.Match", biometric.ErrInvalidProbe),
			wantCode: http.StatusBadRequest, wantMsg: "invalid face descriptor format"},
		{name: "nobody enrolled", err: biometric.ErrNoEnrollments,
			wantCode: http.StatusUnauthorized, wantMsg: "no registered faces found, please register your face first"},
		{name: "no match", err: &biometric.NoMatchError{BestDistance: 0.9},
			wantCode: http.StatusUnauthorized, wantMsg: "face recognition failed"},
		{name: "storage down", err: e.Wrap("Matcher.Match", biometric.ErrStorageUnavailable),
			wantCode: http.StatusServiceUnavailable, wantMsg: "enrollment storage unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps := newTestDeps()
			deps.auth.faceLoginErr = tt.err

			rec := doRequest(t, deps.router(), http.MethodPost, "/auth/face-login",
				map[string]any{"face_descriptor": descriptor(0.1)}, "")

			assert.Equal(t, tt.wantCode, rec.Code)
			body := decodeBody(t, rec)
			if tt.err == nil {
				assert.Equal(t, tokenFor(testUserID), body["access_token"])
				return
			}
			assert.Equal(t, tt.wantMsg, body["message"])
		})
	}
}

func TestAuth_FaceRoutesRequireToken(t *testing.T) {
	deps := newTestDeps()
	router := deps.router()

	rec := doRequest(t, router, http.MethodPost, "/auth/register-face",
		map[string]any{"face_descriptor": descriptor(0.2)}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, e.ErrInvalidToken.Error(), decodeBody(t, rec)["message"])

	rec = doRequest(t, router, http.MethodPost, "/auth/register-face",
		map[string]any{"face_descriptor": descriptor(0.2)}, testUserID)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, deps.auth.registeredFace, biometric.DescriptorSize)

	deps.auth.hasFace = true
	rec = doRequest(t, router, http.MethodGet, "/auth/face-status", nil, testUserID)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decodeBody(t, rec)["has_face"])
}

func TestAuth_Status(t *testing.T) {
	t.Run("anonymous", func(t *testing.T) {
		rec := doRequest(t, newTestDeps().router(), http.MethodGet, "/auth/status", nil, "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, false, decodeBody(t, rec)["isAuthenticated"])
	})

	t.Run("authenticated", func(t *testing.T) {
		rec := doRequest(t, newTestDeps().router(), http.MethodGet, "/auth/status", nil, testUserID)

		body := decodeBody(t, rec)
		assert.Equal(t, true, body["isAuthenticated"])
		assert.Equal(t, testUserID, body["user"].(map[string]any)["id"])
	})

	t.Run("deleted user", func(t *testing.T) {
		deps := newTestDeps()
		deps.auth.statusErr = e.Wrap("UserRepo.GetByID", e.ErrUserNotFound)

		rec := doRequest(t, deps.router(), http.MethodGet, "/auth/status", nil, testUserID)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, false, decodeBody(t, rec)["isAuthenticated"])
	})
}

func TestAuth_GoogleFlow(t *testing.T) {
	deps := newTestDeps()
	deps.auth.callbackRes = &usecase.AuthRes{Token: "jwt-from-google", User: &domain.User{ID: testUserID}}
	router := deps.router()

	rec := doRequest(t, router, http.MethodGet, "/auth/google", nil, "")
	require.Equal(t, http.StatusTemporaryRedirect, rec.Code)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	state := cookies[0].Value
	assert.Contains(t, rec.Header().Get("Location"), "state="+state)

	t.Run("valid state", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?code=abc&state="+state, nil)
		req.AddCookie(cookies[0])
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
		assert.Equal(t, "http://localhost:3000/login?token=jwt-from-google", rec.Header().Get("Location"))
	})

	t.Run("state mismatch", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?code=abc&state=forged", nil)
		req.AddCookie(cookies[0])
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
		assert.Equal(t, "http://localhost:3000/login?error=Google+login+failed", rec.Header().Get("Location"))
	})
}

func TestAuth_GoogleNotConfigured(t *testing.T) {
	deps := newTestDeps()
	deps.auth.authURLErr = e.ErrGoogleOAuthNotConfigured

	rec := doRequest(t, deps.router(), http.MethodGet, "/auth/google", nil, "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, e.ErrGoogleOAuthNotConfigured.Error(), decodeBody(t, rec)["message"])
}

func TestUsers_OwnerCheck(t *testing.T) {
	router := newTestDeps().router()

	rec := doRequest(t, router, http.MethodGet, "/db/users/"+testUserID, nil, testUserID)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/db/users/"+testUserID, nil, "someone-else")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/db/users/"+testUserID, nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUsers_UpdateWithoutFields(t *testing.T) {
	rec := doRequest(t, newTestDeps().router(), http.MethodPut, "/db/users/"+testUserID,
		map[string]any{"email": "new@example.com"}, testUserID)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, e.ErrNoValidFields.Error(), decodeBody(t, rec)["message"])
}

func TestUsers_ChangePasswordIncorrect(t *testing.T) {
	deps := newTestDeps()
	deps.user.changePwdErr = e.ErrIncorrectPassword

	rec := doRequest(t, deps.router(), http.MethodPost, "/db/users/"+testUserID+"/change-password",
		map[string]any{"current_password": "old", "new_password": "newpass"}, testUserID)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, e.ErrIncorrectPassword.Error(), decodeBody(t, rec)["message"])
}

func TestUsers_Settings(t *testing.T) {
	deps := newTestDeps()
	router := deps.router()

	rec := doRequest(t, router, http.MethodPost, "/db/settings",
		map[string]any{"userId": testUserID, "theme": "dark"}, testUserID)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "dark", deps.user.settings["theme"])

	rec = doRequest(t, router, http.MethodGet, "/db/settings/"+testUserID, nil, testUserID)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "dark", decodeBody(t, rec)["settings"].(map[string]any)["theme"])

	rec = doRequest(t, router, http.MethodPost, "/db/settings", map[string]any{"theme": "dark"}, testUserID)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func multipartAvatar(t *testing.T, field string, data []byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, "avatar.png")
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	return &buf, mw.FormDataContentType()
}

func TestUsers_UploadAvatar(t *testing.T) {
	pngHeader := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

	t.Run("ok", func(t *testing.T) {
		deps := newTestDeps()
		body, contentType := multipartAvatar(t, "avatar", pngHeader)

		req := httptest.NewRequest(http.MethodPost, "/db/users/"+testUserID+"/avatar", body)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Authorization", "Bearer "+tokenFor(testUserID))
		rec := httptest.NewRecorder()
		deps.router().ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, deps.user.avatarReq)
		assert.Equal(t, "image/png", deps.user.avatarReq.MimeType)
		assert.Equal(t, int64(len(pngHeader)), deps.user.avatarReq.Size)
	})

	t.Run("too large", func(t *testing.T) {
		deps := newTestDeps()
		body, contentType := multipartAvatar(t, "avatar", bytes.Repeat([]byte{0x89}, 2<<10))

		req := httptest.NewRequest(http.MethodPost, "/db/users/"+testUserID+"/avatar", body)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Authorization", "Bearer "+tokenFor(testUserID))
		rec := httptest.NewRecorder()
		deps.router().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
		assert.Nil(t, deps.user.avatarReq)
	})

	t.Run("missing field", func(t *testing.T) {
		body, contentType := multipartAvatar(t, "photo", pngHeader)

		req := httptest.NewRequest(http.MethodPost, "/db/users/"+testUserID+"/avatar", body)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Authorization", "Bearer "+tokenFor(testUserID))
		rec := httptest.NewRecorder()
		newTestDeps().router().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestQuestions_Generate(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		genErr   error
		wantCode int
		wantLen  int
	}{
		{name: "ok", query: "topic=go&difficulty=easy&count=3", wantCode: http.StatusOK, wantLen: 3},
		{name: "count not a number", query: "topic=go&difficulty=easy&count=many", wantCode: http.StatusBadRequest},
		{name: "count out of range", query: "topic=go&difficulty=easy&count=51", wantCode: http.StatusBadRequest},
		{name: "genai disabled", query: "topic=go&difficulty=easy&count=3", genErr: e.ErrGenAIUnavailable,
			wantCode: http.StatusServiceUnavailable},
		{name: "unparsable output", query: "topic=go&difficulty=easy&count=3", genErr: e.ErrGenAIBadResponse,
			wantCode: http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps := newTestDeps()
			deps.question.generateErr = tt.genErr

			rec := doRequest(t, deps.router(), http.MethodGet, "/db/questions?"+tt.query, nil, testUserID)

			require.Equal(t, tt.wantCode, rec.Code)
			if tt.wantCode == http.StatusOK {
				var out []questionResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
				assert.Len(t, out, tt.wantLen)
			}
		})
	}
}

func TestQuestions_AddAcceptsBothAnswerKeys(t *testing.T) {
	deps := newTestDeps()

	rec := doRequest(t, deps.router(), http.MethodPost, "/db/questions", map[string]any{
		"topic":      "go",
		"difficulty": "easy",
		"questions": []map[string]any{
			{"question": "Q1", "options": []string{"a", "b"}, "correctAnswer": "a"},
			{"question": "Q2", "options": []string{"c", "d"}, "answer": "d"},
		},
	}, testUserID)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.EqualValues(t, 2, decodeBody(t, rec)["inserted"])
	require.Len(t, deps.question.addReq.Questions, 2)
	assert.Equal(t, "d", deps.question.addReq.Questions[1].CorrectAnswer)
}

func TestQuestions_ByTopic(t *testing.T) {
	deps := newTestDeps()
	router := deps.router()

	rec := doRequest(t, router, http.MethodGet, "/db/questions/golang?difficulty=hard&limit=5", nil, testUserID)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "golang", deps.question.listReq.Topic)
	assert.Equal(t, "hard", deps.question.listReq.Difficulty)
	assert.Equal(t, 5, deps.question.listReq.Limit)

	rec = doRequest(t, router, http.MethodGet, "/db/questions/golang?limit=0", nil, testUserID)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQuestions_Explanations(t *testing.T) {
	rec := doRequest(t, newTestDeps().router(), http.MethodPost, "/db/questions/explanations", map[string]any{
		"questions": []map[string]any{{"question": "Q1", "options": []string{"a"}, "correctAnswer": "a"}},
	}, testUserID)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "fallback", body["note"])
	assert.Len(t, body["explanations"], 1)
}

func TestResults_CreateAndRead(t *testing.T) {
	deps := newTestDeps()
	router := deps.router()

	rec := doRequest(t, router, http.MethodPost, "/api/results", map[string]any{
		"user_id":         testUserID,
		"topic":           "Go basics",
		"difficulty":      "easy",
		"score":           1,
		"total_questions": 2,
		"questions": []map[string]any{
			{"question": "Q1", "options": []string{"a", "b"}, "correctAnswer": "a"},
			{"question": "Q2", "options": []string{"c", "d"}, "correctAnswer": "d"},
		},
		"user_answers": []string{"a", "c"},
		"explanations": []map[string]any{{"questionIndex": 1, "explanation": "d is right"}, {"questionIndex": 7, "explanation": "dropped"}},
	}, testUserID)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, deps.result.createReq)
	assert.Equal(t, []string{"", "d is right"}, deps.result.createReq.Explanations)

	result := decodeBody(t, rec)["result"].(map[string]any)
	assert.Equal(t, "50", result["percentage"])
	assert.EqualValues(t, 1, result["incorrect_answers"])

	deps.result.result = domain.NewResult(testUserID, "Go basics", "easy", 1,
		deps.result.createReq.Questions, deps.result.createReq.UserAnswers, deps.result.createReq.Explanations)
	deps.result.result.ID = "22222222-2222-2222-2222-222222222222"

	rec = doRequest(t, router, http.MethodGet, "/api/results/"+deps.result.result.ID+"/detailed", nil, testUserID)
	require.Equal(t, http.StatusOK, rec.Code)
	reviews := decodeBody(t, rec)["question_reviews"].([]any)
	require.Len(t, reviews, 2)
	assert.Equal(t, true, reviews[0].(map[string]any)["is_correct"])
	assert.Nil(t, reviews[0].(map[string]any)["explanation"])
	assert.Equal(t, "d is right", reviews[1].(map[string]any)["explanation"])

	rec = doRequest(t, router, http.MethodGet, "/api/results/"+deps.result.result.ID, nil, "intruder")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/api/results/33333333-3333-3333-3333-333333333333", nil, testUserID)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/api/results/topic/basics", nil, testUserID)
	require.Equal(t, http.StatusOK, rec.Code)
	var byTopic []resultSummaryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &byTopic))
	assert.Len(t, byTopic, 1)

	rec = doRequest(t, router, http.MethodGet, "/api/results/analytics/"+testUserID, nil, testUserID)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decodeBody(t, rec)["total_assessments"])
}

func TestResults_CreateForAnotherUser(t *testing.T) {
	rec := doRequest(t, newTestDeps().router(), http.MethodPost, "/api/results", map[string]any{
		"user_id": "someone-else",
		"topic":   "Go",
		"score":   0,
	}, testUserID)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAssessment(t *testing.T) {
	router := newTestDeps().router()

	rec := doRequest(t, router, http.MethodGet, "/api/topic", nil, testUserID)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, router, http.MethodPost, "/api/topic",
		map[string]any{"topic": "Go", "qnCount": 10, "difficulty": "Very Hard"}, testUserID)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "very hard", decodeBody(t, rec)["difficulty"])

	rec = doRequest(t, router, http.MethodGet, "/api/topic", nil, testUserID)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Go", body["topic"])
	assert.EqualValues(t, 10, body["qnCount"])

	rec = doRequest(t, router, http.MethodPost, "/api/topic",
		map[string]any{"topic": "Go", "qnCount": 10, "difficulty": "impossible"}, testUserID)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
