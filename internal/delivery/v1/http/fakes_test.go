package http

import (
	"context"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/modlrn/go-backend/internal/domain"
	"github.com/modlrn/go-backend/internal/usecase"
	"github.com/modlrn/go-backend/pkg/e"
	"github.com/modlrn/go-backend/pkg/logger"
)

const testUserID = "11111111-1111-1111-1111-111111111111"

// токен вида "token-<userID>" считается валидным
func tokenFor(userID string) string {
	return "token-" + userID
}

type fakeAuthUC struct {
	registerErr   error
	faceLoginErr  error
	faceLoginUser string
	hasFace       bool
	authURLErr    error
	callbackRes   *usecase.AuthRes
	callbackErr   error
	statusErr     error

	registeredFace []float64
}

func (f *fakeAuthUC) Register(_ context.Context, req *usecase.RegisterReq) (*usecase.AuthRes, error) {
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return &usecase.AuthRes{Token: tokenFor(testUserID), User: &domain.User{ID: testUserID, Email: req.Email}}, nil
}

func (f *fakeAuthUC) Login(_ context.Context, req *usecase.LoginReq) (*usecase.AuthRes, error) {
	if req.Password != "secret1" {
		return nil, e.Wrap("AuthUseCase.Login", e.ErrInvalidCredentials)
	}
	return &usecase.AuthRes{Token: tokenFor(testUserID), User: &domain.User{ID: testUserID, Email: req.Email}}, nil
}

func (f *fakeAuthUC) FaceLogin(context.Context, []float64) (*usecase.AuthRes, error) {
	if f.faceLoginErr != nil {
		return nil, f.faceLoginErr
	}
	return &usecase.AuthRes{Token: tokenFor(f.faceLoginUser), User: &domain.User{ID: f.faceLoginUser}}, nil
}

func (f *fakeAuthUC) FaceStatus(context.Context, string) (bool, error) {
	return f.hasFace, nil
}

func (f *fakeAuthUC) RegisterFace(_ context.Context, _ string, descriptor []float64) error {
	f.registeredFace = descriptor
	return nil
}

func (f *fakeAuthUC) RemoveFace(context.Context, string) error { return nil }

func (f *fakeAuthUC) GoogleAuthURL(state string) (string, error) {
	if f.authURLErr != nil {
		return "", f.authURLErr
	}
	return "https://accounts.example.com/auth?state=" + state, nil
}

func (f *fakeAuthUC) GoogleCallback(context.Context, string) (*usecase.AuthRes, error) {
	return f.callbackRes, f.callbackErr
}

func (f *fakeAuthUC) Status(_ context.Context, userID string) (*domain.User, error) {
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	return &domain.User{ID: userID, Email: "user@example.com"}, nil
}

func (f *fakeAuthUC) VerifyToken(raw string) (string, error) {
	id, found := strings.CutPrefix(raw, "token-")
	if !found || id == "" {
		return "", e.ErrInvalidToken
	}
	return id, nil
}

type fakeUserUC struct {
	settings     map[string]any
	avatarReq    *usecase.UploadAvatarReq
	changePwdErr error
}

func owner(requesterID, userID string) error {
	if requesterID != userID {
		return e.ErrAccessDenied
	}
	return nil
}

func (f *fakeUserUC) Get(_ context.Context, requesterID, userID string) (*domain.User, error) {
	if err := owner(requesterID, userID); err != nil {
		return nil, err
	}
	return &domain.User{ID: userID, Email: "user@example.com"}, nil
}

func (f *fakeUserUC) Update(_ context.Context, requesterID, userID string, patch domain.UserPatch) (*domain.User, error) {
	if err := owner(requesterID, userID); err != nil {
		return nil, err
	}
	if patch.Username == nil && patch.Name == nil && patch.ProfilePicture == nil {
		return nil, e.ErrNoValidFields
	}
	return &domain.User{ID: userID, Username: patch.Username, Name: patch.Name}, nil
}

func (f *fakeUserUC) Delete(_ context.Context, requesterID, userID string) error {
	return owner(requesterID, userID)
}

func (f *fakeUserUC) Stats(_ context.Context, requesterID, userID string) (*domain.UserStats, error) {
	if err := owner(requesterID, userID); err != nil {
		return nil, err
	}
	return &domain.UserStats{TotalAssessments: 2}, nil
}

func (f *fakeUserUC) ChangePassword(_ context.Context, req *usecase.ChangePasswordReq) error {
	if err := owner(req.RequesterID, req.UserID); err != nil {
		return err
	}
	return f.changePwdErr
}

func (f *fakeUserUC) SaveSettings(_ context.Context, requesterID, userID string, settings map[string]any) error {
	if err := owner(requesterID, userID); err != nil {
		return err
	}
	f.settings = settings
	return nil
}

func (f *fakeUserUC) GetSettings(_ context.Context, requesterID, userID string) (map[string]any, error) {
	if err := owner(requesterID, userID); err != nil {
		return nil, err
	}
	return f.settings, nil
}

func (f *fakeUserUC) UploadAvatar(_ context.Context, req *usecase.UploadAvatarReq) (*domain.User, error) {
	if err := owner(req.RequesterID, req.UserID); err != nil {
		return nil, err
	}
	f.avatarReq = req
	url := "http://minio.local/avatars/" + req.UserID + "/a.png"
	return &domain.User{ID: req.UserID, ProfilePicture: &url}, nil
}

type fakeQuestionUC struct {
	generateErr error
	listReq     *usecase.ListQuestionsReq
	addReq      *usecase.AddQuestionsReq
}

func (f *fakeQuestionUC) Generate(_ context.Context, req *usecase.GenerateQuestionsReq) ([]domain.Question, error) {
	if f.generateErr != nil {
		return nil, f.generateErr
	}
	if req.Count < domain.MinQuestionCount || req.Count > domain.MaxQuestionCount {
		return nil, e.ErrInvalidQuestionCount
	}
	out := make([]domain.Question, 0, req.Count)
	for range req.Count {
		out = append(out, domain.Question{Topic: req.Topic, Difficulty: req.Difficulty, Text: "Q?", Options: []string{"a", "b"}, CorrectAnswer: "a"})
	}
	return out, nil
}

func (f *fakeQuestionUC) Add(_ context.Context, req *usecase.AddQuestionsReq) (int, error) {
	f.addReq = req
	return len(req.Questions), nil
}

func (f *fakeQuestionUC) ListByTopic(_ context.Context, req *usecase.ListQuestionsReq) ([]domain.Question, error) {
	f.listReq = req
	return []domain.Question{{ID: 1, Topic: req.Topic, Text: "Q?", Options: []string{"a"}, CorrectAnswer: "a"}}, nil
}

func (f *fakeQuestionUC) Explain(_ context.Context, req *usecase.ExplainReq) (*usecase.ExplainRes, error) {
	return &usecase.ExplainRes{
		Explanations: []domain.Explanation{{QuestionIndex: 0, Explanation: "because"}},
		Note:         "fallback",
	}, nil
}

type fakeResultUC struct {
	createReq *usecase.CreateResultReq
	result    *domain.Result
}

func (f *fakeResultUC) Create(_ context.Context, requesterID string, req *usecase.CreateResultReq) (*domain.Result, error) {
	if err := owner(requesterID, req.UserID); err != nil {
		return nil, err
	}
	f.createReq = req
	res := domain.NewResult(req.UserID, req.Topic, req.Difficulty, req.Score, req.Questions, req.UserAnswers, req.Explanations)
	res.ID = "22222222-2222-2222-2222-222222222222"
	return res, nil
}

func (f *fakeResultUC) ListByUser(_ context.Context, requesterID, userID string) ([]domain.Result, error) {
	if err := owner(requesterID, userID); err != nil {
		return nil, err
	}
	return []domain.Result{*f.result}, nil
}

func (f *fakeResultUC) Get(_ context.Context, requesterID, resultID string) (*domain.Result, error) {
	if f.result == nil || f.result.ID != resultID {
		return nil, e.ErrResultNotFound
	}
	if err := owner(requesterID, f.result.UserID); err != nil {
		return nil, err
	}
	return f.result, nil
}

func (f *fakeResultUC) Detailed(ctx context.Context, requesterID, resultID string) (*usecase.DetailedResultRes, error) {
	res, err := f.Get(ctx, requesterID, resultID)
	if err != nil {
		return nil, err
	}
	return &usecase.DetailedResultRes{Result: res, Reviews: res.Review()}, nil
}

func (f *fakeResultUC) Analytics(_ context.Context, requesterID, userID string) (*domain.Analytics, error) {
	if err := owner(requesterID, userID); err != nil {
		return nil, err
	}
	return domain.BuildAnalytics([]domain.Result{*f.result}), nil
}

func (f *fakeResultUC) ByTopic(_ context.Context, _ string, topic, _ string) ([]domain.Result, error) {
	if strings.Contains(strings.ToLower(f.result.Topic), strings.ToLower(topic)) {
		return []domain.Result{*f.result}, nil
	}
	return []domain.Result{}, nil
}

type fakeAssessmentUC struct {
	config *domain.AssessmentConfig
}

func (f *fakeAssessmentUC) SetConfig(_ context.Context, req *usecase.AssessmentConfigReq) (*domain.AssessmentConfig, error) {
	difficulty, valid := domain.NormalizeDifficulty(req.Difficulty)
	if !valid {
		return nil, e.ErrInvalidDifficulty
	}
	f.config = domain.NewAssessmentConfig(req.UserID, req.Topic, req.QnCount, difficulty)
	return f.config, nil
}

func (f *fakeAssessmentUC) GetConfig(_ context.Context, userID string) (*domain.AssessmentConfig, error) {
	if f.config == nil || f.config.UserID != userID {
		return nil, e.ErrAssessmentConfigNotFound
	}
	return f.config, nil
}

type fakeHealthUC struct {
	status string
}

func (f *fakeHealthUC) Check(context.Context) *usecase.HealthStatus {
	st := &usecase.HealthStatus{Status: f.status, Database: usecase.DependencyConnected, Cache: usecase.DependencyConnected}
	if f.status != usecase.StatusOK {
		st.Cache = usecase.DependencyDisconnected
	}
	return st
}

type testDeps struct {
	auth       *fakeAuthUC
	user       *fakeUserUC
	question   *fakeQuestionUC
	result     *fakeResultUC
	assessment *fakeAssessmentUC
	health     *fakeHealthUC
}

func newTestDeps() *testDeps {
	return &testDeps{
		auth:       &fakeAuthUC{faceLoginUser: testUserID},
		user:       &fakeUserUC{},
		question:   &fakeQuestionUC{},
		result:     &fakeResultUC{},
		assessment: &fakeAssessmentUC{},
		health:     &fakeHealthUC{status: usecase.StatusOK},
	}
}

func (d *testDeps) router() *chi.Mux {
	return d.routerWith(func(*Options) {})
}

func (d *testDeps) routerWith(configure func(*Options)) *chi.Mux {
	opts := Options{
		AllowedOrigins: []string{"http://localhost:3000"},
		FrontendURL:    "http://localhost:3000",
		MaxAvatarSize:  1 << 10,
	}
	configure(&opts)

	mux := chi.NewRouter()
	NewRouter(mux, logger.NewNopLogger()).Init(&UseCases{
		Auth:       d.auth,
		User:       d.user,
		Question:   d.question,
		Result:     d.result,
		Assessment: d.assessment,
		Health:     d.health,
	}, opts)
	return mux
}
