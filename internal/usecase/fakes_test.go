package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/modlrn/go-backend/internal/biometric"
	"github.com/modlrn/go-backend/internal/domain"
	"github.com/modlrn/go-backend/pkg/e"
	"github.com/google/uuid"
)

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
	order []string
	err   error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.users {
		if u.Email == user.Email {
			return nil, e.ErrUserAlreadyExists
		}
	}
	cp := *user
	if cp.ID == "" {
		cp.ID = uuid.NewString()
	}
	cp.CreatedAt = time.Now()
	f.users[cp.ID] = &cp
	f.order = append(f.order, cp.ID)
	out := cp
	return &out, nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[id]
	if !ok {
		return nil, e.ErrUserNotFound
	}
	out := *u
	return &out, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			out := *u
			return &out, nil
		}
	}
	return nil, e.ErrUserNotFound
}

func (f *fakeUserRepo) Update(_ context.Context, id string, patch domain.UserPatch) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[id]
	if !ok {
		return nil, e.ErrUserNotFound
	}
	if patch.Username != nil {
		u.Username = patch.Username
	}
	if patch.Name != nil {
		u.Name = patch.Name
	}
	if patch.ProfilePicture != nil {
		u.ProfilePicture = patch.ProfilePicture
	}
	out := *u
	return &out, nil
}

func (f *fakeUserRepo) UpdatePassword(_ context.Context, id, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return e.ErrUserNotFound
	}
	u.PasswordHash = &hash
	return nil
}

func (f *fakeUserRepo) UpsertGoogle(_ context.Context, p *domain.GoogleProfile) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == p.Email {
			u.Name, u.ProfilePicture, u.GoogleID = &p.Name, &p.Picture, &p.GoogleID
			out := *u
			return &out, nil
		}
	}
	u := &domain.User{ID: uuid.NewString(), Email: p.Email, Name: &p.Name, ProfilePicture: &p.Picture, GoogleID: &p.GoogleID}
	f.users[u.ID] = u
	out := *u
	return &out, nil
}

func (f *fakeUserRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return e.ErrUserNotFound
	}
	delete(f.users, id)
	return nil
}

func (f *fakeUserRepo) SaveSettings(_ context.Context, id string, settings map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return e.ErrUserNotFound
	}
	u.Settings = settings
	return nil
}

func (f *fakeUserRepo) GetSettings(_ context.Context, id string) (map[string]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, e.ErrUserNotFound
	}
	if u.Settings == nil {
		return map[string]any{}, nil
	}
	return u.Settings, nil
}

// fakeEnrollmentRepo хранит дескрипторы в порядке регистрации.
type fakeEnrollmentRepo struct {
	mu      sync.Mutex
	order   []string
	vectors map[string][]float64
	listErr error
}

func newFakeEnrollmentRepo() *fakeEnrollmentRepo {
	return &fakeEnrollmentRepo{vectors: make(map[string][]float64)}
}

func (f *fakeEnrollmentRepo) ListEnrolled(_ context.Context) ([]biometric.Candidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]biometric.Candidate, 0, len(f.order))
	for _, id := range f.order {
		out = append(out, biometric.Candidate{Identity: id, Vector: f.vectors[id]})
	}
	return out, nil
}

func (f *fakeEnrollmentRepo) Get(_ context.Context, userID string) ([]float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.vectors[userID], nil
}

func (f *fakeEnrollmentRepo) Upsert(_ context.Context, userID string, v []float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.vectors[userID]; !ok {
		f.order = append(f.order, userID)
	}
	f.vectors[userID] = v
	return nil
}

func (f *fakeEnrollmentRepo) Delete(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.vectors, userID)
	for i, id := range f.order {
		if id == userID {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	return nil
}

type fakeResultRepo struct {
	mu      sync.Mutex
	results []domain.Result
	err     error
	calls   int

	// если release задан, ListByUser сигналит в entered и ждет release
	entered chan struct{}
	release chan struct{}
}

func (f *fakeResultRepo) Create(_ context.Context, r *domain.Result) (*domain.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	cp := *r
	cp.ID = uuid.NewString()
	cp.CreatedAt = time.Now().Add(time.Duration(len(f.results)) * time.Second)
	f.results = append(f.results, cp)
	out := cp
	return &out, nil
}

func (f *fakeResultRepo) GetByID(_ context.Context, id string) (*domain.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.results {
		if r.ID == id {
			out := r
			return &out, nil
		}
	}
	return nil, e.ErrResultNotFound
}

func (f *fakeResultRepo) ListByUser(ctx context.Context, userID string) ([]domain.Result, error) {
	if f.release != nil {
		select {
		case f.entered <- struct{}{}:
		default:
		}
		<-f.release
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.Result
	for _, r := range f.results {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeResultRepo) ListByTopic(_ context.Context, userID, topic, difficulty string) ([]domain.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Result
	for _, r := range f.results {
		if r.UserID != userID || !strings.Contains(strings.ToLower(r.Topic), strings.ToLower(topic)) {
			continue
		}
		if difficulty != "" && r.Difficulty != difficulty {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

type fakeQuestionRepo struct {
	mu        sync.Mutex
	questions []domain.Question
	err       error
}

func (f *fakeQuestionRepo) AddBatch(_ context.Context, qs []domain.Question) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	inserted := 0
	for _, q := range qs {
		dup := false
		for _, existing := range f.questions {
			if existing.Text == q.Text && existing.Topic == q.Topic {
				dup = true
				break
			}
		}
		if !dup {
			f.questions = append(f.questions, q)
			inserted++
		}
	}
	return inserted, nil
}

func (f *fakeQuestionRepo) ListByTopic(_ context.Context, topic, difficulty string, limit int) ([]domain.Question, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Question
	for _, q := range f.questions {
		if !strings.Contains(strings.ToLower(q.Topic), strings.ToLower(topic)) {
			continue
		}
		if difficulty != "" && q.Difficulty != difficulty {
			continue
		}
		out = append(out, q)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

type fakeOutboxRepo struct {
	mu     sync.Mutex
	events []*OutboxEvent
	err    error
}

func (f *fakeOutboxRepo) Create(_ context.Context, ev *OutboxEvent) (*OutboxEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	ev.ID = int64(len(f.events) + 1)
	f.events = append(f.events, ev)
	return ev, nil
}

func (f *fakeOutboxRepo) GetAndMarkAsProcessing(context.Context, int) ([]*OutboxEvent, error) {
	return nil, nil
}

func (f *fakeOutboxRepo) MarkAsProcessed(context.Context, int64) error { return nil }

func (f *fakeOutboxRepo) MarkAsPending(context.Context, int64) error { return nil }

type fakeAnalyticsCache struct {
	mu      sync.Mutex
	data    map[string]*domain.Analytics
	deleted []string
	set     chan string
}

func newFakeAnalyticsCache() *fakeAnalyticsCache {
	return &fakeAnalyticsCache{data: make(map[string]*domain.Analytics), set: make(chan string, 8)}
}

func (f *fakeAnalyticsCache) GetAnalytics(_ context.Context, userID string) (*domain.Analytics, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.data[userID]
	if !ok {
		return nil, e.ErrCacheMiss
	}
	return a, nil
}

func (f *fakeAnalyticsCache) SetAnalytics(_ context.Context, userID string, a *domain.Analytics) error {
	f.mu.Lock()
	f.data[userID] = a
	f.mu.Unlock()
	f.set <- userID
	return nil
}

func (f *fakeAnalyticsCache) DeleteAnalytics(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data, userID)
	f.deleted = append(f.deleted, userID)
	return nil
}

type fakeAssessmentRepo struct {
	mu      sync.Mutex
	configs map[string]*domain.AssessmentConfig
}

func (f *fakeAssessmentRepo) SaveConfig(_ context.Context, c *domain.AssessmentConfig) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.configs == nil {
		f.configs = make(map[string]*domain.AssessmentConfig)
	}
	f.configs[c.UserID] = c
	return nil
}

func (f *fakeAssessmentRepo) GetConfig(_ context.Context, userID string) (*domain.AssessmentConfig, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.configs[userID]
	if !ok {
		return nil, e.ErrAssessmentConfigNotFound
	}
	return c, nil
}

// fakeTxManager вызывает fn без транзакции и считает откаты.
type fakeTxManager struct {
	rollbacks int
}

func (f *fakeTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := fn(ctx); err != nil {
		f.rollbacks++
		return err
	}
	return nil
}

type fakeAvatars struct {
	mu       sync.Mutex
	uploaded []string
	cleaned  []string
	err      error
}

const fakeAvatarBase = "http://minio.local/avatars/"

func (f *fakeAvatars) UploadAvatar(_ context.Context, req *UploadAvatarReq) (*UploadAvatarRes, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	key := fmt.Sprintf("%s/%d.png", req.UserID, len(f.uploaded))
	f.uploaded = append(f.uploaded, key)
	return &UploadAvatarRes{Key: key, URL: fakeAvatarBase + key}, nil
}

func (f *fakeAvatars) KeyFromURL(url string) (string, bool) {
	if !strings.HasPrefix(url, fakeAvatarBase) {
		return "", false
	}
	return strings.TrimPrefix(url, fakeAvatarBase), true
}

func (f *fakeAvatars) CleanupObjects(keys []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleaned = append(f.cleaned, keys...)
}

type fakeGenAI struct {
	enabled bool
	text    string
	err     error
	prompts []string
}

func (f *fakeGenAI) Generate(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.text, f.err
}

func (f *fakeGenAI) Enabled() bool { return f.enabled }

type fakeOAuth struct {
	profile *domain.GoogleProfile
	err     error
}

func (f *fakeOAuth) AuthCodeURL(state string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "https://accounts.google.com/o/oauth2/auth?state=" + state, nil
}

func (f *fakeOAuth) Exchange(context.Context, string) (*domain.GoogleProfile, error) {
	if f.err != nil {
		return nil, f.err
	}
	cp := *f.profile
	return &cp, nil
}

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

var errBoom = errors.New("boom")
