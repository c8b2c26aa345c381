package http

import (
	"time"

	"github.com/modlrn/go-backend/internal/domain"
	"github.com/modlrn/go-backend/internal/usecase"
	"github.com/shopspring/decimal"
)

// REQUESTS

type registerRequest struct {
	Email          string  `json:"email"`
	Password       string  `json:"password"`
	Username       *string `json:"username,omitempty"`
	Name           *string `json:"name,omitempty"`
	ProfilePicture *string `json:"profile_picture,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type faceRequest struct {
	FaceDescriptor []float64 `json:"face_descriptor"`
}

type updateUserRequest struct {
	Username       *string `json:"username"`
	Name           *string `json:"name"`
	ProfilePicture *string `json:"profile_picture"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// questionPayload принимает правильный ответ и как correctAnswer, и как answer.
type questionPayload struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer,omitempty"`
	Answer        string   `json:"answer,omitempty"`
}

func (q questionPayload) toDomain() domain.ResultQuestion {
	correct := q.CorrectAnswer
	if correct == "" {
		correct = q.Answer
	}
	return domain.ResultQuestion{Question: q.Question, Options: q.Options, CorrectAnswer: correct}
}

func toResultQuestions(in []questionPayload) []domain.ResultQuestion {
	out := make([]domain.ResultQuestion, 0, len(in))
	for _, q := range in {
		out = append(out, q.toDomain())
	}
	return out
}

type addQuestionsRequest struct {
	Topic      string            `json:"topic"`
	Difficulty string            `json:"difficulty"`
	Questions  []questionPayload `json:"questions"`
}

type explainRequest struct {
	Topic      string            `json:"topic"`
	Difficulty string            `json:"difficulty"`
	Questions  []questionPayload `json:"questions"`
}

type createResultRequest struct {
	UserID         string               `json:"user_id"`
	Topic          string               `json:"topic"`
	Difficulty     string               `json:"difficulty"`
	Score          int                  `json:"score"`
	TotalQuestions int                  `json:"total_questions"`
	Questions      []questionPayload    `json:"questions"`
	UserAnswers    []string             `json:"user_answers"`
	Explanations   []domain.Explanation `json:"explanations"`
	TimeTaken      *int                 `json:"time_taken"`
}

func (r *createResultRequest) toUseCase() *usecase.CreateResultReq {
	return &usecase.CreateResultReq{
		UserID:         r.UserID,
		Topic:          r.Topic,
		Difficulty:     r.Difficulty,
		Score:          r.Score,
		TotalQuestions: r.TotalQuestions,
		Questions:      toResultQuestions(r.Questions),
		UserAnswers:    r.UserAnswers,
		Explanations:   explanationsByIndex(r.Explanations, len(r.Questions)),
		TimeTaken:      r.TimeTaken,
	}
}

// explanationsByIndex раскладывает пояснения по индексам вопросов; индексы вне диапазона отбрасываются.
func explanationsByIndex(in []domain.Explanation, n int) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, n)
	for _, ex := range in {
		if ex.QuestionIndex >= 0 && ex.QuestionIndex < n {
			out[ex.QuestionIndex] = ex.Explanation
		}
	}
	return out
}

type assessmentRequest struct {
	Topic      string `json:"topic"`
	QnCount    int    `json:"qnCount"`
	Difficulty string `json:"difficulty"`
}

// RESPONSES

type successResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

func ok(message string) successResponse {
	return successResponse{Success: true, Message: message}
}

type userResponse struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	Username       *string   `json:"username"`
	Name           *string   `json:"name"`
	ProfilePicture *string   `json:"profile_picture"`
	IsAdmin        bool      `json:"is_admin"`
	CreatedAt      time.Time `json:"created_at"`
}

func toUserResponse(u *domain.User) *userResponse {
	if u == nil {
		return nil
	}
	return &userResponse{
		ID:             u.ID,
		Email:          u.Email,
		Username:       u.Username,
		Name:           u.Name,
		ProfilePicture: u.ProfilePicture,
		IsAdmin:        u.IsAdmin,
		CreatedAt:      u.CreatedAt,
	}
}

type authResponse struct {
	Success     bool          `json:"success"`
	Message     string        `json:"message"`
	AccessToken string        `json:"access_token"`
	TokenType   string        `json:"token_type"`
	User        *userResponse `json:"user"`
}

func toAuthResponse(message string, res *usecase.AuthRes) authResponse {
	return authResponse{
		Success:     true,
		Message:     message,
		AccessToken: res.Token,
		TokenType:   "bearer",
		User:        toUserResponse(res.User),
	}
}

type authStatusResponse struct {
	IsAuthenticated bool          `json:"isAuthenticated"`
	User            *userResponse `json:"user"`
}

type questionResponse struct {
	ID         int64    `json:"id,omitempty"`
	Topic      string   `json:"topic"`
	Difficulty string   `json:"difficulty"`
	Question   string   `json:"question"`
	Options    []string `json:"options"`
	Answer     string   `json:"answer"`
}

func toQuestionResponses(in []domain.Question) []questionResponse {
	out := make([]questionResponse, 0, len(in))
	for _, q := range in {
		out = append(out, questionResponse{
			ID:         q.ID,
			Topic:      q.Topic,
			Difficulty: q.Difficulty,
			Question:   q.Text,
			Options:    q.Options,
			Answer:     q.CorrectAnswer,
		})
	}
	return out
}

type explanationsResponse struct {
	Success      bool                 `json:"success"`
	Explanations []domain.Explanation `json:"explanations"`
	Note         string               `json:"note,omitempty"`
}

type resultSummaryResponse struct {
	ID             string          `json:"id"`
	Score          int             `json:"score"`
	TotalQuestions int             `json:"total_questions"`
	Topic          string          `json:"topic"`
	Difficulty     string          `json:"difficulty"`
	Percentage     decimal.Decimal `json:"percentage"`
	TimeTaken      *int            `json:"time_taken"`
	Date           time.Time       `json:"date"`
}

func toResultSummary(r *domain.Result) resultSummaryResponse {
	return resultSummaryResponse{
		ID:             r.ID,
		Score:          r.Score,
		TotalQuestions: r.TotalQuestions,
		Topic:          r.Topic,
		Difficulty:     r.Difficulty,
		Percentage:     r.Percentage,
		TimeTaken:      r.TimeTaken,
		Date:           r.CreatedAt,
	}
}

func toResultSummaries(in []domain.Result) []resultSummaryResponse {
	out := make([]resultSummaryResponse, 0, len(in))
	for i := range in {
		out = append(out, toResultSummary(&in[i]))
	}
	return out
}

type resultResponse struct {
	resultSummaryResponse
	UserID           string                  `json:"user_id"`
	Questions        []domain.ResultQuestion `json:"questions"`
	UserAnswers      []string                `json:"user_answers"`
	Explanations     []domain.Explanation    `json:"explanations"`
	CorrectAnswers   int                     `json:"correct_answers"`
	IncorrectAnswers int                     `json:"incorrect_answers"`
}

func toResultResponse(r *domain.Result) resultResponse {
	explanations := make([]domain.Explanation, 0, len(r.Explanations))
	for i, ex := range r.Explanations {
		if ex != "" {
			explanations = append(explanations, domain.Explanation{QuestionIndex: i, Explanation: ex})
		}
	}

	return resultResponse{
		resultSummaryResponse: toResultSummary(r),
		UserID:                r.UserID,
		Questions:             r.Questions,
		UserAnswers:           r.UserAnswers,
		Explanations:          explanations,
		CorrectAnswers:        r.Correct,
		IncorrectAnswers:      r.Incorrect,
	}
}

type questionReviewResponse struct {
	QuestionIndex int      `json:"question_index"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
	UserAnswer    string   `json:"user_answer"`
	IsCorrect     bool     `json:"is_correct"`
	Explanation   *string  `json:"explanation"`
}

type detailedResultResponse struct {
	Success         bool                     `json:"success"`
	Result          resultResponse           `json:"result"`
	QuestionReviews []questionReviewResponse `json:"question_reviews"`
}

func toDetailedResponse(res *usecase.DetailedResultRes) detailedResultResponse {
	reviews := make([]questionReviewResponse, 0, len(res.Reviews))
	for i, rv := range res.Reviews {
		var explanation *string
		if rv.Explanation != "" {
			explanation = &rv.Explanation
		}
		reviews = append(reviews, questionReviewResponse{
			QuestionIndex: i,
			Question:      rv.Question,
			Options:       rv.Options,
			CorrectAnswer: rv.CorrectAnswer,
			UserAnswer:    rv.UserAnswer,
			IsCorrect:     rv.IsCorrect,
			Explanation:   explanation,
		})
	}

	return detailedResultResponse{
		Success:         true,
		Result:          toResultResponse(res.Result),
		QuestionReviews: reviews,
	}
}

type assessmentResponse struct {
	Success    bool   `json:"success"`
	UserID     string `json:"userId"`
	Topic      string `json:"topic"`
	QnCount    int    `json:"qnCount"`
	Difficulty string `json:"difficulty"`
}

func toAssessmentResponse(c *domain.AssessmentConfig) assessmentResponse {
	return assessmentResponse{
		Success:    true,
		UserID:     c.UserID,
		Topic:      c.Topic,
		QnCount:    c.QnCount,
		Difficulty: c.Difficulty,
	}
}

type healthResponse struct {
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	Database  string    `json:"database"`
	Cache     string    `json:"cache"`
	Timestamp time.Time `json:"timestamp"`
}
