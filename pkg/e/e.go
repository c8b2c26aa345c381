package e

import "fmt"

var (
	// Внутренние ошибки с транзакциями
	ErrTransactionNotFound = fmt.Errorf("transaction not found")

	// Ошибки конфигурации
	ErrIncorrectEnvVariable = fmt.Errorf("incorrect environment variable")

	// Внутренние ошибки кэша
	ErrCacheMiss = fmt.Errorf("cache miss")

	// 400 Bad Request
	ErrStatusBadRequest      = fmt.Errorf("bad request")
	ErrInvalidRequestBody    = fmt.Errorf("invalid request body")
	ErrMissingFields         = fmt.Errorf("missing required fields")
	ErrInvalidID             = fmt.Errorf("invalid id format")
	ErrInvalidEmail          = fmt.Errorf("invalid email")
	ErrPasswordTooShort      = fmt.Errorf("password must be at least 6 characters")
	ErrInvalidFaceDescriptor = fmt.Errorf("invalid face descriptor format")
	ErrNoValidFields         = fmt.Errorf("no valid fields to update")
	ErrTopicRequired         = fmt.Errorf("topic is required")
	ErrInvalidQuestionCount  = fmt.Errorf("question count must be between 1 and 50")
	ErrInvalidDifficulty     = fmt.Errorf("invalid difficulty")
	ErrInvalidLimit          = fmt.Errorf("limit must be between 1 and 50")
	ErrNoQuestions           = fmt.Errorf("no questions provided")
	ErrInvalidScore          = fmt.Errorf("score must be between 0 and total questions")
	ErrExpectedMultipart     = fmt.Errorf("expected multipart/form-data")
	ErrUnsupportedMediaType  = fmt.Errorf("unsupported media type")
	ErrFileTooLarge          = fmt.Errorf("file too large")
	ErrNoImages              = fmt.Errorf("no image provided")
	ErrMissingOAuthCode      = fmt.Errorf("missing authorization code")

	// 401 Unauthorized
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrInvalidToken       = fmt.Errorf("invalid token")
	ErrIncorrectPassword  = fmt.Errorf("current password is incorrect")

	// 403 Forbidden
	ErrAccessDenied = fmt.Errorf("access denied")

	// 404 Not Found
	ErrUserNotFound             = fmt.Errorf("user not found")
	ErrResultNotFound           = fmt.Errorf("result not found")
	ErrAssessmentConfigNotFound = fmt.Errorf("no assessment configuration found")

	// 409 Conflict
	ErrUserAlreadyExists = fmt.Errorf("user already exists")

	// 429 Too Many Requests
	ErrTooManyRequests = fmt.Errorf("too many requests, try again later")

	// 500 Internal Server Error
	ErrInternalServerError      = fmt.Errorf("internal server error")
	ErrGoogleOAuthNotConfigured = fmt.Errorf("google oauth not configured")
	ErrOAuthExchangeFailed      = fmt.Errorf("token exchange failed")

	// 502 / 503: внешний генеративный сервис
	ErrGenAIBadResponse = fmt.Errorf("failed to parse response from generative ai service")
	ErrGenAIUnavailable = fmt.Errorf("generative ai service is not available")
)

// Wrap оборачивает ошибку
func Wrap(msg string, err error) error {
	return fmt.Errorf("%s: %w", msg, err)
}
