package http

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/jimlawless/whereami"
	"github.com/modlrn/go-backend/internal/biometric"
	"github.com/modlrn/go-backend/pkg/e"
)

const maxJSONBodySize = 1 << 20

type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func NewErrorResponse(code int, message string) *ErrorResponse {
	return &ErrorResponse{
		Code:    code,
		Message: message,
	}
}

// ToHTTPResponse переводит ошибку в HTTP-статус и безопасное сообщение.
// Неизвестные ошибки превращаются в 500 без внутренних подробностей.
func ToHTTPResponse(err error) (int, string) {
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			msg := m.message
			if msg == "" {
				msg = m.err.Error()
			}
			return m.status, msg
		}
	}

	return http.StatusInternalServerError, e.ErrInternalServerError.Error()
}

type errorMapping struct {
	err     error
	status  int
	message string
}

var errorMappings = []errorMapping{
	// 400
	{err: e.ErrStatusBadRequest, status: http.StatusBadRequest},
	{err: e.ErrInvalidRequestBody, status: http.StatusBadRequest},
	{err: e.ErrMissingFields, status: http.StatusBadRequest},
	{err: e.ErrInvalidID, status: http.StatusBadRequest},
	{err: e.ErrInvalidEmail, status: http.StatusBadRequest},
	{err: e.ErrPasswordTooShort, status: http.StatusBadRequest},
	{err: e.ErrInvalidFaceDescriptor, status: http.StatusBadRequest},
	{err: biometric.ErrInvalidProbe, status: http.StatusBadRequest},
	{err: e.ErrNoValidFields, status: http.StatusBadRequest},
	{err: e.ErrTopicRequired, status: http.StatusBadRequest},
	{err: e.ErrInvalidQuestionCount, status: http.StatusBadRequest},
	{err: e.ErrInvalidDifficulty, status: http.StatusBadRequest},
	{err: e.ErrInvalidLimit, status: http.StatusBadRequest},
	{err: e.ErrNoQuestions, status: http.StatusBadRequest},
	{err: e.ErrInvalidScore, status: http.StatusBadRequest},
	{err: e.ErrExpectedMultipart, status: http.StatusBadRequest},
	{err: e.ErrNoImages, status: http.StatusBadRequest},
	{err: e.ErrMissingOAuthCode, status: http.StatusBadRequest},
	// 401
	{err: e.ErrInvalidCredentials, status: http.StatusUnauthorized},
	{err: e.ErrInvalidToken, status: http.StatusUnauthorized},
	{err: e.ErrIncorrectPassword, status: http.StatusUnauthorized},
	{err: biometric.ErrNoEnrollments, status: http.StatusUnauthorized,
		message: "no registered faces found, please register your face first"},
	{err: biometric.ErrNoMatch, status: http.StatusUnauthorized},
	// 403
	{err: e.ErrAccessDenied, status: http.StatusForbidden},
	// 404
	{err: e.ErrUserNotFound, status: http.StatusNotFound},
	{err: e.ErrResultNotFound, status: http.StatusNotFound},
	{err: e.ErrAssessmentConfigNotFound, status: http.StatusNotFound},
	// 409
	{err: e.ErrUserAlreadyExists, status: http.StatusConflict},
	// 429
	{err: e.ErrTooManyRequests, status: http.StatusTooManyRequests},
	// 413, 415
	{err: e.ErrFileTooLarge, status: http.StatusRequestEntityTooLarge},
	{err: e.ErrUnsupportedMediaType, status: http.StatusUnsupportedMediaType},
	// 500
	{err: e.ErrGoogleOAuthNotConfigured, status: http.StatusInternalServerError},
	// 502
	{err: e.ErrGenAIBadResponse, status: http.StatusBadGateway, message: "failed to parse questions"},
	// 503
	{err: e.ErrGenAIUnavailable, status: http.StatusServiceUnavailable},
	{err: biometric.ErrStorageUnavailable, status: http.StatusServiceUnavailable},
}

func WriteError(w http.ResponseWriter, err error) {
	code, msg := ToHTTPResponse(err)
	WriteSuccess(w, code, NewErrorResponse(code, msg))
}

func WriteSuccess(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// decodeJSON читает тело запроса ограниченного размера в dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodySize)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return e.Wrap(err.Error(), e.ErrInvalidRequestBody)
	}
	return nil
}

func ensureMultipartForm(r *http.Request, maxMemory int64) error {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return e.Wrap(whereami.WhereAmI(), e.ErrExpectedMultipart)
	}
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return e.Wrap(whereami.WhereAmI(), e.ErrFileTooLarge)
		}
		return e.Wrap(whereami.WhereAmI(), e.ErrStatusBadRequest)
	}
	return nil
}

// readFile читает файл из формы и определяет MIME-тип по содержимому.
func readFile(fh *multipart.FileHeader, maxSize int64) ([]byte, string, error) {
	if fh.Size > maxSize {
		return nil, "", e.Wrap(fh.Filename, e.ErrFileTooLarge)
	}

	src, err := fh.Open()
	if err != nil {
		return nil, "", e.ErrInternalServerError
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxSize+1))
	if err != nil {
		return nil, "", e.ErrInternalServerError
	}
	if int64(len(data)) > maxSize {
		return nil, "", e.Wrap(fh.Filename, e.ErrFileTooLarge)
	}
	if len(data) == 0 {
		return nil, "", e.Wrap(fh.Filename, e.ErrNoImages)
	}

	mimeType := http.DetectContentType(data[:min(len(data), 512)])
	return data, mimeType, nil
}
