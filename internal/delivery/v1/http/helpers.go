package http

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/DRSN-tech/beauty-backend/internal/domain"
	"github.com/DRSN-tech/beauty-backend/internal/infrastructure"
	"github.com/DRSN-tech/beauty-backend/pkg/e"
	"github.com/jimlawless/whereami"
)

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

// ToHTTPResponse сопоставляет ошибку со статусом и сообщением для клиента.
// ErrDegenerateImage проверяется раньше ErrExtraction: это ошибка клиента.
func ToHTTPResponse(err error) (int, string) {
	var maxBytesErr *http.MaxBytesError
	switch {
	case errors.Is(err, e.ErrStatusBadRequest):
		return http.StatusBadRequest, e.ErrStatusBadRequest.Error()
	case errors.Is(err, e.ErrExpectedMultipart):
		return http.StatusBadRequest, e.ErrExpectedMultipart.Error()
	case errors.Is(err, e.ErrNoImages):
		return http.StatusBadRequest, e.ErrNoImages.Error()
	case errors.Is(err, e.ErrDecode):
		return http.StatusBadRequest, e.ErrDecode.Error()
	case errors.Is(err, e.ErrDegenerateImage):
		return http.StatusBadRequest, e.ErrDegenerateImage.Error()
	case errors.Is(err, e.ErrFileTooLarge), errors.As(err, &maxBytesErr):
		return http.StatusRequestEntityTooLarge, e.ErrFileTooLarge.Error()
	case errors.Is(err, e.ErrUnsupportedMediaType):
		return http.StatusUnsupportedMediaType, e.ErrUnsupportedMediaType.Error()
	case errors.Is(err, e.ErrTooManyRequests):
		return http.StatusTooManyRequests, e.ErrTooManyRequests.Error()
	case errors.Is(err, e.ErrExtraction):
		return http.StatusInternalServerError, e.ErrExtraction.Error()
	default:
		return http.StatusInternalServerError, e.ErrInternalServerError.Error()
	}
}

func WriteError(w http.ResponseWriter, err error) {
	code, msg := ToHTTPResponse(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(NewErrorResponse(code, msg))
}

func WriteSuccess(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func ensureMultipartForm(r *http.Request, maxMemory int64) error {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return e.Wrap(whereami.WhereAmI(), e.ErrExpectedMultipart)
	}

	if err := r.ParseMultipartForm(maxMemory); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return e.Wrap(whereami.WhereAmI(), e.ErrFileTooLarge)
		}
		return e.Wrap(err.Error(), e.ErrStatusBadRequest)
	}

	return nil
}

// imageFile возвращает первый файл из полей fields (в порядке приоритета).
func imageFile(form *multipart.Form, fields ...string) (*multipart.FileHeader, error) {
	if form == nil {
		return nil, e.ErrNoImages
	}
	for _, f := range fields {
		if files := form.File[f]; len(files) > 0 {
			return files[0], nil
		}
	}

	return nil, e.ErrNoImages
}

// readImage читает загруженный файл и определяет его тип по содержимому.
// Не-изображения пропускаются дальше: их отвергнет декодер с понятной ошибкой.
func readImage(fh *multipart.FileHeader, maxSize int64) (*domain.CapturedImage, error) {
	if fh.Size > maxSize {
		return nil, e.Wrap(fh.Filename, e.ErrFileTooLarge)
	}

	src, err := fh.Open()
	if err != nil {
		return nil, e.ErrInternalServerError
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxSize+1))
	if err != nil {
		return nil, e.ErrInternalServerError
	}
	if int64(len(data)) > maxSize {
		return nil, e.Wrap(fh.Filename, e.ErrFileTooLarge)
	}
	if len(data) == 0 {
		return nil, e.Wrap(fh.Filename, e.ErrNoImages)
	}

	mimeType := http.DetectContentType(data[:min(len(data), 512)])
	if infrastructure.IsImageMIME(mimeType) {
		if _, err := infrastructure.GetExtensionFromMIME(mimeType); err != nil {
			return nil, e.Wrap(mimeType, err)
		}
	}

	return domain.NewCapturedImage(data, mimeType, fh.Filename), nil
}
