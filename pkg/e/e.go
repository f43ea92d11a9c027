package e

import "fmt"

var (
	// Ошибки конвейера распознавания
	ErrDecode          = fmt.Errorf("image cannot be decoded, please recapture")
	ErrExtraction      = fmt.Errorf("feature extraction failed")
	ErrDegenerateImage = fmt.Errorf("%w: image has zero area, please recapture", ErrExtraction)
	ErrVectorSize      = fmt.Errorf("%w: unexpected feature vector size", ErrExtraction)
	ErrModelLoad       = fmt.Errorf("model load failed")
	ErrUnknownLabel    = fmt.Errorf("label is not in attribute vocabulary")

	// Ошибки загрузки каталога и конфигурации
	ErrCatalogLoad          = fmt.Errorf("catalog load failed")
	ErrInvalidColorScheme   = fmt.Errorf("invalid color scheme")
	ErrIncorrectEnvVariable = fmt.Errorf("incorrect environment variable")
	ErrUnknownCategory      = fmt.Errorf("unknown product category")

	// Внутренние ошибки с транзакциями
	ErrTransactionNotFound = fmt.Errorf("transaction not found")

	// 400 Bad Request
	ErrStatusBadRequest  = fmt.Errorf("bad request")
	ErrExpectedMultipart = fmt.Errorf("expected multipart/form-data")
	ErrNoImages          = fmt.Errorf("no image provided")

	// 413, 415, 429
	ErrFileTooLarge         = fmt.Errorf("file too large")
	ErrUnsupportedMediaType = fmt.Errorf("unsupported media type")
	ErrTooManyRequests      = fmt.Errorf("too many requests")

	// 500
	ErrInternalServerError = fmt.Errorf("internal server error")
)

// Wrap оборачивает ошибку
func Wrap(msg string, err error) error {
	return fmt.Errorf("%s: %w", msg, err)
}
