package ml_service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"time"

	"github.com/DRSN-tech/beauty-backend/internal/domain"
	"github.com/DRSN-tech/beauty-backend/pkg/e"
	"github.com/DRSN-tech/beauty-backend/pkg/jitter"
	"github.com/DRSN-tech/beauty-backend/pkg/logger"
)

const maxErrorBody = 1 << 10

// MLService клиент для внешнего сервиса эмбеддингов (CLIP в отдельном процессе)
type MLService struct {
	client      *http.Client
	url         string
	maxAttempts int
	backoff     *jitter.Backoff
	logger      logger.Logger
}

type embedResponse struct {
	Embedding    []float32 `json:"embedding"`
	ModelVersion string    `json:"model_version"`
}

// retryableError — ошибка транспорта или 5xx, после которой имеет смысл повторить запрос.
type retryableError struct{ err error }

func (r retryableError) Error() string { return r.err.Error() }
func (r retryableError) Unwrap() error { return r.err }

func NewMLService(client *http.Client, url string, maxAttempts int, backoff *jitter.Backoff, logger logger.Logger) *MLService {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if backoff == nil {
		backoff = jitter.NewBackoff(200*time.Millisecond, 2*time.Second, jitter.DefaultJitter)
	}

	return &MLService{
		client:      client,
		url:         url,
		maxAttempts: maxAttempts,
		backoff:     backoff,
		logger:      logger,
	}
}

// Extract отправляет кадр в сервис эмбеддингов с повторами и экспоненциальной задержкой.
// Повторяются только сетевые ошибки и ответы 5xx.
func (m *MLService) Extract(ctx context.Context, img *domain.DecodedImage) (*domain.Embedding, error) {
	const op = "MLService.Extract"

	body, contentType, err := m.encodeRequest(img)
	if err != nil {
		return nil, e.Wrap(op, fmt.Errorf("%w: %w", e.ErrExtraction, err))
	}

	var lastErr error
	for attempt := 0; attempt < m.maxAttempts; attempt++ {
		emb, err := m.extractOnce(ctx, body, contentType)
		if err == nil {
			return emb, nil
		}
		lastErr = err

		var retryable retryableError
		if !errors.As(err, &retryable) || attempt == m.maxAttempts-1 {
			break
		}

		sleepTime := m.backoff.Next(attempt)
		m.logger.Warnf("embedding request failed, retrying in %v (attempt %d): %v", sleepTime, attempt+1, err)
		select {
		case <-time.After(sleepTime):
		case <-ctx.Done():
			return nil, e.Wrap(op, fmt.Errorf("%w: %w", e.ErrExtraction, ctx.Err()))
		}
	}

	return nil, e.Wrap(op, fmt.Errorf("%w: %w", e.ErrExtraction, lastErr))
}

func (m *MLService) extractOnce(ctx context.Context, body []byte, contentType string) (*domain.Embedding, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		return nil, retryableError{err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		err := fmt.Errorf("embedding service responded %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
		if resp.StatusCode >= http.StatusInternalServerError {
			return nil, retryableError{err}
		}
		return nil, err
	}

	var res embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, fmt.Errorf("decode embedding response: %w", err)
	}
	if len(res.Embedding) == 0 {
		return nil, fmt.Errorf("embedding service returned an empty vector")
	}

	return domain.NewEmbedding(res.Embedding, res.ModelVersion), nil
}

// encodeRequest собирает multipart с полем file. Если исходных байтов нет, кадр перекодируется в PNG.
func (m *MLService) encodeRequest(img *domain.DecodedImage) ([]byte, string, error) {
	data, mimeType, name := []byte(nil), "image/png", "frame.png"
	if img.Source != nil && len(img.Source.Data) > 0 {
		data, mimeType = img.Source.Data, img.Source.MimeType
		if img.Source.Name != "" {
			name = img.Source.Name
		}
	} else {
		var buf bytes.Buffer
		if err := png.Encode(&buf, img.Image); err != nil {
			return nil, "", err
		}
		data = buf.Bytes()
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, name))
	h.Set("Content-Type", mimeType)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(data); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}

	return body.Bytes(), w.FormDataContentType(), nil
}
