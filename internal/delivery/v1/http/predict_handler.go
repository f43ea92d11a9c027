package http

import (
	"encoding/json"
	"net/http"

	"github.com/DRSN-tech/beauty-backend/internal/domain"
	"github.com/DRSN-tech/beauty-backend/internal/usecase"
	"github.com/DRSN-tech/beauty-backend/pkg/logger"
	"github.com/go-chi/chi/v5/middleware"
)

const (
	maxMemory         = 32 << 20
	multipartOverhead = 1 << 20 // заголовки частей и текстовые поля сверх самого файла
)

// Поля формы с изображением, в порядке приоритета.
var imageFields = []string{"file", "image"}

// ProductRecord — продукт в ответе, в именах колонок каталога.
type ProductRecord struct {
	Brand  string      `json:"Brand Name"`
	Name   string      `json:"Product Name"`
	Price  json.Number `json:"Price"`
	Rating float64     `json:"Ratings"`
}

// PredictResponse — ответ /predict. Рекомендации отдаются JSON-строками.
type PredictResponse struct {
	RequestID             string  `json:"request_id"`
	SkinTone              string  `json:"skin_tone"`
	HairColor             string  `json:"hair_color"`
	EyebrowColor          string  `json:"eyebrow_color"`
	EyeColor              *string `json:"eye_color,omitempty"`
	RecommendedFoundation string  `json:"recommended_foundation"`
	RecommendedLipstick   string  `json:"recommended_lipstick"`
}

type PredictHandler struct {
	predictUsecase usecase.PredictUC
	logger         logger.Logger
	maxUploadSize  int64
	exposeEyeColor bool
}

func NewPredictHandler(predictUsecase usecase.PredictUC, logger logger.Logger, maxUploadSize int64, exposeEyeColor bool) *PredictHandler {
	return &PredictHandler{
		predictUsecase: predictUsecase,
		logger:         logger,
		maxUploadSize:  maxUploadSize,
		exposeEyeColor: exposeEyeColor,
	}
}

// predict
//
//	@Summary		Распознавание атрибутов и подбор косметики
//	@Description	Принимает один кадр, возвращает цвет кожи, волос, бровей и рекомендации тонального крема и помады
//	@Tags			predict
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file		formData	file			true	"Изображение (jpeg, png, gif, bmp, webp)"
//	@Param			season		formData	string			false	"Сезон, переопределяет значение по умолчанию"
//	@Param			skin_type	formData	string			false	"Тип кожи, переопределяет значение по умолчанию"
//	@Success		200			{object}	PredictResponse
//	@Failure		400			{object}	ErrorResponse	"Изображение не читается"
//	@Failure		413			{object}	ErrorResponse	"Слишком большой файл"
//	@Failure		415			{object}	ErrorResponse	"Неподдерживаемый формат"
//	@Failure		429			{object}	ErrorResponse	"Превышен лимит запросов"
//	@Failure		500			{object}	ErrorResponse	"Ошибка извлечения признаков"
//	@Router			/predict [post]
func (p *PredictHandler) predict(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, p.maxUploadSize+multipartOverhead)

	if err := ensureMultipartForm(r, maxMemory); err != nil {
		p.logger.Warnf("predict: %s: %s", err.Error(), r.Header.Get("Content-Type"))
		WriteError(w, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	fh, err := imageFile(r.MultipartForm, imageFields...)
	if err != nil {
		p.logger.Warnf("predict: %s", err.Error())
		WriteError(w, err)
		return
	}

	img, err := readImage(fh, p.maxUploadSize)
	if err != nil {
		p.logger.Warnf("predict: %s", err.Error())
		WriteError(w, err)
		return
	}

	req := usecase.NewPredictReq(middleware.GetReqID(r.Context()), img, r.FormValue("season"), r.FormValue("skin_type"))
	res, err := p.predictUsecase.Predict(r.Context(), req)
	if err != nil {
		code, _ := ToHTTPResponse(err)
		if code >= http.StatusInternalServerError {
			p.logger.Errorf(err, "predict %s failed", req.RequestID)
		} else {
			p.logger.Warnf("predict %s rejected: %s", req.RequestID, err.Error())
		}
		WriteError(w, err)
		return
	}

	resp, err := p.toResponse(res)
	if err != nil {
		p.logger.Errorf(err, "predict %s: encode response", res.RequestID)
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, resp)
}

func (p *PredictHandler) toResponse(res *usecase.PredictRes) (*PredictResponse, error) {
	foundation, err := encodeProducts(res.Recommendations[domain.Foundation])
	if err != nil {
		return nil, err
	}
	lipstick, err := encodeProducts(res.Recommendations[domain.Lipstick])
	if err != nil {
		return nil, err
	}

	resp := &PredictResponse{
		RequestID:             res.RequestID,
		SkinTone:              string(res.Labels[domain.SkinTone]),
		HairColor:             string(res.Labels[domain.HairColor]),
		EyebrowColor:          string(res.Labels[domain.EyebrowColor]),
		RecommendedFoundation: foundation,
		RecommendedLipstick:   lipstick,
	}
	if eye, ok := res.Labels[domain.EyeColor]; ok && p.exposeEyeColor {
		s := string(eye)
		resp.EyeColor = &s
	}

	return resp, nil
}

// encodeProducts сериализует список в JSON-строку; пустой список — "[]".
func encodeProducts(products []domain.Product) (string, error) {
	records := make([]ProductRecord, 0, len(products))
	for _, pr := range products {
		records = append(records, ProductRecord{
			Brand:  pr.Brand,
			Name:   pr.Name,
			Price:  json.Number(pr.Price.String()),
			Rating: pr.Rating,
		})
	}

	data, err := json.Marshal(records)
	if err != nil {
		return "", err
	}

	return string(data), nil
}
