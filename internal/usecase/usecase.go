package usecase

import "context"

type PredictUC interface {
	Predict(ctx context.Context, req *PredictReq) (*PredictRes, error)
}

type CatalogImportUC interface {
	Import(ctx context.Context, req *ImportCatalogReq) (*ImportCatalogRes, error)
}
