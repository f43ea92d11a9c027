package minio

import (
	"context"
	"strings"

	"github.com/DRSN-tech/beauty-backend/internal/cfg"
	"github.com/DRSN-tech/beauty-backend/pkg/e"
	"github.com/jimlawless/whereami"
	"github.com/minio/minio-go/v7"
)

// ArtifactRepo читает артефакты моделей (классификаторы, ONNX, схему цветов) из бакета MinIO/S3.
type ArtifactRepo struct {
	mc  *minio.Client
	cfg *cfg.MinIOCfg
}

func NewArtifactRepo(mc *minio.Client, cfg *cfg.MinIOCfg) *ArtifactRepo {
	return &ArtifactRepo{
		mc:  mc,
		cfg: cfg,
	}
}

// List возвращает ключи всех объектов под префиксом, "каталоги" пропускаются.
func (a *ArtifactRepo) List(ctx context.Context, prefix string) ([]string, error) {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	var keys []string
	for obj := range a.mc.ListObjects(ctx, a.cfg.BucketName, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), obj.Err)
		}
		if strings.HasSuffix(obj.Key, "/") {
			continue
		}
		keys = append(keys, obj.Key)
	}

	return keys, nil
}

// Download сохраняет объект в локальный файл.
func (a *ArtifactRepo) Download(ctx context.Context, key, path string) error {
	if err := a.mc.FGetObject(ctx, a.cfg.BucketName, key, path, minio.GetObjectOptions{}); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}
