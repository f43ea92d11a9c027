package minio

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/DRSN-tech/beauty-backend/internal/usecase"
	"github.com/DRSN-tech/beauty-backend/pkg/e"
	"github.com/DRSN-tech/beauty-backend/pkg/jitter"
	"github.com/DRSN-tech/beauty-backend/pkg/logger"
)

const (
	defaultDownloadLimit = 4
	downloadAttempts     = 3
)

// MinioInfrastructure выкачивает артефакты моделей из бакета в локальный каталог до загрузки моделей.
type MinioInfrastructure struct {
	repo          usecase.ArtifactRepository
	prefix        string
	downloadLimit int
	backoff       *jitter.Backoff
	logger        logger.Logger
}

func NewMinioInfrastructure(repo usecase.ArtifactRepository, prefix string, logger logger.Logger) *MinioInfrastructure {
	return &MinioInfrastructure{
		repo:          repo,
		prefix:        strings.Trim(prefix, "/"),
		downloadLimit: defaultDownloadLimit,
		backoff:       jitter.NewBackoff(500*time.Millisecond, 5*time.Second, jitter.DefaultJitter),
		logger:        logger,
	}
}

// SyncArtifacts скачивает все объекты под префиксом в destDir, сохраняя относительные пути.
// Загрузки идут параллельно с ограничением; первая ошибка отменяет остальные.
func (m *MinioInfrastructure) SyncArtifacts(ctx context.Context, destDir string) ([]string, error) {
	const op = "MinioInfrastructure.SyncArtifacts"

	keys, err := m.repo.List(ctx, m.prefix)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	if len(keys) == 0 {
		return nil, e.Wrap(op, fmt.Errorf("%w: no artifacts under prefix %q", e.ErrModelLoad, m.prefix))
	}

	// Отмена остальных загрузок при первой ошибке
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	pathCh := make(chan string, len(keys))
	errCh := make(chan error, len(keys))
	sem := make(chan struct{}, m.downloadLimit)

	var wg sync.WaitGroup
	for _, key := range keys {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			dest, err := m.localPath(destDir, key)
			if err != nil {
				errCh <- err
				return
			}
			if err := m.download(ctx, key, dest); err != nil {
				errCh <- fmt.Errorf("download %s failed: %w", key, err)
				return
			}

			pathCh <- dest
		}()
	}

	go func() {
		wg.Wait()
		close(errCh)
		close(pathCh)
	}()

	paths := make([]string, 0, len(keys))
	for completed := 0; completed < len(keys); {
		select {
		case p, ok := <-pathCh:
			if ok {
				paths = append(paths, p)
				completed++
			}
		case err, ok := <-errCh:
			if ok {
				cancel()
				return nil, e.Wrap(op, err)
			}
		case <-ctx.Done():
			return nil, e.Wrap(op, ctx.Err())
		}
	}

	m.logger.Infof("%d artifacts synced from prefix %q to %s", len(paths), m.prefix, destDir)
	return paths, nil
}

// download повторяет скачивание с экспоненциальной задержкой и jitter.
func (m *MinioInfrastructure) download(ctx context.Context, key, dest string) error {
	var err error
	for attempt := 0; attempt < downloadAttempts; attempt++ {
		if err = m.repo.Download(ctx, key, dest); err == nil {
			return nil
		}
		if attempt == downloadAttempts-1 {
			break
		}

		sleepTime := m.backoff.Next(attempt)
		m.logger.Warnf("artifact %s download failed, retrying in %v (attempt %d)", key, sleepTime, attempt+1)
		select {
		case <-time.After(sleepTime):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return err
}

// localPath переводит ключ объекта в путь внутри destDir; выход за пределы destDir запрещён.
func (m *MinioInfrastructure) localPath(destDir, key string) (string, error) {
	rel := strings.TrimPrefix(key, m.prefix)
	rel = strings.TrimPrefix(path.Clean("/"+rel), "/")
	if rel == "" || rel == "." {
		return "", fmt.Errorf("object key %q has no file name", key)
	}

	dest := filepath.Join(destDir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", err
	}

	return dest, nil
}
