package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/DRSN-tech/beauty-backend/internal/cfg"
	v1Grpc "github.com/DRSN-tech/beauty-backend/internal/delivery/v1/grpc"
	v1Http "github.com/DRSN-tech/beauty-backend/internal/delivery/v1/http"
	"github.com/DRSN-tech/beauty-backend/internal/domain"
	"github.com/DRSN-tech/beauty-backend/internal/infrastructure/classifier"
	"github.com/DRSN-tech/beauty-backend/internal/infrastructure/imaging"
	"github.com/DRSN-tech/beauty-backend/internal/infrastructure/kafka"
	minioInfra "github.com/DRSN-tech/beauty-backend/internal/infrastructure/minio"
	ml_service "github.com/DRSN-tech/beauty-backend/internal/infrastructure/ml-service"
	"github.com/DRSN-tech/beauty-backend/internal/infrastructure/onnx"
	"github.com/DRSN-tech/beauty-backend/internal/metrics"
	"github.com/DRSN-tech/beauty-backend/internal/repository/catalog"
	"github.com/DRSN-tech/beauty-backend/internal/repository/colorscheme"
	s3Repo "github.com/DRSN-tech/beauty-backend/internal/repository/minio"
	"github.com/DRSN-tech/beauty-backend/internal/repository/pgdb"
	pgdbConv "github.com/DRSN-tech/beauty-backend/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/beauty-backend/internal/repository/redis"
	"github.com/DRSN-tech/beauty-backend/internal/repository/xlsx"
	"github.com/DRSN-tech/beauty-backend/internal/usecase"
	"github.com/DRSN-tech/beauty-backend/pkg/clients"
	"github.com/DRSN-tech/beauty-backend/pkg/closer"
	"github.com/DRSN-tech/beauty-backend/pkg/e"
	"github.com/DRSN-tech/beauty-backend/pkg/logger"
	"github.com/DRSN-tech/beauty-backend/pkg/postgres"
	"github.com/go-chi/chi/v5"
	"github.com/jimlawless/whereami"
)

const (
	startupTimeout  = 2 * time.Minute
	shutdownTimeout = 10 * time.Second
	topicTimeout    = 5 * time.Second
)

// App держит серверы и ресурсы процесса. Всё read-only состояние (словари, схема,
// классификаторы, каталог) собирается в NewApp и дальше не меняется.
type App struct {
	cfg     *config.Config
	logger  logger.Logger
	closer  *closer.Closer
	httpSrv *v1Http.Server
	grpcSrv *v1Grpc.GRPCServer
}

// NewApp загружает артефакты и каталог. Любая ошибка здесь фатальна: сервис не должен
// принимать запросы без моделей или каталога.
func NewApp(cfg *config.Config, log logger.Logger) (*App, error) {
	const op = "app.NewApp"

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	a := &App{cfg: cfg, logger: log, closer: closer.NewCloser(0)}
	ok := false
	defer func() {
		if !ok {
			a.closeResources()
		}
	}()

	if cfg.Minio != nil {
		if err := syncArtifacts(ctx, cfg, log); err != nil {
			return nil, e.Wrap(op, err)
		}
	}

	vocabs, scheme, err := colorscheme.Load(cfg.Models.ColorSchemePath, cfg.Models.RecommendLimit)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	loaded, err := classifier.LoadAll(cfg.Models.Dir, vocabs, cfg.Models.VectorSize, log)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	classifiers := make([]usecase.AttributeClassifier, 0, len(loaded))
	for _, c := range loaded {
		classifiers = append(classifiers, c)
	}

	extractor, err := a.initExtractor()
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	products, err := a.loadCatalog(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	cat := catalog.NewCatalog(products)
	for _, c := range domain.Categories {
		if cat.Count(c) == 0 {
			log.Warnf("catalog has no %s products, recommendations will be empty", c)
		}
	}

	m := metrics.New()

	var publisher usecase.EventPublisher
	if cfg.Kafka != nil {
		producer := kafka.NewProducer(log, cfg.Kafka)
		if err := producer.EnsureTopic(topicTimeout); err != nil {
			log.Warnf("kafka topic %s not ensured, events may be lost: %v", cfg.Kafka.Topic, err)
		}
		a.closer.AddSimple("kafka producer", producer.Close)
		publisher = producer
	}

	var limiter usecase.RateLimiter
	if cfg.Redis != nil {
		redisClient := clients.NewRedisClient(cfg.Redis)
		a.closer.AddSimple("redis", redisClient.Close)
		if err := redisClient.Ping(ctx); err != nil {
			return nil, e.Wrap(op, err)
		}
		limiter = redis.NewRateLimitRepo(redisClient, cfg.Redis, log)
	}

	predictUC, err := usecase.NewPredictUC(
		imaging.NewDecoder(imaging.DefaultMaxPixels),
		extractor,
		classifiers,
		vocabs,
		scheme,
		cat,
		publisher,
		m,
		cfg.Models.VectorSize,
		log,
	)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	r := chi.NewRouter()
	v1Http.NewRouter(r, cfg.Http, m, limiter, log).Init(predictUC)
	a.httpSrv = v1Http.NewServer(r, cfg.Http)
	a.grpcSrv = v1Grpc.NewGRPCServer(cfg.Grpc, log)

	log.Infof("app initialized: %d classifiers, %d products, embedder=%s",
		len(classifiers), cat.Len(), cfg.Embedder.Backend)
	ok = true
	return a, nil
}

// Run запускает HTTP и gRPC серверы и блокируется до сигнала или фатальной ошибки.
func (a *App) Run() error {
	errCh := make(chan error, 2)

	go func() {
		a.logger.Infof("gRPC server starting on %s:%s", a.cfg.Grpc.NetworkMode, a.cfg.Grpc.Port)
		if err := a.grpcSrv.Start(); err != nil {
			errCh <- fmt.Errorf("gRPC server: %w", err)
		}
	}()

	go func() {
		a.logger.Infof("HTTP server started on port %s", a.cfg.Http.Port)
		if err := a.httpSrv.Run(); err != nil {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	a.grpcSrv.SetServing(true)

	// === Ожидание сигнала или ошибки ===
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	var appErr error
	select {
	case appErr = <-errCh:
		a.logger.Errorf(appErr, "server fatal error")
	case <-shutdown:
		a.logger.Infof("Received shutdown signal, stopping gracefully...")
	}

	// === Graceful shutdown ===
	a.grpcSrv.SetServing(false)
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := a.httpSrv.Stop(shutdownCtx); err != nil {
		a.logger.Errorf(err, "HTTP server shutdown error")
	} else {
		a.logger.Infof("HTTP server stopped")
	}

	if err := a.grpcSrv.Stop(shutdownCtx); err != nil {
		a.logger.Warnf("gRPC server shutdown: %v", err)
	}

	if err := a.closer.Close(shutdownCtx); err != nil {
		a.logger.Errorf(err, "resources shutdown")
	}

	a.logger.Infof("Application shutdown complete")
	return appErr
}

func (a *App) closeResources() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.closer.Close(ctx); err != nil {
		a.logger.Warnf("resources shutdown after failed start: %v", err)
	}
}

func (a *App) initExtractor() (usecase.FeatureExtractor, error) {
	cfg := a.cfg.Embedder
	switch cfg.Backend {
	case config.EmbedderHTTP:
		client := &http.Client{Timeout: cfg.Timeout}
		a.logger.Infof("embedder: HTTP sidecar %s", cfg.URL)
		return ml_service.NewMLService(client, cfg.URL, cfg.MaxAttempts, nil, a.logger), nil
	default:
		x, err := onnx.NewExtractor(onnx.Config{
			ModelPath:  cfg.ModelPath,
			LibPath:    cfg.LibPath,
			InputName:  cfg.InputName,
			OutputName: cfg.OutputName,
			PoolSize:   cfg.PoolSize,
			VectorSize: a.cfg.Models.VectorSize,
		}, a.logger)
		if err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		a.closer.AddSimple("onnx sessions", x.Close)
		return x, nil
	}
}

func (a *App) loadCatalog(ctx context.Context) ([]domain.Product, error) {
	if a.cfg.Catalog.Source != config.CatalogPostgres {
		return xlsx.NewReader(a.logger).Load(a.cfg.Catalog.Path)
	}

	db, err := initPGDB(ctx, a.logger, a.cfg.Db)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	// каталог читается один раз, соединение после старта не нужно
	defer db.Close()

	products, err := pgdb.NewProductRepo(db.Pool, pgdbConv.NewProductConverterImpl()).ListAll(ctx)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), fmt.Errorf("%w: %w", e.ErrCatalogLoad, err))
	}

	a.logger.Infof("catalog loaded from postgres: %d products", len(products))
	return products, nil
}

// syncArtifacts выкачивает модели из бакета в MODELS_DIR до их загрузки.
func syncArtifacts(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	client, err := clients.NewMinIOClient(cfg.Minio)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	if err := clients.CheckBucket(ctx, client, cfg.Minio.BucketName); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	infra := minioInfra.NewMinioInfrastructure(s3Repo.NewArtifactRepo(client, cfg.Minio), cfg.Minio.Prefix, log)
	if _, err := infra.SyncArtifacts(ctx, cfg.Models.Dir); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// initPGDB подключается к PostgreSQL и применяет миграции.
func initPGDB(ctx context.Context, logger logger.Logger, cfg *config.PGDBCfg) (*postgres.PgDatabase, error) {
	db, err := postgres.Connect(ctx, cfg)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := db.RunMigrations(logger, ""); err != nil {
		db.Close()
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return db, nil
}
