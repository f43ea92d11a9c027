package cfg

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/DRSN-tech/beauty-backend/pkg/e"
	"github.com/DRSN-tech/beauty-backend/pkg/logger"
	"github.com/jimlawless/whereami"
)

const (
	EmbedderONNX = "onnx"
	EmbedderHTTP = "http"

	CatalogXLSX     = "xlsx"
	CatalogPostgres = "postgres"
)

// Config — конфигурация приложения. Необязательные подсистемы (Db, Redis, Kafka, Minio)
// равны nil, если их адрес не задан.
type Config struct {
	Http     *HTTPConfig
	Grpc     *GRPCConfig
	Models   *ModelsCfg
	Embedder *EmbedderCfg
	Catalog  *CatalogCfg
	Db       *PGDBCfg
	Redis    *RedisCfg
	Kafka    *KafkaCfg
	Minio    *MinIOCfg
}

type HTTPConfig struct {
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxUploadSize  int64 // байт
	ExposeEyeColor bool  // цвет глаз считается всегда, но в ответ попадает только по флагу
}

type GRPCConfig struct {
	Port        string
	NetworkMode string
}

type ModelsCfg struct {
	Dir             string // каталог с <attribute>_classifier.json(.gz)
	ColorSchemePath string
	VectorSize      int
	RecommendLimit  int
}

type EmbedderCfg struct {
	Backend     string // onnx | http
	ModelPath   string
	LibPath     string
	InputName   string
	OutputName  string
	PoolSize    int
	URL         string
	Timeout     time.Duration
	MaxAttempts int
}

type CatalogCfg struct {
	Source string // xlsx | postgres
	Path   string
}

type PGDBCfg struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisCfg struct {
	Addr            string
	Password        string
	User            string
	DB              int
	MaxRetries      int
	DialTimeout     time.Duration
	Timeout         time.Duration
	RateLimit       int           // запросов на /predict с одного клиента за окно
	RateLimitWindow time.Duration // длина фиксированного окна
}

type KafkaCfg struct {
	Topic             string
	Brokers           []string
	NetworkMode       string
	Partitions        int
	ReplicationFactor int
}

type MinIOCfg struct {
	MinioEndpoint     string // Адрес конечной точки Minio
	BucketName        string // Бакет с артефактами моделей
	Prefix            string // Префикс объектов внутри бакета
	MinioRootUser     string
	MinioRootPassword string
	MinioUseSSL       bool
}

// DSN собирает строку подключения pgx.
func (c *PGDBCfg) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// Load безопасно загружает конфигурацию и возвращает ошибку в случае неудачи.
func Load(log logger.Logger) (*Config, error) {
	http, err := loadHTTPConfig(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	models, err := loadModelsCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	embedder, err := loadEmbedderCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	catalog, err := loadCatalogCfg()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	db, err := loadPGDBCfg(log, catalog.Source == CatalogPostgres)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	redis, err := loadRedisCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	kafka, err := loadKafkaCfg()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	minio, err := loadMinIOCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return &Config{
		Http:     http,
		Grpc:     loadGRPCConfig(),
		Models:   models,
		Embedder: embedder,
		Catalog:  catalog,
		Db:       db,
		Redis:    redis,
		Kafka:    kafka,
		Minio:    minio,
	}, nil
}

func loadHTTPConfig(log logger.Logger) (*HTTPConfig, error) {
	const (
		defaultPort          = "8080"
		defaultReadTimeout   = 15 * time.Second
		defaultWriteTimeout  = 30 * time.Second
		defaultIdleTimeout   = 60 * time.Second
		defaultMaxUploadSize = 15 << 20
	)

	readTimeout, err := parseDurationEnv("HTTP_READ_TIMEOUT", defaultReadTimeout)
	if err != nil {
		log.Errorf(err, "invalid HTTP_READ_TIMEOUT")
		return nil, err
	}

	writeTimeout, err := parseDurationEnv("HTTP_WRITE_TIMEOUT", defaultWriteTimeout)
	if err != nil {
		log.Errorf(err, "invalid HTTP_WRITE_TIMEOUT")
		return nil, err
	}

	idleTimeout, err := parseDurationEnv("KEEP_ALIVE", defaultIdleTimeout)
	if err != nil {
		log.Errorf(err, "invalid KEEP_ALIVE")
		return nil, err
	}

	maxUpload, err := parseIntEnv("MAX_UPLOAD_SIZE", defaultMaxUploadSize)
	if err != nil {
		log.Errorf(err, "invalid MAX_UPLOAD_SIZE")
		return nil, e.Wrap("MAX_UPLOAD_SIZE", err)
	}

	exposeEyeColor, err := parseBoolEnv("EXPOSE_EYE_COLOR", false)
	if err != nil {
		log.Errorf(err, "invalid EXPOSE_EYE_COLOR")
		return nil, e.Wrap("EXPOSE_EYE_COLOR", err)
	}

	return &HTTPConfig{
		Port:           getEnvOrDefault("HTTP_PORT", defaultPort),
		ReadTimeout:    readTimeout,
		WriteTimeout:   writeTimeout,
		IdleTimeout:    idleTimeout,
		MaxUploadSize:  int64(maxUpload),
		ExposeEyeColor: exposeEyeColor,
	}, nil
}

func loadGRPCConfig() *GRPCConfig {
	const (
		defaultPort        = "8091"
		defaultNetworkMode = "tcp"
	)

	return &GRPCConfig{
		Port:        getEnvOrDefault("GRPC_PORT", defaultPort),
		NetworkMode: getEnvOrDefault("GRPC_NETWORK_MODE", defaultNetworkMode),
	}
}

func loadModelsCfg(log logger.Logger) (*ModelsCfg, error) {
	const (
		defaultDir            = "models"
		defaultColorScheme    = "configs/color_scheme.yaml"
		defaultVectorSize     = 512
		defaultRecommendLimit = 3
	)

	vectorSize, err := parseIntEnv("VECTOR_SIZE", defaultVectorSize)
	if err != nil || vectorSize <= 0 {
		log.Errorf(err, "invalid VECTOR_SIZE")
		return nil, e.Wrap("VECTOR_SIZE", e.ErrIncorrectEnvVariable)
	}

	limit, err := parseIntEnv("RECOMMEND_LIMIT", defaultRecommendLimit)
	if err != nil || limit <= 0 {
		log.Errorf(err, "invalid RECOMMEND_LIMIT")
		return nil, e.Wrap("RECOMMEND_LIMIT", e.ErrIncorrectEnvVariable)
	}

	return &ModelsCfg{
		Dir:             getEnvOrDefault("MODELS_DIR", defaultDir),
		ColorSchemePath: getEnvOrDefault("COLOR_SCHEME_PATH", defaultColorScheme),
		VectorSize:      vectorSize,
		RecommendLimit:  limit,
	}, nil
}

func loadEmbedderCfg(log logger.Logger) (*EmbedderCfg, error) {
	const (
		defaultBackend     = EmbedderONNX
		defaultModelPath   = "models/clip_vit_b32_vision.onnx"
		defaultInputName   = "pixel_values"
		defaultOutputName  = "image_embeds"
		defaultPoolSize    = 2
		defaultTimeout     = 10 * time.Second
		defaultMaxAttempts = 1
	)

	backend := strings.ToLower(getEnvOrDefault("EMBEDDER_BACKEND", defaultBackend))
	if backend != EmbedderONNX && backend != EmbedderHTTP {
		return nil, e.Wrap("EMBEDDER_BACKEND", fmt.Errorf("%w: %q", e.ErrIncorrectEnvVariable, backend))
	}

	poolSize, err := parseIntEnv("EMBEDDER_POOL_SIZE", defaultPoolSize)
	if err != nil || poolSize <= 0 {
		log.Errorf(err, "invalid EMBEDDER_POOL_SIZE")
		return nil, e.Wrap("EMBEDDER_POOL_SIZE", e.ErrIncorrectEnvVariable)
	}

	timeout, err := parseDurationEnv("EMBEDDER_TIMEOUT", defaultTimeout)
	if err != nil {
		log.Errorf(err, "invalid EMBEDDER_TIMEOUT")
		return nil, err
	}

	attempts, err := parseIntEnv("EMBEDDER_MAX_ATTEMPTS", defaultMaxAttempts)
	if err != nil || attempts <= 0 {
		log.Errorf(err, "invalid EMBEDDER_MAX_ATTEMPTS")
		return nil, e.Wrap("EMBEDDER_MAX_ATTEMPTS", e.ErrIncorrectEnvVariable)
	}

	url := getEnv("EMBEDDER_URL")
	if backend == EmbedderHTTP && url == "" {
		return nil, e.Wrap("EMBEDDER_URL", fmt.Errorf("%w: required for http backend", e.ErrIncorrectEnvVariable))
	}

	return &EmbedderCfg{
		Backend:     backend,
		ModelPath:   getEnvOrDefault("ONNX_MODEL_PATH", defaultModelPath),
		LibPath:     getEnv("ONNXRUNTIME_LIB"),
		InputName:   getEnvOrDefault("ONNX_INPUT_NAME", defaultInputName),
		OutputName:  getEnvOrDefault("ONNX_OUTPUT_NAME", defaultOutputName),
		PoolSize:    poolSize,
		URL:         url,
		Timeout:     timeout,
		MaxAttempts: attempts,
	}, nil
}

func loadCatalogCfg() (*CatalogCfg, error) {
	const (
		defaultSource = CatalogXLSX
		defaultPath   = "data/Make-Up Recommendation.xlsx"
	)

	source := strings.ToLower(getEnvOrDefault("CATALOG_SOURCE", defaultSource))
	if source != CatalogXLSX && source != CatalogPostgres {
		return nil, e.Wrap("CATALOG_SOURCE", fmt.Errorf("%w: %q", e.ErrIncorrectEnvVariable, source))
	}

	return &CatalogCfg{
		Source: source,
		Path:   getEnvOrDefault("CATALOG_PATH", defaultPath),
	}, nil
}

// loadPGDBCfg возвращает nil, если база не нужна и POSTGRES_DB не задан.
func loadPGDBCfg(log logger.Logger, required bool) (*PGDBCfg, error) {
	const (
		defaultHost    = "localhost"
		defaultPort    = "5432"
		defaultSSLMode = "disable"
	)

	dbName := getEnv("POSTGRES_DB")
	if dbName == "" && !required {
		return nil, nil
	}

	for _, key := range []string{"POSTGRES_USER", "POSTGRES_PASSWORD", "POSTGRES_DB"} {
		if getEnv(key) == "" {
			err := fmt.Errorf("%s is required", key)
			log.Errorf(err, "missing %s", key)
			return nil, e.Wrap(key, e.ErrIncorrectEnvVariable)
		}
	}

	return &PGDBCfg{
		Host:     getEnvOrDefault("POSTGRES_HOST", defaultHost),
		Port:     getEnvOrDefault("POSTGRES_PORT", defaultPort),
		User:     getEnv("POSTGRES_USER"),
		Password: getEnv("POSTGRES_PASSWORD"),
		DBName:   dbName,
		SSLMode:  getEnvOrDefault("SSL_MODE", defaultSSLMode),
	}, nil
}

// LoadPGDBCfg нужен CLI импорта каталога: там база обязательна.
func LoadPGDBCfg(log logger.Logger) (*PGDBCfg, error) {
	return loadPGDBCfg(log, true)
}

func loadRedisCfg(log logger.Logger) (*RedisCfg, error) {
	const (
		defaultDB              = 0
		defaultMaxRetries      = 3
		defaultDialTimeout     = 5 * time.Second
		defaultTimeout         = 3 * time.Second
		defaultRateLimit       = 30
		defaultRateLimitWindow = time.Minute
	)

	addr := getEnv("REDIS_ADDR")
	if addr == "" {
		return nil, nil
	}

	db, err := parseIntEnv("REDIS_DB_ID", defaultDB)
	if err != nil {
		log.Errorf(err, "invalid REDIS_DB_ID")
		return nil, e.Wrap("REDIS_DB_ID", err)
	}

	maxRetries, err := parseIntEnv("MAX_RETRIES", defaultMaxRetries)
	if err != nil {
		log.Errorf(err, "invalid MAX_RETRIES")
		return nil, e.Wrap("MAX_RETRIES", err)
	}

	dialTimeout, err := parseDurationEnv("DIAL_TIMEOUT", defaultDialTimeout)
	if err != nil {
		log.Errorf(err, "invalid DIAL_TIMEOUT")
		return nil, err
	}

	timeout, err := parseDurationEnv("REDIS_TIMEOUT", defaultTimeout)
	if err != nil {
		log.Errorf(err, "invalid REDIS_TIMEOUT")
		return nil, err
	}

	limit, err := parseIntEnv("RATE_LIMIT", defaultRateLimit)
	if err != nil || limit <= 0 {
		log.Errorf(err, "invalid RATE_LIMIT")
		return nil, e.Wrap("RATE_LIMIT", e.ErrIncorrectEnvVariable)
	}

	window, err := parseDurationEnv("RATE_LIMIT_WINDOW", defaultRateLimitWindow)
	if err != nil || window <= 0 {
		log.Errorf(err, "invalid RATE_LIMIT_WINDOW")
		return nil, e.Wrap("RATE_LIMIT_WINDOW", e.ErrIncorrectEnvVariable)
	}

	return &RedisCfg{
		Addr:            addr,
		Password:        getEnv("REDIS_PASSWORD"),
		User:            getEnv("REDIS_USER"),
		DB:              db,
		MaxRetries:      maxRetries,
		DialTimeout:     dialTimeout,
		Timeout:         timeout,
		RateLimit:       limit,
		RateLimitWindow: window,
	}, nil
}

func loadKafkaCfg() (*KafkaCfg, error) {
	const (
		defaultTopic             = "beauty.predictions"
		defaultPartitions        = 3
		defaultReplicationFactor = 1
		defaultNetworkMode       = "tcp"
	)

	brokerStr := getEnv("KAFKA_BROKERS")
	if brokerStr == "" {
		return nil, nil
	}

	var brokers []string
	for _, b := range strings.Split(brokerStr, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	if len(brokers) == 0 {
		return nil, e.Wrap("KAFKA_BROKERS", e.ErrIncorrectEnvVariable)
	}

	partitions, err := parseIntEnv("KAFKA_PARTITIONS", defaultPartitions)
	if err != nil {
		return nil, e.Wrap("KAFKA_PARTITIONS", err)
	}

	replicationFactor, err := parseIntEnv("REPLICATION_FACTOR", defaultReplicationFactor)
	if err != nil {
		return nil, e.Wrap("REPLICATION_FACTOR", err)
	}

	return &KafkaCfg{
		Brokers:           brokers,
		Topic:             getEnvOrDefault("KAFKA_TOPIC", defaultTopic),
		Partitions:        partitions,
		ReplicationFactor: replicationFactor,
		NetworkMode:       getEnvOrDefault("KAFKA_NETWORK_MODE", defaultNetworkMode),
	}, nil
}

func loadMinIOCfg(log logger.Logger) (*MinIOCfg, error) {
	const (
		defaultUseSSL   = false
		defaultEndpoint = "minio:9000"
	)

	bucket := getEnv("ARTIFACTS_BUCKET")
	if bucket == "" {
		return nil, nil
	}

	useSSL, err := parseBoolEnv("MINIO_USE_SSL", defaultUseSSL)
	if err != nil {
		log.Errorf(err, "invalid MINIO_USE_SSL")
		return nil, err
	}

	return &MinIOCfg{
		MinioEndpoint:     getEnvOrDefault("MINIO_ENDPOINT", defaultEndpoint),
		BucketName:        bucket,
		Prefix:            strings.Trim(getEnv("ARTIFACTS_PREFIX"), "/"),
		MinioRootUser:     getEnv("MINIO_ROOT_USER"),
		MinioRootPassword: getEnv("MINIO_ROOT_PASSWORD"),
		MinioUseSSL:       useSSL,
	}, nil
}

// getEnv возвращает значение переменной окружения.
// Возвращает пустую строку, если переменная не задана.
func getEnv(key string) string {
	return os.Getenv(key)
}

// getEnvOrDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return defaultValue
}

// parseDurationEnv считывает длительность или возвращает значение по умолчанию.
func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	if v := os.Getenv(key); v != "" {
		return time.ParseDuration(v)
	}

	return defaultValue, nil
}

func parseIntEnv(key string, defaultValue int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}

	intValue, err := strconv.Atoi(v)
	if err != nil {
		return defaultValue, e.ErrIncorrectEnvVariable
	}

	return intValue, nil
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}

	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultValue, e.ErrIncorrectEnvVariable
	}

	return b, nil
}
