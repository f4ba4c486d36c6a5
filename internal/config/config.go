package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var AppEnv Config

type Config struct {
	Port                string
	MongoURI            string
	DBName              string
	DocumentsCollection string
	JWTSecret           string
	AccessTokenTTL      time.Duration
	AdminSecretKey      string

	RedisURL        string
	QueueDriver     string
	KafkaBrokers    []string
	OrdersQueueName string
	QueueMaxDequeue int
	QueuePollTime   time.Duration

	ShippingSchedule string
	ProductCacheTTL  time.Duration
	UploadDir        string
	PublicBaseURL    string

	EnableWorker  bool
	EnableSweeper bool
}

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println(".env not loaded:", err)
	}
	AppEnv = FromEnv()
}

// FromEnv builds a Config from the current process environment without
// touching .env files.
func FromEnv() Config {
	return Config{
		Port:                getEnvOrDefault("PORT", "8080"),
		MongoURI:            getEnvOrDefault("MONGO_URI", "mongodb://localhost:27017"),
		DBName:              getEnvOrDefault("DB_NAME", "widgetstore"),
		DocumentsCollection: getEnvOrDefault("DOCUMENTS_COLLECTION", "documents"),
		JWTSecret:           getEnvOrDefault("JWT_SECRET", ""),
		AccessTokenTTL:      getDurationEnv("ACCESS_TOKEN_TTL", 60, time.Minute),
		AdminSecretKey:      getEnvOrDefault("ADMIN_SECRET_KEY", ""),

		RedisURL:        getEnvOrDefault("REDIS_URL", "redis://localhost:6379/0"),
		QueueDriver:     strings.ToLower(getEnvOrDefault("QUEUE_DRIVER", "redis")),
		KafkaBrokers:    getListEnv("KAFKA_BROKERS", "localhost:9092"),
		OrdersQueueName: getEnvOrDefault("ORDERS_QUEUE_NAME", "orders"),
		QueueMaxDequeue: getIntEnv("QUEUE_MAX_DEQUEUE", 5),
		QueuePollTime:   getDurationEnv("QUEUE_POLL_TIMEOUT", 5, time.Second),

		ShippingSchedule: getEnvOrDefault("SHIPPING_SCHEDULE", "0 0 9 * * *"),
		ProductCacheTTL:  getDurationEnv("PRODUCT_CACHE_TTL", 10, time.Minute),
		UploadDir:        getEnvOrDefault("UPLOAD_DIR", "./public/uploads"),
		PublicBaseURL:    strings.TrimRight(getEnvOrDefault("PUBLIC_BASE_URL", "/public/uploads"), "/"),

		EnableWorker:  getBoolEnv("ENABLE_WORKER", true),
		EnableSweeper: getBoolEnv("ENABLE_SWEEPER", true),
	}
}
