package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort string
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	RunMigrations bool
	MigrationsDir string

	AWSRegion         string
	SQSReportQueueURL string

	JWTSecret          string        // Secret key cho JWT
	JWTExpirationHours time.Duration // Thời gian hết hạn của JWT

	// Các policy flag cho luồng đặt chỗ. Hai quy tắc này từng tồn tại rồi bị gỡ bỏ
	// trong quá trình phát triển, nên để dạng cấu hình thay vì hard-code.
	OneReservationPerUser bool          // Mỗi user chỉ được giữ một reservation active/pending
	EventWindowEnforced   bool          // Bật/tắt quy tắc cửa sổ 30 phút cho reservation gắn sự kiện
	EventWindowLead       time.Duration // Khoảng thời gian trước giờ sự kiện được phép đặt chỗ
}

func Load() *Config {
	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		log.Printf("Cảnh báo: Không thể tải file .env: %v", err)
	}

	dbPort, _ := strconv.Atoi(getEnv("DB_PORT", "5432"))

	jwtExpHours, _ := strconv.Atoi(getEnv("JWT_EXPIRATION_HOURS", "24")) // Mặc định 24 giờ

	eventLeadMinutes, _ := strconv.Atoi(getEnv("EVENT_WINDOW_LEAD_MINUTES", "30"))

	return &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     dbPort,
		DBUser:     getEnv("DB_USER", "parklee"),
		DBPassword: getEnv("DB_PASSWORD", "parklee"),
		DBName:     getEnv("DB_NAME", "parklee_db"),
		DBSslMode:  getEnv("DB_SSLMODE", "disable"),

		RunMigrations: getBoolEnv("RUN_MIGRATIONS", false),
		MigrationsDir: getEnv("MIGRATIONS_DIR", "internal/db/migrations"),

		AWSRegion:         getEnv("AWS_REGION", "af-south-1"),
		SQSReportQueueURL: getEnv("SQS_REPORT_QUEUE_URL", ""), // Để trống nếu không đẩy report lên SQS

		JWTSecret:          getEnv("JWT_SECRET", "parklee-dev-secret-change-me"),
		JWTExpirationHours: time.Duration(jwtExpHours) * time.Hour,

		OneReservationPerUser: getBoolEnv("ONE_RESERVATION_PER_USER", false),
		EventWindowEnforced:   getBoolEnv("EVENT_WINDOW_ENFORCED", true),
		EventWindowLead:       time.Duration(eventLeadMinutes) * time.Minute,
	}
}

func getEnv(key string, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	log.Printf("Biến môi trường '%s' không được đặt, sử dụng giá trị mặc định: '%s'", key, fallback)
	return fallback
}

func getBoolEnv(key string, fallback bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("Biến môi trường '%s' không hợp lệ (%s), sử dụng giá trị mặc định: %t", key, value, fallback)
		return fallback
	}
	return parsed
}
