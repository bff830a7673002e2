package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port string

	DBDriver   string // postgres, mysql or sqlite
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBDSN      string // overrides the individual DB_* settings when set

	JWTKey string

	PublicBaseURL string // base of the verification link encoded in QR codes
	OutputDir     string // generated certificates are written here
	PublicPath    string // URL path OutputDir is served under

	AssetsDir        string // local template and fonts
	AssetsBaseURL    string // remote template and fonts, used instead of AssetsDir when set
	AssetHTTPTimeout time.Duration
	TemplateFile     string
	FontRegular      string
	FontBold         string
	FontItalic       string

	CourseLabel      string
	LayoutFile       string
	BatchConcurrency int
	ReconcileCron    string
}

// AppConfig is a global variable to access configuration
var AppConfig *Config

// LoadConfig initializes configuration from environment variables or defaults
func LoadConfig() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}

	AppConfig = FromEnv()

	// Validate critical configuration
	if AppConfig.JWTKey == "defaultSecret" {
		log.Println("Warning: Using default JWT_SECRET_KEY. Update it in your environment.")
	}
	if AppConfig.PublicBaseURL == "http://localhost:3000" {
		log.Println("Warning: Using default PUBLIC_BASE_URL. QR codes will point to localhost.")
	}
}

// FromEnv builds a Config from the current environment without touching .env files.
func FromEnv() *Config {
	return &Config{
		Port: getEnv("PORT", "3000"),

		DBDriver:   getEnv("DB_DRIVER", "postgres"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "certdesk"),
		DBDSN:      getEnv("DB_DSN", ""),

		JWTKey: getEnv("JWT_SECRET_KEY", "defaultSecret"),

		PublicBaseURL: getEnv("PUBLIC_BASE_URL", "http://localhost:3000"),
		OutputDir:     getEnv("OUTPUT_DIR", "./public/certificates"),
		PublicPath:    getEnv("PUBLIC_PATH", "/certificates"),

		AssetsDir:        getEnv("ASSETS_DIR", "./assets"),
		AssetsBaseURL:    getEnv("ASSETS_BASE_URL", ""),
		AssetHTTPTimeout: getEnvDuration("ASSET_HTTP_TIMEOUT", 10*time.Second),
		TemplateFile:     getEnv("TEMPLATE_FILE", "template.pdf"),
		FontRegular:      getEnv("FONT_REGULAR", "Regular.ttf"),
		FontBold:         getEnv("FONT_BOLD", "Bold.ttf"),
		FontItalic:       getEnv("FONT_ITALIC", "Italic.ttf"),

		CourseLabel:      getEnv("COURSE_LABEL", "Malaka oshirish haqida"),
		LayoutFile:       getEnv("LAYOUT_FILE", ""),
		BatchConcurrency: getEnvInt("BATCH_CONCURRENCY", 4),
		ReconcileCron:    getEnv("RECONCILE_CRON", "0 3 * * *"),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt retrieves an environment variable as an integer or returns the default integer value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to int: %v", key, err)
		return defaultValue
	}
	return intValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to duration: %v", key, err)
		return defaultValue
	}
	return d
}
