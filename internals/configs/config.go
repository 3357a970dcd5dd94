package configs

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

var (
	JWTSecret  string
	AdminEmail string

	SMTPHost   string
	SMTPPort   string
	SMTPUser   string
	SMTPPass   string
	SMTPFrom   string
	SMTPSecure string

	AdminUsername           string
	AdminPassword           string
	DistrictDefaultPassword string
)

// =======================
// ENV LOADER
// =======================
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using system ENV")
	}

	JWTSecret = GetEnv("JWT_SECRET")
	AdminEmail = GetEnv("ADMIN_EMAIL")

	SMTPHost = GetEnv("SMTP_HOST")
	SMTPPort = GetEnv("SMTP_PORT")
	SMTPUser = GetEnv("SMTP_USER")
	SMTPPass = GetEnv("SMTP_PASS")
	SMTPFrom = GetEnv("SMTP_FROM")
	SMTPSecure = GetEnv("SMTP_SECURE")

	AdminUsername = GetEnv("ADMIN_USERNAME")
	AdminPassword = GetEnv("ADMIN_PASSWORD")
	DistrictDefaultPassword = GetEnv("DISTRICT_DEFAULT_PASSWORD")

	if JWTSecret == "" {
		log.Fatal("JWT_SECRET is not set")
	}
}

func GetEnv(key string, defaultValue ...string) string {
	value, exists := os.LookupEnv(key)
	if !exists && len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return value
}
