package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr    string
	DatabaseURL string

	WechatAppID  string
	WechatSecret string

	FeishuAppID     string
	FeishuAppSecret string
	FeishuAppToken  string
	FeishuTableID   string

	SessionTTL    time.Duration
	SweepInterval time.Duration

	LoginRatePerSecond float64
	LoginRateBurst     int
}

// Load reads configuration from the environment, with .env as a convenience
// for local development.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %s", err)
	}

	return Config{
		HTTPAddr:    getenv("HTTP_ADDR", ":8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		WechatAppID:  os.Getenv("WECHAT_APPID"),
		WechatSecret: os.Getenv("WECHAT_SECRET"),

		FeishuAppID:     os.Getenv("FEISHU_APP_ID"),
		FeishuAppSecret: os.Getenv("FEISHU_APP_SECRET"),
		FeishuAppToken:  os.Getenv("FEISHU_APP_TOKEN"),
		FeishuTableID:   os.Getenv("FEISHU_TABLE_ID"),

		SessionTTL:    getenvSeconds("SESSION_TTL_SECONDS", 7*24*time.Hour),
		SweepInterval: getenvSeconds("SESSION_SWEEP_SECONDS", time.Hour),

		LoginRatePerSecond: getenvFloat("LOGIN_RATE_PER_SECOND", 5),
		LoginRateBurst:     getenvInt("LOGIN_RATE_BURST", 10),
	}
}

func getenv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvSeconds(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return parsed
		}
	}
	return fallback
}

func getenvFloat(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil && parsed > 0 {
			return parsed
		}
	}
	return fallback
}
