package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	PublicBaseURL string
	LogLevel      string

	DatabaseURL string

	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	// OpenAI configuration for the AI-backed response generator
	OpenAIAPIKey      string
	OpenAIModel       string
	OpenAIMaxTokens   int
	OpenAITemperature float64
	LLMTimeout        time.Duration

	// SendGrid Email Configuration
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string
	NotifyTimeout     time.Duration

	// Intake conversation tuning
	SessionTTL               time.Duration
	MessageHistoryLimit      int
	RequireFinalConfirmation bool

	// Scheduling configuration
	DoxyBaseURL             string
	DoctorNotificationEmail string
	OnCallDoctorName        string
	DoctorPool              []string
	AppointmentHashKey      string
	AppointmentDuration     time.Duration

	CORSAllowedOrigins []string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", ""),
		LogLevel:      getEnv("LOG_LEVEL", "info"),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:       getEnv("OPENAI_MODEL", "gpt-4o"),
		OpenAIMaxTokens:   getEnvAsInt("OPENAI_MAX_TOKENS", 300),
		OpenAITemperature: getEnvAsFloat("OPENAI_TEMPERATURE", 0.7),
		LLMTimeout:        getEnvAsDuration("LLM_TIMEOUT", 12*time.Second),

		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "Medikah Care Team"),
		NotifyTimeout:     getEnvAsDuration("NOTIFY_TIMEOUT", 15*time.Second),

		SessionTTL:               getEnvAsDuration("SESSION_TTL", 90*time.Minute),
		MessageHistoryLimit:      getEnvAsInt("MESSAGE_HISTORY_LIMIT", 20),
		RequireFinalConfirmation: getEnvAsBool("REQUIRE_FINAL_CONFIRMATION", true),

		DoxyBaseURL:             getEnv("DOXY_BASE_URL", ""),
		DoctorNotificationEmail: getEnv("DOCTOR_NOTIFICATION_EMAIL", ""),
		OnCallDoctorName:        getEnv("ON_CALL_DOCTOR_NAME", "Dr. Alvarez"),
		DoctorPool:              getEnvAsList("SCHEDULER_DOCTORS", "Dr. Alvarez,Dr. Gutierrez,Dr. Lopez"),
		AppointmentHashKey:      getEnv("APPOINTMENT_HASH_KEY", ""),
		AppointmentDuration:     getEnvAsDuration("APPOINTMENT_DURATION", 30*time.Minute),

		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsList splits a comma-separated environment variable, dropping empty entries.
func getEnvAsList(key, defaultValue string) []string {
	raw := getEnv(key, defaultValue)
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
