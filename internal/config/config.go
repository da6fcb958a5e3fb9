package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const defaultPath = "config/config.yaml"

type ServerConfig struct {
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type AuthConfig struct {
	JWTSecret         string        `yaml:"jwt_secret"`
	AccessTTL         time.Duration `yaml:"access_ttl"`
	RefreshTTL        time.Duration `yaml:"refresh_ttl"`
	AdminRegisterCode string        `yaml:"admin_registration_token"`
	BootstrapEmail    string        `yaml:"bootstrap_admin_email"`
	BootstrapPassword string        `yaml:"bootstrap_admin_password"`
}

type EmailConfig struct {
	SMTPHost     string `yaml:"smtp_host"`
	SMTPPort     int    `yaml:"smtp_port"`
	SMTPUser     string `yaml:"smtp_user"`
	SMTPPassword string `yaml:"smtp_password"`
	FromEmail    string `yaml:"from_email"`
}

type TelegramConfig struct {
	BotToken    string `yaml:"bot_token"`
	AdminChatID int64  `yaml:"admin_chat_id"`
}

type AttendanceConfig struct {
	Timezone          string `yaml:"timezone"`
	MaxFaceImageBytes int    `yaml:"max_face_image_bytes"`
	FaceImageMaxEdge  int    `yaml:"face_image_max_edge"`
	FaceImageMaxPx    int    `yaml:"face_image_max_pixels"`
}

type FaceVerifierConfig struct {
	Mode      string        `yaml:"mode"` // simulated | http
	URL       string        `yaml:"url"`
	APIKey    string        `yaml:"api_key"`
	Timeout   time.Duration `yaml:"timeout"`
	Threshold float64       `yaml:"threshold"`
}

type Config struct {
	Server   ServerConfig `yaml:"server"`
	Database struct {
		DSN string `yaml:"url"`
	} `yaml:"database"`
	Auth         AuthConfig         `yaml:"auth"`
	Email        EmailConfig        `yaml:"email"`
	Telegram     TelegramConfig     `yaml:"telegram"`
	Attendance   AttendanceConfig   `yaml:"attendance"`
	FaceVerifier FaceVerifierConfig `yaml:"face_verifier"`
}

// Load reads the YAML file (a missing file is not an error), applies
// environment overrides (.env is loaded when present) and defaults, then
// validates required keys.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	if path == "" {
		path = getEnv("CONFIG_PATH", defaultPath)
	}

	var cfg Config
	f, err := os.Open(path)
	switch {
	case err == nil:
		defer f.Close()
		if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
		// только ENV
	default:
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// MustLoad is Load that panics, for process start-up.
func MustLoad() *Config {
	cfg, err := Load("")
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}
	return cfg
}

func applyEnv(cfg *Config) {
	cfg.Database.DSN = getEnv("DB_DSN", cfg.Database.DSN)
	cfg.Auth.JWTSecret = getEnv("JWT_SECRET", cfg.Auth.JWTSecret)
	cfg.Auth.AdminRegisterCode = getEnv("ADMIN_REGISTRATION_TOKEN", cfg.Auth.AdminRegisterCode)
	cfg.Email.SMTPPassword = getEnv("SMTP_PASSWORD", cfg.Email.SMTPPassword)
	cfg.Telegram.BotToken = getEnv("TELEGRAM_BOT_TOKEN", cfg.Telegram.BotToken)
	cfg.FaceVerifier.URL = getEnv("FACE_VERIFIER_URL", cfg.FaceVerifier.URL)
	cfg.FaceVerifier.APIKey = getEnv("FACE_VERIFIER_API_KEY", cfg.FaceVerifier.APIKey)
	cfg.Server.Port = getEnvInt("SERVER_PORT", cfg.Server.Port)
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 9999
	}
	if cfg.Auth.AccessTTL == 0 {
		cfg.Auth.AccessTTL = 24 * time.Hour
	}
	if cfg.Auth.RefreshTTL == 0 {
		cfg.Auth.RefreshTTL = 30 * 24 * time.Hour
	}
	if cfg.Auth.BootstrapEmail == "" {
		cfg.Auth.BootstrapEmail = "admin@company.com"
	}
	if cfg.Auth.BootstrapPassword == "" {
		cfg.Auth.BootstrapPassword = "admin123"
	}
	if cfg.Email.SMTPPort == 0 {
		cfg.Email.SMTPPort = 587
	}
	if cfg.Attendance.Timezone == "" {
		cfg.Attendance.Timezone = "Local"
	}
	if cfg.Attendance.MaxFaceImageBytes == 0 {
		cfg.Attendance.MaxFaceImageBytes = 5 << 20
	}
	if cfg.Attendance.FaceImageMaxEdge == 0 {
		cfg.Attendance.FaceImageMaxEdge = 640
	}
	if cfg.Attendance.FaceImageMaxPx == 0 {
		cfg.Attendance.FaceImageMaxPx = 16 << 20
	}
	if cfg.FaceVerifier.Mode == "" {
		cfg.FaceVerifier.Mode = "simulated"
	}
	if cfg.FaceVerifier.Timeout == 0 {
		cfg.FaceVerifier.Timeout = 10 * time.Second
	}
	if cfg.FaceVerifier.Threshold == 0 {
		cfg.FaceVerifier.Threshold = 0.8
	}
}

// Validate lists every missing or inconsistent key in one error.
func (c *Config) Validate() error {
	var problems []string
	if c.Database.DSN == "" {
		problems = append(problems, "database.url (DB_DSN)")
	}
	if c.Auth.JWTSecret == "" {
		problems = append(problems, "auth.jwt_secret (JWT_SECRET)")
	}
	switch c.FaceVerifier.Mode {
	case "simulated":
	case "http":
		if c.FaceVerifier.URL == "" {
			problems = append(problems, "face_verifier.url (FACE_VERIFIER_URL)")
		}
	default:
		problems = append(problems, fmt.Sprintf("face_verifier.mode %q (simulated|http)", c.FaceVerifier.Mode))
	}
	if _, err := c.Location(); err != nil {
		problems = append(problems, fmt.Sprintf("attendance.timezone %q", c.Attendance.Timezone))
	}
	if len(problems) > 0 {
		return errors.New("invalid config: " + strings.Join(problems, ", "))
	}
	return nil
}

// Location is the zone used to derive the attendance date.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Attendance.Timezone)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
