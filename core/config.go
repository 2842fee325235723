package core

import (
	"log"
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Conf holds the app configuration, loaded once at startup.
var Conf *Config

type (
	Config struct {
		AppName                   string
		Env                       string // DEV (local; default), TEST, QA, PROD
		Build                     string
		Debug                     bool
		TestMode                  bool
		SecretKey                 string
		FromEmail                 string
		FrontendBaseURL           string
		PasswordResetTimeoutDelta time.Duration
		QuizSecondsPerQuestion    int
		RollbarToken              string
		SendgridApiKey            string

		Server   ServerConfig
		Database DatabaseConfig
		GenAI    GenAIConfig
		RabbitMQ RabbitMQConfig
	}

	ServerConfig struct {
		Host                       string
		Port                       string
		DisableReqLogs             bool
		JWTExpirationDelta         time.Duration
		JWTRememberExpirationDelta time.Duration
		JWTRefreshExpirationDelta  time.Duration
	}

	DatabaseConfig struct {
		Enabled    bool
		Engine     string
		Host       string
		Port       string
		User       string
		Password   string
		Name       string
		DisableTLS bool
	}

	GenAIConfig struct {
		APIKey string
		Model  string
	}

	RabbitMQConfig struct {
		URL      string
		Exchange string
	}
)

func (c *Config) DefaultFromEmail() mail.Address {
	return mail.Address{Name: c.AppName, Address: c.FromEmail}
}

func (c ServerConfig) Address() string {
	return net.JoinHostPort(c.Host, c.Port)
}

func (c DatabaseConfig) Address() string {
	return net.JoinHostPort(c.Host, c.Port)
}

func init() {
	Conf = loadConfig()
}

func loadConfig() *Config {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("appName", "Lumina")
	v.SetDefault("build", "dev")
	v.SetDefault("debug", false)
	v.SetDefault("testMode", false)
	v.SetDefault("secretKey", "lum1na-9z$x+4kq)ev7@h3p!w8d#t2(r^b6&c0n=mf%yu5j")
	v.SetDefault("fromEmail", "noreply@lumina.edu")
	v.SetDefault("frontendBaseURL", "http://localhost:3000")
	v.SetDefault("passwordResetTimeoutDelta", 3*24*time.Hour)
	v.SetDefault("quizSecondsPerQuestion", 60)
	v.SetDefault("rollbarToken", "")
	v.SetDefault("sendgridApiKey", "")

	v.SetDefault("server.host", "")
	v.SetDefault("server.port", "8000")
	v.SetDefault("server.disableReqLogs", false)
	v.SetDefault("server.jwtExpirationDelta", 24*time.Hour)
	v.SetDefault("server.jwtRememberExpirationDelta", 30*24*time.Hour)
	v.SetDefault("server.jwtRefreshExpirationDelta", 7*24*time.Hour)

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "lumina")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "lumina")
	v.SetDefault("database.disableTLS", false)

	v.SetDefault("genai.apiKey", "")
	v.SetDefault("genai.model", "gemini-3-flash-preview")

	v.SetDefault("rabbitmq.url", "")
	v.SetDefault("rabbitmq.exchange", "lumina.events")

	env := strings.ToUpper(os.Getenv("ENV"))
	switch env {
	case "":
		env = "DEV"
		v.SetDefault("debug", true)
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	if wd, ok := Getwd(); ok {
		dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
		if _, err := os.Stat(dotEnvPath); err == nil {
			if err := godotenv.Load(dotEnvPath); err != nil {
				log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
			}
		} else if !os.IsNotExist(err) {
			log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
		}
	}
	v.AutomaticEnv()

	return &Config{
		AppName:                   v.GetString("appName"),
		Env:                       env,
		Build:                     v.GetString("build"),
		Debug:                     v.GetBool("debug"),
		TestMode:                  v.GetBool("testMode"),
		SecretKey:                 v.GetString("secretKey"),
		FromEmail:                 v.GetString("fromEmail"),
		FrontendBaseURL:           strings.TrimSuffix(v.GetString("frontendBaseURL"), "/"),
		PasswordResetTimeoutDelta: v.GetDuration("passwordResetTimeoutDelta"),
		QuizSecondsPerQuestion:    v.GetInt("quizSecondsPerQuestion"),
		RollbarToken:              v.GetString("rollbarToken"),
		SendgridApiKey:            v.GetString("sendgridApiKey"),
		Server: ServerConfig{
			Host:                       v.GetString("server.host"),
			Port:                       v.GetString("server.port"),
			DisableReqLogs:             v.GetBool("server.disableReqLogs"),
			JWTExpirationDelta:         v.GetDuration("server.jwtExpirationDelta"),
			JWTRememberExpirationDelta: v.GetDuration("server.jwtRememberExpirationDelta"),
			JWTRefreshExpirationDelta:  v.GetDuration("server.jwtRefreshExpirationDelta"),
		},
		Database: DatabaseConfig{
			Enabled:    v.GetBool("database.enabled"),
			Engine:     v.GetString("database.engine"),
			Host:       v.GetString("database.host"),
			Port:       v.GetString("database.port"),
			User:       v.GetString("database.user"),
			Password:   v.GetString("database.password"),
			Name:       v.GetString("database.name"),
			DisableTLS: v.GetBool("database.disableTLS"),
		},
		GenAI: GenAIConfig{
			APIKey: v.GetString("genai.apiKey"),
			Model:  v.GetString("genai.model"),
		},
		RabbitMQ: RabbitMQConfig{
			URL:      v.GetString("rabbitmq.url"),
			Exchange: v.GetString("rabbitmq.exchange"),
		},
	}
}
