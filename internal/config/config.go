package config

import (
	"log"
	"os"
)

type Config struct {
	Port        string
	DBDSN       string
	LogFile     string
	GroqAPIKey  string
	GroqModel   string
	GroqBaseURL string
}

func Load() Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		dsn = "puntoventa.db"
	} // sqlite file in project root
	logFile := os.Getenv("LOG_FILE")
	if logFile == "" {
		logFile = "./puntoventa.log"
	}
	model := os.Getenv("GROQ_MODEL")
	if model == "" {
		model = "llama-3.3-70b-versatile"
	}
	baseURL := os.Getenv("GROQ_BASE_URL")
	if baseURL == "" {
		baseURL = "https://api.groq.com/openai/v1"
	}

	cfg := Config{
		Port:        port,
		DBDSN:       dsn,
		LogFile:     logFile,
		GroqAPIKey:  os.Getenv("GROQ_API_KEY"), // assist endpoints disabled when empty
		GroqModel:   model,
		GroqBaseURL: baseURL,
	}
	log.Printf("[config] PORT=%s DB_DSN=%s LOG_FILE=%s GROQ_MODEL=%s groq_key_set=%t",
		cfg.Port, cfg.DBDSN, cfg.LogFile, cfg.GroqModel, cfg.GroqAPIKey != "")
	return cfg
}
