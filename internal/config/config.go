package config

import "os"

type Config struct {
	HTTPAddr        string
	DataDir         string
	ServicesPath    string
	CredentialsPath string
	GelfAddr        string
}

func Load() *Config {
	return &Config{
		HTTPAddr:        getEnv("PORTAL_ADDR", ":8080"),
		DataDir:         getEnv("PORTAL_DATA_DIR", "data/uploads"),
		ServicesPath:    getEnv("PORTAL_SERVICES", "config/services.yaml"),
		CredentialsPath: getEnv("PORTAL_CREDENTIALS", "config/credentials.yaml"),
		GelfAddr:        getEnv("PORTAL_GELF_ADDR", ""),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
