package env

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"agent-bridge/internal/application/port/output"

	"github.com/joho/godotenv"
)

var _ output.ConfigPort = (*EnvService)(nil)

// EnvService reads configuration from the process environment after overlaying
// .env and .env.<APP_ENV>. Missing files are fine: the caller usually passes
// everything through the real environment.
type EnvService struct {
	appEnv string
	loaded []string
}

func NewEnvService() *EnvService {
	return NewEnvServiceFromFiles(".env")
}

func NewEnvServiceFromFiles(base string) *EnvService {
	appEnv := os.Getenv("APP_ENV")
	if appEnv == "" {
		appEnv = "dev"
	}

	svc := &EnvService{appEnv: appEnv}

	if err := godotenv.Load(base); err == nil {
		svc.loaded = append(svc.loaded, base)
	}

	envFile := fmt.Sprintf("%s.%s", base, appEnv)
	if err := godotenv.Overload(envFile); err == nil {
		svc.loaded = append(svc.loaded, envFile)
	}

	return svc
}

func (e *EnvService) AppEnv() string {
	return e.appEnv
}

// LoadedFiles lists the dotenv files that were found and applied.
func (e *EnvService) LoadedFiles() []string {
	return e.loaded
}

func (e *EnvService) Get(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func (e *EnvService) GetWithDefault(key string, defaultValue string) string {
	val := e.Get(key)
	if val == "" {
		return defaultValue
	}
	return val
}

func (e *EnvService) GetBool(key string, defaultValue bool) bool {
	val := e.Get(key)
	if val == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func (e *EnvService) GetInt(key string, defaultValue int) int {
	val := e.Get(key)
	if val == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return parsed
}
