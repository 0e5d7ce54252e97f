package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const ENV_FILE = ".env"
const CONFIG_FILE = "config.yaml"

type AppConfig struct {
	ServiceName string         `yaml:"service_name"`
	Logging     LoggingConfig  `yaml:"logging"`
	Server      ServerConfig   `yaml:"server"`
	Mongo       MongoConfig    `yaml:"mongo"`
	LLM         LLMConfig      `yaml:"llm"`
	Prompts     PromptsConfig  `yaml:"prompts"`
	Auth        AuthConfig     `yaml:"auth"`
	EventBus    EventBusConfig `yaml:"event_bus"`
}

type LoggingConfig struct {
	Level string `yaml:"level" validate:"omitempty,oneof=debug info notice warn warning error"`
}

type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type MongoConfig struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

// LLMConfig 는 외부 LLM 호출에 필요한 배포 단위 설정이다.
// Endpoint/APIKey 는 보통 .env 로 주입되며 yaml 값보다 환경변수가 우선한다.
type LLMConfig struct {
	Provider string        `yaml:"provider" validate:"omitempty,oneof=chat gemini"`
	Endpoint string        `yaml:"endpoint"`
	APIKey   string        `yaml:"-"`
	Model    string        `yaml:"model"`
	Timeout  time.Duration `yaml:"timeout"`
}

// PromptsConfig 는 저장된 프롬프트가 비어 있을 때 사용하는 기본값이다.
type PromptsConfig struct {
	DefaultSystemPrompt        string `yaml:"default_system_prompt"`
	DefaultUserTemplate        string `yaml:"default_user_template"`
	DefaultInterimSystemPrompt string `yaml:"default_interim_system_prompt"`
	DefaultInterimUserTemplate string `yaml:"default_interim_user_template"`
}

type AuthConfig struct {
	Enabled bool   `yaml:"enabled"`
	Issuer  string `yaml:"issuer"`
}

type EventBusConfig struct {
	Enabled bool   `yaml:"enabled"`
	Brokers string `yaml:"brokers"`
	GroupID string `yaml:"group_id"`
}

var (
	mu     sync.RWMutex
	config *AppConfig
)

func InitApp() {
	// load environment variables
	godotenv.Load(filepath.Join(GetBasePath(), ENV_FILE))

	// load configuration file
	data, err := os.ReadFile(filepath.Join(GetBasePath(), CONFIG_FILE))
	if err != nil {
		panic(err)
	}

	c, err := Parse(data)
	if err != nil {
		panic(err)
	}
	Set(c)
}

// Parse decodes a yaml document, applies environment overrides and defaults,
// then validates the result.
func Parse(data []byte) (*AppConfig, error) {
	var c AppConfig
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	applyEnv(&c)
	applyDefaults(&c)

	if err := validator.New().Struct(c); err != nil {
		return nil, fmt.Errorf("config: invalid: %w", err)
	}
	return &c, nil
}

func applyEnv(c *AppConfig) {
	if v := os.Getenv("AI_EVAL_ENDPOINT"); v != "" {
		c.LLM.Endpoint = v
	}
	if v := os.Getenv("AI_EVAL_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("AI_EVAL_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("MONGO_URI"); v != "" {
		c.Mongo.URI = v
	}
	if v := os.Getenv("MONGO_DB_NAME"); v != "" {
		c.Mongo.Database = v
	}
	if v := os.Getenv("KAFKA_BOOTSTRAP_SERVERS"); v != "" {
		c.EventBus.Brokers = v
	}
	if v := os.Getenv("KAFKA_GROUP_ID"); v != "" {
		c.EventBus.GroupID = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
}

func applyDefaults(c *AppConfig) {
	if c.ServiceName == "" {
		c.ServiceName = "cgm-ai-eval"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Mongo.Database == "" {
		c.Mongo.Database = "cgm_ai_eval"
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = "chat"
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "gpt-4o"
	}
	if c.LLM.Timeout <= 0 {
		c.LLM.Timeout = 2 * time.Minute
	}
	if c.Auth.Issuer == "" {
		c.Auth.Issuer = "cgm-ai-eval"
	}
	if c.EventBus.GroupID == "" {
		c.EventBus.GroupID = "cgm-ai-eval"
	}
	if c.EventBus.Brokers == "" {
		c.EventBus.Brokers = "localhost:9092"
	}
}

// Set replaces the process-wide configuration. Tests use it to inject values
// without a config.yaml on disk.
func Set(c *AppConfig) {
	mu.Lock()
	defer mu.Unlock()
	config = c
}

func GetConfig() AppConfig {
	mu.RLock()
	c := config
	mu.RUnlock()
	if c == nil {
		InitApp()
		mu.RLock()
		c = config
		mu.RUnlock()
	}

	return *c
}

func GetBasePath() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	dir := cwd
	for {
		cfgPath := filepath.Join(dir, CONFIG_FILE)
		if info, err := os.Stat(cfgPath); err == nil && !info.IsDir() {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}
