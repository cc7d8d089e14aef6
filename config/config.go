package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	StorageDriverMemory = "memory"
	StorageDriverRedis  = "redis"
)

var (
	ErrUnknownStorageDriver = errors.New("unknown storage driver")
	ErrUnknownDefaultModel  = errors.New("unknown default model")
)

type Gemini struct {
	APIKey     string `yaml:"-" env:"GEMINI_API_KEY"`
	BaseURL    string `yaml:"base_url" env:"GEMINI_BASE_URL"`
	FastModel  string `yaml:"fast_model" env:"GEMINI_FAST_MODEL" env-default:"gemini-2.5-flash"`
	ProModel   string `yaml:"pro_model" env:"GEMINI_PRO_MODEL" env-default:"gemini-3-pro-preview"`
	ImageModel string `yaml:"image_model" env:"GEMINI_IMAGE_MODEL" env-default:"gemini-2.5-flash-image"`
}

type Groq struct {
	APIKey           string  `yaml:"-" env:"GROQ_API_KEY"`
	BaseURL          string  `yaml:"base_url" env:"GROQ_BASE_URL" env-default:"https://api.groq.com/openai/v1"`
	Model            string  `yaml:"model" env:"GROQ_MODEL" env-default:"llama-3.3-70b-versatile"`
	Temperature      float32 `yaml:"temperature" env-default:"0.6"`
	MaxTokens        int     `yaml:"max_tokens" env-default:"8000"`
	MaxHistoryTokens int     `yaml:"max_history_tokens" env-default:"6000"`
}

type Proxy struct {
	URL        string        `yaml:"url" env:"PROXY_URL" env-default:"https://text.pollinations.ai/"`
	Model      string        `yaml:"model" env-default:"openai"`
	Timeout    time.Duration `yaml:"timeout" env-default:"60s"`
	ChunkDelay time.Duration `yaml:"chunk_delay" env-default:"5ms"`
}

type RoleModels struct {
	Role   string   `yaml:"role"`
	Models []string `yaml:"models"`
}

type AIChat struct {
	DefaultModel         string       `yaml:"default_model" env:"DEFAULT_MODEL" env-default:"Lunaris-Mind"`
	AccessModelsPerRoles []RoleModels `yaml:"access_models_per_roles"`
	Developer            string       `yaml:"developer" env-default:"Abd el moez (Eilas)"`
}

type Telegram struct {
	TelegramAPIToken      string        `yaml:"-" env:"TELEGRAM_APITOKEN"`
	IsNotPublic           bool          `yaml:"is_not_public" env:"TELEGRAM_NOT_PUBLIC"`
	AvailableForRoles     []string      `yaml:"available_for_roles"`
	AdminTelegramIDList   []int64       `yaml:"admin_telegram_id_list" env:"ADMIN_TELEGRAM_ID" env-separator:","`
	ProTelegramIDList     []int64       `yaml:"pro_telegram_id_list" env:"PRO_TELEGRAM_ID" env-separator:","`
	EditInterval          time.Duration `yaml:"edit_interval" env-default:"2500ms"`
	AttachmentDownloadCap int64         `yaml:"attachment_download_cap" env-default:"10485760"`
}

type Redis struct {
	Endpoint string `yaml:"endpoint" env:"REDIS_ENDPOINT" env-default:"localhost:6379"`
	Password string `yaml:"-" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB"`
}

type Storage struct {
	Driver string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"memory"`
}

type HTTP struct {
	Addr              string        `yaml:"addr" env:"HTTP_ADDR" env-default:":8080"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout" env-default:"10s"`
}

type Log struct {
	Level  string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"text"`
	Output string `yaml:"output" env:"LOG_OUTPUT" env-default:"stderr"`
}

type Config struct {
	Gemini   Gemini   `yaml:"gemini"`
	Groq     Groq     `yaml:"groq"`
	Proxy    Proxy    `yaml:"proxy"`
	AIChat   AIChat   `yaml:"ai_chat"`
	Telegram Telegram `yaml:"telegram"`
	Redis    Redis    `yaml:"redis"`
	Storage  Storage  `yaml:"storage"`
	HTTP     HTTP     `yaml:"http"`
	Log      Log      `yaml:"log"`
}

// LoadConfig reads the yaml file at cfgPath, when given, and applies environment overrides.
func LoadConfig(cfgPath string) (*Config, error) {
	var cfg Config
	if cfgPath != "" {
		if err := cleanenv.ReadConfig(cfgPath, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", cfgPath, err)
		}
	}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case StorageDriverMemory, StorageDriverRedis:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStorageDriver, c.Storage.Driver)
	}
	switch c.AIChat.DefaultModel {
	case "Luna-V", "Luna-Deep", "Luna-X", "Luna-O", "Lunaris-Mind":
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDefaultModel, c.AIChat.DefaultModel)
	}
	return nil
}
