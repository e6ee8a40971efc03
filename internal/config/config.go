package config

import (
	"errors"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Postgres DBConfig
	Redis    RedisConfig
	S3       S3Config
	Cookie   Cookie
	Logger   Logger
	Worker   WorkerConfig
	Media    MediaConfig
	Whisper  WhisperConfig
	TTS      TTSConfig
	LLM      LLMConfig
}

type ServerConfig struct {
	AppVersion   string
	Port         string
	Mode         string
	JwtSecretKey string
}

type WorkerConfig struct {
	PollIntervalMs int
	Concurrency    int
	MaxCPUUsage    float64
	CommandTimeout int
	WorkDir        string
	KeepWorkDirs   bool
	ClaimBatchSize int
	MaxErrorLength int
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	PgDriver string
}

type Cookie struct {
	Name     string
	MaxAge   int
	Secure   bool
	HTTPOnly bool
}

type RedisConfig struct {
	RedisAddr     string
	RedisPassword string
	DB            int
	MinIdleConns  int
	PoolSize      int
	PoolTimeout   int
	EventChannel  string
	ProgressKey   string
}

type S3Config struct {
	Enabled      bool
	Endpoint     string
	Region       string
	AccessKey    string
	SecretKey    string
	UploadBucket string
	OutputBucket string
}

type Logger struct {
	Development       bool
	DisableCaller     bool
	DisableStacktrace bool
	Encoding          string
	Level             string
}

type MediaConfig struct {
	FFmpegBin       string
	FFprobeBin      string
	UploadDir       string
	OutputDir       string
	WatermarkPath   string
	FontFile        string
	PreferAudioCopy bool
}

type WhisperConfig struct {
	Bin       string
	ModelPath string
}

type TTSConfig struct {
	Engine string
	Bin    string
	Voice  string
}

type LLMConfig struct {
	BaseURL               string
	APIKey                string
	Model                 string
	MaxOutputTokens       int
	MaxInputTokens        int
	PromptOverheadTokens  int
	SummaryMaxInputTokens int
	TimeoutSeconds        int
	MaxRetries            int
}

func LoadConfig(filename string) (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigFile(filename)
	v.AddConfigPath(".")
	v.AutomaticEnv()
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFound viper.ConfigFileNotFoundError
		if errors.Is(err, configFileNotFound) {
			return nil, errors.New("config file not found")
		}
		return nil, err
	}
	return v, nil
}

func ParseConfig(v *viper.Viper) (*Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, err
	}
	return &c, nil
}
