package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/akolanti/PdfQA/internal/domain/ragErrors"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Settings is the explicit configuration handed to every constructor.
// Nothing below cmd/ reads the environment on its own.
type Settings struct {
	Server      ServerSettings    `yaml:"server"`
	Chunking    ChunkingSettings  `yaml:"chunking"`
	Retrieval   RetrievalSettings `yaml:"retrieval"`
	Embedding   EmbeddingSettings `yaml:"embedding"`
	LLM         LLMSettings       `yaml:"llm"`
	VectorStore VectorSettings    `yaml:"vector_store"`
	Redis       RedisSettings     `yaml:"redis"`
	Workers     WorkerSettings    `yaml:"workers"`
	Logging     LoggingSettings   `yaml:"logging"`
	Credentials Credentials       `yaml:"-"`
}

type ServerSettings struct {
	ListenAddr   string  `yaml:"listen_addr"`
	AuthToken    string  `yaml:"-"`
	NoAuthBypass bool    `yaml:"no_auth_bypass"`
	RateLimit    float64 `yaml:"rate_limit_per_second"`
	Burst        int     `yaml:"burst"`
	UploadDir    string  `yaml:"upload_dir"`
	MaxUpload    int64   `yaml:"max_upload_bytes"`
}

type ChunkingSettings struct {
	ChunkSize int `yaml:"chunk_size"`
	Overlap   int `yaml:"overlap"`
}

type RetrievalSettings struct {
	TopK int `yaml:"top_k"`
}

type EmbeddingSettings struct {
	Provider   string        `yaml:"provider"`
	Model      string        `yaml:"model"`
	BaseURL    string        `yaml:"base_url"`
	APIKeyEnv  string        `yaml:"api_key_env"`
	Dimensions int32         `yaml:"dimensions"`
	Timeout    time.Duration `yaml:"timeout"`
}

type LLMSettings struct {
	Provider          string        `yaml:"provider"`
	Model             string        `yaml:"model"`
	BaseURL           string        `yaml:"base_url"`
	APIKeyEnv         string        `yaml:"api_key_env"`
	Temperature       float64       `yaml:"temperature"`
	Timeout           time.Duration `yaml:"timeout"`
	SystemInstruction string        `yaml:"system_instruction"`
}

type VectorSettings struct {
	Backend string         `yaml:"backend"`
	Qdrant  QdrantSettings `yaml:"qdrant"`
}

type QdrantSettings struct {
	Host   string `yaml:"host"`
	Port   int    `yaml:"port"`
	APIKey string `yaml:"-"`
	UseTLS bool   `yaml:"use_tls"`
}

type RedisSettings struct {
	Enabled          bool          `yaml:"enabled"`
	Addr             string        `yaml:"addr"`
	Password         string        `yaml:"-"`
	FallbackToMemory bool          `yaml:"fallback_to_memory"`
	TTL              time.Duration `yaml:"ttl"`
}

type WorkerSettings struct {
	Min                  int64         `yaml:"min"`
	Max                  int64         `yaml:"max"`
	RequestsPerNewWorker int64         `yaml:"requests_per_new_worker"`
	IdleTimeout          time.Duration `yaml:"idle_timeout"`
	JobTimeout           time.Duration `yaml:"job_timeout"`
	BufferLimit          int           `yaml:"buffer_limit"`
}

type LoggingSettings struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// Credentials are resolved once at load time from the env vars named in the
// provider settings.
type Credentials struct {
	LLMAPIKey       string
	EmbeddingAPIKey string
}

func Default() *Settings {
	return &Settings{
		Server: ServerSettings{
			ListenAddr:   ServerListenAddr,
			NoAuthBypass: true,
			RateLimit:    RATE_LIMIT_PER_SECOND,
			Burst:        BURST_RATE_LIMIT_PER_SECOND,
			UploadDir:    TempUploadDir,
			MaxUpload:    MaxUploadSize,
		},
		Chunking:  ChunkingSettings{ChunkSize: DefaultChunkSize, Overlap: DefaultOverlap},
		Retrieval: RetrievalSettings{TopK: DefaultTopK},
		Embedding: EmbeddingSettings{
			Provider: EmbeddingProviderHashing,
			Timeout:  EmbeddingTimeout,
		},
		LLM: LLMSettings{
			Provider:          LLMProviderGroq,
			Temperature:       ModelTemperature,
			Timeout:           GenerationTimeout,
			SystemInstruction: ModelContext,
		},
		VectorStore: VectorSettings{
			Backend: VectorBackendMemory,
			Qdrant:  QdrantSettings{Host: QdrantHost, Port: QdrantGrpcPort, UseTLS: QdrantUseTLS},
		},
		Redis: RedisSettings{
			Addr:             RedisAddr,
			FallbackToMemory: FALLBACK_REDIS_TO_INTERNALSTORE,
			TTL:              RedisJobStoreTTL,
		},
		Workers: WorkerSettings{
			Min:                  MinWorkerCount,
			Max:                  MaxWorkerCount,
			RequestsPerNewWorker: RequestsPerNewWorkerCount,
			IdleTimeout:          IdleWorkerTimeout,
			JobTimeout:           JobTimeout,
			BufferLimit:          BufferLimit,
		},
		Logging: LoggingSettings{Level: "debug", JSON: IS_PROD},
	}
}

// Load reads .env, then the YAML file at path (a missing file keeps the
// defaults), then PDFQA_* overrides, and resolves credentials last.
func Load(path string) (*Settings, error) {
	_ = godotenv.Load()

	s := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, s); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	s.applyEnv(os.Getenv)
	s.applyProviderDefaults()
	s.resolveCredentials(os.Getenv)

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Settings) applyEnv(getenv func(string) string) {
	setString := func(key string, target *string) {
		if v := getenv(key); v != "" {
			*target = v
		}
	}
	setInt := func(key string, target *int) {
		if v, err := strconv.Atoi(getenv(key)); err == nil {
			*target = v
		}
	}
	setBool := func(key string, target *bool) {
		if v, err := strconv.ParseBool(getenv(key)); err == nil {
			*target = v
		}
	}

	setString("PDFQA_LISTEN_ADDR", &s.Server.ListenAddr)
	setString("PDFQA_AUTH_TOKEN", &s.Server.AuthToken)
	setBool("PDFQA_NO_AUTH_BYPASS", &s.Server.NoAuthBypass)
	setInt("PDFQA_CHUNK_SIZE", &s.Chunking.ChunkSize)
	setInt("PDFQA_CHUNK_OVERLAP", &s.Chunking.Overlap)
	setInt("PDFQA_TOP_K", &s.Retrieval.TopK)
	setString("PDFQA_EMBEDDING_PROVIDER", &s.Embedding.Provider)
	setString("PDFQA_EMBEDDING_MODEL", &s.Embedding.Model)
	setString("PDFQA_LLM_PROVIDER", &s.LLM.Provider)
	setString("PDFQA_LLM_MODEL", &s.LLM.Model)
	setString("PDFQA_VECTOR_BACKEND", &s.VectorStore.Backend)
	setString("QDRANT_HOST", &s.VectorStore.Qdrant.Host)
	setInt("QDRANT_PORT", &s.VectorStore.Qdrant.Port)
	setString("QDRANT_API_KEY", &s.VectorStore.Qdrant.APIKey)
	setBool("PDFQA_REDIS_ENABLED", &s.Redis.Enabled)
	setString("REDIS_ADDR", &s.Redis.Addr)
	setString("REDIS_PASSWORD", &s.Redis.Password)
	setString("PDFQA_LOG_LEVEL", &s.Logging.Level)
	setBool("PDFQA_LOG_JSON", &s.Logging.JSON)
}

func (s *Settings) applyProviderDefaults() {
	switch s.LLM.Provider {
	case LLMProviderGroq:
		defaultString(&s.LLM.BaseURL, GroqBaseURL)
		defaultString(&s.LLM.Model, GroqModelName)
		defaultString(&s.LLM.APIKeyEnv, "GROQ_API_KEY")
	case LLMProviderOpenAI:
		defaultString(&s.LLM.Model, OpenAIModelName)
		defaultString(&s.LLM.APIKeyEnv, "OPENAI_API_KEY")
	case LLMProviderGemini:
		defaultString(&s.LLM.Model, GeminiModelName)
		defaultString(&s.LLM.APIKeyEnv, "GEMINI_API_KEY")
	case LLMProviderOllama:
		defaultString(&s.LLM.BaseURL, OllamaBaseURL)
		defaultString(&s.LLM.Model, OllamaModelName)
	}

	switch s.Embedding.Provider {
	case EmbeddingProviderGoogle:
		defaultString(&s.Embedding.Model, GoogleEmbeddingModel)
		defaultString(&s.Embedding.APIKeyEnv, "GEMINI_API_KEY")
		if s.Embedding.Dimensions == 0 {
			s.Embedding.Dimensions = EmbeddingOutputDimensionality
		}
	case EmbeddingProviderOpenAI:
		defaultString(&s.Embedding.Model, OpenAIEmbeddingModel)
		defaultString(&s.Embedding.APIKeyEnv, "OPENAI_API_KEY")
	case EmbeddingProviderOllama:
		defaultString(&s.Embedding.BaseURL, OllamaBaseURL)
		defaultString(&s.Embedding.Model, OllamaEmbeddingModel)
	case EmbeddingProviderHashing:
		if s.Embedding.Dimensions == 0 {
			s.Embedding.Dimensions = HashingEmbeddingDimension
		}
	}
}

func (s *Settings) resolveCredentials(getenv func(string) string) {
	if s.LLM.APIKeyEnv != "" {
		s.Credentials.LLMAPIKey = strings.TrimSpace(getenv(s.LLM.APIKeyEnv))
	}
	if s.Embedding.APIKeyEnv != "" {
		s.Credentials.EmbeddingAPIKey = strings.TrimSpace(getenv(s.Embedding.APIKeyEnv))
	}
}

// LLMNeedsCredential reports whether the configured language model provider
// refuses to work without an API key.
func (s *Settings) LLMNeedsCredential() bool {
	return s.LLM.Provider != LLMProviderOllama
}

func (s *Settings) EmbeddingNeedsCredential() bool {
	return s.Embedding.Provider == EmbeddingProviderGoogle || s.Embedding.Provider == EmbeddingProviderOpenAI
}

// Validate checks values that would otherwise only fail deep inside a request.
// A missing credential is not an error here: requests report it themselves.
func (s *Settings) Validate() error {
	if s.Chunking.ChunkSize <= 0 || s.Chunking.Overlap < 0 || s.Chunking.Overlap >= s.Chunking.ChunkSize {
		return ragErrors.Wrapf(ragErrors.ErrInvalidParameters,
			"chunk size %d and overlap %d must satisfy chunk_size > overlap >= 0", s.Chunking.ChunkSize, s.Chunking.Overlap)
	}
	if s.Retrieval.TopK < 0 {
		return ragErrors.Wrapf(ragErrors.ErrInvalidParameters, "top_k %d must not be negative", s.Retrieval.TopK)
	}
	switch s.LLM.Provider {
	case LLMProviderGroq, LLMProviderOpenAI, LLMProviderGemini, LLMProviderOllama:
	default:
		return fmt.Errorf("unknown llm provider %q", s.LLM.Provider)
	}
	switch s.Embedding.Provider {
	case EmbeddingProviderHashing, EmbeddingProviderGoogle, EmbeddingProviderOpenAI, EmbeddingProviderOllama:
	default:
		return fmt.Errorf("unknown embedding provider %q", s.Embedding.Provider)
	}
	switch s.VectorStore.Backend {
	case VectorBackendMemory, VectorBackendQdrant:
	default:
		return fmt.Errorf("unknown vector store backend %q", s.VectorStore.Backend)
	}
	if s.Workers.Max < 1 || s.Workers.Min < 1 || s.Workers.Min > s.Workers.Max {
		return fmt.Errorf("worker bounds min=%d max=%d are invalid", s.Workers.Min, s.Workers.Max)
	}
	return nil
}

func defaultString(target *string, value string) {
	if *target == "" {
		*target = value
	}
}
