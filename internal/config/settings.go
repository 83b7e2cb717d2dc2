package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/akolanti/docqa/internal/domain/ragErrors"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type ChunkingSettings struct {
	Size    int `yaml:"size"`
	Overlap int `yaml:"overlap"`
}

type ProviderSettings struct {
	Embedding      string  `yaml:"embedding"` // openai | gemini | hash
	LLM            string  `yaml:"llm"`       // openai | gemini
	OpenAIKey      string  `yaml:"-"`
	OpenAIBaseURL  string  `yaml:"openai_base_url"`
	OpenAIModel    string  `yaml:"openai_model"`
	OpenAIEmbedder string  `yaml:"openai_embedding_model"`
	GoogleKey      string  `yaml:"-"`
	GeminiModel    string  `yaml:"gemini_model"`
	GoogleEmbedder string  `yaml:"google_embedding_model"`
	Temperature    float32 `yaml:"temperature"`
}

type VectorSettings struct {
	Backend    string `yaml:"backend"` // local | qdrant
	Collection string `yaml:"collection"`
	Dimension  int    `yaml:"dimension"`
	QdrantHost string `yaml:"qdrant_host"`
	QdrantPort int    `yaml:"qdrant_port"`
	QdrantTLS  bool   `yaml:"qdrant_tls"`
	AutoRepair bool   `yaml:"auto_repair"`
}

type ServerSettings struct {
	ListenAddr     string        `yaml:"listen_addr"`
	AuthToken      string        `yaml:"-"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// Settings is the runtime configuration. Zero values are filled from the package defaults.
type Settings struct {
	DataDir           string           `yaml:"data_dir"`
	LogLevel          string           `yaml:"log_level"`
	LogJSON           bool             `yaml:"log_json"`
	TopK              int              `yaml:"top_k"`
	MaxHistoryTurns   int              `yaml:"max_history_turns"` // <= 0 keeps the whole session
	GenerateSummaries bool             `yaml:"generate_summaries"`
	IngestOnStartup   bool             `yaml:"ingest_on_startup"`
	Chunking          ChunkingSettings `yaml:"chunking"`
	Providers         ProviderSettings `yaml:"providers"`
	Vector            VectorSettings   `yaml:"vector"`
	Server            ServerSettings   `yaml:"server"`
}

func Defaults() *Settings {
	return &Settings{
		DataDir:           DefaultDataDir,
		LogLevel:          "debug",
		TopK:              DefaultTopK,
		MaxHistoryTurns:   DefaultMaxHistoryTurns,
		GenerateSummaries: true,
		IngestOnStartup:   true,
		Chunking:          ChunkingSettings{Size: DefaultChunkSize, Overlap: DefaultChunkOverlap},
		Providers: ProviderSettings{
			Embedding:      ProviderOpenAI,
			LLM:            ProviderOpenAI,
			OpenAIModel:    OpenAIChatModel,
			OpenAIEmbedder: OpenAIEmbeddingModel,
			GeminiModel:    GeminiModelName,
			GoogleEmbedder: GoogleEmbeddingModel,
			Temperature:    ModelTemperature,
		},
		Vector: VectorSettings{
			Backend:    VectorBackendLocal,
			Collection: EmbeddingDBName,
			Dimension:  int(EmbeddingOutputDimensionality),
			QdrantHost: QdrantHost,
			QdrantPort: QdrantGrpcPort,
			QdrantTLS:  QdrantUseTLS,
			AutoRepair: true,
		},
		Server: ServerSettings{
			ListenAddr:     ServerListenAddr,
			RequestTimeout: RequestTimeout,
		},
	}
}

// Load reads .env (if present), then the YAML file at path (if non-empty and present), then
// environment overrides.
func Load(path string) (*Settings, error) {
	_ = godotenv.Load()

	s := Defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, s); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}
	applyEnv(s)
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func applyEnv(s *Settings) {
	setString(&s.DataDir, "DOCQA_DATA_DIR")
	setString(&s.LogLevel, "DOCQA_LOG_LEVEL")
	setBool(&s.LogJSON, "DOCQA_LOG_JSON")
	setInt(&s.TopK, "DOCQA_TOP_K")
	setInt(&s.MaxHistoryTurns, "DOCQA_MAX_HISTORY_TURNS")
	setBool(&s.GenerateSummaries, "DOCQA_GENERATE_SUMMARIES")
	setBool(&s.IngestOnStartup, "DOCQA_INGEST_ON_STARTUP")
	setInt(&s.Chunking.Size, "DOCQA_CHUNK_SIZE")
	setInt(&s.Chunking.Overlap, "DOCQA_CHUNK_OVERLAP")

	setString(&s.Providers.Embedding, "DOCQA_EMBEDDING_PROVIDER")
	setString(&s.Providers.LLM, "DOCQA_LLM_PROVIDER")
	setString(&s.Providers.OpenAIKey, "OPENAI_API_KEY")
	setString(&s.Providers.OpenAIBaseURL, "OPENAI_BASE_URL")
	setString(&s.Providers.GoogleKey, "GOOGLE_API_KEY")

	setString(&s.Vector.Backend, "DOCQA_VECTOR_BACKEND")
	setString(&s.Vector.QdrantHost, "QDRANT_HOST")
	setInt(&s.Vector.QdrantPort, "QDRANT_PORT")
	setBool(&s.Vector.AutoRepair, "DOCQA_AUTO_REPAIR")

	setString(&s.Server.ListenAddr, "DOCQA_LISTEN_ADDR")
	setString(&s.Server.AuthToken, "DOCQA_AUTH_TOKEN")
}

func (s *Settings) Validate() error {
	const op = "config.Validate"
	if s.Chunking.Size <= 0 {
		return ragErrors.Config(op, "chunk size must be positive")
	}
	if s.Chunking.Overlap < 0 || s.Chunking.Overlap >= s.Chunking.Size {
		return ragErrors.Config(op, fmt.Sprintf("chunk overlap %d must be in [0, %d)", s.Chunking.Overlap, s.Chunking.Size))
	}
	if s.TopK <= 0 {
		return ragErrors.Config(op, "top_k must be positive")
	}
	switch s.Providers.Embedding {
	case ProviderOpenAI, ProviderGemini, ProviderHash:
	default:
		return ragErrors.Config(op, "unknown embedding provider "+strconv.Quote(s.Providers.Embedding))
	}
	switch s.Providers.LLM {
	case ProviderOpenAI, ProviderGemini:
	default:
		return ragErrors.Config(op, "unknown llm provider "+strconv.Quote(s.Providers.LLM))
	}
	switch s.Vector.Backend {
	case VectorBackendLocal, VectorBackendQdrant:
	default:
		return ragErrors.Config(op, "unknown vector backend "+strconv.Quote(s.Vector.Backend))
	}
	if s.Vector.Backend == VectorBackendQdrant && s.Vector.Dimension <= 0 {
		return ragErrors.Config(op, "qdrant backend needs a positive vector dimension")
	}
	return nil
}

func (s *Settings) PDFDir() string {
	return filepath.Join(s.DataDir, PDFStorageDir)
}

func (s *Settings) VectorDir() string {
	return filepath.Join(s.DataDir, VectorDBDir)
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		*dst = strings.TrimSpace(v)
	}
}

func setInt(dst *int, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			*dst = b
		}
	}
}
