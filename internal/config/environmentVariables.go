package config

import (
	"log/slog"
	"time"
)

const (
	IS_PROD                     = false
	LOG_LEVEL_PROD              = slog.LevelInfo
	TRACE_ID_KEY                = "traceId"
	RATE_LIMIT_PER_SECOND       = 2
	BURST_RATE_LIMIT_PER_SECOND = 5

	//filesystem layout, relative to the data dir
	DefaultDataDir  = "data"
	PDFStorageDir   = "pdfs"
	VectorDBDir     = "vectordb"
	CatalogFileName = "catalog.json"
	RepairFlagName  = "tenant_error.flag"
	LocalDBFileName = "index.db"
	DefaultTenant   = "default_tenant"
	EmbeddingDBName = "docqa-chunks"

	//chunking
	DefaultChunkSize    = 1000 // characters
	DefaultChunkOverlap = 200

	//retrieval and memory
	DefaultTopK            = 4
	DefaultMaxHistoryTurns = 5
	EmbeddingBatchSize     = 100

	//summary extraction reads at most this many characters from the start of a document
	SummarySourceChars = 8000

	//serverTimeouts
	ReadTimeout            = 5 * time.Second
	WriteTimeout           = 120 * time.Second
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second
	RequestTimeout         = 90 * time.Second

	//server listening port
	ServerListenAddr = ":3000"

	MaxUploadSize = 32 << 20 //32mb

	//vectorDB
	VectorBackendLocal  = "local"
	VectorBackendQdrant = "qdrant"

	QdrantHost          = "localhost"
	QdrantGrpcPort      = 6334
	QdrantUseTLS        = false
	QdrantPoolSize      = 1
	QdrantKeepAliveTime = 30 * time.Second

	//providers
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderHash   = "hash" //offline, deterministic - tests and demos only

	OpenAIChatModel      = "gpt-4o"
	OpenAIEmbeddingModel = "text-embedding-ada-002"

	GeminiModelName      = "gemini-2.5-flash-lite-preview-09-2025"
	GoogleEmbeddingModel = "gemini-embedding-001"

	//TODO:read the dimension from the first embedding response instead of fixing it per provider
	EmbeddingOutputDimensionality int32 = 1536
	HashEmbeddingDimension              = 512

	ModelTemperature float32 = 0.2

	MaxIdleConns        = 50
	MaxIdleConnsPerHost = 25
	IdleConnTimeout     = 60 * time.Second
)
