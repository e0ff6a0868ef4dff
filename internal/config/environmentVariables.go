package config

import (
	"log/slog"
	"os"
	"time"
)

type ContextKey string

const (
	IS_PROD        = false
	LOG_LEVEL_PROD = slog.LevelInfo

	TRACE_ID_KEY ContextKey = "traceId"

	RATE_LIMIT_PER_SECOND       = 2
	BURST_RATE_LIMIT_PER_SECOND = 5

	//auth - static bearer token, JWT issuance is out of scope
	NoAuthBypass = true
	AuthToken    = "local-dev-token"

	//embeddings - fixed dimension D for the deployment
	EmbeddingDimension = 384

	//splitter defaults
	ChunkSize    = 800
	ChunkOverlap = 100

	//retrieval / rerank
	PoolMultiplier      = 5
	ConfidenceThreshold = 0.15
	DefaultTopK         = 5

	//generation decoding - fixed, never varied per request
	ModelTemperature float32 = 0.0
	ModelTopP        float32 = 0.1
	FallbackAnswer           = "I could not find the information in the provided documents."
	SystemPrompt             = "Give only the answer from the TEXT above. If not found, say: " + FallbackAnswer

	//worker pool
	MaxWorkerCount    int64 = 10
	MinWorkerCount    int64 = 1
	IdleWorkerTimeout       = 1 * time.Minute
	JobWatchdogBound        = 30 * time.Minute
	FileWorkerCount         = 4

	//job requests buffer limit
	BufferLimit = 100

	//serverTimeouts
	ReadTimeout            = 5 * time.Second
	WriteTimeout           = 10 * time.Second
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second

	//server listening port
	ServerListenAddr = ":3000"

	//model runtimes
	GeminiModelName      = "gemini-2.5-flash-lite-preview-09-2025"
	GoogleEmbeddingModel = "gemini-embedding-001"
	OpenAIModelName      = "gpt-4o-mini"
	OpenAIEmbeddingName  = "text-embedding-3-small"

	//reranker service (cross-encoder behind HTTP)
	RerankServiceURL     = "http://127.0.0.1:8091/rerank"
	RerankRequestTimeout = 30 * time.Second

	MaxIdleConns        = 50
	MaxIdleConnsPerHost = 25
	IdleConnTimeout     = 60 * time.Second

	//redis
	redisHost = "127.0.0.1"
	redisPort = "6379"
	RedisAddr = redisHost + ":" + redisPort

	RedisPassword = ""

	//redis has 16 DB we can use
	RedisJobRegistryDB = 0

	//job records are kept for a day after their last transition
	RedisJobTTL = 24 * time.Hour
)

// DataDir is where the sqlite catalog and per-document vector files live.
func DataDir() string {
	if dir := os.Getenv("RAGAPI_DATA_DIR"); dir != "" {
		return dir
	}
	return "data"
}

func ModelProvider() string {
	if p := os.Getenv("RAGAPI_MODEL_PROVIDER"); p != "" {
		return p
	}
	return "gemini"
}

func GoogleAPIKey() string {
	return os.Getenv("GOOGLE_API_KEY")
}

func OpenAIAPIKey() string {
	return os.Getenv("OPENAI_API_KEY")
}
