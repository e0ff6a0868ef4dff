// @title           Document RAG API
// @version         1.0
// @description     This API handles asynchronous document ingestion and two-stage retrieval querying
// @termsOfService  http://swagger.io/terms/

// @contact.name    intigra
// @contact.url
// @contact.email

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3000
// @BasePath  /
// @schemes   http https
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/intigra/ragapi/internal/config"
	"github.com/intigra/ragapi/internal/data/registry"
	jobmodel "github.com/intigra/ragapi/internal/domain/jobModel"
	"github.com/intigra/ragapi/internal/extract"
	"github.com/intigra/ragapi/internal/handlers"
	"github.com/intigra/ragapi/internal/job"
	"github.com/intigra/ragapi/internal/mcpServer"
	"github.com/intigra/ragapi/internal/rag"
	"github.com/intigra/ragapi/internal/rag/embedding"
	"github.com/intigra/ragapi/internal/rag/embedding/googleEmbedding"
	"github.com/intigra/ragapi/internal/rag/embedding/openaiEmbedding"
	"github.com/intigra/ragapi/internal/rag/ingest"
	"github.com/intigra/ragapi/internal/rag/llm"
	"github.com/intigra/ragapi/internal/rag/llm/gemini"
	"github.com/intigra/ragapi/internal/rag/llm/openaiLLM"
	"github.com/intigra/ragapi/internal/rag/rerank"
	"github.com/intigra/ragapi/internal/rag/retrieval"
	"github.com/intigra/ragapi/internal/server"
	"github.com/intigra/ragapi/internal/vectorstore"
	"github.com/intigra/ragapi/internal/worker"
	"github.com/intigra/ragapi/pkg/logger_i"
)

var (
	listenAddr        string
	enableMCP         bool
	stopWorkerChannel chan bool
	workerWaitGroup   sync.WaitGroup
)

func main() {

	logger_i.Init()
	var logger = logger_i.NewLogger("main")

	//config
	flag.StringVar(&listenAddr, "listen-addr", config.ServerListenAddr, "server listen address")
	flag.BoolVar(&enableMCP, "mcp", false, "also serve MCP tools over stdio")
	flag.Parse()

	//init buffered job channel
	jobChannel := make(chan jobmodel.Job, config.BufferLimit)
	dispatcherChannel := make(chan bool, 1)
	stopWorkerChannel = make(chan bool, 1)

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	//init job service and job registry
	var jobRegistry jobmodel.JobRegistry
	if redisRegistry := registry.GetRedisJobRegistry(serviceContext); redisRegistry != nil {
		jobRegistry = redisRegistry
	} else {
		logger.Error("Redis registry is offline, falling back to in-memory jobs")
		jobRegistry = registry.InitInMemoryJobRegistry()
	}
	logger.Info("Starting job service")
	service := job.InitJobService(job.ServiceConfig{
		JobChannel:        jobChannel,
		DispatcherChannel: dispatcherChannel,
		Registry:          jobRegistry,
	})

	store, err := vectorstore.NewStore(config.DataDir(), config.EmbeddingDimension)
	if err != nil {
		logger.Error("Could not open the vector store. Shutting down.", "error", err)
		return
	}
	defer store.Close()

	var embeddingService embedding.Embedder
	var llmProvider llm.Provider
	switch config.ModelProvider() {
	case "openai":
		embeddingService = openaiEmbedding.GetOpenAIEmbeddingClient(config.OpenAIEmbeddingName, config.OpenAIAPIKey())
		llmProvider = openaiLLM.GetOpenAIClient(config.OpenAIModelName, config.OpenAIAPIKey())
	default:
		embeddingService = googleEmbedding.GetGoogleEmbeddingClient(serviceContext, config.GoogleEmbeddingModel, config.GoogleAPIKey())
		llmProvider = gemini.GetGeminiClient(serviceContext, config.GeminiModelName, config.GoogleAPIKey())
	}

	if embeddingService == nil || llmProvider == nil {
		logger.Error("One or more external services failed to initialize. Shutting down.")
		logger.Debug("Available services : ", "EmbeddingService", embeddingService != nil, "LLMProvider", llmProvider != nil)
		return
	}

	retriever := retrieval.NewEngine(store)
	ranker := rerank.NewEngine(rerank.NewHTTPReranker())
	ingestor := ingest.NewOrchestrator(store, embeddingService, extract.Text)

	ragService := rag.NewService(jobRegistry, retriever, ranker, llmProvider, embeddingService, ingestor)

	handlers.InitJobHandler(service, ragService)

	//init worker pool
	worker.InitServices(service, ragService)
	worker.InitWorkerPool(stopWorkerChannel, &workerWaitGroup)

	if enableMCP {
		go func() {
			if err := mcpServer.NewServer(ragService, jobRegistry).Run(serviceContext); err != nil {
				logger.Error("MCP server stopped", "error", err)
			}
		}()
	}

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		WorkerStop:       stopWorkerChannel,
		Group:            &workerWaitGroup,
		CloseServices:    closeExternalServices,
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(listenAddr)

	<-stopExecution
	logger.Info("Server stopped")
}
