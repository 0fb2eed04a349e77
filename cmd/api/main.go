// @title           PDF Question Answering API
// @version         1.0
// @description     Upload documents with a question and poll for an answer grounded in their text.
// @termsOfService  http://swagger.io/terms/

// @contact.name    API Support
// @contact.url
// @contact.email   ank.github@gmail.com

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

	"github.com/akolanti/PdfQA/internal/bootstrap"
	"github.com/akolanti/PdfQA/internal/config"
	"github.com/akolanti/PdfQA/internal/data/store"
	jobmodel "github.com/akolanti/PdfQA/internal/domain/jobModel"
	"github.com/akolanti/PdfQA/internal/handlers"
	"github.com/akolanti/PdfQA/internal/job"
	"github.com/akolanti/PdfQA/internal/middleware"
	"github.com/akolanti/PdfQA/internal/rag"
	"github.com/akolanti/PdfQA/internal/server"
	"github.com/akolanti/PdfQA/internal/worker"
	"github.com/akolanti/PdfQA/pkg/logger_i"
)

var (
	configPath        string
	listenAddr        string
	stopWorkerChannel chan bool
	workerWaitGroup   sync.WaitGroup
)

func main() {
	//config
	flag.StringVar(&configPath, "config", "config.yaml", "path to the YAML config file")
	flag.StringVar(&listenAddr, "listen-addr", "", "server listen address, overrides the config")
	flag.Parse()

	settings, err := config.Load(configPath)
	if err != nil {
		logger_i.Init("info", config.IS_PROD)
		logger_i.NewLogger("main").Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	if listenAddr != "" {
		settings.Server.ListenAddr = listenAddr
	}

	logger_i.Init(settings.Logging.Level, settings.Logging.JSON)
	var logger = logger_i.NewLogger("main")

	//init buffered job channel
	jobChannel := make(chan jobmodel.Job, settings.Workers.BufferLimit)
	dispatcherChannel := make(chan bool, 1)
	stopWorkerChannel = make(chan bool, 1)

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	//init job service and job store
	jobStore := store.NewJobStore(serviceContext, settings.Redis)
	if jobStore == nil {
		logger.Error("No job store available, Redis is offline and fallback is disabled")
		return
	}
	logger.Info("Starting job service")
	service := job.InitJobService(job.ServiceConfig{
		JobChannel:           jobChannel,
		DispatcherChannel:    dispatcherChannel,
		JobStore:             jobStore,
		RequestsPerNewWorker: settings.Workers.RequestsPerNewWorker,
	})

	ragService, closePipeline, err := bootstrap.NewService(serviceContext, settings)
	if err != nil {
		logger.Error("One or more external services failed to initialize. Shutting down.", "error", err)
		return
	}

	handlers.InitJobHandler(service, settings.Server, rag.OptionsFromSettings(settings).CheckCredentials)
	middleware.Init(settings.Server)

	//init worker pool
	worker.InitServices(service, ragService)
	worker.InitWorkerPool(settings.Workers, stopWorkerChannel, &workerWaitGroup)

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		WorkerStop:       stopWorkerChannel,
		Group:            &workerWaitGroup,
		DrainQueue:       worker.DrainQueue,
		CloseServices: func() {
			closePipeline()
			closeExternalServices()
		},
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(settings.Server)

	<-stopExecution
	logger.Info("Server stopped")
}
