package app

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/appgenerator/waitlist-service/internal/config"
	"github.com/appgenerator/waitlist-service/internal/delivery/httpd"
	appmw "github.com/appgenerator/waitlist-service/internal/middleware"
	"github.com/appgenerator/waitlist-service/internal/repository"
	"github.com/appgenerator/waitlist-service/internal/service"
	"github.com/appgenerator/waitlist-service/internal/service/integration"
	"github.com/appgenerator/waitlist-service/internal/worker"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
)

type App struct {
	server     *http.Server
	logger     zerolog.Logger
	config     *config.Config
	db         *sql.DB
	publisher  integration.TaskPublisher
	dispatcher *worker.LocalDispatcher
	queue      *QueueWorker
	ctx        context.Context
	cancel     context.CancelFunc
}

func New(cfg *config.Config, log zerolog.Logger, db *sql.DB) (*App, error) {
	documentService := NewDocumentService(cfg, log)
	taskHandler := NewTaskHandler(cfg, documentService, log)

	// Background work is bound to ctx; Shutdown cancels it.
	ctx, cancel := context.WithCancel(context.Background())

	a := &App{
		logger: log,
		config: cfg,
		db:     db,
		ctx:    ctx,
		cancel: cancel,
	}

	rabbitmqClient, err := integration.NewRabbitMQClient(
		cfg.RabbitMQ.URL,
		cfg.RabbitMQ.Exchange,
		cfg.RabbitMQ.RoutingKey,
		cfg.RabbitMQ.QueueName,
		log,
	)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create RabbitMQ client")
		// Continue without RabbitMQ; emails are sent from this process.
		a.dispatcher = worker.NewLocalDispatcher(
			worker.NewWorkerPool(cfg.Worker.MaxWorkers, log),
			taskHandler,
			log,
		)
		a.publisher = a.dispatcher
	} else {
		a.publisher = rabbitmqClient
		if cfg.Worker.Embedded {
			a.queue, err = NewQueueWorker(cfg, taskHandler, log)
			if err != nil {
				log.Error().Err(err).Msg("Failed to create embedded email worker; tasks stay queued for a standalone worker")
			}
		}
	}

	submissionRepo := repository.NewSubmissionRepository(db, log)
	statsRepo := repository.NewWeeklyStatsRepository(db, log)

	waitlistService := service.NewWaitlistService(
		submissionRepo,
		statsRepo,
		a.publisher,
		cfg.Waitlist,
		log,
	)

	handler := httpd.NewHandler(
		waitlistService,
		documentService,
		db,
		cfg.Admin.Token,
		log,
	)

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(appmw.ContextLogger(log))
	router.Use(appmw.RequestLogger(log))
	router.Use(appmw.Recovery(log))
	router.Use(middleware.Timeout(60 * time.Second))

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   cfg.CORS.AllowedMethods,
		AllowedHeaders:   cfg.CORS.AllowedHeaders,
		ExposedHeaders:   cfg.CORS.ExposedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           cfg.CORS.MaxAge,
	}))

	handler.RegisterRoutes(router)

	a.server = &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return a, nil
}

func (a *App) Run() error {
	if a.dispatcher != nil {
		if err := a.dispatcher.Start(a.ctx); err != nil {
			return err
		}
	}

	if a.queue != nil {
		if err := a.queue.Start(a.ctx); err != nil {
			a.logger.Error().Err(err).Msg("Failed to start embedded email worker")
			return err
		}
	}

	a.logger.Info().Msgf("Starting waitlist service on %s", a.config.Server.Address)
	if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests before draining email work, so every
// admitted submission's tasks are published or run.
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info().Msg("Shutting down waitlist service...")

	serverErr := a.server.Shutdown(ctx)

	if a.queue != nil {
		if err := a.queue.Stop(); err != nil {
			a.logger.Error().Err(err).Msg("Failed to stop embedded email worker")
		}
	}

	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.logger.Error().Err(err).Msg("Failed to close task publisher")
		}
	}

	a.cancel()

	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Error().Err(err).Msg("Failed to close database connection")
		}
	}

	return serverErr
}
