package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	healthcheck "github.com/vladislavdragonenkov/storefront/internal/health"
	"github.com/vladislavdragonenkov/storefront/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/storefront/internal/metrics"
	"github.com/vladislavdragonenkov/storefront/internal/service/cart"
	"github.com/vladislavdragonenkov/storefront/internal/service/catalog"
	"github.com/vladislavdragonenkov/storefront/internal/service/checkout"
	"github.com/vladislavdragonenkov/storefront/internal/service/mailer"
	"github.com/vladislavdragonenkov/storefront/internal/service/outbox"
	"github.com/vladislavdragonenkov/storefront/internal/service/payment"
	"github.com/vladislavdragonenkov/storefront/internal/storage/memory"
	"github.com/vladislavdragonenkov/storefront/internal/storage/postgres"
	redisstore "github.com/vladislavdragonenkov/storefront/internal/storage/redis"
	transport "github.com/vladislavdragonenkov/storefront/internal/transport/http"
	"github.com/vladislavdragonenkov/storefront/internal/version"
)

// repositories собирает все хранилища, сконфигурированные по драйверу.
type repositories struct {
	orders     domain.OrderRepository
	products   domain.ProductRepository
	references domain.ReferenceRepository
	banners    domain.BannerRepository
	users      domain.UserRepository
	carts      domain.CartRepository
	outbox     domain.OutboxRepository

	pgStore     *postgres.Store
	redisClient *goredis.Client
}

func (r *repositories) close(logger *log.Entry) {
	if r.redisClient != nil {
		if err := r.redisClient.Close(); err != nil {
			logger.WithError(err).Warn("failed to close redis client")
		}
	}
	if r.pgStore != nil {
		if err := r.pgStore.Close(); err != nil {
			logger.WithError(err).Warn("failed to close postgres store")
		}
	}
}

// Run запускает приложение и блокируется до отмены ctx.
func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app")

	repos, err := buildRepositories(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer repos.close(logger)

	// Платёжный шлюз: без base_url работаем через mock (локальная разработка).
	var gateway domain.PaymentGateway
	if cfg.Payment.BaseURL != "" {
		gateway = payment.NewGateway(cfg.Payment.BaseURL, cfg.Payment.APIKey)
	} else {
		logger.Warn("payment gateway base_url is empty, using mock gateway")
		gateway = payment.NewMockGateway()
	}

	// Почта: без SMTP-хоста письма уходят в mock-отправителя.
	var sender domain.MailSender
	if cfg.SMTP.Host != "" {
		sender = mailer.NewSMTPSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From)
	} else {
		logger.Warn("smtp host is empty, emails will not leave the process")
		sender = mailer.NewMockSender()
	}

	// Kafka опциональна: без брокеров события заказов подтверждаются
	// локально, письма доставляются всегда.
	var kafkaProducer *kafka.Producer
	var orderEventsPublisher domain.OutboxPublisher
	var dlqPublisher domain.OutboxPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		producer, kerr := kafka.NewProducer(cfg.Kafka.Brokers)
		if kerr != nil {
			logger.WithError(kerr).Warn("failed to create kafka producer, continuing without kafka")
		} else {
			kafkaProducer = producer
			orderEventsPublisher = kafka.NewOutboxPublisher(producer, kafka.TopicOrderEvents)
			dlqPublisher = kafka.NewOutboxPublisher(producer, kafka.TopicDeadLetterQueue)
			logger.WithField("brokers", cfg.Kafka.Brokers).Info("kafka producer initialized")
		}
	}
	defer func() {
		if kafkaProducer != nil {
			if err := kafkaProducer.Close(); err != nil {
				logger.WithError(err).Warn("failed to close kafka producer")
			}
		}
	}()

	if orderEventsPublisher == nil {
		// Без брокера события заказов не публикуются наружу; письма
		// продолжают доставляться через SMTP-маршрут.
		orderEventsPublisher = logOnlyPublisher{logger: logger}
	}

	checkoutMetrics := metrics.NewCheckoutMetrics()

	checkoutSvc := checkout.NewService(repos.orders, repos.products, checkout.Options{
		Users:   repos.users,
		Carts:   repos.carts,
		Outbox:  repos.outbox,
		Gateway: gateway,
		Metrics: checkoutMetrics,
	})
	catalogSvc := catalog.NewService(repos.products, repos.references, repos.banners)
	cartSvc := cart.NewService(repos.carts, repos.products)

	// Outbox worker: письма уходят через SMTP, остальные события в Kafka.
	dispatcher := outbox.NewDispatcher(orderEventsPublisher).
		Route(string(kafka.EventTypeEmailRequested), mailer.NewOutboxEmailPublisher(sender))
	worker := outbox.NewWorker(repos.outbox, dispatcher,
		outbox.WithDLQPublisher(dlqPublisher),
		outbox.WithPollInterval(cfg.Outbox.PollInterval),
		outbox.WithBatchSize(cfg.Outbox.BatchSize),
		outbox.WithMaxAttempts(cfg.Outbox.MaxAttempts),
	)
	go worker.Run(ctx)

	healthHandler := healthcheck.NewHandler(version.GetVersion())
	if repos.pgStore != nil {
		healthHandler.RegisterChecker("postgres", healthcheck.NewSimpleChecker("postgres", func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return repos.pgStore.Ping(pingCtx)
		}))
	}
	if r, ok := repos.carts.(*redisstore.CartRepository); ok {
		healthHandler.RegisterChecker("redis", healthcheck.NewSimpleChecker("redis", func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return r.Ping(pingCtx)
		}))
	}

	metricsSrv := startMetricsServer(ctx, cfg.Metrics.Addr, logger, healthHandler)

	server := transport.NewServer(checkoutSvc, catalogSvc, cartSvc, repos.users)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(cfg.HTTP.Addr)
	}()

	select {
	case <-ctx.Done():
		logger.Info("получен сигнал остановки, останавливаем HTTP сервер")
		if err := server.Shutdown(context.Background()); err != nil {
			logger.WithError(err).Warn("http shutdown with error")
		}
		shutdownHTTP(metricsSrv, logger)
		return ctx.Err()
	case err := <-errCh:
		shutdownHTTP(metricsSrv, logger)
		return err
	}
}

// logOnlyPublisher подтверждает событие без внешней публикации.
type logOnlyPublisher struct {
	logger *log.Entry
}

func (p logOnlyPublisher) Publish(event domain.OutboxMessage) error {
	p.logger.WithFields(log.Fields{
		"event_type":   event.EventType,
		"aggregate_id": event.AggregateID,
	}).Debug("no broker configured, outbox event acknowledged locally")
	return nil
}

// buildRepositories выбирает реализацию хранилищ по драйверу конфигурации.
func buildRepositories(ctx context.Context, cfg Config, logger *log.Entry) (*repositories, error) {
	repos := &repositories{}

	switch cfg.Storage.Driver {
	case StorageDriverPostgres:
		store, err := postgres.Open(ctx, cfg.Storage.PostgresDSN)
		if err != nil {
			return nil, err
		}
		if cfg.Storage.AutoMigrate {
			if err := store.EnsureSchema(ctx); err != nil {
				_ = store.Close()
				return nil, err
			}
		}
		repos.pgStore = store
		repos.orders = postgres.NewOrderRepository(store)
		repos.products = postgres.NewProductRepository(store)
		repos.references = postgres.NewReferenceRepository(store)
		repos.banners = postgres.NewBannerRepository(store)
		repos.users = postgres.NewUserRepository(store)
		repos.outbox = postgres.NewOutboxRepository(store)
		logger.Info("postgres storage initialized")
	default:
		products := memory.NewProductRepository()
		repos.products = products
		repos.orders = memory.NewOrderRepository(products)
		repos.references = memory.NewReferenceRepository()
		repos.banners = memory.NewBannerRepository()
		repos.users = memory.NewUserRepository()
		repos.outbox = memory.NewOutboxRepository()
		logger.Info("in-memory storage initialized")
	}

	// Корзины живут в Redis, если он сконфигурирован; иначе в памяти.
	if cfg.Redis.Addr != "" {
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		repos.redisClient = client
		repos.carts = redisstore.NewCartRepository(client)
		logger.WithField("addr", cfg.Redis.Addr).Info("redis cart storage initialized")
	} else {
		repos.carts = memory.NewCartRepository()
	}

	return repos, nil
}

// startMetricsServer запускает HTTP-обработчик /metrics и health-пробы.
func startMetricsServer(ctx context.Context, addr string, logger *log.Entry, healthHandler *healthcheck.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/livez", healthcheck.LivenessHandler)
	mux.HandleFunc("/readyz", healthHandler.ReadinessHandler)

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		logger.Infof("метрики доступны по адресу %s/metrics", addr)
		logger.Infof("health checks: %s/healthz, %s/livez, %s/readyz", addr, addr, addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("metrics server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownHTTP(srv, logger)
	}()

	return srv
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, logger *log.Entry) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("metrics shutdown with error")
	}
}
