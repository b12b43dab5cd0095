package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/mysupertc/MySuperTC-sub001/config"
	"github.com/mysupertc/MySuperTC-sub001/internal/domain"
	httpHandler "github.com/mysupertc/MySuperTC-sub001/internal/http"
	"github.com/mysupertc/MySuperTC-sub001/internal/http/middleware"
	"github.com/mysupertc/MySuperTC-sub001/internal/repository"
	"github.com/mysupertc/MySuperTC-sub001/internal/service"
	"github.com/mysupertc/MySuperTC-sub001/pkg/cache"
	"github.com/mysupertc/MySuperTC-sub001/pkg/crypto"
	"github.com/mysupertc/MySuperTC-sub001/pkg/logger"
	"github.com/mysupertc/MySuperTC-sub001/pkg/mailer"
	"github.com/mysupertc/MySuperTC-sub001/pkg/metrics"
	"github.com/mysupertc/MySuperTC-sub001/pkg/postgrest"
	"github.com/mysupertc/MySuperTC-sub001/pkg/ratelimiter"
	"github.com/mysupertc/MySuperTC-sub001/pkg/supabase"
)

// AppInterface defines the interface for the App
type AppInterface interface {
	Initialize() error
	Start() error
	Shutdown(ctx context.Context) error

	// Getters for app components accessed in tests
	GetConfig() *config.Config
	GetLogger() logger.Logger
	GetMux() *http.ServeMux
	GetHandler() http.Handler
	GetMailer() mailer.Mailer
	GetCache() cache.Cache
	GetDataClient() *postgrest.Client

	// Server status methods
	IsServerCreated() bool
	WaitForServerStart(ctx context.Context) bool

	// Methods for initialization steps
	InitMetrics() error
	InitCache() error
	InitMailer() error
	InitRepositories() error
	InitServices() error
	InitHandlers() error

	// Graceful shutdown methods
	SetShutdownTimeout(timeout time.Duration)
	GetActiveRequestCount() int64
	GetShutdownContext() context.Context
}

// App encapsulates the application dependencies and configuration
type App struct {
	config      *config.Config
	logger      logger.Logger
	httpClient  *http.Client
	registry    *prometheus.Registry
	metrics     *metrics.Metrics
	dataClient  *postgrest.Client
	cache       cache.Cache
	mailer      mailer.Mailer
	rateLimiter *ratelimiter.RateLimiter
	// healthChecks are probed by /healthz
	healthChecks map[string]httpHandler.HealthCheck

	// Repositories
	profileRepo     domain.ProfileRepository
	clientRepo      domain.ClientRepository
	transactionRepo domain.TransactionRepository
	itemRepo        domain.ItemRepository
	eventRepo       domain.CalendarEventRepository
	emailRepo       domain.EmailHistoryRepository
	templateRepo    domain.TemplateRepository

	// Services
	authService        *service.AuthService
	profileService     *service.ProfileService
	clientService      *service.ClientService
	checklistService   *service.ChecklistService
	transactionService *service.TransactionService
	calendarService    *service.CalendarService
	emailService       *service.EmailService
	templateService    *service.TemplateService
	dashboardService   *service.DashboardService
	mlsService         *service.MLSService

	// HTTP handlers
	mux     *http.ServeMux
	handler http.Handler
	server  *http.Server

	// Server synchronization
	serverMu      sync.RWMutex
	serverStarted chan struct{}

	// Graceful shutdown management
	shutdownCtx     context.Context
	shutdownCancel  context.CancelFunc
	activeRequests  int64          // atomic counter for active HTTP requests
	requestWg       sync.WaitGroup // wait group for active requests
	shutdownTimeout time.Duration
}

// AppOption defines a functional option for configuring the App
type AppOption func(*App)

// WithMockMailer configures the app to use a mock mailer
func WithMockMailer(m mailer.Mailer) AppOption {
	return func(a *App) {
		a.mailer = m
	}
}

// WithCache replaces the cache chosen from configuration
func WithCache(c cache.Cache) AppOption {
	return func(a *App) {
		a.cache = c
	}
}

// WithHTTPClient sets the client used for the data, auth and listings APIs
func WithHTTPClient(client *http.Client) AppOption {
	return func(a *App) {
		a.httpClient = client
	}
}

// WithRegistry sets the registry metrics are registered on and served from
func WithRegistry(registry *prometheus.Registry) AppOption {
	return func(a *App) {
		a.registry = registry
	}
}

// WithLogger sets a custom logger
func WithLogger(logger logger.Logger) AppOption {
	return func(a *App) {
		a.logger = logger
	}
}

// NewApp creates a new application instance
func NewApp(cfg *config.Config, opts ...AppOption) AppInterface {
	shutdownCtx, shutdownCancel := context.WithCancel(context.Background())

	app := &App{
		config:          cfg,
		logger:          logger.NewLoggerWithLevel(cfg.LogLevel),
		mux:             http.NewServeMux(),
		healthChecks:    make(map[string]httpHandler.HealthCheck),
		serverStarted:   make(chan struct{}),
		shutdownCtx:     shutdownCtx,
		shutdownCancel:  shutdownCancel,
		shutdownTimeout: 30 * time.Second,
	}

	for _, opt := range opts {
		opt(app)
	}

	if app.httpClient == nil {
		app.httpClient = &http.Client{Timeout: cfg.HTTPClientTimeout}
	}

	return app
}

// InitMetrics registers the collectors on the app registry
func (a *App) InitMetrics() error {
	if a.registry == nil {
		a.registry = prometheus.NewRegistry()
		a.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	a.metrics = metrics.New(a.registry)
	return nil
}

// InitCache connects Redis when REDIS_ADDR is set and falls back to an
// in-memory cache otherwise
func (a *App) InitCache() error {
	if a.cache != nil {
		return nil
	}

	if a.config.Redis.Addr == "" {
		a.logger.Info("REDIS_ADDR not set, using in-memory cache")
		a.cache = cache.NewInMemoryCache(time.Minute)
		return nil
	}

	redisCache := cache.NewRedisCache(cache.RedisConfig{
		Addr:     a.config.Redis.Addr,
		Password: a.config.Redis.Password,
		DB:       a.config.Redis.DB,
		Prefix:   "mysupertc:",
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := redisCache.Ping(ctx); err != nil {
		redisCache.Close()
		return fmt.Errorf("failed to connect to redis: %w", err)
	}

	a.logger.WithField("addr", a.config.Redis.Addr).Info("Connected to Redis cache")
	a.cache = redisCache
	a.healthChecks["cache"] = redisCache.Ping
	return nil
}

// InitMailer initializes the mailer service
func (a *App) InitMailer() error {
	if a.mailer != nil {
		return nil
	}

	if a.config.SMTP.Host == "" {
		a.logger.Info("SMTP_HOST not set, emails will be logged instead of sent")
		a.mailer = mailer.NewConsoleMailer(a.logger)
		return nil
	}

	a.mailer = mailer.NewSMTPMailer(&mailer.Config{
		SMTPHost:     a.config.SMTP.Host,
		SMTPPort:     a.config.SMTP.Port,
		SMTPUsername: a.config.SMTP.Username,
		SMTPPassword: a.config.SMTP.Password,
		FromEmail:    a.config.SMTP.FromEmail,
		FromName:     a.config.SMTP.FromName,
	}, a.logger)
	return nil
}

// InitRepositories builds the data client and the repositories over it
func (a *App) InitRepositories() error {
	a.dataClient = postgrest.NewClient(postgrest.Config{
		BaseURL:    a.config.Supabase.URL,
		APIKey:     a.config.Supabase.AnonKey,
		HTTPClient: a.httpClient,
		Logger:     a.logger,
		Observer:   a.metrics,
	})

	a.profileRepo = repository.NewProfileRepository(a.dataClient)
	a.clientRepo = repository.NewClientRepository(a.dataClient)
	a.transactionRepo = repository.NewTransactionRepository(a.dataClient)
	a.itemRepo = repository.NewItemRepository(a.dataClient)
	a.eventRepo = repository.NewCalendarEventRepository(a.dataClient)
	a.emailRepo = repository.NewEmailHistoryRepository(a.dataClient)
	a.templateRepo = repository.NewTemplateRepository(a.dataClient)

	return nil
}

// InitServices initializes all application services
func (a *App) InitServices() error {
	sealer, err := crypto.NewSealer(a.config.Security.SecretKey, service.GmailTokenPurpose)
	if err != nil {
		return fmt.Errorf("failed to create token sealer: %w", err)
	}

	authClient := supabase.NewAuthClient(a.config.Supabase.URL, a.config.Supabase.AnonKey, a.httpClient)
	verifier := supabase.NewTokenVerifier(a.config.Supabase.JWTSecret)
	if verifier == nil {
		a.logger.Warn("SUPABASE_JWT_SECRET not set, every request will be verified against the auth API")
	}
	a.authService = service.NewAuthService(authClient, verifier, a.logger)

	a.profileService = service.NewProfileService(a.profileRepo, sealer, a.logger)
	a.clientService = service.NewClientService(a.clientRepo, a.logger)
	a.checklistService = service.NewChecklistService(a.itemRepo, a.templateRepo, a.logger)
	a.transactionService = service.NewTransactionService(a.transactionRepo, a.checklistService, a.logger)
	a.calendarService = service.NewCalendarService(a.eventRepo, a.itemRepo, a.logger)
	a.templateService = service.NewTemplateService(a.templateRepo, a.logger)
	a.dashboardService = service.NewDashboardService(a.transactionRepo, a.eventRepo, a.itemRepo, a.logger)

	a.emailService = service.NewEmailService(service.EmailServiceConfig{
		Templates:    a.templateRepo,
		Transactions: a.transactionRepo,
		Clients:      a.clientRepo,
		Profiles:     a.profileService,
		History:      a.emailRepo,
		Mailer:       a.mailer,
		Metrics:      a.metrics,
		Logger:       a.logger,
	})

	if a.config.MLS.APIURL == "" {
		a.logger.Warn("MLS_API_URL not set, listing lookups will fail")
	}
	a.mlsService = service.NewMLSService(service.MLSServiceConfig{
		BaseURL:    a.config.MLS.APIURL,
		APIKey:     a.config.MLS.APIKey,
		HTTPClient: a.httpClient,
		Cache:      a.cache,
		CacheTTL:   a.config.MLS.CacheTTL,
		Metrics:    a.metrics,
		Logger:     a.logger,
	})

	return nil
}

// InitHandlers registers every route on the mux
func (a *App) InitHandlers() error {
	a.rateLimiter = ratelimiter.NewRateLimiter()
	a.rateLimiter.SetPolicy(httpHandler.MLSRateLimitNamespace, a.config.MLS.LookupsPerMinute, time.Minute)

	gate := middleware.NewSessionGate(a.authService, a.config.Security.CookieSecure, a.logger)

	httpHandler.NewAuthHandler(a.authService, gate, a.config.Security.CookieSecure, a.logger).RegisterRoutes(a.mux)
	httpHandler.NewTransactionHandler(a.transactionService, gate, a.logger).RegisterRoutes(a.mux)
	httpHandler.NewClientHandler(a.clientService, gate, a.logger).RegisterRoutes(a.mux)
	httpHandler.NewItemHandler(a.checklistService, gate, a.logger).RegisterRoutes(a.mux)
	httpHandler.NewCalendarHandler(a.calendarService, gate, a.logger).RegisterRoutes(a.mux)
	httpHandler.NewProfileHandler(a.profileService, gate, a.logger).RegisterRoutes(a.mux)
	httpHandler.NewEmailHandler(a.emailService, gate, a.logger).RegisterRoutes(a.mux)
	httpHandler.NewTemplateHandler(a.templateService, gate, a.logger).RegisterRoutes(a.mux)
	httpHandler.NewDashboardHandler(a.dashboardService, gate, a.logger).RegisterRoutes(a.mux)
	httpHandler.NewMLSHandler(a.mlsService, gate, a.rateLimiter, a.logger).RegisterRoutes(a.mux)
	httpHandler.NewHealthHandler(a.healthChecks, a.registry, a.logger).RegisterRoutes(a.mux)
	httpHandler.NewPageHandler(a.dashboardService, gate, a.logger).RegisterRoutes(a.mux)

	var handler http.Handler = a.mux
	handler = middleware.MetricsMiddleware(a.metrics, a.mux)(handler)
	// Outermost so requests rejected during shutdown are not counted
	a.handler = a.gracefulShutdownMiddleware(handler)

	return nil
}

// Initialize sets up all components of the application
func (a *App) Initialize() error {
	a.logger.WithField("version", a.config.Version).Info("Starting MySuperTC application")

	steps := []func() error{
		a.InitMetrics,
		a.InitCache,
		a.InitMailer,
		a.InitRepositories,
		a.InitServices,
		a.InitHandlers,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}

	a.logger.Info("Application successfully initialized")
	return nil
}

// Start serves HTTP until Shutdown is called
func (a *App) Start() error {
	addr := fmt.Sprintf("%s:%d", a.config.Server.Host, a.config.Server.Port)
	a.logger.WithField("address", addr).
		WithField("public_url", a.config.Server.PublicURL).
		Info(fmt.Sprintf("Server starting on %s", addr))

	a.serverMu.Lock()
	if a.serverStarted != nil {
		close(a.serverStarted)
	}
	a.serverStarted = make(chan struct{})

	a.server = &http.Server{
		Addr:              addr,
		Handler:           a.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverStarted := a.serverStarted
	a.serverMu.Unlock()

	close(serverStarted)

	if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests, waits for in-flight ones and releases resources
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("Starting graceful shutdown...")

	a.shutdownCancel()

	a.serverMu.RLock()
	server := a.server
	a.serverMu.RUnlock()

	if server == nil {
		a.logger.Info("No server to shutdown")
		return a.cleanupResources()
	}

	activeCount := a.getActiveRequestCount()
	a.logger.WithField("active_requests", activeCount).Info("Active requests at shutdown start")

	shutdownTimeout := a.shutdownTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < shutdownTimeout {
			shutdownTimeout = remaining - time.Second
			if shutdownTimeout < 0 {
				shutdownTimeout = 0
			}
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	serverShutdownDone := make(chan error, 1)
	go func() {
		a.logger.WithField("timeout", shutdownTimeout.String()).Info("Starting HTTP server shutdown")
		serverShutdownDone <- server.Shutdown(shutdownCtx)
	}()

	requestsDone := make(chan struct{})
	go func() {
		a.requestWg.Wait()
		close(requestsDone)
	}()

	var shutdownErr error
	select {
	case err := <-serverShutdownDone:
		shutdownErr = err
		a.logger.Info("HTTP server shutdown completed")
	case <-shutdownCtx.Done():
		a.logger.Warn("Shutdown timeout reached")
		shutdownErr = fmt.Errorf("shutdown timeout exceeded")
	}

	if shutdownErr == nil {
		select {
		case <-requestsDone:
		case <-time.After(2 * time.Second):
			if activeCount := a.getActiveRequestCount(); activeCount > 0 {
				a.logger.WithField("active_requests", activeCount).Warn("Some requests still active, proceeding with shutdown")
			}
		}
	}

	if cleanupErr := a.cleanupResources(); cleanupErr != nil {
		a.logger.WithField("error", cleanupErr.Error()).Error("Error during resource cleanup")
		if shutdownErr == nil {
			shutdownErr = cleanupErr
		}
	}

	if shutdownErr != nil {
		a.logger.WithField("error", shutdownErr.Error()).Error("Graceful shutdown completed with errors")
	} else {
		a.logger.Info("Graceful shutdown completed successfully")
	}

	return shutdownErr
}

func (a *App) cleanupResources() error {
	a.logger.Info("Cleaning up resources...")

	if a.rateLimiter != nil {
		a.rateLimiter.Stop()
	}

	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.WithField("error", err.Error()).Error("Error closing cache")
			return err
		}
	}

	a.logger.Info("Resource cleanup completed")
	return nil
}

// IsServerCreated safely checks if the server has been created
func (a *App) IsServerCreated() bool {
	a.serverMu.RLock()
	defer a.serverMu.RUnlock()
	return a.server != nil
}

// WaitForServerStart waits for the server to be created.
// Returns false if ctx expires first.
func (a *App) WaitForServerStart(ctx context.Context) bool {
	a.serverMu.RLock()
	started := a.serverStarted
	a.serverMu.RUnlock()

	select {
	case <-started:
		return a.IsServerCreated()
	case <-ctx.Done():
		return false
	}
}

func (a *App) GetConfig() *config.Config {
	return a.config
}

func (a *App) GetLogger() logger.Logger {
	return a.logger
}

func (a *App) GetMux() *http.ServeMux {
	return a.mux
}

// GetHandler returns the mux wrapped in the app middlewares
func (a *App) GetHandler() http.Handler {
	return a.handler
}

func (a *App) GetMailer() mailer.Mailer {
	return a.mailer
}

func (a *App) GetCache() cache.Cache {
	return a.cache
}

func (a *App) GetDataClient() *postgrest.Client {
	return a.dataClient
}

func (a *App) incrementActiveRequests() {
	atomic.AddInt64(&a.activeRequests, 1)
	a.requestWg.Add(1)
}

func (a *App) decrementActiveRequests() {
	atomic.AddInt64(&a.activeRequests, -1)
	a.requestWg.Done()
}

func (a *App) getActiveRequestCount() int64 {
	return atomic.LoadInt64(&a.activeRequests)
}

// GetActiveRequestCount returns the current number of active requests
func (a *App) GetActiveRequestCount() int64 {
	return a.getActiveRequestCount()
}

// SetShutdownTimeout sets the timeout for graceful shutdown
func (a *App) SetShutdownTimeout(timeout time.Duration) {
	a.shutdownTimeout = timeout
	a.logger.WithField("shutdown_timeout", timeout.String()).Info("Shutdown timeout configured")
}

// GetShutdownContext is cancelled when shutdown starts
func (a *App) GetShutdownContext() context.Context {
	return a.shutdownCtx
}

func (a *App) isShuttingDown() bool {
	select {
	case <-a.shutdownCtx.Done():
		return true
	default:
		return false
	}
}

// gracefulShutdownMiddleware tracks active requests and turns new ones away
// once shutdown has started
func (a *App) gracefulShutdownMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.isShuttingDown() {
			httpHandler.WriteJSONError(w, "Server is shutting down", http.StatusServiceUnavailable)
			return
		}

		a.incrementActiveRequests()
		defer a.decrementActiveRequests()

		next.ServeHTTP(w, r)
	})
}

// Ensure App implements AppInterface
var _ AppInterface = (*App)(nil)
