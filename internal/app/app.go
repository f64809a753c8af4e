package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rollcall-app/rollcall/internal/config"
	"github.com/rollcall-app/rollcall/internal/database"
	"github.com/rollcall-app/rollcall/internal/gateway"
	"github.com/rollcall-app/rollcall/internal/middleware"
	"github.com/rollcall-app/rollcall/internal/network"
	jwtpkg "github.com/rollcall-app/rollcall/internal/pkg/jwt"
	"github.com/rollcall-app/rollcall/internal/pkg/response"
	"github.com/rollcall-app/rollcall/internal/store"
	"go.uber.org/zap"
)

// App holds all application dependencies.
type App struct {
	cfg    *config.AppConfig
	router *gin.Engine
	store  store.Store
	hub    *gateway.Hub
	filter *network.Filter
	logger *zap.Logger
	cancel context.CancelFunc
}

// New initializes the application: config → store → guards → routes.
func New(logger *zap.Logger, cfg *config.AppConfig) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	applyRuntimeSettings(cfg, logger)

	st, err := database.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}

	if cfg.IsDev() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger))
	router.Use(middleware.SecurityHeaders())
	router.Use(cors.New(buildCORSConfig(cfg)))

	filter := network.NewFilter(cfg.Admission, logger)

	hub := gateway.NewHub(func() (gateway.Snapshot, error) {
		records, err := st.ListRecords()
		if err != nil {
			return gateway.Snapshot{}, err
		}
		active, err := st.ActiveSession()
		if err != nil {
			return gateway.Snapshot{}, err
		}
		return gateway.Snapshot{
			Records:       records,
			SessionActive: active != nil,
			Session:       active,
		}, nil
	}, logger)

	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	app := &App{
		cfg:    cfg,
		router: router,
		store:  st,
		hub:    hub,
		filter: filter,
		logger: logger,
		cancel: cancel,
	}
	app.registerRoutes()

	logger.Info("server network identity",
		zap.String("serverIp", filter.ServerIP()),
		zap.String("policy", string(cfg.Admission.Policy)))

	return app, nil
}

func applyRuntimeSettings(cfg *config.AppConfig, logger *zap.Logger) {
	response.SetDevMode(cfg.IsDev())
	if secret := strings.TrimSpace(cfg.JWTSecret); secret != "" {
		jwtpkg.SetSecret(secret)
	} else {
		logger.Warn("jwt_secret is empty, using built-in default secret")
	}
}

func buildCORSConfig(cfg *config.AppConfig) cors.Config {
	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "x-device-id"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After"},
		AllowCredentials: true,
	}
	if len(cfg.AllowedOrigins) > 0 && !cfg.IsDev() {
		patterns := cfg.AllowedOrigins
		corsConfig.AllowOriginFunc = func(origin string) bool {
			host := extractOriginHost(origin)
			for _, pattern := range patterns {
				if matchOriginPattern(pattern, host) {
					return true
				}
			}
			return false
		}
	} else {
		corsConfig.AllowOriginFunc = func(origin string) bool { return true }
	}
	return corsConfig
}

// Addr returns the listen address.
func (a *App) Addr() string { return fmt.Sprintf(":%d", a.cfg.Port) }

// Router returns the HTTP handler.
func (a *App) Router() http.Handler { return a.router }

// Shutdown stops background goroutines.
func (a *App) Shutdown() { a.cancel() }
