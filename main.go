package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/luminedge/academy-cms/handlers"
	"github.com/luminedge/academy-cms/internal/admins"
	"github.com/luminedge/academy-cms/internal/audit"
	"github.com/luminedge/academy-cms/internal/config"
	"github.com/luminedge/academy-cms/internal/content"
	"github.com/luminedge/academy-cms/internal/content/store"
	"github.com/luminedge/academy-cms/internal/database"
	"github.com/luminedge/academy-cms/internal/oidc"
	"github.com/luminedge/academy-cms/internal/sessions"
	"github.com/luminedge/academy-cms/internal/storage"
	"github.com/luminedge/academy-cms/pkg/logger"
	"github.com/luminedge/academy-cms/pkg/metrics"
	"github.com/luminedge/academy-cms/pkg/middleware"
)

var startTime = time.Now()

func main() {
	// logging level controlled with LOG_LEVEL env: debug|info|warn|error|fatal
	logger.Init(os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Infof("config loaded: mongo=%v redis=%v oidc=%v", cfg.MongoDB.URI != "", cfg.Redis.Host != "", cfg.OIDC.Issuer != "")

	r := gin.New()

	// Lightweight CORS middleware for dev/test. Production deployments sit
	// behind a gateway with a stricter policy.
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Length")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(200)
			return
		}
		c.Next()
	})
	r.Use(gin.Logger(), gin.Recovery())

	ctx := context.Background()

	// Connect to Redis early: it backs the section cache, the token
	// blacklist and the rate limiter when configured.
	var redisClient *redis.Client
	if cfg.Redis.Host != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.Redis.Host + ":" + cfg.Redis.Port, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s:%s): %v", cfg.Redis.Host, cfg.Redis.Port, err)
			redisClient = nil
		} else {
			sessions.SetBlacklistClient(redisClient)
			logger.Infof("connected to Redis at %s:%s", cfg.Redis.Host, cfg.Redis.Port)
		}
	}
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && redisClient != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			r.Use(middleware.RedisRateLimitMiddleware(redisClient, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
		} else {
			r.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}

	// shared runtime vars used by handlers/readiness
	var (
		verifier    middleware.Verifier
		mongoClient *mongo.Client
		contentStor content.Store
	)

	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	// readiness: 200 only when the content store and (if configured) the
	// remaining dependencies are up
	r.GET("/readyz", func(c *gin.Context) {
		ready := true
		deps := map[string]bool{}

		deps["store"] = contentStor != nil
		if contentStor == nil {
			ready = false
		}
		deps["mongo"] = mongoClient != nil
		if cfg.Redis.Host != "" {
			deps["redis"] = redisClient != nil
			if redisClient == nil {
				ready = false
			}
		} else {
			deps["redis"] = true
		}
		if cfg.OIDC.Issuer != "" {
			deps["oidc"] = verifier != nil
			if verifier == nil {
				ready = false
			}
		} else {
			deps["oidc"] = true
		}

		status := http.StatusOK
		state := "ready"
		if !ready {
			status = http.StatusServiceUnavailable
			state = "not_ready"
		}
		c.JSON(status, gin.H{"status": state, "deps": deps, "uptime": fmt.Sprintf("%s", time.Since(startTime))})
	})

	// OIDC verifier for the identity provider; an insecure claims-only
	// verifier can be opted into for integration runs
	if cfg.OIDC.Issuer != "" && cfg.OIDC.ClientID != "" {
		ver, err := oidc.NewVerifier(ctx, cfg.OIDC.Issuer, cfg.OIDC.ClientID)
		if err != nil {
			logger.Warnf("failed to initialize OIDC verifier: %v", err)
		} else {
			verifier = ver
		}
	}
	if verifier == nil {
		if strings.EqualFold(strings.TrimSpace(os.Getenv("ALLOW_INSECURE_TOKEN")), "true") {
			logger.Warnf("enabling insecure token verifier (integration mode)")
			verifier = oidc.NewInsecureVerifier()
		}
	}

	// MongoDB with retry/backoff to tolerate startup races
	const maxAttempts = 5
	backoff := time.Second
	var errConn error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		mongoClient, errConn = database.ConnectMongo(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
		if errConn == nil {
			break
		}
		logger.Warnf("attempt %d/%d: failed to connect to MongoDB: %v", attempt, maxAttempts, errConn)
		if attempt < maxAttempts {
			time.Sleep(backoff)
			backoff *= 2
		}
	}

	var (
		adminsSvc   *admins.Service
		sessionsSvc *sessions.Service
		trail       *audit.Log
	)
	if redisClient != nil {
		sessionsSvc = sessions.NewService(sessions.NewRedisRepository(redisClient, "session:"))
		logger.Infof("using Redis for session storage")
	}
	if errConn != nil {
		logger.Warnf("could not connect to MongoDB after %d attempts; falling back to in-memory content store", maxAttempts)
		mongoClient = nil
		contentStor = store.NewMemoryStore()
	} else {
		defer func() { _ = mongoClient.Disconnect(ctx) }()
		db := mongoClient.Database(cfg.MongoDB.Database)
		contentStor = store.NewMongoStore(db.Collection("content"))
		adminsSvc = admins.NewService(admins.NewMongoRepository(db.Collection("admins")))
		if sessionsSvc == nil {
			sessionsSvc = sessions.NewService(sessions.NewMongoRepository(db.Collection("sessions")))
		}
		if cfg.Content.AuditEnabled {
			trail = audit.NewLog(db.Collection("audit_log"))
		}
	}

	var cache content.Cache
	if redisClient != nil {
		cache = content.NewRedisCache(redisClient, "", cfg.Content.CacheTTL)
	} else {
		cache = content.NewMemoryCache(cfg.Content.CacheTTL)
	}
	accessor := content.NewAccessor(contentStor, cache)
	saver := content.NewSaver(contentStor, accessor)
	if trail != nil {
		saver.OnSave(trail.Hook())
	}

	if adminsSvc != nil && sessionsSvc != nil {
		handlers.NewAuthHandler(cfg, adminsSvc, sessionsSvc).Register(r.Group("/"))
	} else {
		logger.Warnf("auth handlers not registered because admin/session services are unavailable")
	}
	handlers.RegisterSwagger(r)

	api := r.Group("/api/v1")
	if verifier != nil {
		api.Use(middleware.AuthMiddleware(verifier))
	} else {
		logger.Warnf("no token verifier configured; API endpoints are unauthenticated")
	}
	handlers.NewContentHandler(accessor, saver, trail).Register(api)
	if adminsSvc != nil {
		handlers.NewAdminsHandler(adminsSvc).Register(api)
	}
	if minioCfg := storage.LoadMinIOConfig(); minioCfg.Endpoint != "" {
		media, err := storage.NewMediaStorage(minioCfg)
		if err != nil {
			logger.Warnf("media storage unavailable: %v", err)
		} else {
			handlers.NewMediaHandler(media).Register(api)
		}
	}

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	logger.Infof("starting academy-cms on %s (store=%T cache=%T)", addr, contentStor, cache)
	if err := r.Run(addr); err != nil {
		logger.Fatalf("server failed: %v", err)
	}
}
