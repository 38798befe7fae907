package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"github.com/yourusername/quizroom-api/internal/config"
	"github.com/yourusername/quizroom-api/internal/handler"
	"github.com/yourusername/quizroom-api/internal/middleware"
	"github.com/yourusername/quizroom-api/internal/service"
	"github.com/yourusername/quizroom-api/internal/service/roommanager"
	ws "github.com/yourusername/quizroom-api/internal/websocket"
	"github.com/yourusername/quizroom-api/pkg/database"
)

func main() {
	// Загружаем конфигурацию
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	log.Printf("Загрузка конфигурации из %s", configPath)

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		os.Exit(1)
	}

	// Инициализируем подключение к Redis (опционально).
	// Сервер работает и без Redis: тогда rate limiting отключается.
	var redisClient redis.UniversalClient
	if cfg.Redis.Enabled {
		redisClient, err = database.NewUniversalRedisClient(cfg.Redis)
		if err != nil {
			log.Printf("Failed to connect to Redis: %v. Rate limiting disabled.", err)
			redisClient = nil
		}
	}

	// Инициализируем WebSocket хаб
	clientConfig := ws.DefaultClientConfig()
	if cfg.WebSocket.Buffers.ClientSendBuffer > 0 {
		clientConfig.BufferSize = cfg.WebSocket.Buffers.ClientSendBuffer
	}
	if cfg.WebSocket.Ping.Interval > 0 {
		clientConfig.PingInterval = time.Duration(cfg.WebSocket.Ping.Interval) * time.Second
	}
	if cfg.WebSocket.Ping.Timeout > 0 {
		clientConfig.PongWait = time.Duration(cfg.WebSocket.Ping.Timeout) * time.Second
	}
	if cfg.WebSocket.Limits.MaxMessageSize > 0 {
		clientConfig.MaxMessageSize = int64(cfg.WebSocket.Limits.MaxMessageSize)
	}
	if cfg.WebSocket.Limits.WriteWait > 0 {
		clientConfig.WriteWait = time.Duration(cfg.WebSocket.Limits.WriteWait) * time.Second
	}

	wsHub := ws.NewHubWithConfig(clientConfig)
	wsManager := ws.NewManager(wsHub.Metrics())

	// Инициализируем сервис комнат
	roomConfig := roommanager.DefaultConfig()
	if cfg.Room.CodeLength > 0 {
		roomConfig.CodeLength = cfg.Room.CodeLength
	}
	if cfg.Room.TickIntervalMs > 0 {
		roomConfig.TickInterval = time.Duration(cfg.Room.TickIntervalMs) * time.Millisecond
	}
	roomConfig.MaxPlayers = cfg.Room.MaxPlayers

	roomService := service.NewRoomService(roomConfig)

	// Отключения клиентов обрабатывает сервис комнат
	wsHub.SetDisconnectHandler(func(client *ws.Client) {
		roomService.HandleDisconnect(client)
	})
	go wsHub.Run()

	// Инициализируем обработчики
	wsHandler := handler.NewWSHandler(wsHub, wsManager, roomService)
	rateLimiter := middleware.NewRateLimiter(redisClient)

	isProduction := gin.Mode() == gin.ReleaseMode

	// Инициализируем роутер Gin
	router := gin.Default()

	// Настройка доверенных прокси для корректной работы c.ClientIP()
	if isProduction {
		// Production: не доверять прокси-заголовкам
		if err := router.SetTrustedProxies(nil); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	} else {
		// Development: доверяем localhost
		if err := router.SetTrustedProxies([]string{"127.0.0.1", "::1"}); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	}

	// Настройка CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173", "http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Служебные endpoint'ы
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", func(c *gin.Context) {
		metrics := wsHub.Metrics().Snapshot()
		metrics["active_rooms"] = roomService.RoomCount()
		c.JSON(http.StatusOK, metrics)
	})

	// WebSocket endpoint с лимитом подключений по IP
	wsRoute := router.Group("/")
	if cfg.RateLimit.Enabled && redisClient != nil {
		limitCfg := middleware.DefaultWSRateLimitConfig()
		if cfg.RateLimit.MaxRequests > 0 {
			limitCfg.MaxRequests = cfg.RateLimit.MaxRequests
		}
		if cfg.RateLimit.WindowSec > 0 {
			limitCfg.Window = time.Duration(cfg.RateLimit.WindowSec) * time.Second
		}
		wsRoute.Use(rateLimiter.LimitByIP(limitCfg))
	}
	wsRoute.GET("/ws", wsHandler.HandleConnection)

	// Настраиваем HTTP сервер с тайм-аутами для защиты от slow client attacks
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Запускаем сервер в горутине
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Failed to start server: %v", err)
		}
	}()

	log.Printf("Server started on port %s", cfg.Server.Port)

	// Ждём сигнал остановки
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Останавливаем хаб — клиентские каналы закрываются
	wsHub.Stop()

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Printf("Error closing Redis client: %v", err)
		}
	}

	// Создаем контекст с таймаутом для graceful shutdown сервера
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
		os.Exit(1)
	}

	log.Println("Server exited properly")
}
