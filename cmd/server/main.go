package main

import (
	"context"
	"log"
	"math/rand"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	goredis "github.com/redis/go-redis/v9"

	"github.com/music-timeline-game/internal/auth"
	"github.com/music-timeline-game/internal/catalog"
	"github.com/music-timeline-game/internal/session"
	"github.com/music-timeline-game/internal/ws"
	"github.com/music-timeline-game/pkg/database"
	"github.com/music-timeline-game/pkg/events"
	"github.com/music-timeline-game/pkg/notify"
	"github.com/music-timeline-game/pkg/redis"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found")
	}

	// Set Gin mode based on environment
	if os.Getenv("ENV") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize MySQL database
	db, err := database.NewMySQLDB(
		os.Getenv("MYSQL_HOST"),
		os.Getenv("MYSQL_PORT"),
		os.Getenv("MYSQL_USER"),
		os.Getenv("MYSQL_PASSWORD"),
		os.Getenv("MYSQL_DATABASE"),
	)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Initialize Redis client
	redisClient := goredis.NewClient(&goredis.Options{
		Addr:     os.Getenv("REDIS_HOST") + ":" + os.Getenv("REDIS_PORT"),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})

	// Optional Spotify source for custom playlist pools and year lookups
	var spotifySource *catalog.SpotifySource
	if os.Getenv("SPOTIFY_CLIENT_ID") != "" {
		spotifySource, err = catalog.NewSpotifySource(
			context.Background(),
			os.Getenv("SPOTIFY_CLIENT_ID"),
			os.Getenv("SPOTIFY_CLIENT_SECRET"),
		)
		if err != nil {
			log.Printf("Warning: spotify disabled: %v", err)
			spotifySource = nil
		}
	}

	// Initialize change notification bus, optionally bridged over Kafka
	// so changes fan out across server instances
	bus := notify.NewBus()
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		kafkaClient := events.NewKafkaClient(
			strings.Split(brokers, ","),
			"session-changes",
			os.Getenv("KAFKA_GROUP_ID"),
		)
		bus.AttachBroker(kafkaClient)

		go func() {
			err := kafkaClient.ConsumeSessionChanges(context.Background(), func(pin string) error {
				bus.Fanout(pin)
				return nil
			})
			if err != nil {
				log.Printf("Kafka consumer stopped: %v", err)
			}
		}()
	}

	// Initialize services
	songCatalog := catalog.New(spotifySource)
	enricher := catalog.NewEnricher(redisClient, spotifySource)
	presence := redis.NewPresenceStore(redisClient)
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	sessionService := session.NewService(db, presence, bus, songCatalog, enricher, rng)

	// Initialize handlers
	authHandler := auth.NewHandler()
	sessionHandler := session.NewHandler(sessionService)
	wsHandler := ws.NewHandler(bus, sessionService)

	// Initialize Gin router
	router := gin.Default()

	// CORS middleware
	router.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Split(os.Getenv("CORS_ORIGINS"), ","),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})

	// API routes
	v1 := router.Group("/api/v1")

	// Public routes
	authHandler.RegisterRoutes(v1)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(auth.AuthMiddleware())
	{
		sessionHandler.RegisterRoutes(protected)

		// WebSocket subscription endpoint
		protected.GET("/ws/:pin", wsHandler.HandleWebSocket)
	}

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
