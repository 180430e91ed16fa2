package main

import (
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	gql "zapateria/internal/graphql"
	"zapateria/internal/handlers"
	"zapateria/internal/middleware"
	"zapateria/internal/models"
	"zapateria/internal/repositories"
	"zapateria/internal/services"
	"zapateria/pkg/rabbitmq"
)

const devFallbackSecret = "dev-secret-placeholder-32chars-min-123456"

func main() {
	// --- Configuration ---
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("APP_PORT", ":3000")
	viper.SetDefault("BODY_LIMIT", 100*1024)
	viper.SetDefault("RATE_LIMIT_WINDOW_MS", 15*60*1000)
	viper.SetDefault("RATE_LIMIT_MAX", 100)
	viper.SetDefault("PRODUCT_WRITE_ROLE", "product_admin")
	viper.SetDefault("LOG_LEVEL", "debug")
	viper.AutomaticEnv() // Load environment variables

	appEnv := viper.GetString("APP_ENV")
	appPort := viper.GetString("APP_PORT")
	writeRole := viper.GetString("PRODUCT_WRITE_ROLE")

	jwtSecret := viper.GetString("JWT_SECRET")
	if jwtSecret == "" {
		if appEnv == "production" {
			log.Fatal("JWT_SECRET must be set in production")
		}
		log.Println("Using fallback JWT secret for non-production environment")
		jwtSecret = devFallbackSecret
	}
	if len(jwtSecret) < 32 {
		log.Fatal("JWT_SECRET must be at least 32 characters long")
	}

	allowedOrigins := viper.GetString("ALLOWED_ORIGINS")
	if appEnv == "production" && allowedOrigins == "" {
		log.Fatal("ALLOWED_ORIGINS must be set in production")
	}

	// --- Persistence ---
	// DATABASE_URL selects the engine: a postgres DSN, a sqlite file path,
	// or empty for the seeded in-memory store.
	var productRepo repositories.ProductRepository
	var userRepo repositories.UserRepository

	if databaseURL := viper.GetString("DATABASE_URL"); databaseURL != "" {
		var dialector gorm.Dialector
		if strings.HasPrefix(databaseURL, "postgres://") || strings.HasPrefix(databaseURL, "postgresql://") {
			dialector = postgres.Open(databaseURL)
		} else {
			dialector = sqlite.Open(databaseURL)
		}

		db, err := gorm.Open(dialector, &gorm.Config{})
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		err = db.AutoMigrate(&models.Category{}, &models.Subcategory{}, &models.Product{}, &models.User{})
		if err != nil {
			log.Fatalf("Failed to migrate database: %v", err)
		}

		sqlDB, err := db.DB()
		if err != nil {
			log.Fatalf("Failed to get database handle: %v", err)
		}
		defer sqlDB.Close() // Close the connection pool on shutdown

		productRepo = repositories.NewGORMProductRepository(db)
		userRepo = repositories.NewGORMUserRepository(db)
	} else {
		memRepo := repositories.NewInMemoryProductRepository()
		seedProducts(memRepo)
		productRepo = memRepo
		userRepo = repositories.NewInMemoryUserRepository()
	}

	// --- Optional RabbitMQ event publisher ---
	var events services.EventPublisher
	if mqURL := viper.GetString("RABBITMQ_URL"); mqURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: mqURL})
		if err != nil {
			log.Fatalf("Failed to initialize RabbitMQ client: %v", err)
		}
		defer mqClient.Close()
		events = mqClient
	}

	// --- Services and handlers ---
	productService := services.NewProductService(productRepo, events)
	authService := services.NewAuthService(userRepo, jwtSecret)
	productHandler := handlers.NewProductHandler(productService)
	authHandler := handlers.NewAuthHandler(authService)

	schema, err := gql.NewSchema(productService, writeRole)
	if err != nil {
		log.Fatalf("Failed to build GraphQL schema: %v", err)
	}

	// --- Fiber app ---
	app := fiber.New(fiber.Config{
		BodyLimit: viper.GetInt("BODY_LIMIT"),
	})

	if viper.GetString("LOG_LEVEL") != "silent" {
		app.Use(logger.New()) // Request logger
	}
	corsConfig := cors.Config{}
	if allowedOrigins != "" {
		corsConfig.AllowOrigins = allowedOrigins
	}
	app.Use(cors.New(corsConfig))
	app.Use(limiter.New(limiter.Config{
		Max:        viper.GetInt("RATE_LIMIT_MAX"),
		Expiration: time.Duration(viper.GetInt("RATE_LIMIT_WINDOW_MS")) * time.Millisecond,
	}))

	// --- Routes ---
	api := app.Group("/api")
	authHandler.RegisterRoutes(api)
	productHandler.RegisterRoutes(api, middleware.AuthRequired(authService), middleware.RequireRoles(writeRole))

	app.Post("/graphql", middleware.AuthOptional(authService), gql.HTTPHandler(schema))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "OK",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	// 404 fallthrough
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Route not found",
		})
	})

	// --- Start HTTP server with graceful shutdown ---
	log.Printf("Starting server on port %s", appPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(appPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}

	log.Println("Server gracefully stopped")
}

// seedProducts populates the in-memory repository with initial catalog data.
func seedProducts(repo repositories.ProductRepository) {
	running := models.Subcategory{
		ID:          101,
		Name:        "Running",
		Description: "Calzado especializado para correr",
		CategoryID:  1001,
		Category: models.Category{
			ID:          1001,
			Name:        "Deportivo",
			Description: "Calzado para actividades deportivas",
		},
	}
	botines := models.Subcategory{
		ID:          102,
		Name:        "Botines",
		Description: "Botines para uso formal y casual",
		CategoryID:  1002,
		Category: models.Category{
			ID:          1002,
			Name:        "Formal",
			Description: "Calzado para ocasiones formales",
		},
	}

	products := []models.Product{
		{
			Name:        "Zapatilla Running Pro",
			Description: "Zapatilla profesional para running",
			Price:       89.99,
			Stock:       25,
			Size:        "42",
			Color:       "Negro/Rojo",
			Brand:       "SportMax",
			Subcategory: running,
			CreatedBy:   services.AnonymousUser,
			UpdatedBy:   services.AnonymousUser,
		},
		{
			Name:        "Botin Clasico Premium",
			Description: "Botin de cuero para uso formal",
			Price:       129.99,
			Stock:       15,
			Size:        "41",
			Color:       "Marron",
			Brand:       "ElegantShoes",
			Subcategory: botines,
			CreatedBy:   services.AnonymousUser,
			UpdatedBy:   services.AnonymousUser,
		},
	}

	for i := range products {
		created, err := repo.Create(&products[i])
		if err != nil {
			log.Printf("Error seeding product %s: %v", products[i].Name, err)
			continue
		}
		log.Printf("Seeded product: %s (ID: %d)", created.Name, created.ID)
	}
}
