package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/spf13/viper"
	"github.com/streadway/amqp"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"academy/internal/handlers"
	"academy/internal/middleware"
	"academy/internal/models"
	"academy/internal/repositories"
	"academy/internal/services"
	"academy/pkg/rabbitmq"
)

func main() {
	// --- Configuration ---
	viper.SetDefault("APP_PORT", ":8080")
	viper.SetDefault("DB_DRIVER", "postgres") // postgres | sqlite | memory
	viper.SetDefault("DATABASE_DSN", "host=localhost user=postgres password=postgres dbname=academy port=5432 sslmode=disable")
	viper.SetDefault("JWT_SECRET", "")
	viper.SetDefault("TOKEN_TTL_HOURS", 24)
	viper.SetDefault("RABBITMQ_URL", "") // empty disables event publishing
	viper.AutomaticEnv()

	appPort := viper.GetString("APP_PORT")
	jwtSecret := viper.GetString("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}
	tokenTTL := time.Duration(viper.GetInt("TOKEN_TTL_HOURS")) * time.Hour

	// --- Initialize RabbitMQ Client (optional) ---
	var mqClient *rabbitmq.Client
	if mqURL := viper.GetString("RABBITMQ_URL"); mqURL != "" {
		var err error
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: mqURL})
		if err != nil {
			log.Fatalf("Failed to initialize RabbitMQ client: %v", err)
		}
		defer mqClient.Close()
	} else {
		log.Println("RABBITMQ_URL not set, catalog events disabled")
	}

	// --- Initialize Store ---
	var (
		db          *gorm.DB
		userRepo    repositories.UserRepository
		productRepo repositories.ProductRepository
	)
	switch driver := viper.GetString("DB_DRIVER"); driver {
	case "memory":
		// In-memory repositories, handy for local development.
		mockProducts := repositories.NewMockProductRepository()
		productRepo = mockProducts
		userRepo = repositories.NewMockUserRepository(mockProducts)
		seedCatalog(mockProducts)
	default:
		var err error
		db, err = openDatabase(driver, viper.GetString("DATABASE_DSN"))
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		if err := db.AutoMigrate(&models.User{}, &models.Product{}, &models.Module{}, &models.Lesson{}); err != nil {
			log.Fatalf("Failed to migrate database: %v", err)
		}
		userRepo = repositories.NewGORMUserRepository(db)
		productRepo = repositories.NewGORMProductRepository(db)
	}

	// --- Initialize Services ---
	authService := services.NewAuthService(userRepo, jwtSecret, tokenTTL, mqClient)
	productService := services.NewProductService(productRepo, mqClient)

	// --- Initialize Handlers ---
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(authService)
	productHandler := handlers.NewProductHandler(productService)
	courseHandler := handlers.NewCourseHandler(productService)
	bookHandler := handlers.NewBookHandler(productService)
	healthHandler := handlers.NewHealthHandler(db)

	// --- Initialize Fiber App ---
	app := fiber.New()
	app.Use(logger.New())

	healthHandler.RegisterRoutes(app)

	api := app.Group("/api")
	authHandler.RegisterRoutes(api)

	auth := middleware.AuthRequired(authService)
	userHandler.RegisterRoutes(api, auth)

	// Protected routes first: /products/my must match before /products/:id.
	productHandler.RegisterProtectedRoutes(api, auth)
	courseHandler.RegisterProtectedRoutes(api, auth)
	bookHandler.RegisterProtectedRoutes(api, auth)

	productHandler.RegisterRoutes(api)
	courseHandler.RegisterRoutes(api)
	bookHandler.RegisterRoutes(api)

	// --- Start Catalog Event Consumer ---
	if mqClient != nil {
		go func() {
			log.Println("Starting catalog event consumer...")
			messageHandler := func(msg amqp.Delivery) error {
				log.Printf("Received catalog event (Tag: %d): %s", msg.DeliveryTag, string(msg.Body))
				return nil
			}
			if err := mqClient.ConsumeCatalogEvents(messageHandler); err != nil {
				log.Printf("Failed to start catalog event consumer: %v", err)
			}
		}()
	}

	// --- Start HTTP Server ---
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

// seedCatalog populates the in-memory product repository with some initial data.
func seedCatalog(repo repositories.ProductRepository) {
	beginner := "Beginner"
	author := "Satoshi Writer"
	products := []models.Product{
		{
			ID:          "course-1",
			Title:       "Lightning Network Fundamentals",
			Description: "Payment channels from the ground up",
			Price:       21000,
			Currency:    models.CurrencySATS,
			Type:        models.ProductTypeCourse,
			Level:       &beginner,
			CreatorID:   "seed-user",
			IsPublished: true,
		},
		{
			ID:          "book-1",
			Title:       "Running a Node",
			Description: "A practical operator's handbook",
			Price:       15,
			Currency:    models.CurrencyUSD,
			Type:        models.ProductTypeBook,
			Author:      &author,
			CreatorID:   "seed-user",
			IsPublished: true,
		},
	}

	for i := range products {
		// For seeding, we explicitly set IDs to ensure consistency.
		if err := repo.Create(&products[i]); err != nil {
			log.Printf("Error seeding product %s: %v", products[i].Title, err)
		} else {
			log.Printf("Seeded product: %s (ID: %s)", products[i].Title, products[i].ID)
		}
	}
}

// openDatabase opens the configured GORM driver.
func openDatabase(driver, dsn string) (*gorm.DB, error) {
	if driver == "sqlite" {
		return gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	}
	return gorm.Open(postgres.Open(dsn), &gorm.Config{})
}
