package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"academy/internal/handlers"
	"academy/internal/middleware"
	"academy/internal/models"
	"academy/internal/repositories"
	"academy/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupApp wires a Fiber app against a fresh in-memory SQLite database, with
// the same route layout as the real server.
func setupApp(t *testing.T) *fiber.App {
	t.Helper()

	viper.SetDefault("JWT_SECRET", "test_jwt_secret")
	viper.AutomaticEnv()
	jwtSecret := viper.GetString("JWT_SECRET")

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Product{}, &models.Module{}, &models.Lesson{}))

	userRepo := repositories.NewGORMUserRepository(db)
	productRepo := repositories.NewGORMProductRepository(db)

	authService := services.NewAuthService(userRepo, jwtSecret, 0, nil)
	productService := services.NewProductService(productRepo, nil) // nil for RabbitMQ client

	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(authService)
	productHandler := handlers.NewProductHandler(productService)
	courseHandler := handlers.NewCourseHandler(productService)
	bookHandler := handlers.NewBookHandler(productService)
	healthHandler := handlers.NewHealthHandler(db)

	app := fiber.New()
	healthHandler.RegisterRoutes(app)

	api := app.Group("/api")
	authHandler.RegisterRoutes(api)

	auth := middleware.AuthRequired(authService)
	userHandler.RegisterRoutes(api, auth)
	productHandler.RegisterProtectedRoutes(api, auth)
	courseHandler.RegisterProtectedRoutes(api, auth)
	bookHandler.RegisterProtectedRoutes(api, auth)
	productHandler.RegisterRoutes(api)
	courseHandler.RegisterRoutes(api)
	bookHandler.RegisterRoutes(api)

	return app
}

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	code := m.Run()
	os.Exit(code)
}

// doJSON fires one JSON request at the app, with an optional bearer token.
func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}, token string) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(jsonBody)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var decoded map[string]interface{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	if len(raw) > 0 {
		// 204 responses have no body to decode.
		_ = json.Unmarshal(raw, &decoded)
	}
	return resp, decoded
}

// signupAndSignin registers a user and returns their id and session token.
func signupAndSignin(t *testing.T, app *fiber.App, email string) (string, string) {
	t.Helper()

	creds := map[string]string{"email": email, "password": "password123"}
	resp, body := doJSON(t, app, http.MethodPost, "/api/auth/signup", creds, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	userID := body["id"].(string)

	resp, body = doJSON(t, app, http.MethodPost, "/api/auth/signin", creds, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token := body["token"].(string)
	require.NotEmpty(t, token)
	return userID, token
}

func TestSignupSigninAndProfile(t *testing.T) {
	app := setupApp(t)

	creds := map[string]string{"email": "alice@example.com", "password": "password123"}
	resp, body := doJSON(t, app, http.MethodPost, "/api/auth/signup", creds, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "alice@example.com", body["email"])
	assert.NotEmpty(t, body["id"])
	// The password hash must never appear in any response.
	_, leaked := body["password"]
	assert.False(t, leaked)

	// Duplicate signup
	resp, body = doJSON(t, app, http.MethodPost, "/api/auth/signup", creds, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Email already in use", body["message"])

	// Short password fails validation
	resp, _ = doJSON(t, app, http.MethodPost, "/api/auth/signup", map[string]string{
		"email": "bob@example.com", "password": "short",
	}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Wrong password
	resp, _ = doJSON(t, app, http.MethodPost, "/api/auth/signin", map[string]string{
		"email": "alice@example.com", "password": "wrongpassword",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Profile round-trip
	resp, body = doJSON(t, app, http.MethodPost, "/api/auth/signin", creds, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token := body["token"].(string)

	resp, body = doJSON(t, app, http.MethodGet, "/api/users/me", nil, token)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "alice@example.com", body["email"])

	// No token
	resp, _ = doJSON(t, app, http.MethodGet, "/api/users/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCourseLifecycle(t *testing.T) {
	app := setupApp(t)

	_, creatorToken := signupAndSignin(t, app, "creator@example.com")
	_, strangerToken := signupAndSignin(t, app, "stranger@example.com")

	// Create a draft course
	resp, body := doJSON(t, app, http.MethodPost, "/api/courses", map[string]interface{}{
		"title":       "Lightning Fundamentals",
		"description": "Payment channels from scratch",
		"price":       21000,
	}, creatorToken)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	courseID := body["id"].(string)
	assert.Equal(t, false, body["is_published"])
	assert.Equal(t, "SATS", body["currency"])
	assert.Equal(t, "Beginner", body["level"])

	// Drafts are invisible on the public listing
	resp, body = doJSON(t, app, http.MethodGet, "/api/courses", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 0, body["total_items"])

	// ...but the creator sees them on /products/my
	resp, body = doJSON(t, app, http.MethodGet, "/api/products/my", nil, creatorToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, body["total_items"])

	// Someone else's token cannot update
	hijack := map[string]interface{}{"title": "Hijacked"}
	resp, _ = doJSON(t, app, http.MethodPut, "/api/courses/"+courseID, hijack, strangerToken)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Partial update by the creator: publish without touching anything else
	resp, body = doJSON(t, app, http.MethodPut, "/api/courses/"+courseID, map[string]interface{}{
		"is_published": true,
	}, creatorToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["is_published"])
	assert.Equal(t, "Lightning Fundamentals", body["title"])

	// Invalid currency aborts the update
	resp, body = doJSON(t, app, http.MethodPut, "/api/courses/"+courseID, map[string]interface{}{
		"currency": "EUR",
	}, creatorToken)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_CURRENCY", body["errorCode"])

	// Now visible publicly
	resp, body = doJSON(t, app, http.MethodGet, "/api/courses/"+courseID, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "SATS", body["currency"])

	// Delete: stranger forbidden, creator allowed, then gone
	resp, _ = doJSON(t, app, http.MethodDelete, "/api/courses/"+courseID, nil, strangerToken)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodDelete, "/api/courses/"+courseID, nil, creatorToken)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodGet, "/api/courses/"+courseID, nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodDelete, "/api/courses/"+courseID, nil, creatorToken)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestBookPaginationAndPublish(t *testing.T) {
	app := setupApp(t)

	_, token := signupAndSignin(t, app, "writer@example.com")

	for i := 0; i < 15; i++ {
		resp, _ := doJSON(t, app, http.MethodPost, "/api/books", map[string]interface{}{
			"title":        fmt.Sprintf("Book %02d", i),
			"description":  "A test book",
			"price":        10,
			"currency":     "USD",
			"author":       "Jane Writer",
			"is_published": true,
		}, token)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp, body := doJSON(t, app, http.MethodGet, "/api/books?pageSize=10", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 15, body["total_items"])
	assert.EqualValues(t, 2, body["total_pages"])
	assert.Len(t, body["items"], 10)

	resp, body = doJSON(t, app, http.MethodGet, "/api/books?pageSize=10&page=2", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["items"], 5)
	firstOnPage := body["items"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "Book 10", firstOnPage["title"])

	// A draft book goes live through the publish endpoint
	resp, body = doJSON(t, app, http.MethodPost, "/api/books", map[string]interface{}{
		"title":        "Unreleased",
		"description":  "A draft",
		"price":        5,
		"currency":     "USD",
		"author":       "Jane Writer",
		"download_url": "https://cdn.example.com/unreleased.pdf",
	}, token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	draftID := body["id"].(string)
	assert.Equal(t, false, body["is_published"])
	// The paid asset URL never leaves the server.
	_, leaked := body["download_url"]
	assert.False(t, leaked)

	resp, body = doJSON(t, app, http.MethodPost, "/api/books/"+draftID+"/publish", nil, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["is_published"])

	resp, body = doJSON(t, app, http.MethodGet, "/api/books", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 16, body["total_items"])

	// Rejected currency on create
	resp, body = doJSON(t, app, http.MethodPost, "/api/books", map[string]interface{}{
		"title":       "Bad Money",
		"description": "Wrong currency",
		"price":       1,
		"currency":    "DOGE",
		"author":      "Jane Writer",
	}, token)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_CURRENCY", body["errorCode"])
}

func TestSearchAcrossProductTypes(t *testing.T) {
	app := setupApp(t)

	_, token := signupAndSignin(t, app, "mixed@example.com")

	resp, _ := doJSON(t, app, http.MethodPost, "/api/courses", map[string]interface{}{
		"title": "Lightning Deep Dive", "description": "channels", "price": 1, "is_published": true,
	}, token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp, _ = doJSON(t, app, http.MethodPost, "/api/books", map[string]interface{}{
		"title": "Cooking at Home", "description": "lightning-fast recipes", "price": 1,
		"author": "A Chef", "is_published": true,
	}, token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// Search matches titles and descriptions across both types.
	resp, body := doJSON(t, app, http.MethodGet, "/api/products?searchTerm=lightning", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 2, body["total_items"])

	// Type-scoped listings stay disjoint.
	resp, body = doJSON(t, app, http.MethodGet, "/api/courses?searchTerm=lightning", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, body["total_items"])
}

func TestHealthEndpoint(t *testing.T) {
	app := setupApp(t)

	resp, body := doJSON(t, app, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", body["status"])
}
