package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"academy/internal/models"
	"academy/internal/repositories"
	"academy/pkg/rabbitmq"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles signup, credential verification and session tokens.
type AuthService struct {
	userRepo   repositories.UserRepository
	jwtSecret  []byte
	tokenDurat time.Duration    // Duration for which JWT is valid
	mqClient   *rabbitmq.Client // nil disables event publishing
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, jwtSecret string, tokenTTL time.Duration, mqClient *rabbitmq.Client) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{
		userRepo:   userRepo,
		jwtSecret:  []byte(jwtSecret),
		tokenDurat: tokenTTL,
		mqClient:   mqClient,
	}
}

// Signup registers a new user: uniqueness check, bcrypt hash, persist.
// Returns ErrEmailTaken when an active user already has the email.
func (s *AuthService) Signup(email, password string) (*UserDTO, error) {
	existing, err := s.userRepo.GetByEmail(email)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email %s: %w", email, err)
	}
	if existing != nil {
		log.Printf("Signup attempt with existing email: %s", email)
		return nil, ErrEmailTaken
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:       uuid.New().String(),
		Email:    email,
		Password: string(hashedPassword),
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	log.Printf("New user created with email: %s", email)

	if s.mqClient != nil {
		body, err := json.Marshal(map[string]interface{}{
			"event":  "auth.user.signedup",
			"userID": user.ID,
			"email":  user.Email,
		})
		if err == nil {
			if err := s.mqClient.Publish("", rabbitmq.CatalogQueue, body); err != nil {
				log.Printf("Warning: failed to publish auth.user.signedup event: %v", err)
			}
		}
	}

	return mapToUserDTO(user), nil
}

// ValidateCredentials verifies an email/password pair. Unknown email and
// wrong password fail identically with ErrInvalidCredentials.
func (s *AuthService) ValidateCredentials(email, password string) (*UserDTO, error) {
	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			log.Printf("Login attempt with non-existent email: %s", email)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user %s: %w", email, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		log.Printf("Failed login attempt for user: %s", email)
		return nil, ErrInvalidCredentials
	}

	return mapToUserDTO(user), nil
}

// SignIn validates the credentials then issues a signed token carrying the
// user id and email claims. Credential failures propagate unchanged.
func (s *AuthService) SignIn(email, password string) (*SignInResult, error) {
	user, err := s.ValidateCredentials(email, password)
	if err != nil {
		return nil, err
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"exp":   time.Now().Add(s.tokenDurat).Unix(),
		"iat":   time.Now().Unix(),
		"jti":   uuid.New().String(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &SignInResult{User: *user, Token: tokenString}, nil
}

// GetUser looks a user up by exactly one of id or email. Returns (nil, nil)
// when no active user matches; callers decide whether that is a 404.
func (s *AuthService) GetUser(req GetUserRequest) (*UserDTO, error) {
	var (
		user *models.User
		err  error
	)
	switch {
	case req.ID != "":
		user, err = s.userRepo.GetByID(req.ID)
	case req.Email != "":
		user, err = s.userRepo.GetByEmail(req.Email)
	default:
		return nil, ErrInvalidRequest
	}

	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return mapToUserDTO(user), nil
}

// ValidateToken parses and validates a JWT token, returning the claims if valid.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Validate the alg is what we expect:
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})

	if err != nil {
		log.Printf("Token validation error: %v", err)
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}

func mapToUserDTO(user *models.User) *UserDTO {
	return &UserDTO{
		ID:        user.ID,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}
}
