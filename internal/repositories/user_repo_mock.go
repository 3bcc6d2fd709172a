package repositories

import (
	"sync"
	"time"

	"academy/internal/models"

	"github.com/google/uuid"
)

// MockUserRepository is an in-memory implementation of UserRepository backing
// the memory database mode.
type MockUserRepository struct {
	users    map[string]models.User
	products ProductRepository // for the restrict check on delete
	mu       sync.RWMutex
}

// NewMockUserRepository creates a new instance of MockUserRepository. The
// product repository is consulted to refuse deleting users that still own
// products; it may be nil when that check is not needed.
func NewMockUserRepository(products ProductRepository) *MockUserRepository {
	return &MockUserRepository{
		users:    make(map[string]models.User),
		products: products,
	}
}

// Create adds a new user.
func (r *MockUserRepository) Create(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	r.users[user.ID] = *user
	return nil
}

// GetByEmail returns an active user by email.
func (r *MockUserRepository) GetByEmail(email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Email == email && !u.DeletedAt.Valid {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

// GetByID returns an active user by ID.
func (r *MockUserRepository) GetByID(id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok || user.DeletedAt.Valid {
		return nil, ErrNotFound
	}
	return &user, nil
}

// Update modifies an existing active user.
func (r *MockUserRepository) Update(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.users[user.ID]
	if !ok || existing.DeletedAt.Valid {
		return ErrNotFound
	}
	user.UpdatedAt = time.Now()
	r.users[user.ID] = *user
	return nil
}

// Delete soft-deletes a user unless they still own products.
func (r *MockUserRepository) Delete(id string) error {
	if r.products != nil {
		creatorID := id
		page, err := r.products.GetAll(FilterParams{
			IncludeUnpublished: true,
			CreatorID:          &creatorID,
			Page:               1,
			PageSize:           1,
		})
		if err != nil {
			return err
		}
		if page.TotalItems > 0 {
			return ErrRestricted
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok || user.DeletedAt.Valid {
		return ErrNotFound
	}
	user.DeletedAt.Time = time.Now()
	user.DeletedAt.Valid = true
	r.users[id] = user
	return nil
}
