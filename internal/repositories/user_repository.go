package repositories

import "academy/internal/models"

// UserRepository defines the interface for user data access. Soft-deleted
// users are invisible to every lookup.
type UserRepository interface {
	Create(user *models.User) error
	GetByEmail(email string) (*models.User, error)
	GetByID(id string) (*models.User, error)
	Update(user *models.User) error
	// Delete soft-deletes a user. It is rejected with ErrRestricted while the
	// user still has products, so products are never orphaned.
	Delete(id string) error
}
