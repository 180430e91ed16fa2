package repositories

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"zapateria/internal/models"
)

// InMemoryUserRepository is a map-backed implementation of UserRepository,
// used when no database is configured.
type InMemoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]models.User
}

// NewInMemoryUserRepository creates a new instance of InMemoryUserRepository.
func NewInMemoryUserRepository() *InMemoryUserRepository {
	return &InMemoryUserRepository{
		users: make(map[string]models.User),
	}
}

// Create adds a new user, assigning a UUID when none is set.
func (r *InMemoryUserRepository) Create(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	r.users[user.ID] = *user
	return nil
}

// GetByUsername retrieves a user by their username.
func (r *InMemoryUserRepository) GetByUsername(username string) (*models.User, error) {
	return r.getBy(func(u models.User) bool { return u.Username == username }, username)
}

// GetByEmail retrieves a user by their email.
func (r *InMemoryUserRepository) GetByEmail(email string) (*models.User, error) {
	return r.getBy(func(u models.User) bool { return u.Email == email }, email)
}

// GetByID retrieves a user by their ID.
func (r *InMemoryUserRepository) GetByID(id string) (*models.User, error) {
	return r.getBy(func(u models.User) bool { return u.ID == id }, id)
}

func (r *InMemoryUserRepository) getBy(match func(models.User) bool, arg string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if match(u) {
			copied := u
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("user %s not found", arg)
}
