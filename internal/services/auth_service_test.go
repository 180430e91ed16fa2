package services_test

import (
	"fmt"
	"testing"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"zapateria/internal/apperrors"
	"zapateria/internal/models"
	"zapateria/internal/services"
)

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByUsername(username string) (*models.User, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(id string) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

const testSecret = "unit-test-signing-secret-32-chars!!"

func TestAuthService_RegisterUser(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := services.NewAuthService(mockRepo, testSecret)

	user := &models.User{
		Username: "newuser",
		Email:    "new@example.com",
		Password: "plaintext",
		Role:     "product_admin",
	}

	mockRepo.On("GetByUsername", "newuser").Return(nil, fmt.Errorf("user newuser not found")).Once()
	mockRepo.On("GetByEmail", "new@example.com").Return(nil, fmt.Errorf("user new@example.com not found")).Once()
	mockRepo.On("Create", user).Return(nil).Once()

	err := service.RegisterUser(user)
	assert.NoError(t, err)
	// the stored password must be a bcrypt hash, not the plaintext
	assert.NotEqual(t, "plaintext", user.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("plaintext")))
	mockRepo.AssertExpectations(t)
}

func TestAuthService_RegisterUserDuplicateUsername(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := services.NewAuthService(mockRepo, testSecret)

	existing := &models.User{Username: "taken"}
	mockRepo.On("GetByUsername", "taken").Return(existing, nil).Once()

	err := service.RegisterUser(&models.User{Username: "taken", Email: "x@example.com", Password: "pw123456"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "already taken")
	mockRepo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestAuthService_LoginAndValidateToken(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := services.NewAuthService(mockRepo, testSecret)

	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	assert.NoError(t, err)

	user := &models.User{
		ID:       "user-1",
		Username: "shopkeeper",
		Email:    "keeper@example.com",
		Password: string(hashed),
		Role:     "product_admin",
	}

	mockRepo.On("GetByUsername", "shopkeeper").Return(user, nil).Once()

	token, err := service.LoginUser("shopkeeper", "password123")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := service.ValidateToken(token)
	assert.NoError(t, err)
	assert.Equal(t, "user-1", claims["sub"])
	assert.Equal(t, "keeper@example.com", claims["email"])
	assert.Equal(t, "product_admin", claims["role"])
	mockRepo.AssertExpectations(t)
}

func TestAuthService_LoginWrongPassword(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := services.NewAuthService(mockRepo, testSecret)

	hashed, _ := bcrypt.GenerateFromPassword([]byte("right"), bcrypt.DefaultCost)
	user := &models.User{Username: "shopkeeper", Password: string(hashed)}
	mockRepo.On("GetByUsername", "shopkeeper").Return(user, nil).Once()

	token, err := service.LoginUser("shopkeeper", "wrong")
	assert.Error(t, err)
	assert.Empty(t, token)
	assert.Contains(t, err.Error(), "invalid credentials")
}

func TestAuthService_ValidateTokenWrongSecret(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := services.NewAuthService(mockRepo, testSecret)

	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "intruder"})
	forgedString, err := forged.SignedString([]byte("another-secret-entirely-32-chars!"))
	assert.NoError(t, err)

	claims, err := service.ValidateToken(forgedString)
	assert.Error(t, err)
	assert.Nil(t, claims)
}

func TestIdentityFromClaims(t *testing.T) {
	tests := []struct {
		name   string
		claims jwt.MapClaims
		wantID string
	}{
		{
			name:   "sub wins",
			claims: jwt.MapClaims{"sub": "s-1", "id": "i-1", "email": "e@example.com"},
			wantID: "s-1",
		},
		{
			name:   "id is the second choice",
			claims: jwt.MapClaims{"id": "i-1", "email": "e@example.com"},
			wantID: "i-1",
		},
		{
			name:   "email is the last resort",
			claims: jwt.MapClaims{"email": "e@example.com"},
			wantID: "e@example.com",
		},
		{
			name:   "empty sub falls through",
			claims: jwt.MapClaims{"sub": "", "id": "i-1"},
			wantID: "i-1",
		},
		{
			name:   "no identity claims",
			claims: jwt.MapClaims{"exp": float64(9999999999)},
			wantID: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			identity := services.IdentityFromClaims(tt.claims)
			assert.Equal(t, tt.wantID, identity.ID)
		})
	}
}

func TestAssertRoles(t *testing.T) {
	// no identity at all
	err := services.AssertRoles(nil, "product_admin")
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)

	// identity without a role
	err = services.AssertRoles(&models.Identity{ID: "u-1"}, "product_admin")
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	// identity with the wrong role
	err = services.AssertRoles(&models.Identity{ID: "u-1", Role: "viewer"}, "product_admin")
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	// identity with an allowed role
	err = services.AssertRoles(&models.Identity{ID: "u-1", Role: "product_admin"}, "product_admin")
	assert.NoError(t, err)

	// multiple allowed roles
	err = services.AssertRoles(&models.Identity{ID: "u-1", Role: "editor"}, "product_admin", "editor")
	assert.NoError(t, err)
}
