package service

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/atelierhq/storefront_api/internal/models"
	"github.com/atelierhq/storefront_api/internal/utils"
)

// AdminStore persists admin accounts.
type AdminStore interface {
	GetByEmail(email string) (*models.AdminUser, error)
	Create(user *models.AdminUser) error
	TouchLastLogin(id int) error
}

type AdminAuthService struct {
	adminRepo AdminStore
}

func NewAdminAuthService(adminRepo AdminStore) *AdminAuthService {
	return &AdminAuthService{adminRepo: adminRepo}
}

// LoginResponse is returned to the admin panel after a successful login.
type LoginResponse struct {
	Token string            `json:"token"`
	User  *models.AdminUser `json:"user"`
}

func (s *AdminAuthService) Login(email, password string) (*LoginResponse, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.adminRepo.GetByEmail(email)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Error().Err(err).Str("email", email).Msg("Failed to get admin by email")
			return nil, err
		}
		log.Warn().Str("email", email).Msg("Login for unknown admin")
		return nil, utils.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		log.Warn().Int("user_id", user.ID).Msg("Password verification failed")
		return nil, utils.ErrInvalidCredentials
	}

	if !user.IsActive {
		log.Warn().Int("user_id", user.ID).Msg("Account is inactive")
		return nil, utils.ErrAccountInactive
	}

	token, err := utils.GenerateJWT(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	if err := s.adminRepo.TouchLastLogin(user.ID); err != nil {
		log.Warn().Err(err).Int("user_id", user.ID).Msg("Failed to record last login")
	}

	log.Info().Int("user_id", user.ID).Msg("Login successful")
	return &LoginResponse{Token: token, User: user}, nil
}

func (s *AdminAuthService) CreateAdmin(email, password, name string) (*models.AdminUser, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.AdminUser{
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: string(hashedPassword),
		Name:         name,
		IsActive:     true,
	}
	if err := s.adminRepo.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}

// EnsureAdmin creates the bootstrap admin account unless one with the same
// email already exists. It reports whether an account was created.
func (s *AdminAuthService) EnsureAdmin(email, password, name string) (bool, error) {
	_, err := s.adminRepo.GetByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return false, err
	}
	if _, err := s.CreateAdmin(email, password, name); err != nil {
		return false, err
	}
	log.Info().Str("email", email).Msg("Bootstrap admin created")
	return true, nil
}
