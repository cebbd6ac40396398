package services

import (
	"fmt"

	"chat-engine/auth"
	"chat-engine/errors"
	"chat-engine/repositories"
)

type IAuthService interface {
	Signup(username, email, password string) (string, error)
	Login(email, password string) (Session, error)
}

// Session is what a successful login hands back to the HTTP layer.
type Session struct {
	Token    string
	Username string
}

type AuthService struct {
	userRepository repositories.IUserRepository
	issuer         *auth.TokenIssuer
}

func NewAuthService(repo repositories.IUserRepository, issuer *auth.TokenIssuer) IAuthService {
	return &AuthService{userRepository: repo, issuer: issuer}
}

// Signup validates, hashes, and persists a new account, returning its id.
func (s *AuthService) Signup(username, email, password string) (string, error) {
	valReq := auth.SignupRequest{
		Username: username,
		Email:    email,
		Password: password,
	}

	// 1. Validate business rules (email format, password complexity)
	// We check this before any expensive cryptographic operation.
	if err := auth.ValidateSignup(valReq); err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrInvalidPassword, err)
	}

	// 2. Hash the password using Argon2id
	// Done in the service layer to keep the repository unaware of plain passwords.
	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("hashing failed: %w", err)
	}

	// 3. Persist the user with the generated hash
	// Propagates ErrUsernameTaken / ErrEmailTaken as-is.
	return s.userRepository.CreateUser(username, email, hashedPassword)
}

// Login verifies the credentials and issues a session token. Every
// failure collapses into ErrInvalidCredentials to prevent user
// enumeration.
func (s *AuthService) Login(email, password string) (Session, error) {
	user, err := s.userRepository.GetUserByEmail(email)
	if err != nil {
		return Session{}, errors.ErrInvalidCredentials
	}

	match, err := auth.ComparePassword(password, user.PasswordHash)
	if err != nil || !match {
		return Session{}, errors.ErrInvalidCredentials
	}

	token, err := s.issuer.Issue(user.ID, user.Username, user.Roles)
	if err != nil {
		return Session{}, errors.ErrTokenGeneration
	}

	return Session{Token: token, Username: user.Username}, nil
}
