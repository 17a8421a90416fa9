package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mentornest/backend/internal/models"
	"github.com/mentornest/backend/libs/auth/service"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// UserRepository is the interface that wraps methods for User table data access used by auth
type UserRepository interface {
	// Method Create inserts a new user into the database.
	//
	// "user" parameter is used to create a new user.
	//
	// If some error occurs during user creation, the error will be returned.
	Create(ctx context.Context, user *models.User) error
	// Method GetByEmail retrieves a user by normalized email.
	//
	// "email" parameter is used to retrieve a user by email.
	//
	// If user with such email does not exist, the error will be returned together with "nil" value.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// Method GetByID retrieves a user by ID.
	//
	// "userID" parameter is used to retrieve a user by ID.
	//
	// If user with such ID does not exist, the error will be returned together with "nil" value.
	GetByID(ctx context.Context, userID int) (*models.User, error)
	// Method ExistsByEmail checks if a user with such email exists.
	//
	// "email" parameter is used to check if a user with such email exists.
	//
	// If some error occurs during check, the error will be returned together with "false" value.
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// Method Update updates name, email and role of a user.
	//
	// "user" parameter is used to update a user.
	//
	// If some error occurs during update, the error will be returned.
	Update(ctx context.Context, user *models.User) error
	// Method UpdatePassword replaces the password hash of a user.
	//
	// "userID" parameter is used to identify the user.
	// "passwordHash" parameter is the new bcrypt hash.
	//
	// If some error occurs during update, the error will be returned.
	UpdatePassword(ctx context.Context, userID int, passwordHash string) error
}

// UserTokenRepository is the interface that wraps methods for UserToken table data access
type UserTokenRepository interface {
	// Method Create inserts a new user token into the database.
	//
	// "userToken" parameter is used to create a new user token.
	//
	// If some error occurs during user token creation, the error will be returned.
	Create(ctx context.Context, userToken *models.UserToken) error
	// Method GetByToken retrieves a user token by token string.
	//
	// "token" parameter is used to retrieve a user token by token string.
	//
	// If user token with such token does not exist, the error will be returned together with "nil" value.
	GetByToken(ctx context.Context, token string) (*models.UserToken, error)
	// Method UpdateToken replaces a stored refresh token with a new one.
	//
	// "oldToken" parameter is the token being rotated.
	// "newToken" parameter is the token that replaces it.
	// "userID" parameter must match the owner of the old token.
	//
	// If some error occurs during user token update, the error will be returned.
	UpdateToken(ctx context.Context, oldToken, newToken string, userID int) error
	// Method DeleteByToken deletes a user token by token string.
	//
	// "token" parameter is used to delete a user token by token string.
	//
	// If some error occurs during user token deletion, the error will be returned.
	DeleteByToken(ctx context.Context, token string) error
	// Method DeleteByUserID deletes all refresh tokens of a user.
	//
	// "userID" parameter is used to delete the tokens of that user.
	//
	// If some error occurs during deletion, the error will be returned.
	DeleteByUserID(ctx context.Context, userID int) error
	// Method DeleteExpiredTokens deletes tokens created before expiryTime.
	//
	// "expiryTime" parameter is the oldest creation time that is kept.
	//
	// If some error occurs during deletion, the error will be returned together with "0" value.
	DeleteExpiredTokens(ctx context.Context, expiryTime time.Time) (int, error)
}

// PasswordResetRepository is the interface that wraps methods for PasswordResetToken table data access
type PasswordResetRepository interface {
	// Method Create stores a hashed reset token.
	//
	// "token" parameter is used to create a new reset token.
	//
	// If some error occurs during creation, the error will be returned.
	Create(ctx context.Context, token *models.PasswordResetToken) error
	// Method GetByHash retrieves a reset token by the SHA-256 hash of its value.
	//
	// "tokenHash" parameter is the hex encoded hash.
	//
	// If reset token with such hash does not exist, the error will be returned together with "nil" value.
	GetByHash(ctx context.Context, tokenHash string) (*models.PasswordResetToken, error)
	// Method DeleteByUserID deletes all reset tokens of a user.
	//
	// "userID" parameter is used to delete the tokens of that user.
	//
	// If some error occurs during deletion, the error will be returned.
	DeleteByUserID(ctx context.Context, userID int) error
	// Method DeleteExpired deletes reset tokens expired at now.
	//
	// "now" parameter is the reference time.
	//
	// If some error occurs during deletion, the error will be returned together with "0" value.
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}

// MentorProfileRepository creates the mentor profile of a freshly registered mentor
type MentorProfileRepository interface {
	// Method Create inserts a mentor profile for an existing user.
	//
	// "mentor" parameter is used to create a new mentor profile.
	//
	// If some error occurs during creation, the error will be returned.
	Create(ctx context.Context, mentor *models.Mentor) error
}

// Mailer queues transactional e-mails. Implementations never fail the caller.
type Mailer interface {
	SendWelcome(ctx context.Context, to, name string)
	SendPasswordReset(ctx context.Context, to, name, link string)
	SendPasswordResetConfirmation(ctx context.Context, to, name string)
	SendEnrollment(ctx context.Context, to, name, courseTitle string)
}

// authService implements AuthService
type authService struct {
	userRepo          UserRepository
	userTokenRepo     UserTokenRepository
	passwordResetRepo PasswordResetRepository
	mentorRepo        MentorProfileRepository
	tokenGenerator    *service.TokenGenerator
	mailer            Mailer
	logger            *zap.Logger
	frontendURL       string
	resetExpiry       time.Duration
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo UserRepository,
	userTokenRepo UserTokenRepository,
	passwordResetRepo PasswordResetRepository,
	mentorRepo MentorProfileRepository,
	tokenGenerator *service.TokenGenerator,
	mailer Mailer,
	logger *zap.Logger,
	frontendURL string,
	resetExpiry time.Duration,
) *authService {
	return &authService{
		userRepo:          userRepo,
		userTokenRepo:     userTokenRepo,
		passwordResetRepo: passwordResetRepo,
		mentorRepo:        mentorRepo,
		tokenGenerator:    tokenGenerator,
		mailer:            mailer,
		logger:            logger,
		frontendURL:       strings.TrimRight(frontendURL, "/"),
		resetExpiry:       resetExpiry,
	}
}

// Register creates a new account and signs it in
func (s *authService) Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error) {
	email := normalizeEmail(req.Email)
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("name cannot be empty")
	}

	role := req.Role
	if role == "" {
		role = models.RoleStudent
	}
	if role != models.RoleStudent && role != models.RoleMentor {
		return nil, fmt.Errorf("invalid role")
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("email already exists")
	}

	passwordHash, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		Active:       true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	if role == models.RoleMentor {
		if err := s.mentorRepo.Create(ctx, &models.Mentor{UserID: user.ID}); err != nil {
			return nil, err
		}
	}

	resp, err := s.authResponse(ctx, user)
	if err != nil {
		return nil, err
	}

	s.mailer.SendWelcome(ctx, user.Email, user.Name)
	s.logger.Info("user registered", zap.Int("user_id", user.ID), zap.String("role", string(user.Role)))

	return resp, nil
}

// Login authenticates a user by email and password
func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	if req.Password == "" {
		return nil, fmt.Errorf("password cannot be empty")
	}

	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("invalid credentials")
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("invalid credentials")
	}

	if !user.Active {
		return nil, fmt.Errorf("account is deactivated")
	}

	return s.authResponse(ctx, user)
}

// Refresh rotates a refresh token and issues a new access token
//
// The stored token lookup and the signature check do not depend on each other,
// so they run in parallel.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*models.AuthResponse, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return nil, fmt.Errorf("refresh token is required")
	}

	errorChan := make(chan error, 2)
	userTokenChan := make(chan *models.UserToken, 1) // Buffered to prevent goroutine leak

	// Check if user token exists in database and return it
	go func() {
		userToken, err := s.userTokenRepo.GetByToken(ctx, refreshToken)
		if err != nil {
			if isNotFound(err) {
				errorChan <- fmt.Errorf("invalid or expired refresh token")
			} else {
				errorChan <- fmt.Errorf("failed to get user token by refresh token: %w", err)
			}
			userTokenChan <- nil
			return
		}
		userTokenChan <- userToken
		errorChan <- nil
	}()

	// Validate refresh token
	go func() {
		if err := s.tokenGenerator.ValidateRefreshToken(refreshToken); err != nil {
			errorChan <- fmt.Errorf("invalid or expired refresh token")
			// Delete token if it exists in database
			if err := s.userTokenRepo.DeleteByToken(ctx, refreshToken); err != nil {
				s.logger.Warn("failed to delete invalid refresh token", zap.Error(err))
			}
			return
		}
		errorChan <- nil
	}()

	for range 2 {
		if err := <-errorChan; err != nil {
			return nil, err
		}
	}
	userToken := <-userTokenChan
	if userToken == nil {
		return nil, fmt.Errorf("invalid or expired refresh token")
	}

	user, err := s.userRepo.GetByID(ctx, userToken.UserID)
	if err != nil {
		return nil, err
	}
	if !user.Active {
		return nil, fmt.Errorf("account is deactivated")
	}

	accessToken, newRefreshToken, err := s.tokenGenerator.GenerateTokens(user.ID, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	// Use userToken.UserID so the rotated row stays bound to its owner
	if err := s.userTokenRepo.UpdateToken(ctx, refreshToken, newRefreshToken, userToken.UserID); err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("invalid or expired refresh token")
		}
		return nil, err
	}

	return newAuthResponse(user, accessToken, newRefreshToken), nil
}

// Logout forgets the presented refresh token. Missing tokens are not an error.
func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return nil
	}
	return s.userTokenRepo.DeleteByToken(ctx, refreshToken)
}

// Me returns the public view of the signed in user
func (s *authService) Me(ctx context.Context, userID int) (*models.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := user.ToResponse()
	return &resp, nil
}

// UpdateProfile changes the name and/or password of the signed in user and issues a fresh access token
func (s *authService) UpdateProfile(ctx context.Context, userID int, req *models.UpdateProfileRequest) (*models.ProfileUpdateResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		name := strings.TrimSpace(req.Name)
		if name == "" {
			return nil, fmt.Errorf("name cannot be empty")
		}
		if name != user.Name {
			user.Name = name
			if err := s.userRepo.Update(ctx, user); err != nil {
				return nil, err
			}
		}
	}

	if req.Password != "" {
		if len(req.Password) < 6 {
			return nil, fmt.Errorf("password must be at least 6 characters")
		}
		passwordHash, err := hashPassword(req.Password)
		if err != nil {
			return nil, err
		}
		if err := s.userRepo.UpdatePassword(ctx, user.ID, passwordHash); err != nil {
			return nil, err
		}
	}

	accessToken, err := s.tokenGenerator.GenerateAccessToken(user.ID, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	return &models.ProfileUpdateResponse{
		Message: "profile updated successfully",
		Token:   accessToken,
		User:    user.ToResponse(),
	}, nil
}

// ForgotPassword e-mails a reset link when the account exists.
// Unknown e-mails succeed silently so the endpoint cannot be used to discover accounts.
func (s *authService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return err
	}

	token := uuid.NewString()
	reset := &models.PasswordResetToken{
		UserID:    user.ID,
		TokenHash: hashToken(token),
		ExpiresAt: time.Now().UTC().Add(s.resetExpiry),
	}
	if err := s.passwordResetRepo.Create(ctx, reset); err != nil {
		return err
	}

	link := fmt.Sprintf("%s/reset-password?token=%s", s.frontendURL, url.QueryEscape(token))
	s.mailer.SendPasswordReset(ctx, user.Email, user.Name, link)

	return nil
}

// ResetPassword sets a new password using a reset token and signs the user out everywhere
func (s *authService) ResetPassword(ctx context.Context, req *models.ResetPasswordRequest) error {
	if len(req.Password) < 6 {
		return fmt.Errorf("password must be at least 6 characters")
	}

	reset, err := s.passwordResetRepo.GetByHash(ctx, hashToken(strings.TrimSpace(req.Token)))
	if err != nil {
		if isNotFound(err) {
			return fmt.Errorf("invalid or expired reset token")
		}
		return err
	}
	if reset.Expired(time.Now().UTC()) {
		return fmt.Errorf("invalid or expired reset token")
	}

	user, err := s.userRepo.GetByID(ctx, reset.UserID)
	if err != nil {
		return err
	}

	passwordHash, err := hashPassword(req.Password)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdatePassword(ctx, user.ID, passwordHash); err != nil {
		return err
	}

	if err := s.passwordResetRepo.DeleteByUserID(ctx, user.ID); err != nil {
		return err
	}
	if err := s.userTokenRepo.DeleteByUserID(ctx, user.ID); err != nil {
		return err
	}

	s.mailer.SendPasswordResetConfirmation(ctx, user.Email, user.Name)

	return nil
}

// CleanTokens deletes refresh tokens older than the refresh expiry and expired reset tokens
func (s *authService) CleanTokens(ctx context.Context) (*models.TokenCleanupResult, error) {
	now := time.Now().UTC()

	refreshDeleted, err := s.userTokenRepo.DeleteExpiredTokens(ctx, now.Add(-s.tokenGenerator.RefreshTokenExpiry()))
	if err != nil {
		return nil, err
	}

	resetDeleted, err := s.passwordResetRepo.DeleteExpired(ctx, now)
	if err != nil {
		return nil, err
	}

	s.logger.Info("expired tokens cleaned",
		zap.Int("refresh_tokens", refreshDeleted),
		zap.Int("reset_tokens", resetDeleted),
	)

	return &models.TokenCleanupResult{
		RefreshTokens: refreshDeleted,
		ResetTokens:   resetDeleted,
	}, nil
}

func (s *authService) authResponse(ctx context.Context, user *models.User) (*models.AuthResponse, error) {
	accessToken, refreshToken, err := generateAndSaveTokens(ctx, s.tokenGenerator, s.userTokenRepo, user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	return newAuthResponse(user, accessToken, refreshToken), nil
}

func newAuthResponse(user *models.User, accessToken, refreshToken string) *models.AuthResponse {
	return &models.AuthResponse{
		ID:           user.ID,
		Token:        accessToken,
		RefreshToken: refreshToken,
		Name:         user.Name,
		Email:        user.Email,
		Role:         user.Role,
	}
}

// Below are helpers shared between auth and admin services

// Method that generates and saves access and refresh tokens
func generateAndSaveTokens(ctx context.Context, tokenGenerator *service.TokenGenerator,
	userTokenRepo UserTokenRepository, userID int, role models.Role) (string, string, error) {
	accessToken, refreshToken, err := tokenGenerator.GenerateTokens(userID, string(role))
	if err != nil {
		return "", "", fmt.Errorf("failed to generate tokens: %w", err)
	}

	userToken := &models.UserToken{
		UserID: userID,
		Token:  refreshToken,
	}
	if err := userTokenRepo.Create(ctx, userToken); err != nil {
		return "", "", fmt.Errorf("failed to save refresh token: %w", err)
	}

	return accessToken, refreshToken, nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// hashToken returns the hex SHA-256 of a reset token, only the hash is persisted
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

// isNotFound reports whether a repository error means the row does not exist
func isNotFound(err error) bool {
	return err != nil && strings.Contains(err.Error(), "not found") && !strings.HasPrefix(err.Error(), "failed to")
}
