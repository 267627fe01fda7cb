package services

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/krishi360/krishi/app/errorx"
	"github.com/krishi360/krishi/app/models"
	"github.com/krishi360/krishi/app/repositories"
	"github.com/krishi360/krishi/pkg/auth"
	"github.com/krishi360/krishi/pkg/logger"
)

type AuthService struct {
	users *repositories.UserRepository
}

func NewAuthService(db *gorm.DB) *AuthService {
	return &AuthService{users: repositories.NewUserRepository(db)}
}

type RegisterInput struct {
	Username  string `json:"username"   validate:"required,min=3,max=80"`
	Email     string `json:"email"      validate:"required,email,max=120"`
	Password  string `json:"password"   validate:"required,min=8,max=72"`
	FirstName string `json:"first_name" validate:"required,max=50"`
	LastName  string `json:"last_name"  validate:"required,max=50"`
	Phone     string `json:"phone"      validate:"max=20"`
	Address   string `json:"address"`
	Role      string `json:"role"       validate:"required,oneof=farmer buyer consultant"`
}

// Register creates an active account. Admins cannot self-register.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (models.User, error) {
	if in.Role == models.RoleAdmin || !models.ValidRole(in.Role) {
		return models.User{}, errorx.Field("role", "must be one of: farmer, buyer, consultant")
	}

	email := strings.ToLower(trim(in.Email))
	username := trim(in.Username)

	userTaken, emailTaken, err := s.users.Taken(ctx, username, email)
	if err != nil {
		return models.User{}, err
	}
	if userTaken || emailTaken {
		verr := &errorx.ValidationError{Message: "account already exists", Fields: map[string]string{}}
		if userTaken {
			verr.Fields["username"] = "is already taken"
		}
		if emailTaken {
			verr.Fields["email"] = "is already registered"
		}
		return models.User{}, verr
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return models.User{}, err
	}

	user := models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		FirstName:    trim(in.FirstName),
		LastName:     trim(in.LastName),
		Phone:        trim(in.Phone),
		Address:      trim(in.Address),
		Role:         in.Role,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, &user); err != nil {
		return models.User{}, err
	}
	return user, nil
}

// ErrBadCredentials is returned for unknown emails and wrong passwords alike.
var ErrBadCredentials = &errorx.ValidationError{Message: "invalid email or password"}

// Login checks the password and issues an access token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, models.User, error) {
	user, err := s.users.FindByEmail(ctx, strings.ToLower(trim(email)))
	if errorx.IsNotFound(err) {
		return "", models.User{}, ErrBadCredentials
	}
	if err != nil {
		return "", models.User{}, err
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return "", models.User{}, ErrBadCredentials
	}
	if !user.IsActive {
		return "", models.User{}, errorx.InvalidState("user", "inactive", "account is deactivated")
	}

	token, err := auth.GenerateToken(user.ID, user.Role)
	return token, user, err
}

func (s *AuthService) Profile(ctx context.Context, userID uint) (models.User, error) {
	return s.users.FindByID(ctx, userID)
}

type ProfileInput struct {
	FirstName *string `json:"first_name" validate:"omitempty,min=1,max=50"`
	LastName  *string `json:"last_name"  validate:"omitempty,min=1,max=50"`
	Phone     *string `json:"phone"      validate:"omitempty,max=20"`
	Address   *string `json:"address"`
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID uint, in ProfileInput) (models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return user, err
	}

	if in.FirstName != nil {
		user.FirstName = trim(*in.FirstName)
	}
	if in.LastName != nil {
		user.LastName = trim(*in.LastName)
	}
	if in.Phone != nil {
		user.Phone = trim(*in.Phone)
	}
	if in.Address != nil {
		user.Address = trim(*in.Address)
	}
	return user, s.users.Save(ctx, &user)
}

type PasswordInput struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password"     validate:"required,min=8,max=72"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=NewPassword"`
}

// ChangePassword replaces the password after checking the current one.
// Tokens issued earlier stay valid until they expire.
func (s *AuthService) ChangePassword(ctx context.Context, userID uint, in PasswordInput) error {
	if in.NewPassword != in.ConfirmPassword {
		return errorx.Field("confirm_password", "does not match the new password")
	}
	if len(in.NewPassword) < 8 {
		return errorx.Field("new_password", "must be at least 8 characters")
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(user.PasswordHash, in.CurrentPassword) {
		return errorx.Field("current_password", "is incorrect")
	}

	hash, err := auth.HashPassword(in.NewPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	if err := s.users.Save(ctx, &user); err != nil {
		return err
	}
	logger.WithCtx(ctx).Info("password changed", "user_id", userID)
	return nil
}
