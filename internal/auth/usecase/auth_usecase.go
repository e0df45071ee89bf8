package usecase

import (
	"errors"

	authdomain "mimir-backend/internal/auth/domain"
	"mimir-backend/internal/auth/repository"
	"mimir-backend/pkg/config"

	"github.com/golang-jwt/jwt/v5"
)

// AuthUsecase resolves the calling user. Bearer tokens are the normal
// path; a dev identity header (or configured default) stands in when no
// identity provider is wired up locally.
type AuthUsecase interface {
	ValidateToken(tokenString string) (*authdomain.User, error)
	ResolveDevUser(email string) (*authdomain.User, error)
	DefaultDevEmail() string
}

// authUsecase implements AuthUsecase interface
type authUsecase struct {
	userRepo repository.UserRepository
	config   *config.Config
}

// NewAuthUsecase creates a new instance of authUsecase
func NewAuthUsecase(userRepo repository.UserRepository, cfg *config.Config) AuthUsecase {
	return &authUsecase{
		userRepo: userRepo,
		config:   cfg,
	}
}

func (u *authUsecase) ValidateToken(tokenString string) (*authdomain.User, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(u.config.JWTSecret), nil
	})

	if err != nil || !token.Valid {
		return nil, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}

	userID, ok := claims["user_id"].(string)
	if !ok {
		return nil, errors.New("invalid token claims")
	}

	user, err := u.userRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}

	if user == nil {
		return nil, errors.New("user not found")
	}

	return user, nil
}

func (u *authUsecase) ResolveDevUser(email string) (*authdomain.User, error) {
	if email == "" {
		return nil, errors.New("empty dev user identity")
	}
	return u.userRepo.FindOrCreate(email)
}

func (u *authUsecase) DefaultDevEmail() string {
	return u.config.DevUserEmail
}
