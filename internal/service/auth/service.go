package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/evbs/battery-swap-backend/internal/domain"
	"github.com/evbs/battery-swap-backend/internal/ports"
)

const tokenTTL = 24 * time.Hour

// Service issues and validates HS256 access tokens.
type Service struct {
	userRepo  ports.UserRepository
	jwtSecret []byte
	now       func() time.Time
	log       *zap.Logger
}

func NewService(userRepo ports.UserRepository, jwtSecret string, now func() time.Time, log *zap.Logger) ports.AuthService {
	if now == nil {
		now = time.Now
	}
	return &Service{
		userRepo:  userRepo,
		jwtSecret: []byte(jwtSecret),
		now:       now,
		log:       log,
	}
}

func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	// Same answer for unknown email and wrong password.
	if user == nil {
		return "", errors.New("invalid credentials")
	}
	if user.Status == domain.UserStatusBlocked {
		return "", errors.New("account is blocked")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", errors.New("invalid credentials")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  user.ID,
		"role": string(user.Role),
		"exp":  s.now().Add(tokenTTL).Unix(),
		"iat":  s.now().Unix(),
	})
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", err
	}

	s.log.Info("User logged in", zap.Int64("user_id", user.ID))
	return signed, nil
}

func (s *Service) Register(ctx context.Context, user *domain.User) error {
	existing, err := s.userRepo.FindByEmail(ctx, user.Email)
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("%w: email %s already registered", domain.ErrConflict, user.Email)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.Password = string(hashed)
	if user.Role == "" {
		user.Role = domain.UserRoleDriver
	}
	user.Status = domain.UserStatusActive
	user.CreatedAt = s.now()
	user.UpdatedAt = s.now()

	if err := s.userRepo.Save(ctx, user); err != nil {
		return err
	}

	s.log.Info("User registered",
		zap.Int64("user_id", user.ID),
		zap.String("role", string(user.Role)),
	)
	return nil
}

func (s *Service) ValidateToken(ctx context.Context, tokenStr string) (*domain.User, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}

	// JSON numbers decode as float64.
	sub, ok := claims["sub"].(float64)
	if !ok {
		return nil, errors.New("invalid subject in token")
	}

	user, err := s.userRepo.FindByID(ctx, int64(sub))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.New("user not found")
	}
	if user.Status == domain.UserStatusBlocked {
		return nil, errors.New("account is blocked")
	}
	return user, nil
}
