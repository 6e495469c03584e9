package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/vswdatasolutions/Shuarya-Dhaba/internal/apperrors"
	"github.com/vswdatasolutions/Shuarya-Dhaba/internal/models"
	"github.com/vswdatasolutions/Shuarya-Dhaba/internal/redis"
)

const (
	defaultGuestName  = "Guest User"
	minPasswordLength = 4
	otpRequestTTL     = 5 * time.Minute
)

var mobilePattern = regexp.MustCompile(`^[0-9]{10}$`)

type UserService interface {
	RequestOTP(ctx context.Context, mobile string) error
	VerifyOTP(ctx context.Context, mobile, otp, name string) (Session, error)
	StaffLogin(ctx context.Context, role models.Role, password string) (Session, error)
	CurrentUser(ctx context.Context, sessionID string) (models.User, error)
	Logout(ctx context.Context, sessionID string) error
}

type Session struct {
	ID   string      `json:"sessionId"`
	User models.User `json:"user"`
}

// Credentials are the demo secrets accepted at login.
type Credentials struct {
	OTP       string
	Passwords map[models.Role]string
}

var staffNames = map[models.Role]string{
	models.RoleAdmin:    "Owner",
	models.RoleKitchen:  "Head Chef",
	models.RoleDelivery: "Rider",
}

type userService struct {
	sessions SessionStore
	temp     TempStore
	carts    CartService
	otp      string
	hashes   map[models.Role][]byte
	ttl      time.Duration
	logger   *slog.Logger
}

func NewUserService(sessions SessionStore, temp TempStore, carts CartService, creds Credentials, ttl time.Duration, logger *slog.Logger) (UserService, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &userService{
		sessions: sessions,
		temp:     temp,
		carts:    carts,
		otp:      creds.OTP,
		hashes:   make(map[models.Role][]byte, len(creds.Passwords)),
		ttl:      ttl,
		logger:   logger,
	}
	for role, password := range creds.Passwords {
		if !role.IsStaff() {
			return nil, fmt.Errorf("password configured for non-staff role %s", role)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash %s password: %w", role, err)
		}
		s.hashes[role] = hash
	}
	return s, nil
}

func otpKey(mobile string) string { return "otp:" + mobile }

// RequestOTP records that an OTP was sent to mobile. No message is actually
// delivered; the configured demo OTP is always the valid one.
func (s *userService) RequestOTP(ctx context.Context, mobile string) error {
	mobile = strings.TrimSpace(mobile)
	if !mobilePattern.MatchString(mobile) {
		return apperrors.Validation("mobile number must be 10 digits")
	}
	return s.temp.SetTempData(ctx, otpKey(mobile), time.Now().Unix(), otpRequestTTL)
}

func (s *userService) VerifyOTP(ctx context.Context, mobile, otp, name string) (Session, error) {
	mobile = strings.TrimSpace(mobile)
	if !mobilePattern.MatchString(mobile) {
		return Session{}, apperrors.Validation("mobile number must be 10 digits")
	}
	var requested int64
	if err := s.temp.GetTempData(ctx, otpKey(mobile), &requested); err != nil {
		if errors.Is(err, redis.ErrNotFound) {
			return Session{}, apperrors.Validation("request an OTP first")
		}
		return Session{}, err
	}
	if strings.TrimSpace(otp) != s.otp {
		return Session{}, apperrors.Validation("invalid OTP")
	}
	if err := s.temp.DeleteTempData(ctx, otpKey(mobile)); err != nil {
		return Session{}, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = defaultGuestName
	}
	return s.open(ctx, models.User{Name: name, Role: models.RoleCustomer, Mobile: mobile})
}

func (s *userService) StaffLogin(ctx context.Context, role models.Role, password string) (Session, error) {
	hash, ok := s.hashes[role]
	if !ok || !role.IsStaff() {
		return Session{}, apperrors.Validation("unknown staff role " + string(role))
	}
	if len(password) < minPasswordLength {
		return Session{}, apperrors.Validation("password must be at least 4 characters")
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		return Session{}, apperrors.Validation("invalid credentials")
	}
	return s.open(ctx, models.User{Name: staffNames[role], Role: role})
}

func (s *userService) open(ctx context.Context, user models.User) (Session, error) {
	sessionID, err := uuid.NewV7()
	if err != nil {
		return Session{}, fmt.Errorf("generate session id: %w", err)
	}
	userID, err := uuid.NewRandom()
	if err != nil {
		return Session{}, fmt.Errorf("generate user id: %w", err)
	}
	user.ID = userID.String()
	if err := s.sessions.SetSession(ctx, sessionID.String(), user, s.ttl); err != nil {
		return Session{}, err
	}
	return Session{ID: sessionID.String(), User: user}, nil
}

// CurrentUser resolves the session and extends its lifetime. A corrupt
// stored session has already been removed when ErrNoSession is returned.
func (s *userService) CurrentUser(ctx context.Context, sessionID string) (models.User, error) {
	if sessionID == "" {
		return models.User{}, apperrors.ErrNoSession
	}
	user, err := s.sessions.GetSession(ctx, sessionID)
	switch {
	case errors.Is(err, redis.ErrNotFound):
		return models.User{}, apperrors.ErrNoSession
	case errors.Is(err, redis.ErrCorrupt):
		s.logger.Warn("discarded corrupt session", "session_id", sessionID)
		s.carts.Drop(sessionID)
		return models.User{}, apperrors.ErrNoSession
	case err != nil:
		return models.User{}, err
	}
	if err := s.sessions.TouchSession(ctx, sessionID, s.ttl); err != nil {
		s.logger.Warn("failed to extend session", "session_id", sessionID, "error", err)
	}
	return user, nil
}

// Logout ends the session and throws away its cart.
func (s *userService) Logout(ctx context.Context, sessionID string) error {
	s.carts.Drop(sessionID)
	return s.sessions.DeleteSession(ctx, sessionID)
}
