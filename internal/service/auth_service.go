package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/farai-coder/parklee-backend-official/internal/domain"
	"github.com/farai-coder/parklee-backend-official/internal/repository"
)

var ErrInvalidCredentials = errors.New("email hoặc mật khẩu không đúng")
var ErrUserAlreadyExists = errors.New("email, số điện thoại hoặc biển số đã được đăng ký")
var ErrTokenInvalid = errors.New("token không hợp lệ hoặc đã hết hạn")
var ErrPasswordAlreadySet = fmt.Errorf("%w: người dùng đã đặt mật khẩu", ErrInvalidState)
var ErrAccountDisabled = fmt.Errorf("%w: tài khoản đã bị vô hiệu hóa", ErrForbidden)

type AuthService struct {
	userRepo      repository.UserRepository
	jwtSecret     string
	jwtExpiration time.Duration
}

func NewAuthService(userRepo repository.UserRepository, jwtSecret string, jwtExpiration time.Duration) *AuthService {
	return &AuthService{
		userRepo:      userRepo,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
	}
}

// Register tạo tài khoản mới ở trạng thái pending: người dùng phải đặt
// mật khẩu qua SetPassword rồi mới active.
func (s *AuthService) Register(ctx context.Context, dto domain.CreateUserDTO) (*domain.User, error) {
	existing, err := s.userRepo.FindByEmail(ctx, strings.ToLower(dto.Email))
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lỗi khi kiểm tra người dùng: %w", err)
	}
	if existing != nil {
		return nil, ErrUserAlreadyExists
	}

	role := domain.RoleStudent
	if dto.Role != "" {
		role = domain.Role(dto.Role)
		if !role.Valid() {
			return nil, fmt.Errorf("%w: vai trò %q không hợp lệ", ErrValidation, dto.Role)
		}
	}

	user := &domain.User{
		Name:         dto.Name,
		Surname:      dto.Surname,
		Gender:       dto.Gender,
		Email:        strings.ToLower(dto.Email),
		PhoneNumber:  dto.PhoneNumber,
		LicensePlate: strings.ToUpper(strings.TrimSpace(dto.LicensePlate)),
		Role:         role,
		Status:       domain.UserPending,
	}

	created, err := s.userRepo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			return nil, ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("lỗi khi tạo người dùng: %w", err)
	}
	return created, nil
}

// SetPassword đặt mật khẩu lần đầu và kích hoạt tài khoản pending.
func (s *AuthService) SetPassword(ctx context.Context, dto domain.SetPasswordDTO) (*domain.User, error) {
	user, err := s.userRepo.FindByID(ctx, dto.UserID)
	if err != nil {
		return nil, fmt.Errorf("lỗi khi tìm người dùng: %w", err)
	}
	if user.PasswordHash != "" {
		return nil, ErrPasswordAlreadySet
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(dto.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("lỗi hash mật khẩu: %w", err)
	}

	user.PasswordHash = string(hashed)
	user.Status = domain.UserActive
	updated, err := s.userRepo.Update(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("lỗi khi cập nhật người dùng: %w", err)
	}
	return updated, nil
}

func (s *AuthService) Login(ctx context.Context, dto domain.LoginDTO) (*domain.AuthResponseDTO, error) {
	user, err := s.userRepo.FindByEmail(ctx, strings.ToLower(dto.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lỗi khi tìm người dùng: %w", err)
	}
	if user.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(dto.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if user.Status == domain.UserDisabled {
		return nil, ErrAccountDisabled
	}

	expirationTime := time.Now().Add(s.jwtExpiration)
	claims := jwt.MapClaims{
		"sub":   fmt.Sprintf("%d", user.ID),
		"exp":   expirationTime.Unix(),
		"iat":   time.Now().Unix(),
		"role":  string(user.Role),
		"email": user.Email,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return nil, fmt.Errorf("lỗi tạo token: %w", err)
	}

	return &domain.AuthResponseDTO{
		Token:  tokenString,
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		Status: user.Status,
	}, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, dto domain.ChangePasswordDTO) error {
	user, err := s.userRepo.FindByID(ctx, dto.UserID)
	if err != nil {
		return fmt.Errorf("lỗi khi tìm người dùng: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(dto.OldPassword)); err != nil {
		return ErrInvalidCredentials
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(dto.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("lỗi hash mật khẩu: %w", err)
	}
	user.PasswordHash = string(hashed)
	if _, err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("lỗi khi cập nhật mật khẩu: %w", err)
	}
	return nil
}

func (s *AuthService) GetUserByID(ctx context.Context, id int) (*domain.User, error) {
	return s.userRepo.FindByID(ctx, id)
}

func (s *AuthService) GetAllUsers(ctx context.Context) ([]domain.User, error) {
	return s.userRepo.FindAll(ctx)
}

// ValidateToken dùng cho middleware
func (s *AuthService) ValidateToken(tokenString string) (*jwt.Token, jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("phương thức ký không mong muốn: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenMalformed) {
			return nil, nil, fmt.Errorf("%w: token có định dạng sai", ErrTokenInvalid)
		} else if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, nil, fmt.Errorf("%w: token đã hết hạn", ErrTokenInvalid)
		} else if errors.Is(err, jwt.ErrTokenNotValidYet) {
			return nil, nil, fmt.Errorf("%w: token chưa hợp lệ", ErrTokenInvalid)
		}
		return nil, nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	if !token.Valid {
		return nil, nil, ErrTokenInvalid
	}
	return token, claims, nil
}
