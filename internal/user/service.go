package user

import (
	"errors"
	"fmt"

	"github.com/SlpAus/media-diary-backend/pkg/token"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// 认证与资料操作的错误分类，由handler层翻译为HTTP状态码。
var (
	ErrMissingFields      = errors.New("所有字段均为必填")
	ErrDuplicateUser      = errors.New("邮箱或用户名已被占用")
	ErrInvalidCredentials = errors.New("凭证无效")
)

const bcryptCost = 10

// ProfileInput 是PUT /api/profile的可变字段集合。
type ProfileInput struct {
	Bio            *string `json:"bio"`
	FavoriteMovies *string `json:"favorite_movies"`
	FavoriteShows  *string `json:"favorite_shows"`
	FavoriteBooks  *string `json:"favorite_books"`
	FavoriteGenres *string `json:"favorite_genres"`
}

// Service 实现注册、登录和个人资料的业务逻辑。
type Service struct {
	repo  *Repository
	maker *token.Maker
}

// NewService 创建user服务。
func NewService(repo *Repository, maker *token.Maker) *Service {
	return &Service{repo: repo, maker: maker}
}

// Register 创建一个新用户并直接签发登录令牌。
func (s *Service) Register(email, password, username string) (string, *User, error) {
	if email == "" || password == "" || username == "" {
		return "", nil, ErrMissingFields
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", nil, fmt.Errorf("无法计算密码哈希: %w", err)
	}

	u := &User{Email: email, Password: string(hash), Username: username}
	if err := s.repo.Create(u); err != nil {
		return "", nil, err
	}

	t, err := s.maker.Generate(u.ID, u.Email, u.Username)
	if err != nil {
		return "", nil, err
	}
	return t, u, nil
}

// Login 校验邮箱和密码并签发令牌。
// 用户不存在与密码错误返回同一个错误，避免泄露账户是否存在。
func (s *Service) Login(email, password string) (string, *User, error) {
	u, err := s.repo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	t, err := s.maker.Generate(u.ID, u.Email, u.Username)
	if err != nil {
		return "", nil, err
	}
	return t, u, nil
}

// Profile 返回用户的完整个人资料。
func (s *Service) Profile(id uint) (*User, error) {
	return s.repo.FindByID(id)
}

// UpdateProfile 整体替换个人资料字段。
func (s *Service) UpdateProfile(id uint, in ProfileInput) error {
	return s.repo.UpdateProfile(id, in)
}

// SetProfilePicture 记录新头像的访问路径。
func (s *Service) SetProfilePicture(id uint, pictureURL string) error {
	return s.repo.UpdateProfilePicture(id, pictureURL)
}
