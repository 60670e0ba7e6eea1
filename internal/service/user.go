package service

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/eventbuddy/backend/internal/model"
	"github.com/google/uuid"
)

// ProfileStore is the persistence collaborator for user profile operations.
type ProfileStore interface {
	UpdateProfile(ctx context.Context, email, name string) (*model.User, error)
	UpdateAvatar(ctx context.Context, email, avatarURL string) error
	ListUsers(ctx context.Context) ([]model.User, error)
	DeleteUser(ctx context.Context, email string) error
}

type UserService struct {
	store      ProfileStore
	uploadsDir string
	baseURL    string
}

func NewUserService(store ProfileStore, uploadsDir, baseURL string) *UserService {
	return &UserService{
		store:      store,
		uploadsDir: uploadsDir,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

func (s *UserService) UpdateProfile(ctx context.Context, user *model.User, req model.UpdateUserRequest) (*model.User, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name", ErrInvalidInput)
	}
	return s.store.UpdateProfile(ctx, user.Email, name)
}

func (s *UserService) ListUsers(ctx context.Context) ([]model.UserDto, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	dtos := make([]model.UserDto, 0, len(users))
	for i := range users {
		dtos = append(dtos, model.NewUserDto(&users[i]))
	}
	return dtos, nil
}

func (s *UserService) DeleteUser(ctx context.Context, user *model.User) error {
	return s.store.DeleteUser(ctx, user.Email)
}

var allowedAvatarExt = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
}

// UploadAvatar stores the file under the uploads dir and records its public
// URL on the user.
func (s *UserService) UploadAvatar(ctx context.Context, user *model.User, file *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedAvatarExt[ext] {
		return "", fmt.Errorf("%w: avatar", ErrInvalidInput)
	}

	if err := os.MkdirAll(s.uploadsDir, 0o755); err != nil {
		return "", err
	}

	name := uuid.New().String() + ext
	dst := filepath.Join(s.uploadsDir, name)

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, src); err != nil {
		os.Remove(dst)
		return "", err
	}

	avatarURL := s.baseURL + "/uploads/" + name
	if err := s.store.UpdateAvatar(ctx, user.Email, avatarURL); err != nil {
		os.Remove(dst)
		return "", err
	}
	return avatarURL, nil
}
