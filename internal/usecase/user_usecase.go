package usecase

import (
	"context"
	"strings"
	"time"

	"b2bmarket/internal/domain/entity"
	"b2bmarket/internal/domain/repository"
	"b2bmarket/pkg/errors"
	"b2bmarket/pkg/logger"
)

type UserUseCase struct {
	userRepo repository.UserRepository
	isAdmin  func(uid string) bool
	now      func() time.Time
}

// NewUserUseCase takes the admin allow-list check used to bootstrap admin accounts.
func NewUserUseCase(userRepo repository.UserRepository, isAdmin func(uid string) bool) *UserUseCase {
	if isAdmin == nil {
		isAdmin = func(string) bool { return false }
	}
	return &UserUseCase{
		userRepo: userRepo,
		isAdmin:  isAdmin,
		now:      utcNow,
	}
}

type RegisterInput struct {
	Email       string
	Name        string
	CompanyName string
	Phone       string
	Role        string
}

type UpdateProfileInput struct {
	Name        string
	CompanyName string
	Phone       string
}

// Register creates the profile for an authenticated uid. The role is fixed
// at registration.
func (uc *UserUseCase) Register(ctx context.Context, uid string, input RegisterInput) (*entity.User, error) {
	if _, err := uc.userRepo.GetByID(ctx, uid); err == nil {
		return nil, errors.Conflict("User is already registered")
	} else if !errors.Is(err, errors.CodeNotFound) {
		return nil, err
	}

	role := input.Role
	switch {
	case uc.isAdmin(uid):
		role = entity.RoleAdmin
	case role == entity.RoleBuyer, role == entity.RoleSupplier:
	default:
		return nil, errors.BadRequest("Role must be buyer or supplier", nil)
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, errors.BadRequest("Name is required", nil)
	}

	now := uc.now()
	user := &entity.User{
		ID:          uid,
		Email:       strings.ToLower(strings.TrimSpace(input.Email)),
		Name:        name,
		CompanyName: input.CompanyName,
		Phone:       input.Phone,
		Role:        role,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	logger.Info("user registered %s", logger.Fields("user", uid, "role", role))
	return user, nil
}

func (uc *UserUseCase) GetProfile(ctx context.Context, uid string) (*entity.User, error) {
	return uc.userRepo.GetByID(ctx, uid)
}

func (uc *UserUseCase) UpdateProfile(ctx context.Context, uid string, input UpdateProfileInput) (*entity.User, error) {
	user, err := uc.userRepo.GetByID(ctx, uid)
	if err != nil {
		return nil, err
	}

	if input.Name != "" {
		user.Name = input.Name
	}
	if input.CompanyName != "" {
		user.CompanyName = input.CompanyName
	}
	if input.Phone != "" {
		user.Phone = input.Phone
	}
	user.UpdatedAt = uc.now()

	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
