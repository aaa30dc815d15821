package service

import (
	"zhitu_backend/internal/model"
	"zhitu_backend/internal/repository"
	"zhitu_backend/internal/util"
)

// UserService 管理员的用户管理
type UserService struct {
	UserRepo *repository.UserRepository
}

func NewUserService(userRepo *repository.UserRepository) *UserService {
	return &UserService{
		UserRepo: userRepo,
	}
}

func (s *UserService) GetUsers(page, pageSize int) ([]model.User, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.UserRepo.List(page, pageSize)
}

// SetDisabled 管理员不能禁用自己
func (s *UserService) SetDisabled(operatorID, userID uint, disabled bool) error {
	if operatorID == userID && disabled {
		return util.NewValidation("不能禁用当前登录的账号")
	}
	return notFoundAs(s.UserRepo.SetDisabled(userID, disabled), util.ErrUserNotFound)
}
