// Package application 账户信息与收货地址
package application

import (
	"context"

	"github.com/wyfcoding/storefront/internal/apiclient"
)

// Account 远端账户接口
type Account interface {
	GetLoggedInUserInfo(ctx context.Context) (*apiclient.Response, error)
	SaveAddress(ctx context.Context, addr apiclient.Address) (*apiclient.Response, error)
}

// AccountService 账户服务
type AccountService struct {
	remote Account
}

// NewAccountService 创建账户服务
func NewAccountService(remote Account) *AccountService {
	return &AccountService{remote: remote}
}

// Profile 当前用户，包含地址与订单历史
func (s *AccountService) Profile(ctx context.Context) (*apiclient.User, error) {
	resp, err := s.remote.GetLoggedInUserInfo(ctx)
	if err != nil {
		return nil, err
	}
	if resp.User == nil {
		return nil, &apiclient.APIError{Status: 404, Message: "user not found"}
	}
	return resp.User, nil
}

// SaveAddress 保存或更新收货地址
func (s *AccountService) SaveAddress(ctx context.Context, addr apiclient.Address) (string, error) {
	resp, err := s.remote.SaveAddress(ctx, addr)
	if err != nil {
		return "", err
	}
	return resp.Message, nil
}
