package mocks

import (
	"context"

	"github.com/darkkaiser/autodelivery-server/internal/marketplace"
	"github.com/stretchr/testify/mock"
)

// MockClient marketplace.Client 인터페이스의 Mock 구현체입니다.
type MockClient struct {
	mock.Mock
}

var _ marketplace.Client = (*MockClient)(nil)

func (m *MockClient) SendMessage(ctx context.Context, nodeID int64, text string) error {
	args := m.Called(ctx, nodeID, text)
	return args.Error(0)
}

func (m *MockClient) GetNodeIDByUsername(ctx context.Context, username string) (int64, error) {
	args := m.Called(ctx, username)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockClient) ListActiveLots(ctx context.Context, userID int64) ([]marketplace.Lot, error) {
	args := m.Called(ctx, userID)
	lots, _ := args.Get(0).([]marketplace.Lot)
	return lots, args.Error(1)
}

func (m *MockClient) GetLotInfo(ctx context.Context, lotID, gameID int64) (marketplace.LotInfo, error) {
	args := m.Called(ctx, lotID, gameID)
	return args.Get(0).(marketplace.LotInfo), args.Error(1)
}

func (m *MockClient) SaveLot(ctx context.Context, info marketplace.LotInfo, active bool) error {
	args := m.Called(ctx, info, active)
	return args.Error(0)
}

func (m *MockClient) GetAccount(ctx context.Context) (marketplace.Account, error) {
	args := m.Called(ctx)
	return args.Get(0).(marketplace.Account), args.Error(1)
}
