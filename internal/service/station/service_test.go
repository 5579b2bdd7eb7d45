package station

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/evbs/battery-swap-backend/internal/domain"
	"github.com/evbs/battery-swap-backend/internal/mocks"
)

func TestListPackagesPopulatesCache(t *testing.T) {
	calls := 0
	pkgRepo := &mocks.MockServicePackageRepository{
		FindAllFunc: func(ctx context.Context) ([]domain.ServicePackage, error) {
			calls++
			return []domain.ServicePackage{
				{ID: 1, Name: "Basic", Price: decimal.NewFromInt(400000), MaxSwaps: 20, Duration: 30},
			}, nil
		},
	}
	cache := mocks.NewMockCache()
	svc := NewService(&mocks.MockStationRepository{}, &mocks.MockBatteryRepository{},
		&mocks.MockBatteryTypeRepository{}, pkgRepo, &mocks.MockVehicleRepository{}, cache, zap.NewNop())

	first, err := svc.ListPackages(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 1)

	// Second read is served from cache.
	second, err := svc.ListPackages(context.Background())
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, "Basic", second[0].Name)
	assert.Equal(t, 1, calls)
}

func TestSavePackageInvalidatesCache(t *testing.T) {
	pkgRepo := &mocks.MockServicePackageRepository{
		FindAllFunc: func(ctx context.Context) ([]domain.ServicePackage, error) {
			return []domain.ServicePackage{{ID: 1, Name: "Basic"}}, nil
		},
	}
	cache := mocks.NewMockCache()
	svc := NewService(&mocks.MockStationRepository{}, &mocks.MockBatteryRepository{},
		&mocks.MockBatteryTypeRepository{}, pkgRepo, &mocks.MockVehicleRepository{}, cache, zap.NewNop())

	_, err := svc.ListPackages(context.Background())
	require.NoError(t, err)

	require.NoError(t, svc.SavePackage(context.Background(), &domain.ServicePackage{ID: 2, Name: "Plus"}))

	_, err = cache.Get(context.Background(), "catalog:service_packages")
	assert.Error(t, err, "catalog cache should be invalidated after a write")
}

func TestGetStationNotFound(t *testing.T) {
	svc := NewService(&mocks.MockStationRepository{}, &mocks.MockBatteryRepository{},
		&mocks.MockBatteryTypeRepository{}, &mocks.MockServicePackageRepository{},
		&mocks.MockVehicleRepository{}, mocks.NewMockCache(), zap.NewNop())

	_, err := svc.GetStation(context.Background(), 123)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
