package station

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/evbs/battery-swap-backend/internal/domain"
	"github.com/evbs/battery-swap-backend/internal/ports"
)

const (
	packageCatalogKey = "catalog:service_packages"
	packageCatalogTTL = 10 * time.Minute
)

// Service is the station, battery, and catalog management surface. The
// package catalog is read on every purchase screen, so listings go through
// the cache; writes invalidate it.
type Service struct {
	stationRepo ports.StationRepository
	batteryRepo ports.BatteryRepository
	typeRepo    ports.BatteryTypeRepository
	pkgRepo     ports.ServicePackageRepository
	vehicleRepo ports.VehicleRepository
	cache       ports.Cache
	log         *zap.Logger
}

func NewService(
	stationRepo ports.StationRepository,
	batteryRepo ports.BatteryRepository,
	typeRepo ports.BatteryTypeRepository,
	pkgRepo ports.ServicePackageRepository,
	vehicleRepo ports.VehicleRepository,
	cache ports.Cache,
	log *zap.Logger,
) *Service {
	return &Service{
		stationRepo: stationRepo,
		batteryRepo: batteryRepo,
		typeRepo:    typeRepo,
		pkgRepo:     pkgRepo,
		vehicleRepo: vehicleRepo,
		cache:       cache,
		log:         log,
	}
}

var _ ports.CatalogService = (*Service)(nil)

func (s *Service) ListStations(ctx context.Context) ([]domain.Station, error) {
	return s.stationRepo.FindAll(ctx)
}

func (s *Service) GetStation(ctx context.Context, id int64) (*domain.Station, error) {
	station, err := s.stationRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if station == nil {
		return nil, fmt.Errorf("%w: station %d", domain.ErrNotFound, id)
	}
	return station, nil
}

func (s *Service) SaveStation(ctx context.Context, station *domain.Station) error {
	return s.stationRepo.Save(ctx, station)
}

func (s *Service) DeleteStation(ctx context.Context, id int64) error {
	return s.stationRepo.Delete(ctx, id)
}

func (s *Service) ListBatteries(ctx context.Context) ([]domain.Battery, error) {
	return s.batteryRepo.FindAll(ctx)
}

func (s *Service) SaveBattery(ctx context.Context, battery *domain.Battery) error {
	if battery.Status == "" {
		battery.Status = domain.BatteryStatusAvailable
	}
	return s.batteryRepo.Save(ctx, battery)
}

func (s *Service) ListBatteryTypes(ctx context.Context) ([]domain.BatteryType, error) {
	return s.typeRepo.FindAll(ctx)
}

func (s *Service) SaveBatteryType(ctx context.Context, bt *domain.BatteryType) error {
	return s.typeRepo.Save(ctx, bt)
}

// ListPackages serves the package catalog, cache-first. A cache failure falls
// through to the database.
func (s *Service) ListPackages(ctx context.Context) ([]domain.ServicePackage, error) {
	if cached, err := s.cache.Get(ctx, packageCatalogKey); err == nil {
		var pkgs []domain.ServicePackage
		if err := json.Unmarshal([]byte(cached), &pkgs); err == nil {
			return pkgs, nil
		}
	}

	pkgs, err := s.pkgRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(pkgs); err == nil {
		if err := s.cache.Set(ctx, packageCatalogKey, data, packageCatalogTTL); err != nil {
			s.log.Warn("Failed to cache package catalog", zap.Error(err))
		}
	}
	return pkgs, nil
}

func (s *Service) GetPackage(ctx context.Context, id int64) (*domain.ServicePackage, error) {
	pkg, err := s.pkgRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if pkg == nil {
		return nil, fmt.Errorf("%w: service package %d", domain.ErrNotFound, id)
	}
	return pkg, nil
}

func (s *Service) SavePackage(ctx context.Context, pkg *domain.ServicePackage) error {
	if err := s.pkgRepo.Save(ctx, pkg); err != nil {
		return err
	}
	s.invalidateCatalog(ctx)
	return nil
}

func (s *Service) DeletePackage(ctx context.Context, id int64) error {
	if err := s.pkgRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateCatalog(ctx)
	return nil
}

func (s *Service) ListVehicles(ctx context.Context, driverID int64) ([]domain.Vehicle, error) {
	return s.vehicleRepo.FindByDriverID(ctx, driverID)
}

func (s *Service) SaveVehicle(ctx context.Context, vehicle *domain.Vehicle) error {
	return s.vehicleRepo.Save(ctx, vehicle)
}

func (s *Service) invalidateCatalog(ctx context.Context) {
	if err := s.cache.Delete(ctx, packageCatalogKey); err != nil {
		s.log.Warn("Failed to invalidate package catalog cache", zap.Error(err))
	}
}
