package catalog

import (
	"context"
	"fmt"
	"io"

	"github.com/Domenick1991/airport/internal/cache"
	"github.com/Domenick1991/airport/internal/domain"
	"github.com/Domenick1991/airport/internal/logger"
	"github.com/Domenick1991/airport/internal/repository"
)

type CatalogUseCase interface {
	CreateAirport(ctx context.Context, airport *domain.Airport) error
	ListAirports(ctx context.Context, filter domain.AirportFilter) (domain.List[domain.Airport], error)
	UploadAirportImage(ctx context.Context, id int64, image io.Reader) (*domain.Airport, error)

	CreateAirplaneType(ctx context.Context, t *domain.AirplaneType) error
	ListAirplaneTypes(ctx context.Context, filter domain.AirplaneTypeFilter) (domain.List[domain.AirplaneType], error)
	UploadAirplaneTypeImage(ctx context.Context, id int64, image io.Reader) (*domain.AirplaneType, error)

	CreateAirplane(ctx context.Context, airplane *domain.Airplane) error
	ListAirplanes(ctx context.Context, filter domain.AirplaneFilter) (domain.List[domain.Airplane], error)

	CreateRoute(ctx context.Context, route *domain.Route) error
	ListRoutes(ctx context.Context, filter domain.RouteFilter) (domain.List[domain.Route], error)

	CreateCrew(ctx context.Context, crew *domain.Crew) error
	ListCrews(ctx context.Context, filter domain.CrewFilter) (domain.List[domain.Crew], error)
}

// ListCache holds catalog list pages keyed by cache.Key.
type ListCache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	Invalidate(ctx context.Context, entity string) error
}

type ImageStore interface {
	Save(dir, name string, r io.Reader) (string, error)
}

const (
	entityAirports      = "airports"
	entityAirplaneTypes = "airplane_types"
	entityAirplanes     = "airplanes"
	entityRoutes        = "routes"
	entityCrews         = "crews"
)

type Repositories struct {
	Airports      repository.AirportRepository
	AirplaneTypes repository.AirplaneTypeRepository
	Airplanes     repository.AirplaneRepository
	Routes        repository.RouteRepository
	Crews         repository.CrewRepository
}

type CatalogService struct {
	repos  Repositories
	cache  ListCache
	images ImageStore
	log    *logger.Logger
}

type CatalogServiceOption func(*CatalogService)

func WithCache(c ListCache) CatalogServiceOption {
	return func(s *CatalogService) {
		s.cache = c
	}
}

func NewCatalogService(repos Repositories, images ImageStore, log *logger.Logger, opts ...CatalogServiceOption) *CatalogService {
	s := &CatalogService{repos: repos, images: images, log: log}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// cachedList serves one list page from the cache, loading and storing it on a miss.
// Cache failures degrade to a storage read.
func cachedList[T any](ctx context.Context, s *CatalogService, key string, load func() (domain.List[T], error)) (domain.List[T], error) {
	if s.cache != nil {
		var cached domain.List[T]
		hit, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			s.log.Warnf("cache", "get %s: %v", key, err)
		}
		if hit {
			return cached, nil
		}
	}

	list, err := load()
	if err != nil {
		return list, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, list); err != nil {
			s.log.Warnf("cache", "set %s: %v", key, err)
		}
	}
	return list, nil
}

func (s *CatalogService) invalidate(ctx context.Context, entity string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, entity); err != nil {
		s.log.Warnf("cache", "invalidate %s: %v", entity, err)
	}
}

func pageKey(entity string, p domain.Page, filters ...any) string {
	p = p.Normalize()
	return cache.Key(entity, append(filters, p.Number, p.Size)...)
}

func (s *CatalogService) CreateAirport(ctx context.Context, airport *domain.Airport) error {
	if err := airport.Validate(); err != nil {
		return err
	}
	if err := s.repos.Airports.Create(ctx, airport); err != nil {
		return err
	}
	s.invalidate(ctx, entityAirports)
	return nil
}

func (s *CatalogService) ListAirports(ctx context.Context, filter domain.AirportFilter) (domain.List[domain.Airport], error) {
	key := pageKey(entityAirports, filter.Page, "name="+filter.Name)
	return cachedList(ctx, s, key, func() (domain.List[domain.Airport], error) {
		return s.repos.Airports.List(ctx, filter)
	})
}

func (s *CatalogService) UploadAirportImage(ctx context.Context, id int64, image io.Reader) (*domain.Airport, error) {
	airport, err := s.repos.Airports.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	url, err := s.images.Save(entityAirports, airport.Name, image)
	if err != nil {
		return nil, err
	}
	if err := s.repos.Airports.SetImage(ctx, id, url); err != nil {
		return nil, err
	}
	airport.Image = &url
	s.invalidate(ctx, entityAirports)
	s.log.Infof("media", "airport %d image %s", id, url)
	return airport, nil
}

func (s *CatalogService) CreateAirplaneType(ctx context.Context, t *domain.AirplaneType) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if err := s.repos.AirplaneTypes.Create(ctx, t); err != nil {
		return err
	}
	s.invalidate(ctx, entityAirplaneTypes)
	return nil
}

func (s *CatalogService) ListAirplaneTypes(ctx context.Context, filter domain.AirplaneTypeFilter) (domain.List[domain.AirplaneType], error) {
	key := pageKey(entityAirplaneTypes, filter.Page, "name="+filter.Name)
	return cachedList(ctx, s, key, func() (domain.List[domain.AirplaneType], error) {
		return s.repos.AirplaneTypes.List(ctx, filter)
	})
}

func (s *CatalogService) UploadAirplaneTypeImage(ctx context.Context, id int64, image io.Reader) (*domain.AirplaneType, error) {
	t, err := s.repos.AirplaneTypes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	url, err := s.images.Save(entityAirplaneTypes, t.Name, image)
	if err != nil {
		return nil, err
	}
	if err := s.repos.AirplaneTypes.SetImage(ctx, id, url); err != nil {
		return nil, err
	}
	t.Image = &url
	s.invalidate(ctx, entityAirplaneTypes)
	s.log.Infof("media", "airplane type %d image %s", id, url)
	return t, nil
}

func (s *CatalogService) CreateAirplane(ctx context.Context, airplane *domain.Airplane) error {
	if err := airplane.Validate(); err != nil {
		return err
	}
	if err := s.repos.Airplanes.Create(ctx, airplane); err != nil {
		return err
	}
	s.invalidate(ctx, entityAirplanes)
	return nil
}

func (s *CatalogService) ListAirplanes(ctx context.Context, filter domain.AirplaneFilter) (domain.List[domain.Airplane], error) {
	key := pageKey(entityAirplanes, filter.Page, fmt.Sprintf("type=%d", filter.AirplaneTypeID), "name="+filter.Name)
	return cachedList(ctx, s, key, func() (domain.List[domain.Airplane], error) {
		return s.repos.Airplanes.List(ctx, filter)
	})
}

func (s *CatalogService) CreateRoute(ctx context.Context, route *domain.Route) error {
	if err := route.Validate(); err != nil {
		return err
	}
	if err := s.repos.Routes.Create(ctx, route); err != nil {
		return err
	}
	s.invalidate(ctx, entityRoutes)
	return nil
}

func (s *CatalogService) ListRoutes(ctx context.Context, filter domain.RouteFilter) (domain.List[domain.Route], error) {
	key := pageKey(entityRoutes, filter.Page, fmt.Sprintf("source=%d", filter.SourceID), fmt.Sprintf("destination=%d", filter.DestinationID))
	return cachedList(ctx, s, key, func() (domain.List[domain.Route], error) {
		return s.repos.Routes.List(ctx, filter)
	})
}

func (s *CatalogService) CreateCrew(ctx context.Context, crew *domain.Crew) error {
	if err := crew.Validate(); err != nil {
		return err
	}
	if err := s.repos.Crews.Create(ctx, crew); err != nil {
		return err
	}
	s.invalidate(ctx, entityCrews)
	return nil
}

func (s *CatalogService) ListCrews(ctx context.Context, filter domain.CrewFilter) (domain.List[domain.Crew], error) {
	key := pageKey(entityCrews, filter.Page, "name="+filter.Name)
	return cachedList(ctx, s, key, func() (domain.List[domain.Crew], error) {
		return s.repos.Crews.List(ctx, filter)
	})
}

var _ CatalogUseCase = (*CatalogService)(nil)
