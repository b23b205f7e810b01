package shipping

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/compucar/backend/internal/domain/shipping"
)

// RegionService serves the delivery geography, fronting the carrier
// directory with a cache. Geography changes rarely; the cache keeps
// checkout pages off the carrier's rate limits.
type RegionService struct {
	directory shipping.RegionDirectory
	cache     shipping.RegionCache
	logger    *zap.Logger
}

// NewRegionService creates a region service. The cache may be nil, in
// which case every call goes to the carrier.
func NewRegionService(directory shipping.RegionDirectory, cache shipping.RegionCache, logger *zap.Logger) *RegionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RegionService{directory: directory, cache: cache, logger: logger}
}

// Wilayas lists the deliverable provinces
func (s *RegionService) Wilayas(ctx context.Context) ([]WilayaResponse, error) {
	if s.cache != nil {
		if cached, hit, err := s.cache.GetWilayas(ctx); err != nil {
			s.logger.Warn("region cache read failed", zap.Error(err))
		} else if hit {
			return ToWilayaResponses(cached), nil
		}
	}

	wilayas, err := s.directory.GetWilayas(ctx)
	if err != nil {
		return nil, fmt.Errorf("load wilayas: %w", err)
	}
	if s.cache != nil {
		if err := s.cache.SetWilayas(ctx, wilayas); err != nil {
			s.logger.Warn("region cache write failed", zap.Error(err))
		}
	}
	return ToWilayaResponses(wilayas), nil
}

// Communes lists the deliverable municipalities of a wilaya
func (s *RegionService) Communes(ctx context.Context, wilayaID int) ([]CommuneResponse, error) {
	if s.cache != nil {
		if cached, hit, err := s.cache.GetCommunes(ctx, wilayaID); err != nil {
			s.logger.Warn("region cache read failed", zap.Int("wilaya_id", wilayaID), zap.Error(err))
		} else if hit {
			return ToCommuneResponses(cached), nil
		}
	}

	communes, err := s.directory.GetCommunes(ctx, wilayaID)
	if err != nil {
		return nil, fmt.Errorf("load communes for wilaya %d: %w", wilayaID, err)
	}
	if s.cache != nil {
		if err := s.cache.SetCommunes(ctx, wilayaID, communes); err != nil {
			s.logger.Warn("region cache write failed", zap.Int("wilaya_id", wilayaID), zap.Error(err))
		}
	}
	return ToCommuneResponses(communes), nil
}

// Stopdesks lists the pickup points of a wilaya
func (s *RegionService) Stopdesks(ctx context.Context, wilayaID int) ([]StopdeskResponse, error) {
	if s.cache != nil {
		if cached, hit, err := s.cache.GetStopdesks(ctx, wilayaID); err != nil {
			s.logger.Warn("region cache read failed", zap.Int("wilaya_id", wilayaID), zap.Error(err))
		} else if hit {
			return ToStopdeskResponses(cached), nil
		}
	}

	desks, err := s.directory.GetStopdesks(ctx, wilayaID)
	if err != nil {
		return nil, fmt.Errorf("load stopdesks for wilaya %d: %w", wilayaID, err)
	}
	if s.cache != nil {
		if err := s.cache.SetStopdesks(ctx, wilayaID, desks); err != nil {
			s.logger.Warn("region cache write failed", zap.Int("wilaya_id", wilayaID), zap.Error(err))
		}
	}
	return ToStopdeskResponses(desks), nil
}
