package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/raptorhall/tutoring-api/internal/models"
	appErrors "github.com/raptorhall/tutoring-api/pkg/errors"
)

type sponsorLister interface {
	FindByID(ctx context.Context, id string) (*models.Sponsor, error)
	List(ctx context.Context, filter models.SponsorFilter) ([]models.Sponsor, int, error)
}

type learnerLister interface {
	FindByID(ctx context.Context, id string) (*models.Learner, error)
	List(ctx context.Context, filter models.LearnerFilter) ([]models.Learner, int, error)
}

// DirectoryService serves read-only sponsor and learner listings for the
// selection screens. Identity lifecycle lives elsewhere.
type DirectoryService struct {
	sponsors sponsorLister
	learners learnerLister
	logger   *zap.Logger
}

// NewDirectoryService constructs DirectoryService.
func NewDirectoryService(sponsors sponsorLister, learners learnerLister, logger *zap.Logger) *DirectoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DirectoryService{sponsors: sponsors, learners: learners, logger: logger}
}

// ListSponsors returns sponsors with pagination metadata.
func (s *DirectoryService) ListSponsors(ctx context.Context, filter models.SponsorFilter) ([]models.Sponsor, *models.Pagination, error) {
	sponsors, total, err := s.sponsors.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sponsors")
	}
	return sponsors, paginationFor(filter.Page, filter.PageSize, total), nil
}

// GetSponsor returns one sponsor.
func (s *DirectoryService) GetSponsor(ctx context.Context, id string) (*models.Sponsor, error) {
	sponsor, err := s.sponsors.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "sponsor not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load sponsor")
	}
	return sponsor, nil
}

// ListLearners returns learners with pagination metadata.
func (s *DirectoryService) ListLearners(ctx context.Context, filter models.LearnerFilter) ([]models.Learner, *models.Pagination, error) {
	learners, total, err := s.learners.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list learners")
	}
	return learners, paginationFor(filter.Page, filter.PageSize, total), nil
}

// GetLearner returns one learner.
func (s *DirectoryService) GetLearner(ctx context.Context, id string) (*models.Learner, error) {
	learner, err := s.learners.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "learner not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load learner")
	}
	return learner, nil
}

func paginationFor(page, size, total int) *models.Pagination {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}
	return &models.Pagination{Page: page, PageSize: size, TotalCount: total}
}
