package manufacturing

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/goldpos/backend/internal/domain/manufacturing"
)

var fullPercentage = decimal.NewFromInt(100)

// CompositionService manages the raw material composition tracker: the
// optional secondary ledger declaring what a multi-source batch is made of.
// It is independent of the single-source weight ledger flow and exists
// purely for costing and traceability.
type CompositionService struct {
	contributionRepo manufacturing.ContributionRepository
	recordRepo       manufacturing.ManufacturingRecordRepository
}

// NewCompositionService creates a new CompositionService
func NewCompositionService(
	contributionRepo manufacturing.ContributionRepository,
	recordRepo manufacturing.ManufacturingRecordRepository,
) *CompositionService {
	return &CompositionService{
		contributionRepo: contributionRepo,
		recordRepo:       recordRepo,
	}
}

// AddContribution validates and persists one contribution entry.
// The sum-to-100 check is deliberately not enforced here: contributions
// are entered incrementally, so balance is reported via TotalPercentage.
func (s *CompositionService) AddContribution(ctx context.Context, req AddContributionRequest) (*manufacturing.RawMaterialContribution, error) {
	if _, err := s.recordRepo.FindByID(ctx, req.RecordID); err != nil {
		return nil, err
	}

	quantity, err := newWeight(req.QuantityUsed)
	if err != nil {
		return nil, err
	}

	contribution, err := manufacturing.NewRawMaterialContribution(
		req.RecordID,
		req.RawProductID,
		quantity,
		req.UnitCost,
		req.ContributionPercent,
		req.SourceType,
		req.SourceID,
		req.SourceOwnershipID,
		req.Notes,
	)
	if err != nil {
		return nil, err
	}

	if err := s.contributionRepo.Create(ctx, contribution); err != nil {
		return nil, err
	}
	return contribution, nil
}

// RemoveContribution deletes a contribution entry
func (s *CompositionService) RemoveContribution(ctx context.Context, id uuid.UUID) error {
	if _, err := s.contributionRepo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.contributionRepo.Delete(ctx, id)
}

// ListContributions returns all contributions of a record
func (s *CompositionService) ListContributions(ctx context.Context, recordID uuid.UUID) ([]manufacturing.RawMaterialContribution, error) {
	if _, err := s.recordRepo.FindByID(ctx, recordID); err != nil {
		return nil, err
	}
	return s.contributionRepo.ListByRecord(ctx, recordID)
}

// TotalPercentage sums the contribution percentages of a record. Balanced
// reports whether the sum is exactly 100; callers surface an unbalanced sum
// as a warning, not a failure.
func (s *CompositionService) TotalPercentage(ctx context.Context, recordID uuid.UUID) (*CompositionTotal, error) {
	contributions, err := s.ListContributions(ctx, recordID)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, c := range contributions {
		total = total.Add(c.ContributionPercent)
	}

	return &CompositionTotal{
		RecordID:          recordID,
		TotalPercent:      total,
		Balanced:          total.Equal(fullPercentage),
		ContributionCount: len(contributions),
	}, nil
}
