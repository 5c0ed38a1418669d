package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/dealerhub/dealer-admin/internal/core/domain"
	"github.com/dealerhub/dealer-admin/internal/core/ports"
)

const (
	defaultPage      = 1
	defaultLimit     = 10
	maxLimit         = 100
	defaultSortField = "createdAt"
)

// sortableFields maps accepted sortBy values to stored field names.
var sortableFields = map[string]string{
	"name":      "name",
	"email":     "email",
	"phone":     "phone",
	"region":    "region",
	"status":    "status",
	"createdAt": "createdAt",
	"updatedAt": "updatedAt",
}

type DealerService struct {
	repo   ports.DealerRepository
	audit  ports.AuditRepository
	logger zerolog.Logger
	now    func() time.Time
}

// NewDealerService wires the service. audit may be nil.
func NewDealerService(repo ports.DealerRepository, audit ports.AuditRepository, logger zerolog.Logger) *DealerService {
	return &DealerService{repo: repo, audit: audit, logger: logger, now: time.Now}
}

func (s *DealerService) Create(ctx context.Context, in ports.CreateDealerInput) (*domain.Dealer, error) {
	status := domain.DealerStatus(strings.TrimSpace(in.Status))
	if status == "" {
		status = domain.DealerActive
	}

	now := s.now().UTC()
	dealer := &domain.Dealer{
		Name:           strings.TrimSpace(in.Name),
		Email:          domain.NormalizeEmail(in.Email),
		Phone:          strings.TrimSpace(in.Phone),
		Address:        strings.TrimSpace(in.Address),
		OperatingHours: strings.TrimSpace(in.OperatingHours),
		Status:         status,
		Region:         strings.TrimSpace(in.Region),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := validateDealer(dealer); err != nil {
		return nil, err
	}

	if err := s.ensureEmailFree(ctx, dealer.Email, ""); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, dealer); err != nil {
		if !errors.Is(err, domain.ErrDealerExists) {
			s.logger.Error().Err(err).Msg("failed to create dealer")
		}
		return nil, err
	}

	s.logger.Info().Str("dealer_id", dealer.ID).Str("email", dealer.Email).Msg("dealer created")
	s.recordAudit(ctx, dealer.ID, domain.AuditCreated)
	return dealer, nil
}

func (s *DealerService) FindAll(ctx context.Context, in ports.ListDealersInput) (*ports.ListDealersResult, error) {
	filter, err := normalizeListInput(in)
	if err != nil {
		return nil, err
	}

	dealers, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list dealers: %w", err)
	}
	if dealers == nil {
		dealers = []*domain.Dealer{}
	}

	return &ports.ListDealersResult{
		Dealers: dealers,
		Total:   total,
		Page:    filter.Page,
		Limit:   filter.Limit,
		Pages:   pageCount(total, filter.Limit),
	}, nil
}

func (s *DealerService) FindOne(ctx context.Context, id string) (*domain.Dealer, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *DealerService) Update(ctx context.Context, id string, patch domain.DealerPatch) (*domain.Dealer, error) {
	patch, err := normalizePatch(patch)
	if err != nil {
		return nil, err
	}

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return current, nil
	}

	if patch.Email != nil && *patch.Email != current.Email {
		if err := s.ensureEmailFree(ctx, *patch.Email, current.ID); err != nil {
			return nil, err
		}
	}

	updated, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("dealer_id", updated.ID).Msg("dealer updated")
	s.recordAudit(ctx, updated.ID, domain.AuditUpdated)
	return updated, nil
}

func (s *DealerService) Remove(ctx context.Context, id string) error {
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}

	s.logger.Info().Str("dealer_id", id).Msg("dealer removed")
	s.recordAudit(ctx, id, domain.AuditRemoved)
	return nil
}

// ensureEmailFree fails with ErrDealerExists when a live dealer other than
// exceptID owns email. The unique index remains the real guarantee.
func (s *DealerService) ensureEmailFree(ctx context.Context, email, exceptID string) error {
	other, err := s.repo.FindActiveByEmail(ctx, email)
	switch {
	case errors.Is(err, domain.ErrDealerNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("check dealer email: %w", err)
	case other.ID != exceptID:
		return domain.ErrDealerExists
	}
	return nil
}

func (s *DealerService) recordAudit(ctx context.Context, dealerID string, action domain.AuditAction) {
	if s.audit == nil {
		return
	}

	entry := domain.AuditEntry{DealerID: dealerID, Action: action, At: s.now().UTC()}
	if p, ok := domain.PrincipalFromContext(ctx); ok {
		entry.ActorID = p.UserID
	}

	if err := s.audit.Record(ctx, entry); err != nil {
		s.logger.Warn().Err(err).Str("dealer_id", dealerID).Str("action", string(action)).Msg("failed to record dealer audit")
	}
}

func validateDealer(d *domain.Dealer) error {
	var verr domain.ValidationError
	required := []struct{ field, value string }{
		{"name", d.Name},
		{"email", d.Email},
		{"phone", d.Phone},
		{"address", d.Address},
		{"operatingHours", d.OperatingHours},
		{"region", d.Region},
	}
	for _, r := range required {
		if r.value == "" {
			verr.Fields = append(verr.Fields, domain.FieldError{Field: r.field, Message: "is required"})
		}
	}
	if !d.Status.Valid() {
		verr.Fields = append(verr.Fields, domain.FieldError{Field: "status", Message: "must be one of: ACTIVE INACTIVE"})
	}
	if len(verr.Fields) > 0 {
		return &verr
	}
	return nil
}

// normalizePatch trims provided values and rejects blanks and unknown statuses.
func normalizePatch(p domain.DealerPatch) (domain.DealerPatch, error) {
	var verr domain.ValidationError
	trim := func(field string, v *string) *string {
		if v == nil {
			return nil
		}
		t := strings.TrimSpace(*v)
		if t == "" {
			verr.Fields = append(verr.Fields, domain.FieldError{Field: field, Message: "must not be blank"})
		}
		return &t
	}

	out := domain.DealerPatch{
		Name:           trim("name", p.Name),
		Phone:          trim("phone", p.Phone),
		Address:        trim("address", p.Address),
		OperatingHours: trim("operatingHours", p.OperatingHours),
		Region:         trim("region", p.Region),
		Status:         p.Status,
	}
	if email := trim("email", p.Email); email != nil {
		normalized := domain.NormalizeEmail(*email)
		out.Email = &normalized
	}
	if p.Status != nil && !p.Status.Valid() {
		verr.Fields = append(verr.Fields, domain.FieldError{Field: "status", Message: "must be one of: ACTIVE INACTIVE"})
	}

	if len(verr.Fields) > 0 {
		return domain.DealerPatch{}, &verr
	}
	return out, nil
}

func normalizeListInput(in ports.ListDealersInput) (ports.ListDealersFilter, error) {
	f := ports.ListDealersFilter{
		Search:    strings.TrimSpace(in.Search),
		Status:    domain.DealerStatus(strings.TrimSpace(in.Status)),
		Region:    strings.TrimSpace(in.Region),
		SortOrder: ports.SortDesc,
		Page:      in.Page,
		Limit:     in.Limit,
	}

	if f.Status != "" && !f.Status.Valid() {
		return f, domain.NewValidationError("status", "must be one of: ACTIVE INACTIVE")
	}

	sortBy := strings.TrimSpace(in.SortBy)
	if sortBy == "" {
		sortBy = defaultSortField
	}
	field, ok := sortableFields[sortBy]
	if !ok {
		return f, domain.NewValidationError("sortBy", "is not a sortable field")
	}
	f.SortBy = field

	if strings.EqualFold(strings.TrimSpace(in.SortOrder), "asc") {
		f.SortOrder = ports.SortAsc
	}

	if f.Page < 1 {
		f.Page = defaultPage
	}
	if f.Limit < 1 {
		f.Limit = defaultLimit
	}
	if f.Limit > maxLimit {
		f.Limit = maxLimit
	}
	return f, nil
}

func pageCount(total int64, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
