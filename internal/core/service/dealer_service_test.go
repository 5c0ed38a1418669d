package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/dealerhub/dealer-admin/internal/core/domain"
	"github.com/dealerhub/dealer-admin/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub repository
// ---------------------------------------------------------------------------

// memDealerRepo applies the same filtering, sorting and paging rules the
// Mongo repository expresses as queries.
type memDealerRepo struct {
	dealers []*domain.Dealer
	nextID  int
	failErr error
}

func newMemDealerRepo() *memDealerRepo {
	return &memDealerRepo{}
}

func cloneDealer(d *domain.Dealer) *domain.Dealer {
	c := *d
	return &c
}

func (r *memDealerRepo) Create(_ context.Context, d *domain.Dealer) error {
	if r.failErr != nil {
		return r.failErr
	}
	for _, x := range r.dealers {
		if !x.IsDeleted && x.Email == d.Email {
			return domain.ErrDealerExists
		}
	}
	r.nextID++
	d.ID = fmt.Sprintf("d%03d", r.nextID)
	r.dealers = append(r.dealers, cloneDealer(d))
	return nil
}

func (r *memDealerRepo) live(id string) *domain.Dealer {
	for _, d := range r.dealers {
		if d.ID == id && !d.IsDeleted {
			return d
		}
	}
	return nil
}

func (r *memDealerRepo) FindByID(_ context.Context, id string) (*domain.Dealer, error) {
	d := r.live(id)
	if d == nil {
		return nil, domain.ErrDealerNotFound
	}
	return cloneDealer(d), nil
}

func (r *memDealerRepo) FindActiveByEmail(_ context.Context, email string) (*domain.Dealer, error) {
	for _, d := range r.dealers {
		if !d.IsDeleted && d.Email == email {
			return cloneDealer(d), nil
		}
	}
	return nil, domain.ErrDealerNotFound
}

func sortKey(d *domain.Dealer, field string) string {
	switch field {
	case "name":
		return d.Name
	case "email":
		return d.Email
	case "phone":
		return d.Phone
	case "region":
		return d.Region
	case "status":
		return string(d.Status)
	case "updatedAt":
		return d.UpdatedAt.Format(time.RFC3339Nano)
	default:
		return d.CreatedAt.Format(time.RFC3339Nano)
	}
}

func (r *memDealerRepo) List(_ context.Context, f ports.ListDealersFilter) ([]*domain.Dealer, int64, error) {
	if r.failErr != nil {
		return nil, 0, r.failErr
	}

	var matched []*domain.Dealer
	q := strings.ToLower(f.Search)
	for _, d := range r.dealers {
		if d.IsDeleted {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(d.Name), q) &&
			!strings.Contains(strings.ToLower(d.Email), q) &&
			!strings.Contains(strings.ToLower(d.Phone), q) {
			continue
		}
		if f.Status != "" && d.Status != f.Status {
			continue
		}
		if f.Region != "" && d.Region != f.Region {
			continue
		}
		matched = append(matched, cloneDealer(d))
	}

	sort.SliceStable(matched, func(i, j int) bool {
		a, b := sortKey(matched[i], f.SortBy), sortKey(matched[j], f.SortBy)
		if a == b {
			a, b = matched[i].ID, matched[j].ID
		}
		if f.SortOrder == ports.SortAsc {
			return a < b
		}
		return a > b
	})

	total := int64(len(matched))
	start := (f.Page - 1) * f.Limit
	if start >= len(matched) {
		return []*domain.Dealer{}, total, nil
	}
	end := start + f.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (r *memDealerRepo) Update(_ context.Context, id string, p domain.DealerPatch) (*domain.Dealer, error) {
	d := r.live(id)
	if d == nil {
		return nil, domain.ErrDealerNotFound
	}
	if p.Name != nil {
		d.Name = *p.Name
	}
	if p.Email != nil {
		d.Email = *p.Email
	}
	if p.Phone != nil {
		d.Phone = *p.Phone
	}
	if p.Address != nil {
		d.Address = *p.Address
	}
	if p.OperatingHours != nil {
		d.OperatingHours = *p.OperatingHours
	}
	if p.Status != nil {
		d.Status = *p.Status
	}
	if p.Region != nil {
		d.Region = *p.Region
	}
	d.UpdatedAt = d.UpdatedAt.Add(time.Second)
	return cloneDealer(d), nil
}

func (r *memDealerRepo) SoftDelete(_ context.Context, id string) error {
	d := r.live(id)
	if d == nil {
		return domain.ErrDealerNotFound
	}
	d.IsDeleted = true
	return nil
}

func (r *memDealerRepo) Count(_ context.Context, status domain.DealerStatus) (int64, error) {
	if r.failErr != nil {
		return 0, r.failErr
	}
	var n int64
	for _, d := range r.dealers {
		if !d.IsDeleted && (status == "" || d.Status == status) {
			n++
		}
	}
	return n, nil
}

func (r *memDealerRepo) CountByRegion(_ context.Context) ([]domain.RegionCount, error) {
	counts := map[string]int64{}
	for _, d := range r.dealers {
		if !d.IsDeleted {
			counts[d.Region]++
		}
	}
	out := make([]domain.RegionCount, 0, len(counts))
	for region, n := range counts {
		out = append(out, domain.RegionCount{Region: region, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Region < out[j].Region
	})
	return out, nil
}

func (r *memDealerRepo) Recent(ctx context.Context, limit int) ([]domain.DealerSummary, error) {
	page, _, err := r.List(ctx, ports.ListDealersFilter{SortBy: "createdAt", SortOrder: ports.SortDesc, Page: 1, Limit: limit})
	if err != nil {
		return nil, err
	}
	out := make([]domain.DealerSummary, 0, len(page))
	for _, d := range page {
		out = append(out, domain.DealerSummary{ID: d.ID, Name: d.Name, Email: d.Email, Region: d.Region, Status: d.Status, CreatedAt: d.CreatedAt})
	}
	return out, nil
}

type stubAuditRepo struct {
	entries []domain.AuditEntry
	err     error
}

func (r *stubAuditRepo) Record(_ context.Context, e domain.AuditEntry) error {
	if r.err != nil {
		return r.err
	}
	r.entries = append(r.entries, e)
	return nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func newTestDealerService(repo *memDealerRepo, audit ports.AuditRepository) *DealerService {
	svc := NewDealerService(repo, audit, zerolog.Nop())
	clock := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	return svc
}

func dealerInput(name, email, region, status string) ports.CreateDealerInput {
	return ports.CreateDealerInput{
		Name:           name,
		Email:          email,
		Phone:          "+1-555-0100",
		Address:        "1 Main St",
		OperatingHours: "9:00 AM - 6:00 PM",
		Status:         status,
		Region:         region,
	}
}

func strPtr(s string) *string { return &s }

// ---------------------------------------------------------------------------
// Create
// ---------------------------------------------------------------------------

func TestDealerService_Create_DefaultsAndNormalises(t *testing.T) {
	svc := newTestDealerService(newMemDealerRepo(), nil)

	d, err := svc.Create(context.Background(), dealerInput(" ABC Motors ", "ABC@Motors.com", "North", ""))
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if d.ID == "" {
		t.Fatalf("expected ID to be assigned")
	}
	if d.Status != domain.DealerActive {
		t.Fatalf("expected default status ACTIVE, got %s", d.Status)
	}
	if d.Email != "abc@motors.com" || d.Name != "ABC Motors" {
		t.Fatalf("expected normalised fields, got %q %q", d.Name, d.Email)
	}
	if d.IsDeleted {
		t.Fatalf("new dealer must not be deleted")
	}
}

func TestDealerService_Create_Conflict(t *testing.T) {
	svc := newTestDealerService(newMemDealerRepo(), nil)
	ctx := context.Background()

	if _, err := svc.Create(ctx, dealerInput("A", "dup@x.com", "North", "")); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := svc.Create(ctx, dealerInput("B", "DUP@x.com", "West", "")); !errors.Is(err, domain.ErrDealerExists) {
		t.Fatalf("expected ErrDealerExists, got %v", err)
	}
}

func TestDealerService_Create_ReusesEmailOfDeletedDealer(t *testing.T) {
	svc := newTestDealerService(newMemDealerRepo(), nil)
	ctx := context.Background()

	first, _ := svc.Create(ctx, dealerInput("A", "reuse@x.com", "North", ""))
	if err := svc.Remove(ctx, first.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := svc.Create(ctx, dealerInput("B", "reuse@x.com", "North", "")); err != nil {
		t.Fatalf("expected create to succeed, got %v", err)
	}
}

func TestDealerService_Create_Validation(t *testing.T) {
	svc := newTestDealerService(newMemDealerRepo(), nil)

	in := dealerInput("", "x@x.com", " ", "PENDING")
	_, err := svc.Create(context.Background(), in)

	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	fields := map[string]bool{}
	for _, f := range verr.Fields {
		fields[f.Field] = true
	}
	for _, want := range []string{"name", "region", "status"} {
		if !fields[want] {
			t.Errorf("expected field error for %s, got %+v", want, verr.Fields)
		}
	}
}

// ---------------------------------------------------------------------------
// FindOne / Update / Remove
// ---------------------------------------------------------------------------

func TestDealerService_Update_Partial(t *testing.T) {
	svc := newTestDealerService(newMemDealerRepo(), nil)
	ctx := context.Background()
	orig, _ := svc.Create(ctx, dealerInput("ABC Motors", "abc@motors.com", "North", "ACTIVE"))

	inactive := domain.DealerInactive
	updated, err := svc.Update(ctx, orig.ID, domain.DealerPatch{Region: strPtr(" South "), Status: &inactive})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.Region != "South" || updated.Status != domain.DealerInactive {
		t.Fatalf("patched fields not applied: %+v", updated)
	}
	if updated.Name != orig.Name || updated.Email != orig.Email || updated.Phone != orig.Phone ||
		updated.Address != orig.Address || updated.OperatingHours != orig.OperatingHours {
		t.Fatalf("unspecified fields changed: before %+v after %+v", orig, updated)
	}
}

func TestDealerService_Update_EmailConflict(t *testing.T) {
	svc := newTestDealerService(newMemDealerRepo(), nil)
	ctx := context.Background()
	a, _ := svc.Create(ctx, dealerInput("A", "a@x.com", "North", ""))
	_, _ = svc.Create(ctx, dealerInput("B", "b@x.com", "North", ""))

	if _, err := svc.Update(ctx, a.ID, domain.DealerPatch{Email: strPtr("B@x.com")}); !errors.Is(err, domain.ErrDealerExists) {
		t.Fatalf("expected ErrDealerExists, got %v", err)
	}
	if _, err := svc.Update(ctx, a.ID, domain.DealerPatch{Email: strPtr("A@X.com")}); err != nil {
		t.Fatalf("updating to own email should succeed, got %v", err)
	}
}

func TestDealerService_Update_EmptyPatchReturnsCurrent(t *testing.T) {
	svc := newTestDealerService(newMemDealerRepo(), nil)
	ctx := context.Background()
	a, _ := svc.Create(ctx, dealerInput("A", "a@x.com", "North", ""))

	got, err := svc.Update(ctx, a.ID, domain.DealerPatch{})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if !got.UpdatedAt.Equal(a.UpdatedAt) {
		t.Fatalf("empty patch must not touch the record")
	}
}

func TestDealerService_Update_Missing(t *testing.T) {
	svc := newTestDealerService(newMemDealerRepo(), nil)

	if _, err := svc.Update(context.Background(), "nope", domain.DealerPatch{Name: strPtr("x")}); !errors.Is(err, domain.ErrDealerNotFound) {
		t.Fatalf("expected ErrDealerNotFound, got %v", err)
	}
	if _, err := svc.Update(context.Background(), "nope", domain.DealerPatch{Name: strPtr("  ")}); err == nil {
		t.Fatalf("expected validation error for blank name")
	}
}

func TestDealerService_Remove(t *testing.T) {
	audit := &stubAuditRepo{}
	svc := newTestDealerService(newMemDealerRepo(), audit)
	ctx := domain.ContextWithPrincipal(context.Background(), &domain.Principal{UserID: "admin-1", Role: domain.RoleAdmin})
	d, _ := svc.Create(ctx, dealerInput("A", "a@x.com", "North", ""))

	if err := svc.Remove(ctx, d.ID); err != nil {
		t.Fatalf("Remove returned error: %v", err)
	}
	if _, err := svc.FindOne(ctx, d.ID); !errors.Is(err, domain.ErrDealerNotFound) {
		t.Fatalf("expected ErrDealerNotFound after remove, got %v", err)
	}
	if err := svc.Remove(ctx, d.ID); !errors.Is(err, domain.ErrDealerNotFound) {
		t.Fatalf("expected ErrDealerNotFound on second remove, got %v", err)
	}

	if len(audit.entries) != 2 {
		t.Fatalf("expected 2 audit entries, got %d", len(audit.entries))
	}
	last := audit.entries[1]
	if last.Action != domain.AuditRemoved || last.ActorID != "admin-1" || last.DealerID != d.ID {
		t.Fatalf("unexpected audit entry: %+v", last)
	}
}

func TestDealerService_AuditFailureIsNotFatal(t *testing.T) {
	svc := newTestDealerService(newMemDealerRepo(), &stubAuditRepo{err: errors.New("mongo down")})

	if _, err := svc.Create(context.Background(), dealerInput("A", "a@x.com", "North", "")); err != nil {
		t.Fatalf("audit failure must not fail create, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// FindAll
// ---------------------------------------------------------------------------

func TestDealerService_FindAll_PagesCoverSetExactlyOnce(t *testing.T) {
	repo := newMemDealerRepo()
	svc := newTestDealerService(repo, nil)
	ctx := context.Background()

	const n = 23
	for i := 0; i < n; i++ {
		region := "North"
		if i%2 == 0 {
			region = "West"
		}
		if _, err := svc.Create(ctx, dealerInput(fmt.Sprintf("Dealer %02d", i), fmt.Sprintf("d%02d@x.com", i), region, "")); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}

	for _, limit := range []int{1, 5, 10, 23, 50} {
		seen := map[string]int{}
		res, err := svc.FindAll(ctx, ports.ListDealersInput{Limit: limit})
		if err != nil {
			t.Fatalf("FindAll: %v", err)
		}
		wantPages := (n + limit - 1) / limit
		if res.Pages != wantPages || res.Total != n {
			t.Fatalf("limit %d: expected %d pages / %d total, got %d / %d", limit, wantPages, n, res.Pages, res.Total)
		}
		for page := 1; page <= res.Pages; page++ {
			p, err := svc.FindAll(ctx, ports.ListDealersInput{Page: page, Limit: limit})
			if err != nil {
				t.Fatalf("FindAll page %d: %v", page, err)
			}
			for _, d := range p.Dealers {
				seen[d.ID]++
			}
		}
		if len(seen) != n {
			t.Fatalf("limit %d: expected %d distinct dealers, got %d", limit, n, len(seen))
		}
		for id, c := range seen {
			if c != 1 {
				t.Fatalf("limit %d: dealer %s seen %d times", limit, id, c)
			}
		}
	}
}

func TestDealerService_FindAll_FiltersAndSort(t *testing.T) {
	svc := newTestDealerService(newMemDealerRepo(), nil)
	ctx := context.Background()

	_, _ = svc.Create(ctx, dealerInput("ABC Motors", "abc@motors.com", "North", "ACTIVE"))
	_, _ = svc.Create(ctx, dealerInput("XYZ Auto Sales", "xyz@autosales.com", "West", "ACTIVE"))
	_, _ = svc.Create(ctx, dealerInput("Premium Autos", "premium@autos.com", "Central", "INACTIVE"))
	gone, _ := svc.Create(ctx, dealerInput("Gone Autos", "gone@autos.com", "West", "ACTIVE"))
	_ = svc.Remove(ctx, gone.ID)

	res, err := svc.FindAll(ctx, ports.ListDealersInput{Search: "AUTO"})
	if err != nil {
		t.Fatalf("FindAll: %v", err)
	}
	if res.Total != 2 {
		t.Fatalf("expected 2 matches for search, got %d", res.Total)
	}

	res, _ = svc.FindAll(ctx, ports.ListDealersInput{Status: "INACTIVE"})
	if res.Total != 1 || res.Dealers[0].Name != "Premium Autos" {
		t.Fatalf("unexpected status filter result: %+v", res.Dealers)
	}

	res, _ = svc.FindAll(ctx, ports.ListDealersInput{Region: "West"})
	if res.Total != 1 || res.Dealers[0].Name != "XYZ Auto Sales" {
		t.Fatalf("deleted dealers must be excluded, got %+v", res.Dealers)
	}

	res, _ = svc.FindAll(ctx, ports.ListDealersInput{SortBy: "name", SortOrder: "asc"})
	if res.Dealers[0].Name != "ABC Motors" || res.Dealers[2].Name != "XYZ Auto Sales" {
		t.Fatalf("unexpected ascending order: %s .. %s", res.Dealers[0].Name, res.Dealers[2].Name)
	}

	res, _ = svc.FindAll(ctx, ports.ListDealersInput{})
	if res.Dealers[0].Name != "Premium Autos" {
		t.Fatalf("default sort must be newest first, got %s", res.Dealers[0].Name)
	}
	if res.Page != 1 || res.Limit != 10 {
		t.Fatalf("unexpected defaults page=%d limit=%d", res.Page, res.Limit)
	}
}

func TestDealerService_FindAll_RejectsUnknownSortField(t *testing.T) {
	svc := newTestDealerService(newMemDealerRepo(), nil)

	_, err := svc.FindAll(context.Background(), ports.ListDealersInput{SortBy: "password"})
	var verr *domain.ValidationError
	if !errors.As(err, &verr) || verr.Fields[0].Field != "sortBy" {
		t.Fatalf("expected sortBy ValidationError, got %v", err)
	}
}

func TestNormalizeListInput_Clamps(t *testing.T) {
	tests := []struct {
		name      string
		in        ports.ListDealersInput
		wantPage  int
		wantLimit int
		wantOrder ports.SortOrder
	}{
		{"defaults", ports.ListDealersInput{}, 1, 10, ports.SortDesc},
		{"negative page", ports.ListDealersInput{Page: -3, Limit: 5}, 1, 5, ports.SortDesc},
		{"limit capped", ports.ListDealersInput{Page: 2, Limit: 1000}, 2, 100, ports.SortDesc},
		{"asc any case", ports.ListDealersInput{SortOrder: "ASC"}, 1, 10, ports.SortAsc},
		{"unknown order is desc", ports.ListDealersInput{SortOrder: "sideways"}, 1, 10, ports.SortDesc},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := normalizeListInput(tt.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if f.Page != tt.wantPage || f.Limit != tt.wantLimit || f.SortOrder != tt.wantOrder {
				t.Fatalf("got page=%d limit=%d order=%d", f.Page, f.Limit, f.SortOrder)
			}
			if f.SortBy != "createdAt" {
				t.Fatalf("expected default sort field, got %s", f.SortBy)
			}
		})
	}
}

func TestPageCount(t *testing.T) {
	cases := []struct {
		total int64
		limit int
		want  int
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{23, 5, 5},
	}
	for _, c := range cases {
		if got := pageCount(c.total, c.limit); got != c.want {
			t.Errorf("pageCount(%d, %d) = %d, want %d", c.total, c.limit, got, c.want)
		}
	}
}
