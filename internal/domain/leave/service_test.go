package leave

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore mimics the row-lock behavior of the real store: a row read "for
// update" stays locked until the transaction ends, so a concurrent decision on
// the same request blocks and then sees the committed status.
type fakeStore struct {
	mu       sync.Mutex
	requests map[string]LeaveRequest
	balances map[string]LeaveBalance
	rowMu    map[string]*sync.Mutex
	team     map[string]teamMember
}

// teamMember backs the manager-view join the real store does against
// the employees table.
type teamMember struct {
	managerID string
	name      string
	email     string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		requests: make(map[string]LeaveRequest),
		balances: make(map[string]LeaveBalance),
		rowMu:    make(map[string]*sync.Mutex),
		team:     make(map[string]teamMember),
	}
}

type fakeTx struct {
	store *fakeStore
	held  []*sync.Mutex
	done  bool
}

func (t *fakeTx) finish() {
	if t.done {
		return
	}
	t.done = true
	for _, m := range t.held {
		m.Unlock()
	}
	t.held = nil
}

func (t *fakeTx) Commit(ctx context.Context) error   { t.finish(); return nil }
func (t *fakeTx) Rollback(ctx context.Context) error { t.finish(); return nil }

func (s *fakeStore) Begin(ctx context.Context) (Tx, error) {
	return &fakeTx{store: s}, nil
}

func (s *fakeStore) lockRow(tx Tx, key string) {
	s.mu.Lock()
	m, ok := s.rowMu[key]
	if !ok {
		m = &sync.Mutex{}
		s.rowMu[key] = m
	}
	s.mu.Unlock()

	m.Lock()
	ft := tx.(*fakeTx)
	ft.held = append(ft.held, m)
}

func balanceKey(employeeID string, year int) string {
	return fmt.Sprintf("%s|%d", employeeID, year)
}

func (s *fakeStore) InsertRequest(ctx context.Context, req *LeaveRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests[req.ID] = *req
	return nil
}

func (s *fakeStore) GetRequestForUpdate(ctx context.Context, tx Tx, id string) (LeaveRequest, error) {
	s.lockRow(tx, "req:"+id)
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.requests[id]
	if !ok {
		return LeaveRequest{}, ErrRequestNotFound
	}
	return req, nil
}

func (s *fakeStore) MarkApproved(ctx context.Context, tx Tx, id, approverID string, decidedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	req := s.requests[id]
	req.Status = StatusApproved
	req.ApproverID = approverID
	req.ApprovedAt = &decidedAt
	req.UpdatedAt = decidedAt
	s.requests[id] = req
	return nil
}

func (s *fakeStore) MarkRejected(ctx context.Context, tx Tx, id, approverID, reason string, decidedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	req := s.requests[id]
	req.Status = StatusRejected
	req.ApproverID = approverID
	req.RejectionReason = reason
	req.ApprovedAt = &decidedAt
	req.UpdatedAt = decidedAt
	s.requests[id] = req
	return nil
}

func (s *fakeStore) GetBalance(ctx context.Context, employeeID string, year int) (LeaveBalance, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.balances[balanceKey(employeeID, year)]
	return b, ok, nil
}

func (s *fakeStore) GetBalanceForUpdate(ctx context.Context, tx Tx, employeeID string, year int) (LeaveBalance, error) {
	s.lockRow(tx, "bal:"+balanceKey(employeeID, year))
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.balances[balanceKey(employeeID, year)]
	if !ok {
		return LeaveBalance{}, ErrBalanceNotFound
	}
	return b, nil
}

func (s *fakeStore) UpdateBalanceUsed(ctx context.Context, tx Tx, employeeID string, year int, leaveType string, newUsed int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := balanceKey(employeeID, year)
	b := s.balances[key]
	if leaveType == TypeSick {
		b.SickUsed = newUsed
	} else {
		b.AnnualUsed = newUsed
	}
	s.balances[key] = b
	return nil
}

func (s *fakeStore) ListApprovedByEmployee(ctx context.Context, employeeID string) ([]LeaveRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []LeaveRequest
	for _, req := range s.requests {
		if req.EmployeeID == employeeID && req.Status == StatusApproved {
			out = append(out, req)
		}
	}
	return out, nil
}

func (s *fakeStore) HasApprovedOverlap(ctx context.Context, tx Tx, employeeID string, start, end time.Time, excludeID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, req := range s.requests {
		if req.ID == excludeID || req.EmployeeID != employeeID || req.Status != StatusApproved {
			continue
		}
		if RangesOverlap(start, end, req.StartDate, req.EndDate) {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeStore) ListByEmployee(ctx context.Context, employeeID string, limit, offset int) ([]LeaveRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []LeaveRequest
	for _, req := range s.requests {
		if req.EmployeeID == employeeID {
			out = append(out, req)
		}
	}
	sortNewestFirst(out)
	return pageSlice(out, limit, offset), nil
}

func (s *fakeStore) ListByManager(ctx context.Context, managerID string) ([]TeamRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []TeamRequest
	for _, req := range s.requests {
		member, ok := s.team[req.EmployeeID]
		if !ok || member.managerID != managerID {
			continue
		}
		out = append(out, TeamRequest{
			LeaveRequest:  req,
			EmployeeName:  member.name,
			EmployeeEmail: member.email,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func sortNewestFirst(reqs []LeaveRequest) {
	sort.SliceStable(reqs, func(i, j int) bool {
		return reqs[i].CreatedAt.After(reqs[j].CreatedAt)
	})
}

func pageSlice(reqs []LeaveRequest, limit, offset int) []LeaveRequest {
	if offset >= len(reqs) {
		return nil
	}
	reqs = reqs[offset:]
	if limit > 0 && limit < len(reqs) {
		reqs = reqs[:limit]
	}
	return reqs
}

func (s *fakeStore) ReportBalances(ctx context.Context, year int) ([]BalanceSummary, error) {
	return nil, nil
}

type fakeDirectory struct {
	managers map[string]string
}

func (d *fakeDirectory) ManagerOf(ctx context.Context, employeeID string) (string, error) {
	return d.managers[employeeID], nil
}

type sentNote struct {
	To      string
	Subject string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentNote
	fail bool
}

func (n *fakeNotifier) Notify(ctx context.Context, to, subject, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail {
		return fmt.Errorf("smtp unreachable")
	}
	n.sent = append(n.sent, sentNote{To: to, Subject: subject})
	return nil
}

type fixture struct {
	store    *fakeStore
	notifier *fakeNotifier
	svc      *Service
}

func newFixture(managers map[string]string) *fixture {
	store := newFakeStore()
	notifier := &fakeNotifier{}
	svc := NewService(store, &fakeDirectory{managers: managers}, notifier).
		WithClock(func() time.Time { return testNow })
	return &fixture{store: store, notifier: notifier, svc: svc}
}

func (f *fixture) seedPending(id, employeeID, leaveType string, start, end time.Time, days int) {
	f.store.requests[id] = LeaveRequest{
		ID:         id,
		EmployeeID: employeeID,
		LeaveType:  leaveType,
		StartDate:  start,
		EndDate:    end,
		DaysCount:  days,
		Reason:     "seeded",
		Status:     StatusPending,
		CreatedAt:  testNow,
		UpdatedAt:  testNow,
	}
}

func (f *fixture) seedBalance(employeeID string, year, annualTotal, annualUsed, sickTotal, sickUsed int) {
	f.store.balances[balanceKey(employeeID, year)] = LeaveBalance{
		EmployeeID:  employeeID,
		Year:        year,
		AnnualTotal: annualTotal,
		AnnualUsed:  annualUsed,
		SickTotal:   sickTotal,
		SickUsed:    sickUsed,
	}
}

func TestSubmitApproveScenario(t *testing.T) {
	f := newFixture(map[string]string{"emp-1": "mgr-1"})
	f.seedBalance("emp-1", 2025, 20, 10, 10, 0)

	req, err := f.svc.Submit(context.Background(), Candidate{
		EmployeeID: "emp-1",
		LeaveType:  TypeAnnual,
		StartDate:  date(2025, 8, 1),
		EndDate:    date(2025, 8, 5),
		Reason:     "summer vacation",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusPending, req.Status)
	assert.Equal(t, 5, req.DaysCount)

	approved, err := f.svc.Approve(context.Background(), req.ID, "mgr-1")
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, approved.Status)
	assert.Equal(t, "mgr-1", approved.ApproverID)
	require.NotNil(t, approved.ApprovedAt)

	balance, _, _ := f.store.GetBalance(context.Background(), "emp-1", 2025)
	assert.Equal(t, 15, balance.AnnualUsed)

	require.Len(t, f.notifier.sent, 2)
	assert.Equal(t, "mgr-1", f.notifier.sent[0].To) // manager on submission
	assert.Equal(t, "emp-1", f.notifier.sent[1].To) // employee on decision
}

func TestMyRequestsNewestFirstWithPaging(t *testing.T) {
	f := newFixture(nil)
	ids := []string{"req-old", "req-mid", "req-new"}
	for i, id := range ids {
		day := 1 + 2*i
		f.seedPending(id, "emp-1", TypeAnnual, date(2025, 9, day), date(2025, 9, day), 1)
		req := f.store.requests[id]
		req.CreatedAt = testNow.Add(time.Duration(i) * time.Hour)
		f.store.requests[id] = req
	}
	f.seedPending("req-other", "emp-2", TypeAnnual, date(2025, 9, 1), date(2025, 9, 1), 1)

	page, err := f.svc.MyRequests(context.Background(), "emp-1", 2, 0)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "req-new", page[0].ID)
	assert.Equal(t, "req-mid", page[1].ID)

	rest, err := f.svc.MyRequests(context.Background(), "emp-1", 2, 2)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, "req-old", rest[0].ID)
}

func TestTeamRequestsProjectsEmployeeDetails(t *testing.T) {
	f := newFixture(nil)
	f.store.team["emp-1"] = teamMember{managerID: "mgr-1", name: "Sam Ortiz", email: "sam@acme.test"}
	f.store.team["emp-2"] = teamMember{managerID: "mgr-2", name: "Ana Silva", email: "ana@acme.test"}
	f.seedPending("req-1", "emp-1", TypeAnnual, date(2025, 9, 1), date(2025, 9, 2), 2)
	f.seedPending("req-2", "emp-2", TypeSick, date(2025, 9, 3), date(2025, 9, 3), 1)

	got, err := f.svc.TeamRequests(context.Background(), "mgr-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "req-1", got[0].ID)
	assert.Equal(t, "Sam Ortiz", got[0].EmployeeName)
	assert.Equal(t, "sam@acme.test", got[0].EmployeeEmail)
}

func TestConcurrentApprovalsDebitOnce(t *testing.T) {
	f := newFixture(map[string]string{"emp-1": "mgr-1"})
	f.seedBalance("emp-1", 2025, 20, 10, 10, 0)
	f.seedPending("req-1", "emp-1", TypeAnnual, date(2025, 8, 1), date(2025, 8, 5), 5)

	const callers = 8
	errs := make(chan error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Approve(context.Background(), "req-1", "mgr-1")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var succeeded, conflicted int
	for err := range errs {
		switch {
		case err == nil:
			succeeded++
		case err == ErrInvalidTransition:
			conflicted++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, callers-1, conflicted)

	balance, _, _ := f.store.GetBalance(context.Background(), "emp-1", 2025)
	assert.Equal(t, 15, balance.AnnualUsed, "balance must be debited exactly once")
}

func TestApproveInsufficientBalance(t *testing.T) {
	f := newFixture(map[string]string{"emp-1": "mgr-1"})
	f.seedBalance("emp-1", 2025, 20, 18, 10, 0)
	f.seedPending("req-1", "emp-1", TypeAnnual, date(2025, 8, 1), date(2025, 8, 5), 5)

	_, err := f.svc.Approve(context.Background(), "req-1", "mgr-1")
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	balance, _, _ := f.store.GetBalance(context.Background(), "emp-1", 2025)
	assert.Equal(t, 18, balance.AnnualUsed)
	req := f.store.requests["req-1"]
	assert.Equal(t, StatusPending, req.Status)
}

func TestApproveAlreadyDecided(t *testing.T) {
	f := newFixture(map[string]string{"emp-1": "mgr-1"})
	f.seedBalance("emp-1", 2025, 20, 0, 10, 0)
	f.seedPending("req-1", "emp-1", TypeAnnual, date(2025, 8, 1), date(2025, 8, 5), 5)

	_, err := f.svc.Approve(context.Background(), "req-1", "mgr-1")
	require.NoError(t, err)

	before := f.store.requests["req-1"]
	_, err = f.svc.Approve(context.Background(), "req-1", "mgr-1")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, before, f.store.requests["req-1"])

	balance, _, _ := f.store.GetBalance(context.Background(), "emp-1", 2025)
	assert.Equal(t, 5, balance.AnnualUsed)
}

func TestApproveOverlapRejectedOnceFirstIsApproved(t *testing.T) {
	f := newFixture(map[string]string{"emp-1": "mgr-1"})
	f.seedBalance("emp-1", 2025, 30, 0, 10, 0)

	first, err := f.svc.Submit(context.Background(), Candidate{
		EmployeeID: "emp-1", LeaveType: TypeAnnual,
		StartDate: date(2025, 7, 1), EndDate: date(2025, 7, 10), Reason: "trip",
	})
	require.NoError(t, err)

	// Both requests are pending, so the second submission passes validation:
	// the overlap check inspects approved rows only.
	second, err := f.svc.Submit(context.Background(), Candidate{
		EmployeeID: "emp-1", LeaveType: TypeAnnual,
		StartDate: date(2025, 7, 5), EndDate: date(2025, 7, 12), Reason: "extension",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusPending, second.Status)

	_, err = f.svc.Approve(context.Background(), first.ID, "mgr-1")
	require.NoError(t, err)

	_, err = f.svc.Approve(context.Background(), second.ID, "mgr-1")
	assert.ErrorIs(t, err, ErrOverlapsApproved)
	assert.Equal(t, StatusPending, f.store.requests[second.ID].Status)
}

func TestRejectLeavesBalanceUntouched(t *testing.T) {
	f := newFixture(map[string]string{"emp-1": "mgr-1"})
	f.seedBalance("emp-1", 2025, 20, 0, 10, 2)
	f.seedPending("req-1", "emp-1", TypeSick, date(2025, 8, 1), date(2025, 8, 3), 3)

	rejected, err := f.svc.Reject(context.Background(), "req-1", "mgr-1", "coverage gap that week")
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, rejected.Status)
	assert.Equal(t, "coverage gap that week", rejected.RejectionReason)

	balance, _, _ := f.store.GetBalance(context.Background(), "emp-1", 2025)
	assert.Equal(t, 2, balance.SickUsed)
}

func TestRejectRequiresReason(t *testing.T) {
	f := newFixture(map[string]string{"emp-1": "mgr-1"})
	f.seedPending("req-1", "emp-1", TypeSick, date(2025, 8, 1), date(2025, 8, 3), 3)

	_, err := f.svc.Reject(context.Background(), "req-1", "mgr-1", "")
	assert.ErrorIs(t, err, ErrReasonRequired)
	assert.Equal(t, StatusPending, f.store.requests["req-1"].Status)
}

func TestApproveRequiresCurrentManager(t *testing.T) {
	f := newFixture(map[string]string{"emp-1": "mgr-1"})
	f.seedBalance("emp-1", 2025, 20, 0, 10, 0)
	f.seedPending("req-1", "emp-1", TypeAnnual, date(2025, 8, 1), date(2025, 8, 5), 5)

	_, err := f.svc.Approve(context.Background(), "req-1", "mgr-2")
	assert.ErrorIs(t, err, ErrNotManager)

	// No manager on file at all.
	f.seedPending("req-2", "emp-2", TypeUnpaid, date(2025, 8, 1), date(2025, 8, 5), 5)
	_, err = f.svc.Approve(context.Background(), "req-2", "mgr-1")
	assert.ErrorIs(t, err, ErrNotManager)
}

func TestApproveUnknownRequest(t *testing.T) {
	f := newFixture(nil)
	_, err := f.svc.Approve(context.Background(), "missing", "mgr-1")
	assert.ErrorIs(t, err, ErrRequestNotFound)
}

func TestApproveUntrackedTypeSkipsBalance(t *testing.T) {
	f := newFixture(map[string]string{"emp-1": "mgr-1"})
	f.seedPending("req-1", "emp-1", TypeUnpaid, date(2025, 8, 1), date(2025, 8, 5), 5)

	approved, err := f.svc.Approve(context.Background(), "req-1", "mgr-1")
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, approved.Status)
}

func TestSubmitSucceedsWhenNotifierFails(t *testing.T) {
	f := newFixture(map[string]string{"emp-1": "mgr-1"})
	f.seedBalance("emp-1", 2025, 20, 0, 10, 0)
	f.notifier.fail = true

	req, err := f.svc.Submit(context.Background(), Candidate{
		EmployeeID: "emp-1", LeaveType: TypeAnnual,
		StartDate: date(2025, 8, 1), EndDate: date(2025, 8, 5), Reason: "vacation",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusPending, req.Status)
}

func TestSubmitAdvisoryBalanceCheck(t *testing.T) {
	f := newFixture(map[string]string{"emp-1": "mgr-1"})
	f.seedBalance("emp-1", 2025, 20, 18, 10, 0)

	_, err := f.svc.Submit(context.Background(), Candidate{
		EmployeeID: "emp-1", LeaveType: TypeAnnual,
		StartDate: date(2025, 8, 1), EndDate: date(2025, 8, 5), Reason: "vacation",
	})
	require.Error(t, err, "submission flags insufficient balance up front")

	// Unpaid leave has no balance, so the same window is fine.
	req, err := f.svc.Submit(context.Background(), Candidate{
		EmployeeID: "emp-1", LeaveType: TypeUnpaid,
		StartDate: date(2025, 8, 1), EndDate: date(2025, 8, 5), Reason: "unpaid time",
	})
	require.NoError(t, err)
	assert.Equal(t, 5, req.DaysCount)
}
