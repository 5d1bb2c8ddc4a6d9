// Package fakes provides in-memory repositories and a UnitOfWork for tests.
// Rows are stored as copies so callers cannot mutate persisted state by
// accident, and a failed Do restores the state it started from.
package fakes

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/amirasaad/payadvance/pkg/domain"
	"github.com/amirasaad/payadvance/pkg/domain/advance"
	"github.com/amirasaad/payadvance/pkg/domain/disbursement"
	"github.com/amirasaad/payadvance/pkg/domain/events"
	"github.com/amirasaad/payadvance/pkg/domain/notification"
	"github.com/amirasaad/payadvance/pkg/domain/payment"
	"github.com/amirasaad/payadvance/pkg/domain/repayment"
	"github.com/amirasaad/payadvance/pkg/domain/user"
	"github.com/amirasaad/payadvance/pkg/repository"
	advancerepo "github.com/amirasaad/payadvance/pkg/repository/advance"
	disbursementrepo "github.com/amirasaad/payadvance/pkg/repository/disbursement"
	notificationrepo "github.com/amirasaad/payadvance/pkg/repository/notification"
	outboxrepo "github.com/amirasaad/payadvance/pkg/repository/outbox"
	repaymentrepo "github.com/amirasaad/payadvance/pkg/repository/repayment"
	userrepo "github.com/amirasaad/payadvance/pkg/repository/user"
)

type state struct {
	nextID        uint
	advances      map[uint]advance.AdvanceRequest
	disbursements map[uint]disbursement.Disbursement
	repayments    map[uint]repayment.Repayment
	users         map[uint]user.User
	employees     map[uint]user.EmployeeProfile
	employers     map[uint]user.EmployerProfile
	notifications map[uint]notification.Notification
	outbox        []outboxrepo.Message
}

func newState() state {
	return state{
		advances:      map[uint]advance.AdvanceRequest{},
		disbursements: map[uint]disbursement.Disbursement{},
		repayments:    map[uint]repayment.Repayment{},
		users:         map[uint]user.User{},
		employees:     map[uint]user.EmployeeProfile{},
		employers:     map[uint]user.EmployerProfile{},
		notifications: map[uint]notification.Notification{},
	}
}

func (s state) clone() state {
	c := newState()
	c.nextID = s.nextID
	for k, v := range s.advances {
		c.advances[k] = v
	}
	for k, v := range s.disbursements {
		c.disbursements[k] = v
	}
	for k, v := range s.repayments {
		c.repayments[k] = v
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.employees {
		c.employees[k] = v
	}
	for k, v := range s.employers {
		c.employers[k] = v
	}
	for k, v := range s.notifications {
		c.notifications[k] = v
	}
	c.outbox = append([]outboxrepo.Message(nil), s.outbox...)
	return c
}

// Store is the shared in-memory database behind a UoW.
type Store struct {
	mu sync.Mutex
	st state
}

// UoW is an in-memory repository.UnitOfWork.
type UoW struct {
	store *Store
	inTx  bool
	// DoErr, when set, is returned by Do without running fn.
	DoErr error
}

// NewUoW returns a UoW over an empty store.
func NewUoW() *UoW {
	return &UoW{store: &Store{st: newState()}}
}

// Do runs fn; if fn fails the store is rolled back to its state before Do.
func (u *UoW) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	if u.DoErr != nil {
		return u.DoErr
	}
	if u.inTx {
		return fn(u)
	}
	u.store.mu.Lock()
	snapshot := u.store.st.clone()
	u.store.mu.Unlock()

	if err := fn(&UoW{store: u.store, inTx: true}); err != nil {
		u.store.mu.Lock()
		u.store.st = snapshot
		u.store.mu.Unlock()
		return err
	}
	return nil
}

// GetRepository returns the fake registered for repoType.
func (u *UoW) GetRepository(repoType any) (any, error) {
	switch repoType.(type) {
	case *advancerepo.Repository:
		return &advanceRepo{s: u.store}, nil
	case *disbursementrepo.Repository:
		return &disbursementRepo{s: u.store}, nil
	case *repaymentrepo.Repository:
		return &repaymentRepo{s: u.store}, nil
	case *outboxrepo.Repository:
		return &outboxRepo{s: u.store}, nil
	case *userrepo.Repository:
		return &userRepo{s: u.store}, nil
	case *notificationrepo.Repository:
		return &notificationRepo{s: u.store}, nil
	case *userrepo.EmployeeProfileRepository:
		return &employeeRepo{s: u.store}, nil
	case *userrepo.EmployerProfileRepository:
		return &employerRepo{s: u.store}, nil
	}
	return nil, fmt.Errorf("unsupported repository type: %T", repoType)
}

// Outbox returns every recorded message in insertion order.
func (u *UoW) Outbox() []outboxrepo.Message {
	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	return append([]outboxrepo.Message(nil), u.store.st.outbox...)
}

// RecordedTypes returns the event types in the outbox in insertion order.
func (u *UoW) RecordedTypes() []events.EventType {
	var out []events.EventType
	for _, m := range u.Outbox() {
		out = append(out, m.EventType)
	}
	return out
}

// Touch rewinds an entity's UpdatedAt, for stale-entity tests.
func (u *UoW) Touch(kind string, id uint, at time.Time) {
	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	switch kind {
	case "disbursement":
		d := u.store.st.disbursements[id]
		d.UpdatedAt = at
		u.store.st.disbursements[id] = d
	case "repayment":
		r := u.store.st.repayments[id]
		r.UpdatedAt = at
		u.store.st.repayments[id] = r
	}
}

func (s *Store) id() uint {
	s.st.nextID++
	return s.st.nextID
}

var _ repository.UnitOfWork = (*UoW)(nil)

type advanceRepo struct{ s *Store }

func (r *advanceRepo) Create(_ context.Context, a *advance.AdvanceRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a.ID = r.s.id()
	a.Version = 1
	r.s.st.advances[a.ID] = *a
	return nil
}

func (r *advanceRepo) Get(_ context.Context, id uint) (*advance.AdvanceRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.st.advances[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &a, nil
}

func (r *advanceRepo) Update(_ context.Context, a *advance.AdvanceRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.st.advances[a.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if cur.Version != a.Version {
		return domain.ErrConcurrentUpdate
	}
	a.Version++
	r.s.st.advances[a.ID] = *a
	return nil
}

func (r *advanceRepo) ListByEmployee(_ context.Context, employeeID uint) ([]*advance.AdvanceRequest, error) {
	return r.filter(func(a advance.AdvanceRequest) bool { return a.EmployeeID == employeeID }), nil
}

func (r *advanceRepo) ListByStatus(_ context.Context, status advance.Status) ([]*advance.AdvanceRequest, error) {
	return r.filter(func(a advance.AdvanceRequest) bool { return a.Status == status }), nil
}

func (r *advanceRepo) HasOutstanding(_ context.Context, employeeID uint) (bool, error) {
	return len(r.filter(func(a advance.AdvanceRequest) bool {
		return a.EmployeeID == employeeID && a.IsOutstanding()
	})) > 0, nil
}

func (r *advanceRepo) filter(keep func(advance.AdvanceRequest) bool) []*advance.AdvanceRequest {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*advance.AdvanceRequest{}
	for _, a := range r.s.st.advances {
		if keep(a) {
			out = append(out, &a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

type disbursementRepo struct{ s *Store }

func (r *disbursementRepo) Create(_ context.Context, d *disbursement.Disbursement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.st.disbursements {
		if existing.AdvanceRequestID == d.AdvanceRequestID {
			return domain.ErrAlreadyExists
		}
	}
	d.ID = r.s.id()
	d.Version = 1
	r.s.st.disbursements[d.ID] = *d
	return nil
}

func (r *disbursementRepo) Get(_ context.Context, id uint) (*disbursement.Disbursement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.st.disbursements[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &d, nil
}

func (r *disbursementRepo) GetByAdvanceRequest(_ context.Context, advanceRequestID uint) (*disbursement.Disbursement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, d := range r.s.st.disbursements {
		if d.AdvanceRequestID == advanceRequestID {
			return &d, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *disbursementRepo) ListByEmployee(_ context.Context, employeeID uint) ([]*disbursement.Disbursement, error) {
	return r.filter(func(d disbursement.Disbursement) bool { return d.EmployeeID == employeeID }), nil
}

func (r *disbursementRepo) Update(_ context.Context, d *disbursement.Disbursement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.st.disbursements[d.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if cur.Version != d.Version {
		return domain.ErrConcurrentUpdate
	}
	d.Version++
	r.s.st.disbursements[d.ID] = *d
	return nil
}

func (r *disbursementRepo) ListStale(_ context.Context, status payment.Status, before time.Time, limit int) ([]*disbursement.Disbursement, error) {
	out := r.filter(func(d disbursement.Disbursement) bool {
		return d.Status == status && d.UpdatedAt.Before(before)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *disbursementRepo) filter(keep func(disbursement.Disbursement) bool) []*disbursement.Disbursement {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*disbursement.Disbursement{}
	for _, d := range r.s.st.disbursements {
		if keep(d) {
			out = append(out, &d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

type repaymentRepo struct{ s *Store }

func (r *repaymentRepo) Create(_ context.Context, rp *repayment.Repayment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rp.ID = r.s.id()
	rp.Version = 1
	r.s.st.repayments[rp.ID] = *rp
	return nil
}

func (r *repaymentRepo) Get(_ context.Context, id uint) (*repayment.Repayment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rp, ok := r.s.st.repayments[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &rp, nil
}

func (r *repaymentRepo) ListByDisbursement(_ context.Context, disbursementID uint) ([]*repayment.Repayment, error) {
	return r.filter(func(rp repayment.Repayment) bool { return rp.DisbursementID == disbursementID }), nil
}

func (r *repaymentRepo) ListByEmployee(_ context.Context, employeeID uint) ([]*repayment.Repayment, error) {
	return r.filter(func(rp repayment.Repayment) bool { return rp.EmployeeID == employeeID }), nil
}

func (r *repaymentRepo) Update(_ context.Context, rp *repayment.Repayment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.st.repayments[rp.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if cur.Version != rp.Version {
		return domain.ErrConcurrentUpdate
	}
	rp.Version++
	r.s.st.repayments[rp.ID] = *rp
	return nil
}

func (r *repaymentRepo) ListStale(_ context.Context, status payment.Status, before time.Time, limit int) ([]*repayment.Repayment, error) {
	out := r.filter(func(rp repayment.Repayment) bool {
		return rp.Status == status && rp.UpdatedAt.Before(before)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *repaymentRepo) filter(keep func(repayment.Repayment) bool) []*repayment.Repayment {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*repayment.Repayment{}
	for _, rp := range r.s.st.repayments {
		if keep(rp) {
			out = append(out, &rp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

type outboxRepo struct{ s *Store }

func (r *outboxRepo) Add(_ context.Context, env events.Envelope) error {
	topic, err := events.TopicFor(env.EventType)
	if err != nil {
		return err
	}
	data, err := env.Marshal()
	if err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.st.outbox = append(r.s.st.outbox, outboxrepo.Message{
		ID:        r.s.id(),
		EventID:   env.EventID,
		Topic:     topic,
		EventType: env.EventType,
		EntityID:  env.EntityID,
		Envelope:  data,
		CreatedAt: time.Now().UTC(),
	})
	return nil
}

func (r *outboxRepo) Pending(_ context.Context, limit, maxAttempts int) ([]*outboxrepo.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*outboxrepo.Message{}
	for _, m := range r.s.st.outbox {
		if m.DispatchedAt == nil && m.Attempts < maxAttempts && len(out) < limit {
			out = append(out, &m)
		}
	}
	return out, nil
}

func (r *outboxRepo) MarkDispatched(_ context.Context, id uint, at time.Time) error {
	return r.update(id, func(m *outboxrepo.Message) {
		m.Attempts++
		m.DispatchedAt = &at
		m.LastError = ""
	})
}

func (r *outboxRepo) MarkFailed(_ context.Context, id uint, reason string) error {
	return r.update(id, func(m *outboxrepo.Message) {
		m.Attempts++
		m.LastError = reason
	})
}

func (r *outboxRepo) update(id uint, fn func(*outboxrepo.Message)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.st.outbox {
		if r.s.st.outbox[i].ID == id {
			fn(&r.s.st.outbox[i])
			return nil
		}
	}
	return domain.ErrNotFound
}

type userRepo struct{ s *Store }

func (r *userRepo) Create(_ context.Context, u *user.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.st.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return domain.ErrAlreadyExists
		}
	}
	u.ID = r.s.id()
	r.s.st.users[u.ID] = *u
	return nil
}

func (r *userRepo) Get(_ context.Context, id uint) (*user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.st.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.st.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *userRepo) Update(_ context.Context, u *user.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.st.users[u.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.st.users[u.ID] = *u
	return nil
}

func (r *userRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	return err == nil, nil
}

type employeeRepo struct{ s *Store }

func (r *employeeRepo) Create(_ context.Context, p *user.EmployeeProfile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.st.employees[p.UserID]; ok {
		return domain.ErrAlreadyExists
	}
	p.ID = r.s.id()
	r.s.st.employees[p.UserID] = *p
	return nil
}

func (r *employeeRepo) GetByUserID(_ context.Context, userID uint) (*user.EmployeeProfile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.st.employees[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (r *employeeRepo) Update(_ context.Context, p *user.EmployeeProfile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.st.employees[p.UserID]; !ok {
		return domain.ErrNotFound
	}
	r.s.st.employees[p.UserID] = *p
	return nil
}

func (r *employeeRepo) ListByEmployer(_ context.Context, employerID uint) ([]*user.EmployeeProfile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*user.EmployeeProfile{}
	for _, p := range r.s.st.employees {
		if p.EmployerID == employerID {
			out = append(out, &p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type employerRepo struct{ s *Store }

func (r *employerRepo) Create(_ context.Context, p *user.EmployerProfile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.st.employers[p.UserID]; ok {
		return domain.ErrAlreadyExists
	}
	p.ID = r.s.id()
	r.s.st.employers[p.UserID] = *p
	return nil
}

func (r *employerRepo) GetByUserID(_ context.Context, userID uint) (*user.EmployerProfile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.st.employers[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (r *employerRepo) Update(_ context.Context, p *user.EmployerProfile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.st.employers[p.UserID]; !ok {
		return domain.ErrNotFound
	}
	r.s.st.employers[p.UserID] = *p
	return nil
}

var (
	_ advancerepo.Repository             = (*advanceRepo)(nil)
	_ disbursementrepo.Repository        = (*disbursementRepo)(nil)
	_ repaymentrepo.Repository           = (*repaymentRepo)(nil)
	_ outboxrepo.Repository              = (*outboxRepo)(nil)
	_ userrepo.Repository                = (*userRepo)(nil)
	_ userrepo.EmployeeProfileRepository = (*employeeRepo)(nil)
	_ userrepo.EmployerProfileRepository = (*employerRepo)(nil)
)

type notificationRepo struct{ s *Store }

func (r *notificationRepo) Create(_ context.Context, n *notification.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.st.notifications {
		if existing.SourceEventID == n.SourceEventID {
			return domain.ErrAlreadyExists
		}
	}
	n.ID = r.s.id()
	r.s.st.notifications[n.ID] = *n
	return nil
}

func (r *notificationRepo) Get(_ context.Context, id uint) (*notification.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n, ok := r.s.st.notifications[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &n, nil
}

func (r *notificationRepo) ListByUser(_ context.Context, userID uint) ([]*notification.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*notification.Notification{}
	for _, n := range r.s.st.notifications {
		if n.UserID == userID {
			out = append(out, &n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *notificationRepo) MarkRead(_ context.Context, n *notification.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.st.notifications[n.ID]
	if !ok {
		return domain.ErrNotFound
	}
	cur.Read = n.Read
	cur.ReadAt = n.ReadAt
	r.s.st.notifications[n.ID] = cur
	return nil
}

// Notifications returns every stored notification of userID, newest first.
func (u *UoW) Notifications(userID uint) []*notification.Notification {
	list, _ := (&notificationRepo{s: u.store}).ListByUser(context.Background(), userID)
	return list
}
