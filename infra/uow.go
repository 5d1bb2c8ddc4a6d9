package infra

import (
	"context"
	"fmt"
	"reflect"

	advancegorm "github.com/amirasaad/payadvance/infra/repository/advance"
	disbursementgorm "github.com/amirasaad/payadvance/infra/repository/disbursement"
	notificationgorm "github.com/amirasaad/payadvance/infra/repository/notification"
	outboxgorm "github.com/amirasaad/payadvance/infra/repository/outbox"
	repaymentgorm "github.com/amirasaad/payadvance/infra/repository/repayment"
	usergorm "github.com/amirasaad/payadvance/infra/repository/user"
	"github.com/amirasaad/payadvance/pkg/repository"
	advancerepo "github.com/amirasaad/payadvance/pkg/repository/advance"
	disbursementrepo "github.com/amirasaad/payadvance/pkg/repository/disbursement"
	notificationrepo "github.com/amirasaad/payadvance/pkg/repository/notification"
	outboxrepo "github.com/amirasaad/payadvance/pkg/repository/outbox"
	repaymentrepo "github.com/amirasaad/payadvance/pkg/repository/repayment"
	userrepo "github.com/amirasaad/payadvance/pkg/repository/user"
	"gorm.io/gorm"
)

type repoConstructor func(*gorm.DB) any

// UoW provides transaction boundary and repository access in one abstraction.
// Every repository handed out inside Do shares the transaction.
type UoW struct {
	db           *gorm.DB
	tx           *gorm.DB
	repoRegistry map[reflect.Type]repoConstructor
}

// NewUoW creates a new UoW for the given *gorm.DB.
func NewUoW(db *gorm.DB) *UoW {
	return &UoW{
		db: db,
		repoRegistry: map[reflect.Type]repoConstructor{
			typeKey((*advancerepo.Repository)(nil)):             func(db *gorm.DB) any { return advancegorm.New(db) },
			typeKey((*disbursementrepo.Repository)(nil)):        func(db *gorm.DB) any { return disbursementgorm.New(db) },
			typeKey((*repaymentrepo.Repository)(nil)):           func(db *gorm.DB) any { return repaymentgorm.New(db) },
			typeKey((*outboxrepo.Repository)(nil)):              func(db *gorm.DB) any { return outboxgorm.New(db) },
			typeKey((*userrepo.Repository)(nil)):                func(db *gorm.DB) any { return usergorm.New(db) },
			typeKey((*userrepo.EmployeeProfileRepository)(nil)): func(db *gorm.DB) any { return usergorm.NewEmployeeProfile(db) },
			typeKey((*userrepo.EmployerProfileRepository)(nil)): func(db *gorm.DB) any { return usergorm.NewEmployerProfile(db) },
			typeKey((*notificationrepo.Repository)(nil)):        func(db *gorm.DB) any { return notificationgorm.New(db) },
		},
	}
}

// Do runs fn in a transaction. An error from fn rolls everything back.
func (u *UoW) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	if u.tx != nil {
		return fn(u)
	}
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&UoW{db: u.db, tx: tx, repoRegistry: u.repoRegistry})
	})
}

// GetRepository returns the repository registered for repoType, a nil
// pointer to a repository interface. Outside Do it is bound to the pool.
func (u *UoW) GetRepository(repoType any) (any, error) {
	constructor, ok := u.repoRegistry[typeKey(repoType)]
	if !ok {
		return nil, fmt.Errorf("unsupported repository type: %T", repoType)
	}
	if u.tx != nil {
		return constructor(u.tx), nil
	}
	return constructor(u.db), nil
}

func typeKey(repoType any) reflect.Type {
	t := reflect.TypeOf(repoType)
	if t != nil && t.Kind() == reflect.Pointer {
		return t.Elem()
	}
	return t
}

var _ repository.UnitOfWork = (*UoW)(nil)
