package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// Session is the unit of atomicity for multi-row ledger writes. Repositories
// given a session run their statements inside its database transaction and
// take row locks on reads. Work registered with AfterCommit runs only once the
// transaction has committed.
type Session struct {
	tx          *gorm.DB
	afterCommit []func(ctx context.Context)
	completed   bool
}

// NewSession wraps an open gorm transaction.
func NewSession(tx *gorm.DB) *Session {
	return &Session{tx: tx}
}

// DB returns the transaction handle.
func (s *Session) DB() *gorm.DB {
	return s.tx
}

// AfterCommit registers fn to run after a successful commit.
func (s *Session) AfterCommit(fn func(ctx context.Context)) {
	s.afterCommit = append(s.afterCommit, fn)
}

// Complete runs the after-commit hooks once.
func (s *Session) Complete(ctx context.Context) {
	if s.completed {
		return
	}
	s.completed = true
	for _, fn := range s.afterCommit {
		fn(ctx)
	}
}

// UnitOfWork opens sessions. Run commits when fn returns nil and rolls back
// otherwise.
type UnitOfWork interface {
	Run(ctx context.Context, fn func(sess *Session) error) error
}

type gormUnitOfWork struct {
	db *gorm.DB
}

func NewUnitOfWork(db *gorm.DB) UnitOfWork {
	return &gormUnitOfWork{db: db}
}

func (u *gormUnitOfWork) Run(ctx context.Context, fn func(sess *Session) error) error {
	var sess *Session
	err := u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sess = NewSession(tx)
		return fn(sess)
	})
	if err != nil {
		return err
	}
	if sess == nil {
		return fmt.Errorf("session was not started")
	}
	sess.Complete(ctx)
	return nil
}
