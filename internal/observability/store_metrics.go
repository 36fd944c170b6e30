package observability

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/oksasatya/user-management-api/internal/domain/entity"
	"github.com/oksasatya/user-management-api/internal/domain/repository"
)

func (p *Prom) ObserveStore(op string, fn func() error) error {
	start := time.Now()
	err := fn()

	status := "ok"
	if err != nil && !isExpected(err) {
		status = "error"
		p.StoreErrors.WithLabelValues(op, classifyStoreErr(err)).Inc()
	}
	p.StoreOpDuration.WithLabelValues(op, status).Observe(time.Since(start).Seconds())
	return err
}

// not-found and duplicate are domain outcomes, not store failures
func isExpected(err error) bool {
	return errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrDuplicateEmail)
}

func classifyStoreErr(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001":
			return "serialization_failure"
		case "40P01":
			return "deadlock"
		case "57014":
			return "query_canceled"
		default:
			return "pg_" + pgErr.Code
		}
	}
	if mongo.IsTimeout(err) || errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	if mongo.IsNetworkError(err) {
		return "connection"
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline"):
		return "timeout"
	case strings.Contains(msg, "connection"):
		return "connection"
	default:
		return "unknown"
	}
}

// InstrumentedUsers decorates a UserRepository with store metrics.
type InstrumentedUsers struct {
	next repository.UserRepository
	prom *Prom
}

func InstrumentUsers(next repository.UserRepository, p *Prom) repository.UserRepository {
	if p == nil {
		return next
	}
	return &InstrumentedUsers{next: next, prom: p}
}

func (r *InstrumentedUsers) ValidID(id string) bool { return r.next.ValidID(id) }

func (r *InstrumentedUsers) Ping(ctx context.Context) error {
	return r.prom.ObserveStore("ping", func() error { return r.next.Ping(ctx) })
}

func (r *InstrumentedUsers) Create(ctx context.Context, u *entity.User) error {
	return r.prom.ObserveStore("create", func() error { return r.next.Create(ctx, u) })
}

func (r *InstrumentedUsers) GetByID(ctx context.Context, id string) (u *entity.User, err error) {
	err = r.prom.ObserveStore("get_by_id", func() error {
		u, err = r.next.GetByID(ctx, id)
		return err
	})
	return u, err
}

func (r *InstrumentedUsers) GetByEmail(ctx context.Context, email string) (u *entity.User, err error) {
	err = r.prom.ObserveStore("get_by_email", func() error {
		u, err = r.next.GetByEmail(ctx, email)
		return err
	})
	return u, err
}

func (r *InstrumentedUsers) Update(ctx context.Context, u *entity.User) error {
	return r.prom.ObserveStore("update", func() error { return r.next.Update(ctx, u) })
}

func (r *InstrumentedUsers) Delete(ctx context.Context, id string) error {
	return r.prom.ObserveStore("delete", func() error { return r.next.Delete(ctx, id) })
}

func (r *InstrumentedUsers) List(ctx context.Context, f repository.ListFilter) (users []entity.User, total int64, err error) {
	err = r.prom.ObserveStore("list", func() error {
		users, total, err = r.next.List(ctx, f)
		return err
	})
	return users, total, err
}

var _ repository.UserRepository = (*InstrumentedUsers)(nil)
