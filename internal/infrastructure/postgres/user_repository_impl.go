package postgres

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/user-management-api/internal/domain/entity"
	"github.com/oksasatya/user-management-api/internal/domain/repository"
)

const uniqueViolation = "23505"

const userColumns = `id, name, email, password_hash, role, phone_number, address, profile_picture, created_at, updated_at`

var sortColumns = map[string]string{
	repository.SortCreatedAt: "created_at",
	repository.SortUpdatedAt: "updated_at",
	repository.SortName:      "name",
	repository.SortEmail:     "email",
	repository.SortRole:      "role",
}

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func (r *UserRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (name, email, password_hash, role, phone_number, address, profile_picture)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`, u.Name, u.Email, u.Password, string(u.Role), u.PhoneNumber, u.Address, u.ProfilePicture)

	if err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return mapErr(err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	if !r.ValidID(id) {
		return nil, repository.ErrNotFound
	}
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	row := r.pool.QueryRow(ctx, `
		UPDATE users
		SET name = $1, email = $2, password_hash = $3, role = $4, phone_number = $5,
		    address = $6, profile_picture = $7, updated_at = now()
		WHERE id = $8
		RETURNING created_at, updated_at
	`, u.Name, u.Email, u.Password, string(u.Role), u.PhoneNumber, u.Address, u.ProfilePicture, u.ID)

	if err := row.Scan(&u.CreatedAt, &u.UpdatedAt); err != nil {
		return mapErr(err)
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	if !r.ValidID(id) {
		return repository.ErrNotFound
	}
	res, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) List(ctx context.Context, f repository.ListFilter) ([]entity.User, int64, error) {
	var (
		conds []string
		args  []any
	)
	if f.Role != "" {
		args = append(args, string(f.Role))
		conds = append(conds, "role = $"+strconv.Itoa(len(args)))
	}
	if f.Search != "" {
		args = append(args, "%"+escapeLike(f.Search)+"%")
		conds = append(conds, "name ILIKE $"+strconv.Itoa(len(args)))
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM users`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	if f.OutOfRange() {
		return []entity.User{}, total, nil
	}

	col, ok := sortColumns[f.SortBy]
	if !ok {
		col = "created_at"
	}
	dir := "ASC"
	if f.Desc {
		dir = "DESC"
	}
	args = append(args, f.Limit, f.Offset)
	q := `SELECT ` + userColumns + ` FROM users` + where +
		` ORDER BY ` + col + ` ` + dir + `, id ` + dir +
		` LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	users := make([]entity.User, 0, f.Limit)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, *u)
	}
	return users, total, rows.Err()
}

func scanUser(row pgx.Row) (*entity.User, error) {
	u := &entity.User{}
	var role string
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Password, &role, &u.PhoneNumber,
		&u.Address, &u.ProfilePicture, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, mapErr(err)
	}
	u.Role = entity.Role(role)
	return u, nil
}

func mapErr(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return repository.ErrDuplicateEmail
	}
	return err
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

var _ repository.UserRepository = (*UserRepository)(nil)
