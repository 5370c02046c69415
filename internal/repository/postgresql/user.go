package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/assetverse-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/assetverse-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const userColumns = `id, email, role, name, photo, hr_email, company_name, company_logo, joined_date, created_at, updated_at`

type userRepositoryImpl struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) user.UserRepository {
	return &userRepositoryImpl{db: db}
}

func scanUser(row pgx.Row) (user.User, error) {
	var u user.User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Role,
		&u.Name,
		&u.Photo,
		&u.HREmail,
		&u.CompanyName,
		&u.CompanyLogo,
		&u.JoinedDate,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	return u, err
}

// Create implements user.UserRepository.
func (r *userRepositoryImpl) Create(ctx context.Context, newUser user.User) (user.User, bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO users (id, email, role, name, photo, hr_email, company_name, company_logo, joined_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now(), now())
		ON CONFLICT ((lower(email))) DO NOTHING
		RETURNING ` + userColumns

	created, err := scanUser(q.QueryRow(ctx, query,
		newID(),
		newUser.Email,
		newUser.Role,
		newUser.Name,
		newUser.Photo,
		newUser.HREmail,
		newUser.CompanyName,
		newUser.CompanyLogo,
		newUser.JoinedDate,
	))
	if err == nil {
		return created, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return user.User{}, false, database.Unavailable("insert user", err)
	}

	existing, err := r.GetByEmail(ctx, newUser.Email)
	if err != nil {
		return user.User{}, false, err
	}
	return existing, false, nil
}

// GetByEmail implements user.UserRepository.
func (r *userRepositoryImpl) GetByEmail(ctx context.Context, email string) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`
	u, err := scanUser(q.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrUserNotFound
		}
		return user.User{}, database.Unavailable("get user by email", err)
	}
	return u, nil
}

// GetByID implements user.UserRepository.
func (r *userRepositoryImpl) GetByID(ctx context.Context, id string) (user.User, error) {
	if !validID(id) {
		return user.User{}, user.ErrUserNotFound
	}
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := scanUser(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrUserNotFound
		}
		return user.User{}, database.Unavailable("get user by id", err)
	}
	return u, nil
}

// UpdateProfile implements user.UserRepository.
func (r *userRepositoryImpl) UpdateProfile(ctx context.Context, email string, req user.UpdateProfileRequest) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE users
		SET name = COALESCE($1, name),
			photo = COALESCE($2, photo),
			updated_at = now()
		WHERE lower(email) = lower($3)
		RETURNING ` + userColumns

	u, err := scanUser(q.QueryRow(ctx, query, req.Name, req.Photo, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrUserNotFound
		}
		return user.User{}, database.Unavailable("update user profile", err)
	}
	return u, nil
}

func buildUserWhere(filter user.Filter) (string, []interface{}) {
	whereClauses := []string{"TRUE"}
	args := []interface{}{}
	argIdx := 1

	if filter.HREmail != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("lower(hr_email) = lower($%d)", argIdx))
		args = append(args, *filter.HREmail)
		argIdx++
	}
	if filter.Unaffiliated {
		whereClauses = append(whereClauses, "hr_email IS NULL")
	}
	if filter.Role != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("role = $%d", argIdx))
		args = append(args, *filter.Role)
		argIdx++
	}

	return strings.Join(whereClauses, " AND "), args
}

// List implements user.UserRepository.
func (r *userRepositoryImpl) List(ctx context.Context, filter user.Filter) ([]user.User, error) {
	q := GetQuerier(ctx, r.db)

	whereClause, args := buildUserWhere(filter)
	query := fmt.Sprintf(`SELECT %s FROM users WHERE %s ORDER BY created_at ASC, id ASC`, userColumns, whereClause)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, database.Unavailable("list users", err)
	}
	defer rows.Close()

	users := make([]user.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, database.Unavailable("scan user", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, database.Unavailable("list users", err)
	}
	return users, nil
}

// Count implements user.UserRepository.
func (r *userRepositoryImpl) Count(ctx context.Context, filter user.Filter) (int64, error) {
	q := GetQuerier(ctx, r.db)

	whereClause, args := buildUserWhere(filter)
	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE `+whereClause, args...).Scan(&total); err != nil {
		return 0, database.Unavailable("count users", err)
	}
	return total, nil
}

// Affiliate implements user.UserRepository.
func (r *userRepositoryImpl) Affiliate(ctx context.Context, ids []string, aff user.Affiliation) (int64, error) {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if validID(id) {
			valid = append(valid, id)
		}
	}
	if len(valid) == 0 {
		return 0, nil
	}
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE users
		SET hr_email = $1, company_name = $2, company_logo = $3, joined_date = $4, updated_at = now()
		WHERE id = ANY($5::uuid[]) AND role = 'employee' AND hr_email IS NULL
	`
	joined := aff.JoinedDate
	if joined.IsZero() {
		joined = time.Now()
	}
	commandTag, err := q.Exec(ctx, query, aff.HREmail, aff.CompanyName, aff.CompanyLogo, joined, valid)
	if err != nil {
		return 0, database.Unavailable("affiliate users", err)
	}
	return commandTag.RowsAffected(), nil
}

// Unaffiliate implements user.UserRepository.
func (r *userRepositoryImpl) Unaffiliate(ctx context.Context, id string, hrEmail string) error {
	if !validID(id) {
		return user.ErrUserNotFound
	}
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE users
		SET hr_email = NULL, company_name = NULL, company_logo = NULL, joined_date = NULL, updated_at = now()
		WHERE id = $1 AND lower(hr_email) = lower($2)
	`
	commandTag, err := q.Exec(ctx, query, id, hrEmail)
	if err != nil {
		return database.Unavailable("unaffiliate user", err)
	}
	if commandTag.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}
	return nil
}
