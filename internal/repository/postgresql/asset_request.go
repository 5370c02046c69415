package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/assetverse-backend-go/internal/domain/assetrequest"
	"github.com/cmlabs-hris/assetverse-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const requestColumns = `id, asset_id, hr_email, user_email, user_name, product_name, product_type, status, note,
	request_date, approval_date, return_date, pending_adjustment, updated_at`

type requestRepositoryImpl struct {
	db *database.DB
}

func NewRequestRepository(db *database.DB) assetrequest.RequestRepository {
	return &requestRepositoryImpl{db: db}
}

func scanRequest(row pgx.Row) (assetrequest.Request, error) {
	var req assetrequest.Request
	err := row.Scan(
		&req.ID,
		&req.AssetID,
		&req.HREmail,
		&req.UserEmail,
		&req.UserName,
		&req.ProductName,
		&req.ProductType,
		&req.Status,
		&req.Note,
		&req.RequestDate,
		&req.ApprovalDate,
		&req.ReturnDate,
		&req.PendingAdjustment,
		&req.UpdatedAt,
	)
	return req, err
}

func collectRequests(rows pgx.Rows, op string) ([]assetrequest.Request, error) {
	defer rows.Close()

	requests := make([]assetrequest.Request, 0)
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, database.Unavailable("scan request", err)
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, database.Unavailable(op, err)
	}
	return requests, nil
}

// Create implements assetrequest.RequestRepository.
func (r *requestRepositoryImpl) Create(ctx context.Context, newRequest assetrequest.Request) (assetrequest.Request, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO asset_requests (
			id, asset_id, hr_email, user_email, user_name,
			product_name, product_type, status, note,
			request_date, pending_adjustment, updated_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9,
			COALESCE($10, now()), 0, now()
		)
		RETURNING ` + requestColumns

	var requestDate interface{}
	if !newRequest.RequestDate.IsZero() {
		requestDate = newRequest.RequestDate
	}

	created, err := scanRequest(q.QueryRow(ctx, query,
		newID(),
		newRequest.AssetID,
		newRequest.HREmail,
		newRequest.UserEmail,
		newRequest.UserName,
		newRequest.ProductName,
		newRequest.ProductType,
		newRequest.Status,
		newRequest.Note,
		requestDate,
	))
	if err != nil {
		return assetrequest.Request{}, database.Unavailable("insert request", err)
	}
	return created, nil
}

// GetByID implements assetrequest.RequestRepository.
func (r *requestRepositoryImpl) GetByID(ctx context.Context, id string) (assetrequest.Request, error) {
	if !validID(id) {
		return assetrequest.Request{}, assetrequest.ErrRequestNotFound
	}
	q := GetQuerier(ctx, r.db)

	req, err := scanRequest(q.QueryRow(ctx, `SELECT `+requestColumns+` FROM asset_requests WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return assetrequest.Request{}, assetrequest.ErrRequestNotFound
		}
		return assetrequest.Request{}, database.Unavailable("get request", err)
	}
	return req, nil
}

func buildRequestWhere(filter assetrequest.Filter) (string, []interface{}, int) {
	whereClauses := []string{"TRUE"}
	args := []interface{}{}
	argIdx := 1

	if filter.HREmail != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("lower(hr_email) = lower($%d)", argIdx))
		args = append(args, filter.HREmail)
		argIdx++
	}
	if filter.UserEmail != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("lower(user_email) = lower($%d)", argIdx))
		args = append(args, filter.UserEmail)
		argIdx++
	}
	if filter.RequesterSearch != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("(user_email ILIKE $%d OR user_name ILIKE $%d)", argIdx, argIdx))
		args = append(args, containsPattern(filter.RequesterSearch))
		argIdx++
	}
	if filter.ProductSearch != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("product_name ILIKE $%d", argIdx))
		args = append(args, containsPattern(filter.ProductSearch))
		argIdx++
	}
	if filter.Status != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, *filter.Status)
		argIdx++
	}
	if filter.ProductType != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("product_type = $%d", argIdx))
		args = append(args, *filter.ProductType)
		argIdx++
	}
	if filter.RequestedFrom != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("request_date >= $%d", argIdx))
		args = append(args, *filter.RequestedFrom)
		argIdx++
	}
	if filter.RequestedTo != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("request_date < $%d", argIdx))
		args = append(args, *filter.RequestedTo)
		argIdx++
	}

	return strings.Join(whereClauses, " AND "), args, argIdx
}

// List implements assetrequest.RequestRepository.
func (r *requestRepositoryImpl) List(ctx context.Context, filter assetrequest.Filter) ([]assetrequest.Request, error) {
	q := GetQuerier(ctx, r.db)

	whereClause, args, argIdx := buildRequestWhere(filter)
	query := fmt.Sprintf(`SELECT %s FROM asset_requests WHERE %s ORDER BY request_date DESC, id DESC`, requestColumns, whereClause)
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, filter.Limit)
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, database.Unavailable("list requests", err)
	}
	return collectRequests(rows, "list requests")
}

// Count implements assetrequest.RequestRepository.
func (r *requestRepositoryImpl) Count(ctx context.Context, filter assetrequest.Filter) (int64, error) {
	q := GetQuerier(ctx, r.db)

	whereClause, args, _ := buildRequestWhere(filter)
	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM asset_requests WHERE `+whereClause, args...).Scan(&total); err != nil {
		return 0, database.Unavailable("count requests", err)
	}
	return total, nil
}

// Transition implements assetrequest.RequestRepository.
func (r *requestRepositoryImpl) Transition(ctx context.Context, t assetrequest.Transition) (assetrequest.Request, bool, error) {
	if !validID(t.ID) {
		return assetrequest.Request{}, false, assetrequest.ErrRequestNotFound
	}
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE asset_requests
		SET status = $1,
			approval_date = CASE WHEN $2::boolean THEN NULL ELSE COALESCE($3, approval_date) END,
			return_date = COALESCE($4, return_date),
			pending_adjustment = $5,
			updated_at = now()
		WHERE id = $6 AND status = $7 AND ($8::integer IS NULL OR pending_adjustment = $8)
		RETURNING ` + requestColumns

	req, err := scanRequest(q.QueryRow(ctx, query,
		t.To,
		t.ResetApprovalDate,
		t.ApprovalDate,
		t.ReturnDate,
		t.Adjustment,
		t.ID,
		t.From,
		t.MatchAdjustment,
	))
	if err == nil {
		return req, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return assetrequest.Request{}, false, database.Unavailable("transition request", err)
	}

	// Preconditions no longer hold; report the stored state.
	current, err := r.GetByID(ctx, t.ID)
	if err != nil {
		return assetrequest.Request{}, false, err
	}
	return current, false, nil
}

// DeletePending implements assetrequest.RequestRepository.
func (r *requestRepositoryImpl) DeletePending(ctx context.Context, id string, userEmail string) (bool, error) {
	if !validID(id) {
		return false, nil
	}
	q := GetQuerier(ctx, r.db)

	query := `
		DELETE FROM asset_requests
		WHERE id = $1 AND lower(user_email) = lower($2) AND status = $3
	`
	commandTag, err := q.Exec(ctx, query, id, userEmail, assetrequest.StatusPending)
	if err != nil {
		return false, database.Unavailable("delete pending request", err)
	}
	return commandTag.RowsAffected() == 1, nil
}

// ClearPendingAdjustment implements assetrequest.RequestRepository.
func (r *requestRepositoryImpl) ClearPendingAdjustment(ctx context.Context, id string, expected int) (bool, error) {
	if !validID(id) {
		return false, nil
	}
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE asset_requests
		SET pending_adjustment = 0, updated_at = now()
		WHERE id = $1 AND pending_adjustment = $2
	`
	commandTag, err := q.Exec(ctx, query, id, expected)
	if err != nil {
		return false, database.Unavailable("clear pending adjustment", err)
	}
	return commandTag.RowsAffected() == 1, nil
}

// ListPendingAdjustments implements assetrequest.RequestRepository.
func (r *requestRepositoryImpl) ListPendingAdjustments(ctx context.Context, limit int) ([]assetrequest.Request, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + requestColumns + ` FROM asset_requests WHERE pending_adjustment <> 0 ORDER BY updated_at ASC`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, database.Unavailable("list pending adjustments", err)
	}
	return collectRequests(rows, "list pending adjustments")
}

// CountOutstanding implements assetrequest.RequestRepository.
func (r *requestRepositoryImpl) CountOutstanding(ctx context.Context, assetID string) (int64, error) {
	if !validID(assetID) {
		return 0, nil
	}
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT COUNT(*)
		FROM asset_requests
		WHERE asset_id = $1
		  AND (status = 'Pending'
		       OR (status = 'Approved' AND product_type = 'Returnable')
		       OR pending_adjustment <> 0)
	`
	var total int64
	if err := q.QueryRow(ctx, query, assetID).Scan(&total); err != nil {
		return 0, database.Unavailable("count outstanding requests", err)
	}
	return total, nil
}
