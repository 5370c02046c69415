package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/assetverse-backend-go/internal/domain/asset"
	"github.com/cmlabs-hris/assetverse-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const assetColumns = `id, hr_email, product_name, product_type, product_quantity, added_date, updated_at`

const (
	pgCheckViolation         = "23514"
	pgNumericValueOutOfRange = "22003"
)

type assetRepositoryImpl struct {
	db *database.DB
}

func NewAssetRepository(db *database.DB) asset.AssetRepository {
	return &assetRepositoryImpl{db: db}
}

func scanAsset(row pgx.Row) (asset.Asset, error) {
	var a asset.Asset
	err := row.Scan(
		&a.ID,
		&a.HREmail,
		&a.ProductName,
		&a.ProductType,
		&a.ProductQuantity,
		&a.AddedDate,
		&a.UpdatedAt,
	)
	return a, err
}

func isCheckViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgCheckViolation
}

func isOutOfRange(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgNumericValueOutOfRange
}

// Create implements asset.AssetRepository.
func (r *assetRepositoryImpl) Create(ctx context.Context, newAsset asset.Asset) (asset.Asset, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO assets (id, hr_email, product_name, product_type, product_quantity, added_date, updated_at)
		VALUES ($1, $2, $3, $4, $5, now(), now())
		RETURNING ` + assetColumns

	created, err := scanAsset(q.QueryRow(ctx, query,
		newID(),
		newAsset.HREmail,
		newAsset.ProductName,
		newAsset.ProductType,
		newAsset.ProductQuantity,
	))
	if err != nil {
		if isCheckViolation(err) {
			return asset.Asset{}, asset.ErrNegativeQuantity
		}
		if isOutOfRange(err) {
			return asset.Asset{}, asset.ErrQuantityTooLarge
		}
		return asset.Asset{}, database.Unavailable("insert asset", err)
	}
	return created, nil
}

// GetByID implements asset.AssetRepository.
func (r *assetRepositoryImpl) GetByID(ctx context.Context, id string) (asset.Asset, error) {
	if !validID(id) {
		return asset.Asset{}, asset.ErrAssetNotFound
	}
	q := GetQuerier(ctx, r.db)

	a, err := scanAsset(q.QueryRow(ctx, `SELECT `+assetColumns+` FROM assets WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return asset.Asset{}, asset.ErrAssetNotFound
		}
		return asset.Asset{}, database.Unavailable("get asset", err)
	}
	return a, nil
}

// List implements asset.AssetRepository.
func (r *assetRepositoryImpl) List(ctx context.Context, filter asset.Filter) ([]asset.Asset, error) {
	q := GetQuerier(ctx, r.db)

	whereClauses := []string{"TRUE"}
	args := []interface{}{}
	argIdx := 1

	if filter.HREmail != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("lower(hr_email) = lower($%d)", argIdx))
		args = append(args, filter.HREmail)
		argIdx++
	}
	// Filter by product name (ILIKE for case-insensitive search)
	if filter.Search != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("product_name ILIKE $%d", argIdx))
		args = append(args, containsPattern(filter.Search))
		argIdx++
	}
	if filter.ProductType != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("product_type = $%d", argIdx))
		args = append(args, *filter.ProductType)
		argIdx++
	}
	if filter.OnlyAvailable {
		whereClauses = append(whereClauses, "product_quantity > 0")
	}
	if filter.BelowQuantity != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("product_quantity < $%d", argIdx))
		args = append(args, *filter.BelowQuantity)
		argIdx++
	}

	orderBy := "added_date ASC, id ASC"
	if filter.SortBy == asset.SortByQuantity {
		orderBy = "product_quantity DESC, added_date ASC, id ASC"
	}

	query := fmt.Sprintf(`SELECT %s FROM assets WHERE %s ORDER BY %s`, assetColumns, strings.Join(whereClauses, " AND "), orderBy)
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, filter.Limit)
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, database.Unavailable("list assets", err)
	}
	defer rows.Close()

	assets := make([]asset.Asset, 0)
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, database.Unavailable("scan asset", err)
		}
		assets = append(assets, a)
	}
	if err := rows.Err(); err != nil {
		return nil, database.Unavailable("list assets", err)
	}
	return assets, nil
}

// CountByType implements asset.AssetRepository.
func (r *assetRepositoryImpl) CountByType(ctx context.Context, hrEmail string) (map[asset.ProductType]int64, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT product_type, COUNT(*)
		FROM assets
		WHERE lower(hr_email) = lower($1)
		GROUP BY product_type
	`
	rows, err := q.Query(ctx, query, hrEmail)
	if err != nil {
		return nil, database.Unavailable("count assets by type", err)
	}
	defer rows.Close()

	counts := make(map[asset.ProductType]int64)
	for rows.Next() {
		var productType asset.ProductType
		var count int64
		if err := rows.Scan(&productType, &count); err != nil {
			return nil, database.Unavailable("scan asset count", err)
		}
		counts[productType] = count
	}
	if err := rows.Err(); err != nil {
		return nil, database.Unavailable("count assets by type", err)
	}
	return counts, nil
}

// Update implements asset.AssetRepository.
func (r *assetRepositoryImpl) Update(ctx context.Context, id string, patch asset.Patch) (asset.Asset, error) {
	if !validID(id) {
		return asset.Asset{}, asset.ErrAssetNotFound
	}
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE assets
		SET product_name = COALESCE($1, product_name),
			product_type = COALESCE($2, product_type),
			product_quantity = COALESCE($3, product_quantity),
			updated_at = now()
		WHERE id = $4
		RETURNING ` + assetColumns

	a, err := scanAsset(q.QueryRow(ctx, query, patch.ProductName, patch.ProductType, patch.ProductQuantity, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return asset.Asset{}, asset.ErrAssetNotFound
		}
		if isCheckViolation(err) {
			return asset.Asset{}, asset.ErrNegativeQuantity
		}
		if isOutOfRange(err) {
			return asset.Asset{}, asset.ErrQuantityTooLarge
		}
		return asset.Asset{}, database.Unavailable("update asset", err)
	}
	return a, nil
}

// Delete implements asset.AssetRepository.
func (r *assetRepositoryImpl) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return asset.ErrAssetNotFound
	}
	q := GetQuerier(ctx, r.db)

	commandTag, err := q.Exec(ctx, `DELETE FROM assets WHERE id = $1`, id)
	if err != nil {
		return database.Unavailable("delete asset", err)
	}
	if commandTag.RowsAffected() == 0 {
		return asset.ErrAssetNotFound
	}
	return nil
}

// AdjustQuantity implements asset.AssetRepository.
// A keyed adjustment records its key and changes the quantity in one transaction.
func (r *assetRepositoryImpl) AdjustQuantity(ctx context.Context, adj asset.Adjustment) (asset.Asset, error) {
	if !validID(adj.AssetID) {
		return asset.Asset{}, asset.ErrAssetNotFound
	}
	if adj.Key == "" {
		return r.adjust(ctx, adj)
	}

	var adjusted asset.Asset
	err := WithTransaction(ctx, r.db, func(ctx context.Context) error {
		q := GetQuerier(ctx, r.db)

		commandTag, err := q.Exec(ctx, `
			INSERT INTO inventory_adjustments (adjustment_key, asset_id, delta)
			VALUES ($1, $2, $3)
			ON CONFLICT (adjustment_key) DO NOTHING`,
			adj.Key, adj.AssetID, adj.Delta,
		)
		if err != nil {
			return database.Unavailable("record inventory adjustment", err)
		}
		if commandTag.RowsAffected() == 0 {
			return asset.ErrAdjustmentApplied
		}

		adjusted, err = r.adjust(ctx, adj)
		return err
	})
	if err != nil {
		return asset.Asset{}, err
	}
	return adjusted, nil
}

func (r *assetRepositoryImpl) adjust(ctx context.Context, adj asset.Adjustment) (asset.Asset, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE assets
		SET product_quantity = product_quantity + $1, updated_at = now()
		WHERE id = $2 AND product_quantity + $1 >= 0
		RETURNING ` + assetColumns

	a, err := scanAsset(q.QueryRow(ctx, query, adj.Delta, adj.AssetID))
	if err == nil {
		return a, nil
	}
	if isOutOfRange(err) {
		return asset.Asset{}, asset.ErrQuantityTooLarge
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return asset.Asset{}, database.Unavailable("adjust asset quantity", err)
	}

	// No row matched: either the asset is gone or the guard refused.
	var exists bool
	if err := q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM assets WHERE id = $1)`, adj.AssetID).Scan(&exists); err != nil {
		return asset.Asset{}, database.Unavailable("check asset exists", err)
	}
	if !exists {
		return asset.Asset{}, asset.ErrAssetNotFound
	}
	return asset.Asset{}, asset.ErrInventoryExhausted
}

// ReleaseAdjustment implements asset.AssetRepository.
func (r *assetRepositoryImpl) ReleaseAdjustment(ctx context.Context, assetID string, key string) error {
	q := GetQuerier(ctx, r.db)

	if _, err := q.Exec(ctx, `DELETE FROM inventory_adjustments WHERE adjustment_key = $1`, key); err != nil {
		return database.Unavailable("release inventory adjustment", err)
	}
	return nil
}
