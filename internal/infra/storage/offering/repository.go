package offering

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-OfferingService/internal/domain"
	"github.com/m04kA/SMC-OfferingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-OfferingService/pkg/psqlbuilder"
)

var offeringColumns = []string{
	"id",
	"name",
	"description",
	"capacity",
	"price",
	"early_bird_price",
	"early_bird_deadline",
	"discount_percent",
	"start_time",
	"state",
	"category",
	"tags",
	"active",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с предложениями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория предложений
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новое предложение в состоянии draft
func (r *Repository) Create(ctx context.Context, o *domain.Offering) (*domain.Offering, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("offerings").
		Columns(
			"name",
			"description",
			"capacity",
			"price",
			"early_bird_price",
			"early_bird_deadline",
			"discount_percent",
			"start_time",
			"state",
			"category",
			"tags",
			"active",
		).
		Values(
			o.Name,
			o.Description,
			o.Capacity,
			o.Price,
			o.EarlyBirdPrice,
			o.EarlyBirdDeadline,
			o.DiscountPercent,
			o.StartTime,
			o.State,
			o.Category,
			pq.Array(o.Tags),
			o.Active,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&o.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	o.CreatedAt = createdAt.Time
	o.UpdatedAt = updatedAt.Time

	return o, nil
}

// GetByID получает предложение по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Offering, error) {
	return r.getByID(ctx, id, false)
}

// GetByIDForUpdate получает предложение по ID с блокировкой строки (FOR UPDATE).
// Блокировка применяется только внутри активной транзакции.
func (r *Repository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Offering, error) {
	return r.getByID(ctx, id, dbmetrics.IsInTransaction(ctx))
}

func (r *Repository) getByID(ctx context.Context, id int64, forUpdate bool) (*domain.Offering, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(offeringColumns...).
		From("offerings").
		Where(squirrel.Eq{"id": id})

	if forUpdate {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	o, err := scanOffering(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrOfferingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan offering: %v", ErrScanRow, err)
	}

	return o, nil
}

// List получает список предложений с фильтрацией.
// Архивные предложения (active=false) по умолчанию исключаются.
func (r *Repository) List(ctx context.Context, filter domain.OfferingsFilter) ([]*domain.Offering, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(offeringColumns...).
		From("offerings").
		OrderBy("start_time ASC, id ASC")

	if filter.State != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"state": *filter.State})
	}
	if filter.Category != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"category": *filter.Category})
	}
	if !filter.IncludeArchived {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"active": true})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: List - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: List - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	offerings := make([]*domain.Offering, 0)
	for rows.Next() {
		o, err := scanOffering(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: List - scan row: %v", ErrScanRow, err)
		}
		offerings = append(offerings, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: List - rows error: %v", ErrScanRow, err)
	}

	return offerings, nil
}

// Update обновляет атрибуты предложения (без смены состояния)
func (r *Repository) Update(ctx context.Context, o *domain.Offering) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("offerings").
		Set("name", o.Name).
		Set("description", o.Description).
		Set("capacity", o.Capacity).
		Set("price", o.Price).
		Set("early_bird_price", o.EarlyBirdPrice).
		Set("early_bird_deadline", o.EarlyBirdDeadline).
		Set("discount_percent", o.DiscountPercent).
		Set("start_time", o.StartTime).
		Set("category", o.Category).
		Set("tags", pq.Array(o.Tags)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": o.ID}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Update - build update query: %v", ErrBuildQuery, err)
	}

	return r.execExpectingRow(ctx, executor, query, args, "Update")
}

// UpdateState обновляет состояние жизненного цикла предложения
func (r *Repository) UpdateState(ctx context.Context, id int64, state domain.OfferingState) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("offerings").
		Set("state", state).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdateState - build update query: %v", ErrBuildQuery, err)
	}

	return r.execExpectingRow(ctx, executor, query, args, "UpdateState")
}

// SetActive переключает архивный флаг предложения
func (r *Repository) SetActive(ctx context.Context, id int64, active bool) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("offerings").
		Set("active", active).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: SetActive - build update query: %v", ErrBuildQuery, err)
	}

	return r.execExpectingRow(ctx, executor, query, args, "SetActive")
}

func (r *Repository) execExpectingRow(ctx context.Context, executor DBExecutor, query string, args []interface{}, op string) error {
	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %s - execute update: %v", ErrExecQuery, op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %v", ErrExecQuery, op, err)
	}

	if rowsAffected == 0 {
		return ErrOfferingNotFound
	}

	return nil
}

// rowScanner покрывает *sql.Row и *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOffering(row rowScanner) (*domain.Offering, error) {
	var o domain.Offering
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&o.ID,
		&o.Name,
		&o.Description,
		&o.Capacity,
		&o.Price,
		&o.EarlyBirdPrice,
		&o.EarlyBirdDeadline,
		&o.DiscountPercent,
		&o.StartTime,
		&o.State,
		&o.Category,
		pq.Array(&o.Tags),
		&o.Active,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	o.CreatedAt = createdAt.Time
	o.UpdatedAt = updatedAt.Time

	return &o, nil
}
