package booking

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-OfferingService/internal/domain"
	"github.com/m04kA/SMC-OfferingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-OfferingService/pkg/psqlbuilder"
)

var bookingColumns = []string{
	"id",
	"code",
	"offering_id",
	"customer_id",
	"requested_date",
	"state",
	"waitlist_position",
	"amount",
	"notes",
	"cancellation_reason",
	"cancelled_at",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с бронированиями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новое бронирование.
// Если в контексте передана активная транзакция, использует её —
// создание всегда выполняется внутри сериализуемой транзакции воркфлоу,
// чтобы присвоение места и позиции в очереди было атомарным.
func (r *Repository) Create(ctx context.Context, b *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("bookings").
		Columns(
			"code",
			"offering_id",
			"customer_id",
			"requested_date",
			"state",
			"waitlist_position",
			"amount",
			"notes",
		).
		Values(
			b.Code,
			b.OfferingID,
			b.CustomerID,
			b.RequestedDate,
			b.State,
			b.WaitlistPosition,
			b.Amount,
			b.Notes,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&b.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	b.CreatedAt = createdAt.Time
	b.UpdatedAt = updatedAt.Time

	return b, nil
}

// GetByID получает бронирование по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	return r.getByID(ctx, id, false)
}

// GetByIDForUpdate получает бронирование по ID с блокировкой строки.
// Блокировка применяется только внутри активной транзакции.
func (r *Repository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Booking, error) {
	return r.getByID(ctx, id, dbmetrics.IsInTransaction(ctx))
}

func (r *Repository) getByID(ctx context.Context, id int64, forUpdate bool) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"id": id})

	if forUpdate {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	b, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan booking: %v", ErrScanRow, err)
	}

	return b, nil
}

// GetByCustomerWithFilter получает бронирования клиента постранично,
// новые записи первыми. Отменённые бронирования по умолчанию скрыты.
func (r *Repository) GetByCustomerWithFilter(ctx context.Context, filter domain.CustomerBookingsFilter) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	page := filter.Page
	if page < 1 {
		page = domain.DefaultPage
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = domain.DefaultPageSize
	}
	if pageSize > domain.MaxPageSize {
		pageSize = domain.MaxPageSize
	}

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"customer_id": filter.CustomerID}).
		OrderBy("created_at DESC, id DESC").
		Limit(uint64(pageSize)).
		Offset(uint64((page - 1) * pageSize))

	selectBuilder = applyStatusFilter(selectBuilder, filter.Status, filter.IncludeInactive)

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByCustomerWithFilter - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByCustomerWithFilter - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// CountByCustomerWithFilter возвращает общее число бронирований клиента
// под тем же фильтром, что и GetByCustomerWithFilter (для пагинации)
func (r *Repository) CountByCustomerWithFilter(ctx context.Context, filter domain.CustomerBookingsFilter) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select("COUNT(*)").
		From("bookings").
		Where(squirrel.Eq{"customer_id": filter.CustomerID})

	selectBuilder = applyStatusFilter(selectBuilder, filter.Status, filter.IncludeInactive)

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: CountByCustomerWithFilter - build select query: %v", ErrBuildQuery, err)
	}

	var count int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: CountByCustomerWithFilter - scan count: %v", ErrScanRow, err)
	}

	return count, nil
}

// GetByOfferingWithFilter получает бронирования предложения.
// Внутри транзакции строки блокируются (FOR UPDATE) — этим запросом
// аллокатор захватывает критическую секцию своего предложения, не
// затрагивая чужие. Порядок: подтверждённые раньше очереди, очередь —
// по позиции, остальное — по времени создания.
func (r *Repository) GetByOfferingWithFilter(ctx context.Context, filter domain.OfferingBookingsFilter) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"offering_id": filter.OfferingID}).
		OrderBy("waitlist_position ASC NULLS FIRST, created_at ASC, id ASC")

	selectBuilder = applyStatusFilter(selectBuilder, filter.Status, filter.IncludeInactive)

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByOfferingWithFilter - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByOfferingWithFilter - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// ExistsActiveByCustomerAndOffering проверяет наличие неотменённого
// бронирования клиента на предложение
func (r *Repository) ExistsActiveByCustomerAndOffering(ctx context.Context, customerID, offeringID int64) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("1").
		From("bookings").
		Where(squirrel.Eq{"customer_id": customerID, "offering_id": offeringID}).
		Where(squirrel.NotEq{"state": domain.BookingCancelled}).
		Limit(1).
		ToSql()

	if err != nil {
		return false, fmt.Errorf("%w: ExistsActiveByCustomerAndOffering - build select query: %v", ErrBuildQuery, err)
	}

	var one int
	err = executor.QueryRowContext(ctx, query, args...).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: ExistsActiveByCustomerAndOffering - scan: %v", ErrScanRow, err)
	}

	return true, nil
}

// CountByOffering возвращает общее число бронирований предложения,
// включая отменённые (используется проверкой resetToDraft)
func (r *Repository) CountByOffering(ctx context.Context, offeringID int64) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("COUNT(*)").
		From("bookings").
		Where(squirrel.Eq{"offering_id": offeringID}).
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: CountByOffering - build select query: %v", ErrBuildQuery, err)
	}

	var count int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: CountByOffering - scan count: %v", ErrScanRow, err)
	}

	return count, nil
}

// UpdateState обновляет состояние бронирования
func (r *Repository) UpdateState(ctx context.Context, id int64, state domain.BookingState) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("state", state).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdateState - build update query: %v", ErrBuildQuery, err)
	}

	return r.execExpectingRow(ctx, executor, query, args, "UpdateState")
}

// Cancel отменяет бронирование: статус, причина, время отмены.
// Позиция в очереди очищается — она имеет смысл только для waitlisted.
// Возвращает время отмены так, как оно сохранено в БД.
func (r *Repository) Cancel(ctx context.Context, id int64, reason *string) (time.Time, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("state", domain.BookingCancelled).
		Set("waitlist_position", nil).
		Set("cancellation_reason", reason).
		Set("cancelled_at", squirrel.Expr("NOW()")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING cancelled_at").
		ToSql()

	if err != nil {
		return time.Time{}, fmt.Errorf("%w: Cancel - build update query: %v", ErrBuildQuery, err)
	}

	var cancelledAt time.Time
	err = executor.QueryRowContext(ctx, query, args...).Scan(&cancelledAt)
	if err == sql.ErrNoRows {
		return time.Time{}, ErrBookingNotFound
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: Cancel - execute update: %v", ErrExecQuery, err)
	}

	return cancelledAt, nil
}

// Promote переводит бронирование из очереди в confirmed с пересчитанной
// суммой; позиция в очереди очищается
func (r *Repository) Promote(ctx context.Context, id int64, amount float64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("state", domain.BookingConfirmed).
		Set("waitlist_position", nil).
		Set("amount", amount).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "state": domain.BookingWaitlisted}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Promote - build update query: %v", ErrBuildQuery, err)
	}

	return r.execExpectingRow(ctx, executor, query, args, "Promote")
}

// ShiftWaitlistPositions сдвигает позиции очереди предложения на единицу
// вниз для всех позиций выше указанной. Вызывается после удаления или
// продвижения элемента очереди, чтобы позиции оставались сплошными 1..N.
func (r *Repository) ShiftWaitlistPositions(ctx context.Context, offeringID int64, abovePosition int) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("waitlist_position", squirrel.Expr("waitlist_position - 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"offering_id": offeringID, "state": domain.BookingWaitlisted}).
		Where(squirrel.Gt{"waitlist_position": abovePosition}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: ShiftWaitlistPositions - build update query: %v", ErrBuildQuery, err)
	}

	// Пустая очередь выше позиции - не ошибка
	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: ShiftWaitlistPositions - execute update: %v", ErrExecQuery, err)
	}

	return nil
}

// Update обновляет редактируемые атрибуты бронирования.
// Amount намеренно не входит: сумма замораживается при размещении.
func (r *Repository) Update(ctx context.Context, b *domain.Booking) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("requested_date", b.RequestedDate).
		Set("notes", b.Notes).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": b.ID}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Update - build update query: %v", ErrBuildQuery, err)
	}

	return r.execExpectingRow(ctx, executor, query, args, "Update")
}

// CancelAllActiveByOffering отменяет все нетерминальные бронирования
// предложения одним запросом. Продвижение очереди не выполняется —
// предложение снимается целиком.
func (r *Repository) CancelAllActiveByOffering(ctx context.Context, offeringID int64, reason string) (int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("state", domain.BookingCancelled).
		Set("waitlist_position", nil).
		Set("cancellation_reason", reason).
		Set("cancelled_at", squirrel.Expr("NOW()")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"offering_id": offeringID}).
		Where(squirrel.Eq{"state": domain.NonTerminalBookingStates}).
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: CancelAllActiveByOffering - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: CancelAllActiveByOffering - execute update: %v", ErrExecQuery, err)
	}

	cancelled, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: CancelAllActiveByOffering - get rows affected: %v", ErrExecQuery, err)
	}

	return cancelled, nil
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
		return ErrBookingNotFound
	}

	return nil
}

func applyStatusFilter(sb squirrel.SelectBuilder, status *domain.BookingState, includeInactive bool) squirrel.SelectBuilder {
	if status != nil {
		return sb.Where(squirrel.Eq{"state": *status})
	}
	if !includeInactive {
		inactive := make([]string, len(domain.InactiveBookingStates))
		for i, s := range domain.InactiveBookingStates {
			inactive[i] = string(s)
		}
		return sb.Where(squirrel.NotEq{"state": inactive})
	}
	return sb
}

// rowScanner покрывает *sql.Row и *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var b domain.Booking
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&b.ID,
		&b.Code,
		&b.OfferingID,
		&b.CustomerID,
		&b.RequestedDate,
		&b.State,
		&b.WaitlistPosition,
		&b.Amount,
		&b.Notes,
		&b.CancellationReason,
		&b.CancelledAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	b.CreatedAt = createdAt.Time
	b.UpdatedAt = updatedAt.Time

	return &b, nil
}

func scanBookings(rows *sql.Rows) ([]*domain.Booking, error) {
	bookings := make([]*domain.Booking, 0)

	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanBookings - scan row: %v", ErrScanRow, err)
		}
		bookings = append(bookings, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanBookings - rows error: %v", ErrScanRow, err)
	}

	return bookings, nil
}
