// Package sequence именованный генератор монотонных счётчиков,
// сгруппированных по периоду (году). Счётчик живет в отдельной строке
// таблицы booking_sequences; инкремент атомарен на уровне БД, поэтому
// параллельные воркеры не получают дубликатов. Счётчик монотонный, но
// не сплошной: значение, выданное несостоявшемуся бронированию,
// остаётся неиспользованным. Вызывать Next внутри сериализуемой
// транзакции нельзя — общая строка счётчика превратит её в точку
// сериализации для независимых в остальном транзакций.
package sequence

import (
	"context"
	"fmt"

	"github.com/m04kA/SMC-OfferingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-OfferingService/pkg/psqlbuilder"
)

// Repository генератор последовательностей
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр генератора последовательностей
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// Next возвращает следующее значение счётчика с именем name за указанный
// год. Первая выдача за (name, year) равна 1.
func (r *Repository) Next(ctx context.Context, name string, year int) (int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("booking_sequences").
		Columns("name", "year", "value").
		Values(name, year, 1).
		Suffix("ON CONFLICT (name, year) DO UPDATE SET value = booking_sequences.value + 1 RETURNING value").
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: Next - build upsert query: %v", ErrBuildQuery, err)
	}

	var value int64
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&value); err != nil {
		return 0, fmt.Errorf("%w: Next - execute upsert: %v", ErrExecQuery, err)
	}

	return value, nil
}
