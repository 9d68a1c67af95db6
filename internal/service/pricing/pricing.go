// Package pricing чистое вычисление применимой цены предложения.
// Без состояния и побочных эффектов: результат детерминирован по входу.
package pricing

import (
	"time"

	"github.com/m04kA/SMC-OfferingService/internal/domain"
)

// ApplicablePrice возвращает цену предложения на момент asOf.
//
// Прецедентность правил:
//  1. Ранняя цена, если она задана и asOf не позже дедлайна.
//  2. Скидка в процентах от базовой цены, если задана.
//  3. Базовая цена.
//
// Сумма бронирования вычисляется один раз - в момент, когда аллокатор
// присваивает бронированию состояние, с requested_date в роли asOf -
// и после этого замораживается.
func ApplicablePrice(o *domain.Offering, asOf time.Time) float64 {
	if o.HasEarlyBird() && !asOf.After(*o.EarlyBirdDeadline) {
		return *o.EarlyBirdPrice
	}

	if o.HasDiscount() {
		return o.Price * (1 - *o.DiscountPercent/100)
	}

	return o.Price
}
