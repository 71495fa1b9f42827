package models

import "time"

// Статусы платёжной сессии. Переходы допускаются только вперёд:
// created → pending → processing → {paid, declined, canceled};
// unknown достижим из pending/processing по ответу шлюза и остаётся
// неттерминальным — такую сессию можно верифицировать повторно.
const (
	StatusCreated    = "created"
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusUnknown    = "unknown"
	StatusPaid       = "paid"
	StatusDeclined   = "declined"
	StatusCanceled   = "canceled"
)

// Способы оплаты, поддерживаемые симулятором.
const (
	MethodCard   = "card"
	MethodPix    = "pix"
	MethodBoleto = "boleto"
)

// statusRank задаёт порядок статусов для проверки "только вперёд".
var statusRank = map[string]int{
	StatusCreated:    0,
	StatusPending:    1,
	StatusProcessing: 2,
	StatusUnknown:    3,
	StatusPaid:       4,
	StatusDeclined:   4,
	StatusCanceled:   4,
}

// Payment представляет платёжную сессию — одну попытку оплаты,
// привязанную к внешнему идентификатору checkout-сессии.
type Payment struct {
	ID                int       `json:"id"`
	AccountUID        string    `json:"account_uid"`
	CheckoutSessionID string    `json:"checkout_session_id"` // Внешняя ссылка, ключ идемпотентности
	Status            string    `json:"status"`
	Amount            int64     `json:"amount"` // В минимальных единицах валюты
	Currency          string    `json:"currency"`
	Provider          string    `json:"provider"`
	Method            string    `json:"method"`
	FailReason        string    `json:"fail_reason,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// IsTerminal сообщает, достигла ли сессия терминального статуса.
// Терминальная сессия неизменяема.
func (p *Payment) IsTerminal() bool {
	return IsTerminalStatus(p.Status)
}

// IsTerminalStatus проверяет статус на терминальность.
func IsTerminalStatus(status string) bool {
	return status == StatusPaid || status == StatusDeclined || status == StatusCanceled
}

// StatusRank возвращает позицию статуса в порядке жизненного цикла
// и false для неизвестного значения.
func StatusRank(status string) (int, bool) {
	r, ok := statusRank[status]
	return r, ok
}

// CanTransition проверяет, допустим ли переход из статуса from в to.
// Переходы в прошлое и любые переходы из терминального статуса запрещены.
func CanTransition(from, to string) bool {
	fromRank, ok := StatusRank(from)
	if !ok {
		return false
	}
	toRank, ok := StatusRank(to)
	if !ok {
		return false
	}
	if IsTerminalStatus(from) {
		return false
	}
	return toRank > fromRank
}
