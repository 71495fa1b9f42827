package paymentprovider

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/passgen-saas/internal/models"
)

// OutcomeSource выдаёт исход симулированного платежа для способа оплаты.
// Тесты подставляют детерминированную реализацию вместо вероятностной.
type OutcomeSource interface {
	Draw(method string) (approved bool, reason string)
}

// declineReasons — фиксированный набор человекочитаемых причин отказа.
var declineReasons = []string{
	"insufficient funds",
	"card declined by issuer",
	"expired card",
	"payment abandoned",
}

// approvalRates — вероятность одобрения по способу оплаты.
var approvalRates = map[string]float64{
	models.MethodCard:   0.80,
	models.MethodPix:    0.95,
	models.MethodBoleto: 0.70,
}

// RandomOutcomes — вероятностный источник исходов. Криптостойкость здесь
// не нужна: это заглушка реального процессинга, а не защита секретов.
type RandomOutcomes struct{}

// Draw возвращает исход платежа согласно вероятности одобрения способа оплаты.
func (RandomOutcomes) Draw(method string) (bool, string) {
	rate, ok := approvalRates[method]
	if !ok {
		rate = approvalRates[models.MethodCard]
	}
	if rand.Float64() < rate {
		return true, ""
	}
	return false, declineReasons[rand.IntN(len(declineReasons))]
}

// Simulator — локальная замена платёжного шлюза: сессии создаются
// без внешних вызовов, а исход определяется часами и случайным розыгрышем.
// Состояние сессии живёт в локальном хранилище, поэтому GetSession
// всегда отвечает "open": разрешением занимается ленивый ResolveIfDue
// на стороне платёжного сервиса.
type Simulator struct {
	baseURL  string
	window   time.Duration
	amount   int64
	currency string
	outcomes OutcomeSource
}

// NewSimulator создаёт симулятор с заданным окном созревания платежа.
func NewSimulator(baseURL string, window time.Duration, amount int64, currency string, outcomes OutcomeSource) *Simulator {
	if outcomes == nil {
		outcomes = RandomOutcomes{}
	}
	return &Simulator{
		baseURL:  baseURL,
		window:   window,
		amount:   amount,
		currency: currency,
		outcomes: outcomes,
	}
}

// Provider возвращает имя провайдера.
func (s *Simulator) Provider() string {
	return "simulated"
}

// CreateSession выдаёт новую сессию с локальным идентификатором.
func (s *Simulator) CreateSession(_ context.Context, _ string, _ int) (*CheckoutSession, error) {
	id := "sim_" + uuid.NewString()
	return &CheckoutSession{
		ID:          id,
		RedirectURL: s.baseURL + "/api/v1/checkout/return?paid_success=true&session_id=" + id,
	}, nil
}

// GetSession всегда сообщает незавершённое состояние.
func (s *Simulator) GetSession(_ context.Context, _ string) (*SessionState, error) {
	return &SessionState{Status: "open", PaymentStatus: "unpaid"}, nil
}

// MaturationWindow возвращает минимальный возраст pending-сессии,
// после которого она подлежит разрешению.
func (s *Simulator) MaturationWindow() time.Duration {
	return s.window
}

// Amount возвращает сумму симулированного платежа в минимальных единицах.
func (s *Simulator) Amount() int64 {
	return s.amount
}

// Currency возвращает валюту симулированного платежа.
func (s *Simulator) Currency() string {
	return s.currency
}

// Draw делегирует розыгрыш исхода источнику исходов.
func (s *Simulator) Draw(method string) (bool, string) {
	return s.outcomes.Draw(method)
}
