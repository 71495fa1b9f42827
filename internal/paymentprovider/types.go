// Package paymentprovider реализует работу с платёжным шлюзом:
// реальный HTTPS-клиент checkout-сессий и локальный симулятор обработки.
package paymentprovider

import "context"

// CheckoutSession — результат создания checkout-сессии у провайдера.
type CheckoutSession struct {
	ID          string `json:"id"`  // Внешняя ссылка на сессию
	RedirectURL string `json:"url"` // Адрес страницы оплаты для клиента
}

// SessionState — авторитетное состояние сессии по данным провайдера.
type SessionState struct {
	Status        string `json:"status"`         // open, complete, expired
	PaymentStatus string `json:"payment_status"` // paid, unpaid
}

// Gateway описывает контракт платёжного шлюза.
type Gateway interface {
	// CreateSession создает checkout-сессию и возвращает её идентификатор
	// и адрес для перенаправления клиента.
	CreateSession(ctx context.Context, customerEmail string, quantity int) (*CheckoutSession, error)

	// GetSession возвращает текущее состояние сессии по её идентификатору.
	GetSession(ctx context.Context, id string) (*SessionState, error)

	// Provider возвращает имя провайдера для записи в платёж.
	Provider() string
}

// createSessionRequest — тело запроса на создание checkout-сессии.
type createSessionRequest struct {
	PriceID       string            `json:"price_id"`
	Quantity      int               `json:"quantity"`
	CustomerEmail string            `json:"customer_email"`
	SuccessURL    string            `json:"success_url"`
	CancelURL     string            `json:"cancel_url"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}
