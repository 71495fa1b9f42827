package paymentprovider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/magabrotheeeer/passgen-saas/internal/config"
	"github.com/magabrotheeeer/passgen-saas/internal/models"
)

// Client — HTTP-клиент платёжного шлюза checkout-сессий.
// Все запросы ограничены таймаутом http.Client; истёкший таймаут
// трактуется как models.ErrGatewayRequest, повтор — на усмотрение вызывающего.
type Client struct {
	secretKey  string
	priceID    string
	apiURL     string
	baseURL    string
	httpClient *http.Client
}

// NewClient создаёт новый клиент шлюза из конфигурации.
func NewClient(cfg config.Gateway) *Client {
	return &Client{
		secretKey:  cfg.SecretKey,
		priceID:    cfg.PriceID,
		apiURL:     cfg.APIURL,
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
	}
}

// Provider возвращает имя провайдера.
func (c *Client) Provider() string {
	return "checkout"
}

// CreateSession создает checkout-сессию у провайдера. Без секретного ключа
// или идентификатора цены возвращает models.ErrGatewayConfig: деньги на кону,
// молча проглатывать недонастроенный шлюз нельзя.
func (c *Client) CreateSession(ctx context.Context, customerEmail string, quantity int) (*CheckoutSession, error) {
	const op = "paymentprovider.CreateSession"

	if c.secretKey == "" || c.priceID == "" {
		return nil, fmt.Errorf("%s: %w", op, models.ErrGatewayConfig)
	}

	reqBody := createSessionRequest{
		PriceID:       c.priceID,
		Quantity:      quantity,
		CustomerEmail: customerEmail,
		SuccessURL:    c.baseURL + "/api/v1/checkout/return?paid_success=true&session_id={CHECKOUT_SESSION_ID}",
		CancelURL:     c.baseURL + "/api/v1/checkout/return?paid_cancel=true",
	}

	var session CheckoutSession
	if err := c.do(ctx, http.MethodPost, "/v1/checkout/sessions", reqBody, &session); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &session, nil
}

// GetSession возвращает авторитетное состояние сессии у провайдера.
func (c *Client) GetSession(ctx context.Context, id string) (*SessionState, error) {
	const op = "paymentprovider.GetSession"

	if c.secretKey == "" {
		return nil, fmt.Errorf("%s: %w", op, models.ErrGatewayConfig)
	}

	var state SessionState
	if err := c.do(ctx, http.MethodGet, "/v1/checkout/sessions/"+id, nil, &state); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &state, nil
}

// do выполняет запрос к шлюзу и декодирует ответ. Детали сетевых ошибок
// и неожиданных статусов заворачиваются в models.ErrGatewayRequest;
// сырой ответ провайдера наружу не отдаётся.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, c.apiURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", models.ErrGatewayRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("%w: unexpected status %s", models.ErrGatewayRequest, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %w", models.ErrGatewayRequest, err)
	}
	return nil
}
