package rabbitmq

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/streadway/amqp"
)

// PlanActivatedEvent — событие активации премиум-плана.
type PlanActivatedEvent struct {
	AccountUID        string    `json:"account_uid"`
	Email             string    `json:"email"`
	CheckoutSessionID string    `json:"checkout_session_id"`
	ActivatedAt       time.Time `json:"activated_at"`
}

// Publisher публикует доменные события сервиса в заранее открытый канал.
type Publisher struct {
	ch *amqp.Channel
}

// NewPublisher создает новый экземпляр Publisher.
func NewPublisher(ch *amqp.Channel) *Publisher {
	return &Publisher{ch: ch}
}

// PublishPlanActivated публикует событие активации премиум-плана.
func (p *Publisher) PublishPlanActivated(event PlanActivatedEvent) error {
	return PublishMessage(p.ch, ExchangeEvents, RoutingKeyPlanActivated, event)
}

// PublishMessage публикует сообщение в RabbitMQ.
func PublishMessage(ch *amqp.Channel, exchange string, routingkey string, message any) error {
	const op = "rabbitmq.PublishMessage"
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err = ch.Publish(
		exchange,
		routingkey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
