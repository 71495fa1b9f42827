package models

import "errors"

// Ошибки бизнес-уровня, общие для сервисов и обработчиков.
// Сервисы оборачивают их через fmt.Errorf("%s: %w", op, err),
// обработчики сопоставляют через errors.Is.
var (
	// ErrDuplicateEmail — учётная запись с таким email уже существует.
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrInvalidCredentials возвращается и для неизвестного email,
	// и для неверного пароля: ответ не должен раскрывать,
	// существует ли учётная запись.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrNotFound — запрошенная запись отсутствует.
	ErrNotFound = errors.New("not found")

	// ErrForbidden — у действующей учётной записи нет прав на операцию.
	ErrForbidden = errors.New("forbidden")

	// ErrGatewayConfig — платёжный шлюз не сконфигурирован
	// (нет ключа или идентификатора цены). Повтор без смены настроек бесполезен.
	ErrGatewayConfig = errors.New("payment gateway is not configured")

	// ErrGatewayRequest — запрос к платёжному шлюзу не удался
	// (сеть, таймаут, неожиданный статус). Вызывающая сторона может повторить.
	ErrGatewayRequest = errors.New("payment gateway request failed")
)
