// Package models содержит доменные структуры сервиса: учётную запись,
// платёж и общую таксономию ошибок. Структуры используются в бизнес-логике
// и при работе с хранилищем.
package models

import (
	"strings"
	"time"
)

// Возможные роли учётной записи.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Возможные тарифные планы.
const (
	PlanFree    = "free"
	PlanPremium = "premium"
)

// Account представляет зарегистрированного пользователя системы.
type Account struct {
	UID          string    // Уникальный идентификатор учётной записи
	Email        string    // Электронная почта, хранится в нормализованном виде
	Name         string    // Отображаемое имя
	PasswordHash string    // bcrypt-хэш пароля, исходный пароль не хранится
	Role         string    // Роль: admin или user
	Plan         string    // Тарифный план: free или premium
	CreatedAt    time.Time // Дата создания
}

// IsAdmin сообщает, имеет ли учётная запись права администратора.
func (a *Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// NormalizeEmail приводит email к каноническому виду: обрезает пробелы
// и переводит в нижний регистр. Одна и та же нормализация применяется
// при создании и при поиске, иначе уникальность по email теряет смысл.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
