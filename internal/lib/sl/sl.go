// Package sl содержит мелкие помощники для структурированного логирования
// через slog: единые ключи атрибутов, чтобы записи об ошибках выглядели
// одинаково во всех сервисах и обработчиках.
package sl

import "log/slog"

// Err оборачивает ошибку в slog.Attr под ключом "error".
//
//	log.Error("checkout session lookup failed", sl.Err(err))
func Err(err error) slog.Attr {
	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(err.Error()),
	}
}
