package password

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// Пулы символов для генерации. Порядок пулов фиксирован:
// при нехватке длины классы получают по одному символу именно в этом порядке.
const (
	PoolUpper   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	PoolLower   = "abcdefghijklmnopqrstuvwxyz"
	PoolDigits  = "0123456789"
	PoolSymbols = "!@#$%^&*()-_=+[]{}<>?/"
)

// Ambiguous — визуально неоднозначные символы, исключаемые
// при включённом флаге AvoidAmbiguous.
const Ambiguous = "Il1O0|`'\";:,."

// ErrInvalidLength возвращается при неположительной длине пароля.
var ErrInvalidLength = errors.New("password length must be positive")

// GenerateOptions описывает параметры генерации пароля.
type GenerateOptions struct {
	Length         int
	UseUpper       bool
	UseLower       bool
	UseDigits      bool
	UseSymbols     bool
	AvoidAmbiguous bool
}

// Generate генерирует пароль заданной длины из включённых классов символов.
//
// Каждый включённый класс гарантированно представлен хотя бы одним символом:
// сначала из каждого пула берётся по одному символу, остаток добирается
// равномерно из объединения пулов, затем результат перемешивается
// несмещённой перестановкой. Источник случайности — crypto/rand,
// предсказать результат по предыдущим значениям нельзя.
//
// Если не включён ни один класс, используется запасной пул
// букв и цифр — вызов всегда возвращает пригодный пароль.
// Если Length меньше числа включённых классов, по одному символу
// получают только первые Length классов (в порядке объявления пулов).
func Generate(opts GenerateOptions) (string, error) {
	const op = "password.Generate"

	if opts.Length <= 0 {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidLength)
	}

	var pools []string
	if opts.UseUpper {
		pools = append(pools, PoolUpper)
	}
	if opts.UseLower {
		pools = append(pools, PoolLower)
	}
	if opts.UseDigits {
		pools = append(pools, PoolDigits)
	}
	if opts.UseSymbols {
		pools = append(pools, PoolSymbols)
	}
	if len(pools) == 0 {
		pools = []string{PoolUpper + PoolLower + PoolDigits}
	}

	if opts.AvoidAmbiguous {
		for i, pool := range pools {
			if filtered := stripAmbiguous(pool); filtered != "" {
				pools[i] = filtered
			}
		}
	}

	chars := make([]byte, 0, opts.Length)
	for _, pool := range pools {
		if len(chars) == opts.Length {
			break
		}
		ch, err := pick(pool)
		if err != nil {
			return "", fmt.Errorf("%s: %w", op, err)
		}
		chars = append(chars, ch)
	}

	union := strings.Join(pools, "")
	for len(chars) < opts.Length {
		ch, err := pick(union)
		if err != nil {
			return "", fmt.Errorf("%s: %w", op, err)
		}
		chars = append(chars, ch)
	}

	if err := shuffle(chars); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return string(chars), nil
}

// stripAmbiguous убирает из пула неоднозначные символы.
func stripAmbiguous(pool string) string {
	var b strings.Builder
	for _, r := range pool {
		if !strings.ContainsRune(Ambiguous, r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// pick возвращает равномерно выбранный символ пула.
func pick(pool string) (byte, error) {
	idx, err := randInt(len(pool))
	if err != nil {
		return 0, err
	}
	return pool[idx], nil
}

// shuffle перемешивает срез по Фишеру–Йетсу: каждая перестановка равновероятна,
// посеянные по классам символы не занимают предсказуемых позиций.
func shuffle(chars []byte) error {
	for i := len(chars) - 1; i > 0; i-- {
		j, err := randInt(i + 1)
		if err != nil {
			return err
		}
		chars[i], chars[j] = chars[j], chars[i]
	}
	return nil
}

// randInt возвращает равномерное число из [0, n) от crypto/rand.
func randInt(n int) (int, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, err
	}
	return int(v.Int64()), nil
}
