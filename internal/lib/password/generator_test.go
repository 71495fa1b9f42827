package password

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_LengthAndCoverage(t *testing.T) {
	tests := []struct {
		name      string
		opts      GenerateOptions
		wantPools []string
	}{
		{
			name:      "all classes enabled",
			opts:      GenerateOptions{Length: 16, UseUpper: true, UseLower: true, UseDigits: true, UseSymbols: true},
			wantPools: []string{PoolUpper, PoolLower, PoolDigits, PoolSymbols},
		},
		{
			name:      "upper and digits only",
			opts:      GenerateOptions{Length: 10, UseUpper: true, UseDigits: true},
			wantPools: []string{PoolUpper, PoolDigits},
		},
		{
			name:      "symbols only",
			opts:      GenerateOptions{Length: 8, UseSymbols: true},
			wantPools: []string{PoolSymbols},
		},
		{
			name:      "single character password",
			opts:      GenerateOptions{Length: 1, UseLower: true},
			wantPools: []string{PoolLower},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Generate(tt.opts)
			require.NoError(t, err)
			assert.Len(t, got, tt.opts.Length)

			union := strings.Join(tt.wantPools, "")
			for _, r := range got {
				assert.True(t, strings.ContainsRune(union, r),
					"character %q is not in any enabled pool", r)
			}

			if tt.opts.Length >= len(tt.wantPools) {
				for _, pool := range tt.wantPools {
					assert.True(t, strings.ContainsAny(got, pool),
						"password %q has no character from pool %q", got, pool)
				}
			}
		})
	}
}

func TestGenerate_FallbackPool(t *testing.T) {
	// Ни один класс не включён: используется запасной пул букв и цифр.
	got, err := Generate(GenerateOptions{Length: 12})
	require.NoError(t, err)
	assert.Len(t, got, 12)

	fallback := PoolUpper + PoolLower + PoolDigits
	for _, r := range got {
		assert.True(t, strings.ContainsRune(fallback, r))
		assert.False(t, strings.ContainsRune(PoolSymbols, r))
	}
}

func TestGenerate_ShortLengthCapsSeeding(t *testing.T) {
	// Длина меньше числа включённых классов: по одному символу получают
	// только первые классы в порядке объявления пулов.
	for range 50 {
		got, err := Generate(GenerateOptions{
			Length: 2, UseUpper: true, UseLower: true, UseDigits: true, UseSymbols: true,
		})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.True(t, strings.ContainsAny(got, PoolUpper))
		assert.True(t, strings.ContainsAny(got, PoolLower))
	}
}

func TestGenerate_AvoidAmbiguous(t *testing.T) {
	for range 1000 {
		got, err := Generate(GenerateOptions{
			Length: 16, UseUpper: true, UseLower: true, UseDigits: true, UseSymbols: true,
			AvoidAmbiguous: true,
		})
		require.NoError(t, err)
		assert.False(t, strings.ContainsAny(got, Ambiguous),
			"password %q contains ambiguous characters", got)
	}
}

func TestGenerate_InvalidLength(t *testing.T) {
	tests := []struct {
		name   string
		length int
	}{
		{name: "zero length", length: 0},
		{name: "negative length", length: -5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Generate(GenerateOptions{Length: tt.length, UseLower: true})
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidLength))
		})
	}
}

func TestGenerate_NotDeterministic(t *testing.T) {
	opts := GenerateOptions{Length: 32, UseUpper: true, UseLower: true, UseDigits: true, UseSymbols: true}

	first, err := Generate(opts)
	require.NoError(t, err)
	second, err := Generate(opts)
	require.NoError(t, err)

	// Совпадение двух 32-символьных паролей практически невозможно.
	assert.NotEqual(t, first, second)
}

func TestStripAmbiguous(t *testing.T) {
	assert.Equal(t, "ABCDEFGHJKLMNPQRSTUVWXYZ", stripAmbiguous(PoolUpper))
	assert.Equal(t, "23456789", stripAmbiguous(PoolDigits))
	assert.NotContains(t, stripAmbiguous(PoolLower), "l")
}
