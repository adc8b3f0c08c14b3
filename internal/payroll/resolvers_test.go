package payroll

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveIndemnities(t *testing.T) {
	override := func(v int64) *int64 { return &v }

	t.Run("override wins over contract", func(t *testing.T) {
		assert.Equal(t, int64(12000), resolveIndemnities(override(12000), 8000, 150000))
	})

	t.Run("explicit zero override wins", func(t *testing.T) {
		// An intentional 0 must not fall through to the contract or the
		// computed default.
		assert.Equal(t, int64(0), resolveIndemnities(override(0), 8000, 150000))
	})

	t.Run("contract value when no override", func(t *testing.T) {
		assert.Equal(t, int64(8000), resolveIndemnities(nil, 8000, 150000))
	})

	t.Run("five percent default when nothing set", func(t *testing.T) {
		assert.Equal(t, int64(7500), resolveIndemnities(nil, 0, 150000))
	})

	t.Run("default rounds half up", func(t *testing.T) {
		// 5% of 1250 is 62.5, rounds to 63.
		assert.Equal(t, int64(63), resolveIndemnities(nil, 0, 1250))
	})
}

func TestResolveBaseSalary(t *testing.T) {
	override := func(v int64) *int64 { return &v }

	assert.Equal(t, int64(200000), resolveBaseSalary(override(200000), 150000))
	assert.Equal(t, int64(0), resolveBaseSalary(override(0), 150000))
	assert.Equal(t, int64(150000), resolveBaseSalary(nil, 150000))
}
