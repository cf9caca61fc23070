package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversineMeters(t *testing.T) {
	t.Run("zero distance for identical points", func(t *testing.T) {
		d := HaversineMeters(37.5665, 126.9780, 37.5665, 126.9780)
		assert.InDelta(t, 0, d, 0.001)
	})

	t.Run("seoul to busan", func(t *testing.T) {
		// City hall to city hall, roughly 325 km.
		d := HaversineMeters(37.5665, 126.9780, 35.1796, 129.0756)
		assert.InDelta(t, 325_000, d, 5_000)
	})

	t.Run("symmetric", func(t *testing.T) {
		a := HaversineMeters(37.5665, 126.9780, 35.1796, 129.0756)
		b := HaversineMeters(35.1796, 129.0756, 37.5665, 126.9780)
		assert.InDelta(t, a, b, 0.001)
	})

	t.Run("one degree of latitude", func(t *testing.T) {
		// ~111.2 km anywhere on the sphere.
		d := HaversineMeters(10, 20, 11, 20)
		assert.InDelta(t, 111_200, d, 1_000)
	})
}
