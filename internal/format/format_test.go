package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPrice(t *testing.T) {
	assert.Equal(t, "R$ 450.000", Price(450000))
	assert.Equal(t, "R$ 1.000.000", Price(1000000))
	assert.Equal(t, "R$ 950", Price(950))
	assert.Equal(t, "-R$ 1.200", Price(-1200))
}

func TestArea(t *testing.T) {
	assert.Equal(t, "68,5 m²", Area(68.5))
	assert.Equal(t, "92 m²", Area(92))
}

func TestDate(t *testing.T) {
	d := time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "07/03/2025", Date(d, "pt"))
	assert.Equal(t, "Mar 7, 2025", Date(d, "en"))
}
