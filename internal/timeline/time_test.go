package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromSeconds(t *testing.T) {
	assert.Equal(t, TimeUs(1_000_000), FromSeconds(1.0))
	assert.Equal(t, TimeUs(1_500_000), FromSeconds(1.5))
	assert.Equal(t, TimeUs(0), FromSeconds(0))
	assert.Equal(t, TimeUs(250_000), FromSeconds(0.25))
}

func TestSeconds(t *testing.T) {
	assert.Equal(t, 1.0, TimeUs(1_000_000).Seconds())
	assert.Equal(t, 0.5, TimeUs(500_000).Seconds())
	assert.Equal(t, -2.0, TimeUs(-2_000_000).Seconds())
}

func TestTimeArithmetic(t *testing.T) {
	a := FromSeconds(3)
	b := FromSeconds(1.5)

	assert.Equal(t, FromSeconds(4.5), a+b)
	assert.Equal(t, FromSeconds(1.5), a-b)
	assert.Equal(t, FromSeconds(6), a.Mul(2))
	assert.Equal(t, FromSeconds(1), a.Div(3))
}

func TestTimeAbs(t *testing.T) {
	assert.Equal(t, TimeUs(100), TimeUs(-100).Abs())
	assert.Equal(t, TimeUs(100), TimeUs(100).Abs())
	assert.Equal(t, TimeUs(0), TimeUs(0).Abs())
}

func TestTimeString(t *testing.T) {
	assert.Equal(t, "00:00:00.000", TimeUs(0).String())
	assert.Equal(t, "00:00:01.500", FromSeconds(1.5).String())
	assert.Equal(t, "00:01:05.250", FromSeconds(65.25).String())
	assert.Equal(t, "01:01:01.001", TimeUs(3661_001_000).String())
	assert.Equal(t, "-00:00:02.000", FromSeconds(-2).String())
}
