package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsFamilyBaseUnit(t *testing.T) {
	// Aile tabanları kabul edilir
	assert.True(t, isFamilyBaseUnit("g"))
	assert.True(t, isFamilyBaseUnit("ml"))
	assert.True(t, isFamilyBaseUnit("adet"))

	// Aileye ait ama taban olmayan birimler reddedilir
	assert.False(t, isFamilyBaseUnit("kg"))
	assert.False(t, isFamilyBaseUnit("lt"))
	assert.False(t, isFamilyBaseUnit("duzine"))

	// Bilinmeyen birim ve boş değer reddedilir
	assert.False(t, isFamilyBaseUnit("koli"))
	assert.False(t, isFamilyBaseUnit(""))
}
