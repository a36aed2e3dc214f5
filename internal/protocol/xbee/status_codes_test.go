package xbee

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeliveryStatusTable_Exhaustive(t *testing.T) {
	for code, text := range deliveryStatusText {
		assert.NotEmpty(t, text, "code 0x%02X has no text", byte(code))
		assert.Equal(t, code, DeliveryStatusOf(byte(code)))
		assert.Equal(t, text, code.String())
	}
}

func TestDeliveryStatusOf_UnknownBytes(t *testing.T) {
	for _, b := range []byte{0x05, 0x33, 0x99, 0xFE} {
		s := DeliveryStatusOf(b)
		assert.Equal(t, DeliveryUnknown, s, "byte 0x%02X", b)
		assert.Equal(t, "Unknown", s.String())
	}

	assert.False(t, DeliveryStatusOf(0x01).Success())
	assert.True(t, DeliveryStatusOf(0x00).Success())
}
