package utils_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/casavia/brokerage-api/internal/utils"
)

func TestValidEmail(t *testing.T) {
	assert.True(t, utils.ValidEmail("maria.santos@example.com"))
	assert.True(t, utils.ValidEmail("juan+inbox@mail.co"))
	assert.False(t, utils.ValidEmail(""))
	assert.False(t, utils.ValidEmail("not-an-email"))
	assert.False(t, utils.ValidEmail("missing@tld"))
	assert.False(t, utils.ValidEmail("two words@example.com"))
}

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "09171234567", utils.NormalizePhone("0917 123 4567"))
	assert.Equal(t, "+639171234567", utils.NormalizePhone("+63-917-123-4567"))
	assert.Equal(t, "09171234567", utils.NormalizePhone(" 0917-123-4567 "))
}

func TestValidPhone(t *testing.T) {
	assert.True(t, utils.ValidPhone("09171234567"))
	assert.True(t, utils.ValidPhone("+639171234567"))

	assert.False(t, utils.ValidPhone(""))
	assert.False(t, utils.ValidPhone("0917123456"))    // too short
	assert.False(t, utils.ValidPhone("091712345678"))  // too long
	assert.False(t, utils.ValidPhone("639171234567"))  // missing plus
	assert.False(t, utils.ValidPhone("+619171234567")) // wrong country
	assert.False(t, utils.ValidPhone("0917abc4567"))
}

func TestValidMessage(t *testing.T) {
	assert.False(t, utils.ValidMessage(""))
	assert.False(t, utils.ValidMessage("too short"))
	assert.False(t, utils.ValidMessage(strings.Repeat("x", utils.MinMessageLen-1)))
	assert.True(t, utils.ValidMessage(strings.Repeat("x", utils.MinMessageLen)))
	assert.True(t, utils.ValidMessage("I would like to schedule a viewing of this property."))
}

func TestFormatTicket(t *testing.T) {
	assert.Equal(t, "INQ-2026-001", utils.FormatTicket(2026, 1))
	assert.Equal(t, "INQ-2026-042", utils.FormatTicket(2026, 42))
	// The sequence keeps growing past three digits rather than wrapping.
	assert.Equal(t, "INQ-2026-1000", utils.FormatTicket(2026, 1000))
}

func TestTicketPrefix(t *testing.T) {
	assert.Equal(t, "INQ-2026-", utils.TicketPrefix(2026))
	assert.True(t, strings.HasPrefix(utils.FormatTicket(2026, 7), utils.TicketPrefix(2026)))
}
