package notice_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidleathers/takedown-compliance-engine/internal/domain/notice"
)

func TestGenerateTicketID(t *testing.T) {
	clk := &notice.MockClock{CurrentTime: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}

	seen := make(map[string]bool, 100)
	for i := 0; i < 100; i++ {
		id, err := notice.GenerateTicketID(clk)
		require.NoError(t, err)

		assert.True(t, notice.ValidTicketID(id), "ID %q must match TDN-YYYY-[A-Z0-9]{6}", id)
		assert.Equal(t, fmt.Sprintf("TDN-%d-", 2025), id[:9])
		assert.False(t, seen[id], "duplicate ticket ID %q after %d generations", id, i)
		seen[id] = true
	}
}

func TestValidTicketID(t *testing.T) {
	tests := []struct {
		id    string
		valid bool
	}{
		{"TDN-2025-A1B2C3", true},
		{"TDN-2025-ZZZZZZ", true},
		{"TDN-25-A1B2C3", false},
		{"TDN-2025-a1b2c3", false},
		{"TDN-2025-A1B2C", false},
		{"TKT-2025-A1B2C3", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.valid, notice.ValidTicketID(tt.id), "case %q", tt.id)
	}
}
