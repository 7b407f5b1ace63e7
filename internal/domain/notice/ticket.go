package notice

import (
	"crypto/rand"
	"fmt"
	"regexp"
)

// ticketAlphabet excludes nothing: the format is plain A-Z0-9 so operators
// can read ticket IDs back over the phone.
const ticketAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

const ticketSuffixLen = 6

var ticketPattern = regexp.MustCompile(`^TDN-\d{4}-[A-Z0-9]{6}$`)

// GenerateTicketID produces a TDN-YYYY-XXXXXX identifier. Collisions are
// astronomically unlikely but possible; the persistence layer's uniqueness
// constraint is authoritative and callers retry on conflict.
func GenerateTicketID(clk Clock) (string, error) {
	buf := make([]byte, ticketSuffixLen)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("reading randomness for ticket ID: %w", err)
	}
	for i, b := range buf {
		buf[i] = ticketAlphabet[int(b)%len(ticketAlphabet)]
	}
	return fmt.Sprintf("TDN-%04d-%s", clk.Now().UTC().Year(), string(buf)), nil
}

// ValidTicketID reports whether s matches the TDN-YYYY-XXXXXX format.
func ValidTicketID(s string) bool {
	return ticketPattern.MatchString(s)
}
