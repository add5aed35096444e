package utils

import "fmt"

// FormatTicket renders a human-readable inquiry ticket number. Sequence
// numbers are zero-padded to three digits and grow naturally past 999.
func FormatTicket(year int, seq int) string {
	return fmt.Sprintf("INQ-%d-%03d", year, seq)
}

// TicketPrefix returns the LIKE prefix that matches every ticket issued in
// the given year. Used when counting existing tickets inside the allocation
// transaction.
func TicketPrefix(year int) string {
	return fmt.Sprintf("INQ-%d-", year)
}
