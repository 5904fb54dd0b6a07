// Package currency formats integral-cent amounts for display. Money stays in
// cents everywhere on the wire; formatting happens only at the message layer.
package currency

import "fmt"

// FormatCents renders an amount of cents as a dollar string, e.g. 3500 ->
// "$35.00".
func FormatCents(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return fmt.Sprintf("%s$%d.%02d", sign, amount/100, amount%100)
}
