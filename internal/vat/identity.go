package vat

import (
	"fmt"
	"strings"

	"britta/internal/domain"
)

// ValidateOrgNumber checks a Swedish organisationsnummer: 10 digits
// (hyphen allowed), first digit nonzero, Luhn check digit.
func ValidateOrgNumber(orgNr string) error {
	digits := digitsOf(orgNr)
	if len(digits) != 10 {
		return fmt.Errorf("%w: must be 10 digits", domain.ErrInvalidOrgNumber)
	}
	if digits[0] == 0 {
		return fmt.Errorf("%w: cannot start with 0", domain.ErrInvalidOrgNumber)
	}
	var checksum int
	for i := 0; i < 9; i++ {
		d := digits[i]
		if i%2 == 0 {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		checksum += d
	}
	if digits[9] != (10-checksum%10)%10 {
		return fmt.Errorf("%w: check digit mismatch", domain.ErrInvalidOrgNumber)
	}
	return nil
}

// ValidateVATNumber checks a Swedish momsregistreringsnummer:
// SE + valid organisationsnummer + 01.
func ValidateVATNumber(vatNr string) error {
	upper := strings.ToUpper(strings.TrimSpace(vatNr))
	if !strings.HasPrefix(upper, "SE") {
		return fmt.Errorf("%w: must start with SE", domain.ErrInvalidVATNumber)
	}
	digits := digitsOf(upper)
	if len(digits) != 12 {
		return fmt.Errorf("%w: must carry 12 digits after SE", domain.ErrInvalidVATNumber)
	}
	var org strings.Builder
	for _, d := range digits[:10] {
		fmt.Fprintf(&org, "%d", d)
	}
	if err := ValidateOrgNumber(org.String()); err != nil {
		return fmt.Errorf("%w: embedded organisation number invalid", domain.ErrInvalidVATNumber)
	}
	if digits[10] != 0 || digits[11] != 1 {
		return fmt.Errorf("%w: must end with 01", domain.ErrInvalidVATNumber)
	}
	return nil
}

// FormatVATNumber derives the VAT registration number from an
// organisationsnummer. The caller validates the input first.
func FormatVATNumber(orgNr string) string {
	var b strings.Builder
	b.WriteString("SE")
	for _, d := range digitsOf(orgNr) {
		fmt.Fprintf(&b, "%d", d)
	}
	b.WriteString("01")
	return b.String()
}

func digitsOf(s string) []int {
	out := make([]int, 0, len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			out = append(out, int(r-'0'))
		}
	}
	return out
}
