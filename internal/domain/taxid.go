package domain

import (
	"fmt"
	"strings"
)

// Tax id lengths in digits.
const (
	CPFLength  = 11
	CNPJLength = 14
)

// NormalizeTaxID strips everything but digits from a CPF/CNPJ.
func NormalizeTaxID(value string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, value)
}

// ValidTaxIDLength reports whether digits has the length of a CPF or a CNPJ.
func ValidTaxIDLength(digits string) bool {
	return len(digits) == CPFLength || len(digits) == CNPJLength
}

// FormatTaxID applies the CPF (000.000.000-00) or CNPJ (00.000.000/0000-00)
// mask. Any other input is returned unchanged.
func FormatTaxID(value string) string {
	digits := NormalizeTaxID(value)
	switch len(digits) {
	case CPFLength:
		return fmt.Sprintf("%s.%s.%s-%s", digits[:3], digits[3:6], digits[6:9], digits[9:11])
	case CNPJLength:
		return fmt.Sprintf("%s.%s.%s/%s-%s", digits[:2], digits[2:5], digits[5:8], digits[8:12], digits[12:14])
	}
	return value
}
