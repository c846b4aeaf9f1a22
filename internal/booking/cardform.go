package booking

import (
	"strings"
	"unicode"

	"canchapp/internal/common/validation"
)

// CardForm is the payment form. Values are sanitized the way the input
// fields would as the user types.
type CardForm struct {
	Number     string `json:"numero_tarjeta"`
	Expiry     string `json:"vencimiento"`
	CVV        string `json:"cvv"`
	HolderName string `json:"titular"`
	Document   string `json:"documento"`
	Email      string `json:"email"`
	Phone      string `json:"telefono"`
}

// Sanitized applies the per-field input filters.
func (f CardForm) Sanitized() CardForm {
	return CardForm{
		Number:     SanitizeDigits(f.Number),
		Expiry:     FormatExpiry("", f.Expiry),
		CVV:        SanitizeDigits(f.CVV),
		HolderName: SanitizeName(f.HolderName),
		Document:   SanitizeDigits(f.Document),
		Email:      f.Email,
		Phone:      SanitizeDigits(f.Phone),
	}
}

// Validate checks the form in field order and reports the first problem.
// No Luhn check is done; the backend owns payment processing.
func (f CardForm) Validate() error {
	doc := f
	doc.HolderName = strings.TrimSpace(f.HolderName)
	doc.Document = strings.TrimSpace(f.Document)
	return validation.CardSchema.Check(doc)
}

// PaymentMethod is the label sent to the backend, e.g.
// "Tarjeta de crédito (**** 4242)".
func (f CardForm) PaymentMethod() string {
	last4 := f.Number
	if len(last4) > 4 {
		last4 = last4[len(last4)-4:]
	}
	return "Tarjeta de crédito (**** " + last4 + ")"
}

// SanitizeDigits drops every non-digit character.
func SanitizeDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// SanitizeName keeps ASCII letters, whitespace and the Spanish accented
// letters.
func SanitizeName(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r < unicode.MaxASCII && unicode.IsLetter(r), unicode.IsSpace(r):
			b.WriteRune(r)
		case strings.ContainsRune("ñÑáéíóúÁÉÍÓÚ", r):
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FormatExpiry formats the expiry field after an edit from prev to input.
// Digits beyond two get a "/" inserted, and a trailing "/" being deleted is
// left deleted. The result is at most 5 characters.
func FormatExpiry(prev, input string) string {
	digits := SanitizeDigits(input)
	out := digits

	deletingSlash := len(input) < len(prev) && strings.HasSuffix(input, "/")
	if !deletingSlash && len(digits) > 2 {
		end := 4
		if len(digits) < end {
			end = len(digits)
		}
		out = digits[:2] + "/" + digits[2:end]
	}
	if len(out) > 5 {
		out = out[:5]
	}
	return out
}
