package booking

import (
	"testing"

	"canchapp/internal/common/errors"

	"github.com/stretchr/testify/assert"
)

var validCard = CardForm{
	Number:     "4242424242424242",
	Expiry:     "12/27",
	CVV:        "123",
	HolderName: "Lucía Pérez",
	Document:   "45678912",
	Email:      "lucia@mail.pe",
	Phone:      "987654321",
}

func TestSanitizeDigits(t *testing.T) {
	assert.Equal(t, "4242424242424242", SanitizeDigits("4242 4242-4242 4242"))
	assert.Equal(t, "", SanitizeDigits("abc"))
}

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "José Ñúñez", SanitizeName("José Ñúñez!"))
	assert.Equal(t, "Ana Rd", SanitizeName("Ana R2d2"))
	assert.Equal(t, "", SanitizeName("123-456"))
}

func TestFormatExpiry(t *testing.T) {
	tests := []struct {
		name  string
		prev  string
		input string
		want  string
	}{
		{"two digits stay bare", "1", "12", "12"},
		{"third digit inserts slash", "12", "123", "12/3"},
		{"full value", "12/2", "12/27", "12/27"},
		{"pasted digits", "", "1227", "12/27"},
		{"truncates to five", "12/27", "12/279", "12/27"},
		{"letters dropped", "", "1a2b2c7", "12/27"},
		{"deleting the slash", "12/", "12", "12"},
		{"trailing slash removed on delete", "12/3", "12/", "12"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatExpiry(tt.prev, tt.input))
		})
	}
}

func TestCardForm_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(f *CardForm)
		wantErr string
	}{
		{"valid", func(f *CardForm) {}, ""},
		{"short card", func(f *CardForm) { f.Number = "42424242" }, "invalid card number (16 digits)"},
		{"bad month", func(f *CardForm) { f.Expiry = "13/27" }, "invalid expiry date (MM/YY)"},
		{"bad cvv", func(f *CardForm) { f.CVV = "12" }, "invalid CVV (3 or 4 digits)"},
		{"four digit cvv", func(f *CardForm) { f.CVV = "1234" }, ""},
		{"short holder", func(f *CardForm) { f.HolderName = "  Ana " }, "complete all holder and contact fields correctly"},
		{"short document", func(f *CardForm) { f.Document = "123" }, "complete all holder and contact fields correctly"},
		{"bad email", func(f *CardForm) { f.Email = "lucia@mail" }, "complete all holder and contact fields correctly"},
		{"short phone", func(f *CardForm) { f.Phone = "98765" }, "complete all holder and contact fields correctly"},
		{"card checked first", func(f *CardForm) { f.Number = ""; f.CVV = "" }, "invalid card number (16 digits)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validCard
			tt.mutate(&f)
			err := f.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.IsCode(err, errors.ErrCodeValidationFailed))
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}

func TestCardForm_SanitizedAndMethod(t *testing.T) {
	f := CardForm{Number: "4242 4242 4242 9876", Expiry: "1227", CVV: "1a23", HolderName: "Lucía P3rez", Phone: "987-654-321"}
	s := f.Sanitized()

	assert.Equal(t, "4242424242429876", s.Number)
	assert.Equal(t, "12/27", s.Expiry)
	assert.Equal(t, "123", s.CVV)
	assert.Equal(t, "Lucía Prez", s.HolderName)
	assert.Equal(t, "987654321", s.Phone)
	assert.Equal(t, "Tarjeta de crédito (**** 9876)", s.PaymentMethod())
}
