package contact

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"meusensia.com.br/sensia-web/internal/listing"
)

// Messages shown by the contact form.
const (
	MsgInvalidForm  = "Por favor, corrija os erros no formulário."
	MsgSuccess      = "Formulário enviado com sucesso! Entraremos em contato em breve."
	MsgSubmitFailed = "Erro ao enviar formulário. Tente novamente."
	MsgRateLimited  = "Muitas tentativas. Aguarde um minuto e tente novamente."

	msgRequired       = "Campo obrigatório"
	msgInvalidEmail   = "Email inválido"
	msgInvalidPhone   = "Telefone inválido"
	msgPrivacyPending = "É preciso aceitar a política de privacidade"
)

const minPhoneDigits = 10

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^[\d\s()+-]+$`)
)

// Form is a submitted contact form.
type Form struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	State    string `json:"state"`
	City     string `json:"city"`
	CityCode string `json:"cityCode,omitempty"`
	Privacy  bool   `json:"privacy"`
}

// FormFromValues reads a posted contact form. The city code defaults to the
// hyphenated city.
func FormFromValues(v url.Values) Form {
	f := Form{
		Name:     strings.TrimSpace(v.Get("name")),
		Phone:    strings.TrimSpace(v.Get("phone")),
		Email:    strings.TrimSpace(v.Get("email")),
		State:    strings.ToLower(strings.TrimSpace(v.Get("state"))),
		City:     strings.TrimSpace(v.Get("city")),
		CityCode: strings.TrimSpace(v.Get("cityCode")),
	}
	switch strings.ToLower(v.Get("privacy")) {
	case "on", "true", "1", "yes":
		f.Privacy = true
	}
	if f.CityCode == "" {
		f.CityCode = listing.CityToHyphenated(f.City)
	}
	return f
}

// FieldErrors maps a field name to its message.
type FieldErrors map[string]string

// Validate checks f and returns the errors per field, or nil.
func (f Form) Validate() FieldErrors {
	errs := FieldErrors{}
	required := map[string]string{
		"name":  f.Name,
		"phone": f.Phone,
		"email": f.Email,
		"state": f.State,
		"city":  f.City,
	}
	for field, v := range required {
		if v == "" {
			errs[field] = msgRequired
		}
	}
	if f.Email != "" && !ValidEmail(f.Email) {
		errs["email"] = msgInvalidEmail
	}
	if f.Phone != "" && !ValidPhone(f.Phone) {
		errs["phone"] = msgInvalidPhone
	}
	if !f.Privacy {
		errs["privacy"] = msgPrivacyPending
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// ValidEmail reports whether s looks like an email address.
func ValidEmail(s string) bool { return emailPattern.MatchString(s) }

// ValidPhone accepts digits, spaces, parentheses, "+" and "-", with at least
// ten digits.
func ValidPhone(s string) bool {
	if !phonePattern.MatchString(s) {
		return false
	}
	digits := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			digits++
		}
	}
	return digits >= minPhoneDigits
}
