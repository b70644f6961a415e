package identity

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/nyaruka/phonenumbers"

	"github.com/m04kA/SMC-CarWashBooking/internal/domain"
)

const minPhoneDigits = 6

// NormalizePhone приводит телефон к E.164, используя region для номеров без кода страны.
// Если номер не разбирается libphonenumber, остаются только цифры (и ведущий +)
func NormalizePhone(raw, region string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidPhone)
	}

	if num, err := phonenumbers.Parse(raw, strings.ToUpper(region)); err == nil && phonenumbers.IsPossibleNumber(num) {
		return phonenumbers.Format(num, phonenumbers.E164), nil
	}

	var b strings.Builder
	for i, r := range raw {
		switch {
		case unicode.IsDigit(r):
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		}
	}

	digits := strings.TrimPrefix(b.String(), "+")
	if len(digits) < minPhoneDigits {
		return "", fmt.Errorf("%w: %q", ErrInvalidPhone, raw)
	}
	if b.Len() > domain.MaxPhoneLength {
		return "", fmt.Errorf("%w: longer than %d", ErrInvalidPhone, domain.MaxPhoneLength)
	}
	return b.String(), nil
}

// NormalizePlate переводит номер в верхний регистр и убирает все пробельные символы
func NormalizePlate(raw string) (string, error) {
	plate := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToUpper(r)
	}, raw)

	if plate == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidPlate)
	}
	if len(plate) > domain.MaxPlateLength {
		return "", fmt.Errorf("%w: longer than %d", ErrInvalidPlate, domain.MaxPlateLength)
	}
	return plate, nil
}

// NormalizeModel обрезает пробелы; пустая модель означает "не указана"
func NormalizeModel(raw *string) *string {
	if raw == nil {
		return nil
	}
	model := strings.TrimSpace(*raw)
	if model == "" {
		return nil
	}
	return &model
}
