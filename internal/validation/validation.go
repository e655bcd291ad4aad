// Package validation содержит функции валидации платёжных реквизитов.
package validation

import (
	"strings"
	"unicode"
)

// IsValidCardNumber проверяет корректность номера карты по алгоритму Луна.
func IsValidCardNumber(number string) bool {
	if number == "" {
		return false
	}

	sum := 0
	double := false

	for i := len(number) - 1; i >= 0; i-- {
		ch := rune(number[i])
		if !unicode.IsDigit(ch) {
			return false
		}
		digit := int(ch - '0')
		if double {
			digit *= 2
			if digit > 9 {
				digit -= 9
			}
		}
		sum += digit
		double = !double
	}

	return sum%10 == 0
}

// Digits возвращает только цифры из строки.
// Используется при усечении реквизитов для показа и при сборке диплинков.
func Digits(s string) string {
	var b strings.Builder
	for _, ch := range s {
		if ch >= '0' && ch <= '9' {
			b.WriteRune(ch)
		}
	}
	return b.String()
}

// NormalizePhoneE164 приводит телефон к виду "+7...": оставляет цифры
// и добавляет плюс, если его не было.
func NormalizePhoneE164(phone string) string {
	digits := Digits(phone)
	if digits == "" {
		return phone
	}
	return "+" + digits
}
