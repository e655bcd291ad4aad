package options

import (
	"fmt"
	"strings"

	"github.com/potokpay/potok-system/internal/validation"
)

// FormatPhoneShort возвращает последние до четырёх цифр номера телефона
// в виде «22 44». Полный номер в видимые тексты не попадает.
func FormatPhoneShort(phone string) string {
	digits := validation.Digits(phone)
	if digits == "" {
		return phone
	}

	core := digits
	if len(core) > 4 {
		core = core[len(core)-4:]
	}

	switch {
	case len(core) == 4:
		return core[:2] + " " + core[2:]
	case len(core) >= 2:
		return core[:len(core)-2] + " " + core[len(core)-2:]
	default:
		return core
	}
}

// FormatCardShort возвращает последние четыре цифры номера карты без пробела.
func FormatCardShort(card string) string {
	digits := validation.Digits(card)
	if len(digits) <= 4 {
		return digits
	}
	return digits[len(digits)-4:]
}

func phoneTitle(display string, amount *int64, bankTitle string) string {
	var base string
	if amount != nil {
		base = fmt.Sprintf("Перевод %d₽, номер %s", *amount, display)
	} else {
		base = "Перевод, телефон " + display
	}

	var suffix string
	if amount == nil {
		if bankTitle != "" {
			suffix = "(" + bankTitle + ", без суммы)"
		} else {
			suffix = "(Без суммы)"
		}
	} else if bankTitle != "" {
		suffix = "(" + bankTitle + ")"
	}

	return strings.TrimSpace(base + " " + suffix)
}

func cardTitle(display string, amount *int64, bankTitle string) string {
	var base string
	if amount != nil {
		base = fmt.Sprintf("Перевод %d₽, карта %s", *amount, display)
	} else {
		base = "Перевод, карта " + display
	}

	var suffix string
	if amount == nil {
		if bankTitle != "" {
			suffix = "(" + bankTitle + ", без суммы)"
		} else {
			suffix = "(Без суммы)"
		}
	} else if bankTitle != "" {
		suffix = "(" + bankTitle + ")"
	}

	return strings.TrimSpace(base + " " + suffix)
}

// descriptionDetails собирает детали «(на сумму 500₽, в банк Сбер)».
// Для варианта «любой банк» вместо конкретного банка пишем,
// что подойдёт любой привязанный.
func descriptionDetails(amount *int64, bankTitle string, anyBank bool) string {
	var parts []string
	if amount != nil {
		parts = append(parts, fmt.Sprintf("на сумму %d₽", *amount))
	}
	if anyBank {
		parts = append(parts, "в любой привязанный банк")
	} else if bankTitle != "" {
		parts = append(parts, "в банк "+bankTitle)
	}
	if len(parts) == 0 {
		return ""
	}
	return " (" + strings.Join(parts, ", ") + ")"
}

func phoneDescription(display string, amount *int64, bankTitle string, anyBank bool) string {
	base := "Будет отправлен запрос перевода по номеру телефона " + display
	return base + descriptionDetails(amount, bankTitle, anyBank)
}

func cardDescription(display string, amount *int64, bankTitle string) string {
	base := "Будет отправлен запрос перевода на карту " + display
	return base + descriptionDetails(amount, bankTitle, false)
}
