// Package deeplink собирает ссылки на перевод в приложениях банков.
// Ссылки не делают сетевых запросов — это только конструирование URL.
package deeplink

import (
	"strings"

	"github.com/potokpay/potok-system/internal/model"
	"github.com/potokpay/potok-system/internal/validation"
)

// Link — ссылки на перевод для одного банка.
type Link struct {
	// Deeplink открывает приложение банка.
	Deeplink string
	// FallbackURL открывается в браузере, если приложения нет.
	FallbackURL string
	// LinkID — идентификатор ссылки для телеметрии.
	LinkID string
}

// Build возвращает ссылки на перевод для варианта с известным банком.
// Для банков без настроенного шаблона возвращается false.
func Build(option model.PaymentOption) (Link, bool) {
	switch option.BankCode {
	case "sber":
		if option.Kind == model.PaymentKindPhone {
			return sberPhone(option.Identifier), true
		}
	case "tbank":
		if option.Kind == model.PaymentKindCard {
			return tbankCard(option.Identifier), true
		}
	case "vtb":
		return vtbGeneric(option.Kind, option.Identifier), true
	}
	return Link{}, false
}

// sberPhone собирает SMS/P2P-ссылку Сбербанка на перевод по телефону.
// Формат взят из публичного шаблона; diplink и fallback совпадают.
func sberPhone(phone string) Link {
	normalized := validation.NormalizePhoneE164(phone)
	u := "https://www.sberbank.com/sms/pbpn?requisiteNumber=" + normalized
	return Link{
		Deeplink:    u,
		FallbackURL: u,
		LinkID:      "sber:" + normalized,
	}
}

// tbankCard собирает ссылку Т-Банка на перевод по номеру карты.
func tbankCard(card string) Link {
	digits := validation.Digits(card)
	return Link{
		Deeplink:    "tbank://transfer/card?number=" + digits,
		FallbackURL: "https://www.tbank.ru/cards/transfer/?cardNumber=" + digits,
		LinkID:      "tbank:" + digits,
	}
}

// vtbGeneric собирает ссылки ВТБ для телефона или карты.
func vtbGeneric(kind model.PaymentKind, identifier string) Link {
	digits := validation.Digits(identifier)

	if kind == model.PaymentKindCard {
		return Link{
			Deeplink:    "vtb://transfer/card/" + digits,
			FallbackURL: "https://online.vtb.ru/payments/card2card?cardNumber=" + digits,
			LinkID:      "vtb:card:" + digits,
		}
	}

	phone := digits
	if !strings.HasPrefix(phone, "7") {
		phone = "7" + phone
	}
	return Link{
		Deeplink:    "vtb://p2p/" + phone,
		FallbackURL: "https://online.vtb.ru/payments/p2p?phone=" + phone,
		LinkID:      "vtb:phone:" + digits,
	}
}
