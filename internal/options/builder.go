// Package options превращает профиль пользователя и разобранный запрос
// в список вариантов перевода для inline-списка.
package options

import (
	"github.com/potokpay/potok-system/internal/bankdir"
	"github.com/potokpay/potok-system/internal/model"
	"github.com/potokpay/potok-system/internal/validation"
)

// Builder собирает варианты перевода. Чистая функция своих входов:
// ни ввода-вывода, ни обращений к часам.
type Builder struct {
	dir *bankdir.Directory
}

// New создаёт сборщик вариантов поверх справочника банков.
func New(dir *bankdir.Directory) *Builder {
	return &Builder{dir: dir}
}

// Build возвращает список вариантов перевода для профиля и запроса.
//
// Если запрос называет банки, работает режим фильтра: для каждого
// запрошенного банка независимо отбираются телефоны и карты этого банка,
// и у варианта фиксируется именно запрошенный банк. Без фильтра каждый
// телефон с привязками даёт вариант «любой банк» и, при наличии основного
// банка, второй вариант с ним; карты дают по одному варианту со своим банком.
//
// Асимметрия режимов (вариант «любой банк» существует только без фильтра)
// намеренная: выбор банка остаётся за плательщиком лишь тогда, когда
// отправитель его не ограничил.
//
// Пустой профиль — не ошибка: возвращается пустой список, из которого
// вызывающая сторона делает подсказку-заглушку.
func (b *Builder) Build(profile *model.Profile, parsed model.ParsedQuery) []model.PaymentOption {
	if profile == nil {
		return nil
	}

	if len(parsed.BankCodes) > 0 {
		return b.buildFiltered(profile, parsed)
	}
	return b.buildUnfiltered(profile, parsed)
}

func (b *Builder) buildFiltered(profile *model.Profile, parsed model.ParsedQuery) []model.PaymentOption {
	var result []model.PaymentOption

	for _, filter := range parsed.BankCodes {
		// Сначала телефоны, затем карты — внутри каждого банка из фильтра.
		for _, phone := range profile.Phones {
			if !phoneMatchesBank(phone, filter) {
				continue
			}
			result = append(result, b.phoneOption(phone.Number, filter, parsed.Amount, false))
		}
		for _, card := range profile.Cards {
			if card.Bank != filter {
				continue
			}
			if !validCardNumber(card.Number) {
				continue
			}
			result = append(result, b.cardOption(card.Number, filter, parsed.Amount))
		}
	}

	return result
}

func (b *Builder) buildUnfiltered(profile *model.Profile, parsed model.ParsedQuery) []model.PaymentOption {
	var result []model.PaymentOption

	for _, phone := range profile.Phones {
		if len(phone.Banks) == 0 {
			continue
		}
		// Вариант «любой банк»: плательщик сам выберет, откуда переводить.
		result = append(result, b.phoneOption(phone.Number, "", parsed.Amount, true))
		if phone.MainBank != "" {
			result = append(result, b.phoneOption(phone.Number, phone.MainBank, parsed.Amount, false))
		}
	}

	for _, card := range profile.Cards {
		if !validCardNumber(card.Number) {
			continue
		}
		result = append(result, b.cardOption(card.Number, card.Bank, parsed.Amount))
	}

	return result
}

// validCardNumber отсеивает карты с битой контрольной суммой:
// из такого реквизита не собрать работающий перевод.
func validCardNumber(number string) bool {
	return validation.IsValidCardNumber(validation.Digits(number))
}

func phoneMatchesBank(phone model.Phone, bankCode string) bool {
	if phone.MainBank == bankCode {
		return true
	}
	for _, code := range phone.Banks {
		if code == bankCode {
			return true
		}
	}
	return false
}

func (b *Builder) phoneOption(number, bankCode string, amount *int64, anyBank bool) model.PaymentOption {
	display := FormatPhoneShort(number)
	bankTitle := b.dir.DisplayTitle(bankCode)

	return model.PaymentOption{
		Kind:        model.PaymentKindPhone,
		Identifier:  number,
		Title:       phoneTitle(display, amount, bankTitle),
		Description: phoneDescription(display, amount, bankTitle, anyBank),
		Amount:      amount,
		BankCode:    bankCode,
	}
}

func (b *Builder) cardOption(number, bankCode string, amount *int64) model.PaymentOption {
	display := FormatCardShort(number)
	bankTitle := b.dir.DisplayTitle(bankCode)

	return model.PaymentOption{
		Kind:        model.PaymentKindCard,
		Identifier:  number,
		Title:       cardTitle(display, amount, bankTitle),
		Description: cardDescription(display, amount, bankTitle),
		Amount:      amount,
		BankCode:    bankCode,
	}
}
