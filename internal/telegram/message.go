package telegram

import (
	"fmt"
	"strings"

	"github.com/potokpay/potok-system/internal/bankdir"
	"github.com/potokpay/potok-system/internal/model"
)

// messagePlug показывается вместо суммы или банка, когда данных нет.
// Подчёркивания — курсив в легаси-Markdown.
const messagePlug = "_Уточните у получателя_"

// BuildTransferText собирает текст сообщения, которое попадает в чат
// после выбора варианта из inline-списка. Формат — три строки:
// сумма, «банк • реквизит» и опциональное ФИО получателя.
// Полный реквизит здесь допустим: сообщение уходит только в выбранный чат.
func BuildTransferText(dir *bankdir.Directory, option model.PaymentOption, parsed model.ParsedQuery, fio string) string {
	amountValue := messagePlug
	if option.Amount != nil {
		amountValue = fmt.Sprintf("`%d`* ₽*", *option.Amount)
	}

	lines := []string{
		"*Сумма • * " + amountValue,
		recipientBank(dir, option, parsed) + " • " + option.Identifier,
	}

	if fio = strings.TrimSpace(fio); fio != "" {
		lines = append(lines, fio)
	}

	return strings.Join(lines, "\n")
}

// recipientBank выбирает название банка для второй строки: сначала банк
// самого реквизита, затем банк из запроса (для варианта «любой банк»),
// иначе заглушка.
func recipientBank(dir *bankdir.Directory, option model.PaymentOption, parsed model.ParsedQuery) string {
	bankCode := option.BankCode
	if bankCode == "" && len(parsed.BankCodes) > 0 {
		bankCode = parsed.BankCodes[0]
	}

	if title := dir.DisplayTitle(bankCode); title != "" {
		return title
	}
	return messagePlug
}
