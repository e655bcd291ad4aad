// Package parser разбирает свободный текст inline-запроса
// на сумму перевода и упомянутые банки.
package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/potokpay/potok-system/internal/bankdir"
	"github.com/potokpay/potok-system/internal/model"
)

var (
	// Число с необязательным обозначением валюты: "500", "500р", "500 руб.", "500₽".
	amountTokenRe = regexp.MustCompile(`(?i)\d+\s*(?:руб|rub|р|p|₽)?\.?`)
	digitsRe      = regexp.MustCompile(`\d+`)
	// Пробелы и знаки препинания, которые не влияют на распознавание банка.
	bankNoiseRe = regexp.MustCompile(`[\s\-.,"'«»()]+`)
	spacesRe    = regexp.MustCompile(`\s+`)
)

// Parser извлекает из текста запроса сумму и коды банков по справочнику.
type Parser struct {
	dir *bankdir.Directory
}

// New создаёт парсер поверх справочника банков.
func New(dir *bankdir.Directory) *Parser {
	return &Parser{dir: dir}
}

// Parse разбирает текст inline-запроса. Никогда не возвращает ошибку:
// любой мусорный ввод даёт результат с незаполненными полями.
func (p *Parser) Parse(raw string) model.ParsedQuery {
	safe := strings.TrimSpace(raw)

	parsed := model.ParsedQuery{
		RawQuery:  safe,
		Amount:    extractAmount(safe),
		BankCodes: p.detectBankCodes(safe),
	}

	// Кандидат нужен только когда ни один банк не распознан:
	// по нему строится подсказка «Вы не клиент ...».
	if len(parsed.BankCodes) == 0 {
		parsed.BankCandidate = extractBankCandidate(safe)
	}

	return parsed
}

// extractAmount находит первую последовательность цифр и считает её суммой.
// Всё после первой группы цифр для суммы игнорируется.
func extractAmount(raw string) *int64 {
	digits := digitsRe.FindString(raw)
	if digits == "" {
		return nil
	}
	amount, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return nil
	}
	return &amount
}

// stripAmountTokens убирает из текста фрагменты «число + валюта»,
// чтобы цифры не мешали поиску названий банков.
func stripAmountTokens(raw string) string {
	return amountTokenRe.ReplaceAllString(raw, " ")
}

// normalizeBankText приводит строку к виду для сравнения с названиями банков:
// нижний регистр, ё→е, без пробелов и знаков препинания.
func normalizeBankText(text string) string {
	text = strings.ToLower(text)
	text = strings.ReplaceAll(text, "ё", "е")
	return bankNoiseRe.ReplaceAllString(text, "")
}

// detectBankCodes находит в тексте все банки из справочника.
// Коды возвращаются без повторов в порядке обхода справочника.
func (p *Parser) detectBankCodes(raw string) []string {
	if raw == "" {
		return nil
	}

	normText := normalizeBankText(stripAmountTokens(raw))
	if normText == "" {
		return nil
	}

	var found []string
	for _, bank := range p.dir.All() {
		variants := []string{bank.Code, bank.ButtonTitle, bank.MessageTitle}
		for _, variant := range variants {
			normVariant := normalizeBankText(variant)
			if normVariant == "" {
				continue
			}
			if strings.Contains(normText, normVariant) {
				found = append(found, bank.Code)
				break
			}
		}
	}
	return found
}

// extractBankCandidate выделяет остаток текста без сумм как кандидата
// на название банка, которого нет в справочнике.
func extractBankCandidate(raw string) string {
	if raw == "" {
		return ""
	}
	withoutAmount := stripAmountTokens(raw)
	return strings.TrimSpace(spacesRe.ReplaceAllString(withoutAmount, " "))
}
