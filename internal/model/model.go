// Package model содержит доменные сущности движка inline-переводов.
package model

// PaymentKind описывает тип платёжного реквизита.
type PaymentKind string

const (
	// PaymentKindPhone — перевод по номеру телефона.
	PaymentKindPhone PaymentKind = "phone"
	// PaymentKindCard — перевод по номеру карты.
	PaymentKindCard PaymentKind = "card"
)

// PayloadSchemaVersion — текущая версия схемы TransferPayload.
// Поле schema_version позволяет потребителям токена отличать
// несовместимые изменения формата.
const PayloadSchemaVersion = 1

// ParsedQuery — результат разбора текста inline-запроса.
// Инвариант: BankCandidate заполняется только когда BankCodes пуст.
type ParsedQuery struct {
	RawQuery      string   `json:"raw_query"`
	Amount        *int64   `json:"amount"`
	BankCodes     []string `json:"bank_codes"`
	BankCandidate string   `json:"bank_candidate,omitempty"`
}

// Phone описывает номер телефона пользователя.
// Один номер может быть привязан к нескольким банкам,
// порядок привязки сохраняется.
type Phone struct {
	Number   string
	Banks    []string
	MainBank string
}

// Card описывает банковскую карту пользователя.
type Card struct {
	Number string
	Bank   string
}

// Profile — платёжные реквизиты пользователя из хранилища профилей.
// Порядок телефонов и карт стабилен между чтениями: от него зависит
// детерминизм списка вариантов.
type Profile struct {
	Phones []Phone
	Cards  []Card
}

// PaymentOption — один вариант перевода в inline-списке.
// BankCode == "" — вариант «любой банк»: допустим только для телефона
// с привязанными банками и только при запросе без фильтра по банку.
type PaymentOption struct {
	Kind        PaymentKind `json:"kind"`
	Identifier  string      `json:"identifier"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Amount      *int64      `json:"amount"`
	BankCode    string      `json:"bank_code,omitempty"`
}

// TransferPayload — полный восстанавливаемый контекст перевода.
// Намеренно не содержит времени создания: любое меняющееся поле
// сломало бы побитовое равенство идентификаторов между событием
// показа и событием выбора.
type TransferPayload struct {
	SchemaVersion int           `json:"schema_version"`
	RequesterID   int64         `json:"requester_id"`
	RawQuery      string        `json:"raw_query"`
	Parsed        ParsedQuery   `json:"parsed"`
	Option        PaymentOption `json:"option"`
}

// TransferPackage — подписанный конверт для TransferPayload.
// Signature — первые 12 байт HMAC-SHA256 от канонического JSON payload.
type TransferPackage struct {
	Payload   TransferPayload `json:"payload"`
	Signature []byte          `json:"signature"`
}
