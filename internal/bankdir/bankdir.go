// Package bankdir содержит статический справочник банков.
package bankdir

// Bank — одна запись справочника.
type Bank struct {
	Code         string // внутренний код ("sber", "tbank", ...)
	ButtonTitle  string // короткое название для кнопок и заголовков
	MessageTitle string // полное название для текстов сообщений
}

// defaultBanks — порядок записей определяет порядок поиска банков
// в тексте запроса и порядок кодов в ParsedQuery.BankCodes.
var defaultBanks = []Bank{
	{Code: "sber", ButtonTitle: "Сбер", MessageTitle: "Сбербанк"},
	{Code: "tbank", ButtonTitle: "Т-Банк", MessageTitle: "Т-Банк (Тинькофф)"},
	{Code: "vtb", ButtonTitle: "ВТБ", MessageTitle: "Банк ВТБ"},
	{Code: "alfa", ButtonTitle: "Альфа", MessageTitle: "Альфа-Банк"},
	{Code: "mkb", ButtonTitle: "МКБ", MessageTitle: "Московский Кредитный Банк"},
	{Code: "psb", ButtonTitle: "ПСБ", MessageTitle: "Промсвязьбанк"},
	{Code: "gazprom", ButtonTitle: "Газпромбанк", MessageTitle: "Газпромбанк"},
	{Code: "pochtab", ButtonTitle: "Почта Банк", MessageTitle: "Почта Банк"},
	{Code: "rshb", ButtonTitle: "РСХБ", MessageTitle: "Россельхозбанк"},
	{Code: "sovcom", ButtonTitle: "Совком", MessageTitle: "Совкомбанк"},
	{Code: "mtsbank", ButtonTitle: "МТС Банк", MessageTitle: "МТС Банк"},
}

// logoFiles сопоставляет код банка с именем файла логотипа.
// Логотипы лежат на публичном HTTPS-хостинге: Telegram не умеет
// забирать превью с локального диска бота.
var logoFiles = map[string]string{
	"sber":    "LOGO_SBER.png",
	"tbank":   "LOGO_TBANK.png",
	"vtb":     "LOGO_VTB.png",
	"alfa":    "LOGO_ALFABANK.png",
	"mkb":     "LOGO_MKB.png",
	"psb":     "LOGO_PSB.png",
	"gazprom": "LOGO_GAZPROMBANK.png",
	"pochtab": "LOGO_POCHTABANK.png",
	"rshb":    "LOGO_RSHB.png",
	"sovcom":  "LOGO_SOVKOMBANK.png",
	"mtsbank": "LOGO_MTSBANK.png",
}

// Directory — загруженный при старте процесса справочник банков.
// После создания не изменяется.
type Directory struct {
	banks       []Bank
	index       map[string]Bank
	logoBaseURL string
}

// New создаёт справочник со встроенным набором банков.
// logoBaseURL — базовый HTTPS-адрес хостинга логотипов.
func New(logoBaseURL string) *Directory {
	return NewWithBanks(defaultBanks, logoBaseURL)
}

// NewWithBanks создаёт справочник из произвольного набора записей.
func NewWithBanks(banks []Bank, logoBaseURL string) *Directory {
	index := make(map[string]Bank, len(banks))
	for _, b := range banks {
		index[b.Code] = b
	}
	return &Directory{
		banks:       banks,
		index:       index,
		logoBaseURL: logoBaseURL,
	}
}

// All возвращает все записи справочника в порядке объявления.
func (d *Directory) All() []Bank {
	return d.banks
}

// Get возвращает запись банка по коду.
func (d *Directory) Get(code string) (Bank, bool) {
	b, ok := d.index[code]
	return b, ok
}

// DisplayTitle возвращает человекочитаемое название банка:
// короткое, если оно есть, иначе полное. Для неизвестного кода — "".
func (d *Directory) DisplayTitle(code string) string {
	b, ok := d.index[code]
	if !ok {
		return ""
	}
	if b.ButtonTitle != "" {
		return b.ButtonTitle
	}
	return b.MessageTitle
}

// LogoURL возвращает HTTPS-адрес логотипа банка или "",
// если логотип для кода не настроен.
func (d *Directory) LogoURL(code string) string {
	file, ok := logoFiles[code]
	if !ok || d.logoBaseURL == "" {
		return ""
	}
	base := d.logoBaseURL
	if base[len(base)-1] != '/' {
		base += "/"
	}
	return base + file
}
