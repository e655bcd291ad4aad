// Package engine реализует подбор inline-вариантов перевода
// и корреляцию выбранного варианта без промежуточной записи в БД.
package engine

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/potokpay/potok-system/internal/bankdir"
	"github.com/potokpay/potok-system/internal/cache"
	"github.com/potokpay/potok-system/internal/model"
	"github.com/potokpay/potok-system/internal/options"
	"github.com/potokpay/potok-system/internal/parser"
	"github.com/potokpay/potok-system/internal/token"
)

// Фиксированные идентификаторы подсказок-заглушек.
const (
	// FallbackIDBankNotClient — «вы не клиент этого банка».
	FallbackIDBankNotClient = "bank_not_client"
	// FallbackIDNoMethods — у пользователя нет сохранённых реквизитов.
	FallbackIDNoMethods = "no_payment_methods"
)

// cacheTTL — время жизни кэшей профиля и списка вариантов.
// Telegram переспрашивает inline-результаты на каждое нажатие клавиши,
// профиль за это время практически не меняется.
const cacheTTL = 30 * time.Second

var (
	suggestTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "potok_suggest_rounds_total",
		Help: "Processed inline suggestion rounds",
	})
	fallbackTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "potok_suggest_fallbacks_total",
		Help: "Suggestion rounds answered with a fallback record",
	}, []string{"kind"})
	correlateTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "potok_correlate_total",
		Help: "Correlation attempts by outcome",
	}, []string{"outcome"})
)

// ProfileStore — контракт чтения платёжных реквизитов пользователя.
// Чтение идемпотентно и не имеет побочных эффектов.
type ProfileStore interface {
	GetProfile(ctx context.Context, userID int64) (*model.Profile, error)
}

// SessionStore — контракт записи подтверждённого контекста перевода.
type SessionStore interface {
	UpsertSession(ctx context.Context, transferID string, requesterID int64, contextJSON string) error
}

// Suggestion — одна запись ответа на inline-запрос.
type Suggestion struct {
	ID          string
	Title       string
	Description string
	DeepLinkURL string
	IconURL     string
	Fallback    bool
	Option      model.PaymentOption
	Parsed      model.ParsedQuery
}

// Engine связывает парсер, сборщик вариантов и кодек токенов.
// Конструируется один раз при старте процесса.
type Engine struct {
	profiles   ProfileStore
	sessions   SessionStore
	dir        *bankdir.Directory
	parser     *parser.Parser
	builder    *options.Builder
	codec      *token.Codec
	logger     *zap.Logger
	miniAppURL string

	profileCache *cache.TTL[int64, *model.Profile]
	optionCache  *cache.TTL[string, []model.PaymentOption]
}

// New создаёт движок подсказок. miniAppURL — адрес Mini App,
// к которому диплинк добавляет параметр startapp с токеном.
func New(
	profiles ProfileStore,
	sessions SessionStore,
	dir *bankdir.Directory,
	codec *token.Codec,
	logger *zap.Logger,
	miniAppURL string,
) *Engine {
	return &Engine{
		profiles:     profiles,
		sessions:     sessions,
		dir:          dir,
		parser:       parser.New(dir),
		builder:      options.New(dir),
		codec:        codec,
		logger:       logger,
		miniAppURL:   miniAppURL,
		profileCache: cache.NewTTL[int64, *model.Profile](cacheTTL),
		optionCache:  cache.NewTTL[string, []model.PaymentOption](cacheTTL),
	}
}

// Suggest разбирает текст запроса и возвращает упорядоченный список
// подсказок. Для пустого списка вариантов возвращается ровно одна
// подсказка-заглушка. Единственная фатальная для запроса ошибка —
// недоступность хранилища профилей.
func (e *Engine) Suggest(ctx context.Context, requesterID int64, rawText string) ([]Suggestion, error) {
	suggestTotal.Inc()

	parsed := e.parser.Parse(rawText)

	opts, err := e.buildOptions(ctx, requesterID, parsed)
	if err != nil {
		return nil, err
	}

	if len(opts) == 0 {
		return []Suggestion{e.fallbackSuggestion(parsed)}, nil
	}

	suggestions := make([]Suggestion, 0, len(opts))
	for _, opt := range opts {
		payload := model.TransferPayload{
			SchemaVersion: model.PayloadSchemaVersion,
			RequesterID:   requesterID,
			RawQuery:      parsed.RawQuery,
			Parsed:        parsed,
			Option:        opt,
		}

		tok, err := e.codec.Encode(payload)
		if err != nil {
			// Кодирование «тотально» для корректных структур; сюда
			// попадаем только при порче данных — вариант пропускаем.
			e.logger.Error("encode transfer payload", zap.Error(err))
			continue
		}

		suggestions = append(suggestions, Suggestion{
			ID:          token.ShortID(tok),
			Title:       opt.Title,
			Description: opt.Description,
			DeepLinkURL: e.deepLinkURL(tok),
			IconURL:     e.dir.LogoURL(opt.BankCode),
			Option:      opt,
			Parsed:      parsed,
		})
	}

	return suggestions, nil
}

// Correlate повторяет путь подбора для исходного текста и ищет вариант,
// чей короткий идентификатор совпал с присланным. Совпадение фиксируется
// в хранилище сессий; промах — штатная ситуация (реквизиты могли
// измениться между показом и выбором) и не считается ошибкой.
func (e *Engine) Correlate(ctx context.Context, requesterID int64, rawText, shortID string) (*model.TransferPayload, error) {
	parsed := e.parser.Parse(rawText)

	opts, err := e.buildOptions(ctx, requesterID, parsed)
	if err != nil {
		return nil, err
	}

	for _, opt := range opts {
		payload := model.TransferPayload{
			SchemaVersion: model.PayloadSchemaVersion,
			RequesterID:   requesterID,
			RawQuery:      parsed.RawQuery,
			Parsed:        parsed,
			Option:        opt,
		}

		tok, err := e.codec.Encode(payload)
		if err != nil {
			e.logger.Error("encode transfer payload", zap.Error(err))
			continue
		}
		if token.ShortID(tok) != shortID {
			continue
		}

		correlateTotal.WithLabelValues("match").Inc()
		e.persistSession(ctx, shortID, requesterID, payload)
		return &payload, nil
	}

	correlateTotal.WithLabelValues("miss").Inc()
	e.logger.Warn("transfer correlation miss",
		zap.Int64("requesterID", requesterID),
		zap.String("shortID", shortID),
	)
	return nil, nil
}

// persistSession отправляет подтверждённый контекст в хранилище сессий.
// Сбой записи не отменяет уже совершённый пользователем выбор,
// поэтому ограничиваемся предупреждением в логе.
func (e *Engine) persistSession(ctx context.Context, shortID string, requesterID int64, payload model.TransferPayload) {
	contextJSON, err := token.CanonicalJSON(payload)
	if err != nil {
		e.logger.Error("marshal session context", zap.Error(err))
		return
	}

	if err := e.sessions.UpsertSession(ctx, shortID, requesterID, string(contextJSON)); err != nil {
		e.logger.Warn("upsert transfer session",
			zap.Error(err),
			zap.String("transferID", shortID),
		)
	}
}

// buildOptions возвращает список вариантов, пользуясь кэшами профиля
// и готовых списков. Оба события протокола (показ и выбор) проходят
// через этот же путь, что гарантирует идентичный пересчёт.
func (e *Engine) buildOptions(ctx context.Context, requesterID int64, parsed model.ParsedQuery) ([]model.PaymentOption, error) {
	key, err := optionCacheKey(requesterID, parsed)
	if err != nil {
		return nil, fmt.Errorf("option cache key: %w", err)
	}

	if cached, ok := e.optionCache.Get(key); ok {
		return cached, nil
	}

	profile, err := e.profile(ctx, requesterID)
	if err != nil {
		return nil, err
	}

	opts := e.builder.Build(profile, parsed)
	e.optionCache.Set(key, opts)
	return opts, nil
}

func (e *Engine) profile(ctx context.Context, requesterID int64) (*model.Profile, error) {
	if cached, ok := e.profileCache.Get(requesterID); ok {
		return cached, nil
	}

	profile, err := e.profiles.GetProfile(ctx, requesterID)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}

	e.profileCache.Set(requesterID, profile)
	return profile, nil
}

// optionCacheKey складывает исходный текст и канонический JSON разбора:
// разные запросы с одинаковым разбором кэшируются раздельно.
func optionCacheKey(requesterID int64, parsed model.ParsedQuery) (string, error) {
	canonical, err := token.CanonicalJSON(parsed)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d\n%s\n%s", requesterID, parsed.RawQuery, canonical), nil
}

func (e *Engine) deepLinkURL(tok string) string {
	return e.miniAppURL + "?startapp=" + url.QueryEscape(tok)
}

// fallbackSuggestion строит единственную подсказку для пустого списка
// вариантов: либо «вы не клиент банка», либо «нет реквизитов».
func (e *Engine) fallbackSuggestion(parsed model.ParsedQuery) Suggestion {
	if len(parsed.BankCodes) > 0 || parsed.BankCandidate != "" {
		bankTitle := parsed.BankCandidate
		if len(parsed.BankCodes) > 0 {
			if title := e.dir.DisplayTitle(parsed.BankCodes[0]); title != "" {
				bankTitle = title
			}
		}
		if bankTitle == "" {
			bankTitle = "этого банка"
		}

		fallbackTotal.WithLabelValues("bank_not_client").Inc()
		return Suggestion{
			ID:          FallbackIDBankNotClient,
			Title:       fmt.Sprintf("Вы не клиент %q", bankTitle),
			Description: "Бот не нашёл ни одного номера телефона или карты, подключённых к этому банку.",
			Fallback:    true,
			Parsed:      parsed,
		}
	}

	fallbackTotal.WithLabelValues("no_methods").Inc()
	return Suggestion{
		ID:          FallbackIDNoMethods,
		Title:       "У вас нет сохранённых реквизитов",
		Description: "Откройте бота и добавьте номер телефона или карту в личном кабинете.",
		Fallback:    true,
		Parsed:      parsed,
	}
}
