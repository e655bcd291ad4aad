// Package telegram содержит транспорт Telegram Bot API:
// приём inline-запросов и событий выбора варианта.
//
// Событие chosen_inline_result приходит от Telegram только если
// для бота включён inline feedback (/setinlinefeedback у BotFather).
package telegram

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/potokpay/potok-system/internal/bankdir"
	"github.com/potokpay/potok-system/internal/engine"
	"github.com/potokpay/potok-system/internal/model"
)

var allowedUpdates = bot.AllowedUpdates{
	"message",
	"inline_query",
	"chosen_inline_result",
}

// Engine определяет контракт движка подсказок, используемый транспортом.
type Engine interface {
	Suggest(ctx context.Context, requesterID int64, rawText string) ([]engine.Suggestion, error)
	Correlate(ctx context.Context, requesterID int64, rawText, shortID string) (*model.TransferPayload, error)
}

// UserRegistrar фиксирует пользователей, от которых приходят обновления.
type UserRegistrar interface {
	EnsureUser(ctx context.Context, userID int64, firstName, lastName, username string) error
}

// Bot связывает Telegram-клиент с движком подсказок.
type Bot struct {
	client *bot.Bot
	engine Engine
	users  UserRegistrar
	dir    *bankdir.Directory
	logger *zap.Logger
}

// New создаёт Telegram-бота с long polling.
func New(token string, e Engine, users UserRegistrar, dir *bankdir.Directory, logger *zap.Logger) (*Bot, error) {
	t := &Bot{
		engine: e,
		users:  users,
		dir:    dir,
		logger: logger,
	}

	client, err := bot.New(token,
		bot.WithDefaultHandler(t.handleUpdate),
		bot.WithAllowedUpdates(allowedUpdates),
	)
	if err != nil {
		return nil, err
	}

	t.client = client
	return t, nil
}

// Start запускает long polling до отмены контекста.
func (t *Bot) Start(ctx context.Context) {
	t.client.Start(ctx)
}

func (t *Bot) handleUpdate(ctx context.Context, _ *bot.Bot, update *models.Update) {
	switch {
	case update.InlineQuery != nil:
		t.handleInlineQuery(ctx, update.InlineQuery)
	case update.ChosenInlineResult != nil:
		t.handleChosenInlineResult(ctx, update.ChosenInlineResult)
	}
}

func (t *Bot) handleInlineQuery(ctx context.Context, q *models.InlineQuery) {
	if q.From == nil {
		return
	}

	t.ensureUser(ctx, q.From)

	suggestions, err := t.engine.Suggest(ctx, q.From.ID, q.Query)
	if err != nil {
		t.logger.Error("suggest inline options",
			zap.Error(err),
			zap.Int64("userID", q.From.ID),
		)
		// Без профиля подсказки не построить; отвечаем пустым списком,
		// чтобы клиент не ждал до таймаута.
		t.answer(ctx, q.ID, nil)
		return
	}

	fio := strings.TrimSpace(q.From.FirstName + " " + q.From.LastName)

	results := make([]models.InlineQueryResult, 0, len(suggestions))
	for _, s := range suggestions {
		results = append(results, t.buildArticle(s, fio))
	}

	t.answer(ctx, q.ID, results)
}

func (t *Bot) buildArticle(s engine.Suggestion, fio string) models.InlineQueryResult {
	article := &models.InlineQueryResultArticle{
		ID:          s.ID,
		Title:       s.Title,
		Description: s.Description,
	}

	if s.Fallback {
		article.InputMessageContent = &models.InputTextMessageContent{
			MessageText: s.Title + "\n\n" + s.Description,
		}
		return article
	}

	article.ThumbnailURL = s.IconURL
	article.InputMessageContent = &models.InputTextMessageContent{
		MessageText: BuildTransferText(t.dir, s.Option, s.Parsed, fio),
		// Тексты используют разметку легаси-Markdown («*», «_», «`»).
		ParseMode: models.ParseMode("Markdown"),
	}
	article.ReplyMarkup = models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{
				{Text: "✅ Перевести", URL: s.DeepLinkURL},
			},
		},
	}

	return article
}

func (t *Bot) answer(ctx context.Context, queryID string, results []models.InlineQueryResult) {
	_, err := t.client.AnswerInlineQuery(ctx, &bot.AnswerInlineQueryParams{
		InlineQueryID: queryID,
		Results:       results,
		// Без кэша на стороне Telegram: список пересчитывается
		// на каждое нажатие клавиши и персонален для пользователя.
		CacheTime:  0,
		IsPersonal: true,
	})
	if err != nil {
		t.logger.Error("answer inline query", zap.Error(err), zap.String("queryID", queryID))
	}
}

func (t *Bot) handleChosenInlineResult(ctx context.Context, r *models.ChosenInlineResult) {
	// В chosen_inline_result поле From — значение, не указатель.
	if r.From.ID == 0 {
		return
	}

	// Заглушки не соответствуют ни одному варианту перевода.
	if r.ResultID == engine.FallbackIDBankNotClient || r.ResultID == engine.FallbackIDNoMethods {
		return
	}

	payload, err := t.engine.Correlate(ctx, r.From.ID, r.Query, r.ResultID)
	if err != nil {
		t.logger.Error("correlate chosen result",
			zap.Error(err),
			zap.Int64("userID", r.From.ID),
			zap.String("resultID", r.ResultID),
		)
		return
	}
	if payload == nil {
		// Промах уже залогирован движком; записывать нечего.
		return
	}

	t.logger.Info("transfer option chosen",
		zap.Int64("userID", r.From.ID),
		zap.String("transferID", r.ResultID),
		zap.String("kind", string(payload.Option.Kind)),
	)
}

func (t *Bot) ensureUser(ctx context.Context, from *models.User) {
	if t.users == nil {
		return
	}
	if err := t.users.EnsureUser(ctx, from.ID, from.FirstName, from.LastName, from.Username); err != nil {
		t.logger.Warn("ensure user", zap.Error(err), zap.Int64("userID", from.ID))
	}
}
