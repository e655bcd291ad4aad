// Package repository содержит реализацию доступа к данным в PostgreSQL.
package repository

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/potokpay/potok-system/internal/model"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrSessionNotFound возвращается, если сессия перевода не найдена.
var ErrSessionNotFound = errors.New("transfer session not found")

// PostgresRepository предоставляет доступ к хранилищу данных в PostgreSQL:
// профилям пользователей и сессиям переводов.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository создаёт новый репозиторий и инициализирует схему БД через миграции.
func NewPostgresRepository(dsn string) (*PostgresRepository, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pool config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	r := &PostgresRepository{pool: pool}

	if err := r.runMigrations(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return r, nil
}

func (r *PostgresRepository) runMigrations(ctx context.Context) error {
	db := stdlib.OpenDBFromPool(r.pool)
	defer db.Close()

	goose.SetBaseFS(migrationsFS)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

func (r *PostgresRepository) withRetry(ctx context.Context, fn func() error) error {
	var err error
	delays := []time.Duration{1 * time.Second, 3 * time.Second, 5 * time.Second}

	for i := 0; i <= len(delays); i++ {
		err = fn()
		if err == nil {
			return nil
		}

		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}

		// Повторяем только временные ошибки: сериализацию и дедлоки.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == pgerrcode.SerializationFailure || pgErr.Code == pgerrcode.DeadlockDetected {
				if i < len(delays) {
					time.Sleep(delays[i])
					continue
				}
			}
		}

		if isConnectionError(err) {
			if i < len(delays) {
				time.Sleep(delays[i])
				continue
			}
		}

		break
	}
	return err
}

func isConnectionError(err error) bool {
	return strings.Contains(err.Error(), "connection refused") ||
		strings.Contains(err.Error(), "broken pipe") ||
		strings.Contains(err.Error(), "connection reset by peer")
}

// Close закрывает пул соединений с БД.
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

// EnsureUser создаёт или обновляет запись пользователя по Telegram ID.
func (r *PostgresRepository) EnsureUser(ctx context.Context, userID int64, firstName, lastName, username string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO users (id, first_name, last_name, username)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO UPDATE
		 SET first_name = EXCLUDED.first_name,
		     last_name  = EXCLUDED.last_name,
		     username   = EXCLUDED.username`,
		userID, firstName, lastName, username,
	)
	if err != nil {
		return fmt.Errorf("ensure user: %w", err)
	}
	return nil
}

// GetProfile возвращает платёжные реквизиты пользователя: телефоны
// с привязанными банками и карты. Порядок записей стабилен между
// чтениями. Пользователь без реквизитов — пустой профиль, не ошибка.
func (r *PostgresRepository) GetProfile(ctx context.Context, userID int64) (*model.Profile, error) {
	profile := &model.Profile{}

	phones, err := r.getPhones(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile.Phones = phones

	cards, err := r.getCards(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile.Cards = cards

	return profile, nil
}

func (r *PostgresRepository) getPhones(ctx context.Context, userID int64) ([]model.Phone, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, number, COALESCE(main_bank, '')
		 FROM phones
		 WHERE user_id = $1
		 ORDER BY id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("select phones: %w", err)
	}
	defer rows.Close()

	var phones []model.Phone
	phoneIdx := make(map[int64]int)

	for rows.Next() {
		var (
			id       int64
			number   string
			mainBank string
		)
		if err := rows.Scan(&id, &number, &mainBank); err != nil {
			return nil, fmt.Errorf("scan phone: %w", err)
		}
		phoneIdx[id] = len(phones)
		phones = append(phones, model.Phone{Number: number, MainBank: mainBank})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	if len(phones) == 0 {
		return nil, nil
	}

	bankRows, err := r.pool.Query(ctx,
		`SELECT pb.phone_id, pb.bank_code
		 FROM phone_banks pb
		 JOIN phones p ON p.id = pb.phone_id
		 WHERE p.user_id = $1
		 ORDER BY pb.id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("select phone banks: %w", err)
	}
	defer bankRows.Close()

	for bankRows.Next() {
		var (
			phoneID  int64
			bankCode string
		)
		if err := bankRows.Scan(&phoneID, &bankCode); err != nil {
			return nil, fmt.Errorf("scan phone bank: %w", err)
		}
		if idx, ok := phoneIdx[phoneID]; ok {
			phones[idx].Banks = append(phones[idx].Banks, bankCode)
		}
	}
	if err := bankRows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return phones, nil
}

func (r *PostgresRepository) getCards(ctx context.Context, userID int64) ([]model.Card, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT number, COALESCE(bank_code, '')
		 FROM cards
		 WHERE user_id = $1
		 ORDER BY id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("select cards: %w", err)
	}
	defer rows.Close()

	var cards []model.Card
	for rows.Next() {
		var c model.Card
		if err := rows.Scan(&c.Number, &c.Bank); err != nil {
			return nil, fmt.Errorf("scan card: %w", err)
		}
		cards = append(cards, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return cards, nil
}

// UpsertSession сохраняет подтверждённый контекст перевода.
// Повторная запись того же transfer_id обновляет контекст,
// сохраняя первоначальное время создания.
func (r *PostgresRepository) UpsertSession(ctx context.Context, transferID string, requesterID int64, contextJSON string) error {
	return r.withRetry(ctx, func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO transfer_sessions (transfer_id, requester_id, context_json)
			 VALUES ($1, $2, $3)
			 ON CONFLICT (transfer_id) DO UPDATE
			 SET requester_id = EXCLUDED.requester_id,
			     context_json = EXCLUDED.context_json,
			     updated_at   = now()`,
			transferID, requesterID, contextJSON,
		)
		if err != nil {
			return fmt.Errorf("upsert session: %w", err)
		}
		return nil
	})
}

// GetSession возвращает сохранённый контекст перевода по идентификатору.
func (r *PostgresRepository) GetSession(ctx context.Context, transferID string) (string, error) {
	var contextJSON string
	err := r.pool.QueryRow(ctx,
		`SELECT context_json FROM transfer_sessions WHERE transfer_id = $1`,
		transferID,
	).Scan(&contextJSON)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrSessionNotFound
		}
		return "", fmt.Errorf("get session: %w", err)
	}
	return contextJSON, nil
}
