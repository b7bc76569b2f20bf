// Package postgres содержит слой доступа к PostgreSQL: пул соединений,
// создание схемы и запросы по ссылкам пользователя.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/zauremazhikova/linkpage/internal/config"
	"github.com/zauremazhikova/linkpage/internal/logger"
	"github.com/zauremazhikova/linkpage/internal/logger/message"
)

type SQLConnection struct {
	PgSQL   *pgxpool.Pool
	Timeout time.Duration
}

var (
	pgSQL *SQLConnection
)

// SQLInstance возвращает (лениво инициализируя) пул соединений с PostgreSQL.
func SQLInstance() (*SQLConnection, error) {
	if pgSQL != nil {
		return pgSQL, nil
	}

	cfg := config.AppConfig.PGConfig
	timeout := time.Duration(cfg.DBTimeout) * time.Second

	pgCfg, err := pgxpool.ParseConfig(cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to parse PG config: %w", err)
	}

	dbPool, err := pgxpool.ConnectConfig(context.Background(), pgCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PG: %w", err)
	}

	pgSQL = &SQLConnection{
		PgSQL:   dbPool,
		Timeout: timeout,
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err = pgSQL.PgSQL.Ping(ctx); err != nil {
		return nil, fmt.Errorf(`failed ping: %w`, err)
	}

	return pgSQL, nil
}

// Ping проверяет доступность базы данных.
func (*SQLConnection) Ping() error {
	if pgSQL != nil && pgSQL.PgSQL != nil {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		err := pgSQL.PgSQL.Ping(ctx)
		if err != nil {
			return fmt.Errorf(`failed ping: %w`, err)
		}
	} else {
		return fmt.Errorf(`database connection pool is closed`)
	}
	return nil
}

// CloseSQLInstance закрывает пул соединений.
func (*SQLConnection) CloseSQLInstance() {
	if pgSQL != nil && pgSQL.PgSQL != nil {
		logger.Log.Info(&message.LogMessage{Message: "Closing database connection pool..."})
		pgSQL.PgSQL.Close()
		pgSQL = nil // Сбрасываем инстанс
		logger.Log.Info(&message.LogMessage{Message: "Database connection pool closed."})
	}
}

// CreateTables создает схему приложения.
// Уникальный индекс (user_id, position) гарантирует инвариант уникальности
// позиций и заставляет переупорядочивание быть двухфазным (см. ReorderLinks).
func CreateTables(db *SQLConnection) error {
	ctx := context.Background()
	_, err := db.PgSQL.Exec(ctx,
		`CREATE TABLE IF NOT EXISTS links (
        id TEXT PRIMARY KEY,
        user_id TEXT NOT NULL,
        title TEXT NOT NULL,
        url TEXT NOT NULL,
        description TEXT NOT NULL DEFAULT '',
        icon TEXT NOT NULL DEFAULT '',
        emoji TEXT NOT NULL DEFAULT '',
        is_active BOOLEAN NOT NULL DEFAULT TRUE,
        clicks INTEGER NOT NULL DEFAULT 0,
        position INTEGER NOT NULL,
        created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
        updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
        CONSTRAINT links_user_position_unique UNIQUE (user_id, position)
      )`)
	if err != nil {
		return err
	}
	return nil
}

// PrepareDB инициализирует соединение и схему; ошибки только логируются.
func PrepareDB() {
	db, err := SQLInstance()
	if err != nil {
		logger.Log.Error(&message.LogMessage{Message: fmt.Sprintf("DB Prepare ERROR: %s", err)})
		return
	}
	err = CreateTables(db)
	if err != nil {
		logger.Log.Error(&message.LogMessage{Message: fmt.Sprintf("DB CreateTables ERROR: %s", err)})
	}
}
