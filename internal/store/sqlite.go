package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	apperrors "dividend-screener/internal/errors"
	"dividend-screener/internal/models"
)

// SQLiteStore implements DataStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-based data store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates all required tables and indexes.
func (s *SQLiteStore) initSchema() error {
	schema := `
	-- Ticker catalog
	CREATE TABLE IF NOT EXISTS tickers (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		symbol TEXT NOT NULL UNIQUE,
		company_name TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Daily price and moving-average history
	CREATE TABLE IF NOT EXISTS ticker_daily (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		ticker_id INTEGER NOT NULL,
		date DATE NOT NULL,
		price REAL,
		moving_avg_5 REAL,
		moving_avg_20 REAL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(ticker_id, date),
		FOREIGN KEY (ticker_id) REFERENCES tickers(id)
	);

	-- Dividend events, unique on ticker and ex-date
	CREATE TABLE IF NOT EXISTS dividends (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		ticker_id INTEGER NOT NULL,
		ex_date DATE NOT NULL,
		amount REAL NOT NULL,
		yield REAL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(ticker_id, ex_date),
		FOREIGN KEY (ticker_id) REFERENCES tickers(id)
	);

	-- Investment scores, unique on ticker and ex-date
	CREATE TABLE IF NOT EXISTS investment_scores (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		ticker_id INTEGER NOT NULL,
		ex_date DATE NOT NULL,
		score REAL NOT NULL,
		grade TEXT NOT NULL,
		calculated_at DATETIME NOT NULL,
		UNIQUE(ticker_id, ex_date),
		FOREIGN KEY (ticker_id) REFERENCES tickers(id)
	);

	CREATE INDEX IF NOT EXISTS idx_dividends_ex_date ON dividends(ex_date);
	CREATE INDEX IF NOT EXISTS idx_ticker_daily_date ON ticker_daily(ticker_id, date);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// UpsertTicker inserts or updates a ticker and returns its row id.
func (s *SQLiteStore) UpsertTicker(ctx context.Context, symbol, name string) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO tickers (symbol, company_name)
		VALUES (?, ?)
		ON CONFLICT(symbol) DO UPDATE SET company_name = excluded.company_name
		RETURNING id`,
		symbol, name).Scan(&id)
	if err != nil {
		return 0, apperrors.Wrap(err, "upserting ticker")
	}
	return id, nil
}

// InsertDailyPrice records one day of price history. Re-inserting the
// same (ticker, date) refreshes the stored averages.
func (s *SQLiteStore) InsertDailyPrice(ctx context.Context, tickerID int64, bar models.PriceBar) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ticker_daily (ticker_id, date, price, moving_avg_5, moving_avg_20)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(ticker_id, date) DO UPDATE SET
			price = excluded.price,
			moving_avg_5 = excluded.moving_avg_5,
			moving_avg_20 = excluded.moving_avg_20`,
		tickerID, bar.Date.String(), bar.Close, nullFloat(bar.MA5), nullFloat(bar.MA20))
	return apperrors.Wrap(err, "inserting daily price")
}

// UpsertDividend records a dividend event, last-write-wins on
// (ticker, ex-date).
func (s *SQLiteStore) UpsertDividend(ctx context.Context, tickerID int64, exDate models.Date, amount, yieldPct float64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO dividends (ticker_id, ex_date, amount, yield)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(ticker_id, ex_date) DO UPDATE SET
			amount = excluded.amount,
			yield = COALESCE(excluded.yield, dividends.yield)`,
		tickerID, exDate.String(), amount, nullFloat(yieldPct))
	return apperrors.Wrap(err, "upserting dividend")
}

// UpsertScore records an investment score, last-write-wins on
// (ticker, ex-date).
func (s *SQLiteStore) UpsertScore(ctx context.Context, tickerID int64, exDate models.Date, score float64, grade models.Grade) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO investment_scores (ticker_id, ex_date, score, grade, calculated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(ticker_id, ex_date) DO UPDATE SET
			score = excluded.score,
			grade = excluded.grade,
			calculated_at = excluded.calculated_at`,
		tickerID, exDate.String(), score, string(grade), time.Now().UTC())
	return apperrors.Wrap(err, "upserting score")
}

// ScoredDividends returns dividends in [start, end] with yield at least
// minYield, joined with their scores where present, ordered by ex-date.
func (s *SQLiteStore) ScoredDividends(ctx context.Context, minYield float64, start, end models.Date) ([]models.DividendEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.symbol, t.company_name, d.ex_date, d.amount, d.yield,
		       COALESCE(sc.score, 0), COALESCE(sc.grade, '?')
		FROM dividends d
		JOIN tickers t ON d.ticker_id = t.id
		LEFT JOIN investment_scores sc
			ON sc.ticker_id = d.ticker_id AND sc.ex_date = d.ex_date
		WHERE d.ex_date BETWEEN ? AND ?
		  AND d.yield IS NOT NULL AND d.yield >= ?
		ORDER BY d.ex_date ASC`,
		start.String(), end.String(), minYield)
	if err != nil {
		return nil, apperrors.Wrap(err, "querying scored dividends")
	}
	defer rows.Close()

	var events []models.DividendEvent
	for rows.Next() {
		var (
			ev        models.DividendEvent
			name      sql.NullString
			exDateStr string
			yieldPct  sql.NullFloat64
			grade     string
		)
		if err := rows.Scan(&ev.Ticker, &name, &exDateStr, &ev.CashAmount, &yieldPct, &ev.Score, &grade); err != nil {
			return nil, apperrors.Wrap(err, "scanning scored dividend")
		}
		exDate, err := models.ParseDate(exDateStr)
		if err != nil {
			continue
		}
		ev.ExDividendDate = exDate
		ev.Company = name.String
		ev.DividendYield = yieldPct.Float64
		ev.Grade = models.Grade(grade)
		events = append(events, ev)
	}
	return events, rows.Err()
}

// expectedColumns maps each table to the columns maintenance commands
// rely on.
var expectedColumns = map[string][]string{
	"tickers":           {"id", "symbol", "company_name"},
	"ticker_daily":      {"id", "ticker_id", "date", "price", "moving_avg_5", "moving_avg_20"},
	"dividends":         {"id", "ticker_id", "ex_date", "amount", "yield"},
	"investment_scores": {"id", "ticker_id", "ex_date", "score", "grade", "calculated_at"},
}

// ValidateSchema verifies that every expected table and column exists.
func (s *SQLiteStore) ValidateSchema(ctx context.Context) error {
	for table, columns := range expectedColumns {
		actual, err := s.tableColumns(ctx, table)
		if err != nil {
			return err
		}
		if len(actual) == 0 {
			return apperrors.NewSchemaError(table, "", "table present", "missing")
		}
		for _, col := range columns {
			if !actual[col] {
				return apperrors.NewSchemaError(table, col, "column present", "missing")
			}
		}
	}
	return nil
}

func (s *SQLiteStore) tableColumns(ctx context.Context, table string) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return nil, apperrors.Wrap(err, "reading table info")
	}
	defer rows.Close()

	columns := make(map[string]bool)
	for rows.Next() {
		var (
			cid       int
			name      string
			colType   string
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			return nil, err
		}
		columns[name] = true
	}
	return columns, rows.Err()
}

func nullFloat(v float64) sql.NullFloat64 {
	if v == 0 {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}
