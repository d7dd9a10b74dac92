package tick

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/muhammadchandra19/tick-extractor/pkg/questdb"
)

// Repository persists extracted ticks in QuestDB.
type Repository struct {
	client questdb.QuestDBClient
}

// NewRepository creates a new tick repository.
func NewRepository(client questdb.QuestDBClient) *Repository {
	return &Repository{
		client: client,
	}
}

// Store stores a single tick row.
func (r *Repository) Store(ctx context.Context, record *Record) error {
	query := `INSERT INTO ticks (timestamp, broker, symbol, bid, ask, last, volume, mode)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	err := r.client.Exec(ctx, query,
		record.Timestamp, record.Broker, record.Symbol,
		record.Bid, record.Ask, record.Last, record.Volume, record.Mode)

	if err != nil {
		return fmt.Errorf("failed to store tick: %w", err)
	}

	return nil
}

// StoreBatch stores a batch of tick rows with CopyFrom.
func (r *Repository) StoreBatch(ctx context.Context, records []*Record) error {
	if len(records) == 0 {
		return nil
	}

	_, err := r.client.CopyFrom(
		ctx,
		pgx.Identifier{"ticks"},
		[]string{"timestamp", "broker", "symbol", "bid", "ask", "last", "volume", "mode"},
		pgx.CopyFromSlice(len(records), func(i int) ([]any, error) {
			record := records[i]
			return []any{
				record.Timestamp,
				record.Broker,
				record.Symbol,
				record.Bid,
				record.Ask,
				record.Last,
				record.Volume,
				record.Mode,
			}, nil
		}),
	)

	if err != nil {
		return fmt.Errorf("failed to copy ticks: %w", err)
	}

	return nil
}

// GetByFilter retrieves stored ticks by filter.
func (r *Repository) GetByFilter(ctx context.Context, filter Filter) ([]*Record, error) {
	query := "SELECT timestamp, broker, symbol, bid, ask, last, volume, mode FROM ticks WHERE 1=1"
	args := []interface{}{}
	argIndex := 1

	if filter.Broker != "" {
		query += fmt.Sprintf(" AND broker = $%d", argIndex)
		args = append(args, filter.Broker)
		argIndex++
	}

	if filter.Symbol != "" {
		query += fmt.Sprintf(" AND symbol = $%d", argIndex)
		args = append(args, filter.Symbol)
		argIndex++
	}

	if filter.From != nil {
		query += fmt.Sprintf(" AND timestamp >= $%d", argIndex)
		args = append(args, *filter.From)
		argIndex++
	}

	if filter.To != nil {
		query += fmt.Sprintf(" AND timestamp < $%d", argIndex)
		args = append(args, *filter.To)
		argIndex++
	}

	query += " ORDER BY timestamp DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIndex)
		args = append(args, filter.Limit)
		argIndex++
	}

	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIndex)
		args = append(args, filter.Offset)
	}

	rows, err := r.client.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query ticks: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		record := &Record{}
		err := rows.Scan(&record.Timestamp, &record.Broker, &record.Symbol,
			&record.Bid, &record.Ask, &record.Last, &record.Volume, &record.Mode)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tick: %w", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return records, nil
}

// GetLatestByPair retrieves the most recent stored tick for a pair.
func (r *Repository) GetLatestByPair(ctx context.Context, broker, symbol string) (*Record, error) {
	query := `SELECT timestamp, broker, symbol, bid, ask, last, volume, mode
			  FROM ticks
			  WHERE broker = $1 AND symbol = $2
			  ORDER BY timestamp DESC
			  LIMIT 1`

	record := &Record{}
	err := r.client.QueryRow(ctx, query, broker, symbol).Scan(
		&record.Timestamp, &record.Broker, &record.Symbol,
		&record.Bid, &record.Ask, &record.Last, &record.Volume, &record.Mode)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest tick: %w", err)
	}

	return record, nil
}

// CountInWindow counts stored ticks for a pair inside [from, to).
func (r *Repository) CountInWindow(ctx context.Context, broker, symbol string, from, to time.Time) (int64, error) {
	query := `SELECT COUNT(*) FROM ticks
			  WHERE broker = $1 AND symbol = $2 AND timestamp >= $3 AND timestamp < $4`

	var count int64
	err := r.client.QueryRow(ctx, query, broker, symbol, from, to).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count ticks: %w", err)
	}

	return count, nil
}
