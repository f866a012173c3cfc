package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iliyamo/attendance-ledger/internal/model"
)

// EventRepo keeps the attendance log in MySQL.  It satisfies the same
// fetch/append contract as the sheet client.
type EventRepo struct{ DB *sql.DB }

func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{DB: db} }

// Fetch returns every row in insertion order.
func (r *EventRepo) Fetch(ctx context.Context) ([][]string, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT actor, action, ts, date, time, source FROM attendance_events ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	out := [][]string{}
	for rows.Next() {
		row := make([]string, model.RowWidth)
		if err := rows.Scan(&row[model.ColActor], &row[model.ColAction], &row[model.ColTimestamp],
			&row[model.ColDate], &row[model.ColTime], &row[model.ColSource]); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// Append inserts one row; missing trailing cells are stored empty.
func (r *EventRepo) Append(ctx context.Context, row []string) error {
	cells := make([]string, model.RowWidth)
	copy(cells, row)
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO attendance_events (actor, action, ts, date, time, source) VALUES (?,?,?,?,?,?)",
		cells[model.ColActor], cells[model.ColAction], cells[model.ColTimestamp],
		cells[model.ColDate], cells[model.ColTime], cells[model.ColSource])
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

