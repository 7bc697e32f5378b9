package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/lumina-hr/payroll-backend-go/internal/domain/calendar"
	"github.com/lumina-hr/payroll-backend-go/internal/pkg/database"
)

type holidayRepository struct {
	db *database.DB
}

func NewHolidayRepository(db *database.DB) calendar.HolidayRepository {
	return &holidayRepository{db: db}
}

// Create implements calendar.HolidayRepository.
func (h *holidayRepository) Create(ctx context.Context, holiday calendar.Holiday) (calendar.Holiday, error) {
	q := GetQuerier(ctx, h.db)

	query := `
		INSERT INTO holidays (date, name, kind, is_workday)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		holiday.Date, holiday.Name, holiday.Kind, holiday.IsWorkday,
	).Scan(&holiday.ID, &holiday.CreatedAt, &holiday.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return calendar.Holiday{}, calendar.ErrHolidayExists
		}
		return calendar.Holiday{}, fmt.Errorf("failed to create holiday: %w", err)
	}

	return holiday, nil
}

// ListByRange implements calendar.HolidayRepository.
func (h *holidayRepository) ListByRange(ctx context.Context, start, end time.Time) ([]calendar.Holiday, error) {
	q := GetQuerier(ctx, h.db)

	query := `
		SELECT id, date, name, kind, is_workday, created_at, updated_at
		FROM holidays
		WHERE date >= $1 AND date <= $2
		ORDER BY date
	`

	rows, err := q.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list holidays: %w", err)
	}
	defer rows.Close()

	var holidays []calendar.Holiday
	for rows.Next() {
		var holiday calendar.Holiday
		if err := rows.Scan(
			&holiday.ID, &holiday.Date, &holiday.Name, &holiday.Kind,
			&holiday.IsWorkday, &holiday.CreatedAt, &holiday.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan holiday: %w", err)
		}
		holidays = append(holidays, holiday)
	}

	return holidays, rows.Err()
}

// Delete implements calendar.HolidayRepository.
func (h *holidayRepository) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, h.db)

	tag, err := q.Exec(ctx, `DELETE FROM holidays WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete holiday: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return calendar.ErrHolidayNotFound
	}

	return nil
}
