package reports

import (
	"context"

	"cmcs/internal/domain/claims"
	"cmcs/internal/platform/querier"
)

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

func (s *Store) ClaimRows(ctx context.Context) ([]ClaimRow, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT c.user_id, u.email, c.hours_worked, c.total_amount, c.status
    FROM claims c
    JOIN users u ON u.id = c.user_id
    ORDER BY u.email, c.submitted_at
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ClaimRow
	for rows.Next() {
		var row ClaimRow
		var status string
		if err := rows.Scan(&row.UserID, &row.Email, &row.Hours, &row.Amount, &status); err != nil {
			return nil, err
		}
		row.Status = claims.Status(status)
		out = append(out, row)
	}
	return out, rows.Err()
}
