package claims

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

const claimColumns = `
  id, user_id, hours_worked, hourly_rate, total_amount, COALESCE(notes, ''),
  status, version, submitted_at,
  coordinator_reviewed_at, coordinator_comment,
  manager_reviewed_at, manager_comment
`

func (s *Store) CreateClaim(ctx context.Context, claim Claim, documents []Document) (string, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var id string
	if err := tx.QueryRow(ctx, `
    INSERT INTO claims (user_id, hours_worked, hourly_rate, total_amount, notes, status, version, submitted_at)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
    RETURNING id
  `, claim.UserID, claim.HoursWorked, claim.HourlyRate, claim.TotalAmount, nullIfEmpty(claim.Notes), claim.Status, claim.Version, claim.SubmittedAt).Scan(&id); err != nil {
		return "", err
	}

	for _, doc := range documents {
		if _, err := tx.Exec(ctx, `
      INSERT INTO claim_documents (claim_id, file_name, file_path, content_type, file_size, uploaded_at)
      VALUES ($1,$2,$3,$4,$5,$6)
    `, id, doc.FileName, doc.FilePath, doc.ContentType, doc.FileSize, doc.UploadedAt); err != nil {
			return "", err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) GetClaim(ctx context.Context, id string) (Claim, error) {
	row := s.DB.QueryRow(ctx, "SELECT "+claimColumns+" FROM claims WHERE id = $1", id)
	claim, err := scanClaim(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Claim{}, ErrNotFound
	}
	if err != nil {
		return Claim{}, err
	}

	docs, err := s.ListDocuments(ctx, id)
	if err != nil {
		return Claim{}, err
	}
	claim.Documents = docs
	return claim, nil
}

func (s *Store) ListClaimsByUser(ctx context.Context, userID string) ([]Claim, error) {
	rows, err := s.DB.Query(ctx, "SELECT "+claimColumns+" FROM claims WHERE user_id = $1 ORDER BY submitted_at DESC", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanClaims(rows)
}

func (s *Store) ListClaimsByStatus(ctx context.Context, status Status) ([]Claim, error) {
	rows, err := s.DB.Query(ctx, "SELECT "+claimColumns+" FROM claims WHERE status = $1 ORDER BY submitted_at", status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanClaims(rows)
}

func (s *Store) UpdateClaimStatus(ctx context.Context, id string, expectedVersion int, newStatus Status, fields ReviewFields) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE claims
    SET status = $1,
        version = version + 1,
        coordinator_reviewed_at = COALESCE($2, coordinator_reviewed_at),
        coordinator_comment     = COALESCE($3, coordinator_comment),
        manager_reviewed_at     = COALESCE($4, manager_reviewed_at),
        manager_comment         = COALESCE($5, manager_comment)
    WHERE id = $6 AND version = $7
  `, newStatus, fields.CoordinatorReviewedAt, fields.CoordinatorComment, fields.ManagerReviewedAt, fields.ManagerComment, id, expectedVersion)
	if err != nil {
		return err
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	if err := s.DB.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM claims WHERE id = $1)", id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	return ErrConcurrencyConflict
}

func (s *Store) AddDocument(ctx context.Context, claimID string, doc Document) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO claim_documents (claim_id, file_name, file_path, content_type, file_size, uploaded_at)
    VALUES ($1,$2,$3,$4,$5,$6)
    RETURNING id
  `, claimID, doc.FileName, doc.FilePath, doc.ContentType, doc.FileSize, doc.UploadedAt).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) ListDocuments(ctx context.Context, claimID string) ([]Document, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, claim_id, file_name, file_path, content_type, file_size, uploaded_at
    FROM claim_documents
    WHERE claim_id = $1
    ORDER BY uploaded_at, id
  `, claimID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		var doc Document
		if err := rows.Scan(&doc.ID, &doc.ClaimID, &doc.FileName, &doc.FilePath, &doc.ContentType, &doc.FileSize, &doc.UploadedAt); err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

func (s *Store) GetDocument(ctx context.Context, claimID, documentID string) (Document, error) {
	var doc Document
	err := s.DB.QueryRow(ctx, `
    SELECT id, claim_id, file_name, file_path, content_type, file_size, uploaded_at
    FROM claim_documents
    WHERE claim_id = $1 AND id = $2
  `, claimID, documentID).Scan(&doc.ID, &doc.ClaimID, &doc.FileName, &doc.FilePath, &doc.ContentType, &doc.FileSize, &doc.UploadedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Document{}, ErrDocumentNotFound
	}
	if err != nil {
		return Document{}, err
	}
	return doc, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClaim(row rowScanner) (Claim, error) {
	var c Claim
	err := row.Scan(
		&c.ID, &c.UserID, &c.HoursWorked, &c.HourlyRate, &c.TotalAmount, &c.Notes,
		&c.Status, &c.Version, &c.SubmittedAt,
		&c.CoordinatorReviewedAt, &c.CoordinatorComment,
		&c.ManagerReviewedAt, &c.ManagerComment,
	)
	return c, err
}

func scanClaims(rows pgx.Rows) ([]Claim, error) {
	var out []Claim
	for rows.Next() {
		claim, err := scanClaim(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, claim)
	}
	return out, rows.Err()
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}
