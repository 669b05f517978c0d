package claims

import (
	"context"
	"log/slog"
	"time"

	"cmcs/internal/platform/storage"
)

// RateSource supplies the lecturer's current hourly rate at submission time.
type RateSource interface {
	RateByUserID(ctx context.Context, userID string) (float64, error)
}

type Service struct {
	Store StoreAPI
	Rates RateSource
	Files storage.Provider
}

func NewService(store StoreAPI, rates RateSource, files storage.Provider) *Service {
	return &Service{Store: store, Rates: rates, Files: files}
}

// Submit validates lecturer input, snapshots the hourly rate, writes the
// document bytes and creates the claim with its metadata in one unit. The
// rate and total stored here are never recomputed.
func (s *Service) Submit(ctx context.Context, userID string, input SubmitInput) (Claim, error) {
	if err := ValidateHours(input.HoursWorked); err != nil {
		return Claim{}, err
	}
	if len(input.Documents) == 0 {
		return Claim{}, &ValidationError{
			Code:    CodeMissingDocuments,
			Message: "at least one supporting document is required",
		}
	}

	rate, err := s.Rates.RateByUserID(ctx, userID)
	if err != nil {
		return Claim{}, err
	}

	now := time.Now().UTC()
	documents := make([]Document, 0, len(input.Documents))
	var written []string
	for _, upload := range input.Documents {
		key := storage.BuildKey(upload.FileName)
		locator, err := s.Files.Save(ctx, key, upload.Data)
		if err != nil {
			logOrphans(written)
			return Claim{}, err
		}
		written = append(written, locator)
		documents = append(documents, Document{
			FileName:    storage.SanitizeFileName(upload.FileName),
			FilePath:    locator,
			ContentType: upload.ContentType,
			FileSize:    upload.FileSize,
			UploadedAt:  now,
		})
	}

	claim := Claim{
		UserID:      userID,
		HoursWorked: input.HoursWorked,
		HourlyRate:  rate,
		TotalAmount: ComputeTotal(input.HoursWorked, rate),
		Notes:       input.Notes,
		Status:      StatusPending,
		Version:     1,
		SubmittedAt: now,
	}

	id, err := s.Store.CreateClaim(ctx, claim, documents)
	if err != nil {
		logOrphans(written)
		return Claim{}, err
	}

	return s.Store.GetClaim(ctx, id)
}

func (s *Service) Get(ctx context.Context, claimID string) (Claim, error) {
	return s.Store.GetClaim(ctx, claimID)
}

func (s *Service) ListForUser(ctx context.Context, userID string) ([]Claim, error) {
	return s.Store.ListClaimsByUser(ctx, userID)
}

func (s *Service) ListByStatus(ctx context.Context, status Status) ([]Claim, error) {
	return s.Store.ListClaimsByStatus(ctx, status)
}

// logOrphans records physical files whose metadata never landed. Reclaiming
// them is an out-of-band cleanup concern.
func logOrphans(locators []string) {
	for _, locator := range locators {
		slog.Warn("orphaned claim document bytes", "locator", locator)
	}
}
