package claims

import (
	"context"
	"log/slog"
	"time"

	"cmcs/internal/platform/storage"
)

// Attach stores one more document against an existing claim. Bytes go to
// storage first, then the metadata row; if the row fails the bytes stay
// behind as an orphan for out-of-band cleanup, never rolled back here.
func (s *Service) Attach(ctx context.Context, claimID string, upload DocumentUpload) (Document, error) {
	if _, err := s.Store.GetClaim(ctx, claimID); err != nil {
		return Document{}, err
	}

	key := storage.BuildKey(upload.FileName)
	locator, err := s.Files.Save(ctx, key, upload.Data)
	if err != nil {
		return Document{}, err
	}

	doc := Document{
		ClaimID:     claimID,
		FileName:    storage.SanitizeFileName(upload.FileName),
		FilePath:    locator,
		ContentType: upload.ContentType,
		FileSize:    upload.FileSize,
		UploadedAt:  time.Now().UTC(),
	}

	id, err := s.Store.AddDocument(ctx, claimID, doc)
	if err != nil {
		slog.Warn("orphaned claim document bytes", "claimId", claimID, "locator", locator)
		return Document{}, err
	}
	doc.ID = id
	return doc, nil
}

func (s *Service) Documents(ctx context.Context, claimID string) ([]Document, error) {
	if _, err := s.Store.GetClaim(ctx, claimID); err != nil {
		return nil, err
	}
	return s.Store.ListDocuments(ctx, claimID)
}

// DocumentData returns a document's metadata together with its stored bytes.
func (s *Service) DocumentData(ctx context.Context, claimID, documentID string) (Document, []byte, error) {
	doc, err := s.Store.GetDocument(ctx, claimID, documentID)
	if err != nil {
		return Document{}, nil, err
	}
	data, err := s.Files.Read(ctx, doc.FilePath)
	if err != nil {
		return Document{}, nil, err
	}
	return doc, data, nil
}
