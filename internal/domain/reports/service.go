package reports

import "context"

type Service struct {
	Store *Store
}

func NewService(store *Store) *Service {
	return &Service{Store: store}
}

func (s *Service) LecturerSummaries(ctx context.Context) ([]LecturerSummary, error) {
	rows, err := s.Store.ClaimRows(ctx)
	if err != nil {
		return nil, err
	}
	return BuildLecturerSummaries(rows), nil
}
