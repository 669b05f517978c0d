package reports

import (
	"sort"

	"cmcs/internal/domain/claims"
)

// ClaimRow is one claim flattened for aggregation.
type ClaimRow struct {
	UserID string
	Email  string
	Hours  float64
	Amount float64
	Status claims.Status
}

type LecturerSummary struct {
	UserID       string         `json:"userId"`
	Email        string         `json:"email"`
	TotalHours   float64        `json:"totalHours"`
	TotalAmount  float64        `json:"totalAmount"`
	ClaimCount   int            `json:"claimCount"`
	StatusCounts map[string]int `json:"statusCounts"`
}

// BuildLecturerSummaries groups claim rows per lecturer: total hours, total
// amount and a count per status. Output is ordered by email for stable
// rendering and export.
func BuildLecturerSummaries(rows []ClaimRow) []LecturerSummary {
	byUser := map[string]*LecturerSummary{}
	for _, row := range rows {
		summary, ok := byUser[row.UserID]
		if !ok {
			summary = &LecturerSummary{
				UserID:       row.UserID,
				Email:        row.Email,
				StatusCounts: map[string]int{},
			}
			byUser[row.UserID] = summary
		}
		summary.TotalHours += row.Hours
		summary.TotalAmount += row.Amount
		summary.ClaimCount++
		summary.StatusCounts[string(row.Status)]++
	}

	out := make([]LecturerSummary, 0, len(byUser))
	for _, summary := range byUser {
		out = append(out, *summary)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out
}
