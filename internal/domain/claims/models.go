package claims

import "time"

type Claim struct {
	ID                    string     `json:"id"`
	UserID                string     `json:"userId"`
	HoursWorked           float64    `json:"hoursWorked"`
	HourlyRate            float64    `json:"hourlyRate"`
	TotalAmount           float64    `json:"totalAmount"`
	Notes                 string     `json:"notes,omitempty"`
	Status                Status     `json:"status"`
	Version               int        `json:"version"`
	SubmittedAt           time.Time  `json:"submittedAt"`
	CoordinatorReviewedAt *time.Time `json:"coordinatorReviewedAt,omitempty"`
	CoordinatorComment    *string    `json:"coordinatorComment,omitempty"`
	ManagerReviewedAt     *time.Time `json:"managerReviewedAt,omitempty"`
	ManagerComment        *string    `json:"managerComment,omitempty"`
	Documents             []Document `json:"documents,omitempty"`
}

type Document struct {
	ID          string    `json:"id"`
	ClaimID     string    `json:"claimId"`
	FileName    string    `json:"fileName"`
	FilePath    string    `json:"-"`
	ContentType string    `json:"contentType"`
	FileSize    int64     `json:"fileSize"`
	UploadedAt  time.Time `json:"uploadedAt"`
}

// DocumentUpload carries a file as received from the client, before any
// storage key has been assigned.
type DocumentUpload struct {
	FileName    string
	ContentType string
	FileSize    int64
	Data        []byte
}

type SubmitInput struct {
	HoursWorked float64
	Notes       string
	Documents   []DocumentUpload
}

type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// ReviewFields are the write-once columns a transition sets. Only the pair
// matching the deciding stage is populated.
type ReviewFields struct {
	CoordinatorReviewedAt *time.Time
	CoordinatorComment    *string
	ManagerReviewedAt     *time.Time
	ManagerComment        *string
}
