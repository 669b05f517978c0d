package claims

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"cmcs/internal/platform/storage"
)

type fakeRates struct {
	rates map[string]float64
}

func (f *fakeRates) RateByUserID(_ context.Context, userID string) (float64, error) {
	rate, ok := f.rates[userID]
	if !ok {
		return 0, errors.New("user not found")
	}
	return rate, nil
}

type memFiles struct {
	files    map[string][]byte
	failSave bool
}

func newMemFiles() *memFiles {
	return &memFiles{files: map[string][]byte{}}
}

func (f *memFiles) Save(_ context.Context, key string, data []byte) (string, error) {
	if f.failSave {
		return "", &storage.Error{Op: "save", Err: errors.New("disk full")}
	}
	locator := "mem://" + key
	f.files[locator] = data
	return locator, nil
}

func (f *memFiles) Read(_ context.Context, locator string) ([]byte, error) {
	data, ok := f.files[locator]
	if !ok {
		return nil, &storage.Error{Op: "read", Err: errors.New("missing")}
	}
	return data, nil
}

func newTestService() (*Service, *memStore, *fakeRates, *memFiles) {
	store := newMemStore()
	rates := &fakeRates{rates: map[string]float64{"lecturer-1": 100}}
	files := newMemFiles()
	return NewService(store, rates, files), store, rates, files
}

func oneDocument() []DocumentUpload {
	return []DocumentUpload{{
		FileName:    "timesheet.pdf",
		ContentType: "application/pdf",
		FileSize:    4,
		Data:        []byte("data"),
	}}
}

func TestSubmitCreatesPendingClaim(t *testing.T) {
	service, _, _, _ := newTestService()

	claim, err := service.Submit(context.Background(), "lecturer-1", SubmitInput{
		HoursWorked: 5,
		Notes:       "guest lectures",
		Documents:   oneDocument(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if claim.Status != StatusPending {
		t.Fatalf("expected pending status, got %s", claim.Status)
	}
	if claim.TotalAmount != 500 {
		t.Fatalf("expected total 500, got %v", claim.TotalAmount)
	}
	if claim.HourlyRate != 100 {
		t.Fatalf("expected snapshot rate 100, got %v", claim.HourlyRate)
	}
	if claim.Version != 1 {
		t.Fatalf("expected initial version 1, got %d", claim.Version)
	}
	if len(claim.Documents) != 1 {
		t.Fatalf("expected one document, got %d", len(claim.Documents))
	}
	if claim.SubmittedAt.IsZero() {
		t.Fatal("expected submittedAt to be set")
	}
}

func TestSubmitHoursOutOfRange(t *testing.T) {
	service, store, _, _ := newTestService()

	for _, hours := range []float64{0, -3, 180.01} {
		_, err := service.Submit(context.Background(), "lecturer-1", SubmitInput{
			HoursWorked: hours,
			Documents:   oneDocument(),
		})
		var ve *ValidationError
		if !errors.As(err, &ve) || ve.Code != CodeHoursOutOfRange {
			t.Fatalf("expected HoursOutOfRange for %v hours, got %v", hours, err)
		}
	}
	if len(store.claims) != 0 {
		t.Fatal("expected no claims to be created")
	}
}

func TestSubmitMissingDocuments(t *testing.T) {
	service, store, _, _ := newTestService()

	_, err := service.Submit(context.Background(), "lecturer-1", SubmitInput{HoursWorked: 10})
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Code != CodeMissingDocuments {
		t.Fatalf("expected MissingDocuments, got %v", err)
	}
	if len(store.claims) != 0 {
		t.Fatal("expected no claims to be created")
	}
}

func TestSubmitTwoDocumentsSameClaim(t *testing.T) {
	service, _, _, _ := newTestService()

	claim, err := service.Submit(context.Background(), "lecturer-1", SubmitInput{
		HoursWorked: 12,
		Documents: []DocumentUpload{
			{FileName: "hours.csv", ContentType: "text/csv", FileSize: 5, Data: []byte("5,100")},
			{FileName: "contract.pdf", ContentType: "application/pdf", FileSize: 3, Data: []byte("pdf")},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(claim.Documents) != 2 {
		t.Fatalf("expected two documents, got %d", len(claim.Documents))
	}
	byName := map[string]Document{}
	for _, doc := range claim.Documents {
		if doc.ClaimID != claim.ID {
			t.Fatalf("document %s bound to %s, want %s", doc.ID, doc.ClaimID, claim.ID)
		}
		byName[doc.FileName] = doc
	}
	if _, ok := byName["hours.csv"]; !ok {
		t.Fatal("expected hours.csv to be retrievable by name")
	}
	if _, ok := byName["contract.pdf"]; !ok {
		t.Fatal("expected contract.pdf to be retrievable by name")
	}
}

func TestSubmitSnapshotSurvivesRateChange(t *testing.T) {
	service, _, rates, _ := newTestService()

	claim, err := service.Submit(context.Background(), "lecturer-1", SubmitInput{
		HoursWorked: 8,
		Documents:   oneDocument(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rates.rates["lecturer-1"] = 250

	reloaded, err := service.Get(context.Background(), claim.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reloaded.HourlyRate != 100 || reloaded.TotalAmount != 800 {
		t.Fatalf("expected snapshot to be immutable, got rate %v total %v", reloaded.HourlyRate, reloaded.TotalAmount)
	}
}

func TestSubmitStorageFailureCreatesNothing(t *testing.T) {
	service, store, _, files := newTestService()
	files.failSave = true

	_, err := service.Submit(context.Background(), "lecturer-1", SubmitInput{
		HoursWorked: 5,
		Documents:   oneDocument(),
	})
	var se *storage.Error
	if !errors.As(err, &se) {
		t.Fatalf("expected storage error, got %v", err)
	}
	if len(store.claims) != 0 || len(store.documents) != 0 {
		t.Fatal("expected no partial claim or document records")
	}
}

func TestSubmitMetadataFailureLeavesNoClaim(t *testing.T) {
	service, store, _, files := newTestService()
	store.failCreate = fmt.Errorf("insert failed")

	_, err := service.Submit(context.Background(), "lecturer-1", SubmitInput{
		HoursWorked: 5,
		Documents:   oneDocument(),
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if len(store.claims) != 0 {
		t.Fatal("expected no claim record")
	}
	// bytes already written stay behind as orphans
	if len(files.files) != 1 {
		t.Fatalf("expected orphaned bytes to remain, got %d files", len(files.files))
	}
}

func submitPending(t *testing.T, service *Service) Claim {
	t.Helper()
	claim, err := service.Submit(context.Background(), "lecturer-1", SubmitInput{
		HoursWorked: 5,
		Documents:   oneDocument(),
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	return claim
}

func TestCoordinatorApprove(t *testing.T) {
	service, _, _, _ := newTestService()
	claim := submitPending(t, service)

	updated, err := service.CoordinatorDecide(context.Background(), claim.ID, DecisionApprove, "looks right")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != StatusCoordinatorApproved {
		t.Fatalf("expected coordinator_approved, got %s", updated.Status)
	}
	if updated.CoordinatorReviewedAt == nil || updated.CoordinatorComment == nil {
		t.Fatal("expected coordinator review fields to be set")
	}
	if *updated.CoordinatorComment != "looks right" {
		t.Fatalf("unexpected comment: %s", *updated.CoordinatorComment)
	}
	if updated.Version != 2 {
		t.Fatalf("expected version 2 after transition, got %d", updated.Version)
	}
	if updated.ManagerReviewedAt != nil {
		t.Fatal("manager fields must remain unset")
	}
}

func TestCoordinatorDecideTwiceRejected(t *testing.T) {
	service, _, _, _ := newTestService()
	claim := submitPending(t, service)

	if _, err := service.CoordinatorDecide(context.Background(), claim.ID, DecisionApprove, "ok"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	before, _ := service.Get(context.Background(), claim.ID)
	_, err := service.CoordinatorDecide(context.Background(), claim.ID, DecisionApprove, "again")
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}

	after, _ := service.Get(context.Background(), claim.ID)
	if after.Status != before.Status || after.Version != before.Version {
		t.Fatal("expected no mutation on illegal transition")
	}
	if *after.CoordinatorComment != "ok" {
		t.Fatal("expected original comment to be preserved")
	}
}

func TestManagerDecideRequiresCoordinatorApproval(t *testing.T) {
	service, _, _, _ := newTestService()
	claim := submitPending(t, service)

	_, err := service.ManagerDecide(context.Background(), claim.ID, DecisionApprove, "fine")
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition on pending claim, got %v", err)
	}

	reloaded, _ := service.Get(context.Background(), claim.ID)
	if reloaded.Status != StatusPending {
		t.Fatalf("expected status unchanged, got %s", reloaded.Status)
	}
}

func TestManagerRejectIsTerminal(t *testing.T) {
	service, _, _, _ := newTestService()
	claim := submitPending(t, service)

	if _, err := service.CoordinatorDecide(context.Background(), claim.ID, DecisionApprove, "ok"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rejected, err := service.ManagerDecide(context.Background(), claim.ID, DecisionReject, "over budget")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rejected.Status != StatusManagerRejected {
		t.Fatalf("expected manager_rejected, got %s", rejected.Status)
	}

	if _, err := service.Finalize(context.Background(), claim.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition after rejection, got %v", err)
	}
}

func TestFinalizeProcessesManagerApprovedClaim(t *testing.T) {
	service, _, _, _ := newTestService()
	claim := submitPending(t, service)

	if _, err := service.CoordinatorDecide(context.Background(), claim.ID, DecisionApprove, "ok"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := service.ManagerDecide(context.Background(), claim.ID, DecisionApprove, "approved"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	processed, err := service.Finalize(context.Background(), claim.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if processed.Status != StatusProcessed {
		t.Fatalf("expected processed, got %s", processed.Status)
	}
}

func TestFinalizeRequiresManagerApproval(t *testing.T) {
	service, _, _, _ := newTestService()
	claim := submitPending(t, service)

	if _, err := service.Finalize(context.Background(), claim.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestDecideUnknownClaim(t *testing.T) {
	service, _, _, _ := newTestService()

	_, err := service.CoordinatorDecide(context.Background(), "missing", DecisionApprove, "")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestInvalidDecisionValue(t *testing.T) {
	service, _, _, _ := newTestService()
	claim := submitPending(t, service)

	_, err := service.CoordinatorDecide(context.Background(), claim.ID, Decision("defer"), "")
	if !errors.Is(err, ErrInvalidDecision) {
		t.Fatalf("expected ErrInvalidDecision, got %v", err)
	}
}

func TestStaleVersionWriteConflicts(t *testing.T) {
	service, store, _, _ := newTestService()
	claim := submitPending(t, service)

	if _, err := service.CoordinatorDecide(context.Background(), claim.ID, DecisionApprove, "ok"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Two reviewers read version 2, both try to write. The first wins; the
	// second is rejected rather than silently overwriting the decision.
	read, err := service.Get(context.Background(), claim.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := store.UpdateClaimStatus(context.Background(), claim.ID, read.Version, StatusManagerApproved, ReviewFields{}); err != nil {
		t.Fatalf("first write should succeed, got %v", err)
	}
	err = store.UpdateClaimStatus(context.Background(), claim.ID, read.Version, StatusManagerRejected, ReviewFields{})
	if !errors.Is(err, ErrConcurrencyConflict) {
		t.Fatalf("expected ErrConcurrencyConflict, got %v", err)
	}

	reloaded, _ := service.Get(context.Background(), claim.ID)
	if reloaded.Status != StatusManagerApproved {
		t.Fatalf("expected winning decision to stand, got %s", reloaded.Status)
	}
}
