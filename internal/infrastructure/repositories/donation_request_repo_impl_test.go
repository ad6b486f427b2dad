package repositories

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"blood-donate.backend/internal/domain/entities"
	domainerrors "blood-donate.backend/internal/domain/errors"
	"blood-donate.backend/pkg/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newRequest(owner, group, district string, createdAt time.Time) *entities.DonationRequest {
	return &entities.DonationRequest{
		RequesterName:     "Requester",
		RequesterEmail:    owner,
		RecipientName:     "Recipient",
		RecipientDistrict: district,
		RecipientUpazila:  "Savar",
		HospitalName:      "Enam Medical",
		BloodGroup:        group,
		DonationDate:      "2026-11-01",
		DonationTime:      "10:30",
		Status:            entities.RequestStatusPending,
		CreatedAt:         createdAt,
	}
}

func TestDonationRequestRepository_CreateAndGet(t *testing.T) {
	db := newTestDB(t)
	createDonationRequestTable(t, db)
	repo := NewDonationRequestRepository(db)
	ctx := context.Background()

	req := newRequest("owner@example.com", "A+", "Dhaka", time.Time{})
	require.NoError(t, repo.Create(ctx, req))
	require.NotEqual(t, uuid.Nil, req.ID)

	got, err := repo.GetByID(ctx, req.ID)
	require.NoError(t, err)
	require.Equal(t, entities.RequestStatusPending, got.Status)
	require.False(t, got.DonorEmail.Valid)

	_, err = repo.GetByID(ctx, uuid.New())
	require.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestDonationRequestRepository_UpdateDetailsOnlyWhilePending(t *testing.T) {
	db := newTestDB(t)
	createDonationRequestTable(t, db)
	repo := NewDonationRequestRepository(db)
	ctx := context.Background()

	req := newRequest("owner@example.com", "B+", "Dhaka", time.Time{})
	require.NoError(t, repo.Create(ctx, req))

	in := &entities.UpdateDonationRequestInput{HospitalName: strPtr("Square Hospital")}

	res, err := repo.UpdateDetails(ctx, req.ID, "intruder@example.com", in)
	require.NoError(t, err)
	require.Equal(t, int64(0), res.MatchedCount)

	res, err = repo.UpdateDetails(ctx, req.ID, "owner@example.com", in)
	require.NoError(t, err)
	require.Equal(t, int64(1), res.ModifiedCount)

	got, err := repo.GetByID(ctx, req.ID)
	require.NoError(t, err)
	require.Equal(t, "Square Hospital", got.HospitalName)

	_, err = repo.Claim(ctx, entities.ClaimUpdate{ID: req.ID, DonorName: "D", DonorEmail: "d@example.com"})
	require.NoError(t, err)

	res, err = repo.UpdateDetails(ctx, req.ID, "", in)
	require.NoError(t, err)
	require.Equal(t, int64(0), res.MatchedCount, "inprogress requests are frozen")
}

func TestDonationRequestRepository_ClaimIsConditional(t *testing.T) {
	db := newTestDB(t)
	createDonationRequestTable(t, db)
	repo := NewDonationRequestRepository(db)
	ctx := context.Background()

	req := newRequest("owner@example.com", "O+", "Dhaka", time.Time{})
	require.NoError(t, repo.Create(ctx, req))

	res, err := repo.Claim(ctx, entities.ClaimUpdate{ID: req.ID, DonorName: "First", DonorEmail: "first@example.com"})
	require.NoError(t, err)
	require.Equal(t, int64(1), res.ModifiedCount)

	res, err = repo.Claim(ctx, entities.ClaimUpdate{ID: req.ID, DonorName: "Second", DonorEmail: "second@example.com"})
	require.NoError(t, err)
	require.Equal(t, int64(0), res.MatchedCount)

	got, err := repo.GetByID(ctx, req.ID)
	require.NoError(t, err)
	require.Equal(t, entities.RequestStatusInProgress, got.Status)
	require.Equal(t, "first@example.com", got.DonorEmail.String)
	require.Equal(t, "First", got.DonorName.String)
}

func TestDonationRequestRepository_UpdateStatusGuards(t *testing.T) {
	db := newTestDB(t)
	createDonationRequestTable(t, db)
	repo := NewDonationRequestRepository(db)
	ctx := context.Background()

	req := newRequest("owner@example.com", "AB-", "Dhaka", time.Time{})
	require.NoError(t, repo.Create(ctx, req))

	// done requires inprogress
	res, err := repo.UpdateStatus(ctx, entities.StatusUpdate{
		ID: req.ID, To: entities.RequestStatusDone, From: entities.AllowedSources(entities.RequestStatusDone),
	})
	require.NoError(t, err)
	require.Equal(t, int64(0), res.MatchedCount)

	// owner filter
	res, err = repo.UpdateStatus(ctx, entities.StatusUpdate{
		ID: req.ID, To: entities.RequestStatusCanceled, From: entities.AllowedSources(entities.RequestStatusCanceled),
		OwnerEmail: "someone@example.com",
	})
	require.NoError(t, err)
	require.Equal(t, int64(0), res.MatchedCount)

	res, err = repo.UpdateStatus(ctx, entities.StatusUpdate{
		ID: req.ID, To: entities.RequestStatusCanceled, From: entities.AllowedSources(entities.RequestStatusCanceled),
		OwnerEmail: "owner@example.com",
	})
	require.NoError(t, err)
	require.Equal(t, entities.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, res)

	// terminal
	res, err = repo.UpdateStatus(ctx, entities.StatusUpdate{
		ID: req.ID, To: entities.RequestStatusCanceled, From: entities.AllowedSources(entities.RequestStatusCanceled),
	})
	require.NoError(t, err)
	require.Equal(t, int64(0), res.MatchedCount)

	// missing id is a no-op
	res, err = repo.UpdateStatus(ctx, entities.StatusUpdate{
		ID: uuid.New(), To: entities.RequestStatusCanceled, From: entities.AllowedSources(entities.RequestStatusCanceled),
	})
	require.NoError(t, err)
	require.Equal(t, entities.UpdateResult{}, res)
}

func TestDonationRequestRepository_Delete(t *testing.T) {
	db := newTestDB(t)
	createDonationRequestTable(t, db)
	repo := NewDonationRequestRepository(db)
	ctx := context.Background()

	req := newRequest("owner@example.com", "A-", "Dhaka", time.Time{})
	require.NoError(t, repo.Create(ctx, req))

	n, err := repo.Delete(ctx, req.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	n, err = repo.Delete(ctx, req.ID)
	require.NoError(t, err)
	require.Equal(t, int64(0), n)
}

func TestDonationRequestRepository_PaginationNewestFirst(t *testing.T) {
	db := newTestDB(t)
	createDonationRequestTable(t, db)
	repo := NewDonationRequestRepository(db)
	ctx := context.Background()

	base := time.Now().Add(-24 * time.Hour).UTC()
	for i := 0; i < 15; i++ {
		req := newRequest("owner@example.com", "A+", "Dhaka", base.Add(time.Duration(i)*time.Minute))
		req.RecipientName = fmt.Sprintf("recipient-%02d", i)
		require.NoError(t, repo.Create(ctx, req))
	}
	require.NoError(t, repo.Create(ctx, newRequest("other@example.com", "A+", "Dhaka", base)))

	filter := entities.DonationRequestFilter{RequesterEmail: "owner@example.com"}
	first, total, err := repo.List(ctx, filter, utils.GetPaginationParams(0, 10))
	require.NoError(t, err)
	require.Equal(t, int64(15), total)
	require.Len(t, first, 10)
	require.Equal(t, "recipient-14", first[0].RecipientName)

	second, total, err := repo.List(ctx, filter, utils.GetPaginationParams(1, 10))
	require.NoError(t, err)
	require.Equal(t, int64(15), total)
	require.Len(t, second, 5)
	require.Equal(t, "recipient-00", second[4].RecipientName)

	seen := map[uuid.UUID]bool{}
	for _, r := range append(first, second...) {
		require.False(t, seen[r.ID], "pages overlap")
		seen[r.ID] = true
	}
	for i := 1; i < len(first); i++ {
		require.False(t, first[i].CreatedAt.After(first[i-1].CreatedAt))
	}

	// A page far past the end is empty rather than wrapping back to the start.
	far, total, err := repo.List(ctx, filter, utils.GetPaginationParams(math.MaxInt64/10+1, 10))
	require.NoError(t, err)
	require.Equal(t, int64(15), total)
	require.Empty(t, far)
}

func TestDonationRequestRepository_ListPendingSearch(t *testing.T) {
	db := newTestDB(t)
	createDonationRequestTable(t, db)
	repo := NewDonationRequestRepository(db)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour).UTC()
	match := newRequest("o@example.com", "A+", "Dhaka", base)
	wrongGroup := newRequest("o@example.com", "B+", "Dhaka", base.Add(time.Minute))
	wrongDistrict := newRequest("o@example.com", "A+", "Chattogram", base.Add(2*time.Minute))
	claimed := newRequest("o@example.com", "A+", "Dhaka", base.Add(3*time.Minute))
	for _, r := range []*entities.DonationRequest{match, wrongGroup, wrongDistrict, claimed} {
		require.NoError(t, repo.Create(ctx, r))
	}
	_, err := repo.Claim(ctx, entities.ClaimUpdate{ID: claimed.ID, DonorName: "D", DonorEmail: "d@example.com"})
	require.NoError(t, err)

	found, err := repo.ListPending(ctx, entities.DonationRequestFilter{BloodGroup: "A+", District: "Dhaka"}, 100)
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, match.ID, found[0].ID)

	all, err := repo.ListPending(ctx, entities.DonationRequestFilter{}, 100)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, wrongDistrict.ID, all[0].ID)

	capped, err := repo.ListPending(ctx, entities.DonationRequestFilter{}, 2)
	require.NoError(t, err)
	require.Len(t, capped, 2)

	byStatus, err := repo.CountByStatus(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(3), byStatus[entities.RequestStatusPending])
	require.Equal(t, int64(1), byStatus[entities.RequestStatusInProgress])

	total, err := repo.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(4), total)
}
