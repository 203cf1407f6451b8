package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kinfolkhq/kinfolk-server/internal/mocks"
	"github.com/kinfolkhq/kinfolk-server/internal/model"
	"github.com/kinfolkhq/kinfolk-server/internal/testutil"
)

type summariesFixture struct {
	summaries *mocks.DailySummaryStore
	profiles  *mocks.ProfileStore
	svc       *Summaries
}

func newSummariesFixture(t *testing.T) *summariesFixture {
	t.Helper()

	f := &summariesFixture{
		summaries: &mocks.DailySummaryStore{},
		profiles:  &mocks.ProfileStore{},
	}
	f.svc = NewSummaries(f.summaries, f.profiles, testutil.MakeNoopLogger())
	f.svc.now = func() time.Time { return time.Date(2026, time.June, 15, 12, 0, 0, 0, time.UTC) }
	return f
}

func TestSummaries_Create_RequiresLinkedChild(t *testing.T) {
	f := newSummariesFixture(t)
	actorID := uuid.New()
	childID := uuid.New()

	f.profiles.On("GetByID", mock.Anything, actorID).Return(model.Profile{
		ID:   actorID,
		Role: model.RoleTeacher, // guardian role, but child not linked
	}, nil).Once()

	_, err := f.svc.Create(context.Background(), actorID, SummaryParams{ChildID: childID})
	assertCode(t, err, "UNAUTHORIZED")
}

func TestSummaries_Create_Success(t *testing.T) {
	f := newSummariesFixture(t)
	actorID := uuid.New()
	childID := uuid.New()

	f.profiles.On("GetByID", mock.Anything, actorID).Return(model.Profile{
		ID:          actorID,
		Role:        model.RoleParent,
		ChildrenIDs: []uuid.UUID{childID},
	}, nil).Once()

	var stored model.DailySummary
	f.summaries.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		stored = args.Get(1).(model.DailySummary)
	}).Return(model.DailySummary{ID: uuid.New(), ChildID: childID}, nil).Once()

	summary, err := f.svc.Create(context.Background(), actorID, SummaryParams{
		ChildID:        childID,
		ActivityCounts: map[string]any{"meals": 3},
	})
	require.NoError(t, err)
	assert.Equal(t, childID, summary.ChildID)
	assert.Equal(t, actorID, stored.CreatedBy)
	assert.False(t, stored.Date.IsZero())
}

func TestSummaries_Create_AdminBypassesLinking(t *testing.T) {
	f := newSummariesFixture(t)
	actorID := uuid.New()
	childID := uuid.New()

	f.profiles.On("GetByID", mock.Anything, actorID).Return(model.Profile{
		ID:   actorID,
		Role: model.RoleAdmin,
	}, nil).Once()
	f.summaries.On("Create", mock.Anything, mock.Anything).Return(model.DailySummary{ID: uuid.New()}, nil).Once()

	_, err := f.svc.Create(context.Background(), actorID, SummaryParams{ChildID: childID})
	require.NoError(t, err)
}

func TestSummaries_Get_NotFound(t *testing.T) {
	f := newSummariesFixture(t)

	f.summaries.On("GetByID", mock.Anything, mock.Anything).Return(model.DailySummary{}, model.ErrNotFound).Once()

	_, err := f.svc.Get(context.Background(), uuid.New(), uuid.New())
	assertCode(t, err, "NOT_FOUND")
}

func TestSummaries_Update_ChecksOwnershipFirst(t *testing.T) {
	f := newSummariesFixture(t)
	actorID := uuid.New()
	summaryID := uuid.New()
	childID := uuid.New()

	f.summaries.On("GetByID", mock.Anything, summaryID).Return(model.DailySummary{
		ID:      summaryID,
		ChildID: childID,
	}, nil).Once()
	f.profiles.On("GetByID", mock.Anything, actorID).Return(model.Profile{
		ID:   actorID,
		Role: model.RoleKid,
	}, nil).Once()

	_, err := f.svc.Update(context.Background(), actorID, summaryID, SummaryParams{})
	assertCode(t, err, "UNAUTHORIZED")

	f.summaries.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestSummaries_Delete_Success(t *testing.T) {
	f := newSummariesFixture(t)
	actorID := uuid.New()
	summaryID := uuid.New()
	childID := uuid.New()

	f.summaries.On("GetByID", mock.Anything, summaryID).Return(model.DailySummary{
		ID:      summaryID,
		ChildID: childID,
	}, nil).Once()
	f.profiles.On("GetByID", mock.Anything, actorID).Return(model.Profile{
		ID:          actorID,
		Role:        model.RoleCaregiver,
		ChildrenIDs: []uuid.UUID{childID},
	}, nil).Once()
	f.summaries.On("Delete", mock.Anything, summaryID).Return(nil).Once()

	require.NoError(t, f.svc.Delete(context.Background(), actorID, summaryID))
	f.summaries.AssertExpectations(t)
}
