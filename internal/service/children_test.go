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

type childrenFixture struct {
	children *mocks.ChildStore
	profiles *mocks.ProfileStore
	auth     *authFixture
	svc      *Children
}

func newChildrenFixture(t *testing.T) *childrenFixture {
	t.Helper()

	f := &childrenFixture{
		children: &mocks.ChildStore{},
		profiles: &mocks.ProfileStore{},
		auth:     newAuthFixture(t),
	}
	f.svc = NewChildren(f.children, f.profiles, f.auth.svc, testutil.MakeNoopLogger())
	f.svc.now = func() time.Time { return time.Date(2026, time.June, 15, 12, 0, 0, 0, time.UTC) }
	return f
}

func guardianProfile(role model.Role, children ...uuid.UUID) model.Profile {
	return model.Profile{
		ID:          uuid.New(),
		FullName:    "Guardian",
		Role:        role,
		ChildrenIDs: children,
	}
}

func TestChildren_Add_RequiresGuardianRole(t *testing.T) {
	f := newChildrenFixture(t)
	actor := guardianProfile(model.RoleKid)

	f.profiles.On("GetByID", mock.Anything, actor.ID).Return(actor, nil).Once()

	_, err := f.svc.Add(context.Background(), actor.ID, AddChildParams{Name: "Sam", DOB: "2020-01-01"})
	assertCode(t, err, "UNAUTHORIZED")

	f.children.AssertNotCalled(t, "CreateLinked", mock.Anything, mock.Anything, mock.Anything)
}

func TestChildren_Add_Validation(t *testing.T) {
	f := newChildrenFixture(t)
	actor := guardianProfile(model.RoleParent)

	f.profiles.On("GetByID", mock.Anything, actor.ID).Return(actor, nil)

	_, err := f.svc.Add(context.Background(), actor.ID, AddChildParams{DOB: "2020-01-01"})
	assertCode(t, err, "MISSING_FIELDS")

	_, err = f.svc.Add(context.Background(), actor.ID, AddChildParams{Name: "Sam"})
	assertCode(t, err, "DOB_REQUIRED")

	_, err = f.svc.Add(context.Background(), actor.ID, AddChildParams{Name: "Sam", DOB: "not-a-date"})
	assertCode(t, err, "INVALID_DATE")
}

func TestChildren_Add_Success(t *testing.T) {
	f := newChildrenFixture(t)
	actor := guardianProfile(model.RoleParent)

	f.profiles.On("GetByID", mock.Anything, actor.ID).Return(actor, nil).Once()

	var linked model.Child
	f.children.On("CreateLinked", mock.Anything, mock.Anything, actor.ID).Run(func(args mock.Arguments) {
		linked = args.Get(1).(model.Child)
	}).Return(model.Child{ID: uuid.New(), Name: "Sam"}, nil).Once()

	child, err := f.svc.Add(context.Background(), actor.ID, AddChildParams{
		Name:   "Sam",
		DOB:    "2020-01-01",
		Gender: "female",
	})
	require.NoError(t, err)
	assert.Equal(t, "Sam", child.Name)
	assert.Equal(t, actor.ID, linked.CreatedBy)
}

func TestChildren_Add_WithAccountLinksUser(t *testing.T) {
	f := newChildrenFixture(t)
	actor := guardianProfile(model.RoleParent)

	f.profiles.On("GetByID", mock.Anything, actor.ID).Return(actor, nil).Once()

	childAccountID := uuid.New()
	f.auth.accounts.On("Create", mock.Anything, mock.Anything).Return(model.Account{ID: childAccountID}, nil).Once()
	f.auth.profiles.On("Create", mock.Anything, mock.Anything).Return(model.Profile{}, nil).Once()

	var linked model.Child
	f.children.On("CreateLinked", mock.Anything, mock.Anything, actor.ID).Run(func(args mock.Arguments) {
		linked = args.Get(1).(model.Child)
	}).Return(model.Child{ID: uuid.New()}, nil).Once()

	_, err := f.svc.Add(context.Background(), actor.ID, AddChildParams{
		Name:          "Sam",
		DOB:           "2020-01-01",
		CreateAccount: true,
		Email:         "sam@example.com",
		Password:      "sampass",
	})
	require.NoError(t, err)

	assert.Equal(t, true, linked.Metadata["has_user_account"])
	assert.Equal(t, childAccountID.String(), linked.Metadata["linked_user_id"])
}

func TestChildren_Add_WithAccountSignupFailureStops(t *testing.T) {
	f := newChildrenFixture(t)
	actor := guardianProfile(model.RoleParent)

	f.profiles.On("GetByID", mock.Anything, actor.ID).Return(actor, nil).Once()
	f.auth.accounts.On("Create", mock.Anything, mock.Anything).Return(model.Account{}, model.ErrDuplicateEmail).Once()

	_, err := f.svc.Add(context.Background(), actor.ID, AddChildParams{
		Name:          "Sam",
		DOB:           "2020-01-01",
		CreateAccount: true,
		Email:         "taken@example.com",
		Password:      "sampass",
	})
	assertCode(t, err, "USER_EXISTS")

	f.children.AssertNotCalled(t, "CreateLinked", mock.Anything, mock.Anything, mock.Anything)
}

func TestChildren_Add_LinkFailureMapsToProfileUpdateFailed(t *testing.T) {
	f := newChildrenFixture(t)
	actor := guardianProfile(model.RoleGuardian)

	f.profiles.On("GetByID", mock.Anything, actor.ID).Return(actor, nil).Once()
	f.children.On("CreateLinked", mock.Anything, mock.Anything, actor.ID).Return(model.Child{}, model.ErrChildLinkFailed).Once()

	_, err := f.svc.Add(context.Background(), actor.ID, AddChildParams{Name: "Sam", DOB: "2020-01-01"})
	assertCode(t, err, "PROFILE_UPDATE_FAILED")
}

func TestChildren_Add_InsertFailureMapsToChildCreationFailed(t *testing.T) {
	f := newChildrenFixture(t)
	actor := guardianProfile(model.RoleGuardian)

	f.profiles.On("GetByID", mock.Anything, actor.ID).Return(actor, nil).Once()
	f.children.On("CreateLinked", mock.Anything, mock.Anything, actor.ID).Return(model.Child{}, model.ErrChildInsertFailed).Once()

	_, err := f.svc.Add(context.Background(), actor.ID, AddChildParams{Name: "Sam", DOB: "2020-01-01"})
	assertCode(t, err, "CHILD_CREATION_FAILED")
}

func TestChildren_Get_HiddenWhenNotLinked(t *testing.T) {
	f := newChildrenFixture(t)
	childID := uuid.New()
	actor := guardianProfile(model.RoleParent) // no children linked

	f.profiles.On("GetByID", mock.Anything, actor.ID).Return(actor, nil).Once()

	_, err := f.svc.Get(context.Background(), actor.ID, childID)
	assertCode(t, err, "NOT_FOUND")
}

func TestChildren_Get_Linked(t *testing.T) {
	f := newChildrenFixture(t)
	childID := uuid.New()
	actor := guardianProfile(model.RoleParent, childID)

	f.profiles.On("GetByID", mock.Anything, actor.ID).Return(actor, nil).Once()
	f.children.On("GetByID", mock.Anything, childID).Return(model.Child{ID: childID, Name: "Sam"}, nil).Once()

	child, err := f.svc.Get(context.Background(), actor.ID, childID)
	require.NoError(t, err)
	assert.Equal(t, "Sam", child.Name)
}

func TestChildren_Remove_NotFound(t *testing.T) {
	f := newChildrenFixture(t)
	actorID := uuid.New()
	childID := uuid.New()

	f.children.On("DeleteOwned", mock.Anything, childID, actorID).Return(model.ErrNotFound).Once()

	err := f.svc.Remove(context.Background(), actorID, childID)
	assertCode(t, err, "NOT_FOUND")
}
