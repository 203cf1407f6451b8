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

type rolesFixture struct {
	profiles *mocks.ProfileStore
	children *mocks.ChildStore
	svc      *Roles
}

func newRolesFixture(t *testing.T) *rolesFixture {
	t.Helper()

	f := &rolesFixture{
		profiles: &mocks.ProfileStore{},
		children: &mocks.ChildStore{},
	}
	f.svc = NewRoles(f.profiles, f.children, testutil.MakeNoopLogger())
	f.svc.now = func() time.Time { return time.Date(2026, time.June, 15, 12, 0, 0, 0, time.UTC) }
	return f
}

func TestRoles_Assign_InvalidRole(t *testing.T) {
	f := newRolesFixture(t)

	err := f.svc.Assign(context.Background(), uuid.New(), uuid.New(), "superuser")
	assertCode(t, err, "INVALID_ROLE")

	f.profiles.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestRoles_Assign_Unauthorized(t *testing.T) {
	f := newRolesFixture(t)
	actorID := uuid.New()

	f.profiles.On("GetByID", mock.Anything, actorID).Return(model.Profile{ID: actorID, Role: model.RoleTeacher}, nil).Once()

	err := f.svc.Assign(context.Background(), actorID, uuid.New(), model.RoleHealthcare)
	assertCode(t, err, "UNAUTHORIZED")
}

func TestRoles_Assign_TargetNotFound(t *testing.T) {
	f := newRolesFixture(t)
	actorID := uuid.New()
	targetID := uuid.New()

	f.profiles.On("GetByID", mock.Anything, actorID).Return(model.Profile{ID: actorID, Role: model.RoleAdmin}, nil).Once()
	f.profiles.On("GetByID", mock.Anything, targetID).Return(model.Profile{}, model.ErrNotFound).Once()

	err := f.svc.Assign(context.Background(), actorID, targetID, model.RoleTeacher)
	assertCode(t, err, "NOT_FOUND")
}

func TestRoles_Assign_AdminSetsRole(t *testing.T) {
	f := newRolesFixture(t)
	actorID := uuid.New()
	targetID := uuid.New()

	f.profiles.On("GetByID", mock.Anything, actorID).Return(model.Profile{ID: actorID, Role: model.RoleAdmin}, nil).Once()
	f.profiles.On("GetByID", mock.Anything, targetID).Return(model.Profile{ID: targetID, Role: model.RoleParent}, nil).Once()
	f.profiles.On("SetRole", mock.Anything, targetID, model.RolePrincipal).Return(nil).Once()

	require.NoError(t, f.svc.Assign(context.Background(), actorID, targetID, model.RolePrincipal))
	f.profiles.AssertExpectations(t)
}

func TestRoles_Assign_PrincipalScope(t *testing.T) {
	f := newRolesFixture(t)
	actorID := uuid.New()
	targetID := uuid.New()

	f.profiles.On("GetByID", mock.Anything, actorID).Return(model.Profile{ID: actorID, Role: model.RolePrincipal}, nil)
	f.profiles.On("GetByID", mock.Anything, targetID).Return(model.Profile{ID: targetID}, nil)
	f.profiles.On("SetRole", mock.Anything, targetID, model.RoleClassTeacher).Return(nil).Once()

	require.NoError(t, f.svc.Assign(context.Background(), actorID, targetID, model.RoleClassTeacher))

	err := f.svc.Assign(context.Background(), actorID, targetID, model.RoleAdmin)
	assertCode(t, err, "UNAUTHORIZED")
}

func TestRoles_Assign_KidCreatesLinkedChild(t *testing.T) {
	f := newRolesFixture(t)
	actorID := uuid.New()
	targetID := uuid.New()

	target := model.Profile{
		ID:       targetID,
		FullName: "Sam Example",
		Role:     model.RoleUnverified,
		Metadata: map[string]any{"dob": "2014-05-01"},
	}

	f.profiles.On("GetByID", mock.Anything, actorID).Return(model.Profile{ID: actorID, Role: model.RoleParent}, nil).Once()
	f.profiles.On("GetByID", mock.Anything, targetID).Return(target, nil).Once()

	var child model.Child
	f.children.On("CreateLinkedWithRole", mock.Anything, mock.Anything, targetID, model.RoleKid, actorID).Run(func(args mock.Arguments) {
		child = args.Get(1).(model.Child)
	}).Return(model.Child{}, nil).Once()

	require.NoError(t, f.svc.Assign(context.Background(), actorID, targetID, model.RoleKid))

	assert.Equal(t, "Sam Example", child.Name)
	assert.Equal(t, 2014, child.DOB.Year())
	assert.Equal(t, true, child.Metadata["is_self"])
	assert.Equal(t, false, child.Metadata["dob_defaulted"])
	assert.Equal(t, targetID.String(), child.Metadata["linked_user_id"])

	// The role change never goes through SetRole; it rides the child tx.
	f.profiles.AssertNotCalled(t, "SetRole", mock.Anything, mock.Anything, mock.Anything)
}

func TestRoles_Assign_KidDefaultsDOBWhenUnknown(t *testing.T) {
	f := newRolesFixture(t)
	actorID := uuid.New()
	targetID := uuid.New()

	f.profiles.On("GetByID", mock.Anything, actorID).Return(model.Profile{ID: actorID, Role: model.RoleGuardian}, nil).Once()
	f.profiles.On("GetByID", mock.Anything, targetID).Return(model.Profile{ID: targetID, FullName: "Sam"}, nil).Once()

	var child model.Child
	f.children.On("CreateLinkedWithRole", mock.Anything, mock.Anything, targetID, model.RoleKid, actorID).Run(func(args mock.Arguments) {
		child = args.Get(1).(model.Child)
	}).Return(model.Child{}, nil).Once()

	require.NoError(t, f.svc.Assign(context.Background(), actorID, targetID, model.RoleKid))

	assert.Equal(t, true, child.Metadata["dob_defaulted"])
	assert.Equal(t, 2016, child.DOB.Year())
}

func TestRoles_Assign_KidInsertFailure(t *testing.T) {
	f := newRolesFixture(t)
	actorID := uuid.New()
	targetID := uuid.New()

	f.profiles.On("GetByID", mock.Anything, actorID).Return(model.Profile{ID: actorID, Role: model.RoleParent}, nil).Once()
	f.profiles.On("GetByID", mock.Anything, targetID).Return(model.Profile{ID: targetID}, nil).Once()
	f.children.On("CreateLinkedWithRole", mock.Anything, mock.Anything, targetID, model.RoleKid, actorID).
		Return(model.Child{}, model.ErrChildInsertFailed).Once()

	err := f.svc.Assign(context.Background(), actorID, targetID, model.RoleKid)
	assertCode(t, err, "CHILD_CREATION_FAILED")
}
