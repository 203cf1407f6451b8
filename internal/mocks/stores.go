// Package mocks provides testify mocks for the model interfaces.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/kinfolkhq/kinfolk-server/internal/model"
)

// AccountStore is a mock model.AccountStore.
type AccountStore struct {
	mock.Mock
}

func (m *AccountStore) GetByEmail(ctx context.Context, email string) (model.Account, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(model.Account), args.Error(1)
}

func (m *AccountStore) GetByID(ctx context.Context, id uuid.UUID) (model.Account, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Account), args.Error(1)
}

func (m *AccountStore) Create(ctx context.Context, account model.Account) (model.Account, error) {
	args := m.Called(ctx, account)
	return args.Get(0).(model.Account), args.Error(1)
}

func (m *AccountStore) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *AccountStore) MarkVerified(ctx context.Context, id uuid.UUID, promoteTo model.Role, metadata map[string]any) error {
	args := m.Called(ctx, id, promoteTo, metadata)
	return args.Error(0)
}

func (m *AccountStore) UpdatePasswordHash(ctx context.Context, id uuid.UUID, passwordHash []byte) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

// ProfileStore is a mock model.ProfileStore.
type ProfileStore struct {
	mock.Mock
}

func (m *ProfileStore) GetByID(ctx context.Context, id uuid.UUID) (model.Profile, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Profile), args.Error(1)
}

func (m *ProfileStore) Create(ctx context.Context, profile model.Profile) (model.Profile, error) {
	args := m.Called(ctx, profile)
	return args.Get(0).(model.Profile), args.Error(1)
}

func (m *ProfileStore) Upsert(ctx context.Context, id uuid.UUID, fullName string, role model.Role) error {
	args := m.Called(ctx, id, fullName, role)
	return args.Error(0)
}

func (m *ProfileStore) SetRole(ctx context.Context, id uuid.UUID, role model.Role) error {
	args := m.Called(ctx, id, role)
	return args.Error(0)
}

func (m *ProfileStore) MergeMetadata(ctx context.Context, id uuid.UUID, metadata map[string]any) error {
	args := m.Called(ctx, id, metadata)
	return args.Error(0)
}

func (m *ProfileStore) SetAvatarURL(ctx context.Context, id uuid.UUID, url string) error {
	args := m.Called(ctx, id, url)
	return args.Error(0)
}

// ChildStore is a mock model.ChildStore.
type ChildStore struct {
	mock.Mock
}

func (m *ChildStore) GetByID(ctx context.Context, id uuid.UUID) (model.Child, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Child), args.Error(1)
}

func (m *ChildStore) CreateLinked(ctx context.Context, child model.Child, guardianID uuid.UUID) (model.Child, error) {
	args := m.Called(ctx, child, guardianID)
	return args.Get(0).(model.Child), args.Error(1)
}

func (m *ChildStore) CreateLinkedWithRole(ctx context.Context, child model.Child, targetID uuid.UUID, role model.Role, guardianID uuid.UUID) (model.Child, error) {
	args := m.Called(ctx, child, targetID, role, guardianID)
	return args.Get(0).(model.Child), args.Error(1)
}

func (m *ChildStore) DeleteOwned(ctx context.Context, id, guardianID uuid.UUID) error {
	args := m.Called(ctx, id, guardianID)
	return args.Error(0)
}

// VerificationTokenStore is a mock model.VerificationTokenStore.
type VerificationTokenStore struct {
	mock.Mock
}

func (m *VerificationTokenStore) Create(ctx context.Context, token model.VerificationToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *VerificationTokenStore) Consume(ctx context.Context, tokenHash []byte, purpose model.TokenPurpose) (model.VerificationToken, error) {
	args := m.Called(ctx, tokenHash, purpose)
	return args.Get(0).(model.VerificationToken), args.Error(1)
}

// RefreshTokenStore is a mock model.RefreshTokenStore.
type RefreshTokenStore struct {
	mock.Mock
}

func (m *RefreshTokenStore) Create(ctx context.Context, token model.RefreshToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *RefreshTokenStore) GetByJTI(ctx context.Context, jti string) (model.RefreshToken, error) {
	args := m.Called(ctx, jti)
	return args.Get(0).(model.RefreshToken), args.Error(1)
}

func (m *RefreshTokenStore) RevokeByJTI(ctx context.Context, jti string) error {
	args := m.Called(ctx, jti)
	return args.Error(0)
}

func (m *RefreshTokenStore) RevokeAllByAccount(ctx context.Context, accountID uuid.UUID) error {
	args := m.Called(ctx, accountID)
	return args.Error(0)
}

// DailySummaryStore is a mock model.DailySummaryStore.
type DailySummaryStore struct {
	mock.Mock
}

func (m *DailySummaryStore) Create(ctx context.Context, summary model.DailySummary) (model.DailySummary, error) {
	args := m.Called(ctx, summary)
	return args.Get(0).(model.DailySummary), args.Error(1)
}

func (m *DailySummaryStore) GetByID(ctx context.Context, id uuid.UUID) (model.DailySummary, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.DailySummary), args.Error(1)
}

func (m *DailySummaryStore) Update(ctx context.Context, summary model.DailySummary) error {
	args := m.Called(ctx, summary)
	return args.Error(0)
}

func (m *DailySummaryStore) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
