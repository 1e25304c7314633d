package provision

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/de-tools/ops-atlas/pkg/models/domain"
	"github.com/de-tools/ops-atlas/pkg/services/reconcile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockDirectory struct{ mock.Mock }

func (m *mockDirectory) UserExists(ctx context.Context, upn string) (bool, error) {
	args := m.Called(ctx, upn)
	return args.Bool(0), args.Error(1)
}

func (m *mockDirectory) CreateUser(ctx context.Context, spec domain.UserSpec) error {
	args := m.Called(ctx, spec)
	return args.Error(0)
}

func userSpecs() []domain.UserSpec {
	return []domain.UserSpec{
		{UserPrincipalName: "alex@example.com", DisplayName: "Alex Doe", MailNickname: "alex"},
		{UserPrincipalName: "sam@example.com", DisplayName: "Sam Roe", MailNickname: "sam"},
	}
}

func TestUserReconciler_MixedOutcomes(t *testing.T) {
	ctx := context.Background()
	dir := new(mockDirectory)
	dir.On("UserExists", mock.Anything, "alex@example.com").Return(true, nil)
	dir.On("UserExists", mock.Anything, "sam@example.com").Return(false, nil)
	dir.On("CreateUser", mock.Anything, userSpecs()[1]).Return(nil)

	rec, err := NewUserReconciler(dir, userSpecs(), false)
	require.NoError(t, err)

	summary, err := reconcile.NewEngine(1).Run(ctx,
		reconcile.StaticEnumerator{Resources: rec.Targets()}, rec, domain.Filter{})
	require.NoError(t, err)
	require.Len(t, summary.Outcomes, 2)
	assert.Equal(t, domain.StatusSkipped, summary.Outcomes[0].Status)
	assert.Equal(t, domain.StatusCreated, summary.Outcomes[1].Status)
	dir.AssertExpectations(t)
}

func TestUserReconciler_DryRunNeverCreates(t *testing.T) {
	ctx := context.Background()
	dir := new(mockDirectory)
	dir.On("UserExists", mock.Anything, mock.Anything).Return(false, nil)

	rec, err := NewUserReconciler(dir, userSpecs(), true)
	require.NoError(t, err)

	for _, target := range rec.Targets() {
		outcome := rec.Reconcile(ctx, target)
		assert.Equal(t, domain.StatusSkipped, outcome.Status)
		assert.Contains(t, outcome.Detail, "would create")
	}
	dir.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
}

func TestUserReconciler_LookupFailure(t *testing.T) {
	ctx := context.Background()
	dir := new(mockDirectory)
	dir.On("UserExists", mock.Anything, "alex@example.com").Return(false, errors.New("graph unreachable"))

	rec, err := NewUserReconciler(dir, userSpecs()[:1], false)
	require.NoError(t, err)

	outcome := rec.Reconcile(ctx, rec.Targets()[0])
	assert.Equal(t, domain.StatusFailed, outcome.Status)
	dir.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
}

func TestNewUserReconciler_RejectsIncompleteSpec(t *testing.T) {
	_, err := NewUserReconciler(new(mockDirectory), []domain.UserSpec{
		{UserPrincipalName: "alex@example.com"},
	}, false)
	require.Error(t, err)
}

func TestNewUserReconciler_RejectsDuplicateUPN(t *testing.T) {
	specs := []domain.UserSpec{
		{UserPrincipalName: "alex@example.com", DisplayName: "Alex", MailNickname: "alex"},
		{UserPrincipalName: "alex@example.com", DisplayName: "Alexandra", MailNickname: "alexandra"},
	}
	_, err := NewUserReconciler(new(mockDirectory), specs, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate user spec")
}

func TestLoadUserSpecs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.csv")
	require.NoError(t, os.WriteFile(path, []byte(
		"upn,displayName,mailNickname\n"+
			"alex@example.com,Alex Doe,alex\n"+
			"sam@example.com,Sam Roe,sam\n"), 0o600))

	specs, err := LoadUserSpecs(path)
	require.NoError(t, err)
	require.Len(t, specs, 2)
	assert.Equal(t, "alex@example.com", specs[0].UserPrincipalName)
	assert.Equal(t, "Sam Roe", specs[1].DisplayName)
}

func TestLoadUserSpecs_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.csv")
	require.NoError(t, os.WriteFile(path, []byte("upn,displayName,mailNickname\n"), 0o600))

	_, err := LoadUserSpecs(path)
	require.Error(t, err)
}

func TestInitialPassword(t *testing.T) {
	p1, err := initialPassword()
	require.NoError(t, err)
	p2, err := initialPassword()
	require.NoError(t, err)
	assert.NotEqual(t, p1, p2)
	assert.Greater(t, len(p1), 20)
}
