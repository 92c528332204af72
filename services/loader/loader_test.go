package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gatewise/accesssim/models"
	"github.com/gatewise/accesssim/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const validPolicies = `{
	"policies": [
		{
			"name": "Policy 1",
			"status": "enabled",
			"users": ["user1"],
			"conditions": {
				"time": {"start_time": "08:00", "end_time": "18:00"},
				"location": ["USA"],
				"device_health": "compliant"
			},
			"grant_controls": {"access": "grant"}
		}
	]
}`

func TestLoadPolicySet(t *testing.T) {
	l := New(zap.NewNop())
	path := writeFile(t, t.TempDir(), "policies.json", validPolicies)

	set, err := l.LoadPolicySet(path)
	require.NoError(t, err)
	require.Len(t, set.Policies, 1)

	p := set.Policies[0]
	assert.Equal(t, "Policy 1", p.Name)
	assert.True(t, p.Enabled())
	assert.Equal(t, []string{"user1"}, p.Subjects)
	require.NotNil(t, p.Conditions.Time)
	assert.Equal(t, "08:00", p.Conditions.Time.StartTime)
	assert.Equal(t, []string{"USA"}, p.Conditions.Locations)
	assert.Equal(t, "compliant", p.Conditions.DeviceHealth)
	assert.Equal(t, models.AccessGrant, p.GrantControls.Access)
}

func TestLoadPolicySet_MissingFile(t *testing.T) {
	l := New(zap.NewNop())

	_, err := l.LoadPolicySet(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.True(t, services.IsDataUnavailableError(err))
}

func TestLoadPolicySet_InvalidJSON(t *testing.T) {
	l := New(zap.NewNop())
	path := writeFile(t, t.TempDir(), "policies.json", `{"policies": [`)

	_, err := l.LoadPolicySet(path)
	require.Error(t, err)
	assert.True(t, services.IsDataUnavailableError(err))
}

func TestLoadPolicySet_MissingPoliciesKey(t *testing.T) {
	l := New(zap.NewNop())
	path := writeFile(t, t.TempDir(), "policies.json", `{}`)

	_, err := l.LoadPolicySet(path)
	require.Error(t, err)
	assert.True(t, services.IsValidationError(err))
}

func TestLoadPolicySet_EmptySetIsLegal(t *testing.T) {
	l := New(zap.NewNop())
	path := writeFile(t, t.TempDir(), "policies.json", `{"policies": []}`)

	set, err := l.LoadPolicySet(path)
	require.NoError(t, err)
	assert.Empty(t, set.Policies)
}

func TestLoadPolicySet_InvalidStatus(t *testing.T) {
	l := New(zap.NewNop())
	path := writeFile(t, t.TempDir(), "policies.json", `{
		"policies": [{"name": "P", "status": "sometimes", "grant_controls": {"access": "grant"}}]
	}`)

	_, err := l.LoadPolicySet(path)
	require.Error(t, err)
	assert.True(t, services.IsValidationError(err))
}

func TestLoadSubjectDirectory(t *testing.T) {
	l := New(zap.NewNop())
	path := writeFile(t, t.TempDir(), "users.json", `{
		"users": [
			{"id": "user1", "name": "John Doe"},
			{"id": "user2", "name": "Jane Smith", "department": "ops"}
		]
	}`)

	dir, err := l.LoadSubjectDirectory(path)
	require.NoError(t, err)
	require.Len(t, dir.Users, 2)
	assert.Equal(t, "user1", dir.Users[0].ID)
	// Profile attributes are preserved but opaque.
	assert.Equal(t, "Jane Smith", dir.Users[1].Attributes["name"])
	assert.Equal(t, "ops", dir.Users[1].Attributes["department"])

	assert.NotNil(t, dir.FindUser("user2"))
	assert.Nil(t, dir.FindUser("ghost"))
}

func TestLoadSubjectDirectory_UserWithoutID(t *testing.T) {
	l := New(zap.NewNop())
	path := writeFile(t, t.TempDir(), "users.json", `{"users": [{"name": "No ID"}]}`)

	_, err := l.LoadSubjectDirectory(path)
	require.Error(t, err)
	assert.True(t, services.IsValidationError(err))
}

func TestLoadContextSnapshot(t *testing.T) {
	l := New(zap.NewNop())
	path := writeFile(t, t.TempDir(), "context.json", `{
		"context": {"location": "USA", "device_health": "compliant"}
	}`)

	snap, err := l.LoadContextSnapshot(path)
	require.NoError(t, err)
	require.NotNil(t, snap.Context)
	assert.Equal(t, "USA", snap.Context.Location)
	assert.Equal(t, "compliant", snap.Context.DeviceHealth)
}

func TestLoadContextSnapshot_EmptyContextIsLegal(t *testing.T) {
	l := New(zap.NewNop())
	path := writeFile(t, t.TempDir(), "context.json", `{"context": {}}`)

	snap, err := l.LoadContextSnapshot(path)
	require.NoError(t, err)
	require.NotNil(t, snap.Context)
	assert.Empty(t, snap.Context.Location)
}

func TestLoadContextSnapshot_MissingContextKey(t *testing.T) {
	l := New(zap.NewNop())
	path := writeFile(t, t.TempDir(), "context.json", `{}`)

	_, err := l.LoadContextSnapshot(path)
	require.Error(t, err)
	assert.True(t, services.IsValidationError(err))
}

func TestLoadAll_FirstFailureWins(t *testing.T) {
	l := New(zap.NewNop())
	dir := t.TempDir()
	policies := writeFile(t, dir, "policies.json", validPolicies)
	users := writeFile(t, dir, "users.json", `{"users": [{"id": "user1"}]}`)
	contextPath := writeFile(t, dir, "context.json", `{"context": {"location": "USA"}}`)

	set, subjects, snap, err := l.LoadAll(policies, users, contextPath)
	require.NoError(t, err)
	assert.NotNil(t, set)
	assert.NotNil(t, subjects)
	assert.NotNil(t, snap)

	_, _, _, err = l.LoadAll(filepath.Join(dir, "missing.json"), users, contextPath)
	require.Error(t, err)
	assert.True(t, services.IsDataUnavailableError(err))
}
