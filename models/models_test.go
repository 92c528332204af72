package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Policy tests

func TestPolicy_Enabled(t *testing.T) {
	assert.True(t, (&Policy{Status: PolicyStatusEnabled}).Enabled())
	assert.False(t, (&Policy{Status: PolicyStatusDisabled}).Enabled())
	assert.False(t, (&Policy{Status: "paused"}).Enabled())
}

func TestPolicy_AppliesTo(t *testing.T) {
	policy := &Policy{Subjects: []string{"user1", "user2"}}

	assert.True(t, policy.AppliesTo("user1"))
	assert.False(t, policy.AppliesTo("user3"))
	assert.False(t, (&Policy{}).AppliesTo("user1"))
}

func TestPolicySet_UnmarshalJSON(t *testing.T) {
	t.Run("full policy document", func(t *testing.T) {
		raw := `{
			"policies": [
				{
					"name": "Office Hours",
					"status": "enabled",
					"users": ["user1"],
					"conditions": {
						"time": {"start_time": "08:00", "end_time": "18:00"},
						"location": ["USA", "Canada"],
						"device_health": "healthy"
					},
					"grant_controls": {"access": "grant"}
				}
			]
		}`

		var set PolicySet
		require.NoError(t, json.Unmarshal([]byte(raw), &set))
		require.Len(t, set.Policies, 1)

		policy := set.Policies[0]
		assert.Equal(t, "Office Hours", policy.Name)
		assert.Equal(t, PolicyStatusEnabled, policy.Status)
		assert.Equal(t, []string{"user1"}, policy.Subjects)
		require.NotNil(t, policy.Conditions.Time)
		assert.Equal(t, "08:00", policy.Conditions.Time.StartTime)
		assert.Equal(t, []string{"USA", "Canada"}, policy.Conditions.Locations)
		assert.Equal(t, "healthy", policy.Conditions.DeviceHealth)
		assert.Equal(t, AccessGrant, policy.GrantControls.Access)
	})

	t.Run("missing policies key leaves slice nil", func(t *testing.T) {
		var set PolicySet
		require.NoError(t, json.Unmarshal([]byte(`{}`), &set))
		assert.Nil(t, set.Policies)
	})

	t.Run("empty list stays non-nil", func(t *testing.T) {
		var set PolicySet
		require.NoError(t, json.Unmarshal([]byte(`{"policies": []}`), &set))
		require.NotNil(t, set.Policies)
		assert.Empty(t, set.Policies)
	})

	t.Run("absent conditions are zero-valued", func(t *testing.T) {
		raw := `{"policies": [{"name": "Open", "status": "enabled", "users": ["user1"], "grant_controls": {"access": "grant"}}]}`

		var set PolicySet
		require.NoError(t, json.Unmarshal([]byte(raw), &set))
		policy := set.Policies[0]
		assert.Nil(t, policy.Conditions.Time)
		assert.Nil(t, policy.Conditions.Locations)
		assert.Empty(t, policy.Conditions.DeviceHealth)
	})
}

// User tests

func TestUser_UnmarshalJSON(t *testing.T) {
	raw := `{"id": "user1", "department": "engineering", "clearance": 3}`

	var user User
	require.NoError(t, json.Unmarshal([]byte(raw), &user))

	assert.Equal(t, "user1", user.ID)
	assert.Equal(t, "engineering", user.Attributes["department"])
	assert.Equal(t, float64(3), user.Attributes["clearance"])
	assert.NotContains(t, user.Attributes, "id")
}

func TestUser_MarshalJSON_RoundTrip(t *testing.T) {
	user := User{ID: "user1", Attributes: map[string]any{"department": "sales"}}

	data, err := json.Marshal(user)
	require.NoError(t, err)

	var decoded User
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, user.ID, decoded.ID)
	assert.Equal(t, user.Attributes, decoded.Attributes)
}

func TestSubjectDirectory_FindUser(t *testing.T) {
	dir := &SubjectDirectory{Users: []User{{ID: "user1"}, {ID: "user2"}}}

	found := dir.FindUser("user2")
	require.NotNil(t, found)
	assert.Equal(t, "user2", found.ID)

	assert.Nil(t, dir.FindUser("user3"))
	assert.Nil(t, (&SubjectDirectory{}).FindUser("user1"))
}

// Context tests

func TestContextSnapshot_UnmarshalJSON(t *testing.T) {
	t.Run("populated context", func(t *testing.T) {
		var snap ContextSnapshot
		require.NoError(t, json.Unmarshal([]byte(`{"context": {"location": "USA", "device_health": "healthy"}}`), &snap))
		require.NotNil(t, snap.Context)
		assert.Equal(t, "USA", snap.Context.Location)
		assert.Equal(t, "healthy", snap.Context.DeviceHealth)
	})

	t.Run("missing context key leaves pointer nil", func(t *testing.T) {
		var snap ContextSnapshot
		require.NoError(t, json.Unmarshal([]byte(`{}`), &snap))
		assert.Nil(t, snap.Context)
	})

	t.Run("empty context object is present but attribute-free", func(t *testing.T) {
		var snap ContextSnapshot
		require.NoError(t, json.Unmarshal([]byte(`{"context": {}}`), &snap))
		require.NotNil(t, snap.Context)
		assert.Empty(t, snap.Context.Location)
		assert.Empty(t, snap.Context.DeviceHealth)
	})
}
