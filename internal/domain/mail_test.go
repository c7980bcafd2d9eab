package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsSystemFolder(t *testing.T) {
	for _, name := range SystemFolders {
		assert.True(t, IsSystemFolder(name))
	}
	assert.False(t, IsSystemFolder("folder_abc"))
	assert.False(t, IsSystemFolder(""))
	assert.False(t, IsSystemFolder("Inbox"))
}

func TestCustomFolderFile(t *testing.T) {
	assert.Equal(t, "folder_abc-123", CustomFolderFile("abc-123"))
}

func TestMailClone_DeepCopiesSlices(t *testing.T) {
	original := Mail{
		ID:          1,
		To:          []string{"bob"},
		Attachments: []Attachment{{Filename: "a.txt"}},
	}

	cloned := original.Clone()
	cloned.To[0] = "mallory"
	cloned.Attachments[0].Filename = "evil.txt"

	assert.Equal(t, "bob", original.To[0])
	assert.Equal(t, "a.txt", original.Attachments[0].Filename)
}

func TestLocalTimeJSON(t *testing.T) {
	ts := NewLocalTime(time.Date(2026, 8, 30, 14, 5, 9, 0, time.Local))

	data, err := json.Marshal(ts)
	require.NoError(t, err)
	assert.Equal(t, `"2026-08-30T14:05:09"`, string(data))

	var parsed LocalTime
	require.NoError(t, json.Unmarshal(data, &parsed))
	assert.True(t, parsed.Equal(ts.Time))
}

func TestLocalTimeJSON_ZeroAndNull(t *testing.T) {
	data, err := json.Marshal(LocalTime{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))

	var parsed LocalTime
	require.NoError(t, json.Unmarshal([]byte("null"), &parsed))
	assert.True(t, parsed.IsZero())

	require.NoError(t, json.Unmarshal([]byte(`""`), &parsed))
	assert.True(t, parsed.IsZero())
}

func TestFilterCriteriaHasActive(t *testing.T) {
	var nilCriteria *FilterCriteria
	assert.False(t, nilCriteria.HasActive())
	assert.False(t, (&FilterCriteria{}).HasActive())

	starred := true
	assert.True(t, (&FilterCriteria{SearchTerm: "x"}).HasActive())
	assert.True(t, (&FilterCriteria{IsStarred: &starred}).HasActive())
	assert.True(t, (&FilterCriteria{Priority: []int{PriorityUrgent}}).HasActive())
}

func TestContactPrimaryEmail(t *testing.T) {
	c := Contact{Emails: []ContactEmail{
		{Address: "secondary@example.com"},
		{Address: "primary@example.com", Primary: true},
	}}
	assert.Equal(t, "primary@example.com", c.PrimaryEmail())

	c.Emails[1].Primary = false
	assert.Equal(t, "secondary@example.com", c.PrimaryEmail())

	assert.Empty(t, (&Contact{}).PrimaryEmail())
}
