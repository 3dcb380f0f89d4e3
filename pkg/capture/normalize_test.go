package capture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizer_Defaults(t *testing.T) {
	n := Normalizer{SiteURL: "https://lu.ma", EventName: "Demo", EventLink: "https://lu.ma/demo"}

	a := n.Attendee(map[string]any{})

	assert.Equal(t, DefaultName, a.Name)
	assert.Equal(t, DefaultTimezone, a.Timezone)
	assert.Empty(t, a.ProfileLink)
	assert.Equal(t, "Demo", a.EventName)
	assert.Equal(t, "https://lu.ma/demo", a.EventLink)
	assert.Zero(t, a.NumTicketsRegistered)
	assert.Nil(t, a.Twitter)
	assert.Nil(t, a.Instagram)
	assert.Nil(t, a.LinkedIn)
	assert.Nil(t, a.YouTube)
	assert.Nil(t, a.TikTok)
	assert.Nil(t, a.Website)
}

func TestNormalizer_AllFields(t *testing.T) {
	n := Normalizer{SiteURL: "https://lu.ma/", EventName: "Demo", EventLink: "https://lu.ma/demo"}

	a := n.Attendee(map[string]any{
		"name":                   "Bo",
		"api_id":                 "usr-9",
		"timezone":               "Europe/Berlin",
		"username":               "bo",
		"bio_short":              "builder",
		"avatar_url":             "https://cdn/bo.png",
		"last_online_at":         "2024-05-01T10:00:00Z",
		"twitter_handle":         "bo_tw",
		"instagram_handle":       "bo_ig",
		"linkedin_handle":        "bo-li",
		"youtube_handle":         "@bo",
		"tiktok_handle":          "bo_tt",
		"website":                "https://bo.dev",
		"num_tickets_registered": float64(2),
	})

	assert.Equal(t, "https://lu.ma/user/usr-9", a.ProfileLink)
	assert.Equal(t, "Europe/Berlin", a.Timezone)
	assert.Equal(t, "builder", a.BioShort)
	require.NotNil(t, a.Twitter)
	assert.Equal(t, "https://twitter.com/bo_tw", *a.Twitter)
	require.NotNil(t, a.Instagram)
	assert.Equal(t, "https://instagram.com/bo_ig", *a.Instagram)
	require.NotNil(t, a.LinkedIn)
	assert.Equal(t, "https://linkedin.com/in/bo-li", *a.LinkedIn)
	require.NotNil(t, a.YouTube)
	assert.Equal(t, "https://youtube.com/@bo", *a.YouTube)
	require.NotNil(t, a.TikTok)
	assert.Equal(t, "https://tiktok.com/@bo_tt", *a.TikTok)
	require.NotNil(t, a.Website)
	assert.Equal(t, "https://bo.dev", *a.Website)
	assert.Equal(t, 2, a.NumTicketsRegistered)
}

func TestNormalizer_WrongTypesAreAbsent(t *testing.T) {
	n := Normalizer{SiteURL: "https://lu.ma"}

	a := n.Attendee(map[string]any{
		"name":                   42,
		"twitter_handle":         "",
		"linkedin_handle":        []any{"x"},
		"num_tickets_registered": "3",
	})

	assert.Equal(t, DefaultName, a.Name)
	assert.Nil(t, a.Twitter)
	assert.Nil(t, a.LinkedIn)
	assert.Zero(t, a.NumTicketsRegistered)
}

func TestNormalizer_SkipsNonObjects(t *testing.T) {
	n := Normalizer{SiteURL: "https://lu.ma"}

	got := n.Normalize([]any{"oops", map[string]any{"name": "Ann"}, nil, float64(3)})
	require.Len(t, got, 1)
	assert.Equal(t, "Ann", got[0].Name)

	assert.NotNil(t, n.Normalize(nil))
	assert.Empty(t, n.Normalize(nil))
}

func TestDecodeEntries(t *testing.T) {
	entries, err := decodeEntries([]byte(`{"entries":[{"name":"Ann"}],"has_more":false}`))
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	_, err = decodeEntries([]byte(`{"guests":[]}`))
	assert.ErrorIs(t, err, errNoEntries)

	_, err = decodeEntries([]byte(`{"entries":{"name":"Ann"}}`))
	assert.ErrorIs(t, err, errNoEntries)

	_, err = decodeEntries([]byte(`<html>rate limited</html>`))
	assert.Error(t, err)
}
