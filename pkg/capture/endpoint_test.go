package capture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEndpointMatcher(t *testing.T) {
	m := DefaultMatcher()

	tests := []struct {
		url  string
		want bool
	}{
		{"https://api.lu.ma/event/get-guest-list?event_api_id=evt-1&ticket_key=abc&pagination_limit=20", true},
		{"https://api.lu.ma/event/get-guest-list?ticket_key=abc&event_api_id=evt-1", true},
		{"https://api.lu.ma/event/get-guest-list?event_api_id=evt-1", false},
		{"https://api.lu.ma/event/get-hosts?event_api_id=evt-1&ticket_key=abc", false},
		{"https://lu.ma/event/get-guest-list?event_api_id=evt-1&ticket_key=abc", false},
		{"://not a url", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Match(tt.url))
		})
	}
}

func TestEndpointMatcher_Glob(t *testing.T) {
	m, err := NewEndpointMatcher("https://api.*.ma/event/get-*-list", []string{"ticket_key"})
	require.NoError(t, err)

	assert.True(t, m.Match("https://api.lu.ma/event/get-guest-list?ticket_key=x"))
	assert.True(t, m.Match("https://api.staging.ma/event/get-waitlist-list?ticket_key=x"))
	assert.False(t, m.Match("https://api.lu.ma/event/get-guest-list"))

	_, err = NewEndpointMatcher("https://api.lu.ma/[", nil)
	assert.Error(t, err)
}

func TestParseTotal(t *testing.T) {
	tests := []struct {
		text   string
		want   int
		wantOK bool
	}{
		{"1,234 Guests", 1234, true},
		{"57 Going", 57, true},
		{"Guests (12,000,001)", 12000001, true},
		{"Guests", 0, false},
		{"0 Guests", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, ok := ParseTotal(tt.text)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWithPaginationLimit(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "replaces in place",
			raw:  "https://api.lu.ma/event/get-guest-list?event_api_id=evt-1&pagination_limit=20&ticket_key=abc",
			want: "https://api.lu.ma/event/get-guest-list?event_api_id=evt-1&pagination_limit=1234&ticket_key=abc",
		},
		{
			name: "appends when absent",
			raw:  "https://api.lu.ma/event/get-guest-list?event_api_id=evt-1&ticket_key=abc",
			want: "https://api.lu.ma/event/get-guest-list?event_api_id=evt-1&ticket_key=abc&pagination_limit=1234",
		},
		{
			name: "keeps other encodings untouched",
			raw:  "https://api.lu.ma/event/get-guest-list?ticket_key=a%2Fb&pagination_limit=20&q=x+y",
			want: "https://api.lu.ma/event/get-guest-list?ticket_key=a%2Fb&pagination_limit=1234&q=x+y",
		},
		{
			name: "drops duplicates",
			raw:  "https://api.lu.ma/event/get-guest-list?pagination_limit=20&ticket_key=abc&pagination_limit=40",
			want: "https://api.lu.ma/event/get-guest-list?pagination_limit=1234&ticket_key=abc",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := WithPaginationLimit(tt.raw, "pagination_limit", 1234)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			again, err := WithPaginationLimit(got, "pagination_limit", 1234)
			require.NoError(t, err)
			assert.Equal(t, got, again, "rewriting twice must not change the URL")
		})
	}
}
