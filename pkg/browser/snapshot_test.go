package browser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshot_FirstText(t *testing.T) {
	snap, err := NewSnapshot("https://lu.ma/demo", `<html><body>
		<h1>
			Demo   Night
		</h1>
		<h1>Second</h1>
		<h3 class="title">1,234 Guests</h3>
	</body></html>`)
	require.NoError(t, err)

	assert.Equal(t, "Demo Night", snap.FirstText("h1"))
	assert.Equal(t, "1,234 Guests", snap.FirstText("h3.title"))
	assert.Equal(t, "", snap.FirstText("h2"))
	assert.Equal(t, "https://lu.ma/demo", snap.URL)
}

func TestSnapshot_Anchors(t *testing.T) {
	snap, err := NewSnapshot("https://lu.ma/cal", `<div class="timeline">
		<a class="event-link" href="/e1" aria-label="First"><span>First</span></a>
		<a class="event-link" href=" /e2 ">No label</a>
		<a class="other" href="/e3" aria-label="Ignored"></a>
	</div>`)
	require.NoError(t, err)

	anchors := snap.Anchors(".timeline a.event-link")
	require.Len(t, anchors, 2)
	assert.Equal(t, Anchor{Href: "/e1", Label: "First", Text: "First"}, anchors[0])
	assert.Equal(t, "/e2", anchors[1].Href)
	assert.Empty(t, anchors[1].Label)
}

func TestWaitPolicy(t *testing.T) {
	tests := []struct {
		name     string
		policy   WaitPolicy
		wantMS   float64
		wantDur  time.Duration
		wantText string
	}{
		{"indefinite", Indefinite(), 0, 0, "indefinite"},
		{"bounded", Bounded(90 * time.Second), 90000, 90 * time.Second, "1m30s"},
		{"zero falls back to default", WaitPolicy{}, DefaultTimeout, 30 * time.Second, "30s"},
		{"indefinite wins over timeout", WaitPolicy{Indefinite: true, Timeout: time.Second}, 0, 0, "indefinite"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMS, tt.policy.Milliseconds())
			assert.Equal(t, tt.wantDur, tt.policy.Duration())
			assert.Equal(t, tt.wantText, tt.policy.String())
		})
	}
}

func TestToInt(t *testing.T) {
	n, err := toInt(4200)
	require.NoError(t, err)
	assert.Equal(t, 4200, n)

	n, err = toInt(float64(1234.0))
	require.NoError(t, err)
	assert.Equal(t, 1234, n)

	n, err = toInt(int64(7))
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	_, err = toInt("tall")
	assert.Error(t, err)
}
