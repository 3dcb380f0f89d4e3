package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/alecthomas/chroma/v2/quick"

	"github.com/entrhq/guestlist/pkg/capture"
)

// Preview styling. Formatter "noop" disables colour.
var (
	PreviewFormatter = "terminal256"
	PreviewStyle     = "monokai"
)

// Preview writes the first n attendees to w as highlighted JSON.
func Preview(w io.Writer, attendees []capture.Attendee, n int) error {
	if n <= 0 {
		return nil
	}
	if n > len(attendees) {
		n = len(attendees)
	}

	data, err := json.MarshalIndent(attendees[:n], "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal preview: %w", err)
	}

	if err := quick.Highlight(w, string(data)+"\n", "json", PreviewFormatter, PreviewStyle); err != nil {
		return fmt.Errorf("failed to highlight preview: %w", err)
	}
	return nil
}
