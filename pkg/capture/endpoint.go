package capture

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/gobwas/glob"
)

// Listing-API defaults.
const (
	DefaultEndpointPattern = "https://api.lu.ma/event/get-guest-list"
	DefaultPaginationParam = "pagination_limit"
)

// DefaultRequiredParams are the query keys a guest list request carries.
var DefaultRequiredParams = []string{"event_api_id", "ticket_key"}

// DefaultMatcher matches the platform's guest list request.
func DefaultMatcher() *EndpointMatcher {
	m, err := NewEndpointMatcher(DefaultEndpointPattern, DefaultRequiredParams)
	if err != nil {
		panic(err)
	}
	return m
}

// EndpointMatcher recognizes the listing-API request among everything the
// event page sends.
type EndpointMatcher struct {
	pattern  string
	glob     glob.Glob
	required []string
}

// NewEndpointMatcher compiles pattern, a glob over scheme://host/path, and
// requires every key in required to be present in the query.
func NewEndpointMatcher(pattern string, required []string) (*EndpointMatcher, error) {
	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint pattern %q: %w", pattern, err)
	}
	return &EndpointMatcher{
		pattern:  pattern,
		glob:     g,
		required: append([]string(nil), required...),
	}, nil
}

// Match reports whether raw is the listing-API request.
func (m *EndpointMatcher) Match(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if !m.glob.Match(u.Scheme + "://" + u.Host + u.Path) {
		return false
	}
	q := u.Query()
	for _, key := range m.required {
		if !q.Has(key) {
			return false
		}
	}
	return true
}

func (m *EndpointMatcher) String() string {
	if len(m.required) == 0 {
		return m.pattern
	}
	return m.pattern + "?" + strings.Join(m.required, "&")
}

var totalPattern = regexp.MustCompile(`\d[\d,]*`)

// ParseTotal extracts the guest count from heading text such as
// "1,234 Guests". It returns false when no positive count is found.
func ParseTotal(text string) (int, bool) {
	digits := totalPattern.FindString(text)
	if digits == "" {
		return 0, false
	}
	n, err := strconv.Atoi(strings.ReplaceAll(digits, ",", ""))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// WithPaginationLimit sets param=limit on the query of raw. The first
// occurrence is replaced in place and later duplicates are dropped; the
// parameter is appended when absent. Every other parameter keeps its
// position and original encoding.
func WithPaginationLimit(raw, param string, limit int) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint URL: %w", err)
	}

	value := url.QueryEscape(param) + "=" + strconv.Itoa(limit)

	var parts []string
	replaced := false
	if u.RawQuery != "" {
		for _, part := range strings.Split(u.RawQuery, "&") {
			if queryKey(part) != param {
				parts = append(parts, part)
				continue
			}
			if !replaced {
				parts = append(parts, value)
				replaced = true
			}
		}
	}
	if !replaced {
		parts = append(parts, value)
	}

	u.RawQuery = strings.Join(parts, "&")
	return u.String(), nil
}

func queryKey(part string) string {
	key, _, _ := strings.Cut(part, "=")
	if unescaped, err := url.QueryUnescape(key); err == nil {
		return unescaped
	}
	return key
}
