package capture

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Defaults for fields the payload leaves out.
const (
	DefaultName      = "Anonymous"
	DefaultTimezone  = "Unknown"
	DefaultEventName = "Unknown Event"
)

// Attendee is one normalized guest. Optional social links are nil when
// the guest has no handle for that network.
type Attendee struct {
	Name                 string  `json:"name"`
	ProfileLink          string  `json:"profileLink"`
	EventName            string  `json:"eventName"`
	EventLink            string  `json:"eventLink"`
	Timezone             string  `json:"timezone"`
	Username             string  `json:"username"`
	BioShort             string  `json:"bioShort"`
	AvatarURL            string  `json:"avatarUrl"`
	LastOnlineAt         string  `json:"lastOnlineAt"`
	Twitter              *string `json:"twitter,omitempty"`
	Instagram            *string `json:"instagram,omitempty"`
	LinkedIn             *string `json:"linkedin,omitempty"`
	YouTube              *string `json:"youtube,omitempty"`
	TikTok               *string `json:"tiktok,omitempty"`
	Website              *string `json:"website,omitempty"`
	NumTicketsRegistered int     `json:"numTicketsRegistered"`
}

// socialLinks maps a payload handle key to the link template it fills.
var socialLinks = []struct {
	key    string
	prefix string
	set    func(a *Attendee, link *string)
}{
	{"twitter_handle", "https://twitter.com/", func(a *Attendee, l *string) { a.Twitter = l }},
	{"instagram_handle", "https://instagram.com/", func(a *Attendee, l *string) { a.Instagram = l }},
	{"linkedin_handle", "https://linkedin.com/in/", func(a *Attendee, l *string) { a.LinkedIn = l }},
	{"youtube_handle", "https://youtube.com/", func(a *Attendee, l *string) { a.YouTube = l }},
	{"tiktok_handle", "https://tiktok.com/@", func(a *Attendee, l *string) { a.TikTok = l }},
	{"website", "", func(a *Attendee, l *string) { a.Website = l }},
}

var errNoEntries = errors.New("payload has no entries array")

// decodeEntries pulls the entries array out of a listing-API body.
func decodeEntries(body []byte) ([]any, error) {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("malformed guest list payload: %w", err)
	}
	entries, ok := payload["entries"].([]any)
	if !ok {
		return nil, errNoEntries
	}
	return entries, nil
}

// Normalizer turns raw guest entries into Attendees for one event.
type Normalizer struct {
	SiteURL   string
	EventName string
	EventLink string
}

// Normalize converts entries, skipping anything that is not a JSON object.
// The result is never nil.
func (n Normalizer) Normalize(entries []any) []Attendee {
	attendees := make([]Attendee, 0, len(entries))
	for _, e := range entries {
		guest, ok := e.(map[string]any)
		if !ok {
			continue
		}
		attendees = append(attendees, n.Attendee(guest))
	}
	return attendees
}

// Attendee converts a single guest entry.
func (n Normalizer) Attendee(guest map[string]any) Attendee {
	a := Attendee{
		Name:                 stringOr(guest, "name", DefaultName),
		EventName:            n.EventName,
		EventLink:            n.EventLink,
		Timezone:             stringOr(guest, "timezone", DefaultTimezone),
		Username:             stringOr(guest, "username", ""),
		BioShort:             stringOr(guest, "bio_short", ""),
		AvatarURL:            stringOr(guest, "avatar_url", ""),
		LastOnlineAt:         stringOr(guest, "last_online_at", ""),
		NumTicketsRegistered: intOr(guest, "num_tickets_registered", 0),
	}

	if id := stringOr(guest, "api_id", ""); id != "" {
		a.ProfileLink = strings.TrimRight(n.SiteURL, "/") + "/user/" + id
	}

	for _, s := range socialLinks {
		if handle := stringOr(guest, s.key, ""); handle != "" {
			link := s.prefix + handle
			s.set(&a, &link)
		}
	}

	return a
}

// stringOr returns guest[key] when it is a non-empty string.
func stringOr(guest map[string]any, key, fallback string) string {
	if s, ok := guest[key].(string); ok && s != "" {
		return s
	}
	return fallback
}

func intOr(guest map[string]any, key string, fallback int) int {
	switch v := guest[key].(type) {
	case float64:
		return int(v)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n)
		}
	}
	return fallback
}
