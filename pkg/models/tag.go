package models

import (
	"encoding/json"
	"net/url"
	"strings"
)

// NotSet is shown for a gateway or DNS override that inherits the system value
const NotSet = "Not set"

// Tag represents a named network-configuration profile
type Tag struct {
	Name        string  `json:"name"`                  // Unique tag name
	Gateway     *string `json:"gateway,omitempty"`     // Gateway override, nil inherits
	DNS         *string `json:"dns,omitempty"`         // DNS override, nil inherits
	Description string  `json:"description,omitempty"` // Free text
}

// UnmarshalJSON normalizes blank overrides to nil. The backend stores
// omitted form fields as empty strings.
func (t *Tag) UnmarshalJSON(data []byte) error {
	type plain Tag
	var raw plain
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*t = Tag(raw)
	t.Gateway = normalizeOverride(t.Gateway)
	t.DNS = normalizeOverride(t.DNS)
	return nil
}

func normalizeOverride(p *string) *string {
	if p == nil {
		return nil
	}
	return StringPtr(strings.TrimSpace(*p))
}

// GatewayDisplay renders the gateway override for display
func (t Tag) GatewayDisplay() string {
	if t.Gateway == nil {
		return NotSet
	}
	return *t.Gateway
}

// DNSDisplay renders the DNS override for display
func (t Tag) DNSDisplay() string {
	if t.DNS == nil {
		return NotSet
	}
	return *t.DNS
}

// Form converts the tag to the create_tag request body
func (t Tag) Form() url.Values {
	form := url.Values{}
	form.Set("name", t.Name)
	form.Set("gateway", StringValue(t.Gateway))
	form.Set("dns", StringValue(t.DNS))
	form.Set("description", t.Description)
	return form
}
