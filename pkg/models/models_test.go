package models

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeaseTimestampForms(t *testing.T) {
	var leases []Lease
	require.NoError(t, json.Unmarshal([]byte(`[
		{"hostname": "a", "ipaddr": "192.168.1.2", "macaddr": "aa:bb:cc:00:00:01", "timestamp": 1700000000},
		{"hostname": "b", "timestamp": "0"},
		{"hostname": "c", "timestamp": null},
		{"hostname": "d"}
	]`), &leases))

	require.Len(t, leases, 4)
	assert.Equal(t, "1700000000", leases[0].Timestamp)
	assert.Equal(t, "192.168.1.2", leases[0].IP)
	assert.False(t, leases[0].Static())
	assert.True(t, leases[1].Static())
	assert.Empty(t, leases[2].Timestamp)
	assert.Empty(t, leases[3].Timestamp)

	assert.Error(t, json.Unmarshal([]byte(`{"timestamp": true}`), &Lease{}))
}

func TestDeviceOnline(t *testing.T) {
	assert.True(t, Device{Kind: KindLease}.Online())
	assert.False(t, Device{Kind: KindStatic}.Online())
	assert.True(t, KindStatic.Valid())
	assert.False(t, SourceKind("dynamic").Valid())
}

func TestTagBlankOverrides(t *testing.T) {
	var tag Tag
	require.NoError(t, json.Unmarshal([]byte(`{"name": "iot", "gateway": "  ", "dns": "8.8.8.8"}`), &tag))

	assert.Nil(t, tag.Gateway)
	assert.Equal(t, NotSet, tag.GatewayDisplay())
	assert.Equal(t, "8.8.8.8", tag.DNSDisplay())

	form := tag.Form()
	assert.Equal(t, "iot", form.Get("name"))
	assert.Equal(t, "", form.Get("gateway"))
	assert.Equal(t, "8.8.8.8", form.Get("dns"))
}

func TestPartialRefreshError(t *testing.T) {
	tagsErr := errors.New("tags failed")
	leasesErr := &RequestError{Endpoint: "/leases"}
	err := &PartialRefreshError{Failures: map[string]error{"tags": tagsErr, "leases": leasesErr}}

	assert.Equal(t, []string{"leases", "tags"}, err.Resources())
	assert.ErrorIs(t, err, tagsErr)

	var rerr *RequestError
	assert.True(t, errors.As(err, &rerr))
	assert.Equal(t, "leases: API request failed; tags: tags failed", err.Error())
}

func TestValidationError(t *testing.T) {
	err := &ValidationError{Field: "name", Value: "x", Err: ErrInvalidName}
	assert.ErrorIs(t, err, ErrInvalidName)
	assert.Contains(t, err.Error(), "name")

	err.Message = "Invalid tag name"
	assert.Equal(t, "Invalid tag name", err.Error())
}

func TestStringPtr(t *testing.T) {
	assert.Nil(t, StringPtr(""))
	assert.Equal(t, "x", StringValue(StringPtr("x")))
	assert.Equal(t, "", StringValue(nil))
}
