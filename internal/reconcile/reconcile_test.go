package reconcile

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dhcpconsole/internal/catalog"
	"dhcpconsole/internal/classify"
	"dhcpconsole/pkg/models"
)

func phoneCatalogue() *catalog.Catalogue {
	cat, _ := catalog.Parse([]byte(`{"device_categories": {"phone": {"icon": "📱", "keywords": ["phone"]}}}`))
	return cat
}

func tagPtr(s string) *string { return &s }

func TestReconcileClassifiesAndResolvesTags(t *testing.T) {
	r := New(phoneCatalogue, time.UTC)

	view := r.Reconcile(Snapshot{
		Devices: []models.Device{
			{MAC: "AA:BB:CC:DD:EE:FF", Name: "MyPhone", IP: "192.168.1.10", Kind: models.KindLease},
		},
		Leases: []models.Lease{
			{Hostname: "MyPhone", IP: "192.168.1.10", MAC: "aa:bb:cc:dd:ee:ff", Timestamp: "1700000000"},
		},
	})

	require.Len(t, view.Devices, 1)
	device := view.Devices[0]
	assert.Equal(t, "📱", device.Icon)
	assert.Equal(t, "phone", device.Category)
	assert.Equal(t, models.DefaultTag, device.Tag)
	assert.True(t, device.Online)

	require.Len(t, view.Tags, 1)
	assert.Equal(t, models.DefaultTag, view.Tags[0].Name)
	assert.Equal(t, 1, view.Tags[0].Devices)
	assert.True(t, view.Tags[0].BuiltIn)
	assert.Equal(t, AutoOverride, view.Tags[0].Gateway)

	require.Len(t, view.Leases, 1)
	assert.Equal(t, models.DefaultTag, view.Leases[0].Tag)
	assert.Equal(t, "2023-11-14 22:13:20", view.Leases[0].LeaseTime)
}

func TestReconcileEmptyCatalogueFallsBackToUnknown(t *testing.T) {
	view := New(nil, time.UTC).Reconcile(Snapshot{
		Devices: []models.Device{{MAC: "aa:bb:cc:dd:ee:ff", Name: "MyPhone", Kind: models.KindLease}},
	})
	assert.Equal(t, classify.UnknownCategory, view.Devices[0].Category)
	assert.Equal(t, classify.UnknownIcon, view.Devices[0].Icon)
}

func TestReconcileCountsPartitionDevices(t *testing.T) {
	devices := []models.Device{
		{MAC: "00:00:00:00:00:01", Kind: models.KindLease, Tag: tagPtr("iot")},
		{MAC: "00:00:00:00:00:02", Kind: models.KindStatic, Tag: tagPtr("iot")},
		{MAC: "00:00:00:00:00:03", Kind: models.KindLease},
		{MAC: "00:00:00:00:00:04", Kind: models.KindStatic, Tag: tagPtr("")},
		{MAC: "00:00:00:00:00:05", Kind: models.KindLease, Tag: tagPtr("ghost")},
	}
	tags := []models.Tag{{Name: "iot"}, {Name: "guests"}}

	view := New(nil, time.UTC).Reconcile(Snapshot{Devices: devices, Tags: tags})

	assert.Equal(t, 3, view.Online)
	assert.Equal(t, 2, view.Offline)
	assert.Equal(t, len(devices), view.Online+view.Offline)

	counts := map[string]int{}
	total := 0
	for _, tv := range view.Tags {
		counts[tv.Name] = tv.Devices
		total += tv.Devices
	}
	assert.Equal(t, 2, counts[models.DefaultTag])
	assert.Equal(t, 2, counts["iot"])
	assert.Equal(t, 0, counts["guests"])
	assert.Equal(t, 1, view.Unassigned)
	assert.Equal(t, len(devices), total+view.Unassigned)
}

func TestReconcileRepeatedTagNameCountedOnce(t *testing.T) {
	view := New(nil, time.UTC).Reconcile(Snapshot{
		Devices: []models.Device{{MAC: "00:00:00:00:00:01", Tag: tagPtr("iot")}},
		Tags:    []models.Tag{{Name: "iot"}, {Name: "iot"}},
	})

	require.Len(t, view.Tags, 2)
	total := 0
	for _, tv := range view.Tags {
		total += tv.Devices
	}
	assert.Equal(t, 1, total)
	assert.Zero(t, view.Unassigned)
	assert.Equal(t, []string{"default", "iot"}, view.TagOptions)
}

func TestReconcileTagOrderAndOverrides(t *testing.T) {
	view := New(nil, time.UTC).Reconcile(Snapshot{
		Tags: []models.Tag{
			{Name: "iot", Gateway: models.StringPtr("10.0.0.1")},
			{Name: "guests"},
		},
	})

	require.Len(t, view.Tags, 3)
	assert.Equal(t, []string{"default", "iot", "guests"},
		[]string{view.Tags[0].Name, view.Tags[1].Name, view.Tags[2].Name})
	assert.Equal(t, "10.0.0.1", view.Tags[1].Gateway)
	assert.Equal(t, models.NotSet, view.Tags[1].DNS)
	assert.Equal(t, models.NotSet, view.Tags[2].Gateway)
}

func TestReconcileLeaseJoin(t *testing.T) {
	view := New(nil, time.UTC).Reconcile(Snapshot{
		Devices: []models.Device{
			{MAC: "aa:bb:cc:00:00:01", Tag: tagPtr("iot")},
			{MAC: "AA:BB:CC:00:00:01", Tag: tagPtr("guests")},
		},
		Leases: []models.Lease{
			{MAC: "AA:BB:CC:00:00:01", Timestamp: "0"},
			{MAC: "11:22:33:44:55:66", Timestamp: "garbage"},
		},
	})

	require.Len(t, view.Leases, 2)
	assert.Equal(t, "iot", view.Leases[0].Tag)
	assert.True(t, view.Leases[0].Static)
	assert.Equal(t, StaticLeaseTime, view.Leases[0].LeaseTime)

	assert.Equal(t, models.DefaultTag, view.Leases[1].Tag)
	assert.Equal(t, UnknownLeaseTime, view.Leases[1].LeaseTime)
}

func TestReconcileEmptySnapshot(t *testing.T) {
	view := New(nil, nil).Reconcile(Snapshot{})
	assert.NotNil(t, view.Devices)
	assert.NotNil(t, view.Leases)
	assert.Len(t, view.Tags, 1)
	assert.Zero(t, view.Unassigned)
}

func TestReconcilePicksUpCatalogueChanges(t *testing.T) {
	store := catalog.NewStore(nil)
	r := New(store.Current, time.UTC)
	snap := Snapshot{Devices: []models.Device{{MAC: "aa:bb:cc:dd:ee:ff", Name: "MyPhone"}}}

	assert.Equal(t, classify.UnknownCategory, r.Reconcile(snap).Devices[0].Category)

	store.Replace(phoneCatalogue())
	assert.Equal(t, "phone", r.Reconcile(snap).Devices[0].Category)
}

func TestTagForMACAndCountWithTag(t *testing.T) {
	devices := []models.Device{
		{MAC: "aa:bb:cc:00:00:01", Tag: tagPtr("iot")},
		{MAC: "aa:bb:cc:00:00:02"},
	}

	assert.Equal(t, "iot", TagForMAC(devices, "AA:BB:CC:00:00:01"))
	assert.Equal(t, models.DefaultTag, TagForMAC(devices, "aa:bb:cc:00:00:02"))
	assert.Equal(t, models.DefaultTag, TagForMAC(devices, "ff:ff:ff:ff:ff:ff"))

	assert.Equal(t, 1, CountWithTag(devices, "iot"))
	assert.Equal(t, 1, CountWithTag(devices, models.DefaultTag))
	assert.Equal(t, 0, CountWithTag(devices, "guests"))
}

func TestFormatLeaseTime(t *testing.T) {
	assert.Equal(t, StaticLeaseTime, FormatLeaseTime("0", time.UTC))
	assert.Equal(t, "1970-01-01 00:00:01", FormatLeaseTime("1", time.UTC))
	assert.Equal(t, UnknownLeaseTime, FormatLeaseTime("", time.UTC))
	assert.Equal(t, UnknownLeaseTime, FormatLeaseTime("yesterday", time.UTC))

	tokyo := time.FixedZone("JST", 9*60*60)
	assert.Equal(t, "1970-01-01 10:00:00", FormatLeaseTime("3600", tokyo))
}

func TestFilter(t *testing.T) {
	devices := []DeviceView{
		{Name: "Kitchen TV", MAC: "aa:bb:cc:00:00:01", IP: "192.168.1.20", Kind: models.KindLease},
		{Name: "NAS", MAC: "aa:bb:cc:00:00:02", IP: "192.168.1.5", Kind: models.KindStatic},
	}

	assert.Len(t, Filter(devices, "", ""), 2)
	assert.Len(t, Filter(devices, "kitchen", ""), 1)
	assert.Len(t, Filter(devices, "00:02", ""), 1)
	assert.Len(t, Filter(devices, "192.168.1.", models.KindStatic), 1)
	assert.Empty(t, Filter(devices, "printer", ""))
	assert.NotNil(t, Filter(nil, "x", ""))
}

func TestDeviceViewMarksPrivateMAC(t *testing.T) {
	view := New(nil, time.UTC).Reconcile(Snapshot{Devices: []models.Device{
		{MAC: "02:00:00:00:00:01", IP: "192.168.1.2"},
		{MAC: "00:00:00:00:00:01"},
	}})
	assert.True(t, view.Devices[0].Private)
	assert.False(t, view.Devices[1].Private)
	assert.NotZero(t, view.Devices[0].IPSort)
}

func TestViewJSONKeys(t *testing.T) {
	view := New(nil, time.UTC).Reconcile(Snapshot{Devices: []models.Device{
		{MAC: "02:00:00:00:00:01", Tag: tagPtr("gone")},
	}})

	data, err := json.Marshal(view)
	require.NoError(t, err)

	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.JSONEq(t, `1`, string(decoded["unassigned"]))
	assert.JSONEq(t, `["default"]`, string(decoded["tagOptions"]))

	var devices []map[string]any
	require.NoError(t, json.Unmarshal(decoded["devices"], &devices))
	require.Len(t, devices, 1)
	assert.Equal(t, true, devices[0]["private"])
}
