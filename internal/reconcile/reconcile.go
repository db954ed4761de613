// Package reconcile projects the raw device, tag and lease collections into
// the view shown to operators. Nothing here is cached: every call recomputes
// the view from its inputs.
package reconcile

import (
	"strconv"
	"strings"
	"time"

	"dhcpconsole/internal/catalog"
	"dhcpconsole/internal/classify"
	"dhcpconsole/internal/tags"
	"dhcpconsole/pkg/models"
	"dhcpconsole/pkg/utils"
)

const (
	// StaticLeaseTime is shown for leases that never expire
	StaticLeaseTime = "Static"
	// UnknownLeaseTime is shown for timestamps that are not epoch seconds
	UnknownLeaseTime = "Unknown"
	// AutoOverride is shown for the built-in tag's gateway and DNS
	AutoOverride = "Auto"

	leaseTimeLayout = "2006-01-02 15:04:05"
)

// Snapshot is one consistent copy of the raw collections
type Snapshot struct {
	Stats   models.Stats    `json:"stats"`
	Devices []models.Device `json:"devices"`
	Tags    []models.Tag    `json:"tags"`
	Leases  []models.Lease  `json:"leases"`
}

// DeviceView is a device with its derived facts
type DeviceView struct {
	MAC      string            `json:"mac"`
	Name     string            `json:"name"`
	IP       string            `json:"ip"`
	IPSort   uint32            `json:"ipSort"`
	Kind     models.SourceKind `json:"type"`
	Icon     string            `json:"icon"`
	Category string            `json:"category"`
	Tag      string            `json:"tag"`
	Online   bool              `json:"online"`
	Private  bool              `json:"private"` // locally administered address
}

// TagView is a tag with its live device count
type TagView struct {
	Name        string `json:"name"`
	Gateway     string `json:"gateway"`
	DNS         string `json:"dns"`
	Description string `json:"description"`
	BuiltIn     bool   `json:"builtin"`
	Devices     int    `json:"devices"`
}

// LeaseView is a lease joined with its device's effective tag
type LeaseView struct {
	Hostname  string `json:"hostname"`
	IP        string `json:"ip"`
	IPSort    uint32 `json:"ipSort"`
	MAC       string `json:"mac"`
	LeaseTime string `json:"leaseTime"`
	Static    bool   `json:"static"`
	Tag       string `json:"tag"`
}

// View is the reconciled projection of a snapshot
type View struct {
	Stats      models.Stats `json:"stats"`
	Devices    []DeviceView `json:"devices"`
	Tags       []TagView    `json:"tags"`
	Leases     []LeaseView  `json:"leases"`
	TagOptions []string     `json:"tagOptions"` // names an operator can assign
	Online     int          `json:"online"`
	Offline    int          `json:"offline"`
	// Unassigned counts devices whose tag is missing from the catalogue
	Unassigned int `json:"unassigned"`
}

// Reconciler builds views using the current device catalogue
type Reconciler struct {
	catalogue func() *catalog.Catalogue
	loc       *time.Location
}

// New creates a reconciler. catalogue is consulted on every call so a
// reloaded catalogue takes effect immediately; loc renders lease times.
func New(catalogue func() *catalog.Catalogue, loc *time.Location) *Reconciler {
	if catalogue == nil {
		catalogue = catalog.Empty
	}
	if loc == nil {
		loc = time.Local
	}
	return &Reconciler{catalogue: catalogue, loc: loc}
}

// Reconcile merges the snapshot into a view
func (r *Reconciler) Reconcile(s Snapshot) View {
	cat := r.catalogue()

	view := View{
		Stats:   s.Stats,
		Devices: make([]DeviceView, 0, len(s.Devices)),
		Tags:    make([]TagView, 0, len(s.Tags)+1),
		Leases:  make([]LeaseView, 0, len(s.Leases)),
	}

	for _, device := range s.Devices {
		dv := r.device(cat, device)
		if dv.Online {
			view.Online++
		} else {
			view.Offline++
		}
		view.Devices = append(view.Devices, dv)
	}

	counted := 0
	for _, tag := range tags.WithDefault(s.Tags) {
		tv := tagView(tag)
		tv.Devices = CountWithTag(s.Devices, tag.Name)
		counted += tv.Devices
		view.Tags = append(view.Tags, tv)
	}
	view.Unassigned = len(s.Devices) - counted
	view.TagOptions = tags.Options(s.Tags)

	for _, lease := range s.Leases {
		view.Leases = append(view.Leases, r.lease(lease, s.Devices))
	}

	return view
}

func (r *Reconciler) device(cat *catalog.Catalogue, d models.Device) DeviceView {
	guess := classify.Classify(cat, d.Name, d.MAC)
	return DeviceView{
		MAC:      d.MAC,
		Name:     d.Name,
		IP:       d.IP,
		IPSort:   utils.IPToInt(d.IP),
		Kind:     d.Kind,
		Icon:     guess.Icon,
		Category: guess.Category,
		Tag:      tags.EffectiveTag(d.Tag),
		Online:   d.Online(),
		Private:  utils.IsPrivateMAC(d.MAC),
	}
}

func tagView(tag models.Tag) TagView {
	if tags.IsReserved(tag.Name) {
		return TagView{
			Name:        tag.Name,
			Gateway:     AutoOverride,
			DNS:         AutoOverride,
			Description: tag.Description,
			BuiltIn:     true,
		}
	}
	return TagView{
		Name:        tag.Name,
		Gateway:     tag.GatewayDisplay(),
		DNS:         tag.DNSDisplay(),
		Description: tag.Description,
	}
}

func (r *Reconciler) lease(l models.Lease, devices []models.Device) LeaseView {
	return LeaseView{
		Hostname:  l.Hostname,
		IP:        l.IP,
		IPSort:    utils.IPToInt(l.IP),
		MAC:       l.MAC,
		LeaseTime: FormatLeaseTime(l.Timestamp, r.loc),
		Static:    l.Static(),
		Tag:       TagForMAC(devices, l.MAC),
	}
}

// TagForMAC returns the effective tag of the device with the given hardware
// address, or default when no device is known for it. The first device
// listed for an address wins.
func TagForMAC(devices []models.Device, mac string) string {
	for _, d := range devices {
		if utils.SameMAC(d.MAC, mac) {
			return tags.EffectiveTag(d.Tag)
		}
	}
	return models.DefaultTag
}

// CountWithTag counts devices whose effective tag is name
func CountWithTag(devices []models.Device, name string) int {
	n := 0
	for _, d := range devices {
		if tags.EffectiveTag(d.Tag) == name {
			n++
		}
	}
	return n
}

// FormatLeaseTime renders a lease timestamp: "0" is a static lease, other
// values are epoch seconds shown in loc.
func FormatLeaseTime(ts string, loc *time.Location) string {
	ts = strings.TrimSpace(ts)
	if ts == models.StaticTimestamp {
		return StaticLeaseTime
	}

	secs, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return UnknownLeaseTime
	}
	if loc == nil {
		loc = time.Local
	}
	return time.Unix(secs, 0).In(loc).Format(leaseTimeLayout)
}

// Filter returns the devices matching search and kind. search matches the
// name, hardware address or IP case-insensitively; an empty kind matches all.
func Filter(devices []DeviceView, search string, kind models.SourceKind) []DeviceView {
	search = strings.ToLower(strings.TrimSpace(search))

	out := make([]DeviceView, 0, len(devices))
	for _, d := range devices {
		if kind != "" && d.Kind != kind {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(d.Name), search) &&
			!strings.Contains(strings.ToLower(d.MAC), search) &&
			!strings.Contains(strings.ToLower(d.IP), search) {
			continue
		}
		out = append(out, d)
	}
	return out
}
