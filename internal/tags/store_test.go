package tags

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dhcpconsole/pkg/models"
)

type recordingBackend struct {
	created []models.Tag
	deleted []string
	err     error
}

func (b *recordingBackend) CreateTag(ctx context.Context, tag models.Tag) error {
	b.created = append(b.created, tag)
	return b.err
}

func (b *recordingBackend) DeleteTag(ctx context.Context, name string) error {
	b.deleted = append(b.deleted, name)
	return b.err
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name string
		want error
	}{
		{"iot", nil},
		{"guest_net-2", nil},
		{"ab", nil},
		{"", models.ErrMissingField},
		{"default", models.ErrReservedName},
		{"a", models.ErrInvalidName},
		{"has space", models.ErrInvalidName},
		{"this-name-is-way-too-long-for-a-tag", models.ErrInvalidName},
		{"ünïcode", models.ErrInvalidName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.name)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)

			var verr *models.ValidationError
			assert.True(t, errors.As(err, &verr))
		})
	}
}

func TestReservedAndInvalidMessagesDiffer(t *testing.T) {
	reserved := ValidateName("default")
	invalid := ValidateName("x")
	assert.NotEqual(t, reserved.Error(), invalid.Error())
	assert.Equal(t, invalidNameMessage, invalid.Error())
}

func TestEffectiveTag(t *testing.T) {
	assert.Equal(t, models.DefaultTag, EffectiveTag(nil))
	assert.Equal(t, models.DefaultTag, EffectiveTag(models.StringPtr("")))

	blank := "   "
	assert.Equal(t, models.DefaultTag, EffectiveTag(&blank))
	assert.Equal(t, "iot", EffectiveTag(models.StringPtr("iot")))
}

func TestWithDefault(t *testing.T) {
	custom := []models.Tag{{Name: "iot"}, {Name: "default", Description: "shadow"}, {Name: "guests"}}
	all := WithDefault(custom)

	require.Len(t, all, 3)
	assert.Equal(t, Builtin(), all[0])
	assert.Equal(t, "iot", all[1].Name)
	assert.Equal(t, "guests", all[2].Name)

	assert.Equal(t, []string{"default", "iot", "guests"}, Options(custom))
	assert.Len(t, WithDefault(nil), 1)
}

func TestWithDefaultDropsRepeatedNames(t *testing.T) {
	all := WithDefault([]models.Tag{{Name: "iot", Description: "first"}, {Name: "iot", Description: "second"}})

	require.Len(t, all, 2)
	assert.Equal(t, "first", all[1].Description)
	assert.Equal(t, []string{"default", "iot"}, Options([]models.Tag{{Name: "iot"}, {Name: "iot"}}))
}

func TestExists(t *testing.T) {
	custom := []models.Tag{{Name: "iot"}}
	assert.True(t, Exists(custom, "iot"))
	assert.True(t, Exists(nil, "default"))
	assert.False(t, Exists(custom, "guests"))
}

func TestInputTag(t *testing.T) {
	tag, err := Input{Name: " iot ", Gateway: "192.168.1.1", DNS: "1.1.1.1, 8.8.8.8", Description: " Things "}.Tag()
	require.NoError(t, err)
	assert.Equal(t, "iot", tag.Name)
	assert.Equal(t, "192.168.1.1", models.StringValue(tag.Gateway))
	assert.Equal(t, "Things", tag.Description)

	tag, err = Input{Name: "iot"}.Tag()
	require.NoError(t, err)
	assert.Nil(t, tag.Gateway)
	assert.Nil(t, tag.DNS)

	tag, err = Input{Name: "iot", Gateway: "router.lan", DNS: "8.8.8.8 1.1.1.1"}.Tag()
	require.NoError(t, err)
	assert.Equal(t, "router.lan", models.StringValue(tag.Gateway))
	assert.Equal(t, "8.8.8.8 1.1.1.1", models.StringValue(tag.DNS))
}

func TestCreatePassesOverridesThrough(t *testing.T) {
	backend := &recordingBackend{}
	store := NewStore(backend)

	_, err := store.Create(context.Background(), Input{Name: "iot", Gateway: "router.lan", DNS: "8.8.8.8 1.1.1.1"}, nil)
	require.NoError(t, err)
	require.Len(t, backend.created, 1)
	assert.Equal(t, "8.8.8.8 1.1.1.1", models.StringValue(backend.created[0].DNS))
}

func TestCreateRejectsReservedWithoutRequest(t *testing.T) {
	backend := &recordingBackend{}
	store := NewStore(backend)

	_, err := store.Create(context.Background(), Input{Name: "default"}, nil)
	assert.ErrorIs(t, err, models.ErrReservedName)
	assert.Empty(t, backend.created)
}

func TestCreateRejectsDuplicate(t *testing.T) {
	backend := &recordingBackend{}
	store := NewStore(backend)

	_, err := store.Create(context.Background(), Input{Name: "iot"}, []models.Tag{{Name: "iot"}})
	assert.ErrorIs(t, err, models.ErrDuplicateName)
	assert.Empty(t, backend.created)
}

func TestCreate(t *testing.T) {
	backend := &recordingBackend{}
	store := NewStore(backend)

	tag, err := store.Create(context.Background(), Input{Name: "iot", Gateway: "10.0.0.1"}, nil)
	require.NoError(t, err)
	require.Len(t, backend.created, 1)
	assert.Equal(t, tag, backend.created[0])
}

func TestCreateBackendFailure(t *testing.T) {
	failure := &models.RequestError{Endpoint: "create_tag", Message: "Tag exists"}
	store := NewStore(&recordingBackend{err: failure})

	_, err := store.Create(context.Background(), Input{Name: "iot"}, nil)
	var rerr *models.RequestError
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, "Tag exists", rerr.Message)
}

func TestDelete(t *testing.T) {
	backend := &recordingBackend{}
	store := NewStore(backend)

	require.NoError(t, store.Delete(context.Background(), " iot ", []models.Tag{{Name: "iot"}}))
	assert.Equal(t, []string{"iot"}, backend.deleted)

	err := store.Delete(context.Background(), "default", nil)
	assert.ErrorIs(t, err, models.ErrReservedName)

	err = store.Delete(context.Background(), "guests", []models.Tag{{Name: "iot"}})
	assert.ErrorIs(t, err, models.ErrUnknownTag)
	assert.Len(t, backend.deleted, 1)
}
