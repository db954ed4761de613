// Package tags holds the rules of the tag catalogue: name validation, the
// reserved built-in tag, effective-tag resolution, and the create/delete
// operations that delegate to the backend.
package tags

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"

	"dhcpconsole/pkg/models"
)

var namePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{2,32}$`)

const (
	invalidNameMessage  = "Invalid tag name. Use 2-32 characters (letters, numbers, underscore, hyphen only)"
	reservedNameMessage = `The "default" tag is built-in and cannot be created, edited or deleted`
	missingNameMessage  = "Tag name is required"

	// DefaultDescription describes the built-in tag
	DefaultDescription = "Default DHCP settings"
)

// IsReserved reports whether name is the built-in tag
func IsReserved(name string) bool {
	return name == models.DefaultTag
}

// ValidateName checks a tag name for create or delete. Reserved and
// malformed names fail with distinct errors.
func ValidateName(name string) error {
	switch {
	case name == "":
		return &models.ValidationError{Field: "name", Message: missingNameMessage, Err: models.ErrMissingField}
	case IsReserved(name):
		return &models.ValidationError{Field: "name", Value: name, Message: reservedNameMessage, Err: models.ErrReservedName}
	case !namePattern.MatchString(name):
		return &models.ValidationError{Field: "name", Value: name, Message: invalidNameMessage, Err: models.ErrInvalidName}
	}
	return nil
}

// EffectiveTag resolves a device's raw tag, treating absent or blank as default
func EffectiveTag(tag *string) string {
	if tag == nil {
		return models.DefaultTag
	}
	if t := strings.TrimSpace(*tag); t != "" {
		return t
	}
	return models.DefaultTag
}

// Builtin returns the synthesized default tag
func Builtin() models.Tag {
	return models.Tag{Name: models.DefaultTag, Description: DefaultDescription}
}

// WithDefault returns the full catalogue: the built-in tag first, then the
// custom tags in backend order. A custom entry named like the built-in, or
// repeating an earlier name, is dropped.
func WithDefault(custom []models.Tag) []models.Tag {
	all := make([]models.Tag, 0, len(custom)+1)
	all = append(all, Builtin())
	seen := map[string]bool{models.DefaultTag: true}
	for _, tag := range custom {
		if seen[tag.Name] {
			continue
		}
		seen[tag.Name] = true
		all = append(all, tag)
	}
	return all
}

// Options returns the tag names an operator can assign
func Options(custom []models.Tag) []string {
	all := WithDefault(custom)
	names := make([]string, len(all))
	for i, tag := range all {
		names[i] = tag.Name
	}
	return names
}

// Exists reports whether name is the built-in tag or one of custom
func Exists(custom []models.Tag, name string) bool {
	if IsReserved(name) {
		return true
	}
	for _, tag := range custom {
		if tag.Name == name {
			return true
		}
	}
	return false
}

// Backend is the part of the backend contract the store mutates through
type Backend interface {
	CreateTag(ctx context.Context, tag models.Tag) error
	DeleteTag(ctx context.Context, name string) error
}

// Input is an operator's create-tag form
type Input struct {
	Name        string `json:"name"`
	Gateway     string `json:"gateway"`
	DNS         string `json:"dns"`
	Description string `json:"description"`
}

// Tag trims the input, validates the name and converts it to a tag.
// Gateway and DNS are free override strings; blank means inherit.
func (in Input) Tag() (models.Tag, error) {
	tag := models.Tag{
		Name:        strings.TrimSpace(in.Name),
		Gateway:     models.StringPtr(strings.TrimSpace(in.Gateway)),
		DNS:         models.StringPtr(strings.TrimSpace(in.DNS)),
		Description: strings.TrimSpace(in.Description),
	}

	if err := ValidateName(tag.Name); err != nil {
		return models.Tag{}, err
	}
	return tag, nil
}

// Store issues tag mutations. It never changes local state: callers refresh
// their tag list after a successful call.
type Store struct {
	backend Backend
}

// NewStore creates a tag store backed by b
func NewStore(b Backend) *Store {
	return &Store{backend: b}
}

// Create validates in and asks the backend to create the tag. known is the
// last fetched custom tag list; nil skips the duplicate check.
func (s *Store) Create(ctx context.Context, in Input, known []models.Tag) (models.Tag, error) {
	tag, err := in.Tag()
	if err != nil {
		return models.Tag{}, err
	}

	if known != nil && Exists(known, tag.Name) {
		return models.Tag{}, &models.ValidationError{
			Field:   "name",
			Value:   tag.Name,
			Message: fmt.Sprintf("Tag %q already exists", tag.Name),
			Err:     models.ErrDuplicateName,
		}
	}

	if err := s.backend.CreateTag(ctx, tag); err != nil {
		return models.Tag{}, fmt.Errorf("failed to create tag %s: %w", tag.Name, err)
	}

	log.Printf("Created tag %s", tag.Name)
	return tag, nil
}

// Delete validates name and asks the backend to delete the tag. known is the
// last fetched custom tag list; nil skips the existence check.
func (s *Store) Delete(ctx context.Context, name string, known []models.Tag) error {
	name = strings.TrimSpace(name)
	if err := CheckDeletable(name, known); err != nil {
		return err
	}

	if err := s.backend.DeleteTag(ctx, name); err != nil {
		return fmt.Errorf("failed to delete tag %s: %w", name, err)
	}

	log.Printf("Deleted tag %s", name)
	return nil
}

// CheckDeletable runs the local delete checks without contacting the backend
func CheckDeletable(name string, known []models.Tag) error {
	name = strings.TrimSpace(name)
	if err := ValidateName(name); err != nil {
		return err
	}

	if known != nil && !Exists(known, name) {
		return &models.ValidationError{
			Field:   "name",
			Value:   name,
			Message: fmt.Sprintf("Tag %q does not exist", name),
			Err:     models.ErrUnknownTag,
		}
	}
	return nil
}
