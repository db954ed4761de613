package controller

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"dhcpconsole/internal/tags"
	"dhcpconsole/pkg/models"
	"dhcpconsole/pkg/utils"
)

// Prompt is the question put to the operator before a destructive action
type Prompt struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// Confirmer decides whether a destructive action goes ahead
type Confirmer interface {
	Confirm(ctx context.Context, p Prompt) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer
type ConfirmFunc func(ctx context.Context, p Prompt) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, p Prompt) (bool, error) {
	return f(ctx, p)
}

// Answer returns a Confirmer with a decision already made, for callers that
// collected the operator's answer up front
func Answer(ok bool) Confirmer {
	return ConfirmFunc(func(context.Context, Prompt) (bool, error) {
		return ok, nil
	})
}

// ApplyTag assigns tag to the device with the given MAC, renaming it to
// name. A blank name keeps the device's current name. The device list is
// refreshed after the backend confirms.
func (c *Controller) ApplyTag(ctx context.Context, mac, tag, name string) error {
	mac = strings.TrimSpace(mac)
	tag = strings.TrimSpace(tag)
	name = strings.TrimSpace(name)

	if err := c.validateAssignment(mac, tag); err != nil {
		c.reportValidation(err)
		return err
	}

	if name == "" {
		name = c.deviceName(mac)
	}

	if err := c.backend.ApplyTag(ctx, mac, tag, name); err != nil {
		c.notify(models.LevelError, "Error applying tag: "+requestMessage(err))
		return fmt.Errorf("failed to apply tag %s to %s: %w", tag, mac, err)
	}

	c.notify(models.LevelSuccess, fmt.Sprintf("Tag %q applied to device successfully", tag))
	c.LoadDevices(ctx)
	return nil
}

func (c *Controller) validateAssignment(mac, tag string) error {
	if mac == "" {
		return &models.ValidationError{Field: "mac", Message: "MAC address is required", Err: models.ErrMissingField}
	}
	if _, err := net.ParseMAC(mac); err != nil {
		return &models.ValidationError{Field: "mac", Value: mac, Message: "Invalid MAC address format", Err: models.ErrInvalidMAC}
	}
	if tag == "" {
		return &models.ValidationError{Field: "tag", Message: "Please select a tag", Err: models.ErrMissingField}
	}
	if tags.IsReserved(tag) {
		return nil
	}
	if err := tags.ValidateName(tag); err != nil {
		return err
	}
	if known := c.knownTags(); known != nil && !tags.Exists(known, tag) {
		return &models.ValidationError{
			Field:   "tag",
			Value:   tag,
			Message: fmt.Sprintf("Tag %q does not exist", tag),
			Err:     models.ErrUnknownTag,
		}
	}
	return nil
}

// CreateTag validates and creates a custom tag, then refreshes the tag list
func (c *Controller) CreateTag(ctx context.Context, in tags.Input) (models.Tag, error) {
	tag, err := c.tagStore.Create(ctx, in, c.knownTags())
	if err != nil {
		if c.reportValidation(err) {
			return models.Tag{}, err
		}
		c.notify(models.LevelError, "Error creating tag: "+requestMessage(err))
		return models.Tag{}, err
	}

	c.notify(models.LevelSuccess, fmt.Sprintf("Tag %q created successfully", tag.Name))
	c.LoadTags(ctx)
	return tag, nil
}

// DeleteTag deletes a custom tag once confirm agrees, then refreshes the tag
// and device lists. Local checks run before the operator is asked.
func (c *Controller) DeleteTag(ctx context.Context, name string, confirm Confirmer) error {
	name = strings.TrimSpace(name)
	known := c.knownTags()

	if err := tags.CheckDeletable(name, known); err != nil {
		c.reportValidation(err)
		return err
	}

	if confirm == nil {
		return models.ErrNotConfirmed
	}

	ok, err := confirm.Confirm(ctx, Prompt{
		Title:   "Delete Tag",
		Message: fmt.Sprintf("Are you sure you want to delete the tag %q? This action cannot be undone.", name),
	})
	if err != nil {
		return fmt.Errorf("confirmation for deleting %s failed: %w", name, err)
	}
	if !ok {
		return models.ErrNotConfirmed
	}

	if err := c.tagStore.Delete(ctx, name, known); err != nil {
		if c.reportValidation(err) {
			return err
		}
		c.notify(models.LevelError, "Error deleting tag: "+requestMessage(err))
		return err
	}

	c.notify(models.LevelSuccess, fmt.Sprintf("Tag %q deleted successfully", name))
	if err := c.loadConcurrently(ctx, Tags, Devices); err != nil {
		c.notify(models.LevelError, "Error loading data: "+utils.Message(err, models.DefaultRequestError))
	}
	return nil
}

// reportValidation notifies a local validation failure as a warning
func (c *Controller) reportValidation(err error) bool {
	var verr *models.ValidationError
	if !errors.As(err, &verr) {
		return false
	}
	c.notify(models.LevelWarning, verr.Error())
	return true
}

// requestMessage extracts the backend's message without the local wrapping
func requestMessage(err error) string {
	var rerr *models.RequestError
	if errors.As(err, &rerr) {
		return rerr.Error()
	}
	return utils.Message(err, models.DefaultRequestError)
}
