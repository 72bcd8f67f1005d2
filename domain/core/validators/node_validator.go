package validators

import (
	"fmt"
	"strings"

	"isometry-backend/domain/config"
	"isometry-backend/domain/core/entities"
	pkgerrors "isometry-backend/pkg/errors"
)

// NodeValidator enforces the domain rules that go beyond the entity's
// own structural checks: length bounds, tag limits and folder shape.
type NodeValidator struct {
	cfg *config.DomainConfig
}

// NewNodeValidator creates a validator with the default rules
func NewNodeValidator() *NodeValidator {
	return &NodeValidator{cfg: config.DefaultDomainConfig()}
}

// NewNodeValidatorWithConfig creates a validator with custom rules
func NewNodeValidatorWithConfig(cfg *config.DomainConfig) *NodeValidator {
	return &NodeValidator{cfg: cfg}
}

// Validate runs every rule against the node and returns the first
// violation as a VALIDATION error.
func (v *NodeValidator) Validate(node *entities.Node) error {
	if err := v.validateName(node.Name); err != nil {
		return err
	}
	if err := v.validateContent(node.Content); err != nil {
		return err
	}
	if err := v.validateTags(node.Tags); err != nil {
		return err
	}
	return v.validateFolder(node.Folder)
}

func (v *NodeValidator) validateName(name string) error {
	name = strings.TrimSpace(name)
	if len(name) < v.cfg.MinNameLength {
		return pkgerrors.NewValidationError("name cannot be empty")
	}
	if len(name) > v.cfg.MaxNameLength {
		return pkgerrors.NewValidationError(
			fmt.Sprintf("name exceeds %d characters", v.cfg.MaxNameLength))
	}
	return nil
}

func (v *NodeValidator) validateContent(content string) error {
	if len(content) > v.cfg.MaxContentLength {
		return pkgerrors.NewValidationError(
			fmt.Sprintf("content exceeds %d bytes", v.cfg.MaxContentLength))
	}
	return nil
}

func (v *NodeValidator) validateTags(tags []string) error {
	if len(tags) > v.cfg.MaxTagsPerNode {
		return pkgerrors.NewValidationError(
			fmt.Sprintf("at most %d tags allowed", v.cfg.MaxTagsPerNode))
	}
	for _, tag := range tags {
		trimmed := strings.TrimSpace(tag)
		if trimmed == "" {
			return pkgerrors.NewValidationError("tags cannot be blank")
		}
		if len(trimmed) > v.cfg.MaxTagLength {
			return pkgerrors.NewValidationError(
				fmt.Sprintf("tag %q exceeds %d characters", trimmed, v.cfg.MaxTagLength))
		}
		if strings.ContainsAny(trimmed, ",\n") {
			return pkgerrors.NewValidationError(
				fmt.Sprintf("tag %q contains a forbidden character", trimmed))
		}
	}
	return nil
}

// validateFolder checks the slash-separated folder path shape.
func (v *NodeValidator) validateFolder(folder string) error {
	if folder == "" {
		return nil
	}
	if strings.HasPrefix(folder, "/") || strings.HasSuffix(folder, "/") {
		return pkgerrors.NewValidationError("folder cannot start or end with a slash")
	}
	segments := strings.Split(folder, "/")
	if len(segments) > v.cfg.MaxFolderDepth {
		return pkgerrors.NewValidationError(
			fmt.Sprintf("folder deeper than %d levels", v.cfg.MaxFolderDepth))
	}
	for _, segment := range segments {
		if strings.TrimSpace(segment) == "" {
			return pkgerrors.NewValidationError("folder contains an empty segment")
		}
	}
	return nil
}
