package formset

import "errors"

var (
	// ErrNilRoot is returned by New when no root node is supplied.
	ErrNilRoot = errors.New("formset: root node is nil")
	// ErrNotGroup is returned when a node is not a repeatable group.
	ErrNotGroup = errors.New("formset: node is not a group")
	// ErrNotEntry is returned when an entry does not belong to the group.
	ErrNotEntry = errors.New("formset: node is not an entry of the group")
	// ErrGroupNotFound is returned by Group and Locate.
	ErrGroupNotFound = errors.New("formset: group not found")
	// ErrEntryNotFound is returned by Locate for an out of range position.
	ErrEntryNotFound = errors.New("formset: entry not found")
	// ErrTemplateNotFound is returned when no template selector or markup is
	// available for a group.
	ErrTemplateNotFound = errors.New("formset: template not found")
	// ErrEmptyTemplate is returned when template markup holds no element.
	ErrEmptyTemplate = errors.New("formset: template is empty")
	// ErrMaxEntries is returned when a group already holds its maximum number
	// of entries. The tree is left unchanged.
	ErrMaxEntries = errors.New("formset: maximum number of entries reached")
	// ErrConfirmationRequired is returned when a group asks for confirmation
	// but no Confirmer is configured.
	ErrConfirmationRequired = errors.New("formset: confirmation required but no confirmer configured")
)
