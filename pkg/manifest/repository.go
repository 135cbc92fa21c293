package manifest

import (
	"strings"

	"github.com/arthur-debert/appsync/pkg/errors"
	"github.com/arthur-debert/appsync/pkg/filesystem"
	"github.com/arthur-debert/appsync/pkg/logging"
	"github.com/arthur-debert/appsync/pkg/types"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// AddOutcome reports what AddOrUpdate did
type AddOutcome struct {
	Key         string
	Group       string
	Source      string
	Description string
	// Existed is true when the record was updated in place in the same group
	Existed bool
	// MovedFrom names the group the record was moved out of
	MovedFrom string
	// PreviousSource is the source of the record before this call, if any
	PreviousSource string
	// Changed is false when the record already matched exactly
	Changed bool
}

// Created reports whether the record is new to the manifest
func (o AddOutcome) Created() bool {
	return !o.Existed && o.MovedFrom == ""
}

// SourceChanged reports whether an existing record switched installer
func (o AddOutcome) SourceChanged() bool {
	return o.PreviousSource != "" && o.PreviousSource != o.Source
}

// RemoveOutcome reports what Remove did
type RemoveOutcome struct {
	Removed      bool
	Key          string
	Source       string
	Group        string
	GroupDeleted bool
}

// Repository loads and saves the manifest file and applies edits to a
// loaded Document.
type Repository struct {
	fs     afero.Fs
	path   string
	logger zerolog.Logger
}

// NewRepository creates a repository for the manifest at path
func NewRepository(fs afero.Fs, path string) *Repository {
	return &Repository{
		fs:     fs,
		path:   path,
		logger: logging.GetLogger("manifest"),
	}
}

// Path returns the manifest location
func (r *Repository) Path() string {
	return r.path
}

// Load reads and validates the manifest. A missing file is created empty.
func (r *Repository) Load() (*Document, error) {
	exists, err := filesystem.Exists(r.fs, r.path)
	if err != nil {
		return nil, err
	}

	if !exists {
		doc := NewDocument()
		if err := r.Save(doc); err != nil {
			return nil, err
		}
		r.logger.Warn().Str("path", r.path).Msg("Manifest not found, created an empty one")
		return doc, nil
	}

	data, err := afero.ReadFile(r.fs, r.path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot read %s", r.path)
	}

	doc, err := Parse(r.path, data)
	if err != nil {
		return nil, err
	}
	if err := validateUnique(r.path, doc); err != nil {
		return nil, err
	}

	r.logger.Debug().
		Str("path", r.path).
		Int("groups", len(doc.groups)).
		Msg("Manifest loaded")
	return doc, nil
}

// Save atomically rewrites the manifest
func (r *Repository) Save(doc *Document) error {
	if err := filesystem.WriteFileAtomic(r.fs, r.path, doc.Bytes(), 0644); err != nil {
		return err
	}
	r.logger.Debug().Str("path", r.path).Msg("Manifest saved")
	return nil
}

// ResolveGroupName trims name and returns the stored spelling of a matching
// existing group, or the trimmed name for a new group.
func (r *Repository) ResolveGroupName(doc *Document, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New(errors.ErrInvalidInput, "group name cannot be empty")
	}
	if g := doc.findGroup(name); g != nil {
		return g.name, nil
	}
	return name, nil
}

// FindApp looks up a record by key, ignoring case
func (r *Repository) FindApp(doc *Document, key string) (types.AppRecord, bool) {
	g, e := doc.find(key)
	if e == nil {
		return types.AppRecord{}, false
	}
	return g.record(e), true
}

// AddOrUpdate writes key into group, moving it out of any other group that
// holds it. Existing records keep their key spelling.
func (r *Repository) AddOrUpdate(doc *Document, key, source, groupName, description string) (AddOutcome, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return AddOutcome{}, errors.New(errors.ErrInvalidInput, "app name cannot be empty")
	}
	source = strings.TrimSpace(source)
	if source == "" {
		return AddOutcome{}, errors.New(errors.ErrInvalidInput, "source cannot be empty")
	}

	resolved, err := r.ResolveGroupName(doc, groupName)
	if err != nil {
		return AddOutcome{}, err
	}
	description = SanitizeDescription(description)

	outcome := AddOutcome{
		Key:         key,
		Group:       resolved,
		Source:      source,
		Description: description,
	}

	oldGroup, existing := doc.find(key)
	if existing != nil {
		outcome.Key = existing.key
		outcome.PreviousSource = existing.source

		if types.Fold(oldGroup.name) != types.Fold(resolved) {
			from := oldGroup.name
			if removed, _ := doc.removeEntry(oldGroup, existing.key); !removed {
				return AddOutcome{}, errors.Newf(errors.ErrInvariantViolation,
					"'%s' could not be removed from [%s] while moving it to [%s]", existing.key, from, resolved)
			}
			outcome.MovedFrom = from
		} else {
			outcome.Existed = true
		}
	}

	target := doc.ensureGroup(resolved)
	outcome.Group = target.name
	outcome.Changed = doc.upsert(target, outcome.Key, source, description) || outcome.MovedFrom != ""

	r.logger.Debug().
		Str("key", outcome.Key).
		Str("group", outcome.Group).
		Str("source", source).
		Bool("existed", outcome.Existed).
		Str("movedFrom", outcome.MovedFrom).
		Msg("Manifest record written")

	return outcome, nil
}

// Remove deletes the record for key; a group left empty is deleted too
func (r *Repository) Remove(doc *Document, key string) (RemoveOutcome, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return RemoveOutcome{}, errors.New(errors.ErrInvalidInput, "app name cannot be empty")
	}

	g, e := doc.find(key)
	if e == nil {
		return RemoveOutcome{Key: key}, nil
	}

	outcome := RemoveOutcome{Key: e.key, Source: e.source, Group: g.name}
	outcome.Removed, outcome.GroupDeleted = doc.removeEntry(g, e.key)
	return outcome, nil
}

// ListGrouped returns the records grouped in document order
func (r *Repository) ListGrouped(doc *Document) []types.Group {
	return doc.Groups()
}
