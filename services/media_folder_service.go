package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"mediafolder/metrics"
	"mediafolder/models"
	"mediafolder/store"
	"mediafolder/utils"
)

// CreateFolderInput describes a folder to create. Empty ID means generate one.
type CreateFolderInput struct {
	ID                     string
	Name                   string
	ParentID               *string
	UseParentConfiguration bool
	Configuration          *ConfigurationInput
}

// ConfigurationInput overrides the default configuration of a new folder.
// Nil fields keep their defaults.
type ConfigurationInput struct {
	ID               string
	CreateThumbnails *bool
	KeepAspectRatio  *bool
	ThumbnailQuality *int
}

type MediaFolderService struct {
	store  store.Store
	clock  clockwork.Clock
	logger *slog.Logger
}

func NewMediaFolderService(s store.Store, clock clockwork.Clock) *MediaFolderService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &MediaFolderService{
		store:  s,
		clock:  clock,
		logger: slog.Default().With("component", "media_folder_service"),
	}
}

func (s *MediaFolderService) now() time.Time {
	return s.clock.Now().UTC()
}

// Create stores a new folder. A folder that inherits from an existing parent
// shares the parent's configuration; any other folder gets its own.
func (s *MediaFolderService) Create(ctx context.Context, in CreateFolderInput) (folder *models.Folder, err error) {
	defer s.observe("create", time.Now(), &err)

	if in.ID == "" {
		in.ID = models.NewID()
	} else if !models.IsValidID(in.ID) {
		return nil, InvalidID(in.ID)
	}
	if in.ParentID != nil && !models.IsValidID(*in.ParentID) {
		return nil, FolderNotFound(*in.ParentID)
	}
	if err := utils.ValidateFolderName(in.Name); err != nil {
		return nil, InvalidName(err)
	}

	cfg, err := buildConfiguration(in.Configuration)
	if err != nil {
		return nil, err
	}

	err = s.store.Transaction(ctx, func(ctx context.Context) error {
		now := s.now()

		var parent *models.Folder
		if in.ParentID != nil {
			p, err := s.store.GetFolder(ctx, *in.ParentID)
			if errors.Is(err, store.ErrNotFound) {
				return FolderNotFound(*in.ParentID)
			}
			if err != nil {
				return fmt.Errorf("failed to load parent folder: %w", err)
			}
			parent = p
		}

		if _, err := s.store.GetFolder(ctx, in.ID); err == nil {
			return DuplicateID(in.ID)
		} else if !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("failed to check folder id: %w", err)
		}

		folder = &models.Folder{
			ID:                     in.ID,
			Name:                   in.Name,
			ParentID:               in.ParentID,
			UseParentConfiguration: in.UseParentConfiguration && parent != nil,
			CreatedAt:              now,
		}

		if folder.UseParentConfiguration {
			folder.ConfigurationID = parent.ConfigurationID
		} else {
			if _, err := s.store.GetConfiguration(ctx, cfg.ID); err == nil {
				return DuplicateID(cfg.ID)
			} else if !errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("failed to check configuration id: %w", err)
			}

			cfg.CreatedAt = now
			if err := s.store.PutConfiguration(ctx, cfg); err != nil {
				return fmt.Errorf("failed to store configuration: %w", err)
			}
			folder.ConfigurationID = cfg.ID
		}

		if err := s.store.PutFolder(ctx, folder); err != nil {
			if errors.Is(err, store.ErrConflict) {
				return DuplicateID(in.ID)
			}
			return fmt.Errorf("failed to store folder: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "media folder created",
		"folder_id", folder.ID,
		"configuration_id", folder.ConfigurationID,
		"inherits_configuration", folder.UseParentConfiguration)

	return folder, nil
}

func buildConfiguration(in *ConfigurationInput) (*models.FolderConfiguration, error) {
	cfg := models.DefaultFolderConfiguration()
	cfg.ID = models.NewID()
	if in == nil {
		return &cfg, nil
	}

	if in.ID != "" {
		if !models.IsValidID(in.ID) {
			return nil, InvalidID(in.ID)
		}
		cfg.ID = in.ID
	}
	if in.CreateThumbnails != nil {
		cfg.CreateThumbnails = *in.CreateThumbnails
	}
	if in.KeepAspectRatio != nil {
		cfg.KeepAspectRatio = *in.KeepAspectRatio
	}
	if in.ThumbnailQuality != nil {
		if err := utils.ValidateThumbnailQuality(*in.ThumbnailQuality, models.MaxThumbnailQuality); err != nil {
			return nil, InvalidQuality(err)
		}
		cfg.ThumbnailQuality = *in.ThumbnailQuality
	}

	return &cfg, nil
}

func (s *MediaFolderService) Get(ctx context.Context, id string) (*models.Folder, error) {
	if !models.IsValidID(id) {
		return nil, FolderNotFound(id)
	}

	folder, err := s.store.GetFolder(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, FolderNotFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load folder: %w", err)
	}
	return folder, nil
}

func (s *MediaFolderService) GetConfiguration(ctx context.Context, id string) (*models.FolderConfiguration, error) {
	if !models.IsValidID(id) {
		return nil, ConfigurationNotFound(id)
	}

	cfg, err := s.store.GetConfiguration(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ConfigurationNotFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// GetFolderConfiguration returns the configuration in effect for a folder.
// Inheriting folders resolve through their current ancestors, so a folder
// moved under a new parent reports that parent's configuration. A root
// folder always uses its stored configuration.
func (s *MediaFolderService) GetFolderConfiguration(ctx context.Context, folderID string) (*models.FolderConfiguration, error) {
	folder, err := s.Get(ctx, folderID)
	if err != nil {
		return nil, err
	}

	configurationID, err := s.resolveConfigurationID(ctx, folder)
	if err != nil {
		return nil, err
	}
	return s.GetConfiguration(ctx, configurationID)
}

// resolveConfigurationID walks up from folder while it inherits and returns
// the configuration id of the first folder that does not.
func (s *MediaFolderService) resolveConfigurationID(ctx context.Context, folder *models.Folder) (string, error) {
	seen := map[string]struct{}{folder.ID: {}}

	for folder.InheritsConfiguration() {
		parent, err := s.store.GetFolder(ctx, *folder.ParentID)
		if err != nil {
			return "", fmt.Errorf("failed to load parent folder %s: %w", *folder.ParentID, err)
		}
		if _, ok := seen[parent.ID]; ok {
			return "", fmt.Errorf("folder hierarchy contains a cycle at %s", parent.ID)
		}
		seen[parent.ID] = struct{}{}
		folder = parent
	}
	return folder.ConfigurationID, nil
}

// ListChildren returns the direct children of parentID, or the root folders
// when parentID is nil.
func (s *MediaFolderService) ListChildren(ctx context.Context, parentID *string) ([]models.Folder, error) {
	if parentID != nil {
		if _, err := s.Get(ctx, *parentID); err != nil {
			return nil, err
		}
	}

	folders, err := s.store.ListChildFolders(ctx, parentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list folders: %w", err)
	}
	return folders, nil
}

// Dissolve deletes a folder. Its children move up to the folder's parent and
// its configuration is deleted once nothing references it any more.
// Reparenting children is a chosen policy; deleting a folder with children
// could equally have been rejected.
func (s *MediaFolderService) Dissolve(ctx context.Context, id string) (err error) {
	defer s.observe("dissolve", time.Now(), &err)

	if !models.IsValidID(id) {
		return FolderNotFound(id)
	}

	var (
		reparented    int
		configDeleted bool
	)

	err = s.store.Transaction(ctx, func(ctx context.Context) error {
		reparented, configDeleted = 0, false
		now := s.now()

		folder, err := s.store.GetFolder(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			return FolderNotFound(id)
		}
		if err != nil {
			return fmt.Errorf("failed to load folder: %w", err)
		}

		var newParent *models.Folder
		if !folder.IsRoot() {
			newParent, err = s.store.GetFolder(ctx, *folder.ParentID)
			if err != nil {
				return fmt.Errorf("failed to load parent folder: %w", err)
			}
		}

		// Inheriting children keep the configuration they see today when
		// they become root, and take the new parent's otherwise.
		adopt := folder
		if newParent != nil {
			adopt = newParent
		}
		adoptedID, err := s.resolveConfigurationID(ctx, adopt)
		if err != nil {
			return err
		}

		children, err := s.store.ListChildFolders(ctx, &folder.ID)
		if err != nil {
			return fmt.Errorf("failed to list child folders: %w", err)
		}

		for i := range children {
			child := &children[i]
			inherits := child.InheritsConfiguration()
			child.ParentID = folder.ParentID
			child.UpdatedAt = &now

			if inherits {
				if newParent == nil {
					// Root folders own their configuration.
					child.UseParentConfiguration = false
				}
				if child.ConfigurationID != adoptedID {
					old := child.ConfigurationID
					child.ConfigurationID = adoptedID
					if err := s.propagateConfiguration(ctx, child.ID, old, adoptedID, now); err != nil {
						return err
					}
				}
			}

			if err := s.store.PutFolder(ctx, child); err != nil {
				return fmt.Errorf("failed to reparent folder %s: %w", child.ID, err)
			}
			reparented++
		}

		if err := s.store.DeleteFolder(ctx, folder.ID); err != nil {
			return fmt.Errorf("failed to delete folder: %w", err)
		}

		refs, err := s.store.CountFoldersByConfiguration(ctx, folder.ConfigurationID)
		if err != nil {
			return fmt.Errorf("failed to count configuration references: %w", err)
		}
		if refs == 0 {
			err := s.store.DeleteConfiguration(ctx, folder.ConfigurationID)
			if err != nil && !errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("failed to delete configuration: %w", err)
			}
			configDeleted = err == nil
		}

		return nil
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "media folder dissolved",
		"folder_id", id,
		"reparented_children", reparented,
		"configuration_deleted", configDeleted)

	return nil
}

// propagateConfiguration points every inheriting descendant of folderID that
// still uses from at the configuration to.
func (s *MediaFolderService) propagateConfiguration(ctx context.Context, folderID, from, to string, now time.Time) error {
	children, err := s.store.ListChildFolders(ctx, &folderID)
	if err != nil {
		return fmt.Errorf("failed to list child folders: %w", err)
	}

	for i := range children {
		child := &children[i]
		if !child.UseParentConfiguration || child.ConfigurationID != from {
			continue
		}

		child.ConfigurationID = to
		child.UpdatedAt = &now
		if err := s.store.PutFolder(ctx, child); err != nil {
			return fmt.Errorf("failed to update folder %s: %w", child.ID, err)
		}
		if err := s.propagateConfiguration(ctx, child.ID, from, to, now); err != nil {
			return err
		}
	}
	return nil
}

// Move sets the parent of a folder. A nil targetParentID moves it to root.
// The moved folder is checked before the target. Only the parent changes; an
// inheriting folder picks up its new parent's configuration through
// GetFolderConfiguration.
func (s *MediaFolderService) Move(ctx context.Context, id string, targetParentID *string) (err error) {
	defer s.observe("move", time.Now(), &err)

	if !models.IsValidID(id) {
		return FolderNotFound(id)
	}

	err = s.store.Transaction(ctx, func(ctx context.Context) error {
		folder, err := s.store.GetFolder(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			return FolderNotFound(id)
		}
		if err != nil {
			return fmt.Errorf("failed to load folder: %w", err)
		}

		if targetParentID != nil {
			if _, err := s.store.GetFolder(ctx, *targetParentID); errors.Is(err, store.ErrNotFound) {
				return FolderNotFound(*targetParentID)
			} else if err != nil {
				return fmt.Errorf("failed to load target folder: %w", err)
			}

			if err := s.checkNotDescendant(ctx, id, *targetParentID); err != nil {
				return err
			}
		}

		now := s.now()
		folder.ParentID = targetParentID
		folder.UpdatedAt = &now

		if err := s.store.PutFolder(ctx, folder); err != nil {
			return fmt.Errorf("failed to update folder: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	target := "root"
	if targetParentID != nil {
		target = *targetParentID
	}
	s.logger.InfoContext(ctx, "media folder moved", "folder_id", id, "target_parent_id", target)

	return nil
}

// checkNotDescendant walks up from targetID and fails if it meets folderID.
func (s *MediaFolderService) checkNotDescendant(ctx context.Context, folderID, targetID string) error {
	seen := make(map[string]struct{})
	current := &targetID

	for current != nil {
		if *current == folderID {
			return InvalidMove(folderID, targetID)
		}
		if _, ok := seen[*current]; ok {
			return fmt.Errorf("folder hierarchy contains a cycle at %s", *current)
		}
		seen[*current] = struct{}{}

		folder, err := s.store.GetFolder(ctx, *current)
		if err != nil {
			return fmt.Errorf("failed to load ancestor folder: %w", err)
		}
		current = folder.ParentID
	}
	return nil
}

func (s *MediaFolderService) observe(action string, started time.Time, err *error) {
	result := metrics.ResultSuccess
	if *err != nil {
		var domainErr *Error
		switch {
		case errors.Is(*err, ErrFolderNotFound), errors.Is(*err, ErrConfigurationNotFound):
			result = metrics.ResultNotFound
		case errors.As(*err, &domainErr):
			result = metrics.ResultRejected
		default:
			result = metrics.ResultError
		}
	}
	metrics.ObserveFolderAction(action, result, started)
}
