package models

import "time"

// Folder is a node of the media folder tree. A nil ParentID means root level.
type Folder struct {
	ID                     string     `bson:"_id" json:"id"`
	Name                   string     `bson:"name" json:"name"`
	ParentID               *string    `bson:"parent_id" json:"parentId"`
	UseParentConfiguration bool       `bson:"use_parent_configuration" json:"useParentConfiguration"`
	ConfigurationID        string     `bson:"configuration_id" json:"configurationId"`
	CreatedAt              time.Time  `bson:"created_at" json:"createdAt"`
	UpdatedAt              *time.Time `bson:"updated_at,omitempty" json:"updatedAt,omitempty"`
}

// IsRoot reports whether the folder has no parent.
func (f *Folder) IsRoot() bool {
	return f.ParentID == nil
}

// InheritsConfiguration reports whether the folder's configuration comes from its parent.
func (f *Folder) InheritsConfiguration() bool {
	return f.UseParentConfiguration && f.ParentID != nil
}
