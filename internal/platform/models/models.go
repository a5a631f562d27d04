package models

type Organization struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CreatedAt   int64  `json:"created_at"`
	UpdatedAt   int64  `json:"updated_at"`
}

type User struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	Name         string `json:"name"`
	AvatarURL    string `json:"avatar_url,omitempty"`
	LastLoginAt  *int64 `json:"last_login_at,omitempty"`
	CreatedAt    int64  `json:"created_at"`
	UpdatedAt    int64  `json:"updated_at"`
}

type Group struct {
	ID             string `json:"id"`
	OrganizationID string `json:"organization_id"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	CreatedAt      int64  `json:"created_at"`
	UpdatedAt      int64  `json:"updated_at"`
}

type Role struct {
	ID             string `json:"id"`
	OrganizationID string `json:"organization_id"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	CreatedAt      int64  `json:"created_at"`
	UpdatedAt      int64  `json:"updated_at"`
}

type Permission struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type Room struct {
	ID                    string  `json:"id"`
	OrganizationID        string  `json:"organization_id"`
	CreatorID             string  `json:"creator_id"`
	PersonalOwnerID       *string `json:"personal_owner_id,omitempty"`
	Name                  string  `json:"name"`
	Description           string  `json:"description"`
	Logo                  string  `json:"logo,omitempty"`
	Background            string  `json:"background,omitempty"`
	MaxActiveVideos       int     `json:"max_active_videos"`
	Locked                bool    `json:"locked"`
	ChatEnabled           bool    `json:"chat_enabled"`
	RaiseHandEnabled      bool    `json:"raise_hand_enabled"`
	FilesharingEnabled    bool    `json:"filesharing_enabled"`
	LocalRecordingEnabled bool    `json:"local_recording_enabled"`
	CreatedAt             int64   `json:"created_at"`
	UpdatedAt             int64   `json:"updated_at"`
}

// OrganizationFQDN is one entry of an organization's domain allow-list,
// used to resolve the tenant from the request host. It plays no part in
// room authorization decisions.
type OrganizationFQDN struct {
	ID             string `json:"id"`
	OrganizationID string `json:"organization_id"`
	FQDN           string `json:"fqdn"`
	Description    string `json:"description"`
}

// RoomGroupRole grants a role to every member of a group, scoped to one room.
type RoomGroupRole struct {
	RoomID  string `json:"room_id"`
	GroupID string `json:"group_id"`
	RoleID  string `json:"role_id"`
}

// RoomUserRole grants a role to a single user, scoped to one room.
type RoomUserRole struct {
	RoomID string `json:"room_id"`
	UserID string `json:"user_id"`
	RoleID string `json:"role_id"`
}
