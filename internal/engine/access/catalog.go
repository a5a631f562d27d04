package access

import (
	"context"
	"fmt"
	"sort"
)

// The seeded permission catalog. These names are fixed: the migration
// inserts exactly this set and the engine validates requested permissions
// against it.
const (
	PermBypassRoomLock  = "BYPASS_ROOM_LOCK"
	PermBypassLobby     = "BYPASS_LOBBY"
	PermChangeRoomLock  = "CHANGE_ROOM_LOCK"
	PermPromotePeer     = "PROMOTE_PEER"
	PermModifyRole      = "MODIFY_ROLE"
	PermSendChat        = "SEND_CHAT"
	PermModerateChat    = "MODERATE_CHAT"
	PermShareAudio      = "SHARE_AUDIO"
	PermShareVideo      = "SHARE_VIDEO"
	PermShareScreen     = "SHARE_SCREEN"
	PermShareExtraVideo = "SHARE_EXTRA_VIDEO"
	PermShareFile       = "SHARE_FILE"
	PermModerateFiles   = "MODERATE_FILES"
	PermModerateRoom    = "MODERATE_ROOM"
	PermLocalRecordRoom = "LOCAL_RECORD_ROOM"
	PermCreateRoom      = "CREATE_ROOM"
)

// Catalog is the immutable set of known permissions, loaded once at
// process start and shared by reference. It is never mutated afterwards,
// so it is safe for concurrent use.
type Catalog struct {
	byName map[string]Permission
	names  []string
}

// LoadCatalog reads the seeded permissions table through the store.
func LoadCatalog(ctx context.Context, store Store) (*Catalog, error) {
	perms, err := store.Permissions(ctx)
	if err != nil {
		return nil, fmt.Errorf("load permission catalog: %w", err)
	}
	return NewCatalog(perms), nil
}

// NewCatalog builds a catalog from an explicit permission list.
func NewCatalog(perms []Permission) *Catalog {
	c := &Catalog{byName: make(map[string]Permission, len(perms))}
	for _, p := range perms {
		if _, dup := c.byName[p.Name]; dup {
			continue
		}
		c.byName[p.Name] = p
		c.names = append(c.names, p.Name)
	}
	sort.Strings(c.names)
	return c
}

// Has reports whether the permission name is part of the catalog.
func (c *Catalog) Has(name string) bool {
	_, ok := c.byName[name]
	return ok
}

// Get returns the catalog entry for a permission name.
func (c *Catalog) Get(name string) (Permission, bool) {
	p, ok := c.byName[name]
	return p, ok
}

// Names returns all permission names in sorted order.
func (c *Catalog) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// Len returns the catalog size.
func (c *Catalog) Len() int {
	return len(c.names)
}
