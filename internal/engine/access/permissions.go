package access

import (
	"context"
	"sort"
)

// PermissionEvaluator expands role sets into permission sets. This is a
// pure union: a permission held via any one role is held. There are no
// deny grants and no specificity rules in the model.
type PermissionEvaluator struct {
	store Store
}

func NewPermissionEvaluator(store Store) *PermissionEvaluator {
	return &PermissionEvaluator{store: store}
}

// PermissionsOf returns the union of permission names carried by the
// given roles.
func (e *PermissionEvaluator) PermissionsOf(ctx context.Context, roles map[string]struct{}) (map[string]struct{}, error) {
	perms := make(map[string]struct{})
	if len(roles) == 0 {
		return perms, nil
	}

	roleIDs := make([]string, 0, len(roles))
	for id := range roles {
		roleIDs = append(roleIDs, id)
	}
	sort.Strings(roleIDs)

	names, err := e.store.RolePermissions(ctx, roleIDs)
	if err != nil {
		return nil, err
	}
	for _, name := range names {
		perms[name] = struct{}{}
	}
	return perms, nil
}

// HasPermission reports whether any of the roles carries the permission.
func (e *PermissionEvaluator) HasPermission(ctx context.Context, roles map[string]struct{}, permission string) (bool, error) {
	perms, err := e.PermissionsOf(ctx, roles)
	if err != nil {
		return false, err
	}
	_, ok := perms[permission]
	return ok, nil
}
