package api

import (
	"context"
	"net/http"

	"github.com/julienschmidt/httprouter"

	apiContext "confmgr/internal/api/context"
	"confmgr/internal/api/handlers"
	"confmgr/internal/api/middleware"
	"confmgr/internal/engine/access"
	"confmgr/internal/pkg/errors"
	"confmgr/internal/platform/auth"
)

type Dependencies struct {
	AuthHandler      *handlers.AuthHandler
	UserHandler      *handlers.UserHandler
	OrgHandler       *handlers.OrgHandler
	GroupHandler     *handlers.GroupHandler
	RoleHandler      *handlers.RoleHandler
	RoomHandler      *handlers.RoomHandler
	InfraHandler     *handlers.InfraHandler
	AuditHandler     *handlers.AuditHandler
	HealthHandler    *handlers.HealthHandler
	MetricsHandler   *handlers.MetricsHandler
	AuthMiddleware   *middleware.AuthMiddleware
	TenantMiddleware *middleware.TenantMiddleware
	RateLimiter      *middleware.RateLimiter
	Authorizer       *access.Authorizer
}

func NewRouter(deps *Dependencies) *httprouter.Router {
	router := httprouter.New()

	authMid := deps.AuthMiddleware
	tenantMid := deps.TenantMiddleware
	read := deps.RateLimiter.Limit(middleware.LimitAPIRead)
	write := deps.RateLimiter.Limit(middleware.LimitAPIWrite)
	authz := deps.Authorizer

	// Operational endpoints
	router.GET("/healthz", wrap(deps.HealthHandler.Check))
	router.GET("/metrics", wrap(deps.MetricsHandler.Export))

	// Authentication
	router.POST("/api/v1/auth/signup", chain(deps.AuthHandler.Signup, write))
	router.POST("/api/v1/auth/login", chain(deps.AuthHandler.Login, write))
	router.POST("/api/v1/auth/refresh", chain(deps.AuthHandler.Refresh, write))
	router.POST("/api/v1/auth/logout", chain(deps.AuthHandler.Logout, authMid.Handle))

	// Current user
	router.GET("/api/v1/users/me", chain(deps.UserHandler.Me, authMid.Handle, read))
	router.PATCH("/api/v1/users/me", chain(deps.UserHandler.UpdateMe, authMid.Handle, write))
	router.DELETE("/api/v1/users/me", chain(deps.UserHandler.DeleteMe, authMid.Handle, write))

	// Permission catalog
	router.GET("/api/v1/permissions", chain(deps.RoleHandler.ListCatalog, authMid.Handle, read))

	// Organization management. Standing checks live in the handlers since
	// they depend on the target organization.
	router.POST("/api/v1/organizations", chain(deps.OrgHandler.Create, authMid.Handle, write))
	router.GET("/api/v1/organizations/:org_id", chain(deps.OrgHandler.Get, authMid.Handle, read))
	router.PATCH("/api/v1/organizations/:org_id", chain(deps.OrgHandler.Update, authMid.Handle, write))
	router.DELETE("/api/v1/organizations/:org_id", chain(deps.OrgHandler.Delete, authMid.Handle, write))

	router.GET("/api/v1/organizations/:org_id/owners", chain(deps.OrgHandler.ListOwners, authMid.Handle, read))
	router.POST("/api/v1/organizations/:org_id/owners", chain(deps.OrgHandler.AddOwner, authMid.Handle, write))
	router.DELETE("/api/v1/organizations/:org_id/owners", chain(deps.OrgHandler.RemoveOwner, authMid.Handle, write))
	router.GET("/api/v1/organizations/:org_id/admins", chain(deps.OrgHandler.ListAdmins, authMid.Handle, read))
	router.POST("/api/v1/organizations/:org_id/admins", chain(deps.OrgHandler.AddAdmin, authMid.Handle, write))
	router.DELETE("/api/v1/organizations/:org_id/admins", chain(deps.OrgHandler.RemoveAdmin, authMid.Handle, write))

	router.GET("/api/v1/organizations/:org_id/fqdns", chain(deps.OrgHandler.ListFQDNs, authMid.Handle, read))
	router.POST("/api/v1/organizations/:org_id/fqdns", chain(deps.OrgHandler.AddFQDN, authMid.Handle, write))
	router.DELETE("/api/v1/organizations/:org_id/fqdns/:fqdn_id", chain(deps.OrgHandler.RemoveFQDN, authMid.Handle, write))

	// Groups
	router.POST("/api/v1/organizations/:org_id/groups", chain(deps.GroupHandler.Create, authMid.Handle, write))
	router.GET("/api/v1/organizations/:org_id/groups", chain(deps.GroupHandler.List, authMid.Handle, read))
	router.GET("/api/v1/groups/:group_id", chain(deps.GroupHandler.Get, authMid.Handle, read))
	router.PATCH("/api/v1/groups/:group_id", chain(deps.GroupHandler.Update, authMid.Handle, write))
	router.DELETE("/api/v1/groups/:group_id", chain(deps.GroupHandler.Delete, authMid.Handle, write))
	router.GET("/api/v1/groups/:group_id/members", chain(deps.GroupHandler.ListMembers, authMid.Handle, read))
	router.POST("/api/v1/groups/:group_id/members", chain(deps.GroupHandler.AddMember, authMid.Handle, write))
	router.DELETE("/api/v1/groups/:group_id/members/:user_id", chain(deps.GroupHandler.RemoveMember, authMid.Handle, write))

	// Roles
	router.POST("/api/v1/organizations/:org_id/roles", chain(deps.RoleHandler.Create, authMid.Handle, write))
	router.GET("/api/v1/organizations/:org_id/roles", chain(deps.RoleHandler.List, authMid.Handle, read))
	router.GET("/api/v1/roles/:role_id", chain(deps.RoleHandler.Get, authMid.Handle, read))
	router.PATCH("/api/v1/roles/:role_id", chain(deps.RoleHandler.Update, authMid.Handle, write))
	router.DELETE("/api/v1/roles/:role_id", chain(deps.RoleHandler.Delete, authMid.Handle, write))
	router.GET("/api/v1/roles/:role_id/permissions", chain(deps.RoleHandler.ListPermissions, authMid.Handle, read))
	router.POST("/api/v1/roles/:role_id/permissions", chain(deps.RoleHandler.AddPermission, authMid.Handle, write))
	router.DELETE("/api/v1/roles/:role_id/permissions/:permission", chain(deps.RoleHandler.RemovePermission, authMid.Handle, write))

	// Rooms. Creation resolves the organization from the request host;
	// the remaining routes carry the room id and are gated either on an
	// engine permission or on owner/admin standing in the handler.
	router.POST("/api/v1/rooms", chain(deps.RoomHandler.Create, authMid.Handle, tenantMid.Handle, write))
	router.GET("/api/v1/organizations/:org_id/rooms", chain(deps.RoomHandler.ListByOrganization, authMid.Handle, read))
	router.GET("/api/v1/rooms/:room_id", chain(deps.RoomHandler.Get, authMid.Handle, read))
	router.PATCH("/api/v1/rooms/:room_id",
		chain(deps.RoomHandler.Update, authMid.Handle, middleware.RequirePermission(authz, access.PermModerateRoom), write))
	router.DELETE("/api/v1/rooms/:room_id", chain(deps.RoomHandler.Delete, authMid.Handle, write))

	router.PUT("/api/v1/rooms/:room_id/lock",
		chain(deps.RoomHandler.Lock, authMid.Handle, middleware.RequirePermission(authz, access.PermChangeRoomLock), write))
	router.DELETE("/api/v1/rooms/:room_id/lock",
		chain(deps.RoomHandler.Unlock, authMid.Handle, middleware.RequirePermission(authz, access.PermChangeRoomLock), write))

	// Room grants
	router.GET("/api/v1/rooms/:room_id/group-roles",
		chain(deps.RoomHandler.ListGroupRoles, authMid.Handle, middleware.RequirePermission(authz, access.PermModifyRole), read))
	router.POST("/api/v1/rooms/:room_id/group-roles",
		chain(deps.RoomHandler.GrantGroupRole, authMid.Handle, middleware.RequirePermission(authz, access.PermModifyRole), write))
	router.DELETE("/api/v1/rooms/:room_id/group-roles/:group_id/:role_id",
		chain(deps.RoomHandler.RevokeGroupRole, authMid.Handle, middleware.RequirePermission(authz, access.PermModifyRole), write))
	router.GET("/api/v1/rooms/:room_id/user-roles",
		chain(deps.RoomHandler.ListUserRoles, authMid.Handle, middleware.RequirePermission(authz, access.PermModifyRole), read))
	router.POST("/api/v1/rooms/:room_id/user-roles",
		chain(deps.RoomHandler.GrantUserRole, authMid.Handle, middleware.RequirePermission(authz, access.PermModifyRole), write))
	router.DELETE("/api/v1/rooms/:room_id/user-roles/:user_id/:role_id",
		chain(deps.RoomHandler.RevokeUserRole, authMid.Handle, middleware.RequirePermission(authz, access.PermModifyRole), write))

	// Effective permission queries
	router.GET("/api/v1/rooms/:room_id/permissions", chain(deps.RoomHandler.MyPermissions, authMid.Handle, read))
	router.GET("/api/v1/rooms/:room_id/authorize", chain(deps.RoomHandler.CheckPermission, authMid.Handle, read))

	// Audit
	router.GET("/api/v1/organizations/:org_id/audit-logs", chain(deps.AuditHandler.List, authMid.Handle, read))

	// Media infrastructure, super-admin only
	router.GET("/api/v1/infra/locations",
		chain(deps.InfraHandler.ListLocations, authMid.Handle, requireRole(auth.APIRoleSuperAdmin), read))
	router.POST("/api/v1/infra/locations",
		chain(deps.InfraHandler.CreateLocation, authMid.Handle, requireRole(auth.APIRoleSuperAdmin), write))
	router.DELETE("/api/v1/infra/locations/:location_id",
		chain(deps.InfraHandler.DeleteLocation, authMid.Handle, requireRole(auth.APIRoleSuperAdmin), write))
	router.GET("/api/v1/infra/nodes",
		chain(deps.InfraHandler.ListNodes, authMid.Handle, requireRole(auth.APIRoleSuperAdmin), read))
	router.POST("/api/v1/infra/nodes",
		chain(deps.InfraHandler.CreateNode, authMid.Handle, requireRole(auth.APIRoleSuperAdmin), write))
	router.GET("/api/v1/infra/nodes/:node_id",
		chain(deps.InfraHandler.GetNode, authMid.Handle, requireRole(auth.APIRoleSuperAdmin), read))
	router.PATCH("/api/v1/infra/nodes/:node_id",
		chain(deps.InfraHandler.UpdateNode, authMid.Handle, requireRole(auth.APIRoleSuperAdmin), write))
	router.DELETE("/api/v1/infra/nodes/:node_id",
		chain(deps.InfraHandler.DeleteNode, authMid.Handle, requireRole(auth.APIRoleSuperAdmin), write))

	return router
}

// Helper function to chain middlewares
func chain(handler http.HandlerFunc, middlewares ...func(http.HandlerFunc) http.HandlerFunc) httprouter.Handle {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return wrap(handler)
}

// Convert http.HandlerFunc to httprouter.Handle
func wrap(handler http.HandlerFunc) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		ctx := context.WithValue(r.Context(), apiContext.Params, ps)
		handler(w, r.WithContext(ctx))
	}
}

func requireRole(roles ...string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			claims, ok := r.Context().Value(apiContext.Claims).(*auth.Claims)
			if !ok {
				errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "No authentication claims found", nil)
				return
			}

			allowed := false
			for _, role := range roles {
				if claims.Role == role {
					allowed = true
					break
				}
			}

			if !allowed {
				errors.WriteError(w, http.StatusForbidden, errors.ErrCodeForbidden, "Insufficient permissions", nil)
				return
			}

			next(w, r)
		}
	}
}
