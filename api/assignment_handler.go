package api

import (
	"net/http"

	"github.com/xraph/forge"

	"github.com/xraph/bastion"
	"github.com/xraph/bastion/permission"
)

func (a *API) registerUserRoutes(router forge.Router) error {
	g := router.Group("/v1", forge.WithGroupTags("users"))

	if err := g.GET("/users/:userId/roles", a.getUserRoles,
		forge.WithSummary("Get user roles"),
		forge.WithDescription("Lists the role names a user holds."),
		forge.WithOperationID("getUserRoles"),
		forge.WithResponseSchema(http.StatusOK, "User roles", UserRolesResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.POST("/users/:userId/roles", a.applyUserRoles,
		forge.WithSummary("Change user roles"),
		forge.WithDescription("Applies an add/remove delta to a user's role set."),
		forge.WithOperationID("applyUserRoles"),
		forge.WithRequestSchema(UserRolesDeltaRequest{}),
		forge.WithResponseSchema(http.StatusOK, "User roles", UserRolesResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/users/:userId/permissions", a.getUserPermissions,
		forge.WithSummary("Get effective permissions"),
		forge.WithDescription("Returns the user's resolved permission set as catalog records."),
		forge.WithOperationID("getUserPermissions"),
		forge.WithResponseSchema(http.StatusOK, "Effective permissions", []*permission.Permission{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	return g.GET("/check", a.check,
		forge.WithSummary("Permission check"),
		forge.WithDescription("Reports whether a user holds a permission."),
		forge.WithOperationID("check"),
		forge.WithRequestSchema(CheckRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Check result", CheckResponse{}),
		forge.WithErrorResponses(),
	)
}

func (a *API) getUserRoles(ctx forge.Context, _ *GetUserRequest) (*UserRolesResponse, error) {
	userID := ctx.Param("userId")

	roles, err := a.eng.RolesForUser(ctx.Context(), userID)
	if err != nil {
		return nil, mapError(err)
	}

	resp := &UserRolesResponse{UserID: userID, Roles: roles}
	return resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) applyUserRoles(ctx forge.Context, req *UserRolesDeltaRequest) (*UserRolesResponse, error) {
	userID := ctx.Param("userId")

	d := bastion.Delta{Add: req.Add, Remove: req.Remove}
	if d.Empty() {
		return nil, forge.BadRequest("delta requires at least one add or remove entry")
	}

	roles, err := a.eng.ApplyUserDelta(ctx.Context(), userID, d)
	if err != nil {
		return nil, mapError(err)
	}

	resp := &UserRolesResponse{UserID: userID, Roles: roles}
	return resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) getUserPermissions(ctx forge.Context, _ *GetUserRequest) ([]*permission.Permission, error) {
	perms, err := a.eng.EffectivePermissions(ctx.Context(), ctx.Param("userId"))
	if err != nil {
		return nil, mapError(err)
	}
	return perms, ctx.JSON(http.StatusOK, perms)
}

func (a *API) check(ctx forge.Context, req *CheckRequest) (*CheckResponse, error) {
	if req.UserID == "" || req.Permission == "" {
		return nil, forge.BadRequest("user_id and permission are required")
	}

	allowed, err := a.eng.HasPermission(ctx.Context(), req.UserID, req.Permission)
	if err != nil {
		return nil, mapError(err)
	}

	resp := &CheckResponse{UserID: req.UserID, Permission: req.Permission, Allowed: allowed}
	return resp, ctx.JSON(http.StatusOK, resp)
}
