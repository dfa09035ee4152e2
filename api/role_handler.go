package api

import (
	"net/http"

	"github.com/xraph/forge"

	"github.com/xraph/bastion"
	"github.com/xraph/bastion/role"
)

func (a *API) registerRoleRoutes(router forge.Router) error {
	g := router.Group("/v1", forge.WithGroupTags("roles"))

	if err := g.POST("/roles", a.createRole,
		forge.WithSummary("Create role"),
		forge.WithDescription("Creates a new role with an optional initial grant set."),
		forge.WithOperationID("createRole"),
		forge.WithRequestSchema(CreateRoleRequest{}),
		forge.WithCreatedResponse(&role.Role{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/roles", a.listRoles,
		forge.WithSummary("List roles"),
		forge.WithDescription("Lists all roles in the tenant, system roles first."),
		forge.WithOperationID("listRoles"),
		forge.WithResponseSchema(http.StatusOK, "Role list", []*role.Role{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/roles/:roleName", a.getRole,
		forge.WithSummary("Get role"),
		forge.WithDescription("Returns details of a specific role."),
		forge.WithOperationID("getRole"),
		forge.WithResponseSchema(http.StatusOK, "Role details", &role.Role{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.PUT("/roles/:roleName", a.updateRole,
		forge.WithSummary("Update role"),
		forge.WithDescription("Updates a role's description, inheritance, or grant set."),
		forge.WithOperationID("updateRole"),
		forge.WithRequestSchema(UpdateRoleRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Updated role", &role.Role{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.DELETE("/roles/:roleName", a.deleteRole,
		forge.WithSummary("Delete role"),
		forge.WithDescription("Deletes a role and cascades its user assignments."),
		forge.WithOperationID("deleteRole"),
		forge.WithNoContentResponse(),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/roles/:roleName/permissions", a.getRoleGrants,
		forge.WithSummary("Get role grants"),
		forge.WithDescription("Returns a role's direct and effective grant sets."),
		forge.WithOperationID("getRoleGrants"),
		forge.WithResponseSchema(http.StatusOK, "Role grants", RoleGrantsResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	return g.POST("/roles/:roleName/permissions", a.applyRoleGrants,
		forge.WithSummary("Change role grants"),
		forge.WithDescription("Applies an add/remove delta to a role's direct grant set."),
		forge.WithOperationID("applyRoleGrants"),
		forge.WithRequestSchema(RoleGrantsDeltaRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Updated role", &role.Role{}),
		forge.WithErrorResponses(),
	)
}

func (a *API) createRole(ctx forge.Context, req *CreateRoleRequest) (*role.Role, error) {
	if req.Name == "" {
		return nil, forge.BadRequest("name is required")
	}

	r, err := a.eng.CreateRole(ctx.Context(), bastion.CreateRoleInput{
		Name:         req.Name,
		Description:  req.Description,
		System:       req.System,
		InheritsFrom: req.InheritsFrom,
		Permissions:  req.Permissions,
	})
	if err != nil {
		return nil, mapError(err)
	}

	return r, ctx.JSON(http.StatusCreated, r)
}

func (a *API) listRoles(ctx forge.Context, _ *ListRolesRequest) ([]*role.Role, error) {
	roles, err := a.eng.ListRoles(ctx.Context())
	if err != nil {
		return nil, mapError(err)
	}
	return roles, ctx.JSON(http.StatusOK, roles)
}

func (a *API) getRole(ctx forge.Context, _ *GetRoleRequest) (*role.Role, error) {
	r, err := a.eng.GetRole(ctx.Context(), ctx.Param("roleName"))
	if err != nil {
		return nil, mapError(err)
	}
	return r, ctx.JSON(http.StatusOK, r)
}

func (a *API) updateRole(ctx forge.Context, req *UpdateRoleRequest) (*role.Role, error) {
	r, err := a.eng.UpdateRole(ctx.Context(), ctx.Param("roleName"), bastion.UpdateRoleInput{
		Description:      req.Description,
		InheritsFrom:     req.InheritsFrom,
		ClearInheritance: req.ClearInheritance,
		Permissions:      req.Permissions,
		ExpectedVersion:  req.ExpectedVersion,
	})
	if err != nil {
		return nil, mapError(err)
	}
	return r, ctx.JSON(http.StatusOK, r)
}

func (a *API) deleteRole(ctx forge.Context, req *DeleteRoleRequest) (*struct{}, error) {
	if err := a.eng.DeleteRole(ctx.Context(), ctx.Param("roleName"), req.ExpectedVersion); err != nil {
		return nil, mapError(err)
	}
	return nil, ctx.NoContent(http.StatusNoContent)
}

func (a *API) getRoleGrants(ctx forge.Context, _ *GetRoleRequest) (*RoleGrantsResponse, error) {
	name := ctx.Param("roleName")

	r, err := a.eng.GetRole(ctx.Context(), name)
	if err != nil {
		return nil, mapError(err)
	}
	effective, err := a.eng.Resolve(ctx.Context(), name)
	if err != nil {
		return nil, mapError(err)
	}

	resp := &RoleGrantsResponse{
		Role:      r.Name,
		Version:   r.Version,
		Direct:    bastion.NewPermissionSet(r.Permissions...).Sorted(),
		Effective: effective.Sorted(),
	}
	return resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) applyRoleGrants(ctx forge.Context, req *RoleGrantsDeltaRequest) (*role.Role, error) {
	d := bastion.Delta{Add: req.Add, Remove: req.Remove}
	if d.Empty() {
		return nil, forge.BadRequest("delta requires at least one add or remove entry")
	}

	r, err := a.eng.ApplyRoleDelta(ctx.Context(), ctx.Param("roleName"), d, req.ExpectedVersion)
	if err != nil {
		return nil, mapError(err)
	}
	return r, ctx.JSON(http.StatusOK, r)
}
