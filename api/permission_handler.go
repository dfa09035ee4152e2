package api

import (
	"net/http"

	"github.com/xraph/forge"

	"github.com/xraph/bastion"
	"github.com/xraph/bastion/permission"
)

func (a *API) registerPermissionRoutes(router forge.Router) error {
	g := router.Group("/v1", forge.WithGroupTags("permissions"))

	if err := g.POST("/permissions", a.definePermission,
		forge.WithSummary("Define permission"),
		forge.WithDescription("Registers a resource:action permission in the tenant catalog."),
		forge.WithOperationID("definePermission"),
		forge.WithRequestSchema(DefinePermissionRequest{}),
		forge.WithCreatedResponse(&permission.Permission{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/permissions", a.listPermissions,
		forge.WithSummary("List permissions"),
		forge.WithDescription("Lists catalog permissions, ordered by resource then action."),
		forge.WithOperationID("listPermissions"),
		forge.WithRequestSchema(ListPermissionsRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Permission list", []*permission.Permission{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/permissions/:permissionName", a.getPermission,
		forge.WithSummary("Get permission"),
		forge.WithDescription("Returns details of a catalog permission."),
		forge.WithOperationID("getPermission"),
		forge.WithResponseSchema(http.StatusOK, "Permission details", &permission.Permission{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	return g.DELETE("/permissions/:permissionName", a.removePermission,
		forge.WithSummary("Remove permission"),
		forge.WithDescription("Removes a catalog permission no role grants."),
		forge.WithOperationID("removePermission"),
		forge.WithNoContentResponse(),
		forge.WithErrorResponses(),
	)
}

func (a *API) definePermission(ctx forge.Context, req *DefinePermissionRequest) (*permission.Permission, error) {
	if req.Name == "" {
		return nil, forge.BadRequest("name is required")
	}

	p, err := a.eng.DefinePermission(ctx.Context(), bastion.DefinePermissionInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return nil, mapError(err)
	}

	return p, ctx.JSON(http.StatusCreated, p)
}

func (a *API) listPermissions(ctx forge.Context, req *ListPermissionsRequest) ([]*permission.Permission, error) {
	perms, err := a.eng.ListPermissions(ctx.Context(), req.Resource)
	if err != nil {
		return nil, mapError(err)
	}
	return perms, ctx.JSON(http.StatusOK, perms)
}

func (a *API) getPermission(ctx forge.Context, _ *GetPermissionRequest) (*permission.Permission, error) {
	p, err := a.eng.GetPermission(ctx.Context(), ctx.Param("permissionName"))
	if err != nil {
		return nil, mapError(err)
	}
	return p, ctx.JSON(http.StatusOK, p)
}

func (a *API) removePermission(ctx forge.Context, _ *GetPermissionRequest) (*struct{}, error) {
	if err := a.eng.RemovePermission(ctx.Context(), ctx.Param("permissionName")); err != nil {
		return nil, mapError(err)
	}
	return nil, ctx.NoContent(http.StatusNoContent)
}
