package api

import (
	"net/http"

	"github.com/xraph/forge"

	"github.com/xraph/bastion"
)

func (a *API) registerMatrixRoutes(router forge.Router) error {
	g := router.Group("/v1", forge.WithGroupTags("matrix"))

	if err := g.GET("/matrix", a.getMatrix,
		forge.WithSummary("Permission matrix"),
		forge.WithDescription("Returns the role/permission matrix for the tenant."),
		forge.WithOperationID("getMatrix"),
		forge.WithResponseSchema(http.StatusOK, "Permission matrix", &bastion.Matrix{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	return g.POST("/matrix/toggle", a.toggleCell,
		forge.WithSummary("Toggle matrix cell"),
		forge.WithDescription("Flips one role/permission cell and returns the fresh matrix."),
		forge.WithOperationID("toggleMatrixCell"),
		forge.WithRequestSchema(ToggleCellRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Permission matrix", &bastion.Matrix{}),
		forge.WithErrorResponses(),
	)
}

func (a *API) getMatrix(ctx forge.Context, _ *struct{}) (*bastion.Matrix, error) {
	m, err := a.eng.Matrix(ctx.Context())
	if err != nil {
		return nil, mapError(err)
	}
	return m, ctx.JSON(http.StatusOK, m)
}

func (a *API) toggleCell(ctx forge.Context, req *ToggleCellRequest) (*bastion.Matrix, error) {
	if req.Role == "" || req.Permission == "" {
		return nil, forge.BadRequest("role and permission are required")
	}

	m, err := a.eng.ToggleCell(ctx.Context(), req.Role, req.Permission, req.ExpectedVersion)
	if err != nil {
		return nil, mapError(err)
	}
	return m, ctx.JSON(http.StatusOK, m)
}
