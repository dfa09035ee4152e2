package api

import (
	"net/http"
	"time"

	"github.com/xraph/forge"

	"github.com/xraph/bastion/auditlog"
)

func (a *API) registerAuditRoutes(router forge.Router) error {
	g := router.Group("/v1", forge.WithGroupTags("audit"))

	return g.GET("/audit", a.listAuditEntries,
		forge.WithSummary("Query audit log"),
		forge.WithDescription("Returns mutation audit entries with optional filters, newest first."),
		forge.WithOperationID("listAuditEntries"),
		forge.WithRequestSchema(ListAuditRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Audit entries", AuditListResponse{}),
		forge.WithErrorResponses(),
	)
}

func (a *API) listAuditEntries(ctx forge.Context, req *ListAuditRequest) (*AuditListResponse, error) {
	filter := &auditlog.QueryFilter{
		Action:   req.Action,
		RoleName: req.RoleName,
		UserID:   req.UserID,
		Limit:    defaultLimit(req.Limit),
		Offset:   req.Offset,
	}

	if req.After != "" {
		t, err := time.Parse(time.RFC3339, req.After)
		if err != nil {
			return nil, forge.BadRequest("invalid after timestamp")
		}
		filter.After = &t
	}
	if req.Before != "" {
		t, err := time.Parse(time.RFC3339, req.Before)
		if err != nil {
			return nil, forge.BadRequest("invalid before timestamp")
		}
		filter.Before = &t
	}

	entries, total, err := a.eng.AuditEntries(ctx.Context(), filter)
	if err != nil {
		return nil, mapError(err)
	}

	resp := &AuditListResponse{
		Items:  entries,
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}
	return resp, ctx.JSON(http.StatusOK, resp)
}
