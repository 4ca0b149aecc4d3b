package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"depot/internal/domain/models/filerequest"
	filerequestRepo "depot/internal/domain/repositories/filerequest"
	filerequestSvc "depot/internal/domain/services/filerequest"
	"depot/internal/httputil"
)

// RequestHandler handles file-action request HTTP requests
type RequestHandler struct {
	commands filerequestSvc.CommandService
	queries  filerequestSvc.QueryService
	logger   *slog.Logger
}

// NewRequestHandler creates a new file-action request handler
func NewRequestHandler(commands filerequestSvc.CommandService, queries filerequestSvc.QueryService, logger *slog.Logger) *RequestHandler {
	return &RequestHandler{
		commands: commands,
		queries:  queries,
		logger:   logger,
	}
}

// decisionBody carries the approver's optional (approve) or mandatory
// (reject) comment.
type decisionBody struct {
	Comment *string `json:"comment,omitempty"`
}

// bulkDecisionBody names the requests a bulk decision covers.
type bulkDecisionBody struct {
	RequestIDs []string `json:"request_ids"`
	Comment    *string  `json:"comment,omitempty"`
}

// bulkItemResponse is the per-item outcome of a bulk decision.
type bulkItemResponse struct {
	RequestID string               `json:"request_id"`
	Request   *filerequest.Request `json:"request,omitempty"`
	Error     string               `json:"error,omitempty"`
}

// bulkResponse summarizes a bulk decision. Failed items stay in the results
// list; a non-zero failure count never hides the ones that succeeded.
type bulkResponse struct {
	Succeeded int                `json:"succeeded"`
	Failed    int                `json:"failed"`
	Results   []bulkItemResponse `json:"results"`
}

func toBulkResponse(results []filerequestSvc.BulkItemResult) bulkResponse {
	resp := bulkResponse{Results: make([]bulkItemResponse, 0, len(results))}
	for _, res := range results {
		item := bulkItemResponse{RequestID: res.RequestID, Request: res.Request}
		if res.Err != nil {
			item.Error = res.Err.Error()
			resp.Failed++
		} else {
			resp.Succeeded++
		}
		resp.Results = append(resp.Results, item)
	}
	return resp
}

// CreateMoveRequest submits a file move for approval
// POST /api/requests/move
func (h *RequestHandler) CreateMoveRequest(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var in filerequestSvc.CreateMoveRequestInput
	if err := httputil.ParseJSON(w, r, &in); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req, err := h.commands.CreateMoveRequest(r.Context(), userID, &in)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, req)
}

// CreateDeleteRequest submits a file deletion for approval
// POST /api/requests/delete
func (h *RequestHandler) CreateDeleteRequest(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var in filerequestSvc.CreateDeleteRequestInput
	if err := httputil.ParseJSON(w, r, &in); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req, err := h.commands.CreateDeleteRequest(r.Context(), userID, &in)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, req)
}

// GetRequest retrieves a single request by ID
// GET /api/requests/{id}
func (h *RequestHandler) GetRequest(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}

	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "request ID is required")
		return
	}

	req, err := h.queries.GetByID(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, req)
}

// CancelRequest lets the requester withdraw their own pending request
// POST /api/requests/{id}/cancel
func (h *RequestHandler) CancelRequest(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "request ID is required")
		return
	}

	req, err := h.commands.CancelRequest(r.Context(), id, userID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, req)
}

// ApproveRequest decides a pending request in favor and executes the action
// POST /api/requests/{id}/approve
func (h *RequestHandler) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "request ID is required")
		return
	}

	// The comment is optional, so no body at all is fine.
	var body decisionBody
	if err := httputil.ParseJSONOptional(w, r, &body); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req, err := h.commands.ApproveRequest(r.Context(), id, userID, body.Comment)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, req)
}

// RejectRequest declines a pending request with a mandatory comment
// POST /api/requests/{id}/reject
func (h *RequestHandler) RejectRequest(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "request ID is required")
		return
	}

	// Parse leniently; the missing-comment case gets the service's
	// specific validation error instead of a generic body failure.
	var body decisionBody
	if err := httputil.ParseJSONOptional(w, r, &body); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var comment string
	if body.Comment != nil {
		comment = *body.Comment
	}

	req, err := h.commands.RejectRequest(r.Context(), id, userID, comment)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, req)
}

// BulkApprove approves a batch of requests, each independently
// POST /api/requests/bulk/approve
func (h *RequestHandler) BulkApprove(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var body bulkDecisionBody
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(body.RequestIDs) == 0 {
		httputil.RespondError(w, http.StatusBadRequest, "request_ids must not be empty")
		return
	}

	results := h.commands.BulkApprove(r.Context(), body.RequestIDs, userID, body.Comment)
	httputil.RespondJSON(w, http.StatusOK, toBulkResponse(results))
}

// BulkReject rejects a batch of requests, each independently
// POST /api/requests/bulk/reject
func (h *RequestHandler) BulkReject(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var body bulkDecisionBody
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(body.RequestIDs) == 0 {
		httputil.RespondError(w, http.StatusBadRequest, "request_ids must not be empty")
		return
	}

	var comment string
	if body.Comment != nil {
		comment = *body.Comment
	}

	results := h.commands.BulkReject(r.Context(), body.RequestIDs, userID, comment)
	httputil.RespondJSON(w, http.StatusOK, toBulkResponse(results))
}

// ListMyRequests lists the caller's own requests
// GET /api/requests/mine?status=&type=&file_id=&page=&page_size=&sort_by=&order=
func (h *RequestHandler) ListMyRequests(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	filter := filerequestRepo.Filter{
		Status: filerequest.RequestStatus(strings.ToUpper(r.URL.Query().Get("status"))),
		Type:   filerequest.RequestType(strings.ToUpper(r.URL.Query().Get("type"))),
		FileID: r.URL.Query().Get("file_id"),
	}

	page, err := h.queries.ListMyRequests(r.Context(), userID, filter, parsePagination(r))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, page)
}

// ListPendingApprovals lists pending requests designated to the caller
// GET /api/requests/pending-approvals?page=&page_size=&sort_by=&order=
func (h *RequestHandler) ListPendingApprovals(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	page, err := h.queries.ListPendingApprovals(r.Context(), userID, parsePagination(r))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, page)
}

// StatusSummary returns request counts grouped by status
// GET /api/requests/summary
func (h *RequestHandler) StatusSummary(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}

	summary, err := h.queries.StatusSummary(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, summary)
}

// ListApprovers lists users eligible to approve the given action type
// GET /api/approvers?action=MOVE|DELETE
func (h *RequestHandler) ListApprovers(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}

	action := filerequest.RequestType(strings.ToUpper(r.URL.Query().Get("action")))
	if action != filerequest.TypeMove && action != filerequest.TypeDelete {
		httputil.RespondError(w, http.StatusBadRequest, "action must be MOVE or DELETE")
		return
	}

	approvers, err := h.queries.EligibleApprovers(r.Context(), action)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, approvers)
}

// parsePagination reads the common listing query parameters. Out-of-range
// values are normalized by the repository.
func parsePagination(r *http.Request) filerequestRepo.Pagination {
	order := filerequestRepo.SortDesc
	if strings.EqualFold(r.URL.Query().Get("order"), "asc") {
		order = filerequestRepo.SortAsc
	}
	return filerequestRepo.Pagination{
		Page:     httputil.QueryInt(r, "page", 1),
		PageSize: httputil.QueryInt(r, "page_size", 20),
		SortBy:   r.URL.Query().Get("sort_by"),
		Order:    order,
	}
}
