package handler

import (
	"errors"
	"net/http"

	"depot/internal/domain"
	"depot/internal/httputil"
)

// handleError converts domain errors to HTTP responses
func handleError(w http.ResponseWriter, err error) {
	var dupErr *domain.DuplicateRequestError
	var httpErr domain.HTTPError

	switch {
	case errors.As(err, &dupErr):
		// The caller needs the existing request's context to point the user
		// at it, so the conflict payload carries it.
		extras := map[string]interface{}{
			"existing_request_id": dupErr.ExistingRequestID,
			"requester_id":        dupErr.RequesterID,
			"request_type":        dupErr.RequestType,
			"approver_id":         dupErr.DesignatedApproverID,
			"file_name":           dupErr.FileName,
		}
		if dupErr.TargetFolderID != nil {
			extras["target_folder_id"] = *dupErr.TargetFolderID
		}
		httputil.RespondErrorWithExtras(w, http.StatusConflict, dupErr.Error(), extras)
	case errors.As(err, &httpErr):
		httputil.RespondError(w, httpErr.StatusCode(), httpErr.Error())
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		httputil.RespondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrConflict):
		httputil.RespondError(w, http.StatusConflict, err.Error())
	default:
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// requireUser extracts the authenticated caller, writing a 401 when absent.
// Returns ("", false) after responding in the failure case.
func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := httputil.GetUserID(r)
	if userID == "" {
		httputil.RespondError(w, http.StatusUnauthorized, "authentication required")
		return "", false
	}
	return userID, true
}
