package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fieldpilot/portal-server-go/internal/audit"
	apperrors "github.com/fieldpilot/portal-server-go/internal/errors"
	"github.com/fieldpilot/portal-server-go/internal/middleware"
	"github.com/fieldpilot/portal-server-go/internal/service"
)

// authAction is the closed set of operations the portal auth endpoint
// dispatches on. Unknown actions are rejected up front.
type authAction string

const (
	actionGenerateMagicLink authAction = "generate-magic-link"
	actionValidateMagicLink authAction = "validate-magic-link"
	actionLoginPassword     authAction = "login-password"
	actionCreatePassword    authAction = "create-password"
	actionValidateSession   authAction = "validate-session"
	actionRefreshSession    authAction = "refresh-session"
	actionLogout            authAction = "logout"
	actionSwitchContext     authAction = "switch-context"
	actionSendInvite        authAction = "send-invite"
	actionRevokeAccess      authAction = "revoke-access"
)

// authRequest is the union of all action payloads; each action validates
// its own required fields.
type authRequest struct {
	Action       authAction `json:"action"`
	Email        string     `json:"email"`
	Password     string     `json:"password"`
	Token        string     `json:"token"`
	SessionToken string     `json:"sessionToken"`
	BusinessID   string     `json:"businessId"`
	CustomerID   string     `json:"customerId"`
	CustomerName string     `json:"customerName"`
	ActorID      string     `json:"actorId"`
}

// PortalAuthHandler serves the single portal auth endpoint.
type PortalAuthHandler struct {
	magicLinks *service.MagicLinkService
	passwords  *service.PasswordService
	sessions   *service.SessionService
	access     *service.AccessService
	staffAuth  *middleware.StaffKeyAuth
}

func NewPortalAuthHandler(
	magicLinks *service.MagicLinkService,
	passwords *service.PasswordService,
	sessions *service.SessionService,
	access *service.AccessService,
	staffAuth *middleware.StaffKeyAuth,
) *PortalAuthHandler {
	return &PortalAuthHandler{
		magicLinks: magicLinks,
		passwords:  passwords,
		sessions:   sessions,
		access:     access,
		staffAuth:  staffAuth,
	}
}

func (h *PortalAuthHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/auth", h.Dispatch)
	return r
}

// Dispatch routes the tagged request body to exactly one action handler.
func (h *PortalAuthHandler) Dispatch(w http.ResponseWriter, r *http.Request) {
	var req authRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationError("Invalid JSON body"))
		return
	}
	if req.Action == "" {
		writeError(w, apperrors.MissingRequired("action"))
		return
	}

	switch req.Action {
	case actionGenerateMagicLink:
		h.generateMagicLink(w, r, req)
	case actionValidateMagicLink:
		h.validateMagicLink(w, r, req)
	case actionLoginPassword:
		h.loginPassword(w, r, req)
	case actionCreatePassword:
		h.createPassword(w, r, req)
	case actionValidateSession:
		h.validateSession(w, r, req)
	case actionRefreshSession:
		h.refreshSession(w, r, req)
	case actionLogout:
		h.logout(w, r, req)
	case actionSwitchContext:
		h.switchContext(w, r, req)
	case actionSendInvite:
		h.sendInvite(w, r, req)
	case actionRevokeAccess:
		h.revokeAccess(w, r, req)
	default:
		writeError(w, apperrors.ValidationError(fmt.Sprintf("Unknown action: %s", req.Action)))
	}
}

func (h *PortalAuthHandler) generateMagicLink(w http.ResponseWriter, r *http.Request, req authRequest) {
	if req.Email == "" {
		writeError(w, apperrors.MissingRequired("email"))
		return
	}

	if allowed, resetAt := h.magicLinks.CheckIssueLimit(r.Context(), audit.ClientIP(r)); !allowed {
		writeRateLimited(w, resetAt)
		return
	}

	if err := h.magicLinks.Issue(r.Context(), req.Email); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "If an account exists for this email, a sign-in link has been sent",
	})
}

func (h *PortalAuthHandler) validateMagicLink(w http.ResponseWriter, r *http.Request, req authRequest) {
	if req.Token == "" {
		writeError(w, apperrors.MissingRequired("token"))
		return
	}

	result, err := h.magicLinks.Redeem(r.Context(), req.Token, audit.MetaFromRequest(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"sessionToken":      result.SessionToken,
		"customerAccountId": result.CustomerAccountID,
		"activeBusinessId":  result.ActiveBusinessID,
		"activeCustomerId":  result.ActiveCustomerID,
		"businesses":        result.Businesses,
		"customerName":      result.CustomerName,
	})
}

func (h *PortalAuthHandler) loginPassword(w http.ResponseWriter, r *http.Request, req authRequest) {
	if req.Email == "" {
		writeError(w, apperrors.MissingRequired("email"))
		return
	}
	if req.Password == "" {
		writeError(w, apperrors.MissingRequired("password"))
		return
	}

	if allowed, resetAt := h.passwords.CheckLoginLimit(r.Context(), audit.ClientIP(r)); !allowed {
		writeRateLimited(w, resetAt)
		return
	}

	result, err := h.passwords.Login(r.Context(), req.Email, req.Password, audit.MetaFromRequest(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"sessionToken":      result.SessionToken,
		"customerAccountId": result.CustomerAccountID,
		"activeBusinessId":  result.ActiveBusinessID,
		"activeCustomerId":  result.ActiveCustomerID,
		"businesses":        result.Businesses,
	})
}

func (h *PortalAuthHandler) createPassword(w http.ResponseWriter, r *http.Request, req authRequest) {
	if req.SessionToken == "" {
		writeError(w, apperrors.MissingRequired("sessionToken"))
		return
	}
	if req.Password == "" {
		writeError(w, apperrors.MissingRequired("password"))
		return
	}

	if err := h.passwords.CreatePassword(r.Context(), req.SessionToken, req.Password); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *PortalAuthHandler) validateSession(w http.ResponseWriter, r *http.Request, req authRequest) {
	if req.SessionToken == "" {
		writeError(w, apperrors.MissingRequired("sessionToken"))
		return
	}

	info, err := h.sessions.Validate(r.Context(), req.SessionToken)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"valid":             true,
		"customerAccountId": info.CustomerAccountID,
		"activeBusinessId":  info.ActiveBusinessID,
		"activeCustomerId":  info.ActiveCustomerID,
		"businesses":        info.Businesses,
		"email":             info.Email,
	})
}

func (h *PortalAuthHandler) refreshSession(w http.ResponseWriter, r *http.Request, req authRequest) {
	if req.SessionToken == "" {
		writeError(w, apperrors.MissingRequired("sessionToken"))
		return
	}

	expiresAt, err := h.sessions.Refresh(r.Context(), req.SessionToken)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"expiresAt": expiresAt.Format(time.RFC3339),
	})
}

func (h *PortalAuthHandler) logout(w http.ResponseWriter, r *http.Request, req authRequest) {
	if req.SessionToken != "" {
		if err := h.sessions.Logout(r.Context(), req.SessionToken); err != nil {
			writeError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *PortalAuthHandler) switchContext(w http.ResponseWriter, r *http.Request, req authRequest) {
	if req.SessionToken == "" {
		writeError(w, apperrors.MissingRequired("sessionToken"))
		return
	}
	if req.BusinessID == "" {
		writeError(w, apperrors.MissingRequired("businessId"))
		return
	}
	if req.CustomerID == "" {
		writeError(w, apperrors.MissingRequired("customerId"))
		return
	}

	if err := h.sessions.SwitchContext(r.Context(), req.SessionToken, req.BusinessID, req.CustomerID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *PortalAuthHandler) sendInvite(w http.ResponseWriter, r *http.Request, req authRequest) {
	if !h.staffAuth.Verify(r) {
		writeError(w, apperrors.Unauthorized("Invalid API key"))
		return
	}
	if req.CustomerID == "" {
		writeError(w, apperrors.MissingRequired("customerId"))
		return
	}
	if req.BusinessID == "" {
		writeError(w, apperrors.MissingRequired("businessId"))
		return
	}

	var actorID *string
	if req.ActorID != "" {
		actorID = &req.ActorID
	}

	email, err := h.access.SendInvite(r.Context(), service.SendInviteParams{
		CustomerID:   req.CustomerID,
		BusinessID:   req.BusinessID,
		Email:        req.Email,
		CustomerName: req.CustomerName,
		ActorID:      actorID,
	}, audit.MetaFromRequest(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Portal invite sent",
		"email":   email,
	})
}

func (h *PortalAuthHandler) revokeAccess(w http.ResponseWriter, r *http.Request, req authRequest) {
	if !h.staffAuth.Verify(r) {
		writeError(w, apperrors.Unauthorized("Invalid API key"))
		return
	}
	if req.CustomerID == "" {
		writeError(w, apperrors.MissingRequired("customerId"))
		return
	}
	if req.BusinessID == "" {
		writeError(w, apperrors.MissingRequired("businessId"))
		return
	}

	var actorID *string
	if req.ActorID != "" {
		actorID = &req.ActorID
	}

	if err := h.access.RevokeAccess(r.Context(), req.CustomerID, req.BusinessID, actorID, audit.MetaFromRequest(r)); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Portal access revoked",
	})
}

func writeRateLimited(w http.ResponseWriter, resetAt time.Time) {
	secondsLeft := int(time.Until(resetAt).Seconds()) + 1
	w.Header().Set("Retry-After", fmt.Sprintf("%d", secondsLeft))
	writeError(w, apperrors.RateLimitExceeded())
}
