package v1

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stacklok/mcp-gateway/pkg/auth"
	gwerrors "github.com/stacklok/mcp-gateway/pkg/errors"
)

type tokenRequest struct {
	APIKey string `json:"api_key"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type authRoutes struct {
	service *auth.Service
}

// AuthRouter mounts the unauthenticated token-exchange endpoint: an api_key
// in, a bearer token out.
func AuthRouter(service *auth.Service) http.Handler {
	routes := &authRoutes{service: service}
	r := chi.NewRouter()
	r.Post("/token", gwerrors.ErrorHandler(routes.issueToken))
	return r
}

func (a *authRoutes) issueToken(w http.ResponseWriter, r *http.Request) error {
	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return gwerrors.NewBadRequestError("malformed request body", err)
	}
	if req.APIKey == "" {
		return gwerrors.NewBadRequestError("api_key is required", nil)
	}

	token, expiresIn, err := a.service.Authenticate(r.Context(), req.APIKey)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(tokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   expiresIn,
	})
}
