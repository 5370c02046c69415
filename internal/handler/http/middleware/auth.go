package middleware

import (
	"net/http"

	"github.com/cmlabs-hris/assetverse-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/assetverse-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/assetverse-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/assetverse-backend-go/internal/pkg/validator"
	"github.com/go-chi/jwtauth/v5"
)

// AuthRequired turns the token verified by jwtauth.Verifier into an
// auth.Principal. Requests without a valid access token stop here with 401.
func AuthRequired(next http.Handler) http.Handler {
	hfn := func(w http.ResponseWriter, r *http.Request) {
		token, _, err := jwtauth.FromContext(r.Context())
		if err != nil || token == nil {
			response.HandleError(w, auth.ErrInvalidToken)
			return
		}

		email, err := jwt.EmailFromToken(token)
		if err != nil {
			response.HandleError(w, auth.ErrInvalidToken)
			return
		}

		ctx := auth.WithPrincipal(r.Context(), auth.Principal{Email: validator.NormalizeEmail(email)})
		next.ServeHTTP(w, r.WithContext(ctx))
	}
	return http.HandlerFunc(hfn)
}
