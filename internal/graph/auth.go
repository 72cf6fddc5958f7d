package graph

import (
	"context"

	"github.com/classboard/classboard-api/internal/models"
	appErrors "github.com/classboard/classboard-api/pkg/errors"
)

type viewerContextKey struct{}

// WithViewer attaches resolved token claims to the request context.
func WithViewer(ctx context.Context, claims *models.TokenClaims) context.Context {
	return context.WithValue(ctx, viewerContextKey{}, claims)
}

// ViewerFrom returns the caller's claims, or nil for anonymous requests.
func ViewerFrom(ctx context.Context) *models.TokenClaims {
	claims, _ := ctx.Value(viewerContextKey{}).(*models.TokenClaims)
	return claims
}

// RequireViewer is the access gate for mutations: every mutation except signup
// and login calls it before touching the store. There are no roles; any valid
// token grants all mutation rights.
func RequireViewer(ctx context.Context) (*models.TokenClaims, error) {
	claims := ViewerFrom(ctx)
	if claims == nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthenticated, "authentication required")
	}
	return claims, nil
}
