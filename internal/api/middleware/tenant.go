package middleware

import (
	"context"
	"net/http"
	"strings"

	apiContext "confmgr/internal/api/context"
	"confmgr/internal/pkg/errors"
	"confmgr/internal/platform/repositories"
)

// TenantContext identifies the organization a request was addressed to,
// resolved from the host name against the domain allow-list. It carries no
// authority: room authorization is decided by the engine, organization
// management by owner/admin checks against the acting user.
type TenantContext struct {
	OrgID   string
	OrgName string
	FQDN    string
}

type TenantMiddleware struct {
	orgRepo *repositories.OrganizationRepository
}

func NewTenantMiddleware(orgRepo *repositories.OrganizationRepository) *TenantMiddleware {
	return &TenantMiddleware{orgRepo: orgRepo}
}

func (m *TenantMiddleware) Handle(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fqdn := requestFQDN(r)
		if fqdn == "" {
			errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Missing request host", nil)
			return
		}

		org, err := m.orgRepo.GetByFQDN(fqdn)
		if err != nil {
			errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to resolve organization", nil)
			return
		}
		if org == nil {
			errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Unknown organization domain", nil)
			return
		}

		ctx := context.WithValue(r.Context(), apiContext.Tenant, &TenantContext{
			OrgID:   org.ID,
			OrgName: org.Name,
			FQDN:    fqdn,
		})

		next(w, r.WithContext(ctx))
	}
}

// requestFQDN strips any port from the host header.
func requestFQDN(r *http.Request) string {
	host := r.Host
	if idx := strings.LastIndex(host, ":"); idx != -1 && !strings.Contains(host[idx:], "]") {
		host = host[:idx]
	}
	return strings.ToLower(strings.TrimSuffix(host, "."))
}
