package tenants

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/tenantauth/internal/http/errors"
)

func ptr(s string) *string { return &s }

func fieldsOf(t *testing.T, err error) []string {
	t.Helper()
	var appErr *errors.AppError
	require.ErrorAs(t, err, &appErr)
	out := make([]string, 0, len(appErr.Fields))
	for _, f := range appErr.Fields {
		out = append(out, f.Field)
	}
	return out
}

func TestCreateTenantRequest(t *testing.T) {
	req := CreateTenantRequest{
		Name:    "  Acme  ",
		Domain:  ptr(" ACME.com "),
		Address: " Main St 123 ",
		Phone:   "+54 11 5555-0000",
	}
	req.Normalize()
	assert.Equal(t, "Acme", req.Name)
	require.NotNil(t, req.Domain)
	assert.Equal(t, "acme.com", *req.Domain)
	assert.NoError(t, req.Validate())

	blank := CreateTenantRequest{Domain: ptr("   ")}
	blank.Normalize()
	assert.Nil(t, blank.Domain)
	assert.ElementsMatch(t, []string{"name", "address", "phone"}, fieldsOf(t, blank.Validate()))

	bad := CreateTenantRequest{Name: "Acme", Domain: ptr("-acme"), Address: "x", Phone: "12ab"}
	assert.ElementsMatch(t, []string{"domain", "phone"}, fieldsOf(t, bad.Validate()))
}

func TestUpdateTenantRequest(t *testing.T) {
	assert.True(t, UpdateTenantRequest{}.Empty())

	unset := UpdateTenantRequest{Domain: ptr("  ")}
	unset.Normalize()
	assert.False(t, unset.Empty())
	assert.Equal(t, "", *unset.Domain)
	assert.NoError(t, unset.Validate())

	bad := UpdateTenantRequest{Name: ptr(" "), Phone: ptr("123")}
	bad.Normalize()
	assert.ElementsMatch(t, []string{"name", "phone"}, fieldsOf(t, bad.Validate()))
}
