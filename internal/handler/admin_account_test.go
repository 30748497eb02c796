package handler

import (
	"net/http"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/investor-portal/internal/cache"
	"github.com/iliyamo/investor-portal/internal/config"
	"github.com/iliyamo/investor-portal/internal/credential"
	"github.com/iliyamo/investor-portal/internal/model"
)

func newAdminHandler(accounts *fakeAccounts, props *fakeProperties, cs cache.Store) *AdminHandler {
	return NewAdminHandler(testConfig(), accounts, props, cs, config.LoadCacheConfig())
}

func TestProvisionClientReturnsCredentialsOnce(t *testing.T) {
	t.Parallel()
	accounts := newFakeAccounts()
	cs := newFakeCache()
	h := newAdminHandler(accounts, &fakeProperties{}, cs)

	rec := invoke(t, h.Provision, `{"role":"client"}`, "1.2.3.4")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, model.StatusPending, body["status"])

	creds := body["credentials"].(map[string]any)
	code := creds["userId"].(string)
	key := creds["accessKey"].(string)
	token := creds["accessToken"].(string)
	assert.True(t, strings.HasPrefix(code, "INV-"))
	assert.Len(t, key, 32)
	assert.Len(t, token, 48)

	// Only hashed forms reach the store, and they verify against the
	// plaintext returned to the caller.
	a, err := accounts.GetByCode(t.Context(), code)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(a.AccessKeyHash, "$2"))
	assert.True(t, strings.HasPrefix(a.EnlistTokenHash, "$2"))
	assert.NotEqual(t, key, a.AccessKeyHash)
	assert.True(t, credential.Verify(key, a.AccessKeyHash))
	assert.True(t, credential.Verify(token, a.EnlistTokenHash))
	assert.False(t, a.TokenConsumed)
}

func TestProvisionNonClientRolesStartActive(t *testing.T) {
	t.Parallel()
	accounts := newFakeAccounts()
	h := newAdminHandler(accounts, &fakeProperties{}, newFakeCache())

	for _, role := range []string{"AGENT", "ADMIN"} {
		rec := invoke(t, h.Provision, `{"role":"`+role+`"}`, "1.2.3.4")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, model.StatusActive, decodeBody(t, rec)["status"], role)
	}

	rec := invoke(t, h.Provision, `{"role":"OVERLORD"}`, "1.2.3.4")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProvisionInvalidatesOverview(t *testing.T) {
	t.Parallel()
	accounts := newFakeAccounts()
	props := &fakeProperties{}
	cs := newFakeCache()
	h := newAdminHandler(accounts, props, cs)

	// Warm the overview cache.
	rec := invoke(t, h.Overview, ``, "1.2.3.4")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	rec = invoke(t, h.Overview, ``, "1.2.3.4")
	require.Equal(t, "HIT", rec.Header().Get("X-Cache"))

	rec = invoke(t, h.Provision, `{"role":"CLIENT"}`, "1.2.3.4")
	require.Equal(t, http.StatusOK, rec.Code)

	// The write dropped the aggregate; the next read recomputes.
	rec = invoke(t, h.Overview, ``, "1.2.3.4")
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	ov := decodeBody(t, rec)
	counts := ov["accounts"].(map[string]any)
	assert.Equal(t, float64(1), counts[model.StatusPending])
}

func TestApproveLifecycle(t *testing.T) {
	t.Parallel()
	accounts := newFakeAccounts()
	code, _, _ := seedClient(t, accounts)
	a, err := accounts.GetByCode(t.Context(), code)
	require.NoError(t, err)
	id := strconv.FormatUint(a.ID, 10)
	h := newAdminHandler(accounts, &fakeProperties{}, newFakeCache())

	rec := invoke(t, h.Approve, ``, "1.2.3.4", "id", id)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decodeBody(t, rec)["changed"])

	// Approving an active account is a no-op, not an error.
	rec = invoke(t, h.Approve, ``, "1.2.3.4", "id", id)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decodeBody(t, rec)["changed"])

	// An active account cannot be rejected.
	rec = invoke(t, h.Reject, ``, "1.2.3.4", "id", id)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = invoke(t, h.Approve, ``, "1.2.3.4", "id", "9999")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRejectThenReactivate(t *testing.T) {
	t.Parallel()
	accounts := newFakeAccounts()
	code, _, _ := seedClient(t, accounts)
	a, err := accounts.GetByCode(t.Context(), code)
	require.NoError(t, err)
	id := strconv.FormatUint(a.ID, 10)
	h := newAdminHandler(accounts, &fakeProperties{}, newFakeCache())

	rec := invoke(t, h.Reject, ``, "1.2.3.4", "id", id)
	require.Equal(t, http.StatusOK, rec.Code)

	a, _ = accounts.GetByID(t.Context(), a.ID)
	require.Equal(t, model.StatusRejected, a.Status)

	// REJECTED -> ACTIVE stays reachable as a re-activation path.
	rec = invoke(t, h.Approve, ``, "1.2.3.4", "id", id)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decodeBody(t, rec)["changed"])

	a, _ = accounts.GetByID(t.Context(), a.ID)
	assert.Equal(t, model.StatusActive, a.Status)
}
