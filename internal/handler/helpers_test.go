package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/investor-portal/internal/config"
	"github.com/iliyamo/investor-portal/internal/credential"
	"github.com/iliyamo/investor-portal/internal/model"
	"github.com/iliyamo/investor-portal/internal/ratelimit"
)

// Low bcrypt cost keeps the workflow tests fast.
const testCost = 4

func testConfig() config.Config {
	return config.Config{JWTSecret: "test-secret", SessionTTLMin: 15, BcryptCost: testCost}
}

func testLimits(maxAttempts int) config.AbuseLimits {
	cfg := ratelimit.Config{Window: time.Minute, MaxAttempts: maxAttempts, Block: time.Minute}
	return config.AbuseLimits{Login: cfg, Enlist: cfg, Status: cfg}
}

// invoke runs an echo handler against a synthetic JSON request and returns
// the recorder. Path params may be supplied as alternating name/value pairs.
func invoke(t *testing.T, fn echo.HandlerFunc, body, ip string, params ...string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.RemoteAddr = ip + ":51724"
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	for i := 0; i+1 < len(params); i += 2 {
		c.SetParamNames(params[i])
		c.SetParamValues(params[i+1])
	}
	// assert instead of require: invoke runs inside goroutines in the
	// concurrency tests and FailNow is not goroutine-safe.
	assert.NoError(t, fn(c))
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	return m
}

// seedClient provisions a PENDING client account directly into the fake
// store and returns the plaintext credential triple.
func seedClient(t *testing.T, accounts *fakeAccounts) (code, key, token string) {
	t.Helper()
	code, key, token = seedAccount(t, accounts, model.RoleClient, model.StatusPending)
	return
}

func seedAccount(t *testing.T, accounts *fakeAccounts, role, status string) (code, key, token string) {
	t.Helper()
	var err error
	code, err = credential.NewUserCode()
	require.NoError(t, err)
	key, err = credential.NewAccessKey()
	require.NoError(t, err)
	token, err = credential.NewEnlistToken()
	require.NoError(t, err)

	keyHash, err := credential.Hash(key, testCost)
	require.NoError(t, err)
	tokenHash, err := credential.Hash(token, testCost)
	require.NoError(t, err)

	a := model.Account{
		UserCode:        code,
		AccessKeyHash:   keyHash,
		EnlistTokenHash: tokenHash,
		Role:            role,
		Status:          status,
	}
	require.NoError(t, accounts.Create(t.Context(), &a))
	return
}
