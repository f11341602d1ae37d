package logout_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/dalemusser/crms/internal/app/features/logout"
	"github.com/dalemusser/crms/internal/app/store/revocations"
	userstore "github.com/dalemusser/crms/internal/app/store/users"
	"github.com/dalemusser/crms/internal/app/system/auth"
	"github.com/dalemusser/crms/internal/app/workflow/authn"
	"github.com/dalemusser/crms/internal/testutil"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func setup(t *testing.T) (http.Handler, *authn.Authenticator, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	t.Cleanup(mr.Close)
	rev := revocations.New(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "crms")

	tokens := auth.NewTokenManager("test-secret-that-is-long-enough-for-hs256", 24*time.Hour)
	a := authn.New(userstore.New(db), tokens, rev, nil, logger, authn.Config{BcryptCost: bcrypt.MinCost})
	mw := auth.NewMiddleware(a, logger)
	return logout.Routes(logout.NewHandler(a, logger), mw), a, testutil.NewFixtures(t, db)
}

func TestHandleLogout_RevokesToken(t *testing.T) {
	router, a, fixtures := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fixtures.CreateOfficer(ctx, "officer1")

	res, err := a.Authenticate(ctx, "officer1", "police123", "police")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}

	do := func() *testutil.ResponseRecorder {
		req := testutil.NewJSONRequest(t, "POST", "/", nil)
		req.Header.Set("Authorization", "Bearer "+res.Token)
		rec := testutil.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	rec := do()
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "Logged out successfully")

	// The same token is now refused by the middleware.
	do().AssertStatus(t, http.StatusUnauthorized)
}

func TestHandleLogout_RequiresToken(t *testing.T) {
	router, _, _ := setup(t)

	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewJSONRequest(t, "POST", "/", nil))
	rec.AssertStatus(t, http.StatusUnauthorized)
}
