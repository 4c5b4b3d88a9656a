package routes

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/themrgeek/AbodeX/utils"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

// buildRBACTestApp wires the real role middlewares behind stub handlers so
// authorization can be exercised without a database.
func buildRBACTestApp() *iris.Application {
	os.Setenv("ACCESS_TOKEN_SECRET", "access-test-secret")
	os.Setenv("ADMIN_TOKEN_SECRET", "admin-test-secret")

	app := iris.New()

	ok := func(ctx iris.Context) {
		ctx.JSON(iris.Map{"status": "ok"})
	}

	accessTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("ACCESS_TOKEN_SECRET")))
	accessTokenVerifierMiddleware := accessTokenVerifier.Verify(func() interface{} { return new(utils.AccessToken) })

	adminTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("ADMIN_TOKEN_SECRET")))
	adminTokenVerifierMiddleware := adminTokenVerifier.Verify(func() interface{} { return new(utils.AccessToken) })

	host := app.Party("/api/host", accessTokenVerifierMiddleware, utils.HostOnlyMiddleware)
	{
		host.Get("/dashboard", ok)
	}

	admin := app.Party("/api/admin", adminTokenVerifierMiddleware, utils.AdminOnlyMiddleware)
	{
		admin.Get("/stats", ok)
	}

	if err := app.Build(); err != nil {
		panic(err)
	}

	return app
}

func signRBACToken(secret, role string) string {
	signer := jwt.NewSigner(jwt.HS256, secret, 0)
	token, _ := signer.Sign(utils.AccessToken{ID: "64b0f3a1c2d4e5f678901234", Role: role})
	return string(token)
}

func doRBACRequest(app *iris.Application, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)
	return resp
}

func TestHostRoutesRBAC(t *testing.T) {
	app := buildRBACTestApp()

	if resp := doRBACRequest(app, "/api/host/dashboard", ""); resp.Code == http.StatusOK {
		t.Fatalf("expected non-200 without token, got %d", resp.Code)
	}

	guestToken := signRBACToken(os.Getenv("ACCESS_TOKEN_SECRET"), "guest")
	if resp := doRBACRequest(app, "/api/host/dashboard", guestToken); resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for guest role, got %d", resp.Code)
	}

	hostToken := signRBACToken(os.Getenv("ACCESS_TOKEN_SECRET"), "host")
	if resp := doRBACRequest(app, "/api/host/dashboard", hostToken); resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for host role, got %d", resp.Code)
	}
}

func TestAdminRoutesRequireAdminSecret(t *testing.T) {
	app := buildRBACTestApp()

	// A token claiming the admin role but signed with the regular access
	// secret must fail verification outright.
	forged := signRBACToken(os.Getenv("ACCESS_TOKEN_SECRET"), "admin")
	if resp := doRBACRequest(app, "/api/admin/stats", forged); resp.Code == http.StatusOK {
		t.Fatalf("expected rejection for access-secret token on admin route, got %d", resp.Code)
	}

	adminToken := signRBACToken(os.Getenv("ADMIN_TOKEN_SECRET"), "admin")
	if resp := doRBACRequest(app, "/api/admin/stats", adminToken); resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin token, got %d", resp.Code)
	}
}
