package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/themrgeek/AbodeX/routes"
	"github.com/themrgeek/AbodeX/services"
	"github.com/themrgeek/AbodeX/storage"
	"github.com/themrgeek/AbodeX/utils"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

func main() {
	godotenv.Load()

	storage.InitializeDB()
	storage.InitializeS3()
	storage.InitializeRedis()

	app := iris.New()
	app.Validator = validator.New()

	// CORS configuration
	app.AllowMethods(iris.MethodOptions)
	app.UseRouter(func(ctx iris.Context) {
		ctx.Header("Access-Control-Allow-Origin", ctx.GetHeader("Origin"))
		ctx.Header("Vary", "Origin")
		ctx.Header("Access-Control-Allow-Credentials", "true")
		ctx.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Requested-With")
		ctx.Header("Access-Control-Allow-Methods", "GET,POST,PATCH,PUT,DELETE,OPTIONS")
		if ctx.Method() == iris.MethodOptions {
			ctx.StatusCode(iris.StatusNoContent)
			return
		}
		ctx.Next()
	})

	app.Use(iris.Compression)

	// JWT verifiers. Admin tokens are signed with their own secret; a regular
	// access token can never pass the admin verifier.
	accessTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("ACCESS_TOKEN_SECRET")))
	accessTokenVerifier.WithDefaultBlocklist()
	accessTokenVerifierMiddleware := accessTokenVerifier.Verify(func() interface{} {
		return new(utils.AccessToken)
	})

	adminTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("ADMIN_TOKEN_SECRET")))
	adminTokenVerifier.WithDefaultBlocklist()
	adminTokenVerifierMiddleware := adminTokenVerifier.Verify(func() interface{} {
		return new(utils.AccessToken)
	})

	refreshTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("REFRESH_TOKEN_SECRET")))
	refreshTokenVerifier.WithDefaultBlocklist()
	refreshTokenVerifierMiddleware := refreshTokenVerifier.Verify(func() interface{} {
		return new(jwt.Claims)
	})

	refreshTokenVerifier.Extractors = append(refreshTokenVerifier.Extractors, func(ctx iris.Context) string {
		var tokenInput utils.RefreshTokenInput
		err := ctx.ReadJSON(&tokenInput)
		if err != nil {
			return ""
		}
		return tokenInput.RefreshToken
	})

	app.Get("/health", func(ctx iris.Context) {
		ctx.JSON(iris.Map{"status": "ok"})
	})

	auth := app.Party("/api/auth")
	{
		auth.Post("/register", routes.Register)
		auth.Post("/login", routes.Login)
		auth.Post("/admin/login", routes.AdminLogin)
		auth.Post("/verify-email", routes.VerifyEmail)
		auth.Post("/forgot-password", routes.ForgotPassword)
		auth.Post("/reset-password", routes.ResetPassword)
		auth.Get("/me", accessTokenVerifierMiddleware, routes.Me)
		auth.Post("/become-host", accessTokenVerifierMiddleware, routes.BecomeHost)
		auth.Post("/refresh", refreshTokenVerifierMiddleware, utils.RefreshToken)
	}

	guest := app.Party("/api/guest")
	{
		guest.Get("/properties", routes.SearchProperties)
		guest.Get("/properties/{id}", routes.GetProperty)
		guest.Get("/properties/{id}/reviews", routes.ListPropertyReviews)
		guest.Post("/bookings", accessTokenVerifierMiddleware, routes.CreateBooking)
		guest.Post("/bookings/{id}/confirm", accessTokenVerifierMiddleware, routes.ConfirmBooking)
		guest.Get("/bookings", accessTokenVerifierMiddleware, routes.GetMyBookings)
		guest.Delete("/bookings/{id}", accessTokenVerifierMiddleware, routes.CancelBooking)
		guest.Post("/reviews", accessTokenVerifierMiddleware, routes.CreateReview)
	}

	host := app.Party("/api/host", accessTokenVerifierMiddleware, utils.HostOnlyMiddleware)
	{
		host.Get("/dashboard", routes.GetHostDashboard)
		host.Post("/properties", routes.CreateProperty)
		host.Get("/properties", routes.GetHostProperties)
		host.Patch("/properties/{id}", routes.UpdateProperty)
		host.Delete("/properties/{id}", routes.DeleteProperty)
		host.Put("/properties/{id}/availability", routes.SetAvailability)
		host.Post("/properties/{id}/discounts", routes.AddDiscount)
		host.Get("/bookings", routes.GetHostBookings)
		host.Patch("/bookings/{id}/status", routes.UpdateBookingStatus)
		host.Post("/reviews/{id}/reply", routes.ReplyToReview)
	}

	admin := app.Party("/api/admin", adminTokenVerifierMiddleware, utils.AdminOnlyMiddleware)
	{
		admin.Get("/stats", routes.GetAdminStats)
		admin.Get("/users", routes.ListUsers)
		admin.Get("/hosts", routes.ListHosts)
		admin.Get("/properties", routes.ListAllProperties)
		admin.Get("/bookings", routes.ListAllBookings)
		admin.Post("/hosts/{id}/verify", routes.VerifyHost)
		admin.Patch("/properties/{id}/status", routes.SetPropertyStatus)
		admin.Post("/hosts/retag", routes.RetagHosts)
	}

	// Host tags and derived availability windows refresh in the background,
	// never on a request path.
	ranking := services.NewRankingService()
	ranking.Start(context.Background(), time.Hour)

	port := os.Getenv("PORT")
	if port == "" {
		port = "4000"
	}
	addr := "0.0.0.0:" + port

	fmt.Printf("Server starting on %s\n", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
