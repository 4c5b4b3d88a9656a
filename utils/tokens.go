package utils

import (
	"context"
	"crypto/rand"
	"os"
	"time"

	"github.com/themrgeek/AbodeX/models"
	"github.com/themrgeek/AbodeX/storage"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var bgContext = context.Background()

type AccessToken struct {
	ID   string `json:"ID"`
	Role string `json:"role"`
}

type RefreshTokenInput struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// SecretForRole maps a role class to its verification key. The admin surface
// is verified against a separate secret from everything else, so an ordinary
// access token can never pass admin verification regardless of its claims.
func SecretForRole(role string) string {
	if role == models.RoleAdmin {
		return os.Getenv("ADMIN_TOKEN_SECRET")
	}
	return os.Getenv("ACCESS_TOKEN_SECRET")
}

func CreateTokenPair(userID, role string) (*jwt.TokenPair, error) {
	accessTokenSigner := jwt.NewSigner(jwt.HS256, SecretForRole(role), 24*time.Hour)
	refreshTokenSigner := jwt.NewSigner(jwt.HS256, os.Getenv("REFRESH_TOKEN_SECRET"), 365*24*time.Hour)

	accessToken, err := accessTokenSigner.Sign(AccessToken{ID: userID, Role: role})
	if err != nil {
		return nil, err
	}

	refreshToken, err := refreshTokenSigner.Sign(jwt.Claims{Subject: userID})
	if err != nil {
		return nil, err
	}

	var tokenPair jwt.TokenPair
	tokenPair.AccessToken = accessToken
	tokenPair.RefreshToken = refreshToken

	// Refresh tokens are allow-listed in redis and rotated on use.
	storage.Redis.Set(bgContext, string(refreshToken), "true", 365*24*time.Hour+5*time.Minute)

	return &tokenPair, nil
}

func RefreshToken(ctx iris.Context) {
	token := jwt.GetVerifiedToken(ctx)
	tokenStr := string(token.Token)

	validToken, tokenErr := storage.Redis.Get(bgContext, tokenStr).Result()
	if tokenErr != nil {
		CreateNotFound(ctx)
		return
	}
	if validToken != "true" {
		ctx.StatusCode(iris.StatusForbidden)
		return
	}

	storage.Redis.Del(bgContext, tokenStr)

	userID, idErr := primitive.ObjectIDFromHex(token.StandardClaims.Subject)
	if idErr != nil {
		CreateInternalServerError(ctx)
		return
	}

	// Reload the role so an elevation to host survives the refresh.
	var user models.User
	if err := storage.Users.FindOne(bgContext, bson.M{"_id": userID}).Decode(&user); err != nil {
		CreateNotFound(ctx)
		return
	}

	tokenPair, tokenPairErr := CreateTokenPair(user.ID.Hex(), user.Role)
	if tokenPairErr != nil {
		CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{
		"accessToken":  string(tokenPair.AccessToken),
		"refreshToken": string(tokenPair.RefreshToken),
	})
}

// GenerateShortToken returns a URL-safe random string of the given length (bytes*2 hex).
func GenerateShortToken(n int) string {
	b := make([]byte, n)
	_, err := rand.Read(b)
	if err != nil {
		return ""
	}
	const hex = "0123456789abcdef"
	out := make([]byte, n*2)
	for i, v := range b {
		out[i*2] = hex[v>>4]
		out[i*2+1] = hex[v&0x0f]
	}
	return string(out)
}
