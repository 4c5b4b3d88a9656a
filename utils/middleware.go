package utils

import (
	"github.com/themrgeek/AbodeX/models"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

// HostOnlyMiddleware ensures the requester carries the host role.
func HostOnlyMiddleware(ctx iris.Context) {
	claims := jwt.Get(ctx).(*AccessToken)
	if claims.Role != models.RoleHost {
		ctx.StatusCode(iris.StatusForbidden)
		ctx.JSON(iris.Map{"error": "forbidden", "message": "host access required"})
		return
	}
	ctx.Values().Set("userID", claims.ID)
	ctx.Next()
}

// AdminOnlyMiddleware ensures the requester carries the admin role. Admin
// tokens are additionally verified against their own secret upstream.
func AdminOnlyMiddleware(ctx iris.Context) {
	claims := jwt.Get(ctx).(*AccessToken)
	if claims.Role != models.RoleAdmin {
		ctx.StatusCode(iris.StatusForbidden)
		ctx.JSON(iris.Map{"error": "forbidden", "message": "admin access required"})
		return
	}
	ctx.Values().Set("userID", claims.ID)
	ctx.Next()
}
