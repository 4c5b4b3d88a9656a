package utils

import (
	"github.com/kataras/iris/v12"
)

type PageMeta struct {
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
	Total   int64 `json:"total"`
}

func JSONPage(ctx iris.Context, data interface{}, page, perPage int, total int64) {
	ctx.JSON(iris.Map{
		"data": data,
		"meta": PageMeta{Page: page, PerPage: perPage, Total: total},
	})
}

func CreateError(statusCode int, title, detail string, ctx iris.Context) {
	ctx.StatusCode(statusCode)
	ctx.JSON(iris.Map{"error": title, "message": detail})
}

func CreateNotFound(ctx iris.Context) {
	CreateError(iris.StatusNotFound, "Not Found", "Resource not found.", ctx)
}

func CreateInternalServerError(ctx iris.Context) {
	CreateError(iris.StatusInternalServerError, "Internal Server Error", "An unexpected error occurred.", ctx)
}

func CreateEmailAlreadyRegistered(ctx iris.Context) {
	CreateError(iris.StatusConflict, "Registration Error", "Email already registered.", ctx)
}

// InternalError logs the underlying failure server-side and returns the
// generic 500 body; clients never see store or service errors.
func InternalError(ctx iris.Context, err error) {
	Logger().Errorw("request failed", "path", ctx.Path(), "error", err)
	CreateInternalServerError(ctx)
}
