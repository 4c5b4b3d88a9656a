package utils

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/kataras/iris/v12"
)

// HandleValidationErrors converts validator failures into a 400 with
// per-field messages; anything else becomes a generic bad-request.
func HandleValidationErrors(err error, ctx iris.Context) {
	if errs, ok := err.(validator.ValidationErrors); ok {
		fields := make([]iris.Map, 0, len(errs))
		for _, fieldErr := range errs {
			fields = append(fields, iris.Map{
				"field":   fieldErr.Field(),
				"message": fmt.Sprintf("failed on the '%s' rule", fieldErr.Tag()),
			})
		}
		ctx.StatusCode(iris.StatusBadRequest)
		ctx.JSON(iris.Map{"error": "Validation Error", "fields": fields})
		return
	}

	CreateError(iris.StatusBadRequest, "Bad Request", "Invalid request body.", ctx)
}
