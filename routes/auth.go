package routes

import (
	"context"
	"strings"
	"time"

	"github.com/themrgeek/AbodeX/models"
	"github.com/themrgeek/AbodeX/services"
	"github.com/themrgeek/AbodeX/storage"
	"github.com/themrgeek/AbodeX/utils"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

type RegisterUserInput struct {
	FirstName string `json:"firstName" validate:"required,max=256"`
	LastName  string `json:"lastName" validate:"required,max=256"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8,max=256"`
	Phone     string `json:"phone" validate:"omitempty,max=32"`
}

type LoginUserInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type VerifyEmailInput struct {
	Email string `json:"email" validate:"required,email"`
	Token string `json:"token" validate:"required"`
}

type ForgotPasswordInput struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordInput struct {
	Email       string `json:"email" validate:"required,email"`
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8,max=256"`
}

type BecomeHostInput struct {
	GovernmentIDImage string `json:"governmentIDImage" validate:"required"`
}

var bgContext = context.Background()

func getAndHandleUserExists(user *models.User, email string) (bool, error) {
	err := storage.Users.FindOne(bgContext, bson.M{"email": strings.ToLower(email)}).Decode(user)
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func hashAndSaltPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func returnUser(user models.User, ctx iris.Context) {
	tokenPair, err := utils.CreateTokenPair(user.ID.Hex(), user.Role)
	if err != nil {
		utils.InternalError(ctx, err)
		return
	}

	ctx.JSON(iris.Map{
		"user":         user,
		"accessToken":  string(tokenPair.AccessToken),
		"refreshToken": string(tokenPair.RefreshToken),
	})
}

func Register(ctx iris.Context) {
	var userInput RegisterUserInput
	if err := ctx.ReadJSON(&userInput); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var newUser models.User
	userExists, userExistsErr := getAndHandleUserExists(&newUser, userInput.Email)
	if userExistsErr != nil {
		utils.InternalError(ctx, userExistsErr)
		return
	}
	if userExists {
		utils.CreateEmailAlreadyRegistered(ctx)
		return
	}

	hashedPassword, hashErr := hashAndSaltPassword(userInput.Password)
	if hashErr != nil {
		utils.InternalError(ctx, hashErr)
		return
	}

	now := time.Now()
	newUser = models.User{
		FirstName:   userInput.FirstName,
		LastName:    userInput.LastName,
		Email:       strings.ToLower(userInput.Email),
		Password:    hashedPassword,
		Phone:       userInput.Phone,
		Role:        models.RoleGuest,
		VerifyToken: utils.GenerateShortToken(16),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	res, err := storage.Users.InsertOne(ctx.Request().Context(), newUser)
	if err != nil {
		utils.InternalError(ctx, err)
		return
	}
	newUser.ID = res.InsertedID.(primitive.ObjectID)

	if err := services.SendVerificationEmail(newUser.Email, newUser.FirstName, newUser.VerifyToken); err != nil {
		utils.InternalError(ctx, err)
		return
	}

	returnUser(newUser, ctx)
}

func Login(ctx iris.Context) {
	var userInput LoginUserInput
	if err := ctx.ReadJSON(&userInput); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	errorMsg := "Invalid email or password."
	var existingUser models.User
	userExists, userExistsErr := getAndHandleUserExists(&existingUser, userInput.Email)
	if userExistsErr != nil {
		utils.InternalError(ctx, userExistsErr)
		return
	}
	if !userExists {
		utils.CreateError(iris.StatusUnauthorized, "Credentials Error", errorMsg, ctx)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(existingUser.Password), []byte(userInput.Password)); err != nil {
		utils.CreateError(iris.StatusUnauthorized, "Credentials Error", errorMsg, ctx)
		return
	}

	returnUser(existingUser, ctx)
}

// AdminLogin issues tokens signed with the admin secret; the admin surface
// verifies against that secret only.
func AdminLogin(ctx iris.Context) {
	var userInput LoginUserInput
	if err := ctx.ReadJSON(&userInput); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	errorMsg := "Invalid email or password."
	var existingUser models.User
	userExists, userExistsErr := getAndHandleUserExists(&existingUser, userInput.Email)
	if userExistsErr != nil {
		utils.InternalError(ctx, userExistsErr)
		return
	}
	if !userExists || existingUser.Role != models.RoleAdmin {
		utils.CreateError(iris.StatusUnauthorized, "Credentials Error", errorMsg, ctx)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(existingUser.Password), []byte(userInput.Password)); err != nil {
		utils.CreateError(iris.StatusUnauthorized, "Credentials Error", errorMsg, ctx)
		return
	}

	returnUser(existingUser, ctx)
}

func VerifyEmail(ctx iris.Context) {
	var input VerifyEmailInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	res, err := storage.Users.UpdateOne(ctx.Request().Context(),
		bson.M{"email": strings.ToLower(input.Email), "verifyToken": input.Token},
		bson.M{
			"$set":   bson.M{"verified": true, "updatedAt": time.Now()},
			"$unset": bson.M{"verifyToken": ""},
		},
	)
	if err != nil {
		utils.InternalError(ctx, err)
		return
	}
	if res.MatchedCount == 0 {
		utils.CreateError(iris.StatusBadRequest, "Verification Error", "Invalid verification code.", ctx)
		return
	}

	ctx.JSON(iris.Map{"message": "Email verified."})
}

func ForgotPassword(ctx iris.Context) {
	var input ForgotPasswordInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var user models.User
	userExists, userExistsErr := getAndHandleUserExists(&user, input.Email)
	if userExistsErr != nil {
		utils.InternalError(ctx, userExistsErr)
		return
	}

	// Same response either way so the endpoint cannot be used to probe
	// for registered addresses.
	if userExists {
		token := utils.GenerateShortToken(16)
		expiry := time.Now().Add(10 * time.Minute)

		_, err := storage.Users.UpdateByID(ctx.Request().Context(), user.ID, bson.M{
			"$set": bson.M{"resetToken": token, "resetTokenExpiry": expiry, "updatedAt": time.Now()},
		})
		if err != nil {
			utils.InternalError(ctx, err)
			return
		}

		if err := services.SendPasswordResetEmail(user.Email, user.FirstName, token); err != nil {
			utils.InternalError(ctx, err)
			return
		}
	}

	ctx.JSON(iris.Map{"message": "If that email is registered, a reset code has been sent."})
}

func ResetPassword(ctx iris.Context) {
	var input ResetPasswordInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	hashedPassword, hashErr := hashAndSaltPassword(input.NewPassword)
	if hashErr != nil {
		utils.InternalError(ctx, hashErr)
		return
	}

	res, err := storage.Users.UpdateOne(ctx.Request().Context(),
		bson.M{
			"email":            strings.ToLower(input.Email),
			"resetToken":       input.Token,
			"resetTokenExpiry": bson.M{"$gt": time.Now()},
		},
		bson.M{
			"$set":   bson.M{"password": hashedPassword, "updatedAt": time.Now()},
			"$unset": bson.M{"resetToken": "", "resetTokenExpiry": ""},
		},
	)
	if err != nil {
		utils.InternalError(ctx, err)
		return
	}
	if res.MatchedCount == 0 {
		utils.CreateError(iris.StatusBadRequest, "Reset Error", "Invalid or expired reset code.", ctx)
		return
	}

	ctx.JSON(iris.Map{"message": "Password updated."})
}

func Me(ctx iris.Context) {
	userID, err := currentUserID(ctx)
	if err != nil {
		utils.CreateError(iris.StatusUnauthorized, "Token Error", "Invalid token subject.", ctx)
		return
	}

	var user models.User
	if err := storage.Users.FindOne(ctx.Request().Context(), bson.M{"_id": userID}).Decode(&user); err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	ctx.JSON(user)
}

// BecomeHost elevates the caller to the host role: the government-ID image
// goes to object storage, a Host document is created and a fresh token pair
// carrying the new role is returned.
func BecomeHost(ctx iris.Context) {
	userID, err := currentUserID(ctx)
	if err != nil {
		utils.CreateError(iris.StatusUnauthorized, "Token Error", "Invalid token subject.", ctx)
		return
	}

	var input BecomeHostInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var user models.User
	if err := storage.Users.FindOne(ctx.Request().Context(), bson.M{"_id": userID}).Decode(&user); err != nil {
		utils.CreateNotFound(ctx)
		return
	}
	if user.Role == models.RoleHost {
		utils.CreateError(iris.StatusBadRequest, "Role Error", "Already a host.", ctx)
		return
	}

	idURL, uploadErr := storage.UploadBase64Image(ctx.Request().Context(), input.GovernmentIDImage,
		"identity/"+user.ID.Hex()+"-"+utils.GenerateShortToken(6))
	if uploadErr != nil {
		utils.InternalError(ctx, uploadErr)
		return
	}

	now := time.Now()
	host := models.Host{
		UserID:          user.ID,
		GovernmentIDURL: idURL,
		Verified:        false,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if _, err := storage.Hosts.InsertOne(ctx.Request().Context(), host); err != nil {
		utils.InternalError(ctx, err)
		return
	}

	if _, err := storage.Users.UpdateByID(ctx.Request().Context(), user.ID, bson.M{
		"$set": bson.M{"role": models.RoleHost, "updatedAt": now},
	}); err != nil {
		utils.InternalError(ctx, err)
		return
	}
	user.Role = models.RoleHost

	returnUser(user, ctx)
}

func currentUserID(ctx iris.Context) (primitive.ObjectID, error) {
	claims := jwt.Get(ctx).(*utils.AccessToken)
	return primitive.ObjectIDFromHex(claims.ID)
}
