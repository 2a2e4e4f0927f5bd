package expense

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nstrange/spendtrack/internal/authkit"
)

const createdAtLayout = "2006-01-02 15:04:05"

// ExpenseResponse is the wire shape of one expense entry.
type ExpenseResponse struct {
	ExternalID string  `json:"external_id"`
	Amount     float64 `json:"amount"`
	UserID     string  `json:"user_id"`
	Merchant   string  `json:"merchant"`
	Currency   string  `json:"currency"`
	CreatedAt  string  `json:"created_at"`
}

type createExpenseRequest struct {
	Amount   float64 `json:"amount"`
	Merchant string  `json:"merchant"`
	Currency string  `json:"currency"`
}

// MountExpenseRoutes registers the expense endpoints. Both sit behind the
// authentication gate; the owning user id comes from the bound identity.
func MountExpenseRoutes(router *gin.Engine, service *Service, clock authkit.Clock, logger *zap.Logger) {
	group := router.Group("/expense/v1")

	group.POST("/addExpense", func(contextGin *gin.Context) {
		user, ok := authkit.AuthenticatedUser(contextGin)
		if !ok {
			authkit.RespondError(contextGin, clock, authkit.ErrAuthenticationRequired)
			return
		}
		var request createExpenseRequest
		if bindErr := contextGin.ShouldBindJSON(&request); bindErr != nil {
			authkit.RespondError(contextGin, clock, authkit.ErrMalformedRequestBody)
			return
		}
		entry, createErr := service.Create(contextGin.Request.Context(), user.UserID, CreateInput{
			Amount:   request.Amount,
			Merchant: request.Merchant,
			Currency: request.Currency,
		})
		if createErr != nil {
			logger.Warn("expense create failed",
				zap.String("code", "expense.create.failure"),
				zap.String("user_id", user.UserID),
				zap.Error(createErr))
			authkit.RespondError(contextGin, clock, createErr)
			return
		}
		contextGin.JSON(http.StatusCreated, toResponse(*entry))
	})

	group.GET("/getExpense", func(contextGin *gin.Context) {
		user, ok := authkit.AuthenticatedUser(contextGin)
		if !ok {
			authkit.RespondError(contextGin, clock, authkit.ErrAuthenticationRequired)
			return
		}
		entries, listErr := service.List(contextGin.Request.Context(), user.UserID)
		if listErr != nil {
			logger.Warn("expense list failed",
				zap.String("code", "expense.list.failure"),
				zap.String("user_id", user.UserID),
				zap.Error(listErr))
			authkit.RespondError(contextGin, clock, listErr)
			return
		}
		responses := make([]ExpenseResponse, 0, len(entries))
		for _, entry := range entries {
			responses = append(responses, toResponse(entry))
		}
		contextGin.JSON(http.StatusOK, responses)
	})
}

func toResponse(entry Expense) ExpenseResponse {
	return ExpenseResponse{
		ExternalID: entry.ExternalID,
		Amount:     entry.Amount,
		UserID:     entry.UserID,
		Merchant:   entry.Merchant,
		Currency:   entry.Currency,
		CreatedAt:  entry.CreatedAt.UTC().Format(createdAtLayout),
	}
}
