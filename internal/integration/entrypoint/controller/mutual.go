package controller

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/streamshare/backend/internal/application/usecase/mutual"
	domainerror "github.com/streamshare/backend/internal/domain/error"
	"github.com/streamshare/backend/internal/integration/entrypoint/dto"
	"github.com/streamshare/backend/internal/integration/entrypoint/middleware"
)

// MutualController handles the subscriber side of mutual connections.
type MutualController struct {
	notificationCountUseCase *mutual.GetNotificationCountUseCase
	listInvitesUseCase       *mutual.ListUserInvitesUseCase
	respondUseCase           *mutual.RespondToInviteUseCase
	activeConnectionUseCase  *mutual.GetActiveConnectionUseCase
}

// NewMutualController creates a new mutual controller instance.
func NewMutualController(
	notificationCountUseCase *mutual.GetNotificationCountUseCase,
	listInvitesUseCase *mutual.ListUserInvitesUseCase,
	respondUseCase *mutual.RespondToInviteUseCase,
	activeConnectionUseCase *mutual.GetActiveConnectionUseCase,
) *MutualController {
	return &MutualController{
		notificationCountUseCase: notificationCountUseCase,
		listInvitesUseCase:       listInvitesUseCase,
		respondUseCase:           respondUseCase,
		activeConnectionUseCase:  activeConnectionUseCase,
	}
}

// NotificationCount handles GET /mutual/notifications/count requests.
func (c *MutualController) NotificationCount(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	output, err := c.notificationCountUseCase.Execute(ctx.Request.Context(), mutual.GetNotificationCountInput{UserID: userID})
	if err != nil {
		handleMutualError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NotificationCountResponse{Count: output.Count})
}

// ListInvites handles GET /mutual/invites requests.
func (c *MutualController) ListInvites(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	output, err := c.listInvitesUseCase.Execute(ctx.Request.Context(), mutual.ListUserInvitesInput{UserID: userID})
	if err != nil {
		handleMutualError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToMutualInviteListResponse(output))
}

// Respond handles POST /mutual/invites/:id/respond requests.
func (c *MutualController) Respond(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	inviteID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid invite ID format",
			Code:  string(domainerror.ErrCodeMissingMutualFields),
		})
		return
	}

	var req dto.RespondInviteRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Invalid request body",
			Code:    string(domainerror.ErrCodeMissingMutualFields),
			Details: err.Error(),
		})
		return
	}

	output, err := c.respondUseCase.Execute(ctx.Request.Context(), mutual.RespondToInviteInput{
		InviteID: inviteID,
		UserID:   userID,
		Accept:   *req.Accept,
	})
	if err != nil {
		handleMutualError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.RespondInviteResponse{
		Success:     true,
		Message:     output.Message,
		GroupID:     output.GroupID.String(),
		GroupStatus: string(output.GroupStatus),
	})
}

// ActiveConnection handles GET /mutual/connection requests.
func (c *MutualController) ActiveConnection(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	output, err := c.activeConnectionUseCase.Execute(ctx.Request.Context(), mutual.GetActiveConnectionInput{UserID: userID})
	if err != nil {
		handleMutualError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToActiveConnectionResponse(output.Connection))
}

func requireUserID(ctx *gin.Context) (uuid.UUID, bool) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error: "User not authenticated",
			Code:  string(domainerror.ErrCodeMissingToken),
		})
		return uuid.Nil, false
	}
	return userID, true
}

// handleMutualError maps mutual errors to HTTP responses.
func handleMutualError(ctx *gin.Context, err error) {
	var mutualErr *domainerror.MutualError
	if errors.As(err, &mutualErr) {
		status := statusForMutualError(mutualErr.Code)
		if status >= http.StatusInternalServerError {
			slog.Error("Mutual request failed", "code", mutualErr.Code, "error", err, "path", ctx.FullPath())
		}
		ctx.JSON(status, dto.ErrorResponse{
			Error: mutualErr.Message,
			Code:  string(mutualErr.Code),
		})
		return
	}

	slog.Error("Unexpected error", "error", err, "path", ctx.FullPath())
	ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{
		Error: "An internal error occurred",
	})
}

// statusForMutualError maps mutual error codes to HTTP status codes.
func statusForMutualError(code domainerror.MutualErrorCode) int {
	switch {
	case code == domainerror.ErrCodeInviteNotFoundOrUnauthorized,
		code == domainerror.ErrCodeMutualGroupNotFound:
		return http.StatusNotFound
	case code.IsValidation():
		return http.StatusBadRequest
	case code == domainerror.ErrCodeInviteAlreadyResponded,
		code == domainerror.ErrCodeAlreadyActiveMember,
		code == domainerror.ErrCodeGroupNotForming:
		return http.StatusConflict
	case code == domainerror.ErrCodeStorageUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
