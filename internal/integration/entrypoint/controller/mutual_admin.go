package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/streamshare/backend/internal/application/usecase/mutual"
	domainerror "github.com/streamshare/backend/internal/domain/error"
	"github.com/streamshare/backend/internal/integration/entrypoint/dto"
)

// MutualAdminController handles the operator side of mutual connections.
type MutualAdminController struct {
	lowUsageUseCase     *mutual.GetLowUsageUsersUseCase
	createGroupUseCase  *mutual.CreateGroupAndInviteUseCase
	listGroupsUseCase   *mutual.ListGroupsUseCase
	groupMembersUseCase *mutual.GetGroupMembersUseCase
	retireGroupUseCase  *mutual.RetireGroupUseCase
	listPlansUseCase    *mutual.ListPlansUseCase
	defaultThreshold    int
}

// NewMutualAdminController creates a new admin controller instance.
// defaultThreshold is used when the candidates request has no threshold_minutes.
func NewMutualAdminController(
	lowUsageUseCase *mutual.GetLowUsageUsersUseCase,
	createGroupUseCase *mutual.CreateGroupAndInviteUseCase,
	listGroupsUseCase *mutual.ListGroupsUseCase,
	groupMembersUseCase *mutual.GetGroupMembersUseCase,
	retireGroupUseCase *mutual.RetireGroupUseCase,
	listPlansUseCase *mutual.ListPlansUseCase,
	defaultThreshold int,
) *MutualAdminController {
	return &MutualAdminController{
		lowUsageUseCase:     lowUsageUseCase,
		createGroupUseCase:  createGroupUseCase,
		listGroupsUseCase:   listGroupsUseCase,
		groupMembersUseCase: groupMembersUseCase,
		retireGroupUseCase:  retireGroupUseCase,
		listPlansUseCase:    listPlansUseCase,
		defaultThreshold:    defaultThreshold,
	}
}

// Candidates handles GET /admin/mutual/candidates requests.
func (c *MutualAdminController) Candidates(ctx *gin.Context) {
	threshold := c.defaultThreshold
	if raw := ctx.Query("threshold_minutes"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Error: "threshold_minutes must be a whole number",
				Code:  string(domainerror.ErrCodeInvalidThreshold),
			})
			return
		}
		threshold = parsed
	}

	output, err := c.lowUsageUseCase.Execute(ctx.Request.Context(), mutual.GetLowUsageUsersInput{ThresholdMinutes: threshold})
	if err != nil {
		handleMutualError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToLowUsageCandidatesResponse(threshold, output))
}

// CreateGroup handles POST /admin/mutual/groups requests.
func (c *MutualAdminController) CreateGroup(ctx *gin.Context) {
	var req dto.CreateMutualGroupRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Invalid request body",
			Code:    string(domainerror.ErrCodeMissingMutualFields),
			Details: err.Error(),
		})
		return
	}

	userIDs := make([]uuid.UUID, len(req.UserIDs))
	for i, raw := range req.UserIDs {
		// already validated by the binding
		userIDs[i] = uuid.MustParse(raw)
	}

	output, err := c.createGroupUseCase.Execute(ctx.Request.Context(), mutual.CreateGroupAndInviteInput{
		UserIDs:      userIDs,
		PlanName:     req.PlanName,
		AdminMessage: req.AdminMessage,
	})
	if err != nil {
		handleMutualError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.CreateMutualGroupResponse{
		Message:     output.Message,
		Group:       dto.ToMutualGroupResponse(output.Group),
		InviteCount: len(output.Invites),
	})
}

// ListGroups handles GET /admin/mutual/groups requests.
func (c *MutualAdminController) ListGroups(ctx *gin.Context) {
	output, err := c.listGroupsUseCase.Execute(ctx.Request.Context())
	if err != nil {
		handleMutualError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToMutualGroupListResponse(output.Groups))
}

// GroupMembers handles GET /admin/mutual/groups/:id/members requests.
func (c *MutualAdminController) GroupMembers(ctx *gin.Context) {
	groupID, ok := parseGroupID(ctx)
	if !ok {
		return
	}

	output, err := c.groupMembersUseCase.Execute(ctx.Request.Context(), mutual.GetGroupMembersInput{GroupID: groupID})
	if err != nil {
		handleMutualError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.GroupMembersResponse{
		Group:   dto.ToMutualGroupResponse(output.Group),
		Members: dto.ToGroupMemberResponses(output.Members, true),
		Invites: dto.ToInviteTallyResponse(output.Tally),
	})
}

// RetireGroup handles POST /admin/mutual/groups/:id/retire requests.
func (c *MutualAdminController) RetireGroup(ctx *gin.Context) {
	groupID, ok := parseGroupID(ctx)
	if !ok {
		return
	}

	output, err := c.retireGroupUseCase.Execute(ctx.Request.Context(), mutual.RetireGroupInput{GroupID: groupID})
	if err != nil {
		handleMutualError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToMutualGroupResponse(output.Group))
}

// Plans handles GET /admin/mutual/plans requests.
func (c *MutualAdminController) Plans(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, dto.ToPlanListResponse(c.listPlansUseCase.Execute()))
}

func parseGroupID(ctx *gin.Context) (uuid.UUID, bool) {
	groupID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid group ID format",
			Code:  string(domainerror.ErrCodeMissingMutualFields),
		})
		return uuid.Nil, false
	}
	return groupID, true
}
