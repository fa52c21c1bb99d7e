package handler

//go:generate go run go.uber.org/mock/mockgen@latest -source=handler.go -destination=mocks_test.go -package=handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"crm-server/internal/apierrors"
	"crm-server/internal/audience"
	authHandler "crm-server/internal/auth/handler"
	"crm-server/internal/campaign/processor"
	"crm-server/internal/observability"
	"crm-server/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CampaignProcessor is the operator API the handler drives
type CampaignProcessor interface {
	CreateCampaign(ctx context.Context, tenantID uuid.UUID, createdBy *uuid.UUID, params processor.CreateCampaignParams) (store.Campaign, error)
	GetCampaign(ctx context.Context, tenantID, campaignID uuid.UUID) (processor.CampaignDetails, error)
	ListCampaigns(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]store.Campaign, error)
	ListRecipients(ctx context.Context, tenantID, campaignID uuid.UUID, status string, limit, offset int) ([]store.CampaignRecipient, error)
	Prepare(ctx context.Context, tenantID, campaignID uuid.UUID) (audience.PrepareResult, error)
	ApplyEvent(ctx context.Context, tenantID, campaignID uuid.UUID, action string) (store.Campaign, error)
	DuplicateCampaign(ctx context.Context, tenantID, campaignID uuid.UUID, createdBy *uuid.UUID) (store.Campaign, error)
}

type Handler struct {
	processor CampaignProcessor
	logger    *observability.Logger
}

func New(processor CampaignProcessor, logger *observability.Logger) Handler {
	return Handler{
		processor: processor,
		logger:    logger,
	}
}

// PrepareCampaignRequest is the body of POST /api/campaigns/prepare
type PrepareCampaignRequest struct {
	CampaignID string `json:"campaignId" binding:"required,uuid"`
}

// CreateCampaignRequest represents the HTTP request for creating a campaign
type CreateCampaignRequest struct {
	InstanceID           string      `json:"instance_id" binding:"required,min=1,max=255"`
	Name                 string      `json:"name" binding:"required,min=1,max=255"`
	MessageTemplate      string      `json:"message_template" binding:"required,min=1"`
	MediaURL             *string     `json:"media_url,omitempty" binding:"omitempty,url"`
	MediaType            *string     `json:"media_type,omitempty" binding:"omitempty,oneof=image video audio document"`
	FilterTagIDs         []uuid.UUID `json:"filter_tag_ids,omitempty"`
	FilterStageIDs       []uuid.UUID `json:"filter_stage_ids,omitempty"`
	FilterResponsibleIDs []uuid.UUID `json:"filter_responsible_ids,omitempty"`
	ScheduleStartTime    *string     `json:"schedule_start_time,omitempty"`
	ScheduleEndTime      *string     `json:"schedule_end_time,omitempty"`
	ScheduleDays         []int       `json:"schedule_days,omitempty" binding:"omitempty,dive,gte=0,lte=6"`
	IntervalSeconds      int         `json:"interval_seconds" binding:"gte=0"`
	ScheduledAt          *time.Time  `json:"scheduled_at,omitempty"`
}

// HandlePrepareCampaign freezes the audience of a draft campaign
func (h *Handler) HandlePrepareCampaign(c *gin.Context) {
	ctx := c.Request.Context()

	tenantID, ok := h.getTenantID(c)
	if !ok {
		return
	}

	var req PrepareCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.RespondWithValidationError(c, err)
		return
	}
	campaignID := uuid.MustParse(req.CampaignID)

	ctx = observability.WithFields(ctx, observability.Field{Key: "campaign_id", Value: campaignID.String()})

	result, err := h.processor.Prepare(ctx, tenantID, campaignID)
	if err != nil {
		apierrors.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// HandleCreateCampaign creates a new draft campaign
func (h *Handler) HandleCreateCampaign(c *gin.Context) {
	ctx := c.Request.Context()

	tenantID, ok := h.getTenantID(c)
	if !ok {
		return
	}

	var req CreateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.RespondWithValidationError(c, err)
		return
	}

	params := processor.CreateCampaignParams{
		InstanceID:           req.InstanceID,
		Name:                 req.Name,
		MessageTemplate:      req.MessageTemplate,
		MediaURL:             req.MediaURL,
		MediaType:            req.MediaType,
		FilterTagIDs:         req.FilterTagIDs,
		FilterStageIDs:       req.FilterStageIDs,
		FilterResponsibleIDs: req.FilterResponsibleIDs,
		ScheduleStartTime:    req.ScheduleStartTime,
		ScheduleEndTime:      req.ScheduleEndTime,
		ScheduleDays:         req.ScheduleDays,
		IntervalSeconds:      req.IntervalSeconds,
		ScheduledAt:          req.ScheduledAt,
	}

	campaign, err := h.processor.CreateCampaign(ctx, tenantID, authHandler.UserID(c), params)
	if err != nil {
		apierrors.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, campaign)
}

// HandleListCampaigns lists the tenant's campaigns
func (h *Handler) HandleListCampaigns(c *gin.Context) {
	ctx := c.Request.Context()

	tenantID, ok := h.getTenantID(c)
	if !ok {
		return
	}

	limit, offset := pagination(c)
	campaigns, err := h.processor.ListCampaigns(ctx, tenantID, limit, offset)
	if err != nil {
		apierrors.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"campaigns": campaigns})
}

// HandleGetCampaign returns a campaign with its recipient stats
func (h *Handler) HandleGetCampaign(c *gin.Context) {
	ctx := c.Request.Context()

	tenantID, ok := h.getTenantID(c)
	if !ok {
		return
	}
	campaignID, ok := h.getCampaignID(c)
	if !ok {
		return
	}

	ctx = observability.WithFields(ctx, observability.Field{Key: "campaign_id", Value: campaignID.String()})

	campaign, err := h.processor.GetCampaign(ctx, tenantID, campaignID)
	if err != nil {
		apierrors.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, campaign)
}

// HandleListRecipients lists a campaign's recipients, optionally by status
func (h *Handler) HandleListRecipients(c *gin.Context) {
	ctx := c.Request.Context()

	tenantID, ok := h.getTenantID(c)
	if !ok {
		return
	}
	campaignID, ok := h.getCampaignID(c)
	if !ok {
		return
	}

	ctx = observability.WithFields(ctx, observability.Field{Key: "campaign_id", Value: campaignID.String()})

	limit, offset := pagination(c)
	recipients, err := h.processor.ListRecipients(ctx, tenantID, campaignID, c.Query("status"), limit, offset)
	if err != nil {
		apierrors.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recipients": recipients})
}

// HandleCampaignEvent applies an operator action taken from the route
func (h *Handler) HandleCampaignEvent(action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		tenantID, ok := h.getTenantID(c)
		if !ok {
			return
		}
		campaignID, ok := h.getCampaignID(c)
		if !ok {
			return
		}

		ctx = observability.WithFields(ctx, observability.Field{Key: "campaign_id", Value: campaignID.String()})

		campaign, err := h.processor.ApplyEvent(ctx, tenantID, campaignID, action)
		if err != nil {
			apierrors.RespondWithError(c, err)
			return
		}

		c.JSON(http.StatusOK, campaign)
	}
}

// HandleDuplicateCampaign copies a campaign into a new draft
func (h *Handler) HandleDuplicateCampaign(c *gin.Context) {
	ctx := c.Request.Context()

	tenantID, ok := h.getTenantID(c)
	if !ok {
		return
	}
	campaignID, ok := h.getCampaignID(c)
	if !ok {
		return
	}

	ctx = observability.WithFields(ctx, observability.Field{Key: "campaign_id", Value: campaignID.String()})

	campaign, err := h.processor.DuplicateCampaign(ctx, tenantID, campaignID, authHandler.UserID(c))
	if err != nil {
		apierrors.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, campaign)
}

func (h *Handler) getTenantID(c *gin.Context) (uuid.UUID, bool) {
	tenantID, ok := authHandler.TenantID(c)
	if !ok {
		apierrors.RespondWithError(c, apierrors.Forbidden("Token is not scoped to a tenant"))
		return uuid.Nil, false
	}
	return tenantID, true
}

func (h *Handler) getCampaignID(c *gin.Context) (uuid.UUID, bool) {
	campaignID, err := uuid.Parse(c.Param("campaign_id"))
	if err != nil {
		apierrors.RespondWithError(c, apierrors.BadRequest(apierrors.CodeInvalidInput, "Invalid campaign ID format"))
		return uuid.Nil, false
	}
	return campaignID, true
}

// pagination reads limit/offset; the processor clamps out-of-range values
func pagination(c *gin.Context) (int, int) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	return limit, offset
}
