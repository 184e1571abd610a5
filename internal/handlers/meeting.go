package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/governance-api/internal/dto"
	apierrors "github.com/yukikurage/governance-api/internal/errors"
	"github.com/yukikurage/governance-api/internal/models"
	"github.com/yukikurage/governance-api/internal/services"
)

type MeetingHandler struct {
	meetingService *services.MeetingService
}

func NewMeetingHandler(meetingService *services.MeetingService) *MeetingHandler {
	return &MeetingHandler{
		meetingService: meetingService,
	}
}

// ListMeetings returns the organization's meetings
func (h *MeetingHandler) ListMeetings(c *gin.Context) {
	_, org, ok := requireActor(c)
	if !ok {
		return
	}

	meetings, err := h.meetingService.ListMeetings(org.ID)
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}

	items := make([]dto.MeetingDTO, len(meetings))
	for i, m := range meetings {
		items[i] = dto.ToMeetingDTO(m)
	}

	c.JSON(http.StatusOK, gin.H{
		"meetings": items,
	})
}

// GetMeeting returns a meeting with its agenda
func (h *MeetingHandler) GetMeeting(c *gin.Context) {
	_, org, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := meetingID(c)
	if !ok {
		return
	}

	meeting, err := h.meetingService.GetMeeting(org.ID, id)
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToMeetingDTO(*meeting))
}

// CreateMeeting creates a draft meeting
func (h *MeetingHandler) CreateMeeting(c *gin.Context) {
	userID, org, ok := requireActor(c)
	if !ok {
		return
	}

	type CreateMeetingRequest struct {
		Title       string     `json:"title" binding:"required"`
		ScheduledAt *time.Time `json:"scheduled_at"`
	}

	var req CreateMeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	meeting, err := h.meetingService.CreateMeeting(services.CreateMeetingInput{
		OrganizationID: org.ID,
		Title:          req.Title,
		ScheduledAt:    req.ScheduledAt,
		CreatedBy:      userID,
	})
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToMeetingDTO(*meeting))
}

// ScheduleMeeting sets or clears the start time of a draft meeting
func (h *MeetingHandler) ScheduleMeeting(c *gin.Context) {
	_, org, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := meetingID(c)
	if !ok {
		return
	}

	type ScheduleRequest struct {
		ScheduledAt *time.Time `json:"scheduled_at"`
	}

	var req ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	meeting, err := h.meetingService.ScheduleMeeting(org.ID, id, req.ScheduledAt)
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToMeetingDTO(*meeting))
}

// AddAgendaItem places an item on the agenda
func (h *MeetingHandler) AddAgendaItem(c *gin.Context) {
	_, org, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := meetingID(c)
	if !ok {
		return
	}

	type AddAgendaItemRequest struct {
		ItemNo       int     `json:"item_no" binding:"required"`
		Title        string  `json:"title" binding:"required"`
		ResolutionID *uint64 `json:"resolution_id"`
	}

	var req AddAgendaItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	item, err := h.meetingService.AddAgendaItem(org.ID, id, services.AddAgendaItemInput{
		ItemNo:       req.ItemNo,
		Title:        req.Title,
		ResolutionID: req.ResolutionID,
	})
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToAgendaItemDTO(*item))
}

// PublishMeeting publishes a draft meeting and freezes its governance snapshot
func (h *MeetingHandler) PublishMeeting(c *gin.Context) {
	_, org, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := meetingID(c)
	if !ok {
		return
	}

	meeting, err := h.meetingService.PublishMeeting(org.ID, id)
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToMeetingDTO(*meeting))
}

// GetSnapshot returns the governance snapshot tagged DRAFT, PUBLISHED or FALLBACK
func (h *MeetingHandler) GetSnapshot(c *gin.Context) {
	_, org, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := meetingID(c)
	if !ok {
		return
	}

	meeting, view, err := h.meetingService.GetSnapshot(org.ID, id)
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToSnapshotDTO(meeting.ID, view))
}

// PersistSnapshot stores the snapshot computed from the current configuration
func (h *MeetingHandler) PersistSnapshot(c *gin.Context) {
	_, org, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := meetingID(c)
	if !ok {
		return
	}

	if _, err := h.meetingService.PersistSnapshot(org.ID, id); err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}

	meeting, view, err := h.meetingService.GetSnapshot(org.ID, id)
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToSnapshotDTO(meeting.ID, view))
}

// GetFreezeStatus reports whether remote voting is frozen
func (h *MeetingHandler) GetFreezeStatus(c *gin.Context) {
	_, org, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := meetingID(c)
	if !ok {
		return
	}

	status, err := h.meetingService.FreezeStatus(org.ID, id)
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToFreezeDTO(id, status))
}

// GetCompletion evaluates whether the meeting can be completed
func (h *MeetingHandler) GetCompletion(c *gin.Context) {
	_, org, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := meetingID(c)
	if !ok {
		return
	}

	report, err := h.meetingService.EvaluateCompletion(org.ID, id)
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, completionDTO(report))
}

// GetChecklist returns the completion checklist rows
func (h *MeetingHandler) GetChecklist(c *gin.Context) {
	_, org, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := meetingID(c)
	if !ok {
		return
	}

	report, rows, err := h.meetingService.Checklist(org.ID, id)
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToChecklistDTO(report.MeetingID, report.Result, rows))
}

// RecordAttendance records how a member attends the meeting
func (h *MeetingHandler) RecordAttendance(c *gin.Context) {
	_, org, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := meetingID(c)
	if !ok {
		return
	}

	type AttendanceRequest struct {
		MembershipID uint64                `json:"membership_id" binding:"required"`
		Mode         models.AttendanceMode `json:"mode" binding:"required"`
	}

	var req AttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.meetingService.RecordAttendance(org.ID, id, req.MembershipID, req.Mode); err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// AttachProtocol stores the signed protocol reference
func (h *MeetingHandler) AttachProtocol(c *gin.Context) {
	_, org, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := meetingID(c)
	if !ok {
		return
	}

	type ProtocolRequest struct {
		ProtocolRef string `json:"protocol_ref" binding:"required"`
	}

	var req ProtocolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	meeting, err := h.meetingService.AttachProtocol(org.ID, id, req.ProtocolRef)
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToMeetingDTO(*meeting))
}

// CompleteMeeting completes the meeting or reports every unmet condition
func (h *MeetingHandler) CompleteMeeting(c *gin.Context) {
	_, org, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := meetingID(c)
	if !ok {
		return
	}

	meeting, report, err := h.meetingService.CompleteMeeting(org.ID, id)
	if err != nil {
		apierrors.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.CompleteMeetingResponse{
		Meeting:    dto.ToMeetingDTO(*meeting),
		Completion: completionDTO(report),
	})
}

func completionDTO(report *services.CompletionReport) dto.CompletionDTO {
	return dto.ToCompletionDTO(report.MeetingID, report.Result, report.Attendance, report.QuorumPercentage, report.SnapshotKind)
}
