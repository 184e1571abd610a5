package handlers

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/governance-api/internal/governance"
	"github.com/yukikurage/governance-api/internal/middleware"
	"github.com/yukikurage/governance-api/internal/repository"
	"github.com/yukikurage/governance-api/internal/services"
	"gorm.io/gorm"
)

// Services bundles the services the HTTP layer depends on.
type Services struct {
	Organizations *services.OrganizationService
	Memberships   *services.MembershipService
	Resolutions   *services.ResolutionService
	Meetings      *services.MeetingService
	Voting        *services.VotingService
}

// NewServices builds every service on top of GORM repositories.
func NewServices(db *gorm.DB, mode governance.Mode) Services {
	orgRepo := repository.NewOrganizationRepository(db)
	memberRepo := repository.NewMembershipRepository(db)
	resolutionRepo := repository.NewResolutionRepository(db)
	meetingRepo := repository.NewMeetingRepository(db)
	voteRepo := repository.NewVoteRepository(db)
	userRepo := repository.NewUserRepository(db)

	return Services{
		Organizations: services.NewOrganizationService(orgRepo, memberRepo, userRepo),
		Memberships:   services.NewMembershipService(memberRepo),
		Resolutions:   services.NewResolutionService(resolutionRepo, meetingRepo),
		Meetings:      services.NewMeetingService(meetingRepo, orgRepo, resolutionRepo, memberRepo, voteRepo, mode),
		Voting:        services.NewVotingService(voteRepo, meetingRepo, memberRepo, orgRepo),
	}
}

// RegisterRoutes mounts the governance API under /api. Every route requires a
// session; organization routes additionally require an ACTIVE membership.
func RegisterRoutes(r gin.IRouter, svc Services) {
	orgHandler := NewOrganizationHandler(svc.Organizations)
	memberHandler := NewMembershipHandler(svc.Memberships)
	resolutionHandler := NewResolutionHandler(svc.Resolutions)
	meetingHandler := NewMeetingHandler(svc.Meetings)
	voteHandler := NewVoteHandler(svc.Voting)

	api := r.Group("/api")
	api.Use(middleware.RequireAuth())

	orgs := api.Group("/organizations")
	{
		orgs.POST("", orgHandler.CreateOrganization)
		orgs.GET("", orgHandler.ListOrganizations)
		orgs.POST("/join", orgHandler.JoinOrganization)
	}

	org := orgs.Group("/:id")
	org.Use(middleware.RequireOrganizationAccess())
	admin := middleware.RequireOrganizationAdmin()
	{
		org.GET("", orgHandler.GetOrganization)
		org.PUT("", admin, orgHandler.UpdateOrganization)
		org.POST("/regenerate-code", admin, orgHandler.RegenerateInviteCode)
		org.GET("/governance", orgHandler.GetGovernanceSettings)
		org.PUT("/governance", admin, orgHandler.UpdateGovernanceSettings)

		org.GET("/members", memberHandler.ListMembers)
		org.GET("/members/:member_id/transitions", memberHandler.ListTransitions)
		org.POST("/members/:member_id/transitions", admin, memberHandler.TransitionMember)
	}

	resolutions := org.Group("/resolutions")
	{
		resolutions.GET("", resolutionHandler.ListResolutions)
		resolutions.POST("", admin, resolutionHandler.CreateResolution)

		resolution := resolutions.Group("/:resolution_id")
		resolution.Use(middleware.RequireResolutionAccess())
		resolution.GET("", resolutionHandler.GetResolution)
		resolution.PATCH("", admin, resolutionHandler.UpdateResolution)
		resolution.POST("/transitions", admin, resolutionHandler.TransitionResolution)
	}

	meetings := org.Group("/meetings")
	{
		meetings.GET("", meetingHandler.ListMeetings)
		meetings.POST("", admin, meetingHandler.CreateMeeting)

		meeting := meetings.Group("/:meeting_id")
		meeting.Use(middleware.RequireMeetingAccess())
		meeting.GET("", meetingHandler.GetMeeting)
		meeting.PUT("/schedule", admin, meetingHandler.ScheduleMeeting)
		meeting.POST("/agenda", admin, meetingHandler.AddAgendaItem)
		meeting.POST("/publish", admin, meetingHandler.PublishMeeting)
		meeting.GET("/snapshot", meetingHandler.GetSnapshot)
		meeting.POST("/snapshot", admin, meetingHandler.PersistSnapshot)
		meeting.GET("/freeze", meetingHandler.GetFreezeStatus)
		meeting.GET("/completion", meetingHandler.GetCompletion)
		meeting.GET("/checklist", meetingHandler.GetChecklist)
		meeting.POST("/attendance", admin, meetingHandler.RecordAttendance)
		meeting.PUT("/protocol", admin, meetingHandler.AttachProtocol)
		meeting.POST("/complete", admin, meetingHandler.CompleteMeeting)
		meeting.POST("/votes", admin, voteHandler.OpenVote)
	}

	votes := org.Group("/votes/:vote_id")
	{
		votes.GET("", voteHandler.GetVote)
		votes.POST("/close", admin, voteHandler.CloseVote)
		votes.POST("/ballots", voteHandler.CastBallot)
	}
}

// HealthCheck reports whether the database is reachable
func HealthCheck(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  "database connection failed",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	}
}
