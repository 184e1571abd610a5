package dto

import (
	"time"

	"github.com/yukikurage/governance-api/internal/models"
)

// VoteDTO represents a vote in API responses
type VoteDTO struct {
	ID           uint64            `json:"id"`
	MeetingID    uint64            `json:"meeting_id"`
	AgendaItemID uint64            `json:"agenda_item_id"`
	Kind         models.VoteKind   `json:"kind"`
	Status       models.VoteStatus `json:"status"`
	OpenedAt     time.Time         `json:"opened_at"`
	ClosedAt     *time.Time        `json:"closed_at"`
}

// BallotDTO represents a recorded ballot. The choice is not echoed back.
type BallotDTO struct {
	ID           uint64               `json:"id"`
	VoteID       uint64               `json:"vote_id"`
	MembershipID uint64               `json:"membership_id"`
	Channel      models.BallotChannel `json:"channel"`
	CastAt       time.Time            `json:"cast_at"`
}

// ToVoteDTO converts a Vote model to VoteDTO
func ToVoteDTO(vote models.Vote) VoteDTO {
	return VoteDTO{
		ID:           vote.ID,
		MeetingID:    vote.MeetingID,
		AgendaItemID: vote.AgendaItemID,
		Kind:         vote.Kind,
		Status:       vote.Status,
		OpenedAt:     vote.OpenedAt,
		ClosedAt:     vote.ClosedAt,
	}
}

// ToBallotDTO converts a Ballot model to BallotDTO
func ToBallotDTO(ballot models.Ballot) BallotDTO {
	return BallotDTO{
		ID:           ballot.ID,
		VoteID:       ballot.VoteID,
		MembershipID: ballot.MembershipID,
		Channel:      ballot.Channel,
		CastAt:       ballot.CastAt,
	}
}
