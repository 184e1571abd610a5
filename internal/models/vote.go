package models

import "time"

type VoteKind string

const (
	// VoteKindMeeting is a vote held as part of a meeting's agenda.
	VoteKindMeeting VoteKind = "MEETING"
	VoteKindPoll    VoteKind = "POLL"
)

type VoteStatus string

const (
	VoteStatusOpen   VoteStatus = "OPEN"
	VoteStatusClosed VoteStatus = "CLOSED"
)

type Vote struct {
	ID           uint64     `gorm:"primarykey" json:"id"`
	MeetingID    uint64     `gorm:"not null;index" json:"meeting_id"`
	AgendaItemID uint64     `gorm:"not null" json:"agenda_item_id"`
	Kind         VoteKind   `gorm:"type:varchar(20);not null;default:'MEETING'" json:"kind"`
	Status       VoteStatus `gorm:"type:varchar(20);not null;default:'OPEN';index" json:"status"`
	OpenedAt     time.Time  `json:"opened_at"`
	ClosedAt     *time.Time `json:"closed_at"`

	// Relations
	Ballots []Ballot `gorm:"foreignKey:VoteID" json:"ballots,omitempty"`
}

type BallotChoice string

const (
	ChoiceFor     BallotChoice = "FOR"
	ChoiceAgainst BallotChoice = "AGAINST"
	ChoiceAbstain BallotChoice = "ABSTAIN"
)

type BallotChannel string

const (
	ChannelRemote BallotChannel = "REMOTE"
	ChannelLive   BallotChannel = "LIVE"
)

type Ballot struct {
	ID           uint64        `gorm:"primarykey" json:"id"`
	VoteID       uint64        `gorm:"not null;uniqueIndex:idx_ballot_vote_member" json:"vote_id"`
	MembershipID uint64        `gorm:"not null;uniqueIndex:idx_ballot_vote_member" json:"membership_id"`
	Choice       BallotChoice  `gorm:"type:varchar(10);not null" json:"choice"`
	Channel      BallotChannel `gorm:"type:varchar(10);not null" json:"channel"`
	CastAt       time.Time     `json:"cast_at"`
}
