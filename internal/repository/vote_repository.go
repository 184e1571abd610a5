package repository

import (
	"time"

	"github.com/yukikurage/governance-api/internal/models"
	"gorm.io/gorm"
)

// GormVoteRepository is a GORM implementation of VoteRepository
type GormVoteRepository struct {
	db *gorm.DB
}

// NewVoteRepository creates a new VoteRepository
func NewVoteRepository(db *gorm.DB) VoteRepository {
	return &GormVoteRepository{db: db}
}

func (r *GormVoteRepository) Create(vote *models.Vote) error {
	return r.db.Create(vote).Error
}

func (r *GormVoteRepository) FindByID(id uint64) (*models.Vote, error) {
	var vote models.Vote
	if err := r.db.First(&vote, id).Error; err != nil {
		return nil, err
	}
	return &vote, nil
}

// CountOpen counts open votes of a meeting; polls are excluded by passing VoteKindMeeting
func (r *GormVoteRepository) CountOpen(meetingID uint64, kind models.VoteKind) (int64, error) {
	var count int64
	err := r.db.Model(&models.Vote{}).
		Where("meeting_id = ? AND kind = ? AND status = ?", meetingID, kind, models.VoteStatusOpen).
		Count(&count).Error
	return count, err
}

func (r *GormVoteRepository) Close(id uint64, closedAt time.Time) error {
	res := r.db.Model(&models.Vote{}).
		Where("id = ? AND status = ?", id, models.VoteStatusOpen).
		Updates(map[string]any{
			"status":    models.VoteStatusClosed,
			"closed_at": closedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleState
	}
	return nil
}

// CreateBallot relies on idx_ballot_vote_member; a second ballot surfaces as gorm.ErrDuplicatedKey
func (r *GormVoteRepository) CreateBallot(ballot *models.Ballot) error {
	return r.db.Create(ballot).Error
}
