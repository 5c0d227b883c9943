package votes

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/parascope/backend/internal/apperrors"
	"github.com/parascope/backend/internal/models"
)

// GormStore persists vote records in Postgres. Conditional semantics come
// from the unique (user, target) index and from RowsAffected checks on
// updates and deletes keyed by the vote's current type.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Find(ctx context.Context, userID, targetID int, target TargetType) (*models.Vote, error) {
	var v models.Vote
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND target_id = ? AND target_type = ?", userID, targetID, string(target)).
		First(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Unavailable("failed to look up vote", err)
	}
	return &v, nil
}

func (s *GormStore) Insert(ctx context.Context, v *models.Vote) error {
	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(v)
	if res.Error != nil {
		return apperrors.Unavailable("failed to create vote", res.Error)
	}
	if res.RowsAffected == 0 {
		// another request from the same user won the insert race
		return apperrors.Conflict("vote already exists")
	}
	return nil
}

func (s *GormStore) UpdateType(ctx context.Context, id int, from, to VoteType) error {
	res := s.db.WithContext(ctx).
		Model(&models.Vote{}).
		Where("id = ? AND type = ?", id, string(from)).
		Update("type", string(to))
	if res.Error != nil {
		return apperrors.Unavailable("failed to update vote", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.Conflict("vote changed concurrently")
	}
	return nil
}

func (s *GormStore) Delete(ctx context.Context, id int, current VoteType) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND type = ?", id, string(current)).
		Delete(&models.Vote{})
	if res.Error != nil {
		return apperrors.Unavailable("failed to delete vote", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.Conflict("vote changed concurrently")
	}
	return nil
}

func (s *GormStore) TargetExists(ctx context.Context, targetID int, target TargetType) (bool, error) {
	var count int64
	var err error
	switch target {
	case TargetPost:
		err = s.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", targetID).Count(&count).Error
	case TargetComment:
		err = s.db.WithContext(ctx).Model(&models.Comment{}).Where("id = ?", targetID).Count(&count).Error
	default:
		return false, apperrors.Validation("unknown target type")
	}
	if err != nil {
		return false, apperrors.Unavailable("failed to check target", err)
	}
	return count > 0, nil
}

// GormAggregator applies counter deltas with single multi-column UPDATEs, so
// concurrent adds from different users commute and a switch can never land
// half-applied.
type GormAggregator struct {
	db *gorm.DB
}

func NewGormAggregator(db *gorm.DB) *GormAggregator {
	return &GormAggregator{db: db}
}

func (a *GormAggregator) ApplyVoteDeltas(ctx context.Context, targetID int, target TargetType, upDelta, downDelta int) error {
	updates := map[string]any{}
	if upDelta != 0 {
		updates["upvotes"] = gorm.Expr("upvotes + ?", upDelta)
	}
	if downDelta != 0 {
		updates["downvotes"] = gorm.Expr("downvotes + ?", downDelta)
	}
	if len(updates) == 0 {
		return nil
	}

	var res *gorm.DB
	switch target {
	case TargetPost:
		res = a.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", targetID).Updates(updates)
	case TargetComment:
		res = a.db.WithContext(ctx).Model(&models.Comment{}).Where("id = ?", targetID).Updates(updates)
	default:
		return apperrors.Validation("unknown target type")
	}
	if res.Error != nil {
		return apperrors.Unavailable("failed to apply vote deltas", res.Error)
	}
	return nil
}

func (a *GormAggregator) IncrementCommentCount(ctx context.Context, postID, delta int) error {
	res := a.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", postID).
		Update("comment_count", gorm.Expr("comment_count + ?", delta))
	if res.Error != nil {
		return apperrors.Unavailable("failed to update comment count", res.Error)
	}
	return nil
}

func (a *GormAggregator) IncrementReplyCount(ctx context.Context, commentID, delta int) error {
	res := a.db.WithContext(ctx).Model(&models.Comment{}).
		Where("id = ?", commentID).
		Update("reply_count", gorm.Expr("reply_count + ?", delta))
	if res.Error != nil {
		return apperrors.Unavailable("failed to update reply count", res.Error)
	}
	return nil
}

func (a *GormAggregator) IncrementViews(ctx context.Context, postID int) error {
	res := a.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", postID).
		Update("views", gorm.Expr("views + 1"))
	if res.Error != nil {
		return apperrors.Unavailable("failed to update views", res.Error)
	}
	return nil
}
