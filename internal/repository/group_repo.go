package repository

import (
	"context"
	"errors"

	"github.com/mityasmirnov/AnyMatch/internal/db"

	"gorm.io/gorm"
)

// GroupRepository provides data access for groups and their memberships.
type GroupRepository struct {
	db *gorm.DB
}

// NewGroupRepository creates a new repository bound to the given DB connection.
func NewGroupRepository(database *gorm.DB) *GroupRepository {
	return &GroupRepository{db: database}
}

// CreateGroup inserts a new group row.
func (r *GroupRepository) CreateGroup(ctx context.Context, group *db.Group) error {
	return r.db.WithContext(ctx).Create(group).Error
}

// GroupByJoinCode looks a group up by exact code match.
// Returns gorm.ErrRecordNotFound when the code does not resolve.
func (r *GroupRepository) GroupByJoinCode(ctx context.Context, code string) (db.Group, error) {
	var group db.Group
	err := r.db.WithContext(ctx).Where("join_code = ?", code).First(&group).Error
	return group, err
}

// GroupByID fetches a group by primary key.
func (r *GroupRepository) GroupByID(ctx context.Context, groupID uint64) (db.Group, error) {
	var group db.Group
	err := r.db.WithContext(ctx).First(&group, groupID).Error
	return group, err
}

// JoinCodeExists reports whether a group already holds the given code.
// Backs the retry-until-unique loop in group creation.
func (r *GroupRepository) JoinCodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Group{}).
		Where("join_code = ?", code).
		Count(&count).Error
	return count > 0, err
}

// AddMember inserts a membership row.
func (r *GroupRepository) AddMember(ctx context.Context, member *db.GroupMember) error {
	return r.db.WithContext(ctx).Create(member).Error
}

// IsMember reports whether the user belongs to the group.
func (r *GroupRepository) IsMember(ctx context.Context, userID, groupID uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.GroupMember{}).
		Where("user_id = ? AND group_id = ?", userID, groupID).
		Count(&count).Error
	return count > 0, err
}

// Members returns the group's membership rows ordered by join time.
func (r *GroupRepository) Members(ctx context.Context, groupID uint64) ([]db.GroupMember, error) {
	var members []db.GroupMember
	err := r.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("joined_at ASC, id ASC").
		Find(&members).Error
	return members, err
}

// MemberIDs returns the ids of the group's current members.
// An empty result is a valid outcome ("no match possible"), not an error.
func (r *GroupRepository) MemberIDs(ctx context.Context, groupID uint64) ([]uint64, error) {
	var ids []uint64
	err := r.db.WithContext(ctx).
		Model(&db.GroupMember{}).
		Where("group_id = ?", groupID).
		Pluck("user_id", &ids).Error
	return ids, err
}

// GroupWithRole pairs a group with the querying user's role in it.
type GroupWithRole struct {
	db.Group
	Role string
}

// UserGroups lists the groups the user belongs to, newest membership first.
func (r *GroupRepository) UserGroups(ctx context.Context, userID uint64) ([]GroupWithRole, error) {
	var rows []GroupWithRole
	err := r.db.WithContext(ctx).
		Table("group_members gm").
		Select("groups.*, gm.role AS role").
		Joins("INNER JOIN groups ON groups.id = gm.group_id").
		Where("gm.user_id = ?", userID).
		Order("gm.joined_at DESC").
		Scan(&rows).Error
	return rows, err
}

// GroupFilters is the settable subset of a group's content filters.
// Nil fields are left untouched.
type GroupFilters struct {
	MinRating    *int
	FilterGenres []int64
	FilterType   *db.ContentType
}

// UpdateFilters applies the non-nil filter fields to the group.
// Updates go through the model struct so the JSON-serialized genre column
// stays consistent across dialects.
func (r *GroupRepository) UpdateFilters(ctx context.Context, groupID uint64, f GroupFilters) error {
	var fields []string
	var group db.Group
	if f.MinRating != nil {
		group.MinRating = *f.MinRating
		fields = append(fields, "min_rating")
	}
	if f.FilterGenres != nil {
		group.FilterGenres = f.FilterGenres
		fields = append(fields, "filter_genres")
	}
	if f.FilterType != nil {
		group.FilterType = *f.FilterType
		fields = append(fields, "filter_type")
	}
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&db.Group{}).
		Where("id = ?", groupID).
		Select(fields).
		Updates(&group).Error
}

// IsDuplicateKey reports whether err is the store's uniqueness violation.
// Callers that race on membership insertion treat it as "already a member".
func IsDuplicateKey(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
