package groups

import (
	"context"
	"errors"

	"github.com/mityasmirnov/AnyMatch/internal/app"
	"github.com/mityasmirnov/AnyMatch/internal/db"
	svcErr "github.com/mityasmirnov/AnyMatch/internal/errors"
	"github.com/mityasmirnov/AnyMatch/internal/repository"
	"github.com/mityasmirnov/AnyMatch/internal/utils/joincode"

	"gorm.io/gorm"
)

// Service manages group lifecycle: creation with a collision-retried join
// code, idempotent joins, filters, and the materialized match list.
type Service struct {
	appCtx    *app.AppContext
	groupRepo *repository.GroupRepository
	matchRepo *repository.MatchRepository
	codes     *joincode.Generator
}

// NewService creates the groups service with dependencies from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:    appCtx,
		groupRepo: repository.NewGroupRepository(appCtx.DB),
		matchRepo: repository.NewMatchRepository(appCtx.DB),
		codes:     joincode.NewGenerator(),
	}
}

// NewServiceWithGenerator lets tests seed the code generator.
func NewServiceWithGenerator(appCtx *app.AppContext, gen *joincode.Generator) *Service {
	s := NewService(appCtx)
	s.codes = gen
	return s
}

// CreateResult is the outcome of group creation.
type CreateResult struct {
	GroupID  uint64
	JoinCode string
}

// Create makes a new group, generates a unique join code (retrying on
// collision) and adds the creator as owner. Groups never expire.
func (s *Service) Create(ctx context.Context, creatorID uint64, name string) (CreateResult, error) {
	if creatorID == 0 {
		return CreateResult{}, svcErr.InvalidInput("creator id is required")
	}
	if name == "" || len(name) > 255 {
		return CreateResult{}, svcErr.InvalidInput("group name must be 1-255 characters")
	}

	code, err := joincode.Unique(ctx, s.codes.GroupCode, s.groupRepo.JoinCodeExists)
	if err != nil {
		return CreateResult{}, err
	}

	group := &db.Group{
		Name:       name,
		JoinCode:   code,
		CreatedBy:  creatorID,
		FilterType: db.ContentBoth,
	}
	if err := s.groupRepo.CreateGroup(ctx, group); err != nil {
		return CreateResult{}, err
	}

	owner := &db.GroupMember{GroupID: group.ID, UserID: creatorID, Role: db.RoleOwner}
	if err := s.groupRepo.AddMember(ctx, owner); err != nil {
		return CreateResult{}, err
	}

	s.appCtx.Logger.Info("group created", "group", group.ID, "code", code)
	return CreateResult{GroupID: group.ID, JoinCode: code}, nil
}

// JoinResult distinguishes a fresh join from an idempotent re-join.
type JoinResult struct {
	GroupID       uint64
	AlreadyMember bool
}

// Join adds the user to the group behind the code.
//
// Behavior:
//   - malformed code → InvalidInput before any store access
//   - unknown code → NotFound
//   - already a member → non-error result with AlreadyMember set; the
//     membership uniqueness constraint is never surfaced to the caller
func (s *Service) Join(ctx context.Context, userID uint64, code string) (JoinResult, error) {
	if userID == 0 {
		return JoinResult{}, svcErr.InvalidInput("user id is required")
	}
	code = joincode.Normalize(code)
	if !joincode.ValidGroupCode(code) {
		return JoinResult{}, svcErr.InvalidInput("join code must be 6 characters")
	}

	group, err := s.groupRepo.GroupByJoinCode(ctx, code)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return JoinResult{}, svcErr.ErrNotFound
	}
	if err != nil {
		return JoinResult{}, err
	}

	isMember, err := s.groupRepo.IsMember(ctx, userID, group.ID)
	if err != nil {
		return JoinResult{}, err
	}
	if isMember {
		return JoinResult{GroupID: group.ID, AlreadyMember: true}, nil
	}

	member := &db.GroupMember{GroupID: group.ID, UserID: userID, Role: db.RoleMember}
	if err := s.groupRepo.AddMember(ctx, member); err != nil {
		// two concurrent joins race past the IsMember check; the unique
		// index resolves it and both callers see "already a member"
		if repository.IsDuplicateKey(err) {
			return JoinResult{GroupID: group.ID, AlreadyMember: true}, nil
		}
		return JoinResult{}, err
	}

	return JoinResult{GroupID: group.ID, AlreadyMember: false}, nil
}

// List returns the groups the user belongs to, with the user's role.
func (s *Service) List(ctx context.Context, userID uint64) ([]repository.GroupWithRole, error) {
	return s.groupRepo.UserGroups(ctx, userID)
}

// Detail is a group plus its membership rows.
type Detail struct {
	db.Group
	Members []db.GroupMember
}

// Get returns the group with members. Callers outside the membership get
// ErrNotMember, not the group data.
func (s *Service) Get(ctx context.Context, userID, groupID uint64) (Detail, error) {
	group, err := s.groupRepo.GroupByID(ctx, groupID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Detail{}, svcErr.ErrNotFound
	}
	if err != nil {
		return Detail{}, err
	}

	if err := s.requireMember(ctx, userID, groupID); err != nil {
		return Detail{}, err
	}

	members, err := s.groupRepo.Members(ctx, groupID)
	if err != nil {
		return Detail{}, err
	}
	return Detail{Group: group, Members: members}, nil
}

// UpdateFilters applies content filters to the group. Member-only.
func (s *Service) UpdateFilters(ctx context.Context, userID, groupID uint64, filters repository.GroupFilters) error {
	if filters.FilterType != nil {
		switch *filters.FilterType {
		case db.ContentMovie, db.ContentTV, db.ContentBoth:
		default:
			return svcErr.InvalidInput("filter type must be movie, tv or both")
		}
	}
	if filters.MinRating != nil && (*filters.MinRating < 0 || *filters.MinRating > 100) {
		return svcErr.InvalidInput("min rating must be 0-100")
	}

	if err := s.requireMember(ctx, userID, groupID); err != nil {
		return err
	}
	return s.groupRepo.UpdateFilters(ctx, groupID, filters)
}

// Matches returns the group's materialized matches, newest first.
// Each row is the point-in-time fact recorded at detection; membership
// changes after the fact do not rewrite it.
func (s *Service) Matches(ctx context.Context, userID, groupID uint64) ([]db.Match, error) {
	if err := s.requireMember(ctx, userID, groupID); err != nil {
		return nil, err
	}
	return s.matchRepo.MatchesForGroup(ctx, groupID)
}

// MarkWatched sets the watched flag on a match. Member-only.
func (s *Service) MarkWatched(ctx context.Context, userID, matchID uint64) error {
	m, err := s.matchRepo.MatchByID(ctx, matchID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return svcErr.ErrNotFound
	}
	if err != nil {
		return err
	}

	if err := s.requireMember(ctx, userID, m.GroupID); err != nil {
		return err
	}
	return s.matchRepo.MarkWatched(ctx, matchID)
}

func (s *Service) requireMember(ctx context.Context, userID, groupID uint64) error {
	isMember, err := s.groupRepo.IsMember(ctx, userID, groupID)
	if err != nil {
		return err
	}
	if !isMember {
		return svcErr.ErrNotMember
	}
	return nil
}
