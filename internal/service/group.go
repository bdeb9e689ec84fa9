package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Gursimran75-way/Group-Chat-Backend/internal/domain"
	"github.com/Gursimran75-way/Group-Chat-Backend/internal/metrics"
	"github.com/Gursimran75-way/Group-Chat-Backend/internal/repository"

	"github.com/sirupsen/logrus"
)

const (
	inviteTokenBytes       = 32 // 256 bit
	maxInviteTokenAttempts = 5
	acceptInvitationPath   = "/api/groups/accept-invitation/"
)

// InvitationLinks 是创建邀请后返回给管理员的链接。
type InvitationLinks struct {
	InvitationLink string
	FrontendLink   string
}

// GroupCount 是 Analytics 中单个群组的成员统计。
type GroupCount struct {
	GroupID      uint
	Name         string
	TotalMembers int
}

// AdminAnalytics 汇总调用者作为管理员的群组。
type AdminAnalytics struct {
	TotalGroupsCreated int64
	GroupUserCounts    []GroupCount
}

// GroupDetail 是群组及其管理员、成员的公开资料。
type GroupDetail struct {
	Group   *domain.Group
	Admin   *domain.PublicUser // 管理员账号已不存在时为 nil
	Members []domain.PublicUser
}

// GroupServiceOption 用于替换 GroupService 的时钟和 token 生成器。
type GroupServiceOption func(*GroupService)

// WithClock 设置 GroupService 使用的时钟。
func WithClock(now func() time.Time) GroupServiceOption {
	return func(s *GroupService) { s.now = now }
}

// WithTokenGenerator 设置邀请 token 生成器。
func WithTokenGenerator(gen func() (string, error)) GroupServiceOption {
	return func(s *GroupService) { s.newToken = gen }
}

// GroupService 负责群组生命周期: 创建、加入、邀请、编辑、删除和统计。
type GroupService struct {
	groupRepo       repository.GroupRepository
	userRepo        repository.UserRepository
	cascade         *CascadeCoordinator
	frontendBaseURL string
	now             func() time.Time
	newToken        func() (string, error)
}

// NewGroupService 创建 GroupService 实例。
func NewGroupService(groupRepo repository.GroupRepository, userRepo repository.UserRepository, cascade *CascadeCoordinator, frontendBaseURL string, opts ...GroupServiceOption) *GroupService {
	if groupRepo == nil || userRepo == nil || cascade == nil {
		panic("GroupRepository, UserRepository and CascadeCoordinator cannot be nil for GroupService")
	}
	s := &GroupService{
		groupRepo:       groupRepo,
		userRepo:        userRepo,
		cascade:         cascade,
		frontendBaseURL: strings.TrimRight(frontendBaseURL, "/"),
		now:             time.Now,
		newToken:        randomHexToken,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateGroup 创建群组，调用者成为管理员和唯一成员。
func (s *GroupService) CreateGroup(ctx context.Context, callerID uint, name string, groupType domain.GroupType) (group *domain.Group, err error) {
	defer observe("create_group", &err)
	logCtx := logrus.WithFields(logrus.Fields{"caller_id": callerID, "group_type": groupType})

	if callerID == 0 {
		return nil, ErrUnauthenticated
	}
	name = strings.TrimSpace(name)
	if name == "" || !groupType.Valid() {
		logCtx.Warn("CreateGroup: invalid name or group type")
		return nil, ErrInvalidInput
	}

	group = domain.NewGroup(name, groupType, callerID)
	if err := s.groupRepo.Save(ctx, group); err != nil {
		logCtx.WithError(err).Error("CreateGroup: failed to save group")
		return nil, ErrInternalServer
	}
	logCtx = logCtx.WithField("group_id", group.ID)

	if err := s.userRepo.AddGroupReference(ctx, callerID, group.ID); err != nil {
		logCtx.WithError(err).Error("CreateGroup: failed to add group reference to admin, rolling back")
		if delErr := s.groupRepo.Delete(ctx, group.ID); delErr != nil {
			logCtx.WithError(delErr).Error("CreateGroup: rollback of group failed")
		}
		return nil, ErrInternalServer
	}

	logCtx.Info("Group created successfully")
	return group, nil
}

// JoinPublicGroup 将调用者直接加入公开群组。
func (s *GroupService) JoinPublicGroup(ctx context.Context, callerID, groupID uint) (err error) {
	defer observe("join_group", &err)
	logCtx := logrus.WithFields(logrus.Fields{"caller_id": callerID, "group_id": groupID})

	if callerID == 0 {
		return ErrUnauthenticated
	}
	group, err := s.findGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if !group.IsPublic() {
		logCtx.Warn("JoinPublicGroup: group is private")
		return ErrPrivateGroup
	}
	if err := group.AddMember(callerID); err != nil {
		logCtx.Warn("JoinPublicGroup: caller is already a member")
		return ErrAlreadyMember
	}

	if err := s.saveGroup(ctx, group); err != nil {
		logCtx.WithError(err).Error("JoinPublicGroup: failed to save group")
		return ErrInternalServer
	}
	if err := s.userRepo.AddGroupReference(ctx, callerID, group.ID); err != nil {
		logCtx.WithError(err).Error("JoinPublicGroup: failed to add group reference")
		return ErrInternalServer
	}

	logCtx.Info("User joined public group")
	return nil
}

// CreateInvitation 由管理员为指定用户签发 24 小时有效的邀请。
// 目标用户是否存在在接受邀请时才校验。
func (s *GroupService) CreateInvitation(ctx context.Context, callerID, groupID, targetUserID uint) (links *InvitationLinks, err error) {
	defer observe("create_invitation", &err)
	logCtx := logrus.WithFields(logrus.Fields{"caller_id": callerID, "group_id": groupID, "target_user_id": targetUserID})

	if callerID == 0 {
		return nil, ErrUnauthenticated
	}
	if targetUserID == 0 {
		return nil, ErrInvalidInput
	}
	group, err := s.findGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.IsAdmin(callerID) {
		logCtx.Warn("CreateInvitation: caller is not the group admin")
		return nil, ErrNotGroupAdmin
	}
	if group.IsMember(targetUserID) {
		logCtx.Warn("CreateInvitation: target is already a member")
		return nil, ErrAlreadyMember
	}

	token, err := s.generateUniqueToken(ctx)
	if err != nil {
		logCtx.WithError(err).Error("CreateInvitation: failed to generate invitation token")
		return nil, ErrInternalServer
	}
	issuedAt := s.now()
	group.Invitations.Append(domain.Invitation{
		GroupID:      group.ID,
		TargetUserID: targetUserID,
		Token:        token,
		ExpiresAt:    issuedAt.Add(domain.InvitationTTL),
	})

	if err := s.saveGroup(ctx, group); err != nil {
		logCtx.WithError(err).Error("CreateInvitation: failed to save invitation")
		return nil, ErrInternalServer
	}

	logCtx.Info("Invitation created")
	return &InvitationLinks{
		InvitationLink: acceptInvitationPath + token,
		FrontendLink:   s.frontendBaseURL + "/groups/invitations/" + token,
	}, nil
}

// AcceptInvitation 使用邀请 token 加入群组。
// claimedEmail 必须是已经通过密码核验的身份 (见 AuthService.Authenticate)，
// 且必须是邀请签发时指定的用户。成功后该 token 的所有条目都会被移除。
func (s *GroupService) AcceptInvitation(ctx context.Context, token, claimedEmail string) (group *domain.Group, err error) {
	defer observe("accept_invitation", &err)
	claimedEmail = domain.NormalizeEmail(claimedEmail)
	logCtx := logrus.WithField("email", claimedEmail)

	if claimedEmail == "" {
		return nil, ErrUnauthenticated
	}
	user, err := s.userRepo.FindByEmail(ctx, claimedEmail)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			logCtx.Warn("AcceptInvitation: no user for claimed email")
			return nil, ErrUnauthenticated
		}
		logCtx.WithError(err).Error("AcceptInvitation: failed to look up user")
		return nil, ErrInternalServer
	}
	logCtx = logCtx.WithField("user_id", user.ID)

	if token == "" {
		return nil, ErrInvitationNotFound
	}
	group, err = s.groupRepo.FindByInviteToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrGroupNotFound) {
			logCtx.Warn("AcceptInvitation: no group holds the token")
			return nil, ErrInvitationNotFound
		}
		logCtx.WithError(err).Error("AcceptInvitation: failed to look up invitation")
		return nil, ErrInternalServer
	}
	logCtx = logCtx.WithField("group_id", group.ID)

	invitation, ok := group.Invitations.Find(token)
	if !ok || invitation.Expired(s.now()) {
		logCtx.Warn("AcceptInvitation: invitation expired")
		return nil, ErrInvitationExpired
	}
	if !invitation.BoundTo(user.ID) {
		logCtx.Warn("AcceptInvitation: invitation was issued to another user")
		return nil, ErrInvitationNotForUser
	}
	if err := group.AddMember(user.ID); err != nil {
		logCtx.Warn("AcceptInvitation: user is already a member")
		return nil, ErrAlreadyMember
	}
	group.Invitations.RemoveToken(token)

	if err := s.saveGroup(ctx, group); err != nil {
		logCtx.WithError(err).Error("AcceptInvitation: failed to save group")
		return nil, ErrInternalServer
	}
	if err := s.userRepo.AddGroupReference(ctx, user.ID, group.ID); err != nil {
		logCtx.WithError(err).Error("AcceptInvitation: failed to add group reference")
		return nil, ErrInternalServer
	}

	logCtx.Info("Invitation accepted")
	return group, nil
}

// Analytics 返回调用者作为管理员创建的群组数量及各群成员数。
func (s *GroupService) Analytics(ctx context.Context, callerID uint) (*AdminAnalytics, error) {
	logCtx := logrus.WithField("caller_id", callerID)
	if callerID == 0 {
		return nil, ErrUnauthenticated
	}

	total, err := s.groupRepo.CountByAdmin(ctx, callerID)
	if err != nil {
		logCtx.WithError(err).Error("Analytics: failed to count groups")
		return nil, ErrInternalServer
	}
	groups, err := s.groupRepo.FindByAdmin(ctx, callerID)
	if err != nil {
		logCtx.WithError(err).Error("Analytics: failed to list groups")
		return nil, ErrInternalServer
	}

	counts := make([]GroupCount, 0, len(groups))
	for _, g := range groups {
		counts = append(counts, GroupCount{GroupID: g.ID, Name: g.Name, TotalMembers: g.Members.Len()})
	}
	return &AdminAnalytics{TotalGroupsCreated: total, GroupUserCounts: counts}, nil
}

// GroupAnalytics 返回群组详情，管理员和成员解析为公开资料。
func (s *GroupService) GroupAnalytics(ctx context.Context, groupID uint) (*GroupDetail, error) {
	group, err := s.findGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	users, err := s.userRepo.FindByIDs(ctx, group.Members.IDs())
	if err != nil {
		logrus.WithError(err).WithField("group_id", groupID).Error("GroupAnalytics: failed to resolve members")
		return nil, ErrInternalServer
	}

	detail := &GroupDetail{Group: group, Members: make([]domain.PublicUser, 0, len(users))}
	for i := range users {
		public := users[i].Public()
		detail.Members = append(detail.Members, public)
		if users[i].ID == group.AdminID {
			detail.Admin = &public
		}
	}
	return detail, nil
}

// EditGroup 修改群组名称。
// 目前任何已登录用户都可以修改，没有管理员校验。
func (s *GroupService) EditGroup(ctx context.Context, groupID uint, name string) (group *domain.Group, err error) {
	defer observe("edit_group", &err)
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidInput
	}
	group, err = s.groupRepo.Rename(ctx, groupID, name)
	if err != nil {
		if errors.Is(err, repository.ErrGroupNotFound) {
			return nil, ErrGroupNotFound
		}
		logrus.WithError(err).WithField("group_id", groupID).Error("EditGroup: failed to rename group")
		return nil, ErrInternalServer
	}
	return group, nil
}

// DeleteGroup 由管理员删除群组。
// 顺序: 解绑成员 -> 清理消息 -> 删除群组。级联失败只记录并安排重试，不影响删除结果。
func (s *GroupService) DeleteGroup(ctx context.Context, groupID, callerID uint) (report CascadeReport, err error) {
	defer observe("delete_group", &err)
	logCtx := logrus.WithFields(logrus.Fields{"caller_id": callerID, "group_id": groupID})

	if callerID == 0 {
		return report, ErrUnauthenticated
	}
	group, err := s.findGroup(ctx, groupID)
	if err != nil {
		return report, err
	}
	if !group.IsAdmin(callerID) {
		logCtx.Warn("DeleteGroup: caller is not the group admin")
		return report, ErrNotGroupAdmin
	}

	report = s.cascade.Run(ctx, group)

	if err := s.groupRepo.Delete(ctx, group.ID); err != nil {
		logCtx.WithError(err).Error("DeleteGroup: failed to delete group record")
		return report, ErrInternalServer
	}

	logCtx.WithField("cascade_complete", report.Complete()).Info("Group deleted")
	return report, nil
}

// GetPublicGroups 返回所有公开群组。
func (s *GroupService) GetPublicGroups(ctx context.Context) ([]domain.Group, error) {
	groups, err := s.groupRepo.FindPublic(ctx)
	if err != nil {
		logrus.WithError(err).Error("GetPublicGroups: failed to list public groups")
		return nil, ErrInternalServer
	}
	return groups, nil
}

// --- 私有辅助函数 ---

func (s *GroupService) findGroup(ctx context.Context, groupID uint) (*domain.Group, error) {
	group, err := s.groupRepo.FindByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, repository.ErrGroupNotFound) {
			logrus.WithField("group_id", groupID).Warn("Group not found")
			return nil, ErrGroupNotFound
		}
		logrus.WithError(err).WithField("group_id", groupID).Error("Failed to load group")
		return nil, ErrInternalServer
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}
	return group, nil
}

// saveGroup 在写入前清理已过期的邀请条目。
func (s *GroupService) saveGroup(ctx context.Context, group *domain.Group) error {
	if n := group.Invitations.PruneExpired(s.now()); n > 0 {
		logrus.WithFields(logrus.Fields{"group_id": group.ID, "pruned": n}).Debug("Pruned expired invitations")
	}
	if err := group.CheckInvariants(); err != nil {
		return err
	}
	return s.groupRepo.Save(ctx, group)
}

// generateUniqueToken 生成一个尚未被任何群组使用的邀请 token
func (s *GroupService) generateUniqueToken(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxInviteTokenAttempts; attempt++ {
		token, err := s.newToken()
		if err != nil {
			return "", err
		}
		exists, err := s.groupRepo.IsInviteTokenExists(ctx, token)
		if err != nil {
			return "", fmt.Errorf("database error checking invitation token: %w", err)
		}
		if !exists {
			return token, nil
		}
		logrus.Warnf("Generated invitation token already exists, retrying (attempt %d)...", attempt+1)
	}
	return "", fmt.Errorf("failed to generate a unique invitation token after %d attempts", maxInviteTokenAttempts)
}

func randomHexToken() (string, error) {
	b := make([]byte, inviteTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// observe 记录操作结果指标，在 defer 中调用
func observe(operation string, err *error) {
	result := "ok"
	if *err != nil {
		result = KindOf(*err).String()
	}
	metrics.ObserveOperation(operation, result)
}
