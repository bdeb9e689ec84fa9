package service

import "errors"

// 业务错误，Error() 文本即返回给客户端的消息
var (
	ErrUnauthenticated      = errors.New("Unauthorized")
	ErrAuthenticationFailed = errors.New("invalid username or password")
	ErrRegistrationFailed   = errors.New("registration failed: username or email already exists")
	ErrInvalidRefreshToken  = errors.New("invalid or expired refresh token")
	ErrInvalidInput         = errors.New("invalid input")
	ErrUserNotFound         = errors.New("User not found")
	ErrUserConflict         = errors.New("Username or email already in use")
	ErrNotAccountOwner      = errors.New("You can only modify your own account")
	ErrUserIsGroupAdmin     = errors.New("Cannot delete a user who is the admin of a group")

	ErrGroupNotFound        = errors.New("Group not found")
	ErrNotGroupAdmin        = errors.New("Only the admin can perform this action")
	ErrPrivateGroup         = errors.New("Cannot join a private group directly")
	ErrAlreadyMember        = errors.New("User is already a member of this group")
	ErrInvitationNotFound   = errors.New("Invalid or expired invitation")
	ErrInvitationExpired    = errors.New("Invitation expired")
	ErrInvitationNotForUser = errors.New("You are not authorized to use this invitation")
	ErrNotGroupMember       = errors.New("User is not in the group")

	ErrInternalServer = errors.New("internal server error")
)

// Kind 是业务错误的分类，Handler 层据此决定 HTTP 状态码。
type Kind int

const (
	KindInternal Kind = iota
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindInvalidInput
	KindInvalidState
	KindConflict
	KindExpired
	KindMembershipRequired
)

func (k Kind) String() string {
	switch k {
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindInvalidInput:
		return "invalid_input"
	case KindInvalidState:
		return "invalid_state"
	case KindConflict:
		return "conflict"
	case KindExpired:
		return "expired"
	case KindMembershipRequired:
		return "membership_required"
	default:
		return "internal"
	}
}

var errorKinds = []struct {
	err  error
	kind Kind
}{
	{ErrUnauthenticated, KindUnauthenticated},
	{ErrAuthenticationFailed, KindUnauthenticated},
	{ErrInvalidRefreshToken, KindUnauthenticated},
	{ErrRegistrationFailed, KindConflict},
	{ErrInvalidInput, KindInvalidInput},
	{ErrUserNotFound, KindNotFound},
	{ErrUserConflict, KindConflict},
	{ErrNotAccountOwner, KindForbidden},
	{ErrUserIsGroupAdmin, KindConflict},
	{ErrGroupNotFound, KindNotFound},
	{ErrNotGroupAdmin, KindForbidden},
	{ErrPrivateGroup, KindInvalidState},
	{ErrAlreadyMember, KindConflict},
	{ErrInvitationNotFound, KindNotFound},
	{ErrInvitationExpired, KindExpired},
	{ErrInvitationNotForUser, KindForbidden},
	{ErrNotGroupMember, KindMembershipRequired},
}

// KindOf 返回错误的分类，未知错误一律视为内部错误。
func KindOf(err error) Kind {
	if err == nil {
		return KindInternal
	}
	for _, ek := range errorKinds {
		if errors.Is(err, ek.err) {
			return ek.kind
		}
	}
	return KindInternal
}
