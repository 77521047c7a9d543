// Package policy は所有者とロールに基づく認可判定を提供する。
//
// 判定はリソース種別に依存せず、呼び出し元のIDとロール、リソースの所有者IDだけから決まる。
package policy

import (
	"github.com/hitoshi/blogapi/internal/model"
)

// Tier は認可の段階。後の段階ほど許可範囲が広い。
type Tier int

const (
	// TierOwner は所有者のみ許可する。
	TierOwner Tier = iota + 1
	// TierOwnerOrAdmin は所有者またはADMINを許可する。
	TierOwnerOrAdmin
	// TierOwnerOrModerator は所有者、MODERATOR、ADMINを許可する。
	TierOwnerOrModerator
)

// String はログ・メトリクス用の段階名を返す。
func (t Tier) String() string {
	switch t {
	case TierOwner:
		return "owner"
	case TierOwnerOrAdmin:
		return "owner_or_admin"
	case TierOwnerOrModerator:
		return "owner_or_moderator_or_admin"
	default:
		return "unknown"
	}
}

// Decision は認可判定の結果。
type Decision int

const (
	// Deny は拒否。ゼロ値とする。
	Deny Decision = iota
	// Allow は許可。
	Allow
)

// String はログ・メトリクス用の判定名を返す。
func (d Decision) String() string {
	if d == Allow {
		return "allow"
	}
	return "deny"
}

// リソース種別
const (
	ResourceUser    = "user"
	ResourcePost    = "post"
	ResourceComment = "comment"
)

// 操作
const (
	ActionUpdate     = "update"
	ActionDelete     = "delete"
	ActionChangeRole = "change_role"
)

// Evaluate は呼び出し元がownerIDのリソースに対してtierの操作を行えるかを判定する。
// 副作用を持たず、同じ入力に対して常に同じ結果を返す。
// callerがnil、または未知のtier・ロールの場合はDenyとなる。
func Evaluate(caller *model.User, ownerID string, tier Tier) Decision {
	if caller == nil {
		return Deny
	}

	isOwner := caller.ID != "" && caller.ID == ownerID

	switch tier {
	case TierOwner:
		return decide(isOwner)
	case TierOwnerOrAdmin:
		return decide(isOwner || roleAllowed(caller.Role, tier))
	case TierOwnerOrModerator:
		return decide(isOwner || roleAllowed(caller.Role, tier))
	default:
		return Deny
	}
}

// roleAllowed は所有者でない呼び出し元について、ロールだけで許可されるかを返す。
func roleAllowed(role model.Role, tier Tier) bool {
	switch role {
	case model.RoleAdmin:
		return tier == TierOwnerOrAdmin || tier == TierOwnerOrModerator
	case model.RoleModerator:
		return tier == TierOwnerOrModerator
	case model.RoleUser:
		return false
	default:
		return false
	}
}

// EvaluateAdmin はロール変更のような管理者専用操作を判定する。所有関係は考慮しない。
func EvaluateAdmin(caller *model.User) Decision {
	if caller == nil {
		return Deny
	}
	switch caller.Role {
	case model.RoleAdmin:
		return Allow
	case model.RoleModerator, model.RoleUser:
		return Deny
	default:
		return Deny
	}
}

func decide(ok bool) Decision {
	if ok {
		return Allow
	}
	return Deny
}
