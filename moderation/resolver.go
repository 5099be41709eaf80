package moderation

import "warden-bot/model"

// CanModerate decides whether actor may perform kind against target within
// the guild hierarchy described by the role table. It is pure: no store, no
// gateway, no state beyond its arguments.
//
// Rules, first match wins:
//  1. an owner target is never a valid subject, for anyone, including an
//     owner actor acting on themself
//  2. the system actor may always lift restrictions it is enforcing
//  3. an owner actor may act on anyone else
//  4. an administrator-override role allows everything
//  5. otherwise the actor must strictly outrank the target (equal rank is
//     peer-on-peer and always denied) and hold the platform's base
//     permission bit for the kind
func CanModerate(actor, target model.Member, roles map[string]model.Role, kind model.ActionKind) (bool, DenialReason) {
	if target.IsOwner {
		return false, DenialTargetIsOwner
	}
	if actor.IsSystem() && kind.Lifting() {
		return true, ""
	}
	if actor.IsOwner {
		return true, ""
	}
	if actor.HasAdministratorOverride(roles) {
		return true, ""
	}

	actorRank := actor.MaxRank(roles)
	targetRank := target.MaxRank(roles)
	if actorRank < targetRank {
		return false, DenialLowerRank
	}
	if actorRank == targetRank {
		return false, DenialEqualRank
	}
	if !actor.HasBaseCapability(kind) {
		return false, DenialMissingBasePermission
	}
	return true, ""
}
