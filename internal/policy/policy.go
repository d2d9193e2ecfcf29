// Package policy holds the authorization rules for complaints and accounts.
// Every check is a pure function of the actor and resource snapshot it is given.
package policy

import (
	"github.com/resolvease/complaint-service/internal/domain"
	apperrors "github.com/resolvease/complaint-service/pkg/util/errorutil"
)

// ViewComplaint allows the complaint owner and any admin.
func ViewComplaint(actor *domain.User, complaint *domain.Complaint) error {
	if actor == nil || complaint == nil {
		return apperrors.NewPermissionDenied("not authorized to view this complaint")
	}
	if actor.IsAdmin() || actor.ID == complaint.OwnerID {
		return nil
	}
	return apperrors.NewPermissionDenied("not authorized to view this complaint")
}

// ViewAllComplaints requires admin.
func ViewAllComplaints(actor *domain.User) error {
	return requireAdmin(actor)
}

// ManageComplaint covers status updates, assignment and replies. Admin only.
func ManageComplaint(actor *domain.User) error {
	return requireAdmin(actor)
}

// ManageUsers covers listing, reading and editing other accounts. Admin only.
func ManageUsers(actor *domain.User) error {
	return requireAdmin(actor)
}

// DeleteUser forbids removing an admin account other than the actor's own.
func DeleteUser(actor, target *domain.User) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if target.IsAdmin() && target.ID != actor.ID {
		return apperrors.NewForbidden("cannot delete another admin account")
	}
	return nil
}

// AssignComplaint validates an assignee candidate. A nil candidate means the lookup found nothing.
func AssignComplaint(candidate *domain.User) error {
	if candidate == nil {
		return apperrors.NewInvalidAssignment("invalid user to assign", nil)
	}
	if !candidate.Role.Valid() {
		return apperrors.NewInvalidAssignment("invalid user to assign", map[string]any{"role": candidate.Role})
	}
	return nil
}

func requireAdmin(actor *domain.User) error {
	if !actor.IsAdmin() {
		return apperrors.NewPermissionDenied("admin privileges required")
	}
	return nil
}
