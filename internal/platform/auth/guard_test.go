package auth

import (
	"testing"

	"github.com/google/uuid"
)

func TestCanAccess_OwnerReadUpdateDelete(t *testing.T) {
	ownerID := uuid.New()
	p := Principal{ID: ownerID, LoginID: "doc-1"}

	for _, action := range []Action{ActionRead, ActionUpdate, ActionDelete} {
		if !CanAccess(p, &ownerID, action) {
			t.Errorf("expected owner to be allowed %s", action)
		}
	}
}

func TestCanAccess_OwnerCannotReassign(t *testing.T) {
	ownerID := uuid.New()
	p := Principal{ID: ownerID, LoginID: "doc-1"}

	if CanAccess(p, &ownerID, ActionReassignOwner) {
		t.Error("expected reassignment to be denied for non-superuser owner")
	}
}

func TestCanAccess_NonOwnerDenied(t *testing.T) {
	ownerID := uuid.New()
	p := Principal{ID: uuid.New(), LoginID: "doc-2"}

	for _, action := range []Action{ActionRead, ActionUpdate, ActionDelete, ActionReassignOwner} {
		if CanAccess(p, &ownerID, action) {
			t.Errorf("expected non-owner to be denied %s", action)
		}
	}
}

func TestCanAccess_SuperuserAlwaysAllowed(t *testing.T) {
	ownerID := uuid.New()
	super := Principal{ID: uuid.New(), LoginID: "admin-1", Superuser: true}

	for _, action := range []Action{ActionRead, ActionUpdate, ActionDelete, ActionReassignOwner} {
		if !CanAccess(super, &ownerID, action) {
			t.Errorf("expected superuser to be allowed %s on another's record", action)
		}
		if !CanAccess(super, nil, action) {
			t.Errorf("expected superuser to be allowed %s on orphaned record", action)
		}
	}
}

func TestCanAccess_OrphanedRecordDeniedForNonSuperuser(t *testing.T) {
	p := Principal{ID: uuid.New(), LoginID: "doc-1"}

	for _, action := range []Action{ActionRead, ActionUpdate, ActionDelete} {
		if CanAccess(p, nil, action) {
			t.Errorf("expected orphaned record %s to be denied for non-superuser", action)
		}
	}
}

func TestCanAccess_SuperuserOwnRecord(t *testing.T) {
	super := Principal{ID: uuid.New(), LoginID: "admin-1", Superuser: true}
	ownID := super.ID

	if !CanAccess(super, &ownID, ActionReassignOwner) {
		t.Error("expected superuser to reassign their own record")
	}
}
