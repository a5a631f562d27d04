package access

import (
	"context"
	"testing"
)

func TestMembershipResolver_OwnerAdmin(t *testing.T) {
	store := newFakeStore()
	store.addOwner("usr_carol", "org_acme")
	store.addAdmin("usr_dave", "org_acme")

	resolver := NewMembershipResolver(store)
	ctx := context.Background()

	owner, err := resolver.IsOwner(ctx, "usr_carol", "org_acme")
	if err != nil {
		t.Fatalf("IsOwner: %v", err)
	}
	if !owner {
		t.Error("Expected carol to be owner of acme")
	}

	owner, _ = resolver.IsOwner(ctx, "usr_dave", "org_acme")
	if owner {
		t.Error("Expected dave not to be owner")
	}

	admin, err := resolver.IsAdmin(ctx, "usr_dave", "org_acme")
	if err != nil {
		t.Fatalf("IsAdmin: %v", err)
	}
	if !admin {
		t.Error("Expected dave to be admin of acme")
	}
}

func TestMembershipResolver_GroupsOf(t *testing.T) {
	store := newFakeStore()
	store.addMember("usr_alice", "grp_support", "org_acme")
	store.addMember("usr_alice", "grp_sales", "org_acme")

	resolver := NewMembershipResolver(store)

	groups, err := resolver.GroupsOf(context.Background(), "usr_alice")
	if err != nil {
		t.Fatalf("GroupsOf: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("Expected 2 groups, got %d", len(groups))
	}
	if _, ok := groups["grp_support"]; !ok {
		t.Error("Expected grp_support in group set")
	}

	// no memberships at all is an empty set, not an error
	groups, err = resolver.GroupsOf(context.Background(), "usr_nobody")
	if err != nil {
		t.Fatalf("GroupsOf: %v", err)
	}
	if len(groups) != 0 {
		t.Errorf("Expected empty set, got %d groups", len(groups))
	}
}

func TestMembershipResolver_OrganizationsOf(t *testing.T) {
	store := newFakeStore()
	// alice: member of a group in acme, admin of globex, owner of initech
	store.addMember("usr_alice", "grp_support", "org_acme")
	store.addAdmin("usr_alice", "org_globex")
	store.addOwner("usr_alice", "org_initech")

	resolver := NewMembershipResolver(store)

	orgs, err := resolver.OrganizationsOf(context.Background(), "usr_alice")
	if err != nil {
		t.Fatalf("OrganizationsOf: %v", err)
	}
	for _, want := range []string{"org_acme", "org_globex", "org_initech"} {
		if _, ok := orgs[want]; !ok {
			t.Errorf("Expected %s in organization set", want)
		}
	}
	if len(orgs) != 3 {
		t.Errorf("Expected 3 organizations, got %d", len(orgs))
	}

	belongs, err := resolver.BelongsTo(context.Background(), "usr_alice", "org_acme")
	if err != nil {
		t.Fatalf("BelongsTo: %v", err)
	}
	if !belongs {
		t.Error("Expected alice to belong to acme")
	}

	belongs, _ = resolver.BelongsTo(context.Background(), "usr_alice", "org_umbrella")
	if belongs {
		t.Error("Expected alice not to belong to umbrella")
	}
}
