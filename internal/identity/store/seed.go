package store

import (
	"context"
	"fmt"
	"time"

	"usersearch/internal/identity/groups"
	"usersearch/internal/identity/models"
	"usersearch/internal/search/index"
	id "usersearch/pkg/domain"
)

// Writer is the write side shared by every identity backend.
type Writer interface {
	Put(ctx context.Context, identity *models.Identity) error
	PutHandle(ctx context.Context, handle string, uid id.UID) error
	Block(ctx context.Context, uid, target id.UID, at int64) error
}

// GroupWriter adds group members.
type GroupWriter interface {
	Join(ctx context.Context, group string, uid id.UID, at int64) error
}

type demoIdentity struct {
	identity *models.Identity
	ips      []string
	groups   []string
}

// SeedDemo loads a small population of local and federated identities with
// their name indexes, IP history and group memberships. It is meant for
// local runs against the in-memory backends.
func SeedDemo(ctx context.Context, w Writer, idx index.Writer, g GroupWriter, now time.Time) error {
	ms := now.UnixMilli()
	minute := int64(time.Minute / time.Millisecond)
	day := int64(24 * time.Hour / time.Millisecond)

	population := []demoIdentity{
		{
			identity: &models.Identity{UID: "1", Username: "admin", Userslug: "admin", Fullname: "Site Admin",
				Status: "online", LastOnline: ms - minute, JoinDate: ms - 400*day, PostCount: 812, Reputation: 95, EmailConfirmed: true},
			ips:    []string{"10.0.0.1"},
			groups: []string{"administrators", "mods"},
		},
		{
			identity: &models.Identity{UID: "2", Username: "alice", Userslug: "alice", Fullname: "Alice Liddell", Nickname: "ally",
				Status: "online", LastOnline: ms - 2*minute, JoinDate: ms - 120*day, PostCount: 140, Reputation: 31, EmailConfirmed: true},
			ips:    []string{"10.0.0.12", "192.168.1.20"},
			groups: []string{"mods"},
		},
		{
			identity: &models.Identity{UID: "3", Username: "alicia", Userslug: "alicia", Fullname: "Alicia Keys",
				Status: "away", LastOnline: ms - 30*minute, JoinDate: ms - 60*day, PostCount: 12, Reputation: 2, Flags: 3},
			ips: []string{"10.0.0.12"},
		},
		{
			identity: &models.Identity{UID: "4", Username: "bob", Userslug: "bob", Fullname: "Bob Builder",
				Status: "offline", LastOnline: ms - 3*day, JoinDate: ms - 10*day, PostCount: 3, EmailConfirmed: true},
			ips:    []string{"172.16.4.2"},
			groups: []string{groups.BannedGroup},
		},
		{
			identity: &models.Identity{UID: "5", Username: "carol", Userslug: "carol", Nickname: "caz",
				Status: "dnd", LastOnline: ms - 4*minute, JoinDate: ms - 5*day, PostCount: 57, Reputation: 12},
			ips: []string{"192.168.1.20"},
		},
	}

	for i, p := range population {
		if err := seedOne(ctx, w, idx, g, p, ms-int64(i)*minute); err != nil {
			return err
		}
	}

	remote := &models.Identity{UID: "https://remote.example/users/alice", Username: "alice@remote.example",
		Userslug: "alice@remote.example", Fullname: "Alice (remote)", Status: "online", LastOnline: ms - 10*minute}
	if err := w.Put(ctx, remote); err != nil {
		return err
	}
	if err := w.PutHandle(ctx, "alice@remote.example", remote.UID); err != nil {
		return err
	}
	if err := addEntry(ctx, idx, index.FieldActorPreferredUsername, "alice", remote.UID); err != nil {
		return err
	}
	if err := addEntry(ctx, idx, index.FieldActorName, remote.Fullname, remote.UID); err != nil {
		return err
	}

	return w.Block(ctx, "2", "3", ms)
}

func seedOne(ctx context.Context, w Writer, idx index.Writer, g GroupWriter, p demoIdentity, seen int64) error {
	u := p.identity
	if err := w.Put(ctx, u); err != nil {
		return err
	}
	names := map[string]string{
		index.FieldUsername: u.Username,
		index.FieldFullname: u.Fullname,
		index.FieldNickname: u.Nickname,
	}
	for field, value := range names {
		if value == "" {
			continue
		}
		if err := addEntry(ctx, idx, field, value, u.UID); err != nil {
			return err
		}
	}
	for _, ip := range p.ips {
		if err := idx.Add(ctx, index.IPKey(ip), float64(seen), u.UID.String()); err != nil {
			return fmt.Errorf("seed ip history: %w", err)
		}
	}
	for _, group := range p.groups {
		if err := g.Join(ctx, group, u.UID, seen); err != nil {
			return fmt.Errorf("seed group %s: %w", group, err)
		}
	}
	return nil
}

func addEntry(ctx context.Context, idx index.Writer, field, value string, owner id.UID) error {
	if err := idx.Add(ctx, index.SortedKey(field), 0, index.NewEntry(value, owner).Encode()); err != nil {
		return fmt.Errorf("seed %s index: %w", field, err)
	}
	return nil
}
