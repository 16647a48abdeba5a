package report

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/chargewatch/session-report/pkg/client"
	"github.com/chargewatch/session-report/pkg/pagination"
	"github.com/chargewatch/session-report/pkg/schema"
)

// resolveIdentity fetches holder users for the session set. Sessions with a
// resolved positive userId are fetched directly; label-less sessions that
// only carry an id-tag go through the identity-tag resource to discover an
// owning userId first. All lookups are per-id and best-effort: a failure
// leaves that session's holder attributes absent.
func (r *run) resolveIdentity(ctx context.Context) {
	var userIDs []int64
	for _, s := range r.sessions {
		if s.UserID > 0 {
			userIDs = append(userIDs, s.UserID)
		}
	}
	r.users = pagination.FanOut(ctx, StageUsers, userIDs, r.batch, r.fetchUser)

	var tags []string
	for _, s := range r.sessions {
		if s.UserID == 0 && s.IdTag != "" && strings.TrimSpace(s.Label) == "" {
			tags = append(tags, s.IdTag)
		}
	}
	if len(tags) == 0 {
		return
	}

	r.tagUsers = pagination.FanOut(ctx, StageIdTags, tags, r.batch, r.lookupTagUser)

	var discovered []int64
	for _, uid := range r.tagUsers {
		if _, have := r.users[uid]; !have {
			discovered = append(discovered, uid)
		}
	}
	for id, u := range pagination.FanOut(ctx, StageUsers, discovered, r.batch, r.fetchUser) {
		r.users[id] = u
	}
}

// fetchUser retrieves one user by id. The endpoint returns the entity bare
// or wrapped as {"data": {...}}.
func (r *run) fetchUser(ctx context.Context, id int64) (*User, error) {
	var raw map[string]any
	if err := r.api.GetJSON(ctx, StageUsers, fmt.Sprintf("/users/%d", id), &raw); err != nil {
		return nil, err
	}
	entity := client.UnwrapEntity(raw)

	u := &User{ID: id}
	if email, ok := schema.StringValue(entity, userEmailKeys...); ok && email != "" {
		u.Email = &email
	}
	if name := displayName(entity); name != "" {
		u.Name = &name
	}
	return u, nil
}

// displayName derives a user's display name: the explicit name field, else
// first and last name joined with a space, omitting either if absent.
func displayName(entity map[string]any) string {
	if name, ok := schema.StringValue(entity, userNameKeys...); ok && strings.TrimSpace(name) != "" {
		return name
	}
	var parts []string
	if first, ok := schema.StringValue(entity, userFirstKeys...); ok && first != "" {
		parts = append(parts, first)
	}
	if last, ok := schema.StringValue(entity, userLastKeys...); ok && last != "" {
		parts = append(parts, last)
	}
	return strings.Join(parts, " ")
}

// lookupTagUser queries the identity-tag resource filtered by tag value to
// discover the owning userId, if any. Page size 1: the tag value is unique
// upstream.
func (r *run) lookupTagUser(ctx context.Context, tag string) (int64, error) {
	q := url.Values{}
	q.Set("filter[id_tag]", tag)
	q.Set("per_page", "1")
	q.Set("cursor", "")

	var page pagination.Page
	if err := r.api.GetJSON(ctx, StageIdTags, "/id-tags?"+q.Encode(), &page); err != nil {
		return 0, err
	}
	if len(page.Data) == 0 {
		return 0, fmt.Errorf("no id-tag record for tag")
	}
	uid, ok := schema.PositiveInt(schema.Extract(page.Data[0], tagUserIDKeys...))
	if !ok {
		return 0, fmt.Errorf("id-tag record has no user id")
	}
	return uid, nil
}

// holderFor returns the resolved user backing a session's holder identity,
// directly or via tag discovery.
func (r *run) holderFor(s *Session) *User {
	if s.UserID > 0 {
		return r.users[s.UserID]
	}
	if s.IdTag != "" {
		if uid, ok := r.tagUsers[s.IdTag]; ok {
			return r.users[uid]
		}
	}
	return nil
}
