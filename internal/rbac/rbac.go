// Package rbac defines the back-office permission taxonomy.
//
// A permission ID is "<slug>-<action>", e.g. "products-edit". Every group
// supports view/create/edit/delete except Dashboard, which is view only.
package rbac

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Actions.
const (
	ActionView   = "view"
	ActionCreate = "create"
	ActionEdit   = "edit"
	ActionDelete = "delete"
)

// Group slugs.
const (
	Dashboard    = "dashboard"
	Users        = "users"
	Category     = "category"
	Products     = "products"
	Orders       = "orders"
	Customers    = "customers"
	Report       = "report"
	Transactions = "transactions"
	Content      = "content"
	Role         = "role"
)

// ErrUnknownPermission is returned when a permission ID is not in the taxonomy.
var ErrUnknownPermission = errors.New("unknown permission")

var crud = []string{ActionView, ActionCreate, ActionEdit, ActionDelete}

// Group is one row of the permission matrix.
type Group struct {
	Name    string   `json:"name"`
	Slug    string   `json:"slug"`
	Actions []string `json:"actions"`
}

// Permission is a single grantable capability.
type Permission struct {
	ID     string `json:"id"`
	Group  string `json:"group"`
	Action string `json:"action"`
}

// GroupPermissions is a group with its expanded permissions.
type GroupPermissions struct {
	Group       string       `json:"group"`
	Permissions []Permission `json:"permissions"`
}

var groups = []Group{
	{Name: "Dashboard", Slug: Dashboard, Actions: []string{ActionView}},
	{Name: "Users", Slug: Users, Actions: crud},
	{Name: "Category", Slug: Category, Actions: crud},
	{Name: "Products", Slug: Products, Actions: crud},
	{Name: "Orders", Slug: Orders, Actions: crud},
	{Name: "Customers", Slug: Customers, Actions: crud},
	{Name: "Report&Analysis", Slug: Report, Actions: crud},
	{Name: "Transactions", Slug: Transactions, Actions: crud},
	{Name: "Content System", Slug: Content, Actions: crud},
	{Name: "Role", Slug: Role, Actions: crud},
}

var (
	all   []Permission
	index map[string]int
)

func init() {
	index = make(map[string]int)
	for _, g := range groups {
		for _, a := range g.Actions {
			p := Permission{ID: ID(g.Slug, a), Group: g.Name, Action: a}
			index[p.ID] = len(all)
			all = append(all, p)
		}
	}
}

// ID builds the permission ID for a group slug and action.
func ID(slug, action string) string {
	return slug + "-" + action
}

// Groups returns the permission matrix rows in declaration order.
func Groups() []Group {
	out := make([]Group, len(groups))
	copy(out, groups)
	return out
}

// Permissions returns every permission in taxonomy order.
func Permissions() []Permission {
	out := make([]Permission, len(all))
	copy(out, all)
	return out
}

// Grouped returns the taxonomy grouped for display.
func Grouped() []GroupPermissions {
	out := make([]GroupPermissions, 0, len(groups))
	for _, g := range groups {
		gp := GroupPermissions{Group: g.Name}
		for _, a := range g.Actions {
			gp.Permissions = append(gp.Permissions, all[index[ID(g.Slug, a)]])
		}
		out = append(out, gp)
	}
	return out
}

// Exists reports whether id is a known permission.
func Exists(id string) bool {
	_, ok := index[id]
	return ok
}

// Normalize deduplicates ids and sorts them in taxonomy order.
// Unknown IDs yield an error wrapping ErrUnknownPermission.
func Normalize(ids []string) ([]string, error) {
	seen := make(map[string]struct{}, len(ids))
	var unknown []string
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if !Exists(id) {
			unknown = append(unknown, id)
			continue
		}
		out = append(out, id)
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPermission, strings.Join(unknown, ", "))
	}
	sort.Slice(out, func(i, j int) bool { return index[out[i]] < index[out[j]] })
	return out, nil
}

// Expand returns every permission whose group slug and action match.
// "*" matches any slug or action.
func Expand(slugs, actions []string) []string {
	match := func(set []string, v string) bool {
		for _, s := range set {
			if s == "*" || s == v {
				return true
			}
		}
		return false
	}
	var out []string
	for _, g := range groups {
		if !match(slugs, g.Slug) {
			continue
		}
		for _, a := range g.Actions {
			if match(actions, a) {
				out = append(out, ID(g.Slug, a))
			}
		}
	}
	return out
}
