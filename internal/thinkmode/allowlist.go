package thinkmode

import (
	"fmt"
	"strings"
)

// AllowList restricts Think Mode to known user IDs.
// An empty list admits everyone.
type AllowList struct {
	ids map[string]struct{}
}

// NewAllowList builds an allow-list, ignoring blank entries.
func NewAllowList(ids []string) *AllowList {
	a := &AllowList{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			a.ids[id] = struct{}{}
		}
	}
	return a
}

// Allowed reports whether userID may use Think Mode.
func (a *AllowList) Allowed(userID string) bool {
	if a == nil || len(a.ids) == 0 {
		return true
	}
	_, ok := a.ids[strings.TrimSpace(userID)]
	return ok
}

// Check returns ErrAccessDenied for users not on the list.
func (a *AllowList) Check(userID string) error {
	if !a.Allowed(userID) {
		return fmt.Errorf("%w: user %q", ErrAccessDenied, userID)
	}
	return nil
}

// Len returns the number of listed users.
func (a *AllowList) Len() int {
	if a == nil {
		return 0
	}
	return len(a.ids)
}
