package blogapp

import (
	"errors"
	"testing"
)

func TestAuthorize(t *testing.T) {
	owner := &Principal{ID: "owner", Role: RoleUser}
	other := &Principal{ID: "other", Role: RoleUser}
	admin := &Principal{ID: "admin", Role: RoleAdmin}

	tests := []struct {
		name    string
		p       *Principal
		cap     Capability
		ownerID string
		want    error
	}{
		{"anonymous create post", nil, CapCreatePost, "", ErrUnauthenticated},
		{"user create post", other, CapCreatePost, "", nil},
		{"owner edits post", owner, CapEditPost, "owner", nil},
		{"other edits post", other, CapEditPost, "owner", ErrForbidden},
		{"admin edits post", admin, CapEditPost, "owner", ErrForbidden},
		{"admin deletes post", admin, CapDeletePost, "owner", ErrForbidden},
		{"owner edits comment", owner, CapEditComment, "owner", nil},
		{"admin edits comment", admin, CapEditComment, "owner", ErrForbidden},
		{"admin deletes comment", admin, CapDeleteComment, "owner", nil},
		{"other deletes comment", other, CapDeleteComment, "owner", ErrForbidden},
		{"owner deletes self", owner, CapDeleteUser, "owner", ErrForbidden},
		{"admin deletes user", admin, CapDeleteUser, "owner", nil},
		{"empty owner never matches", &Principal{ID: "", Role: RoleUser}, CapEditPost, "", ErrUnauthenticated},
		{"unknown capability", owner, Capability(999), "owner", ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Authorize(tt.p, tt.cap, tt.ownerID)
			if !errors.Is(got, tt.want) {
				t.Errorf("Authorize = %v, want %v", got, tt.want)
			}
		})
	}
}
