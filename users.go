package blogapp

import (
	"context"
	"errors"
	"strings"

	"github.com/TahaY291/blogapp/analytics"
	"github.com/TahaY291/blogapp/logger"
)

// RegisterInput is the body of a registration request.
type RegisterInput struct {
	Username string `json:"username" form:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required,min=6,max=72"`
	Bio      string `json:"bio" form:"bio" validate:"max=200"`
}

// LoginInput is the body of a login request.
type LoginInput struct {
	Email    string `json:"email" form:"email" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

// ProfileUpdate carries the self-service fields of a user; nil fields stay
// unchanged.
type ProfileUpdate struct {
	Username *string `json:"username" form:"username" validate:"omitempty,min=3,max=50"`
	Bio      *string `json:"bio" form:"bio" validate:"omitempty,max=200"`
	Password *string `json:"password" form:"password" validate:"omitempty,min=6,max=72"`
}

// RoleInput is the body of an admin role change.
type RoleInput struct {
	Role Role `json:"role" form:"role" validate:"required,oneof=user admin"`
}

// Profile is a user's public page: their posts and engagement stats.
type Profile struct {
	User  User            `json:"user"`
	Posts Page            `json:"posts"`
	Stats analytics.Stats `json:"stats"`
}

// Register creates a user account. A repeated email yields ErrConflict.
func (s *Service) Register(ctx context.Context, in RegisterInput, avatar *ImageUpload) (User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Bio = strings.TrimSpace(in.Bio)
	if err := checkStruct(in); err != nil {
		return User{}, err
	}
	if _, err := s.store.GetUserByEmail(ctx, in.Email); err == nil {
		return User{}, ErrConflict
	} else if !errors.Is(err, ErrNotFound) {
		return User{}, upstream("lookup user", err)
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return User{}, upstream("hash password", err)
	}
	now := s.now()
	u := User{
		ID:           newID(),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Bio:          in.Bio,
		Role:         RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if avatar != nil {
		if u.Image, err = s.storeImage(ctx, "image", avatarImage, avatar); err != nil {
			return User{}, err
		}
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		return User{}, upstream("create user", err)
	}
	logger.Infof("registered user %s", u.ID)
	return u, nil
}

// Me returns the full record of the signed-in user.
func (s *Service) Me(ctx context.Context, p *Principal) (User, error) {
	if p == nil {
		return User{}, ErrUnauthenticated
	}
	return s.principalUser(ctx, p)
}

// principalUser loads the user behind p. A token that outlived its user
// counts as no session.
func (s *Service) principalUser(ctx context.Context, p *Principal) (User, error) {
	u, err := s.store.GetUserByID(ctx, p.ID)
	if errors.Is(err, ErrNotFound) {
		return User{}, ErrUnauthenticated
	}
	return u, upstream("get user", err)
}

// publicUser hides the email unless viewer is the user or an admin.
func publicUser(u User, viewer *Principal) User {
	if viewer == nil || (viewer.ID != u.ID && viewer.Role != RoleAdmin) {
		u.Email = ""
	}
	return u
}

// Profile returns a user's public fields, one page of their posts and
// their engagement stats. Unpublished posts are included.
func (s *Service) Profile(ctx context.Context, viewer *Principal, userID string, q PageQuery) (Profile, error) {
	if !validID(userID) {
		return Profile{}, ErrNotFound
	}
	q, err := s.normalizePage(q)
	if err != nil {
		return Profile{}, err
	}
	u, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return Profile{}, upstream("get user", err)
	}
	page, err := s.listPage(ctx, postFilter{AuthorID: userID, Tag: q.Tag}, viewer, q)
	if err != nil {
		return Profile{}, err
	}
	posts, likes, views, err := s.store.AuthorTotals(ctx, userID)
	if err != nil {
		return Profile{}, upstream("author totals", err)
	}
	return Profile{
		User:  publicUser(u, viewer),
		Posts: page,
		Stats: analytics.Summarize(posts, likes, views),
	}, nil
}

// UpdateProfile edits a user's username, bio, password or avatar. The user
// themself and admins may do so.
func (s *Service) UpdateProfile(ctx context.Context, p *Principal, userID string, in ProfileUpdate, avatar *ImageUpload) (User, error) {
	if p == nil {
		return User{}, ErrUnauthenticated
	}
	if !validID(userID) {
		return User{}, ErrNotFound
	}
	if err := Authorize(p, CapEditUser, userID); err != nil {
		return User{}, err
	}
	if in.Username != nil {
		*in.Username = strings.TrimSpace(*in.Username)
	}
	if in.Bio != nil {
		*in.Bio = strings.TrimSpace(*in.Bio)
	}
	if err := checkStruct(in); err != nil {
		return User{}, err
	}
	u, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return User{}, upstream("get user", err)
	}

	if in.Username != nil {
		u.Username = *in.Username
	}
	if in.Bio != nil {
		u.Bio = *in.Bio
	}
	if in.Password != nil {
		if u.PasswordHash, err = HashPassword(*in.Password); err != nil {
			return User{}, upstream("hash password", err)
		}
	}
	if avatar != nil {
		if u.Image, err = s.storeImage(ctx, "image", avatarImage, avatar); err != nil {
			return User{}, err
		}
	}
	u.UpdatedAt = s.now()
	if err := s.store.UpdateUser(ctx, u); err != nil {
		return User{}, upstream("update user", err)
	}
	return u, nil
}

// ListUsers returns every account, newest first. Admin only.
func (s *Service) ListUsers(ctx context.Context, p *Principal) ([]User, error) {
	if err := Authorize(p, CapManageUsers, ""); err != nil {
		return nil, err
	}
	users, err := s.store.ListUsers(ctx)
	return users, upstream("list users", err)
}

// DeleteUser removes an account with all of its posts, likes and comments.
// Admin only.
func (s *Service) DeleteUser(ctx context.Context, p *Principal, userID string) error {
	if err := Authorize(p, CapDeleteUser, ""); err != nil {
		return err
	}
	if !validID(userID) {
		return ErrNotFound
	}
	if err := s.store.DeleteUser(ctx, userID); err != nil {
		return upstream("delete user", err)
	}
	s.tags.Invalidate()
	logger.Infof("user %s deleted by %s", userID, p.ID)
	return nil
}

// SetRole changes a user's role. Admin only.
func (s *Service) SetRole(ctx context.Context, p *Principal, userID string, in RoleInput) (User, error) {
	if err := Authorize(p, CapManageUsers, ""); err != nil {
		return User{}, err
	}
	if err := checkStruct(in); err != nil {
		return User{}, err
	}
	if !validID(userID) {
		return User{}, ErrNotFound
	}
	u, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return User{}, upstream("get user", err)
	}
	u.Role = in.Role
	u.UpdatedAt = s.now()
	if err := s.store.UpdateUser(ctx, u); err != nil {
		return User{}, upstream("update user", err)
	}
	logger.Infof("user %s role set to %s by %s", userID, in.Role, p.ID)
	return u, nil
}

// PromoteByEmail grants the admin role to the user with email. It is used
// by the command line and bypasses the capability check.
func (s *Service) PromoteByEmail(ctx context.Context, email string) (User, error) {
	u, err := s.store.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return User{}, upstream("lookup user", err)
	}
	u.Role = RoleAdmin
	u.UpdatedAt = s.now()
	if err := s.store.UpdateUser(ctx, u); err != nil {
		return User{}, upstream("update user", err)
	}
	return u, nil
}
