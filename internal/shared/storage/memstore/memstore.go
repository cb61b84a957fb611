// Package memstore 内存实现的 storage.Store
//
// 供 Service 层单元测试和无数据库的本地运行使用，
// 行为与 mongostore 对齐（含软删除过滤和投影语义）。
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"blog-backend/internal/shared/model"
	"blog-backend/internal/shared/storage"
)

// Store 内存存储
type Store struct {
	mu    sync.RWMutex
	users map[string]*model.User
	posts map[string]*model.Post
}

// NewStore 创建内存存储实例
func NewStore() *Store {
	return &Store{
		users: make(map[string]*model.User),
		posts: make(map[string]*model.Post),
	}
}

// Close 实现 storage.Store
func (s *Store) Close() error {
	return nil
}

var _ storage.Store = (*Store)(nil)

// ============================================================================
// UserStore
// ============================================================================

func (s *Store) CreateUser(ctx context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; ok {
		return storage.ErrDuplicate
	}
	// email 唯一索引语义：包含软删除用户
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return storage.ErrDuplicate
		}
	}
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *Store) GetUser(ctx context.Context, id string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Username == username && !u.Deleted() {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email && !u.Deleted() {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *Store) UserExists(ctx context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	return ok && !u.Deleted(), nil
}

func (s *Store) UsernameTaken(ctx context.Context, username, excludeID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Username == username && !u.Deleted() && u.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) EmailTaken(ctx context.Context, email string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) CountUsers(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, u := range s.users {
		if !u.Deleted() {
			n++
		}
	}
	return n, nil
}

func (s *Store) ListUsers(ctx context.Context, opts storage.ListOptions) ([]*model.User, error) {
	s.mu.RLock()
	var out []*model.User
	for _, u := range s.users {
		if !u.Deleted() {
			cp := *u
			out = append(out, &cp)
		}
	}
	s.mu.RUnlock()

	asc := opts.Asc
	if asc == 0 {
		asc = -1
	}
	sort.Slice(out, func(i, j int) bool {
		var less bool
		switch opts.Sort {
		case "username":
			less = out[i].Username < out[j].Username
		case "email":
			less = out[i].Email < out[j].Email
		default:
			less = out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		if asc < 0 {
			return !less
		}
		return less
	})

	return paginate(out, opts), nil
}

func (s *Store) GetUserRefs(ctx context.Context, ids []string) (map[string]*model.UserRef, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]*model.UserRef)
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			out[id] = u.Ref()
		}
	}
	return out, nil
}

func (s *Store) UpdateUserProfile(ctx context.Context, id, username, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return storage.ErrNotFound
	}
	u.Username = username
	if passwordHash != "" {
		u.PasswordHash = passwordHash
	}
	u.UpdatedAt = time.Now()
	return nil
}

func (s *Store) UpdateUserRole(ctx context.Context, id string, role model.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return storage.ErrNotFound
	}
	u.Role = role
	u.UpdatedAt = time.Now()
	return nil
}

func (s *Store) UpdateUserStatus(ctx context.Context, id string, status model.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return storage.ErrNotFound
	}
	u.Status = status
	u.UpdatedAt = time.Now()
	return nil
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.users, id)
	return nil
}

// ============================================================================
// PostStore
// ============================================================================

func (s *Store) CreatePost(ctx context.Context, p *model.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[p.ID]; ok {
		return storage.ErrDuplicate
	}
	cp := clonePost(p)
	s.posts[p.ID] = cp
	return nil
}

func (s *Store) GetPost(ctx context.Context, id string) (*model.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.posts[id]
	if !ok {
		return nil, nil
	}
	return clonePost(p), nil
}

func (s *Store) PostExists(ctx context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.posts[id]
	return ok, nil
}

func (s *Store) IsPostOwner(ctx context.Context, postID, ownerID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.posts[postID]
	return ok && p.OwnerID == ownerID, nil
}

func (s *Store) CountPosts(ctx context.Context, f storage.PostFilter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, p := range s.posts {
		if matchPost(p, f) {
			n++
		}
	}
	return n, nil
}

func (s *Store) ListPosts(ctx context.Context, f storage.PostFilter, opts storage.ListOptions) ([]*model.Post, error) {
	s.mu.RLock()
	var out []*model.Post
	for _, p := range s.posts {
		if matchPost(p, f) {
			cp := clonePost(p)
			cp.Comments = nil // 列表查询投影排除 comments
			out = append(out, cp)
		}
	}
	s.mu.RUnlock()

	asc := opts.Asc
	if asc == 0 {
		asc = -1
	}
	sort.Slice(out, func(i, j int) bool {
		var less bool
		switch opts.Sort {
		case "header":
			less = out[i].Header < out[j].Header
		default:
			less = out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		if asc < 0 {
			return !less
		}
		return less
	})

	return paginate(out, opts), nil
}

func (s *Store) UpdatePost(ctx context.Context, id string, upd storage.PostUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok {
		return storage.ErrNotFound
	}
	if upd.Header != nil {
		p.Header = *upd.Header
	}
	if upd.Body != nil {
		p.Body = *upd.Body
	}
	if upd.Image != nil {
		p.Image = *upd.Image
	}
	if upd.Category != nil {
		p.Category = *upd.Category
	}
	if upd.Visibility != nil {
		p.Visibility = *upd.Visibility
	}
	p.UpdatedAt = time.Now()
	return nil
}

func (s *Store) DeletePost(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.posts, id)
	return nil
}

func (s *Store) DeletePostsByOwner(ctx context.Context, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, p := range s.posts {
		if p.OwnerID == ownerID {
			delete(s.posts, id)
		}
	}
	return nil
}

func (s *Store) AddComment(ctx context.Context, postID string, c *model.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[postID]
	if !ok {
		return storage.ErrNotFound
	}
	p.Comments = append(p.Comments, *c)
	return nil
}

func (s *Store) RemoveComment(ctx context.Context, postID, commentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[postID]
	if !ok {
		return storage.ErrNotFound
	}
	out := p.Comments[:0]
	for _, c := range p.Comments {
		if c.ID != commentID {
			out = append(out, c)
		}
	}
	p.Comments = out
	return nil
}

func (s *Store) CommentOwned(ctx context.Context, postID, commentID, ownerID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.posts[postID]
	if !ok {
		return false, nil
	}
	for _, c := range p.Comments {
		if c.ID == commentID && c.OwnerID == ownerID {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) RemoveCommentsByOwner(ctx context.Context, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.posts {
		out := p.Comments[:0]
		for _, c := range p.Comments {
			if c.OwnerID != ownerID {
				out = append(out, c)
			}
		}
		p.Comments = out
	}
	return nil
}

func (s *Store) HasLike(ctx context.Context, postID, ownerID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.posts[postID]
	if !ok {
		return false, nil
	}
	return p.LikedBy(ownerID), nil
}

func (s *Store) AddLike(ctx context.Context, postID string, like *model.Like) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[postID]
	if !ok {
		return storage.ErrNotFound
	}
	p.Likes = append(p.Likes, *like)
	return nil
}

func (s *Store) RemoveLike(ctx context.Context, postID, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[postID]
	if !ok {
		return storage.ErrNotFound
	}
	out := p.Likes[:0]
	for _, l := range p.Likes {
		if l.OwnerID != ownerID {
			out = append(out, l)
		}
	}
	p.Likes = out
	return nil
}

// ============================================================================
// 辅助函数
// ============================================================================

func matchPost(p *model.Post, f storage.PostFilter) bool {
	if f.OwnerID != "" && p.OwnerID != f.OwnerID {
		return false
	}
	if len(f.Visibility) > 0 && !containsVisibility(f.Visibility, p.Visibility) {
		return false
	}
	if len(f.Categories) > 0 && !containsCategory(f.Categories, p.Category) {
		return false
	}
	return true
}

func containsVisibility(vs []model.Visibility, v model.Visibility) bool {
	for _, x := range vs {
		if x == v {
			return true
		}
	}
	return false
}

func containsCategory(cs []model.Category, c model.Category) bool {
	for _, x := range cs {
		if x == c {
			return true
		}
	}
	return false
}

func clonePost(p *model.Post) *model.Post {
	cp := *p
	cp.Comments = append([]model.Comment(nil), p.Comments...)
	cp.Likes = append([]model.Like(nil), p.Likes...)
	return &cp
}

func paginate[T any](items []*T, opts storage.ListOptions) []*T {
	if opts.Skip > 0 {
		if opts.Skip >= int64(len(items)) {
			return []*T{}
		}
		items = items[opts.Skip:]
	}
	if opts.Limit > 0 && opts.Limit < int64(len(items)) {
		items = items[:opts.Limit]
	}
	if items == nil {
		items = []*T{}
	}
	return items
}
