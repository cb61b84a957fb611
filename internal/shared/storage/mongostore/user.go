package mongostore

import (
	"context"
	"time"

	"blog-backend/internal/shared/model"
	"blog-backend/internal/shared/storage"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ============================================================================
// UserStore
// ============================================================================

func (s *Store) CreateUser(ctx context.Context, u *model.User) error {
	return insertOne(ctx, s.col(ColUsers), u)
}

func (s *Store) GetUser(ctx context.Context, id string) (*model.User, error) {
	return findOne[model.User](ctx, s.col(ColUsers), bson.D{{Key: "_id", Value: id}})
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return findOne[model.User](ctx, s.col(ColUsers), notDeleted(bson.D{{Key: "username", Value: username}}))
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return findOne[model.User](ctx, s.col(ColUsers), notDeleted(bson.D{{Key: "email", Value: email}}))
}

func (s *Store) UserExists(ctx context.Context, id string) (bool, error) {
	return exists(ctx, s.col(ColUsers), notDeleted(bson.D{{Key: "_id", Value: id}}))
}

func (s *Store) UsernameTaken(ctx context.Context, username, excludeID string) (bool, error) {
	filter := notDeleted(bson.D{{Key: "username", Value: username}})
	if excludeID != "" {
		filter = append(filter, bson.E{Key: "_id", Value: bson.D{{Key: "$ne", Value: excludeID}}})
	}
	return exists(ctx, s.col(ColUsers), filter)
}

// EmailTaken 不排除软删除用户：删除账号的邮箱也不可复用
func (s *Store) EmailTaken(ctx context.Context, email string) (bool, error) {
	return exists(ctx, s.col(ColUsers), bson.D{{Key: "email", Value: email}})
}

func (s *Store) CountUsers(ctx context.Context) (int64, error) {
	return s.col(ColUsers).CountDocuments(ctx, notDeleted(bson.D{}))
}

func (s *Store) ListUsers(ctx context.Context, opts storage.ListOptions) ([]*model.User, error) {
	return findMany[model.User](ctx, s.col(ColUsers), notDeleted(bson.D{}), listFindOptions(opts))
}

func (s *Store) GetUserRefs(ctx context.Context, ids []string) (map[string]*model.UserRef, error) {
	if len(ids) == 0 {
		return map[string]*model.UserRef{}, nil
	}
	filter := bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: ids}}}}
	opts := options.Find().SetProjection(bson.D{{Key: "_id", Value: 1}, {Key: "username", Value: 1}})
	refs, err := findMany[model.UserRef](ctx, s.col(ColUsers), filter, opts)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*model.UserRef, len(refs))
	for _, r := range refs {
		out[r.ID] = r
	}
	return out, nil
}

func (s *Store) UpdateUserProfile(ctx context.Context, id, username, passwordHash string) error {
	update := bson.D{
		{Key: "username", Value: username},
		{Key: "updated_at", Value: time.Now()},
	}
	if passwordHash != "" {
		update = append(update, bson.E{Key: "password_hash", Value: passwordHash})
	}
	return setFields(ctx, s.col(ColUsers), id, update)
}

func (s *Store) UpdateUserRole(ctx context.Context, id string, role model.Role) error {
	return setFields(ctx, s.col(ColUsers), id, bson.D{
		{Key: "role", Value: role},
		{Key: "updated_at", Value: time.Now()},
	})
}

func (s *Store) UpdateUserStatus(ctx context.Context, id string, status model.Status) error {
	return setFields(ctx, s.col(ColUsers), id, bson.D{
		{Key: "status", Value: status},
		{Key: "updated_at", Value: time.Now()},
	})
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	return deleteByID(ctx, s.col(ColUsers), id)
}

// listFindOptions 将 ListOptions 转换为 mongo Find 选项
func listFindOptions(opts storage.ListOptions) *options.FindOptionsBuilder {
	sort := opts.Sort
	if sort == "" {
		sort = "created_at"
	}
	asc := opts.Asc
	if asc == 0 {
		asc = -1
	}
	fo := options.Find().SetSort(bson.D{{Key: sort, Value: asc}})
	if opts.Skip > 0 {
		fo.SetSkip(opts.Skip)
	}
	if opts.Limit > 0 {
		fo.SetLimit(opts.Limit)
	}
	return fo
}
