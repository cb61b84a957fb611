package model

import "time"

// Category 帖子分类
type Category string

const (
	CategoryGeneral    Category = "general"
	CategoryTechnology Category = "technology"
	CategoryScience    Category = "science"
	CategoryLifestyle  Category = "lifestyle"
	CategoryTravel     Category = "travel"
)

// AllCategories 返回全部分类（列表查询的默认分类过滤集）
func AllCategories() []Category {
	return []Category{
		CategoryGeneral,
		CategoryTechnology,
		CategoryScience,
		CategoryLifestyle,
		CategoryTravel,
	}
}

// KnownCategory 分类值是否可识别
func KnownCategory(c Category) bool {
	for _, k := range AllCategories() {
		if c == k {
			return true
		}
	}
	return false
}

// Visibility 帖子可见性层级，独立于角色控制读取权限
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityMembers Visibility = "members"
	VisibilityPrivate Visibility = "private"
)

// KnownVisibility 可见性值是否可识别
func KnownVisibility(v Visibility) bool {
	switch v {
	case VisibilityPublic, VisibilityMembers, VisibilityPrivate:
		return true
	}
	return false
}

// Post 帖子
//
// comments 和 likes 以内嵌文档存储，单文档条件更新即可保证
// 评论/点赞操作的原子性。Owner 投影仅在单帖读取时填充。
type Post struct {
	ID         string     `json:"id" bson:"_id"`
	OwnerID    string     `json:"owner_id" bson:"owner"`
	Owner      *UserRef   `json:"owner,omitempty" bson:"-"`
	Header     string     `json:"header" bson:"header"`
	Body       string     `json:"body" bson:"body"`
	Image      string     `json:"image,omitempty" bson:"image"`
	Category   Category   `json:"category" bson:"category"`
	Visibility Visibility `json:"visibility" bson:"visibility"`
	Comments   []Comment  `json:"comments,omitempty" bson:"comments"`
	Likes      []Like     `json:"likes,omitempty" bson:"likes"`
	CreatedAt  time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" bson:"updated_at"`
}

// LikedBy 是否存在指定用户的点赞
func (p *Post) LikedBy(userID string) bool {
	for _, l := range p.Likes {
		if l.OwnerID == userID {
			return true
		}
	}
	return false
}

// Comment 帖子评论，归属于唯一帖子，随帖子删除而销毁
type Comment struct {
	ID        string    `json:"id" bson:"_id"`
	OwnerID   string    `json:"owner_id" bson:"owner"`
	Owner     *UserRef  `json:"owner,omitempty" bson:"-"`
	Comment   string    `json:"comment" bson:"comment"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// Like 点赞，owner 的存在即表示“已赞”；每 (post, user) 至多一条
type Like struct {
	OwnerID   string    `json:"owner_id" bson:"owner"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}
