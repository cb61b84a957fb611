// Package post 帖子领域 - HTTP 处理
package post

import (
	"encoding/json"
	"io"
	"net/http"
	"path"

	"blog-backend/internal/shared/identity"
	"blog-backend/internal/shared/objstore"
)

// maxImageSize 题图上传大小上限
const maxImageSize = 8 << 20 // 8 MiB

// Handler 帖子领域 HTTP 处理器
type Handler struct {
	svc    *Service
	images *objstore.Client // 可为 nil（未配置对象存储）
}

// NewHandler 创建帖子处理器
func NewHandler(svc *Service, images *objstore.Client) *Handler {
	return &Handler{svc: svc, images: images}
}

// RegisterRoutes 注册帖子相关路由
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/posts", h.List)
	mux.HandleFunc("GET /api/v1/posts/{id}", h.Get)
	mux.HandleFunc("GET /api/v1/posts/user/{userId}", h.ListByUser)
	mux.HandleFunc("POST /api/v1/posts", h.Add)
	mux.HandleFunc("PUT /api/v1/posts/{id}", h.Update)
	mux.HandleFunc("DELETE /api/v1/posts/{id}", h.Remove)

	mux.HandleFunc("POST /api/v1/posts/{id}/comments", h.AddComment)
	mux.HandleFunc("DELETE /api/v1/posts/{postId}/comments/{commentId}", h.RemoveComment)
	mux.HandleFunc("POST /api/v1/posts/{id}/like", h.AddLike)
	mux.HandleFunc("DELETE /api/v1/posts/{id}/like", h.RemoveLike)

	mux.HandleFunc("POST /api/v1/posts/{id}/images", h.UploadImage)
	mux.HandleFunc("GET /api/v1/posts/images/{key...}", h.DownloadImage)
}

func (h *Handler) listQuery(r *http.Request) ListQuery {
	return ListQuery{
		Visibility: queryVisibilities(r),
		Categories: queryCategories(r),
		Page:       queryInt64(r, "page"),
		Limit:      queryInt64(r, "limit"),
		Sort:       r.URL.Query().Get("sort"),
		Asc:        queryInt(r, "asc"),
	}
}

// ============================================================================
// HTTP 处理函数
// ============================================================================

// List 分页列出帖子
// GET /api/v1/posts?visibility=&category=&page=&limit=&sort=&asc=
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.GetAll(r.Context(), h.listQuery(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, statusOf(res.Status), res)
}

// ListByUser 分页列出指定用户的帖子
// GET /api/v1/posts/user/{userId}
func (h *Handler) ListByUser(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.GetByUserID(r.Context(), r.PathValue("userId"), h.listQuery(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, statusOf(res.Status), res)
}

// Get 读取单帖（可见性裁决后返回）
// GET /api/v1/posts/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.GetByID(r.Context(), r.PathValue("id"), identity.ActorFrom(r.Context()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, statusOf(res.Status), res)
}

// Add 创建帖子
// POST /api/v1/posts
func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	var req AddPost
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Header == "" || req.Body == "" {
		writeError(w, http.StatusBadRequest, "header and body are required")
		return
	}

	res, err := h.svc.Add(r.Context(), req, identity.ActorFrom(r.Context()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, statusOf(res.Status), res)
}

// Update 更新帖子
// PUT /api/v1/posts/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdatePost
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.svc.Update(r.Context(), r.PathValue("id"), req, identity.ActorFrom(r.Context()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, statusOf(res.Status), res)
}

// Remove 删除帖子
// DELETE /api/v1/posts/{id}
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Remove(r.Context(), r.PathValue("id"), identity.ActorFrom(r.Context()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, statusOf(res.Status), res)
}

// AddComment 添加评论
// POST /api/v1/posts/{id}/comments
func (h *Handler) AddComment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Comment string `json:"comment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Comment == "" {
		writeError(w, http.StatusBadRequest, "comment is required")
		return
	}

	res, err := h.svc.AddComment(r.Context(), r.PathValue("id"), req.Comment, identity.ActorFrom(r.Context()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, statusOf(res.Status), res)
}

// RemoveComment 删除评论
// DELETE /api/v1/posts/{postId}/comments/{commentId}
func (h *Handler) RemoveComment(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.RemoveComment(r.Context(), r.PathValue("postId"), r.PathValue("commentId"), identity.ActorFrom(r.Context()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, statusOf(res.Status), res)
}

// AddLike 点赞
// POST /api/v1/posts/{id}/like
func (h *Handler) AddLike(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.AddLike(r.Context(), r.PathValue("id"), identity.ActorFrom(r.Context()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, statusOf(res.Status), res)
}

// RemoveLike 取消点赞
// DELETE /api/v1/posts/{id}/like
func (h *Handler) RemoveLike(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.RemoveLike(r.Context(), r.PathValue("id"), identity.ActorFrom(r.Context()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, statusOf(res.Status), res)
}

// ============================================================================
// 题图上传与下载
// ============================================================================

// UploadImage 上传帖子题图并把对象 Key 写入帖子
// POST /api/v1/posts/{id}/images（multipart 字段 image）
func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
	if h.images == nil {
		writeError(w, http.StatusServiceUnavailable, "image storage is not configured")
		return
	}

	postID := r.PathValue("id")
	if err := r.ParseMultipartForm(maxImageSize); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "image file is required")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !objstore.AllowedImageType(contentType) {
		writeError(w, http.StatusBadRequest, "unsupported image type")
		return
	}

	key := objstore.ImageKey(postID, path.Base(header.Filename))
	if err := h.images.Upload(r.Context(), key, file, header.Size, contentType); err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	// 归属校验在 Update 的规则链里完成；校验失败时回收已上传的对象
	res, err := h.svc.Update(r.Context(), postID, UpdatePost{Image: &key}, identity.ActorFrom(r.Context()))
	if err != nil {
		h.images.Delete(r.Context(), key)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if !res.Status {
		h.images.Delete(r.Context(), key)
	}
	writeJSON(w, statusOf(res.Status), res)
}

// DownloadImage 流式返回题图
// GET /api/v1/posts/images/{key...}
func (h *Handler) DownloadImage(w http.ResponseWriter, r *http.Request) {
	if h.images == nil {
		writeError(w, http.StatusServiceUnavailable, "image storage is not configured")
		return
	}

	obj, contentType, err := h.images.Download(r.Context(), r.PathValue("key"))
	if err != nil {
		writeError(w, http.StatusNotFound, "image not found")
		return
	}
	defer obj.Close()

	w.Header().Set("Content-Type", contentType)
	io.Copy(w, obj)
}
