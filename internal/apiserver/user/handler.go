// Package user 用户领域 - HTTP 处理
package user

import (
	"encoding/json"
	"net/http"

	"blog-backend/internal/shared/identity"
	"blog-backend/internal/shared/model"
	"blog-backend/internal/shared/permission"
)

// Handler 用户领域 HTTP 处理器
type Handler struct {
	svc *Service
}

// NewHandler 创建用户处理器
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes 注册用户相关路由
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/users", h.List)
	mux.HandleFunc("GET /api/v1/users/{id}", h.Get)
	mux.HandleFunc("GET /api/v1/users/username/{username}", h.GetByUsername)
	mux.HandleFunc("PUT /api/v1/users/{id}", h.Update)
	mux.HandleFunc("PUT /api/v1/users/{id}/role/{role}", h.ChangeRole)
	mux.HandleFunc("PUT /api/v1/users/{id}/suspend", h.Suspend)
	mux.HandleFunc("PUT /api/v1/users/{id}/activate", h.Activate)
	mux.HandleFunc("DELETE /api/v1/users/{id}", h.Remove)
	mux.HandleFunc("DELETE /api/v1/users/{id}/purge", h.Purge)
}

// ============================================================================
// HTTP 处理函数
// ============================================================================

// List 分页列出用户
// GET /api/v1/users?page=&limit=&sort=&asc=
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.GetAll(r.Context(), ListQuery{
		Page:  queryInt64(r, "page"),
		Limit: queryInt64(r, "limit"),
		Sort:  r.URL.Query().Get("sort"),
		Asc:   queryInt(r, "asc"),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, statusOf(res.Status), res)
}

// Get 按 ID 读取用户
// GET /api/v1/users/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, statusOf(res.Status), res)
}

// GetByUsername 按用户名读取用户
// GET /api/v1/users/username/{username}
func (h *Handler) GetByUsername(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.GetByUsername(r.Context(), r.PathValue("username"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, statusOf(res.Status), res)
}

// Update 更新用户资料
// PUT /api/v1/users/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateUser
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" {
		writeError(w, http.StatusBadRequest, "username is required")
		return
	}

	res, err := h.svc.Update(r.Context(), r.PathValue("id"), req, identity.ActorFrom(r.Context()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, statusOf(res.Status), res)
}

// ChangeRole 变更用户角色（仅 sys_admin）
// PUT /api/v1/users/{id}/role/{role}
func (h *Handler) ChangeRole(w http.ResponseWriter, r *http.Request) {
	actor := identity.ActorFrom(r.Context())
	if actor == nil || actor.Role != model.RoleSysAdmin {
		writeError(w, http.StatusForbidden, "Not permitted")
		return
	}

	res, err := h.svc.ChangeRole(r.Context(), r.PathValue("id"), model.Role(r.PathValue("role")))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, statusOf(res.Status), res)
}

// Suspend 封禁用户（特权操作）
// PUT /api/v1/users/{id}/suspend
func (h *Handler) Suspend(w http.ResponseWriter, r *http.Request) {
	actor := identity.ActorFrom(r.Context())
	if actor == nil || !permission.IsPrivileged(actor.Role) {
		writeError(w, http.StatusForbidden, "Not permitted")
		return
	}

	res, err := h.svc.Suspend(r.Context(), r.PathValue("id"), actor)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, statusOf(res.Status), res)
}

// Activate 激活用户（特权操作）
// PUT /api/v1/users/{id}/activate
func (h *Handler) Activate(w http.ResponseWriter, r *http.Request) {
	actor := identity.ActorFrom(r.Context())
	if actor == nil || !permission.IsPrivileged(actor.Role) {
		writeError(w, http.StatusForbidden, "Not permitted")
		return
	}

	res, err := h.svc.Activate(r.Context(), r.PathValue("id"), actor)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, statusOf(res.Status), res)
}

// Remove 软删除用户（本人或特权角色）
// DELETE /api/v1/users/{id}
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	actor := identity.ActorFrom(r.Context())
	if actor == nil || (!permission.IsSelf(actor.ID, r.PathValue("id")) && !permission.IsPrivileged(actor.Role)) {
		writeError(w, http.StatusForbidden, "Not permitted")
		return
	}

	res, err := h.svc.Remove(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, statusOf(res.Status), res)
}

// Purge 物理清除用户及其全部痕迹
// DELETE /api/v1/users/{id}/purge
func (h *Handler) Purge(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Purge(r.Context(), r.PathValue("id"), identity.ActorFrom(r.Context()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, statusOf(res.Status), res)
}
