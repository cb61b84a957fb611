package post

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"blog-backend/internal/shared/model"
	"blog-backend/internal/shared/result"
)

// writeJSON 写入 JSON 响应
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// statusOf 业务结果到 HTTP 状态码的映射：成功 200 / 失败 400
func statusOf(ok bool) int {
	if ok {
		return http.StatusOK
	}
	return http.StatusBadRequest
}

// writeError 写入错误响应
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, result.Fail(message))
}

// generateID 生成带前缀的随机 ID
// 格式：prefix-xxxxxxxxxxxx（prefix + 12 字符 hex）
func generateID(prefix string) string {
	b := make([]byte, 6)
	rand.Read(b)
	return prefix + "-" + hex.EncodeToString(b)
}

// queryInt64 读取整型查询参数，缺失或非法时返回 0
func queryInt64(r *http.Request, key string) int64 {
	v, err := strconv.ParseInt(r.URL.Query().Get(key), 10, 64)
	if err != nil {
		return 0
	}
	return v
}

// queryInt 读取 int 查询参数，缺失或非法时返回 0
func queryInt(r *http.Request, key string) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return 0
	}
	return v
}

// queryVisibilities 解析逗号分隔的 visibility 过滤参数，忽略未知值
func queryVisibilities(r *http.Request) []model.Visibility {
	raw := r.URL.Query().Get("visibility")
	if raw == "" {
		return nil
	}
	var out []model.Visibility
	for _, part := range strings.Split(raw, ",") {
		v := model.Visibility(strings.TrimSpace(part))
		if model.KnownVisibility(v) {
			out = append(out, v)
		}
	}
	return out
}

// queryCategories 解析逗号分隔的 category 过滤参数，忽略未知值
func queryCategories(r *http.Request) []model.Category {
	raw := r.URL.Query().Get("category")
	if raw == "" {
		return nil
	}
	var out []model.Category
	for _, part := range strings.Split(raw, ",") {
		c := model.Category(strings.TrimSpace(part))
		if model.KnownCategory(c) {
			out = append(out, c)
		}
	}
	return out
}
