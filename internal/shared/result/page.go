package result

// Page 列表查询的分页信封
//
// page 从 1 开始；limit 省略时默认取全量（pageSize == totalItems）。
type Page[T any] struct {
	Data       []T   `json:"data"`
	PageNum    int64 `json:"page"`
	PageSize   int64 `json:"pageSize"`
	TotalItems int64 `json:"totalItems"`
	TotalPages int64 `json:"totalPages"`
}

// NewPage 构造分页信封
//
// page 非正数按 1 处理；limit 非正数表示不分页（取 total）。
func NewPage[T any](data []T, page, limit, total int64) Page[T] {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = total
	}
	totalPages := int64(0)
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	if data == nil {
		data = []T{}
	}
	return Page[T]{
		Data:       data,
		PageNum:    page,
		PageSize:   limit,
		TotalItems: total,
		TotalPages: totalPages,
	}
}
