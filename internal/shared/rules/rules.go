// Package rules 业务规则校验链
//
// 每个变更操作在写入前执行一条有序校验链：廉价/基础的校验
// （存在性）排在昂贵/依赖性的校验（唯一性、权限）之前。
// 遇到第一个失败立即短路返回，失败消息原样透出。
//
// 校验链只读不写：Check 不得产生存储副作用。
// 注意校验与后续写入之间存在 TOCTOU 窗口，存储层以唯一索引
// 兜底邮箱唯一性，其余竞争视为可接受（见 DESIGN.md）。
package rules

import (
	"context"

	"blog-backend/internal/shared/result"
)

// Check 单条业务校验
//
// 参数通过闭包捕获，链内顺序显式固定，不使用反射分发。
type Check func(ctx context.Context) result.Result

// Run 按顺序执行校验链
//
// 返回第一个失败的结果；全部通过时返回通用成功结果。
func Run(ctx context.Context, checks ...Check) result.Result {
	for _, check := range checks {
		if r := check(ctx); !r.Status {
			return r
		}
	}
	return result.Ok()
}
