// Package result 业务操作结果契约
//
// 所有 Service 操作统一返回带标记的结果：成功（可选数据和消息）
// 或失败（仅消息）。预期内的业务失败（不存在、重复、无权限）
// 以 Result 表达，绝不使用 error；error 只保留给基础设施故障。
package result

// Result 业务操作结果
//
// JSON 形状固定为 {"status": bool, "message": string}，
// Handler 层依据 Status 映射 HTTP 200/400。
type Result struct {
	Status  bool   `json:"status"`
	Message string `json:"message,omitempty"`
}

// Ok 构造成功结果
func Ok() Result {
	return Result{Status: true}
}

// OkMsg 构造带消息的成功结果
func OkMsg(message string) Result {
	return Result{Status: true, Message: message}
}

// Fail 构造失败结果
func Fail(message string) Result {
	return Result{Status: false, Message: message}
}

// DataResult 携带数据负载的业务操作结果
//
// 失败时 Data 为零值且不参与序列化语义（调用方只应在 Status 为 true 时读取）。
type DataResult[T any] struct {
	Result
	Data T `json:"data,omitempty"`
}

// OkData 构造带数据的成功结果
func OkData[T any](data T) DataResult[T] {
	return DataResult[T]{Result: Result{Status: true}, Data: data}
}

// OkDataMsg 构造带数据和消息的成功结果
func OkDataMsg[T any](data T, message string) DataResult[T] {
	return DataResult[T]{Result: Result{Status: true, Message: message}, Data: data}
}

// FailData 构造失败结果（数据为零值）
func FailData[T any](message string) DataResult[T] {
	return DataResult[T]{Result: Result{Status: false, Message: message}}
}

// FailDataFrom 将已有失败结果转换为 DataResult，消息原样保留
func FailDataFrom[T any](r Result) DataResult[T] {
	return DataResult[T]{Result: Result{Status: false, Message: r.Message}}
}
