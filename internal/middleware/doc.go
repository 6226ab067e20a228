// Package middleware 提供了 HTTP 請求處理的中間件。
//
// 目前只有 JWT 身份驗證：解析 Bearer token（或 WebSocket
// 連線使用的 token 查詢參數）並把用戶 ID 放進請求上下文。
package middleware
