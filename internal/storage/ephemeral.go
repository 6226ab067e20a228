package storage

import (
	"context"
	"time"
)

// Store 是所有伺服器實例共享的短暫狀態庫。
// 配對子系統只依賴這組原子操作：階段旗標用 Get/Set（可帶 TTL）、
// 分區候選佇列用 List 系列、每日參與標記用 Set/Exists、
// 揭示投票用 SetAdd/SetCard。所有操作都必須是單步原子的，
// 不允許讀取後修改再寫回的競態。
type Store interface {
	// Get 讀取純量值，key 不存在時回傳空字串且不報錯
	Get(ctx context.Context, key string) (string, error)
	// Set 寫入純量值，ttl 為 0 表示永不過期
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// Exists 檢查 key 是否存在（未過期）
	Exists(ctx context.Context, key string) (bool, error)
	// Delete 刪除一個或多個 key
	Delete(ctx context.Context, keys ...string) error

	// ListPush 將值附加到列表尾端
	ListPush(ctx context.Context, key string, values ...string) error
	// ListRemove 從列表中移除第一個等於 value 的元素
	ListRemove(ctx context.Context, key, value string) error
	// ListDrain 原子地取出整個列表並刪除 key。
	// 與並發的 ListPush 互斥：新元素要麼完整落在取出的批次中，
	// 要麼完整留到下一次 drain，絕不會被拆開。
	ListDrain(ctx context.Context, key string) ([]string, error)

	// SetAdd 將成員加入集合，回傳實際新增的數量（重複加入回傳 0）
	SetAdd(ctx context.Context, key, member string) (int64, error)
	// SetCard 回傳集合的基數
	SetCard(ctx context.Context, key string) (int64, error)
	// SetMembers 回傳集合的所有成員
	SetMembers(ctx context.Context, key string) ([]string, error)

	// Keys 列舉所有以 prefix 開頭的 key
	Keys(ctx context.Context, prefix string) ([]string, error)
}
