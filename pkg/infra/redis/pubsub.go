package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// PubSub Redis 发布/订阅客户端
type PubSub struct {
	client *redis.Client
}

// NewPubSub 创建 PubSub 实例
func NewPubSub(addr, password string, db int) (*PubSub, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	// 测试连接
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &PubSub{client: client}, nil
}

// RunNotification 管线运行完成通知消息
type RunNotification struct {
	RunID        string `json:"run_id"`
	Mode         string `json:"mode"`
	Status       string `json:"status"` // FINISHED/FAILED
	SuccessCount int    `json:"success_count"`
	FailedCount  int    `json:"failed_count"`
	ArtifactPath string `json:"artifact_path,omitempty"`
	Timestamp    int64  `json:"timestamp"`
}

// PublishRunComplete 发布运行完成通知
// 参数：
//   - ctx: 上下文
//   - channel: Redis 频道名称（建议：cartsync_run_complete）
//   - notification: 通知消息
func (p *PubSub) PublishRunComplete(
	ctx context.Context,
	channel string,
	notification *RunNotification,
) error {
	msgJSON, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	if err := p.client.Publish(ctx, channel, msgJSON).Err(); err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}

	return nil
}

// Subscribe 订阅 Redis 频道（用于测试）
func (p *PubSub) Subscribe(ctx context.Context, channel string) *redis.PubSub {
	return p.client.Subscribe(ctx, channel)
}

// Close 关闭 Redis 连接
func (p *PubSub) Close() error {
	return p.client.Close()
}
