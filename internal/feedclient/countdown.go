package feedclient

import (
	"context"
	"time"
)

// ResendCountdown 验证码重发倒计时
// 每秒推送一次剩余秒数,推到 0 或 ctx 取消后关闭通道
// 倒计时只用于界面提示,验证码是否过期以服务端为准
func ResendCountdown(ctx context.Context, seconds int) <-chan int {
	out := make(chan int, 1)
	if seconds <= 0 {
		close(out)
		return out
	}
	out <- seconds
	go func() {
		defer close(out)
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		remaining := seconds
		for remaining > 0 {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				remaining--
				select {
				case out <- remaining:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}
