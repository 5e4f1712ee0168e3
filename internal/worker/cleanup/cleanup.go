// Package cleanup は期限切れセッションの定期削除ジョブを提供する。
package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// defaultInterval は実行間隔が指定されない場合の既定値。
const defaultInterval = time.Hour

// SessionCleaner は期限切れセッションを削除し、削除件数を返す。
// auth.Serviceが実装する。
type SessionCleaner interface {
	CleanupExpiredSessions(ctx context.Context) (int64, error)
}

// Recorder は削除件数を記録する。metrics.Collectorが実装する。
type Recorder interface {
	RecordSessionsCleaned(count int64)
}

// SessionCleanupJob は期限切れセッションを定期的に削除するジョブ。
// 削除は冪等で、対象がない場合もエラーにならない。
type SessionCleanupJob struct {
	cleaner  SessionCleaner
	recorder Recorder
	logger   *slog.Logger
	Interval time.Duration
}

// NewSessionCleanupJob はSessionCleanupJobを生成する。
// intervalが0以下の場合は1時間間隔で実行する。recorderはnilでもよい。
func NewSessionCleanupJob(cleaner SessionCleaner, recorder Recorder, logger *slog.Logger, interval time.Duration) *SessionCleanupJob {
	if interval <= 0 {
		interval = defaultInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionCleanupJob{
		cleaner:  cleaner,
		recorder: recorder,
		logger:   logger,
		Interval: interval,
	}
}

// Run は期限切れセッションを1回削除する。
func (j *SessionCleanupJob) Run(ctx context.Context) (int64, error) {
	start := time.Now()

	deleted, err := j.cleaner.CleanupExpiredSessions(ctx)
	if err != nil {
		j.logger.Error("セッションクリーンアップの実行に失敗しました",
			slog.String("error", err.Error()),
		)
		return 0, fmt.Errorf("セッションクリーンアップの実行に失敗: %w", err)
	}

	if j.recorder != nil {
		j.recorder.RecordSessionsCleaned(deleted)
	}

	j.logger.Info("セッションクリーンアップが完了しました",
		slog.Int64("deleted_count", deleted),
		slog.Float64("duration_ms", float64(time.Since(start).Milliseconds())),
	)
	return deleted, nil
}

// Start は起動直後に1回実行し、以降Interval間隔で実行する。
// コンテキストがキャンセルされるまでブロックする。
func (j *SessionCleanupJob) Start(ctx context.Context) {
	ticker := time.NewTicker(j.Interval)
	defer ticker.Stop()

	j.logger.Info("セッションクリーンアップジョブを開始しました",
		slog.Duration("interval", j.Interval),
	)

	// エラーはRun内でログ済み
	_, _ = j.Run(ctx)

	for {
		select {
		case <-ctx.Done():
			j.logger.Info("セッションクリーンアップジョブを停止しました")
			return
		case <-ticker.C:
			_, _ = j.Run(ctx)
		}
	}
}
