// Package security はアプリケーションのセキュリティ機能を提供する。
//
// AdminGuard は管理系エンドポイントのアクセス制御を担う。
// 共有シークレットの定数時間比較と、クライアント識別子ごとの
// スライディングウィンドウ方式の失敗試行ロックアウトを組み合わせる。
package security

import (
	"crypto/subtle"
	"sync"
	"time"

	"github.com/hitoshi/engagepod/internal/model"
)

// AdminGuardConfig はAdminGuardの設定を保持する。
type AdminGuardConfig struct {
	// Secret は管理者シークレット。空の場合、Verifyは常に設定エラーを返す（フェイルクローズ）。
	Secret string
	// MaxAttempts はウィンドウ内で許容される失敗回数の上限。
	MaxAttempts int
	// Window は失敗回数を累積するスライディングウィンドウの長さ。
	Window time.Duration
	// SweepInterval は期限切れレコードの定期掃除の間隔。0の場合は掃除goroutineを起動しない。
	SweepInterval time.Duration
	// Metrics はロックアウト発生の記録先。nilの場合は記録しない。
	Metrics LockoutMetrics
}

// LockoutMetrics はロックアウト発生メトリクスの記録先を表す。
type LockoutMetrics interface {
	RecordAdminLockout()
}

// DefaultAdminGuardConfig はデフォルトの設定を返す（5回失敗で60秒ロック）。
func DefaultAdminGuardConfig(secret string) AdminGuardConfig {
	return AdminGuardConfig{
		Secret:        secret,
		MaxAttempts:   5,
		Window:        60 * time.Second,
		SweepInterval: time.Minute,
	}
}

// attemptRecord はクライアント識別子ごとの失敗試行状態を保持する。
type attemptRecord struct {
	count       int
	windowStart time.Time
}

// AdminGuard はクライアント識別子ごとの失敗試行を追跡し、
// 上限到達後はウィンドウが経過するまで認証試行自体を拒否する。
// 複数のHTTPハンドラgoroutineから同時に呼ばれるため、mapはミューテックスで保護する。
type AdminGuard struct {
	config AdminGuardConfig

	mu       sync.Mutex
	attempts map[string]*attemptRecord

	stopCh chan struct{}

	// now はテストで時刻を差し替えるためのフック。
	now func() time.Time
}

// NewAdminGuard はAdminGuardを生成する。
// SweepIntervalが正の場合、バックグラウンドで期限切れレコードの定期掃除を開始する。
func NewAdminGuard(config AdminGuardConfig) *AdminGuard {
	g := &AdminGuard{
		config:   config,
		attempts: make(map[string]*attemptRecord),
		stopCh:   make(chan struct{}),
		now:      time.Now,
	}

	if config.SweepInterval > 0 {
		go g.sweepLoop()
	}

	return g
}

// Stop は掃除のバックグラウンドゴルーチンを停止する。
func (g *AdminGuard) Stop() {
	close(g.stopCh)
}

// Verify は管理者シークレットの検証とロックアウト判定をまとめて行う。
// 戻り値は成功時nil、失敗時は以下のいずれかのAPIError:
//   - ADMIN_NOT_CONFIGURED: シークレット未設定（比較は行わず、試行も消費しない）
//   - RATE_LIMITED: ウィンドウ内の失敗上限到達によるロックアウト
//   - UNAUTHORIZED: シークレット不一致（失敗として記録される）
//
// 成功した場合、そのクライアントの失敗記録は即座にクリアされる。
func (g *AdminGuard) Verify(clientKey, provided string) error {
	if g.config.Secret == "" {
		return model.NewAdminNotConfiguredError()
	}

	if err := g.Check(clientKey); err != nil {
		return err
	}

	if !secretEqual(g.config.Secret, provided) {
		g.RecordFailure(clientKey)
		return model.NewUnauthorizedError()
	}

	g.RecordSuccess(clientKey)
	return nil
}

// Check はクライアントがロックアウト中かを判定する。
// ウィンドウを過ぎた古いレコードはこの時点で破棄される（遅延掃除）。
func (g *AdminGuard) Check(clientKey string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	rec := g.liveRecordLocked(clientKey)
	if rec != nil && rec.count >= g.config.MaxAttempts {
		return model.NewRateLimitedError()
	}

	return nil
}

// RecordFailure は失敗試行を記録する。
// 初回失敗またはウィンドウ経過後の失敗は新しいウィンドウの1回目として数える。
func (g *AdminGuard) RecordFailure(clientKey string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	rec := g.liveRecordLocked(clientKey)
	if rec == nil {
		g.attempts[clientKey] = &attemptRecord{count: 1, windowStart: g.now()}
		rec = g.attempts[clientKey]
	} else {
		rec.count++
	}

	// ちょうど上限に達した時点をロックアウト発生として1回だけ記録する
	if rec.count == g.config.MaxAttempts && g.config.Metrics != nil {
		g.config.Metrics.RecordAdminLockout()
	}
}

// RecordSuccess は成功時にクライアントの失敗記録をクリアする。
// ウィンドウの状態にかかわらず即座にクリアされる。
func (g *AdminGuard) RecordSuccess(clientKey string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.attempts, clientKey)
}

// TrackedCount は現在追跡中のクライアント数を返す。
// テストおよびメトリクス用。
func (g *AdminGuard) TrackedCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.attempts)
}

// liveRecordLocked は有効なレコードを返す。期限切れなら削除してnilを返す。
// 呼び出し側がg.muを保持していること。
func (g *AdminGuard) liveRecordLocked(clientKey string) *attemptRecord {
	rec, ok := g.attempts[clientKey]
	if !ok {
		return nil
	}
	if g.now().Sub(rec.windowStart) > g.config.Window {
		delete(g.attempts, clientKey)
		return nil
	}
	return rec
}

// sweepLoop はバックグラウンドで期限切れレコードを定期的に破棄する。
// 遅延掃除だけでは一度失敗して二度と現れないクライアントのレコードが残るため、
// 定期掃除でメモリを回収する。
func (g *AdminGuard) sweepLoop() {
	ticker := time.NewTicker(g.config.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			g.sweep()
		case <-g.stopCh:
			return
		}
	}
}

// sweep はウィンドウを過ぎたレコードをすべて破棄する。
func (g *AdminGuard) sweep() {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	for key, rec := range g.attempts {
		if now.Sub(rec.windowStart) > g.config.Window {
			delete(g.attempts, key)
		}
	}
}

// secretEqual はシークレットを定数時間で比較する。
// 先に長さを比較し、一致する場合のみバイト列の定数時間比較を行う。
// 不一致位置によって比較コストが変わらないため、タイミング攻撃で
// シークレットの先頭からの一致長を推測されることはない。
func secretEqual(secret, provided string) bool {
	if len(secret) != len(provided) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(secret), []byte(provided)) == 1
}
