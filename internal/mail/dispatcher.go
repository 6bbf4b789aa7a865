package mail

import (
	"context"
	"log/slog"
	"time"
)

// Sender は1通のメール送信能力を表す。
// テスト時にモックに差し替え可能。
type Sender interface {
	Send(ctx context.Context, to Address, subject, textContent string) (string, error)
}

// Recipient はブロードキャストの宛先を表す。
type Recipient struct {
	Name  string
	Email string
}

// Message は宛先ごとに件名と本文を描画するテンプレート。
type Message func(r Recipient) (subject, textContent string)

// Outcome は1宛先への送信結果。
// 送信失敗は例外ではなくデータとしてここに集約される。
type Outcome struct {
	Email     string `json:"email"`
	Success   bool   `json:"success"`
	MessageID string `json:"id,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Report はディスパッチ全体の集計結果。
// Successful+Failed は常に Total と等しい。
type Report struct {
	Total      int       `json:"total"`
	Successful int       `json:"successful"`
	Failed     int       `json:"failed"`
	Results    []Outcome `json:"results"`
}

// Metrics はディスパッチャが記録するメトリクスのインターフェース。
type Metrics interface {
	RecordSendSuccess()
	RecordSendFailure()
	RecordSendLatency(d time.Duration)
}

// Dispatcher は宛先リストへ1通ずつメールを送信する。
//
// 送信は厳密に逐次であり、並行化してはならない。外部プロバイダは
// 秒間リクエスト数の上限を持つため、最後の1通を除く各送信の後に
// intervalのペーシング遅延を挟んで次の送信を行う。
// 各送信は互いに独立しており、1宛先の失敗は残りの宛先の送信を中断しない。
// リトライは行わない。失敗はその宛先について終了となる。
type Dispatcher struct {
	sender   Sender
	interval time.Duration
	logger   *slog.Logger
	metrics  Metrics // nil可

	// wait はペーシング遅延の実装。テストではゼロ遅延に差し替える。
	wait func(ctx context.Context, d time.Duration) error
}

// NewDispatcher はDispatcherの新しいインスタンスを生成する。
// metricsはnilでもよい。
func NewDispatcher(sender Sender, interval time.Duration, logger *slog.Logger, metrics Metrics) *Dispatcher {
	return &Dispatcher{
		sender:   sender,
		interval: interval,
		logger:   logger,
		metrics:  metrics,
		wait:     sleepWait,
	}
}

// sleepWait は指定時間待機する。コンテキストのキャンセルで中断する。
func sleepWait(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// Dispatch は宛先リストへ供給順に1通ずつ送信し、全宛先の結果を返す。
// コンテキストがキャンセルされた場合、未送信の宛先は失敗として記録される。
func (d *Dispatcher) Dispatch(ctx context.Context, recipients []Recipient, msg Message) Report {
	report := Report{
		Total:   len(recipients),
		Results: make([]Outcome, 0, len(recipients)),
	}

	for i, r := range recipients {
		subject, textContent := msg(r)

		start := time.Now()
		messageID, err := d.sender.Send(ctx, Address{Name: r.Name, Email: r.Email}, subject, textContent)
		if d.metrics != nil {
			d.metrics.RecordSendLatency(time.Since(start))
		}

		if err != nil {
			d.logger.Error("メール送信に失敗しました",
				slog.String("email", r.Email),
				slog.String("error", err.Error()),
			)
			report.Results = append(report.Results, Outcome{Email: r.Email, Error: err.Error()})
			if d.metrics != nil {
				d.metrics.RecordSendFailure()
			}
		} else {
			report.Results = append(report.Results, Outcome{Email: r.Email, Success: true, MessageID: messageID})
			if d.metrics != nil {
				d.metrics.RecordSendSuccess()
			}
		}

		// 最後の宛先の後にはペーシング遅延を入れない
		if i < len(recipients)-1 {
			if err := d.wait(ctx, d.interval); err != nil {
				d.logger.Warn("ブロードキャストが中断されました",
					slog.Int("remaining", len(recipients)-i-1),
					slog.String("error", err.Error()),
				)
				for _, rest := range recipients[i+1:] {
					report.Results = append(report.Results, Outcome{Email: rest.Email, Error: err.Error()})
					if d.metrics != nil {
						d.metrics.RecordSendFailure()
					}
				}
				break
			}
		}
	}

	// 集計は結果リストの分割から導出する
	for _, o := range report.Results {
		if o.Success {
			report.Successful++
		} else {
			report.Failed++
		}
	}

	return report
}
