package reconcile

import (
	"context"
	"time"

	"github.com/darkkaiser/autodelivery-server/internal/config"
	"github.com/darkkaiser/autodelivery-server/internal/marketplace"
	"github.com/darkkaiser/autodelivery-server/internal/metrics"
	"github.com/darkkaiser/autodelivery-server/internal/service/runner"
	applog "github.com/darkkaiser/autodelivery-server/pkg/log"
	"github.com/samber/lo"
)

const component = "reconcile"

// Policy 원격 호출 재시도와 호출 간격 정책
type Policy struct {
	Retry marketplace.RetryPolicy

	// MutationPacing 상품 상태 변경 직전 대기 시간
	MutationPacing time.Duration

	// LotPacing 상품과 상품 사이의 대기 시간
	LotPacing time.Duration

	// Sleep 테스트에서 대기를 대체하기 위한 함수입니다. nil이면 marketplace.SleepContext를 사용합니다.
	Sleep func(ctx context.Context, d time.Duration) error
}

// DefaultPolicy 기본 정책(3회 시도, 2초 간격, 변경 전 0.2초, 상품 간 0.5초)을 반환합니다.
func DefaultPolicy() Policy {
	return PolicyFromConfig(config.ReconcileConfig{
		MaxAttempts:    config.DefaultMaxAttempts,
		RetryDelay:     config.DefaultRetryDelay,
		MutationPacing: config.DefaultMutationPacing,
		LotPacing:      config.DefaultLotPacing,
	})
}

// PolicyFromConfig 설정으로부터 정책을 생성합니다.
func PolicyFromConfig(c config.ReconcileConfig) Policy {
	return Policy{
		Retry: marketplace.RetryPolicy{
			MaxAttempts: c.MaxAttempts,
			Delay:       c.RetryDelay,
		},
		MutationPacing: c.MutationPacing,
		LotPacing:      c.LotPacing,
	}
}

func (p Policy) sleep(ctx context.Context, d time.Duration) error {
	if p.Sleep != nil {
		return p.Sleep(ctx, d)
	}
	return marketplace.SleepContext(ctx, d)
}

// Remote 상품 상태 동기화에 필요한 원격 호출
type Remote interface {
	ListActiveLots(ctx context.Context, userID int64) ([]marketplace.Lot, error)
	GetLotInfo(ctx context.Context, lotID, gameID int64) (marketplace.LotInfo, error)
	SaveLot(ctx context.Context, info marketplace.LotInfo, active bool) error
}

// LotSource 로컬에 알려진(캐시된) 판매자 상품 목록
type LotSource interface {
	KnownLots() []marketplace.Lot
}

// StockCounter 상품 파일의 남은 재고 수를 조회합니다.
type StockCounter interface {
	Count(name string) (int, error)
}

// Submitter 백그라운드 작업 제출
type Submitter interface {
	Submit(name string, task runner.Task) error
}

// Report 동기화 1회 실행 결과
type Report struct {
	Checked  int
	Restored int
	Disabled int
	Failed   int
	Skipped  int
}

// Reconciler 상품 노출 상태 동기화
type Reconciler struct {
	remote    Remote
	accountID int64

	configs *config.Store
	lots    LotSource
	stock   StockCounter

	policy  Policy
	metrics *metrics.Metrics
}

// New 새 Reconciler를 생성합니다.
func New(remote Remote, accountID int64, configs *config.Store, lots LotSource, stock StockCounter, policy Policy, m *metrics.Metrics) *Reconciler {
	return &Reconciler{
		remote:    remote,
		accountID: accountID,
		configs:   configs,
		lots:      lots,
		stock:     stock,
		policy:    policy,
		metrics:   m,
	}
}

// RunDetached 동기화를 백그라운드 러너에 제출하고 즉시 반환합니다.
func (r *Reconciler) RunDetached(submitter Submitter) error {
	return submitter.Submit("reconcile_lots", func(ctx context.Context) {
		_, _ = r.Run(ctx)
	})
}

// Run 동기화를 1회 실행합니다.
//
// 자동 복구와 자동 비활성화가 모두 꺼져 있으면 아무것도 하지 않습니다.
// 원격 상품 목록 조회가 모든 시도에서 실패하면 이번 실행을 중단합니다.
// 개별 상품의 상태 변경 실패는 로그로 남기고 다음 상품으로 넘어갑니다.
func (r *Reconciler) Run(ctx context.Context) (Report, error) {
	snap := r.configs.Load()
	if !snap.Features.AutoRestore && !snap.Features.AutoDisable {
		return Report{}, nil
	}

	applog.WithComponent(component).Info("상품 정보를 가져오는 중...")

	var remoteLots []marketplace.Lot
	err := r.policy.Retry.Do(ctx, "list_active_lots", func(ctx context.Context) (err error) {
		remoteLots, err = r.remote.ListActiveLots(ctx, r.accountID)
		return err
	})
	if err != nil {
		applog.WithComponentAndFields(component, applog.Fields{
			"error": err,
		}).Error("상품 정보를 가져오지 못해 동기화를 중단합니다")
		r.metrics.ReconcilePass("aborted")
		return Report{}, err
	}

	present := lo.SliceToMap(remoteLots, func(l marketplace.Lot) (int64, struct{}) { return l.ID, struct{}{} })

	var report Report
	for i, lot := range r.lots.KnownLots() {
		if i > 0 {
			if err := r.policy.sleep(ctx, r.policy.LotPacing); err != nil {
				return report, err
			}
		}
		report.Checked++

		_, isPresent := present[lot.ID]
		action, ok := r.decide(snap, lot, isPresent)
		if !ok {
			report.Skipped++
			continue
		}
		if action == NoOp {
			continue
		}

		if err := r.policy.sleep(ctx, r.policy.MutationPacing); err != nil {
			return report, err
		}

		if err := r.apply(ctx, lot, action); err != nil {
			report.Failed++
			continue
		}

		switch action {
		case Restore:
			report.Restored++
		case Disable:
			report.Disabled++
		}
	}

	r.metrics.ReconcilePass("completed")

	applog.WithComponentAndFields(component, applog.Fields{
		"checked":  report.Checked,
		"restored": report.Restored,
		"disabled": report.Disabled,
		"failed":   report.Failed,
		"skipped":  report.Skipped,
	}).Info("상품 상태 동기화 완료")

	return report, nil
}

// decide 상품 하나의 조치를 결정합니다. 재고가 필요한 경로에서 재고를 확인할 수 없으면 false를 반환합니다.
func (r *Reconciler) decide(snap *config.Snapshot, lot marketplace.Lot, isPresent bool) (Action, bool) {
	in := Input{
		PresentRemotely: isPresent,
		AutoRestore:     snap.Features.AutoRestore,
		AutoDisable:     snap.Features.AutoDisable,
		Stock:           1,
	}

	rule, hasRule := snap.FindRule(lot.Title)
	if hasRule {
		in.HasRule = true
		in.DisableAutoRestore = rule.DisableAutoRestore
		in.DisableAutoDisable = rule.DisableAutoDisable

		if rule.HasProductsFile() && needsStock(in) {
			count, err := r.stock.Count(rule.ProductsFile)
			if err != nil {
				applog.WithComponentAndFields(component, applog.Fields{
					"lot_id": lot.ID,
					"rule":   rule.Name,
					"file":   rule.ProductsFile,
					"error":  err,
				}).Warn("상품 파일의 재고를 확인할 수 없어 건너뜁니다")
				return NoOp, false
			}
			in.Stock = count
		}
	}

	return Decide(in), true
}

// needsStock 재고 수가 결정에 영향을 주는 경우에만 true를 반환합니다.
func needsStock(in Input) bool {
	if !in.AutoDisable {
		return false
	}
	if in.PresentRemotely {
		return !in.DisableAutoDisable
	}
	return in.AutoRestore && !in.DisableAutoRestore
}

func (r *Reconciler) apply(ctx context.Context, lot marketplace.Lot, action Action) error {
	logger := applog.WithComponentAndFields(component, applog.Fields{
		"lot_id": lot.ID,
		"title":  lot.Title,
		"action": action.String(),
	})

	err := r.policy.Retry.Do(ctx, "save_lot", func(ctx context.Context) error {
		info, err := r.remote.GetLotInfo(ctx, lot.ID, lot.GameID)
		if err != nil {
			return err
		}
		return r.remote.SaveLot(ctx, info, action == Restore)
	})

	r.metrics.ReconcileAction(action.String(), err == nil)

	if err != nil {
		logger.WithField("error", err).Error("상품 상태를 변경하지 못했습니다")
		return err
	}

	switch action {
	case Restore:
		logger.Info("상품을 복구했습니다")
	case Disable:
		logger.Info("상품을 비활성화했습니다")
	}

	return nil
}
