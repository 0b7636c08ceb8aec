package payments

import (
	"context"

	"go.uber.org/zap"
)

type PremiumStore interface {
	SetPremium(ctx context.Context, premium bool) error
	AddFreeze(ctx context.Context, count int) error
}

// Service is what the front end calls. Entitlement changes from any source
// end up in the store through the watcher listener.
type Service struct {
	provider Provider
	watcher  *Watcher
	store    PremiumStore
	logger   *zap.Logger
}

func NewService(provider Provider, watcher *Watcher, st PremiumStore, logger *zap.Logger) *Service {
	if provider == nil {
		provider = Unconfigured{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if watcher == nil {
		watcher = NewWatcher(provider, 0, logger)
	}
	s := &Service{
		provider: provider,
		watcher:  watcher,
		store:    st,
		logger:   logger.Named("payments"),
	}
	watcher.OnEntitlementChange(func(premium bool) {
		if err := st.SetPremium(context.Background(), premium); err != nil {
			s.logger.Warn("Failed to cache entitlement", zap.Error(err))
		}
	})
	return s
}

func (s *Service) Watcher() *Watcher { return s.watcher }

func (s *Service) Upgrade(ctx context.Context, plan Plan, receipt string) (bool, error) {
	if !plan.IsValid() {
		return false, ErrUnknownPlan
	}
	premium, err := s.provider.Purchase(ctx, plan, receipt)
	if err != nil {
		return false, err
	}
	s.watcher.Report(premium)
	return premium, nil
}

func (s *Service) Restore(ctx context.Context) (bool, error) {
	premium, err := s.provider.Restore(ctx)
	if err != nil {
		return false, err
	}
	s.watcher.Report(premium)
	return premium, nil
}

// BuyStreakFreeze adds one freeze after a successful purchase. The store is
// untouched when the purchase fails.
func (s *Service) BuyStreakFreeze(ctx context.Context, receipt string) error {
	if err := s.provider.PurchaseStreakFreeze(ctx, receipt); err != nil {
		return err
	}
	return s.store.AddFreeze(ctx, 1)
}
