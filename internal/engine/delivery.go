package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/clubhaus/backoffice/internal/domain"
	"github.com/clubhaus/backoffice/internal/guard"
	"github.com/clubhaus/backoffice/internal/notify"
	"github.com/clubhaus/backoffice/internal/repository"
)

// gatewayCircuit is the breaker key for outbound media sends.
const gatewayCircuit = "media_gateway"

// SubscriptionExtender extends a user's VIP membership. Implemented by the
// subscription service; injected so reward delivery stays decoupled from
// subscription bookkeeping.
type SubscriptionExtender interface {
	ExtendVIP(ctx context.Context, userID int64, days int) (time.Time, error)
}

// Deliverer hands out the rewards attached to a rank: VIP days through the
// extender, media packs through the gateway. Delivery is strictly
// best-effort; a failed send never unwinds the points that earned it.
type Deliverer struct {
	store    repository.Store
	vip      SubscriptionExtender
	notifier *notify.Service
	breaker  *guard.CircuitBreaker
	logger   *slog.Logger
}

// NewDeliverer creates a reward deliverer.
func NewDeliverer(store repository.Store, vip SubscriptionExtender, notifier *notify.Service, logger *slog.Logger) *Deliverer {
	return &Deliverer{
		store:    store,
		vip:      vip,
		notifier: notifier,
		breaker:  guard.NewCircuitBreaker(5, 30*time.Second),
		logger:   logger,
	}
}

// Deliver grants the rank's rewards to the user. Each failure is logged
// and skipped; the remaining rewards still go out.
func (d *Deliverer) Deliver(ctx context.Context, userID int64, rank *domain.Rank) {
	if rank == nil || !rank.HasRewards() {
		return
	}

	if rank.BonusDays > 0 {
		d.deliverVIP(ctx, userID, rank.BonusDays)
	}
	if rank.RewardPackID != nil {
		d.deliverPack(ctx, userID, rank)
	}
}

func (d *Deliverer) deliverVIP(ctx context.Context, userID int64, days int) {
	expiry, err := d.vip.ExtendVIP(ctx, userID, days)
	if err != nil {
		d.logger.Error("vip reward delivery failed", "user_id", userID, "days", days, "error", err)
		return
	}
	_ = d.notifier.Send(ctx, userID, notify.TemplateVIPReward, map[string]any{
		"days": days,
		"date": expiry.Format("02/01/2006"),
	})
}

func (d *Deliverer) deliverPack(ctx context.Context, userID int64, rank *domain.Rank) {
	items, err := d.store.PackItems(ctx, *rank.RewardPackID)
	if err != nil {
		d.logger.Error("pack load failed", "pack_id", rank.RewardPackID, "error", err)
		return
	}
	if len(items) == 0 {
		d.logger.Warn("rank references empty pack", "rank", rank.Name, "pack_id", rank.RewardPackID)
		return
	}

	packName := ""
	if pack, err := d.store.PackByID(ctx, *rank.RewardPackID); err == nil && pack != nil {
		packName = pack.Name
	}

	grouped, individual := domain.SplitForDelivery(items)
	gw := d.notifier.Transport()

	if len(grouped) > 0 && d.allow(ctx) {
		err := gw.SendMediaGroup(ctx, userID, grouped)
		d.record(err)
		if err != nil {
			d.logger.Error("grouped media send failed", "user_id", userID, "items", len(grouped), "error", err)
		}
	}
	for _, item := range individual {
		if !d.allow(ctx) {
			d.logger.Warn("media sends suspended, circuit open", "user_id", userID)
			break
		}
		err := gw.SendMedia(ctx, userID, item)
		d.record(err)
		if err != nil {
			d.logger.Error("media send failed", "user_id", userID, "item", item.UniqueID, "error", err)
		}
	}

	_ = d.notifier.Send(ctx, userID, notify.TemplatePackReward, map[string]any{
		"pack_name": packName,
		"rank_name": rank.Name,
	})
}

func (d *Deliverer) allow(ctx context.Context) bool {
	return d.breaker.Check(ctx, gatewayCircuit).Allowed
}

func (d *Deliverer) record(err error) {
	if err != nil {
		d.breaker.RecordFailure(gatewayCircuit)
		return
	}
	d.breaker.RecordSuccess(gatewayCircuit)
}
