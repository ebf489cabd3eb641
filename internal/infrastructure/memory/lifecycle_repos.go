package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
	dgen "github.com/jhoicas/Trazabilidad-api/internal/domain/genealogy"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/repository"
)

var (
	_ repository.LifecycleRepository    = (*LifecycleRepo)(nil)
	_ repository.NotificationRepository = (*NotificationRepo)(nil)
)

// LifecycleRepo consultas del escáner (todos los tenants).
type LifecycleRepo struct{ handle }

func (r *LifecycleRepo) ListActiveBatchesWithStock(_ context.Context) ([]*entity.StockBatch, error) {
	var out []*entity.StockBatch
	r.read(func(st *state) {
		for _, b := range st.batches {
			if b.Status == entity.BatchStatusActive && b.QuantityRemaining.IsPositive() {
				out = append(out, copyBatch(b))
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].BatchCode < out[j].BatchCode })
	return out, nil
}

func (r *LifecycleRepo) ListLatestCalibrations(_ context.Context) ([]*entity.Calibration, error) {
	latest := make(map[string]*entity.Calibration)
	var order []string
	r.read(func(st *state) {
		for _, c := range st.calibrations {
			key := c.TenantID + ":" + c.AssetID
			cur, ok := latest[key]
			if !ok {
				order = append(order, key)
			}
			if !ok || c.NextDue.After(cur.NextDue) {
				cp := *c
				latest[key] = &cp
			}
		}
	})
	out := make([]*entity.Calibration, 0, len(order))
	for _, k := range order {
		out = append(out, latest[k])
	}
	return out, nil
}

func (r *LifecycleRepo) ListCorrectiveActionsDueBefore(_ context.Context, before time.Time) ([]*entity.CorrectiveAction, error) {
	var out []*entity.CorrectiveAction
	r.read(func(st *state) {
		for _, a := range st.actions {
			if dgen.DateOnly(a.DueDate).Before(before) {
				c := *a
				out = append(out, &c)
			}
		}
	})
	return out, nil
}

func (r *LifecycleRepo) ListPendingRecallNotifications(_ context.Context) ([]*entity.RecallNotification, error) {
	var out []*entity.RecallNotification
	r.read(func(st *state) {
		for _, n := range st.recalls {
			if n.Status == entity.RecallNotificationActive && !n.Notified {
				c := *n
				out = append(out, &c)
			}
		}
	})
	return out, nil
}

func (r *LifecycleRepo) ListSupplierDocumentsExpiringBetween(_ context.Context, from, to time.Time) ([]*entity.SupplierDocument, error) {
	var out []*entity.SupplierDocument
	r.read(func(st *state) {
		for _, d := range st.documents {
			exp := dgen.DateOnly(d.ExpiryDate)
			if !exp.Before(from) && !exp.After(to) {
				c := *d
				out = append(out, &c)
			}
		}
	})
	return out, nil
}

// NotificationRepo notificaciones con llave de deduplicación única.
type NotificationRepo struct{ handle }

func (r *NotificationRepo) Insert(_ context.Context, n *entity.Notification) (bool, error) {
	inserted := false
	err := r.write(func(st *state) error {
		for _, existing := range st.notifications {
			if existing.DedupeKey == n.DedupeKey {
				return nil
			}
		}
		c := *n
		st.notifications = append(st.notifications, &c)
		inserted = true
		return nil
	})
	return inserted, err
}

func (r *NotificationRepo) ListUndelivered(_ context.Context, limit int) ([]*entity.Notification, error) {
	var out []*entity.Notification
	r.read(func(st *state) {
		for _, n := range st.notifications {
			if n.DeliveredAt != nil {
				continue
			}
			c := *n
			out = append(out, &c)
			if limit > 0 && len(out) == limit {
				return
			}
		}
	})
	return out, nil
}

func (r *NotificationRepo) MarkDelivered(_ context.Context, id string, at time.Time) error {
	return r.write(func(st *state) error {
		for _, n := range st.notifications {
			if n.ID == id {
				t := at
				n.DeliveredAt = &t
				return nil
			}
		}
		return nil
	})
}
