package gormrepo

import (
	"context"

	"outpost/internal/adapter/repo/gorm/model"
	"outpost/internal/app/ports"
	"outpost/internal/domain/entity"
	"outpost/internal/domain/survival"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SnapshotRepo struct {
	db *gorm.DB
}

func NewSnapshotRepo(db *gorm.DB) SnapshotRepo {
	return SnapshotRepo{db: db}
}

func (r SnapshotRepo) Save(ctx context.Context, snapshots []survival.NeedSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}
	rows := make([]model.NeedSnapshot, 0, len(snapshots))
	for _, s := range snapshots {
		id := s.ID
		if id == "" {
			id = uuid.NewString()
		}
		rows = append(rows, model.NeedSnapshot{
			ID:         id,
			EntityID:   int64(s.Entity),
			Kind:       string(s.Kind),
			Supply:     s.Supply,
			MaxSupply:  s.MaxSupply,
			Needy:      s.Needy,
			CapturedAt: s.CapturedAt,
		})
	}
	return getDBFromCtx(ctx, r.db).WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
}

func (r SnapshotRepo) ListByEntity(ctx context.Context, ent entity.ID, limit int) ([]survival.NeedSnapshot, error) {
	rows := []model.NeedSnapshot{}
	query := getDBFromCtx(ctx, r.db).WithContext(ctx).
		Where(&model.NeedSnapshot{EntityID: int64(ent)}).
		Clauses(clause.OrderBy{
			Columns: []clause.OrderByColumn{
				{Column: clause.Column{Name: "captured_at"}, Desc: true},
				{Column: clause.Column{Name: "kind"}},
			},
		})
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ports.ErrNotFound
	}
	out := make([]survival.NeedSnapshot, 0, len(rows))
	for _, row := range rows {
		out = append(out, survival.NeedSnapshot{
			ID:         row.ID,
			Entity:     entity.ID(row.EntityID),
			Kind:       survival.Kind(row.Kind),
			Supply:     row.Supply,
			MaxSupply:  row.MaxSupply,
			Needy:      row.Needy,
			CapturedAt: row.CapturedAt,
		})
	}
	return out, nil
}

var _ ports.SnapshotRepository = SnapshotRepo{}
