package postgres

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gridmarket/gridmarket-api/internal/domain/entity"
	"github.com/gridmarket/gridmarket-api/internal/domain/repository"
)

// InstanceRepository persists GPU instance listings.
type InstanceRepository struct {
	pool *pgxpool.Pool
}

func NewInstanceRepository(pool *pgxpool.Pool) *InstanceRepository {
	return &InstanceRepository{pool: pool}
}

func (r *InstanceRepository) Create(i *entity.Instance) error {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		INSERT INTO instances (id, provider_id, name, gpu_model, vram_gb, region, price_per_hour, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`, i.ID, i.ProviderID, i.Name, i.GPUModel, i.VRAMGB, i.Region, i.PricePerHour, string(i.Status))
	return row.Scan(&i.CreatedAt, &i.UpdatedAt)
}

func (r *InstanceRepository) GetByID(id string) (*entity.Instance, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		SELECT id, provider_id, name, gpu_model, vram_gb, region, price_per_hour, status, created_at, updated_at
		FROM instances WHERE id = $1
	`, id)
	i, err := scanInstance(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return i, nil
}

func (r *InstanceRepository) List(f entity.InstanceFilter) ([]*entity.Instance, error) {
	ctx := context.Background()
	query := `
		SELECT id, provider_id, name, gpu_model, vram_gb, region, price_per_hour, status, created_at, updated_at
		FROM instances WHERE 1=1`
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		query += " AND " + cond + "$" + strconv.Itoa(len(args))
	}
	if f.GPUModel != "" {
		add("gpu_model = ", f.GPUModel)
	}
	if f.Region != "" {
		add("region = ", f.Region)
	}
	if f.Status != "" {
		add("status = ", string(f.Status))
	}
	if f.MaxPrice > 0 {
		add("price_per_hour <= ", f.MaxPrice)
	}
	if f.ProviderID != "" {
		add("provider_id = ", f.ProviderID)
	}
	query += " ORDER BY price_per_hour ASC, id ASC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*entity.Instance
	for rows.Next() {
		i, err := scanInstance(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

func (r *InstanceRepository) Update(i *entity.Instance) error {
	ctx := context.Background()
	i.UpdatedAt = time.Now().UTC()
	res, err := r.pool.Exec(ctx, `
		UPDATE instances
		SET name = $1, gpu_model = $2, vram_gb = $3, region = $4, price_per_hour = $5,
			status = $6, updated_at = $7
		WHERE id = $8
	`, i.Name, i.GPUModel, i.VRAMGB, i.Region, i.PricePerHour, string(i.Status), i.UpdatedAt, i.ID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return errors.New("postgres: instance not found")
	}
	return nil
}

func (r *InstanceRepository) Delete(id string) error {
	ctx := context.Background()
	res, err := r.pool.Exec(ctx, `DELETE FROM instances WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return errors.New("postgres: instance not found")
	}
	return nil
}

func scanInstance(row pgx.Row) (*entity.Instance, error) {
	i := &entity.Instance{}
	var status string
	if err := row.Scan(&i.ID, &i.ProviderID, &i.Name, &i.GPUModel, &i.VRAMGB, &i.Region,
		&i.PricePerHour, &status, &i.CreatedAt, &i.UpdatedAt); err != nil {
		return nil, err
	}
	i.Status = entity.InstanceStatus(status)
	return i, nil
}

var _ repository.InstanceRepository = (*InstanceRepository)(nil)
