package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/waste-pickup/internal/model"
)

type RequestRepository struct {
	db *gorm.DB
}

func NewRequestRepository(db *gorm.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

type requestRow struct {
	BackendID uuid.UUID `gorm:"column:backend_id"`
	RequestID string    `gorm:"column:request_id"`
	UserType  string    `gorm:"column:user_type"`
	Name      string    `gorm:"column:name"`
	Phone     string    `gorm:"column:phone"`
	Address   string    `gorm:"column:address"`
	Area      string    `gorm:"column:area"`
	WasteType string    `gorm:"column:waste_type"`
	Weight    float64   `gorm:"column:weight"`
	Price     float64   `gorm:"column:price"`
	Status    string    `gorm:"column:status"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (r requestRow) toModel() *model.WasteRequest {
	return &model.WasteRequest{
		ID:        r.RequestID,
		BackendID: r.BackendID,
		UserType:  model.SubmitterCategory(r.UserType),
		Name:      r.Name,
		Phone:     r.Phone,
		Address:   r.Address,
		Area:      r.Area,
		WasteType: r.WasteType,
		Weight:    r.Weight,
		Price:     r.Price,
		Status:    model.Status(r.Status),
		CreatedAt: r.CreatedAt,
	}
}

// List returns every request in creation order.
func (r *RequestRepository) List(ctx context.Context) ([]*model.WasteRequest, error) {
	var rows []requestRow
	if err := r.db.WithContext(ctx).Raw(`
		SELECT
			backend_id,
			request_id,
			user_type,
			name,
			phone,
			address,
			area,
			waste_type,
			weight,
			price,
			status,
			created_at
		FROM waste_requests
		ORDER BY created_at ASC, request_id ASC
	`).Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]*model.WasteRequest, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toModel())
	}
	return out, nil
}

func (r *RequestRepository) GetByBackendID(ctx context.Context, id uuid.UUID) (*model.WasteRequest, error) {
	var row requestRow
	if err := r.db.WithContext(ctx).Raw(`
		SELECT
			backend_id,
			request_id,
			user_type,
			name,
			phone,
			address,
			area,
			waste_type,
			weight,
			price,
			status,
			created_at
		FROM waste_requests
		WHERE backend_id = ?
		LIMIT 1
	`, id).Scan(&row).Error; err != nil {
		return nil, err
	}
	if row.BackendID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return row.toModel(), nil
}

func (r *RequestRepository) Insert(ctx context.Context, req *model.WasteRequest) error {
	return r.db.WithContext(ctx).Exec(`
		INSERT INTO waste_requests (
			backend_id,
			request_id,
			user_type,
			name,
			phone,
			address,
			area,
			waste_type,
			weight,
			price,
			status,
			created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		req.BackendID,
		req.ID,
		string(req.UserType),
		req.Name,
		req.Phone,
		req.Address,
		req.Area,
		req.WasteType,
		req.Weight,
		req.Price,
		string(req.Status),
		req.CreatedAt.UTC(),
	).Error
}

// Update overwrites the mutable fields of a stored request. Price and creation time stay as stored.
func (r *RequestRepository) Update(ctx context.Context, req *model.WasteRequest) error {
	result := r.db.WithContext(ctx).Exec(`
		UPDATE waste_requests
		SET
			user_type = ?,
			name = ?,
			phone = ?,
			address = ?,
			area = ?,
			waste_type = ?,
			weight = ?,
			status = ?
		WHERE backend_id = ?
	`,
		string(req.UserType),
		req.Name,
		req.Phone,
		req.Address,
		req.Area,
		req.WasteType,
		req.Weight,
		string(req.Status),
		req.BackendID,
	)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *RequestRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Exec(`DELETE FROM waste_requests WHERE backend_id = ?`, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *RequestRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Raw(`SELECT COUNT(*) FROM waste_requests`).Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}
