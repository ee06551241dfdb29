package store

import (
	"context"

	"github.com/google/uuid"
)

const productColumns = `id,chatbot_id,name,description,price,image_url,link,cta_label,is_active,sort_order,created_at,updated_at`

func scanProduct(row scanner) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.ChatbotID, &p.Name, &p.Description, &p.Price, &p.ImageURL,
		&p.Link, &p.CTALabel, &p.IsActive, &p.SortOrder, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// ListProducts returns a chatbot's catalog in display order. The order is the
// matcher's tie-break, so it must be stable.
func (s *Store) ListProducts(ctx context.Context, chatbotID string, activeOnly bool) ([]Product, error) {
	q := `SELECT ` + productColumns + ` FROM products WHERE chatbot_id=$1`
	if activeOnly {
		q += ` AND is_active=TRUE`
	}
	q += ` ORDER BY sort_order, created_at, id`
	rows, err := s.DB.QueryContext(ctx, q, chatbotID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) GetProduct(ctx context.Context, id string) (Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Product{}, ErrNotFound
	}
	p, err := scanProduct(s.DB.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id=$1`, id))
	return p, notFound(err)
}

func (s *Store) CreateProduct(ctx context.Context, p Product) (Product, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return scanProduct(s.DB.QueryRowContext(ctx, `INSERT INTO products (id,chatbot_id,name,description,price,image_url,link,cta_label,is_active,sort_order)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10) RETURNING `+productColumns,
		p.ID, p.ChatbotID, p.Name, p.Description, p.Price, p.ImageURL, p.Link, p.CTALabel, p.IsActive, p.SortOrder))
}

func (s *Store) UpdateProduct(ctx context.Context, p Product) (Product, error) {
	if _, err := uuid.Parse(p.ID); err != nil {
		return Product{}, ErrNotFound
	}
	out, err := scanProduct(s.DB.QueryRowContext(ctx, `UPDATE products SET name=$2,description=$3,price=$4,image_url=$5,link=$6,cta_label=$7,is_active=$8,sort_order=$9,updated_at=CURRENT_TIMESTAMP
		WHERE id=$1 RETURNING `+productColumns,
		p.ID, p.Name, p.Description, p.Price, p.ImageURL, p.Link, p.CTALabel, p.IsActive, p.SortOrder))
	return out, notFound(err)
}

func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	return affectedOrNotFound(s.DB.ExecContext(ctx, `DELETE FROM products WHERE id=$1`, id))
}
