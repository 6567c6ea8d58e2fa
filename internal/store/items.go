package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/lostfound/internal/model"
)

const itemColumns = `id, user_id, title, description, location, date_lost, contact, status,
	image_path, image_url, found_image_path, found_image_url, created_at, updated_at`

// MaxListLimit caps the page size of ListItems.
const MaxListLimit = 200

// ListOptions filters and pages ListItems. Zero values mean "all".
type ListOptions struct {
	Status string
	Limit  int
	Offset int
}

// ItemUpdate describes a partial update. When FoundImagePath or FoundImageURL
// is set the item is also marked found, whatever Fields.Status says.
type ItemUpdate struct {
	Fields         model.ItemFields
	FoundImagePath *string
	FoundImageURL  *string
}

// CreateItem inserts an item. Status defaults to lost.
func CreateItem(ctx context.Context, db *sqlx.DB, item *model.LostItem) (*model.LostItem, error) {
	status := item.Status
	if status == "" {
		status = model.ItemStatusLost
	}

	id, err := insert(ctx, db,
		`INSERT INTO lost_items (user_id, title, description, location, date_lost, contact, status, image_path, image_url)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.UserID, item.Title, item.Description, item.Location, item.DateLost, item.Contact, status,
		item.ImagePath, item.ImageURL,
	)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	return GetItem(ctx, db, id)
}

// GetItem returns an item by ID.
func GetItem(ctx context.Context, db *sqlx.DB, id int64) (*model.LostItem, error) {
	item := &model.LostItem{}
	err := db.GetContext(ctx, item,
		db.Rebind(`SELECT `+itemColumns+` FROM lost_items WHERE id = ?`), id,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// ListItems returns items, newest first.
func ListItems(ctx context.Context, db *sqlx.DB, opts ListOptions) ([]model.LostItem, error) {
	query := `SELECT ` + itemColumns + ` FROM lost_items`
	var args []any

	if opts.Status != "" {
		query += ` WHERE status = ?`
		args = append(args, opts.Status)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	if opts.Limit > 0 {
		limit := min(opts.Limit, MaxListLimit)
		query += ` LIMIT ? OFFSET ?`
		args = append(args, limit, max(opts.Offset, 0))
	}

	var items []model.LostItem
	if err := db.SelectContext(ctx, &items, db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	return items, nil
}

// UpdateItem applies a partial update and returns the updated item, or nil if
// it does not exist.
func UpdateItem(ctx context.Context, db *sqlx.DB, id int64, u ItemUpdate) (*model.LostItem, error) {
	var sets []string
	var args []any

	set := func(column string, value *string) {
		if value != nil {
			sets = append(sets, column+" = ?")
			args = append(args, *value)
		}
	}

	f := u.Fields
	if u.FoundImagePath != nil || u.FoundImageURL != nil {
		found := model.ItemStatusFound
		f.Status = &found
	}

	set("title", f.Title)
	set("description", f.Description)
	set("location", f.Location)
	set("date_lost", f.DateLost)
	set("contact", f.Contact)
	set("status", f.Status)
	set("found_image_path", u.FoundImagePath)
	set("found_image_url", u.FoundImageURL)
	sets = append(sets, "updated_at = CURRENT_TIMESTAMP")
	args = append(args, id)

	_, err := db.ExecContext(ctx,
		db.Rebind(`UPDATE lost_items SET `+strings.Join(sets, ", ")+` WHERE id = ?`),
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("updating item: %w", err)
	}

	return GetItem(ctx, db, id)
}

// MarkItemFound sets the item's status to found and attaches the proof image.
func MarkItemFound(ctx context.Context, db *sqlx.DB, id int64, imagePath, imageURL string) (*model.LostItem, error) {
	return UpdateItem(ctx, db, id, ItemUpdate{
		FoundImagePath: &imagePath,
		FoundImageURL:  &imageURL,
	})
}

// DeleteItem removes an item. It reports false if the item did not exist.
func DeleteItem(ctx context.Context, db *sqlx.DB, id int64) (bool, error) {
	result, err := db.ExecContext(ctx, db.Rebind(`DELETE FROM lost_items WHERE id = ?`), id)
	if err != nil {
		return false, fmt.Errorf("deleting item: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking deleted rows: %w", err)
	}
	return n > 0, nil
}
