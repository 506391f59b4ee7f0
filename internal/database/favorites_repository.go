package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"marquee/models"
)

// FavoritesRepository persists the ordered favorites collection. It
// satisfies favorites.Persister.
type FavoritesRepository struct {
	db *sql.DB
}

func NewFavoritesRepository(db *sql.DB) *FavoritesRepository {
	return &FavoritesRepository{db: db}
}

// Load returns favorites in their stored order.
func (r *FavoritesRepository) Load(ctx context.Context) ([]models.Title, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, original_title, original_name, poster_path,
		       release_date, vote_average, overview, media_type
		FROM favorites
		ORDER BY position ASC`)
	if err != nil {
		return nil, fmt.Errorf("query favorites: %w", err)
	}
	defer rows.Close()

	titles := make([]models.Title, 0)
	for rows.Next() {
		var t models.Title
		if err := rows.Scan(
			&t.ID,
			&t.Title,
			&t.OriginalTitle,
			&t.OriginalName,
			&t.PosterPath,
			&t.ReleaseDate,
			&t.VoteAverage,
			&t.Overview,
			&t.MediaType,
		); err != nil {
			return nil, fmt.Errorf("scan favorite: %w", err)
		}
		titles = append(titles, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate favorites: %w", err)
	}

	return titles, nil
}

// Save replaces the stored collection with titles in a single transaction.
// Rows that survive keep their original added_at.
func (r *FavoritesRepository) Save(ctx context.Context, titles []models.Title) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin favorites tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	keep := make([]any, 0, len(titles))
	for _, t := range titles {
		keep = append(keep, t.ID)
	}

	if len(keep) == 0 {
		if _, err = tx.ExecContext(ctx, `DELETE FROM favorites`); err != nil {
			return fmt.Errorf("clear favorites: %w", err)
		}
	} else {
		query := `DELETE FROM favorites WHERE id NOT IN (?` + strings.Repeat(", ?", len(keep)-1) + `)`
		if _, err = tx.ExecContext(ctx, query, keep...); err != nil {
			return fmt.Errorf("prune favorites: %w", err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO favorites (id, position, title, original_title, original_name,
		                       poster_path, release_date, vote_average, overview, media_type)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			position = excluded.position,
			title = excluded.title,
			original_title = excluded.original_title,
			original_name = excluded.original_name,
			poster_path = excluded.poster_path,
			release_date = excluded.release_date,
			vote_average = excluded.vote_average,
			overview = excluded.overview,
			media_type = excluded.media_type`)
	if err != nil {
		return fmt.Errorf("prepare favorite upsert: %w", err)
	}
	defer stmt.Close()

	for position, t := range titles {
		if _, err = stmt.ExecContext(ctx,
			t.ID,
			position,
			t.Title,
			t.OriginalTitle,
			t.OriginalName,
			t.PosterPath,
			t.ReleaseDate,
			t.VoteAverage,
			t.Overview,
			t.MediaType,
		); err != nil {
			return fmt.Errorf("upsert favorite %d: %w", t.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit favorites: %w", err)
	}
	return nil
}
