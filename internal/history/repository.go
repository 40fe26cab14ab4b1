package history

import (
	"database/sql"
	"errors"
	"fmt"
)

// generationColumns is the list of columns to select for generation queries.
const generationColumns = `id, prompt_id, template_id, model, prompt_text, negative_text,
	seed, width, height, image_count, created_at`

// NotFoundError is returned when no generation matches a lookup.
type NotFoundError struct {
	PromptID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no generation with prompt id %q", e.PromptID)
}

// Repository persists Generation records.
type Repository struct {
	db *sql.DB
}

func scanGeneration(scanner interface{ Scan(...any) error }) (*generationModel, error) {
	var model generationModel
	err := scanner.Scan(
		&model.ID, &model.PromptID, &model.TemplateID, &model.Model,
		&model.PromptText, &model.NegativeText,
		&model.Seed, &model.Width, &model.Height,
		&model.ImageCount, &model.CreatedAt,
	)
	return &model, err
}

// Save persists a generation to the database.
// For new generations (ID == 0), inserts a new row and sets the ID.
// For existing generations (ID > 0), updates the existing row.
func (r *Repository) Save(g *Generation) error {
	model := toModel(g)

	if g.ID == 0 {
		result, err := r.db.Exec(
			`INSERT INTO generations (
				prompt_id, template_id, model, prompt_text, negative_text,
				seed, width, height, image_count, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			model.PromptID, model.TemplateID, model.Model, model.PromptText, model.NegativeText,
			model.Seed, model.Width, model.Height, model.ImageCount, model.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert generation: %w", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get last insert id: %w", err)
		}
		g.ID = id
		return nil
	}

	_, err := r.db.Exec(
		`UPDATE generations SET
			template_id = ?, model = ?, prompt_text = ?, negative_text = ?,
			seed = ?, width = ?, height = ?, image_count = ?
		WHERE id = ?`,
		model.TemplateID, model.Model, model.PromptText, model.NegativeText,
		model.Seed, model.Width, model.Height, model.ImageCount,
		model.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update generation: %w", err)
	}
	return nil
}

// FindByPromptID retrieves a generation by the server-assigned prompt id.
// Returns NotFoundError if no matching generation exists.
func (r *Repository) FindByPromptID(promptID string) (*Generation, error) {
	row := r.db.QueryRow(
		`SELECT `+generationColumns+` FROM generations WHERE prompt_id = ?`,
		promptID,
	)
	model, err := scanGeneration(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{PromptID: promptID}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find generation by prompt id: %w", err)
	}
	return model.toDomain(), nil
}

// ListRecent retrieves the most recent generations, newest first. A limit
// of 0 returns everything.
func (r *Repository) ListRecent(limit int) ([]*Generation, error) {
	query := `SELECT ` + generationColumns + ` FROM generations ORDER BY created_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list generations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var generations []*Generation
	for rows.Next() {
		model, err := scanGeneration(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan generation row: %w", err)
		}
		generations = append(generations, model.toDomain())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating generation rows: %w", err)
	}

	return generations, nil
}

// Delete removes a generation by its prompt id.
// Returns NotFoundError if no matching generation exists.
func (r *Repository) Delete(promptID string) error {
	result, err := r.db.Exec(`DELETE FROM generations WHERE prompt_id = ?`, promptID)
	if err != nil {
		return fmt.Errorf("failed to delete generation: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return &NotFoundError{PromptID: promptID}
	}
	return nil
}
