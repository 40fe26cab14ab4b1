package history

import "time"

// Generation is one finished image generation.
type Generation struct {
	ID           int64
	PromptID     string
	TemplateID   string
	Model        string
	PromptText   string
	NegativeText string
	Seed         int64
	Width        int64
	Height       int64
	ImageCount   int
	CreatedAt    time.Time
}

// generationModel represents the database row for the generations table.
// Fields map directly to SQL columns with Unix timestamps for time values.
type generationModel struct {
	ID           int64
	PromptID     string
	TemplateID   string
	Model        *string // nullable
	PromptText   *string // nullable
	NegativeText *string // nullable
	Seed         *int64  // nullable
	Width        *int64  // nullable
	Height       *int64  // nullable
	ImageCount   int
	CreatedAt    int64 // Unix timestamp
}

func toModel(g *Generation) *generationModel {
	m := &generationModel{
		ID:         g.ID,
		PromptID:   g.PromptID,
		TemplateID: g.TemplateID,
		ImageCount: g.ImageCount,
		CreatedAt:  g.CreatedAt.Unix(),
	}
	if g.Model != "" {
		model := g.Model
		m.Model = &model
	}
	if g.PromptText != "" {
		text := g.PromptText
		m.PromptText = &text
	}
	if g.NegativeText != "" {
		text := g.NegativeText
		m.NegativeText = &text
	}
	if g.Seed != 0 {
		seed := g.Seed
		m.Seed = &seed
	}
	if g.Width != 0 {
		width := g.Width
		m.Width = &width
	}
	if g.Height != 0 {
		height := g.Height
		m.Height = &height
	}
	return m
}

func (m *generationModel) toDomain() *Generation {
	g := &Generation{
		ID:         m.ID,
		PromptID:   m.PromptID,
		TemplateID: m.TemplateID,
		ImageCount: m.ImageCount,
		CreatedAt:  time.Unix(m.CreatedAt, 0),
	}
	if m.Model != nil {
		g.Model = *m.Model
	}
	if m.PromptText != nil {
		g.PromptText = *m.PromptText
	}
	if m.NegativeText != nil {
		g.NegativeText = *m.NegativeText
	}
	if m.Seed != nil {
		g.Seed = *m.Seed
	}
	if m.Width != nil {
		g.Width = *m.Width
	}
	if m.Height != nil {
		g.Height = *m.Height
	}
	return g
}
