package storage

import "github.com/hongminglow/itarix-api/internal/models"

// DefaultCategories is the tool category list every store starts with. The
// postgres migrations insert the same rows.
var DefaultCategories = []models.Category{
	{ID: 1, Name: "Writing"},
	{ID: 2, Name: "Image Generation"},
	{ID: 3, Name: "Code Assistants"},
	{ID: 4, Name: "Audio & Video"},
	{ID: 5, Name: "Productivity"},
	{ID: 6, Name: "Research"},
}

// DefaultServiceTypeIDs are the consultation service types seeded by the
// migrations, one per priced service.
var DefaultServiceTypeIDs = []int64{1, 2, 3, 4, 5, 6}
