package community

import (
	"context"
	"fmt"
	"strings"

	"github.com/hongminglow/itarix-api/internal/logging"
	"github.com/hongminglow/itarix-api/internal/models"
	"github.com/hongminglow/itarix-api/internal/storage"
)

// ToolService manages directory entries.
type ToolService struct {
	store storage.ToolStore
	log   logging.Logger
}

func NewToolService(store storage.ToolStore, log logging.Logger) *ToolService {
	return &ToolService{store: store, log: log.With("component", "tools")}
}

func (s *ToolService) Categories(ctx context.Context) ([]models.Category, error) {
	cats, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cats, nil
}

func (s *ToolService) List(ctx context.Context) ([]models.Tool, error) {
	tools, err := s.store.ListTools(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tools: %w", err)
	}
	return tools, nil
}

func (s *ToolService) Get(ctx context.Context, id int64) (models.Tool, error) {
	t, err := s.store.GetTool(ctx, id)
	return t, translate(err, ErrToolNotFound, ErrToolNotFound, "get tool")
}

func (s *ToolService) Create(ctx context.Context, in models.Tool) (models.Tool, error) {
	in, err := normaliseTool(in)
	if err != nil {
		return models.Tool{}, err
	}
	t, err := s.store.CreateTool(ctx, in)
	if err != nil {
		return models.Tool{}, translate(err, ErrToolNotFound, ErrUnknownCategory, "create tool")
	}
	s.log.Info(ctx, "tool created", "tool_id", t.ID, "name", t.Name)
	return t, nil
}

func (s *ToolService) Update(ctx context.Context, id int64, in models.Tool) (models.Tool, error) {
	in, err := normaliseTool(in)
	if err != nil {
		return models.Tool{}, err
	}
	in.ID = id
	t, err := s.store.UpdateTool(ctx, in)
	return t, translate(err, ErrToolNotFound, ErrUnknownCategory, "update tool")
}

// Delete removes a tool with its reviews and comments.
func (s *ToolService) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteTool(ctx, id); err != nil {
		return translate(err, ErrToolNotFound, ErrToolNotFound, "delete tool")
	}
	s.log.Info(ctx, "tool deleted", "tool_id", id)
	return nil
}

func normaliseTool(in models.Tool) (models.Tool, error) {
	name, err := requireText("name", in.Name, MaxNameLength)
	if err != nil {
		return models.Tool{}, err
	}
	desc, err := optionalText("description", in.Description, MaxReviewLength)
	if err != nil {
		return models.Tool{}, err
	}
	site := strings.TrimSpace(in.WebsiteURL)
	if err := validURL(site); err != nil {
		return models.Tool{}, err
	}
	if in.CategoryID <= 0 {
		return models.Tool{}, ErrUnknownCategory
	}
	return models.Tool{Name: name, Description: desc, CategoryID: in.CategoryID, WebsiteURL: site}, nil
}
