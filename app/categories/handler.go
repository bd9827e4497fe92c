package categories

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/mytheresa/category-service/app/api"
	"github.com/mytheresa/category-service/models"
)

const (
	defaultSkip  = 0
	defaultLimit = 100
)

// CategoryPublic is the only category shape returned to clients.
type CategoryPublic struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
}

// CategoryCreate is the body accepted by POST.
type CategoryCreate struct {
	Name        string  `json:"name" validate:"required,min=1,max=255"`
	Description *string `json:"description" validate:"omitnil,max=255"`
}

// CategoryUpdate is the body accepted by PUT. Keys left out of the body
// are not written.
type CategoryUpdate struct {
	Name        api.Optional[string] `json:"name"`
	Description api.Optional[string] `json:"description"`
}

type updateRules struct {
	Name        *string `json:"name" validate:"omitnil,min=1,max=255"`
	Description *string `json:"description" validate:"omitnil,max=255"`
}

// Changes validates the payload and returns the columns to write.
func (in CategoryUpdate) Changes() (map[string]any, error) {
	if in.Name.Set && in.Name.Null {
		return nil, api.NewValidationError([]string{"body", "name"}, "Input should be a valid string", "string_type")
	}

	var rules updateRules
	changes := map[string]any{}
	if in.Name.Set {
		rules.Name = &in.Name.Value
		changes["name"] = in.Name.Value
	}
	if in.Description.Set {
		if in.Description.Null {
			changes["description"] = nil
		} else {
			rules.Description = &in.Description.Value
			changes["description"] = in.Description.Value
		}
	}
	if err := api.Validate(rules); err != nil {
		return nil, err
	}
	return changes, nil
}

type CategoryProvider interface {
	List(ctx context.Context, skip, limit int) ([]models.Category, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	Create(ctx context.Context, category *models.Category) error
	Update(ctx context.Context, id uuid.UUID, changes map[string]any) (*models.Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type CategoryHandler struct {
	repo CategoryProvider
}

func NewCategoryHandler(r CategoryProvider) *CategoryHandler {
	return &CategoryHandler{repo: r}
}

func toPublic(c models.Category) CategoryPublic {
	return CategoryPublic{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
	}
}

func (h *CategoryHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	skip, err := api.QueryInt(r, "skip", defaultSkip)
	if err != nil {
		api.WriteValidationError(w, r, err)
		return
	}
	limit, err := api.QueryInt(r, "limit", defaultLimit)
	if err != nil {
		api.WriteValidationError(w, r, err)
		return
	}

	categories, err := h.repo.List(r.Context(), skip, limit)
	if err != nil {
		api.WriteInternalError(w, r, err)
		return
	}

	response := make([]CategoryPublic, len(categories))
	for i, c := range categories {
		response[i] = toPublic(c)
	}
	api.WriteJSON(w, http.StatusOK, response)
}

func (h *CategoryHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := api.PathUUID(r, "id")
	if err != nil {
		api.WriteValidationError(w, r, err)
		return
	}

	category, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, toPublic(*category))
}

func (h *CategoryHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var input CategoryCreate
	if err := api.DecodeJSON(r, &input); err != nil {
		api.WriteValidationError(w, r, err)
		return
	}
	if err := api.Validate(input); err != nil {
		api.WriteValidationError(w, r, err)
		return
	}

	category := &models.Category{
		Name:        input.Name,
		Description: input.Description,
	}
	if err := h.repo.Create(r.Context(), category); err != nil {
		api.WriteInternalError(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, toPublic(*category))
}

func (h *CategoryHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := api.PathUUID(r, "id")
	if err != nil {
		api.WriteValidationError(w, r, err)
		return
	}

	var input CategoryUpdate
	if err := api.DecodeJSON(r, &input); err != nil {
		api.WriteValidationError(w, r, err)
		return
	}
	changes, err := input.Changes()
	if err != nil {
		api.WriteValidationError(w, r, err)
		return
	}

	category, err := h.repo.Update(r.Context(), id, changes)
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, toPublic(*category))
}

func (h *CategoryHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := api.PathUUID(r, "id")
	if err != nil {
		api.WriteValidationError(w, r, err)
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, api.Message{Message: "Category deleted"})
}

func (h *CategoryHandler) writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, models.ErrCategoryNotFound) {
		api.WriteError(w, http.StatusNotFound, "Category not found")
		return
	}
	api.WriteInternalError(w, r, err)
}

// Register mounts the category routes under prefix on mux.
func (h *CategoryHandler) Register(mux *http.ServeMux, prefix string) {
	base := prefix + "/categories"
	mux.HandleFunc("GET "+base, h.HandleList)
	mux.HandleFunc("GET "+base+"/{$}", h.HandleList)
	mux.HandleFunc("POST "+base, h.HandleCreate)
	mux.HandleFunc("POST "+base+"/{$}", h.HandleCreate)
	mux.HandleFunc("GET "+base+"/{id}", h.HandleGet)
	mux.HandleFunc("PUT "+base+"/{id}", h.HandleUpdate)
	mux.HandleFunc("DELETE "+base+"/{id}", h.HandleDelete)
}
