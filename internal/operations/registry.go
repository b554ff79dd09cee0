package operations

import (
	"fmt"
)

// Registry holds the stages of a pipeline in execution order
type Registry struct {
	stages map[string]Stage
	order  []string
}

// NewRegistry creates an empty Stage registry
func NewRegistry() *Registry {
	return &Registry{
		stages: make(map[string]Stage),
		order:  make([]string, 0),
	}
}

// Register appends a Stage to the execution order
func (r *Registry) Register(stage Stage) error {
	if stage == nil {
		return fmt.Errorf("cannot register nil Stage")
	}

	id := stage.ID()
	if id == "" {
		return fmt.Errorf("Stage ID cannot be empty")
	}

	if _, exists := r.stages[id]; exists {
		return fmt.Errorf("Stage with ID %s already registered", id)
	}

	r.stages[id] = stage
	r.order = append(r.order, id)
	return nil
}

// Get retrieves a Stage by ID
func (r *Registry) Get(id string) (Stage, error) {
	stage, exists := r.stages[id]
	if !exists {
		return nil, fmt.Errorf("Stage with ID %s not found", id)
	}
	return stage, nil
}

// Has reports whether a Stage is registered
func (r *Registry) Has(id string) bool {
	_, exists := r.stages[id]
	return exists
}

// List returns the stages in execution order
func (r *Registry) List() []Stage {
	stages := make([]Stage, 0, len(r.order))
	for _, id := range r.order {
		stages = append(stages, r.stages[id])
	}
	return stages
}

// ListIDs returns the Stage IDs in execution order
func (r *Registry) ListIDs() []string {
	ids := make([]string, len(r.order))
	copy(ids, r.order)
	return ids
}

// Count returns the number of registered stages
func (r *Registry) Count() int {
	return len(r.order)
}
