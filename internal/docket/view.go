package docket

import (
	"github.com/colonyops/docket/internal/core/query"
	"github.com/colonyops/docket/internal/core/todo"
)

// SetTodoView replaces the todo view, including its list scope.
func (r *Repository) SetTodoView(v query.View) error {
	if err := v.Validate(); err != nil {
		return todo.Invalid(err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if v.ListID != "" && !r.hasList(v.ListID) {
		return listNotFound(v.ListID)
	}
	r.view = v
	return nil
}

// TodoView returns the current todo view.
func (r *Repository) TodoView() query.View {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.view
}

// SetActiveList scopes the todo view to one list. An empty id removes the
// scope.
func (r *Repository) SetActiveList(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id != "" && !r.hasList(id) {
		return listNotFound(id)
	}
	r.view.ListID = id
	return nil
}

// CurrentTodos evaluates the todo view against the current collection.
func (r *Repository) CurrentTodos() []todo.Todo {
	r.mu.Lock()
	todos, v := r.todos, r.view
	r.mu.Unlock()

	return r.engine.Todos(todos, v)
}

// SearchTodos returns the todos matching q in stored order. The view is
// neither applied nor changed.
func (r *Repository) SearchTodos(q string) []todo.Todo {
	r.mu.Lock()
	todos := r.todos
	r.mu.Unlock()

	return query.SearchTodos(todos, q)
}

// SetIdeaView replaces the idea view.
func (r *Repository) SetIdeaView(v query.IdeaView) error {
	if err := v.Validate(); err != nil {
		return todo.Invalid(err)
	}

	r.mu.Lock()
	r.ideaView = v
	r.mu.Unlock()
	return nil
}

// IdeaView returns the current idea view.
func (r *Repository) IdeaView() query.IdeaView {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ideaView
}

// CurrentIdeas evaluates the idea view against the current collection.
func (r *Repository) CurrentIdeas() []todo.Idea {
	r.mu.Lock()
	ideas, v := r.ideas, r.ideaView
	r.mu.Unlock()

	return r.engine.Ideas(ideas, v)
}

// SearchIdeas returns the ideas matching q in stored order.
func (r *Repository) SearchIdeas(q string) []todo.Idea {
	r.mu.Lock()
	ideas := r.ideas
	r.mu.Unlock()

	return query.SearchIdeas(ideas, q)
}
