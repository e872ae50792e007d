package http

import (
	"context"
	"net/http"

	"finflow/internal/core"
	applog "finflow/internal/log"
)

type categoriesView struct {
	Income   []core.Category
	Expenses []core.Category
	Edit     *core.Category
}

func (s *Server) categoriesView(ctx context.Context) (categoriesView, error) {
	cats, err := s.categories.List(ctx)
	if err != nil {
		return categoriesView{}, err
	}
	var v categoriesView
	for _, c := range cats {
		if c.Type == core.Income {
			v.Income = append(v.Income, c)
		} else {
			v.Expenses = append(v.Expenses, c)
		}
	}
	return v, nil
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	view, err := s.categoriesView(r.Context())
	if err != nil {
		s.writeError(w, r, err, applog.OpList)
		return
	}
	if isHTMX(r) && r.Header.Get("HX-Target") == "category-list" {
		s.renderFragment(w, r, "category_list", view, NewHTMXResponse())
		return
	}
	s.render(w, r, http.StatusOK, "categories_page", view)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError(msgBadRequest).Write(w)
		return
	}
	c, err := ParseCategory(p)
	if err != nil {
		s.writeError(w, r, err, applog.OpCreate)
		return
	}
	if _, err := s.categories.Create(r.Context(), c); err != nil {
		s.writeError(w, r, err, applog.OpCreate)
		return
	}
	s.afterCategoryChange(w, r, NewHTMXResponse().
		TriggerFormReset().
		TriggerSuccessNotification(msgCategoryCreated))
}

func (s *Server) handleEditCategory(w http.ResponseWriter, r *http.Request) {
	c, err := s.categories.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err, applog.OpRead)
		return
	}
	view, err := s.categoriesView(r.Context())
	if err != nil {
		s.writeError(w, r, err, applog.OpRead)
		return
	}
	view.Edit = &c
	if isHTMX(r) {
		s.renderFragment(w, r, "category_form", view, NewHTMXResponse())
		return
	}
	s.render(w, r, http.StatusOK, "categories_page", view)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError(msgBadRequest).Write(w)
		return
	}
	c, err := ParseCategory(p)
	if err != nil {
		s.writeError(w, r, err, applog.OpUpdate)
		return
	}
	c.ID = r.PathValue("id")
	if err := s.categories.Update(r.Context(), c); err != nil {
		s.writeError(w, r, err, applog.OpUpdate)
		return
	}
	// Category names show up in every cached month.
	s.invalidate()
	s.afterCategoryChange(w, r, NewHTMXResponse().
		TriggerFormReset().
		TriggerSuccessNotification(msgCategoryUpdated))
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := s.categories.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, r, err, applog.OpDelete)
		return
	}
	s.invalidate()
	s.afterCategoryChange(w, r, NewHTMXResponse().TriggerSuccessNotification(msgCategoryDeleted))
}

func (s *Server) afterCategoryChange(w http.ResponseWriter, r *http.Request, b *HTMXResponseBuilder) {
	if !isHTMX(r) {
		http.Redirect(w, r, "/categories", http.StatusSeeOther)
		return
	}
	view, err := s.categoriesView(r.Context())
	if err != nil {
		s.writeError(w, r, err, applog.OpList)
		return
	}
	s.renderFragment(w, r, "category_list", view, b.TriggerCategoriesChanged())
}
