package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/baristalabs/barista/pkg/drinks"
)

// drinkRequest is the body of the POST /drinks and PATCH /drinks/:id requests
type drinkRequest struct {
	Title  string        `json:"title"`
	Recipe drinks.Recipe `json:"recipe"`
}

// RouteDrinksList is the handler for the GET /drinks request
// This is a public endpoint returning the abbreviated representation of every drink
func (s *Server) RouteDrinksList(c *gin.Context) {
	s.metrics.RecordRequest("list")

	list, err := s.listDrinks(c)
	if err != nil {
		s.abortWithStoreError(c, "list", err)
		return
	}

	short := make([]drinks.ShortDrink, len(list))
	for i, d := range list {
		short[i] = d.Short()
	}

	s.metrics.RecordResult("list", http.StatusOK)
	c.JSON(http.StatusOK, drinksResponse{
		Success: true,
		Drinks:  short,
	})
}

// RouteDrinksDetail is the handler for the GET /drinks-detail request
// This requires the "get:drinks-detail" permission and returns full recipes
func (s *Server) RouteDrinksDetail(c *gin.Context) {
	s.metrics.RecordRequest("detail")

	list, err := s.listDrinks(c)
	if err != nil {
		s.abortWithStoreError(c, "detail", err)
		return
	}

	s.metrics.RecordResult("detail", http.StatusOK)
	c.JSON(http.StatusOK, drinksResponse{
		Success: true,
		Drinks:  list,
	})
}

// RouteDrinksCreate is the handler for the POST /drinks request
// This requires the "post:drinks" permission
func (s *Server) RouteDrinksCreate(c *gin.Context) {
	s.metrics.RecordRequest("create")

	var req drinkRequest
	err := c.ShouldBindJSON(&req)
	if err != nil || req.Title == "" || len(req.Recipe) == 0 {
		s.metrics.RecordResult("create", http.StatusUnprocessableEntity)
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, ErrorResponse(http.StatusUnprocessableEntity, "unprocessable"))
		return
	}

	start := time.Now()
	created, err := s.store.Create(c.Request.Context(), drinks.Drink{
		Title:  req.Title,
		Recipe: req.Recipe,
	})
	s.metrics.RecordStoreLatency("create", time.Since(start))
	if err != nil {
		s.abortWithStoreError(c, "create", err)
		return
	}

	s.metrics.RecordResult("create", http.StatusOK)
	c.JSON(http.StatusOK, drinksResponse{
		Success: true,
		Drinks:  []drinks.Drink{created},
	})
}

// RouteDrinksUpdate is the handler for the PATCH /drinks/:id request
// This requires the "patch:drinks" permission; title and recipe are both optional
func (s *Server) RouteDrinksUpdate(c *gin.Context) {
	s.metrics.RecordRequest("update")

	id, ok := s.drinkIdParam(c, "update")
	if !ok {
		return
	}

	var req drinkRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		s.metrics.RecordResult("update", http.StatusUnprocessableEntity)
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, ErrorResponse(http.StatusUnprocessableEntity, "unprocessable"))
		return
	}

	drink, err := s.store.Get(c.Request.Context(), id)
	if err != nil {
		s.abortWithStoreError(c, "update", err)
		return
	}

	// Patch only the fields that were sent
	if req.Title != "" {
		drink.Title = req.Title
	}
	if len(req.Recipe) > 0 {
		drink.Recipe = req.Recipe
	}

	start := time.Now()
	updated, err := s.store.Update(c.Request.Context(), drink)
	s.metrics.RecordStoreLatency("update", time.Since(start))
	if err != nil {
		s.abortWithStoreError(c, "update", err)
		return
	}

	s.metrics.RecordResult("update", http.StatusOK)
	c.JSON(http.StatusOK, drinksResponse{
		Success: true,
		Drinks:  []drinks.Drink{updated},
	})
}

// RouteDrinksDelete is the handler for the DELETE /drinks/:id request
// This requires the "delete:drinks" permission
func (s *Server) RouteDrinksDelete(c *gin.Context) {
	s.metrics.RecordRequest("delete")

	id, ok := s.drinkIdParam(c, "delete")
	if !ok {
		return
	}

	start := time.Now()
	err := s.store.Delete(c.Request.Context(), id)
	s.metrics.RecordStoreLatency("delete", time.Since(start))
	if err != nil {
		s.abortWithStoreError(c, "delete", err)
		return
	}

	s.metrics.RecordResult("delete", http.StatusOK)
	c.JSON(http.StatusOK, deleteResponse{
		Success: true,
		Delete:  id,
	})
}

func (s *Server) listDrinks(c *gin.Context) ([]drinks.Drink, error) {
	start := time.Now()
	list, err := s.store.List(c.Request.Context())
	s.metrics.RecordStoreLatency("list", time.Since(start))
	return list, err
}

// Parses the :id route parameter; a non-numeric ID is a not-found, like in any
// route with a typed path parameter
func (s *Server) drinkIdParam(c *gin.Context, operation string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		s.metrics.RecordResult(operation, http.StatusNotFound)
		c.AbortWithStatusJSON(http.StatusNotFound, ErrorResponse(http.StatusNotFound, "resource not found"))
		return 0, false
	}
	return id, true
}

func (s *Server) abortWithStoreError(c *gin.Context, operation string, err error) {
	_ = c.Error(err)

	switch {
	case errors.Is(err, drinks.ErrNotFound):
		s.metrics.RecordResult(operation, http.StatusNotFound)
		c.AbortWithStatusJSON(http.StatusNotFound, ErrorResponse(http.StatusNotFound, "resource not found"))
	case errors.Is(err, drinks.ErrDuplicateTitle):
		s.metrics.RecordResult(operation, http.StatusUnprocessableEntity)
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, ErrorResponse(http.StatusUnprocessableEntity, "unprocessable"))
	default:
		s.metrics.RecordResult(operation, http.StatusInternalServerError)
		c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse(http.StatusInternalServerError, "An internal error occurred"))
	}
}
