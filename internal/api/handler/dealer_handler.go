package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dealerhub/dealer-admin/internal/api/metrics"
	"github.com/dealerhub/dealer-admin/internal/api/response"
	"github.com/dealerhub/dealer-admin/internal/core/ports"
)

// DealerHandler handles HTTP requests for dealer operations.
type DealerHandler struct {
	service ports.DealerService
}

func NewDealerHandler(service ports.DealerService) *DealerHandler {
	return &DealerHandler{service: service}
}

// Create handles POST /api/dealers.
//
// @Summary      Create a dealer
// @Tags         dealers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createDealerRequest  true  "Dealer details"
// @Success      201   {object}  response.Envelope{data=domain.Dealer}
// @Failure      400   {object}  response.Envelope
// @Failure      401   {object}  response.Envelope
// @Failure      409   {object}  response.Envelope
// @Router       /api/dealers [post]
func (h *DealerHandler) Create(c echo.Context) error {
	var req createDealerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	dealer, err := h.service.Create(c.Request().Context(), toCreateDealerInput(req))
	if err != nil {
		return err
	}
	metrics.DealerMutationsTotal.WithLabelValues("create").Inc()

	return c.JSON(http.StatusCreated, response.OK(dealer, "Dealer created successfully"))
}

// List handles GET /api/dealers.
//
// @Summary      List dealers
// @Description  Search matches name, email or phone case-insensitively. Deleted dealers are never listed.
// @Tags         dealers
// @Produce      json
// @Security     BearerAuth
// @Param        search     query     string  false  "Substring of name, email or phone"
// @Param        status     query     string  false  "ACTIVE or INACTIVE"
// @Param        region     query     string  false  "Exact region"
// @Param        sortBy     query     string  false  "name, email, phone, region, status, createdAt, updatedAt"  default(createdAt)
// @Param        sortOrder  query     string  false  "asc or desc"  default(desc)
// @Param        page       query     int     false  "1-based page"  default(1)
// @Param        limit      query     int     false  "Page size (max 100)"  default(10)
// @Success      200        {object}  response.Envelope{data=[]domain.Dealer}
// @Failure      400        {object}  response.Envelope
// @Failure      401        {object}  response.Envelope
// @Router       /api/dealers [get]
func (h *DealerHandler) List(c echo.Context) error {
	var q listDealersQuery
	if err := c.Bind(&q); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query parameters")
	}
	if err := c.Validate(&q); err != nil {
		return err
	}

	res, err := h.service.FindAll(c.Request().Context(), toListDealersInput(q))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, response.Paged(res.Dealers, response.Pagination{
		Page:  res.Page,
		Limit: res.Limit,
		Total: res.Total,
		Pages: res.Pages,
	}))
}

// Get handles GET /api/dealers/:id.
//
// @Summary      Get a dealer
// @Tags         dealers
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Dealer ID"
// @Success      200  {object}  response.Envelope{data=domain.Dealer}
// @Failure      401  {object}  response.Envelope
// @Failure      404  {object}  response.Envelope
// @Router       /api/dealers/{id} [get]
func (h *DealerHandler) Get(c echo.Context) error {
	dealer, err := h.service.FindOne(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, response.OK(dealer, ""))
}

// Update handles PUT /api/dealers/:id. Only fields present in the body change.
//
// @Summary      Update a dealer
// @Tags         dealers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string               true  "Dealer ID"
// @Param        body  body      updateDealerRequest  true  "Fields to change"
// @Success      200   {object}  response.Envelope{data=domain.Dealer}
// @Failure      400   {object}  response.Envelope
// @Failure      404   {object}  response.Envelope
// @Failure      409   {object}  response.Envelope
// @Router       /api/dealers/{id} [put]
func (h *DealerHandler) Update(c echo.Context) error {
	var req updateDealerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	dealer, err := h.service.Update(c.Request().Context(), c.Param("id"), toDealerPatch(req))
	if err != nil {
		return err
	}
	metrics.DealerMutationsTotal.WithLabelValues("update").Inc()

	return c.JSON(http.StatusOK, response.OK(dealer, "Dealer updated successfully"))
}

// Delete handles DELETE /api/dealers/:id as a soft delete.
//
// @Summary      Delete a dealer
// @Tags         dealers
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Dealer ID"
// @Success      200  {object}  response.Envelope
// @Failure      401  {object}  response.Envelope
// @Failure      404  {object}  response.Envelope
// @Router       /api/dealers/{id} [delete]
func (h *DealerHandler) Delete(c echo.Context) error {
	if err := h.service.Remove(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	metrics.DealerMutationsTotal.WithLabelValues("remove").Inc()

	return c.JSON(http.StatusOK, response.OK(nil, "Dealer deleted successfully"))
}
