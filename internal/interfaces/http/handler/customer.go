package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	billingapp "github.com/meterly/backend/internal/application/billing"
)

// CustomerHandler handles customer-related API endpoints
type CustomerHandler struct {
	BaseHandler
	customerService *billingapp.CustomerService
	debitService    *billingapp.DebitRunService
}

// NewCustomerHandler creates a new CustomerHandler
func NewCustomerHandler(customerService *billingapp.CustomerService, debitService *billingapp.DebitRunService) *CustomerHandler {
	return &CustomerHandler{
		customerService: customerService,
		debitService:    debitService,
	}
}

// CreateCustomerRequest represents a request to create a new customer
// @Description Request body for creating a new customer
type CreateCustomerRequest struct {
	Name              string          `json:"name" binding:"required,min=1,max=200" example:"Acme Corp"`
	Balance           decimal.Decimal `json:"balance" example:"100.00"`
	HourlyDebitAmount decimal.Decimal `json:"hourly_debit_amount" binding:"required" example:"0.25"`
}

// UpdateCustomerRequest represents a request to update a customer
// @Description Request body for updating a customer, all fields optional
type UpdateCustomerRequest struct {
	Name              *string          `json:"name" binding:"omitempty,min=1,max=200" example:"Acme Corporation"`
	Balance           *decimal.Decimal `json:"balance" example:"250.00"`
	HourlyDebitAmount *decimal.Decimal `json:"hourly_debit_amount" example:"0.50"`
}

// Create godoc
// @ID           createCustomer
// @Summary      Create a new customer
// @Description  Create a new billed customer owned by the authenticated user
// @Tags         customers
// @Accept       json
// @Produce      json
// @Param        request body CreateCustomerRequest true "Customer creation request"
// @Success      201 {object} APIResponse[billingapp.CustomerResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /customers [post]
func (h *CustomerHandler) Create(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	customer, err := h.customerService.Create(c.Request.Context(), userID, billingapp.CreateCustomerRequest{
		Name:              req.Name,
		Balance:           req.Balance,
		HourlyDebitAmount: req.HourlyDebitAmount,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, customer)
}

// GetByID godoc
// @ID           getCustomerById
// @Summary      Get customer by ID
// @Description  Retrieve one of the authenticated user's customers by ID
// @Tags         customers
// @Produce      json
// @Param        id path string true "Customer ID" format(uuid)
// @Success      200 {object} APIResponse[billingapp.CustomerResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /customers/{id} [get]
func (h *CustomerHandler) GetByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	customerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid customer ID format")
		return
	}

	customer, err := h.customerService.GetByID(c.Request.Context(), userID, customerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, customer)
}

// List godoc
// @ID           listCustomers
// @Summary      List customers
// @Description  Retrieve all customers owned by the authenticated user
// @Tags         customers
// @Produce      json
// @Success      200 {object} APIResponse[[]billingapp.CustomerResponse]
// @Failure      401 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /customers [get]
func (h *CustomerHandler) List(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	customers, err := h.customerService.List(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, customers)
}

// Update godoc
// @ID           updateCustomer
// @Summary      Update a customer
// @Description  Update name, balance, or hourly debit amount of a customer
// @Tags         customers
// @Accept       json
// @Produce      json
// @Param        id path string true "Customer ID" format(uuid)
// @Param        request body UpdateCustomerRequest true "Customer update request"
// @Success      200 {object} APIResponse[billingapp.CustomerResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /customers/{id} [put]
func (h *CustomerHandler) Update(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	customerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid customer ID format")
		return
	}

	var req UpdateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	customer, err := h.customerService.Update(c.Request.Context(), userID, customerID, billingapp.UpdateCustomerRequest{
		Name:              req.Name,
		Balance:           req.Balance,
		HourlyDebitAmount: req.HourlyDebitAmount,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, customer)
}

// Delete godoc
// @ID           deleteCustomer
// @Summary      Delete a customer
// @Description  Delete a customer by ID, its debit logs are retained
// @Tags         customers
// @Produce      json
// @Param        id path string true "Customer ID" format(uuid)
// @Success      204
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /customers/{id} [delete]
func (h *CustomerHandler) Delete(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	customerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid customer ID format")
		return
	}

	if err := h.customerService.Delete(c.Request.Context(), userID, customerID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// ListLogs godoc
// @ID           listCustomerLogs
// @Summary      List a customer's debit logs
// @Description  Retrieve the most recent debit log entries for one customer, newest first
// @Tags         customers
// @Produce      json
// @Param        id path string true "Customer ID" format(uuid)
// @Success      200 {object} APIResponse[[]billingapp.DebitLogResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /customers/{id}/logs [get]
func (h *CustomerHandler) ListLogs(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	customerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid customer ID format")
		return
	}

	logs, err := h.customerService.ListCustomerLogs(c.Request.Context(), userID, customerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, logs)
}

// ListAllLogs godoc
// @ID           listAllDebitLogs
// @Summary      List debit logs across all customers
// @Description  Retrieve the most recent debit log entries for all of the user's customers, with customer names
// @Tags         logs
// @Produce      json
// @Success      200 {object} APIResponse[[]billingapp.DebitLogResponse]
// @Failure      401 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /logs [get]
func (h *CustomerHandler) ListAllLogs(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	logs, err := h.customerService.ListAllLogs(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, logs)
}

// Debit godoc
// @ID           debitCustomer
// @Summary      Debit a customer immediately
// @Description  Apply one hourly debit to a customer outside the scheduled run
// @Tags         customers
// @Produce      json
// @Param        id path string true "Customer ID" format(uuid)
// @Success      200 {object} APIResponse[billingapp.CustomerResult]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /customers/{id}/debit [post]
func (h *CustomerHandler) Debit(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	customerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid customer ID format")
		return
	}

	result, err := h.debitService.DebitCustomer(c.Request.Context(), userID, customerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}
