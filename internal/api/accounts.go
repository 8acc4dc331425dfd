package api

import (
	"net/http"                       // HTTP status codes
	"staff_records/internal/service" // Managers

	"github.com/gin-gonic/gin" // Gin web framework
)

// idRequest carries the record ID in PATCH/DELETE bodies
type idRequest struct {
	ID string `json:"id"` // Record ID
}

// ListAccountsHandler returns every account of the scope
func ListAccountsHandler(m *service.AccountManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		accounts, err := m.ListAll(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, accounts)
	}
}

// GetAccountHandler returns the account named by the :id path parameter
func GetAccountHandler(m *service.AccountManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		account, err := m.GetOne(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, account)
	}
}

// CreateAccountHandler creates an account from the JSON body
func CreateAccountHandler(m *service.AccountManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.CreateAccountInput
		if !bindJSON(c, &req) {
			return
		}
		conf, err := m.Create(c.Request.Context(), req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, conf)
	}
}

// UpdateAccountHandler updates the account identified in the JSON body
func UpdateAccountHandler(m *service.AccountManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.UpdateAccountInput
		if !bindJSON(c, &req) {
			return
		}
		conf, err := m.Update(c.Request.Context(), req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, conf)
	}
}

// DeleteAccountHandler deletes the account identified in the JSON body
func DeleteAccountHandler(m *service.AccountManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req idRequest
		if !bindJSON(c, &req) {
			return
		}
		conf, err := m.Delete(c.Request.Context(), req.ID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, conf)
	}
}
