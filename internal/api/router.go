package api

import (
	"staff_records/internal/middleware" // Auth middleware
	"staff_records/internal/service"    // Managers
	"staff_records/internal/store"      // Record store

	"github.com/gin-gonic/gin" // Gin web framework
)

// Deps are the collaborators the routes are built from
type Deps struct {
	Store       store.Store             // Record store, used to reload callers
	Employees   *service.AccountManager // Manager for /employees
	Users       *service.AccountManager // Manager for /users
	Notes       *service.NoteManager    // Manager for /notes
	JWTSecret   string                  // Identity provider signing secret
	ManageRoles []string                // Roles allowed on account routes
}

// RegisterRoutes mounts the account and note routes on r
func RegisterRoutes(r gin.IRouter, d Deps) {
	auth := []gin.HandlerFunc{
		middleware.JWTAuthMiddleware(d.JWTSecret),   // Authenticated callers only
		middleware.ActiveAccountMiddleware(d.Store), // Reject deactivated callers
	}

	// Account routes (managers only)
	for path, m := range map[string]*service.AccountManager{"/employees": d.Employees, "/users": d.Users} {
		group := r.Group(path, auth...)
		group.Use(middleware.RequireRoles(d.ManageRoles...))
		group.GET("", ListAccountsHandler(m))     // List accounts
		group.GET("/:id", GetAccountHandler(m))   // Get one account
		group.POST("", CreateAccountHandler(m))   // Create account
		group.PATCH("", UpdateAccountHandler(m))  // Update account
		group.DELETE("", DeleteAccountHandler(m)) // Delete account
	}

	// Note routes (any active account)
	notes := r.Group("/notes", auth...)
	notes.GET("", ListNotesHandler(d.Notes))     // List notes
	notes.GET("/:id", GetNoteHandler(d.Notes))   // Get one note
	notes.POST("", CreateNoteHandler(d.Notes))   // Create note
	notes.PATCH("", UpdateNoteHandler(d.Notes))  // Update note
	notes.DELETE("", DeleteNoteHandler(d.Notes)) // Delete note
}
