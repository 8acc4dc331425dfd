package api

import (
	"net/http"                       // HTTP status codes
	"staff_records/internal/service" // Managers

	"github.com/gin-gonic/gin" // Gin web framework
)

// ListNotesHandler returns every note with its owner's username
func ListNotesHandler(m *service.NoteManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		notes, err := m.ListAll(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, notes)
	}
}

// GetNoteHandler returns the note named by the :id path parameter
func GetNoteHandler(m *service.NoteManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		note, err := m.GetOne(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, note)
	}
}

// CreateNoteHandler creates a note for an existing account
func CreateNoteHandler(m *service.NoteManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.CreateNoteInput
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

// UpdateNoteHandler updates the note identified in the JSON body
func UpdateNoteHandler(m *service.NoteManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.UpdateNoteInput
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

// DeleteNoteHandler deletes the note identified in the JSON body
func DeleteNoteHandler(m *service.NoteManager) gin.HandlerFunc {
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
