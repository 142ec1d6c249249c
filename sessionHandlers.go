package main

import (
	"net/http"

	"bitbucket.org/rodmar/rodmar_backend/ledger"
	"bitbucket.org/rodmar/rodmar_backend/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Temporal transactions live only in a view session and never reach the
// database. Closing the session discards them.

func openSessionHandler(sessions *ledger.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		s := sessions.Open(uuid.NewString())
		c.JSON(http.StatusCreated, gin.H{"sesion": s.ID})
	}
}

func addTemporalHandler(sessions *ledger.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := sessions.Get(c.Param("sid"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		var input models.NewTransaccion
		if err := c.ShouldBindJSON(&input); err != nil {
			badRequest(c, err)
			return
		}
		e, err := input.Temporal(c.Request.Context())
		if err != nil {
			respondError(c, "addTemporalHandler", err)
			return
		}
		e, ok = s.AddTemporal(e, clock())
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		c.JSON(http.StatusCreated, e)
	}
}

func removeTemporalHandler(sessions *ledger.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := sessions.Get(c.Param("sid"))
		if !ok || !s.Remove(c.Param("tid")) {
			c.JSON(http.StatusNotFound, gin.H{"error": "temporal not found"})
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func closeSessionHandler(sessions *ledger.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !sessions.Close(c.Param("sid")) {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		c.Status(http.StatusNoContent)
	}
}
