package handlers

import (
	"net/http"

	"food-ordering-api/statemachine"

	"github.com/gin-gonic/gin"
)

// Health reports liveness
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "Food Ordering API",
	})
}

// GetStateMachineInfo returns the order state machine for clients
func GetStateMachineInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"initialState":   "pending",
		"terminalStates": statemachine.TerminalStates(),
		"transitions":    statemachine.GetAllTransitions(),
		"admin":          "an admin may move any non-terminal order to any other status",
	})
}
