package controllers

import (
	"net/http"
	"strconv"

	"github.com/antoniodjones/pours-consumer/services"

	"github.com/gin-gonic/gin"
)

type AlertController struct {
	Svc *services.AlertService
}

func NewAlertController(svc *services.AlertService) *AlertController {
	return &AlertController{Svc: svc}
}

// GET /sobriety/alerts
func (ac *AlertController) Unacknowledged(c *gin.Context) {
	uid := c.GetUint("userID")

	alerts, err := ac.Svc.Unacknowledged(uid)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"alerts": alerts})
}

// GET /sobriety/sessions/:id/alerts
func (ac *AlertController) ForSession(c *gin.Context) {
	uid := c.GetUint("userID")
	sid, ok := sessionParam(c)
	if !ok {
		return
	}

	alerts, err := ac.Svc.ForSession(uid, sid)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"alerts": alerts})
}

// POST /sobriety/alerts/:id/acknowledge
func (ac *AlertController) Acknowledge(c *gin.Context) {
	uid := c.GetUint("userID")

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid alert id"})
		return
	}

	var body struct {
		InterventionTaken string `json:"intervention_taken"`
	}
	_ = c.ShouldBindJSON(&body) // body is optional

	alert, err := ac.Svc.Acknowledge(uid, uint(id), body.InterventionTaken)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, alert)
}
