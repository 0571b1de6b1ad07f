package controllers

import (
	"net/http"
	"strconv"

	"github.com/antoniodjones/pours-consumer/services"

	"github.com/gin-gonic/gin"
)

type BiometricsController struct {
	Svc *services.BiometricsService
}

func NewBiometricsController(svc *services.BiometricsService) *BiometricsController {
	return &BiometricsController{Svc: svc}
}

// POST /sobriety/biometrics
func (bc *BiometricsController) UpsertProfile(c *gin.Context) {
	uid := c.GetUint("userID")

	var in services.ProfileInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	profile, err := bc.Svc.UpsertProfile(uid, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// GET /sobriety/biometrics
func (bc *BiometricsController) GetProfile(c *gin.Context) {
	uid := c.GetUint("userID")

	profile, err := bc.Svc.Profile(uid)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// POST /sobriety/readings
func (bc *BiometricsController) RecordReading(c *gin.Context) {
	uid := c.GetUint("userID")

	var in services.ReadingInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	reading, err := bc.Svc.RecordReading(uid, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, reading)
}

// GET /sobriety/readings?session_id=
func (bc *BiometricsController) ListReadings(c *gin.Context) {
	uid := c.GetUint("userID")

	var sessionID *uint
	if raw := c.Query("session_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session_id"})
			return
		}
		v := uint(id)
		sessionID = &v
	}

	readings, err := bc.Svc.Readings(uid, sessionID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"readings": readings})
}
