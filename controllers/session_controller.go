package controllers

import (
	"net/http"
	"strconv"

	"github.com/antoniodjones/pours-consumer/services"

	"github.com/gin-gonic/gin"
)

type SessionController struct {
	Svc *services.SessionService
}

func NewSessionController(svc *services.SessionService) *SessionController {
	return &SessionController{Svc: svc}
}

func sessionParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
		return 0, false
	}
	return uint(id), true
}

// POST /sobriety/sessions
func (sc *SessionController) Start(c *gin.Context) {
	uid := c.GetUint("userID")

	var body struct {
		VenueID string `json:"venue_id"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.VenueID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "venue_id required"})
		return
	}

	session, err := sc.Svc.Start(uid, body.VenueID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

// GET /sobriety/sessions/current
func (sc *SessionController) Current(c *gin.Context) {
	uid := c.GetUint("userID")

	session, drinks, err := sc.Svc.Current(uid)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session, "drinks": drinks})
}

// GET /sobriety/sessions
func (sc *SessionController) History(c *gin.Context) {
	uid := c.GetUint("userID")

	sessions, err := sc.Svc.History(uid)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

// POST /sobriety/sessions/:id/drinks
func (sc *SessionController) RecordDrink(c *gin.Context) {
	uid := c.GetUint("userID")
	sid, ok := sessionParam(c)
	if !ok {
		return
	}

	var in services.DrinkInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	record, err := sc.Svc.RecordDrink(uid, sid, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

// POST /sobriety/sessions/:id/end
func (sc *SessionController) End(c *gin.Context) {
	uid := c.GetUint("userID")
	sid, ok := sessionParam(c)
	if !ok {
		return
	}

	session, err := sc.Svc.End(uid, sid)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// POST /sobriety/sessions/:id/recompute
func (sc *SessionController) Recompute(c *gin.Context) {
	uid := c.GetUint("userID")
	sid, ok := sessionParam(c)
	if !ok {
		return
	}

	session, err := sc.Svc.Recompute(uid, sid)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// GET /sobriety/order-safety
//
// Queried by the checkout flow before committing any order containing
// alcohol. Fails closed: errors surface as safe=false, never as an open
// gate.
func (sc *SessionController) OrderSafety(c *gin.Context) {
	uid := c.GetUint("userID")

	safe, bac, err := sc.Svc.SafeToOrder(uid)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{
			"safe":          false,
			"estimated_bac": bac,
			"reason":        err.Error(),
		})
		return
	}

	resp := gin.H{"safe": safe, "estimated_bac": bac}
	if !safe {
		resp["reason"] = "estimated BAC at or above the legal limit"
	}
	c.JSON(http.StatusOK, resp)
}
