package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/layer-3/l3auth/core"
)

// Mock user-facing resources behind the session wall. They exist to exercise
// the authenticated path end to end; a real deployment replaces them with its
// own domain handlers.

type position struct {
	Market   string          `json:"market"`
	Side     string          `json:"side"`
	Size     decimal.Decimal `json:"size"`
	ValueUSD decimal.Decimal `json:"valueUSD"`
}

type activityEntry struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	At          string `json:"at"`
}

// Profile returns a mock profile derived from the session identity.
func (h *AuthHandlers) Profile(c *gin.Context) {
	sessionCtx, ok := sessionFromContext(c)
	if !ok {
		abortWithError(c, core.ErrMissingSession)
		return
	}

	c.JSON(http.StatusOK, profileFor(sessionCtx.Session.Identity))
}

// Positions returns mock open positions for the authenticated account.
func (h *AuthHandlers) Positions(c *gin.Context) {
	sessionCtx, ok := sessionFromContext(c)
	if !ok {
		abortWithError(c, core.ErrMissingSession)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"positions": []position{
			{
				Market:   "ETH-USD",
				Side:     "long",
				Size:     decimal.RequireFromString("1.5"),
				ValueUSD: decimal.RequireFromString("4210.50"),
			},
			{
				Market:   "BTC-USD",
				Side:     "short",
				Size:     decimal.RequireFromString("0.25"),
				ValueUSD: decimal.RequireFromString("16780.00"),
			},
		},
		"user": profileFor(sessionCtx.Session.Identity),
	})
}

// Activity returns mock recent account activity.
func (h *AuthHandlers) Activity(c *gin.Context) {
	now := core.Timestamp(time.Now())
	c.JSON(http.StatusOK, gin.H{
		"activity": []activityEntry{
			{Type: "trade", Description: "Opened a long position", At: now},
			{Type: "login", Description: "Signed in via wallet", At: now},
		},
	})
}

func profileFor(identity core.AuthIdentity) gin.H {
	username := identity.Address
	if len(username) >= 8 {
		username = username[2:8]
	}
	return gin.H{
		"address": identity.Address,
		"profile": gin.H{
			"username":    "user-" + username,
			"displayName": "L3 Demo User",
			"bio":         "This is a mock profile in the L3 auth demo.",
		},
	}
}
