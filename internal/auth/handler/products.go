package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type product struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// Products is the example protected resource. Reaching it requires a
// valid bearer token; the guard runs before this handler.
func (h *Handler) Products(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"data": []product{
			{
				ID:    uuid.NewString(),
				Name:  "Smartphone",
				Price: 1500,
			},
		},
	})
}
