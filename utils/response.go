package utils

import "github.com/gin-gonic/gin"

func JSONError(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"error": message})
}

// JSONCodedError adds a machine-readable code next to the message.
func JSONCodedError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{"error": message, "code": code})
}

// JSONDetail renders the {"detail", "code"} shape used by the token endpoints.
func JSONDetail(c *gin.Context, status int, code, detail string) {
	c.JSON(status, gin.H{"detail": detail, "code": code})
}
