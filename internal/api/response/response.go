// Package response centralizes the wire shape of the admin API.
// Successful responses carry the document (or list) unwrapped; error
// responses carry a single message field.
package response

import "github.com/gin-gonic/gin"

func OK(c *gin.Context, data any) {
	c.JSON(200, data)
}

func Created(c *gin.Context, data any) {
	c.JSON(201, data)
}

// Message reports a non-error outcome that has no document, such as a
// delete.
func Message(c *gin.Context, text string) {
	c.JSON(200, gin.H{"message": text})
}

func Fail(c *gin.Context, httpStatus int, message string) {
	c.JSON(httpStatus, gin.H{"message": message})
}

// Count is the shape the dashboard widgets poll.
func Count(c *gin.Context, count int64) {
	c.JSON(200, gin.H{"count": count})
}
