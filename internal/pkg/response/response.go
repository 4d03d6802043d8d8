package response

import "github.com/gin-gonic/gin"

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(200, gin.H{"data": data})
}

func Error(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{"error": APIError{Code: code, Message: message}})
}

// ErrorFields renders an error with extra payload fields alongside code and
// message, e.g. quota counters.
func ErrorFields(c *gin.Context, status int, code, message string, fields map[string]interface{}) {
	payload := gin.H{"code": code, "message": message}
	for k, v := range fields {
		payload[k] = v
	}
	c.JSON(status, gin.H{"error": payload})
}
