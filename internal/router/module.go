package router

import "github.com/gin-gonic/gin"

// Module mounts one feature's handlers on the registry group.
type Module interface {
	Register(rg *gin.RouterGroup)
}
