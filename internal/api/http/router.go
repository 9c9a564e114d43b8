package http

import (
	"html/template"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

func SetupRouter(signalController *SignalController, statusController *StatusController, allowOrigins []string) *gin.Engine {
	router := gin.Default()
	router.SetHTMLTemplate(template.Must(template.New(landingTemplateName).Parse(landingTemplate)))

	config := cors.DefaultConfig()
	if len(allowOrigins) == 0 {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = allowOrigins
		config.AllowCredentials = true
	}
	config.AllowHeaders = []string{
		"Content-Type",
		"Origin",
		"Accept",
	}
	config.AllowMethods = []string{"GET", "HEAD", "OPTIONS"}
	router.Use(cors.New(config))

	router.GET("/", func(ctx *gin.Context) {
		if signalController != nil && websocket.IsWebSocketUpgrade(ctx.Request) {
			signalController.Connect(ctx)
			return
		}
		if statusController != nil {
			statusController.Landing(ctx)
		}
	})

	if signalController != nil {
		router.GET("/ws", signalController.Connect)
	}

	if statusController != nil {
		router.GET("/health", statusController.Health)
		router.GET("/peer-config", statusController.PeerConfig)
	}

	return router
}
