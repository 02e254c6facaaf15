package routes

import (
	"github.com/labstack/echo/v4"

	"maintenance-system/internal/controllers"
)

func runRequestRouter(secureGroup *echo.Group, requestCtrl *controllers.RequestController) {
	{
		secureGroup.GET("/requests", requestCtrl.GetRequests)
		secureGroup.POST("/requests", requestCtrl.CreateRequest)
		secureGroup.GET("/requests/summary", requestCtrl.GetSummary)
		secureGroup.GET("/requests/:id", requestCtrl.FindRequest)
		secureGroup.PUT("/requests/:id/state", requestCtrl.TransitionState)
	}
}
