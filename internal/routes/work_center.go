package routes

import (
	"github.com/labstack/echo/v4"

	"maintenance-system/internal/controllers"
)

func runWorkCenterRouter(secureGroup *echo.Group, workCenterCtrl *controllers.WorkCenterController) {
	{
		secureGroup.GET("/work_centers", workCenterCtrl.GetWorkCenters)
		secureGroup.POST("/work_centers", workCenterCtrl.CreateWorkCenter)
		secureGroup.GET("/work_centers/:id", workCenterCtrl.FindWorkCenter)
		secureGroup.PUT("/work_centers/:id", workCenterCtrl.UpdateWorkCenter)
		secureGroup.DELETE("/work_centers/:id", workCenterCtrl.DeleteWorkCenter)
	}
}
