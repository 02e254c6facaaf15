package routes

import (
	"github.com/labstack/echo/v4"

	"maintenance-system/internal/controllers"
)

func runReportRouter(secureGroup *echo.Group, reportCtrl *controllers.ReportController) {
	{
		secureGroup.GET("/reports/requests/export", reportCtrl.ExportRequests)
	}
}
