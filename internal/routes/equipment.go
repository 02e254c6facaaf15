package routes

import (
	"github.com/labstack/echo/v4"

	"maintenance-system/internal/controllers"
)

func runEquipmentRouter(secureGroup *echo.Group, equipmentCtrl *controllers.EquipmentController) {
	{
		secureGroup.GET("/equipments", equipmentCtrl.GetEquipments)
		secureGroup.POST("/equipments", equipmentCtrl.CreateEquipment)
		secureGroup.GET("/equipments/:id", equipmentCtrl.FindEquipment)
		secureGroup.PUT("/equipments/:id", equipmentCtrl.UpdateEquipment)
	}
}
