package seeders

// Наборы данных для наполнения справочников. Идентификаторы связываются
// по именам, а не по ID: сидеры идемпотентны и переживают повторный запуск.

var teamsData = []struct {
	Name        string
	Description string
}{
	{Name: "Бригада механиков", Description: "Ремонт станков и механического оборудования"},
	{Name: "Бригада электриков", Description: "Обслуживание электрооборудования и щитовых"},
	{Name: "Бригада КИПиА", Description: "Контрольно-измерительные приборы и автоматика"},
}

var workCentersData = []struct {
	Name     string
	Code     string
	TeamName string
}{
	{Name: "Сборочный цех №1", Code: "WC-ASM-1", TeamName: "Бригада механиков"},
	{Name: "Цех металлообработки", Code: "WC-MET-1", TeamName: "Бригада механиков"},
	{Name: "Электроподстанция", Code: "WC-PWR-1", TeamName: "Бригада электриков"},
	// Центр без бригады: заявки по нему должны отклоняться до назначения.
	{Name: "Склад готовой продукции", Code: "WC-WH-1", TeamName: ""},
}

var equipmentData = []struct {
	Name            string
	InventoryNumber string
	TeamName        string
	WorkCenterCode  string
}{
	{Name: "Токарный станок HAAS ST-20", InventoryNumber: "INV-0001", TeamName: "Бригада механиков", WorkCenterCode: "WC-MET-1"},
	{Name: "Фрезерный станок DMG MORI", InventoryNumber: "INV-0002", TeamName: "Бригада механиков", WorkCenterCode: "WC-MET-1"},
	{Name: "Сборочный конвейер Bosch", InventoryNumber: "INV-0003", TeamName: "Бригада механиков", WorkCenterCode: "WC-ASM-1"},
	{Name: "Трансформатор ТМГ-630", InventoryNumber: "INV-0004", TeamName: "Бригада электриков", WorkCenterCode: "WC-PWR-1"},
	{Name: "Компрессор Atlas Copco", InventoryNumber: "INV-0005", TeamName: "Бригада электриков", WorkCenterCode: ""},
	// Свободное оборудование: раздаётся новым пользователям портала.
	{Name: "Ноутбук Dell Latitude", InventoryNumber: "INV-0101", TeamName: "", WorkCenterCode: ""},
	{Name: "МФУ Kyocera M2640", InventoryNumber: "INV-0102", TeamName: "", WorkCenterCode: ""},
	{Name: "ИБП APC Smart-UPS", InventoryNumber: "INV-0103", TeamName: "", WorkCenterCode: ""},
	{Name: "Сканер штрихкодов Zebra", InventoryNumber: "INV-0104", TeamName: "", WorkCenterCode: ""},
}

var usersData = []struct {
	Fio      string
	Email    string
	Role     string
	Password string
	Teams    []string
}{
	{Fio: "Менеджер Смены", Email: "manager@maintenance.local", Role: "manager", Password: "manager123"},
	{Fio: "Техник Механик", Email: "tech-mech@maintenance.local", Role: "technician", Password: "tech123", Teams: []string{"Бригада механиков"}},
	{Fio: "Техник Электрик", Email: "tech-elec@maintenance.local", Role: "technician", Password: "tech123", Teams: []string{"Бригада электриков"}},
	{Fio: "Пользователь Портала", Email: "portal@maintenance.local", Role: "portal", Password: "portal123"},
}
