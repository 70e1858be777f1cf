package handler

import "github.com/gin-gonic/gin"

// Handlers groups every handler mounted by RegisterRoutes.
type Handlers struct {
	General            *GeneralHandler
	Metrics            *MetricsHandler
	Selectors          *SelectorHandler
	Departments        *DepartmentHandler
	Areas              *AreaHandler
	Clients            *ClientHandler
	Sites              *SiteHandler
	Brigades           *BrigadeHandler
	Workers            *WorkerHandler
	TechnicalPersonnel *TechnicalPersonnelHandler
	Equipment          *EquipmentHandler
	Materials          *MaterialHandler
	Tasks              *TaskHandler
}

type crud interface {
	Index(*gin.Context)
	New(*gin.Context)
	Show(*gin.Context)
	Edit(*gin.Context)
	List(*gin.Context)
	Get(*gin.Context)
	Create(*gin.Context)
	Update(*gin.Context)
	Delete(*gin.Context)
}

// mount registers the pages and fragments every resource has and returns
// the fragment group for nested routes.
func mount(r *gin.Engine, api *gin.RouterGroup, name string, h crud) *gin.RouterGroup {
	pages := r.Group("/" + name)
	pages.GET("", h.Index)
	pages.GET("/new", h.New)
	pages.GET("/:id", h.Show)
	pages.GET("/:id/edit", h.Edit)

	group := api.Group("/" + name)
	group.GET("", h.List)
	group.POST("", h.Create)
	group.GET("/:id", h.Get)
	group.PUT("/:id", h.Update)
	group.DELETE("/:id", h.Delete)
	return group
}

// RegisterRoutes mounts the pages, the htmx fragments and the probes.
func RegisterRoutes(r *gin.Engine, h Handlers, metricsEnabled bool) {
	r.GET("/", h.General.Index)
	r.NoRoute(h.General.NotFound)

	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	if metricsEnabled {
		r.GET("/metrics", h.Metrics.Prometheus)
	}

	api := r.Group("/api")
	api.GET("/selectors/:name", h.Selectors.Options)

	departments := mount(r, api, "departments", h.Departments)
	departments.GET("/:id/areas", h.Departments.Areas)
	departments.GET("/:id/sites", h.Departments.Sites)
	departments.GET("/:id/personnel", h.Departments.Personnel)
	departments.GET("/:id/equipment", h.Departments.Equipment)

	areas := mount(r, api, "areas", h.Areas)
	areas.GET("/:id/sites", h.Areas.Sites)
	areas.GET("/:id/personnel", h.Areas.Personnel)

	clients := mount(r, api, "clients", h.Clients)
	clients.GET("/:id/sites", h.Clients.Sites)

	sites := mount(r, api, "sites", h.Sites)
	sites.GET("/type-fields", h.Sites.TypeFields)
	sites.GET("/:id/schedule", h.Sites.Schedule)
	sites.GET("/:id/materials", h.Sites.Materials)
	sites.GET("/:id/equipment", h.Sites.Equipment)
	sites.GET("/:id/brigades", h.Sites.Brigades)
	sites.GET("/:id/reports", h.Sites.Reports)
	sites.GET("/:id/reports/export", h.Sites.ExportReports)

	brigades := mount(r, api, "brigades", h.Brigades)
	brigades.GET("/:id/workers", h.Brigades.Workers)
	brigades.POST("/:id/workers", h.Brigades.AddWorker)
	brigades.DELETE("/:id/workers/:worker_id", h.Brigades.RemoveWorker)
	brigades.GET("/:id/tasks", h.Brigades.Tasks)

	workers := mount(r, api, "workers", h.Workers)
	workers.GET("/profession-fields", h.Workers.ProfessionFields)

	personnel := mount(r, api, "technical-personnel", h.TechnicalPersonnel)
	personnel.GET("/qualification-fields", h.TechnicalPersonnel.QualificationFields)

	equipment := mount(r, api, "equipment", h.Equipment)
	equipment.GET("/:id/allocations", h.Equipment.Allocations)
	equipment.POST("/:id/allocations", h.Equipment.Allocate)
	equipment.DELETE("/:id/allocations/:allocation_id", h.Equipment.DeleteAllocation)

	materials := mount(r, api, "materials", h.Materials)
	materials.GET("/:id/usage", h.Materials.Usage)

	tasks := mount(r, api, "tasks", h.Tasks)
	tasks.GET("/:id/materials", h.Tasks.Materials)
	tasks.POST("/:id/materials", h.Tasks.AddMaterial)
	tasks.PUT("/:id/materials/:material_id", h.Tasks.SetActualAmount)
	tasks.PUT("/:id/complete", h.Tasks.Complete)
}
