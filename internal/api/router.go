package api

import (
	"github.com/gin-gonic/gin"
)

func NewRouter(ws *Workspace) *gin.Engine {
	r := gin.Default()

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/registry", RegistryHandler())
		apiGroup.GET("/registry/:key", RegistryKeyHandler())
		apiGroup.GET("/settings/defaults", SettingsDefaultsHandler())

		apiGroup.GET("/meta", MetaListHandler(ws))
		apiGroup.GET("/meta/:table", MetaTableHandler(ws))

		apiGroup.GET("/preview", PreviewHandler(ws))
		apiGroup.POST("/preview", PreviewHandler(ws))
		apiGroup.GET("/lint", LintHandler(ws))
		apiGroup.POST("/lint", LintHandler(ws))
		apiGroup.GET("/ddl", DDLHandler(ws))
		apiGroup.POST("/ddl", DDLHandler(ws))

		apiGroup.POST("/export", ExportHandler(ws))
		apiGroup.GET("/exports/*key", DownloadExportHandler(ws))

		apiGroup.POST("/admin/reload", AdminReloadHandler(ws))

		apiGroup.GET("/projects/:project/kv/:key", KVGetHandler(ws))
		apiGroup.PUT("/projects/:project/kv/:key", KVPutHandler(ws))
		apiGroup.DELETE("/projects/:project/kv/:key", KVDeleteHandler(ws))
		apiGroup.DELETE("/projects/:project", ProjectDeleteHandler(ws))
	}

	return r
}

func RunServer(addr string, ws *Workspace) error {
	return NewRouter(ws).Run(addr)
}
