package routes

import (
	"github.com/gin-gonic/gin"

	"mediafolder/controllers"
)

// RegisterMediaFolderRoutes mounts the folder entity and action routes on rg.
// read guards the GET routes, write guards the mutating ones.
func RegisterMediaFolderRoutes(rg *gin.RouterGroup, folderController *controllers.MediaFolderController, read, write []gin.HandlerFunc) {
	folders := rg.Group("/media-folder")
	{
		folders.GET("", with(read, folderController.ListFolders)...)                                    // GET /media-folder?parentId=
		folders.POST("", with(write, folderController.CreateFolder)...)                                 // POST /media-folder
		folders.GET("/:folderId", with(read, folderController.GetFolder)...)                            // GET /media-folder/:folderId
		folders.GET("/:folderId/configuration", with(read, folderController.GetFolderConfiguration)...) // GET /media-folder/:folderId/configuration
	}

	configurations := rg.Group("/media-folder-configuration")
	{
		configurations.GET("/:configurationId", with(read, folderController.GetConfiguration)...) // GET /media-folder-configuration/:configurationId
	}

	actions := rg.Group("/_action/media-folder")
	{
		actions.POST("/:folderId/dissolve", with(write, folderController.DissolveFolder)...)         // POST /_action/media-folder/:folderId/dissolve
		actions.POST("/:folderId/move", with(write, folderController.MoveFolder)...)                 // POST /_action/media-folder/:folderId/move (to root)
		actions.POST("/:folderId/move/:targetParentId", with(write, folderController.MoveFolder)...) // POST /_action/media-folder/:folderId/move/:targetParentId
	}
}

func with(guards []gin.HandlerFunc, handler gin.HandlerFunc) []gin.HandlerFunc {
	handlers := make([]gin.HandlerFunc, 0, len(guards)+1)
	handlers = append(handlers, guards...)
	return append(handlers, handler)
}
