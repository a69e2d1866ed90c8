package controllers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"mediafolder/services"
	"mediafolder/utils"
)

const codeInvalidRequestBody = "FRAMEWORK__INVALID_REQUEST_BODY"

type MediaFolderController struct {
	folderService *services.MediaFolderService
}

func NewMediaFolderController(folderService *services.MediaFolderService) *MediaFolderController {
	return &MediaFolderController{folderService: folderService}
}

type configurationRequest struct {
	ID               string `json:"id"`
	CreateThumbnails *bool  `json:"createThumbnails"`
	KeepAspectRatio  *bool  `json:"keepAspectRatio"`
	ThumbnailQuality *int   `json:"thumbnailQuality"`
}

type createFolderRequest struct {
	ID                     string                `json:"id"`
	Name                   string                `json:"name"`
	ParentID               *string               `json:"parentId"`
	UseParentConfiguration bool                  `json:"useParentConfiguration"`
	Configuration          *configurationRequest `json:"configuration"`
}

// ========== Helpers ==========

// handleError writes the error envelope for err. Anything that is not a
// domain error is logged and reported as an internal error.
func (mc *MediaFolderController) handleError(c *gin.Context, err error) {
	var domainErr *services.Error
	if errors.As(err, &domainErr) {
		utils.ErrorResponse(c, domainErr.Status, domainErr.Code, domainErr.Message)
		return
	}

	utils.LogError(c.Request.Context(), "media folder request failed", err,
		"method", c.Request.Method,
		"path", c.FullPath())
	utils.InternalServerErrorResponse(c)
}

func optionalParam(c *gin.Context, name string) *string {
	if v := c.Param(name); v != "" {
		return &v
	}
	return nil
}

// ========== Endpoints ==========

// CreateFolder handles POST /media-folder.
func (mc *MediaFolderController) CreateFolder(c *gin.Context) {
	var req createFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, codeInvalidRequestBody, err.Error())
		return
	}

	in := services.CreateFolderInput{
		ID:                     req.ID,
		Name:                   req.Name,
		ParentID:               req.ParentID,
		UseParentConfiguration: req.UseParentConfiguration,
	}
	if in.ParentID != nil && *in.ParentID == "" {
		in.ParentID = nil
	}
	if req.Configuration != nil {
		in.Configuration = &services.ConfigurationInput{
			ID:               req.Configuration.ID,
			CreateThumbnails: req.Configuration.CreateThumbnails,
			KeepAspectRatio:  req.Configuration.KeepAspectRatio,
			ThumbnailQuality: req.Configuration.ThumbnailQuality,
		}
	}

	folder, err := mc.folderService.Create(c.Request.Context(), in)
	if err != nil {
		mc.handleError(c, err)
		return
	}

	utils.CreatedResponse(c, folder)
}

// ListFolders handles GET /media-folder?parentId=.
func (mc *MediaFolderController) ListFolders(c *gin.Context) {
	var parentID *string
	if v := c.Query("parentId"); v != "" {
		parentID = &v
	}

	folders, err := mc.folderService.ListChildren(c.Request.Context(), parentID)
	if err != nil {
		mc.handleError(c, err)
		return
	}

	utils.SuccessResponse(c, folders)
}

func (mc *MediaFolderController) GetFolder(c *gin.Context) {
	folder, err := mc.folderService.Get(c.Request.Context(), c.Param("folderId"))
	if err != nil {
		mc.handleError(c, err)
		return
	}

	utils.SuccessResponse(c, folder)
}

// GetFolderConfiguration returns the configuration a folder uses, including an
// inherited one.
func (mc *MediaFolderController) GetFolderConfiguration(c *gin.Context) {
	cfg, err := mc.folderService.GetFolderConfiguration(c.Request.Context(), c.Param("folderId"))
	if err != nil {
		mc.handleError(c, err)
		return
	}

	utils.SuccessResponse(c, cfg)
}

func (mc *MediaFolderController) GetConfiguration(c *gin.Context) {
	cfg, err := mc.folderService.GetConfiguration(c.Request.Context(), c.Param("configurationId"))
	if err != nil {
		mc.handleError(c, err)
		return
	}

	utils.SuccessResponse(c, cfg)
}

// DissolveFolder handles POST /_action/media-folder/:folderId/dissolve.
func (mc *MediaFolderController) DissolveFolder(c *gin.Context) {
	if err := mc.folderService.Dissolve(c.Request.Context(), c.Param("folderId")); err != nil {
		mc.handleError(c, err)
		return
	}

	utils.EmptyResponse(c)
}

// MoveFolder handles both move routes. Without a target segment the folder
// moves to root.
func (mc *MediaFolderController) MoveFolder(c *gin.Context) {
	target := optionalParam(c, "targetParentId")

	if err := mc.folderService.Move(c.Request.Context(), c.Param("folderId"), target); err != nil {
		mc.handleError(c, err)
		return
	}

	utils.EmptyResponse(c)
}
